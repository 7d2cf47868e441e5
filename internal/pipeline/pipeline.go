// Package pipeline runs the scheduling stages against the input and data
// directories of one run.
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rhyrak/term-scheduler/internal/calendar"
	"github.com/rhyrak/term-scheduler/internal/csvio"
	"github.com/rhyrak/term-scheduler/internal/overflow"
	"github.com/rhyrak/term-scheduler/internal/roster"
	"github.com/rhyrak/term-scheduler/internal/scheduler"
	"github.com/rhyrak/term-scheduler/internal/sectioner"
	"github.com/rhyrak/term-scheduler/pkg/config"
	"github.com/rhyrak/term-scheduler/pkg/errors"
	"github.com/rhyrak/term-scheduler/pkg/logger"
	"github.com/rhyrak/term-scheduler/pkg/metrics"
	"github.com/rhyrak/term-scheduler/pkg/model"
)

const (
	StageNormalize = "normalize"
	StageCalendar  = "calendar"
	StageSection   = "section"
	StageAssign    = "assign"
	StageOverflow  = "overflow"
)

// Runner executes stages for one run id. Each stage reads only the tables
// written by the stages before it.
type Runner struct {
	RunID string
	// Print receives the console view of the term schedule when set.
	Print io.Writer

	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Recorder
	input   *csvio.Store
	data    *csvio.Store
}

func New(cfg *config.Config, log *zap.Logger, rec *metrics.Recorder) *Runner {
	return NewWithID(uuid.NewString(), cfg, log, rec)
}

func NewWithID(runID string, cfg *config.Config, log *zap.Logger, rec *metrics.Recorder) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		RunID:   runID,
		cfg:     cfg,
		log:     log.With(zap.String("run_id", runID)),
		metrics: rec,
		input:   csvio.NewStore(cfg.InputDir, cfg.CSVDelimiter),
		data:    csvio.NewStore(cfg.DataDir, cfg.CSVDelimiter),
	}
}

// Run executes every stage in order and stops at the first failure.
func (r *Runner) Run(ctx context.Context) (err error) {
	done := logger.Stage(r.log, "pipeline")
	defer done(&err)
	defer r.flushMetrics()

	stages := []func(context.Context) error{r.Normalize, r.Calendar, r.Section, r.Assign, r.Overflow}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return cancelled(err)
		}
		if err := stage(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return cancelled(ctxErr)
			}
			return err
		}
	}
	return nil
}

func (r *Runner) Normalize(ctx context.Context) error {
	return r.stage(StageNormalize, func() error {
		rows, err := r.input.LoadRoster()
		if err != nil {
			return err
		}
		tables, err := roster.Normalize(rows, r.log)
		if err != nil {
			return err
		}
		largest := 0
		for _, n := range roster.EnrollmentCounts(tables.Enrollments) {
			largest = max(largest, n)
		}
		if largest > r.cfg.Sectioning.MaxCap {
			r.log.Info("courses need sectioning", zap.Int("largest_course", largest), zap.Int("max_cap", r.cfg.Sectioning.MaxCap))
		}
		if err := r.data.SaveCourses(tables.Courses); err != nil {
			return err
		}
		if err := r.data.SaveStudents(tables.Students); err != nil {
			return err
		}
		return r.data.SaveEnrollments(tables.Enrollments)
	})
}

func (r *Runner) Calendar(ctx context.Context) error {
	return r.stage(StageCalendar, func() error {
		slots := calendar.BuildSlots(r.cfg.Calendar)
		pool := calendar.BuildOverflowSlots(r.cfg.Calendar)
		if err := r.data.SaveSlots(slots); err != nil {
			return err
		}
		r.log.Info("calendar built", zap.Int("slots", len(slots)), zap.Int("overflow_slots", len(pool)))
		return r.data.SaveOverflowSlots(pool)
	})
}

func (r *Runner) Section(ctx context.Context) error {
	return r.stage(StageSection, func() error {
		enrollments, err := r.data.LoadEnrollments()
		if err != nil {
			return err
		}
		students, err := r.data.LoadStudents()
		if err != nil {
			return err
		}
		population := make([]string, len(students))
		for i, s := range students {
			population[i] = s.ID
		}

		res, err := sectioner.New(r.cfg.Sectioning, r.log).SectionAll(enrollments, population)
		if err != nil {
			return err
		}
		if err := sectioner.Verify(res.Sections, res.Enrollments, enrollments); err != nil {
			return err
		}
		if r.cfg.Sectioning.Mode == config.SectionModeIdentity {
			r.log.Info("identity groups checked",
				zap.Int("mismatches", sectioner.Mismatches(res, sectioner.NewIdentity(population))))
		}
		if err := r.data.SaveSections(res.Sections); err != nil {
			return err
		}
		return r.data.SaveSectionEnrollments(res.Enrollments)
	})
}

func (r *Runner) Assign(ctx context.Context) error {
	return r.stage(StageAssign, func() error {
		in, err := r.assignInput()
		if err != nil {
			return err
		}
		opts := scheduler.NewOptions(r.cfg)
		res, err := scheduler.NewEngine(opts, r.log).Assign(ctx, in)
		if err != nil {
			return err
		}

		valid, report := scheduler.Validate(in, res.Assignments, opts)
		if !valid {
			return errors.Clone(errors.ErrInternal, "primary assignment failed validation:\n"+report)
		}
		r.log.Debug("primary assignment validated", zap.String("report", report))

		rows := scheduler.TermSchedule(in, res, opts.FacultyBoundaryWeek)
		path, err := r.data.ExportTermSchedule(rows)
		if err != nil {
			return err
		}
		if err := r.data.SaveSectionSessions(res.Sessions); err != nil {
			return err
		}
		if r.Print != nil {
			csvio.PrintSchedule(r.Print, rows)
		}
		r.metrics.SetSessions("primary", res.Total)
		r.log.Info("term schedule exported", zap.String("path", path), zap.Int("rows", len(rows)))
		return nil
	})
}

func (r *Runner) Overflow(ctx context.Context) error {
	return r.stage(StageOverflow, func() error {
		in, err := r.overflowInput()
		if err != nil {
			return err
		}
		opts := overflow.NewOptions(r.cfg)
		res, err := overflow.New(opts, r.log).Schedule(ctx, in)
		if err != nil {
			return err
		}

		rows, days := overflow.ScheduleRows(in, res, opts)
		if err := r.data.ExportOverflowSchedule(rows, days); err != nil {
			return err
		}
		r.metrics.SetSessions("overflow", len(rows))
		r.metrics.SetActiveDays(len(days))
		return nil
	})
}

func (r *Runner) stage(name string, fn func() error) (err error) {
	start := time.Now()
	done := logger.Stage(r.log, name)
	defer func() {
		done(&err)
		status := "ok"
		if err != nil {
			status = errors.FromError(err).Code
		}
		r.metrics.ObserveStage(name, status, time.Since(start))
	}()
	return fn()
}

func cancelled(err error) error {
	return errors.Wrap(err, errors.ErrCancelled.Code, errors.ErrCancelled.ExitCode, "pipeline cancelled")
}

func (r *Runner) flushMetrics() {
	if err := r.metrics.WriteTextfile(r.cfg.MetricsFile); err != nil {
		r.log.Warn("metrics not written", zap.String("path", r.cfg.MetricsFile), zap.Error(err))
	}
}

// FlushMetrics writes the metrics textfile after a single stage run.
func (r *Runner) FlushMetrics() {
	r.flushMetrics()
}

func (r *Runner) assignInput() (*scheduler.Input, error) {
	var (
		in  = &scheduler.Input{}
		err error
	)
	if in.Courses, err = r.data.LoadCourses(); err != nil {
		return nil, err
	}
	if in.Sections, err = r.data.LoadSections(); err != nil {
		return nil, err
	}
	if in.SectionEnrollments, err = r.data.LoadSectionEnrollments(); err != nil {
		return nil, err
	}
	if in.Slots, err = r.data.LoadSlots(); err != nil {
		return nil, err
	}
	if in.FacultySplits, err = r.facultySplits(); err != nil {
		return nil, err
	}
	return in, nil
}

func (r *Runner) overflowInput() (*overflow.Input, error) {
	var (
		in  = &overflow.Input{}
		err error
	)
	if in.Courses, err = r.data.LoadCourses(); err != nil {
		return nil, err
	}
	if in.Sections, err = r.data.LoadSections(); err != nil {
		return nil, err
	}
	if in.SectionEnrollments, err = r.data.LoadSectionEnrollments(); err != nil {
		return nil, err
	}
	if in.Sessions, err = r.data.LoadSectionSessions(); err != nil {
		return nil, err
	}
	if in.Slots, err = r.data.LoadOverflowSlots(); err != nil {
		return nil, err
	}
	if in.FacultySplits, err = r.facultySplits(); err != nil {
		return nil, err
	}
	return in, nil
}

// facultySplits prefers the data directory and falls back to the input directory.
func (r *Runner) facultySplits() ([]*model.FacultySplit, error) {
	if r.data.Exists(csvio.FacultySplitsFile) {
		return r.data.LoadFacultySplits()
	}
	return r.input.LoadFacultySplits()
}
