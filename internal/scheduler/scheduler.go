// Package scheduler assigns section sessions to term slots.
package scheduler

import (
	"context"

	"go.uber.org/zap"

	"github.com/rhyrak/term-scheduler/internal/solver"
	"github.com/rhyrak/term-scheduler/pkg/errors"
	"github.com/rhyrak/term-scheduler/pkg/model"
)

// Result is a usable primary assignment.
type Result struct {
	Status      solver.Status
	Assignments []model.Assignment
	Sessions    []*model.SessionCountRow
	Total       int
	Value       int
	Bound       int
}

type Engine struct {
	opts Options
	log  *zap.Logger
}

func NewEngine(opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	opts.Solver.Log = log
	return &Engine{opts: opts, log: log}
}

// Assign solves the section-to-slot problem. Infeasible instances and searches
// that end without any assignment meeting the floor return an error.
func (e *Engine) Assign(ctx context.Context, in *Input) (*Result, error) {
	ix, err := buildIndex(in, e.opts.FacultyBoundaryWeek)
	if err != nil {
		return nil, err
	}

	p := e.problem(ix)
	res, err := solver.Solve(ctx, p, e.opts.Solver)
	if err != nil {
		return nil, err
	}

	if err := searchError("primary assignment", res, e.opts.Solver); err != nil {
		return nil, err
	}

	out := &Result{Status: res.Status, Total: res.Total, Value: res.Value, Bound: res.Bound}
	for i, sec := range ix.sections {
		for _, s := range res.Slots[i] {
			out.Assignments = append(out.Assignments, model.Assignment{SectionID: sec.ID, SlotID: ix.slots[s].ID})
		}
		shortfall := 0
		if d := e.opts.Floor - res.Counts[i]; d > 0 {
			shortfall = d
		}
		out.Sessions = append(out.Sessions, &model.SessionCountRow{
			SectionID: sec.ID,
			CourseID:  sec.CourseID,
			Sessions:  res.Counts[i],
			Floor:     e.opts.Floor,
			Ceiling:   e.opts.Ceiling,
			Shortfall: shortfall,
		})
	}

	fields := []zap.Field{
		zap.String("mode", string(e.opts.Mode)),
		zap.String("status", string(res.Status)),
		zap.Int("sections", len(ix.sections)),
		zap.Int("slots", len(ix.slots)),
		zap.Int("sessions", res.Total),
		zap.Int("value", res.Value),
		zap.Int("bound", res.Bound),
	}
	if res.Status != solver.StatusOptimal {
		e.log.Warn("primary assignment usable but optimality is unproven", fields...)
	} else {
		e.log.Info("primary assignment complete", fields...)
	}
	return out, nil
}

func (e *Engine) problem(ix *index) *solver.Problem {
	n := len(ix.sections)
	faculty, names := ix.facultyMatrix()

	p := &solver.Problem{
		Names:     make([]string, n),
		Lower:     make([]int, n),
		Upper:     make([]int, n),
		Floor:     make([]int, n),
		Capacity:  make([]int, len(ix.slots)),
		Group:     ix.weekGroup,
		GroupCap:  e.opts.WeeklyCap,
		Shared:    ix.shared(),
		Faculty:   faculty,
		Objective: e.opts.Mode.objective(),
		Penalty:   e.opts.Penalty,
		Cliques:   ix.cliques(faculty, names),
	}
	for i, sec := range ix.sections {
		p.Names[i] = "section " + sec.ID
		p.Lower[i] = e.opts.hardFloor()
		p.Upper[i] = e.opts.Ceiling
		p.Floor[i] = e.opts.Floor
	}
	for s, sl := range ix.slots {
		p.Capacity[s] = sl.RoomCapacity
	}
	return p
}

// searchError maps an unusable search result onto the stage error that names
// what stopped it.
func searchError(what string, res *solver.Result, opts solver.Options) error {
	switch res.Status {
	case solver.StatusInfeasible:
		return errors.Clonef(errors.ErrInfeasible, "%s infeasible: %s", what, res.Reason)
	case solver.StatusUnknown:
		if res.Cut {
			return errors.Clonef(errors.ErrTimedOut,
				"%s: no assignment meeting the session floor found within %s (%d sessions short)",
				what, opts.TimeLimit, res.Violation)
		}
		return errors.Clonef(errors.ErrSearchExhausted,
			"%s: %d search iterations per worker ended %d sessions short of the floor and infeasibility was not proven",
			what, opts.Iterations, res.Violation)
	}
	return nil
}
