// Package overflow packs section shortfalls into the overflow day pool using
// as few days as possible.
package overflow

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/rhyrak/term-scheduler/internal/solver"
	"github.com/rhyrak/term-scheduler/pkg/config"
	"github.com/rhyrak/term-scheduler/pkg/errors"
	"github.com/rhyrak/term-scheduler/pkg/model"
)

type Input struct {
	Courses            []*model.Course
	Sections           []*model.Section
	SectionEnrollments []*model.SectionEnrollment
	Sessions           []*model.SessionCountRow
	Slots              []*model.OverflowSlot
	FacultySplits      []*model.FacultySplit
}

type Options struct {
	// FacultyWeek is the week at which split faculty are resolved.
	FacultyWeek         int
	FacultyBoundaryWeek int
	Solver              solver.Options
}

func NewOptions(cfg *config.Config) Options {
	return Options{
		FacultyWeek:         cfg.Overflow.FacultyWeek,
		FacultyBoundaryWeek: cfg.Assignment.FacultyBoundaryWeek,
		Solver: solver.Options{
			TimeLimit:  cfg.Solver.TimeLimit,
			Workers:    cfg.Solver.Workers,
			Iterations: cfg.Solver.Iterations,
			Seed:       cfg.Solver.Seed,
		},
	}
}

// Diagnostics summarizes the pending load per affected student.
type Diagnostics struct {
	AffectedStudents int
	MaxPending       int
	MeanPending      float64
	TotalDeficit     int
}

type Result struct {
	Status      solver.Status
	Assignments []model.Assignment
	// Days lists the days holding at least one session, in pool order.
	Days        []string
	DaysTried   int
	LowerBound  int
	Deficits    map[string]int
	Diagnostics Diagnostics
}

type Scheduler struct {
	opts Options
	log  *zap.Logger
}

func New(opts Options, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	opts.Solver.Log = log
	return &Scheduler{opts: opts, log: log}
}

// Schedule assigns every deficit exactly, trying the smallest day counts first.
func (s *Scheduler) Schedule(ctx context.Context, in *Input) (*Result, error) {
	pool, err := newPool(in, s.opts)
	if err != nil {
		return nil, err
	}

	res := &Result{Deficits: pool.deficitMap(), Diagnostics: pool.diagnostics()}
	s.log.Info("deficit structure",
		zap.Int("sections", len(pool.sections)),
		zap.Int("total_deficit", res.Diagnostics.TotalDeficit),
		zap.Int("affected_students", res.Diagnostics.AffectedStudents),
		zap.Int("max_pending", res.Diagnostics.MaxPending),
		zap.Float64("mean_pending", res.Diagnostics.MeanPending),
	)

	if len(pool.sections) == 0 {
		res.Status = solver.StatusOptimal
		return res, nil
	}

	full := pool.problem(len(pool.days))
	if reason := full.Prove(); reason != "" {
		return nil, errors.Clonef(errors.ErrInfeasible, "overflow pool of %d days cannot absorb the deficits: %s", len(pool.days), reason)
	}

	res.LowerBound = pool.lowerBound()
	deadline := time.Now().Add(s.opts.Solver.TimeLimit)
	// An infeasible prefix of d days rules out every d-day subset only when
	// each day dominates the next.
	provenBelow := pool.nested()
	timedOut := false

	for d := res.LowerBound; d <= len(pool.days); d++ {
		res.DaysTried = d
		opts := s.opts.Solver
		if opts.TimeLimit > 0 {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				timedOut = true
				break
			}
			opts.TimeLimit = remaining / time.Duration(len(pool.days)-d+1)
			if d == len(pool.days) {
				opts.TimeLimit = remaining
			}
		}

		out, err := solver.Solve(ctx, pool.problem(d), opts)
		if err != nil {
			return nil, err
		}
		s.log.Debug("overflow attempt", zap.Int("days", d), zap.String("status", string(out.Status)))

		switch out.Status {
		case solver.StatusInfeasible:
			if d == len(pool.days) {
				return nil, errors.Clonef(errors.ErrInfeasible,
					"overflow pool of %d days cannot absorb the deficits: %s", d, out.Reason)
			}
			continue
		case solver.StatusUnknown:
			provenBelow = false
			timedOut = timedOut || out.Cut
			continue
		}

		res.Assignments, res.Days = pool.assignments(out)
		res.Status = solver.StatusFeasible
		if d == res.LowerBound || provenBelow {
			res.Status = solver.StatusOptimal
		}
		s.log.Info("overflow scheduling complete",
			zap.String("status", string(res.Status)),
			zap.Int("active_days", len(res.Days)),
			zap.Int("lower_bound", res.LowerBound),
			zap.Int("sessions", len(res.Assignments)),
		)
		return res, nil
	}

	if timedOut {
		return nil, errors.Clonef(errors.ErrTimedOut,
			"no exact overflow assignment found within %s using up to %d days", s.opts.Solver.TimeLimit, res.DaysTried)
	}
	return nil, errors.Clonef(errors.ErrSearchExhausted,
		"no exact overflow assignment found using up to %d days and infeasibility was not proven", res.DaysTried)
}

// pool is the read-only index of one overflow invocation.
type pool struct {
	sections []*model.Section
	deficit  []int
	days     []day
	slots    []*model.OverflowSlot
	shared   [][]bool
	faculty  []int
	names    []string
	students map[string][]int
}

type day struct {
	label    string
	position int
	slots    []int
	capacity int
	// rooms holds the positive slot capacities in descending order.
	rooms []int
}

// dominates reports whether every assignment using b maps slot by slot onto a.
func (a day) dominates(b day) bool {
	if len(a.rooms) < len(b.rooms) {
		return false
	}
	for k, c := range b.rooms {
		if a.rooms[k] < c {
			return false
		}
	}
	return true
}

// nested reports whether the day order is a dominance chain.
func (p *pool) nested() bool {
	for k := 1; k < len(p.days); k++ {
		if !p.days[k-1].dominates(p.days[k]) {
			return false
		}
	}
	return true
}

func newPool(in *Input, opts Options) (*pool, error) {
	sections := make(map[string]*model.Section, len(in.Sections))
	for _, sec := range in.Sections {
		sections[sec.ID] = sec
	}
	dir := model.NewFacultyDirectory(in.Courses, in.FacultySplits, opts.FacultyBoundaryWeek)

	p := &pool{slots: in.Slots, students: make(map[string][]int)}
	rows := append([]*model.SessionCountRow(nil), in.Sessions...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].SectionID < rows[j].SectionID })
	pos := make(map[string]int)
	for _, row := range rows {
		if row.Deficit() == 0 {
			continue
		}
		sec, ok := sections[row.SectionID]
		if !ok {
			return nil, errors.Clonef(errors.ErrDataValidation, "session count for unknown section %s", row.SectionID)
		}
		if !dir.Known(sec.CourseID) {
			return nil, errors.Clonef(errors.ErrDataValidation, "section %s references unknown course %s", sec.ID, sec.CourseID)
		}
		if _, dup := pos[sec.ID]; dup {
			return nil, errors.Clonef(errors.ErrDataValidation, "duplicate session count for section %s", sec.ID)
		}
		pos[sec.ID] = len(p.sections)
		p.sections = append(p.sections, sec)
		p.deficit = append(p.deficit, row.Deficit())
	}

	for _, se := range in.SectionEnrollments {
		if i, ok := pos[se.SectionID]; ok {
			p.students[se.StudentID] = append(p.students[se.StudentID], i)
		}
	}
	p.shared = make([][]bool, len(p.sections))
	for i := range p.shared {
		p.shared[i] = make([]bool, len(p.sections))
	}
	for _, secs := range p.students {
		for a := 0; a < len(secs); a++ {
			for b := a + 1; b < len(secs); b++ {
				p.shared[secs[a]][secs[b]] = true
				p.shared[secs[b]][secs[a]] = true
			}
		}
	}

	ids := make(map[string]int)
	p.faculty = make([]int, len(p.sections))
	for i, sec := range p.sections {
		name := dir.Resolve(sec.CourseID, opts.FacultyWeek)
		if name == "" {
			p.faculty[i] = -1
			continue
		}
		id, ok := ids[name]
		if !ok {
			id = len(p.names)
			ids[name] = id
			p.names = append(p.names, name)
		}
		p.faculty[i] = id
	}

	byLabel := make(map[string]int)
	for s, sl := range in.Slots {
		k, ok := byLabel[sl.Day]
		if !ok {
			k = len(p.days)
			byLabel[sl.Day] = k
			p.days = append(p.days, day{label: sl.Day, position: k})
		}
		p.days[k].slots = append(p.days[k].slots, s)
		if sl.RoomCapacity > 0 {
			p.days[k].capacity += sl.RoomCapacity
		}
	}
	for k := range p.days {
		for _, s := range p.days[k].slots {
			if c := in.Slots[s].RoomCapacity; c > 0 {
				p.days[k].rooms = append(p.days[k].rooms, c)
			}
		}
		sort.Sort(sort.Reverse(sort.IntSlice(p.days[k].rooms)))
	}
	sort.SliceStable(p.days, func(i, j int) bool {
		a, b := p.days[i], p.days[j]
		if len(a.rooms) != len(b.rooms) {
			return len(a.rooms) > len(b.rooms)
		}
		return a.capacity > b.capacity
	})
	return p, nil
}

// problem restricts the pool to its first d days.
func (p *pool) problem(d int) *solver.Problem {
	var slots []int
	var group []int
	for g, dy := range p.days[:d] {
		slots = append(slots, dy.slots...)
		for range dy.slots {
			group = append(group, g)
		}
	}

	n := len(p.sections)
	prob := &solver.Problem{
		Names:     make([]string, n),
		Lower:     p.deficit,
		Upper:     p.deficit,
		Capacity:  make([]int, len(slots)),
		Group:     group,
		Shared:    p.shared,
		Faculty:   make([][]int, n),
		Objective: solver.ObjectiveNone,
	}
	for k, s := range slots {
		prob.Capacity[k] = p.slots[s].RoomCapacity
	}
	for i, sec := range p.sections {
		prob.Names[i] = "section " + sec.ID
		prob.Faculty[i] = make([]int, len(slots))
		for k := range slots {
			prob.Faculty[i][k] = p.faculty[i]
		}
	}

	studentIDs := make([]string, 0, len(p.students))
	for id, secs := range p.students {
		if len(secs) > 1 {
			studentIDs = append(studentIDs, id)
		}
	}
	sort.Strings(studentIDs)
	for _, id := range studentIDs {
		prob.Cliques = append(prob.Cliques, solver.Clique{Name: "student " + id, Items: p.students[id]})
	}
	byFaculty := make([][]int, len(p.names))
	for i, f := range p.faculty {
		if f >= 0 {
			byFaculty[f] = append(byFaculty[f], i)
		}
	}
	for f, items := range byFaculty {
		if len(items) > 1 {
			prob.Cliques = append(prob.Cliques, solver.Clique{Name: "faculty " + p.names[f], Items: items})
		}
	}
	return prob
}

// lowerBound is the fewest days any exact assignment can use.
func (p *pool) lowerBound() int {
	total := 0
	maxSection := 0
	for _, d := range p.deficit {
		total += d
		maxSection = max(maxSection, d)
	}

	maxStudent := 0
	for _, secs := range p.students {
		load := 0
		for _, i := range secs {
			load += p.deficit[i]
		}
		maxStudent = max(maxStudent, load)
	}

	facultyLoad := make([]int, len(p.names))
	maxFaculty := 0
	for i, f := range p.faculty {
		if f >= 0 {
			facultyLoad[f] += p.deficit[i]
			maxFaculty = max(maxFaculty, facultyLoad[f])
		}
	}

	perDay := 0
	for _, d := range p.days {
		used := 0
		for _, s := range d.slots {
			if p.slots[s].RoomCapacity > 0 {
				used++
			}
		}
		perDay = max(perDay, used)
	}

	lb := 1
	if perDay > 0 {
		lb = max(lb, ceilDiv(maxSection, perDay), ceilDiv(maxStudent, perDay), ceilDiv(maxFaculty, perDay))
	}

	capacities := make([]int, len(p.days))
	for k, d := range p.days {
		capacities[k] = d.capacity
	}
	sort.Sort(sort.Reverse(sort.IntSlice(capacities)))
	byCapacity, k := 0, 0
	for k < len(capacities) && byCapacity < total {
		byCapacity += capacities[k]
		k++
	}
	lb = max(lb, k)
	return min(lb, len(p.days))
}

func (p *pool) assignments(out *solver.Result) ([]model.Assignment, []string) {
	var slots []int
	var dayOf []int
	for g, dy := range p.days {
		slots = append(slots, dy.slots...)
		for range dy.slots {
			dayOf = append(dayOf, g)
		}
	}

	used := make(map[int]bool)
	var assignments []model.Assignment
	for i, sec := range p.sections {
		for _, k := range out.Slots[i] {
			assignments = append(assignments, model.Assignment{SectionID: sec.ID, SlotID: p.slots[slots[k]].ID})
			used[dayOf[k]] = true
		}
	}

	var active []day
	for g, dy := range p.days {
		if used[g] {
			active = append(active, dy)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].position < active[j].position })
	labels := make([]string, len(active))
	for i, dy := range active {
		labels[i] = dy.label
	}
	return assignments, labels
}

func (p *pool) deficitMap() map[string]int {
	m := make(map[string]int, len(p.sections))
	for i, sec := range p.sections {
		m[sec.ID] = p.deficit[i]
	}
	return m
}

func (p *pool) diagnostics() Diagnostics {
	var d Diagnostics
	for _, v := range p.deficit {
		d.TotalDeficit += v
	}
	sum := 0
	for _, secs := range p.students {
		load := 0
		for _, i := range secs {
			load += p.deficit[i]
		}
		sum += load
		d.MaxPending = max(d.MaxPending, load)
	}
	d.AffectedStudents = len(p.students)
	if d.AffectedStudents > 0 {
		d.MeanPending = float64(sum) / float64(d.AffectedStudents)
	}
	return d
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
