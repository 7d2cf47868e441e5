package scheduler

import (
	"github.com/rhyrak/term-scheduler/internal/solver"
	"github.com/rhyrak/term-scheduler/pkg/config"
)

// Mode selects the objective of the primary engine.
type Mode string

const (
	ModeFeasibility Mode = config.AssignModeFeasibility
	ModeMaximize    Mode = config.AssignModeMaximize
	ModeSoftFloor   Mode = config.AssignModeSoftFloor
)

// Options configures one engine run.
type Options struct {
	Mode      Mode
	Floor     int
	Ceiling   int
	WeeklyCap int
	Penalty   int
	// FacultyBoundaryWeek applies to split courses without an explicit boundary.
	FacultyBoundaryWeek int
	Solver              solver.Options
}

// NewOptions maps the run configuration onto engine options.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Mode:                Mode(cfg.Assignment.Mode),
		Floor:               cfg.Assignment.Floor,
		Ceiling:             cfg.Assignment.Ceiling,
		WeeklyCap:           cfg.Assignment.WeeklyCap,
		Penalty:             cfg.Assignment.SoftFloorPenalty,
		FacultyBoundaryWeek: cfg.Assignment.FacultyBoundaryWeek,
		Solver: solver.Options{
			TimeLimit:  cfg.Solver.TimeLimit,
			Workers:    cfg.Solver.Workers,
			Iterations: cfg.Solver.Iterations,
			Seed:       cfg.Solver.Seed,
		},
	}
}

func (m Mode) objective() solver.Objective {
	switch m {
	case ModeMaximize:
		return solver.ObjectiveMaxTotal
	case ModeSoftFloor:
		return solver.ObjectiveSoftFloor
	}
	return solver.ObjectiveNone
}

// hardFloor is the lower bound enforced on every section.
func (o Options) hardFloor() int {
	if o.Mode == ModeSoftFloor {
		return 0
	}
	return o.Floor
}

func containsINT(s []int, e int) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}
