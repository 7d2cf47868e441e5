package solver

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status classifies a search outcome.
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"
	StatusFeasible   Status = "FEASIBLE"
	StatusTimedOut   Status = "TIMED_OUT"
	StatusInfeasible Status = "INFEASIBLE"
	// StatusUnknown means no solution was found and none was proven impossible.
	StatusUnknown Status = "UNKNOWN"
)

// Usable reports whether the result carries an assignment meeting every lower bound.
func (s Status) Usable() bool {
	return s == StatusOptimal || s == StatusFeasible || s == StatusTimedOut
}

type Options struct {
	TimeLimit  time.Duration
	Workers    int
	Iterations int
	Seed       int64
	Log        *zap.Logger
}

type Result struct {
	Status Status
	// Slots lists the slots of every item in ascending order.
	Slots     [][]int
	Counts    []int
	Total     int
	Value     int
	Bound     int
	Violation int
	// Reason explains an infeasible status.
	Reason string
	// Cut is set when the deadline or the caller stopped the search.
	Cut bool
	// Exact is set when the pseudo-boolean solver decided the outcome.
	Exact   bool
	Worker  int
	Elapsed time.Duration
}

// Solve searches the problem with parallel seeded workers under one deadline.
// The returned error is reserved for malformed problems.
func Solve(ctx context.Context, p *Problem, opts Options) (*Result, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Iterations < 1 {
		opts.Iterations = 1
	}

	start := time.Now()
	bound := p.UpperBound()

	if reason := p.Prove(); reason != "" {
		log.Warn("problem proven infeasible", zap.String("reason", reason))
		return &Result{Status: StatusInfeasible, Reason: reason, Bound: bound, Elapsed: time.Since(start)}, nil
	}

	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}

	// A worker reaching the bound stops the workers with higher ids. Lower ids
	// keep running, so the lowest id reaching the bound always wins.
	results := make([]workerResult, opts.Workers)
	stopped := make([]atomic.Bool, opts.Workers)
	cancels := make([]context.CancelFunc, opts.Workers)
	g, gctx := errgroup.WithContext(ctx)
	wctx := make([]context.Context, opts.Workers)
	for k := range wctx {
		wctx[k], cancels[k] = context.WithCancel(gctx)
		defer cancels[k]()
	}
	for k := 0; k < opts.Workers; k++ {
		k := k
		g.Go(func() error {
			w := newWorker(k, p, opts.Seed, opts.Iterations, bound)
			results[k] = w.run(wctx[k])
			if w.done() {
				for j := k + 1; j < opts.Workers; j++ {
					stopped[j].Store(true)
					cancels[j]()
				}
			}
			log.Debug("worker finished",
				zap.Int("worker", k),
				zap.Int("iterations", results[k].iter),
				zap.Int("violation", results[k].violation),
				zap.Int("value", results[k].value),
				zap.Bool("cut", results[k].cut),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	cut := false
	for k, r := range results {
		cut = cut || (r.cut && !stopped[k].Load())
	}

	sort.SliceStable(results, func(a, b int) bool {
		ra, rb := results[a], results[b]
		if better(ra.violation, ra.value, rb.violation, rb.value) {
			return true
		}
		if better(rb.violation, rb.value, ra.violation, ra.value) {
			return false
		}
		return ra.id < rb.id
	})
	best := results[0]

	// The heuristic missed the lower bounds: let the exact solver decide.
	exact := exactSkipped
	if best.violation > 0 && !cut {
		var st *state
		exact, st = exactLowerBounds(ctx, p)
		switch exact {
		case exactSat:
			best = workerResult{id: -1, best: st.snapshot()}
			best.violation, best.value = st.score()
		case exactUndecided:
			cut = ctx.Err() != nil
		}
	}

	res := &Result{
		Slots:     make([][]int, p.items()),
		Counts:    make([]int, p.items()),
		Value:     best.value,
		Bound:     bound,
		Violation: best.violation,
		Cut:       cut,
		Exact:     exact == exactSat || exact == exactUnsat,
		Worker:    best.id,
		Elapsed:   time.Since(start),
	}
	if exact == exactUnsat {
		best.best = nil
		res.Value = 0
	}
	for _, pl := range best.best {
		res.Slots[pl.item] = append(res.Slots[pl.item], pl.slot)
		res.Counts[pl.item]++
		res.Total++
	}
	for i := range res.Slots {
		sort.Ints(res.Slots[i])
	}

	switch {
	case exact == exactUnsat:
		res.Status = StatusInfeasible
		res.Reason = "exhaustive search found no assignment meeting every lower bound"
	case best.violation > 0:
		res.Status = StatusUnknown
	case p.Objective == ObjectiveNone || best.value >= bound:
		res.Status = StatusOptimal
	case cut:
		res.Status = StatusTimedOut
	default:
		res.Status = StatusFeasible
	}

	log.Info("search finished",
		zap.String("objective", p.Objective.String()),
		zap.String("status", string(res.Status)),
		zap.Int("total", res.Total),
		zap.Int("value", res.Value),
		zap.Int("bound", res.Bound),
		zap.Int("violation", res.Violation),
		zap.Int("worker", res.Worker),
		zap.Bool("cut", res.Cut),
		zap.Bool("exact", res.Exact),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}
