package solver

import (
	"context"
	"math/rand"
	"sort"
)

const (
	tabuTenure   = 7
	maxEjections = 2
	ctxCheck     = 64
)

// worker runs one seeded construction and local search.
type worker struct {
	id     int
	p      *Problem
	st     *state
	rng    *rand.Rand
	iter   int
	bound  int
	buf    []int
	order  []int
	budget int

	best          []placement
	bestViolation int
	bestValue     int
	cut           bool
}

type workerResult struct {
	id        int
	best      []placement
	violation int
	value     int
	cut       bool
	iter      int
}

func newWorker(id int, p *Problem, seed int64, budget, bound int) *worker {
	w := &worker{
		id:     id,
		p:      p,
		st:     newState(p),
		rng:    rand.New(rand.NewSource(seed + int64(id))),
		bound:  bound,
		budget: budget,
	}
	w.order = w.constructionOrder()
	return w
}

func (w *worker) run(ctx context.Context) workerResult {
	w.construct(ctx)
	w.record()
	if !w.done() {
		w.improve(ctx)
	}
	return workerResult{id: w.id, best: w.best, violation: w.bestViolation, value: w.bestValue, cut: w.cut, iter: w.iter}
}

// constructionOrder puts the most demanding and most entangled items first.
// Workers other than the first shuffle ties.
func (w *worker) constructionOrder() []int {
	p := w.p
	n := p.items()
	degree := make([]int, n)
	if p.Shared != nil {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if p.Shared[i][j] {
					degree[i]++
				}
			}
		}
	}
	demand := func(i int) int {
		d := p.Lower[i]
		if p.Floor != nil && p.Floor[i] > d {
			d = p.Floor[i]
		}
		return d
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if w.id > 0 {
		w.rng.Shuffle(n, func(a, b int) { order[a], order[b] = order[b], order[a] })
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if da, db := demand(ia), demand(ib); da != db {
			return da > db
		}
		return degree[ia] > degree[ib]
	})
	return order
}

// construct fills items round-robin, floor first and then ceiling.
func (w *worker) construct(ctx context.Context) {
	p := w.p
	targets := [][]int{p.Lower}
	if p.Objective == ObjectiveSoftFloor {
		targets = append(targets, p.Floor)
	}
	if p.Objective != ObjectiveNone {
		targets = append(targets, p.Upper)
	}

	for _, target := range targets {
		for progress := true; progress; {
			if ctx.Err() != nil {
				w.cut = true
				return
			}
			progress = false
			for _, i := range w.order {
				if w.st.count[i] >= target[i] {
					continue
				}
				if w.insert(i) || w.relocateAndInsert(i) {
					progress = true
				}
			}
		}
	}
}

// improve runs tabu local search until the bound, the budget or the deadline.
func (w *worker) improve(ctx context.Context) {
	stagnation := 0
	patience := 50 + 2*w.p.items()

	for w.iter = 0; w.iter < w.budget; w.iter++ {
		if w.iter%ctxCheck == 0 && ctx.Err() != nil {
			w.cut = true
			return
		}

		i, ok := w.pickItem()
		if !ok {
			return
		}

		moved := w.insert(i) || w.relocateAndInsert(i) || w.swapOut(i)
		if moved && w.record() {
			stagnation = 0
			if w.done() {
				return
			}
			continue
		}

		stagnation++
		if stagnation > patience {
			w.kick()
			stagnation = 0
		}
	}
}

// pickItem chooses an item whose extra placement would help.
func (w *worker) pickItem() (int, bool) {
	st, p := w.st, w.p
	var short, open []int
	for i := 0; i < p.items(); i++ {
		if st.count[i] < p.Lower[i] {
			short = append(short, i)
		} else if st.count[i] < p.Upper[i] && p.Objective != ObjectiveNone {
			open = append(open, i)
		}
	}
	switch {
	case len(short) > 0:
		return short[w.rng.Intn(len(short))], true
	case len(open) > 0:
		return open[w.rng.Intn(len(open))], true
	}
	return 0, false
}

// insert places i in its best free slot: least used group first, then the
// fullest slot.
func (w *worker) insert(i int) bool {
	st := w.st
	m := w.p.slots()
	if m == 0 {
		return false
	}
	best, bestGroup, bestLoad := -1, 0, 0
	start := w.rng.Intn(m)
	for k := 0; k < m; k++ {
		s := (start + k) % m
		if st.tabu[i][s] > w.iter || !st.canPlace(i, s) {
			continue
		}
		g, load := st.perGroup[i][w.p.group(s)], len(st.occ[s])
		if best < 0 || g < bestGroup || (g == bestGroup && load > bestLoad) {
			best, bestGroup, bestLoad = s, g, load
		}
	}
	if best < 0 {
		return false
	}
	st.place(i, best)
	return true
}

// relocateAndInsert frees a slot for i by moving up to two occupants elsewhere.
func (w *worker) relocateAndInsert(i int) bool {
	st := w.st
	m := w.p.slots()
	if m == 0 {
		return false
	}
	start := w.rng.Intn(m)
	for k := 0; k < m; k++ {
		s := (start + k) % m
		if st.tabu[i][s] > w.iter || !st.admissible(i, s) {
			continue
		}
		conflicting, needRoom := st.blockers(i, s, w.buf)
		w.buf = conflicting
		eject := append([]int(nil), conflicting...)
		if needRoom {
			extra := w.movableOccupant(s, i, conflicting)
			if extra < 0 {
				continue
			}
			eject = append(eject, extra)
		}
		if len(eject) == 0 || len(eject) > maxEjections {
			continue
		}
		if w.relocate(eject, s) {
			if st.canPlace(i, s) {
				st.place(i, s)
				return true
			}
		}
	}
	return false
}

// relocate moves every item of eject out of s into another slot, undoing all
// moves if one fails.
func (w *worker) relocate(eject []int, s int) bool {
	st := w.st
	type move struct{ item, to int }
	var done []move
	for _, e := range eject {
		st.remove(e, s)
		to := w.alternative(e, s)
		if to < 0 {
			st.place(e, s)
			for k := len(done) - 1; k >= 0; k-- {
				st.remove(done[k].item, done[k].to)
				st.place(done[k].item, s)
			}
			return false
		}
		st.place(e, to)
		done = append(done, move{e, to})
	}
	for _, d := range done {
		st.tabu[d.item][s] = w.iter + tabuTenure
	}
	return true
}

func (w *worker) alternative(e, from int) int {
	st := w.st
	m := w.p.slots()
	start := w.rng.Intn(m)
	for k := 0; k < m; k++ {
		s := (start + k) % m
		if s != from && st.tabu[e][s] <= w.iter && st.canPlace(e, s) {
			return s
		}
	}
	return -1
}

// movableOccupant picks a non-conflicting occupant of s to make room for i.
func (w *worker) movableOccupant(s, i int, conflicting []int) int {
	occ := w.st.occ[s]
	if len(occ) == 0 {
		return -1
	}
	start := w.rng.Intn(len(occ))
	for k := 0; k < len(occ); k++ {
		j := occ[(start+k)%len(occ)]
		if j != i && !contains(conflicting, j) {
			return j
		}
	}
	return -1
}

// swapOut replaces a single blocker of i when the exchange does not worsen the score.
func (w *worker) swapOut(i int) bool {
	st := w.st
	m := w.p.slots()
	if m == 0 {
		return false
	}
	gv, gval := st.gain(i)
	start := w.rng.Intn(m)
	for k := 0; k < m; k++ {
		s := (start + k) % m
		if st.tabu[i][s] > w.iter || !st.admissible(i, s) {
			continue
		}
		conflicting, needRoom := st.blockers(i, s, w.buf)
		w.buf = conflicting
		var victim int
		switch {
		case len(conflicting) == 1 && !needRoom:
			victim = conflicting[0]
		case len(conflicting) == 0 && needRoom:
			victim = w.cheapestOccupant(s)
		default:
			continue
		}
		lv, lval := st.loss(victim)
		dv, dval := gv+lv, gval+lval
		if dv > 0 || (dv == 0 && dval < 0) {
			continue
		}
		st.remove(victim, s)
		if !st.canPlace(i, s) {
			st.place(victim, s)
			continue
		}
		st.place(i, s)
		st.tabu[victim][s] = w.iter + tabuTenure
		return true
	}
	return false
}

func (w *worker) cheapestOccupant(s int) int {
	st := w.st
	best, bestV, bestVal := -1, 0, 0
	for _, j := range st.occ[s] {
		lv, lval := st.loss(j)
		if best < 0 || lv < bestV || (lv == bestV && lval > bestVal) {
			best, bestV, bestVal = j, lv, lval
		}
	}
	return best
}

// kick removes a few placements of items above their lower bound.
func (w *worker) kick() {
	st, p := w.st, w.p
	var pool []placement
	for i := 0; i < p.items(); i++ {
		if st.count[i] <= p.Lower[i] {
			continue
		}
		for s, on := range st.on[i] {
			if on {
				pool = append(pool, placement{i, s})
			}
		}
	}
	if len(pool) == 0 {
		return
	}
	n := 1 + w.rng.Intn(max(2, len(pool)/50))
	for k := 0; k < n && len(pool) > 0; k++ {
		idx := w.rng.Intn(len(pool))
		pl := pool[idx]
		pool[idx] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
		if st.on[pl.item][pl.slot] && st.count[pl.item] > p.Lower[pl.item] {
			st.remove(pl.item, pl.slot)
			st.tabu[pl.item][pl.slot] = w.iter + tabuTenure
		}
	}
}

// record keeps the current state when it beats the best so far.
func (w *worker) record() bool {
	v, val := w.st.score()
	if w.best != nil && !better(v, val, w.bestViolation, w.bestValue) {
		return false
	}
	w.best = w.st.snapshot()
	w.bestViolation, w.bestValue = v, val
	return true
}

func (w *worker) done() bool {
	if w.bestViolation > 0 {
		return false
	}
	return w.p.Objective == ObjectiveNone || w.bestValue >= w.bound
}

func better(v1, val1, v2, val2 int) bool {
	if v1 != v2 {
		return v1 < v2
	}
	return val1 > val2
}

func contains(s []int, x int) bool {
	for _, v := range s {
		if v == x {
			return true
		}
	}
	return false
}
