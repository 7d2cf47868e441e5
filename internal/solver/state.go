package solver

// placement is one (item, slot) pair of a snapshot.
type placement struct {
	item, slot int
}

// state is the mutable assignment explored by a single worker.
type state struct {
	p        *Problem
	on       [][]bool
	count    []int
	occ      [][]int
	perGroup [][]int
	tabu     [][]int
	total    int
}

func newState(p *Problem) *state {
	n, m, g := p.items(), p.slots(), p.groups()
	st := &state{
		p:        p,
		on:       make([][]bool, n),
		count:    make([]int, n),
		occ:      make([][]int, m),
		perGroup: make([][]int, n),
		tabu:     make([][]int, n),
	}
	for i := 0; i < n; i++ {
		st.on[i] = make([]bool, m)
		st.perGroup[i] = make([]int, g)
		st.tabu[i] = make([]int, m)
	}
	return st
}

// admissible checks the item-local rules for putting i in s, ignoring occupants.
func (st *state) admissible(i, s int) bool {
	p := st.p
	if p.Capacity[s] <= 0 || st.on[i][s] || st.count[i] >= p.Upper[i] {
		return false
	}
	return p.GroupCap <= 0 || st.perGroup[i][p.group(s)] < p.GroupCap
}

func (st *state) canPlace(i, s int) bool {
	if !st.admissible(i, s) || len(st.occ[s]) >= st.p.Capacity[s] {
		return false
	}
	for _, j := range st.occ[s] {
		if st.p.conflicts(i, j, s) {
			return false
		}
	}
	return true
}

// blockers lists the occupants of s that conflict with i. needRoom is set when
// s stays full even without them.
func (st *state) blockers(i, s int, buf []int) (conflicting []int, needRoom bool) {
	conflicting = buf[:0]
	for _, j := range st.occ[s] {
		if st.p.conflicts(i, j, s) {
			conflicting = append(conflicting, j)
		}
	}
	return conflicting, len(st.occ[s])-len(conflicting) >= st.p.Capacity[s]
}

func (st *state) place(i, s int) {
	st.on[i][s] = true
	st.count[i]++
	st.perGroup[i][st.p.group(s)]++
	st.occ[s] = append(st.occ[s], i)
	st.total++
}

func (st *state) remove(i, s int) {
	st.on[i][s] = false
	st.count[i]--
	st.perGroup[i][st.p.group(s)]--
	occ := st.occ[s]
	for k, j := range occ {
		if j == i {
			occ[k] = occ[len(occ)-1]
			st.occ[s] = occ[:len(occ)-1]
			break
		}
	}
	st.total--
}

// score returns the lower-bound violation and the objective value.
func (st *state) score() (violation, value int) {
	p := st.p
	shortfall := 0
	for i, n := range st.count {
		if d := p.Lower[i] - n; d > 0 {
			violation += d
		}
		if p.Objective == ObjectiveSoftFloor {
			if d := p.Floor[i] - n; d > 0 {
				shortfall += d
			}
		}
	}
	switch p.Objective {
	case ObjectiveMaxTotal:
		value = st.total
	case ObjectiveSoftFloor:
		value = st.total - p.Penalty*shortfall
	}
	return violation, value
}

// gain is the change of (violation, value) when item i gains one placement.
func (st *state) gain(i int) (dViolation, dValue int) {
	p := st.p
	if st.count[i] < p.Lower[i] {
		dViolation = -1
	}
	switch p.Objective {
	case ObjectiveMaxTotal:
		dValue = 1
	case ObjectiveSoftFloor:
		dValue = 1
		if st.count[i] < p.Floor[i] {
			dValue += p.Penalty
		}
	}
	return dViolation, dValue
}

// loss is the change of (violation, value) when item i loses one placement.
func (st *state) loss(i int) (dViolation, dValue int) {
	p := st.p
	if st.count[i] <= p.Lower[i] {
		dViolation = 1
	}
	switch p.Objective {
	case ObjectiveMaxTotal:
		dValue = -1
	case ObjectiveSoftFloor:
		dValue = -1
		if st.count[i] <= p.Floor[i] {
			dValue -= p.Penalty
		}
	}
	return dViolation, dValue
}

func (st *state) snapshot() []placement {
	out := make([]placement, 0, st.total)
	for i, row := range st.on {
		for s, on := range row {
			if on {
				out = append(out, placement{i, s})
			}
		}
	}
	return out
}
