package solver

import (
	"context"

	"github.com/crillab/gophersat/solver"
)

const (
	// maxExactVars and maxExactClauses bound the models handed to the
	// pseudo-boolean solver.
	maxExactVars    = 20000
	maxExactClauses = 400000
)

type exactOutcome int

const (
	exactSkipped exactOutcome = iota
	exactUndecided
	exactUnsat
	exactSat
)

// exactLowerBounds decides whether any assignment meets every lower bound.
// Items are encoded as one boolean per (item, slot) with cardinality
// constraints for bounds, capacities and group caps, and binary clauses for
// conflicts. On exactSat the returned state holds the assignment.
//
// The pseudo-boolean solver cannot be interrupted, so a search still running
// when ctx ends is abandoned and finishes in the background. The size limits
// keep such searches short.
func exactLowerBounds(ctx context.Context, p *Problem) (exactOutcome, *state) {
	n, m := p.items(), p.slots()
	if n == 0 || m == 0 || n*m > maxExactVars {
		return exactSkipped, nil
	}
	lit := func(i, s int) int { return i*m + s + 1 }

	var constrs []solver.PBConstr
	clauses := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for s := 0; s < m; s++ {
				if !p.conflicts(i, j, s) {
					continue
				}
				if clauses++; clauses > maxExactClauses {
					return exactSkipped, nil
				}
				constrs = append(constrs, solver.PropClause(-lit(i, s), -lit(j, s)))
			}
		}
	}

	for i := 0; i < n; i++ {
		row := make([]int, 0, m)
		groups := make(map[int][]int)
		for s := 0; s < m; s++ {
			if p.Capacity[s] <= 0 {
				constrs = append(constrs, solver.PropClause(-lit(i, s)))
				continue
			}
			row = append(row, lit(i, s))
			groups[p.group(s)] = append(groups[p.group(s)], lit(i, s))
		}
		if p.Lower[i] > len(row) {
			return exactUnsat, nil
		}
		if p.Lower[i] > 0 {
			constrs = append(constrs, solver.AtLeast(row, p.Lower[i]))
		}
		if p.Upper[i] < len(row) {
			constrs = append(constrs, solver.AtMost(row, p.Upper[i]))
		}
		if p.GroupCap > 0 {
			for _, lits := range groups {
				if p.GroupCap < len(lits) {
					constrs = append(constrs, solver.AtMost(lits, p.GroupCap))
				}
			}
		}
	}

	for s := 0; s < m; s++ {
		if p.Capacity[s] <= 0 || p.Capacity[s] >= n {
			continue
		}
		col := make([]int, n)
		for i := range col {
			col[i] = lit(i, s)
		}
		constrs = append(constrs, solver.AtMost(col, p.Capacity[s]))
	}

	sat := solver.New(solver.ParsePBConstrs(constrs))
	status := make(chan solver.Status, 1)
	go func() { status <- sat.Solve() }()

	select {
	case <-ctx.Done():
		return exactUndecided, nil
	case st := <-status:
		switch st {
		case solver.Unsat:
			return exactUnsat, nil
		case solver.Sat:
		default:
			return exactUndecided, nil
		}
	}

	model := sat.Model()
	out := newState(p)
	for i := 0; i < n; i++ {
		for s := 0; s < m; s++ {
			if v := lit(i, s) - 1; v < len(model) && model[v] {
				out.place(i, s)
			}
		}
	}
	return exactSat, out
}
