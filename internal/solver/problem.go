// Package solver searches bounded 0/1 assignments of items to capacity-limited
// slots under pairwise conflicts.
package solver

import (
	"fmt"

	"github.com/rhyrak/term-scheduler/pkg/errors"
)

// Objective selects what the search optimizes once lower bounds are met.
type Objective int

const (
	// ObjectiveNone only asks for every lower bound to be met.
	ObjectiveNone Objective = iota
	// ObjectiveMaxTotal maximizes the number of placements.
	ObjectiveMaxTotal
	// ObjectiveSoftFloor maximizes placements minus Penalty per unit below Floor.
	ObjectiveSoftFloor
)

func (o Objective) String() string {
	switch o {
	case ObjectiveNone:
		return "none"
	case ObjectiveMaxTotal:
		return "max_total"
	case ObjectiveSoftFloor:
		return "soft_floor"
	}
	return fmt.Sprintf("objective(%d)", int(o))
}

// Clique is a set of items that can never share a slot.
type Clique struct {
	Name  string
	Items []int
}

// Problem describes one assignment instance. Items are placed at most once per
// slot; Lower and Upper bound the placements of each item.
type Problem struct {
	Names []string
	Lower []int
	Upper []int
	// Floor is the soft target used by ObjectiveSoftFloor.
	Floor []int

	Capacity []int
	// Group partitions slots (weeks or days). Nil means a single group.
	Group []int
	// GroupCap limits the placements of one item inside a group. Zero disables it.
	GroupCap int

	// Shared marks item pairs that may never share a slot.
	Shared [][]bool
	// Faculty holds an identity per item and slot; equal non-negative values
	// may not share the slot. Nil disables the check.
	Faculty [][]int

	Objective Objective
	Penalty   int

	// Cliques feed the infeasibility proofs.
	Cliques []Clique
}

func (p *Problem) items() int { return len(p.Lower) }

func (p *Problem) slots() int { return len(p.Capacity) }

func (p *Problem) groups() int {
	n := 0
	for _, g := range p.Group {
		if g+1 > n {
			n = g + 1
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

func (p *Problem) group(s int) int {
	if p.Group == nil {
		return 0
	}
	return p.Group[s]
}

// conflicts reports whether items i and j may not share slot s.
func (p *Problem) conflicts(i, j, s int) bool {
	if p.Shared != nil && p.Shared[i][j] {
		return true
	}
	if p.Faculty != nil {
		f := p.Faculty[i][s]
		return f >= 0 && f == p.Faculty[j][s]
	}
	return false
}

func (p *Problem) validate() error {
	n, m := p.items(), p.slots()
	bad := func(format string, args ...any) error {
		return errors.Clonef(errors.ErrInternal, "invalid problem: "+format, args...)
	}
	if len(p.Upper) != n || (p.Floor != nil && len(p.Floor) != n) || (p.Names != nil && len(p.Names) != n) {
		return bad("per-item slices disagree on length %d", n)
	}
	if p.Group != nil && len(p.Group) != m {
		return bad("group has %d entries for %d slots", len(p.Group), m)
	}
	if p.Shared != nil && len(p.Shared) != n {
		return bad("shared matrix has %d rows for %d items", len(p.Shared), n)
	}
	if p.Faculty != nil && len(p.Faculty) != n {
		return bad("faculty matrix has %d rows for %d items", len(p.Faculty), n)
	}
	if p.Objective == ObjectiveSoftFloor && p.Floor == nil {
		return bad("soft floor objective without floors")
	}
	for i := 0; i < n; i++ {
		if p.Shared != nil && len(p.Shared[i]) != n {
			return bad("shared row %d has %d entries", i, len(p.Shared[i]))
		}
		if p.Faculty != nil && len(p.Faculty[i]) != m {
			return bad("faculty row %d has %d entries", i, len(p.Faculty[i]))
		}
	}
	return nil
}

func (p *Problem) name(i int) string {
	if p.Names != nil {
		return p.Names[i]
	}
	return fmt.Sprintf("item %d", i)
}
