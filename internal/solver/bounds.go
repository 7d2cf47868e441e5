package solver

import (
	"fmt"
	"sort"
	"strings"
)

// usableSlots counts the slots one item can occupy, honoring the group cap.
func (p *Problem) usableSlots() int {
	perGroup := make([]int, p.groups())
	for s, c := range p.Capacity {
		if c > 0 {
			perGroup[p.group(s)]++
		}
	}
	n := 0
	for _, k := range perGroup {
		if p.GroupCap > 0 && k > p.GroupCap {
			k = p.GroupCap
		}
		n += k
	}
	return n
}

func (p *Problem) totalCapacity() int {
	n := 0
	for _, c := range p.Capacity {
		if c > 0 {
			n += c
		}
	}
	return n
}

// Prove checks necessary conditions for a solution meeting every lower bound.
// A non-empty reason proves the problem infeasible.
func (p *Problem) Prove() string {
	usable := p.usableSlots()

	sumLower := 0
	for i := 0; i < p.items(); i++ {
		if p.Lower[i] > p.Upper[i] {
			return fmt.Sprintf("%s requires %d sessions but allows at most %d", p.name(i), p.Lower[i], p.Upper[i])
		}
		if p.Lower[i] > usable {
			return fmt.Sprintf("%s requires %d sessions but only %d slots are usable", p.name(i), p.Lower[i], usable)
		}
		sumLower += p.Lower[i]
	}

	if total := p.totalCapacity(); sumLower > total {
		return fmt.Sprintf("required sessions %d exceed total room capacity %d", sumLower, total)
	}

	// Items of a clique occupy distinct slots.
	plain := 0
	for _, c := range p.Capacity {
		if c > 0 {
			plain++
		}
	}
	for _, c := range p.Cliques {
		need := 0
		for _, i := range c.Items {
			need += p.Lower[i]
		}
		if need > plain {
			return fmt.Sprintf("%s needs %d sessions across %d sections but only %d slots exist", c.Name, need, len(c.Items), plain)
		}
	}
	return p.proveConflictCliques(plain)
}

// alwaysConflict reports whether i and j may share no slot at all.
func (p *Problem) alwaysConflict(i, j int) bool {
	if p.Shared != nil && p.Shared[i][j] {
		return true
	}
	if p.Faculty == nil || p.slots() == 0 {
		return false
	}
	for s := range p.Capacity {
		if f := p.Faculty[i][s]; f < 0 || f != p.Faculty[j][s] {
			return false
		}
	}
	return true
}

// proveConflictCliques grows a clique of the conflict graph greedily from
// every demanding item and checks that its members fit in distinct slots.
func (p *Problem) proveConflictCliques(slots int) string {
	n := p.items()
	var order []int
	for i := 0; i < n; i++ {
		if p.Lower[i] > 0 {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return p.Lower[order[a]] > p.Lower[order[b]] })

	adj := make([][]bool, n)
	for _, i := range order {
		adj[i] = make([]bool, n)
	}
	for a, i := range order {
		for _, j := range order[a+1:] {
			if p.alwaysConflict(i, j) {
				adj[i][j], adj[j][i] = true, true
			}
		}
	}

	for _, seed := range order {
		clique := []int{seed}
		need := p.Lower[seed]
		for _, j := range order {
			if j == seed {
				continue
			}
			joins := true
			for _, c := range clique {
				if !adj[j][c] {
					joins = false
					break
				}
			}
			if joins {
				clique = append(clique, j)
				need += p.Lower[j]
			}
		}
		if need > slots {
			sort.Ints(clique)
			names := make([]string, len(clique))
			for k, i := range clique {
				names[k] = p.name(i)
			}
			return fmt.Sprintf("%s pairwise conflict and need %d sessions but only %d slots exist",
				strings.Join(names, ", "), need, slots)
		}
	}
	return ""
}

// UpperBound returns an upper bound on the objective value.
func (p *Problem) UpperBound() int {
	if p.Objective == ObjectiveNone {
		return 0
	}
	usable := p.usableSlots()

	total, penalty := 0, 0
	for i := 0; i < p.items(); i++ {
		reach := min(p.Upper[i], usable)
		total += reach
		if p.Objective == ObjectiveSoftFloor && p.Floor[i] > reach {
			penalty += p.Penalty * (p.Floor[i] - reach)
		}
	}

	if capTotal := p.totalCapacity(); total > capTotal {
		total = capTotal
	}
	return total - penalty
}
