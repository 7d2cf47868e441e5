package solver

import (
	"context"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opts() Options {
	return Options{TimeLimit: 10 * time.Second, Workers: 2, Iterations: 2000, Seed: 7}
}

func uniform(n, c int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func matrix(n int, pairs ...[2]int) [][]bool {
	m := make([][]bool, n)
	for i := range m {
		m[i] = make([]bool, n)
	}
	for _, p := range pairs {
		m[p[0]][p[1]] = true
		m[p[1]][p[0]] = true
	}
	return m
}

// checkAssignment verifies every hard rule of a solved problem.
func checkAssignment(t *testing.T, p *Problem, res *Result) {
	t.Helper()
	occ := make([][]int, len(p.Capacity))
	for i, slots := range res.Slots {
		require.Len(t, slots, res.Counts[i])
		assert.LessOrEqual(t, res.Counts[i], p.Upper[i], "upper bound of %d", i)
		if res.Status.Usable() {
			assert.GreaterOrEqual(t, res.Counts[i], p.Lower[i], "lower bound of %d", i)
		}
		perGroup := map[int]int{}
		for k, s := range slots {
			if k > 0 {
				require.Less(t, slots[k-1], s, "duplicate slot for %d", i)
			}
			occ[s] = append(occ[s], i)
			perGroup[p.group(s)]++
		}
		if p.GroupCap > 0 {
			for g, n := range perGroup {
				assert.LessOrEqual(t, n, p.GroupCap, "group %d of item %d", g, i)
			}
		}
	}
	for s, items := range occ {
		assert.LessOrEqual(t, len(items), p.Capacity[s], "capacity of slot %d", s)
		for a := 0; a < len(items); a++ {
			for b := a + 1; b < len(items); b++ {
				assert.False(t, p.conflicts(items[a], items[b], s), "items %d and %d share slot %d", items[a], items[b], s)
			}
		}
	}
}

func TestMaxTotalReachesBound(t *testing.T) {
	p := &Problem{
		Lower:     uniform(3, 0),
		Upper:     uniform(3, 2),
		Capacity:  uniform(4, 1),
		Objective: ObjectiveMaxTotal,
	}
	res, err := Solve(context.Background(), p, opts())
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, res.Status)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 4, res.Bound)
	checkAssignment(t, p, res)
}

func TestSharedStudentsNeverMeet(t *testing.T) {
	p := &Problem{
		Lower:     []int{1, 1},
		Upper:     []int{3, 3},
		Capacity:  uniform(3, 2),
		Shared:    matrix(2, [2]int{0, 1}),
		Objective: ObjectiveMaxTotal,
	}
	res, err := Solve(context.Background(), p, opts())
	require.NoError(t, err)
	assert.Equal(t, StatusFeasible, res.Status)
	assert.Equal(t, 3, res.Total)
	checkAssignment(t, p, res)
}

func TestFacultyIdentityPerSlot(t *testing.T) {
	// Both items share faculty 0 in slot 0 only.
	p := &Problem{
		Lower:     []int{2, 2},
		Upper:     []int{2, 2},
		Capacity:  uniform(2, 2),
		Faculty:   [][]int{{0, 0}, {0, 1}},
		Objective: ObjectiveNone,
	}
	res, err := Solve(context.Background(), p, opts())
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, res.Status)
	assert.True(t, res.Exact)
	assert.False(t, res.Cut)

	p.Lower = []int{1, 1}
	res, err = Solve(context.Background(), p, opts())
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, res.Status)
	checkAssignment(t, p, res)
}

func TestProveItemLowerBound(t *testing.T) {
	p := &Problem{
		Names:    []string{"FIN_A"},
		Lower:    []int{5},
		Upper:    []int{5},
		Capacity: uniform(4, 3),
	}
	res, err := Solve(context.Background(), p, opts())
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, res.Status)
	assert.Contains(t, res.Reason, "FIN_A requires 5 sessions but only 4 slots are usable")
}

func TestProveClique(t *testing.T) {
	p := &Problem{
		Lower:    []int{3, 2},
		Upper:    []int{3, 2},
		Capacity: uniform(4, 2),
		Shared:   matrix(2, [2]int{0, 1}),
		Cliques:  []Clique{{Name: "student S1", Items: []int{0, 1}}},
	}
	res, err := Solve(context.Background(), p, opts())
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, res.Status)
	assert.Contains(t, res.Reason, "student S1")
}

func TestProveTotalCapacity(t *testing.T) {
	p := &Problem{
		Lower:    []int{2, 2, 2},
		Upper:    []int{2, 2, 2},
		Capacity: []int{2, 2, 1},
	}
	assert.Contains(t, p.Prove(), "exceed total room capacity 5")
}

func TestGroupCap(t *testing.T) {
	p := &Problem{
		Lower:     []int{0},
		Upper:     []int{6},
		Capacity:  uniform(6, 1),
		Group:     []int{0, 0, 0, 1, 1, 1},
		GroupCap:  1,
		Objective: ObjectiveMaxTotal,
	}
	res, err := Solve(context.Background(), p, opts())
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, res.Status)
	assert.Equal(t, 2, res.Total)
	checkAssignment(t, p, res)
}

func TestSoftFloorPrefersCoveringFloors(t *testing.T) {
	// Two single-room slots; only item 1 has a floor.
	p := &Problem{
		Lower:     []int{0, 0},
		Upper:     []int{2, 2},
		Floor:     []int{0, 2},
		Capacity:  uniform(2, 1),
		Objective: ObjectiveSoftFloor,
		Penalty:   5,
	}
	res, err := Solve(context.Background(), p, opts())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, res.Counts)
	assert.Equal(t, 2, res.Value)
	assert.Equal(t, StatusOptimal, res.Status)
}

func TestExactDemand(t *testing.T) {
	p := &Problem{
		Lower:     []int{4, 3, 2},
		Upper:     []int{4, 3, 2},
		Capacity:  uniform(7, 2),
		Shared:    matrix(3, [2]int{0, 1}),
		Objective: ObjectiveNone,
	}
	res, err := Solve(context.Background(), p, opts())
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)
	assert.Equal(t, []int{4, 3, 2}, res.Counts)
	checkAssignment(t, p, res)
}

func TestDeterministicForSeed(t *testing.T) {
	p := randomProblem(rand.New(rand.NewSource(3)), 12, 20)
	first, err := Solve(context.Background(), p, opts())
	require.NoError(t, err)
	second, err := Solve(context.Background(), p, opts())
	require.NoError(t, err)
	assert.Equal(t, first.Slots, second.Slots)
	assert.Equal(t, first.Worker, second.Worker)
}

func TestInvalidProblem(t *testing.T) {
	_, err := Solve(context.Background(), &Problem{Lower: []int{1}, Upper: []int{}}, opts())
	require.Error(t, err)
}

func randomProblem(rng *rand.Rand, items, slots int) *Problem {
	p := &Problem{
		Lower:     make([]int, items),
		Upper:     make([]int, items),
		Capacity:  make([]int, slots),
		Group:     make([]int, slots),
		GroupCap:  3,
		Shared:    matrix(items),
		Faculty:   make([][]int, items),
		Objective: ObjectiveMaxTotal,
	}
	for s := range p.Capacity {
		p.Capacity[s] = 1 + rng.Intn(3)
		p.Group[s] = s / 5
	}
	for i := 0; i < items; i++ {
		p.Lower[i] = rng.Intn(2)
		p.Upper[i] = p.Lower[i] + rng.Intn(6)
		p.Faculty[i] = make([]int, slots)
		fac := rng.Intn(items / 2)
		for s := range p.Faculty[i] {
			p.Faculty[i][s] = fac
		}
		for j := 0; j < i; j++ {
			if rng.Intn(4) == 0 {
				p.Shared[i][j], p.Shared[j][i] = true, true
			}
		}
	}
	return p
}

func TestRandomProblemsRespectHardRules(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 25; round++ {
		p := randomProblem(rng, 6+rng.Intn(10), 10+rng.Intn(20))
		res, err := Solve(context.Background(), p, Options{TimeLimit: 5 * time.Second, Workers: 2, Iterations: 500, Seed: int64(round)})
		require.NoError(t, err)
		if res.Status == StatusInfeasible {
			continue
		}
		assert.LessOrEqual(t, res.Value, res.Bound)
		checkAssignment(t, p, res)
	}
}

func cycle(n int) [][]bool {
	var pairs [][2]int
	for i := 0; i < n; i++ {
		pairs = append(pairs, [2]int{i, (i + 1) % n})
	}
	return matrix(n, pairs...)
}

func TestProveConflictTriangle(t *testing.T) {
	// Every pair shares a student, so three sessions need three slots.
	p := &Problem{
		Names:     []string{"section A", "section B", "section C"},
		Lower:     uniform(3, 1),
		Upper:     uniform(3, 1),
		Capacity:  uniform(2, 3),
		Shared:    cycle(3),
		Objective: ObjectiveNone,
	}
	assert.Equal(t, "section A, section B, section C pairwise conflict and need 3 sessions but only 2 slots exist", p.Prove())

	res, err := Solve(context.Background(), p, opts())
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, res.Status)
	assert.False(t, res.Exact)
}

func TestProveConstantFacultyClique(t *testing.T) {
	p := &Problem{
		Lower:     uniform(3, 1),
		Upper:     uniform(3, 1),
		Capacity:  uniform(2, 3),
		Faculty:   [][]int{{4, 4}, {4, 4}, {4, 4}},
		Objective: ObjectiveNone,
	}
	assert.Contains(t, p.Prove(), "pairwise conflict")

	p.Faculty[2] = []int{4, 5}
	assert.Empty(t, p.Prove())
}

func TestExactSolverProvesOddCycle(t *testing.T) {
	// A five-cycle has no triangle but still needs three colors.
	p := &Problem{
		Lower:     uniform(5, 1),
		Upper:     uniform(5, 1),
		Capacity:  uniform(2, 5),
		Shared:    cycle(5),
		Objective: ObjectiveNone,
	}
	require.Empty(t, p.Prove())

	res, err := Solve(context.Background(), p, opts())
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, res.Status)
	assert.True(t, res.Exact)
	assert.False(t, res.Cut)
	assert.Contains(t, res.Reason, "exhaustive search")
}

func TestExactSolverFindsAssignment(t *testing.T) {
	p := &Problem{
		Lower:     []int{2, 2, 1},
		Upper:     []int{2, 3, 1},
		Capacity:  []int{1, 2, 2, 2, 0},
		Group:     []int{0, 0, 1, 1, 1},
		GroupCap:  1,
		Shared:    matrix(3, [2]int{0, 1}),
		Faculty:   [][]int{{0, 0, 0, 0, 0}, {1, 1, 1, 1, 1}, {0, 2, 2, 2, 2}},
		Objective: ObjectiveMaxTotal,
	}
	outcome, st := exactLowerBounds(context.Background(), p)
	require.Equal(t, exactSat, outcome)
	violation, _ := st.score()
	assert.Zero(t, violation)

	res := &Result{Status: StatusFeasible, Slots: make([][]int, 3), Counts: make([]int, 3)}
	for _, pl := range st.snapshot() {
		res.Slots[pl.item] = append(res.Slots[pl.item], pl.slot)
		res.Counts[pl.item]++
	}
	for i := range res.Slots {
		sort.Ints(res.Slots[i])
	}
	checkAssignment(t, p, res)
}

func TestDeadlineCutReportsTimedOut(t *testing.T) {
	// The bound of 6 is out of reach, so only the deadline stops the workers.
	p := &Problem{
		Lower:     []int{1, 1},
		Upper:     []int{3, 3},
		Capacity:  uniform(3, 2),
		Shared:    matrix(2, [2]int{0, 1}),
		Objective: ObjectiveMaxTotal,
	}
	res, err := Solve(context.Background(), p, Options{TimeLimit: 200 * time.Millisecond, Workers: 2, Iterations: 1 << 30, Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, StatusTimedOut, res.Status)
	assert.True(t, res.Cut)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 6, res.Bound)
	checkAssignment(t, p, res)
}

func TestWorkersStopOnceBoundReached(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	const items, weeks, perWeek = 60, 10, 40
	p := &Problem{
		Lower:     uniform(items, 18),
		Upper:     uniform(items, 20),
		Capacity:  make([]int, weeks*perWeek),
		Group:     make([]int, weeks*perWeek),
		Shared:    matrix(items),
		Objective: ObjectiveNone,
	}
	for s := range p.Capacity {
		p.Group[s] = s / perWeek
		p.Capacity[s] = 4
		if p.Group[s] < 4 {
			p.Capacity[s] = 10
		}
	}
	for student := 0; student < 150; student++ {
		picked := rng.Perm(items)[:3]
		for a := range picked {
			for b := a + 1; b < len(picked); b++ {
				p.Shared[picked[a]][picked[b]] = true
				p.Shared[picked[b]][picked[a]] = true
			}
		}
	}

	limit := 60 * time.Second
	res, err := Solve(context.Background(), p, Options{TimeLimit: limit, Workers: 8, Iterations: 200000, Seed: 1})
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)
	assert.False(t, res.Cut)
	assert.Less(t, res.Elapsed, limit/4)
	checkAssignment(t, p, res)
}
