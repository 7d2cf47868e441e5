package sectioner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhyrak/term-scheduler/pkg/config"
	"github.com/rhyrak/term-scheduler/pkg/errors"
	"github.com/rhyrak/term-scheduler/pkg/model"
)

func newSectioner(minCap, maxCap int, mode Mode) *Sectioner {
	return New(config.SectioningConfig{MinCap: minCap, MaxCap: maxCap, Mode: string(mode)}, nil)
}

func studentIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%03d", prefix, i)
	}
	return ids
}

func enrollmentsFor(courseID string, students []string) []*model.Enrollment {
	out := make([]*model.Enrollment, len(students))
	for i, s := range students {
		out[i] = &model.Enrollment{CourseID: courseID, StudentID: s}
	}
	return out
}

func sizesOf(res *Result) []int {
	sizes := make([]int, len(res.Sections))
	for i, s := range res.Sections {
		sizes[i] = s.Size
	}
	return sizes
}

func TestPlan(t *testing.T) {
	s := newSectioner(25, 70, ModeBalanced)

	sizes, err := s.Plan(145)
	require.NoError(t, err)
	assert.Equal(t, []int{49, 48, 48}, sizes)

	sizes, err = s.Plan(70)
	require.NoError(t, err)
	assert.Equal(t, []int{70}, sizes)

	sizes, err = s.Plan(10)
	require.NoError(t, err)
	assert.Equal(t, []int{10}, sizes)

	sizes, err = s.Plan(71)
	require.NoError(t, err)
	assert.Equal(t, []int{36, 35}, sizes)

	_, err = s.Plan(0)
	assert.ErrorIs(t, err, errors.ErrDataValidation)
}

func TestPlanInfeasible(t *testing.T) {
	s := newSectioner(40, 50, ModeBalanced)
	// 55 needs two sections but two sections of 40 need 80 students.
	_, err := s.Plan(55)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInfeasibleSectioning)
}

func TestBalancedScenario(t *testing.T) {
	s := newSectioner(25, 70, ModeBalanced)
	students := studentIDs("S", 145)

	res, err := s.Balanced("X", students)
	require.NoError(t, err)
	assert.Equal(t, []int{49, 48, 48}, sizesOf(res))
	assert.Equal(t, []string{"X_A", "X_B", "X_C"}, []string{res.Sections[0].ID, res.Sections[1].ID, res.Sections[2].ID})
	assert.Equal(t, "S000", res.Enrollments[0].StudentID)
	assert.Equal(t, "X_B", res.Enrollments[49].SectionID)
	require.NoError(t, Verify(res.Sections, res.Enrollments, enrollmentsFor("X", students)))
}

func TestIdentityRejectsThreeSections(t *testing.T) {
	s := newSectioner(25, 70, ModeIdentity)
	students := studentIDs("S", 145)

	_, err := s.IdentityPreserving("X", students, NewIdentity(students))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnsupportedSectionCount)
	assert.Contains(t, err.Error(), "course X")
}

func TestIdentityKeepsGroups(t *testing.T) {
	s := newSectioner(25, 70, ModeIdentity)
	population := studentIDs("S", 200)
	identity := NewIdentity(population)

	// Every student of the course lands in its identity group when sizes allow.
	course := population[:120]
	res, err := s.IdentityPreserving("X", course, identity)
	require.NoError(t, err)
	assert.Equal(t, []int{60, 60}, sizesOf(res))
	assert.Zero(t, Mismatches(res, identity))
}

func TestIdentitySkewedCourse(t *testing.T) {
	s := newSectioner(25, 70, ModeIdentity)
	population := studentIDs("S", 200)
	identity := NewIdentity(population)

	// 80 identity-0 students and 10 identity-1 students.
	var course []string
	for i := 0; i < 160; i += 2 {
		course = append(course, population[i])
	}
	for i := 1; i < 20; i += 2 {
		course = append(course, population[i])
	}

	res, err := s.IdentityPreserving("X", course, identity)
	require.NoError(t, err)
	// A is capped at min(70, 90-25) = 65.
	assert.Equal(t, []int{65, 25}, sizesOf(res))
	assert.Equal(t, 15, Mismatches(res, identity))

	moved := map[string]bool{}
	for _, e := range res.Enrollments {
		if e.SectionID == "X_B" && identity[e.StudentID] == 0 {
			moved[e.StudentID] = true
		}
	}
	// Highest ids move first.
	assert.True(t, moved[population[158]])
	assert.False(t, moved[population[0]])
	require.NoError(t, Verify(res.Sections, res.Enrollments, enrollmentsFor("X", course)))
}

// bruteForceMinMismatches enumerates every A/B split of a small course.
func bruteForceMinMismatches(students []string, identity Identity, minCap, maxCap int) int {
	n := len(students)
	best := -1
	for mask := 0; mask < 1<<n; mask++ {
		sizeB, mism := 0, 0
		for i, s := range students {
			inB := mask&(1<<i) != 0
			if inB {
				sizeB++
			}
			if inB != (identity[s] == 1) {
				mism++
			}
		}
		sizeA := n - sizeB
		if sizeA < minCap || sizeA > maxCap || sizeB < minCap || sizeB > maxCap {
			continue
		}
		if best < 0 || mism < best {
			best = mism
		}
	}
	return best
}

func TestIdentityMinimalAgainstBruteForce(t *testing.T) {
	const minCap, maxCap = 3, 7
	s := newSectioner(minCap, maxCap, ModeIdentity)
	population := studentIDs("P", 30)
	identity := NewIdentity(population)

	for seed := 0; seed < 40; seed++ {
		// Deterministic varied subsets of 8..14 students.
		var course []string
		for i, id := range population {
			if (i*7+seed*13)%(3+seed%4) != 0 {
				course = append(course, id)
			}
			if len(course) == 8+seed%7 {
				break
			}
		}
		res, err := s.IdentityPreserving("C", course, identity)
		if len(course) <= maxCap {
			require.NoError(t, err)
			continue
		}
		require.NoError(t, err, "seed %d", seed)
		assert.Equal(t, bruteForceMinMismatches(course, identity, minCap, maxCap), Mismatches(res, identity), "seed %d", seed)
	}
}

func TestSectionAllIsDeterministic(t *testing.T) {
	s := newSectioner(25, 70, ModeIdentity)
	var enrollments []*model.Enrollment
	enrollments = append(enrollments, enrollmentsFor("B", studentIDs("S", 100))...)
	enrollments = append(enrollments, enrollmentsFor("A", studentIDs("S", 30))...)

	first, err := s.SectionAll(enrollments, nil)
	require.NoError(t, err)
	second, err := s.SectionAll(enrollments, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "A_A", first.Sections[0].ID)
	assert.Len(t, first.Sections, 3)
	require.NoError(t, Verify(first.Sections, first.Enrollments, enrollments))
}

func TestVerifyCatchesMissingStudent(t *testing.T) {
	sections := []*model.Section{{ID: "X_A", CourseID: "X", Label: "A", Size: 1, MinCap: 1, MaxCap: 5}}
	assigned := []*model.SectionEnrollment{{SectionID: "X_A", StudentID: "S1"}}
	enrollments := enrollmentsFor("X", []string{"S1", "S2"})

	err := Verify(sections, assigned, enrollments)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDataValidation)
	assert.Contains(t, err.Error(), "student S2 of X has no section")
}
