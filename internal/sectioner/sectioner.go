// Package sectioner splits course enrollments into capacity-bounded sections.
package sectioner

import (
	"sort"

	"go.uber.org/zap"

	"github.com/rhyrak/term-scheduler/pkg/config"
	"github.com/rhyrak/term-scheduler/pkg/errors"
	"github.com/rhyrak/term-scheduler/pkg/model"
)

type Mode string

const (
	ModeBalanced Mode = config.SectionModeBalanced
	ModeIdentity Mode = config.SectionModeIdentity
)

// Identity maps every student of the population to group 0 (A) or 1 (B).
type Identity map[string]int

// NewIdentity sorts the population by id and alternates 0/1.
func NewIdentity(studentIDs []string) Identity {
	sorted := dedupeSorted(studentIDs)
	identity := make(Identity, len(sorted))
	for i, id := range sorted {
		identity[id] = i % 2
	}
	return identity
}

type Sectioner struct {
	MinCap int
	MaxCap int
	Mode   Mode
	log    *zap.Logger
}

func New(cfg config.SectioningConfig, log *zap.Logger) *Sectioner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sectioner{MinCap: cfg.MinCap, MaxCap: cfg.MaxCap, Mode: Mode(cfg.Mode), log: log}
}

// Result is the output of a sectioning run.
type Result struct {
	Sections    []*model.Section
	Enrollments []*model.SectionEnrollment
}

// Plan returns the balanced section sizes for n students.
func (s *Sectioner) Plan(n int) ([]int, error) {
	if n <= 0 {
		return nil, errors.Clone(errors.ErrDataValidation, "course has no enrolled students")
	}
	if n <= s.MaxCap {
		return []int{n}, nil
	}

	kMin := (n + s.MaxCap - 1) / s.MaxCap
	kMax := 0
	if s.MinCap > 0 {
		kMax = n / s.MinCap
	}
	if kMin > kMax {
		return nil, errors.Clonef(errors.ErrInfeasibleSectioning,
			"%d students cannot be split into sections of %d..%d (need at least %d sections, at most %d fit)",
			n, s.MinCap, s.MaxCap, kMin, kMax)
	}

	base, rem := n/kMin, n%kMin
	sizes := make([]int, kMin)
	for i := range sizes {
		sizes[i] = base
		if i < rem {
			sizes[i]++
		}
		if sizes[i] < s.MinCap || sizes[i] > s.MaxCap {
			return nil, errors.Clonef(errors.ErrInfeasibleSectioning,
				"section size %d outside %d..%d", sizes[i], s.MinCap, s.MaxCap)
		}
	}
	return sizes, nil
}

// Balanced assigns contiguous runs of id-sorted students to sections in label order.
func (s *Sectioner) Balanced(courseID string, students []string) (*Result, error) {
	sorted := dedupeSorted(students)
	sizes, err := s.Plan(len(sorted))
	if err != nil {
		return nil, courseError(courseID, err)
	}

	groups := make([][]string, len(sizes))
	offset := 0
	for i, size := range sizes {
		groups[i] = sorted[offset : offset+size]
		offset += size
	}
	return s.build(courseID, groups), nil
}

// IdentityPreserving splits a course in two so that as many students as
// possible land in the section matching their identity group. Courses that
// fit one section behave like Balanced.
func (s *Sectioner) IdentityPreserving(courseID string, students []string, identity Identity) (*Result, error) {
	sorted := dedupeSorted(students)
	sizes, err := s.Plan(len(sorted))
	if err != nil {
		return nil, courseError(courseID, err)
	}

	switch len(sizes) {
	case 1:
		return s.build(courseID, [][]string{sorted}), nil
	case 2:
	default:
		return nil, errors.Clonef(errors.ErrUnsupportedSectionCount,
			"course %s: %d students need %d sections, identity split supports at most 2",
			courseID, len(sorted), len(sizes))
	}

	var zeros, ones []string
	for _, id := range sorted {
		if identity[id] == 1 {
			ones = append(ones, id)
		} else {
			zeros = append(zeros, id)
		}
	}

	n := len(sorted)
	sizeA := clamp(len(zeros), max(s.MinCap, n-s.MaxCap), min(s.MaxCap, n-s.MinCap))

	// Surplus students leave the overfull group highest id first.
	a, b := zeros, ones
	if moved := len(zeros) - sizeA; moved > 0 {
		a, b = zeros[:sizeA], append(append([]string(nil), ones...), zeros[sizeA:]...)
	} else if moved < 0 {
		keep := len(ones) + moved
		a, b = append(append([]string(nil), zeros...), ones[keep:]...), ones[:keep]
	}
	sort.Strings(a)
	sort.Strings(b)

	return s.build(courseID, [][]string{a, b}), nil
}

// SectionAll sections every course in course id order with the configured mode.
// population feeds the identity; when empty the enrolled students are used.
func (s *Sectioner) SectionAll(enrollments []*model.Enrollment, population []string) (*Result, error) {
	byCourse := make(map[string][]string)
	for _, e := range enrollments {
		byCourse[e.CourseID] = append(byCourse[e.CourseID], e.StudentID)
	}
	if len(byCourse) == 0 {
		return nil, errors.Clone(errors.ErrDataValidation, "no enrollments to section")
	}

	courseIDs := make([]string, 0, len(byCourse))
	for id := range byCourse {
		courseIDs = append(courseIDs, id)
	}
	sort.Strings(courseIDs)

	var identity Identity
	if s.Mode == ModeIdentity {
		if len(population) == 0 {
			for _, e := range enrollments {
				population = append(population, e.StudentID)
			}
		}
		identity = NewIdentity(population)
	}

	all := &Result{}
	split := 0
	for _, courseID := range courseIDs {
		var (
			res *Result
			err error
		)
		if s.Mode == ModeIdentity {
			res, err = s.IdentityPreserving(courseID, byCourse[courseID], identity)
		} else {
			res, err = s.Balanced(courseID, byCourse[courseID])
		}
		if err != nil {
			return nil, err
		}
		if len(res.Sections) > 1 {
			split++
		}
		all.Sections = append(all.Sections, res.Sections...)
		all.Enrollments = append(all.Enrollments, res.Enrollments...)
	}

	s.log.Info("sectioning complete",
		zap.String("mode", string(s.Mode)),
		zap.Int("courses", len(courseIDs)),
		zap.Int("sections", len(all.Sections)),
		zap.Int("split_courses", split),
		zap.Int("section_enrollments", len(all.Enrollments)),
	)
	return all, nil
}

// Mismatches counts students whose section label differs from their identity group.
func Mismatches(res *Result, identity Identity) int {
	labels := make(map[string]string, len(res.Sections))
	for _, sec := range res.Sections {
		labels[sec.ID] = sec.Label
	}
	n := 0
	for _, e := range res.Enrollments {
		want := model.SectionLabel(identity[e.StudentID])
		if labels[e.SectionID] != want {
			n++
		}
	}
	return n
}

func (s *Sectioner) build(courseID string, groups [][]string) *Result {
	res := &Result{}
	for i, group := range groups {
		label := model.SectionLabel(i)
		id := model.SectionID(courseID, label)
		res.Sections = append(res.Sections, &model.Section{
			ID:       id,
			CourseID: courseID,
			Label:    label,
			Size:     len(group),
			MinCap:   s.MinCap,
			MaxCap:   s.MaxCap,
		})
		for _, student := range group {
			res.Enrollments = append(res.Enrollments, &model.SectionEnrollment{SectionID: id, StudentID: student})
		}
	}
	return res
}

func courseError(courseID string, err error) error {
	e := errors.FromError(err)
	return errors.Clonef(e, "course %s: %s", courseID, e.Message)
}

func dedupeSorted(ids []string) []string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	out := sorted[:0]
	for i, id := range sorted {
		if i == 0 || id != sorted[i-1] {
			out = append(out, id)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
