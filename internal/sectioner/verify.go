package sectioner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rhyrak/term-scheduler/pkg/errors"
	"github.com/rhyrak/term-scheduler/pkg/model"
)

// Verify re-checks a sectioning against the enrollments it came from: every
// enrolled student sits in exactly one section of the course, recorded sizes
// match, and sizes respect the capacity bounds of multi-section courses.
func Verify(sections []*model.Section, assigned []*model.SectionEnrollment, enrollments []*model.Enrollment) error {
	var problems []string

	byID := make(map[string]*model.Section, len(sections))
	perCourse := make(map[string]int)
	for _, sec := range sections {
		byID[sec.ID] = sec
		perCourse[sec.CourseID]++
	}

	type key struct{ course, student string }
	placed := make(map[key]int)
	sizes := make(map[string]int)
	for _, a := range assigned {
		sec, ok := byID[a.SectionID]
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown section %s", a.SectionID))
			continue
		}
		placed[key{sec.CourseID, a.StudentID}]++
		sizes[sec.ID]++
	}

	enrolled := make(map[key]bool, len(enrollments))
	for _, e := range enrollments {
		k := key{e.CourseID, e.StudentID}
		enrolled[k] = true
		switch placed[k] {
		case 1:
		case 0:
			problems = append(problems, fmt.Sprintf("student %s of %s has no section", e.StudentID, e.CourseID))
		default:
			problems = append(problems, fmt.Sprintf("student %s of %s is in %d sections", e.StudentID, e.CourseID, placed[k]))
		}
	}
	for k := range placed {
		if !enrolled[k] {
			problems = append(problems, fmt.Sprintf("student %s is sectioned in %s without enrollment", k.student, k.course))
		}
	}

	for _, sec := range sections {
		if sizes[sec.ID] != sec.Size {
			problems = append(problems, fmt.Sprintf("section %s records size %d but holds %d", sec.ID, sec.Size, sizes[sec.ID]))
		}
		if sec.Size > sec.MaxCap || (perCourse[sec.CourseID] > 1 && sec.Size < sec.MinCap) {
			problems = append(problems, fmt.Sprintf("section %s size %d outside %d..%d", sec.ID, sec.Size, sec.MinCap, sec.MaxCap))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return errors.Clonef(errors.ErrDataValidation, "sectioning check failed: %s", strings.Join(problems, "; "))
}
