// Package roster turns the flat roster export into course, student and
// enrollment tables.
package roster

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/rhyrak/term-scheduler/pkg/errors"
	"github.com/rhyrak/term-scheduler/pkg/model"
)

// Tables is the normalized roster.
type Tables struct {
	Courses     []*model.Course
	Students    []*model.Student
	Enrollments []*model.Enrollment
}

// Normalize cleans roster rows. Courses keep the name and faculty of their
// first row, students keep their first name and are sorted by id, and
// enrollments are deduplicated in roster order.
func Normalize(rows []*model.RosterRow, log *zap.Logger) (*Tables, error) {
	if log == nil {
		log = zap.NewNop()
	}

	t := &Tables{}
	seenCourse := make(map[string]bool)
	names := make(map[string]string)
	seenEnrollment := make(map[model.Enrollment]bool)
	dropped := 0

	for _, r := range rows {
		courseID := strings.TrimSpace(r.CourseID)
		studentID := strings.TrimSpace(r.StudentID)
		if courseID == "" {
			dropped++
			continue
		}

		if !seenCourse[courseID] {
			seenCourse[courseID] = true
			t.Courses = append(t.Courses, &model.Course{
				ID:         courseID,
				Name:       strings.TrimSpace(r.CourseName),
				FacultyRaw: strings.TrimSpace(r.Faculty),
			})
		}

		// Junk rows: blank ids and repeated header lines.
		if studentID == "" || strings.Contains(strings.ToLower(studentID), "student") {
			dropped++
			continue
		}

		if _, ok := names[studentID]; !ok {
			names[studentID] = strings.TrimSpace(r.StudentName)
		}

		e := model.Enrollment{CourseID: courseID, StudentID: studentID}
		if !seenEnrollment[e] {
			seenEnrollment[e] = true
			t.Enrollments = append(t.Enrollments, &e)
		}
	}

	if len(t.Enrollments) == 0 {
		return nil, errors.Clone(errors.ErrDataValidation, "roster contains no enrollments")
	}

	for id, name := range names {
		t.Students = append(t.Students, &model.Student{ID: id, Name: name})
	}
	sort.Slice(t.Students, func(i, j int) bool { return t.Students[i].ID < t.Students[j].ID })

	log.Info("roster normalized",
		zap.Int("courses", len(t.Courses)),
		zap.Int("students", len(t.Students)),
		zap.Int("enrollments", len(t.Enrollments)),
		zap.Int("dropped_rows", dropped),
	)
	return t, nil
}

// EnrollmentCounts returns the number of students per course.
func EnrollmentCounts(enrollments []*model.Enrollment) map[string]int {
	counts := make(map[string]int)
	for _, e := range enrollments {
		counts[e.CourseID]++
	}
	return counts
}
