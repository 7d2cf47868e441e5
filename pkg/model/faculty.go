package model

import "strings"

// FacultySplit marks a course whose teaching faculty changes after BoundaryWeek.
type FacultySplit struct {
	CourseID      string `csv:"course_id" validate:"required"`
	FacultyBefore string `csv:"faculty_before" validate:"required"`
	FacultyAfter  string `csv:"faculty_after" validate:"required"`
	BoundaryWeek  int    `csv:"boundary_week" validate:"min=0"`
}

// FacultyDirectory resolves the faculty identity teaching a course in a given week.
// It is built once per stage and never mutated afterwards.
type FacultyDirectory struct {
	raw    map[string]string
	splits map[string]FacultySplit
}

// NewFacultyDirectory indexes courses and splits. A split with no boundary
// week uses defaultBoundary.
func NewFacultyDirectory(courses []*Course, splits []*FacultySplit, defaultBoundary int) *FacultyDirectory {
	d := &FacultyDirectory{
		raw:    make(map[string]string, len(courses)),
		splits: make(map[string]FacultySplit, len(splits)),
	}
	for _, c := range courses {
		d.raw[c.ID] = strings.TrimSpace(c.FacultyRaw)
	}
	for _, s := range splits {
		split := *s
		split.FacultyBefore = strings.TrimSpace(split.FacultyBefore)
		split.FacultyAfter = strings.TrimSpace(split.FacultyAfter)
		if split.BoundaryWeek <= 0 {
			split.BoundaryWeek = defaultBoundary
		}
		d.splits[s.CourseID] = split
	}
	return d
}

// Resolve returns the faculty identity for course in week. An empty result
// means the course has no known faculty and takes part in no faculty conflict.
func (d *FacultyDirectory) Resolve(courseID string, week int) string {
	if s, ok := d.splits[courseID]; ok {
		if week <= s.BoundaryWeek {
			return s.FacultyBefore
		}
		return s.FacultyAfter
	}
	return d.raw[courseID]
}

// Known reports whether the course appears in the course table.
func (d *FacultyDirectory) Known(courseID string) bool {
	_, ok := d.raw[courseID]
	return ok
}
