package scheduler

import (
	"fmt"
	"sort"

	"github.com/rhyrak/term-scheduler/internal/solver"
	"github.com/rhyrak/term-scheduler/pkg/errors"
	"github.com/rhyrak/term-scheduler/pkg/model"
)

// Input holds the tables read by the primary engine.
type Input struct {
	Courses            []*model.Course
	Sections           []*model.Section
	SectionEnrollments []*model.SectionEnrollment
	Slots              []*model.Slot
	FacultySplits      []*model.FacultySplit
}

// index is the read-only view of one engine invocation.
type index struct {
	sections []*model.Section
	slots    []*model.Slot
	faculty  *model.FacultyDirectory

	sectionPos      map[string]int
	studentSections map[string][]int
	students        []string
	weekGroup       []int
}

func buildIndex(in *Input, defaultBoundary int) (*index, error) {
	ix := &index{
		sections:        append([]*model.Section(nil), in.Sections...),
		slots:           in.Slots,
		faculty:         model.NewFacultyDirectory(in.Courses, in.FacultySplits, defaultBoundary),
		sectionPos:      make(map[string]int, len(in.Sections)),
		studentSections: make(map[string][]int),
	}
	sort.Slice(ix.sections, func(i, j int) bool { return ix.sections[i].ID < ix.sections[j].ID })

	for i, sec := range ix.sections {
		if _, dup := ix.sectionPos[sec.ID]; dup {
			return nil, errors.Clonef(errors.ErrDataValidation, "duplicate section %s", sec.ID)
		}
		if !ix.faculty.Known(sec.CourseID) {
			return nil, errors.Clonef(errors.ErrDataValidation, "section %s references unknown course %s", sec.ID, sec.CourseID)
		}
		ix.sectionPos[sec.ID] = i
	}

	for _, se := range in.SectionEnrollments {
		i, ok := ix.sectionPos[se.SectionID]
		if !ok {
			return nil, errors.Clonef(errors.ErrDataValidation, "student %s enrolled in unknown section %s", se.StudentID, se.SectionID)
		}
		if !containsINT(ix.studentSections[se.StudentID], i) {
			ix.studentSections[se.StudentID] = append(ix.studentSections[se.StudentID], i)
		}
	}
	for id, secs := range ix.studentSections {
		sort.Ints(secs)
		ix.students = append(ix.students, id)
	}
	sort.Strings(ix.students)

	weeks := make(map[int]int)
	var order []int
	seenSlot := make(map[string]bool, len(in.Slots))
	for _, sl := range in.Slots {
		if seenSlot[sl.ID] {
			return nil, errors.Clonef(errors.ErrDataValidation, "duplicate slot %s", sl.ID)
		}
		seenSlot[sl.ID] = true
		if _, ok := weeks[sl.Week]; !ok {
			weeks[sl.Week] = 0
			order = append(order, sl.Week)
		}
	}
	sort.Ints(order)
	for g, w := range order {
		weeks[w] = g
	}
	ix.weekGroup = make([]int, len(in.Slots))
	for s, sl := range in.Slots {
		ix.weekGroup[s] = weeks[sl.Week]
	}
	return ix, nil
}

// shared marks section pairs with a common student.
func (ix *index) shared() [][]bool {
	n := len(ix.sections)
	m := make([][]bool, n)
	for i := range m {
		m[i] = make([]bool, n)
	}
	for _, secs := range ix.studentSections {
		for a := 0; a < len(secs); a++ {
			for b := a + 1; b < len(secs); b++ {
				m[secs[a]][secs[b]] = true
				m[secs[b]][secs[a]] = true
			}
		}
	}
	return m
}

// facultyMatrix resolves the faculty of every section at every slot's week.
// Returns the matrix and the identity names by id.
func (ix *index) facultyMatrix() ([][]int, []string) {
	ids := make(map[string]int)
	var names []string
	m := make([][]int, len(ix.sections))
	for i, sec := range ix.sections {
		m[i] = make([]int, len(ix.slots))
		for s, sl := range ix.slots {
			name := ix.faculty.Resolve(sec.CourseID, sl.Week)
			if name == "" {
				m[i][s] = -1
				continue
			}
			id, ok := ids[name]
			if !ok {
				id = len(names)
				ids[name] = id
				names = append(names, name)
			}
			m[i][s] = id
		}
	}
	return m, names
}

// cliques lists section sets that can never share a slot: the sections of one
// student, and the sections of one faculty identity that never changes.
func (ix *index) cliques(faculty [][]int, names []string) []solver.Clique {
	var out []solver.Clique
	seen := make(map[string]bool)
	for _, student := range ix.students {
		secs := ix.studentSections[student]
		if len(secs) < 2 {
			continue
		}
		key := fmt.Sprint(secs)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, solver.Clique{Name: "student " + student, Items: secs})
	}

	byFaculty := make(map[int][]int)
	for i, row := range faculty {
		if len(row) == 0 || row[0] < 0 {
			continue
		}
		constant := true
		for _, f := range row {
			if f != row[0] {
				constant = false
				break
			}
		}
		if constant {
			byFaculty[row[0]] = append(byFaculty[row[0]], i)
		}
	}
	for id := range names {
		if secs := byFaculty[id]; len(secs) >= 2 {
			out = append(out, solver.Clique{Name: "faculty " + names[id], Items: secs})
		}
	}
	return out
}
