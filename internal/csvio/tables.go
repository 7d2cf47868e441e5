package csvio

import "github.com/rhyrak/term-scheduler/pkg/model"

func (s *Store) LoadRoster() ([]*model.RosterRow, error) {
	return load[model.RosterRow](s, RosterFile, false)
}

func (s *Store) LoadCourses() ([]*model.Course, error) {
	return load[model.Course](s, CoursesFile, false)
}

func (s *Store) SaveCourses(rows []*model.Course) error {
	return save(s, CoursesFile, rows)
}

func (s *Store) LoadStudents() ([]*model.Student, error) {
	return load[model.Student](s, StudentsFile, false)
}

func (s *Store) SaveStudents(rows []*model.Student) error {
	return save(s, StudentsFile, rows)
}

func (s *Store) LoadEnrollments() ([]*model.Enrollment, error) {
	return load[model.Enrollment](s, EnrollmentsFile, false)
}

func (s *Store) SaveEnrollments(rows []*model.Enrollment) error {
	return save(s, EnrollmentsFile, rows)
}

// LoadFacultySplits returns no rows when the optional table is absent.
func (s *Store) LoadFacultySplits() ([]*model.FacultySplit, error) {
	return load[model.FacultySplit](s, FacultySplitsFile, true)
}

func (s *Store) LoadSections() ([]*model.Section, error) {
	return load[model.Section](s, SectionsFile, false)
}

func (s *Store) SaveSections(rows []*model.Section) error {
	return save(s, SectionsFile, rows)
}

func (s *Store) LoadSectionEnrollments() ([]*model.SectionEnrollment, error) {
	return load[model.SectionEnrollment](s, SectionEnrollmentsFile, false)
}

func (s *Store) SaveSectionEnrollments(rows []*model.SectionEnrollment) error {
	return save(s, SectionEnrollmentsFile, rows)
}

func (s *Store) LoadSlots() ([]*model.Slot, error) {
	return load[model.Slot](s, SlotsFile, false)
}

func (s *Store) SaveSlots(rows []*model.Slot) error {
	return save(s, SlotsFile, rows)
}

func (s *Store) LoadOverflowSlots() ([]*model.OverflowSlot, error) {
	return load[model.OverflowSlot](s, OverflowSlotsFile, false)
}

func (s *Store) SaveOverflowSlots(rows []*model.OverflowSlot) error {
	return save(s, OverflowSlotsFile, rows)
}

func (s *Store) LoadSectionSessions() ([]*model.SessionCountRow, error) {
	return load[model.SessionCountRow](s, SectionSessionsFile, false)
}

func (s *Store) SaveSectionSessions(rows []*model.SessionCountRow) error {
	return save(s, SectionSessionsFile, rows)
}

func (s *Store) LoadTermSchedule() ([]*model.ScheduleCSVRow, error) {
	return load[model.ScheduleCSVRow](s, TermScheduleFile, false)
}

// ExportTermSchedule writes the primary schedule and returns its path.
func (s *Store) ExportTermSchedule(rows []*model.ScheduleCSVRow) (string, error) {
	return s.Path(TermScheduleFile), save(s, TermScheduleFile, rows)
}

// ExportOverflowSchedule writes the overflow schedule and the active day list.
func (s *Store) ExportOverflowSchedule(rows []*model.OverflowScheduleRow, days []*model.OverflowDayRow) error {
	if err := save(s, OverflowScheduleFile, rows); err != nil {
		return err
	}
	return save(s, OverflowDaysFile, days)
}
