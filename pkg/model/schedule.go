package model

// Assignment places one session of a section in a slot.
type Assignment struct {
	SectionID string
	SlotID    string
}

type SessionCountRow struct {
	SectionID string `csv:"section_id" validate:"required"`
	CourseID  string `csv:"course_id" validate:"required"`
	Sessions  int    `csv:"sessions" validate:"min=0"`
	Floor     int    `csv:"floor" validate:"min=0"`
	Ceiling   int    `csv:"ceiling" validate:"min=0"`
	Shortfall int    `csv:"shortfall" validate:"min=0"`
}

// Deficit is the number of sessions still owed against the ceiling.
func (r *SessionCountRow) Deficit() int {
	if d := r.Ceiling - r.Sessions; d > 0 {
		return d
	}
	return 0
}

type ScheduleCSVRow struct {
	SlotID     string `csv:"slot_id"`
	Week       int    `csv:"week"`
	Day        string `csv:"day"`
	Start      string `csv:"start"`
	End        string `csv:"end"`
	SectionID  string `csv:"section_id"`
	CourseID   string `csv:"course_id"`
	Faculty    string `csv:"faculty"`
	RoomNumber string `csv:"room_number"`
}

type OverflowScheduleRow struct {
	SlotID     string `csv:"slot_id"`
	Day        string `csv:"day"`
	Start      string `csv:"start"`
	End        string `csv:"end"`
	SectionID  string `csv:"section_id"`
	CourseID   string `csv:"course_id"`
	Faculty    string `csv:"faculty"`
	RoomNumber string `csv:"room_number"`
}

type OverflowDayRow struct {
	Day      string `csv:"day"`
	Sessions int    `csv:"sessions"`
}
