package model

type Section struct {
	ID       string `csv:"section_id" validate:"required"`
	CourseID string `csv:"course_id" validate:"required"`
	Label    string `csv:"section_label" validate:"required"`
	Size     int    `csv:"size" validate:"min=0"`
	MinCap   int    `csv:"min_cap" validate:"min=0"`
	MaxCap   int    `csv:"max_cap" validate:"min=0"`
}

type SectionEnrollment struct {
	SectionID string `csv:"section_id" validate:"required"`
	StudentID string `csv:"student_id" validate:"required"`
}

// SectionID derives the identifier of a course section.
func SectionID(courseID, label string) string {
	return courseID + "_" + label
}

// SectionLabel returns the i-th label: A..Z, AA, AB, ...
func SectionLabel(i int) string {
	var label []byte
	for i++; i > 0; i = (i - 1) / 26 {
		label = append([]byte{byte('A' + (i-1)%26)}, label...)
	}
	return string(label)
}
