package model

// RosterRow is one line of the flat roster export.
type RosterRow struct {
	CourseID    string `csv:"course_id"`
	CourseName  string `csv:"course_name"`
	Faculty     string `csv:"faculty"`
	StudentID   string `csv:"student_id"`
	StudentName string `csv:"student_name"`
}

type Course struct {
	ID         string `csv:"course_id" validate:"required"`
	Name       string `csv:"course_name"`
	FacultyRaw string `csv:"faculty_raw"`
}

type Student struct {
	ID   string `csv:"student_id" validate:"required"`
	Name string `csv:"student_name"`
}

type Enrollment struct {
	CourseID  string `csv:"course_id" validate:"required"`
	StudentID string `csv:"student_id" validate:"required"`
}
