package csvio

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"

	"github.com/rhyrak/term-scheduler/pkg/errors"
)

// Table file names shared by all stages.
const (
	RosterFile             = "roster.csv"
	CoursesFile            = "courses.csv"
	StudentsFile           = "students.csv"
	EnrollmentsFile        = "enrollments.csv"
	FacultySplitsFile      = "course_faculty_splits.csv"
	SectionsFile           = "sections.csv"
	SectionEnrollmentsFile = "section_enrollments.csv"
	SlotsFile              = "slots.csv"
	OverflowSlotsFile      = "overflow_slots.csv"
	SectionSessionsFile    = "section_sessions.csv"
	TermScheduleFile       = "term_schedule.csv"
	OverflowScheduleFile   = "overflow_schedule.csv"
	OverflowDaysFile       = "overflow_days.csv"
)

func init() {
	// A missing column is a data error, never a zero value.
	gocsv.FailIfUnmatchedStructTags = true
}

// Store reads and writes the stage tables of one data directory.
type Store struct {
	dir      string
	delim    rune
	validate *validator.Validate
	create   func(path string) (io.WriteCloser, error)
}

func NewStore(dir string, delim rune) *Store {
	if delim == 0 {
		delim = ','
	}
	return &Store{
		dir:      dir,
		delim:    delim,
		validate: validator.New(),
		create:   func(path string) (io.WriteCloser, error) { return os.Create(path) },
	}
}

// Path returns the location of a table inside the store.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether the table file is present.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

func load[T any](s *Store, name string, optional bool) ([]*T, error) {
	path := s.Path(name)
	f, err := os.Open(path)
	if err != nil {
		if optional && stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrIO.Code, errors.ErrIO.ExitCode,
			fmt.Sprintf("failed to open %s, please make sure the file exists", path))
	}
	defer f.Close()

	rows, err := decode[T](f, s.delim)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDataValidation.Code, errors.ErrDataValidation.ExitCode,
			fmt.Sprintf("failed to parse %s: %v", name, err))
	}

	for i, row := range rows {
		if err := s.validate.Struct(row); err != nil {
			// Header is line 1.
			return nil, errors.Wrap(err, errors.ErrDataValidation.Code, errors.ErrDataValidation.ExitCode,
				fmt.Sprintf("%s line %d: %s", name, i+2, describe(err)))
		}
	}
	return rows, nil
}

func decode[T any](in io.Reader, delim rune) ([]*T, error) {
	r := csv.NewReader(in)
	r.Comma = delim
	r.TrimLeadingSpace = true

	rows := []*T{}
	if err := gocsv.UnmarshalCSV(r, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func save[T any](s *Store, name string, rows []*T) (err error) {
	if err := os.MkdirAll(s.dir, os.ModePerm); err != nil {
		return errors.Wrap(err, errors.ErrIO.Code, errors.ErrIO.ExitCode, "failed to create "+s.dir)
	}

	path := s.Path(name)
	out, err := s.create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrIO.Code, errors.ErrIO.ExitCode, "failed to create "+path)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, errors.ErrIO.Code, errors.ErrIO.ExitCode, "failed to close "+path)
		}
	}()

	if err := encode(out, s.delim, rows); err != nil {
		return errors.Wrap(err, errors.ErrIO.Code, errors.ErrIO.ExitCode, "failed to write "+path)
	}
	return nil
}

func encode[T any](out io.Writer, delim rune, rows []*T) error {
	w := csv.NewWriter(out)
	w.Comma = delim
	if rows == nil {
		rows = []*T{}
	}
	return gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(w))
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Sprintf("field %s failed %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("field %s failed %s", fe.Field(), fe.Tag())
}
