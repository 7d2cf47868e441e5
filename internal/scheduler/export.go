package scheduler

import (
	"sort"
	"strings"

	"github.com/rhyrak/term-scheduler/pkg/model"
)

// TermSchedule turns the assignment into schedule rows with room numbers,
// ordered by week, day, start time and section.
func TermSchedule(in *Input, res *Result, defaultBoundary int) []*model.ScheduleCSVRow {
	slots := make(map[string]*model.Slot, len(in.Slots))
	capacity := make(map[string]int, len(in.Slots))
	for _, sl := range in.Slots {
		slots[sl.ID] = sl
		capacity[sl.ID] = sl.RoomCapacity
	}
	courseOf := make(map[string]string, len(in.Sections))
	for _, sec := range in.Sections {
		courseOf[sec.ID] = sec.CourseID
	}
	faculty := model.NewFacultyDirectory(in.Courses, in.FacultySplits, defaultBoundary)

	rooms := model.NewRoomLedger(capacity)
	for _, a := range res.Assignments {
		rooms.PlaceSection(a.SlotID, a.SectionID)
	}
	numbers := rooms.RoomNumbers()

	rows := make([]*model.ScheduleCSVRow, 0, len(res.Assignments))
	for _, a := range res.Assignments {
		sl := slots[a.SlotID]
		course := courseOf[a.SectionID]
		rows = append(rows, &model.ScheduleCSVRow{
			SlotID:     sl.ID,
			Week:       sl.Week,
			Day:        sl.Day,
			Start:      sl.Start,
			End:        sl.End,
			SectionID:  a.SectionID,
			CourseID:   course,
			Faculty:    faculty.Resolve(course, sl.Week),
			RoomNumber: numbers[a],
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		if da, db := model.DayOrder(a.Day), model.DayOrder(b.Day); da != db {
			return da < db
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if c := strings.Compare(a.Start, b.Start); c != 0 {
			return c < 0
		}
		return a.SectionID < b.SectionID
	})
	return rows
}
