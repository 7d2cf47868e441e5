package overflow

import (
	"sort"

	"github.com/rhyrak/term-scheduler/pkg/model"
)

// ScheduleRows renders an overflow result. Rows are ordered by day in pool
// order, then start time and section.
func ScheduleRows(in *Input, res *Result, opts Options) ([]*model.OverflowScheduleRow, []*model.OverflowDayRow) {
	slots := make(map[string]*model.OverflowSlot, len(in.Slots))
	capacity := make(map[string]int, len(in.Slots))
	dayPos := make(map[string]int)
	for _, sl := range in.Slots {
		slots[sl.ID] = sl
		capacity[sl.ID] = sl.RoomCapacity
		if _, ok := dayPos[sl.Day]; !ok {
			dayPos[sl.Day] = len(dayPos)
		}
	}
	courseOf := make(map[string]string, len(in.Sections))
	for _, sec := range in.Sections {
		courseOf[sec.ID] = sec.CourseID
	}
	faculty := model.NewFacultyDirectory(in.Courses, in.FacultySplits, opts.FacultyBoundaryWeek)

	rooms := model.NewRoomLedger(capacity)
	for _, a := range res.Assignments {
		rooms.PlaceSection(a.SlotID, a.SectionID)
	}
	numbers := rooms.RoomNumbers()

	perDay := make(map[string]int)
	rows := make([]*model.OverflowScheduleRow, 0, len(res.Assignments))
	for _, a := range res.Assignments {
		sl := slots[a.SlotID]
		course := courseOf[a.SectionID]
		perDay[sl.Day]++
		rows = append(rows, &model.OverflowScheduleRow{
			SlotID:     sl.ID,
			Day:        sl.Day,
			Start:      sl.Start,
			End:        sl.End,
			SectionID:  a.SectionID,
			CourseID:   course,
			Faculty:    faculty.Resolve(course, opts.FacultyWeek),
			RoomNumber: numbers[a],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if pa, pb := dayPos[a.Day], dayPos[b.Day]; pa != pb {
			return pa < pb
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.SectionID < b.SectionID
	})

	days := make([]*model.OverflowDayRow, 0, len(res.Days))
	for _, d := range res.Days {
		days = append(days, &model.OverflowDayRow{Day: d, Sessions: perDay[d]})
	}
	return rows, days
}
