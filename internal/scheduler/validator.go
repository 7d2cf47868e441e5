package scheduler

import (
	"fmt"
	"sort"

	"github.com/rhyrak/term-scheduler/pkg/model"
)

// Validate checks an assignment for room, faculty and student collisions and
// for section session bounds. Returns false and a report for invalid schedules.
func Validate(in *Input, assignments []model.Assignment, opts Options) (bool, string) {
	var message string
	var valid bool = true
	var hasRoomOverflow, hasFacultyCollision, hasStudentCollision, hasBoundViolation, hasUnknown bool

	slots := make(map[string]*model.Slot, len(in.Slots))
	for _, sl := range in.Slots {
		slots[sl.ID] = sl
	}
	sections := make(map[string]*model.Section, len(in.Sections))
	for _, sec := range in.Sections {
		sections[sec.ID] = sec
	}
	students := make(map[string][]string)
	for _, se := range in.SectionEnrollments {
		students[se.SectionID] = append(students[se.SectionID], se.StudentID)
	}
	faculty := model.NewFacultyDirectory(in.Courses, in.FacultySplits, opts.FacultyBoundaryWeek)

	bySlot := make(map[string][]string)
	sessions := make(map[string]int)
	perWeek := make(map[string]map[int]int)
	for _, a := range assignments {
		sl, okSlot := slots[a.SlotID]
		_, okSec := sections[a.SectionID]
		if !okSlot || !okSec {
			valid = false
			hasUnknown = true
			message += fmt.Sprintf("- Assignment %s@%s references unknown data\n", a.SectionID, a.SlotID)
			continue
		}
		bySlot[a.SlotID] = append(bySlot[a.SlotID], a.SectionID)
		sessions[a.SectionID]++
		if perWeek[a.SectionID] == nil {
			perWeek[a.SectionID] = make(map[int]int)
		}
		perWeek[a.SectionID][sl.Week]++
	}

	slotIDs := make([]string, 0, len(bySlot))
	for id := range bySlot {
		slotIDs = append(slotIDs, id)
	}
	sort.Strings(slotIDs)

	for _, slotID := range slotIDs {
		secs := bySlot[slotID]
		sl := slots[slotID]
		if len(secs) > sl.RoomCapacity {
			valid = false
			hasRoomOverflow = true
			message += fmt.Sprintf("- Slot %s holds %d sections but has %d rooms\n", slotID, len(secs), sl.RoomCapacity)
		}

		teaching := make(map[string]string)
		seated := make(map[string]string)
		placed := make(map[string]bool)
		for _, secID := range secs {
			if placed[secID] {
				valid = false
				hasBoundViolation = true
				message += fmt.Sprintf("- Section %s placed twice in %s\n", secID, slotID)
				continue
			}
			placed[secID] = true

			fac := faculty.Resolve(sections[secID].CourseID, sl.Week)
			if other, busy := teaching[fac]; fac != "" && busy {
				valid = false
				hasFacultyCollision = true
				message += fmt.Sprintf("- Faculty %s teaches %s and %s in %s\n", fac, other, secID, slotID)
			} else if fac != "" {
				teaching[fac] = secID
			}

			for _, student := range students[secID] {
				if other, busy := seated[student]; busy {
					valid = false
					hasStudentCollision = true
					message += fmt.Sprintf("- Student %s attends %s and %s in %s\n", student, other, secID, slotID)
				} else {
					seated[student] = secID
				}
			}
		}
	}

	floor := opts.hardFloor()
	secIDs := make([]string, 0, len(sections))
	for id := range sections {
		secIDs = append(secIDs, id)
	}
	sort.Strings(secIDs)
	for _, id := range secIDs {
		n := sessions[id]
		if n < floor || n > opts.Ceiling {
			valid = false
			hasBoundViolation = true
			message += fmt.Sprintf("- Section %s holds %d sessions, allowed %d..%d\n", id, n, floor, opts.Ceiling)
		}
		if opts.WeeklyCap > 0 {
			for week, k := range perWeek[id] {
				if k > opts.WeeklyCap {
					valid = false
					hasBoundViolation = true
					message += fmt.Sprintf("- Section %s holds %d sessions in week %d, weekly cap %d\n", id, k, week, opts.WeeklyCap)
				}
			}
		}
	}

	message = status(!hasBoundViolation, "Session bound check") + message
	message = status(!hasStudentCollision, "Student collision check") + message
	message = status(!hasFacultyCollision, "Faculty collision check") + message
	message = status(!hasRoomOverflow, "Room capacity check") + message
	message = status(!hasUnknown, "Reference check") + message

	return valid, message
}

func status(ok bool, check string) string {
	if ok {
		return "[  OK]: " + check + ".\n"
	}
	return "[FAIL]: " + check + ".\n"
}
