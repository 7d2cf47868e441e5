// Package calendar builds the primary term slots and the overflow slot pool.
package calendar

import (
	"fmt"

	"github.com/rhyrak/term-scheduler/pkg/config"
	"github.com/rhyrak/term-scheduler/pkg/model"
)

type window struct {
	start, end string
}

var weekdayWindows = []window{
	{"09:00", "10:30"},
	{"10:45", "12:15"},
	{"12:30", "14:00"},
	{"14:45", "16:15"},
	{"16:30", "18:00"},
	{"18:15", "19:45"},
}

var sundayWindows = []window{
	{"09:00", "10:30"},
	{"10:45", "12:15"},
	{"12:30", "14:00"},
	{"15:30", "17:00"},
}

var overflowWindows = append(append([]window(nil), weekdayWindows...), window{"20:00", "21:30"})

var days = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// RoomCapacity returns the rooms available in a week.
func RoomCapacity(cfg config.CalendarConfig, week int) int {
	if week <= cfg.RoomReductionAfterWeek {
		return cfg.RoomsEarly
	}
	return cfg.RoomsLate
}

// BuildSlots lays out the term week by week.
func BuildSlots(cfg config.CalendarConfig) []*model.Slot {
	slots := make([]*model.Slot, 0, cfg.TermWeeks*(6*len(weekdayWindows)+len(sundayWindows)))
	for week := 1; week <= cfg.TermWeeks; week++ {
		capacity := RoomCapacity(cfg, week)
		for _, day := range days {
			windows := weekdayWindows
			if day == "Sun" {
				windows = sundayWindows
			}
			for i, w := range windows {
				code := fmt.Sprintf("S%d", i+1)
				slots = append(slots, &model.Slot{
					ID:           fmt.Sprintf("W%d_%s_%s", week, day, code),
					Week:         week,
					Day:          day,
					Code:         code,
					Start:        w.start,
					End:          w.end,
					RoomCapacity: capacity,
				})
			}
		}
	}
	return slots
}

// BuildOverflowSlots lays out the overflow days C1..Cn with seven windows each.
// Slot ids number the windows across the whole pool.
func BuildOverflowSlots(cfg config.CalendarConfig) []*model.OverflowSlot {
	slots := make([]*model.OverflowSlot, 0, cfg.OverflowDays*len(overflowWindows))
	for d := 1; d <= cfg.OverflowDays; d++ {
		day := fmt.Sprintf("C%d", d)
		for i, w := range overflowWindows {
			slots = append(slots, &model.OverflowSlot{
				ID:           fmt.Sprintf("%s_S%d", day, len(slots)+1),
				Day:          day,
				SlotInDay:    i + 1,
				Start:        w.start,
				End:          w.end,
				RoomCapacity: cfg.OverflowRoomCapacity,
			})
		}
	}
	return slots
}
