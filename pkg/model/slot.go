package model

type Slot struct {
	ID           string `csv:"slot_id" validate:"required"`
	Week         int    `csv:"week" validate:"min=1"`
	Day          string `csv:"day" validate:"required"`
	Code         string `csv:"slot_code"`
	Start        string `csv:"start"`
	End          string `csv:"end"`
	RoomCapacity int    `csv:"room_capacity" validate:"min=0"`
}

type OverflowSlot struct {
	ID           string `csv:"slot_id" validate:"required"`
	Day          string `csv:"day" validate:"required"`
	SlotInDay    int    `csv:"slot_in_day" validate:"min=1"`
	Start        string `csv:"start"`
	End          string `csv:"end"`
	RoomCapacity int    `csv:"room_capacity" validate:"min=0"`
}

var weekdays = map[string]int{
	"Mon": 0, "Tue": 1, "Wed": 2, "Thu": 3, "Fri": 4, "Sat": 5, "Sun": 6,
}

// DayOrder ranks weekday abbreviations; unknown labels sort after Sunday.
func DayOrder(day string) int {
	if i, ok := weekdays[day]; ok {
		return i
	}
	return len(weekdays)
}
