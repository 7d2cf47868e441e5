package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionLabel(t *testing.T) {
	assert.Equal(t, "A", SectionLabel(0))
	assert.Equal(t, "C", SectionLabel(2))
	assert.Equal(t, "Z", SectionLabel(25))
	assert.Equal(t, "AA", SectionLabel(26))
	assert.Equal(t, "AB", SectionLabel(27))
	assert.Equal(t, "X_B", SectionID("X", SectionLabel(1)))
}

func TestFacultyDirectoryResolvesSplitByWeek(t *testing.T) {
	courses := []*Course{
		{ID: "DTI", FacultyRaw: "Prof. Kumar / Prof. Rogers"},
		{ID: "FIN", FacultyRaw: "  Prof. Shah "},
	}
	splits := []*FacultySplit{{CourseID: "DTI", FacultyBefore: "Prof. Kumar", FacultyAfter: "Prof. Rogers"}}
	d := NewFacultyDirectory(courses, splits, 5)

	assert.Equal(t, "Prof. Kumar", d.Resolve("DTI", 1))
	assert.Equal(t, "Prof. Kumar", d.Resolve("DTI", 5))
	assert.Equal(t, "Prof. Rogers", d.Resolve("DTI", 6))
	assert.Equal(t, "Prof. Shah", d.Resolve("FIN", 9))
	assert.Equal(t, "", d.Resolve("MISSING", 1))
	assert.True(t, d.Known("FIN"))
	assert.False(t, d.Known("MISSING"))
}

func TestFacultyDirectoryExplicitBoundary(t *testing.T) {
	d := NewFacultyDirectory(nil, []*FacultySplit{{CourseID: "X", FacultyBefore: "a", FacultyAfter: "b", BoundaryWeek: 2}}, 5)
	assert.Equal(t, "a", d.Resolve("X", 2))
	assert.Equal(t, "b", d.Resolve("X", 3))
}

func TestRoomLedger(t *testing.T) {
	l := NewRoomLedger(map[string]int{"S1": 2, "S2": 0})

	assert.True(t, l.PlaceSection("S1", "B"))
	assert.True(t, l.PlaceSection("S1", "A"))
	assert.False(t, l.PlaceSection("S1", "C"))
	assert.False(t, l.PlaceSection("S2", "A"))
	assert.Equal(t, 2, l.Used("S1"))

	rooms := l.RoomNumbers()
	assert.Equal(t, "Room_1", rooms[Assignment{SectionID: "A", SlotID: "S1"}])
	assert.Equal(t, "Room_2", rooms[Assignment{SectionID: "B", SlotID: "S1"}])
}

func TestDeficit(t *testing.T) {
	assert.Equal(t, 5, (&SessionCountRow{Sessions: 15, Ceiling: 20}).Deficit())
	assert.Equal(t, 0, (&SessionCountRow{Sessions: 20, Ceiling: 20}).Deficit())
}

func TestDayOrder(t *testing.T) {
	assert.Less(t, DayOrder("Mon"), DayOrder("Sun"))
	assert.Equal(t, 7, DayOrder("C1"))
}
