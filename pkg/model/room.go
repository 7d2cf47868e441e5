package model

import (
	"fmt"
	"sort"
)

// RoomLedger tracks which sections occupy the rooms of each slot.
type RoomLedger struct {
	capacity map[string]int
	occupied map[string][]string
}

// NewRoomLedger creates an empty ledger with the given per-slot room capacity.
func NewRoomLedger(capacity map[string]int) *RoomLedger {
	return &RoomLedger{capacity: capacity, occupied: make(map[string][]string)}
}

// IsAvailable checks if a slot still has a free room.
func (l *RoomLedger) IsAvailable(slotID string) bool {
	return len(l.occupied[slotID]) < l.capacity[slotID]
}

// PlaceSection takes a room in slotID for the section.
// Returns false if every room was occupied.
func (l *RoomLedger) PlaceSection(slotID, sectionID string) bool {
	if !l.IsAvailable(slotID) {
		return false
	}
	l.occupied[slotID] = append(l.occupied[slotID], sectionID)
	return true
}

// Used returns the number of rooms taken in slotID.
func (l *RoomLedger) Used(slotID string) int {
	return len(l.occupied[slotID])
}

// RoomNumbers labels the occupants of every slot Room_1..Room_k in section id order.
func (l *RoomLedger) RoomNumbers() map[Assignment]string {
	rooms := make(map[Assignment]string)
	for slotID, sections := range l.occupied {
		sorted := append([]string(nil), sections...)
		sort.Strings(sorted)
		for i, sec := range sorted {
			rooms[Assignment{SectionID: sec, SlotID: slotID}] = fmt.Sprintf("Room_%d", i+1)
		}
	}
	return rooms
}
