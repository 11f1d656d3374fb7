package tuple

import (
	"fmt"

	"heapstore/pkg/primitives"
)

// RecordID identifies a tuple's location: the page holding it and the slot
// index within that page.
type RecordID struct {
	PageID primitives.PageID
	Slot   primitives.SlotID
}

// NewRecordID builds a RecordID for the given page and slot.
func NewRecordID(pid primitives.PageID, slot primitives.SlotID) *RecordID {
	return &RecordID{PageID: pid, Slot: slot}
}

// Equals reports whether two RecordIDs name the same page and slot.
func (r *RecordID) Equals(other *RecordID) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Slot == other.Slot && r.PageID.Equals(other.PageID)
}

func (r *RecordID) String() string {
	return fmt.Sprintf("RecordID(page=%s, slot=%d)", r.PageID.String(), r.Slot)
}
