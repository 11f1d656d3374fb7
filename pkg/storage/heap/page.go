// Package heap implements the paged heap-file storage format: a bit-header
// slot directory per page (HeapPage) and random-access file I/O over pages
// of one table's schema (HeapFile).
package heap

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/dberr"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"
)

// HeapPage is the in-memory image of one disk page: a bit-addressable slot
// occupancy header followed by numSlots fixed-width tuple slots.
type HeapPage struct {
	mu sync.RWMutex

	pid       primitives.PageID
	desc      *tuple.TupleDescription
	tupleSize int

	numSlots    int
	headerBytes int

	header []byte
	slots  []*tuple.Tuple

	dirtier *transaction.TransactionID

	beforeImageMu sync.Mutex
	beforeImage   []byte
}

// numSlotsFor computes numSlots = floor((pageSize*8) / (tupleSize*8 + 1)),
// the slot-count law from the heap page format.
func numSlotsFor(pageSize, tupleSize int) int {
	return (pageSize * 8) / (tupleSize*8 + 1)
}

func headerBytesFor(numSlots int) int {
	return (numSlots + 7) / 8
}

// NewHeapPage parses a PAGE_SIZE-byte page image into a HeapPage: the
// occupancy header first, then numSlots fixed-width tuple slots, decoding
// each occupied slot's fields and skipping each empty one.
func NewHeapPage(pid primitives.PageID, data []byte, desc *tuple.TupleDescription) (*HeapPage, error) {
	pageSize := page.PageSize()
	if len(data) != pageSize {
		return nil, dberr.NewIllegalArgument("NewHeapPage", fmt.Sprintf("expected %d bytes, got %d", pageSize, len(data)))
	}

	tupleSize := desc.GetSize()
	numSlots := numSlotsFor(pageSize, tupleSize)
	headerBytes := headerBytesFor(numSlots)

	hp := &HeapPage{
		pid:         pid,
		desc:        desc,
		tupleSize:   tupleSize,
		numSlots:    numSlots,
		headerBytes: headerBytes,
		header:      append([]byte{}, data[:headerBytes]...),
		slots:       make([]*tuple.Tuple, numSlots),
	}

	r := bytes.NewReader(data[headerBytes:])
	for i := 0; i < numSlots; i++ {
		slotBytes := make([]byte, tupleSize)
		if _, err := io.ReadFull(r, slotBytes); err != nil {
			return nil, dberr.WrapIoError("NewHeapPage", err)
		}

		if !hp.isSlotUsedLocked(i) {
			continue
		}

		t, err := decodeTuple(slotBytes, desc)
		if err != nil {
			return nil, err
		}
		t.RecordID = tuple.NewRecordID(pid, primitives.SlotID(i))
		hp.slots[i] = t
	}

	return hp, nil
}

func decodeTuple(data []byte, desc *tuple.TupleDescription) (*tuple.Tuple, error) {
	t := tuple.NewTuple(desc)
	r := bytes.NewReader(data)
	for i := 0; i < desc.NumFields(); i++ {
		f, err := types.ParseField(r, desc.TypeAtIndex(i))
		if err != nil {
			return nil, dberr.WrapIoError("decodeTuple", err)
		}
		if err := t.SetField(i, f); err != nil {
			return nil, dberr.NewDbException(dberr.CodeSchemaMismatch, "decodeTuple", err.Error())
		}
	}
	return t, nil
}

func (hp *HeapPage) isSlotUsedLocked(i int) bool {
	byteIdx := i / 8
	bitIdx := uint(i % 8)
	return hp.header[byteIdx]&(1<<bitIdx) != 0
}

// IsSlotUsed reports whether slot i is currently occupied.
func (hp *HeapPage) IsSlotUsed(i int) bool {
	hp.mu.RLock()
	defer hp.mu.RUnlock()
	return hp.isSlotUsedLocked(i)
}

func (hp *HeapPage) setSlotUsedLocked(i int, used bool) {
	byteIdx := i / 8
	bitIdx := uint(i % 8)
	if used {
		hp.header[byteIdx] |= 1 << bitIdx
	} else {
		hp.header[byteIdx] &^= 1 << bitIdx
	}
}

// GetID returns this page's identifier.
func (hp *HeapPage) GetID() primitives.PageID {
	return hp.pid
}

// NumSlots returns the total slot count on this page.
func (hp *HeapPage) NumSlots() int {
	return hp.numSlots
}

// NumEmptySlots returns the count of unoccupied slots.
func (hp *HeapPage) NumEmptySlots() int {
	hp.mu.RLock()
	defer hp.mu.RUnlock()
	count := 0
	for i := 0; i < hp.numSlots; i++ {
		if !hp.isSlotUsedLocked(i) {
			count++
		}
	}
	return count
}

// GetPageData serializes the page back to its PAGE_SIZE-byte on-disk form.
// It is the inverse of NewHeapPage: decode(encode(p)) reproduces p exactly.
func (hp *HeapPage) GetPageData() []byte {
	hp.mu.RLock()
	defer hp.mu.RUnlock()
	return hp.encodeLocked()
}

func (hp *HeapPage) encodeLocked() []byte {
	pageSize := page.PageSize()
	buf := make([]byte, pageSize)
	copy(buf, hp.header)

	offset := hp.headerBytes
	for i := 0; i < hp.numSlots; i++ {
		if hp.isSlotUsedLocked(i) {
			slotBuf := new(bytes.Buffer)
			t := hp.slots[i]
			for f := 0; f < t.NumFields(); f++ {
				_ = t.GetField(f).Serialize(slotBuf)
			}
			copy(buf[offset:offset+hp.tupleSize], slotBuf.Bytes())
		}
		offset += hp.tupleSize
	}
	return buf
}

// InsertTuple places t into the lowest-indexed empty slot, marks that
// slot's header bit, and stamps t's RecordID to (pid, slot).
func (hp *HeapPage) InsertTuple(t *tuple.Tuple) error {
	hp.mu.Lock()
	defer hp.mu.Unlock()

	if !t.Desc.Equal(hp.desc) {
		return dberr.NewDbException(dberr.CodeSchemaMismatch, "InsertTuple", "tuple schema does not match page schema")
	}

	for i := 0; i < hp.numSlots; i++ {
		if hp.isSlotUsedLocked(i) {
			continue
		}
		hp.setSlotUsedLocked(i, true)
		hp.slots[i] = t
		t.RecordID = tuple.NewRecordID(hp.pid, primitives.SlotID(i))
		return nil
	}

	return dberr.NewDbException(dberr.CodePageFull, "InsertTuple", "no empty slot on page")
}

// DeleteTuple clears the slot that t's RecordID names, failing if the slot
// is empty or holds a different tuple.
func (hp *HeapPage) DeleteTuple(t *tuple.Tuple) error {
	hp.mu.Lock()
	defer hp.mu.Unlock()

	if t.RecordID == nil || !t.RecordID.PageID.Equals(hp.pid) {
		return dberr.NewDbException(dberr.CodeTupleMismatch, "DeleteTuple", "tuple's RecordID does not reference this page")
	}

	slot := int(t.RecordID.Slot)
	if slot < 0 || slot >= hp.numSlots || !hp.isSlotUsedLocked(slot) {
		return dberr.NewDbException(dberr.CodeSlotEmpty, "DeleteTuple", "referenced slot is empty")
	}

	occupant := hp.slots[slot]
	if !occupant.RecordID.Equals(t.RecordID) {
		return dberr.NewDbException(dberr.CodeTupleMismatch, "DeleteTuple", "referenced slot holds a different tuple")
	}

	hp.setSlotUsedLocked(slot, false)
	hp.slots[slot] = nil
	return nil
}

// MarkDirty records (or clears) the transaction that last dirtied this page.
func (hp *HeapPage) MarkDirty(dirty bool, tid *transaction.TransactionID) {
	hp.mu.Lock()
	defer hp.mu.Unlock()
	if dirty {
		hp.dirtier = tid
	} else {
		hp.dirtier = nil
	}
}

// IsDirty returns the dirtying transaction, or nil if the page is clean.
func (hp *HeapPage) IsDirty() *transaction.TransactionID {
	hp.mu.RLock()
	defer hp.mu.RUnlock()
	return hp.dirtier
}

// SetBeforeImage snapshots the current encoding as the before-image used
// by the log at flush time.
func (hp *HeapPage) SetBeforeImage() {
	data := hp.GetPageData()
	hp.beforeImageMu.Lock()
	defer hp.beforeImageMu.Unlock()
	hp.beforeImage = data
}

// GetBeforeImage returns a page holding the bytes as of the last
// SetBeforeImage call, or the current bytes if none was ever taken.
func (hp *HeapPage) GetBeforeImage() page.Page {
	hp.beforeImageMu.Lock()
	snapshot := hp.beforeImage
	hp.beforeImageMu.Unlock()

	if snapshot == nil {
		snapshot = hp.GetPageData()
	}

	before, err := NewHeapPage(hp.pid, snapshot, hp.desc)
	if err != nil {
		// snapshot was produced by GetPageData/encodeLocked and is always
		// PAGE_SIZE bytes of a page matching hp.desc, so this cannot fail.
		panic(fmt.Sprintf("heap: corrupt before-image for %s: %v", hp.pid, err))
	}
	return before
}

// Iterator returns the page's occupied tuples in ascending slot order.
func (hp *HeapPage) Iterator() []*tuple.Tuple {
	hp.mu.RLock()
	defer hp.mu.RUnlock()

	tuples := make([]*tuple.Tuple, 0, hp.numSlots)
	for i := 0; i < hp.numSlots; i++ {
		if hp.isSlotUsedLocked(i) {
			tuples = append(tuples, hp.slots[i])
		}
	}
	return tuples
}
