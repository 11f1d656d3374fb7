// Package primitives holds the value types shared across the storage engine:
// table/page/slot numbering, log sequence numbers, file paths, the PageID
// interface, and the Predicate enum used by field comparisons and
// selectivity estimation.
package primitives

import "github.com/spaolacci/murmur3"

// TableID identifies one heap file's table, derived deterministically from
// the file's absolute path.
type TableID uint64

// PageNumber is a zero-based page offset within a table's heap file.
type PageNumber uint64

// SlotID is a zero-based slot index within a heap page.
type SlotID uint16

// LSN is a log sequence number assigned by the write-ahead log.
type LSN uint64

// Filepath is an absolute path to a heap file on disk.
type Filepath string

// Hash derives a TableID deterministically from the file's absolute path, so
// that re-opening the same file always yields the same table identifier.
func (f Filepath) Hash() TableID {
	return TableID(murmur3.Sum64([]byte(f)))
}

// PageID uniquely addresses a page within the system: a table id paired with
// a page number. Implementations must have value equality and a stable hash.
type PageID interface {
	GetTableID() TableID
	PageNo() PageNumber
	Equals(other PageID) bool
	String() string
	HashCode() uint64
}
