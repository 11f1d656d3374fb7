// Package transaction defines TransactionID, the opaque handle that threads
// a unit of work through the lock manager and buffer pool.
package transaction

import (
	"fmt"
	"sync/atomic"
)

var counter int64

// TransactionID is an opaque, unique identifier for one unit of work. Two
// TransactionIDs are equal iff they carry the same id; a fresh one is never
// reused within a process lifetime.
type TransactionID struct {
	id int64
}

// NewTransactionID allocates a fresh, process-unique TransactionID.
func NewTransactionID() *TransactionID {
	return &TransactionID{id: atomic.AddInt64(&counter, 1)}
}

// ID returns the underlying numeric identifier, mainly for logging.
func (tid *TransactionID) ID() int64 {
	return tid.id
}

func (tid *TransactionID) String() string {
	return fmt.Sprintf("txn-%d", tid.id)
}

// Equals reports whether two TransactionIDs name the same transaction.
func (tid *TransactionID) Equals(other *TransactionID) bool {
	if tid == nil || other == nil {
		return tid == other
	}
	return tid.id == other.id
}
