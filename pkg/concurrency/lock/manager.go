// Package lock implements per-page shared/exclusive locking with upgrade
// and idempotent re-acquisition. Deadlocks are avoided by timeout, not by
// wait-for-graph detection: the manager itself never blocks — callers that
// need to wait retry acquisition in a loop bounded by their own timeout.
package lock

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/primitives"
)

// LockType is a page lock's mode.
type LockType int

const (
	SharedLock LockType = iota
	ExclusiveLock
)

func (lt LockType) String() string {
	if lt == ExclusiveLock {
		return "X"
	}
	return "S"
}

// Lock is one transaction's hold on a page.
type Lock struct {
	TID  *transaction.TransactionID
	Type LockType
}

// pageLock is the set of Locks currently held on one page. Its mutex both
// guards that set and serializes every acquisition attempt for the page,
// per the ordering guarantee that every acquireLock observes the effects
// of every preceding release.
type pageLock struct {
	mu    sync.Mutex
	locks []*Lock
}

// Manager is the lock table: a mapping from page to pageLock, plus a
// per-transaction index of held page keys so releasing a whole transaction
// touches only the pages it actually locked. The mutex guards map
// structure changes only.
type Manager struct {
	mu        sync.Mutex
	pageLocks map[string]*pageLock
	holdings  map[int64]mapset.Set[string]
}

// NewManager builds an empty lock manager.
func NewManager() *Manager {
	return &Manager{
		pageLocks: make(map[string]*pageLock),
		holdings:  make(map[int64]mapset.Set[string]),
	}
}

func (m *Manager) lockFor(key string) *pageLock {
	m.mu.Lock()
	pl, ok := m.pageLocks[key]
	if !ok {
		pl = &pageLock{}
		m.pageLocks[key] = pl
	}
	m.mu.Unlock()

	return pl
}

func (m *Manager) noteHeld(tid *transaction.TransactionID, key string) {
	m.mu.Lock()
	held, ok := m.holdings[tid.ID()]
	if !ok {
		held = mapset.NewSet[string]()
		m.holdings[tid.ID()] = held
	}
	m.mu.Unlock()
	held.Add(key)
}

func (m *Manager) noteReleased(tid *transaction.TransactionID, key string) {
	m.mu.Lock()
	held, ok := m.holdings[tid.ID()]
	m.mu.Unlock()
	if ok {
		held.Remove(key)
	}
}

func indexOf(locks []*Lock, tid *transaction.TransactionID) int {
	for i, l := range locks {
		if l.TID.Equals(tid) {
			return i
		}
	}
	return -1
}

// TryAcquireLock makes a single, non-blocking attempt to grant (tid, mode)
// on pid, applying the acquisition table exactly. It reports whether the
// lock was granted (including idempotent re-grants and in-place upgrades).
func (m *Manager) TryAcquireLock(tid *transaction.TransactionID, pid primitives.PageID, mode LockType) bool {
	key := pid.String()
	granted := m.tryAcquire(tid, key, mode)
	if granted {
		m.noteHeld(tid, key)
	}
	return granted
}

func (m *Manager) tryAcquire(tid *transaction.TransactionID, key string, mode LockType) bool {
	pl := m.lockFor(key)
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if len(pl.locks) == 0 {
		pl.locks = append(pl.locks, &Lock{TID: tid, Type: mode})
		return true
	}

	holderIdx := indexOf(pl.locks, tid)
	holderPresent := holderIdx >= 0

	// Any X holder other than tid blocks every request.
	for _, l := range pl.locks {
		if l.Type == ExclusiveLock && !l.TID.Equals(tid) {
			return false
		}
	}

	if holderPresent {
		held := pl.locks[holderIdx].Type
		if held == ExclusiveLock {
			return true // idempotent
		}
		if mode == SharedLock {
			return true // idempotent
		}
		// held == SharedLock, mode == ExclusiveLock: upgrade only if tid
		// is the sole holder.
		if len(pl.locks) == 1 {
			pl.locks[holderIdx].Type = ExclusiveLock
			return true
		}
		return false
	}

	// tid absent; every existing holder is S (the X-holder check above
	// already returned for any X not held by tid).
	if mode == SharedLock {
		pl.locks = append(pl.locks, &Lock{TID: tid, Type: mode})
		return true
	}
	return false
}

// ReleaseLock removes tid's entry on pid, if any. Idempotent.
func (m *Manager) ReleaseLock(tid *transaction.TransactionID, pid primitives.PageID) {
	key := pid.String()
	pl := m.lockFor(key)

	pl.mu.Lock()
	if idx := indexOf(pl.locks, tid); idx >= 0 {
		pl.locks = append(pl.locks[:idx], pl.locks[idx+1:]...)
	}
	pl.mu.Unlock()

	m.noteReleased(tid, key)
}

// HoldsLock reports whether tid currently holds any lock on pid.
func (m *Manager) HoldsLock(tid *transaction.TransactionID, pid primitives.PageID) bool {
	pl := m.lockFor(pid.String())
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return indexOf(pl.locks, tid) >= 0
}

// ReleaseAll releases every lock tid holds across every page.
func (m *Manager) ReleaseAll(tid *transaction.TransactionID) {
	m.mu.Lock()
	held, ok := m.holdings[tid.ID()]
	if ok {
		delete(m.holdings, tid.ID())
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	for _, key := range held.ToSlice() {
		pl := m.lockFor(key)
		pl.mu.Lock()
		if idx := indexOf(pl.locks, tid); idx >= 0 {
			pl.locks = append(pl.locks[:idx], pl.locks[idx+1:]...)
		}
		pl.mu.Unlock()
	}
}

// IsPageLocked reports whether pid currently has any holder at all.
func (m *Manager) IsPageLocked(pid primitives.PageID) bool {
	pl := m.lockFor(pid.String())
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return len(pl.locks) > 0
}
