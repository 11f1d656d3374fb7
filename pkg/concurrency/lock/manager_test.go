package lock

import (
	"testing"

	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
)

func TestAcquisitionRules(t *testing.T) {
	pid := page.NewPageDescriptor(1, 0)
	t1 := transaction.NewTransactionID()
	t2 := transaction.NewTransactionID()

	t.Run("empty page grants S or X", func(t *testing.T) {
		m := NewManager()
		if !m.TryAcquireLock(t1, pid, SharedLock) {
			t.Fatal("expected S grant on empty page")
		}
		m2 := NewManager()
		if !m2.TryAcquireLock(t1, pid, ExclusiveLock) {
			t.Fatal("expected X grant on empty page")
		}
	})

	t.Run("sole S holder upgrades to X", func(t *testing.T) {
		m := NewManager()
		m.TryAcquireLock(t1, pid, SharedLock)
		if !m.TryAcquireLock(t1, pid, ExclusiveLock) {
			t.Fatal("expected in-place upgrade")
		}
		if m.HoldsLock(t2, pid) {
			t.Fatal("t2 should hold nothing")
		}
	})

	t.Run("idempotent X re-acquisition", func(t *testing.T) {
		m := NewManager()
		m.TryAcquireLock(t1, pid, ExclusiveLock)
		if !m.TryAcquireLock(t1, pid, SharedLock) {
			t.Fatal("X holder re-requesting S should be idempotent grant")
		}
		if !m.TryAcquireLock(t1, pid, ExclusiveLock) {
			t.Fatal("X holder re-requesting X should be idempotent grant")
		}
	})

	t.Run("shared S holder with other S holders cannot upgrade", func(t *testing.T) {
		m := NewManager()
		m.TryAcquireLock(t1, pid, SharedLock)
		m.TryAcquireLock(t2, pid, SharedLock)
		if m.TryAcquireLock(t1, pid, ExclusiveLock) {
			t.Fatal("upgrade must be denied when other S holders are present")
		}
	})

	t.Run("S holders can multiplex, X blocks all others", func(t *testing.T) {
		m := NewManager()
		m.TryAcquireLock(t1, pid, SharedLock)
		if !m.TryAcquireLock(t2, pid, SharedLock) {
			t.Fatal("second S request should be granted alongside an existing S holder")
		}

		m2 := NewManager()
		m2.TryAcquireLock(t1, pid, ExclusiveLock)
		if m2.TryAcquireLock(t2, pid, SharedLock) {
			t.Fatal("S request must be denied while another tid holds X")
		}
		if m2.TryAcquireLock(t2, pid, ExclusiveLock) {
			t.Fatal("X request must be denied while another tid holds X")
		}
	})

	t.Run("absent tid cannot take X over existing S holders", func(t *testing.T) {
		m := NewManager()
		m.TryAcquireLock(t1, pid, SharedLock)
		if m.TryAcquireLock(t2, pid, ExclusiveLock) {
			t.Fatal("X request must be denied when other tids hold S")
		}
	})
}

func TestReleaseLockIsIdempotent(t *testing.T) {
	pid := page.NewPageDescriptor(1, 0)
	tid := transaction.NewTransactionID()
	m := NewManager()

	m.ReleaseLock(tid, pid) // no-op, nothing held
	m.TryAcquireLock(tid, pid, SharedLock)
	m.ReleaseLock(tid, pid)
	m.ReleaseLock(tid, pid) // idempotent

	if m.HoldsLock(tid, pid) {
		t.Fatal("lock should be released")
	}
}

func TestReleaseAllReleasesEveryPage(t *testing.T) {
	tid := transaction.NewTransactionID()
	m := NewManager()

	pids := []page.PageDescriptor{}
	for i := 0; i < 5; i++ {
		pids = append(pids, *page.NewPageDescriptor(1, primitives.PageNumber(i)))
	}
	for i := range pids {
		m.TryAcquireLock(tid, &pids[i], SharedLock)
	}

	m.ReleaseAll(tid)

	for i := range pids {
		if m.HoldsLock(tid, &pids[i]) {
			t.Fatalf("page %d should be unlocked after ReleaseAll", i)
		}
	}
}
