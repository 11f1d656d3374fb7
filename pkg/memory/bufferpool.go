package memory

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"heapstore/pkg/catalog"
	"heapstore/pkg/concurrency/lock"
	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/dberr"
	"heapstore/pkg/logging"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
	"heapstore/pkg/walog"
)

// DefaultNumPages is the buffer pool capacity used unless the caller
// specifies otherwise.
const DefaultNumPages = 50

// maxLockWaitMillis bounds the randomized per-request lock-wait timeout;
// each GetPage draws its own deadline from [0, 2000) ms.
const maxLockWaitMillis = 2000

const lockPollInterval = 2 * time.Millisecond

// BufferPool is the bounded page cache fronting every heap file: every
// page fetch, insert and delete passes through here so that locking,
// caching and WAL ordering stay centralized.
type BufferPool struct {
	mu       sync.Mutex
	cache    *pageCache
	numPages int

	catalog     catalog.Catalog
	lockManager *lock.Manager
	log         walog.LogFile
}

// NewBufferPool builds a buffer pool capped at numPages resident pages.
func NewBufferPool(cat catalog.Catalog, lockManager *lock.Manager, log walog.LogFile, numPages int) *BufferPool {
	if numPages <= 0 {
		numPages = DefaultNumPages
	}
	return &BufferPool{
		cache:       newPageCache(numPages),
		numPages:    numPages,
		catalog:     cat,
		lockManager: lockManager,
		log:         log,
	}
}

// GetPage resolves pid's lock under perm, then returns the resident page,
// reading it from disk and evicting as needed on a cache miss.
func (bp *BufferPool) GetPage(tid *transaction.TransactionID, pid primitives.PageID, perm page.Permissions) (page.Page, error) {
	mode := lock.SharedLock
	if perm == page.ReadWrite {
		mode = lock.ExclusiveLock
	}
	if err := bp.acquireLock(tid, pid, mode); err != nil {
		return nil, err
	}

	bp.mu.Lock()
	if p, ok := bp.cache.get(pid); ok {
		bp.mu.Unlock()
		return p, nil
	}
	if err := bp.makeRoomLocked(); err != nil {
		bp.mu.Unlock()
		return nil, err
	}
	bp.mu.Unlock()

	dbFile, err := bp.catalog.GetDatabaseFile(pid.GetTableID())
	if err != nil {
		return nil, err
	}
	p, err := dbFile.ReadPage(pid)
	if err != nil {
		return nil, err
	}

	bp.mu.Lock()
	defer bp.mu.Unlock()
	if existing, ok := bp.cache.get(pid); ok {
		return existing, nil
	}
	if err := bp.makeRoomLocked(); err != nil {
		return nil, err
	}
	bp.cache.put(pid, p)
	return p, nil
}

// acquireLock attempts the requested lock once immediately; only if that
// fails does it compute a randomized deadline and retry. Computing the
// deadline before the first attempt would make every fresh acquisition
// pay a sleep even when nothing contends for the page.
func (bp *BufferPool) acquireLock(tid *transaction.TransactionID, pid primitives.PageID, mode lock.LockType) error {
	if bp.lockManager.TryAcquireLock(tid, pid, mode) {
		return nil
	}

	timeout := time.Duration(rand.Intn(maxLockWaitMillis)) * time.Millisecond
	deadline := time.Now().Add(timeout)

	for {
		if time.Now().After(deadline) {
			logging.Warn("lock wait timed out", "tid", tid.String(), "page", pid.String(), "mode", mode.String())
			return &dberr.TransactionAborted{
				Operation: "getPage",
				Cause:     fmt.Errorf("could not acquire %s lock on %s within %s", mode, pid, timeout),
			}
		}
		time.Sleep(lockPollInterval)
		if bp.lockManager.TryAcquireLock(tid, pid, mode) {
			return nil
		}
	}
}

// makeRoomLocked evicts pages, bp.mu held, until the cache has space for a
// new entry.
func (bp *BufferPool) makeRoomLocked() error {
	for bp.cache.size() >= bp.numPages {
		if err := bp.evictPageLocked(); err != nil {
			return err
		}
	}
	return nil
}

// evictPageLocked implements NO-STEAL: it discards the least-recently-used
// clean page. If every resident page is dirty, nothing can be evicted
// without violating NO-STEAL.
func (bp *BufferPool) evictPageLocked() error {
	for _, p := range bp.cache.pagesLRUToMRU() {
		if p.IsDirty() == nil {
			bp.cache.remove(p.GetID())
			logging.Debug("evicted page", "page", p.GetID().String())
			return nil
		}
	}
	return dberr.NewDbException(dberr.CodeAllDirty, "evictPage", "all pages are dirty, cannot evict (NO-STEAL policy)")
}

// InsertTuple delegates to tableID's heap file (which fetches pages through
// this pool with write permission), then ensures every page it touched is
// marked dirty and resident.
func (bp *BufferPool) InsertTuple(tid *transaction.TransactionID, tableID primitives.TableID, t *tuple.Tuple) ([]page.Page, error) {
	dbFile, err := bp.catalog.GetDatabaseFile(tableID)
	if err != nil {
		return nil, err
	}
	pages, err := dbFile.InsertTuple(tid, t, bp)
	if err != nil {
		return nil, err
	}
	if err := bp.applyMutatedPages(tid, pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// DeleteTuple delegates to t's page's heap file.
func (bp *BufferPool) DeleteTuple(tid *transaction.TransactionID, t *tuple.Tuple) (page.Page, error) {
	if t.RecordID == nil {
		return nil, dberr.NewDbException(dberr.CodeTupleMismatch, "DeleteTuple", "tuple has no RecordID")
	}
	dbFile, err := bp.catalog.GetDatabaseFile(t.RecordID.PageID.GetTableID())
	if err != nil {
		return nil, err
	}
	p, err := dbFile.DeleteTuple(tid, t, bp)
	if err != nil {
		return nil, err
	}
	if err := bp.applyMutatedPages(tid, []page.Page{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (bp *BufferPool) applyMutatedPages(tid *transaction.TransactionID, pages []page.Page) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	for _, p := range pages {
		p.MarkDirty(true, tid)
		if _, ok := bp.cache.get(p.GetID()); !ok {
			if err := bp.makeRoomLocked(); err != nil {
				return err
			}
		}
		bp.cache.put(p.GetID(), p)
	}
	return nil
}

// flushPage is a no-op on a clean page. Otherwise it WAL-logs the page's
// before/after images, forces the log, and only then writes the page to
// its heap file — log record and force precede the data write.
func (bp *BufferPool) flushPage(p page.Page) error {
	tid := p.IsDirty()
	if tid == nil {
		return nil
	}

	dbFile, err := bp.catalog.GetDatabaseFile(p.GetID().GetTableID())
	if err != nil {
		return err
	}

	before := p.GetBeforeImage().GetPageData()
	after := p.GetPageData()
	if _, err := bp.log.LogWrite(tid, before, after); err != nil {
		return err
	}
	if err := bp.log.Force(); err != nil {
		return err
	}
	if err := dbFile.WritePage(p); err != nil {
		return err
	}
	p.MarkDirty(false, nil)
	return nil
}

// TransactionComplete finishes tid: on commit, flushes every page it
// dirtied and then snapshots the before-image of every resident page; on
// abort, discards the in-memory state of the pages it dirtied in
// favor of a fresh read from disk. Either way every lock tid holds is
// released only after the pages are settled.
func (bp *BufferPool) TransactionComplete(tid *transaction.TransactionID, commit bool) error {
	bp.mu.Lock()
	var dirtied []page.Page
	for _, p := range bp.cache.pagesLRUToMRU() {
		if d := p.IsDirty(); d != nil && d.Equals(tid) {
			dirtied = append(dirtied, p)
		}
	}

	var firstErr error
	noteErr := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if commit {
		for _, p := range dirtied {
			noteErr(bp.flushPage(p))
		}
		for _, p := range bp.cache.pagesLRUToMRU() {
			p.SetBeforeImage()
		}
	} else {
		for _, p := range dirtied {
			dbFile, err := bp.catalog.GetDatabaseFile(p.GetID().GetTableID())
			if err != nil {
				noteErr(err)
				continue
			}
			fresh, err := dbFile.ReadPage(p.GetID())
			if err != nil {
				noteErr(err)
				continue
			}
			bp.cache.put(p.GetID(), fresh)
		}
	}
	bp.mu.Unlock()

	bp.lockManager.ReleaseAll(tid)
	return firstErr
}
