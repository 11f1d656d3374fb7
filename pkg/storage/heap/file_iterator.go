package heap

import (
	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/dberr"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
)

// fileIterator sequentially scans every tuple in a HeapFile. Unlike a
// direct file reader, every page it touches is fetched through a
// page.PageFetcher with READ_ONLY permission, so the scan observes the
// same cached, lock-protected page images every other reader does.
type fileIterator struct {
	file *HeapFile
	tid  *transaction.TransactionID
	pool page.PageFetcher

	pageNum    int
	pageTuples []*tuple.Tuple
	tupleIdx   int
	isOpen     bool
}

func newFileIterator(file *HeapFile, tid *transaction.TransactionID, pool page.PageFetcher) *fileIterator {
	return &fileIterator{file: file, tid: tid, pool: pool}
}

// Open fetches page 0 (if any pages exist) and positions the iterator at
// its first tuple.
func (it *fileIterator) Open() error {
	it.isOpen = true
	it.pageNum = 0
	it.tupleIdx = 0
	it.pageTuples = nil
	return it.loadPage(0)
}

func (it *fileIterator) loadPage(pageNum int) error {
	if pageNum >= it.file.NumPages() {
		it.pageTuples = nil
		return nil
	}
	pid := page.NewPageDescriptor(it.file.base.tableID, primitives.PageNumber(pageNum))
	p, err := it.pool.GetPage(it.tid, pid, page.ReadOnly)
	if err != nil {
		return err
	}
	it.pageTuples = p.(*HeapPage).Iterator()
	it.tupleIdx = 0
	return nil
}

// HasNext advances past exhausted pages and reports whether a tuple remains.
func (it *fileIterator) HasNext() (bool, error) {
	if !it.isOpen {
		return false, nil
	}
	for it.tupleIdx >= len(it.pageTuples) {
		it.pageNum++
		if it.pageNum >= it.file.NumPages() {
			return false, nil
		}
		if err := it.loadPage(it.pageNum); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Next returns the next tuple in slot order, advancing pages as needed.
func (it *fileIterator) Next() (*tuple.Tuple, error) {
	has, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, dberr.NewIllegalArgument("Next", "no more tuples")
	}
	t := it.pageTuples[it.tupleIdx]
	it.tupleIdx++
	return t, nil
}

// Rewind closes and reopens the iterator, restarting the scan from page 0.
func (it *fileIterator) Rewind() error {
	it.Close()
	return it.Open()
}

// Close drops the inner page iterator.
func (it *fileIterator) Close() {
	it.isOpen = false
	it.pageTuples = nil
}
