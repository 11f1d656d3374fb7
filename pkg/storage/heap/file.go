package heap

import (
	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/dberr"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
)

// HeapFile is one operating-system file holding tuples of a single schema,
// laid out as a sequence of PAGE_SIZE pages. Its table id is a deterministic
// hash of the file's absolute path.
type HeapFile struct {
	base *baseFile
	desc *tuple.TupleDescription
}

// NewHeapFile opens (creating if absent) the heap file at filePath with the
// given schema.
func NewHeapFile(filePath string, desc *tuple.TupleDescription) (*HeapFile, error) {
	base, err := newBaseFile(filePath)
	if err != nil {
		return nil, err
	}
	return &HeapFile{base: base, desc: desc}, nil
}

// NewMemHeapFile builds a heap file backed by an in-memory block store
// rather than a disk file. name only seeds the table id. Contents do not
// survive the process; everything else behaves exactly like a disk-backed
// heap file, including page-aligned growth.
func NewMemHeapFile(name string, desc *tuple.TupleDescription) *HeapFile {
	return &HeapFile{base: newMemBaseFile(name), desc: desc}
}

func (hf *HeapFile) GetID() primitives.TableID { return hf.base.tableID }

func (hf *HeapFile) GetTupleDesc() *tuple.TupleDescription { return hf.desc }

// NumPages returns ceil(length / PAGE_SIZE).
func (hf *HeapFile) NumPages() int { return hf.base.NumPages() }

// ReadPage reads the page at pid's page number and decodes it as a HeapPage.
func (hf *HeapFile) ReadPage(pid primitives.PageID) (page.Page, error) {
	if pid.GetTableID() != hf.base.tableID {
		return nil, dberr.NewIllegalArgument("ReadPage", "page id does not belong to this file")
	}
	data, err := hf.base.readPageData(pid.PageNo())
	if err != nil {
		return nil, err
	}
	return NewHeapPage(pid, data, hf.desc)
}

// WritePage writes p's current encoding to its page number.
func (hf *HeapFile) WritePage(p page.Page) error {
	return hf.base.writePageData(p.GetID().PageNo(), p.GetPageData())
}

func (hf *HeapFile) Close() error { return hf.base.close() }

// InsertTuple scans pages in order, fetching each through pool with write
// permission, and places t in the first page with a free slot. If every
// existing page is full, the file grows by one page and the tuple goes
// there. Returns the one page that received the tuple, marked dirty by tid.
func (hf *HeapFile) InsertTuple(tid *transaction.TransactionID, t *tuple.Tuple, pool page.PageFetcher) ([]page.Page, error) {
	numPages := hf.NumPages()
	for i := 0; i < numPages; i++ {
		pid := page.NewPageDescriptor(hf.base.tableID, primitives.PageNumber(i))
		p, err := pool.GetPage(tid, pid, page.ReadWrite)
		if err != nil {
			return nil, err
		}
		hp := p.(*HeapPage)
		if hp.NumEmptySlots() == 0 {
			continue
		}
		if err := hp.InsertTuple(t); err != nil {
			return nil, err
		}
		hp.MarkDirty(true, tid)
		return []page.Page{hp}, nil
	}

	newPageNo, err := hf.base.allocateNewPage()
	if err != nil {
		return nil, err
	}
	pid := page.NewPageDescriptor(hf.base.tableID, newPageNo)
	p, err := pool.GetPage(tid, pid, page.ReadWrite)
	if err != nil {
		return nil, err
	}
	hp := p.(*HeapPage)
	if err := hp.InsertTuple(t); err != nil {
		return nil, err
	}
	hp.MarkDirty(true, tid)
	return []page.Page{hp}, nil
}

// DeleteTuple fetches t's page through pool with write permission and
// removes t from it.
func (hf *HeapFile) DeleteTuple(tid *transaction.TransactionID, t *tuple.Tuple, pool page.PageFetcher) (page.Page, error) {
	if t.RecordID == nil {
		return nil, dberr.NewDbException(dberr.CodeTupleMismatch, "DeleteTuple", "tuple has no RecordID")
	}

	p, err := pool.GetPage(tid, t.RecordID.PageID, page.ReadWrite)
	if err != nil {
		return nil, err
	}
	hp := p.(*HeapPage)
	if err := hp.DeleteTuple(t); err != nil {
		return nil, err
	}
	hp.MarkDirty(true, tid)
	return hp, nil
}

// Iterator returns a sequential scan over every tuple in the file, fetching
// pages through pool with READ_ONLY permission.
func (hf *HeapFile) Iterator(tid *transaction.TransactionID, pool page.PageFetcher) page.DbIterator {
	return newFileIterator(hf, tid, pool)
}
