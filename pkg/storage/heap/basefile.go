package heap

import (
	"io"
	"os"
	"sync"

	"github.com/dsnet/golib/memfile"

	"heapstore/pkg/dberr"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
)

// blockStore is the backing storage a baseFile reads and writes pages
// against: a real operating-system file in production, or an in-memory
// buffer for tests and ephemeral tables.
type blockStore interface {
	io.ReaderAt
	io.WriterAt
	Size() (int64, error)
	Sync() error
	Close() error
}

// osStore is the disk-backed blockStore.
type osStore struct {
	file *os.File
}

func (s *osStore) ReadAt(p []byte, off int64) (int, error)  { return s.file.ReadAt(p, off) }
func (s *osStore) WriteAt(p []byte, off int64) (int, error) { return s.file.WriteAt(p, off) }
func (s *osStore) Sync() error                              { return s.file.Sync() }
func (s *osStore) Close() error                             { return s.file.Close() }

func (s *osStore) Size() (int64, error) {
	info, err := s.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// memStore is a blockStore held entirely in memory. Sync and Close are
// no-ops; the contents vanish with the process.
type memStore struct {
	file *memfile.File
}

func newMemStore() *memStore {
	return &memStore{file: memfile.New(make([]byte, 0))}
}

func (s *memStore) ReadAt(p []byte, off int64) (int, error)  { return s.file.ReadAt(p, off) }
func (s *memStore) WriteAt(p []byte, off int64) (int, error) { return s.file.WriteAt(p, off) }
func (s *memStore) Size() (int64, error)                     { return int64(len(s.file.Bytes())), nil }
func (s *memStore) Sync() error                              { return nil }
func (s *memStore) Close() error                             { return nil }

// baseFile is the shared page-aligned I/O core for a heap file: random
// access reads and writes of fixed PAGE_SIZE blocks, plus append-only
// growth when a new page is allocated.
type baseFile struct {
	mu       sync.RWMutex
	store    blockStore
	filePath primitives.Filepath
	tableID  primitives.TableID
}

func newBaseFile(filePath string) (*baseFile, error) {
	f, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, dberr.WrapIoError("newBaseFile", err)
	}
	path := primitives.Filepath(filePath)
	return &baseFile{store: &osStore{file: f}, filePath: path, tableID: path.Hash()}, nil
}

// newMemBaseFile builds a baseFile over an in-memory block store. name is
// only used to derive the table id, the way a real file's path would be.
func newMemBaseFile(name string) *baseFile {
	path := primitives.Filepath(name)
	return &baseFile{store: newMemStore(), filePath: path, tableID: path.Hash()}
}

// NumPages returns ceil(length / PAGE_SIZE).
func (b *baseFile) NumPages() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	size, err := b.store.Size()
	if err != nil {
		return 0
	}
	pageSize := int64(page.PageSize())
	return int((size + pageSize - 1) / pageSize)
}

// readPageData reads exactly PAGE_SIZE bytes starting at pageNo*PAGE_SIZE.
func (b *baseFile) readPageData(pageNo primitives.PageNumber) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	pageSize := page.PageSize()
	buf := make([]byte, pageSize)
	offset := int64(pageNo) * int64(pageSize)
	n, err := b.store.ReadAt(buf, offset)
	if err != nil {
		return nil, dberr.NewIllegalArgument("readPageData", err.Error())
	}
	if n != pageSize {
		return nil, dberr.NewIllegalArgument("readPageData", "short read")
	}
	return buf, nil
}

// writePageData writes exactly PAGE_SIZE bytes at pageNo*PAGE_SIZE,
// implicitly growing the file if writing beyond its current length.
func (b *baseFile) writePageData(pageNo primitives.PageNumber, data []byte) error {
	pageSize := page.PageSize()
	if len(data) != pageSize {
		return dberr.NewIllegalArgument("writePageData", "data is not PAGE_SIZE bytes")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	offset := int64(pageNo) * int64(pageSize)
	if _, err := b.store.WriteAt(data, offset); err != nil {
		return dberr.WrapIoError("writePageData", err)
	}
	return b.store.Sync()
}

// allocateNewPage appends one zeroed PAGE_SIZE page and returns its number.
func (b *baseFile) allocateNewPage() (primitives.PageNumber, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	size, err := b.store.Size()
	if err != nil {
		return 0, dberr.WrapIoError("allocateNewPage", err)
	}
	pageSize := int64(page.PageSize())
	numPages := (size + pageSize - 1) / pageSize
	offset := numPages * pageSize

	blank := make([]byte, pageSize)
	if _, err := b.store.WriteAt(blank, offset); err != nil {
		return 0, dberr.WrapIoError("allocateNewPage", err)
	}
	if err := b.store.Sync(); err != nil {
		return 0, dberr.WrapIoError("allocateNewPage", err)
	}
	return primitives.PageNumber(numPages), nil
}

func (b *baseFile) close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Close()
}
