package page

import (
	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/primitives"
)

// Page is one page-sized unit of cacheable, lockable, loggable state. The
// only implementation in this module is heap.HeapPage.
type Page interface {
	GetID() primitives.PageID
	// IsDirty returns the dirtying transaction, or nil if the page is clean.
	IsDirty() *transaction.TransactionID
	MarkDirty(dirty bool, tid *transaction.TransactionID)
	// GetPageData returns the PAGE_SIZE-byte on-disk encoding of the page.
	GetPageData() []byte
	// GetBeforeImage returns a page holding the bytes as of the last
	// SetBeforeImage call.
	GetBeforeImage() Page
	// SetBeforeImage snapshots the current encoding as the before-image.
	SetBeforeImage()
}
