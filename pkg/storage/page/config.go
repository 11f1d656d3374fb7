// Package page holds the page-level primitives shared by every storage
// component: the page identifier, the Page and DbFile interfaces, and the
// mutable PAGE_SIZE configuration.
package page

// DefaultPageSize is the page width used unless overridden for a test.
const DefaultPageSize = 4096

var pageSize = DefaultPageSize

// PageSize returns the page width currently in effect.
func PageSize() int {
	return pageSize
}

// SetPageSizeForTest overrides PageSize for the duration of a test. Callers
// must call ResetPageSize (typically via t.Cleanup) before the test ends.
func SetPageSizeForTest(size int) {
	pageSize = size
}

// ResetPageSize restores PageSize to DefaultPageSize.
func ResetPageSize() {
	pageSize = DefaultPageSize
}
