// Package catalog provides the table lookup contract the buffer pool needs
// to resolve a table id to its backing file and schema. Table registration,
// renaming and persistence live elsewhere; StaticCatalog only answers the
// two lookups the storage engine performs.
package catalog

import (
	"fmt"
	"sync"

	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
)

// Catalog resolves a table id to its DbFile and schema.
type Catalog interface {
	GetDatabaseFile(tableID primitives.TableID) (page.DbFile, error)
	GetTupleDesc(tableID primitives.TableID) (*tuple.TupleDescription, error)
}

// StaticCatalog is a fixed, in-memory Catalog backed by a table-id-keyed
// map of already-open DbFiles, populated once at startup.
type StaticCatalog struct {
	mu    sync.RWMutex
	files map[primitives.TableID]page.DbFile
}

// NewStaticCatalog builds an empty catalog.
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{files: make(map[primitives.TableID]page.DbFile)}
}

// AddTable registers f under its own GetID() table id.
func (c *StaticCatalog) AddTable(f page.DbFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[f.GetID()] = f
}

func (c *StaticCatalog) GetDatabaseFile(tableID primitives.TableID) (page.DbFile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.files[tableID]
	if !ok {
		return nil, fmt.Errorf("catalog: no table registered for id %d", tableID)
	}
	return f, nil
}

func (c *StaticCatalog) GetTupleDesc(tableID primitives.TableID) (*tuple.TupleDescription, error) {
	f, err := c.GetDatabaseFile(tableID)
	if err != nil {
		return nil, err
	}
	return f.GetTupleDesc(), nil
}
