package page

import (
	"encoding/binary"
	"fmt"

	"github.com/spaolacci/murmur3"

	"heapstore/pkg/primitives"
)

// PageDescriptor is the concrete primitives.PageID implementation: a table
// id paired with a zero-based page number.
type PageDescriptor struct {
	tableID primitives.TableID
	pageNum primitives.PageNumber
}

// NewPageDescriptor builds a PageDescriptor addressing page pageNum of
// table tableID.
func NewPageDescriptor(tableID primitives.TableID, pageNum primitives.PageNumber) *PageDescriptor {
	return &PageDescriptor{tableID: tableID, pageNum: pageNum}
}

func (p *PageDescriptor) GetTableID() primitives.TableID { return p.tableID }

func (p *PageDescriptor) PageNo() primitives.PageNumber { return p.pageNum }

func (p *PageDescriptor) Equals(other primitives.PageID) bool {
	o, ok := other.(*PageDescriptor)
	if !ok {
		return false
	}
	return p.tableID == o.tableID && p.pageNum == o.pageNum
}

func (p *PageDescriptor) String() string {
	return fmt.Sprintf("PageDescriptor(table=%d, page=%d)", p.tableID, p.pageNum)
}

// serialize packs the descriptor into 16 bytes for hashing.
func (p *PageDescriptor) serialize() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(p.tableID))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(p.pageNum))
	return buf
}

func (p *PageDescriptor) HashCode() uint64 {
	return murmur3.Sum64(p.serialize())
}
