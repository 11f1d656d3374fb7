// Package walog implements the write-ahead log's two in-scope operations:
// appending a before/after page image under a fresh LSN, and forcing
// everything appended so far durably to disk. Replay and recovery are out
// of scope; FileLog is an append-only writer, never a reader.
package walog

import (
	"bytes"
	"encoding/binary"
	"os"
	"sync"

	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/dberr"
	"heapstore/pkg/logging"
	"heapstore/pkg/primitives"
)

// LogFile is the buffer pool's view of the write-ahead log.
type LogFile interface {
	// LogWrite appends a record capturing before and after images of one
	// page write on tid's behalf, returning the LSN assigned to it.
	LogWrite(tid *transaction.TransactionID, before, after []byte) (primitives.LSN, error)
	// Force durably writes every record appended so far.
	Force() error
}

// FileLog is an append-only LogFile backed by one operating-system file.
// Records are buffered in memory by LogWrite and only reach disk on Force,
// so the WAL invariant (force precedes the data write it protects) is the
// caller's responsibility to sequence, not this type's to enforce.
type FileLog struct {
	mu      sync.Mutex
	file    *os.File
	nextLSN primitives.LSN
	buffer  bytes.Buffer
}

// NewFileLog opens (creating if absent) the log file at path.
func NewFileLog(path string) (*FileLog, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, dberr.WrapIoError("NewFileLog", err)
	}
	return &FileLog{file: f, nextLSN: 1}, nil
}

// LogWrite appends a record to the in-memory buffer and assigns it the next
// LSN. The record is not durable until Force is called.
func (l *FileLog) LogWrite(tid *transaction.TransactionID, before, after []byte) (primitives.LSN, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lsn := l.nextLSN
	l.nextLSN++

	record := encodeRecord(lsn, tid, before, after)
	sizeHeader := make([]byte, 4)
	binary.BigEndian.PutUint32(sizeHeader, uint32(len(record)))

	l.buffer.Write(sizeHeader)
	l.buffer.Write(record)

	logging.Debug("wal append", "lsn", lsn, "tid", tid.String(), "bytes", len(record))
	return lsn, nil
}

// Force flushes every buffered record to disk and fsyncs the file.
func (l *FileLog) Force() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.buffer.Len() == 0 {
		return nil
	}
	if _, err := l.file.Write(l.buffer.Bytes()); err != nil {
		return dberr.WrapIoError("Force", err)
	}
	if err := l.file.Sync(); err != nil {
		return dberr.WrapIoError("Force", err)
	}
	l.buffer.Reset()
	return nil
}

// Close forces any pending records and closes the underlying file.
func (l *FileLog) Close() error {
	if err := l.Force(); err != nil {
		return err
	}
	return l.file.Close()
}

func encodeRecord(lsn primitives.LSN, tid *transaction.TransactionID, before, after []byte) []byte {
	var buf bytes.Buffer
	writeUint64(&buf, uint64(lsn))
	writeUint64(&buf, uint64(tid.ID()))
	writeBytesWithLength(&buf, before)
	writeBytesWithLength(&buf, after)
	return buf.Bytes()
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	buf.Write(b)
}

func writeBytesWithLength(buf *bytes.Buffer, data []byte) {
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(data)))
	buf.Write(lenBuf)
	buf.Write(data)
}
