// Command loadtest drives many concurrent transactions against a buffer
// pool backed by a single heap file, exercising the lock manager's
// contention paths the way a real workload would.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"heapstore/pkg/catalog"
	"heapstore/pkg/concurrency/lock"
	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/logging"
	"heapstore/pkg/memory"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/heap"
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"
	"heapstore/pkg/walog"
)

func main() {
	workers := flag.Int("workers", 8, "number of concurrent transactions")
	insertsPerWorker := flag.Int("inserts", 200, "tuples inserted per transaction")
	dir := flag.String("dir", "", "directory for the heap file and log (defaults to a temp dir)")
	mem := flag.Bool("mem", false, "back the heap file with memory instead of disk")
	flag.Parse()

	if err := run(*workers, *insertsPerWorker, *dir, *mem); err != nil {
		fmt.Fprintln(os.Stderr, "loadtest:", err)
		os.Exit(1)
	}
}

func run(workers, insertsPerWorker int, dir string, mem bool) error {
	logging.Init(logging.Config{Level: logging.LevelInfo})

	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "heapstore-loadtest")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)
	}

	desc, err := tuple.NewTupleDesc([]types.FieldType{types.Int}, []string{"value"})
	if err != nil {
		return err
	}

	var heapFile *heap.HeapFile
	if mem {
		heapFile = heap.NewMemHeapFile("mem://loadtest.heap", desc)
	} else {
		heapFile, err = heap.NewHeapFile(filepath.Join(dir, "data.heap"), desc)
		if err != nil {
			return err
		}
	}
	defer heapFile.Close()

	logFile, err := walog.NewFileLog(filepath.Join(dir, "wal.log"))
	if err != nil {
		return err
	}
	defer logFile.Close()

	cat := catalog.NewStaticCatalog()
	cat.AddTable(heapFile)

	lockManager := lock.NewManager()
	bufferPool := memory.NewBufferPool(cat, lockManager, logFile, memory.DefaultNumPages)

	g, ctx := errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			return runWorker(ctx, bufferPool, heapFile.GetID(), desc, w, insertsPerWorker)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logging.Info("loadtest complete", "workers", workers, "insertsPerWorker", insertsPerWorker, "pages", heapFile.NumPages())
	return nil
}

func runWorker(ctx context.Context, bufferPool *memory.BufferPool, tableID primitives.TableID, desc *tuple.TupleDescription, workerID, inserts int) error {
	_ = ctx
	tid := transaction.NewTransactionID()

	for i := 0; i < inserts; i++ {
		t := tuple.NewTuple(desc)
		if err := t.SetField(0, types.NewIntField(int32(workerID*1_000_000+i))); err != nil {
			return err
		}
		if _, err := bufferPool.InsertTuple(tid, tableID, t); err != nil {
			_ = bufferPool.TransactionComplete(tid, false)
			return fmt.Errorf("worker %d: %w", workerID, err)
		}
	}

	return bufferPool.TransactionComplete(tid, true)
}
