package framework

import (
	"context"
)

// The graph lock is a reader-priority lock built from two binary
// semaphores. The first reader in takes the write semaphore and the last
// reader out releases it, so functional calls never block each other while a
// transaction waits for the reader count to drain. A steady stream of
// readers starves writers.

// AcquireRead registers one functional reader. It blocks while a
// transaction holds the graph.
func (f *Framework) AcquireRead(ctx context.Context) error {
	if err := f.readers.Acquire(ctx); err != nil {
		return err
	}
	defer f.readers.Release()

	f.readCount++
	if f.readCount == 1 {
		if err := f.write.Acquire(ctx); err != nil {
			f.readCount--
			return err
		}
	}

	return nil
}

// ReleaseRead unregisters a reader registered with AcquireRead.
func (f *Framework) ReleaseRead() {
	_ = f.readers.Acquire(context.Background())
	defer f.readers.Release()

	if f.readCount == 0 {
		return
	}

	f.readCount--
	if f.readCount == 0 {
		f.write.Release()
	}
}

// ReaderCount reports the number of functional calls currently inside the
// framework's exposed interfaces.
func (f *Framework) ReaderCount() int {
	_ = f.readers.Acquire(context.Background())
	defer f.readers.Release()

	return f.readCount
}

func (f *Framework) enter(method string, _ []any) any {
	if err := f.AcquireRead(context.Background()); err != nil {
		f.logger.Warn("Reader lock acquisition failed", "method", method, "error", err)
		return -1
	}

	return nil
}

func (f *Framework) exit(string, []any) any {
	f.ReleaseRead()
	return nil
}
