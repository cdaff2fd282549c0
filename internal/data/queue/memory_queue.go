// Package queue provides the bounded in-memory job queue sitting between
// the filesystem watcher and the watch-mode organize worker.
package queue

import (
	"context"
	"io"
	"sync"
	"time"

	"usetidy/internal/core/ports"
)

var _ ports.OrganizeQueue = (*MemoryQueue)(nil)

type MemoryQueue struct {
	ch     chan ports.OrganizeJob
	mu     sync.RWMutex
	closed bool
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryQueue{ch: make(chan ports.OrganizeJob, capacity)}
}

// Enqueue never blocks: a full or closed queue drops the job and leaves the
// fallback decision to the caller.
func (q *MemoryQueue) Enqueue(job ports.OrganizeJob) ports.EnqueueResult {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ports.EnqueueDropped
	}
	select {
	case q.ch <- job:
		return ports.EnqueueAccepted
	default:
		return ports.EnqueueDropped
	}
}

// DequeueBatch returns up to maxItems jobs. With wait > 0 it blocks that
// long for the first job, then drains whatever else is immediately ready.
// io.EOF signals a closed and drained queue.
func (q *MemoryQueue) DequeueBatch(ctx context.Context, maxItems int, wait time.Duration) ([]ports.OrganizeJob, error) {
	if maxItems <= 0 {
		maxItems = 1
	}
	batch := make([]ports.OrganizeJob, 0, maxItems)

	var timer <-chan time.Time
	if wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		timer = t.C
	}

	select {
	case job, ok := <-q.ch:
		if !ok {
			return nil, io.EOF
		}
		batch = append(batch, job)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer:
		return nil, nil
	default:
		if wait <= 0 {
			return nil, nil
		}
		select {
		case job, ok := <-q.ch:
			if !ok {
				return nil, io.EOF
			}
			batch = append(batch, job)
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer:
			return nil, nil
		}
	}

	for len(batch) < maxItems {
		select {
		case job, ok := <-q.ch:
			if !ok {
				return batch, io.EOF
			}
			batch = append(batch, job)
		default:
			return batch, nil
		}
	}

	return batch, nil
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.ch)
	return nil
}

func (q *MemoryQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.ch)
}
