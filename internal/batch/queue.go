// Package batch schedules queued receipts into fixed-size extraction
// waves with a pause between them, so the AI service is never hit with
// the whole upload at once.
package batch

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
)

// Item is one queued unit of extraction work.
type Item struct {
	RecordID     uuid.UUID
	ProcessingID string
	File         *entity.SourceFile
}

// Queue is a FIFO of pending extraction work. Safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	items []Item
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Enqueue(items ...Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// TakeUpTo removes and returns at most n items from the head.
func (q *Queue) TakeUpTo(n int) []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n <= 0 || len(q.items) == 0 {
		return nil
	}
	if n > len(q.items) {
		n = len(q.items)
	}
	taken := make([]Item, n)
	copy(taken, q.items[:n])
	q.items = append(q.items[:0], q.items[n:]...)
	return taken
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear drops everything still waiting. In-flight batches are not
// affected; only future dispatch is cancelled.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	q.items = q.items[:0]
	return n
}
