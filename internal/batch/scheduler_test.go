package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/constants"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
)

func queueOf(n int) *Queue {
	q := NewQueue()
	for i := 0; i < n; i++ {
		q.Enqueue(Item{
			RecordID:     uuid.New(),
			ProcessingID: uuid.New().String(),
			File:         &entity.SourceFile{Name: "r.jpg", MIMEType: "image/jpeg"},
		})
	}
	return q
}

func TestQueueTakeUpTo(t *testing.T) {
	q := queueOf(7)
	if got := len(q.TakeUpTo(5)); got != 5 {
		t.Fatalf("first take = %d, want 5", got)
	}
	if got := len(q.TakeUpTo(5)); got != 2 {
		t.Fatalf("second take = %d, want 2", got)
	}
	if q.TakeUpTo(5) != nil {
		t.Fatal("take on empty queue should return nil")
	}
}

func TestSchedulerDrainsInWaves(t *testing.T) {
	q := queueOf(12)

	var mu sync.Mutex
	var progress []int
	var inBatch atomic.Int32
	var peak atomic.Int32

	dispatch := func(_ context.Context, _ Item) constants.ExtractionMethod {
		n := inBatch.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inBatch.Add(-1)
		return constants.MethodAI
	}

	drained := make(chan Summary, 1)
	s := NewScheduler(q, dispatch,
		WithDelay(time.Millisecond),
		WithProgress(func(p int) {
			mu.Lock()
			progress = append(progress, p)
			mu.Unlock()
		}),
		WithOnDrain(func(sum Summary) { drained <- sum }),
	)

	s.Kick(context.Background())

	var sum Summary
	select {
	case sum = <-drained:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler never drained")
	}

	if sum.Processed != 12 {
		t.Fatalf("processed = %d, want 12", sum.Processed)
	}
	if sum.Batches != 3 {
		t.Fatalf("batches = %d, want 3 (5+5+2)", sum.Batches)
	}
	if sum.Failed != 0 {
		t.Errorf("failed = %d, want 0", sum.Failed)
	}
	if !sum.UsedAI() {
		t.Error("summary should report the AI engine was used")
	}
	if p := peak.Load(); p > 5 {
		t.Errorf("peak concurrency = %d, want at most the batch size", p)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(progress) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress moved backwards: %v", progress)
		}
	}
	for i, p := range progress {
		if p == 100 && i != len(progress)-1 {
			t.Fatalf("progress hit 100 before the drain: %v", progress)
		}
	}
	if progress[len(progress)-1] != 100 {
		t.Fatalf("final progress = %d, want 100", progress[len(progress)-1])
	}
}

func TestSchedulerFailedItemDoesNotAbortWave(t *testing.T) {
	q := queueOf(5)
	var calls atomic.Int32

	dispatch := func(_ context.Context, _ Item) constants.ExtractionMethod {
		if calls.Add(1) == 3 {
			return ""
		}
		return constants.MethodOCR
	}

	drained := make(chan Summary, 1)
	s := NewScheduler(q, dispatch,
		WithDelay(0),
		WithOnDrain(func(sum Summary) { drained <- sum }),
	)
	s.Kick(context.Background())

	sum := <-drained
	if sum.Processed != 5 {
		t.Fatalf("processed = %d, want 5", sum.Processed)
	}
	if sum.Failed != 1 {
		t.Fatalf("failed = %d, want 1", sum.Failed)
	}
	if sum.UsedAI() {
		t.Error("no item used the AI engine")
	}
}

func TestSchedulerClearCancelsFutureWavesOnly(t *testing.T) {
	q := queueOf(12)

	started := make(chan struct{}, 12)
	release := make(chan struct{})
	dispatch := func(_ context.Context, _ Item) constants.ExtractionMethod {
		started <- struct{}{}
		<-release
		return constants.MethodOCR
	}

	drained := make(chan Summary, 1)
	s := NewScheduler(q, dispatch,
		WithDelay(0),
		WithOnDrain(func(sum Summary) { drained <- sum }),
	)
	s.Kick(context.Background())

	for i := 0; i < 5; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("first wave never started")
		}
	}
	if cleared := q.Clear(); cleared != 7 {
		t.Fatalf("cleared = %d, want 7 still queued", cleared)
	}
	close(release)

	sum := <-drained
	if sum.Processed != 5 {
		t.Fatalf("processed = %d, want only the in-flight wave", sum.Processed)
	}
	if sum.Batches != 1 {
		t.Fatalf("batches = %d, want 1", sum.Batches)
	}
}

func TestSchedulerKickWhileRunningIsNoOp(t *testing.T) {
	q := queueOf(2)

	release := make(chan struct{})
	var calls atomic.Int32
	dispatch := func(_ context.Context, _ Item) constants.ExtractionMethod {
		calls.Add(1)
		<-release
		return constants.MethodOCR
	}

	drained := make(chan Summary, 2)
	s := NewScheduler(q, dispatch,
		WithDelay(0),
		WithOnDrain(func(sum Summary) { drained <- sum }),
	)
	s.Kick(context.Background())
	s.Kick(context.Background())
	close(release)

	sum := <-drained
	if sum.Processed != 2 {
		t.Fatalf("processed = %d, want 2", sum.Processed)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("dispatch calls = %d, want 2", got)
	}
	select {
	case extra := <-drained:
		t.Fatalf("second drain summary delivered: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}
