package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/constants"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/metrics"
)

// Dispatch runs one item to a terminal state and reports which engine
// produced the text, or "" when extraction failed entirely.
type Dispatch func(ctx context.Context, item Item) constants.ExtractionMethod

// Summary describes one full drain of the queue.
type Summary struct {
	Processed int
	Failed    int
	ByMethod  map[constants.ExtractionMethod]int
	Batches   int
	Elapsed   time.Duration
}

// UsedAI reports whether any item in the run went through the AI engine.
func (s Summary) UsedAI() bool {
	return s.ByMethod[constants.MethodAI] > 0
}

// Scheduler drains the queue in fixed-size waves. Items inside a wave
// run concurrently and the wave is joined before the next one starts,
// with a pause in between. One run loop at a time; Kick while running
// is a no-op because the loop re-checks the queue before exiting.
type Scheduler struct {
	queue    *Queue
	dispatch Dispatch

	batchSize  int
	delay      time.Duration
	onProgress func(percent int)
	onDrain    func(Summary)
	metrics    *metrics.PipelineMetrics
	logger     *slog.Logger

	mu           sync.Mutex
	running      bool
	processed    int
	failed       int
	byMethod     map[constants.ExtractionMethod]int
	batches      int
	startedAt    time.Time
	lastProgress int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithBatchSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.delay = d
		}
	}
}

func WithProgress(fn func(percent int)) Option {
	return func(s *Scheduler) { s.onProgress = fn }
}

func WithOnDrain(fn func(Summary)) Option {
	return func(s *Scheduler) { s.onDrain = fn }
}

func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

func NewScheduler(queue *Queue, dispatch Dispatch, opts ...Option) *Scheduler {
	s := &Scheduler{
		queue:     queue,
		dispatch:  dispatch,
		batchSize: constants.DefaultBatchSize,
		delay:     constants.DefaultBatchDelay,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Kick starts the drain loop unless one is already running.
func (s *Scheduler) Kick(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.processed = 0
	s.failed = 0
	s.byMethod = make(map[constants.ExtractionMethod]int)
	s.batches = 0
	s.startedAt = time.Now()
	s.lastProgress = 0
	s.mu.Unlock()

	go s.run(ctx)
}

// Running reports whether a drain loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Progress returns the last reported percentage, 0..100.
func (s *Scheduler) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastProgress
}

func (s *Scheduler) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			s.finish(true)
			return
		}

		items := s.queue.TakeUpTo(s.batchSize)
		if len(items) == 0 {
			if s.finish(false) {
				return
			}
			continue
		}

		s.runBatch(ctx, items)
		s.report()

		if s.queue.Len() > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.delay):
			}
		}
	}
}

// runBatch dispatches one wave concurrently and joins it. A failed item
// counts against the summary but never aborts its wave.
func (s *Scheduler) runBatch(ctx context.Context, items []Item) {
	s.metrics.BatchDispatched()
	s.logger.Debug("batch.dispatch", "size", len(items))

	results := make([]constants.ExtractionMethod, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item Item) {
			defer wg.Done()
			results[i] = s.dispatch(ctx, item)
		}(i, item)
	}
	wg.Wait()

	s.mu.Lock()
	s.batches++
	for _, method := range results {
		s.processed++
		if method == "" {
			s.failed++
		} else {
			s.byMethod[method]++
		}
	}
	s.mu.Unlock()
	s.metrics.SetQueueDepth(s.queue.Len())
}

// report publishes integer progress. Total is recomputed against the
// live queue so files added mid-run extend the bar instead of being
// missed; the value is clamped so it never moves backwards and only
// shows 100 once the queue is empty.
func (s *Scheduler) report() {
	remaining := s.queue.Len()

	s.mu.Lock()
	total := s.processed + remaining
	percent := 100
	if total > 0 {
		percent = s.processed * 100 / total
	}
	if percent < s.lastProgress {
		percent = s.lastProgress
	}
	if percent >= 100 && remaining > 0 {
		percent = 99
	}
	s.lastProgress = percent
	fn := s.onProgress
	s.mu.Unlock()

	if fn != nil {
		fn(percent)
	}
}

// finish ends the run if the queue is still empty under the lock,
// closing the race with a concurrent Enqueue+Kick. Returns true when
// the loop should exit.
func (s *Scheduler) finish(cancelled bool) bool {
	s.mu.Lock()
	if !cancelled && s.queue.Len() > 0 {
		s.mu.Unlock()
		return false
	}
	summary := Summary{
		Processed: s.processed,
		Failed:    s.failed,
		ByMethod:  s.byMethod,
		Batches:   s.batches,
		Elapsed:   time.Since(s.startedAt),
	}
	alreadyFull := s.lastProgress == 100
	if !cancelled && s.processed > 0 {
		s.lastProgress = 100
	}
	s.running = false
	onDrain := s.onDrain
	onProgress := s.onProgress
	s.mu.Unlock()

	if !cancelled && onProgress != nil && summary.Processed > 0 && !alreadyFull {
		onProgress(100)
	}
	if !cancelled && onDrain != nil {
		onDrain(summary)
	}
	if cancelled {
		s.logger.Info("batch.cancelled", "processed", summary.Processed)
	} else if summary.Processed > 0 {
		s.logger.Info("batch.drained",
			"processed", summary.Processed,
			"failed", summary.Failed,
			"batches", summary.Batches,
			"used_ai", summary.UsedAI(),
			"elapsed", summary.Elapsed,
		)
	}
	return true
}
