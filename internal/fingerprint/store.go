package fingerprint

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/store"
)

const keyPrefix = "fp:"

// Store is the deduplication set. It merges two layers: the durable layer
// (receipts whose extraction completed, persisted across sessions) and the
// session layer (receipts currently held by in-flight or errored records).
//
// A fingerprint enters the durable layer only once extraction completes,
// so a file that failed extraction can be re-submitted after its record is
// deleted rather than being permanently blacklisted.
type Store struct {
	kv     store.KV
	logger *slog.Logger

	mu      sync.Mutex
	durable map[string]struct{}
	session map[string]struct{}
}

// NewStore loads the durable fingerprint set from kv and merges it with an
// empty session set.
func NewStore(kv store.KV, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:      kv,
		logger:  logger,
		durable: make(map[string]struct{}),
		session: make(map[string]struct{}),
	}
	all, err := kv.GetAll(keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("load fingerprints: %w", err)
	}
	for k := range all {
		s.durable[strings.TrimPrefix(k, keyPrefix)] = struct{}{}
	}
	logger.Info("fingerprint.store.loaded", "durable", len(s.durable))
	return s, nil
}

// Seen reports whether fp is known in either layer.
func (s *Store) Seen(fp string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.durable[fp]; ok {
		return true
	}
	_, ok := s.session[fp]
	return ok
}

// Track adds fp to the session layer. Called by the ingestion gate when a
// record is accepted; the fingerprint guards the in-flight queue.
func (s *Store) Track(fp string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session[fp] = struct{}{}
}

// Release removes fp from the session layer, making the receipt
// re-submittable. Called when a record is deleted before completing.
func (s *Store) Release(fp string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.session, fp)
}

// Commit promotes fp to the durable layer. Called only once extraction
// actually completes for the file. Idempotent.
func (s *Store) Commit(fp string) error {
	s.mu.Lock()
	if _, ok := s.durable[fp]; ok {
		s.mu.Unlock()
		return nil
	}
	s.durable[fp] = struct{}{}
	s.mu.Unlock()

	if err := s.kv.Set(keyPrefix+fp, time.Now().UTC().Format(time.RFC3339)); err != nil {
		s.logger.Error("fingerprint.store.commit_failed", "fingerprint", fp, "error", err)
		return fmt.Errorf("persist fingerprint: %w", err)
	}
	return nil
}

// Len returns the merged set size. Used for diagnostics.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.durable)
	for fp := range s.session {
		if _, ok := s.durable[fp]; !ok {
			n++
		}
	}
	return n
}
