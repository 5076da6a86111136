package jsonstore

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/notpazar/notpazar-backend/pkg/logger"
	"github.com/notpazar/notpazar-backend/pkg/metrics"
)

// Store owns a directory of JSON collection files. All mutation goes
// through a collection's Update, which holds that collection's lock for
// the whole read-modify-write cycle; updates against different
// collections proceed independently.
type Store struct {
	dir     string
	logg    *logger.Logger
	metrics *metrics.StoreMetrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger attaches a structured logger to the store.
func WithLogger(logg *logger.Logger) Option {
	return func(s *Store) { s.logg = logg }
}

// WithMetrics attaches store metrics.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates the database directory if needed and returns a store
// rooted at it.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	s := &Store{
		dir:   dir,
		locks: map[string]*sync.Mutex{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the directory the store is rooted at.
func (s *Store) Dir() string {
	return s.dir
}

// lockFor returns the mutex guarding the named collection, creating it
// on first use. Lock identity follows the collection name, so per-user
// collections (one file per cart) serialize independently.
func (s *Store) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lock, ok := s.locks[name]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.locks[name] = lock
	return lock
}

func (s *Store) observe(collection string, start time.Time) {
	s.metrics.ObserveDuration(collection, time.Since(start))
}

func (s *Store) recordSuccess(ctx context.Context, collection string) {
	s.metrics.IncSuccess(collection)
	if s.logg != nil {
		s.logg.Debug(s.logg.WithCollection(ctx, collection), "collection.updated")
	}
}

func (s *Store) recordFailure(ctx context.Context, collection, reason string, err error) {
	s.metrics.IncFailure(collection, reason)
	if s.logg != nil {
		s.logg.Error(s.logg.WithCollection(ctx, collection), "collection.update_failed", err)
	}
}
