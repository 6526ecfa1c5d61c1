// Package memory contains in-process cache storage.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultMaxEntries ...
	DefaultMaxEntries = 10000
	// DefaultSweepInterval ...
	DefaultSweepInterval = time.Minute
)

var log = logrus.WithField("package", "memory")

type entry struct {
	content   []byte
	expiresAt time.Time
}

// Storage keeps cached content in process memory.
// Expired entries are dropped on read and by a sweep which runs on write at most once per
// sweep interval. When the storage is full new keys are not stored.
type Storage struct {
	mu sync.Mutex
	m  map[string]entry

	now           func() time.Time
	maxEntries    int
	sweepInterval time.Duration
	lastSweep     time.Time
}

// Option ...
type Option func(s *Storage)

// WithClock sets time source of the storage.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		s.now = now
	}
}

// WithMaxEntries limits number of stored entries.
func WithMaxEntries(n int) Option {
	return func(s *Storage) {
		s.maxEntries = n
	}
}

// WithSweepInterval sets how often expired entries are swept.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Storage) {
		s.sweepInterval = d
	}
}

// NewStorage creates new instance of Storage.
func NewStorage(opts ...Option) *Storage {
	s := &Storage{
		m:             map[string]entry{},
		now:           time.Now,
		maxEntries:    DefaultMaxEntries,
		sweepInterval: DefaultSweepInterval,
	}
	for _, o := range opts {
		o(s)
	}
	s.lastSweep = s.now()

	return s
}

// Get ...
func (s *Storage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[key]
	if !ok {
		return nil, nil
	}

	if !s.now().Before(e.expiresAt) {
		delete(s.m, key)
		return nil, nil
	}

	return e.content, nil
}

// Set ...
func (s *Storage) Set(_ context.Context, key string, content []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if now.Sub(s.lastSweep) >= s.sweepInterval {
		s.sweep(now)
	}

	if _, ok := s.m[key]; !ok && len(s.m) >= s.maxEntries {
		s.sweep(now)

		if len(s.m) >= s.maxEntries {
			log.WithField("key", key).Warn("storage is full, content is not cached")
			return nil
		}
	}

	s.m[key] = entry{
		content:   append([]byte{}, content...),
		expiresAt: now.Add(ttl),
	}

	return nil
}

// DeletePrefix ...
func (s *Storage) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.m {
		if strings.HasPrefix(k, prefix) {
			delete(s.m, k)
		}
	}

	return nil
}

// Len returns number of stored entries including expired but not yet swept ones.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.m)
}

func (s *Storage) sweep(now time.Time) {
	for k, v := range s.m {
		if !now.Before(v.expiresAt) {
			delete(s.m, k)
		}
	}
	s.lastSweep = now
}
