// Package otp implements the ephemeral store for mailed one-time codes.
//
// Codes are single-use and time-bounded: every Validate call consumes its
// entry, and expiry is enforced both lazily on Validate and by a periodic
// sweep. Nothing survives a process restart.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

const (
	// TTL is how long an issued code stays redeemable.
	TTL = 120 * time.Second

	// codeSpace bounds the numeric draw: codes are 000000..999999.
	codeSpace = 1_000_000

	defaultSweepInterval = 30 * time.Second
)

// Store issues, validates and expires one-time codes. All operations are
// serialized on an internal mutex; validate-and-remove is a single critical
// section so a sweep can never race an in-flight validation.
type Store struct {
	mu    sync.Mutex
	codes map[string]time.Time // code -> expiry instant

	now      func() time.Time
	interval time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// Option configures Store behavior.
type Option func(*Store)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithSweepInterval overrides how often the janitor removes expired codes.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewStore constructs a Store and starts its janitor goroutine. Call Close
// when the store is no longer needed.
func NewStore(opts ...Option) *Store {
	s := &Store{
		codes:    make(map[string]time.Time),
		now:      time.Now,
		interval: defaultSweepInterval,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.janitor()
	return s
}

// Issue draws a uniform 6-digit code, records it with a TTL expiry and
// returns it. A by-chance duplicate of a live code overwrites the earlier
// entry, extending its window; with a one-in-a-million space per draw this
// is an accepted risk rather than an error.
func (s *Store) Issue() string {
	code := randomCode()
	expiresAt := s.now().Add(TTL)

	s.mu.Lock()
	s.codes[code] = expiresAt
	s.mu.Unlock()

	return code
}

// Validate consumes the code: whatever the outcome, the entry is removed.
// It reports true only when the code was present and unexpired.
func (s *Store) Validate(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.codes[code]
	if !ok {
		return false
	}
	delete(s.codes, code)
	return s.now().Before(expiresAt)
}

// Invalidate removes a code unconditionally. Used to roll back an issuance
// when mail dispatch fails.
func (s *Store) Invalidate(code string) {
	s.mu.Lock()
	delete(s.codes, code)
	s.mu.Unlock()
}

// Len reports the number of live (possibly expired, not yet swept) codes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}

// Close stops the janitor. Safe to call more than once.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *Store) janitor() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

func (s *Store) sweep() {
	now := s.now()
	s.mu.Lock()
	for code, expiresAt := range s.codes {
		if !now.Before(expiresAt) {
			delete(s.codes, code)
		}
	}
	s.mu.Unlock()
}

func randomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		// crypto/rand reading from the OS source does not fail in practice;
		// an unusable entropy source is not something to limp past.
		panic(fmt.Sprintf("otp: read random: %v", err))
	}
	return fmt.Sprintf("%06d", n.Int64())
}
