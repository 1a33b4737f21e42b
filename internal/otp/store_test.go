package otp

import (
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s := NewStore(opts...)
	t.Cleanup(s.Close)
	return s
}

func TestIssueFormat(t *testing.T) {
	s := newTestStore(t)
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		code := s.Issue()
		require.Regexp(t, pattern, code)
	}
}

func TestValidateIsSingleUse(t *testing.T) {
	s := newTestStore(t)
	code := s.Issue()

	require.True(t, s.Validate(code))
	require.False(t, s.Validate(code), "second validation of the same code must fail")
}

func TestValidateUnknownCode(t *testing.T) {
	s := newTestStore(t)
	require.False(t, s.Validate("000000"))
}

func TestValidateExpiredCodeConsumesEntry(t *testing.T) {
	now := time.Now()
	var offset atomic.Int64
	clock := func() time.Time { return now.Add(time.Duration(offset.Load())) }

	s := newTestStore(t, WithClock(clock))
	code := s.Issue()

	offset.Store(int64(TTL + time.Second))
	require.False(t, s.Validate(code))
	require.Equal(t, 0, s.Len(), "expired entry must be removed by the failed validation")
}

func TestValidateJustBeforeExpiry(t *testing.T) {
	now := time.Now()
	var offset atomic.Int64
	clock := func() time.Time { return now.Add(time.Duration(offset.Load())) }

	s := newTestStore(t, WithClock(clock))
	code := s.Issue()

	offset.Store(int64(TTL - time.Millisecond))
	require.True(t, s.Validate(code))
}

func TestInvalidate(t *testing.T) {
	s := newTestStore(t)
	code := s.Issue()
	s.Invalidate(code)
	require.False(t, s.Validate(code))

	// Removing an absent code is a no-op.
	s.Invalidate("123456")
}

func TestSweepRemovesExpired(t *testing.T) {
	now := time.Now()
	var offset atomic.Int64
	clock := func() time.Time { return now.Add(time.Duration(offset.Load())) }

	s := newTestStore(t, WithClock(clock), WithSweepInterval(5*time.Millisecond))
	for i := 0; i < 10; i++ {
		s.Issue()
	}
	require.Equal(t, 10, s.Len())

	offset.Store(int64(TTL + time.Second))
	require.Eventually(t, func() bool { return s.Len() == 0 },
		time.Second, 5*time.Millisecond, "janitor should sweep expired codes")
}

func TestConcurrentIssueAndValidate(t *testing.T) {
	const n = 100

	s := newTestStore(t)

	codes := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = s.Issue()
		}(i)
	}
	wg.Wait()

	// Distinct codes each validate exactly once. By-chance collisions collapse
	// two issues into one live entry, so count successes against the set of
	// distinct values rather than the number of calls.
	distinct := make(map[string]struct{}, n)
	for _, code := range codes {
		require.Len(t, code, 6)
		distinct[code] = struct{}{}
	}

	var successes atomic.Int64
	for code := range distinct {
		wg.Add(2)
		for j := 0; j < 2; j++ {
			go func(code string) {
				defer wg.Done()
				if s.Validate(code) {
					successes.Add(1)
				}
			}(code)
		}
	}
	wg.Wait()

	require.Equal(t, int64(len(distinct)), successes.Load(),
		"each distinct code must validate exactly once under concurrency")
}
