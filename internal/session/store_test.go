package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateAndIsValid(t *testing.T) {
	s := NewStore()
	token := s.Create()
	require.NotEmpty(t, token)
	require.True(t, s.IsValid(token))
	require.False(t, s.IsValid("not-a-token"))
}

func TestRevoke(t *testing.T) {
	s := NewStore()
	token := s.Create()
	s.Revoke(token)
	require.False(t, s.IsValid(token))

	// Revoking an absent token is a no-op, not an error.
	s.Revoke(token)
	s.Revoke("never-issued")
}

func TestClear(t *testing.T) {
	s := NewStore()
	a := s.Create()
	b := s.Create()
	require.Equal(t, 2, s.Len())

	s.Clear()
	require.Equal(t, 0, s.Len())
	require.False(t, s.IsValid(a))
	require.False(t, s.IsValid(b))
}

func TestTokensAreUnique(t *testing.T) {
	s := NewStore()
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		token := s.Create()
		_, dup := seen[token]
		require.False(t, dup, "token %q issued twice", token)
		seen[token] = struct{}{}
	}
}

func TestConcurrentAccess(t *testing.T) {
	const n = 100

	s := NewStore()
	var wg sync.WaitGroup

	tokens := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i] = s.Create()
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			// Concurrent reads must not observe torn state; the result itself
			// depends on whether the revoke below ran first.
			_ = s.IsValid(tokens[i])
		}(i)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.Revoke(tokens[i])
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.Equal(t, i%2 != 0, s.IsValid(tokens[i]))
	}
}
