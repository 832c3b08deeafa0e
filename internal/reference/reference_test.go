package reference

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// store is a claim target guarded by a mutex, standing in for a unique index.
type store struct {
	mu   sync.Mutex
	refs map[string]struct{}
}

func newStore() *store {
	return &store{refs: make(map[string]struct{})}
}

func (s *store) claim(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refs[ref]; ok {
		return ErrTaken
	}
	s.refs[ref] = struct{}{}
	return nil
}

func TestRandomMatchesPattern(t *testing.T) {
	for i := 0; i < 500; i++ {
		ref, err := Random()
		require.NoError(t, err)
		assert.True(t, Valid(ref), ref)
	}
}

func TestIssueManyUnique(t *testing.T) {
	g := New()
	s := newStore()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 2000; i++ {
		ref, err := g.Issue(ctx, s.claim)
		require.NoError(t, err)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
	assert.Len(t, s.refs, 2000)
}

func TestIssueRetriesOnCollision(t *testing.T) {
	s := newStore()
	s.refs["BK-AAAAAAAAAA"] = struct{}{}

	// First candidate always collides, later ones come from crypto/rand.
	calls := 0
	src := func() (string, error) {
		calls++
		if calls == 1 {
			return "BK-AAAAAAAAAA", nil
		}
		return Random()
	}

	ref, err := NewWithSource(src, 5).Issue(context.Background(), s.claim)
	require.NoError(t, err)
	assert.NotEqual(t, "BK-AAAAAAAAAA", ref)
	assert.Equal(t, 2, calls)
}

func TestIssueConcurrentWithForcedCollision(t *testing.T) {
	s := newStore()

	var mu sync.Mutex
	first := true
	src := func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if first {
			first = false
			return "BK-COLLIDE000", nil
		}
		return Random()
	}
	s.refs["BK-COLLIDE000"] = struct{}{}

	g := NewWithSource(src, 5)
	const n = 50
	refs := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref, err := g.Issue(context.Background(), s.claim)
			assert.NoError(t, err)
			refs[i] = ref
		}(i)
	}
	wg.Wait()

	unique := make(map[string]struct{})
	for _, ref := range refs {
		unique[ref] = struct{}{}
	}
	assert.Len(t, unique, n)
}

func TestIssueExhausted(t *testing.T) {
	calls := 0
	src := func() (string, error) {
		calls++
		return "BK-SAMESAME00", nil
	}
	claim := func(context.Context, string) error { return ErrTaken }

	_, err := NewWithSource(src, 5).Issue(context.Background(), claim)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 5, calls)
}

func TestIssueStopsOnStorageError(t *testing.T) {
	boom := errors.New("connection reset")
	calls := 0
	claim := func(context.Context, string) error {
		calls++
		return boom
	}

	_, err := New().Issue(context.Background(), claim)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestIssueHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Issue(ctx, newStore().claim)
	assert.ErrorIs(t, err, context.Canceled)
}
