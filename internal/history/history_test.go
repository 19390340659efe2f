package history

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxUnpinned int) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), maxUnpinned)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustInsert(t *testing.T, s *Store, content string) int64 {
	t.Helper()
	id, created, err := s.Insert(context.Background(), content)
	require.NoError(t, err)
	require.True(t, created, "insert %q was rejected", content)
	return id
}

func contents(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Content
	}
	return out
}

func TestInsert_DuplicateRejected(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	mustInsert(t, s, "hello")

	_, created, err := s.Insert(ctx, "hello")
	require.NoError(t, err)
	assert.False(t, created, "inserting the latest content again must be a no-op")

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestInsert_DuplicateOnlyAgainstLatest(t *testing.T) {
	s := newTestStore(t, 0)

	mustInsert(t, s, "alpha")
	mustInsert(t, s, "beta")

	// "alpha" is no longer the most recent entry, so it is accepted again.
	mustInsert(t, s, "alpha")

	entries, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestInsert_RejectsBlankContent(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	for _, content := range []string{"", "   ", "\n\t "} {
		_, created, err := s.Insert(ctx, content)
		require.NoError(t, err)
		assert.False(t, created, "content %q must be rejected", content)
	}

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRetention_EvictsOldestUnpinned(t *testing.T) {
	s := newTestStore(t, 2)

	mustInsert(t, s, "A")
	mustInsert(t, s, "B")
	mustInsert(t, s, "C")

	entries, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B"}, contents(entries))
}

func TestRetention_PinnedEntriesExempt(t *testing.T) {
	s := newTestStore(t, 2)
	ctx := context.Background()

	idA := mustInsert(t, s, "A")
	mustInsert(t, s, "B")

	ok, err := s.TogglePin(ctx, idA)
	require.NoError(t, err)
	require.True(t, ok)

	mustInsert(t, s, "C")

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, contents(entries),
		"pinned A survives and sorts first; unpinned {B,C} fit the ceiling")
}

func TestUnpin_DoesNotTriggerRetention(t *testing.T) {
	s := newTestStore(t, 1)
	ctx := context.Background()

	idA := mustInsert(t, s, "A")
	ok, err := s.TogglePin(ctx, idA)
	require.NoError(t, err)
	require.True(t, ok)

	mustInsert(t, s, "B")

	// Unpin A: unpinned count is now 2 > ceiling 1, but eviction only
	// follows insertion.
	ok, err = s.TogglePin(ctx, idA)
	require.NoError(t, err)
	require.True(t, ok)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestList_PinnedFirstThenNewest(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	mustInsert(t, s, "one")
	idTwo := mustInsert(t, s, "two")
	mustInsert(t, s, "three")
	idFour := mustInsert(t, s, "four")

	for _, id := range []int64{idTwo, idFour} {
		ok, err := s.TogglePin(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
	}

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"four", "two", "three", "one"}, contents(entries))
}

func TestToggleSensitive_Lifecycle(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	id := mustInsert(t, s, "secret token")

	// Enable without an explicit alias: placeholder applies.
	ok, err := s.ToggleSensitive(ctx, id, "")
	require.NoError(t, err)
	require.True(t, ok)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Sensitive)
	assert.Equal(t, DefaultAlias, entries[0].Alias)
	assert.Equal(t, DefaultAlias, entries[0].Display())

	// Alias updates only while sensitive.
	ok, err = s.UpdateAlias(ctx, id, "prod API key")
	require.NoError(t, err)
	assert.True(t, ok)

	// Disable: alias is cleared, supplied alias ignored.
	ok, err = s.ToggleSensitive(ctx, id, "ignored")
	require.NoError(t, err)
	require.True(t, ok)

	entries, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Sensitive)
	assert.Empty(t, entries[0].Alias)
	assert.Equal(t, "secret token", entries[0].Display())

	// UpdateAlias on a non-sensitive entry is a no-op.
	ok, err = s.UpdateAlias(ctx, id, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToggleSensitive_ExplicitAlias(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	id := mustInsert(t, s, "hunter2")

	ok, err := s.ToggleSensitive(ctx, id, "old password")
	require.NoError(t, err)
	require.True(t, ok)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "old password", entries[0].Alias)
}

func TestOperations_NotFound(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	ok, err := s.TogglePin(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.ToggleSensitive(ctx, 42, "")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.UpdateAlias(ctx, 42, "x")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Content(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	id := mustInsert(t, s, "gone soon")

	ok, err := s.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok, "second delete of the same id reports not found")
}

func TestClearUnpinned(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	mustInsert(t, s, "a")
	idB := mustInsert(t, s, "b")
	mustInsert(t, s, "c")

	ok, err := s.TogglePin(ctx, idB)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := s.ClearUnpinned(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, contents(entries))
}

func TestContent(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	id := mustInsert(t, s, "paste me")

	content, ok, err := s.Content(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "paste me", content)
}

func TestCounts(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	mustInsert(t, s, "a")
	idB := mustInsert(t, s, "b")

	ok, err := s.TogglePin(ctx, idB)
	require.NoError(t, err)
	require.True(t, ok)

	total, pinned, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), pinned)
}

func TestScenario_ObserveThenPin(t *testing.T) {
	s := newTestStore(t, 100)
	ctx := context.Background()

	mustInsert(t, s, "hello")

	_, created, err := s.Insert(ctx, "hello")
	require.NoError(t, err)
	require.False(t, created)

	mustInsert(t, s, "world")

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"world", "hello"}, contents(entries))

	helloID := entries[1].ID
	ok, err := s.TogglePin(ctx, helloID)
	require.NoError(t, err)
	require.True(t, ok)

	entries, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, contents(entries))
}

func TestConcurrentInsertsAndCommands(t *testing.T) {
	s := newTestStore(t, 10)
	ctx := context.Background()

	seed := mustInsert(t, s, "seed")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _, err := s.Insert(ctx, fmt.Sprintf("worker %d item %d", n, j))
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 20; j++ {
			_, err := s.TogglePin(ctx, seed)
			assert.NoError(t, err)
			_, err = s.List(ctx)
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	entries, err := s.List(ctx)
	require.NoError(t, err)

	var unpinned int
	for _, e := range entries {
		if !e.Pinned {
			unpinned++
		}
	}
	assert.LessOrEqual(t, unpinned, 10, "unpinned ceiling must hold after concurrent activity")
}
