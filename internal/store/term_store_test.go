package store

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *TermStore {
	t.Helper()
	s, err := NewTermStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewTermStore(t *testing.T) {
	s := newTestStore(t)

	assert.True(t, tableExists(s.db, "terms"))
	assert.True(t, tableExists(s.db, "runs"))
	assert.True(t, columnExists(s.db, "runs", "evaluator"))
	assert.True(t, columnExists(s.db, "runs", "cache_hits"))
}

func TestTermStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	key := TermKey{Mode: "wrap", Width: 32, N: 10}
	_, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, key, big.NewInt(55)))
	v, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "55", v.String())

	// Same index under another width is a different entry
	_, ok, err = s.Get(ctx, TermKey{Mode: "wrap", Width: 64, N: 10})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTermStore_BigValuesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	want, _ := new(big.Int).SetString("354224848179261915075", 10)
	key := TermKey{Mode: "big", N: 100}
	require.NoError(t, s.Put(ctx, key, want))

	got, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Zero(t, want.Cmp(got))

	neg := big.NewInt(-1323752223)
	require.NoError(t, s.Put(ctx, TermKey{Mode: "wrap", Width: 32, N: 47}, neg))
	got, _, err = s.Get(ctx, TermKey{Mode: "wrap", Width: 32, N: 47})
	require.NoError(t, err)
	assert.Equal(t, "-1323752223", got.String())

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTermStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	key := TermKey{Mode: "wrap", Width: 32, N: 3}
	require.NoError(t, s.Put(ctx, key, big.NewInt(7)))
	require.NoError(t, s.Put(ctx, key, big.NewInt(2)))

	v, _, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "2", v.String())

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTermStore_Runs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, s.RecordRun(ctx, Run{
			ID:         id,
			Source:     "indices.txt",
			Evaluator:  "wrap/32",
			Count:      10 + i,
			Failed:     i,
			CacheHits:  1,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + time.Second),
		}))
	}

	runs, err := s.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)
	assert.Equal(t, 12, runs[0].Count)
	assert.Equal(t, 2, runs[0].Failed)
	assert.Equal(t, "wrap/32", runs[0].Evaluator)
	assert.True(t, runs[0].StartedAt.Equal(base.Add(2*time.Minute)))

	// Duplicate run IDs are rejected
	assert.Error(t, s.RecordRun(ctx, Run{ID: "run-a", StartedAt: base, FinishedAt: base}))
}

func TestTermStore_PersistsOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "terms.db")

	s, err := NewTermStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, TermKey{Mode: "checked", Width: 64, N: 92}, big.NewInt(7540113804746346429)))
	require.NoError(t, s.Close())

	reopened, err := NewTermStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, TermKey{Mode: "checked", Width: 64, N: 92})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "7540113804746346429", v.String())
	assert.Equal(t, path, reopened.Path())
}
