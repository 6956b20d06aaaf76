package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecord_AndRecent_RoundTrip(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	rec := BuildRecord{
		BuildID:   "abc12345",
		StartedAt: time.Unix(1700000000, 0),
		Duration:  1500 * time.Millisecond,
		Pages:     3,
		Assets:    2,
		Failures: []FailureRecord{
			{Path: "bad.md", Reason: "template not found"},
		},
	}
	require.NoError(t, store.Record(ctx, rec))

	got, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "abc12345", got[0].BuildID)
	require.Equal(t, 3, got[0].Pages)
	require.Equal(t, 2, got[0].Assets)
	require.Equal(t, 1500*time.Millisecond, got[0].Duration)
	require.Len(t, got[0].Failures, 1)
	require.Equal(t, "bad.md", got[0].Failures[0].Path)
}

func TestRecent_NewestFirst(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, BuildRecord{BuildID: "old", StartedAt: time.Unix(100, 0)}))
	require.NoError(t, store.Record(ctx, BuildRecord{BuildID: "new", StartedAt: time.Unix(200, 0)}))

	got, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "new", got[0].BuildID)
}

func TestOpen_FileBacked_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), BuildRecord{BuildID: "b1", StartedAt: time.Unix(1, 0)}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
}
