package telemetry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "telemetry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_FlushAndReadBack(t *testing.T) {
	// Given: a summary with all three aggregate kinds
	store := openTestStore(t)
	summary := Summary{
		EngineCounts:  map[string]int{EngineBM25: 3, EngineEmbeddings: 1},
		LatencyCounts: map[LatencyBucket]int{BucketP10: 2, BucketP100: 2},
		ZeroResults:   []string{"first miss", "second miss"},
	}

	// When: flushed
	require.NoError(t, store.Flush(summary))

	// Then: zero-result queries come back newest first
	queries, err := store.ZeroResultQueries(10)
	require.NoError(t, err)
	assert.Equal(t, []string{"second miss", "first miss"}, queries)
}

func TestSQLiteStore_FlushAccumulates(t *testing.T) {
	// Two flushes on the same day must add, not overwrite
	store := openTestStore(t)
	summary := Summary{
		EngineCounts:  map[string]int{EngineBM25: 1},
		LatencyCounts: map[LatencyBucket]int{BucketP50: 1},
	}
	require.NoError(t, store.Flush(summary))
	require.NoError(t, store.Flush(summary))

	var count int
	err := store.db.QueryRow(`
		SELECT count FROM query_engine_stats WHERE date = ? AND engine = ?`,
		time.Now().Format("2006-01-02"), EngineBM25).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSQLiteStore_TrimsZeroResultQueries(t *testing.T) {
	// Given: more zero-result queries than the retention cap
	store := openTestStore(t)
	var queries []string
	for i := 0; i < maxZeroResultQueries+10; i++ {
		queries = append(queries, "q")
	}
	require.NoError(t, store.Flush(Summary{ZeroResults: queries}))

	got, err := store.ZeroResultQueries(0)
	require.NoError(t, err)
	assert.Len(t, got, maxZeroResultQueries)
}

func TestSQLiteStore_EmptySummaryIsNoop(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Flush(Summary{}))

	got, err := store.ZeroResultQueries(5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
