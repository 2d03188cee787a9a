package source

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lazylist/internal/engine"
	"github.com/roach88/lazylist/internal/store"
	"github.com/roach88/lazylist/internal/testutil"
)

// createTestDB opens a fresh database in a temp dir.
func createTestDB(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(t *testing.T, db *SQLite, n int) {
	t.Helper()
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			ID:    fmt.Sprintf("r-%03d", i),
			Seq:   int64(i + 1),
			Title: fmt.Sprintf("title %d", i),
		}
	}
	require.NoError(t, db.Upsert(context.Background(), records...))
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestOpenSQLite_Pragmas(t *testing.T) {
	db := createTestDB(t)

	assert.NoError(t, db.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, db.verifyPragma("synchronous", "1"))
	assert.NoError(t, db.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, db.verifyPragma("user_version", "1"))
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Upsert(context.Background(), Record{ID: "a", Seq: 1, Title: "A"}))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	n, err := db.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLite_UpsertReplaces(t *testing.T) {
	db := createTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Upsert(ctx, Record{ID: "a", Seq: 1, Title: "old"}))
	require.NoError(t, db.Upsert(ctx, Record{ID: "a", Seq: 7, Title: "new"}))

	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	seq, err := db.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)

	res, err := db.Pager(10).Load(ctx)
	require.NoError(t, err)
	require.Len(t, res.Elements, 1)
	assert.Equal(t, "new", res.Elements[0].Title)
}

func TestSQLite_MaxSeqEmpty(t *testing.T) {
	seq, err := createTestDB(t).MaxSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)
}

func TestPager_KeysetOrder(t *testing.T) {
	db := createTestDB(t)
	ctx := context.Background()
	// Ties on seq are broken by id.
	require.NoError(t, db.Upsert(ctx,
		Record{ID: "b", Seq: 2, Title: "B"},
		Record{ID: "a", Seq: 2, Title: "A"},
		Record{ID: "z", Seq: 1, Title: "Z"},
		Record{ID: "c", Seq: 3, Title: "C"},
	))

	p := db.Pager(2)

	res, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a"}, ids(res.Elements))
	assert.Equal(t, 2, res.Remaining)

	res, err = p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids(res.Elements))
	assert.True(t, res.Exhausted())

	res, err = p.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Elements)
	assert.True(t, res.Exhausted())
}

func TestPager_RowsAppendedLaterAreReached(t *testing.T) {
	db := createTestDB(t)
	ctx := context.Background()
	seed(t, db, 2)

	p := db.Pager(2)
	res, err := p.Load(ctx)
	require.NoError(t, err)
	assert.True(t, res.Exhausted())

	require.NoError(t, db.Upsert(ctx, Record{ID: "late", Seq: 100, Title: "late"}))

	res, err = p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, ids(res.Elements))
}

func TestPager_CancelledLoadKeepsCursor(t *testing.T) {
	db := createTestDB(t)
	seed(t, db, 3)
	p := db.Pager(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Load(ctx)
	require.Error(t, err)

	res, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"r-000"}, ids(res.Elements))
}

func TestPager_HooksRewind(t *testing.T) {
	db := createTestDB(t)
	seed(t, db, 3)
	ctx := context.Background()
	p := db.Pager(2)

	_, err := p.Load(ctx)
	require.NoError(t, err)

	p.OnClear()
	res, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r-000", "r-001"}, ids(res.Elements))

	p.OnLoadBegin()
	res, err = p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r-000", "r-001"}, ids(res.Elements))
}

func TestPager_DrivesEngine(t *testing.T) {
	db := createTestDB(t)
	seed(t, db, 25)

	e, err := engine.New[Record](db.Pager(10), store.NewArray[Record](), engine.WithLookAhead(3))
	require.NoError(t, err)
	defer e.Close()

	rec := &testutil.Recorder{}
	e.RegisterAvailableObserver(rec)
	e.RegisterChangeObserver(rec)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.WaitIdle(ctx))
	require.Equal(t, 10, e.Size())

	for e.Available() > 0 {
		e.Get(e.Size()-1, engine.Present)
		require.NoError(t, e.WaitIdle(ctx))
	}

	assert.Equal(t, 25, e.Size())
	assert.Equal(t, "r-024", e.Get(24, engine.Peek).ID)
	assert.Equal(t, []string{
		"range_inserted(0,10)",
		"available(15)",
		"range_inserted(10,10)",
		"available(5)",
		"range_inserted(20,5)",
		"available(0)",
	}, rec.Events())
}
