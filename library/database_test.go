package library

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDB(t *testing.T) *Database {
	t.Helper()
	dir := t.TempDir()
	db, err := NewDatabase(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDatabaseFirstLoadSeeds(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	snap, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedSnapshot(), snap)

	// A second load reads the stored rows, it does not reseed.
	require.NoError(t, db.Save(ctx, Snapshot{}))
	snap, err = db.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestDatabaseSaveOverwrites(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	_, err := db.Load(ctx)
	require.NoError(t, err)

	want := Snapshot{
		"X1": {ID: "X1", Title: "Tab\tTitle", Author: "Ann", Pages: 12, Copies: 0},
		"X2": {ID: "X2", Title: "Second", Author: "Bo", Pages: 1, Copies: 7},
	}
	require.NoError(t, db.Save(ctx, want))

	got, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDatabaseSaveOfLoadIsIdempotent(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	first, err := db.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx, first))
	second, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, snapshotDigest(first), snapshotDigest(second))
}

func TestDatabaseRejectsNegativeCopies(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	_, err := db.Load(ctx)
	require.NoError(t, err)

	err = db.Save(ctx, Snapshot{"B": {ID: "B", Copies: -1}})
	assert.Error(t, err)

	// The failed transaction leaves the previous catalogue in place.
	snap, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedSnapshot(), snap)
}

func TestDatabaseReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lib.db")
	ctx := context.Background()

	db, err := NewDatabase(path)
	require.NoError(t, err)
	_, err = db.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx, Snapshot{"Z": {ID: "Z", Title: "Only", Copies: 1}}))
	require.NoError(t, db.Close())

	db, err = NewDatabase(path)
	require.NoError(t, err)
	defer db.Close()
	snap, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"Z": {ID: "Z", Title: "Only", Copies: 1}}, snap)
}

func TestSnapshotDigestIgnoresMapOrder(t *testing.T) {
	a := SeedSnapshot()
	b := Snapshot{}
	for _, bk := range []Book{a["B003"], a["B001"], a["B002"]} {
		b[bk.ID] = bk
	}
	assert.Equal(t, snapshotDigest(a), snapshotDigest(b))

	b["B001"] = Book{ID: "B001", Copies: 9}
	assert.NotEqual(t, snapshotDigest(a), snapshotDigest(b))
}
