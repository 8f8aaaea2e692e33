//go:build cgo

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaroll/internal/media"
)

func openSQLite(t *testing.T) Datastore {
	t.Helper()
	ds := &SQLiteStore{}
	require.NoError(t, ds.Initialize(":memory:"))
	t.Cleanup(func() { ds.Close() })
	return ds
}

func TestSQLiteStore(t *testing.T) {
	testDatastore(t, openSQLite)
}

func TestSQLiteStore_InsertBatchKeepsIDs(t *testing.T) {
	ds := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, ds.InsertBatch(ctx, []media.RawAssetRecord{
		{ID: "41", MimeType: "image/jpeg", DateAdded: 1, DateModified: 1, Path: "/x/1.jpg"},
		{ID: "42", MimeType: "image/jpeg", DateAdded: 2, DateModified: 2, Path: "/x/2.jpg"},
	}))
	where, order, err := media.BuildQuery(media.AssetQuery{AssetType: media.AssetTypePhotos})
	require.NoError(t, err)
	rows, err := ds.Query(ctx, where, order, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "42", rows[0].ID)
	assert.Equal(t, "41", rows[1].ID)

	err = ds.InsertBatch(ctx, []media.RawAssetRecord{{ID: "not-a-number", MimeType: "image/png", Path: "/x/3.png"}})
	assert.Error(t, err)
}

func TestMirror_SQLiteToBleve(t *testing.T) {
	src := openSQLite(t)
	fx := seed(t, src)
	dst := openBleve(t)

	n, err := Mirror(context.Background(), dst, src)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"c", "b", "a"}, fx.names(query(t, dst, media.AssetQuery{AssetType: media.AssetTypeAll}, 0, 5)))
}

func TestMirror_BleveToSQLite(t *testing.T) {
	src := openBleve(t)
	fx := seed(t, src)
	dst := openSQLite(t)

	n, err := Mirror(context.Background(), dst, src)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows := query(t, dst, media.AssetQuery{AssetType: media.AssetTypeAll}, 0, 5)
	assert.Equal(t, []string{"c", "b", "a"}, fx.names(rows))
	assert.Equal(t, fx.records["c"], rows[0])

	id, err := dst.Insert(context.Background(), media.RawAssetRecord{MimeType: "image/jpeg", Path: "/new.jpg", DateAdded: 1})
	require.NoError(t, err)
	assert.Equal(t, "4", id)
}

func TestCompileSQL(t *testing.T) {
	where, _, err := media.BuildQuery(media.AssetQuery{
		AssetType: media.AssetTypeAll,
		GroupName: "Camera",
		FromTime:  1_000,
	})
	require.NoError(t, err)

	clause, args, err := compileSQL(where, nil)
	require.NoError(t, err)
	assert.Equal(t,
		"(media_type IN (?, ?)) AND (bucket = ?) AND ((date_taken > ?) OR ((date_taken IS NULL) AND (date_added > ?)))",
		clause)
	assert.Equal(t, []any{3, 1, "Camera", int64(1_000), int64(1)}, args)

	_, _, err = compileSQL(media.Eq{Column: "password"}, nil)
	assert.ErrorIs(t, err, media.ErrInvalidFilter)
}

func TestTranslateError(t *testing.T) {
	assert.ErrorIs(t, translateError(sqlite3.Error{Code: sqlite3.ErrPerm}), media.ErrPermissionDenied)
	assert.ErrorIs(t, translateError(sqlite3.Error{Code: sqlite3.ErrCantOpen}), media.ErrPermissionDenied)
	assert.ErrorIs(t, translateError(sqlite3.Error{Code: sqlite3.ErrCorrupt}), media.ErrStoreUnavailable)
	assert.ErrorIs(t, translateError(errors.New("boom")), media.ErrStoreUnavailable)
	assert.NoError(t, translateError(nil))
}
