//go:build !cgo

package store

import (
	"context"
	"errors"

	"mediaroll/internal/media"
)

var errNoCgo = errors.New("SQLite backend is not available in non-CGO builds. Please use MEDIAROLL_BACKEND=bleve or rebuild with CGO_ENABLED=1")

type SQLiteStore struct{}

func (s *SQLiteStore) Initialize(path string) error { return errNoCgo }

func (s *SQLiteStore) Close() error { return nil }

func (s *SQLiteStore) Clear(context.Context) error { return errNoCgo }

func (s *SQLiteStore) Query(context.Context, media.Predicate, media.Ordering, int, int) ([]media.RawAssetRecord, error) {
	return nil, media.ErrStoreUnavailable
}

func (s *SQLiteStore) Albums(context.Context, media.Predicate) ([]media.Album, error) {
	return nil, media.ErrStoreUnavailable
}

func (s *SQLiteStore) Insert(context.Context, media.RawAssetRecord) (string, error) {
	return "", errNoCgo
}

func (s *SQLiteStore) InsertBatch(context.Context, []media.RawAssetRecord) error { return errNoCgo }

func (s *SQLiteStore) DeletePaths(context.Context, []string) ([]string, error) { return nil, errNoCgo }

func (s *SQLiteStore) Count(context.Context) (int, error) { return 0, nil }

func (s *SQLiteStore) GetAllPaths(context.Context) ([]string, error) { return nil, nil }

func (s *SQLiteStore) RemoveStaleEntries(context.Context) (int, error) { return 0, nil }
