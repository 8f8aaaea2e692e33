// Package store holds the asset index backends.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"mediaroll/internal/media"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendBleve  = "bleve"
)

// Datastore is the interface that any index backend must implement. Besides
// the query side used by media.Service it carries the writes the save and
// delete paths need.
type Datastore interface {
	media.AssetIndex
	media.AlbumIndex

	// Initialize prepares the datastore (e.g., create tables, open index).
	Initialize(path string) error

	// Close cleans up resources.
	Close() error

	// Insert registers one asset and returns its id. A record without an id
	// gets one assigned by the backend.
	Insert(ctx context.Context, rec media.RawAssetRecord) (string, error)

	// InsertBatch adds or replaces a batch of records, keeping their ids.
	InsertBatch(ctx context.Context, batch []media.RawAssetRecord) error

	// DeletePaths removes the rows for the given paths and returns the paths
	// that were indexed.
	DeletePaths(ctx context.Context, paths []string) ([]string, error)

	// Count returns the total number of assets.
	Count(ctx context.Context) (int, error)

	// GetAllPaths returns every asset path currently in the store.
	GetAllPaths(ctx context.Context) ([]string, error)

	// RemoveStaleEntries removes entries whose file no longer exists on disk
	// and returns the number removed.
	RemoveStaleEntries(ctx context.Context) (int, error)

	// Clear removes all data from the store.
	Clear(ctx context.Context) error
}

// New returns an uninitialized backend by name.
func New(backend string) (Datastore, error) {
	switch backend {
	case BackendSQLite, "":
		return &SQLiteStore{}, nil
	case BackendBleve:
		return &BleveStore{}, nil
	}
	return nil, fmt.Errorf("unknown backend %q, expected %q or %q", backend, BackendSQLite, BackendBleve)
}

// Open creates and initializes a backend. The Bleve index lives in a
// directory next to the SQLite file.
func Open(backend, path string) (Datastore, error) {
	ds, err := New(backend)
	if err != nil {
		return nil, err
	}
	if backend == BackendBleve {
		path = BlevePath(path)
	}
	if err := ds.Initialize(path); err != nil {
		return nil, err
	}
	return ds, nil
}

// BlevePath maps a .sqlite database path onto the Bleve index directory next
// to it. Any other path is used as is.
func BlevePath(path string) string {
	if filepath.Ext(path) != ".sqlite" {
		return path
	}
	return strings.TrimSuffix(path, ".sqlite") + ".bleve"
}
