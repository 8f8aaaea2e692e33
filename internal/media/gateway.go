package media

import (
	"context"
	"io"
)

// AssetIndex runs filtered, ordered, windowed queries against the asset index.
type AssetIndex interface {
	Query(ctx context.Context, where Predicate, order Ordering, offset, limit int) ([]RawAssetRecord, error)
}

// AlbumIndex counts assets per bucket for the assets matching where.
type AlbumIndex interface {
	Albums(ctx context.Context, where Predicate) ([]Album, error)
}

// MediaProber reads metadata out of individual asset files.
type MediaProber interface {
	// OpenForRead returns ErrNotFound (wrapped) when path does not exist.
	OpenForRead(path string) (io.ReadSeekCloser, error)
	// ProbeImageBounds decodes only the image header.
	ProbeImageBounds(h io.ReadSeeker) (width, height int, err error)
	ProbeVideoMetadata(h io.ReadSeeker) (VideoMetadata, error)
	// ReadEmbeddedLocation returns nil without error when the file carries no GPS tags.
	ReadEmbeddedLocation(path string) (*Location, error)
}
