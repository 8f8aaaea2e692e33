package media

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"
)

// Observer receives one callback per finished query. Implementations must be
// safe for concurrent use.
type Observer interface {
	ObserveQuery(code Code, stats ScanStats, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveQuery(Code, ScanStats, time.Duration) {}

// Service is the query entry point: it validates, fetches one window and
// assembles the page. Calls share no mutable state and may run concurrently.
type Service struct {
	index     AssetIndex
	albums    AlbumIndex
	assembler *Assembler
	observer  Observer
	log       *slog.Logger
}

type Option func(*Service)

// WithAlbumIndex enables Albums.
func WithAlbumIndex(albums AlbumIndex) Option {
	return func(s *Service) { s.albums = albums }
}

func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

func NewService(index AssetIndex, extractor *Extractor, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{
		index:     index,
		assembler: NewAssembler(extractor),
		observer:  nopObserver{},
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPhotos returns one page of assets matching q. Invalid arguments are
// rejected before the index is touched.
func (s *Service) GetPhotos(ctx context.Context, q AssetQuery) (*Connection, error) {
	start := time.Now()

	where, order, err := BuildQuery(q)
	if err != nil {
		s.observer.ObserveQuery(CodeOf(err), ScanStats{}, time.Since(start))
		return nil, err
	}
	window, err := WindowFor(q.First, q.After)
	if err != nil {
		s.observer.ObserveQuery(CodeOf(err), ScanStats{}, time.Since(start))
		return nil, err
	}

	rows, err := s.index.Query(ctx, where, order, window.Offset, window.Limit)
	if err != nil {
		lerr := loadError(err)
		s.log.Error("asset query failed", "code", lerr.Code, "error", err)
		s.observer.ObserveQuery(lerr.Code, ScanStats{}, time.Since(start))
		return nil, lerr
	}

	conn, stats := s.assembler.assemble(rows, q.First, q.Include, window.Offset)
	s.observer.ObserveQuery("", stats, time.Since(start))
	s.log.Info("assets loaded",
		"first", q.First,
		"offset", window.Offset,
		"fetched", stats.Fetched,
		"edges", len(conn.Edges),
		"skipped", stats.Skipped,
		"has_next_page", conn.PageInfo.HasNextPage,
	)
	return &conn, nil
}

// Albums lists bucket names with their asset counts, sorted by title.
// An empty assetType means All.
func (s *Service) Albums(ctx context.Context, assetType AssetType) ([]Album, error) {
	if assetType == "" {
		assetType = AssetTypeAll
	}
	where, err := MediaTypePredicate(assetType)
	if err != nil {
		return nil, err
	}
	if s.albums == nil {
		return nil, newError(CodeUnableToLoad, ErrStoreUnavailable, "Could not get albums")
	}

	albums, err := s.albums.Albums(ctx, where)
	if err != nil {
		lerr := loadError(err)
		s.log.Error("album query failed", "code", lerr.Code, "error", err)
		return nil, lerr
	}
	sort.Slice(albums, func(i, j int) bool { return albums[i].Title < albums[j].Title })
	return albums, nil
}
