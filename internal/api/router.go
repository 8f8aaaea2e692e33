package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mediaroll/internal/library"
	"mediaroll/internal/media"
	"mediaroll/internal/metrics"
)

// AssetService is the query side the handlers need.
type AssetService interface {
	GetPhotos(ctx context.Context, q media.AssetQuery) (*media.Connection, error)
	Albums(ctx context.Context, assetType media.AssetType) ([]media.Album, error)
}

// AssetLibrary is the write side the handlers need.
type AssetLibrary interface {
	Save(ctx context.Context, source string, opts library.SaveOptions) (string, error)
	Delete(ctx context.Context, uris []string) (int, error)
}

type Config struct {
	MaxPageSize  int
	MaxBodyBytes int64
}

type Deps struct {
	Service  AssetService
	Library  AssetLibrary
	Metrics  *metrics.Metrics    // optional
	Gatherer prometheus.Gatherer // optional, serves /metrics
	Log      *slog.Logger
}

// NewRouter creates the HTTP router with all v1 endpoints.
func NewRouter(deps Deps, cfg Config) http.Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 10
	}
	if deps.Log == nil {
		deps.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Log))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(middleware.Timeout(60 * time.Second))

	h := &handlers{service: deps.Service, library: deps.Library, cfg: cfg, log: deps.Log}

	r.Get("/v1/health", h.GetHealth)
	r.Get("/v1/assets", h.ListAssets)
	r.Get("/v1/albums", h.ListAlbums)
	if deps.Library != nil {
		r.Post("/v1/assets", h.PostAsset)
		r.Delete("/v1/assets", h.DeleteAssets)
	}
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

type handlers struct {
	service AssetService
	library AssetLibrary
	cfg     Config
	log     *slog.Logger
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}
