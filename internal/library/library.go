// Package library writes assets into the managed media folder and removes
// them again, keeping the asset index in step.
package library

import (
	"context"
	"io"
	"log/slog"
	"time"

	"mediaroll/internal/media"
	"mediaroll/internal/probe"
)

// Registry is the write side of the asset index.
type Registry interface {
	Insert(ctx context.Context, rec media.RawAssetRecord) (string, error)
	// DeletePaths returns the subset of paths that were indexed and removed.
	DeletePaths(ctx context.Context, paths []string) ([]string, error)
}

// MimeTypeFunc reports the mime type of the file at path.
type MimeTypeFunc func(path string) (string, bool)

type Library struct {
	root     string
	registry Registry
	prober   media.MediaProber
	mimeType MimeTypeFunc
	now      func() time.Time
	log      *slog.Logger
}

type Option func(*Library)

// WithMimeTypeFunc replaces content sniffing.
func WithMimeTypeFunc(fn MimeTypeFunc) Option {
	return func(l *Library) { l.mimeType = fn }
}

func WithProber(p media.MediaProber) Option {
	return func(l *Library) { l.prober = p }
}

func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// New returns a Library that stores files under root.
func New(root string, registry Registry, log *slog.Logger, opts ...Option) *Library {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	l := &Library{
		root:     root,
		registry: registry,
		prober:   probe.NewFileProber(),
		mimeType: probe.MimeType,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}
