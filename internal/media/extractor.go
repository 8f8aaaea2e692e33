package media

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
)

var errNoDimensions = errors.New("no positive dimensions in index or file")

// ExtensionFunc maps a mime type to a file extension without the leading dot.
// It returns false when the mime type has no known extension.
type ExtensionFunc func(mimeType string) (string, bool)

// Extractor derives AssetNodes from raw index rows, probing files only for the
// fields that were requested.
type Extractor struct {
	prober    MediaProber
	extension ExtensionFunc
	log       *slog.Logger
}

func NewExtractor(prober MediaProber, extension ExtensionFunc, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if extension == nil {
		extension = func(string) (string, bool) { return "", false }
	}
	return &Extractor{prober: prober, extension: extension, log: log}
}

// Extract builds the node for rec. Any requested field that fails makes the
// whole record fail with an *ExtractionError; fields not requested are left
// nil and never fail.
func (x *Extractor) Extract(rec RawAssetRecord, include IncludeSet) (AssetNode, error) {
	r := &recordExtraction{x: x, rec: rec}

	node := AssetNode{
		ID:                    rec.ID,
		Type:                  rec.MimeType,
		GroupName:             []string{},
		Timestamp:             captureSeconds(rec),
		ModificationTimestamp: float64(rec.DateModified),
		Image:                 Image{URI: "file://" + rec.Path},
	}

	if include.Has(IncludeImageSize) {
		w, h, err := r.dimensions()
		if err != nil {
			return AssetNode{}, r.fail(IncludeImageSize, err)
		}
		node.Image.Width, node.Image.Height = &w, &h
	}

	if include.Has(IncludePlayableDuration) && rec.IsVideo() {
		d, err := r.playableDuration()
		if err != nil {
			return AssetNode{}, r.fail(IncludePlayableDuration, err)
		}
		node.Image.PlayableDuration = &d
	}

	if include.Has(IncludeFilename) {
		name := filepath.Base(rec.Path)
		node.Image.Filename = &name
	}

	if include.Has(IncludeFileSize) {
		size := rec.Size
		node.Image.FileSize = &size
	}

	if include.Has(IncludeFileExtension) {
		if ext, ok := x.extension(rec.MimeType); ok {
			node.Image.Extension = &ext
		}
	}

	if include.Has(IncludeOrientation) {
		o := 0
		if rec.Orientation != nil {
			o = *rec.Orientation
		}
		node.Image.Orientation = &o
	}

	if include.Has(IncludeLocation) {
		loc, err := r.location()
		if err != nil {
			return AssetNode{}, r.fail(IncludeLocation, err)
		}
		node.Location = loc
	}

	if include.Has(IncludeAlbums) && rec.Bucket != "" {
		node.GroupName = append(node.GroupName, rec.Bucket)
	}

	return node, nil
}

// captureSeconds prefers the capture time (millis) and falls back to the
// added time, which the index already stores in seconds.
func captureSeconds(rec RawAssetRecord) float64 {
	taken := rec.DateTaken
	if taken == 0 {
		taken = rec.DateAdded * 1000
	}
	return float64(taken) / 1000
}

// recordExtraction holds per-record probe results so a video container is
// opened at most once however many fields need it.
type recordExtraction struct {
	x   *Extractor
	rec RawAssetRecord

	video      *VideoMetadata
	videoErr   error
	videoReady bool
}

func (r *recordExtraction) fail(field string, err error) error {
	r.x.log.Debug("skipping asset", "asset_id", r.rec.ID, "field", field, "error", err)
	return &ExtractionError{AssetID: r.rec.ID, Field: field, Err: err}
}

// withHandle opens the asset, runs fn and closes the handle on every path.
// Close failures are logged and never change the outcome.
func (r *recordExtraction) withHandle(fn func(h io.ReadSeeker) error) error {
	h, err := r.x.prober.OpenForRead(r.rec.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", r.rec.Path, err)
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			r.x.log.Warn("could not close media handle", "path", r.rec.Path, "error", cerr)
		}
	}()
	return fn(h)
}

func (r *recordExtraction) videoMetadata() (*VideoMetadata, error) {
	if !r.videoReady {
		r.videoReady = true
		r.videoErr = r.withHandle(func(h io.ReadSeeker) error {
			meta, err := r.x.prober.ProbeVideoMetadata(h)
			if err != nil {
				return fmt.Errorf("probe video metadata: %w", err)
			}
			r.video = &meta
			return nil
		})
	}
	return r.video, r.videoErr
}

func (r *recordExtraction) dimensions() (int, int, error) {
	w, h := r.rec.Width, r.rec.Height

	if w <= 0 || h <= 0 {
		if r.rec.IsVideo() {
			meta, err := r.videoMetadata()
			if err != nil {
				return 0, 0, err
			}
			w, h = meta.Width, meta.Height
		} else {
			err := r.withHandle(func(f io.ReadSeeker) error {
				var err error
				w, h, err = r.x.prober.ProbeImageBounds(f)
				return err
			})
			if err != nil {
				return 0, 0, fmt.Errorf("probe image bounds: %w", err)
			}
		}
		if w <= 0 || h <= 0 {
			return 0, 0, errNoDimensions
		}
	}

	if o := r.rec.Orientation; o != nil && *o%180 != 0 {
		w, h = h, w
	}
	return w, h, nil
}

func (r *recordExtraction) playableDuration() (int64, error) {
	meta, err := r.videoMetadata()
	if err != nil {
		return 0, err
	}
	if !meta.HasDuration || meta.DurationMillis < 0 {
		return 0, errors.New("container has no readable duration")
	}
	return meta.DurationMillis / 1000, nil
}

func (r *recordExtraction) location() (*Location, error) {
	if !r.rec.IsVideo() {
		return r.x.prober.ReadEmbeddedLocation(r.rec.Path)
	}
	meta, err := r.videoMetadata()
	if err != nil {
		return nil, err
	}
	if meta.GeoTag == "" {
		return nil, nil
	}
	loc, err := ParseGeoTag(meta.GeoTag)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}
