package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"mediaroll/internal/media"
	"mediaroll/internal/probe"
)

// SaveType selects the destination folder when no album is given.
type SaveType string

const (
	SaveAuto  SaveType = "auto"
	SavePhoto SaveType = "photo"
	SaveVideo SaveType = "video"
)

type SaveOptions struct {
	Album string
	Type  SaveType
}

var errUnknownMedia = errors.New("unrecognised media type")

func resolveType(t SaveType, source string) (SaveType, error) {
	switch t {
	case SavePhoto, SaveVideo:
		return t, nil
	case SaveAuto, "":
		switch strings.ToLower(filepath.Ext(source)) {
		case ".mp4", ".mov":
			return SaveVideo, nil
		}
		return SavePhoto, nil
	}
	return "", fmt.Errorf("unknown save type %q", t)
}

// Save copies source into the library and registers it with the index. It
// returns the file:// URI of the stored copy.
func (l *Library) Save(ctx context.Context, source string, opts SaveOptions) (string, error) {
	kind, err := resolveType(opts.Type, source)
	if err != nil {
		return "", media.NewError(media.CodeUnableToSave, err, "Could not save media")
	}
	mimeType, ok := l.mimeType(source)
	if !ok || media.KindForMimeType(mimeType) == media.MediaKindUnknown {
		return "", media.NewError(media.CodeUnableToSave, errUnknownMedia, "Could not save media: %s", filepath.Base(source))
	}

	dir := l.destinationDir(opts.Album, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", media.NewError(media.CodeUnableToSave, err, "Could not create destination folder")
	}

	dest, err := l.copyIntoPlace(source, dir)
	if err != nil {
		return "", media.NewError(media.CodeUnableToSave, err, "Could not copy media")
	}

	rec, err := l.describe(dest, mimeType)
	if err == nil {
		rec.ID, err = l.registry.Insert(ctx, rec)
	}
	if err != nil {
		if rmErr := os.Remove(dest); rmErr != nil {
			l.log.Warn("could not remove unregistered copy", "path", dest, "error", rmErr)
		}
		return "", media.NewError(media.CodeUnableToSave, err, "Could not register media")
	}

	l.log.Info("asset saved", "asset_id", rec.ID, "path", dest, "mime_type", mimeType, "bucket", rec.Bucket)
	return "file://" + dest, nil
}

func (l *Library) destinationDir(album string, kind SaveType) string {
	if album != "" {
		return filepath.Join(l.root, album)
	}
	if kind == SaveVideo {
		return filepath.Join(l.root, "Movies")
	}
	return filepath.Join(l.root, "Pictures")
}

// copyIntoPlace writes source to a pending file in dir and renames it to the
// first free name, appending _0, _1, ... on collision.
func (l *Library) copyIntoPlace(source, dir string) (string, error) {
	src, err := os.Open(source)
	if err != nil {
		return "", err
	}
	defer src.Close()

	pending := filepath.Join(dir, ".pending-"+uuid.NewString())
	dst, err := os.OpenFile(pending, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(pending)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(pending)
		return "", err
	}

	dest := freeName(dir, filepath.Base(source))
	if err := os.Rename(pending, dest); err != nil {
		os.Remove(pending)
		return "", err
	}
	return dest, nil
}

func freeName(dir, base string) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	candidate := filepath.Join(dir, base)
	for i := 0; ; i++ {
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
}

// describe builds the index row for a stored file. Dimensions and EXIF are
// best effort; only a failing stat is an error.
func (l *Library) describe(path, mimeType string) (media.RawAssetRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return media.RawAssetRecord{}, err
	}
	now := l.now().Unix()
	rec := media.RawAssetRecord{
		MimeType:     mimeType,
		Bucket:       filepath.Base(filepath.Dir(path)),
		DateAdded:    now,
		DateModified: now,
		Size:         info.Size(),
		Path:         path,
	}

	h, err := l.prober.OpenForRead(path)
	if err != nil {
		l.log.Debug("could not probe saved asset", "path", path, "error", err)
		return rec, nil
	}
	defer h.Close()

	if rec.IsVideo() {
		if meta, err := l.prober.ProbeVideoMetadata(h); err == nil {
			rec.Width, rec.Height = meta.Width, meta.Height
		}
		return rec, nil
	}

	if w, ht, err := l.prober.ProbeImageBounds(h); err == nil {
		rec.Width, rec.Height = w, ht
	}
	if _, err := h.Seek(0, io.SeekStart); err == nil {
		capture := probe.ReadCaptureInfo(h)
		if !capture.Taken.IsZero() {
			rec.DateTaken = capture.Taken.UnixMilli()
		}
		rec.Orientation = capture.Orientation
	}
	return rec, nil
}
