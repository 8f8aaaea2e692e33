package library

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"mediaroll/internal/media"
)

var errNothingToDelete = errors.New("no uris given")

// Delete removes the assets behind uris from the index and from disk. Only
// files whose rows were in the index are removed. It returns how many rows
// were removed; a short count is an error.
func (l *Library) Delete(ctx context.Context, uris []string) (int, error) {
	if len(uris) == 0 {
		return 0, media.NewError(media.CodeUnableToDelete, errNothingToDelete, "Need at least one URI to delete")
	}

	paths := make([]string, 0, len(uris))
	for _, u := range uris {
		p, err := pathFromURI(u)
		if err != nil {
			return 0, media.NewError(media.CodeUnableToDelete, err, "Invalid URI: %s", u)
		}
		paths = append(paths, p)
	}

	removed, err := l.registry.DeletePaths(ctx, paths)
	if err != nil {
		return 0, media.NewError(media.CodeUnableToDelete, err, "Could not delete media")
	}

	deleted := len(removed)
	for _, p := range removed {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			l.log.Warn("could not remove asset file", "path", p, "error", err)
		}
	}

	l.log.Info("assets deleted", "requested", len(paths), "deleted", deleted)
	if deleted < len(paths) {
		return deleted, media.NewError(media.CodeUnableToDelete, nil,
			"Could not delete all media, only deleted %d photos.", deleted)
	}
	return deleted, nil
}

// pathFromURI accepts file:// URIs and absolute paths.
func pathFromURI(uri string) (string, error) {
	if filepath.IsAbs(uri) {
		return filepath.Clean(uri), nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported uri %q", uri)
	}
	if u.Path == "" {
		return "", fmt.Errorf("file uri %q has no path", uri)
	}
	return filepath.Clean(u.Path), nil
}
