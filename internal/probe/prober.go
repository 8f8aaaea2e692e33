// Package probe reads asset metadata straight from files on the local
// filesystem. It is the probe half of the asset store gateway.
package probe

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"mediaroll/internal/media"
)

// FileProber implements media.MediaProber over local files. It keeps no
// state, so one value can serve any number of concurrent queries.
type FileProber struct{}

var _ media.MediaProber = FileProber{}

func NewFileProber() FileProber {
	return FileProber{}
}

// OpenForRead opens path for probing. Missing files wrap media.ErrNotFound
// and unreadable ones wrap media.ErrPermissionDenied.
func (FileProber) OpenForRead(path string) (io.ReadSeekCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, classifyOpenError(path, err)
	}
	return f, nil
}

func classifyOpenError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w", path, media.ErrNotFound)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: %w", path, media.ErrPermissionDenied)
	}
	return err
}

func (FileProber) ProbeImageBounds(h io.ReadSeeker) (int, int, error) {
	return ImageBounds(h)
}

func (FileProber) ProbeVideoMetadata(h io.ReadSeeker) (media.VideoMetadata, error) {
	return VideoMetadata(h)
}

func (FileProber) ReadEmbeddedLocation(path string) (*media.Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, classifyOpenError(path, err)
	}
	defer f.Close()
	return EmbeddedLocation(f), nil
}
