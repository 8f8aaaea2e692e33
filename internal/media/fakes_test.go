package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
)

type queryCall struct {
	where  Predicate
	order  Ordering
	offset int
	limit  int
}

// spyIndex serves rows from an in-memory slice and records every call.
type spyIndex struct {
	rows   []RawAssetRecord
	err    error
	calls  []queryCall
	albums []Album
}

func (s *spyIndex) Query(_ context.Context, where Predicate, order Ordering, offset, limit int) ([]RawAssetRecord, error) {
	s.calls = append(s.calls, queryCall{where: where, order: order, offset: offset, limit: limit})
	if s.err != nil {
		return nil, s.err
	}
	if offset >= len(s.rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.rows) {
		end = len(s.rows)
	}
	return s.rows[offset:end], nil
}

func (s *spyIndex) Albums(_ context.Context, where Predicate) ([]Album, error) {
	s.calls = append(s.calls, queryCall{where: where})
	if s.err != nil {
		return nil, s.err
	}
	return s.albums, nil
}

type trackedHandle struct {
	*bytes.Reader
	path     string
	closed   *int
	closeErr error
}

func (h *trackedHandle) Close() error {
	*h.closed++
	return h.closeErr
}

// fakeProber answers probes from per-path tables.
type fakeProber struct {
	missing   map[string]bool
	bounds    map[string][2]int
	boundsErr map[string]error
	video     map[string]VideoMetadata
	videoErr  map[string]error
	locations map[string]*Location
	closeErr  error

	opened int
	closed int
	probes int
}

func newFakeProber() *fakeProber {
	return &fakeProber{
		missing:   map[string]bool{},
		bounds:    map[string][2]int{},
		boundsErr: map[string]error{},
		video:     map[string]VideoMetadata{},
		videoErr:  map[string]error{},
		locations: map[string]*Location{},
	}
}

func (p *fakeProber) OpenForRead(path string) (io.ReadSeekCloser, error) {
	if p.missing[path] {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	p.opened++
	return &trackedHandle{Reader: bytes.NewReader([]byte(path)), path: path, closed: &p.closed, closeErr: p.closeErr}, nil
}

func handlePath(h io.ReadSeeker) string {
	return h.(*trackedHandle).path
}

func (p *fakeProber) ProbeImageBounds(h io.ReadSeeker) (int, int, error) {
	p.probes++
	path := handlePath(h)
	if err := p.boundsErr[path]; err != nil {
		return 0, 0, err
	}
	b := p.bounds[path]
	return b[0], b[1], nil
}

func (p *fakeProber) ProbeVideoMetadata(h io.ReadSeeker) (VideoMetadata, error) {
	p.probes++
	path := handlePath(h)
	if err := p.videoErr[path]; err != nil {
		return VideoMetadata{}, err
	}
	return p.video[path], nil
}

func (p *fakeProber) ReadEmbeddedLocation(path string) (*Location, error) {
	if p.missing[path] {
		return nil, ErrNotFound
	}
	return p.locations[path], nil
}

var errCorrupt = errors.New("corrupt file")

func intPtr(v int) *int { return &v }

func photo(id string, w, h int) RawAssetRecord {
	return RawAssetRecord{
		ID:           id,
		MimeType:     "image/jpeg",
		Bucket:       "Camera",
		DateTaken:    1_600_000_000_000,
		DateAdded:    1_600_000_001,
		DateModified: 1_600_000_002,
		Width:        w,
		Height:       h,
		Size:         2048,
		Path:         "/sdcard/DCIM/Camera/" + id + ".jpg",
	}
}

func video(id string) RawAssetRecord {
	return RawAssetRecord{
		ID:           id,
		MimeType:     "video/mp4",
		Bucket:       "Camera",
		DateTaken:    1_600_000_000_000,
		DateAdded:    1_600_000_001,
		DateModified: 1_600_000_002,
		Size:         4096,
		Path:         "/sdcard/DCIM/Camera/" + id + ".mp4",
	}
}
