package probe

import (
	"io"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"mediaroll/internal/media"
)

// EmbeddedLocation returns the EXIF GPS position of r, or nil when the file
// has no EXIF block or no usable GPS tags.
func EmbeddedLocation(r io.Reader) *media.Location {
	x, err := exif.Decode(r)
	if err != nil {
		return nil
	}
	lat, lon, err := x.LatLong()
	if err != nil {
		return nil
	}
	return &media.Location{Latitude: lat, Longitude: lon}
}

// CaptureInfo is the subset of EXIF the index stores for a new photo.
type CaptureInfo struct {
	Taken       time.Time // zero when unknown
	Orientation *int      // degrees clockwise
}

// ReadCaptureInfo extracts capture time and orientation. Missing EXIF data
// yields a zero CaptureInfo rather than an error.
func ReadCaptureInfo(r io.Reader) CaptureInfo {
	var info CaptureInfo
	x, err := exif.Decode(r)
	if err != nil {
		return info
	}
	if t, err := x.DateTime(); err == nil {
		info.Taken = t
	}
	if t, err := x.Get(exif.Orientation); err == nil {
		if v, err := t.Int(0); err == nil {
			if deg, ok := orientationDegrees[v]; ok {
				info.Orientation = &deg
			}
		}
	}
	return info
}

// EXIF orientation codes that are pure rotations.
var orientationDegrees = map[int]int{
	1: 0,
	3: 180,
	6: 90,
	8: 270,
}
