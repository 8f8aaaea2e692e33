package probe

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/abema/go-mp4"
	"github.com/dhowden/tag"

	"mediaroll/internal/media"
)

var errNotMP4 = errors.New("not an MP4/QuickTime container")

// boxTypeXyz is the QuickTime user-data atom holding an ISO 6709 location.
var boxTypeXyz = mp4.BoxType{0xa9, 'x', 'y', 'z'}

// VideoMetadata reads duration, display size and geo tag out of an MP4 or
// QuickTime container. Each part is optional; only an unreadable container
// is an error.
func VideoMetadata(r io.ReadSeeker) (media.VideoMetadata, error) {
	var meta media.VideoMetadata

	if err := identifyContainer(r); err != nil {
		return meta, err
	}

	mvhd, err := mp4.ExtractBoxWithPayload(r, nil, mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()})
	if err != nil {
		return meta, fmt.Errorf("read movie header: %w", err)
	}
	if len(mvhd) > 0 {
		if h, ok := mvhd[0].Payload.(*mp4.Mvhd); ok && h.Timescale > 0 {
			d := uint64(h.DurationV0)
			if h.GetVersion() == 1 {
				d = h.DurationV1
			}
			meta.DurationMillis = durationMillis(d, h.Timescale)
			meta.HasDuration = true
		}
	}

	tkhds, err := mp4.ExtractBoxWithPayload(r, nil, mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeTrak(), mp4.BoxTypeTkhd()})
	if err != nil {
		return meta, fmt.Errorf("read track headers: %w", err)
	}
	for _, b := range tkhds {
		tkhd, ok := b.Payload.(*mp4.Tkhd)
		if !ok {
			continue
		}
		// 16.16 fixed point; audio tracks carry zero.
		w, h := int(tkhd.Width>>16), int(tkhd.Height>>16)
		if w > 0 && h > 0 {
			meta.Width, meta.Height = w, h
			break
		}
	}

	geo, err := readGeoTag(r)
	if err != nil {
		return meta, err
	}
	meta.GeoTag = geo
	return meta, nil
}

// durationMillis converts a duration in timescale units to milliseconds
// without overflowing for long or finely scaled movies.
func durationMillis(d uint64, timescale uint32) int64 {
	ts := uint64(timescale)
	secs := d / ts
	if secs > math.MaxInt64/1000-1 {
		return math.MaxInt64
	}
	return int64(secs*1000 + d%ts*1000/ts)
}

func identifyContainer(r io.ReadSeeker) error {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	format, _, err := tag.Identify(r)
	if err != nil {
		return fmt.Errorf("identify container: %w", err)
	}
	if format != tag.MP4 {
		return errNotMP4
	}
	_, err = r.Seek(0, io.SeekStart)
	return err
}

// readGeoTag looks for moov/udta/©xyz and returns its text, or "" when the
// atom is absent.
func readGeoTag(r io.ReadSeeker) (string, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	var geo string
	_, err := mp4.ReadBoxStructure(r, func(h *mp4.ReadHandle) (interface{}, error) {
		switch h.BoxInfo.Type {
		case mp4.BoxTypeMoov(), mp4.BoxTypeUdta():
			return h.Expand()
		case boxTypeXyz:
			var buf bytes.Buffer
			if _, err := h.ReadData(&buf); err != nil {
				return nil, err
			}
			geo = decodeXyz(buf.Bytes())
		}
		return nil, nil
	})
	if err != nil {
		return "", fmt.Errorf("read user data: %w", err)
	}
	return geo, nil
}

// decodeXyz unpacks a QuickTime international text atom: a 16-bit length,
// a 16-bit language code, then the text.
func decodeXyz(b []byte) string {
	if len(b) < 4 {
		return ""
	}
	n := int(binary.BigEndian.Uint16(b[:2]))
	text := b[4:]
	if n < len(text) {
		text = text[:n]
	}
	return string(bytes.TrimRight(text, "\x00"))
}
