package probe

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/abema/go-mp4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaroll/internal/media"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

type clip struct {
	timescale uint32
	duration  uint32
	width     uint32
	height    uint32
	geoTag    string
}

func writeMP4(t *testing.T, c clip) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := mp4.NewWriter(f)
	start := func(typ mp4.BoxType) {
		_, err := w.StartBox(&mp4.BoxInfo{Type: typ})
		require.NoError(t, err)
	}
	end := func() {
		_, err := w.EndBox()
		require.NoError(t, err)
	}
	marshal := func(box mp4.IImmutableBox) {
		_, err := mp4.Marshal(w, box, mp4.Context{})
		require.NoError(t, err)
	}

	start(mp4.BoxTypeFtyp())
	marshal(&mp4.Ftyp{
		MajorBrand:       [4]byte{'i', 's', 'o', 'm'},
		MinorVersion:     0x200,
		CompatibleBrands: []mp4.CompatibleBrandElem{{CompatibleBrand: [4]byte{'i', 's', 'o', 'm'}}},
	})
	end()

	start(mp4.BoxTypeMoov())
	start(mp4.BoxTypeMvhd())
	marshal(&mp4.Mvhd{Timescale: c.timescale, DurationV0: c.duration, Rate: 0x10000, Volume: 0x100, NextTrackID: 3})
	end()

	// an audio track first, so the prober has to look past it
	start(mp4.BoxTypeTrak())
	start(mp4.BoxTypeTkhd())
	marshal(&mp4.Tkhd{TrackID: 1, DurationV0: c.duration})
	end()
	end()

	start(mp4.BoxTypeTrak())
	start(mp4.BoxTypeTkhd())
	marshal(&mp4.Tkhd{TrackID: 2, DurationV0: c.duration, Width: c.width << 16, Height: c.height << 16})
	end()
	end()

	if c.geoTag != "" {
		start(mp4.BoxTypeUdta())
		start(boxTypeXyz)
		payload := make([]byte, 4, 4+len(c.geoTag))
		binary.BigEndian.PutUint16(payload[:2], uint16(len(c.geoTag)))
		binary.BigEndian.PutUint16(payload[2:4], 0x15c7)
		payload = append(payload, c.geoTag...)
		_, err := w.Write(payload)
		require.NoError(t, err)
		end()
		end()
	}
	end()
	return path
}

func TestImageBounds(t *testing.T) {
	w, h, err := ImageBounds(bytes.NewReader(pngBytes(t, 40, 30)))
	require.NoError(t, err)
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)

	_, _, err = ImageBounds(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestDurationMillis(t *testing.T) {
	assert.Equal(t, int64(12_500), durationMillis(7_500, 600))
	assert.Equal(t, int64(333), durationMillis(1, 3))
	// 2^60 units at 90 kHz would overflow when multiplied by 1000 first.
	assert.Equal(t, int64(12_810_238_940_076_077), durationMillis(1<<60, 90_000))
	assert.Equal(t, int64(math.MaxInt64), durationMillis(math.MaxUint64, 1))
}

func TestVideoMetadata(t *testing.T) {
	path := writeMP4(t, clip{timescale: 600, duration: 7_500, width: 1920, height: 1080, geoTag: "+37.3318-122.0312/"})
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	meta, err := VideoMetadata(f)
	require.NoError(t, err)
	assert.Equal(t, media.VideoMetadata{
		Width:          1920,
		Height:         1080,
		DurationMillis: 12_500,
		HasDuration:    true,
		GeoTag:         "+37.3318-122.0312/",
	}, meta)
}

func TestVideoMetadata_WithoutGeoTag(t *testing.T) {
	path := writeMP4(t, clip{timescale: 1000, duration: 999, width: 640, height: 480})
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	meta, err := VideoMetadata(f)
	require.NoError(t, err)
	assert.Empty(t, meta.GeoTag)
	assert.Equal(t, int64(999), meta.DurationMillis)
}

func TestVideoMetadata_RejectsOtherContainers(t *testing.T) {
	_, err := VideoMetadata(bytes.NewReader(pngBytes(t, 4, 4)))
	assert.Error(t, err)
}

func TestDecodeXyz(t *testing.T) {
	assert.Equal(t, "+1.5-2.5/", decodeXyz([]byte{0, 9, 0x15, 0xc7, '+', '1', '.', '5', '-', '2', '.', '5', '/', 0}))
	assert.Empty(t, decodeXyz([]byte{0, 1}))
}

func TestFileProber_OpenForRead(t *testing.T) {
	p := NewFileProber()

	_, err := p.OpenForRead(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.ErrorIs(t, err, media.ErrNotFound)

	h, err := p.OpenForRead(writeFile(t, "a.png", pngBytes(t, 8, 6)))
	require.NoError(t, err)
	defer h.Close()
	w, ht, err := p.ProbeImageBounds(h)
	require.NoError(t, err)
	assert.Equal(t, [2]int{8, 6}, [2]int{w, ht})
}

func TestFileProber_ReadEmbeddedLocation(t *testing.T) {
	p := NewFileProber()

	loc, err := p.ReadEmbeddedLocation(writeFile(t, "a.png", pngBytes(t, 2, 2)))
	require.NoError(t, err)
	assert.Nil(t, loc)

	_, err = p.ReadEmbeddedLocation(filepath.Join(t.TempDir(), "gone.jpg"))
	assert.ErrorIs(t, err, media.ErrNotFound)
}

func TestReadCaptureInfo_NoExif(t *testing.T) {
	info := ReadCaptureInfo(bytes.NewReader(pngBytes(t, 2, 2)))
	assert.True(t, info.Taken.IsZero())
	assert.Nil(t, info.Orientation)
}

func TestMimeType(t *testing.T) {
	mt, ok := MimeType(writeFile(t, "a.bin", pngBytes(t, 2, 2)))
	assert.True(t, ok)
	assert.Equal(t, "image/png", mt)

	_, ok = MimeType(filepath.Join(t.TempDir(), "missing"))
	assert.False(t, ok)
}

func TestExtensionForMimeType(t *testing.T) {
	for mime, want := range map[string]string{
		"image/jpeg": "jpg",
		"image/png":  "png",
		"video/mp4":  "mp4",
	} {
		ext, ok := ExtensionForMimeType(mime)
		assert.True(t, ok, mime)
		assert.Equal(t, want, ext, mime)
	}

	_, ok := ExtensionForMimeType("application/x-not-a-real-type")
	assert.False(t, ok)
}
