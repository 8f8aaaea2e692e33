package media

import "strings"

// AssetType selects which kinds of assets a query returns.
type AssetType string

const (
	AssetTypePhotos AssetType = "Photos"
	AssetTypeVideos AssetType = "Videos"
	AssetTypeAll    AssetType = "All"
)

// MediaKind mirrors the media_type column of the asset index.
type MediaKind int

const (
	MediaKindUnknown MediaKind = 0
	MediaKindImage   MediaKind = 1
	MediaKindVideo   MediaKind = 3
)

// KindForMimeType classifies a mime type into the index media_type.
func KindForMimeType(mimeType string) MediaKind {
	switch {
	case strings.HasPrefix(mimeType, "image"):
		return MediaKindImage
	case strings.HasPrefix(mimeType, "video"):
		return MediaKindVideo
	}
	return MediaKindUnknown
}

// Field names accepted in AssetQuery.Include.
const (
	IncludeFilename         = "filename"
	IncludeFileSize         = "fileSize"
	IncludeFileExtension    = "fileExtension"
	IncludeLocation         = "location"
	IncludeImageSize        = "imageSize"
	IncludePlayableDuration = "playableDuration"
	IncludeOrientation      = "orientation"
	IncludeAlbums           = "albums"
)

// IncludeSet is the set of optional fields to compute for every node.
type IncludeSet map[string]struct{}

// NewIncludeSet builds an IncludeSet, ignoring empty names.
func NewIncludeSet(fields ...string) IncludeSet {
	s := make(IncludeSet, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			s[f] = struct{}{}
		}
	}
	return s
}

func (s IncludeSet) Has(field string) bool {
	_, ok := s[field]
	return ok
}

// AssetQuery holds the filter and paging parameters of one getPhotos call.
type AssetQuery struct {
	First     int
	After     string
	GroupName string
	AssetType AssetType
	MimeTypes []string
	FromTime  int64 // epoch millis, exclusive
	ToTime    int64 // epoch millis, inclusive
	Include   IncludeSet
}

// RawAssetRecord is one decoded row of the asset index.
type RawAssetRecord struct {
	ID           string
	MimeType     string
	Bucket       string
	DateTaken    int64 // millis, 0 when unset
	DateAdded    int64 // seconds
	DateModified int64 // seconds
	Width        int
	Height       int
	Size         int64
	Path         string
	Orientation  *int
}

func (r RawAssetRecord) IsVideo() bool {
	return strings.HasPrefix(r.MimeType, "video")
}

// Location is a latitude/longitude pair in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Image is the per-file block of an AssetNode. Every optional field is
// serialized, as null when it was not requested or is unavailable.
type Image struct {
	URI              string  `json:"uri"`
	Filename         *string `json:"filename"`
	FileSize         *int64  `json:"fileSize"`
	Extension        *string `json:"extension"`
	Width            *int    `json:"width"`
	Height           *int    `json:"height"`
	Orientation      *int    `json:"orientation"`
	PlayableDuration *int64  `json:"playableDuration"`
}

type AssetNode struct {
	ID                    string    `json:"id"`
	Type                  string    `json:"type"`
	GroupName             []string  `json:"group_name"`
	Image                 Image     `json:"image"`
	Timestamp             float64   `json:"timestamp"`
	ModificationTimestamp float64   `json:"modificationTimestamp"`
	Location              *Location `json:"location"`
}

type Edge struct {
	Node AssetNode `json:"node"`
}

type PageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor,omitempty"`
}

// Connection is one page of assets plus its continuation state.
type Connection struct {
	Edges    []Edge   `json:"edges"`
	PageInfo PageInfo `json:"page_info"`
}

// Album is a bucket name and the number of assets filed under it.
type Album struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

// VideoMetadata is what a container probe reports. Width and Height are
// zero when the container does not carry them; GeoTag is empty when absent.
type VideoMetadata struct {
	Width          int
	Height         int
	DurationMillis int64
	HasDuration    bool
	GeoTag         string
}
