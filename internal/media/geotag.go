package media

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ISO 6709 point as written by cameras: sign-prefixed latitude, longitude and
// an optional altitude, e.g. "+37.3318-122.0312/" or "+27.5916+086.5640+8850/".
var geoTagPattern = regexp.MustCompile(`^([+-]\d+(?:\.\d+)?)([+-]\d+(?:\.\d+)?)(?:[+-]\d+(?:\.\d+)?)?$`)

// ParseGeoTag reads latitude and longitude out of an ISO 6709 location string.
func ParseGeoTag(tag string) (Location, error) {
	s := strings.TrimSpace(strings.ReplaceAll(tag, "/", ""))
	m := geoTagPattern.FindStringSubmatch(s)
	if m == nil {
		return Location{}, fmt.Errorf("malformed geo tag %q", tag)
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Location{}, fmt.Errorf("geo tag latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Location{}, fmt.Errorf("geo tag longitude: %w", err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Location{}, fmt.Errorf("geo tag %q out of range", tag)
	}
	return Location{Latitude: lat, Longitude: lon}, nil
}
