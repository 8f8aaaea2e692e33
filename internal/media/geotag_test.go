package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeoTag(t *testing.T) {
	tests := []struct {
		tag  string
		want Location
	}{
		{"+37.3318-122.0312/", Location{Latitude: 37.3318, Longitude: -122.0312}},
		{"-33.8688+151.2093", Location{Latitude: -33.8688, Longitude: 151.2093}},
		{"+27.5916+086.5640+8850/", Location{Latitude: 27.5916, Longitude: 86.564}},
		{"+48-002/", Location{Latitude: 48, Longitude: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseGeoTag(tt.tag)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Latitude, got.Latitude, 1e-9)
			assert.InDelta(t, tt.want.Longitude, got.Longitude, 1e-9)
		})
	}
}

func TestParseGeoTag_Malformed(t *testing.T) {
	for _, tag := range []string{"", "garbage", "37.3318,-122.0312", "+37.3318", "+95.0+10.0/", "+10.0-190.0/"} {
		_, err := ParseGeoTag(tag)
		assert.Error(t, err, tag)
	}
}
