package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery_AssetTypes(t *testing.T) {
	tests := []struct {
		assetType AssetType
		want      Predicate
	}{
		{AssetTypePhotos, Eq{Column: ColumnMediaType, Value: 1}},
		{AssetTypeVideos, Eq{Column: ColumnMediaType, Value: 3}},
		{AssetTypeAll, In{Column: ColumnMediaType, Values: []any{3, 1}}},
	}
	for _, tt := range tests {
		t.Run(string(tt.assetType), func(t *testing.T) {
			where, order, err := BuildQuery(AssetQuery{First: 1, AssetType: tt.assetType})
			require.NoError(t, err)
			assert.Equal(t, And{tt.want}, where)
			assert.Equal(t, NewestFirst, order)
		})
	}
}

func TestBuildQuery_InvalidAssetType(t *testing.T) {
	_, _, err := BuildQuery(AssetQuery{First: 1, AssetType: "Audio"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.Equal(t, CodeUnableToFilter, CodeOf(err))
	assert.Contains(t, err.Error(), "'Audio'")
	assert.Contains(t, err.Error(), "'Photos', 'Videos' or 'All'")
}

func TestBuildQuery_AllFilters(t *testing.T) {
	where, _, err := BuildQuery(AssetQuery{
		First:     10,
		AssetType: AssetTypePhotos,
		GroupName: "Screenshots",
		MimeTypes: []string{"image/png", "image/jpeg"},
		FromTime:  1_500_000_000_123,
		ToTime:    1_600_000_000_999,
	})
	require.NoError(t, err)

	want := And{
		Eq{Column: ColumnMediaType, Value: 1},
		Eq{Column: ColumnBucket, Value: "Screenshots"},
		In{Column: ColumnMimeType, Values: []any{"image/png", "image/jpeg"}},
		Or{
			Gt{Column: ColumnDateTaken, Value: 1_500_000_000_123},
			And{IsNull{Column: ColumnDateTaken}, Gt{Column: ColumnDateAdded, Value: 1_500_000_000}},
		},
		Or{
			Lte{Column: ColumnDateTaken, Value: 1_600_000_000_999},
			And{IsNull{Column: ColumnDateTaken}, Lte{Column: ColumnDateAdded, Value: 1_600_000_000}},
		},
	}
	assert.Equal(t, want, where)
}

func TestBuildQuery_ZeroTimesAndEmptyFiltersAreIgnored(t *testing.T) {
	where, _, err := BuildQuery(AssetQuery{First: 1, AssetType: AssetTypeAll, MimeTypes: []string{}})
	require.NoError(t, err)
	assert.Len(t, where, 1)
}
