package media

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowFor(t *testing.T) {
	w, err := WindowFor(20, "")
	require.NoError(t, err)
	assert.Equal(t, Window{Offset: 0, Limit: 21}, w)

	w, err = WindowFor(20, "40")
	require.NoError(t, err)
	assert.Equal(t, Window{Offset: 40, Limit: 21}, w)
}

func TestWindowFor_Rejects(t *testing.T) {
	for _, after := range []string{"-1", "abc", "1.5", " 3"} {
		_, err := WindowFor(5, after)
		require.Error(t, err, after)
		assert.ErrorIs(t, err, ErrMalformedCursor)
		assert.Equal(t, CodeUnableToFilter, CodeOf(err))
	}

	_, err := WindowFor(0, "")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestWindowFor_Bounds(t *testing.T) {
	_, err := WindowFor(math.MaxInt, "")
	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.Equal(t, CodeUnableToFilter, CodeOf(err))

	w, err := WindowFor(MaxFirst, "")
	require.NoError(t, err)
	assert.Equal(t, MaxFirst+1, w.Limit)

	_, err = WindowFor(10, strconv.Itoa(math.MaxInt-5))
	assert.ErrorIs(t, err, ErrMalformedCursor)
}

func TestPageInfoFor(t *testing.T) {
	assert.Equal(t, PageInfo{HasNextPage: true, EndCursor: "12"}, PageInfoFor(3, 10, 2))
	assert.Equal(t, PageInfo{}, PageInfoFor(2, 10, 2))
	assert.Equal(t, PageInfo{}, PageInfoFor(0, 0, 2))
}
