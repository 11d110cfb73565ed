package photos_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stupid-simple/mediaextract/photos"
)

func TestFormatCoreDataTimestamp(t *testing.T) {
	testCases := []struct {
		seconds float64
		want    string
	}{
		{0, "2001-01-01 00:00:00"},
		{59.999, "2001-01-01 00:00:59"},
		{86400, "2001-01-02 00:00:00"},
		{-86400, "2000-12-31 00:00:00"},
		{708_000_000, "2023-06-09 10:40:00"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, photos.FormatCoreDataTimestamp(tc.seconds))
	}
}

func TestCoreDataTime(t *testing.T) {
	got := photos.CoreDataTime(1.5)
	assert.Equal(t, photos.CoreDataEpoch.Add(1500*time.Millisecond), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestParseTimestamp_RoundTrip(t *testing.T) {
	ts := photos.FormatCoreDataTimestamp(708_000_000)

	parsed, err := photos.ParseTimestamp(ts)
	require.NoError(t, err)
	assert.Equal(t, photos.CoreDataTime(708_000_000), parsed)

	_, err = photos.ParseTimestamp("2023:06:09 10:40:00")
	assert.Error(t, err)
}

func TestNormalizeCoordinate(t *testing.T) {
	v := func(f float64) *float64 { return &f }

	assert.Nil(t, photos.NormalizeCoordinate(nil))
	assert.Nil(t, photos.NormalizeCoordinate(v(-180.0)))

	got := photos.NormalizeCoordinate(v(-179.999))
	require.NotNil(t, got)
	assert.Equal(t, -179.999, *got)

	got = photos.NormalizeCoordinate(v(0))
	require.NotNil(t, got)
	assert.Equal(t, 0.0, *got)
}
