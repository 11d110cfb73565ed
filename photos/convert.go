package photos

import (
	"math"
	"time"
)

// TimestampLayout is the format of normalized capture timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// NoGPS is stored in both coordinate columns when an asset has no location.
// A real longitude of -180 is indistinguishable from it.
const NoGPS = -180.0

// CoreDataEpoch is the zero point of the photo library timestamps.
var CoreDataEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// CoreDataTime converts seconds since the Core Data epoch.
func CoreDataTime(seconds float64) time.Time {
	whole, frac := math.Modf(seconds)
	return CoreDataEpoch.
		Add(time.Duration(whole) * time.Second).
		Add(time.Duration(frac * float64(time.Second)))
}

// FormatCoreDataTimestamp converts seconds since the Core Data epoch to TimestampLayout, in UTC.
func FormatCoreDataTimestamp(seconds float64) string {
	return CoreDataTime(seconds).Format(TimestampLayout)
}

// ParseTimestamp parses a TimestampLayout string as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.UTC)
}

// NormalizeCoordinate maps the no-location sentinel to nil.
func NormalizeCoordinate(v *float64) *float64 {
	if v == nil || *v == NoGPS {
		return nil
	}
	c := *v
	return &c
}
