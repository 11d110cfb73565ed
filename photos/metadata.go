package photos

import "github.com/rs/zerolog"

// Metadata is what the photo library knows about one asset.
// Empty strings and nil coordinates mean absent.
type Metadata struct {
	CaptureTimestamp string
	Latitude         *float64
	Longitude        *float64
	TimeZoneName     string
	IsFavorite       bool
}

func (m Metadata) HasCaptureTimestamp() bool {
	return m.CaptureTimestamp != ""
}

func (m Metadata) HasGPS() bool {
	return m.Latitude != nil
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (m Metadata) MarshalZerologObject(e *zerolog.Event) {
	if m.CaptureTimestamp != "" {
		e.Str("captured", m.CaptureTimestamp)
	}
	if m.Latitude != nil {
		e.Float64("lat", *m.Latitude)
	}
	if m.Longitude != nil {
		e.Float64("lon", *m.Longitude)
	}
	if m.TimeZoneName != "" {
		e.Str("tz", m.TimeZoneName)
	}
	e.Bool("favorite", m.IsFavorite)
}

// Statistics counts assets in the library.
type Statistics struct {
	TotalAssets    int64 // not trashed
	AssetsWithGPS  int64
	FavoriteAssets int64
	TrashedAssets  int64
}
