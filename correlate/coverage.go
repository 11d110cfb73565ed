package correlate

import "github.com/stupid-simple/mediaextract/manifest"

// Coverage extends manifest statistics with how much metadata was matched.
type Coverage struct {
	manifest.Statistics
	WithMetadataCount int // records with a capture timestamp
	WithGPSCount      int
	FavoritesCount    int
}

func ComputeCoverage(stats manifest.Statistics, records []Record) Coverage {
	c := Coverage{Statistics: stats}
	for _, r := range records {
		if r.HasCaptureTimestamp() {
			c.WithMetadataCount++
		}
		if r.HasGPS() {
			c.WithGPSCount++
		}
		if r.IsFavorite {
			c.FavoritesCount++
		}
	}
	return c
}
