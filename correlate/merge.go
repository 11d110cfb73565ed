// Package correlate joins manifest entries with photo library metadata.
//
// The manifest decides which files exist. Metadata only enriches them, so an
// entry without a metadata match still yields a record with absent fields.
package correlate

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/stupid-simple/mediaextract/manifest"
	"github.com/stupid-simple/mediaextract/photos"
)

// Record is a manifest entry with the metadata matched to it, if any.
type Record struct {
	manifest.Entry
	photos.Metadata
	Matched bool
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (r Record) MarshalZerologObject(e *zerolog.Event) {
	r.Entry.MarshalZerologObject(e)
	e.Bool("matched", r.Matched)
	if r.Matched {
		r.Metadata.MarshalZerologObject(e)
	}
}

// NormalizePathKey drops the first two segments of a logical path
// ("Media/DCIM/100APPLE/IMG_0001.HEIC" becomes "100APPLE/IMG_0001.HEIC").
// Paths with two segments or fewer have no key.
func NormalizePathKey(logicalPath string) string {
	parts := strings.SplitN(logicalPath, "/", 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

// libraryPathKey drops only the first segment, the form in which the photo
// library records directories that still carry the DCIM component.
func libraryPathKey(logicalPath string) string {
	_, rest, ok := strings.Cut(logicalPath, "/")
	if !ok {
		return ""
	}
	return rest
}

// Merge returns one record per entry, in entry order.
func Merge(entries []manifest.Entry, metadata map[string]photos.Metadata) []Record {
	records := make([]Record, len(entries))
	for i, e := range entries {
		records[i].Entry = e
		if m, ok := lookup(e.LogicalPath, metadata); ok {
			records[i].Metadata = m
			records[i].Matched = true
		}
	}
	return records
}

func lookup(logicalPath string, metadata map[string]photos.Metadata) (photos.Metadata, bool) {
	for _, key := range []string{NormalizePathKey(logicalPath), libraryPathKey(logicalPath)} {
		if key == "" {
			continue
		}
		if m, ok := metadata[key]; ok {
			return m, true
		}
	}
	return photos.Metadata{}, false
}
