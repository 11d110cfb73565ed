package exporter

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/stupid-simple/mediaextract/photos"
)

// ModifiedTimeLayout formats Result.ModifiedTime, in local time.
const ModifiedTimeLayout = "2006-01-02T15:04:05.999999"

// Result describes one exported, or in a dry run simulated, file.
type Result struct {
	SourceLogicalPath   string
	DestinationFileName string
	ByteSize            int64
	ModifiedTime        string
	DestinationPath     string
	Hash                uint64 // content hash of the copy, zero in dry runs
	photos.Metadata
}

func formatModTime(t time.Time) string {
	return t.Local().Format(ModifiedTimeLayout)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (r Result) MarshalZerologObject(e *zerolog.Event) {
	e.Str("source", r.SourceLogicalPath)
	e.Str("dest", r.DestinationPath)
	e.Int64("size", r.ByteSize)
	e.Str("modified", r.ModifiedTime)
	if r.Hash != 0 {
		e.Uint64("hash", r.Hash)
	}
	r.Metadata.MarshalZerologObject(e)
}
