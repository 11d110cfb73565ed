package manifest

import (
	"path"
	"strings"

	"github.com/rs/zerolog"
)

// Entry is a media file cataloged in the backup manifest.
type Entry struct {
	Identifier  string // content hash, names the blob on disk
	Domain      string
	LogicalPath string // forward-slash path as recorded by the device
	Extension   string // lower-cased, with leading dot
}

func NewEntry(identifier, domain, logicalPath string) Entry {
	return Entry{
		Identifier:  identifier,
		Domain:      domain,
		LogicalPath: logicalPath,
		Extension:   strings.ToLower(path.Ext(logicalPath)),
	}
}

// Name returns the base name of the logical path.
func (e Entry) Name() string {
	return path.Base(e.LogicalPath)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e Entry) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("id", e.Identifier)
	ev.Str("domain", e.Domain)
	ev.Str("path", e.LogicalPath)
}
