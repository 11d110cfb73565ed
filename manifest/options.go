package manifest

import "strings"

// DefaultExtensions is the set of media suffixes extracted from a backup.
var DefaultExtensions = []string{".heic", ".jpg", ".jpeg", ".png", ".gif", ".mov", ".mp4", ".m4v", ".avi"}

type options struct {
	extensions map[string]struct{}
}

type Option func(*options)

// Only keep entries with one of these extensions. Matching is case-insensitive
// and a missing leading dot is added.
func WithExtensions(exts ...string) Option {
	return func(o *options) {
		o.extensions = extensionSet(exts)
	}
}

func extensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}
