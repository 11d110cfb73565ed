package exporter

type options struct {
	dryRun          bool
	limit           int
	verbose         bool
	verify          bool
	reporter        Reporter
	captureFallback CaptureFunc
}

type Option func(*options)

// Compute destinations and read source info without touching the export directory.
func WithDryRun(dryRun bool) Option {
	return func(o *options) {
		o.dryRun = dryRun
	}
}

// Only process the first limit records. Zero or negative means no limit.
func WithLimit(limit int) Option {
	return func(o *options) {
		o.limit = limit
	}
}

// Report every record at info level instead of debug.
func WithVerbose(verbose bool) Option {
	return func(o *options) {
		o.verbose = verbose
	}
}

// Hash each copy again after writing and fail the record on mismatch.
func WithVerify(verify bool) Option {
	return func(o *options) {
		o.verify = verify
	}
}

// Send per-record outcomes to r instead of the logger.
func WithReporter(r Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

// CaptureFunc reads a capture timestamp from a source blob.
type CaptureFunc func(sourcePath string, ext string) (string, error)

// Fill a missing capture timestamp by reading the source file.
func WithCaptureFallback(fn CaptureFunc) Option {
	return func(o *options) {
		o.captureFallback = fn
	}
}
