package exporter

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/stupid-simple/mediaextract/correlate"
)

// Progress locates a record in the working set, Index starts at 1.
type Progress struct {
	Index int
	Total int
}

// Reporter receives the outcome of every record in the working set.
type Reporter interface {
	Exported(p Progress, r Result)
	Skipped(p Progress, rec correlate.Record, err error)
	Failed(p Progress, rec correlate.Record, err error)
}

// NewLogReporter reports through logger. Unless verbose, successes are only
// logged at debug level plus a throttled progress line.
func NewLogReporter(logger zerolog.Logger, verbose bool) Reporter {
	return &logReporter{
		logger:  logger,
		verbose: verbose,
		throttled: logger.Sample(&zerolog.BurstSampler{
			Burst:  1,
			Period: 1 * time.Second,
		}),
	}
}

type logReporter struct {
	logger    zerolog.Logger
	throttled zerolog.Logger
	verbose   bool
}

func (l *logReporter) Exported(p Progress, r Result) {
	e := l.logger.Debug()
	if l.verbose {
		e = l.logger.Info()
	}
	e.Int("index", p.Index).Int("total", p.Total).Object("file", r).Msg("exported")

	if !l.verbose {
		l.throttled.Info().Int("index", p.Index).Int("total", p.Total).Msg("exporting files")
	}
}

func (l *logReporter) Skipped(p Progress, rec correlate.Record, err error) {
	e := l.logger.Debug()
	if l.verbose {
		e = l.logger.Info()
	}
	e.Int("index", p.Index).Int("total", p.Total).Err(err).Object("record", rec).Msg("skipped, file not found")
}

func (l *logReporter) Failed(p Progress, rec correlate.Record, err error) {
	l.logger.Error().Int("index", p.Index).Int("total", p.Total).Err(err).Object("record", rec).Msg("could not export file")
}
