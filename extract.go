package main

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-units"
	"github.com/rs/zerolog"
	"github.com/stupid-simple/mediaextract/config"
	"github.com/stupid-simple/mediaextract/correlate"
	"github.com/stupid-simple/mediaextract/exifmeta"
	"github.com/stupid-simple/mediaextract/exporter"
	"github.com/stupid-simple/mediaextract/manifest"
	"github.com/stupid-simple/mediaextract/photos"
)

type metadataMode int

const (
	// Continue without metadata when the photo library can't be read.
	metadataDegrade metadataMode = iota
	metadataSkip
	metadataStrict
)

func extractCommand(ctx context.Context, args Command, logger zerolog.Logger) error {
	a := args.Extract

	mode := metadataDegrade
	switch {
	case a.NoMetadata:
		mode = metadataSkip
	case a.StrictMetadata:
		mode = metadataStrict
	}

	return runExtraction(ctx, extractParams{
		cfg: config.Extraction{
			BackupDir:       a.Backup,
			ExportDir:       a.Export,
			ManifestOutput:  a.Output,
			MediaExtensions: a.Extensions,
		},
		limit:        a.Limit,
		dryRun:       a.DryRun,
		verbose:      a.Verbose,
		verify:       a.Verify,
		exifFallback: a.ExifFallback,
		metadata:     mode,
		logger:       logger,
	})
}

type extractParams struct {
	cfg          config.Extraction
	limit        int
	dryRun       bool
	verbose      bool
	verify       bool
	exifFallback bool
	metadata     metadataMode
	logger       zerolog.Logger
}

func runExtraction(ctx context.Context, p extractParams) error {
	logger := p.logger
	if p.dryRun {
		logger = logger.With().Bool("dryrun", true).Logger()
	}

	if err := p.cfg.Validate(); err != nil {
		return err
	}

	startTime := time.Now()
	logger.Info().Object("config", p.cfg).Msg("starting extraction")
	defer func() {
		tookSeconds := time.Since(startTime).Seconds()
		if ctx.Err() != nil {
			logger.Info().Float64("seconds", tookSeconds).Msg("extraction cancelled")
		} else {
			logger.Info().Float64("seconds", tookSeconds).Msg("extraction done")
		}
	}()

	idx := manifest.NewIndex(p.cfg.BackupDir, logger, manifest.WithExtensions(p.cfg.Extensions()...))
	entries, err := idx.LoadMediaEntries(ctx)
	if err != nil {
		return fmt.Errorf("could not load manifest: %w", err)
	}
	stats := idx.ComputeStatistics(entries)
	logManifestStatistics(logger, stats)

	metadata, err := loadMetadata(ctx, idx, p.metadata, logger)
	if err != nil {
		return err
	}

	records := correlate.Merge(entries, metadata)
	logCoverage(logger, correlate.ComputeCoverage(stats, records))

	opts := []exporter.Option{
		exporter.WithDryRun(p.dryRun),
		exporter.WithLimit(p.limit),
		exporter.WithVerbose(p.verbose),
		exporter.WithVerify(p.verify),
	}
	if p.exifFallback {
		opts = append(opts, exporter.WithCaptureFallback(exifmeta.CaptureTime))
	}

	results, err := exporter.Export(ctx, records, idx, p.cfg.ExportDir, logger, opts...)
	if err != nil {
		return err
	}

	return exporter.WriteManifest(p.cfg.ManifestOutput, results, p.dryRun, logger)
}

func loadMetadata(ctx context.Context, locator photos.Locator, mode metadataMode, logger zerolog.Logger) (map[string]photos.Metadata, error) {
	if mode == metadataSkip {
		logger.Info().Msg("skipping photo library")
		return nil, nil
	}

	metadata, err := readMetadata(ctx, locator, logger)
	if err == nil {
		return metadata, nil
	}
	if mode == metadataStrict {
		return nil, fmt.Errorf("could not read photo library: %w", err)
	}

	logger.Warn().Err(err).Msg("could not read photo library, continuing without metadata")
	return nil, nil
}

func readMetadata(ctx context.Context, locator photos.Locator, logger zerolog.Logger) (map[string]photos.Metadata, error) {
	store, err := photos.Open(ctx, locator, logger)
	if err != nil {
		return nil, err
	}
	return store.GetPhotoMetadata(ctx)
}

func logManifestStatistics(logger zerolog.Logger, stats manifest.Statistics) {
	exts := zerolog.Dict()
	for ext, n := range stats.CountByExtension {
		exts.Int(ext, n)
	}

	logger.Info().
		Int("files", stats.TotalCount).
		Str("size", units.HumanSize(float64(stats.TotalByteSize))).
		Int("missing", stats.MissingCount).
		Dict("extensions", exts).
		Msg("manifest statistics")
}

func logCoverage(logger zerolog.Logger, c correlate.Coverage) {
	e := logger.Info()
	if c.TotalCount > 0 && c.WithMetadataCount == 0 {
		e = logger.Warn()
	}
	e.Int("files", c.TotalCount).
		Int("with_metadata", c.WithMetadataCount).
		Int("with_gps", c.WithGPSCount).
		Int("favorites", c.FavoritesCount).
		Msg("metadata coverage")
}
