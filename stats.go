package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stupid-simple/mediaextract/correlate"
	"github.com/stupid-simple/mediaextract/manifest"
	"github.com/stupid-simple/mediaextract/photos"
)

func statsCommand(ctx context.Context, args Command, logger zerolog.Logger) error {
	if args.Stats.Backup == "" {
		return fmt.Errorf("backup directory not set")
	}

	opts := []manifest.Option{}
	if len(args.Stats.Extensions) > 0 {
		opts = append(opts, manifest.WithExtensions(args.Stats.Extensions...))
	}
	idx := manifest.NewIndex(args.Stats.Backup, logger, opts...)

	entries, err := idx.LoadMediaEntries(ctx)
	if err != nil {
		return fmt.Errorf("could not load manifest: %w", err)
	}
	stats := idx.ComputeStatistics(entries)
	logManifestStatistics(logger, stats)

	store, err := photos.Open(ctx, idx, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("could not read photo library")
		logCoverage(logger, correlate.ComputeCoverage(stats, correlate.Merge(entries, nil)))
		return nil
	}

	libStats, err := store.GetStatistics(ctx)
	if err != nil {
		return fmt.Errorf("could not count photo library assets: %w", err)
	}
	logger.Info().
		Int64("assets", libStats.TotalAssets).
		Int64("with_gps", libStats.AssetsWithGPS).
		Int64("favorites", libStats.FavoriteAssets).
		Int64("trashed", libStats.TrashedAssets).
		Msg("photo library statistics")

	metadata, err := store.GetPhotoMetadata(ctx)
	if err != nil {
		return fmt.Errorf("could not read photo library: %w", err)
	}
	logCoverage(logger, correlate.ComputeCoverage(stats, correlate.Merge(entries, metadata)))

	return nil
}
