package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stupid-simple/mediaextract/config"
	"github.com/stupid-simple/mediaextract/fileutils"
	"github.com/stupid-simple/mediaextract/scheduler"
)

func daemonCommand(ctx context.Context, args Command, logger zerolog.Logger) error {
	if args.Daemon.DryRun {
		logger = logger.With().Bool("dryrun", true).Logger()
	}

	cfg, err := config.LoadFromFile(args.Daemon.Config)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	sched := scheduler.NewScheduler(logger)
	addExtractionJobs(ctx, sched, cfg, logger, args.Daemon.DryRun)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	startConfigFileWatcher(ctx, args.Daemon.Config, logger, ticker, func(cfg *config.Config) {
		sched.RemoveJobs()
		addExtractionJobs(ctx, sched, cfg, logger, args.Daemon.DryRun)
	})

	sched.Start()
	defer sched.Stop()

	<-ctx.Done()

	return nil
}

// addExtractionJobs schedules every enabled job of cfg. Invalid jobs and jobs
// writing to an export directory or file list already in use are skipped.
func addExtractionJobs(
	ctx context.Context,
	sched *scheduler.Scheduler,
	cfg *config.Config,
	logger zerolog.Logger,
	dryRun bool,
) {
	exportDirs := make(map[string]struct{})
	outputs := make(map[string]struct{})

	for i, cfgJob := range cfg.Jobs {
		jobLogger := logger.With().Int("job", i).Logger()

		job, err := configToExtractionJob(ctx, cfgJob, jobLogger, dryRun)
		if err != nil {
			jobLogger.Warn().AnErr("cause", err).Msg("skipping job")
			continue
		}

		if _, ok := exportDirs[cfgJob.ExportDir]; ok {
			jobLogger.Warn().Str("export", cfgJob.ExportDir).Msg("skipping duplicate export directory")
			continue
		}
		exportDirs[cfgJob.ExportDir] = struct{}{}

		if _, ok := outputs[cfgJob.ManifestOutput]; ok {
			jobLogger.Warn().Str("output", cfgJob.ManifestOutput).Msg("skipping duplicate file list")
			continue
		}
		outputs[cfgJob.ManifestOutput] = struct{}{}

		if !cfgJob.Enable {
			jobLogger.Info().Str("backup", cfgJob.BackupDir).Msg("skipping disabled job")
			continue
		}

		if err := sched.AddJob(cfgJob.BackupDir, cfgJob.Schedule, job); err != nil {
			jobLogger.Error().Err(err).Msg("could not add extraction job")
			continue
		}

		jobLogger.Info().
			Object("config", cfgJob).
			Msg("added extraction job")
	}
}

func configToExtractionJob(
	ctx context.Context,
	cfgJob config.Job,
	logger zerolog.Logger,
	dryRun bool,
) (scheduler.Job, error) {
	if cfgJob.BackupDir == "" {
		return nil, fmt.Errorf("job must have a backup directory")
	}
	if cfgJob.ExportDir == "" {
		return nil, fmt.Errorf("job must have an export directory")
	}
	if cfgJob.ManifestOutput == "" {
		return nil, fmt.Errorf("job must have a file list output")
	}
	if cfgJob.Schedule == "" {
		return nil, fmt.Errorf("job must have a schedule")
	}

	mode := metadataDegrade
	if cfgJob.SkipMetadata {
		mode = metadataSkip
	}

	return &extractionJob{
		ctx: ctx,
		params: extractParams{
			cfg:          cfgJob.Extraction,
			limit:        cfgJob.Limit,
			dryRun:       dryRun || cfgJob.DryRun,
			verify:       cfgJob.Verify,
			exifFallback: cfgJob.ExifFallback,
			metadata:     mode,
			logger:       logger,
		},
	}, nil
}

func startConfigFileWatcher(ctx context.Context, cfgPath string, logger zerolog.Logger, ticker *time.Ticker, onChanged func(cfg *config.Config)) {
	logger.Info().Str("path", cfgPath).Msg("watching config file for changes")
	watcher, err := fileutils.WatchFile(ctx, cfgPath, when(ticker.C), func(err error) {
		logger.Error().Err(err).Msg("could not watch config file")
	})
	if err != nil {
		logger.Error().Err(err).Msg("could not watch config file")
		return
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher:
				if !ok {
					return
				}
				logger.Info().Str("path", cfgPath).Msg("config file changed, reloading")

				cfg, err := config.LoadFromFile(cfgPath)
				if err != nil {
					logger.Error().Err(err).Msg("could not load config")
					break
				}

				onChanged(cfg)
			}
		}
	}()
}

func when[T any](ch <-chan T) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		defer close(out)
		for range ch {
			out <- struct{}{}
		}
	}()
	return out
}

type extractionJob struct {
	ctx    context.Context
	params extractParams
}

func (j *extractionJob) Run() {
	p := j.params
	p.logger = withRunID(p.logger)

	if err := runExtraction(j.ctx, p); err != nil {
		p.logger.Error().Err(err).Str("backup", p.cfg.BackupDir).Msg("extraction job failed")
	}
}
