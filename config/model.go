package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/stupid-simple/mediaextract/manifest"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Extraction is the resolved configuration of one extraction run.
type Extraction struct {
	BackupDir       string   `json:"backup_dir"`
	ExportDir       string   `json:"export_dir"`
	ManifestOutput  string   `json:"csv_output"`
	MediaExtensions []string `json:"media_extensions,omitempty"`
}

// Extensions returns the configured media extensions or the defaults.
func (e Extraction) Extensions() []string {
	if len(e.MediaExtensions) == 0 {
		return manifest.DefaultExtensions
	}
	return e.MediaExtensions
}

// Validate checks that the backup can be read and the outputs are set.
func (e Extraction) Validate() error {
	if e.BackupDir == "" {
		return fmt.Errorf("%w: backup directory not set", ErrInvalid)
	}
	if _, err := os.Stat(e.BackupDir); err != nil {
		return fmt.Errorf("%w: backup directory not found: %s", ErrInvalid, e.BackupDir)
	}
	manifestPath := filepath.Join(e.BackupDir, manifest.FileName)
	if _, err := os.Stat(manifestPath); err != nil {
		return fmt.Errorf("%w: %s not found in: %s", ErrInvalid, manifest.FileName, e.BackupDir)
	}
	if e.ExportDir == "" {
		return fmt.Errorf("%w: export directory not set", ErrInvalid)
	}
	if e.ManifestOutput == "" {
		return fmt.Errorf("%w: file list output not set", ErrInvalid)
	}
	return nil
}

func (e Extraction) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("backup_dir", e.BackupDir)
	ev.Str("export_dir", e.ExportDir)
	ev.Str("csv_output", e.ManifestOutput)
	if len(e.MediaExtensions) > 0 {
		ev.Strs("media_extensions", e.MediaExtensions)
	}
}

// Config is the daemon configuration file.
type Config struct {
	Jobs []Job `json:"jobs,omitempty"`
}

// Job is an extraction run on a cron schedule.
type Job struct {
	Extraction
	Enable       bool   `json:"enable"`
	Schedule     string `json:"cron"`
	DryRun       bool   `json:"dry_run,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	SkipMetadata bool   `json:"skip_metadata,omitempty"`
	ExifFallback bool   `json:"exif_fallback,omitempty"`
	Verify       bool   `json:"verify,omitempty"`
}

func (j Job) MarshalZerologObject(e *zerolog.Event) {
	j.Extraction.MarshalZerologObject(e)
	e.Bool("enable", j.Enable)
	e.Str("schedule", j.Schedule)

	if j.DryRun {
		e.Bool("dry_run", true)
	}
	if j.Limit > 0 {
		e.Int("limit", j.Limit)
	}
}
