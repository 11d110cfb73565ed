package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
)

// ManifestHeader is the first row of the file list.
var ManifestHeader = []string{"original_path", "file_name", "file_size", "modified_time", "export_path"}

// WriteManifest writes the file list CSV to path, replacing any existing file.
// In a dry run nothing is written.
func WriteManifest(path string, results []Result, dryRun bool, logger zerolog.Logger) (err error) {
	logger = logger.With().Str("path", path).Int("files", len(results)).Logger()
	if dryRun {
		logger.Info().Bool("dryrun", true).Msg("would save file list")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create file list directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create file list: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	w := csv.NewWriter(f)
	if err := w.Write(ManifestHeader); err != nil {
		return fmt.Errorf("could not write file list: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.SourceLogicalPath,
			r.DestinationFileName,
			strconv.FormatInt(r.ByteSize, 10),
			r.ModifiedTime,
			r.DestinationPath,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("could not write file list: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("could not write file list: %w", err)
	}

	logger.Info().Msg("saved file list")
	return nil
}
