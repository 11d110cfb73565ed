// Package exporter copies correlated media out of a backup into a directory
// tree mirroring the camera roll, and writes the file list.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stupid-simple/mediaextract/correlate"
	"github.com/stupid-simple/mediaextract/fileutils"
	"github.com/stupid-simple/mediaextract/manifest"
)

var (
	// ErrSourceMissing is reported for records whose blob is not in the backup.
	ErrSourceMissing = fmt.Errorf("source blob %w", manifest.ErrNotFound)

	// ErrVerification is reported when a copy does not hash to its source.
	ErrVerification = errors.New("copy verification failed")
)

// Resolver finds the blob holding a manifest entry.
type Resolver interface {
	ResolvePhysicalPath(id string) (string, bool)
}

// Export copies records into exportDir. Records are processed one at a time;
// a record that cannot be exported is reported and skipped. The returned
// error is only set when the export directory is unusable.
func Export(
	ctx context.Context,
	records []correlate.Record,
	resolver Resolver,
	exportDir string,
	logger zerolog.Logger,
	opts ...Option,
) ([]Result, error) {
	o := options{}
	for _, applyOpts := range opts {
		applyOpts(&o)
	}

	logger = logger.With().Str("export", exportDir).Logger()
	if o.dryRun {
		logger = logger.With().Bool("dryrun", true).Logger()
	}
	reporter := o.reporter
	if reporter == nil {
		reporter = NewLogReporter(logger, o.verbose)
	}

	work := records
	if o.limit > 0 && o.limit < len(records) {
		work = records[:o.limit]
	}

	logger.Info().
		Int("found", len(records)).
		Int("processing", len(work)).
		Msg("exporting files")

	if !o.dryRun {
		if err := os.MkdirAll(exportDir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create export directory: %w", err)
		}
		if err := fileutils.VerifyWritable(exportDir); err != nil {
			return nil, fmt.Errorf("export directory must be writable: %w", err)
		}
	}

	results := make([]Result, 0, len(work))
	var skipped, failed int
	startTime := time.Now()
	defer func() {
		e := logger.Info()
		if skipped+failed > 0 {
			e = logger.Warn()
		}
		e.Int("exported", len(results)).
			Int("missing", skipped).
			Int("failed", failed).
			Float64("seconds", time.Since(startTime).Seconds()).
			Msg("done exporting files")
	}()

	for i, rec := range work {
		if ctx.Err() != nil {
			logger.Info().Int("remaining", len(work)-i).Msg("export cancelled")
			break
		}
		progress := Progress{Index: i + 1, Total: len(work)}

		src, ok := resolver.ResolvePhysicalPath(rec.Identifier)
		if !ok {
			skipped++
			reporter.Skipped(progress, rec, fmt.Errorf("%w: %s", ErrSourceMissing, rec.Identifier))
			continue
		}

		res, err := exportRecord(src, rec, exportDir, o, logger)
		if err != nil {
			failed++
			reporter.Failed(progress, rec, err)
			continue
		}
		results = append(results, res)
		reporter.Exported(progress, res)
	}

	return results, nil
}

func exportRecord(src string, rec correlate.Record, exportDir string, o options, logger zerolog.Logger) (Result, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return Result{}, fmt.Errorf("could not stat source: %w", err)
	}

	destDir := DestinationDir(exportDir, rec.LogicalPath)
	dest := filepath.Join(destDir, rec.Name())

	res := Result{
		SourceLogicalPath: rec.LogicalPath,
		ByteSize:          srcInfo.Size(),
		Metadata:          rec.Metadata,
	}

	if o.dryRun {
		res.DestinationPath = dest
		res.DestinationFileName = filepath.Base(dest)
		res.ModifiedTime = formatModTime(srcInfo.ModTime())
	} else {
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return Result{}, fmt.Errorf("could not create directory: %w", err)
		}
		dest = UniquePath(dest)

		hash, err := copyFile(src, dest, srcInfo, o.verify)
		if err != nil {
			return Result{}, err
		}
		destInfo, err := os.Stat(dest)
		if err != nil {
			return Result{}, fmt.Errorf("could not stat copy: %w", err)
		}

		res.DestinationPath = dest
		res.DestinationFileName = filepath.Base(dest)
		res.ModifiedTime = formatModTime(destInfo.ModTime())
		res.Hash = hash
	}

	if !res.HasCaptureTimestamp() && o.captureFallback != nil {
		ts, err := o.captureFallback(src, rec.Extension)
		if err != nil {
			logger.Debug().Err(err).Object("record", rec).Msg("no capture time in file")
		} else {
			res.CaptureTimestamp = ts
		}
	}

	return res, nil
}

// DestinationDir mirrors the directories of logicalPath below the camera
// roll prefix inside exportDir. Segments that would leave exportDir are dropped.
func DestinationDir(exportDir string, logicalPath string) string {
	parts := strings.Split(logicalPath, "/")
	if len(parts) <= 3 {
		return exportDir
	}

	dir := []string{exportDir}
	for _, seg := range parts[2 : len(parts)-1] {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		dir = append(dir, seg)
	}
	return filepath.Join(dir...)
}

// UniquePath returns p, or p with "_1", "_2", ... inserted before the
// extension if a file already exists there.
func UniquePath(p string) string {
	if !fileutils.Exists(p) {
		return p
	}

	ext := filepath.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if !fileutils.Exists(candidate) {
			return candidate
		}
	}
}

// copyFile copies src to a new file dest, keeping the source permissions and
// modification time. A failed copy leaves nothing at dest.
func copyFile(src string, dest string, srcInfo os.FileInfo, verify bool) (hash uint64, err error) {
	r, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("could not open source: %w", err)
	}
	defer r.Close()

	w, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, srcInfo.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("could not create destination: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dest)
		}
	}()

	_, hash, err = fileutils.CopyHashed(w, r)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("could not copy file: %w", err)
	}

	if err = os.Chtimes(dest, time.Now(), srcInfo.ModTime()); err != nil {
		return 0, fmt.Errorf("could not set modification time: %w", err)
	}

	if verify {
		var written uint64
		written, err = fileutils.ComputeFileHash(dest)
		if err != nil {
			return 0, fmt.Errorf("could not verify copy: %w", err)
		}
		if written != hash {
			err = fmt.Errorf("%w: %s", ErrVerification, dest)
			return 0, err
		}
	}

	return hash, nil
}
