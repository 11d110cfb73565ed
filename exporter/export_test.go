package exporter_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stupid-simple/mediaextract/backuptest"
	"github.com/stupid-simple/mediaextract/correlate"
	"github.com/stupid-simple/mediaextract/exporter"
	"github.com/stupid-simple/mediaextract/fileutils"
	"github.com/stupid-simple/mediaextract/manifest"
	"github.com/stupid-simple/mediaextract/photos"
)

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Exported(p exporter.Progress, r exporter.Result) {
	m.Called(p, r)
}

func (m *MockReporter) Skipped(p exporter.Progress, rec correlate.Record, err error) {
	m.Called(p, rec, err)
}

func (m *MockReporter) Failed(p exporter.Progress, rec correlate.Record, err error) {
	m.Called(p, rec, err)
}

type fixture struct {
	backup  *backuptest.Backup
	index   *manifest.Index
	records []correlate.Record
	logger  zerolog.Logger
}

func newFixture(t *testing.T, build func(b *backuptest.Backup)) *fixture {
	t.Helper()
	backup := backuptest.NewBackup(t)
	build(backup)

	logger := zerolog.New(zerolog.NewTestWriter(t))
	idx := manifest.NewIndex(backup.Dir, logger)
	entries, err := idx.LoadMediaEntries(context.Background())
	require.NoError(t, err)

	return &fixture{
		backup:  backup,
		index:   idx,
		records: correlate.Merge(entries, nil),
		logger:  logger,
	}
}

func TestExport(t *testing.T) {
	f := newFixture(t, func(b *backuptest.Backup) {
		b.AddMedia("Media/DCIM/100APPLE/IMG_0001.HEIC", []byte("first photo"))
		b.AddMedia("Media/DCIM/101APPLE/IMG_0002.MOV", []byte("a movie"))
		b.AddMedia("Media/DCIM/IMG_0003.JPG", []byte("top level"))
	})
	exportDir := filepath.Join(t.TempDir(), "export")

	results, err := exporter.Export(context.Background(), f.records, f.index, exportDir, f.logger)
	require.NoError(t, err)
	require.Len(t, results, 3)

	want := map[string]string{
		"Media/DCIM/100APPLE/IMG_0001.HEIC": filepath.Join(exportDir, "100APPLE", "IMG_0001.HEIC"),
		"Media/DCIM/101APPLE/IMG_0002.MOV":  filepath.Join(exportDir, "101APPLE", "IMG_0002.MOV"),
		"Media/DCIM/IMG_0003.JPG":           filepath.Join(exportDir, "IMG_0003.JPG"),
	}
	for _, r := range results {
		dest, ok := want[r.SourceLogicalPath]
		require.True(t, ok, r.SourceLogicalPath)
		assert.Equal(t, dest, r.DestinationPath)
		assert.Equal(t, filepath.Base(dest), r.DestinationFileName)
		assert.NotEmpty(t, r.ModifiedTime)
		assert.NotZero(t, r.Hash)

		content, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, int64(len(content)), r.ByteSize)
	}
}

func TestExport_PreservesModTime(t *testing.T) {
	var id string
	f := newFixture(t, func(b *backuptest.Backup) {
		id = b.AddMedia("Media/DCIM/100APPLE/IMG_0001.HEIC", []byte("first photo"))
	})
	mtime := time.Date(2022, time.March, 4, 5, 6, 7, 0, time.Local)
	require.NoError(t, os.Chtimes(f.backup.BlobPath(id), mtime, mtime))
	exportDir := t.TempDir()

	results, err := exporter.Export(context.Background(), f.records, f.index, exportDir, f.logger)
	require.NoError(t, err)
	require.Len(t, results, 1)

	info, err := os.Stat(results[0].DestinationPath)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
	assert.Equal(t, "2022-03-04T05:06:07", results[0].ModifiedTime)
}

func TestExport_CollisionSafeNaming(t *testing.T) {
	f := newFixture(t, func(b *backuptest.Backup) {
		b.AddMedia("Media/DCIM/100APPLE/IMG_0001.HEIC", []byte("new content"))
	})
	exportDir := t.TempDir()
	existing := filepath.Join(exportDir, "100APPLE", "IMG_0001.HEIC")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("old content"), 0o644))

	results, err := exporter.Export(context.Background(), f.records, f.index, exportDir, f.logger)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, filepath.Join(exportDir, "100APPLE", "IMG_0001_1.HEIC"), results[0].DestinationPath)
	assert.Equal(t, "IMG_0001_1.HEIC", results[0].DestinationFileName)

	old, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old content", string(old))

	copied, err := os.ReadFile(results[0].DestinationPath)
	require.NoError(t, err)
	assert.Equal(t, "new content", string(copied))
}

func TestExport_DryRun(t *testing.T) {
	f := newFixture(t, func(b *backuptest.Backup) {
		b.AddMedia("Media/DCIM/100APPLE/IMG_0001.HEIC", []byte("first photo"))
		b.AddMedia("Media/DCIM/100APPLE/IMG_0002.HEIC", []byte("second photo"))
		b.AddMissingMedia("Media/DCIM/100APPLE/IMG_0003.HEIC")
	})
	exportDir := filepath.Join(t.TempDir(), "export")

	results, err := exporter.Export(context.Background(), f.records, f.index, exportDir, f.logger,
		exporter.WithDryRun(true),
	)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.False(t, fileutils.Exists(exportDir))
	for _, r := range results {
		assert.Equal(t, filepath.Join(exportDir, "100APPLE", r.DestinationFileName), r.DestinationPath)
		assert.NotZero(t, r.ByteSize)
		assert.NotEmpty(t, r.ModifiedTime)
		assert.Zero(t, r.Hash)
	}
}

func TestExport_Limit(t *testing.T) {
	f := newFixture(t, func(b *backuptest.Backup) {
		for i := 1; i <= 5; i++ {
			b.AddMedia(fmt.Sprintf("Media/DCIM/100APPLE/IMG_000%d.HEIC", i), []byte{byte(i)})
		}
	})

	results, err := exporter.Export(context.Background(), f.records, f.index, t.TempDir(), f.logger,
		exporter.WithLimit(2),
	)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = exporter.Export(context.Background(), f.records, f.index, t.TempDir(), f.logger,
		exporter.WithLimit(0),
	)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestExport_MissingBlobSkipped(t *testing.T) {
	f := newFixture(t, func(b *backuptest.Backup) {
		b.AddMedia("Media/DCIM/100APPLE/IMG_0001.HEIC", []byte("first photo"))
		b.AddMissingMedia("Media/DCIM/100APPLE/IMG_0002.HEIC")
	})

	reporter := new(MockReporter)
	reporter.On("Exported", mock.Anything, mock.Anything).Once()
	reporter.On("Skipped", mock.Anything, mock.Anything, mock.MatchedBy(func(err error) bool {
		return errors.Is(err, exporter.ErrSourceMissing)
	})).Once()

	results, err := exporter.Export(context.Background(), f.records, f.index, t.TempDir(), f.logger,
		exporter.WithReporter(reporter),
	)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Media/DCIM/100APPLE/IMG_0001.HEIC", results[0].SourceLogicalPath)

	reporter.AssertExpectations(t)
	reporter.AssertNotCalled(t, "Failed", mock.Anything, mock.Anything, mock.Anything)
}

func TestExport_Verify(t *testing.T) {
	f := newFixture(t, func(b *backuptest.Backup) {
		b.AddMedia("Media/DCIM/100APPLE/IMG_0001.HEIC", []byte("hello world"))
	})

	results, err := exporter.Export(context.Background(), f.records, f.index, t.TempDir(), f.logger,
		exporter.WithVerify(true),
	)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(0x45ab6734b21e6968), results[0].Hash)
}

func TestExport_CaptureFallback(t *testing.T) {
	f := newFixture(t, func(b *backuptest.Backup) {
		b.AddMedia("Media/DCIM/100APPLE/IMG_0001.HEIC", []byte("first photo"))
		b.AddMedia("Media/DCIM/100APPLE/IMG_0002.HEIC", []byte("second photo"))
	})
	for i := range f.records {
		if f.records[i].Name() == "IMG_0001.HEIC" {
			f.records[i].Metadata = photos.Metadata{CaptureTimestamp: "2023-06-15 14:30:00"}
			f.records[i].Matched = true
		}
	}

	var calls int
	fallback := func(src string, ext string) (string, error) {
		calls++
		assert.Equal(t, ".heic", ext)
		assert.True(t, fileutils.Exists(src))
		return "2020-01-01 00:00:00", nil
	}

	results, err := exporter.Export(context.Background(), f.records, f.index, t.TempDir(), f.logger,
		exporter.WithDryRun(true),
		exporter.WithCaptureFallback(fallback),
	)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, calls)

	for _, r := range results {
		switch r.DestinationFileName {
		case "IMG_0001.HEIC":
			assert.Equal(t, "2023-06-15 14:30:00", r.CaptureTimestamp)
		case "IMG_0002.HEIC":
			assert.Equal(t, "2020-01-01 00:00:00", r.CaptureTimestamp)
		default:
			t.Errorf("unexpected result %s", r.DestinationFileName)
		}
	}
}

func TestExport_UnusableExportDir(t *testing.T) {
	f := newFixture(t, func(b *backuptest.Backup) {
		b.AddMedia("Media/DCIM/100APPLE/IMG_0001.HEIC", []byte("first photo"))
	})
	exportDir := filepath.Join(t.TempDir(), "export")
	require.NoError(t, os.WriteFile(exportDir, []byte("not a directory"), 0o644))

	_, err := exporter.Export(context.Background(), f.records, f.index, exportDir, f.logger)
	assert.Error(t, err)
}

func TestExport_Cancelled(t *testing.T) {
	f := newFixture(t, func(b *backuptest.Backup) {
		b.AddMedia("Media/DCIM/100APPLE/IMG_0001.HEIC", []byte("first photo"))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := exporter.Export(ctx, f.records, f.index, t.TempDir(), f.logger)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDestinationDir(t *testing.T) {
	exportDir := filepath.Join("out", "photos")
	testCases := []struct {
		path string
		want string
	}{
		{"Media/DCIM/100APPLE/IMG_0001.HEIC", filepath.Join(exportDir, "100APPLE")},
		{"Media/DCIM/IMG_0001.HEIC", exportDir},
		{"Media/DCIM/100APPLE/edits/IMG_0001.HEIC", filepath.Join(exportDir, "100APPLE", "edits")},
		{"Media/DCIM/../IMG_0001.HEIC", exportDir},
		{"IMG_0001.HEIC", exportDir},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, exporter.DestinationDir(exportDir, tc.path))
		})
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "IMG_0001.HEIC")
	assert.Equal(t, p, exporter.UniquePath(p))

	require.NoError(t, os.WriteFile(p, nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "IMG_0001_1.HEIC"), exporter.UniquePath(p))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "IMG_0001_1.HEIC"), nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "IMG_0001_2.HEIC"), exporter.UniquePath(p))

	noExt := filepath.Join(dir, "README")
	require.NoError(t, os.WriteFile(noExt, nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "README_1"), exporter.UniquePath(noExt))
}
