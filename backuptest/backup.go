// Package backuptest builds device backups on disk for tests: a Manifest.db,
// hash-addressed blobs and an optional Photos.sqlite.
package backuptest

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stupid-simple/mediaextract/database"
	"gorm.io/gorm"
)

const (
	PhotosDomain = "CameraRollDomain"
	PhotosPath   = "Media/PhotoData/Photos.sqlite"

	FlagFile      = 1
	FlagDirectory = 2
)

// FileID derives a blob identifier the way the device does: SHA-1 of "domain-path".
func FileID(domain, logicalPath string) string {
	sum := sha1.Sum([]byte(domain + "-" + logicalPath))
	return hex.EncodeToString(sum[:])
}

type Backup struct {
	t   testing.TB
	Dir string
	db  *gorm.DB
}

// NewBackup creates an empty manifest in a temporary backup directory.
func NewBackup(t testing.TB) *Backup {
	t.Helper()
	dir := t.TempDir()

	db, err := database.OpenWritable(filepath.Join(dir, "Manifest.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close(db)
	})

	err = db.Exec(`CREATE TABLE Files (
		fileID TEXT PRIMARY KEY,
		domain TEXT,
		relativePath TEXT,
		flags INTEGER,
		file BLOB
	)`).Error
	require.NoError(t, err)

	return &Backup{t: t, Dir: dir, db: db}
}

// AddRow inserts a manifest row without a blob.
func (b *Backup) AddRow(id, domain, logicalPath string, flags int) {
	b.t.Helper()
	err := b.db.Exec(
		"INSERT INTO Files (fileID, domain, relativePath, flags, file) VALUES (?, ?, ?, ?, ?)",
		id, domain, logicalPath, flags, []byte{},
	).Error
	require.NoError(b.t, err)
}

// AddMedia registers a camera roll file and writes its blob. Returns the identifier.
func (b *Backup) AddMedia(logicalPath string, content []byte) string {
	b.t.Helper()
	id := FileID(PhotosDomain, logicalPath)
	b.AddRow(id, PhotosDomain, logicalPath, FlagFile)
	b.WriteBlob(id, content)
	return id
}

// AddMissingMedia registers a camera roll file without writing its blob.
func (b *Backup) AddMissingMedia(logicalPath string) string {
	b.t.Helper()
	id := FileID(PhotosDomain, logicalPath)
	b.AddRow(id, PhotosDomain, logicalPath, FlagFile)
	return id
}

// BlobPath returns where the blob for id is stored.
func (b *Backup) BlobPath(id string) string {
	return filepath.Join(b.Dir, id[:2], id)
}

func (b *Backup) WriteBlob(id string, content []byte) {
	b.t.Helper()
	p := b.BlobPath(id)
	require.NoError(b.t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(b.t, os.WriteFile(p, content, 0o644))
}

// AddPhotosDB registers the photo library built by photos as a blob of this backup.
func (b *Backup) AddPhotosDB(photos *PhotosDB) string {
	b.t.Helper()
	id := FileID(PhotosDomain, PhotosPath)
	b.AddRow(id, PhotosDomain, PhotosPath, FlagFile)

	content, err := os.ReadFile(photos.Close())
	require.NoError(b.t, err)
	b.WriteBlob(id, content)
	return id
}
