package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/stupid-simple/mediaextract/database"
	"gorm.io/gorm"
)

const (
	// FileName is the manifest database at the root of a backup.
	FileName = "Manifest.db"

	// MediaPrefix is the logical directory holding the camera roll.
	MediaPrefix = "Media/DCIM/"

	// Flag value of a regular file row. Directories and symlinks use other values.
	flagRegularFile = 1
)

// ErrNotFound is returned when a required database, row or blob is absent.
var ErrNotFound = errors.New("not found")

// file is a row of the manifest Files table.
type file struct {
	FileID       string `gorm:"column:fileID;primaryKey"`
	Domain       string `gorm:"column:domain"`
	RelativePath string `gorm:"column:relativePath"`
	Flags        int    `gorm:"column:flags"`
}

func (file) TableName() string {
	return "Files"
}

// Index reads the backup manifest. Every query opens and closes its own connection.
type Index struct {
	root       string
	extensions map[string]struct{}
	logger     zerolog.Logger
}

func NewIndex(backupDir string, logger zerolog.Logger, opts ...Option) *Index {
	o := options{extensions: extensionSet(DefaultExtensions)}
	for _, opt := range opts {
		opt(&o)
	}

	return &Index{
		root:       backupDir,
		extensions: o.extensions,
		logger:     logger.With().Str("backup", backupDir).Logger(),
	}
}

// Root returns the backup directory.
func (idx *Index) Root() string {
	return idx.root
}

// Path returns the manifest database path.
func (idx *Index) Path() string {
	return filepath.Join(idx.root, FileName)
}

// LoadMediaEntries returns the regular files under the camera roll prefix
// whose extension is recognized.
func (idx *Index) LoadMediaEntries(ctx context.Context) ([]Entry, error) {
	var rows []file
	err := idx.withDB(func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Select("fileID", "domain", "relativePath", "flags").
			Where("relativePath LIKE ? AND flags = ?", MediaPrefix+"%", flagRegularFile).
			Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	var skipped int
	for _, row := range rows {
		e := NewEntry(row.FileID, row.Domain, row.RelativePath)
		if _, ok := idx.extensions[e.Extension]; !ok {
			skipped++
			continue
		}
		entries = append(entries, e)
	}

	idx.logger.Info().
		Int("media", len(entries)).
		Int("skipped", skipped).
		Msg("loaded manifest entries")

	return entries, nil
}

// LookupFileID returns the identifier of the row with exactly this domain and path.
func (idx *Index) LookupFileID(ctx context.Context, domain string, logicalPath string) (string, error) {
	var rows []file
	err := idx.withDB(func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Select("fileID").
			Where("domain = ? AND relativePath = ?", domain, logicalPath).
			Limit(1).
			Find(&rows).Error
	})
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: no manifest row for %s in %s", ErrNotFound, logicalPath, domain)
	}
	return rows[0].FileID, nil
}

// BlobPath returns where the blob for id is stored, whether or not it exists.
// Blobs live in a subdirectory named after the first two characters of the id.
func (idx *Index) BlobPath(id string) (string, bool) {
	if len(id) < 2 {
		return "", false
	}
	return filepath.Join(idx.root, id[:2], id), true
}

// ResolvePhysicalPath returns the blob path for id if the blob exists.
func (idx *Index) ResolvePhysicalPath(id string) (string, bool) {
	p, ok := idx.BlobPath(id)
	if !ok {
		return "", false
	}
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}

func (idx *Index) withDB(query func(db *gorm.DB) error) error {
	db, err := database.OpenReadOnly(idx.Path(), idx.logger)
	if errors.Is(err, database.ErrMissing) {
		return fmt.Errorf("%w: %s", ErrNotFound, err)
	}
	if err != nil {
		return fmt.Errorf("could not open manifest: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			idx.logger.Warn().Err(err).Msg("could not close manifest")
		}
	}()

	if err := query(db); err != nil {
		return fmt.Errorf("could not query manifest: %w", err)
	}
	return nil
}
