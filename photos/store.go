package photos

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stupid-simple/mediaextract/database"
	"github.com/stupid-simple/mediaextract/manifest"
	"gorm.io/gorm"
)

const (
	// Domain and LogicalPath catalog the photo library in the manifest.
	Domain      = "CameraRollDomain"
	LogicalPath = "Media/PhotoData/Photos.sqlite"
)

var (
	// ErrNotCataloged means the manifest has no row for the photo library.
	ErrNotCataloged = errors.New("photo library not cataloged in manifest")
	// ErrBlobMissing means the manifest row exists but its blob does not.
	ErrBlobMissing = errors.New("photo library blob missing")
)

// Locator finds blobs through the backup manifest.
type Locator interface {
	LookupFileID(ctx context.Context, domain string, logicalPath string) (string, error)
	BlobPath(id string) (string, bool)
}

// Store reads a compatible photo library.
type Store struct {
	path   string
	logger zerolog.Logger
}

// Open locates the photo library through the manifest and verifies its schema.
// It fails with manifest.ErrNotFound when the manifest has no row for the
// library or the blob is missing, and with *SchemaError when it cannot be read.
func Open(ctx context.Context, locator Locator, logger zerolog.Logger) (*Store, error) {
	id, err := locator.LookupFileID(ctx, Domain, LogicalPath)
	if err != nil {
		if errors.Is(err, manifest.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotCataloged, err)
		}
		return nil, err
	}

	p, ok := locator.BlobPath(id)
	if !ok {
		return nil, fmt.Errorf("%w: %w: malformed identifier %q", ErrBlobMissing, manifest.ErrNotFound, id)
	}

	s := &Store{
		path:   p,
		logger: logger.With().Str("photos", p).Logger(),
	}
	err = s.withDB(func(db *gorm.DB) error {
		return VerifySchema(db)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Msg("photo library schema verified")
	return s, nil
}

// Path returns the photo library blob path.
func (s *Store) Path() string {
	return s.path
}

type assetRow struct {
	Filename      *string  `gorm:"column:filename"`
	Directory     *string  `gorm:"column:directory"`
	DateCreated   *float64 `gorm:"column:date_created"`
	Latitude      *float64 `gorm:"column:latitude"`
	Longitude     *float64 `gorm:"column:longitude"`
	Favorite      *int64   `gorm:"column:favorite"`
	ExifTimestamp *string  `gorm:"column:exif_timestamp"`
	TimeZone      *string  `gorm:"column:timezone"`
}

const assetQuery = `
SELECT
	a.ZFILENAME AS filename,
	a.ZDIRECTORY AS directory,
	CAST(a.ZDATECREATED AS REAL) AS date_created,
	CAST(a.ZLATITUDE AS REAL) AS latitude,
	CAST(a.ZLONGITUDE AS REAL) AS longitude,
	a.ZFAVORITE AS favorite,
	aa.ZEXIFTIMESTAMPSTRING AS exif_timestamp,
	aa.ZTIMEZONENAME AS timezone
FROM ` + assetTable + ` a
LEFT JOIN ` + attributesTable + ` aa ON a.ZADDITIONALATTRIBUTES = aa.Z_PK
WHERE a.ZTRASHEDSTATE = 0
	AND a.ZFILENAME IS NOT NULL`

// GetPhotoMetadata returns the metadata of every asset not in the trash,
// keyed by "directory/filename".
func (s *Store) GetPhotoMetadata(ctx context.Context) (map[string]Metadata, error) {
	var rows []assetRow
	err := s.withDB(func(db *gorm.DB) error {
		if err := db.WithContext(ctx).Raw(assetQuery).Scan(&rows).Error; err != nil {
			return &SchemaError{State: SchemaUnknown, Generation: modernGeneration, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metadata := make(map[string]Metadata, len(rows))
	var skipped int
	for _, row := range rows {
		key, ok := pathKey(row.Directory, row.Filename)
		if !ok {
			skipped++
			continue
		}
		metadata[key] = row.metadata()
	}

	s.logger.Info().
		Int("assets", len(metadata)).
		Int("skipped", skipped).
		Msg("loaded photo metadata")

	return metadata, nil
}

func pathKey(directory, filename *string) (string, bool) {
	if directory == nil || filename == nil || *directory == "" || *filename == "" {
		return "", false
	}
	return *directory + "/" + *filename, true
}

func (row assetRow) metadata() Metadata {
	m := Metadata{
		Latitude:   NormalizeCoordinate(row.Latitude),
		Longitude:  NormalizeCoordinate(row.Longitude),
		IsFavorite: row.Favorite != nil && *row.Favorite != 0,
	}

	// The EXIF string is the capture time. ZDATECREATED follows imports and edits.
	switch {
	case row.ExifTimestamp != nil && *row.ExifTimestamp != "":
		m.CaptureTimestamp = *row.ExifTimestamp
	case row.DateCreated != nil:
		m.CaptureTimestamp = FormatCoreDataTimestamp(*row.DateCreated)
	}

	if row.TimeZone != nil {
		m.TimeZoneName = *row.TimeZone
	}
	return m
}

// GetStatistics counts assets by trash, location and favorite state.
func (s *Store) GetStatistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	err := s.withDB(func(db *gorm.DB) error {
		counts := []struct {
			dst   *int64
			where string
			args  []any
		}{
			{&stats.TotalAssets, "ZTRASHEDSTATE = ?", []any{0}},
			{&stats.AssetsWithGPS, "ZTRASHEDSTATE = ? AND ZLATITUDE != ?", []any{0, NoGPS}},
			{&stats.FavoriteAssets, "ZTRASHEDSTATE = ? AND ZFAVORITE = ?", []any{0, 1}},
			{&stats.TrashedAssets, "ZTRASHEDSTATE != ?", []any{0}},
		}
		for _, c := range counts {
			err := db.WithContext(ctx).Table(assetTable).Where(c.where, c.args...).Count(c.dst).Error
			if err != nil {
				return &SchemaError{State: SchemaUnknown, Generation: modernGeneration, Err: err}
			}
		}
		return nil
	})
	return stats, err
}

func (s *Store) withDB(query func(db *gorm.DB) error) error {
	db, err := database.OpenReadOnly(s.path, s.logger)
	if errors.Is(err, database.ErrMissing) {
		return fmt.Errorf("%w: %w: %s", ErrBlobMissing, manifest.ErrNotFound, s.path)
	}
	if err != nil {
		return fmt.Errorf("could not open photo library: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			s.logger.Warn().Err(err).Msg("could not close photo library")
		}
	}()

	return query(db)
}
