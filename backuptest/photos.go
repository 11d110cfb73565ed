package backuptest

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stupid-simple/mediaextract/database"
	"gorm.io/gorm"
)

// NoGPS is the coordinate the photo library stores when a location is unknown.
const NoGPS = -180.0

type Schema int

const (
	SchemaModern Schema = iota
	SchemaLegacy
	SchemaEmpty
)

// Asset is one photo library row.
type Asset struct {
	Filename    string
	Directory   string
	DateCreated *float64
	Latitude    float64
	Longitude   float64
	Favorite    int
	Trashed     int

	// Leave both empty to store the asset without an attributes row.
	ExifTimestamp string
	TimeZone      string
}

type PhotosDB struct {
	t      testing.TB
	path   string
	db     *gorm.DB
	nextPK int
}

// NewPhotosDB creates a photo library with the given schema generation.
func NewPhotosDB(t testing.TB, schema Schema) *PhotosDB {
	t.Helper()
	p := filepath.Join(t.TempDir(), "Photos.sqlite")
	db, err := database.OpenWritable(p, zerolog.Nop())
	require.NoError(t, err)

	var stmts []string
	switch schema {
	case SchemaModern:
		stmts = []string{
			`CREATE TABLE ZASSET (
				Z_PK INTEGER PRIMARY KEY,
				ZFILENAME TEXT,
				ZDIRECTORY TEXT,
				ZDATECREATED TIMESTAMP,
				ZLATITUDE FLOAT,
				ZLONGITUDE FLOAT,
				ZFAVORITE INTEGER,
				ZTRASHEDSTATE INTEGER,
				ZADDITIONALATTRIBUTES INTEGER
			)`,
			`CREATE TABLE ZADDITIONALASSETATTRIBUTES (
				Z_PK INTEGER PRIMARY KEY,
				ZEXIFTIMESTAMPSTRING VARCHAR,
				ZTIMEZONENAME VARCHAR
			)`,
		}
	case SchemaLegacy:
		stmts = []string{
			`CREATE TABLE ZGENERICASSET (
				Z_PK INTEGER PRIMARY KEY,
				ZFILENAME TEXT,
				ZDIRECTORY TEXT
			)`,
		}
	case SchemaEmpty:
		stmts = []string{`CREATE TABLE ZMOMENT (Z_PK INTEGER PRIMARY KEY)`}
	}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return &PhotosDB{t: t, path: p, db: db, nextPK: 1}
}

// Exec runs a statement against the library, for schema tweaks.
func (p *PhotosDB) Exec(sql string, args ...any) {
	p.t.Helper()
	require.NoError(p.t, p.db.Exec(sql, args...).Error)
}

func (p *PhotosDB) AddAsset(a Asset) {
	p.t.Helper()
	pk := p.nextPK
	p.nextPK++

	var attrPK any
	if a.ExifTimestamp != "" || a.TimeZone != "" {
		attrPK = pk
		p.Exec(
			"INSERT INTO ZADDITIONALASSETATTRIBUTES (Z_PK, ZEXIFTIMESTAMPSTRING, ZTIMEZONENAME) VALUES (?, ?, ?)",
			pk, nullable(a.ExifTimestamp), nullable(a.TimeZone),
		)
	}

	var created any
	if a.DateCreated != nil {
		created = *a.DateCreated
	}
	p.Exec(
		`INSERT INTO ZASSET (Z_PK, ZFILENAME, ZDIRECTORY, ZDATECREATED, ZLATITUDE, ZLONGITUDE, ZFAVORITE, ZTRASHEDSTATE, ZADDITIONALATTRIBUTES)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pk, nullable(a.Filename), nullable(a.Directory), created, a.Latitude, a.Longitude, a.Favorite, a.Trashed, attrPK,
	)
}

// Path returns the library file path.
func (p *PhotosDB) Path() string {
	return p.path
}

// Close closes the connection and returns the library file path.
func (p *PhotosDB) Close() string {
	p.t.Helper()
	require.NoError(p.t, database.Close(p.db))
	return p.path
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Seconds returns a pointer to a Core Data timestamp, for Asset.DateCreated.
func Seconds(v float64) *float64 {
	return &v
}
