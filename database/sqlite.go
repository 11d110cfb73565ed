package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrMissing is returned when the database file does not exist.
// SQLite would otherwise create an empty database at the path.
var ErrMissing = errors.New("database file does not exist")

// OpenReadOnly opens an existing SQLite file for querying only.
func OpenReadOnly(path string, log zerolog.Logger) (*gorm.DB, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissing, path)
	}
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("database path is a directory: %s", path)
	}

	return open(path+"?_pragma=query_only(1)", log)
}

// OpenWritable opens or creates a SQLite file.
func OpenWritable(path string, log zerolog.Logger) (*gorm.DB, error) {
	return open(path, log)
}

func open(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	cli, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger(log),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	return cli, nil
}

// Close releases the connection pool behind cli.
func Close(cli *gorm.DB) error {
	if cli == nil {
		return nil
	}
	sqlDB, err := cli.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type dblog struct {
	parent zerolog.Logger
}

// Error implements logger.Interface.
func (d *dblog) Error(_ context.Context, msg string, args ...interface{}) {
	d.parent.Error().Msgf(msg, args...)
}

// Info implements logger.Interface.
func (d *dblog) Info(_ context.Context, msg string, args ...interface{}) {
	d.parent.Info().Msgf(msg, args...)
}

// LogMode implements logger.Interface.
func (d *dblog) LogMode(lvl logger.LogLevel) logger.Interface {
	var zl zerolog.Level
	switch lvl {
	case logger.Info:
		zl = zerolog.InfoLevel
	case logger.Error:
		zl = zerolog.ErrorLevel
	case logger.Warn:
		zl = zerolog.WarnLevel
	default:
		zl = zerolog.Disabled
	}
	return &dblog{parent: d.parent.Level(zl)}
}

// Trace implements logger.Interface.
func (d *dblog) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	e := d.parent.Trace()
	if err != nil {
		// Failed statements surface through the caller's error, keep them at debug.
		e = d.parent.Debug().Err(err)
	}
	e.Dur("took", time.Since(begin)).Func(func(e *zerolog.Event) {
		sql, rows := fc()
		e.Str("sql", sql)
		e.Int64("rows_affected", rows)
	}).Msg("")
}

// Warn implements logger.Interface.
func (d *dblog) Warn(_ context.Context, msg string, args ...interface{}) {
	d.parent.Warn().Msgf(msg, args...)
}

func dbLogger(log zerolog.Logger) logger.Interface {
	return &dblog{
		parent: log,
	}
}
