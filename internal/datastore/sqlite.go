package datastore

import (
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tphakala/datanorm/internal/conf"
	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/logger"
	"github.com/tphakala/datanorm/internal/observability/metrics"
)

// sqliteParams are appended to the database path as mattn/go-sqlite3 DSN options
const sqliteParams = "?_busy_timeout=5000&_journal_mode=WAL"

// SQLiteStore implements DataStore for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

func validateSQLiteConfig(settings *conf.Settings) error {
	if settings.Output.SQLite.Path == "" {
		return validationError("sqlite path is empty", "output.sqlite.path", "")
	}
	return nil
}

// Open sets up the SQLite database connection, creating the parent
// directory of the database file when needed.
func (store *SQLiteStore) Open() (err error) {
	start := time.Now()
	defer func() { store.observe(metrics.OpDbMigrate, start, err) }()

	if err := validateSQLiteConfig(store.Settings); err != nil {
		return err
	}

	path := store.Settings.Output.SQLite.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.New(err).
				Component("datastore").
				Category(errors.CategoryFileIO).
				Context("operation", "create_database_dir").
				Context("path", dir).
				Build()
		}
	}

	db, err := gorm.Open(sqlite.Open(path+sqliteParams), &gorm.Config{Logger: store.gormLogger()})
	if err != nil {
		return dbError(err, "open", errors.PriorityCritical, "db_type", "SQLite", "path", path)
	}

	store.DB = db
	if err := performAutoMigration(db, store.Settings.Debug, "SQLite", path, store.Logger); err != nil {
		_ = store.closeDB("SQLite")
		return err
	}

	store.Logger.Info("database opened",
		logger.String("db_type", "SQLite"),
		logger.String("path", path))
	store.updatePoolMetrics()
	return nil
}

// Close closes the SQLite database
func (store *SQLiteStore) Close() error {
	return store.closeDB("SQLite")
}
