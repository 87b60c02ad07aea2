package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/logger"
)

// performAutoMigration creates or updates the data_norm table and its indexes.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string, log logger.Logger) error {
	migrationStart := time.Now()
	migrationLogger := log.With(logger.String("db_type", dbType))

	migrationLogger.Debug("Starting database migration")

	existed := db.Migrator().HasTable(&Record{})

	if err := db.AutoMigrate(&Record{}); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Priority(errors.PriorityCritical).
			Context("operation", "auto_migrate").
			Context("db_type", dbType).
			Context("table", Record{}.TableName()).
			Build()
	}

	fields := []logger.Field{
		logger.String("table", Record{}.TableName()),
		logger.Bool("created", !existed),
		logger.Duration("total_duration", time.Since(migrationStart)),
	}
	if debug {
		fields = append(fields, logger.String("connection", connectionInfo))
	}
	migrationLogger.Debug("Database migration completed successfully", fields...)

	return nil
}
