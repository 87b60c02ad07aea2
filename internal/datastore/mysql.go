package datastore

import (
	"net"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tphakala/datanorm/internal/conf"
	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/logger"
	"github.com/tphakala/datanorm/internal/observability/metrics"
)

// MySQLStore implements DataStore for MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

func validateMySQLConfig(settings *conf.Settings) error {
	cfg := settings.Output.MySQL
	switch {
	case cfg.Host == "":
		return validationError("mysql host is empty", "output.mysql.host", "")
	case cfg.Username == "":
		return validationError("mysql username is empty", "output.mysql.username", "")
	case cfg.Database == "":
		return validationError("mysql database is empty", "output.mysql.database", "")
	}
	return nil
}

// mysqlConfig builds the driver config for the configured server. dbName may
// be empty to connect without selecting a database.
func mysqlConfig(settings *conf.Settings, dbName string) *mysqldriver.Config {
	port := settings.Output.MySQL.Port
	if port == "" {
		port = conf.DefaultMySQLPort
	}

	cfg := mysqldriver.NewConfig()
	cfg.User = settings.Output.MySQL.Username
	cfg.Passwd = settings.Output.MySQL.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(settings.Output.MySQL.Host, port)
	cfg.DBName = dbName
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg
}

// quoteIdentifier quotes a MySQL identifier with backticks
func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// ensureDatabase creates the configured database when it does not exist yet
func (store *MySQLStore) ensureDatabase() error {
	serverDSN := mysqlConfig(store.Settings, "").FormatDSN()
	dbName := store.Settings.Output.MySQL.Database

	db, err := gorm.Open(mysql.Open(serverDSN), &gorm.Config{Logger: store.gormLogger()})
	if err != nil {
		return dbError(err, "connect_server", errors.PriorityCritical,
			"db_type", "MySQL",
			"dsn", logger.RedactSensitiveData(serverDSN))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return dbError(err, "connect_server", errors.PriorityCritical, "db_type", "MySQL")
	}
	defer func() { _ = sqlDB.Close() }()

	stmt := "CREATE DATABASE IF NOT EXISTS " + quoteIdentifier(dbName) +
		" CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci"
	if err := db.Exec(stmt).Error; err != nil {
		return dbError(err, "create_database", errors.PriorityCritical,
			"db_type", "MySQL",
			"database", dbName)
	}
	return nil
}

// Open creates the database if needed, then connects and migrates the schema.
func (store *MySQLStore) Open() (err error) {
	start := time.Now()
	defer func() { store.observe(metrics.OpDbMigrate, start, err) }()

	if err := validateMySQLConfig(store.Settings); err != nil {
		return err
	}

	if err := store.ensureDatabase(); err != nil {
		store.Logger.Error("failed to prepare MySQL database",
			logger.String("host", store.Settings.Output.MySQL.Host),
			logger.String("port", store.Settings.Output.MySQL.Port),
			logger.String("database", store.Settings.Output.MySQL.Database),
			logger.Error(err))
		return err
	}

	dsn := mysqlConfig(store.Settings, store.Settings.Output.MySQL.Database).FormatDSN()
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: store.gormLogger()})
	if err != nil {
		store.Logger.Error("failed to open MySQL database",
			logger.String("host", store.Settings.Output.MySQL.Host),
			logger.String("database", store.Settings.Output.MySQL.Database),
			logger.Error(err))
		return dbError(err, "open", errors.PriorityCritical,
			"db_type", "MySQL",
			"dsn", logger.RedactSensitiveData(dsn))
	}

	store.DB = db
	if err := performAutoMigration(db, store.Settings.Debug, "MySQL", logger.RedactSensitiveData(dsn), store.Logger); err != nil {
		_ = store.closeDB("MySQL")
		return err
	}

	store.Logger.Info("database opened",
		logger.String("db_type", "MySQL"),
		logger.String("host", store.Settings.Output.MySQL.Host),
		logger.String("database", store.Settings.Output.MySQL.Database))
	store.updatePoolMetrics()
	return nil
}

// Close MySQL database connections
func (store *MySQLStore) Close() error {
	return store.closeDB("MySQL")
}
