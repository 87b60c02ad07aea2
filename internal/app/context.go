// Package app wires configuration, logging, telemetry and storage together
// for the command line entry points.
package app

import (
	"github.com/tphakala/datanorm/internal/buildinfo"
	"github.com/tphakala/datanorm/internal/conf"
	"github.com/tphakala/datanorm/internal/datastore"
	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/logger"
	"github.com/tphakala/datanorm/internal/observability"
	"github.com/tphakala/datanorm/internal/recorder"
	"github.com/tphakala/datanorm/internal/telemetry"
)

// Context holds the application state shared by all commands.
// Setup fills Settings and the logger; OpenStore adds metrics and storage.
type Context struct {
	Build    *buildinfo.Context
	Settings *conf.Settings
	Metrics  *observability.Metrics
	Store    datastore.Interface // nil when the database could not be opened
	Recorder *recorder.Recorder

	central *logger.CentralLogger
	log     logger.Logger
}

// New creates an empty context for the given build
func New(build *buildinfo.Context) *Context {
	return &Context{
		Build: build,
		log:   logger.NewSlogLogger(nil, logger.LogLevelInfo, nil),
	}
}

// Setup loads the configuration, starts the central logger and initializes
// Sentry when it is enabled.
func (c *Context) Setup(configFile string, debug bool) error {
	settings, err := conf.Load(configFile)
	if err != nil {
		return err
	}
	return c.SetupWithSettings(settings, debug)
}

// SetupWithSettings is Setup for settings that are already loaded
func (c *Context) SetupWithSettings(settings *conf.Settings, debug bool) error {
	settings.Version = c.Build.Version()
	if debug {
		settings.Debug = true
		settings.Main.Log.DefaultLevel = "debug"
		if settings.Main.Log.Console != nil {
			settings.Main.Log.Console.Level = "debug"
		}
	}
	c.Settings = settings

	central, err := logger.NewCentralLogger(&settings.Main.Log)
	if err != nil {
		return errors.New(err).
			Component("app").
			Category(errors.CategoryConfiguration).
			Context("operation", "init_logger").
			Build()
	}
	c.central = central
	c.log = central.Module("main")

	if err := telemetry.InitSentry(settings, central.Module("telemetry")); err != nil {
		// telemetry is optional, keep running without it
		c.log.Warn("Sentry initialization failed", logger.Error(err))
	}

	c.log.Debug("configuration loaded",
		logger.String("name", settings.Main.Name),
		logger.String("config_file", settings.ConfigFile),
		logger.String("version", settings.Version),
		logger.String("storage", settings.StorageBackend()))
	return nil
}

// Logger returns a logger scoped to module
func (c *Context) Logger(module string) logger.Logger {
	if c.central == nil {
		return c.log.Module(module)
	}
	return c.central.Module(module)
}

// OpenStore creates the metrics registry, opens the configured datastore and
// builds the recorder. A database that cannot be opened is logged and leaves
// Store nil; the recorder then fails softly.
func (c *Context) OpenStore() error {
	m, err := observability.NewMetrics()
	if err != nil {
		return errors.New(err).
			Component("app").
			Category(errors.CategorySystem).
			Context("operation", "init_metrics").
			Build()
	}
	c.Metrics = m

	store := datastore.New(c.Settings, c.Logger("datastore"), m.Datastore)
	switch {
	case store == nil:
		c.log.Warn("no storage backend enabled, results will not be saved")
	default:
		if err := store.Open(); err != nil {
			c.log.Error("failed to open datastore",
				logger.String("backend", c.Settings.StorageBackend()),
				logger.Error(err))
		} else {
			c.Store = store
		}
	}

	c.Recorder = recorder.New(c.Store,
		recorder.WithLogger(c.Logger("recorder")),
		recorder.WithMetrics(m.Normalize),
		recorder.WithHistoryLimit(c.Settings.History.Limit))
	return nil
}

// Close releases the datastore, flushes telemetry and closes log files.
func (c *Context) Close() error {
	var errs []error
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			errs = append(errs, err)
		}
		c.Store = nil
	}

	telemetry.Flush(telemetry.FlushTimeout)

	if c.central != nil {
		if err := c.central.Close(); err != nil {
			errs = append(errs, err)
		}
		c.central = nil
	}
	return errors.Join(errs...)
}
