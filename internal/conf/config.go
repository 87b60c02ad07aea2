// config.go: settings struct and functions to load and save the datanorm configuration.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// Settings contains all configuration options for datanorm.
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version    string `yaml:"-" mapstructure:"-"`
	ConfigFile string `yaml:"-" mapstructure:"-"` // config file the settings were read from

	Main struct {
		Name string               // instance name, logged at startup
		Log  logger.LoggingConfig // logging configuration
	}

	WebServer struct {
		Port  string // port for web server
		Debug bool   // true to enable echo debug mode and request logging
	}

	History struct {
		Limit int // number of recent records shown on the form page
	}

	Output struct {
		SQLite struct {
			Enabled bool   // true to store records in sqlite
			Path    string // path to sqlite database
		}

		MySQL struct {
			Enabled  bool   // true to store records in mysql
			Username string // username for mysql database
			Password string // password for mysql database
			Database string // database name, created if missing
			Host     string // host for mysql database
			Port     string // port for mysql database
		}
	}

	Metrics struct {
		Enabled bool // true to expose prometheus metrics on /metrics
	}

	Sentry struct {
		Enabled bool   // true to report errors to sentry
		DSN     string // sentry project DSN
		Debug   bool   // sentry SDK debug output
	}
}

// Load reads the configuration file, .env file and environment variables.
// configFile overrides the default search paths when set. When no file exists
// in the default locations the embedded default config is written to the
// first one.
func Load(configFile string) (*Settings, error) {
	v := viper.New()

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if err := initViper(v, configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := bindEnvVars(v); err != nil {
		return nil, errors.New(err).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Context("operation", "bind_env").
			Build()
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	settings.ConfigFile = v.ConfigFileUsed()

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

// loadDotEnv loads a .env file from the working directory when present.
// Variables already set in the environment win.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return errors.New(err).
			Component("configuration").
			Category(errors.CategoryFileParsing).
			Context("operation", "load_dotenv").
			Build()
	}
	return nil
}

// initViper sets defaults and reads the configuration file.
func initViper(v *viper.Viper, configFile string) error {
	setDefaultConfig(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig(v, configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config into dir and reads it back
func createDefaultConfig(v *viper.Viper, dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	defaultConfig, err := GetDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, defaultConfig, 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	v.SetConfigFile(configPath)
	return v.ReadInConfig()
}

// GetDefaultConfig returns the embedded default config.yaml
func GetDefaultConfig() ([]byte, error) {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return nil, fmt.Errorf("error reading embedded config: %w", err)
	}
	return data, nil
}

// SaveYAMLConfig writes settings to configPath as YAML.
// It overwrites the existing file without preserving comments.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Write to a temp file in the same directory so the rename is atomic
	tempFile, err := os.CreateTemp(dir, "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return errors.New(err).
			Component("configuration").
			Category(errors.CategoryFileIO).
			Context("operation", "save_config").
			Build()
	}

	return nil
}
