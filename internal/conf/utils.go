// conf/utils.go various util functions for configuration package
package conf

import (
	"net"
	"os"
	"path/filepath"
	"runtime"

	"github.com/tphakala/datanorm/internal/errors"
)

const osWindows = "windows"

// GetDefaultConfigPaths returns the configuration directories for the current OS.
// If one of them already holds a config.yaml only that directory is returned.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Component("configuration").
			Category(errors.CategorySystem).
			Context("operation", "get-home-directory").
			Build()
	}

	var configPaths []string
	switch runtime.GOOS {
	case osWindows:
		configPaths = []string{filepath.Join(homeDir, "AppData", "Roaming", "datanorm")}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", "datanorm"),
			"/etc/datanorm",
		}
	}

	for _, path := range configPaths {
		if _, err := os.Stat(filepath.Join(path, "config.yaml")); err == nil {
			return []string{path}, nil
		}
	}

	return configPaths, nil
}

// ListenAddress returns the host:port the web server binds to
func (s *Settings) ListenAddress() string {
	return net.JoinHostPort("", s.WebServer.Port)
}

// StorageBackend names the enabled output backend, or "" when none is enabled
func (s *Settings) StorageBackend() string {
	switch {
	case s.Output.SQLite.Enabled:
		return "sqlite"
	case s.Output.MySQL.Enabled:
		return "mysql"
	default:
		return ""
	}
}
