// conf/defaults.go default values for settings
package conf

import "github.com/spf13/viper"

// Default values shared with the embedded config.yaml
const (
	DefaultPort         = "8080"
	DefaultHistoryLimit = 5
	MaxHistoryLimit     = 100
	DefaultSQLitePath   = "datanorm.db"
	DefaultMySQLPort    = "3306"
)

// setDefaultConfig sets default values for the configuration.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("main.name", "datanorm")
	v.SetDefault("main.log.default_level", "info")
	v.SetDefault("main.log.timezone", "Local")
	v.SetDefault("main.log.console.enabled", true)
	v.SetDefault("main.log.console.level", "info")
	v.SetDefault("main.log.file_output.enabled", false)
	v.SetDefault("main.log.file_output.path", "logs/datanorm.log")
	v.SetDefault("main.log.file_output.level", "debug")

	v.SetDefault("webserver.port", DefaultPort)
	v.SetDefault("webserver.debug", false)

	v.SetDefault("history.limit", DefaultHistoryLimit)

	v.SetDefault("output.sqlite.enabled", true)
	v.SetDefault("output.sqlite.path", DefaultSQLitePath)

	v.SetDefault("output.mysql.enabled", false)
	v.SetDefault("output.mysql.username", "root")
	v.SetDefault("output.mysql.password", "")
	v.SetDefault("output.mysql.database", "simple_norm")
	v.SetDefault("output.mysql.host", "localhost")
	v.SetDefault("output.mysql.port", DefaultMySQLPort)

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.debug", false)
}
