package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tphakala/datanorm/internal/app"
	"github.com/tphakala/datanorm/internal/conf"
)

// Command creates the config command group
func Command(appCtx *app.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(initCommand(appCtx))
	return cmd
}

// initCommand writes the effective settings, including environment
// overrides, to a YAML file.
func initCommand(appCtx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write the current settings as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := targetPath(args)
			if err != nil {
				return err
			}
			if err := conf.SaveYAMLConfig(path, appCtx.Settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}
}

// targetPath is the path argument or config.yaml in the first default location
func targetPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	paths, err := conf.GetDefaultConfigPaths()
	if err != nil {
		return "", err
	}
	return filepath.Join(paths[0], "config.yaml"), nil
}
