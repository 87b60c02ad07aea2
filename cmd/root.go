package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/datanorm/cmd/config"
	"github.com/tphakala/datanorm/cmd/migrate"
	"github.com/tphakala/datanorm/cmd/normalize"
	"github.com/tphakala/datanorm/cmd/records"
	"github.com/tphakala/datanorm/cmd/serve"
	"github.com/tphakala/datanorm/internal/app"
)

// RootCommand creates and returns the root command
func RootCommand(appCtx *app.Context) *cobra.Command {
	var (
		configFile string
		debug      bool
	)

	rootCmd := &cobra.Command{
		Use:           "datanorm",
		Short:         "Normalize number sequences and keep a history of the results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: search standard locations)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug output")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), appCtx.Build.String())
		},
	}

	rootCmd.AddCommand(
		serve.Command(appCtx),
		normalize.Command(appCtx),
		records.HistoryCommand(appCtx),
		records.StatsCommand(appCtx),
		records.DeleteCommand(appCtx),
		migrate.Command(appCtx),
		config.Command(appCtx),
		versionCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		// Skip setup for the version command
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return appCtx.Setup(configFile, debug)
	}

	return rootCmd
}
