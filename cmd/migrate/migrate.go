// Package migrate contains the command that copies stored normalizations
// from a SQLite database into the configured MySQL database.
package migrate

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/datanorm/internal/app"
	"github.com/tphakala/datanorm/internal/conf"
	"github.com/tphakala/datanorm/internal/datastore"
	"github.com/tphakala/datanorm/internal/errors"
)

// verifySamples is the number of newest records compared after the copy
const verifySamples = 10

type options struct {
	sqlitePath string
	batchSize  int
	clean      bool
	skipVerify bool
}

// Command creates the migrate command
func Command(appCtx *app.Context) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy records from SQLite to MySQL",
		Long: `Copy every stored normalization from a SQLite database into the MySQL
database configured under output.mysql. Record ids and timestamps are kept and
records that already exist in MySQL are skipped, so the command can be rerun.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, appCtx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.sqlitePath, "sqlite", "", "Source SQLite database (default: output.sqlite.path from config)")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", datastore.DefaultCopyBatchSize, "Records per insert batch")
	cmd.Flags().BoolVar(&opts.clean, "clean", false, "Delete all MySQL records before copying")
	cmd.Flags().BoolVar(&opts.skipVerify, "skip-verify", false, "Skip comparing source and target after the copy")

	return cmd
}

// storeSettings returns a copy of settings with only the named backend enabled
func storeSettings(settings *conf.Settings, backend string) *conf.Settings {
	s := *settings
	s.Output.SQLite.Enabled = backend == "sqlite"
	s.Output.MySQL.Enabled = backend == "mysql"
	return &s
}

func validate(settings *conf.Settings, opts *options) error {
	switch {
	case opts.batchSize <= 0:
		return fmt.Errorf("batch size must be positive, got %d", opts.batchSize)
	case opts.sqlitePath == "":
		return fmt.Errorf("no SQLite database given, set --sqlite or output.sqlite.path")
	case settings.Output.MySQL.Host == "" || settings.Output.MySQL.Database == "":
		return fmt.Errorf("MySQL target is not configured, set output.mysql.host and output.mysql.database")
	}
	if _, err := os.Stat(opts.sqlitePath); err != nil {
		return errors.New(err).
			Component("migrate").
			Category(errors.CategoryFileIO).
			Context("path", opts.sqlitePath).
			Build()
	}
	return nil
}

func run(cmd *cobra.Command, appCtx *app.Context, opts *options) error {
	settings := appCtx.Settings
	if opts.sqlitePath == "" {
		opts.sqlitePath = settings.Output.SQLite.Path
	}
	if err := validate(settings, opts); err != nil {
		return err
	}

	srcSettings := storeSettings(settings, "sqlite")
	srcSettings.Output.SQLite.Path = opts.sqlitePath
	source := datastore.New(srcSettings, appCtx.Logger("datastore"), nil)
	if err := source.Open(); err != nil {
		return err
	}
	defer source.Close()

	target := datastore.New(storeSettings(settings, "mysql"), appCtx.Logger("datastore"), nil)
	if err := target.Open(); err != nil {
		return err
	}
	defer target.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Copying records from %s to MySQL %s/%s\n",
		opts.sqlitePath, settings.Output.MySQL.Host, settings.Output.MySQL.Database)

	stats, err := datastore.Copy(cmd.Context(), source, target, datastore.CopyOptions{
		BatchSize: opts.batchSize,
		Clean:     opts.clean,
		Progress: func(done, total int64) {
			fmt.Fprintf(out, "  %d/%d (%.1f%%)\n", done, total, float64(done)/float64(total)*100)
		},
	}, appCtx.Logger("migrate"))
	if err != nil {
		return err
	}
	if err := printStats(out, stats); err != nil {
		return err
	}

	if stats.Failed > 0 {
		return fmt.Errorf("%d records could not be copied", stats.Failed)
	}
	if opts.skipVerify {
		return nil
	}
	if err := datastore.VerifyCopy(cmd.Context(), source, target, verifySamples); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	fmt.Fprintln(out, "Verification passed")
	return nil
}

func printStats(w io.Writer, stats datastore.CopyStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Source records:\t%d\n", stats.Source)
	fmt.Fprintf(tw, "Copied:\t%d\n", stats.Copied)
	fmt.Fprintf(tw, "Skipped:\t%d\n", stats.Skipped)
	fmt.Fprintf(tw, "Failed:\t%d\n", stats.Failed)
	fmt.Fprintf(tw, "Duration:\t%s\n", stats.Duration.Round(time.Millisecond))
	return tw.Flush()
}
