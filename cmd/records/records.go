// Package records contains the commands that read and manage stored normalizations.
package records

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/datanorm/internal/app"
	"github.com/tphakala/datanorm/internal/conf"
	"github.com/tphakala/datanorm/internal/datastore"
	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/export"
	"github.com/tphakala/datanorm/internal/normalize"
)

// ErrStoreUnavailable is returned when the database could not be opened
var ErrStoreUnavailable = errors.NewStd("database connection failed, check your configuration")

const timeLayout = "Jan 2, 2006 15:04"

// openRecorder opens the datastore once and fails when it is unavailable
func openRecorder(appCtx *app.Context) error {
	if appCtx.Recorder == nil {
		if err := appCtx.OpenStore(); err != nil {
			return err
		}
	}
	if !appCtx.Recorder.Available() {
		return ErrStoreUnavailable
	}
	return nil
}

// HistoryCommand prints recent records, newest first
func HistoryCommand(appCtx *app.Context) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
		exportPath string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent normalizations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 || limit > conf.MaxHistoryLimit {
				return fmt.Errorf("limit must be between 1 and %d", conf.MaxHistoryLimit)
			}
			if err := openRecorder(appCtx); err != nil {
				return err
			}

			recs := appCtx.Recorder.Recent(cmd.Context(), limit)
			out := cmd.OutOrStdout()

			switch {
			case exportPath != "":
				if err := export.SaveXLSX(exportPath, recs); err != nil {
					return err
				}
				fmt.Fprintf(out, "Exported %d records to %s\n", len(recs), exportPath)
				return nil
			case jsonOutput:
				return writeJSON(out, recs)
			default:
				return printHistory(out, recs)
			}
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of records to show (default: history.limit from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print records as JSON")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write records to an xlsx workbook instead of printing them")

	return cmd
}

// StatsCommand prints aggregate statistics
func StatsCommand(appCtx *app.Context) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics about stored normalizations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := openRecorder(appCtx); err != nil {
				return err
			}

			stats := appCtx.Recorder.Stats(cmd.Context())
			if stats == nil {
				return ErrStoreUnavailable
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			return printStats(cmd.OutOrStdout(), stats)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print statistics as JSON")

	return cmd
}

// DeleteCommand deletes one record by id
func DeleteCommand(appCtx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored normalization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := openRecorder(appCtx); err != nil {
				return err
			}
			if !appCtx.Recorder.Delete(cmd.Context(), args[0]) {
				return fmt.Errorf("record %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted record %s\n", args[0])
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printHistory(w io.Writer, recs []datastore.Record) error {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No normalizations stored yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE & TIME\tMETHOD\tDATA POINTS\tSAMPLE DATA")
	for i := range recs {
		r := &recs[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
			r.ID,
			r.CreatedAt.Local().Format(timeLayout),
			normalize.Method(r.Method).Label(),
			r.PointCount(),
			r.OriginalPreview())
	}
	return tw.Flush()
}

func printStats(w io.Writer, stats *datastore.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total records:\t%d\n", stats.TotalRecords)
	fmt.Fprintf(tw, "Min-Max:\t%d\n", stats.MinMaxCount)
	fmt.Fprintf(tw, "Z-Score:\t%d\n", stats.ZScoreCount)
	fmt.Fprintf(tw, "First record:\t%s\n", formatOptionalTime(stats.FirstRecord))
	fmt.Fprintf(tw, "Last record:\t%s\n", formatOptionalTime(stats.LastRecord))
	return tw.Flush()
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(timeLayout)
}
