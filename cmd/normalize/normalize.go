package normalize

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tphakala/datanorm/internal/app"
	"github.com/tphakala/datanorm/internal/normalize"
)

// Output formats
const (
	formatTable = "table"
	formatJSON  = "json"
)

type options struct {
	method string
	save   bool
	format string
}

// result is the JSON output of the command
type result struct {
	normalize.Result
	Saved bool `json:"saved"`
}

// Command creates the normalize command. Numbers come from the arguments or,
// when there are none, from standard input.
func Command(appCtx *app.Context) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "normalize [numbers...]",
		Short: "Normalize a list of numbers",
		Long: `Normalize numbers separated by commas or whitespace.

  datanorm normalize --method minmax "10 20 30 40 50"
  echo "1, 2, 3" | datanorm normalize --method zscore --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("error reading standard input: %w", err)
				}
				input = string(data)
			}
			return run(cmd, appCtx, opts, input)
		},
	}

	cmd.Flags().StringVarP(&opts.method, "method", "m", "", "Normalization method: minmax or zscore")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Store the result in the database")
	cmd.Flags().StringVarP(&opts.format, "output", "o", formatTable, "Output format: table or json")

	return cmd
}

func run(cmd *cobra.Command, appCtx *app.Context, opts *options, input string) error {
	if opts.format != formatTable && opts.format != formatJSON {
		return fmt.Errorf("unknown output format %q", opts.format)
	}

	res, err := normalize.Process(input, opts.method)
	if err != nil {
		return err
	}

	saved := false
	if opts.save {
		if appCtx.Recorder == nil {
			if err := appCtx.OpenStore(); err != nil {
				return err
			}
		}
		saved = appCtx.Recorder.Save(cmd.Context(), res.Original, res.Normalized, res.Method)
		if !saved {
			fmt.Fprintln(cmd.ErrOrStderr(), "Data normalized but couldn't save to database.")
		}
	}

	out := cmd.OutOrStdout()
	if opts.format == formatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result{Result: res, Saved: saved})
	}
	return printTable(out, res)
}

func printTable(w io.Writer, res normalize.Result) error {
	fmt.Fprintf(w, "Method:      %s\n", res.Method.Description())
	fmt.Fprintf(w, "Data points: %d\n\n", len(res.Original))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tORIGINAL\tNORMALIZED")
	for i, v := range res.Original {
		fmt.Fprintf(tw, "%d\t%g\t%g\n", i+1, v, res.Normalized[i])
	}
	return tw.Flush()
}
