package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bundle/internal/query"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	SelectionOptions
	DatabaseOptions
}

// QueryResult is the JSON payload of the query command.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Count   int      `json:"count"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <definitions> <bundle>...",
		Short: "Run a query over bundles and print the rows",
		Long: `Run a SELECT over the named bundles and print one column per bundle.

Each bundle value is assembled by its row processor: a tuple by default, a
map when the definition sets assemble: "map", or the bare value for a
single-entity bundle with one member.

Example:
  bundle query defs.cue b1 --db ./bundle.db --where "b1.d1 BETWEEN d3d1 AND d5d1"
  bundle query defs.cue b1 nested --order b1.d1 --limit 3 --format json`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], args[1:], cmd)
		},
	}

	opts.SelectionOptions.bindFlags(cmd)
	opts.DatabaseOptions.bindFlags(cmd)

	return cmd
}

func runQuery(opts *QueryOptions, defsPath string, names []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	st, err := opts.open(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	sess := query.NewSession(st,
		query.WithLogger(logger),
		query.WithDialect(st.Dialect()),
	)

	sel, err := buildSelection(formatter, sess, defsPath, names, &opts.SelectionOptions)
	if err != nil {
		return err
	}

	rows, err := sel.query.All(cmd.Context())
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeQuery, "query failed", err)
	}

	headers := bundleNames(sel.bundles)
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any(r)
	}

	if formatter.Format == "json" {
		return formatter.Success(QueryResult{Columns: headers, Rows: out, Count: len(out)})
	}

	formatter.Table(headers, out)
	fmt.Fprintf(formatter.Writer, "%d row(s)\n", len(out))
	return nil
}
