package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bundle/internal/query"
	"github.com/roach88/bundle/internal/store"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	SelectionOptions
	Driver string // selects the placeholder dialect
}

// SQLResult is the JSON payload of the sql command.
type SQLResult struct {
	SQL     string   `json:"sql"`
	Params  []any    `json:"params"`
	Columns []string `json:"columns"`
	Bundles []string `json:"bundles"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql <definitions> <bundle>...",
		Short: "Print the SELECT statement for bundles",
		Long: `Compile the named bundles into a SELECT statement without running it.

The column list is the depth-first flattening of each bundle, in the order
the bundles are named.

Example:
  bundle sql defs.cue b1 --where "b1.c.d1 BETWEEN d3d1 AND d5d1"
  bundle sql ./defs nested --driver postgres --format json`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, args[0], args[1:], cmd)
		},
	}

	opts.bindFlags(cmd)
	cmd.Flags().StringVar(&opts.Driver, "driver", "", "driver whose placeholder style to use (default: configured driver)")

	return cmd
}

func runSQL(opts *SQLOptions, defsPath string, names []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	driver := opts.Driver
	if driver == "" && opts.Config != nil {
		driver = opts.Config.Database.Driver
	}
	if driver != "" && !store.IsSupported(driver) {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("unsupported driver %q", driver), nil)
	}

	sess := query.NewSession(nil,
		query.WithLogger(opts.logger()),
		query.WithDialect(store.DialectFor(driver)),
	)

	sel, err := buildSelection(formatter, sess, defsPath, names, &opts.SelectionOptions)
	if err != nil {
		return err
	}

	stmt, err := sel.query.Statement()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeQuery, "cannot build statement", err)
	}
	sqlStr, params, err := sel.query.SQL()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeQuery, "cannot compile statement", err)
	}

	columns := make([]string, len(stmt.Columns))
	for i, c := range stmt.Columns {
		columns[i] = c.Label()
	}
	if params == nil {
		params = []any{}
	}

	if formatter.Format == "json" {
		return formatter.Success(SQLResult{
			SQL:     sqlStr,
			Params:  params,
			Columns: columns,
			Bundles: bundleNames(sel.bundles),
		})
	}

	fmt.Fprintln(formatter.Writer, sqlStr)
	fmt.Fprintf(formatter.Writer, "-- params: %v\n", params)
	return nil
}
