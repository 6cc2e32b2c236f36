package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bundle/internal/bundle"
	"github.com/roach88/bundle/internal/compiler"
	"github.com/roach88/bundle/internal/query"
)

// SelectionOptions holds the flags shared by commands that build a query
// from bundle definitions.
type SelectionOptions struct {
	Where  []string
	Order  []string
	Limit  int
	Offset int
}

func (s *SelectionOptions) bindFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&s.Where, "where", "w", nil, "filter as 'path OP value' or 'path BETWEEN a AND b' (repeatable)")
	cmd.Flags().StringArrayVar(&s.Order, "order", nil, "sort by path, 'path desc' or '-path' (repeatable)")
	cmd.Flags().IntVar(&s.Limit, "limit", 0, "maximum number of rows (0 = no limit)")
	cmd.Flags().IntVar(&s.Offset, "offset", 0, "rows to skip")
}

// selection is a query built from definitions plus the bundles it targets.
type selection struct {
	defs    *compiler.Definitions
	bundles []*bundle.Bundle
	query   *query.Query
}

// buildSelection loads definitions, selects the named bundles and applies
// filters and ordering. Errors are reported through formatter and returned
// as ExitErrors.
func buildSelection(
	formatter *OutputFormatter,
	sess *query.Session,
	defsPath string,
	names []string,
	sel *SelectionOptions,
) (*selection, error) {
	defs, err := compiler.Load(defsPath)
	if err != nil {
		var compileErr *compiler.CompileError
		if errors.As(err, &compileErr) {
			return nil, formatter.Fail(ExitCommandError, ErrCodeDefinitions, "invalid bundle definitions", err)
		}
		return nil, formatter.Fail(ExitCommandError, ErrCodeNotFound, "cannot load bundle definitions", err)
	}
	formatter.VerboseLog("Loaded %d bundle(s) from %s", len(defs.Names()), defsPath)

	bundles, err := defs.Select(names...)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeUnknownBundle, "unknown bundle", err)
	}

	targets := make([]query.Target, len(bundles))
	for i, b := range bundles {
		formatter.VerboseLog("Selecting %s", b)
		targets[i] = b
	}
	q := sess.Query(targets...)

	resolve := query.BundleResolver(defs.Bundles)
	for _, w := range sel.Where {
		pred, err := query.ParseFilter(w, resolve)
		if err != nil {
			return nil, formatter.Fail(ExitCommandError, ErrCodeFilter, fmt.Sprintf("invalid filter %q", w), err)
		}
		q = q.Filter(pred)
	}
	for _, o := range sel.Order {
		order, err := query.ParseOrder(o, resolve)
		if err != nil {
			return nil, formatter.Fail(ExitCommandError, ErrCodeFilter, fmt.Sprintf("invalid order %q", o), err)
		}
		q = q.OrderBy(order)
	}
	if sel.Limit < 0 || sel.Offset < 0 {
		return nil, formatter.Fail(ExitCommandError, ErrCodeFilter, "limit and offset must not be negative", nil)
	}
	if sel.Limit > 0 {
		q = q.Limit(sel.Limit)
	}
	if sel.Offset > 0 {
		q = q.Offset(sel.Offset)
	}

	return &selection{defs: defs, bundles: bundles, query: q}, nil
}

// bundleNames returns the names of bs in order.
func bundleNames(bs []*bundle.Bundle) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Name()
	}
	return out
}
