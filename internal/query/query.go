package query

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/bundle/internal/bundle"
	"github.com/roach88/bundle/internal/expr"
	"github.com/roach88/bundle/internal/querysql"
)

// Target is something a query can select: a *bundle.Bundle or an
// expr.Expression.
type Target interface {
	Label() string
}

// Row holds one value per top-level target, in target order.
type Row []any

// Query is a SELECT over bundles and expressions.
//
// Builder methods return a modified copy; a Query is never mutated after
// construction and can be executed any number of times.
type Query struct {
	session *Session
	targets []Target
	filters []expr.Predicate
	orders  []expr.Order
	limit   int
	offset  int
}

func (q *Query) clone() *Query {
	c := *q
	c.targets = slices.Clone(q.targets)
	c.filters = slices.Clone(q.filters)
	c.orders = slices.Clone(q.orders)
	return &c
}

// Filter adds predicates. All filters are combined with AND.
func (q *Query) Filter(preds ...expr.Predicate) *Query {
	c := q.clone()
	c.filters = append(c.filters, preds...)
	return c
}

// OrderBy appends sort terms.
func (q *Query) OrderBy(orders ...expr.Order) *Query {
	c := q.clone()
	c.orders = append(c.orders, orders...)
	return c
}

// Limit caps the number of rows. 0 means no limit.
func (q *Query) Limit(n int) *Query {
	c := q.clone()
	c.limit = n
	return c
}

// Offset skips the first n rows.
func (q *Query) Offset(n int) *Query {
	c := q.clone()
	c.offset = n
	return c
}

// Targets returns the query targets.
func (q *Query) Targets() []Target {
	return slices.Clone(q.targets)
}

// Statement builds the SELECT. Its column list is the concatenation of each
// target's depth-first flattening, so result position i belongs to the i-th
// leaf.
func (q *Query) Statement() (querysql.Select, error) {
	if len(q.targets) == 0 {
		return querysql.Select{}, fmt.Errorf("%w: no targets", ErrInvalidTarget)
	}

	var cols []expr.Expression
	for i, t := range q.targets {
		switch v := t.(type) {
		case *bundle.Bundle:
			if v == nil {
				return querysql.Select{}, fmt.Errorf("%w: target %d is a nil bundle", ErrInvalidTarget, i)
			}
			for leaf := range v.Flatten() {
				cols = append(cols, leaf)
			}
		case expr.Expression:
			cols = append(cols, v)
		case nil:
			return querysql.Select{}, fmt.Errorf("%w: target %d is nil", ErrInvalidTarget, i)
		default:
			return querysql.Select{}, fmt.Errorf("%w: target %d has type %T", ErrInvalidTarget, i, t)
		}
	}

	stmt := querysql.Select{
		Columns: cols,
		OrderBy: slices.Clone(q.orders),
		Limit:   q.limit,
		Offset:  q.offset,
	}
	switch len(q.filters) {
	case 0:
	case 1:
		stmt.Where = q.filters[0]
	default:
		stmt.Where = expr.And{Predicates: slices.Clone(q.filters)}
	}
	return stmt, nil
}

// SQL returns the compiled statement text and its parameters.
func (q *Query) SQL() (string, []any, error) {
	stmt, err := q.Statement()
	if err != nil {
		return "", nil, err
	}
	return q.session.compiler.Compile(stmt)
}

// All executes the query and returns every row.
func (q *Query) All(ctx context.Context) ([]Row, error) {
	var out []Row
	err := q.Each(ctx, func(r Row) error {
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// errStop ends iteration early from First.
var errStop = errors.New("stop")

// First executes the query and returns the first row, or ErrNoRows.
func (q *Query) First(ctx context.Context) (Row, error) {
	var first Row
	err := q.Each(ctx, func(r Row) error {
		first = r
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, err
	}
	if first == nil {
		return nil, ErrNoRows
	}
	return first, nil
}

// Each executes the query and calls fn for every row, in result order.
// An error from fn stops iteration and is returned unchanged.
func (q *Query) Each(ctx context.Context, fn func(Row) error) error {
	stmt, err := q.Statement()
	if err != nil {
		return err
	}

	sqlStr, params, err := q.session.compiler.Compile(stmt)
	if err != nil {
		return fmt.Errorf("compile query: %w", err)
	}

	id := q.session.ids.Generate()
	labels := make([]string, len(stmt.Columns))
	for i, c := range stmt.Columns {
		labels[i] = c.Label()
	}

	q.session.logger.Debug("query compiled",
		"query_id", id,
		"sql", sqlStr,
		"params", len(params),
		"targets", targetLabels(q.targets),
	)

	info := &bundle.QueryInfo{ID: id, SQL: sqlStr, Columns: labels}
	procs, err := buildProcessors(info, q.targets)
	if err != nil {
		return fmt.Errorf("build row processors: %w", err)
	}

	rows, err := q.session.db.QueryContext(ctx, sqlStr, params...)
	if err != nil {
		return fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	resultCols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("get columns: %w", err)
	}
	if len(resultCols) != len(labels) {
		return fmt.Errorf("result has %d columns, query selected %d", len(resultCols), len(labels))
	}

	res := &bundle.Result{QueryID: id, Columns: resultCols}
	n := 0
	for rows.Next() {
		raw, err := scanRaw(rows, len(resultCols))
		if err != nil {
			return fmt.Errorf("row %d: %w", n, err)
		}

		res.Index = n
		row := make(Row, len(procs))
		for i, p := range procs {
			v, err := p(raw, res)
			if err != nil {
				return fmt.Errorf("process %s at row %d: %w", q.targets[i].Label(), n, err)
			}
			row[i] = v
		}

		if err := fn(row); err != nil {
			return err
		}
		n++
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration: %w", err)
	}

	q.session.logger.Debug("query executed",
		"query_id", id,
		"rows", n,
	)
	return nil
}

// scanRaw scans the current row into a fresh RawRow.
func scanRaw(rows interface{ Scan(...any) error }, n int) (bundle.RawRow, error) {
	values := make([]any, n)
	ptrs := make([]any, n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}
	return values, nil
}

func targetLabels(targets []Target) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		if t != nil {
			out[i] = t.Label()
		}
	}
	return out
}
