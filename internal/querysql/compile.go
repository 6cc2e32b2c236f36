package querysql

import (
	"database/sql/driver"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/bundle/internal/expr"
)

// Dialect selects the bound-parameter placeholder style.
type Dialect int

const (
	// DialectQuestion emits ? placeholders (SQLite, MySQL).
	DialectQuestion Dialect = iota
	// DialectDollar emits $1, $2, ... placeholders (PostgreSQL).
	DialectDollar
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case DialectQuestion:
		return "question"
	case DialectDollar:
		return "dollar"
	default:
		return "unknown"
	}
}

// Select is a compiled-to-be SELECT statement.
//
// Semantics:
//
//	SELECT <columns> FROM <from> [WHERE <where>] [ORDER BY <order>] [LIMIT n] [OFFSET n]
//
// Columns are emitted exactly in the order given; result positions are
// assigned from that order. When From is empty the tables are taken from the
// columns, in order of first appearance.
type Select struct {
	Columns []expr.Expression
	From    []string
	Where   expr.Predicate // nil = no filter
	OrderBy []expr.Order
	Limit   int // 0 = no limit
	Offset  int // 0 = no offset
}

// SQLCompiler compiles Select statements to parameterized SQL.
//
// CRITICAL: values are always parameterized, never interpolated.
// CRITICAL: column order is never changed; callers align result positions to it.
type SQLCompiler struct {
	Dialect Dialect
}

// identPattern matches identifiers that are emitted without quoting.
var identPattern = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)

// ValidateIdentifier reports whether name can be written into SQL text as a
// table, column or alias name. kind names the identifier in the error.
func ValidateIdentifier(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name must not be empty", kind)
	}
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid %s name %q: must be letters, digits and underscores, not starting with a digit", kind, name)
	}
	return nil
}

// NewSQLCompiler creates a compiler using ? placeholders.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{Dialect: DialectQuestion}
}

// compilation accumulates parameters for one Compile call.
type compilation struct {
	dialect Dialect
	params  []any
}

// Compile converts a Select to SQL text and its parameters.
func (c *SQLCompiler) Compile(q Select) (string, []any, error) {
	if len(q.Columns) == 0 {
		return "", nil, fmt.Errorf("cannot compile select with no columns")
	}

	cc := &compilation{dialect: c.Dialect}

	cols := make([]string, 0, len(q.Columns))
	for i, col := range q.Columns {
		s, err := cc.columnClause(col)
		if err != nil {
			return "", nil, fmt.Errorf("compile column %d: %w", i, err)
		}
		cols = append(cols, s)
	}

	from := q.From
	for _, t := range from {
		if err := ValidateIdentifier("table", t); err != nil {
			return "", nil, fmt.Errorf("compile from: %w", err)
		}
	}
	if len(from) == 0 {
		from = tablesOf(q.Columns)
	}
	if len(from) == 0 {
		return "", nil, fmt.Errorf("cannot determine FROM clause: no column names a table")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(strings.Join(from, ", "))

	if q.Where != nil {
		where, err := cc.predicate(q.Where)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if len(q.OrderBy) > 0 {
		terms := make([]string, 0, len(q.OrderBy))
		for _, o := range q.OrderBy {
			s, err := cc.expression(o.Expr)
			if err != nil {
				return "", nil, fmt.Errorf("compile order by: %w", err)
			}
			if o.Desc {
				s += " DESC"
			} else {
				s += " ASC"
			}
			terms = append(terms, s)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(terms, ", "))
	}

	if q.Limit < 0 || q.Offset < 0 {
		return "", nil, fmt.Errorf("limit and offset must not be negative")
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT " + strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		sb.WriteString(" OFFSET " + strconv.Itoa(q.Offset))
	}

	return sb.String(), cc.params, nil
}

// columnClause renders a SELECT list entry; Labeled adds AS.
func (cc *compilation) columnClause(e expr.Expression) (string, error) {
	if l, ok := e.(expr.Labeled); ok {
		inner, err := cc.expression(l.Expr)
		if err != nil {
			return "", err
		}
		if err := ValidateIdentifier("alias", l.Name); err != nil {
			return "", err
		}
		return inner + " AS " + l.Name, nil
	}
	return cc.expression(e)
}

// expression renders an expression reference (no alias).
// A Labeled expression outside the SELECT list is referenced by its inner expression.
func (cc *compilation) expression(e expr.Expression) (string, error) {
	switch ex := e.(type) {
	case expr.Column:
		if err := ValidateIdentifier("column", ex.Name); err != nil {
			return "", err
		}
		if ex.Table == "" {
			return ex.Name, nil
		}
		if err := ValidateIdentifier("table", ex.Table); err != nil {
			return "", err
		}
		return ex.Table + "." + ex.Name, nil
	case expr.Labeled:
		if ex.Expr == nil {
			return "", fmt.Errorf("labeled expression %q wraps nil", ex.Name)
		}
		return cc.expression(ex.Expr)
	case nil:
		return "", fmt.Errorf("nil expression")
	default:
		return "", fmt.Errorf("unsupported expression type: %T", e)
	}
}

// predicate compiles a predicate to a WHERE fragment.
func (cc *compilation) predicate(p expr.Predicate) (string, error) {
	switch pred := p.(type) {
	case expr.Compare:
		return cc.compare(pred)
	case expr.Between:
		return cc.between(pred)
	case expr.IsNull:
		s, err := cc.expression(pred.Expr)
		if err != nil {
			return "", err
		}
		if pred.Not {
			return s + " IS NOT NULL", nil
		}
		return s + " IS NULL", nil
	case expr.And:
		return cc.junction("AND", pred.Predicates)
	case expr.Or:
		return cc.junction("OR", pred.Predicates)
	case nil:
		return "", fmt.Errorf("nil predicate")
	default:
		return "", fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (cc *compilation) compare(c expr.Compare) (string, error) {
	switch c.Op {
	case expr.OpEq, expr.OpNeq, expr.OpLt, expr.OpLte, expr.OpGt, expr.OpGte, expr.OpLike:
	default:
		return "", fmt.Errorf("unsupported operator %q", c.Op)
	}
	lhs, err := cc.expression(c.Expr)
	if err != nil {
		return "", err
	}
	ph, err := cc.bind(c.Value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", lhs, c.Op, ph), nil
}

func (cc *compilation) between(b expr.Between) (string, error) {
	lhs, err := cc.expression(b.Expr)
	if err != nil {
		return "", err
	}
	lo, err := cc.bind(b.Low)
	if err != nil {
		return "", err
	}
	hi, err := cc.bind(b.High)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s BETWEEN %s AND %s", lhs, lo, hi), nil
}

// junction joins sub-predicates; a single predicate is emitted bare, nested
// junctions are parenthesized.
func (cc *compilation) junction(op string, preds []expr.Predicate) (string, error) {
	if len(preds) == 0 {
		return "", fmt.Errorf("empty %s predicate", op)
	}
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		s, err := cc.predicate(p)
		if err != nil {
			return "", err
		}
		switch p.(type) {
		case expr.And, expr.Or:
			if len(preds) > 1 {
				s = "(" + s + ")"
			}
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " "+op+" "), nil
}

// bind records a parameter and returns its placeholder.
func (cc *compilation) bind(v any) (string, error) {
	param, err := valueToParam(v)
	if err != nil {
		return "", fmt.Errorf("convert value: %w", err)
	}
	cc.params = append(cc.params, param)
	if cc.dialect == DialectDollar {
		return "$" + strconv.Itoa(len(cc.params)), nil
	}
	return "?", nil
}

// tablesOf returns the distinct tables referenced by columns, in order of
// first appearance.
func tablesOf(cols []expr.Expression) []string {
	seen := make(map[string]bool)
	var tables []string
	var visit func(e expr.Expression)
	visit = func(e expr.Expression) {
		switch ex := e.(type) {
		case expr.Column:
			if ex.Table != "" && !seen[ex.Table] {
				seen[ex.Table] = true
				tables = append(tables, ex.Table)
			}
		case expr.Labeled:
			visit(ex.Expr)
		}
	}
	for _, c := range cols {
		visit(c)
	}
	return tables
}

// valueToParam converts a literal to a database/sql parameter.
// Supports strings, bytes, bools, integers, floats, time.Time, nil and
// driver.Valuer. Collections are rejected.
func valueToParam(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string, []byte, bool, int64, float64, time.Time:
		return val, nil
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return nil, fmt.Errorf("unsigned value %d overflows int64", val)
		}
		return int64(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("unsigned value %d overflows int64", val)
		}
		return int64(val), nil
	case float32:
		return float64(val), nil
	case driver.Valuer:
		return val, nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
