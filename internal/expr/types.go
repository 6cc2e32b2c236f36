package expr

// Expression is a retrievable value in a query result.
//
// This is a sealed interface - only types in this package implement it.
//
// Expression types:
//   - Column: a table column, labelled by its column name
//   - Labeled: any expression renamed with AS
//
// Label is the name the expression is known by when it is a bundle member
// and the column label it produces in a result set.
type Expression interface {
	Label() string
	exprNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Compare: expr <op> value
//   - Between: expr BETWEEN low AND high
//   - IsNull: expr IS [NOT] NULL
//   - And / Or: conjunction and disjunction of predicates
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Column references a column of a table.
//
// Semantics:
//
//	<table>.<name>
//
// An empty Table produces an unqualified column reference.
type Column struct {
	Table string
	Name  string
}

func (c Column) Label() string { return c.Name }
func (Column) exprNode()       {}

// Labeled renames an expression.
//
// Semantics:
//
//	<expr> AS <name>
type Labeled struct {
	Expr Expression
	Name string
}

func (l Labeled) Label() string { return l.Name }
func (Labeled) exprNode()       {}

// As returns e labelled as name.
func As(e Expression, name string) Labeled {
	return Labeled{Expr: e, Name: name}
}

// TableRef is a named table handle.
// It hands out Column values the way a mapped class exposes attributes.
type TableRef struct {
	name    string
	columns []string
}

// Table creates a handle for the named table with the given column names.
func Table(name string, columns ...string) TableRef {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return TableRef{name: name, columns: cols}
}

// Name returns the table name.
func (t TableRef) Name() string { return t.name }

// Columns returns the declared column names in declaration order.
func (t TableRef) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// Has reports whether the table declares the named column.
func (t TableRef) Has(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// C returns the column handle for name.
// Undeclared names are still returned; the database rejects them at execution.
func (t TableRef) C(name string) Column {
	return Column{Table: t.name, Name: name}
}

// Op is a comparison operator.
type Op string

const (
	OpEq   Op = "="
	OpNeq  Op = "!="
	OpLt   Op = "<"
	OpLte  Op = "<="
	OpGt   Op = ">"
	OpGte  Op = ">="
	OpLike Op = "LIKE"
)

// Compare represents an expression compared to a literal value.
//
// Semantics:
//
//	<expr> <op> ?
type Compare struct {
	Expr  Expression
	Op    Op
	Value any
}

func (Compare) predicateNode() {}

// Between represents an inclusive range check.
//
// Semantics:
//
//	<expr> BETWEEN ? AND ?
type Between struct {
	Expr Expression
	Low  any
	High any
}

func (Between) predicateNode() {}

// IsNull represents a NULL check.
type IsNull struct {
	Expr Expression
	Not  bool
}

func (IsNull) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or represents a disjunction of predicates (any must be true).
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Order is a single ORDER BY term.
type Order struct {
	Expr Expression
	Desc bool
}
