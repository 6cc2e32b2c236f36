// Package expr provides the expression handles and predicates that bundles
// and queries are built from.
//
// Expression and Predicate are sealed interfaces using the marker method
// pattern. Only types in this package implement them, which lets the SQL
// compiler switch exhaustively over the node types:
//
//	switch e := e.(type) {
//	case Column:
//	    // table.name
//	case Labeled:
//	    // <expr> AS name
//	}
//
// Handles are plain immutable values. The same Column may appear in several
// bundles and several queries at once; nothing in this package holds state.
//
// Literal values in predicates are never interpolated into SQL text. The
// compiler turns every value into a bound parameter.
package expr
