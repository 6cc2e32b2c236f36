package query

import "errors"

var (
	// ErrNoRows is returned by First when the query matched nothing.
	ErrNoRows = errors.New("query returned no rows")

	// ErrInvalidTarget is returned when a query target is neither a bundle
	// nor a column expression.
	ErrInvalidTarget = errors.New("invalid query target")
)
