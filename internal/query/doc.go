// Package query runs SELECT statements whose targets are bundles and plain
// column expressions, and assembles each result row through the bundles'
// row processors.
//
// A Query flattens its targets depth-first into one column list, compiles it
// with querysql, executes it through a Queryer and converts every raw row
// into a Row holding one value per top-level target.
//
// Processor chains are built once per execution, bottom-up: each leaf
// expression gets an extractor bound to its result position, and each nested
// bundle's processor becomes a member processor of its parent.
package query
