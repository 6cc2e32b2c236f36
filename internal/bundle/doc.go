// Package bundle groups column expressions into named, addressable units of a
// query result.
//
// A Bundle owns an ordered list of members. A member is either a leaf
// expression (expr.Column, expr.Labeled) or another Bundle. The member order
// is fixed at construction and drives two things:
//
//   - the order of the columns the bundle contributes to a SELECT list
//     (see Flatten)
//   - the order of the values handed to row assembly
//     (see CreateRowProcessor)
//
// # Column proxies
//
// Every bundle exposes its members through a Columns proxy set keyed by the
// member label. Proxies are how a bundle's members are reused for further
// query construction:
//
//	b1 := bundle.MustNew("b1", data.C("d1"), bundle.MustNew("b2", data.C("d2"), data.C("d3")))
//	d2 := b1.C().MustLookup("b2.c.d2") // same handle as data.C("d2")
//	q := session.Query(b1).Filter(expr.InRange(d2, "d4d2", "d6d2"))
//
// Nested bundles are reached by chaining through their own proxy set. The
// proxy set is read-only once the bundle exists.
//
// # Row assembly
//
// The query layer builds one Processor per flattened leaf, bound to the leaf's
// result position. Nested bundles get their processor built first; that
// processor then stands in for the nested member when the parent's processor
// is created. How the member values are combined is decided by the bundle's
// RowProcessorFactory:
//
//   - Tuples (default): Tuple{v0, v1, ...} in member order
//   - Mappings: map[string]any keyed by member label
//   - any RowProcessorFactory set with WithRowProcessor
//
// A factory only decides assembly. Extraction, including recursion into nested
// bundles, stays with the query layer.
//
// Bundles are immutable and safe for concurrent use. Processors belong to a
// single query execution.
package bundle
