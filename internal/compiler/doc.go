// Package compiler compiles declarative CUE bundle definitions into
// bundle.Bundle values.
//
// A definitions document declares tables and the bundles built over them:
//
//	tables: data: columns: ["id", "d1", "d2", "d3"]
//
//	bundles: b1: {
//		table:   "data"
//		members: ["d1", {bundle: "b2", members: ["d2", "d3"]}]
//	}
//
// Member strings name a column of the bundle's table ("d1"), a column of
// another table ("other.d1") or an aliased column ("d1 as first"). Struct
// members define nested bundles, which inherit the parent's table unless
// they set their own. "single: true" marks a single-entity bundle and
// "assemble: \"map\"" selects map assembly instead of tuples.
//
// Uses the CUE Go API directly (cuelang.org/go), not the cue CLI.
package compiler
