package compiler

import (
	"fmt"
	"slices"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/bundle/internal/bundle"
	"github.com/roach88/bundle/internal/expr"
	"github.com/roach88/bundle/internal/querysql"
)

// Assembly modes accepted by the assemble field.
const (
	AssembleTuple = "tuple"
	AssembleMap   = "map"
)

// Definitions holds the tables and bundles of a compiled document.
type Definitions struct {
	Tables  map[string]expr.TableRef
	Bundles map[string]*bundle.Bundle

	names []string // bundle declaration order
}

// Names returns the top-level bundle names in declaration order.
func (d *Definitions) Names() []string {
	return slices.Clone(d.names)
}

// Bundle returns the named top-level bundle.
func (d *Definitions) Bundle(name string) (*bundle.Bundle, error) {
	b, ok := d.Bundles[name]
	if !ok {
		return nil, fmt.Errorf("bundle %q is not defined (defined: %s)", name, strings.Join(d.names, ", "))
	}
	return b, nil
}

// Select returns the named bundles in the given order.
func (d *Definitions) Select(names ...string) ([]*bundle.Bundle, error) {
	out := make([]*bundle.Bundle, 0, len(names))
	for _, n := range names {
		b, err := d.Bundle(n)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// CompileBundles parses a CUE value holding tables and bundles.
//
// The value is the document root, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(src)
//	defs, err := CompileBundles(v)
func CompileBundles(v cue.Value) (*Definitions, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tables, err := parseTables(v)
	if err != nil {
		return nil, err
	}

	defs := &Definitions{
		Tables:  tables,
		Bundles: make(map[string]*bundle.Bundle),
	}

	bundlesVal := v.LookupPath(cue.ParsePath("bundles"))
	if !bundlesVal.Exists() {
		return nil, &CompileError{
			Field:   "bundles",
			Message: "at least one bundle is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := bundlesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		b, err := compileBundle(defs.Tables, name, "", iter.Value(), "bundles."+name)
		if err != nil {
			return nil, err
		}
		defs.Bundles[name] = b
		defs.names = append(defs.names, name)
	}

	if len(defs.names) == 0 {
		return nil, &CompileError{
			Field:   "bundles",
			Message: "at least one bundle is required",
			Pos:     bundlesVal.Pos(),
		}
	}

	return defs, nil
}

// parseTables extracts table declarations.
func parseTables(v cue.Value) (map[string]expr.TableRef, error) {
	tables := make(map[string]expr.TableRef)

	tablesVal := v.LookupPath(cue.ParsePath("tables"))
	if !tablesVal.Exists() {
		return nil, &CompileError{
			Field:   "tables",
			Message: "at least one table is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		field := "tables." + name
		if err := querysql.ValidateIdentifier("table", name); err != nil {
			return nil, &CompileError{Field: field, Message: err.Error(), Pos: iter.Value().Pos()}
		}

		colsVal := iter.Value().LookupPath(cue.ParsePath("columns"))
		if !colsVal.Exists() {
			return nil, &CompileError{Field: field + ".columns", Message: "columns are required", Pos: iter.Value().Pos()}
		}
		cols, err := stringList(colsVal, field+".columns")
		if err != nil {
			return nil, err
		}
		if len(cols) == 0 {
			return nil, &CompileError{Field: field + ".columns", Message: "at least one column is required", Pos: colsVal.Pos()}
		}

		seen := make(map[string]bool, len(cols))
		for _, c := range cols {
			if err := querysql.ValidateIdentifier("column", c); err != nil {
				return nil, &CompileError{Field: field + ".columns", Message: err.Error(), Pos: colsVal.Pos()}
			}
			if seen[c] {
				return nil, &CompileError{Field: field + ".columns", Message: fmt.Sprintf("duplicate column %q", c), Pos: colsVal.Pos()}
			}
			seen[c] = true
		}

		tables[name] = expr.Table(name, cols...)
	}

	return tables, nil
}

// compileBundle builds one bundle. parentTable is inherited when the bundle
// does not declare its own table.
func compileBundle(tables map[string]expr.TableRef, name, parentTable string, v cue.Value, field string) (*bundle.Bundle, error) {
	table := parentTable
	if tv := v.LookupPath(cue.ParsePath("table")); tv.Exists() {
		s, err := tv.String()
		if err != nil {
			return nil, &CompileError{Field: field + ".table", Message: "table must be a string", Pos: tv.Pos()}
		}
		if _, ok := tables[s]; !ok {
			return nil, &CompileError{Field: field + ".table", Message: fmt.Sprintf("unknown table %q", s), Pos: tv.Pos()}
		}
		table = s
	}

	membersVal := v.LookupPath(cue.ParsePath("members"))
	if !membersVal.Exists() {
		return nil, &CompileError{Field: field + ".members", Message: "members are required", Pos: v.Pos()}
	}
	list, err := membersVal.List()
	if err != nil {
		return nil, &CompileError{Field: field + ".members", Message: "members must be a list", Pos: membersVal.Pos(), Err: err}
	}

	var members []bundle.Member
	for i := 0; list.Next(); i++ {
		mv := list.Value()
		mfield := fmt.Sprintf("%s.members[%d]", field, i)

		switch mv.Kind() {
		case cue.StringKind:
			s, _ := mv.String()
			e, err := parseMember(tables, table, s)
			if err != nil {
				return nil, &CompileError{Field: mfield, Message: err.Error(), Pos: mv.Pos()}
			}
			members = append(members, e)
		case cue.StructKind:
			nv := mv.LookupPath(cue.ParsePath("bundle"))
			if !nv.Exists() {
				return nil, &CompileError{Field: mfield, Message: "nested bundle needs a bundle name", Pos: mv.Pos()}
			}
			nested, err := nv.String()
			if err != nil {
				return nil, &CompileError{Field: mfield + ".bundle", Message: "bundle name must be a string", Pos: nv.Pos()}
			}
			b, err := compileBundle(tables, nested, table, mv, mfield)
			if err != nil {
				return nil, err
			}
			members = append(members, b)
		default:
			return nil, &CompileError{
				Field:   mfield,
				Message: fmt.Sprintf("member must be a string or a nested bundle, got %s", mv.Kind()),
				Pos:     mv.Pos(),
			}
		}
	}

	b, err := bundle.New(name, members...)
	if err != nil {
		return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos(), Err: err}
	}

	if sv := v.LookupPath(cue.ParsePath("single")); sv.Exists() {
		single, err := sv.Bool()
		if err != nil {
			return nil, &CompileError{Field: field + ".single", Message: "single must be a bool", Pos: sv.Pos()}
		}
		if single {
			b = b.SingleEntity()
		}
	}

	if av := v.LookupPath(cue.ParsePath("assemble")); av.Exists() {
		mode, err := av.String()
		if err != nil {
			return nil, &CompileError{Field: field + ".assemble", Message: "assemble must be a string", Pos: av.Pos()}
		}
		switch mode {
		case AssembleTuple:
		case AssembleMap:
			b = b.WithRowProcessor(bundle.Mappings)
		default:
			return nil, &CompileError{
				Field:   field + ".assemble",
				Message: fmt.Sprintf("unknown assemble mode %q: must be %q or %q", mode, AssembleTuple, AssembleMap),
				Pos:     av.Pos(),
			}
		}
	}

	return b, nil
}

// parseMember resolves "col", "table.col" and "<col> as alias".
func parseMember(tables map[string]expr.TableRef, table, s string) (expr.Expression, error) {
	alias := ""
	fields := strings.Fields(s)
	switch {
	case len(fields) == 1:
		s = fields[0]
	case len(fields) == 3 && strings.EqualFold(fields[1], "as"):
		s, alias = fields[0], fields[2]
		if err := querysql.ValidateIdentifier("alias", alias); err != nil {
			return nil, err
		}
	case len(fields) == 0:
		return nil, fmt.Errorf("empty column name")
	default:
		return nil, fmt.Errorf("malformed member %q: want \"col\", \"table.col\" or \"col as alias\"", s)
	}

	if tname, col, ok := strings.Cut(s, "."); ok {
		table = tname
		s = col
	}
	if s == "" {
		return nil, fmt.Errorf("empty column name")
	}
	if table == "" {
		return nil, fmt.Errorf("column %q has no table: set table on the bundle or qualify it", s)
	}

	t, ok := tables[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	if !t.Has(s) {
		return nil, fmt.Errorf("table %q has no column %q", table, s)
	}

	if alias != "" {
		return expr.As(t.C(s), alias), nil
	}
	return t.C(s), nil
}

// stringList decodes a list of strings.
func stringList(v cue.Value, field string) ([]string, error) {
	list, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of strings", Pos: v.Pos(), Err: err}
	}
	var out []string
	for list.Next() {
		s, err := list.Value().String()
		if err != nil {
			return nil, &CompileError{Field: field, Message: "must be a list of strings", Pos: list.Value().Pos(), Err: err}
		}
		out = append(out, s)
	}
	return out, nil
}
