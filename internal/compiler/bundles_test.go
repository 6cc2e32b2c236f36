package compiler

import (
	"errors"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bundle/internal/bundle"
	"github.com/roach88/bundle/internal/expr"
)

var data = expr.Table("data", "id", "d1", "d2", "d3")

func TestCompileBundlesBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		tables: data: columns: ["id", "d1", "d2", "d3"]
		bundles: b1: {
			table: "data"
			members: ["d1", "d2"]
		}
	`)
	require.NoError(t, v.Err())

	defs, err := CompileBundles(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"b1"}, defs.Names())
	require.Contains(t, defs.Tables, "data")
	assert.Equal(t, []string{"id", "d1", "d2", "d3"}, defs.Tables["data"].Columns())

	b1, err := defs.Bundle("b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", b1.Name())
	assert.Equal(t, []expr.Expression{data.C("d1"), data.C("d2")}, b1.Leaves())
}

func TestCompileBundlesEquivalentToCode(t *testing.T) {
	defs, err := LoadFile(filepath.Join("testdata", "sample.cue"))
	require.NoError(t, err)

	want := bundle.MustNew("nested", data.C("d1"), bundle.MustNew("b2", data.C("d2"), data.C("d3")))
	got, err := defs.Bundle("nested")
	require.NoError(t, err)

	assert.Equal(t, want.String(), got.String())
	assert.Equal(t, want.Leaves(), got.Leaves())
	assert.Equal(t, data.C("d2"), got.C().MustLookup("c.b2.c.d2"))
}

func TestCompileBundlesDeclarationOrder(t *testing.T) {
	defs, err := LoadFile(filepath.Join("testdata", "sample.cue"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "nested", "byname", "first"}, defs.Names())

	selected, err := defs.Select("first", "b1")
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "first", selected[0].Name())
	assert.Equal(t, "b1", selected[1].Name())

	_, err = defs.Select("b1", "nope")
	assert.Error(t, err)
}

func TestCompileBundlesOptions(t *testing.T) {
	defs, err := LoadFile(filepath.Join("testdata", "sample.cue"))
	require.NoError(t, err)

	first, err := defs.Bundle("first")
	require.NoError(t, err)
	assert.True(t, first.IsSingleEntity())

	byname, err := defs.Bundle("byname")
	require.NoError(t, err)
	assert.Equal(t, []expr.Expression{data.C("d1"), expr.As(data.C("d2"), "second")}, byname.Leaves())
	assert.Equal(t, []string{"d1", "second"}, byname.C().Keys())

	proc, err := byname.CreateRowProcessor(&bundle.QueryInfo{},
		[]bundle.Processor{
			func(row bundle.RawRow, _ *bundle.Result) (any, error) { return row[0], nil },
			func(row bundle.RawRow, _ *bundle.Result) (any, error) { return row[1], nil },
		},
		[]string{"d1", "second"})
	require.NoError(t, err)

	v, err := proc(bundle.RawRow{"x", "y"}, &bundle.Result{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"d1": "x", "second": "y"}, v)
}

func TestCompileBundlesAliasKeyword(t *testing.T) {
	defs, err := LoadString(`
		tables: data: columns: ["d1", "d2"]
		bundles: b1: {
			table: "data"
			members: ["d1  AS  first", "data.d2 As second"]
		}
	`)
	require.NoError(t, err)

	b, err := defs.Bundle("b1")
	require.NoError(t, err)
	assert.Equal(t, []expr.Expression{
		expr.As(data.C("d1"), "first"),
		expr.As(data.C("d2"), "second"),
	}, b.Leaves())
}

func TestCompileBundlesQualifiedMembers(t *testing.T) {
	defs, err := LoadString(`
		tables: {
			data: columns: ["id", "d1"]
			other: columns: ["id", "x"]
		}
		bundles: mixed: {
			table: "data"
			members: ["d1", "other.x", {bundle: "inner", table: "other", members: ["id"]}]
		}
	`)
	require.NoError(t, err)

	b, err := defs.Bundle("mixed")
	require.NoError(t, err)
	assert.Equal(t, []expr.Expression{
		expr.Column{Table: "data", Name: "d1"},
		expr.Column{Table: "other", Name: "x"},
		expr.Column{Table: "other", Name: "id"},
	}, b.Leaves())
}

func TestCompileBundlesErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{
			name:  "missing tables",
			src:   `bundles: b1: members: ["d1"]`,
			field: "tables",
		},
		{
			name:  "missing bundles",
			src:   `tables: data: columns: ["d1"]`,
			field: "bundles",
		},
		{
			name:  "empty columns",
			src:   `tables: data: columns: []` + "\n" + `bundles: b1: {table: "data", members: ["d1"]}`,
			field: "tables.data.columns",
		},
		{
			name:  "duplicate column",
			src:   `tables: data: columns: ["d1", "d1"]` + "\n" + `bundles: b1: {table: "data", members: ["d1"]}`,
			field: "tables.data.columns",
		},
		{
			name:  "unknown table",
			src:   `tables: data: columns: ["d1"]` + "\n" + `bundles: b1: {table: "nope", members: ["d1"]}`,
			field: "bundles.b1.table",
		},
		{
			name:  "unknown column",
			src:   `tables: data: columns: ["d1"]` + "\n" + `bundles: b1: {table: "data", members: ["d9"]}`,
			field: "bundles.b1.members[0]",
		},
		{
			name:  "unqualified without table",
			src:   `tables: data: columns: ["d1"]` + "\n" + `bundles: b1: members: ["d1"]`,
			field: "bundles.b1.members[0]",
		},
		{
			name:  "missing members",
			src:   `tables: data: columns: ["d1"]` + "\n" + `bundles: b1: table: "data"`,
			field: "bundles.b1.members",
		},
		{
			name:  "member of wrong kind",
			src:   `tables: data: columns: ["d1"]` + "\n" + `bundles: b1: {table: "data", members: [1]}`,
			field: "bundles.b1.members[0]",
		},
		{
			name:  "nested without name",
			src:   `tables: data: columns: ["d1"]` + "\n" + `bundles: b1: {table: "data", members: [{members: ["d1"]}]}`,
			field: "bundles.b1.members[0]",
		},
		{
			name:  "bad assemble",
			src:   `tables: data: columns: ["d1"]` + "\n" + `bundles: b1: {table: "data", assemble: "list", members: ["d1"]}`,
			field: "bundles.b1.assemble",
		},
		{
			name:  "injected alias",
			src:   `tables: data: columns: ["d1"]` + "\n" + `bundles: b1: {table: "data", members: ["d1 as x FROM data; DROP TABLE data; --"]}`,
			field: "bundles.b1.members[0]",
		},
		{
			name:  "alias with punctuation",
			src:   `tables: data: columns: ["d1"]` + "\n" + `bundles: b1: {table: "data", members: ["d1 as x-y"]}`,
			field: "bundles.b1.members[0]",
		},
		{
			name:  "malformed member",
			src:   `tables: data: columns: ["d1"]` + "\n" + `bundles: b1: {table: "data", members: ["d1 x"]}`,
			field: "bundles.b1.members[0]",
		},
		{
			name:  "invalid column name",
			src:   `tables: data: columns: ["d1", "d2; DROP TABLE data"]` + "\n" + `bundles: b1: {table: "data", members: ["d1"]}`,
			field: "tables.data.columns",
		},
		{
			name:  "bad single",
			src:   `tables: data: columns: ["d1"]` + "\n" + `bundles: b1: {table: "data", single: "yes", members: ["d1"]}`,
			field: "bundles.b1.single",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadString(tt.src)
			require.Error(t, err)

			var compileErr *CompileError
			require.True(t, errors.As(err, &compileErr), "expected *CompileError, got %T: %v", err, err)
			assert.Equal(t, tt.field, compileErr.Field)
		})
	}
}

func TestCompileBundlesInvalidTableName(t *testing.T) {
	_, err := LoadString(`tables: "data; --": columns: ["d1"]` + "\n" + `bundles: b1: {table: "data; --", members: ["d1"]}`)
	require.Error(t, err)

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Contains(t, compileErr.Message, "invalid table name")
}

func TestCompileBundlesConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "zero members",
			src:  `tables: data: columns: ["d1"]` + "\n" + `bundles: b1: {table: "data", members: []}`,
		},
		{
			name: "duplicate member",
			src:  `tables: data: columns: ["d1"]` + "\n" + `bundles: b1: {table: "data", members: ["d1", "d1"]}`,
		},
		{
			name: "alias collides",
			src:  `tables: data: columns: ["d1", "d2"]` + "\n" + `bundles: b1: {table: "data", members: ["d1", "d2 as d1"]}`,
		},
		{
			name: "nested empty",
			src:  `tables: data: columns: ["d1"]` + "\n" + `bundles: b1: {table: "data", members: ["d1", {bundle: "b2", members: []}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadString(tt.src)
			require.Error(t, err)
			assert.True(t, bundle.IsConfigurationError(err), "expected configuration error, got %v", err)

			var compileErr *CompileError
			assert.True(t, errors.As(err, &compileErr))
		})
	}
}

func TestCompileErrorPosition(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "missing-column.cue"))
	require.Error(t, err)

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.True(t, compileErr.Pos.IsValid())
	assert.Contains(t, err.Error(), "missing-column.cue:5:")
	assert.Contains(t, err.Error(), `table "data" has no column "d9"`)
}

func TestCompileBundlesCUEError(t *testing.T) {
	_, err := LoadString(`tables: data: columns: ["d1"]` + "\n" + `tables: data: columns: ["d2"]`)
	require.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	defs, err := Load(filepath.Join("testdata", "pkg"))
	require.NoError(t, err)

	b1, err := defs.Bundle("b1")
	require.NoError(t, err)
	assert.Equal(t, "Bundle(b1, d1, Bundle(b2, d2, d3))", b1.String())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "does-not-exist.cue"))
	assert.Error(t, err)

	_, err = Load(filepath.Join("testdata", "pkg", "..", "..", "bundles.go"))
	assert.Error(t, err)
}
