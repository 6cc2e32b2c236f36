package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpressionLabels(t *testing.T) {
	data := Table("data", "d1", "d2")

	tests := []struct {
		name string
		e    Expression
		want string
	}{
		{"column", data.C("d1"), "d1"},
		{"unqualified column", Column{Name: "x"}, "x"},
		{"labeled", As(data.C("d2"), "second"), "second"},
		{"relabeled", As(As(data.C("d2"), "a"), "b"), "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.e.Label())
		})
	}
}

func TestExpressionSealed(t *testing.T) {
	// Exhaustive switch over the sealed set.
	kinds := func(e Expression) string {
		switch e.(type) {
		case Column:
			return "column"
		case Labeled:
			return "labeled"
		default:
			return "unknown"
		}
	}

	assert.Equal(t, "column", kinds(Column{Name: "d1"}))
	assert.Equal(t, "labeled", kinds(As(Column{Name: "d1"}, "x")))
}

func TestTableRef(t *testing.T) {
	cols := []string{"id", "d1"}
	data := Table("data", cols...)
	cols[0] = "mutated"

	assert.Equal(t, "data", data.Name())
	assert.Equal(t, []string{"id", "d1"}, data.Columns(), "Table copies its column list")
	assert.True(t, data.Has("d1"))
	assert.False(t, data.Has("d9"))
	assert.Equal(t, Column{Table: "data", Name: "d9"}, data.C("d9"))

	got := data.Columns()
	got[0] = "changed"
	assert.Equal(t, "id", data.Columns()[0], "Columns returns a copy")
}

func TestPredicateConstructors(t *testing.T) {
	d1 := Column{Table: "data", Name: "d1"}

	tests := []struct {
		name string
		got  Predicate
		want Predicate
	}{
		{"eq", Eq(d1, 1), Compare{Expr: d1, Op: OpEq, Value: 1}},
		{"neq", Neq(d1, 1), Compare{Expr: d1, Op: OpNeq, Value: 1}},
		{"lt", Lt(d1, 1), Compare{Expr: d1, Op: OpLt, Value: 1}},
		{"lte", Lte(d1, 1), Compare{Expr: d1, Op: OpLte, Value: 1}},
		{"gt", Gt(d1, 1), Compare{Expr: d1, Op: OpGt, Value: 1}},
		{"gte", Gte(d1, 1), Compare{Expr: d1, Op: OpGte, Value: 1}},
		{"like", Like(d1, "d%"), Compare{Expr: d1, Op: OpLike, Value: "d%"}},
		{"between", InRange(d1, "a", "b"), Between{Expr: d1, Low: "a", High: "b"}},
		{"null", Null(d1), IsNull{Expr: d1}},
		{"not null", NotNull(d1), IsNull{Expr: d1, Not: true}},
		{"and", AllOf(Null(d1), Eq(d1, 2)), And{Predicates: []Predicate{IsNull{Expr: d1}, Compare{Expr: d1, Op: OpEq, Value: 2}}}},
		{"or", AnyOf(Null(d1)), Or{Predicates: []Predicate{IsNull{Expr: d1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestOrder(t *testing.T) {
	d1 := Column{Name: "d1"}
	assert.Equal(t, Order{Expr: d1}, Asc(d1))
	assert.Equal(t, Order{Expr: d1, Desc: true}, Desc(d1))
}
