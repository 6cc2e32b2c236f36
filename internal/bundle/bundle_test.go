package bundle

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bundle/internal/expr"
)

var data = expr.Table("data", "id", "d1", "d2", "d3")

func TestNew_RecordsMembersInOrder(t *testing.T) {
	b, err := New("b1", data.C("d1"), data.C("d2"))
	require.NoError(t, err)

	assert.Equal(t, "b1", b.Name())
	assert.Equal(t, "b1", b.Label())
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []string{"d1", "d2"}, b.C().Keys())
	assert.Equal(t, []Member{data.C("d1"), data.C("d2")}, b.Members())
	assert.False(t, b.IsSingleEntity())
}

func TestNew_ZeroMembers(t *testing.T) {
	_, err := New("b1")
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.False(t, IsAttributeLookupError(err))
}

func TestNew_DuplicateNames(t *testing.T) {
	testCases := []struct {
		name    string
		members []Member
	}{
		{
			name:    "same column twice",
			members: []Member{data.C("d1"), data.C("d1")},
		},
		{
			name:    "columns of different tables with the same name",
			members: []Member{data.C("d1"), expr.Column{Table: "other", Name: "d1"}},
		},
		{
			name:    "column and nested bundle with the same name",
			members: []Member{data.C("d1"), MustNew("d1", data.C("d2"))},
		},
		{
			name:    "label collides with column",
			members: []Member{data.C("d1"), expr.As(data.C("d2"), "d1")},
		},
		{
			name:    "NFC equivalent labels",
			members: []Member{expr.Column{Table: "t", Name: "caf\u00e9"}, expr.Column{Table: "t", Name: "cafe\u0301"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New("b1", tc.members...)
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err), "got %v", err)

			var be *Error
			require.True(t, errors.As(err, &be))
			assert.Equal(t, "b1", be.Bundle)
			assert.Contains(t, be.Error(), "duplicate member name")
		})
	}
}

func TestNew_InvalidMembers(t *testing.T) {
	var nilBundle *Bundle

	testCases := []struct {
		name    string
		bundle  string
		members []Member
	}{
		{name: "empty bundle name", bundle: "", members: []Member{data.C("d1")}},
		{name: "nil member", bundle: "b1", members: []Member{data.C("d1"), nil}},
		{name: "nil bundle member", bundle: "b1", members: []Member{nilBundle}},
		{name: "empty label", bundle: "b1", members: []Member{expr.Column{Table: "data"}}},
		{name: "unsupported member type", bundle: "b1", members: []Member{fakeMember("x")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.bundle, tc.members...)
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err), "got %v", err)
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() { MustNew("b1") })
	assert.NotPanics(t, func() { MustNew("b1", data.C("d1")) })
}

func TestNew_CopiesMemberSlice(t *testing.T) {
	members := []Member{data.C("d1"), data.C("d2")}
	b := MustNew("b1", members...)

	members[0] = data.C("d3")

	assert.Equal(t, []string{"d1", "d2"}, b.Labels())
}

func TestFlatten_DepthFirst(t *testing.T) {
	b := MustNew("b1",
		data.C("d1"),
		MustNew("b2", data.C("d2"), MustNew("b3", data.C("d3"))),
		expr.As(data.C("id"), "key"),
	)

	leaves := b.Leaves()
	assert.Equal(t, []expr.Expression{
		data.C("d1"),
		data.C("d2"),
		data.C("d3"),
		expr.As(data.C("id"), "key"),
	}, leaves)
	assert.Equal(t, []string{"d1", "d2", "d3", "key"}, b.Labels())
}

func TestFlatten_Idempotent(t *testing.T) {
	b := MustNew("b1", data.C("d1"), MustNew("b2", data.C("d2"), data.C("d3")))

	first := slices.Collect(b.Flatten())
	second := slices.Collect(b.Flatten())

	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestFlatten_StopsEarly(t *testing.T) {
	b := MustNew("b1", data.C("d1"), MustNew("b2", data.C("d2"), data.C("d3")))

	var seen []string
	for e := range b.Flatten() {
		seen = append(seen, e.Label())
		if e.Label() == "d2" {
			break
		}
	}

	assert.Equal(t, []string{"d1", "d2"}, seen)
}

func TestSingleEntity_ReturnsCopy(t *testing.T) {
	b := MustNew("b1", data.C("d1"))
	single := b.SingleEntity()

	assert.False(t, b.IsSingleEntity())
	assert.True(t, single.IsSingleEntity())
	assert.Same(t, b.C(), single.C())
}

func TestWithRowProcessor_ReturnsCopy(t *testing.T) {
	b := MustNew("b1", data.C("d1"), data.C("d2"))
	mapped := b.WithRowProcessor(Mappings)

	procs := []Processor{constProc("x"), constProc("y")}
	labels := []string{"d1", "d2"}

	p, err := b.CreateRowProcessor(&QueryInfo{}, procs, labels)
	require.NoError(t, err)
	v, err := p(nil, &Result{})
	require.NoError(t, err)
	assert.Equal(t, Tuple{"x", "y"}, v)

	p, err = mapped.CreateRowProcessor(&QueryInfo{}, procs, labels)
	require.NoError(t, err)
	v, err = p(nil, &Result{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"d1": "x", "d2": "y"}, v)

	restored := mapped.WithRowProcessor(nil)
	p, err = restored.CreateRowProcessor(&QueryInfo{}, procs, labels)
	require.NoError(t, err)
	v, err = p(nil, &Result{})
	require.NoError(t, err)
	assert.Equal(t, Tuple{"x", "y"}, v)
}

func TestString(t *testing.T) {
	b := MustNew("b1", data.C("d1"), MustNew("b2", data.C("d2"), data.C("d3")))
	assert.Equal(t, "Bundle(b1, d1, Bundle(b2, d2, d3))", b.String())
}

type fakeMember string

func (f fakeMember) Label() string { return string(f) }
