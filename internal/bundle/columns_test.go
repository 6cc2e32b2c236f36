package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bundle/internal/expr"
)

func nested() *Bundle {
	return MustNew("b1", data.C("d1"), MustNew("b2", data.C("d2"), data.C("d3")))
}

func TestColumns_Column(t *testing.T) {
	b := MustNew("b1", data.C("d1"), data.C("d2"))

	d1, err := b.C().Column("d1")
	require.NoError(t, err)
	assert.Equal(t, data.C("d1"), d1)

	d2, err := b.Columns().Column("d2")
	require.NoError(t, err)
	assert.Equal(t, data.C("d2"), d2)

	assert.True(t, b.C().Has("d1"))
	assert.False(t, b.C().Has("d3"))
	assert.Equal(t, 2, b.C().Len())
}

func TestColumns_Missing(t *testing.T) {
	b := MustNew("b1", data.C("d1"))

	_, err := b.C().Column("nope")
	require.Error(t, err)
	assert.True(t, IsAttributeLookupError(err))
	assert.ErrorIs(t, err, ErrAttributeLookup)

	_, err = b.C().Get("nope")
	assert.True(t, IsAttributeLookupError(err))

	_, err = b.C().Bundle("d1")
	assert.True(t, IsAttributeLookupError(err))
}

func TestColumns_NestedChain(t *testing.T) {
	b1 := nested()

	b2, err := b1.C().Bundle("b2")
	require.NoError(t, err)

	d2, err := b2.C().Column("d2")
	require.NoError(t, err)
	assert.Equal(t, data.C("d2"), d2)

	_, err = b1.C().Column("b2")
	require.Error(t, err)
	assert.True(t, IsAttributeLookupError(err))
}

func TestColumns_Lookup(t *testing.T) {
	b1 := nested()

	testCases := []struct {
		path string
		want expr.Expression
	}{
		{path: "d1", want: data.C("d1")},
		{path: "c.d1", want: data.C("d1")},
		{path: "b2.d2", want: data.C("d2")},
		{path: "b2.c.d2", want: data.C("d2")},
		{path: "c.b2.c.d3", want: data.C("d3")},
		{path: "columns.b2.columns.d3", want: data.C("d3")},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			got, err := b1.C().Lookup(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestColumns_LookupErrors(t *testing.T) {
	b1 := nested()

	for _, path := range []string{"", "nope", "b2", "b2.nope", "d1.x", "b2..d2", "c", "b2.c"} {
		t.Run(path, func(t *testing.T) {
			_, err := b1.C().Lookup(path)
			require.Error(t, err)
			assert.True(t, IsAttributeLookupError(err), "got %v", err)
		})
	}
}

func TestColumns_LookupMemberNamedC(t *testing.T) {
	b := MustNew("b1", data.C("d1"), MustNew("c", data.C("d2")))

	got, err := b.C().Lookup("c.d2")
	require.NoError(t, err)
	assert.Equal(t, data.C("d2"), got)
}

func TestColumns_MustLookup(t *testing.T) {
	b1 := nested()

	assert.Equal(t, data.C("d2"), b1.C().MustLookup("b2.c.d2"))
	assert.Panics(t, func() { b1.C().MustLookup("b3.d1") })
}

func TestColumns_NormalizedLookup(t *testing.T) {
	b := MustNew("b1", expr.Column{Table: "t", Name: "caf\u00e9"})

	got, err := b.C().Column("cafe\u0301")
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", got.Label())
	assert.Equal(t, []string{"caf\u00e9"}, b.C().Keys())
}

func TestColumns_KeysIsACopy(t *testing.T) {
	b := MustNew("b1", data.C("d1"), data.C("d2"))

	keys := b.C().Keys()
	keys[0] = "mutated"

	assert.Equal(t, []string{"d1", "d2"}, b.C().Keys())
}
