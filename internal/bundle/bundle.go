package bundle

import (
	"iter"
	"slices"
	"strings"

	"github.com/roach88/bundle/internal/expr"
)

// Member is a bundle member: an expr.Expression or a *Bundle.
type Member interface {
	Label() string
}

// Bundle is a named, ordered group of query-result members.
type Bundle struct {
	name         string
	members      []Member
	columns      *Columns
	singleEntity bool
	factory      RowProcessorFactory
}

// New creates a bundle from one or more members.
//
// Members are recorded in the proxy set under their labels, in the order
// given. New fails with a configuration error when no members are given,
// when a member is nil or of an unsupported type, or when two members share
// a label.
func New(name string, members ...Member) (*Bundle, error) {
	if name == "" {
		return nil, configError(name, "", "bundle name is required")
	}
	if len(members) == 0 {
		return nil, configError(name, "", "at least one member is required")
	}

	for i, m := range members {
		if err := checkMember(name, i, m); err != nil {
			return nil, err
		}
	}

	cols, err := newColumns(name, members)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		name:    name,
		members: slices.Clone(members),
		columns: cols,
		factory: Tuples,
	}, nil
}

// MustNew is like New but panics on error.
// Intended for package-level declarations and tests.
func MustNew(name string, members ...Member) *Bundle {
	b, err := New(name, members...)
	if err != nil {
		panic(err)
	}
	return b
}

func checkMember(bundle string, i int, m Member) error {
	switch mm := m.(type) {
	case nil:
		return configError(bundle, "", "member %d is nil", i)
	case *Bundle:
		if mm == nil {
			return configError(bundle, "", "member %d is a nil bundle", i)
		}
	case expr.Expression:
		if mm.Label() == "" {
			return configError(bundle, "", "member %d has an empty label", i)
		}
	default:
		return configError(bundle, m.Label(), "member %d has unsupported type %T", i, m)
	}
	return nil
}

// Name returns the bundle name.
func (b *Bundle) Name() string { return b.name }

// Label returns the bundle name. A nested bundle is addressed by it.
func (b *Bundle) Label() string { return b.name }

// Len returns the number of direct members.
func (b *Bundle) Len() int { return len(b.members) }

// Members returns the direct members in declaration order.
func (b *Bundle) Members() []Member { return slices.Clone(b.members) }

// C returns the column proxy set.
func (b *Bundle) C() *Columns { return b.columns }

// Columns is an alias for C.
func (b *Bundle) Columns() *Columns { return b.columns }

// IsSingleEntity reports whether a one-member bundle yields its value bare.
func (b *Bundle) IsSingleEntity() bool { return b.singleEntity }

// SingleEntity returns a copy of b that yields the bare member value instead
// of a one-element tuple. It only has an effect on bundles with exactly one
// member that assemble with Tuples; a factory set by WithRowProcessor always
// runs.
func (b *Bundle) SingleEntity() *Bundle {
	cp := *b
	cp.singleEntity = true
	return &cp
}

// WithRowProcessor returns a copy of b whose rows are assembled by f.
// A nil f restores the default tuple assembly.
func (b *Bundle) WithRowProcessor(f RowProcessorFactory) *Bundle {
	if f == nil {
		f = Tuples
	}
	cp := *b
	cp.factory = f
	return &cp
}

// Flatten yields the leaf expressions depth-first in member order, recursing
// into nested bundles. The sequence is restartable and matches the column
// order the bundle contributes to a SELECT list.
func (b *Bundle) Flatten() iter.Seq[expr.Expression] {
	return func(yield func(expr.Expression) bool) {
		b.walk(yield)
	}
}

func (b *Bundle) walk(yield func(expr.Expression) bool) bool {
	for _, m := range b.members {
		switch m := m.(type) {
		case *Bundle:
			if !m.walk(yield) {
				return false
			}
		case expr.Expression:
			if !yield(m) {
				return false
			}
		}
	}
	return true
}

// Leaves collects Flatten into a slice.
func (b *Bundle) Leaves() []expr.Expression {
	return slices.Collect(b.Flatten())
}

// Labels returns the labels of the flattened leaves, aligned with Flatten.
func (b *Bundle) Labels() []string {
	var labels []string
	for e := range b.Flatten() {
		labels = append(labels, e.Label())
	}
	return labels
}

// CreateRowProcessor builds the processor that assembles this bundle's value
// for one row. procs holds one processor per direct member, in member order;
// for a nested bundle member it is that bundle's own processor. labels are
// the matching member labels.
func (b *Bundle) CreateRowProcessor(info *QueryInfo, procs []Processor, labels []string) (Processor, error) {
	if len(procs) != len(b.members) {
		return nil, configError(b.name, "", "got %d member processors for %d members", len(procs), len(b.members))
	}
	if len(labels) != len(b.members) {
		return nil, configError(b.name, "", "got %d member labels for %d members", len(labels), len(b.members))
	}
	for i, p := range procs {
		if p == nil {
			return nil, configError(b.name, labels[i], "member processor %d is nil", i)
		}
	}

	if _, tuples := b.factory.(tupleFactory); tuples && b.singleEntity && len(procs) == 1 {
		return procs[0], nil
	}

	proc := b.factory.CreateRowProcessor(info, slices.Clone(procs), slices.Clone(labels))
	if proc == nil {
		return nil, configError(b.name, "", "row processor factory returned nil")
	}
	return proc, nil
}

// String returns a debug representation, e.g. Bundle(b1, d1, Bundle(b2, d2, d3)).
func (b *Bundle) String() string {
	var sb strings.Builder
	b.format(&sb)
	return sb.String()
}

func (b *Bundle) format(sb *strings.Builder) {
	sb.WriteString("Bundle(")
	sb.WriteString(b.name)
	for _, m := range b.members {
		sb.WriteString(", ")
		if nb, ok := m.(*Bundle); ok {
			nb.format(sb)
			continue
		}
		sb.WriteString(m.Label())
	}
	sb.WriteString(")")
}
