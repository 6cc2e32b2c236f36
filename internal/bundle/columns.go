package bundle

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/bundle/internal/expr"
)

// Columns is the read-only proxy set of a bundle: member label -> member.
//
// Labels are compared after NFC normalization, so "é" written precomposed or
// decomposed names the same member.
type Columns struct {
	owner   string
	keys    []string
	members map[string]Member
}

func newColumns(owner string, members []Member) (*Columns, error) {
	c := &Columns{
		owner:   owner,
		keys:    make([]string, 0, len(members)),
		members: make(map[string]Member, len(members)),
	}
	for _, m := range members {
		label := m.Label()
		key := norm.NFC.String(label)
		if _, dup := c.members[key]; dup {
			return nil, configError(owner, label, "duplicate member name")
		}
		c.members[key] = m
		c.keys = append(c.keys, label)
	}
	return c, nil
}

// Keys returns the member labels in member order.
func (c *Columns) Keys() []string { return slices.Clone(c.keys) }

// Len returns the number of members.
func (c *Columns) Len() int { return len(c.keys) }

// Has reports whether a member is registered under name.
func (c *Columns) Has(name string) bool {
	_, ok := c.members[norm.NFC.String(name)]
	return ok
}

// Get returns the member registered under name.
func (c *Columns) Get(name string) (Member, error) {
	m, ok := c.members[norm.NFC.String(name)]
	if !ok {
		return nil, lookupError(c.owner, name, "no such member")
	}
	return m, nil
}

// Column returns the leaf expression registered under name.
func (c *Columns) Column(name string) (expr.Expression, error) {
	m, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	e, ok := m.(expr.Expression)
	if !ok {
		return nil, lookupError(c.owner, name, "member is a bundle, not a column")
	}
	return e, nil
}

// Bundle returns the nested bundle registered under name.
func (c *Columns) Bundle(name string) (*Bundle, error) {
	m, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	b, ok := m.(*Bundle)
	if !ok {
		return nil, lookupError(c.owner, name, "member is a column, not a bundle")
	}
	return b, nil
}

// Lookup resolves a dotted path to a leaf expression, traversing nested
// bundles through their own proxy sets.
//
// "d1", "b2.d2", "b2.c.d2" and "c.b2.c.d2" are all accepted. A "c" or
// "columns" segment is read as the proxy accessor unless a member of that
// name exists at that level.
func (c *Columns) Lookup(path string) (expr.Expression, error) {
	if path == "" {
		return nil, lookupError(c.owner, path, "empty lookup path")
	}

	segs := strings.Split(path, ".")
	cur := c
	for i, seg := range segs {
		if seg == "" {
			return nil, lookupError(c.owner, path, "empty path segment")
		}
		last := i == len(segs)-1
		if !last && isAccessor(seg) && !cur.Has(seg) {
			continue
		}

		m, err := cur.Get(seg)
		if err != nil {
			return nil, lookupError(cur.owner, path, "no member %q", seg)
		}

		if last {
			e, ok := m.(expr.Expression)
			if !ok {
				return nil, lookupError(cur.owner, path, "%q is a bundle, not a column", seg)
			}
			return e, nil
		}

		nb, ok := m.(*Bundle)
		if !ok {
			return nil, lookupError(cur.owner, path, "%q is a column and has no members", seg)
		}
		cur = nb.columns
	}

	return nil, lookupError(c.owner, path, "path names no column")
}

// MustLookup is like Lookup but panics on error.
func (c *Columns) MustLookup(path string) expr.Expression {
	e, err := c.Lookup(path)
	if err != nil {
		panic(err)
	}
	return e
}

func isAccessor(seg string) bool {
	return seg == "c" || seg == "columns"
}
