package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/bundle/internal/bundle"
	"github.com/roach88/bundle/internal/expr"
)

// Resolver maps a dotted path such as "b1.c.b2.c.d2" to a column expression.
type Resolver func(path string) (expr.Expression, error)

// BundleResolver resolves "<bundle>.<path>" against the named bundles, e.g.
// "b1.c.b2.c.d2" is b1's lookup of "c.b2.c.d2".
func BundleResolver(bundles map[string]*bundle.Bundle) Resolver {
	return func(path string) (expr.Expression, error) {
		name, rest, ok := strings.Cut(path, ".")
		if !ok || rest == "" {
			return nil, fmt.Errorf("path %q must start with a bundle name", path)
		}
		b, ok := bundles[name]
		if !ok {
			return nil, fmt.Errorf("unknown bundle %q in path %q", name, path)
		}
		return b.C().Lookup(rest)
	}
}

// comparisonOps in match order; two-character operators precede their prefixes.
var comparisonOps = []struct {
	token string
	op    expr.Op
}{
	{"==", expr.OpEq},
	{"!=", expr.OpNeq},
	{"<=", expr.OpLte},
	{">=", expr.OpGte},
	{"=", expr.OpEq},
	{"<", expr.OpLt},
	{">", expr.OpGt},
}

// ParseFilter parses a single filter condition into a predicate.
//
// Supported forms:
//   - "path OP value" with OP one of = == != < <= > >=
//   - "path LIKE pattern"
//   - "path BETWEEN low AND high"
//   - "path IS NULL", "path IS NOT NULL"
//
// Keywords are case-insensitive. Values containing spaces, operators or
// keywords must be quoted with ' or ". Unquoted values are parsed by
// parseValue.
func ParseFilter(s string, resolve Resolver) (expr.Predicate, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty filter")
	}
	if toks[0].kind != tokWord {
		return nil, fmt.Errorf("filter must start with a path: %s", s)
	}
	if len(toks) == 1 {
		return nil, fmt.Errorf("unsupported filter (no operator found): %s", s)
	}

	path, rest := toks[0].text, toks[1:]

	switch {
	case rest[0].is("is"):
		switch {
		case len(rest) == 2 && rest[1].is("null"):
			e, err := resolve(path)
			if err != nil {
				return nil, err
			}
			return expr.Null(e), nil
		case len(rest) == 3 && rest[1].is("not") && rest[2].is("null"):
			e, err := resolve(path)
			if err != nil {
				return nil, err
			}
			return expr.NotNull(e), nil
		}
		return nil, fmt.Errorf("expected IS NULL or IS NOT NULL in: %s", s)

	case rest[0].is("between"):
		if len(rest) != 4 || !rest[2].is("and") || !rest[1].isValue() || !rest[3].isValue() {
			return nil, fmt.Errorf("expected BETWEEN low AND high in: %s", s)
		}
		e, err := resolve(path)
		if err != nil {
			return nil, err
		}
		return expr.InRange(e, rest[1].value(), rest[3].value()), nil

	case rest[0].is("like"):
		if len(rest) != 2 || !rest[1].isValue() {
			return nil, fmt.Errorf("expected LIKE pattern in: %s", s)
		}
		pattern, ok := rest[1].value().(string)
		if !ok {
			return nil, fmt.Errorf("LIKE pattern must be a string in: %s", s)
		}
		e, err := resolve(path)
		if err != nil {
			return nil, err
		}
		return expr.Like(e, pattern), nil

	case rest[0].kind == tokOp:
		if len(rest) == 1 {
			return nil, fmt.Errorf("incomplete comparison: %s", s)
		}
		if len(rest) != 2 || !rest[1].isValue() {
			return nil, fmt.Errorf("comparison value must be a single word or quoted: %s", s)
		}
		var op expr.Op
		for _, c := range comparisonOps {
			if c.token == rest[0].text {
				op = c.op
				break
			}
		}
		e, err := resolve(path)
		if err != nil {
			return nil, err
		}
		return expr.Compare{Expr: e, Op: op, Value: rest[1].value()}, nil
	}

	return nil, fmt.Errorf("unsupported filter (no operator found): %s", s)
}

type tokenKind int

const (
	tokWord tokenKind = iota
	tokQuoted
	tokOp
)

// token is one lexical unit of a filter. For tokQuoted, text holds the
// unquoted contents.
type token struct {
	kind tokenKind
	text string
}

// is reports whether t is the unquoted keyword kw, ignoring case.
func (t token) is(kw string) bool {
	return t.kind == tokWord && strings.EqualFold(t.text, kw)
}

func (t token) isValue() bool {
	return t.kind == tokWord || t.kind == tokQuoted
}

func (t token) value() any {
	if t.kind == tokQuoted {
		return t.text
	}
	return parseValue(t.text)
}

// tokenize splits a filter into words, quoted strings and comparison
// operators. Operator characters and whitespace inside quotes are literal.
func tokenize(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case isSpace(c):
			i++

		case c == '\'' || c == '"':
			end := strings.IndexByte(s[i+1:], c)
			if end == -1 {
				return nil, fmt.Errorf("unterminated quote at offset %d in: %s", i, s)
			}
			toks = append(toks, token{kind: tokQuoted, text: s[i+1 : i+1+end]})
			i += end + 2
			if i < len(s) && !isSpace(s[i]) && !isOpChar(s[i]) {
				return nil, fmt.Errorf("unexpected text after quoted value at offset %d in: %s", i, s)
			}

		case isOpChar(c):
			matched := ""
			for _, op := range comparisonOps {
				if strings.HasPrefix(s[i:], op.token) {
					matched = op.token
					break
				}
			}
			if matched == "" {
				return nil, fmt.Errorf("unknown operator at offset %d in: %s", i, s)
			}
			toks = append(toks, token{kind: tokOp, text: matched})
			i += len(matched)

		default:
			j := i
			for j < len(s) && !isSpace(s[j]) && !isOpChar(s[j]) {
				j++
			}
			toks = append(toks, token{kind: tokWord, text: s[i:j]})
			i = j
		}
	}
	return toks, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isOpChar(c byte) bool {
	return c == '=' || c == '!' || c == '<' || c == '>'
}

// ParseOrder parses "path", "path asc", "path desc" or "-path".
func ParseOrder(s string, resolve Resolver) (expr.Order, error) {
	fields := strings.Fields(s)
	desc := false
	switch {
	case len(fields) == 1 && strings.HasPrefix(fields[0], "-"):
		desc = true
		fields[0] = fields[0][1:]
	case len(fields) == 2 && strings.EqualFold(fields[1], "desc"):
		desc = true
	case len(fields) == 2 && strings.EqualFold(fields[1], "asc"):
	case len(fields) == 1:
	default:
		return expr.Order{}, fmt.Errorf("expected path, -path or path asc|desc: %q", s)
	}
	e, err := resolve(fields[0])
	if err != nil {
		return expr.Order{}, err
	}
	return expr.Order{Expr: e, Desc: desc}, nil
}

// parseValue converts an unquoted literal: integers are int64, true/false
// are bools, anything else is a string.
func parseValue(v string) any {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}
