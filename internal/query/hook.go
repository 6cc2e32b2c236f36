package query

import (
	"fmt"

	"github.com/roach88/bundle/internal/bundle"
	"github.com/roach88/bundle/internal/expr"
)

// buildProcessors returns one processor per target. Result positions are
// assigned in flatten order, matching Statement's column list.
func buildProcessors(info *bundle.QueryInfo, targets []Target) ([]bundle.Processor, error) {
	procs := make([]bundle.Processor, len(targets))
	pos := 0
	for i, t := range targets {
		p, n, err := buildProcessor(info, t, pos)
		if err != nil {
			return nil, err
		}
		procs[i] = p
		pos += n
	}
	if pos != len(info.Columns) {
		return nil, fmt.Errorf("processors cover %d positions, query selects %d", pos, len(info.Columns))
	}
	return procs, nil
}

// buildProcessor returns the processor for t, whose first leaf sits at result
// position pos, and the number of positions t occupies.
//
// Nested bundles are built first; their processor becomes the member
// processor handed to the parent's factory.
func buildProcessor(info *bundle.QueryInfo, t Target, pos int) (bundle.Processor, int, error) {
	switch v := t.(type) {
	case *bundle.Bundle:
		members := v.Members()
		procs := make([]bundle.Processor, len(members))
		labels := make([]string, len(members))
		width := 0
		for i, m := range members {
			p, n, err := buildProcessor(info, m, pos+width)
			if err != nil {
				return nil, 0, err
			}
			procs[i] = p
			labels[i] = m.Label()
			width += n
		}
		p, err := v.CreateRowProcessor(info, procs, labels)
		if err != nil {
			return nil, 0, err
		}
		return p, width, nil
	case expr.Expression:
		return extractor(pos), 1, nil
	default:
		return nil, 0, fmt.Errorf("%w: %T", ErrInvalidTarget, t)
	}
}

// extractor returns a processor reading the value at result position pos.
// Driver byte slices are returned as strings.
func extractor(pos int) bundle.Processor {
	return func(row bundle.RawRow, _ *bundle.Result) (any, error) {
		if pos < 0 || pos >= len(row) {
			return nil, fmt.Errorf("result position %d out of range (row has %d values)", pos, len(row))
		}
		if b, ok := row[pos].([]byte); ok {
			return string(b), nil
		}
		return row[pos], nil
	}
}
