package bundle

// RawRow is one scanned result row, indexed by result position.
type RawRow []any

// Result is the per-row result context supplied by the query layer.
// The query layer owns it and updates Index before each row; processors only
// read it.
type Result struct {
	QueryID string
	Columns []string // result column labels, in position order
	Index   int      // 0-based row number within the execution
}

// QueryInfo describes the query a processor chain is built for.
type QueryInfo struct {
	ID      string
	SQL     string
	Columns []string
}

// Processor produces one value from a raw row.
//
// Leaf processors extract the value at a fixed result position. Bundle
// processors combine the values of their member processors.
type Processor func(row RawRow, res *Result) (any, error)

// RowProcessorFactory decides how a bundle assembles its member values.
//
// CreateRowProcessor receives one processor per direct member, in member
// order, and the matching member labels. It must return a processor with the
// same signature; it is free to ignore labels, reorder, rename or restructure.
// Shape mistakes are not detected here and surface when rows are processed.
type RowProcessorFactory interface {
	CreateRowProcessor(info *QueryInfo, procs []Processor, labels []string) Processor
}

// RowProcessorFunc adapts a function to RowProcessorFactory.
type RowProcessorFunc func(info *QueryInfo, procs []Processor, labels []string) Processor

// CreateRowProcessor calls f.
func (f RowProcessorFunc) CreateRowProcessor(info *QueryInfo, procs []Processor, labels []string) Processor {
	return f(info, procs, labels)
}

// Tuple is the default assembled bundle value: member values by position.
type Tuple []any

// Tuples assembles member values into a Tuple in member order. It is the
// default factory and the only one under which SingleEntity collapses.
var Tuples RowProcessorFactory = tupleFactory{}

type tupleFactory struct{}

func (tupleFactory) CreateRowProcessor(_ *QueryInfo, procs []Processor, _ []string) Processor {
	return func(row RawRow, res *Result) (any, error) {
		out := make(Tuple, len(procs))
		for i, proc := range procs {
			v, err := proc(row, res)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
}

// Mappings assembles member values into a map keyed by member label.
var Mappings RowProcessorFactory = RowProcessorFunc(func(_ *QueryInfo, procs []Processor, labels []string) Processor {
	return func(row RawRow, res *Result) (any, error) {
		out := make(map[string]any, len(procs))
		for i, proc := range procs {
			v, err := proc(row, res)
			if err != nil {
				return nil, err
			}
			out[labels[i]] = v
		}
		return out, nil
	}
})
