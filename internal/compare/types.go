package compare

import (
	"github.com/eugenenazirov/propcompare/internal/parser"
)

const defaultMissing = "N/A"

// Options holds the immutable settings threaded through a comparison.
type Options struct {
	// Missing is reported for keys a file does not define.
	Missing string
	// Workers bounds how many files are parsed at once. Values below one
	// parse sequentially.
	Workers int
}

func (o Options) withDefaults() Options {
	if o.Missing == "" {
		o.Missing = defaultMissing
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	return o
}

// Row is the per-key outcome of a comparison. Values and Present are aligned
// with the input file order.
type Row struct {
	Key     string
	Values  []string
	Present []bool
	Matched bool
}

// IsMissing reports whether the file at index i lacks the key.
func (r Row) IsMissing(i int) bool {
	return i < len(r.Present) && !r.Present[i]
}

// Result summarises a comparison. Rows holds one entry per key in the union
// of all inputs.
type Result struct {
	MismatchCount int
	Rows          []Row
}

// MismatchedKeys returns the keys of unmatched rows in row order.
func (r Result) MismatchedKeys() []string {
	keys := make([]string, 0, r.MismatchCount)
	for _, row := range r.Rows {
		if !row.Matched {
			keys = append(keys, row.Key)
		}
	}
	return keys
}

// AllMatched reports whether no row is mismatched.
func (r Result) AllMatched() bool {
	return r.MismatchCount == 0
}

// FileParser describes the behaviour required to turn a path into a FlatMap.
type FileParser interface {
	ParseFile(path string) parser.FlatMap
}
