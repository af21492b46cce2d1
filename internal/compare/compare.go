package compare

import (
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/eugenenazirov/propcompare/internal/parser"
)

// Comparator parses files and compares their flattened contents.
type Comparator struct {
	parser FileParser
	opts   Options
}

// New creates a Comparator that reads files through p.
func New(p FileParser, opts Options) *Comparator {
	return &Comparator{
		parser: p,
		opts:   opts.withDefaults(),
	}
}

// Compare parses every path and compares the results. Input order defines the
// value order of every row regardless of which parse finishes first.
func (c *Comparator) Compare(paths []string) Result {
	maps := make([]parser.FlatMap, len(paths))

	var g errgroup.Group
	g.SetLimit(c.opts.Workers)
	for i, path := range paths {
		g.Go(func() error {
			maps[i] = c.parser.ParseFile(path)
			return nil
		})
	}
	// Parse failures are contained by the parser, so Wait never reports one.
	g.Wait()

	return Maps(maps, c.opts)
}

// Maps compares already parsed maps.
func Maps(maps []parser.FlatMap, opts Options) Result {
	opts = opts.withDefaults()

	keys := unionKeys(maps)
	result := Result{Rows: make([]Row, 0, len(keys))}

	for _, key := range keys {
		row := Row{
			Key:     key,
			Values:  make([]string, len(maps)),
			Present: make([]bool, len(maps)),
			Matched: true,
		}

		var first string
		for i, m := range maps {
			value, ok := m.Get(key)
			if !ok {
				value = opts.Missing
			}
			row.Values[i] = value
			row.Present[i] = ok

			// A present value never matches an absent one, even when it
			// spells the sentinel.
			normalized := Normalize(value)
			if i == 0 {
				first = normalized
			} else if normalized != first || ok != row.Present[0] {
				row.Matched = false
			}
		}

		if !row.Matched {
			result.MismatchCount++
		}
		result.Rows = append(result.Rows, row)
	}

	return result
}

// Normalize removes every whitespace character so values that differ only in
// spacing compare equal.
func Normalize(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
}

func unionKeys(maps []parser.FlatMap) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, m := range maps {
		for _, key := range m.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}
