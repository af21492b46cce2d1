package parser

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// ParseTOML decodes a TOML document and flattens it. The decoder does not
// keep table order, so keys within a table are emitted alphabetically.
func ParseTOML(content string) (FlatMap, error) {
	var doc map[string]any
	if err := toml.Unmarshal([]byte(content), &doc); err != nil {
		return FlatMap{}, fmt.Errorf("%w: %w", ErrMalformedTOML, err)
	}
	return Flatten(fromTOML(doc)), nil
}

func fromTOML(value any) Node {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			entries = append(entries, Entry{Key: k, Value: fromTOML(v[k])})
		}
		return Mapping(entries...)
	case []any:
		items := make([]Node, 0, len(v))
		for _, item := range v {
			items = append(items, fromTOML(item))
		}
		return Sequence(items...)
	case []map[string]any:
		items := make([]Node, 0, len(v))
		for _, item := range v {
			items = append(items, fromTOML(item))
		}
		return Sequence(items...)
	case string:
		return Scalar(v)
	case bool:
		return Scalar(strconv.FormatBool(v))
	case int64:
		return Scalar(strconv.FormatInt(v, 10))
	case float64:
		return Scalar(strconv.FormatFloat(v, 'f', -1, 64))
	case time.Time:
		return Scalar(v.Format(time.RFC3339Nano))
	case fmt.Stringer:
		return Scalar(v.String())
	default:
		return Scalar(fmt.Sprint(v))
	}
}
