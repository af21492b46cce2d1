package parser

import "strings"

// ParseProperties reads Java-style key=value lines. Blank lines and lines
// starting with # are skipped, anything after the first # is dropped, and the
// line is split on its first '='. Escapes and backslash continuations are not
// interpreted.
func ParseProperties(content string) FlatMap {
	var out FlatMap
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out.Set(key, strings.TrimSpace(value))
	}
	return out
}
