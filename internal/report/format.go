package report

import "strings"

// Format selects a renderer.
type Format int

const (
	// FormatConsole prints a styled table to the terminal.
	FormatConsole Format = iota
	// FormatHTML produces a standalone HTML document.
	FormatHTML
	// FormatMarkdown produces a Markdown document.
	FormatMarkdown
)

func (f Format) String() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatMarkdown:
		return "markdown"
	default:
		return "console"
	}
}

// ParseFormat maps a user supplied name to a Format. Unknown names resolve to
// FormatConsole with ok set to false so callers can warn about the fallback.
func ParseFormat(name string) (format Format, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "console":
		return FormatConsole, true
	case "html":
		return FormatHTML, true
	case "markdown", "md":
		return FormatMarkdown, true
	default:
		return FormatConsole, false
	}
}

// IsDocument reports whether the format produces a document that can be
// written to a file.
func (f Format) IsDocument() bool {
	return f == FormatHTML || f == FormatMarkdown
}

// Names lists the canonical format names.
func Names() []string {
	return []string{"console", "html", "markdown"}
}
