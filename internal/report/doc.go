// Package report renders a comparison result for people. The console
// renderer prints a lipgloss table with a mismatch digest, while the HTML and
// Markdown renderers produce self-contained documents from embedded
// templates. Every renderer walks the rows in the same order and uses the same
// summary wording, so the formats never disagree about what mismatched.
package report
