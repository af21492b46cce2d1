package report

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/propcompare/internal/compare"
	"github.com/eugenenazirov/propcompare/internal/parser"
)

var testFiles = []string{"/srv/dev/app.properties", "/srv/prod/app.yml"}

func mismatchedResult() compare.Result {
	return compare.Maps([]parser.FlatMap{
		parser.ParseProperties("a=1\nb=2\nshared=x|y"),
		parser.ParseProperties("a=1\nb=3\nc=4\nshared=x|y"),
	}, compare.Options{})
}

func matchedResult() compare.Result {
	return compare.Maps([]parser.FlatMap{
		parser.ParseProperties("a=1\nb=2"),
		parser.ParseProperties("a=1\nb= 2"),
	}, compare.Options{})
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", FormatConsole, true},
		{"console", FormatConsole, true},
		{"HTML", FormatHTML, true},
		{"markdown", FormatMarkdown, true},
		{"md", FormatMarkdown, true},
		{"pdf", FormatConsole, false},
	}
	for _, tc := range cases {
		got, ok := ParseFormat(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
	}

	assert.True(t, FormatHTML.IsDocument())
	assert.True(t, FormatMarkdown.IsDocument())
	assert.False(t, FormatConsole.IsDocument())
}

func TestHTMLReport(t *testing.T) {
	t.Parallel()

	got, err := HTML(testFiles, mismatchedResult())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "<!DOCTYPE html>"))
	assert.Contains(t, got, "<title>Properties Comparison Report</title>")
	assert.Contains(t, got, "<li><strong>app.properties</strong> <code>/srv/dev/app.properties</code></li>")
	assert.Contains(t, got, "<th>Key</th><th>Matched</th><th>File 1: app.properties</th><th>File 2: app.yml</th>")
	assert.Contains(t, got, `<tr class="mismatch"><td>c</td><td class="status">No</td><td><em>N/A</em></td><td>4</td></tr>`)
	assert.Contains(t, got, `<tr class="match"><td>a</td><td class="status">Yes</td><td>1</td><td>1</td></tr>`)
	assert.Contains(t, got, `<div class="summary error">`)
	assert.Contains(t, got, "2 key(s) have mismatched values.")
	assert.Contains(t, got, "Mismatched keys: b, c")
}

func TestHTMLReportEscapesValues(t *testing.T) {
	t.Parallel()

	result := compare.Maps([]parser.FlatMap{
		parser.ParseProperties("html=<script>alert(1)</script>"),
		parser.ParseProperties("html=<b>"),
	}, compare.Options{})

	got, err := HTML([]string{"a.properties", "b.properties"}, result)
	require.NoError(t, err)
	assert.NotContains(t, got, "<script>alert(1)</script>")
	assert.Contains(t, got, "&lt;script&gt;")
}

func TestHTMLReportAllMatched(t *testing.T) {
	t.Parallel()

	got, err := HTML(testFiles, matchedResult())
	require.NoError(t, err)
	assert.Contains(t, got, `<div class="summary success"><p>All properties match across all files!</p></div>`)
	assert.NotContains(t, got, "Mismatched keys")
}

func TestMarkdownReport(t *testing.T) {
	t.Parallel()

	got, err := Markdown(testFiles, mismatchedResult())
	require.NoError(t, err)

	want := strings.Join([]string{
		"# Properties Comparison Report",
		"",
		"## Files Compared",
		"",
		"1. app.properties (/srv/dev/app.properties)",
		"2. app.yml (/srv/prod/app.yml)",
		"",
		"## Comparison Results",
		"",
		"| Key | Matched | File 1: app.properties | File 2: app.yml |",
		"| --- | --- | --- | --- |",
		"| a | Yes | 1 | 1 |",
		"| b | No | 2 | 3 |",
		`| shared | Yes | x\|y | x\|y |`,
		"| c | No | *N/A* | 4 |",
		"",
		"## Summary",
		"",
		"❌ 2 key(s) have mismatched values.",
		"",
		"Mismatched keys: b, c",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestMarkdownReportAllMatched(t *testing.T) {
	t.Parallel()

	got, err := Markdown(testFiles, matchedResult())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "## Summary\n\n✅ All properties match across all files!\n"))
}

func TestConsoleReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Console{Out: &buf}.Write(testFiles, mismatchedResult()))
	got := buf.String()

	assert.True(t, strings.HasPrefix(got, "Comparing 2 files: app.properties, app.yml\n"))
	assert.Contains(t, got, "File 1: app.properties")
	assert.Contains(t, got, "File 2: app.yml")
	assert.Contains(t, got, "Highlighted Mismatched Rows\n  b\n    File 1 (app.properties): 2\n    File 2 (app.yml): 3\n  c\n    File 1 (app.properties): N/A\n")
	assert.True(t, strings.HasSuffix(got, "2 key(s) have mismatched values.\nMismatched keys: b, c\n"))
	assert.NotContains(t, got, "\x1b[", "non-terminal writers receive plain text")
}

func TestConsoleReportAllMatched(t *testing.T) {
	t.Parallel()

	got := Console{Out: &bytes.Buffer{}, NoColor: true}.Render(testFiles, matchedResult())
	assert.Contains(t, got, "Highlighted Mismatched Rows\n  None\n")
	assert.True(t, strings.HasSuffix(got, "All properties match across all files!\n"))
}

func TestRenderersAreIdempotent(t *testing.T) {
	t.Parallel()

	result := mismatchedResult()

	html1, err := HTML(testFiles, result)
	require.NoError(t, err)
	html2, err := HTML(testFiles, result)
	require.NoError(t, err)
	assert.Equal(t, html1, html2)

	md1, err := Markdown(testFiles, result)
	require.NoError(t, err)
	md2, err := Markdown(testFiles, result)
	require.NoError(t, err)
	assert.Equal(t, md1, md2)

	console := Console{Out: &bytes.Buffer{}}
	assert.Equal(t, console.Render(testFiles, result), console.Render(testFiles, result))
}

func TestRenderersAgreeOnRowOrderAndClassification(t *testing.T) {
	t.Parallel()

	result := mismatchedResult()

	html, err := HTML(testFiles, result)
	require.NoError(t, err)
	md, err := Markdown(testFiles, result)
	require.NoError(t, err)
	console := Console{Out: &bytes.Buffer{}, NoColor: true}.Render(testFiles, result)

	htmlRows := regexp.MustCompile(`<tr class="(match|mismatch)"><td>([^<]*)</td>`).FindAllStringSubmatch(html, -1)
	mdRows := regexp.MustCompile(`(?m)^\| ([^|]+) \| (Yes|No) \|`).FindAllStringSubmatch(md, -1)

	require.Len(t, htmlRows, len(result.Rows))
	require.Len(t, mdRows, len(result.Rows))

	for i, row := range result.Rows {
		assert.Equal(t, row.Key, htmlRows[i][2])
		assert.Equal(t, row.Key, mdRows[i][1])
		assert.Equal(t, row.Matched, htmlRows[i][1] == "match")
		assert.Equal(t, row.Matched, mdRows[i][2] == "Yes")
	}

	summary := MismatchMessage(result)
	assert.Contains(t, html, summary)
	assert.Contains(t, md, summary)
	assert.Contains(t, console, summary)
}

func TestMarkdownCellEscaping(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `a\|b`, markdownCell("a|b"))
	assert.Equal(t, `line1<br>line2`, markdownCell("line1\nline2"))
	assert.Equal(t, `C:\\temp`, markdownCell(`C:\temp`))
}

func TestPreview(t *testing.T) {
	t.Parallel()

	md, err := Markdown(testFiles, matchedResult())
	require.NoError(t, err)

	got, err := Preview(md, 80)
	require.NoError(t, err)
	assert.Contains(t, got, "Properties Comparison Report")
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "app.properties", DisplayName("/a/b/app.properties"))
	assert.Equal(t, "app.yml", DisplayName("app.yml"))
}
