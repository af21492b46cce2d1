package report

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/eugenenazirov/propcompare/internal/compare"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var (
	htmlTemplate = htmltemplate.Must(htmltemplate.New("report.html.tmpl").
			Funcs(htmltemplate.FuncMap{"matched": matchedLabel}).
			ParseFS(templatesFS, "templates/report.html.tmpl"))

	markdownTemplate = texttemplate.Must(texttemplate.New("report.md.tmpl").
				Funcs(texttemplate.FuncMap{"matched": matchedLabel, "cell": markdownCell}).
				ParseFS(templatesFS, "templates/report.md.tmpl"))
)

// HTML renders result as a standalone HTML document.
func HTML(files []string, result compare.Result) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, newDocument(files, result)); err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}
	return buf.String(), nil
}

// Markdown renders result as a Markdown document.
func Markdown(files []string, result compare.Result) (string, error) {
	var buf bytes.Buffer
	if err := markdownTemplate.Execute(&buf, newDocument(files, result)); err != nil {
		return "", fmt.Errorf("render markdown report: %w", err)
	}
	return buf.String(), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"\r\n", "<br>",
	"\n", "<br>",
)

// markdownCell keeps a value inside a single table cell.
func markdownCell(value string) string {
	return markdownEscaper.Replace(value)
}
