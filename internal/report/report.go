package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/eugenenazirov/propcompare/internal/compare"
)

// Title heads the HTML and Markdown documents.
const Title = "Properties Comparison Report"

const allMatchedMessage = "All properties match across all files!"

// DisplayName returns the short name shown for a compared file.
func DisplayName(path string) string {
	return filepath.Base(path)
}

// MismatchMessage returns the summary sentence for result.
func MismatchMessage(result compare.Result) string {
	if result.AllMatched() {
		return allMatchedMessage
	}
	return fmt.Sprintf("%d key(s) have mismatched values.", result.MismatchCount)
}

type fileView struct {
	Index int
	Name  string
	Path  string
}

type cellView struct {
	Value   string
	Missing bool
}

type rowView struct {
	Key     string
	Matched bool
	Cells   []cellView
}

// document is the view model shared by the HTML and Markdown templates.
type document struct {
	Title          string
	Files          []fileView
	Rows           []rowView
	MismatchCount  int
	MismatchedKeys string
	Summary        string
}

func newDocument(files []string, result compare.Result) document {
	doc := document{
		Title:          Title,
		Files:          make([]fileView, 0, len(files)),
		Rows:           make([]rowView, 0, len(result.Rows)),
		MismatchCount:  result.MismatchCount,
		MismatchedKeys: strings.Join(result.MismatchedKeys(), ", "),
		Summary:        MismatchMessage(result),
	}

	for i, path := range files {
		doc.Files = append(doc.Files, fileView{
			Index: i + 1,
			Name:  DisplayName(path),
			Path:  path,
		})
	}

	for _, row := range result.Rows {
		view := rowView{
			Key:     row.Key,
			Matched: row.Matched,
			Cells:   make([]cellView, len(row.Values)),
		}
		for i, value := range row.Values {
			view.Cells[i] = cellView{Value: value, Missing: row.IsMissing(i)}
		}
		doc.Rows = append(doc.Rows, view)
	}

	return doc
}

func matchedLabel(matched bool) string {
	if matched {
		return "Yes"
	}
	return "No"
}
