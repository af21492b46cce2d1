package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/eugenenazirov/propcompare/internal/compare"
)

// Console prints a comparison as a table followed by a mismatch digest.
// Colors are only emitted when Out is a color-capable terminal and NoColor is
// unset; any other writer receives plain text.
type Console struct {
	Out     io.Writer
	NoColor bool
}

type consoleStyles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	cell     lipgloss.Style
	missing  lipgloss.Style
	match    lipgloss.Style
	mismatch lipgloss.Style
	border   lipgloss.Style
}

func newConsoleStyles(r *lipgloss.Renderer) consoleStyles {
	return consoleStyles{
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		header:   r.NewStyle().Bold(true).Padding(0, 1),
		cell:     r.NewStyle().Padding(0, 1),
		missing:  r.NewStyle().Padding(0, 1).Italic(true).Foreground(lipgloss.Color("8")),
		match:    r.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("10")),
		mismatch: r.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("9")),
		border:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Write renders the comparison and prints it to Out.
func (c Console) Write(files []string, result compare.Result) error {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	if _, err := io.WriteString(out, c.Render(files, result)); err != nil {
		return fmt.Errorf("write console report: %w", err)
	}
	return nil
}

// Render builds the console output without printing it.
func (c Console) Render(files []string, result compare.Result) string {
	r := lipgloss.NewRenderer(c.writer(), termenv.WithProfile(c.profile()))
	styles := newConsoleStyles(r)

	var b strings.Builder

	names := make([]string, len(files))
	for i, path := range files {
		names[i] = DisplayName(path)
	}
	b.WriteString(styles.title.Render(fmt.Sprintf("Comparing %d files: %s", len(files), strings.Join(names, ", "))))
	b.WriteString("\n\n")

	b.WriteString(c.table(styles, names, result))
	b.WriteString("\n\n")

	b.WriteString(styles.title.Render("Highlighted Mismatched Rows"))
	b.WriteString("\n")
	if result.AllMatched() {
		b.WriteString("  None\n")
	}
	for _, row := range result.Rows {
		if row.Matched {
			continue
		}
		b.WriteString("  ")
		b.WriteString(styles.mismatch.UnsetPadding().Render(row.Key))
		b.WriteString("\n")
		for i, value := range row.Values {
			rendered := value
			if row.IsMissing(i) {
				rendered = styles.missing.UnsetPadding().Render(value)
			}
			fmt.Fprintf(&b, "    File %d (%s): %s\n", i+1, names[i], rendered)
		}
	}
	b.WriteString("\n")

	if result.AllMatched() {
		b.WriteString(styles.match.UnsetPadding().Render(MismatchMessage(result)))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(styles.mismatch.UnsetPadding().Render(MismatchMessage(result)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Mismatched keys: %s\n", strings.Join(result.MismatchedKeys(), ", "))
	return b.String()
}

func (c Console) table(styles consoleStyles, names []string, result compare.Result) string {
	headers := make([]string, 0, len(names)+2)
	headers = append(headers, "Key", "Matched")
	for i, name := range names {
		headers = append(headers, fmt.Sprintf("File %d: %s", i+1, name))
	}

	rows := make([][]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		cells := make([]string, 0, len(row.Values)+2)
		cells = append(cells, row.Key, matchedLabel(row.Matched))
		cells = append(cells, row.Values...)
		rows = append(rows, cells)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.header
			}
			if row < 0 || row >= len(result.Rows) {
				return styles.cell
			}
			current := result.Rows[row]
			switch {
			case col == 1 && current.Matched:
				return styles.match
			case col == 1:
				return styles.mismatch
			case col >= 2 && current.IsMissing(col-2):
				return styles.missing
			case col == 0 && !current.Matched:
				return styles.mismatch
			default:
				return styles.cell
			}
		})

	return t.String()
}

func (c Console) writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// profile picks the color profile for the output writer. Anything that is not
// a terminal gets termenv.Ascii so redirected output stays byte-stable.
func (c Console) profile() termenv.Profile {
	if c.NoColor {
		return termenv.Ascii
	}
	f, ok := c.writer().(*os.File)
	if !ok || (!isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())) {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).EnvColorProfile()
}
