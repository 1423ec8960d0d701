package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table is a static table rendered with lipgloss.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// RightAlign marks numeric columns.
	RightAlign map[int]bool
}

// NewTable creates a table with the given title and headers.
func NewTable(title string, headers ...string) *Table {
	return &Table{
		Title:      title,
		Headers:    headers,
		Rows:       make([][]string, 0),
		RightAlign: make(map[int]bool),
	}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

// View renders the table.
func (t *Table) View(styles Styles) string {
	var sb strings.Builder

	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	colWidths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		colWidths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(colWidths) {
				if w := lipgloss.Width(cell); w > colWidths[i] {
					colWidths[i] = w
				}
			}
		}
	}
	// lipgloss Width includes padding
	for i := range colWidths {
		colWidths[i] += 2
	}

	headerStyle := styles.Bold.Padding(0, 1)
	rowStyle := styles.Body.Padding(0, 1)
	sep := styles.Muted.Render("|")

	for i, h := range t.Headers {
		sb.WriteString(headerStyle.Width(colWidths[i]).Render(h))
		if i < len(t.Headers)-1 {
			sb.WriteString(sep)
		}
	}
	sb.WriteString("\n")

	totalWidth := len(t.Headers) - 1
	for _, w := range colWidths {
		totalWidth += w
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("-", totalWidth)) + "\n")

	for _, row := range t.Rows {
		for i, cell := range row {
			if i >= len(colWidths) {
				break
			}
			style := rowStyle.Width(colWidths[i])
			if t.RightAlign[i] {
				style = style.Align(lipgloss.Right)
			}
			sb.WriteString(style.Render(cell))
			if i < len(row)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
