package dashboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

type tableLayout struct {
	width    int
	height   int
	rowCount int
	colCount int
}

// tableView keeps a bubbles table sized to the dashboard body.
type tableView struct {
	table  table.Model
	layout tableLayout
}

func newTableView(cols []table.Column) tableView {
	t := table.New(
		table.WithColumns(cols),
		table.WithHeight(1),
	)
	t.SetStyles(tableStyles())
	return tableView{table: t}
}

func (tv *tableView) setData(cols []table.Column, rows []table.Row, width, height int) {
	tv.table.SetColumns(cols)
	tv.table.SetRows(rows)
	if tv.table.Cursor() >= len(rows) {
		tv.table.SetCursor(maxInt(0, len(rows)-1))
	}
	tv.layout.rowCount = len(rows)
	tv.layout.colCount = len(cols)
	tv.layout.width = 0
	tv.setSize(width, height)
}

func (tv *tableView) setSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if tv.layout.width == width && tv.layout.height == viewportHeight {
		return
	}
	tv.layout.width = width
	tv.layout.height = viewportHeight
	tv.table.SetWidth(width)
	tv.table.SetHeight(viewportHeight)
	viewportHeight = tv.adjustHeight(height)
	if tv.layout.height != viewportHeight {
		tv.layout.height = viewportHeight
		tv.table.SetHeight(viewportHeight)
	}
}

// adjustHeight nudges the table height until its rendered view fills the body.
func (tv *tableView) adjustHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := tv.table.Height()
	viewHeight := lipgloss.Height(tv.table.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	tv.table.SetHeight(height)
	viewHeight = lipgloss.Height(tv.table.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
