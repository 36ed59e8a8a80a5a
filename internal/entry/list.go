package entry

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/examdash/internal/model"
)

const (
	topicNameWidth = 28
	maxVisibleRows = 12
)

type topicRow struct {
	lesson  bool
	label   string
	topicID int64
}

// buildRows flattens the catalog into lesson headers followed by their topics.
func buildRows(catalog []model.Lesson) []topicRow {
	rows := []topicRow{}
	for _, lesson := range catalog {
		if len(lesson.Topics) == 0 {
			continue
		}
		rows = append(rows, topicRow{lesson: true, label: lesson.Name})
		for _, topic := range lesson.Topics {
			rows = append(rows, topicRow{label: topic.Name, topicID: topic.ID})
		}
	}
	return rows
}

// nextTopicRow steps from idx in direction dir to the next selectable topic.
// It returns idx unchanged when there is none.
func nextTopicRow(rows []topicRow, idx, dir int) int {
	for i := idx + dir; i >= 0 && i < len(rows); i += dir {
		if !rows[i].lesson {
			return i
		}
	}
	if idx < 0 || idx >= len(rows) {
		return -1
	}
	return idx
}

// visibleWindow returns the row range to draw so that selected stays in view.
func visibleWindow(total, selected, limit int) (int, int) {
	if total <= limit {
		return 0, total
	}
	start := selected - limit/2
	if start < 0 {
		start = 0
	}
	if start+limit > total {
		start = total - limit
	}
	return start, start + limit
}

func (m *Model) renderTopics() []string {
	if len(m.rows) == 0 {
		return []string{labelStyle.Render("    No topics in the catalog. Import one with `examdash catalog import`.")}
	}
	start, end := visibleWindow(len(m.rows), m.selected, maxVisibleRows)
	lines := make([]string, 0, end-start+2)
	if start > 0 {
		lines = append(lines, labelStyle.Render("    ..."))
	}
	for i := start; i < end; i++ {
		row := m.rows[i]
		if row.lesson {
			lines = append(lines, "  "+lessonStyle.Render(row.label))
			continue
		}
		name := runewidth.FillRight(runewidth.Truncate(row.label, topicNameWidth, "…"), topicNameWidth)
		marker := "    "
		style := topicStyle
		if i == m.selected && m.focus == fieldTopics {
			marker = "  > "
			style = selectedStyle
		}
		count := ""
		if n := m.counts[row.topicID]; n > 0 {
			count = countStyle.Render(fmt.Sprintf("%d", n))
		}
		lines = append(lines, marker+style.Render(name)+" "+count)
	}
	if end < len(m.rows) {
		lines = append(lines, labelStyle.Render("    ..."))
	}
	return lines
}
