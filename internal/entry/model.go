// Package entry provides the Bubble Tea exam entry form.
package entry

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/examdash/internal/model"
	"github.com/verte-zerg/examdash/internal/stats"
)

const (
	fieldName = iota
	fieldCorrect
	fieldWrong
	fieldEmpty
	fieldTopics
)

var (
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	lessonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	topicStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	countStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	selectedStyle = focusStyle.Underline(true)
)

// Result is the exam collected by the form.
type Result struct {
	Exam     model.Exam
	Mistakes []model.TopicMistake
}

// Model implements the Bubble Tea exam entry form.
type Model struct {
	ownerID string
	inputs  []textinput.Model
	focus   int

	rows     []topicRow
	selected int
	counts   map[int64]int

	width  int
	height int

	errMsg    string
	submitted bool
	result    Result
}

// NewModel constructs an entry form for a student over the topic catalog.
func NewModel(ownerID string, catalog []model.Lesson) *Model {
	m := &Model{
		ownerID: ownerID,
		inputs: []textinput.Model{
			newInput("Exam name: ", "Mock 1", 64),
			newInput("Correct:   ", "0", 4),
			newInput("Wrong:     ", "0", 4),
			newInput("Empty:     ", "0", 4),
		},
		rows:   buildRows(catalog),
		counts: map[int64]int{},
	}
	m.selected = nextTopicRow(m.rows, -1, 1)
	m.setFocus(fieldName)
	return m
}

func newInput(prompt, placeholder string, limit int) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Submitted reports whether the form was confirmed rather than cancelled.
func (m *Model) Submitted() bool {
	return m.submitted
}

// Result returns the collected exam. It is only meaningful after Submitted.
func (m *Model) Result() Result {
	return m.result
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlS:
			return m.submit()
		case tea.KeyTab:
			return m, m.setFocus(m.focus + 1)
		case tea.KeyShiftTab:
			return m, m.setFocus(m.focus - 1)
		case tea.KeyEnter:
			if m.focus == fieldTopics {
				return m.submit()
			}
			return m, m.setFocus(m.focus + 1)
		}
		if m.focus == fieldTopics {
			m.updateTopics(msg)
			return m, nil
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		if m.focus != fieldName {
			m.inputs[m.focus].SetValue(digitsOnly(m.inputs[m.focus].Value()))
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := []string{lessonStyle.Render("New exam"), ""}
	for i, input := range m.inputs {
		view := input.View()
		if i == m.focus {
			view = focusStyle.Render("> ") + view
		} else {
			view = "  " + view
		}
		lines = append(lines, view)
	}
	lines = append(lines, "")
	header := "Mistakes per topic"
	if m.focus == fieldTopics {
		header = focusStyle.Render("> " + header)
	} else {
		header = labelStyle.Render("  " + header)
	}
	lines = append(lines, header)
	lines = append(lines, m.renderTopics()...)
	if m.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(m.errMsg))
	}
	lines = append(lines, "", m.renderFooter(), m.renderHelp())
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, content)
}

func (m *Model) setFocus(idx int) tea.Cmd {
	count := len(m.inputs) + 1
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.focus = idx
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.focus {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) updateTopics(msg tea.KeyMsg) {
	row, ok := m.currentTopic()
	switch msg.String() {
	case "up", "k":
		m.selected = nextTopicRow(m.rows, m.selected, -1)
	case "down", "j":
		m.selected = nextTopicRow(m.rows, m.selected, 1)
	case "+", "=", "right", "l":
		if ok {
			m.counts[row.topicID]++
		}
	case "-", "left", "h":
		if ok && m.counts[row.topicID] > 0 {
			m.counts[row.topicID]--
		}
	case "0", "x":
		if ok {
			delete(m.counts, row.topicID)
		}
	}
}

func (m *Model) currentTopic() (topicRow, bool) {
	if m.selected < 0 || m.selected >= len(m.rows) || m.rows[m.selected].lesson {
		return topicRow{}, false
	}
	return m.rows[m.selected], true
}

func (m *Model) answerCounts() (correct, wrong, empty int) {
	return model.ParseCount(m.inputs[fieldCorrect].Value()),
		model.ParseCount(m.inputs[fieldWrong].Value()),
		model.ParseCount(m.inputs[fieldEmpty].Value())
}

func (m *Model) topicMistakeTotal() int {
	total := 0
	for _, n := range m.counts {
		total += n
	}
	return total
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.inputs[fieldName].Value())
	if name == "" {
		m.errMsg = "exam name is required"
		return m, m.setFocus(fieldName)
	}
	correct, wrong, empty := m.answerCounts()
	if assigned := m.topicMistakeTotal(); assigned > wrong {
		m.errMsg = fmt.Sprintf("topic mistakes (%d) exceed wrong answers (%d)", assigned, wrong)
		return m, nil
	}
	mistakes := make([]model.TopicMistake, 0, len(m.counts))
	for _, row := range m.rows {
		if row.lesson {
			continue
		}
		if n := m.counts[row.topicID]; n > 0 {
			mistakes = append(mistakes, model.TopicMistake{TopicID: row.topicID, WrongCount: n})
		}
	}
	m.errMsg = ""
	m.submitted = true
	m.result = Result{
		Exam: model.Exam{
			OwnerID:      m.ownerID,
			Name:         name,
			CorrectCount: correct,
			WrongCount:   wrong,
			EmptyCount:   empty,
		},
		Mistakes: mistakes,
	}
	return m, tea.Quit
}

func (m *Model) renderFooter() string {
	correct, wrong, empty := m.answerCounts()
	total := correct + wrong + empty
	segments := []string{
		fmt.Sprintf("Questions %d", total),
		fmt.Sprintf("Net %s", stats.FormatNet(stats.Net(correct, wrong))),
		fmt.Sprintf("Level %d", stats.ProgressLevel(stats.SuccessRate(correct, wrong, total))),
		fmt.Sprintf("Topic mistakes %d/%d", m.topicMistakeTotal(), wrong),
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderHelp() string {
	if m.focus == fieldTopics {
		return footerStyle.Render("up/down: topic  +/-: count  0: reset  enter/ctrl+s: save  tab: fields  esc: cancel")
	}
	return footerStyle.Render("tab/enter: next field  ctrl+s: save  esc: cancel")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
