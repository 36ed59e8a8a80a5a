// Package dashboard provides the Bubble Tea exam dashboard.
package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/examdash/internal/logger"
	"github.com/verte-zerg/examdash/internal/model"
	"github.com/verte-zerg/examdash/internal/stats"
)

const (
	tabOverview = iota
	tabWeakTopics
	tabExams
	tabTopics
)

const (
	plotHeight = 10
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8FBF6A"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

var categoryColors = map[model.Category]lipgloss.Color{
	model.Red:    lipgloss.Color("#FF4D4F"),
	model.Orange: lipgloss.Color("#FA8C16"),
	model.Yellow: lipgloss.Color("#FADB14"),
	model.Green:  lipgloss.Color("#52C41A"),
}

// Store is the data access the dashboard needs.
type Store interface {
	stats.Source
	DeleteExam(ctx context.Context, ownerID string, examID int64) error
}

type reportMsg struct {
	report stats.Report
	err    error
}

type deletedMsg struct {
	examID int64
	err    error
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	store Store
	cfg   model.DashboardConfig
	log   *logger.Logger

	report  stats.Report
	loaded  bool
	loading bool
	errMsg  string
	status  string

	tabs      []string
	activeTab int
	overview  viewport.Model
	weak      tableView
	exams     tableView
	topics    tableView

	width  int
	height int

	detail     *model.RankedTopic
	detailView viewport.Model

	settingsMode   bool
	settingsInputs []textinput.Model
	settingsIndex  int
	settingsError  string

	confirmDelete bool
	deleteID      int64
}

// NewModel constructs a dashboard model. The report loads once Init runs.
func NewModel(st Store, cfg model.DashboardConfig, log *logger.Logger) *Model {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.TrendWindow < 1 {
		cfg.TrendWindow = 1
	}
	m := &Model{
		store:      st,
		cfg:        cfg,
		log:        log.With("student", cfg.StudentID),
		tabs:       []string{"Overview", "Weak Topics", "Exams", "Topics"},
		overview:   viewport.New(0, 0),
		detailView: viewport.New(0, 0),
		weak:       newTableView(weakColumns()),
		exams:      newTableView(examColumns()),
		topics:     newTableView(topicColumns()),
	}
	m.initSettingsInputs()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.loadReport()
}

// Report returns the last loaded report.
func (m *Model) Report() stats.Report {
	return m.report
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case reportMsg:
		m.applyReport(msg)
		return m, nil
	case deletedMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("delete exam %d: %v", msg.examID, msg.err)
			m.log.Error("delete exam", "exam", msg.examID, "error", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Deleted exam %d.", msg.examID)
		m.log.Info("exam deleted", "exam", msg.examID)
		return m, m.loadReport()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch {
		case m.settingsMode:
			return m.updateSettings(msg)
		case m.detail != nil:
			return m.updateDetail(msg)
		case m.confirmDelete:
			return m.updateDeleteConfirm(msg)
		}
		m.syncTableFocus()
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h", "shift+tab":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.status = ""
			return m, m.loadReport()
		case "=":
			m.cfg.TrendWindow++
			m.renderTabContents()
			return m, nil
		case "-":
			m.cfg.TrendWindow = maxInt(1, m.cfg.TrendWindow-1)
			m.renderTabContents()
			return m, nil
		case "/":
			return m.startSettings()
		case "enter":
			if m.activeTab == tabWeakTopics {
				m.openDetail()
			}
			return m, nil
		case "d", "delete":
			if m.activeTab == tabExams {
				m.startDelete()
			}
			return m, nil
		case "g", "home":
			m.gotoEdge(true)
			return m, nil
		case "G", "end":
			m.gotoEdge(false)
			return m, nil
		default:
			return m.scroll(msg)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.detail != nil {
		return fitLines(m.renderDetailModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) loadReport() tea.Cmd {
	m.loading = true
	st, cfg := m.store, m.cfg
	return func() tea.Msg {
		report, err := stats.BuildReport(context.Background(), st, cfg)
		return reportMsg{report: report, err: err}
	}
}

func (m *Model) deleteExam(id int64) tea.Cmd {
	st, owner := m.store, m.cfg.StudentID
	return func() tea.Msg {
		return deletedMsg{examID: id, err: st.DeleteExam(context.Background(), owner, id)}
	}
}

func (m *Model) applyReport(msg reportMsg) {
	m.loading = false
	if msg.err != nil {
		m.errMsg = msg.err.Error()
		m.log.Error("build report", "error", msg.err)
		m.renderTabContents()
		return
	}
	m.errMsg = ""
	m.report = msg.report
	m.loaded = true
	if skipped := msg.report.SkippedMistakes(); skipped > 0 {
		m.log.Warn("skipped mistakes with a missing topic or exam", "count", skipped)
	}
	m.log.Debug("report loaded",
		"exams", msg.report.TotalExams,
		"topics", msg.report.Summary.Total,
		"ranked", len(msg.report.Ranked),
	)
	m.applyTables()
	m.renderTabContents()
}

func (m *Model) applyTables() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.weak.setData(weakColumns(), weakRows(m.report.Ranked, m.report.TotalExams), width, bodyHeight)
	m.exams.setData(examColumns(), examRows(m.report.Exams), width, bodyHeight)
	m.topics.setData(topicColumns(), topicRows(m.report.TopicStatuses()), width, bodyHeight)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = len(m.footerLines())
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.weak.setSize(m.width, bodyHeight)
	m.exams.setSize(m.width, bodyHeight)
	m.topics.setSize(m.width, bodyHeight)
	m.detailView.Width = modalInnerWidth(m.width)
	m.detailView.Height = maxInt(3, m.height-10)
	for i := range m.settingsInputs {
		promptWidth := lipgloss.Width(m.settingsInputs[i].Prompt)
		m.settingsInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	m.syncTableFocus()
}

func (m *Model) syncTableFocus() {
	m.weak.table.Blur()
	m.exams.table.Blur()
	m.topics.table.Blur()
	switch m.activeTab {
	case tabWeakTopics:
		m.weak.table.Focus()
	case tabExams:
		m.exams.table.Focus()
	case tabTopics:
		m.topics.table.Focus()
	}
}

func (m *Model) gotoEdge(top bool) {
	switch m.activeTab {
	case tabWeakTopics:
		if top {
			m.weak.table.GotoTop()
		} else {
			m.weak.table.GotoBottom()
		}
	case tabExams:
		if top {
			m.exams.table.GotoTop()
		} else {
			m.exams.table.GotoBottom()
		}
	case tabTopics:
		if top {
			m.topics.table.GotoTop()
		} else {
			m.topics.table.GotoBottom()
		}
	default:
		if top {
			m.overview.GotoTop()
		} else {
			m.overview.GotoBottom()
		}
	}
}

func (m *Model) scroll(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case tabWeakTopics:
		m.weak.table, cmd = m.weak.table.Update(msg)
	case tabExams:
		m.exams.table, cmd = m.exams.table.Update(msg)
	case tabTopics:
		m.topics.table, cmd = m.topics.table.Update(msg)
	default:
		m.overview, cmd = m.overview.Update(msg)
	}
	return m, cmd
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	settings := padLines(m.renderSettingsSummary(), m.width)
	return tabs + "\n" + settings
}

func (m *Model) renderSettingsSummary() string {
	name := m.report.Student.Name
	if name == "" {
		name = m.cfg.StudentID
	}
	top := "all"
	if m.cfg.WeakTop > 0 {
		top = strconv.Itoa(m.cfg.WeakTop)
	}
	summary := fmt.Sprintf("Student: %s  weak-top=%s  window=%d", name, top, m.cfg.TrendWindow)
	if m.loading {
		summary += "  loading..."
	}
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Refresh: r  Quit: q"
	switch m.activeTab {
	case tabWeakTopics:
		help = "Nav: left/right  Select: up/down  Details: enter  Settings: /  Refresh: r  Quit: q"
	case tabExams:
		help = "Nav: left/right  Select: up/down  Delete: d  Settings: /  Refresh: r  Quit: q"
	case tabTopics:
		help = "Nav: left/right  Scroll: up/down  Level: examdash topic progress  Refresh: r  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) footerLines() []string {
	if m.settingsMode {
		return []string{headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")}
	}
	lines := []string{m.renderHelp()}
	switch {
	case m.confirmDelete:
		lines = append(lines, errorStyle.Render(fmt.Sprintf("Delete exam %d? y/n", m.deleteID)))
	case m.errMsg != "":
		lines = append(lines, errorStyle.Render(m.errMsg))
	case m.status != "":
		lines = append(lines, statusStyle.Render(m.status))
	}
	return lines
}

func (m *Model) renderFooter() string {
	return strings.Join(m.footerLines(), "\n")
}

func (m *Model) renderBody(height int) string {
	if m.settingsMode {
		return fitLines(m.renderSettingsForm(), m.width, height)
	}
	if m.activeTab == tabOverview {
		return fitLines(m.overview.View(), m.width, height)
	}
	switch {
	case m.errMsg != "" && !m.loaded:
		return fitLines("Failed to load report.", m.width, height)
	case !m.loaded:
		return fitLines("Loading...", m.width, height)
	}
	switch m.activeTab {
	case tabWeakTopics:
		if len(m.report.Ranked) == 0 {
			return fitLines("No weak topics. Everything is green.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.weak.table.View()), m.width, height)
	case tabTopics:
		if m.report.Summary.Total == 0 {
			return fitLines("No topics in the catalog.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.topics.table.View()), m.width, height)
	}
	if len(m.report.Exams) == 0 {
		return fitLines("No exams found.", m.width, height)
	}
	return fitLines(tableMutedStyle.Render(m.exams.table.View()), m.width, height)
}

func (m *Model) renderTabContents() {
	switch {
	case m.errMsg != "" && !m.loaded:
		m.overview.SetContent("Failed to load report.")
		return
	case !m.loaded:
		m.overview.SetContent("Loading...")
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, m.cfg.TrendWindow, width))
}

func renderOverview(r stats.Report, window, width int) string {
	parts := []string{
		renderSummaryCards(r, width),
	}
	if r.TotalExams > 0 && r.TotalExams < stats.WarmupExams {
		parts = append(parts, headerStyle.Render(fmt.Sprintf("Warm-up: categories use absolute counts until %d exams are recorded.", stats.WarmupExams)))
	}
	if skipped := r.SkippedMistakes(); skipped > 0 {
		parts = append(parts, headerStyle.Render(fmt.Sprintf("%d mistake records point at a removed topic or exam and were skipped.", skipped)))
	}
	parts = append(parts, renderTrend(r.Trend, window, width))
	return strings.TrimRight(strings.Join(parts, "\n\n"), "\n")
}

func renderSummaryCards(r stats.Report, width int) string {
	categoryCards := make([]string, 0, len(model.Categories))
	for _, c := range model.Categories {
		categoryCards = append(categoryCards, categoryCard(c, r.Summary.Count(c)))
	}
	lastNet := "-"
	level := "-"
	if len(r.Exams) > 0 {
		lastNet = stats.FormatNet(stats.ExamNet(r.Exams[0]))
		level = strconv.Itoa(stats.ExamLevel(r.Exams[0]))
	}
	infoCards := []string{
		metricCard("Exams", strconv.Itoa(r.TotalExams)),
		metricCard("Topics", strconv.Itoa(r.Summary.Total)),
		metricCard("Last net", lastNet),
		metricCard("Level", level),
	}
	if width < 80 {
		return strings.Join(append(categoryCards, infoCards...), "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, categoryCards...)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, infoCards...)
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func categoryCard(c model.Category, count int) string {
	color := categoryColors[c]
	title := lipgloss.NewStyle().Foreground(color).Render(stats.CategoryLabel(c))
	content := fmt.Sprintf("%s\n%s", title, cardValueStyle.Render(strconv.Itoa(count)))
	return cardStyle.BorderForeground(color).Render(content)
}

func renderTrend(trend []model.NetPoint, window, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderTrendWithSize(&buf, trend, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render trend: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func weakColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Category", Width: 8},
		{Title: "Lesson", Width: 16},
		{Title: "Topic", Width: 24},
		{Title: "Wrongs", Width: 6},
		{Title: "Exams", Width: 5},
		{Title: "Per exam", Width: 8},
	}
}

func weakRows(ranked []model.RankedTopic, totalExams int) []table.Row {
	rows := make([]table.Row, 0, len(ranked))
	for i, t := range ranked {
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			stats.CategoryLabel(t.Category),
			t.LessonName,
			t.TopicName,
			strconv.Itoa(t.TotalWrongs),
			strconv.Itoa(t.ExamCount),
			fmt.Sprintf("%.2f", stats.Ratio(t.TotalWrongs, totalExams)),
		})
	}
	return rows
}

func examColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Date", Width: 10},
		{Title: "Exam", Width: 24},
		{Title: "Correct", Width: 7},
		{Title: "Wrong", Width: 5},
		{Title: "Empty", Width: 5},
		{Title: "Net", Width: 7},
		{Title: "Level", Width: 5},
	}
}

func examRows(exams []model.Exam) []table.Row {
	rows := make([]table.Row, 0, len(exams))
	for _, e := range exams {
		rows = append(rows, table.Row{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.Format(stats.DateLayout),
			e.Name,
			strconv.Itoa(e.CorrectCount),
			strconv.Itoa(e.WrongCount),
			strconv.Itoa(e.EmptyCount),
			stats.FormatNet(stats.ExamNet(e)),
			strconv.Itoa(stats.ExamLevel(e)),
		})
	}
	return rows
}

func topicColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Lesson", Width: 16},
		{Title: "Topic", Width: 24},
		{Title: "Category", Width: 8},
		{Title: "Wrongs", Width: 6},
		{Title: "Level", Width: 5},
	}
}

func topicRows(statuses []stats.TopicStatus) []table.Row {
	rows := make([]table.Row, 0, len(statuses))
	for _, t := range statuses {
		rows = append(rows, table.Row{
			strconv.FormatInt(t.TopicID, 10),
			t.LessonName,
			t.TopicName,
			stats.CategoryLabel(t.Category),
			strconv.Itoa(t.TotalWrongs),
			stats.LevelLabel(t.Level),
		})
	}
	return rows
}

func (m *Model) openDetail() {
	idx := m.weak.table.Cursor()
	if idx < 0 || idx >= len(m.report.Ranked) {
		return
	}
	topic := m.report.Ranked[idx]
	m.detail = &topic
	var buf bytes.Buffer
	if err := stats.RenderMistakeDetails(&buf, topic.AggregatedTopicMistake); err != nil {
		m.errMsg = err.Error()
		m.detail = nil
		return
	}
	m.detailView.SetContent(strings.TrimRight(buf.String(), "\n"))
	m.detailView.GotoTop()
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "q":
		m.detail = nil
		return m, nil
	}
	var cmd tea.Cmd
	m.detailView, cmd = m.detailView.Update(msg)
	return m, cmd
}

func (m *Model) renderDetailModal() string {
	title := lipgloss.NewStyle().
		Foreground(categoryColors[m.detail.Category]).
		Bold(true).
		Render(fmt.Sprintf("%s topic", stats.CategoryLabel(m.detail.Category)))
	body := []string{
		title,
		m.detailView.View(),
		headerStyle.Render("Scroll: up/down  Close: esc/enter/q"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) startDelete() {
	idx := m.exams.table.Cursor()
	if idx < 0 || idx >= len(m.report.Exams) {
		return
	}
	m.confirmDelete = true
	m.deleteID = m.report.Exams[idx].ID
	m.status = ""
}

func (m *Model) updateDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.deleteID
	m.confirmDelete = false
	m.deleteID = 0
	if msg.String() == "y" || msg.String() == "Y" {
		return m, m.deleteExam(id)
	}
	m.status = "Delete cancelled."
	return m, nil
}

func (m *Model) initSettingsInputs() {
	m.settingsInputs = []textinput.Model{
		newSettingsInput("Weak top (0 = all): "),
		newSettingsInput("Trend window: "),
	}
	m.setInputsFromConfig()
}

func newSettingsInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 4
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	m.settingsInputs[0].SetValue(strconv.Itoa(m.cfg.WeakTop))
	m.settingsInputs[1].SetValue(strconv.Itoa(m.cfg.TrendWindow))
}

func (m *Model) startSettings() (tea.Model, tea.Cmd) {
	m.settingsMode = true
	m.settingsError = ""
	m.setInputsFromConfig()
	return m, m.setSettingsIndex(0)
}

func (m *Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.settingsMode = false
		m.settingsError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applySettings(); err != nil {
			m.settingsError = err.Error()
			return m, nil
		}
		m.settingsMode = false
		m.settingsError = ""
		m.updateLayout()
		return m, m.loadReport()
	case tea.KeyTab, tea.KeyDown:
		return m, m.setSettingsIndex(m.settingsIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setSettingsIndex(m.settingsIndex - 1)
	}
	var cmd tea.Cmd
	m.settingsInputs[m.settingsIndex], cmd = m.settingsInputs[m.settingsIndex].Update(msg)
	return m, cmd
}

func (m *Model) setSettingsIndex(idx int) tea.Cmd {
	count := len(m.settingsInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.settingsIndex = idx
	var cmd tea.Cmd
	for i := range m.settingsInputs {
		if i == m.settingsIndex {
			cmd = m.settingsInputs[i].Focus()
		} else {
			m.settingsInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applySettings() error {
	top, err := strconv.Atoi(strings.TrimSpace(m.settingsInputs[0].Value()))
	if err != nil || top < 0 {
		return fmt.Errorf("invalid weak top (use 0 or positive integer)")
	}
	window, err := strconv.Atoi(strings.TrimSpace(m.settingsInputs[1].Value()))
	if err != nil || window < 1 {
		return fmt.Errorf("invalid trend window (use integer >= 1)")
	}
	m.cfg.WeakTop = top
	m.cfg.TrendWindow = window
	return nil
}

func (m *Model) renderSettingsForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.settingsInputs {
		lines = append(lines, input.View())
	}
	if m.settingsError != "" {
		lines = append(lines, errorStyle.Render(m.settingsError))
	}
	return strings.Join(lines, "\n")
}
