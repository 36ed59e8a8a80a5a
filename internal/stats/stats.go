package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/examdash/internal/model"
)

const sparkChars = " .:-=+*#%@"

// DateLayout is used for exam dates in tables.
const DateLayout = "02.01.2006"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := i + 1
		if i >= window {
			sum -= values[i-window]
			den = window
		}
		out[i] = sum / float64(den)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the category counts over the topic catalog.
func RenderSummary(w io.Writer, r Report) error {
	lines := []string{
		"Summary",
		fmt.Sprintf("Student: %s", r.Student.Name),
		fmt.Sprintf("Exams: %d", r.TotalExams),
		fmt.Sprintf("Topics: %d", r.Summary.Total),
	}
	for _, c := range model.Categories {
		lines = append(lines, fmt.Sprintf("%s: %d", CategoryLabel(c), r.Summary.Count(c)))
	}
	if r.TotalExams > 0 && r.TotalExams < WarmupExams {
		lines = append(lines, fmt.Sprintf("Warm-up: categories use absolute counts until %d exams are recorded.", WarmupExams))
	}
	if len(r.Exams) > 0 {
		lines = append(lines, fmt.Sprintf("Last net: %s", FormatNet(ExamNet(r.Exams[0]))))
	}
	lines = append(lines, "")
	return writeLines(w, lines)
}

// RenderWeakTopics prints the ranked attention list.
func RenderWeakTopics(w io.Writer, ranked []model.RankedTopic, totalExams int) error {
	if _, err := fmt.Fprintln(w, "Weak Topics"); err != nil {
		return err
	}
	if len(ranked) == 0 {
		_, err := fmt.Fprint(w, "No weak topics. Everything is green.\n\n")
		return err
	}
	headers := []string{"#", "Category", "Lesson", "Topic", "Wrongs", "Exams", "Per exam"}
	rows := make([][]string, 0, len(ranked))
	for i, t := range ranked {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			CategoryLabel(t.Category),
			t.LessonName,
			t.TopicName,
			fmt.Sprintf("%d", t.TotalWrongs),
			fmt.Sprintf("%d", t.ExamCount),
			fmt.Sprintf("%.2f", Ratio(t.TotalWrongs, totalExams)),
		})
	}
	lines := formatTable(headers, rows, map[int]bool{0: true, 4: true, 5: true, 6: true})
	return writeLines(w, append(lines, ""))
}

// RenderTopics prints every catalog topic with its category and progress level.
func RenderTopics(w io.Writer, r Report) error {
	if _, err := fmt.Fprintln(w, "Topics"); err != nil {
		return err
	}
	statuses := r.TopicStatuses()
	if len(statuses) == 0 {
		_, err := fmt.Fprint(w, "No topics in the catalog.\n\n")
		return err
	}
	rows := make([][]string, 0, len(statuses))
	for _, t := range statuses {
		rows = append(rows, []string{
			fmt.Sprintf("%d", t.TopicID),
			t.LessonName,
			t.TopicName,
			CategoryLabel(t.Category),
			fmt.Sprintf("%d", t.TotalWrongs),
			LevelLabel(t.Level),
		})
	}
	lines := formatTable([]string{"ID", "Lesson", "Topic", "Category", "Wrongs", "Level"}, rows, map[int]bool{0: true, 4: true, 5: true})
	return writeLines(w, append(lines, ""))
}

// LevelLabel renders a progress level, or "-" when none is recorded.
func LevelLabel(level int) string {
	if level <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", level)
}

// RenderMistakeDetails prints the exams that contributed to a topic aggregate.
func RenderMistakeDetails(w io.Writer, topic model.AggregatedTopicMistake) error {
	title := fmt.Sprintf("%s / %s: %d wrong in %d exams", topic.LessonName, topic.TopicName, topic.TotalWrongs, topic.ExamCount)
	rows := make([][]string, 0, len(topic.ExamDetails))
	for _, d := range topic.ExamDetails {
		rows = append(rows, []string{d.Date.Format(DateLayout), d.ExamName, fmt.Sprintf("%d", d.WrongCount)})
	}
	lines := formatTable([]string{"Date", "Exam", "Wrong"}, rows, map[int]bool{2: true})
	return writeLines(w, append(append([]string{title}, lines...), ""))
}

// RenderExams prints exams in store order with their net score.
func RenderExams(w io.Writer, exams []model.Exam) error {
	if len(exams) == 0 {
		_, err := fmt.Fprintln(w, "No exams found.")
		return err
	}
	headers := []string{"ID", "Date", "Exam", "Correct", "Wrong", "Empty", "Net", "Level"}
	rows := make([][]string, 0, len(exams))
	for _, e := range exams {
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.ID),
			e.CreatedAt.Format(DateLayout),
			e.Name,
			fmt.Sprintf("%d", e.CorrectCount),
			fmt.Sprintf("%d", e.WrongCount),
			fmt.Sprintf("%d", e.EmptyCount),
			FormatNet(ExamNet(e)),
			fmt.Sprintf("%d", ExamLevel(e)),
		})
	}
	lines := formatTable(headers, rows, map[int]bool{0: true, 3: true, 4: true, 5: true, 6: true, 7: true})
	return writeLines(w, append(lines, ""))
}

// RenderTrend prints the net-score trend chart.
func RenderTrend(w io.Writer, trend []model.NetPoint, window int) error {
	return RenderTrendWithSize(w, trend, window, 0, defaultPlotHeight, false)
}

// RenderTrendWithSize prints the net-score trend sized to a given total width.
// A window above 1 adds a moving-average series.
func RenderTrendWithSize(w io.Writer, trend []model.NetPoint, window, totalWidth, height int, useColor bool) error {
	if len(trend) < MinTrendPoints {
		_, err := fmt.Fprintf(w, "Net Trend\nRecord at least %d exams to see a trend.\n", MinTrendPoints)
		return err
	}
	nets := NetValues(trend)
	series := []Series{{Name: "Net", Values: nets}}
	if window > 1 {
		series = append(series, Series{Name: fmt.Sprintf("Avg(%d)", window), Values: MovingAverage(nets, window)})
	}
	labels := make([]string, len(trend))
	for i, p := range trend {
		labels[i] = p.Label
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotChartWithColor(w, Chart{
		Title:   fmt.Sprintf("Net Trend  %s", Sparkline(nets)),
		Series:  series,
		XLabels: labels,
	}, width, height, useColor)
}

// RenderReport prints every section of a report.
func RenderReport(w io.Writer, r Report, window int) error {
	if err := RenderSummary(w, r); err != nil {
		return err
	}
	if err := RenderWeakTopics(w, r.Ranked, r.TotalExams); err != nil {
		return err
	}
	if err := RenderTopics(w, r); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Exams"); err != nil {
		return err
	}
	if err := RenderExams(w, r.Exams); err != nil {
		return err
	}
	return RenderTrend(w, r.Trend, window)
}

// CategoryLabel is the display name of a category.
func CategoryLabel(c model.Category) string {
	switch c {
	case model.Red:
		return "Red"
	case model.Orange:
		return "Orange"
	case model.Yellow:
		return "Yellow"
	default:
		return "Green"
	}
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
