package stats

import (
	"fmt"
	"math"

	"github.com/verte-zerg/examdash/internal/model"
)

// WrongsPerCorrect is how many wrong answers cancel one correct answer.
const WrongsPerCorrect = 4

// TrendLabelLayout formats trend labels as day.month without padding.
const TrendLabelLayout = "2.1"

// MinTrendPoints is the number of exams needed before a trend is drawn.
const MinTrendPoints = 2

// Net returns the unrounded net score of an exam.
func Net(correct, wrong int) float64 {
	return float64(correct) - float64(wrong)/WrongsPerCorrect
}

// RoundNet rounds a net score to two decimals for display.
func RoundNet(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatNet renders a net score with two decimals.
func FormatNet(v float64) string {
	return fmt.Sprintf("%.2f", RoundNet(v))
}

// ExamNet returns the unrounded net score of an exam record.
func ExamNet(e model.Exam) float64 {
	return Net(e.CorrectCount, e.WrongCount)
}

// NetSeries converts exams in store order (newest first) into a trend series
// ordered oldest first.
func NetSeries(exams []model.Exam) []model.NetPoint {
	out := make([]model.NetPoint, 0, len(exams))
	for i := len(exams) - 1; i >= 0; i-- {
		e := exams[i]
		out = append(out, model.NetPoint{
			Label:    e.CreatedAt.Format(TrendLabelLayout),
			Net:      RoundNet(ExamNet(e)),
			ExamName: e.Name,
		})
	}
	return out
}

// NetValues extracts the net scores of a trend series.
func NetValues(points []model.NetPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Net
	}
	return values
}

// SuccessRate returns net/total as a percentage, or 0 when net is not positive.
func SuccessRate(correct, wrong, total int) float64 {
	net := Net(correct, wrong)
	if net <= 0 || total <= 0 {
		return 0
	}
	return net / float64(total) * 100
}

// ProgressLevel maps a success rate to a level from 1 (weak) to 4 (strong).
func ProgressLevel(rate float64) int {
	switch {
	case rate >= 85:
		return 4
	case rate >= 65:
		return 3
	case rate >= 45:
		return 2
	default:
		return 1
	}
}

// TopicLevel returns the progress level for a topic practice run of total
// questions.
func TopicLevel(total, correct, wrong int) int {
	return ProgressLevel(SuccessRate(correct, wrong, total))
}

// ExamLevel returns the progress level of an exam, counting empty answers
// towards the question total.
func ExamLevel(e model.Exam) int {
	total := e.CorrectCount + e.WrongCount + e.EmptyCount
	return ProgressLevel(SuccessRate(e.CorrectCount, e.WrongCount, total))
}
