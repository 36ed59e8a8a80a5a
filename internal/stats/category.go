// Package stats contains the classification and aggregation engine and its
// text renderers.
package stats

import "github.com/verte-zerg/examdash/internal/model"

// WarmupExams is the number of exams below which classification uses absolute
// mistake counts instead of ratios.
const WarmupExams = 3

// Classify maps a topic's mistake count and the student's exam count to a
// mastery category.
//
// With no exams every topic is green. During warm-up (fewer than WarmupExams
// exams) 4+ mistakes is red and 2+ is yellow; there is no orange. Afterwards the
// mistakes-per-exam ratio decides: >= 0.75 red, >= 0.50 orange, >= 0.25 yellow.
// The ratio may exceed 1.
func Classify(mistakes, totalExams int) model.Category {
	if mistakes < 0 {
		mistakes = 0
	}
	if totalExams <= 0 {
		return model.Green
	}
	if totalExams < WarmupExams {
		switch {
		case mistakes >= 4:
			return model.Red
		case mistakes >= 2:
			return model.Yellow
		default:
			return model.Green
		}
	}
	ratio := Ratio(mistakes, totalExams)
	switch {
	case ratio >= 0.75:
		return model.Red
	case ratio >= 0.5:
		return model.Orange
	case ratio >= 0.25:
		return model.Yellow
	default:
		return model.Green
	}
}

// Ratio returns mistakes per exam, or 0 when there are no exams.
func Ratio(mistakes, totalExams int) float64 {
	if totalExams <= 0 {
		return 0
	}
	return float64(mistakes) / float64(totalExams)
}
