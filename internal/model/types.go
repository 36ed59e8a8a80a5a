// Package model defines shared data structures.
package model

import (
	"strconv"
	"strings"
	"time"
)

// DashboardConfig defines options for the dashboard and text report.
type DashboardConfig struct {
	StudentID   string
	WeakTop     int
	TrendWindow int
}

// Student owns a set of exams.
type Student struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Topic is a catalog entry under a lesson.
type Topic struct {
	ID       int64
	Name     string
	LessonID int64
}

// Lesson groups topics in catalog order.
type Lesson struct {
	ID     int64
	Name   string
	Topics []Topic
}

// Exam is a single submitted practice exam.
type Exam struct {
	ID           int64
	OwnerID      string
	Name         string
	CorrectCount int
	WrongCount   int
	EmptyCount   int
	CreatedAt    time.Time
}

// TopicMistake is a per-topic wrong count entered with a new exam.
type TopicMistake struct {
	TopicID    int64
	WrongCount int
}

// TopicRef is the topic side of a mistake join.
type TopicRef struct {
	ID         int64
	Name       string
	LessonName string
}

// ExamRef is the exam side of a mistake join.
type ExamRef struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// ExamMistakeRecord is one exam_mistakes row joined with its topic and exam.
// Topic or Exam is nil when the referenced row no longer resolves.
type ExamMistakeRecord struct {
	ID         int64
	ExamID     int64
	TopicID    int64
	WrongCount int
	Topic      *TopicRef
	Exam       *ExamRef
}

// TopicProgress is a student's self-assessed level for one topic, from 1
// (weak) to 4 (strong).
type TopicProgress struct {
	TopicID   int64
	Level     int
	UpdatedAt time.Time
}

// ExamDetail is one contribution to a topic aggregate.
type ExamDetail struct {
	ExamName   string
	Date       time.Time
	WrongCount int
}

// AggregatedTopicMistake sums the mistakes recorded for one topic.
type AggregatedTopicMistake struct {
	TopicID     int64
	TopicName   string
	LessonName  string
	TotalWrongs int
	ExamCount   int
	ExamDetails []ExamDetail
}

// RankedTopic is an aggregate that made it onto the attention list.
type RankedTopic struct {
	AggregatedTopicMistake
	Category Category
}

// Summary holds dashboard counts over the whole topic catalog.
type Summary struct {
	Total  int
	Green  int
	Yellow int
	Orange int
	Red    int
}

// Add increments the bucket for c.
func (s *Summary) Add(c Category) {
	s.Total++
	switch c {
	case Red:
		s.Red++
	case Orange:
		s.Orange++
	case Yellow:
		s.Yellow++
	default:
		s.Green++
	}
}

// Count returns the bucket size for c.
func (s Summary) Count(c Category) int {
	switch c {
	case Red:
		return s.Red
	case Orange:
		return s.Orange
	case Yellow:
		return s.Yellow
	default:
		return s.Green
	}
}

// NetPoint is one point of the net-score trend, oldest first.
type NetPoint struct {
	Label    string
	Net      float64
	ExamName string
}

// ParseCount parses a non-negative count from user input.
// Blank, malformed, or negative input yields 0.
func ParseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
