package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/examdash/internal/model"
)

// Source provides the raw records a report is built from.
type Source interface {
	GetStudent(ctx context.Context, id string) (model.Student, error)
	ListCatalog(ctx context.Context) ([]model.Lesson, error)
	ListExams(ctx context.Context, ownerID string) ([]model.Exam, error)
	ListExamMistakes(ctx context.Context, examIDs []int64) ([]model.ExamMistakeRecord, error)
	ListTopicProgress(ctx context.Context, ownerID string) (map[int64]model.TopicProgress, error)
}

// Report is a dashboard snapshot. It is rebuilt wholesale on every refresh and
// never updated in place.
type Report struct {
	Student     model.Student
	Catalog     []model.Lesson
	Exams       []model.Exam
	Aggregation Aggregation
	Summary     model.Summary
	Categories  map[int64]model.Category
	Ranked      []model.RankedTopic
	Trend       []model.NetPoint
	Progress    map[int64]model.TopicProgress
	TotalExams  int
	GeneratedAt time.Time
}

// SkippedMistakes returns how many mistake records had a dangling topic or exam.
func (r Report) SkippedMistakes() int {
	return r.Aggregation.Skipped
}

// BuildReport loads a student's records and runs the classification engine.
func BuildReport(ctx context.Context, src Source, cfg model.DashboardConfig) (Report, error) {
	student, err := src.GetStudent(ctx, cfg.StudentID)
	if err != nil {
		return Report{}, fmt.Errorf("load student: %w", err)
	}
	catalog, err := src.ListCatalog(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load catalog: %w", err)
	}
	exams, err := src.ListExams(ctx, student.ID)
	if err != nil {
		return Report{}, fmt.Errorf("load exams: %w", err)
	}
	progress, err := src.ListTopicProgress(ctx, student.ID)
	if err != nil {
		return Report{}, fmt.Errorf("load topic progress: %w", err)
	}
	var records []model.ExamMistakeRecord
	if ids := examIDs(exams); len(ids) > 0 {
		records, err = src.ListExamMistakes(ctx, ids)
		if err != nil {
			return Report{}, fmt.Errorf("load exam mistakes: %w", err)
		}
	}

	totalExams := len(exams)
	agg := Aggregate(records)
	return Report{
		Student:     student,
		Catalog:     catalog,
		Exams:       exams,
		Aggregation: agg,
		Summary:     Summarize(catalog, agg, totalExams),
		Categories:  TopicCategories(catalog, agg, totalExams),
		Ranked:      TopRanked(Rank(agg, totalExams), cfg.WeakTop),
		Trend:       NetSeries(exams),
		Progress:    progress,
		TotalExams:  totalExams,
		GeneratedAt: time.Now(),
	}, nil
}

// TopicStatus is one catalog topic with its category and progress level.
// Level is 0 when the student has not recorded one.
type TopicStatus struct {
	TopicID     int64
	LessonName  string
	TopicName   string
	Category    model.Category
	TotalWrongs int
	Level       int
}

// TopicStatuses lists every catalog topic in catalog order.
func (r Report) TopicStatuses() []TopicStatus {
	var out []TopicStatus
	for _, lesson := range r.Catalog {
		for _, topic := range lesson.Topics {
			out = append(out, TopicStatus{
				TopicID:     topic.ID,
				LessonName:  lesson.Name,
				TopicName:   topic.Name,
				Category:    r.Categories[topic.ID],
				TotalWrongs: r.Aggregation.TotalWrongs(topic.ID),
				Level:       r.Progress[topic.ID].Level,
			})
		}
	}
	return out
}

func examIDs(exams []model.Exam) []int64 {
	ids := make([]int64, len(exams))
	for i, e := range exams {
		ids[i] = e.ID
	}
	return ids
}
