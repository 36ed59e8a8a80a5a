package stats

import "github.com/verte-zerg/examdash/internal/model"

// Summarize classifies every topic in the catalog, including topics without
// recorded mistakes, and counts them per category.
func Summarize(catalog []model.Lesson, agg Aggregation, totalExams int) model.Summary {
	var s model.Summary
	for _, lesson := range catalog {
		for _, topic := range lesson.Topics {
			s.Add(Classify(agg.TotalWrongs(topic.ID), totalExams))
		}
	}
	return s
}

// TopicCategories returns the category of every catalog topic keyed by topic ID.
func TopicCategories(catalog []model.Lesson, agg Aggregation, totalExams int) map[int64]model.Category {
	out := map[int64]model.Category{}
	for _, lesson := range catalog {
		for _, topic := range lesson.Topics {
			out[topic.ID] = Classify(agg.TotalWrongs(topic.ID), totalExams)
		}
	}
	return out
}
