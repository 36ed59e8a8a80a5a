package stats

import "github.com/verte-zerg/examdash/internal/model"

// DefaultLessonName labels topics whose lesson did not come through the join.
const DefaultLessonName = "General"

// Aggregation maps topic IDs to their mistake aggregates, keeping the order in
// which topics were first seen.
type Aggregation struct {
	topics []model.AggregatedTopicMistake
	index  map[int64]int
	// Skipped counts records dropped because their topic or exam did not resolve.
	Skipped int
}

// Get returns the aggregate for a topic.
func (a Aggregation) Get(topicID int64) (model.AggregatedTopicMistake, bool) {
	i, ok := a.index[topicID]
	if !ok {
		return model.AggregatedTopicMistake{}, false
	}
	return a.topics[i], true
}

// TotalWrongs returns the summed wrong count for a topic, 0 when absent.
func (a Aggregation) TotalWrongs(topicID int64) int {
	agg, ok := a.Get(topicID)
	if !ok {
		return 0
	}
	return agg.TotalWrongs
}

// Topics returns the aggregates in first-seen order.
func (a Aggregation) Topics() []model.AggregatedTopicMistake {
	out := make([]model.AggregatedTopicMistake, len(a.topics))
	copy(out, a.topics)
	return out
}

// Len returns the number of aggregated topics.
func (a Aggregation) Len() int {
	return len(a.topics)
}

// Aggregate groups mistake records by topic. Records are processed in input
// order, so exam details follow the store's ordering.
func Aggregate(records []model.ExamMistakeRecord) Aggregation {
	agg := Aggregation{index: map[int64]int{}}
	for _, rec := range records {
		if rec.Topic == nil || rec.Exam == nil {
			agg.Skipped++
			continue
		}
		wrong := rec.WrongCount
		if wrong <= 0 {
			wrong = 1
		}
		i, ok := agg.index[rec.TopicID]
		if !ok {
			lesson := rec.Topic.LessonName
			if lesson == "" {
				lesson = DefaultLessonName
			}
			agg.topics = append(agg.topics, model.AggregatedTopicMistake{
				TopicID:    rec.TopicID,
				TopicName:  rec.Topic.Name,
				LessonName: lesson,
			})
			i = len(agg.topics) - 1
			agg.index[rec.TopicID] = i
		}
		entry := &agg.topics[i]
		entry.TotalWrongs += wrong
		entry.ExamDetails = append(entry.ExamDetails, model.ExamDetail{
			ExamName:   rec.Exam.Name,
			Date:       rec.Exam.CreatedAt,
			WrongCount: wrong,
		})
	}
	for i := range agg.topics {
		agg.topics[i].ExamCount = len(agg.topics[i].ExamDetails)
	}
	return agg
}
