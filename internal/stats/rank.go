package stats

import (
	"sort"

	"github.com/verte-zerg/examdash/internal/model"
)

// Rank returns the aggregated topics that are not green, ordered by total
// wrongs descending. Ties keep first-seen order.
func Rank(agg Aggregation, totalExams int) []model.RankedTopic {
	ranked := make([]model.RankedTopic, 0, agg.Len())
	for _, topic := range agg.topics {
		category := Classify(topic.TotalWrongs, totalExams)
		if category == model.Green {
			continue
		}
		ranked = append(ranked, model.RankedTopic{
			AggregatedTopicMistake: topic,
			Category:               category,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalWrongs > ranked[j].TotalWrongs
	})
	return ranked
}

// TopRanked returns the first n ranked topics. n <= 0 keeps all of them.
func TopRanked(ranked []model.RankedTopic, n int) []model.RankedTopic {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
