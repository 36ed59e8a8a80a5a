package store

import (
	"context"
	"fmt"

	"github.com/verte-zerg/examdash/internal/model"
)

// Progress levels run from MinProgressLevel (weak) to MaxProgressLevel (strong).
const (
	MinProgressLevel = 1
	MaxProgressLevel = 4
)

// SetTopicProgress records a student's level for a topic, replacing any
// earlier level.
func (s *Store) SetTopicProgress(ctx context.Context, ownerID string, topicID int64, level int) (model.TopicProgress, error) {
	if level < MinProgressLevel || level > MaxProgressLevel {
		return model.TopicProgress{}, fmt.Errorf("progress level %d out of range %d-%d", level, MinProgressLevel, MaxProgressLevel)
	}
	if err := requireRow(ctx, s.db, `SELECT 1 FROM students WHERE id = ?`, ownerID); err != nil {
		return model.TopicProgress{}, fmt.Errorf("student %s: %w", ownerID, err)
	}
	if err := requireRow(ctx, s.db, `SELECT 1 FROM topics WHERE id = ?`, topicID); err != nil {
		return model.TopicProgress{}, fmt.Errorf("topic %d: %w", topicID, err)
	}
	p := model.TopicProgress{TopicID: topicID, Level: level, UpdatedAt: s.now()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO student_progress (owner_id, topic_id, level, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (owner_id, topic_id) DO UPDATE SET
			level = excluded.level,
			updated_at = excluded.updated_at`,
		ownerID, topicID, level, formatTime(p.UpdatedAt))
	if err != nil {
		return model.TopicProgress{}, err
	}
	return p, nil
}

// ListTopicProgress returns a student's progress levels keyed by topic id.
// Levels of removed topics are not returned.
func (s *Store) ListTopicProgress(ctx context.Context, ownerID string) (map[int64]model.TopicProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.topic_id, p.level, p.updated_at
		 FROM student_progress p
		 JOIN topics t ON t.id = p.topic_id
		 WHERE p.owner_id = ?`, ownerID)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	out := map[int64]model.TopicProgress{}
	for rows.Next() {
		var p model.TopicProgress
		var updated string
		if err := rows.Scan(&p.TopicID, &p.Level, &updated); err != nil {
			return nil, err
		}
		if p.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		out[p.TopicID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
