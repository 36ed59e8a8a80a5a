package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/examdash/internal/model"
)

// ImportResult counts rows created by ImportCatalog.
type ImportResult struct {
	Lessons int
	Topics  int
}

// AddLesson creates a lesson, or returns the existing one with the same name.
func (s *Store) AddLesson(ctx context.Context, name string) (model.Lesson, error) {
	lesson, _, err := s.ensureLesson(ctx, s.db, name)
	return lesson, err
}

// AddTopic creates a topic under a lesson, or returns the existing one.
func (s *Store) AddTopic(ctx context.Context, lessonID int64, name string) (model.Topic, error) {
	if err := requireRow(ctx, s.db, `SELECT 1 FROM lessons WHERE id = ?`, lessonID); err != nil {
		return model.Topic{}, fmt.Errorf("lesson %d: %w", lessonID, err)
	}
	topic, _, err := s.ensureTopic(ctx, s.db, lessonID, name)
	return topic, err
}

// DeleteTopic removes a topic and its progress levels from the catalog.
// Mistakes recorded against it stay in place and are skipped during
// aggregation. Topic ids are never reused, so those mistakes cannot attach to
// a later topic.
func (s *Store) DeleteTopic(ctx context.Context, topicID int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			s.rollback(tx)
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM topics WHERE id = ?`, topicID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("topic %d: %w", topicID, ErrNotFound)
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM student_progress WHERE topic_id = ?`, topicID); err != nil {
		return err
	}
	return tx.Commit()
}

// ImportCatalog merges lessons and their topics into the catalog by name.
func (s *Store) ImportCatalog(ctx context.Context, lessons []model.Lesson) (result ImportResult, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, err
	}
	defer func() {
		if err != nil {
			s.rollback(tx)
		}
	}()

	for _, l := range lessons {
		lesson, created, lerr := s.ensureLesson(ctx, tx, l.Name)
		if lerr != nil {
			err = lerr
			return ImportResult{}, err
		}
		if created {
			result.Lessons++
		}
		for _, t := range l.Topics {
			_, created, terr := s.ensureTopic(ctx, tx, lesson.ID, t.Name)
			if terr != nil {
				err = terr
				return ImportResult{}, err
			}
			if created {
				result.Topics++
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

// ListCatalog returns every lesson with its topics in creation order.
func (s *Store) ListCatalog(ctx context.Context) ([]model.Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT l.id, l.name, t.id, t.name
		 FROM lessons l
		 LEFT JOIN topics t ON t.lesson_id = l.id
		 ORDER BY l.id, t.id`)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var lessons []model.Lesson
	for rows.Next() {
		var lessonID int64
		var lessonName string
		var topicID sql.NullInt64
		var topicName sql.NullString
		if err := rows.Scan(&lessonID, &lessonName, &topicID, &topicName); err != nil {
			return nil, err
		}
		if len(lessons) == 0 || lessons[len(lessons)-1].ID != lessonID {
			lessons = append(lessons, model.Lesson{ID: lessonID, Name: lessonName})
		}
		if topicID.Valid {
			last := &lessons[len(lessons)-1]
			last.Topics = append(last.Topics, model.Topic{ID: topicID.Int64, Name: topicName.String, LessonID: lessonID})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lessons, nil
}

type execQueryer interface {
	queryer
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) ensureLesson(ctx context.Context, q execQueryer, name string) (model.Lesson, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Lesson{}, false, fmt.Errorf("lesson name is empty")
	}
	lesson := model.Lesson{Name: name}
	err := q.QueryRowContext(ctx, `SELECT id FROM lessons WHERE name = ?`, name).Scan(&lesson.ID)
	if err == nil {
		return lesson, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Lesson{}, false, err
	}
	res, err := q.ExecContext(ctx, `INSERT INTO lessons (name) VALUES (?)`, name)
	if err != nil {
		return model.Lesson{}, false, err
	}
	if lesson.ID, err = res.LastInsertId(); err != nil {
		return model.Lesson{}, false, err
	}
	return lesson, true, nil
}

func (s *Store) ensureTopic(ctx context.Context, q execQueryer, lessonID int64, name string) (model.Topic, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Topic{}, false, fmt.Errorf("topic name is empty")
	}
	topic := model.Topic{Name: name, LessonID: lessonID}
	err := q.QueryRowContext(ctx,
		`SELECT id FROM topics WHERE lesson_id = ? AND name = ?`, lessonID, name).Scan(&topic.ID)
	if err == nil {
		return topic, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Topic{}, false, err
	}
	res, err := q.ExecContext(ctx, `INSERT INTO topics (lesson_id, name) VALUES (?, ?)`, lessonID, name)
	if err != nil {
		return model.Topic{}, false, err
	}
	if topic.ID, err = res.LastInsertId(); err != nil {
		return model.Topic{}, false, err
	}
	return topic, true, nil
}
