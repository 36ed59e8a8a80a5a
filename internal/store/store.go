// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/examdash/internal/logger"
	"github.com/verte-zerg/examdash/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// timeLayout is fixed-width so text ordering in SQLite matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.Local(), nil
}

// Store wraps SQLite access for exam data.
type Store struct {
	db  *sql.DB
	now func() time.Time
	log *logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger reports best-effort cleanup failures to l.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string, opts ...Option) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now, log: logger.Nop()}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			store.log.Warn("close db after failed migration", "path", path, "error", cerr)
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS students (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS lessons (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS topics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			lesson_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			UNIQUE (lesson_id, name)
		);`,
		`CREATE TABLE IF NOT EXISTS exams (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			correct_count INTEGER NOT NULL,
			wrong_count INTEGER NOT NULL,
			empty_count INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS exam_mistakes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			exam_id INTEGER NOT NULL,
			topic_id INTEGER NOT NULL,
			wrong_count INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS student_progress (
			owner_id TEXT NOT NULL,
			topic_id INTEGER NOT NULL,
			level INTEGER NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (owner_id, topic_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_exams_owner_created ON exams(owner_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_exam_mistakes_exam ON exam_mistakes(exam_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateStudent registers a student under a new UUID.
func (s *Store) CreateStudent(ctx context.Context, name string) (model.Student, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Student{}, fmt.Errorf("student name is empty")
	}
	st := model.Student{ID: uuid.NewString(), Name: name, CreatedAt: s.now()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO students (id, name, created_at) VALUES (?, ?, ?)`,
		st.ID, st.Name, formatTime(st.CreatedAt))
	if err != nil {
		return model.Student{}, err
	}
	return st, nil
}

// GetStudent looks a student up by ID.
func (s *Store) GetStudent(ctx context.Context, id string) (model.Student, error) {
	return s.scanStudent(s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM students WHERE id = ?`, id))
}

// FindStudentByName looks a student up by exact name.
func (s *Store) FindStudentByName(ctx context.Context, name string) (model.Student, error) {
	return s.scanStudent(s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM students WHERE name = ?`, strings.TrimSpace(name)))
}

func (s *Store) scanStudent(row *sql.Row) (model.Student, error) {
	var st model.Student
	var createdAt string
	if err := row.Scan(&st.ID, &st.Name, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Student{}, fmt.Errorf("student: %w", ErrNotFound)
		}
		return model.Student{}, err
	}
	parsed, err := parseTime(createdAt)
	if err != nil {
		return model.Student{}, err
	}
	st.CreatedAt = parsed
	return st, nil
}

// ListStudents returns all students ordered by name.
func (s *Store) ListStudents(ctx context.Context) ([]model.Student, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM students ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var students []model.Student
	for rows.Next() {
		var st model.Student
		var createdAt string
		if err := rows.Scan(&st.ID, &st.Name, &createdAt); err != nil {
			return nil, err
		}
		if st.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return students, nil
}

// InsertExam stores an exam and its per-topic mistakes in one transaction.
// Mistakes with a non-positive count are dropped.
func (s *Store) InsertExam(ctx context.Context, exam model.Exam, mistakes []model.TopicMistake) (id int64, err error) {
	if strings.TrimSpace(exam.Name) == "" {
		return 0, fmt.Errorf("exam name is empty")
	}
	if exam.CorrectCount < 0 || exam.WrongCount < 0 || exam.EmptyCount < 0 {
		return 0, fmt.Errorf("exam counts must be >= 0")
	}
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			s.rollback(tx)
		}
	}()

	if err = requireRow(ctx, tx, `SELECT 1 FROM students WHERE id = ?`, exam.OwnerID); err != nil {
		return 0, fmt.Errorf("student %s: %w", exam.OwnerID, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO exams (owner_id, name, correct_count, wrong_count, empty_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		exam.OwnerID,
		strings.TrimSpace(exam.Name),
		exam.CorrectCount,
		exam.WrongCount,
		exam.EmptyCount,
		formatTime(exam.CreatedAt),
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, m := range mistakes {
		if m.WrongCount <= 0 {
			continue
		}
		if err = requireRow(ctx, tx, `SELECT 1 FROM topics WHERE id = ?`, m.TopicID); err != nil {
			return 0, fmt.Errorf("topic %d: %w", m.TopicID, err)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO exam_mistakes (exam_id, topic_id, wrong_count) VALUES (?, ?, ?)`,
			id, m.TopicID, m.WrongCount); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// DeleteExam removes an exam owned by ownerID together with its mistakes.
func (s *Store) DeleteExam(ctx context.Context, ownerID string, examID int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			s.rollback(tx)
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM exams WHERE id = ? AND owner_id = ?`, examID, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("exam %d: %w", examID, ErrNotFound)
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM exam_mistakes WHERE exam_id = ?`, examID); err != nil {
		return err
	}
	return tx.Commit()
}

// ListExams returns a student's exams, newest first.
func (s *Store) ListExams(ctx context.Context, ownerID string) ([]model.Exam, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, correct_count, wrong_count, empty_count, created_at
		 FROM exams
		 WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		var createdAt string
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, &e.CorrectCount, &e.WrongCount, &e.EmptyCount, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		e.CreatedAt = parsed
		exams = append(exams, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exams, nil
}

// ListExamMistakes returns the mistakes of the given exams, newest row first,
// joined with their topic, lesson, and exam. Rows whose topic or exam no
// longer exists come back with a nil link.
func (s *Store) ListExamMistakes(ctx context.Context, examIDs []int64) ([]model.ExamMistakeRecord, error) {
	if len(examIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(examIDs))
	args := make([]any, len(examIDs))
	for i, id := range examIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT m.id, m.exam_id, m.topic_id, m.wrong_count,
			t.id, t.name, l.name,
			e.id, e.name, e.created_at
		FROM exam_mistakes m
		LEFT JOIN topics t ON t.id = m.topic_id
		LEFT JOIN lessons l ON l.id = t.lesson_id
		LEFT JOIN exams e ON e.id = m.exam_id
		WHERE m.exam_id IN (%s)
		ORDER BY m.id DESC`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var result []model.ExamMistakeRecord
	for rows.Next() {
		var rec model.ExamMistakeRecord
		var wrong sql.NullInt64
		var topicID, examID sql.NullInt64
		var topicName, lessonName, examName, examCreated sql.NullString
		if err := rows.Scan(&rec.ID, &rec.ExamID, &rec.TopicID, &wrong,
			&topicID, &topicName, &lessonName,
			&examID, &examName, &examCreated); err != nil {
			return nil, err
		}
		if wrong.Valid {
			rec.WrongCount = int(wrong.Int64)
		}
		if topicID.Valid {
			rec.Topic = &model.TopicRef{ID: topicID.Int64, Name: topicName.String, LessonName: lessonName.String}
		}
		if examID.Valid {
			created, err := parseTime(examCreated.String)
			if err != nil {
				return nil, err
			}
			rec.Exam = &model.ExamRef{ID: examID.Int64, Name: examName.String, CreatedAt: created}
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func requireRow(ctx context.Context, q queryer, query string, args ...any) error {
	var one int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

type rollbacker interface {
	Rollback() error
}

func (s *Store) rollback(tx rollbacker) {
	if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
		s.log.Warn("rollback failed", "error", rerr)
	}
}

func (s *Store) closeRows(rows io.Closer) {
	if cerr := rows.Close(); cerr != nil {
		s.log.Warn("close rows failed", "error", cerr)
	}
}
