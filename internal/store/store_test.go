package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/verte-zerg/examdash/internal/logger"
	"github.com/verte-zerg/examdash/internal/model"
	"github.com/verte-zerg/examdash/internal/stats"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "examdash.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func seedCatalog(t *testing.T, st *Store) []model.Lesson {
	t.Helper()
	ctx := context.Background()
	if _, err := st.ImportCatalog(ctx, []model.Lesson{
		{Name: "Math", Topics: []model.Topic{{Name: "Limits"}, {Name: "Derivatives"}}},
		{Name: "Physics", Topics: []model.Topic{{Name: "Optics"}}},
	}); err != nil {
		t.Fatalf("import catalog: %v", err)
	}
	catalog, err := st.ListCatalog(ctx)
	if err != nil {
		t.Fatalf("list catalog: %v", err)
	}
	return catalog
}

func TestStudents(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	ada, err := st.CreateStudent(ctx, " Ada ")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	if ada.ID == "" || ada.Name != "Ada" {
		t.Fatalf("unexpected student: %+v", ada)
	}
	if _, err := st.CreateStudent(ctx, "Ada"); err == nil {
		t.Fatalf("expected duplicate name error")
	}
	if _, err := st.CreateStudent(ctx, "Bob"); err != nil {
		t.Fatalf("create student: %v", err)
	}

	got, err := st.GetStudent(ctx, ada.ID)
	if err != nil {
		t.Fatalf("get student: %v", err)
	}
	if got.Name != "Ada" || !got.CreatedAt.Equal(ada.CreatedAt.Truncate(time.Nanosecond)) {
		t.Fatalf("unexpected student: %+v", got)
	}
	byName, err := st.FindStudentByName(ctx, "Ada")
	if err != nil || byName.ID != ada.ID {
		t.Fatalf("find by name: %+v %v", byName, err)
	}
	if _, err := st.GetStudent(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	students, err := st.ListStudents(ctx)
	if err != nil {
		t.Fatalf("list students: %v", err)
	}
	if len(students) != 2 || students[0].Name != "Ada" || students[1].Name != "Bob" {
		t.Fatalf("unexpected students: %+v", students)
	}
}

func TestImportCatalogIsIdempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	catalog := seedCatalog(t, st)
	if len(catalog) != 2 || len(catalog[0].Topics) != 2 || len(catalog[1].Topics) != 1 {
		t.Fatalf("unexpected catalog: %+v", catalog)
	}

	res, err := st.ImportCatalog(ctx, []model.Lesson{
		{Name: "Math", Topics: []model.Topic{{Name: "Limits"}, {Name: "Integrals"}}},
	})
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if res.Lessons != 0 || res.Topics != 1 {
		t.Fatalf("unexpected import result: %+v", res)
	}
	catalog, err = st.ListCatalog(ctx)
	if err != nil {
		t.Fatalf("list catalog: %v", err)
	}
	if len(catalog[0].Topics) != 3 || catalog[0].Topics[2].Name != "Integrals" {
		t.Fatalf("unexpected topics: %+v", catalog[0].Topics)
	}
}

func TestAddLessonAndTopic(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	lesson, err := st.AddLesson(ctx, "Chemistry")
	if err != nil {
		t.Fatalf("add lesson: %v", err)
	}
	again, err := st.AddLesson(ctx, "Chemistry")
	if err != nil || again.ID != lesson.ID {
		t.Fatalf("expected existing lesson, got %+v %v", again, err)
	}
	topic, err := st.AddTopic(ctx, lesson.ID, "Bonds")
	if err != nil {
		t.Fatalf("add topic: %v", err)
	}
	if topic.LessonID != lesson.ID {
		t.Fatalf("unexpected topic: %+v", topic)
	}
	if _, err := st.AddTopic(ctx, 999, "Orphan"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.AddLesson(ctx, "  "); err == nil {
		t.Fatalf("expected error for empty lesson name")
	}
}

func TestInsertAndListExams(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	catalog := seedCatalog(t, st)
	ada, err := st.CreateStudent(ctx, "Ada")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	limits := catalog[0].Topics[0].ID
	optics := catalog[1].Topics[0].ID

	base := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := st.InsertExam(ctx, model.Exam{
			OwnerID:      ada.ID,
			Name:         "Mock",
			CorrectCount: 30,
			WrongCount:   5,
			EmptyCount:   5,
			CreatedAt:    base.Add(time.Duration(i) * 500 * time.Millisecond),
		}, []model.TopicMistake{
			{TopicID: limits, WrongCount: i + 1},
			{TopicID: optics, WrongCount: 0},
		})
		if err != nil {
			t.Fatalf("insert exam: %v", err)
		}
		ids = append(ids, id)
	}

	exams, err := st.ListExams(ctx, ada.ID)
	if err != nil {
		t.Fatalf("list exams: %v", err)
	}
	if len(exams) != 3 || exams[0].ID != ids[2] || exams[2].ID != ids[0] {
		t.Fatalf("exams are not newest first: %+v", exams)
	}

	records, err := st.ListExamMistakes(ctx, ids)
	if err != nil {
		t.Fatalf("list mistakes: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected zero-count mistakes to be dropped, got %d records", len(records))
	}
	first := records[0]
	if first.ExamID != ids[2] || first.WrongCount != 3 {
		t.Fatalf("records are not newest first: %+v", first)
	}
	if first.Topic == nil || first.Topic.Name != "Limits" || first.Topic.LessonName != "Math" {
		t.Fatalf("unexpected topic link: %+v", first.Topic)
	}
	if first.Exam == nil || !first.Exam.CreatedAt.Equal(exams[0].CreatedAt) {
		t.Fatalf("unexpected exam link: %+v", first.Exam)
	}

	other, err := st.CreateStudent(ctx, "Bob")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	none, err := st.ListExams(ctx, other.ID)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no exams for another student: %v %v", none, err)
	}
}

func TestInsertExamValidation(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	ada, err := st.CreateStudent(ctx, "Ada")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	if _, err := st.InsertExam(ctx, model.Exam{OwnerID: ada.ID, Name: ""}, nil); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := st.InsertExam(ctx, model.Exam{OwnerID: ada.ID, Name: "X", WrongCount: -1}, nil); err == nil {
		t.Fatalf("expected error for negative count")
	}
	if _, err := st.InsertExam(ctx, model.Exam{OwnerID: "ghost", Name: "X"}, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown owner, got %v", err)
	}
	_, err = st.InsertExam(ctx, model.Exam{OwnerID: ada.ID, Name: "X"}, []model.TopicMistake{{TopicID: 42, WrongCount: 1}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown topic, got %v", err)
	}
	exams, err := st.ListExams(ctx, ada.ID)
	if err != nil || len(exams) != 0 {
		t.Fatalf("failed insert must roll back: %v %v", exams, err)
	}
}

func TestDeleteExamCascades(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	catalog := seedCatalog(t, st)
	ada, err := st.CreateStudent(ctx, "Ada")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	bob, err := st.CreateStudent(ctx, "Bob")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	id, err := st.InsertExam(ctx, model.Exam{OwnerID: ada.ID, Name: "Mock", CorrectCount: 10},
		[]model.TopicMistake{{TopicID: catalog[0].Topics[0].ID, WrongCount: 2}})
	if err != nil {
		t.Fatalf("insert exam: %v", err)
	}
	if err := st.DeleteExam(ctx, bob.ID, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign exam, got %v", err)
	}
	if err := st.DeleteExam(ctx, ada.ID, id); err != nil {
		t.Fatalf("delete exam: %v", err)
	}
	records, err := st.ListExamMistakes(ctx, []int64{id})
	if err != nil {
		t.Fatalf("list mistakes: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected mistakes to be deleted, got %d", len(records))
	}
	if err := st.DeleteExam(ctx, ada.ID, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeletedTopicLeavesDanglingMistake(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	catalog := seedCatalog(t, st)
	ada, err := st.CreateStudent(ctx, "Ada")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	optics := catalog[1].Topics[0].ID
	id, err := st.InsertExam(ctx, model.Exam{OwnerID: ada.ID, Name: "Mock"},
		[]model.TopicMistake{{TopicID: optics, WrongCount: 1}})
	if err != nil {
		t.Fatalf("insert exam: %v", err)
	}
	if err := st.DeleteTopic(ctx, optics); err != nil {
		t.Fatalf("delete topic: %v", err)
	}
	records, err := st.ListExamMistakes(ctx, []int64{id})
	if err != nil {
		t.Fatalf("list mistakes: %v", err)
	}
	if len(records) != 1 || records[0].Topic != nil || records[0].Exam == nil {
		t.Fatalf("expected a record with a nil topic link, got %+v", records)
	}
	if err := st.DeleteTopic(ctx, optics); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListExamMistakesEmpty(t *testing.T) {
	st := openTestStore(t)
	records, err := st.ListExamMistakes(context.Background(), nil)
	if err != nil || records != nil {
		t.Fatalf("expected nil result, got %v %v", records, err)
	}
}

func TestDeletedTopicIDIsNotReused(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	catalog := seedCatalog(t, st)
	ada, err := st.CreateStudent(ctx, "Ada")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	physics := catalog[1].ID
	optics := catalog[1].Topics[0].ID
	id, err := st.InsertExam(ctx, model.Exam{OwnerID: ada.ID, Name: "Mock"},
		[]model.TopicMistake{{TopicID: optics, WrongCount: 5}})
	if err != nil {
		t.Fatalf("insert exam: %v", err)
	}
	if err := st.DeleteTopic(ctx, optics); err != nil {
		t.Fatalf("delete topic: %v", err)
	}
	waves, err := st.AddTopic(ctx, physics, "Waves")
	if err != nil {
		t.Fatalf("add topic: %v", err)
	}
	if waves.ID == optics {
		t.Fatalf("deleted topic id %d was reused", optics)
	}

	records, err := st.ListExamMistakes(ctx, []int64{id})
	if err != nil {
		t.Fatalf("list mistakes: %v", err)
	}
	agg := stats.Aggregate(records)
	if _, ok := agg.Get(waves.ID); ok {
		t.Fatalf("new topic inherited mistakes of the deleted topic")
	}
	if agg.Skipped != 1 || agg.Len() != 0 {
		t.Fatalf("expected 1 skipped record and no aggregates, got skipped=%d len=%d", agg.Skipped, agg.Len())
	}
}

func TestTopicProgress(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	catalog := seedCatalog(t, st)
	ada, err := st.CreateStudent(ctx, "Ada")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	limits := catalog[0].Topics[0].ID
	optics := catalog[1].Topics[0].ID

	if _, err := st.SetTopicProgress(ctx, ada.ID, limits, 2); err != nil {
		t.Fatalf("set progress: %v", err)
	}
	if _, err := st.SetTopicProgress(ctx, ada.ID, limits, 4); err != nil {
		t.Fatalf("replace progress: %v", err)
	}
	if _, err := st.SetTopicProgress(ctx, ada.ID, optics, 1); err != nil {
		t.Fatalf("set progress: %v", err)
	}
	for _, level := range []int{0, 5} {
		if _, err := st.SetTopicProgress(ctx, ada.ID, limits, level); err == nil {
			t.Fatalf("expected range error for level %d", level)
		}
	}
	if _, err := st.SetTopicProgress(ctx, ada.ID, 999, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown topic, got %v", err)
	}
	if _, err := st.SetTopicProgress(ctx, "missing", limits, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown student, got %v", err)
	}

	progress, err := st.ListTopicProgress(ctx, ada.ID)
	if err != nil {
		t.Fatalf("list progress: %v", err)
	}
	if len(progress) != 2 || progress[limits].Level != 4 || progress[optics].Level != 1 {
		t.Fatalf("unexpected progress: %+v", progress)
	}

	if err := st.DeleteTopic(ctx, optics); err != nil {
		t.Fatalf("delete topic: %v", err)
	}
	progress, err = st.ListTopicProgress(ctx, ada.ID)
	if err != nil {
		t.Fatalf("list progress: %v", err)
	}
	if _, ok := progress[optics]; ok || len(progress) != 1 {
		t.Fatalf("expected removed topic to drop its level, got %+v", progress)
	}
	other, err := st.ListTopicProgress(ctx, "someone-else")
	if err != nil || len(other) != 0 {
		t.Fatalf("expected no progress for another student, got %+v %v", other, err)
	}
}

type failingCleanup struct{}

func (failingCleanup) Rollback() error { return errors.New("rollback boom") }
func (failingCleanup) Close() error    { return errors.New("close boom") }

func TestCleanupFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	st, err := Open(filepath.Join(t.TempDir(), "examdash.db"), WithLogger(logger.FromZap(zap.New(core))))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	st.rollback(failingCleanup{})
	st.closeRows(failingCleanup{})
	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(entries))
	}
	if entries[0].Message != "rollback failed" || entries[1].Message != "close rows failed" {
		t.Fatalf("unexpected messages: %q %q", entries[0].Message, entries[1].Message)
	}

	tx, err := st.db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	st.rollback(tx)
	if logs.Len() != 2 {
		t.Fatalf("rollback after commit must not be logged")
	}
}
