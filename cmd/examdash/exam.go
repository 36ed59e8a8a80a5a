package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/examdash/internal/entry"
	"github.com/verte-zerg/examdash/internal/model"
	"github.com/verte-zerg/examdash/internal/stats"
)

const examDateLayout = "2006-01-02"

var (
	examName     string
	examCorrect  int
	examWrong    int
	examEmpty    int
	examDate     string
	examMistakes []string
)

func newExamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exam",
		Short: "Record and manage exams",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record an exam (interactive without --name)",
		Args:  cobra.NoArgs,
		RunE:  runExamAddCmd,
	}
	addCmd.Flags().StringVar(&examName, "name", "", "exam name")
	addCmd.Flags().IntVar(&examCorrect, "correct", 0, "correct answers")
	addCmd.Flags().IntVar(&examWrong, "wrong", 0, "wrong answers")
	addCmd.Flags().IntVar(&examEmpty, "empty", 0, "empty answers")
	addCmd.Flags().StringVar(&examDate, "date", "", "exam date (YYYY-MM-DD, default: now)")
	addCmd.Flags().StringArrayVar(&examMistakes, "mistake", nil, "wrong answers per topic as TOPIC=N (repeatable)")

	cmd.AddCommand(addCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List exams, newest first",
		Args:  cobra.NoArgs,
		RunE:  runExamListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete an exam and its topic mistakes",
		Args:  cobra.ExactArgs(1),
		RunE:  runExamDeleteCmd,
	})
	return cmd
}

func runExamAddCmd(cmd *cobra.Command, _ []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := cmd.Context()
	student, err := resolveStudent(ctx, st, rootStudent)
	if err != nil {
		return err
	}
	catalog, err := st.ListCatalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	var exam model.Exam
	var mistakes []model.TopicMistake
	if strings.TrimSpace(examName) == "" {
		form := entry.NewModel(student.ID, catalog)
		if _, err := tea.NewProgram(form, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("failed to run entry form: %w", err)
		}
		if !form.Submitted() {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return err
		}
		exam = form.Result().Exam
		mistakes = form.Result().Mistakes
	} else {
		exam = model.Exam{
			OwnerID:      student.ID,
			Name:         examName,
			CorrectCount: examCorrect,
			WrongCount:   examWrong,
			EmptyCount:   examEmpty,
		}
		mistakes, err = parseMistakes(catalog, examMistakes)
		if err != nil {
			return err
		}
	}
	if examDate != "" {
		created, err := time.ParseInLocation(examDateLayout, examDate, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date value: %w", err)
		}
		exam.CreatedAt = created
	}

	id, err := st.InsertExam(ctx, exam, mistakes)
	if err != nil {
		return fmt.Errorf("failed to save exam: %w", err)
	}
	log.Info("exam recorded", "student", student.ID, "exam", id, "mistakes", len(mistakes))
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved exam %d (net %s).\n", id, stats.FormatNet(stats.Net(exam.CorrectCount, exam.WrongCount)))
	return err
}

// parseMistakes turns TOPIC=N values into topic mistakes. Malformed counts
// read as 0 and are dropped; repeated topics are summed.
func parseMistakes(catalog []model.Lesson, values []string) ([]model.TopicMistake, error) {
	var out []model.TopicMistake
	index := map[int64]int{}
	for _, value := range values {
		i := strings.LastIndex(value, "=")
		if i < 0 {
			return nil, fmt.Errorf("invalid --mistake %q (use TOPIC=N)", value)
		}
		topic, err := resolveTopic(catalog, value[:i])
		if err != nil {
			return nil, err
		}
		n := model.ParseCount(value[i+1:])
		if n == 0 {
			log.Warn("ignoring mistake without a positive count", "value", value)
			continue
		}
		if j, ok := index[topic.ID]; ok {
			out[j].WrongCount += n
			continue
		}
		index[topic.ID] = len(out)
		out = append(out, model.TopicMistake{TopicID: topic.ID, WrongCount: n})
	}
	return out, nil
}

func runExamListCmd(cmd *cobra.Command, _ []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	student, err := resolveStudent(cmd.Context(), st, rootStudent)
	if err != nil {
		return err
	}
	exams, err := st.ListExams(cmd.Context(), student.ID)
	if err != nil {
		return fmt.Errorf("failed to list exams: %w", err)
	}
	return stats.RenderExams(cmd.OutOrStdout(), exams)
}

func runExamDeleteCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid exam ID %q", args[0])
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	student, err := resolveStudent(cmd.Context(), st, rootStudent)
	if err != nil {
		return err
	}
	if err := st.DeleteExam(cmd.Context(), student.ID, id); err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}
	log.Info("exam deleted", "student", student.ID, "exam", id)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted exam %d.\n", id)
	return err
}
