package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/examdash/internal/stats"
)

var (
	topicTotal   int
	topicCorrect int
	topicWrong   int
)

func newTopicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topic",
		Short: "Show topics and record progress levels",
	}

	progressCmd := &cobra.Command{
		Use:   "progress TOPIC",
		Short: "Record a topic practice result and store its progress level",
		Long: "Record a topic practice result. The level (1-4) comes from the success rate\n" +
			"net/total, where net = correct - wrong/4: 85% or more is 4, 65% is 3, 45% is 2.\n" +
			"TOPIC is an ID, Lesson/Topic, or a unique topic name.",
		Args: cobra.ExactArgs(1),
		RunE: runTopicProgressCmd,
	}
	progressCmd.Flags().IntVar(&topicTotal, "total", 0, "questions solved")
	progressCmd.Flags().IntVar(&topicCorrect, "correct", 0, "correct answers")
	progressCmd.Flags().IntVar(&topicWrong, "wrong", 0, "wrong answers")
	_ = progressCmd.MarkFlagRequired("total")
	_ = progressCmd.MarkFlagRequired("correct")

	cmd.AddCommand(progressCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List catalog topics with category and progress level",
		Args:  cobra.NoArgs,
		RunE:  runTopicListCmd,
	})
	return cmd
}

func validateTopicResult(total, correct, wrong int) error {
	if total <= 0 {
		return fmt.Errorf("--total must be > 0")
	}
	if correct < 0 || wrong < 0 {
		return fmt.Errorf("--correct and --wrong must be >= 0")
	}
	if correct+wrong > total {
		return fmt.Errorf("--correct plus --wrong exceeds --total (%d)", total)
	}
	return nil
}

func runTopicProgressCmd(cmd *cobra.Command, args []string) error {
	if err := validateTopicResult(topicTotal, topicCorrect, topicWrong); err != nil {
		return err
	}
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
	topic, err := resolveTopic(catalog, args[0])
	if err != nil {
		return err
	}

	level := stats.TopicLevel(topicTotal, topicCorrect, topicWrong)
	if _, err := st.SetTopicProgress(ctx, student.ID, topic.ID, level); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	log.Info("topic progress saved", "student", student.ID, "topic", topic.ID, "level", level)
	rate := stats.SuccessRate(topicCorrect, topicWrong, topicTotal)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: level %d (success %.1f%%).\n", topic.Name, level, rate)
	return err
}

func runTopicListCmd(cmd *cobra.Command, _ []string) error {
	cfg := dashCfg
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	student, err := resolveStudent(cmd.Context(), st, rootStudent)
	if err != nil {
		return err
	}
	cfg.StudentID = student.ID
	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return stats.RenderTopics(cmd.OutOrStdout(), report)
}
