package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/examdash/internal/config"
	"github.com/verte-zerg/examdash/internal/model"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage lessons and topics",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Import lessons and topics from a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogImportCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List lessons and topics with their IDs",
		Args:  cobra.NoArgs,
		RunE:  runCatalogListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove-topic ID",
		Short: "Remove a topic; recorded mistakes on it are ignored afterwards",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogRemoveTopicCmd,
	})
	return cmd
}

func runCatalogImportCmd(cmd *cobra.Command, args []string) error {
	lessons, err := config.LoadCatalog(args[0])
	if err != nil {
		return err
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := st.ImportCatalog(cmd.Context(), lessons)
	if err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}
	log.Info("catalog imported", "file", args[0], "lessons", res.Lessons, "topics", res.Topics)
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %d new lessons and %d new topics.\n", res.Lessons, res.Topics); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runCatalogListCmd(cmd *cobra.Command, _ []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	catalog, err := st.ListCatalog(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list catalog: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(catalog) == 0 {
		_, err := fmt.Fprintln(out, "Catalog is empty. Import one with: examdash catalog import FILE")
		return err
	}
	for _, lesson := range catalog {
		if _, err := fmt.Fprintln(out, lesson.Name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		for _, topic := range lesson.Topics {
			if _, err := fmt.Fprintf(out, "  %4d  %s\n", topic.ID, topic.Name); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

func runCatalogRemoveTopicCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid topic ID %q", args[0])
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := st.DeleteTopic(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to remove topic: %w", err)
	}
	log.Info("topic removed", "topic", id)
	return nil
}

// resolveTopic finds a topic by ID, by "Lesson/Topic", or by a topic name that
// is unique across the catalog.
func resolveTopic(catalog []model.Lesson, ref string) (model.Topic, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, lesson := range catalog {
			for _, topic := range lesson.Topics {
				if topic.ID == id {
					return topic, nil
				}
			}
		}
		return model.Topic{}, fmt.Errorf("unknown topic ID %d", id)
	}
	lessonName, topicName := "", ref
	if i := strings.Index(ref, "/"); i >= 0 {
		lessonName = strings.TrimSpace(ref[:i])
		topicName = strings.TrimSpace(ref[i+1:])
	}
	var matches []model.Topic
	for _, lesson := range catalog {
		if lessonName != "" && !strings.EqualFold(lesson.Name, lessonName) {
			continue
		}
		for _, topic := range lesson.Topics {
			if strings.EqualFold(topic.Name, topicName) {
				matches = append(matches, topic)
			}
		}
	}
	switch len(matches) {
	case 0:
		return model.Topic{}, fmt.Errorf("unknown topic %q", ref)
	case 1:
		return matches[0], nil
	default:
		return model.Topic{}, fmt.Errorf("topic %q is ambiguous; use Lesson/Topic or the topic ID", ref)
	}
}
