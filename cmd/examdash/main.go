// Package main provides the CLI entrypoint for examdash.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/examdash/internal/config"
	"github.com/verte-zerg/examdash/internal/dashboard"
	"github.com/verte-zerg/examdash/internal/logger"
	"github.com/verte-zerg/examdash/internal/model"
	"github.com/verte-zerg/examdash/internal/stats"
	"github.com/verte-zerg/examdash/internal/store"
)

const (
	defaultWeakTop     = 10
	defaultTrendWindow = 3
)

var (
	rootDB          string
	rootStudent     string
	rootWeakTop     int
	rootTrendWindow int
	rootLog         string
	rootLogFile     string

	log     = logger.Nop()
	dashCfg model.DashboardConfig
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	env := config.LoadEnv()
	defaultDB := config.DefaultDBPath()
	if env.DB != "" {
		defaultDB = env.DB
	}
	defaultLog := logger.ModeWarn
	if env.Log != "" {
		defaultLog = env.Log
	}

	rootCmd := &cobra.Command{
		Use:               "examdash",
		Short:             "Exam mistake dashboard",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: prepare,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			log.Sync()
		},
		RunE: runDashCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootDB, "db", defaultDB, "path to the SQLite database")
	flags.StringVar(&rootStudent, "student", env.Student, "student name or ID")
	flags.IntVar(&rootWeakTop, "weak-top", defaultWeakTop, "number of weak topics to list (0 = all)")
	flags.IntVar(&rootTrendWindow, "trend-window", defaultTrendWindow, "moving average window for the net trend")
	flags.StringVar(&rootLog, "log", defaultLog, "log mode: off, warn, dev, prod")
	flags.StringVar(&rootLogFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newDashCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newStudentCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newExamCmd())
	rootCmd.AddCommand(newTopicCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// prepare runs before every command except config, which must work even when
// the file holds invalid values.
func prepare(cmd *cobra.Command, args []string) error {
	if err := setupLogger(cmd, args); err != nil {
		return err
	}
	cfg, err := loadDashboardConfig(cmd)
	if err != nil {
		return err
	}
	dashCfg = cfg
	return nil
}

func setupLogger(_ *cobra.Command, _ []string) error {
	l, err := logger.New(rootLog, rootLogFile)
	if err != nil {
		return err
	}
	log = l
	return nil
}

// tuiLogger keeps stderr clean while a full-screen program owns the terminal.
func tuiLogger() *logger.Logger {
	if rootLogFile == "" {
		return logger.Nop()
	}
	return log
}

// loadDashboardConfig merges the config file into unchanged flags and
// validates the result.
func loadDashboardConfig(cmd *cobra.Command) (model.DashboardConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.DashboardConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &rootDB, fileCfg.Dashboard.DB)
	applyStringConfig(cmd, "student", &rootStudent, fileCfg.Dashboard.Student)
	applyIntConfig(cmd, "weak-top", &rootWeakTop, fileCfg.Dashboard.WeakTop)
	applyIntConfig(cmd, "trend-window", &rootTrendWindow, fileCfg.Dashboard.TrendWindow)

	cfg := model.DashboardConfig{
		WeakTop:     rootWeakTop,
		TrendWindow: rootTrendWindow,
	}
	if err := validateConfig(cfg); err != nil {
		return model.DashboardConfig{}, err
	}
	return cfg, nil
}

func openStore() (*store.Store, func(), error) {
	return openStoreWith(log)
}

func openStoreWith(l *logger.Logger) (*store.Store, func(), error) {
	if strings.TrimSpace(rootDB) == "" {
		return nil, nil, fmt.Errorf("--db must not be empty")
	}
	st, err := store.Open(rootDB, store.WithLogger(l))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closeFn := func() {
		if cerr := st.Close(); cerr != nil {
			l.Error("failed to close db", "path", rootDB, "error", cerr)
		}
	}
	return st, closeFn, nil
}

// resolveStudent accepts a student ID or name. With no selection it falls back
// to the only registered student.
func resolveStudent(ctx context.Context, st *store.Store, ref string) (model.Student, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		students, err := st.ListStudents(ctx)
		if err != nil {
			return model.Student{}, err
		}
		switch len(students) {
		case 0:
			return model.Student{}, fmt.Errorf("no students yet; create one with: examdash student add NAME")
		case 1:
			return students[0], nil
		default:
			return model.Student{}, fmt.Errorf("several students exist; pick one with --student")
		}
	}
	student, err := st.GetStudent(ctx, ref)
	if err == nil {
		return student, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.Student{}, err
	}
	student, err = st.FindStudentByName(ctx, ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Student{}, fmt.Errorf("unknown student %q: %w", ref, err)
		}
		return model.Student{}, err
	}
	return student, nil
}

func newDashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Open the dashboard",
		Args:  cobra.NoArgs,
		RunE:  runDashCmd,
	}
}

func runDashCmd(cmd *cobra.Command, _ []string) error {
	cfg := dashCfg
	st, closeStore, err := openStoreWith(tuiLogger())
	if err != nil {
		return err
	}
	defer closeStore()

	student, err := resolveStudent(cmd.Context(), st, rootStudent)
	if err != nil {
		return err
	}
	cfg.StudentID = student.ID
	log.Debug("opening dashboard", "student", student.ID, "db", rootDB)

	model := dashboard.NewModel(st, cfg, tuiLogger())
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard as plain text",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
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
	if skipped := report.SkippedMistakes(); skipped > 0 {
		log.Warn("skipped mistakes with a missing topic or exam", "student", student.ID, "count", skipped)
	}
	if err := stats.RenderReport(cmd.OutOrStdout(), report, cfg.TrendWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "config",
		Short:             "Create/open config file",
		Args:              cobra.NoArgs,
		PersistentPreRunE: setupLogger,
		RunE:              runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# examdash configuration
# Uncomment a value to enable it. CLI flags override config values.

[dashboard]
# student = "Ada"          # Student name or ID
# weak-top = %d            # Number of weak topics to list (0 = all)
# trend-window = %d         # Moving average window for the net trend
# db = %q
`,
		defaultWeakTop,
		defaultTrendWindow,
		config.DefaultDBPath(),
	)
}

func validateConfig(cfg model.DashboardConfig) error {
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.TrendWindow < 1 {
		return fmt.Errorf("--trend-window must be >= 1")
	}
	return nil
}
