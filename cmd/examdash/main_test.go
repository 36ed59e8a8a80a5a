package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/examdash/internal/config"
	"github.com/verte-zerg/examdash/internal/model"
)

type cliEnv struct {
	t      *testing.T
	dbPath string
	cfgDir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv(config.EnvDB, "")
	t.Setenv(config.EnvStudent, "")
	t.Setenv(config.EnvLog, "")
	return &cliEnv{t: t, dbPath: filepath.Join(dir, "examdash.db"), cfgDir: filepath.Join(dir, "config", "examdash")}
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--db", e.dbPath, "--log", "off"))
	err := cmd.Execute()
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

func (e *cliEnv) writeFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.cfgDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		e.t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const testCatalog = `[[lesson]]
name = "Math"
topics = ["Limits", "Derivatives"]

[[lesson]]
name = "Physics"
topics = ["Optics"]
`

func TestCLIWorkflow(t *testing.T) {
	e := newCLIEnv(t)

	if out := e.mustRun("student", "add", "Ada"); !strings.Contains(out, "Created student Ada") {
		t.Fatalf("unexpected output: %s", out)
	}
	catalogPath := e.writeFile("catalog.toml", testCatalog)
	if out := e.mustRun("catalog", "import", catalogPath); !strings.Contains(out, "Imported 2 new lessons and 3 new topics.") {
		t.Fatalf("unexpected import output: %s", out)
	}
	if out := e.mustRun("catalog", "list"); !strings.Contains(out, "Derivatives") {
		t.Fatalf("unexpected catalog output: %s", out)
	}

	out := e.mustRun("exam", "add", "--name", "Mock 1", "--correct", "30", "--wrong", "4", "--empty", "6",
		"--date", "2024-03-01", "--mistake", "Limits=3", "--mistake", "Math/Derivatives=1")
	if !strings.Contains(out, "Saved exam 1 (net 29.00).") {
		t.Fatalf("unexpected exam output: %s", out)
	}
	e.mustRun("exam", "add", "--name", "Mock 2", "--correct", "32", "--wrong", "2",
		"--date", "2024-03-08", "--mistake", "Limits=2")

	report := e.mustRun("report")
	for _, want := range []string{"Student: Ada", "Exams: 2", "Limits", "Red", "Net Trend", "Mock 2"} {
		if !strings.Contains(report, want) {
			t.Fatalf("expected %q in report:\n%s", want, report)
		}
	}

	if out := e.mustRun("exam", "list"); !strings.Contains(out, "Mock 1") || !strings.Contains(out, "01.03.2024") {
		t.Fatalf("unexpected exam list: %s", out)
	}
	if out := e.mustRun("exam", "delete", "1"); !strings.Contains(out, "Deleted exam 1.") {
		t.Fatalf("unexpected delete output: %s", out)
	}
	if _, err := e.run("exam", "delete", "1"); err == nil {
		t.Fatalf("expected error deleting a missing exam")
	}
	report = e.mustRun("report")
	if !strings.Contains(report, "Exams: 1") {
		t.Fatalf("expected one exam after delete:\n%s", report)
	}
}

func TestCLIStudentSelection(t *testing.T) {
	e := newCLIEnv(t)
	if _, err := e.run("report"); err == nil || !strings.Contains(err.Error(), "no students yet") {
		t.Fatalf("expected missing student error, got %v", err)
	}
	e.mustRun("student", "add", "Ada")
	e.mustRun("student", "add", "Bob")
	if _, err := e.run("report"); err == nil || !strings.Contains(err.Error(), "several students") {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
	if out := e.mustRun("report", "--student", "Bob"); !strings.Contains(out, "Student: Bob") {
		t.Fatalf("unexpected report: %s", out)
	}
	if _, err := e.run("report", "--student", "Carol"); err == nil {
		t.Fatalf("expected unknown student error")
	}
}

func TestCLIConfigFileAndFlags(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun("student", "add", "Ada")
	e.writeFile("config.toml", "[dashboard]\nweak-top = -1\n")
	if _, err := e.run("report"); err == nil || !strings.Contains(err.Error(), "--weak-top must be >= 0") {
		t.Fatalf("expected config validation error, got %v", err)
	}
	if _, err := e.run("report", "--weak-top", "2"); err != nil {
		t.Fatalf("flag must override config file: %v", err)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	if cfg.Dashboard.WeakTop != nil || cfg.Dashboard.DB != nil {
		t.Fatalf("template values must be commented out: %+v", cfg.Dashboard)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(model.DashboardConfig{WeakTop: 0, TrendWindow: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validateConfig(model.DashboardConfig{WeakTop: 0, TrendWindow: 0}); err == nil {
		t.Fatalf("expected trend window error")
	}
}

func TestParseMistakes(t *testing.T) {
	catalog := []model.Lesson{
		{ID: 1, Name: "Math", Topics: []model.Topic{{ID: 11, Name: "Limits"}, {ID: 12, Name: "Graphs"}}},
		{ID: 2, Name: "Physics", Topics: []model.Topic{{ID: 21, Name: "Graphs"}}},
	}
	got, err := parseMistakes(catalog, []string{"Limits=2", "11=1", "Physics/Graphs=3", "Math/Graphs=abc"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []model.TopicMistake{{TopicID: 11, WrongCount: 3}, {TopicID: 21, WrongCount: 3}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if _, err := parseMistakes(catalog, []string{"Graphs=1"}); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
	if _, err := parseMistakes(catalog, []string{"Limits"}); err == nil {
		t.Fatalf("expected format error")
	}
	if _, err := parseMistakes(catalog, []string{"99=1"}); err == nil {
		t.Fatalf("expected unknown ID error")
	}
}

func TestCLITopicProgress(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun("student", "add", "Ada")
	e.mustRun("catalog", "import", e.writeFile("catalog.toml", testCatalog))

	out := e.mustRun("topic", "progress", "Limits", "--total", "20", "--correct", "18", "--wrong", "2")
	if !strings.Contains(out, "Limits: level 4 (success 87.5%).") {
		t.Fatalf("unexpected progress output: %s", out)
	}
	out = e.mustRun("topic", "progress", "Math/Limits", "--total", "10", "--correct", "4", "--wrong", "4")
	if !strings.Contains(out, "Limits: level 1") {
		t.Fatalf("expected level to be replaced: %s", out)
	}
	if _, err := e.run("topic", "progress", "Limits", "--total", "5", "--correct", "4", "--wrong", "3"); err == nil {
		t.Fatalf("expected error when answers exceed the total")
	}
	if _, err := e.run("topic", "progress", "Limits", "--correct", "4"); err == nil {
		t.Fatalf("expected error without --total")
	}

	list := e.mustRun("topic", "list")
	levels := map[string]string{}
	for _, line := range strings.Split(list, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 6 {
			levels[fields[2]] = fields[5]
		}
	}
	if levels["Limits"] != "1" || levels["Derivatives"] != "-" || levels["Optics"] != "-" {
		t.Fatalf("unexpected topic levels %v in:\n%s", levels, list)
	}
	if report := e.mustRun("report"); !strings.Contains(report, "Topics") {
		t.Fatalf("expected topics section in report:\n%s", report)
	}
}

func TestValidateTopicResult(t *testing.T) {
	if err := validateTopicResult(10, 6, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tc := range [][3]int{{0, 0, 0}, {10, -1, 0}, {10, 0, -1}, {10, 8, 3}} {
		if err := validateTopicResult(tc[0], tc[1], tc[2]); err == nil {
			t.Fatalf("expected error for %v", tc)
		}
	}
}
