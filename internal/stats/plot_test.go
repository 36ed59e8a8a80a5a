package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/examdash/internal/model"
)

func TestPlotChart(t *testing.T) {
	var buf bytes.Buffer
	err := PlotChart(&buf, Chart{
		Title: "Test Plot",
		Series: []Series{
			{Name: "A", Values: []float64{1, 2, 3, 2, 1}},
			{Name: "B", Values: []float64{1, 1, 2, 3, 4}},
		},
		XLabels: []string{"1.3", "2.3", "3.3", "4.3", "5.3"},
	}, 20, 4)
	if err != nil {
		t.Fatalf("PlotChart failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	if !strings.Contains(out, "4.00") || !strings.Contains(out, "1.00") {
		t.Fatalf("expected shared axis bounds in output:\n%s", out)
	}
	if !strings.Contains(out, "1.3") || !strings.Contains(out, "5.3") {
		t.Fatalf("expected first and last x labels in output")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	expectedMin := 1 + 4 + 1 + 1
	if len(lines) < expectedMin {
		t.Fatalf("expected at least %d lines of output, got %d", expectedMin, len(lines))
	}
}

func TestPlotChartSkipsEmptySeries(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotChart(&buf, Chart{Title: "Empty", Series: []Series{{Name: "A"}}}, 20, 4); err != nil {
		t.Fatalf("PlotChart failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestRenderTrendNeedsTwoExams(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTrend(&buf, []model.NetPoint{{Label: "1.3", Net: 5}}, 3); err != nil {
		t.Fatalf("RenderTrend failed: %v", err)
	}
	if !strings.Contains(buf.String(), "at least 2 exams") {
		t.Fatalf("expected placeholder, got %q", buf.String())
	}
}

func TestRenderTrendWithAverage(t *testing.T) {
	var buf bytes.Buffer
	points := []model.NetPoint{{Label: "1.3", Net: 5}, {Label: "2.3", Net: 8}, {Label: "3.3", Net: 11}}
	if err := RenderTrendWithSize(&buf, points, 2, 60, 4, false); err != nil {
		t.Fatalf("RenderTrendWithSize failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Net Trend") || !strings.Contains(out, "Avg(2)") {
		t.Fatalf("unexpected trend output:\n%s", out)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{1, 2, 3}); got != " +@" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{2, 2}); got != "++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
}
