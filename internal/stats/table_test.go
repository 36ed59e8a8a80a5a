package stats

import (
	"strings"
	"testing"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Topic", "Wrongs", "Exams"}
	rows := [][]string{
		{"Limits", "12", "4"},
		{"Logarithms", "3", "1"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Topic      Wrongs Exams" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Limits         12     4" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Logarithms      3     1" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableClipsLongCells(t *testing.T) {
	long := strings.Repeat("x", maxCellWidth+10)
	lines := formatTable([]string{"Topic"}, [][]string{{long}}, nil)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasSuffix(lines[1], "…") {
		t.Fatalf("expected clipped cell, got %q", lines[1])
	}
}
