package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Mode", "Accuracy", "Sessions"}
	rows := [][]string{
		{"two", "97.50%", "12"},
		{"scan", "8.00%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Mode Accuracy Sessions" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "two    97.50%       12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "scan    8.00%        3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideGlyphs(t *testing.T) {
	lines := formatTable([]string{"Ship"}, [][]string{{"漢"}, {"a"}}, nil)
	if lines[1] != "漢  " {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "a   " {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}
