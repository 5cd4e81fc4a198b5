package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Domain", "Average", "Attempts"}
	rows := [][]string{
		{"Risk Management", "97.50%", "12"},
		{"PKI", "8.00%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Domain          Average Attempts" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Risk Management  97.50%       12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "PKI               8.00%        3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}
