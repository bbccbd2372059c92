package ui

import (
	"strings"
	"testing"
)

func TestSimpleTableView(t *testing.T) {
	table := NewSimpleTable("Players", []string{"id", "skill"})
	table.AddRow("1", "1500")
	table.AddRow("2", "1480")

	out := table.View(NewStyles(LightTheme()))

	for _, want := range []string{"Players", "id", "skill", "1500", "1480"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSimpleTableEmpty(t *testing.T) {
	table := NewSimpleTable("", []string{"a", "b"})
	out := table.View(NewStyles(LightTheme()))

	if !strings.Contains(out, "(no rows)") {
		t.Errorf("empty table missing placeholder:\n%s", out)
	}
	if strings.Contains(out, "\n\n\n") {
		t.Errorf("empty table has stray blank lines:\n%s", out)
	}
}

func TestSimpleTableColumnAlignment(t *testing.T) {
	table := NewSimpleTable("", []string{"name", "n"})
	table.AddRow("a", "1")
	table.AddRow("longer-name", "2")

	out := table.View(NewStyles(LightTheme()))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// Header, divider, two rows.
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4:\n%s", len(lines), out)
	}
	// The short cell is padded to the widest value in its column, so the
	// second column starts at the same offset in every row.
	if strings.Index(lines[2], "1") != strings.Index(lines[3], "2") {
		t.Errorf("columns misaligned:\n%q\n%q", lines[2], lines[3])
	}
}

func TestPad(t *testing.T) {
	if got := pad("ab", 5); got != "ab   " {
		t.Errorf("pad = %q", got)
	}
	if got := pad("abcdef", 3); got != "abcdef" {
		t.Errorf("pad should not truncate, got %q", got)
	}
}
