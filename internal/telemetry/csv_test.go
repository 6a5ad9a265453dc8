package telemetry

import (
	"reflect"
	"testing"
)

func TestDetectColumnsPortugueseAliases(t *testing.T) {
	header := []string{"Matéria", " TEMA ", "tipo", "Data", "obs", "Dificuldade"}
	cols := detectColumns(header, errorAliases)

	want := map[string]int{
		"subject":     0,
		"topic":       1,
		"error_type":  2,
		"date":        3,
		"description": 4,
		"difficulty":  5,
	}
	for key, idx := range want {
		if got, ok := cols[key]; !ok || got != idx {
			t.Errorf("cols[%q] = %d (ok=%v), want %d", key, got, ok, idx)
		}
	}
}

func TestDetectColumnsRoundTripsExportHeader(t *testing.T) {
	header := []string{"id", "subject", "topic", "error_type", "description",
		"difficulty", "exam_type", "date", "session_id", "mock_exam_id"}
	cols := detectColumns(header, errorAliases)

	for _, key := range []string{"subject", "topic", "error_type", "description",
		"difficulty", "exam_type", "date", "session_id", "mock_exam_id"} {
		if _, ok := cols[key]; !ok {
			t.Errorf("export header column %q not detected on import", key)
		}
	}
}

func TestDetectColumnsFirstAliasWins(t *testing.T) {
	// "assunto" maps to subject only when no stronger subject alias exists.
	cols := detectColumns([]string{"assunto"}, errorAliases)
	if cols["subject"] != 0 || cols["topic"] != 0 {
		t.Errorf("lone assunto should satisfy both subject and topic, got %v", cols)
	}

	cols = detectColumns([]string{"assunto", "materia"}, errorAliases)
	if cols["subject"] != 1 {
		t.Errorf("materia should win subject over assunto, got index %d", cols["subject"])
	}
	if cols["topic"] != 0 {
		t.Errorf("topic should fall back to assunto, got index %d", cols["topic"])
	}
}

func TestCoerceDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"15-03-2024", "15-03-2024"},
		{"2024-03-15", "15-03-2024"},
		{"15/03/2024", "15-03-2024"},
		{"03/15/2024", "15-03-2024"}, // US order only parses once day-first fails
		{"04/05/2024", "04-05-2024"}, // ambiguous: day-first wins
		{"2024/03/15", "15-03-2024"},
		{"", "15-03-2024"},           // blank falls back to today
		{"next tuesday", "15-03-2024"}, // garbage falls back to today
	}
	for _, tt := range tests {
		if got := coerceDate(tt.in, testNow); got != tt.want {
			t.Errorf("coerceDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateIssues(t *testing.T) {
	issues := []string{"a", "b", "c", "d", "e", "f", "g"}

	got := truncateIssues(issues, 5)
	if len(got) != 6 {
		t.Fatalf("expected 5 issues plus a summary line, got %d entries", len(got))
	}
	if got[5] != "...and 2 more issues" {
		t.Errorf("summary line = %q", got[5])
	}

	short := []string{"a", "b"}
	if got := truncateIssues(short, 5); !reflect.DeepEqual(got, short) {
		t.Errorf("short lists must pass through untouched, got %v", got)
	}
}

func TestFieldToleratesShortRows(t *testing.T) {
	cols := map[string]int{"subject": 0, "topic": 3}
	row := []string{" Math "}

	if got := field(row, cols, "subject"); got != "Math" {
		t.Errorf("field subject = %q, want Math", got)
	}
	if got := field(row, cols, "topic"); got != "" {
		t.Errorf("field past row end should be empty, got %q", got)
	}
	if got := field(row, cols, "missing"); got != "" {
		t.Errorf("undetected column should be empty, got %q", got)
	}
}

func TestSplitParam(t *testing.T) {
	got := splitParam(" Math , Biology ,,Physics ")
	want := []string{"Math", "Biology", "Physics"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitParam = %v, want %v", got, want)
	}
	if splitParam("") != nil {
		t.Error("empty param should split to nil")
	}
}
