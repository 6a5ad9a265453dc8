package config

import "testing"

func TestPaceBenchmark(t *testing.T) {
	tests := []struct {
		examType string
		want     float64
	}{
		{"ENEM", 3.0},
		{"SAT", 1.5},
		{"General", 2.0},
		{"LSAT", 2.0},
		{"", 2.0},
	}

	for _, tt := range tests {
		got := PaceBenchmark(tt.examType)
		if got != tt.want {
			t.Errorf("PaceBenchmark(%q) = %v, want %v", tt.examType, got, tt.want)
		}
	}
}

func TestSectionsFor(t *testing.T) {
	enem := SectionsFor("ENEM")
	if len(enem) != 5 {
		t.Fatalf("ENEM sections = %d, want 5", len(enem))
	}
	// 4 objective sections of 45 plus the 1000-point essay
	var total float64
	for _, sec := range enem {
		total += sec.Max
	}
	if total != 1180 {
		t.Errorf("ENEM max total = %v, want 1180", total)
	}
	if !enem[4].IsEssay {
		t.Errorf("last ENEM section should be the essay")
	}

	sat := SectionsFor("SAT")
	if len(sat) != 2 {
		t.Fatalf("SAT sections = %d, want 2", len(sat))
	}
	if sat[0].Max+sat[1].Max != 98 {
		t.Errorf("SAT max total = %v, want 98", sat[0].Max+sat[1].Max)
	}

	if SectionsFor("General") != nil {
		t.Errorf("General should have no section table")
	}
	if SectionsFor("unknown") != nil {
		t.Errorf("unknown exam type should have no section table")
	}
}

func TestScalarExtraFor(t *testing.T) {
	extra, ok := ScalarExtraFor("ENEM")
	if !ok || extra.Key != "tri_score" {
		t.Errorf("ENEM scalar extra = %+v, %v; want tri_score", extra, ok)
	}

	extra, ok = ScalarExtraFor("SAT")
	if !ok || extra.Key != "scaled_score" {
		t.Errorf("SAT scalar extra = %+v, %v; want scaled_score", extra, ok)
	}
	if extra.Min != 400 || extra.Max != 1600 {
		t.Errorf("scaled_score range = %v-%v, want 400-1600", extra.Min, extra.Max)
	}

	if _, ok := ScalarExtraFor("General"); ok {
		t.Errorf("General should have no scalar extra")
	}
}

func TestSubjectsForFallback(t *testing.T) {
	general := SubjectsFor("General")
	unknown := SubjectsFor("does-not-exist")
	if len(unknown) != len(general) {
		t.Fatalf("unknown type subjects = %d entries, want General's %d", len(unknown), len(general))
	}
	for i := range general {
		if unknown[i] != general[i] {
			t.Errorf("subject[%d] = %q, want %q", i, unknown[i], general[i])
		}
	}
}

func TestExamTypeNamesOrder(t *testing.T) {
	names := ExamTypeNames()
	want := []string{"General", "ENEM", "SAT"}
	if len(names) != len(want) {
		t.Fatalf("ExamTypeNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ExamTypeNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
