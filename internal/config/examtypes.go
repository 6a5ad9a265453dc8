// Package config holds the static exam-type registry: pace benchmarks,
// section tables for structured exams, and the option lists the logging
// forms present. Values are compiled in; nothing here touches the database.
package config

import "github.com/error-autopsy/backend/internal/models"

// Section defines one scored part of a structured exam. Min/Max bound the
// accepted score. Essay sections count toward totals but are excluded from
// question-style accuracy checks.
type Section struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Subject string  `json:"subject"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	IsEssay bool    `json:"is_essay"`
}

// ScalarExtra is an optional single-number score stored alongside the
// section breakdown (ENEM's TRI score, SAT's scaled score).
type ScalarExtra struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// ExamType bundles everything the forms and the analytics need to know
// about one exam format. Sections nil means generic total/max scoring.
type ExamType struct {
	Name          string       `json:"name"`
	PaceBenchmark float64      `json:"pace_benchmark"`
	Subjects      []string     `json:"subjects"`
	Sections      []Section    `json:"sections,omitempty"`
	ScalarExtra   *ScalarExtra `json:"scalar_extra,omitempty"`
}

const defaultPaceBenchmark = 2.0

var examTypes = []ExamType{
	{
		Name:          "General",
		PaceBenchmark: defaultPaceBenchmark,
		Subjects: []string{
			"Mathematics",
			"Languages",
			"Natural Sciences",
			"Human Sciences",
			"Essay Writing",
			"Other",
		},
	},
	{
		Name:          "ENEM",
		PaceBenchmark: 3.0,
		Subjects: []string{
			"Languages & Codes",
			"Human Sciences",
			"Natural Sciences",
			"Mathematics",
			"Essay",
		},
		Sections: []Section{
			{Key: "languages", Label: "Languages & Codes", Subject: "Languages & Codes", Min: 0, Max: 45},
			{Key: "humanities", Label: "Human Sciences", Subject: "Human Sciences", Min: 0, Max: 45},
			{Key: "sciences", Label: "Natural Sciences", Subject: "Natural Sciences", Min: 0, Max: 45},
			{Key: "math", Label: "Mathematics", Subject: "Mathematics", Min: 0, Max: 45},
			{Key: "essay", Label: "Essay", Subject: "Essay", Min: 0, Max: 1000, IsEssay: true},
		},
		ScalarExtra: &ScalarExtra{Key: "tri_score", Label: "TRI Score", Min: 0, Max: 1000},
	},
	{
		Name:          "SAT",
		PaceBenchmark: 1.5,
		Subjects: []string{
			"Reading & Writing",
			"Math",
		},
		Sections: []Section{
			{Key: "reading_writing", Label: "Reading & Writing", Subject: "Reading & Writing", Min: 0, Max: 54},
			{Key: "math", Label: "Math", Subject: "Math", Min: 0, Max: 44},
		},
		ScalarExtra: &ScalarExtra{Key: "scaled_score", Label: "Scaled Score", Min: 400, Max: 1600},
	},
}

// ExamTypes returns the registry in display order (General first).
func ExamTypes() []ExamType {
	return examTypes
}

// ExamTypeNames returns just the names, in display order.
func ExamTypeNames() []string {
	names := make([]string, len(examTypes))
	for i, et := range examTypes {
		names[i] = et.Name
	}
	return names
}

func lookup(name string) (ExamType, bool) {
	for _, et := range examTypes {
		if et.Name == name {
			return et, true
		}
	}
	return ExamType{}, false
}

// PaceBenchmark returns the target minutes-per-question for an exam type.
// Unknown types get the General benchmark.
func PaceBenchmark(examType string) float64 {
	if et, ok := lookup(examType); ok {
		return et.PaceBenchmark
	}
	return defaultPaceBenchmark
}

// SectionsFor returns the section table for a structured exam type, or nil
// when the type uses generic total/max scoring.
func SectionsFor(examType string) []Section {
	if et, ok := lookup(examType); ok {
		return et.Sections
	}
	return nil
}

// SubjectsFor returns the subject dropdown list for an exam type. Unknown
// types get the General list.
func SubjectsFor(examType string) []string {
	if et, ok := lookup(examType); ok {
		return et.Subjects
	}
	return examTypes[0].Subjects
}

// ScalarExtraFor returns the optional extra-score definition for an exam
// type, if it has one.
func ScalarExtraFor(examType string) (ScalarExtra, bool) {
	if et, ok := lookup(examType); ok && et.ScalarExtra != nil {
		return *et.ScalarExtra, true
	}
	return ScalarExtra{}, false
}

// ErrorTypes returns the error categories in form-display order.
func ErrorTypes() []string {
	return []string{
		string(models.ErrorContentGap),
		string(models.ErrorAttentionDetail),
		string(models.ErrorTimeManagement),
		string(models.ErrorFatigue),
		string(models.ErrorInterpretation),
	}
}

// Difficulties returns the difficulty levels in ascending order.
func Difficulties() []string {
	return []string{
		string(models.DifficultyEasy),
		string(models.DifficultyMedium),
		string(models.DifficultyHard),
	}
}
