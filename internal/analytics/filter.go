package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/error-autopsy/backend/internal/models"
)

// Dated is any record that carries its entry date as DD-MM-YYYY text.
type Dated interface {
	EntryDate() string
}

// FilterByRange keeps records no older than the cutoff derived from months
// (see RelativeCutoff). With no cutoff the input comes back untouched,
// undated records included; with a cutoff active, records whose date cannot
// be parsed are dropped.
func FilterByRange[T Dated](records []T, months *int, now time.Time) []T {
	cutoff, ok := RelativeCutoff(now, months)
	if !ok {
		return records
	}

	filtered := make([]T, 0, len(records))
	for _, rec := range records {
		d, ok := ParseDate(rec.EntryDate())
		if !ok {
			continue
		}
		if !d.Before(cutoff) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// ApplyFilters narrows errors by AND-combined membership filters plus an
// inclusive date range. Empty filter fields match everything. Records with
// unparseable dates are dropped only while a date bound is active.
func ApplyFilters(errors []models.ErrorLog, f models.ErrorFilter) []models.ErrorLog {
	subjects := toSet(f.Subjects)
	topics := toSet(f.Topics)
	examTypes := toSet(f.ExamTypes)
	errorTypes := toSet(f.ErrorTypes)
	difficulties := toSet(f.Difficulties)

	from, fromOK := ParseDate(f.DateFrom)
	to, toOK := ParseDate(f.DateTo)

	filtered := make([]models.ErrorLog, 0, len(errors))
	for _, e := range errors {
		if !inSet(subjects, e.Subject) ||
			!inSet(topics, e.Topic) ||
			!inSet(examTypes, e.ExamType) ||
			!inSet(errorTypes, string(e.ErrorType)) ||
			!inSet(difficulties, string(e.Difficulty)) {
			continue
		}
		if fromOK || toOK {
			d, ok := ParseDate(e.Date)
			if !ok {
				continue
			}
			if fromOK && d.Before(from) {
				continue
			}
			if toOK && d.After(to) {
				continue
			}
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// UniqueValues returns the sorted distinct non-blank values of a field,
// for populating filter dropdowns.
func UniqueValues[T any](records []T, key func(T) string) []string {
	seen := make(map[string]bool)
	for _, rec := range records {
		v := strings.TrimSpace(key(rec))
		if v != "" {
			seen[v] = true
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// inSet treats a nil set as "no filter".
func inSet(set map[string]bool, value string) bool {
	if set == nil {
		return true
	}
	return set[strings.TrimSpace(value)]
}
