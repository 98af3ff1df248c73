package service

import (
	"strings"

	"github.com/noah-isme/tuition-web/internal/models"
)

// ApplyFilter returns the tuitions matching the filter, in cache order. It never mutates its input.
//
// The status must match exactly unless it is empty or "all". The search term matches
// case-insensitively as a substring of subject, class or location.
func ApplyFilter(all []models.Tuition, filter models.TuitionFilter) []models.Tuition {
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	status := strings.TrimSpace(filter.Status)
	passAllStatuses := status == "" || status == models.StatusFilterAll

	out := make([]models.Tuition, 0, len(all))
	for _, t := range all {
		if !passAllStatuses && string(t.Status) != status {
			continue
		}
		if term != "" && !matchesSearch(t, term) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesSearch(t models.Tuition, lowered string) bool {
	return strings.Contains(strings.ToLower(t.Subject), lowered) ||
		strings.Contains(strings.ToLower(t.Class), lowered) ||
		strings.Contains(strings.ToLower(t.Location), lowered)
}

// ComputeStats counts the cached tuitions by status.
func ComputeStats(all []models.Tuition) models.TuitionStats {
	stats := models.TuitionStats{Total: len(all)}
	for _, t := range all {
		switch t.Status {
		case models.TuitionStatusPending:
			stats.Pending++
		case models.TuitionStatusApproved:
			stats.Approved++
		case models.TuitionStatusCompleted:
			stats.Completed++
		}
	}
	return stats
}
