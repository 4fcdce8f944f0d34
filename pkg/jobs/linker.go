// Package jobs pkg/jobs/linker.go
package jobs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/HughKantsime/printfarm/pkg/models"
)

var errFailedToListSchedules = fmt.Errorf("failed to list pending schedules")

// Linker matches an observed print against the pending schedule pool for a
// printer. Matching is best effort: an ambiguous result links nothing rather
// than guessing.
type Linker struct {
	store Store
}

func NewLinker(store Store) *Linker {
	return &Linker{store: store}
}

// Link returns the single pending schedule that matches the observed job,
// or nil when no candidate, or more than one, matches. Name containment is
// tried first; the layer-count fingerprint is only consulted when no name
// matched at all.
func (l *Linker) Link(printerID, observedName string, totalLayers int) (*models.ScheduledJob, error) {
	candidates, err := l.store.ListPendingSchedules(printerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToListSchedules, err)
	}

	byName := filterByName(candidates, observedName)
	switch len(byName) {
	case 1:
		return byName[0], nil
	case 0:
		return matchByLayers(candidates, totalLayers), nil
	default:
		// Ambiguous by name. Do not fall through to the fingerprint.
		return nil, nil
	}
}

func filterByName(candidates []models.ScheduledJob, observedName string) []*models.ScheduledJob {
	observed := normalizeJobName(observedName)
	if observed == "" {
		return nil
	}

	var matches []*models.ScheduledJob
	for i := range candidates {
		if scheduleNameMatches(&candidates[i], observed) {
			matches = append(matches, &candidates[i])
		}
	}

	return matches
}

func scheduleNameMatches(s *models.ScheduledJob, observed string) bool {
	for _, candidate := range []string{s.ItemName, s.ModelName, s.FileName} {
		if namesOverlap(observed, normalizeJobName(candidate)) {
			return true
		}
	}
	return false
}

func matchByLayers(candidates []models.ScheduledJob, totalLayers int) *models.ScheduledJob {
	if totalLayers <= 0 {
		return nil
	}

	var match *models.ScheduledJob
	for i := range candidates {
		if candidates[i].TotalLayers != totalLayers {
			continue
		}
		if match != nil {
			return nil
		}
		match = &candidates[i]
	}

	return match
}

// normalizeJobName lowercases a name and strips its file extension, so that
// "Benchy.gcode", "benchy.3mf" and "BENCHY" all compare equal.
func normalizeJobName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func namesOverlap(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
