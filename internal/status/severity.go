package status

import "strings"

// StatusLevel is the canonical health status of a component or product.
type StatusLevel string

const (
	StatusOperational   StatusLevel = "OPERATIONAL"
	StatusDegraded      StatusLevel = "DEGRADED"
	StatusPartialOutage StatusLevel = "PARTIAL_OUTAGE"
	StatusMajorOutage   StatusLevel = "MAJOR_OUTAGE"
	StatusUnknown       StatusLevel = "UNKNOWN"
)

// statusAliases maps raw backend status strings to canonical levels.
var statusAliases = map[string]StatusLevel{
	"OPERATIONAL":          StatusOperational,
	"DEGRADED":             StatusDegraded,
	"DEGRADED_PERFORMANCE": StatusDegraded,
	"PARTIAL_OUTAGE":       StatusPartialOutage,
	"MAJOR_OUTAGE":         StatusMajorOutage,
	"OUTAGE":               StatusMajorOutage,
}

// severityRank orders levels by severity. UNKNOWN ranks below every known
// level: missing information must never out-rank a known outage.
var severityRank = map[StatusLevel]int{
	StatusOperational:   0,
	StatusDegraded:      1,
	StatusPartialOutage: 2,
	StatusMajorOutage:   3,
	StatusUnknown:       -1,
}

// Normalize maps a raw backend status string to a canonical level.
// Unrecognized or empty input degrades to StatusUnknown; it never fails.
func Normalize(raw string) StatusLevel {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if key == "" {
		return StatusUnknown
	}
	if level, ok := statusAliases[key]; ok {
		return level
	}
	return StatusUnknown
}

// CompareSeverity returns a negative value when a is less severe than b,
// zero when equal, and a positive value when a is more severe.
func CompareSeverity(a, b StatusLevel) int {
	return severityRank[a] - severityRank[b]
}

// WorstOf returns the most severe level in levels. Ties keep the first
// occurrence. An empty input yields StatusUnknown.
func WorstOf(levels []StatusLevel) StatusLevel {
	if len(levels) == 0 {
		return StatusUnknown
	}

	worst := levels[0]
	for _, level := range levels[1:] {
		if CompareSeverity(level, worst) > 0 {
			worst = level
		}
	}
	return worst
}

// AggregateStatus derives a product-level status from its components.
func AggregateStatus(components []Component) StatusLevel {
	levels := make([]StatusLevel, 0, len(components))
	for _, c := range components {
		levels = append(levels, c.Status)
	}
	return WorstOf(levels)
}

// Label returns a human-readable label for the level.
func (s StatusLevel) Label() string {
	switch s {
	case StatusOperational:
		return "Operational"
	case StatusDegraded:
		return "Degraded"
	case StatusPartialOutage:
		return "Partial outage"
	case StatusMajorOutage:
		return "Major outage"
	default:
		return "Unknown"
	}
}
