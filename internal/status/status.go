// Package status normalizes the status vocabularies of the supported
// video-generation backends into a single internal lifecycle.
package status

// Status enumerates video generation lifecycle states.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether no further transitions can occur.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// FromUpstream maps an upstream status token onto the internal lifecycle.
// Matching is exact and case-sensitive; anything unrecognized is treated as
// pending rather than an error, so a new upstream vocabulary entry degrades
// instead of breaking polling.
func FromUpstream(token string) Status {
	switch token {
	case "queued":
		return StatusPending
	case "in_progress", "processing":
		return StatusProcessing
	case "succeeded", "completed":
		return StatusCompleted
	case "failed", "cancelled":
		return StatusFailed
	default:
		return StatusPending
	}
}

// ProgressFor derives a coarse percentage from an upstream status token for
// backends that expose no percentage of their own. Three-point resolution
// (0/50/100) is all the SoraV2 API allows; callers that receive a real
// percentage from upstream should prefer it over this heuristic.
func ProgressFor(token string) int {
	switch token {
	case "queued":
		return 0
	case "in_progress", "processing":
		return 50
	case "succeeded", "completed":
		return 100
	case "failed":
		return 0
	default:
		return 0
	}
}

// StepLabel renders a human-readable step description for a lifecycle state,
// used when the upstream response carries no step field.
func StepLabel(s Status) string {
	switch s {
	case StatusPending:
		return "Waiting in queue"
	case StatusProcessing:
		return "Generating video"
	case StatusCompleted:
		return "Done"
	case StatusFailed:
		return "Generation failed"
	default:
		return ""
	}
}
