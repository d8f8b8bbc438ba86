package readiness

import (
	"sort"
	"strings"
	"time"
)

const (
	StatusReady    = "READY"
	StatusPending  = "PENDING"
	StatusNoAction = "NO_ACTION"
)

// Record tracks schedule readiness for one plant. Exactly one record exists
// per plant; it is created lazily on the first check and never deleted.
type Record struct {
	ID             string    `json:"id"`
	PlantID        string    `json:"plant_id"`
	PlantName      string    `json:"plant_name"`
	Status         string    `json:"status"`
	LastChecked    time.Time `json:"last_checked"`
	UploadDeadline time.Time `json:"upload_deadline,omitempty"`
	ScheduleDate   time.Time `json:"schedule_date"`
	RevisionNumber int       `json:"revision_number"`
	TriggerReason  string    `json:"trigger_reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ValidStatus reports whether the value is a known readiness status.
func ValidStatus(status string) bool {
	switch status {
	case StatusReady, StatusPending, StatusNoAction:
		return true
	default:
		return false
	}
}

// NextStatus resolves the readiness status for one evaluation pass. The rule
// is evaluated fresh on every check: an operator-supplied revised schedule
// wins over open triggers.
func NextStatus(hasUpdatedSchedule, hasActiveTriggers bool) string {
	switch {
	case hasUpdatedSchedule:
		return StatusReady
	case hasActiveTriggers:
		return StatusPending
	default:
		return StatusNoAction
	}
}

// TriggerReason joins the distinct trigger types of a pass into the display
// reason stored on the record. Order-insensitive: types are deduplicated and
// sorted.
func TriggerReason(triggers []Trigger) string {
	if len(triggers) == 0 {
		return ""
	}
	seen := make(map[string]struct{}, len(triggers))
	var types []string
	for _, trigger := range triggers {
		if _, ok := seen[trigger.Type]; ok {
			continue
		}
		seen[trigger.Type] = struct{}{}
		types = append(types, trigger.Type)
	}
	sort.Strings(types)
	return strings.Join(types, ", ")
}
