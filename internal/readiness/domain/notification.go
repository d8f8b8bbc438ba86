package readiness

import "time"

const (
	NotificationTriggerAlert  = "Trigger Alert"
	NotificationScheduleReady = "Schedule Ready"
)

const (
	PriorityLow    = "LOW"
	PriorityNormal = "NORMAL"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Notification is an operator-facing record derived from trigger and
// state-transition events. The log is append-only; only the read flag is
// ever updated.
type Notification struct {
	ID             string    `json:"id"`
	PlantID        string    `json:"plant_id"`
	PlantName      string    `json:"plant_name"`
	Type           string    `json:"notification_type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Priority       string    `json:"priority"`
	Read           bool      `json:"read"`
	ActionRequired bool      `json:"action_required"`
	Deadline       time.Time `json:"deadline,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// PriorityForSeverity maps trigger severity to notification priority.
func PriorityForSeverity(severity string) string {
	switch severity {
	case SeverityHigh, SeverityCritical:
		return PriorityHigh
	default:
		return PriorityNormal
	}
}
