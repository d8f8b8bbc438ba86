package readiness

import (
	"errors"
	"time"
)

const (
	TriggerWeather     = "Weather"
	TriggerCurtailment = "Curtailment"
	TriggerDeviation   = "Deviation"
	TriggerManual      = "Manual"
)

const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// Trigger is an append-only log entry recording one detected threshold
// exceedance for a plant. Acknowledged/processed are operator workflow
// flags set via the continue-existing-schedule path.
type Trigger struct {
	ID             string    `json:"id"`
	PlantID        string    `json:"plant_id"`
	Type           string    `json:"trigger_type"`
	Severity       string    `json:"severity"`
	Description    string    `json:"description"`
	ThresholdValue float64   `json:"threshold_value,omitempty"`
	ActualValue    float64   `json:"actual_value,omitempty"`
	Acknowledged   bool      `json:"acknowledged"`
	Processed      bool      `json:"processed"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks trigger invariants.
func (t Trigger) Validate() error {
	if t.ID == "" {
		return errors.New("trigger: empty id")
	}
	if t.PlantID == "" {
		return errors.New("trigger: empty plant id")
	}
	if !ValidTriggerType(t.Type) {
		return errors.New("trigger: invalid type")
	}
	if !ValidSeverity(t.Severity) {
		return errors.New("trigger: invalid severity")
	}
	return nil
}

// ValidTriggerType reports whether the value is a known trigger type.
func ValidTriggerType(value string) bool {
	switch value {
	case TriggerWeather, TriggerCurtailment, TriggerDeviation, TriggerManual:
		return true
	default:
		return false
	}
}

// ValidSeverity reports whether the value is a known severity.
func ValidSeverity(value string) bool {
	switch value {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}
