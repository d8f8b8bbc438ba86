package notify

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	readiness "plantsched/internal/readiness/domain"
)

// DefaultDedupeWindow bounds trigger-alert volume per plant under flapping
// signals.
const DefaultDedupeWindow = time.Hour

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Dispatcher converts trigger and state-transition events into deduplicated
// notification records. Deduplication is a point-in-time query against the
// notification log itself, so it needs no separate rate-limiter state.
type Dispatcher struct {
	log    readiness.NotificationRepository
	clock  Clock
	window time.Duration
}

// Option configures the dispatcher.
type Option func(*Dispatcher)

// WithClock overrides the default clock.
func WithClock(clock Clock) Option {
	return func(d *Dispatcher) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// WithDedupeWindow overrides the trigger-alert suppression window.
func WithDedupeWindow(window time.Duration) Option {
	return func(d *Dispatcher) {
		if window > 0 {
			d.window = window
		}
	}
}

// NewDispatcher constructs a dispatcher.
func NewDispatcher(log readiness.NotificationRepository, opts ...Option) (*Dispatcher, error) {
	if log == nil {
		return nil, errors.New("notify: nil notification repository")
	}
	d := &Dispatcher{
		log:    log,
		clock:  systemClock{},
		window: DefaultDedupeWindow,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// TriggerAlert records a trigger-alert notification for the plant. When a
// trigger alert for the plant already exists within the trailing window the
// existing one is returned with created=false and nothing is written.
func (d *Dispatcher) TriggerAlert(ctx context.Context, plantID, plantName string, trigger readiness.Trigger) (*readiness.Notification, bool, error) {
	if d == nil || d.log == nil {
		return nil, false, errors.New("notify: nil dispatcher")
	}
	if plantID == "" {
		return nil, false, errors.New("notify: empty plant id")
	}

	now := d.clock.Now().UTC()
	existing, err := d.log.LastTriggerAlert(ctx, plantID, now.Add(-d.window))
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	notification := &readiness.Notification{
		ID:             buildNotificationID(plantID, readiness.NotificationTriggerAlert, now),
		PlantID:        plantID,
		PlantName:      plantName,
		Type:           readiness.NotificationTriggerAlert,
		Title:          alertTitle(trigger.Type),
		Message:        alertMessage(plantName, trigger),
		Priority:       readiness.PriorityForSeverity(trigger.Severity),
		ActionRequired: true,
		CreatedAt:      now,
	}
	if err := d.log.Create(ctx, notification); err != nil {
		return nil, false, err
	}
	return notification, true, nil
}

// ScheduleReady records the urgent upload notification emitted when a plant
// enters READY.
func (d *Dispatcher) ScheduleReady(ctx context.Context, plantID, plantName string, deadline time.Time) (*readiness.Notification, error) {
	if d == nil || d.log == nil {
		return nil, errors.New("notify: nil dispatcher")
	}
	if plantID == "" {
		return nil, errors.New("notify: empty plant id")
	}

	now := d.clock.Now().UTC()
	notification := &readiness.Notification{
		ID:             buildNotificationID(plantID, readiness.NotificationScheduleReady, now),
		PlantID:        plantID,
		PlantName:      plantName,
		Type:           readiness.NotificationScheduleReady,
		Title:          "Schedule Ready for Upload",
		Message:        fmt.Sprintf("Updated schedule for %s is ready for upload. Deadline: %s", plantName, deadline.UTC().Format("2006-01-02 15:04")),
		Priority:       readiness.PriorityUrgent,
		ActionRequired: true,
		Deadline:       deadline.UTC(),
		CreatedAt:      now,
	}
	if err := d.log.Create(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

func alertTitle(triggerType string) string {
	switch triggerType {
	case readiness.TriggerWeather:
		return "Weather Change Detected"
	case readiness.TriggerCurtailment:
		return "Curtailment Signal Active"
	case readiness.TriggerDeviation:
		return "Meter Deviation Detected"
	default:
		return "Trigger Detected"
	}
}

func alertMessage(plantName string, trigger readiness.Trigger) string {
	switch trigger.Type {
	case readiness.TriggerWeather:
		return fmt.Sprintf("Weather forecast change detected for %s. Schedule revision may be required.", plantName)
	case readiness.TriggerCurtailment:
		return fmt.Sprintf("Curtailment signal active for %s. %s", plantName, trigger.Description)
	case readiness.TriggerDeviation:
		return fmt.Sprintf("Meter deviation of %.1f%% detected for %s.", trigger.ActualValue, plantName)
	default:
		return trigger.Description
	}
}

func buildNotificationID(plantID, notificationType string, at time.Time) string {
	sum := sha1.Sum([]byte(plantID + "|" + notificationType + "|" + at.Format(time.RFC3339Nano)))
	return "ntf-" + hex.EncodeToString(sum[:8])
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
