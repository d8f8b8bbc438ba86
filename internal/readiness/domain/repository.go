package readiness

import (
	"context"
	"time"
)

// RecordRepository persists readiness records. The record is the only
// entity with read-modify-write semantics; writers must serialize per
// plant.
type RecordRepository interface {
	GetByPlant(ctx context.Context, plantID string) (*Record, error)
	Save(ctx context.Context, record *Record) error
	List(ctx context.Context, status string) ([]Record, error)
}

// TriggerRepository appends to and flags entries in the trigger log.
type TriggerRepository interface {
	Create(ctx context.Context, trigger *Trigger) error
	ListByPlant(ctx context.Context, plantID string, unprocessedOnly bool) ([]Trigger, error)
	// MarkProcessed flags every unprocessed trigger for the plant as
	// acknowledged and processed. Returns the number of affected entries.
	MarkProcessed(ctx context.Context, plantID string) (int, error)
}

// NotificationRepository appends to and reads the notification log.
type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	List(ctx context.Context, plantID string, unreadOnly bool) ([]Notification, error)
	// LastTriggerAlert returns the most recent trigger-alert notification
	// for the plant created at or after since, or nil.
	LastTriggerAlert(ctx context.Context, plantID string, since time.Time) (*Notification, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
}
