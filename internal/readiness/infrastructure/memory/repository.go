package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	readiness "plantsched/internal/readiness/domain"
)

// RecordRepository is an in-memory repository for readiness records.
type RecordRepository struct {
	mu   sync.RWMutex
	data map[string]*readiness.Record
}

// NewRecordRepository constructs a repository.
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{data: make(map[string]*readiness.Record)}
}

// GetByPlant loads the record for a plant.
func (r *RecordRepository) GetByPlant(ctx context.Context, plantID string) (*readiness.Record, error) {
	_ = ctx
	r.mu.RLock()
	record := r.data[plantID]
	r.mu.RUnlock()
	if record == nil {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

// Save upserts a record keyed by plant.
func (r *RecordRepository) Save(ctx context.Context, record *readiness.Record) error {
	_ = ctx
	if record == nil {
		return readiness.ErrNotFound
	}
	clone := *record
	r.mu.Lock()
	r.data[record.PlantID] = &clone
	r.mu.Unlock()
	return nil
}

// List returns records, optionally filtered by status, newest update first.
func (r *RecordRepository) List(ctx context.Context, status string) ([]readiness.Record, error) {
	_ = ctx
	r.mu.RLock()
	var result []readiness.Record
	for _, record := range r.data {
		if status != "" && record.Status != status {
			continue
		}
		result = append(result, *record)
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

// TriggerRepository is an in-memory trigger log.
type TriggerRepository struct {
	mu   sync.RWMutex
	data []readiness.Trigger
}

// NewTriggerRepository constructs a repository.
func NewTriggerRepository() *TriggerRepository {
	return &TriggerRepository{}
}

// Create appends a trigger.
func (r *TriggerRepository) Create(ctx context.Context, trigger *readiness.Trigger) error {
	_ = ctx
	if trigger == nil {
		return readiness.ErrNotFound
	}
	if err := trigger.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.data = append(r.data, *trigger)
	r.mu.Unlock()
	return nil
}

// ListByPlant returns triggers for a plant, newest first.
func (r *TriggerRepository) ListByPlant(ctx context.Context, plantID string, unprocessedOnly bool) ([]readiness.Trigger, error) {
	_ = ctx
	r.mu.RLock()
	var result []readiness.Trigger
	for _, trigger := range r.data {
		if trigger.PlantID != plantID {
			continue
		}
		if unprocessedOnly && trigger.Processed {
			continue
		}
		result = append(result, trigger)
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// MarkProcessed flags every unprocessed trigger for the plant.
func (r *TriggerRepository) MarkProcessed(ctx context.Context, plantID string) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for i := range r.data {
		if r.data[i].PlantID != plantID || r.data[i].Processed {
			continue
		}
		r.data[i].Acknowledged = true
		r.data[i].Processed = true
		count++
	}
	return count, nil
}

// NotificationRepository is an in-memory notification log.
type NotificationRepository struct {
	mu   sync.RWMutex
	data []readiness.Notification
}

// NewNotificationRepository constructs a repository.
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

// Create appends a notification.
func (r *NotificationRepository) Create(ctx context.Context, notification *readiness.Notification) error {
	_ = ctx
	if notification == nil {
		return readiness.ErrNotFound
	}
	r.mu.Lock()
	r.data = append(r.data, *notification)
	r.mu.Unlock()
	return nil
}

// GetByID fetches a notification by id.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*readiness.Notification, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.data {
		if r.data[i].ID == id {
			clone := r.data[i]
			return &clone, nil
		}
	}
	return nil, nil
}

// List returns notifications, newest first.
func (r *NotificationRepository) List(ctx context.Context, plantID string, unreadOnly bool) ([]readiness.Notification, error) {
	_ = ctx
	r.mu.RLock()
	var result []readiness.Notification
	for _, notification := range r.data {
		if plantID != "" && notification.PlantID != plantID {
			continue
		}
		if unreadOnly && notification.Read {
			continue
		}
		result = append(result, notification)
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// LastTriggerAlert returns the newest trigger alert for the plant created
// at or after since.
func (r *NotificationRepository) LastTriggerAlert(ctx context.Context, plantID string, since time.Time) (*readiness.Notification, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *readiness.Notification
	for i := range r.data {
		notification := r.data[i]
		if notification.PlantID != plantID || notification.Type != readiness.NotificationTriggerAlert {
			continue
		}
		if notification.CreatedAt.Before(since) {
			continue
		}
		if latest == nil || notification.CreatedAt.After(latest.CreatedAt) {
			clone := notification
			latest = &clone
		}
	}
	return latest, nil
}

// MarkRead flags a notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	_ = ctx
	_ = at
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.data {
		if r.data[i].ID == id {
			r.data[i].Read = true
			return nil
		}
	}
	return readiness.ErrNotFound
}
