package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	readiness "plantsched/internal/readiness/domain"
)

// NotificationRepository is a Postgres repository for the notification log.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository constructs a repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create appends a notification.
func (r *NotificationRepository) Create(ctx context.Context, notification *readiness.Notification) error {
	if r == nil || r.db == nil {
		return errors.New("notification repo: nil db")
	}
	if notification == nil {
		return errors.New("notification repo: nil notification")
	}
	if notification.ID == "" || notification.PlantID == "" || notification.Type == "" {
		return errors.New("notification repo: missing fields")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO schedule_notifications (
	id, plant_id, plant_name, notification_type, title, message,
	priority, read, action_required, deadline, created_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
)`,
		notification.ID,
		notification.PlantID,
		notification.PlantName,
		notification.Type,
		notification.Title,
		notification.Message,
		notification.Priority,
		notification.Read,
		notification.ActionRequired,
		nullableTime(notification.Deadline),
		notification.CreatedAt,
	)
	return err
}

// GetByID fetches a notification by id.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*readiness.Notification, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("notification repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, plant_id, plant_name, notification_type, title, COALESCE(message, ''),
	priority, read, action_required, deadline, created_at
FROM schedule_notifications
WHERE id = $1`, id)
	return scanNotification(row)
}

// List returns notifications, newest first, optionally filtered by plant
// and read state.
func (r *NotificationRepository) List(ctx context.Context, plantID string, unreadOnly bool) ([]readiness.Notification, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("notification repo: nil db")
	}
	query := `
SELECT id, plant_id, plant_name, notification_type, title, COALESCE(message, ''),
	priority, read, action_required, deadline, created_at
FROM schedule_notifications`
	var args []any
	var clauses []string
	if plantID != "" {
		args = append(args, plantID)
		clauses = append(clauses, "plant_id = $1")
	}
	if unreadOnly {
		clauses = append(clauses, "read = FALSE")
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []readiness.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *notification)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LastTriggerAlert returns the newest trigger-alert notification for the
// plant created at or after since.
func (r *NotificationRepository) LastTriggerAlert(ctx context.Context, plantID string, since time.Time) (*readiness.Notification, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("notification repo: nil db")
	}
	if plantID == "" {
		return nil, errors.New("notification repo: empty plant id")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, plant_id, plant_name, notification_type, title, COALESCE(message, ''),
	priority, read, action_required, deadline, created_at
FROM schedule_notifications
WHERE plant_id = $1 AND notification_type = $2 AND created_at >= $3
ORDER BY created_at DESC
LIMIT 1`, plantID, readiness.NotificationTriggerAlert, since)
	return scanNotification(row)
}

// MarkRead flags a notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("notification repo: nil db")
	}
	_ = at
	_, err := r.db.ExecContext(ctx, `
UPDATE schedule_notifications
SET read = TRUE
WHERE id = $1`, id)
	return err
}

func scanNotification(row rowScanner) (*readiness.Notification, error) {
	var notification readiness.Notification
	var deadline sql.NullTime
	if err := row.Scan(
		&notification.ID,
		&notification.PlantID,
		&notification.PlantName,
		&notification.Type,
		&notification.Title,
		&notification.Message,
		&notification.Priority,
		&notification.Read,
		&notification.ActionRequired,
		&deadline,
		&notification.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	notification.CreatedAt = notification.CreatedAt.UTC()
	if deadline.Valid {
		notification.Deadline = deadline.Time.UTC()
	}
	return &notification, nil
}
