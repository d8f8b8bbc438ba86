package postgres

import (
	"context"
	"database/sql"
	"errors"

	readiness "plantsched/internal/readiness/domain"
)

// TriggerRepository is a Postgres repository for the append-only trigger
// log.
type TriggerRepository struct {
	db *sql.DB
}

// NewTriggerRepository constructs a repository.
func NewTriggerRepository(db *sql.DB) *TriggerRepository {
	return &TriggerRepository{db: db}
}

// Create appends a trigger.
func (r *TriggerRepository) Create(ctx context.Context, trigger *readiness.Trigger) error {
	if r == nil || r.db == nil {
		return errors.New("trigger repo: nil db")
	}
	if trigger == nil {
		return errors.New("trigger repo: nil trigger")
	}
	if err := trigger.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO schedule_triggers (
	id, plant_id, trigger_type, severity, description,
	threshold_value, actual_value, acknowledged, processed, created_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)`,
		trigger.ID,
		trigger.PlantID,
		trigger.Type,
		trigger.Severity,
		trigger.Description,
		sql.NullFloat64{Float64: trigger.ThresholdValue, Valid: trigger.ThresholdValue != 0},
		sql.NullFloat64{Float64: trigger.ActualValue, Valid: trigger.ActualValue != 0},
		trigger.Acknowledged,
		trigger.Processed,
		trigger.CreatedAt,
	)
	return err
}

// ListByPlant returns triggers for a plant, newest first.
func (r *TriggerRepository) ListByPlant(ctx context.Context, plantID string, unprocessedOnly bool) ([]readiness.Trigger, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("trigger repo: nil db")
	}
	if plantID == "" {
		return nil, errors.New("trigger repo: empty plant id")
	}
	query := `
SELECT id, plant_id, trigger_type, severity, COALESCE(description, ''),
	threshold_value, actual_value, acknowledged, processed, created_at
FROM schedule_triggers
WHERE plant_id = $1`
	if unprocessedOnly {
		query += " AND processed = FALSE"
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, plantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []readiness.Trigger
	for rows.Next() {
		var trigger readiness.Trigger
		var threshold, actual sql.NullFloat64
		if err := rows.Scan(
			&trigger.ID,
			&trigger.PlantID,
			&trigger.Type,
			&trigger.Severity,
			&trigger.Description,
			&threshold,
			&actual,
			&trigger.Acknowledged,
			&trigger.Processed,
			&trigger.CreatedAt,
		); err != nil {
			return nil, err
		}
		trigger.CreatedAt = trigger.CreatedAt.UTC()
		if threshold.Valid {
			trigger.ThresholdValue = threshold.Float64
		}
		if actual.Valid {
			trigger.ActualValue = actual.Float64
		}
		result = append(result, trigger)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkProcessed flags every unprocessed trigger for the plant as
// acknowledged and processed.
func (r *TriggerRepository) MarkProcessed(ctx context.Context, plantID string) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("trigger repo: nil db")
	}
	if plantID == "" {
		return 0, errors.New("trigger repo: empty plant id")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE schedule_triggers
SET acknowledged = TRUE, processed = TRUE
WHERE plant_id = $1 AND processed = FALSE`, plantID)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
