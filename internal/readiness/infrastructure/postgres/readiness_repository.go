package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	readiness "plantsched/internal/readiness/domain"
)

// RecordRepository is a Postgres repository for readiness records.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository constructs a repository.
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// GetByPlant loads the readiness record for a plant.
func (r *RecordRepository) GetByPlant(ctx context.Context, plantID string) (*readiness.Record, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("readiness repo: nil db")
	}
	if plantID == "" {
		return nil, errors.New("readiness repo: empty plant id")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, plant_id, plant_name, status, last_checked, upload_deadline,
	schedule_date, revision_number, COALESCE(trigger_reason, ''), created_at, updated_at
FROM schedule_readiness
WHERE plant_id = $1
LIMIT 1`, plantID)
	return scanRecord(row)
}

// Save upserts a readiness record keyed by plant. The per-plant row lock
// taken by the upsert is what serializes overlapping sweeps at the storage
// level.
func (r *RecordRepository) Save(ctx context.Context, record *readiness.Record) error {
	if r == nil || r.db == nil {
		return errors.New("readiness repo: nil db")
	}
	if record == nil {
		return errors.New("readiness repo: nil record")
	}
	if record.ID == "" || record.PlantID == "" {
		return errors.New("readiness repo: missing fields")
	}
	if !readiness.ValidStatus(record.Status) {
		return errors.New("readiness repo: invalid status")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO schedule_readiness (
	id, plant_id, plant_name, status, last_checked, upload_deadline,
	schedule_date, revision_number, trigger_reason, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
)
ON CONFLICT (plant_id)
DO UPDATE SET
	plant_name = EXCLUDED.plant_name,
	status = EXCLUDED.status,
	last_checked = EXCLUDED.last_checked,
	upload_deadline = EXCLUDED.upload_deadline,
	schedule_date = EXCLUDED.schedule_date,
	revision_number = EXCLUDED.revision_number,
	trigger_reason = EXCLUDED.trigger_reason,
	updated_at = EXCLUDED.updated_at`,
		record.ID,
		record.PlantID,
		record.PlantName,
		record.Status,
		nullableTime(record.LastChecked),
		nullableTime(record.UploadDeadline),
		nullableTime(record.ScheduleDate),
		record.RevisionNumber,
		nullableString(record.TriggerReason),
		record.CreatedAt,
		record.UpdatedAt,
	)
	return err
}

// List returns readiness records, optionally filtered by status, newest
// update first.
func (r *RecordRepository) List(ctx context.Context, status string) ([]readiness.Record, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("readiness repo: nil db")
	}
	query := `
SELECT id, plant_id, plant_name, status, last_checked, upload_deadline,
	schedule_date, revision_number, COALESCE(trigger_reason, ''), created_at, updated_at
FROM schedule_readiness`
	var args []any
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY updated_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []readiness.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*readiness.Record, error) {
	var record readiness.Record
	var lastChecked, uploadDeadline, scheduleDate sql.NullTime
	if err := row.Scan(
		&record.ID,
		&record.PlantID,
		&record.PlantName,
		&record.Status,
		&lastChecked,
		&uploadDeadline,
		&scheduleDate,
		&record.RevisionNumber,
		&record.TriggerReason,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	if lastChecked.Valid {
		record.LastChecked = lastChecked.Time.UTC()
	}
	if uploadDeadline.Valid {
		record.UploadDeadline = uploadDeadline.Time.UTC()
	}
	if scheduleDate.Valid {
		record.ScheduleDate = scheduleDate.Time.UTC()
	}
	return &record, nil
}

func nullableTime(value time.Time) sql.NullTime {
	if value.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: value, Valid: true}
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
