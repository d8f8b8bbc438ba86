package postgres

import (
	"context"
	"database/sql"
	"errors"

	signals "plantsched/internal/signals/domain"
)

// LatestReader reads the most recent signal rows used by the readiness
// engine. All three sources are append-only tables owned by the data-entry
// subsystem; the engine only ever needs the newest row.
type LatestReader struct {
	db *sql.DB
}

// NewLatestReader constructs a reader.
func NewLatestReader(db *sql.DB) *LatestReader {
	return &LatestReader{db: db}
}

// LatestByPlant returns the newest meter record for a plant.
func (r *LatestReader) LatestByPlant(ctx context.Context, plantID string) (*signals.MeterRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("signal reader: nil db")
	}
	if plantID == "" {
		return nil, errors.New("signal reader: empty plant id")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT plant_id, plant_name, data_date, block_data, source, created_at
FROM meter_data
WHERE plant_id = $1
ORDER BY data_date DESC, created_at DESC
LIMIT 1`, plantID)

	var record signals.MeterRecord
	if err := row.Scan(
		&record.PlantID,
		&record.PlantName,
		&record.DataDate,
		&record.BlockData,
		&record.Source,
		&record.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	record.DataDate = record.DataDate.UTC()
	record.CreatedAt = record.CreatedAt.UTC()
	return &record, nil
}

// LatestByLocation returns the newest weather record for a location key.
func (r *LatestReader) LatestByLocation(ctx context.Context, location string) (*signals.WeatherRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("signal reader: nil db")
	}
	if location == "" {
		return nil, errors.New("signal reader: empty location")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT location, temperature, humidity, wind_speed, cloud_cover, pressure, forecast, last_updated
FROM weather
WHERE location = $1
ORDER BY last_updated DESC
LIMIT 1`, location)

	var record signals.WeatherRecord
	if err := row.Scan(
		&record.Location,
		&record.Temperature,
		&record.Humidity,
		&record.WindSpeed,
		&record.CloudCover,
		&record.Pressure,
		&record.Forecast,
		&record.LastUpdated,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	record.LastUpdated = record.LastUpdated.UTC()
	return &record, nil
}

// LatestFieldReport returns the newest field report for a plant.
func (r *LatestReader) LatestFieldReport(ctx context.Context, plantID string) (*signals.FieldReport, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("signal reader: nil db")
	}
	if plantID == "" {
		return nil, errors.New("signal reader: empty plant id")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT plant_id, plant_name, report_date, current_generation, expected_trend,
	curtailment_status, COALESCE(curtailment_reason, ''), created_at
FROM field_reports
WHERE plant_id = $1
ORDER BY created_at DESC
LIMIT 1`, plantID)

	var report signals.FieldReport
	if err := row.Scan(
		&report.PlantID,
		&report.PlantName,
		&report.ReportDate,
		&report.CurrentGeneration,
		&report.ExpectedTrend,
		&report.CurtailmentStatus,
		&report.CurtailmentReason,
		&report.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	report.ReportDate = report.ReportDate.UTC()
	report.CreatedAt = report.CreatedAt.UTC()
	return &report, nil
}

// fieldReportReader adapts LatestFieldReport to the FieldReportReader
// interface without clashing with the meter reader method set.
type fieldReportReader struct {
	reader *LatestReader
}

// FieldReports exposes the reader as a signals.FieldReportReader.
func (r *LatestReader) FieldReports() signals.FieldReportReader {
	return fieldReportReader{reader: r}
}

func (a fieldReportReader) LatestByPlant(ctx context.Context, plantID string) (*signals.FieldReport, error) {
	return a.reader.LatestFieldReport(ctx, plantID)
}
