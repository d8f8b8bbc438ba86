package signals

import (
	"context"
	"time"
)

// FieldReport is the latest operator-submitted site report. Curtailment is
// flagged by field operators and always warrants a schedule revision.
type FieldReport struct {
	PlantID           string
	PlantName         string
	ReportDate        time.Time
	CurrentGeneration float64
	ExpectedTrend     string
	CurtailmentStatus bool
	CurtailmentReason string
	CreatedAt         time.Time
}

// FieldReportReader loads the most recent field report for a plant.
type FieldReportReader interface {
	LatestByPlant(ctx context.Context, plantID string) (*FieldReport, error)
}
