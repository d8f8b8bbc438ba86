package signals

import (
	"context"
	"encoding/json"
	"time"
)

// BlockReading holds one 15-minute block of metered vs scheduled energy.
type BlockReading struct {
	Block      int     `json:"block"`
	Time       string  `json:"time"`
	Generation float64 `json:"generation"`
	Scheduled  float64 `json:"scheduled"`
}

// MeterRecord is the latest metering snapshot for a plant. BlockData is the
// raw 96-block JSON document as imported from SCADA or manual upload.
type MeterRecord struct {
	PlantID   string
	PlantName string
	DataDate  time.Time
	BlockData []byte
	Source    string
	CreatedAt time.Time
}

// Blocks decodes the block map. A malformed or empty payload yields
// (nil, false): telemetry is allowed to be partially missing and the caller
// skips the corresponding check.
func (m *MeterRecord) Blocks() (map[string]BlockReading, bool) {
	if m == nil || len(m.BlockData) == 0 {
		return nil, false
	}
	var blocks map[string]BlockReading
	if err := json.Unmarshal(m.BlockData, &blocks); err != nil {
		return nil, false
	}
	if len(blocks) == 0 {
		return nil, false
	}
	return blocks, true
}

// MeterReader loads the most recent meter record for a plant.
type MeterReader interface {
	LatestByPlant(ctx context.Context, plantID string) (*MeterRecord, error)
}
