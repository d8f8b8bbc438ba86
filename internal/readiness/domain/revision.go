package readiness

import (
	"fmt"
	"math"
	"time"

	signals "plantsched/internal/signals/domain"
)

// TotalBlocks is the number of 15-minute blocks in an operational day.
const TotalBlocks = 96

// nearTermBlocks have live meter data available; beyond them the proposal
// is forecast-only.
const nearTermBlocks = 4

// ScheduleBlock is one block of a revision proposal.
type ScheduleBlock struct {
	Block     int     `json:"block"`
	Time      string  `json:"time"`
	Forecast  float64 `json:"forecast"`
	Actual    float64 `json:"actual"`
	Scheduled float64 `json:"scheduled"`
	Source    string  `json:"source"`
}

// RevisionSchedule is a full-day block-level proposal for one plant. It is
// a proposal only: generating one mutates neither the readiness record nor
// the trigger log.
type RevisionSchedule struct {
	PlantID      string                   `json:"plant_id"`
	ScheduleDate time.Time                `json:"schedule_date"`
	TotalBlocks  int                      `json:"total_blocks"`
	Blocks       map[string]ScheduleBlock `json:"block_data"`
	GeneratedAt  time.Time                `json:"generated_at"`
}

// GenerateRevisionSchedule builds a 96-block proposal from live meter data,
// the day forecast, and an optional weather adjustment factor. Near-term
// blocks take forecast times the adjustment, with the live metered value as
// actual when present; the remaining blocks are forecast-only.
func GenerateRevisionSchedule(
	plantID string,
	scheduleDate time.Time,
	generatedAt time.Time,
	meter map[string]signals.BlockReading,
	forecast map[string]signals.ForecastBlock,
	weatherAdjustment float64,
) RevisionSchedule {
	if weatherAdjustment <= 0 {
		weatherAdjustment = 1.0
	}

	blocks := make(map[string]ScheduleBlock, TotalBlocks)
	for i := 1; i <= TotalBlocks; i++ {
		key := BlockKey(i)
		forecastValue := forecast[key].Forecast

		block := ScheduleBlock{
			Block:    i,
			Time:     BlockTime(i),
			Forecast: forecastValue,
			Source:   "forecast",
		}
		if i <= nearTermBlocks {
			block.Scheduled = round2(forecastValue * weatherAdjustment)
			block.Actual = forecastValue
			if reading, ok := meter[key]; ok {
				block.Actual = reading.Generation
			}
		} else {
			block.Scheduled = round2(forecastValue)
		}
		blocks[key] = block
	}

	return RevisionSchedule{
		PlantID:      plantID,
		ScheduleDate: scheduleDate,
		TotalBlocks:  TotalBlocks,
		Blocks:       blocks,
		GeneratedAt:  generatedAt,
	}
}

// BlockKey returns the map key for a block number.
func BlockKey(block int) string {
	return fmt.Sprintf("block_%d", block)
}

// BlockTime maps a block number to its time of day (HH:MM).
func BlockTime(block int) string {
	hour := (block - 1) / 4
	minute := ((block - 1) % 4) * 15
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// BlockIndexAt returns the 1-based block covering the given instant,
// rounded down to the nearest 15-minute boundary.
func BlockIndexAt(t time.Time) int {
	return t.Hour()*4 + t.Minute()/15 + 1
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
