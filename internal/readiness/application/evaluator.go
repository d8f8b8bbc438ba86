package application

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"plantsched/internal/observability/metrics"
	readiness "plantsched/internal/readiness/domain"
	registry "plantsched/internal/registry/domain"
	signals "plantsched/internal/signals/domain"
)

// Evaluator inspects one plant's current signals against the configured
// thresholds and materializes each exceedance as a persisted trigger.
type Evaluator struct {
	meters     signals.MeterReader
	weather    signals.WeatherReader
	reports    signals.FieldReportReader
	triggers   readiness.TriggerRepository
	thresholds Thresholds
	clock      Clock
}

// NewEvaluator constructs an evaluator.
func NewEvaluator(meters signals.MeterReader, weather signals.WeatherReader, reports signals.FieldReportReader, triggers readiness.TriggerRepository, thresholds Thresholds, clock Clock) (*Evaluator, error) {
	if meters == nil || weather == nil || reports == nil {
		return nil, errors.New("evaluator: nil signal reader")
	}
	if triggers == nil {
		return nil, errors.New("evaluator: nil trigger repository")
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Evaluator{
		meters:     meters,
		weather:    weather,
		reports:    reports,
		triggers:   triggers,
		thresholds: thresholds,
		clock:      clock,
	}, nil
}

// Evaluate runs the three independent checks for a plant. Every emitted
// trigger is persisted before the set is returned; an empty set is the
// common case. Missing or malformed signals skip the corresponding check.
func (e *Evaluator) Evaluate(ctx context.Context, plant registry.Plant) ([]readiness.Trigger, error) {
	if e == nil {
		return nil, errors.New("evaluator: nil")
	}

	var active []readiness.Trigger
	checks := []func(context.Context, registry.Plant) (*readiness.Trigger, error){
		e.checkDeviation,
		e.checkWeather,
		e.checkCurtailment,
	}
	for _, check := range checks {
		trigger, err := check(ctx, plant)
		if err != nil {
			return nil, err
		}
		if trigger == nil {
			continue
		}
		if err := e.triggers.Create(ctx, trigger); err != nil {
			return nil, err
		}
		metrics.IncTrigger(trigger.Type, trigger.Severity)
		active = append(active, *trigger)
	}
	return active, nil
}

// checkDeviation compares metered generation against the scheduled value
// for the block covering the current wall-clock time.
func (e *Evaluator) checkDeviation(ctx context.Context, plant registry.Plant) (*readiness.Trigger, error) {
	record, err := e.meters.LatestByPlant(ctx, plant.ID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	blocks, ok := record.Blocks()
	if !ok {
		return nil, nil
	}

	now := e.clock.Now().UTC()
	current, ok := blocks[readiness.BlockKey(readiness.BlockIndexAt(now))]
	if !ok {
		return nil, nil
	}
	if current.Scheduled == 0 {
		// Undefined ratio, defined as "no signal".
		return nil, nil
	}

	deviationPct := (current.Generation - current.Scheduled) / current.Scheduled * 100
	if math.Abs(deviationPct) < e.thresholds.DeviationPct {
		return nil, nil
	}

	severity := readiness.SeverityMedium
	if math.Abs(deviationPct) >= e.thresholds.DeviationHighPct {
		severity = readiness.SeverityHigh
	}
	return &readiness.Trigger{
		ID:             buildTriggerID(plant.ID, readiness.TriggerDeviation, now),
		PlantID:        plant.ID,
		Type:           readiness.TriggerDeviation,
		Severity:       severity,
		Description:    fmt.Sprintf("Meter deviation of %.1f%% detected", deviationPct),
		ThresholdValue: e.thresholds.DeviationPct,
		ActualValue:    deviationPct,
		CreatedAt:      now,
	}, nil
}

// checkWeather compares the forecast value of the driving parameter (wind
// speed for Wind plants, cloud cover for Solar) against the current
// observation. A zero current value skips the check.
func (e *Evaluator) checkWeather(ctx context.Context, plant registry.Plant) (*readiness.Trigger, error) {
	record, err := e.weather.LatestByLocation(ctx, plant.WeatherLocation())
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	forecast, ok := record.ForecastData()
	if !ok {
		return nil, nil
	}

	var current, forecastValue float64
	var parameter string
	if plant.Type == registry.TypeWind {
		parameter = "Wind"
		current = record.WindSpeed
		forecastValue = current
		if forecast.WindSpeed != nil {
			forecastValue = *forecast.WindSpeed
		}
	} else {
		parameter = "Cloud cover"
		current = record.CloudCover
		forecastValue = current
		if forecast.CloudCover != nil {
			forecastValue = *forecast.CloudCover
		}
	}
	if current == 0 {
		return nil, nil
	}

	changePct := (forecastValue - current) / current * 100
	if math.Abs(changePct) < e.thresholds.WeatherChangePct {
		return nil, nil
	}

	now := e.clock.Now().UTC()
	severity := readiness.SeverityMedium
	if math.Abs(changePct) >= e.thresholds.WeatherHighPct {
		severity = readiness.SeverityHigh
	}
	return &readiness.Trigger{
		ID:             buildTriggerID(plant.ID, readiness.TriggerWeather, now),
		PlantID:        plant.ID,
		Type:           readiness.TriggerWeather,
		Severity:       severity,
		Description:    fmt.Sprintf("%s forecast change of %.1f%% detected", parameter, changePct),
		ThresholdValue: e.thresholds.WeatherChangePct,
		ActualValue:    changePct,
		CreatedAt:      now,
	}, nil
}

// checkCurtailment fires unconditionally when the latest field report flags
// active curtailment.
func (e *Evaluator) checkCurtailment(ctx context.Context, plant registry.Plant) (*readiness.Trigger, error) {
	report, err := e.reports.LatestByPlant(ctx, plant.ID)
	if err != nil {
		return nil, err
	}
	if report == nil || !report.CurtailmentStatus {
		return nil, nil
	}

	reason := report.CurtailmentReason
	if reason == "" {
		reason = "No reason specified"
	}
	now := e.clock.Now().UTC()
	return &readiness.Trigger{
		ID:          buildTriggerID(plant.ID, readiness.TriggerCurtailment, now),
		PlantID:     plant.ID,
		Type:        readiness.TriggerCurtailment,
		Severity:    readiness.SeverityCritical,
		Description: fmt.Sprintf("Curtailment active: %s", reason),
		ActualValue: 1,
		CreatedAt:   now,
	}, nil
}

func buildTriggerID(plantID, triggerType string, at time.Time) string {
	sum := sha1.Sum([]byte(plantID + "|" + triggerType + "|" + at.Format(time.RFC3339Nano)))
	return "trig-" + hex.EncodeToString(sum[:8])
}
