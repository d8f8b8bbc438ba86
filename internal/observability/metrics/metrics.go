package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "plantsched_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	sweepTotal   *prometheus.CounterVec
	sweepLatency *prometheus.HistogramVec

	plantChecksTotal *prometheus.CounterVec

	triggersTotal *prometheus.CounterVec

	notificationsTotal *prometheus.CounterVec

	manualOpsTotal *prometheus.CounterVec
)

// Init registers readiness engine metrics.
func Init() {
	registerOnce.Do(func() {
		sweepTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sweep_total",
				Help: "Total readiness sweeps by result",
			},
			[]string{"result"},
		)
		sweepLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "sweep_latency_seconds",
				Help:    "Readiness sweep latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		plantChecksTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "plant_checks_total",
				Help: "Total per-plant readiness checks by resulting status",
			},
			[]string{"status"},
		)

		triggersTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "triggers_total",
				Help: "Total emitted triggers by type and severity",
			},
			[]string{"type", "severity"},
		)

		notificationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notifications_total",
				Help: "Total created notifications by type",
			},
			[]string{"type"},
		)

		manualOpsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "manual_ops_total",
				Help: "Total manual operator actions by operation",
			},
			[]string{"op"},
		)

		prometheus.MustRegister(
			sweepTotal,
			sweepLatency,
			plantChecksTotal,
			triggersTotal,
			notificationsTotal,
			manualOpsTotal,
		)
	})
}

// ObserveSweep records sweep duration and result.
func ObserveSweep(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if sweepTotal != nil {
		sweepTotal.WithLabelValues(result).Inc()
	}
	if sweepLatency != nil {
		sweepLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncPlantCheck increments the per-plant check counter by resulting status.
func IncPlantCheck(status string) {
	if status == "" {
		status = "unknown"
	}
	if plantChecksTotal != nil {
		plantChecksTotal.WithLabelValues(status).Inc()
	}
}

// IncTrigger increments the emitted trigger counter.
func IncTrigger(triggerType, severity string) {
	if triggerType == "" {
		triggerType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}
	if triggersTotal != nil {
		triggersTotal.WithLabelValues(triggerType, severity).Inc()
	}
}

// IncNotification increments the created notification counter.
func IncNotification(notificationType string) {
	if notificationType == "" {
		notificationType = "unknown"
	}
	if notificationsTotal != nil {
		notificationsTotal.WithLabelValues(notificationType).Inc()
	}
}

// IncManualOp increments the manual operation counter.
func IncManualOp(op string) {
	if op == "" {
		op = "unknown"
	}
	if manualOpsTotal != nil {
		manualOpsTotal.WithLabelValues(op).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
