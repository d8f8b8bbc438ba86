package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"plantsched/internal/observability/metrics"
	readiness "plantsched/internal/readiness/domain"
	"plantsched/internal/readiness/notify"
	registry "plantsched/internal/registry/domain"
	signals "plantsched/internal/signals/domain"
)

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// ScheduleFileChecker reports whether an operator-supplied revised schedule
// file exists for the plant. The real determination inspects an upload
// location; the engine only consumes the boolean.
type ScheduleFileChecker func(ctx context.Context, plantID string) bool

// StatusCensus is the aggregate result of one sweep.
type StatusCensus struct {
	Ready    int `json:"ready"`
	Pending  int `json:"pending"`
	NoAction int `json:"no_action"`
}

// Service drives the schedule readiness engine: it owns the readiness
// record per plant and the trigger/notification logs.
type Service struct {
	plants        registry.PlantRepository
	records       readiness.RecordRepository
	triggers      readiness.TriggerRepository
	notifications readiness.NotificationRepository
	dispatcher    *notify.Dispatcher
	evaluator     *Evaluator
	scheduleFiles ScheduleFileChecker
	clock         Clock
	logger        *log.Logger
	cfg           Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// ServiceOption customizes the service.
type ServiceOption func(*Service)

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithScheduleFileChecker injects the updated-schedule-file hook.
func WithScheduleFileChecker(checker ScheduleFileChecker) ServiceOption {
	return func(s *Service) {
		if checker != nil {
			s.scheduleFiles = checker
		}
	}
}

// WithLogger assigns a logger.
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs the readiness service.
func NewService(
	plants registry.PlantRepository,
	records readiness.RecordRepository,
	triggers readiness.TriggerRepository,
	notifications readiness.NotificationRepository,
	meters signals.MeterReader,
	weather signals.WeatherReader,
	reports signals.FieldReportReader,
	cfg Config,
	opts ...ServiceOption,
) (*Service, error) {
	if plants == nil {
		return nil, errors.New("readiness: nil plant repository")
	}
	if records == nil || triggers == nil || notifications == nil {
		return nil, errors.New("readiness: nil repository")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	service := &Service{
		plants:        plants,
		records:       records,
		triggers:      triggers,
		notifications: notifications,
		clock:         systemClock{},
		cfg:           cfg,
		locks:         make(map[string]*sync.Mutex),
		scheduleFiles: func(context.Context, string) bool { return false },
	}
	for _, opt := range opts {
		opt(service)
	}

	dispatcher, err := notify.NewDispatcher(notifications,
		notify.WithClock(service.clock),
		notify.WithDedupeWindow(cfg.DedupeWindow()),
	)
	if err != nil {
		return nil, err
	}
	service.dispatcher = dispatcher

	evaluator, err := NewEvaluator(meters, weather, reports, triggers, cfg.Thresholds, service.clock)
	if err != nil {
		return nil, err
	}
	service.evaluator = evaluator

	return service, nil
}

// CheckAllPlants runs one sweep over every registered plant and returns the
// status census. Per-plant failures are isolated: the plant is logged and
// counted as NO_ACTION, and the sweep continues.
func (s *Service) CheckAllPlants(ctx context.Context) (StatusCensus, error) {
	if s == nil {
		return StatusCensus{}, errors.New("readiness: nil service")
	}
	started := s.clock.Now()

	plants, err := s.plants.List(ctx)
	if err != nil {
		metrics.ObserveSweep(metrics.ResultError, s.clock.Now().Sub(started))
		return StatusCensus{}, err
	}

	var census StatusCensus
	for _, plant := range plants {
		record, err := s.checkPlant(ctx, plant, nil)
		if err != nil {
			if s.logger != nil {
				s.logger.Printf("readiness check error: plant=%s err=%v", plant.ID, err)
			}
			census.NoAction++
			metrics.IncPlantCheck(metrics.ResultError)
			continue
		}
		switch record.Status {
		case readiness.StatusReady:
			census.Ready++
		case readiness.StatusPending:
			census.Pending++
		default:
			census.NoAction++
		}
		metrics.IncPlantCheck(record.Status)
	}

	metrics.ObserveSweep(metrics.ResultSuccess, s.clock.Now().Sub(started))
	return census, nil
}

// CheckPlantReadiness evaluates a single plant and returns its updated
// readiness record.
func (s *Service) CheckPlantReadiness(ctx context.Context, plantID string) (*readiness.Record, error) {
	plant, err := s.requirePlant(ctx, plantID)
	if err != nil {
		return nil, err
	}
	return s.checkPlant(ctx, *plant, nil)
}

// TriggerManualRevision records a manual trigger and folds it into a full
// readiness check for the plant.
func (s *Service) TriggerManualRevision(ctx context.Context, plantID, reason string) (*readiness.Record, error) {
	plant, err := s.requirePlant(ctx, plantID)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "Manual Trigger"
	}

	now := s.clock.Now().UTC()
	trigger := &readiness.Trigger{
		ID:          buildTriggerID(plantID, readiness.TriggerManual, now),
		PlantID:     plantID,
		Type:        readiness.TriggerManual,
		Severity:    readiness.SeverityMedium,
		Description: fmt.Sprintf("Manual revision triggered: %s", reason),
		CreatedAt:   now,
	}
	if err := s.triggers.Create(ctx, trigger); err != nil {
		return nil, err
	}
	metrics.IncTrigger(trigger.Type, trigger.Severity)
	metrics.IncManualOp("manual_revision")

	return s.checkPlant(ctx, *plant, []readiness.Trigger{*trigger})
}

// ContinueExistingSchedule dismisses the need to revise: all unprocessed
// triggers are acknowledged and processed, and the record is forced to
// NO_ACTION without re-running the evaluator.
func (s *Service) ContinueExistingSchedule(ctx context.Context, plantID string) (*readiness.Record, error) {
	plant, err := s.requirePlant(ctx, plantID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockPlant(plantID)
	defer unlock()

	if _, err := s.triggers.MarkProcessed(ctx, plantID); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	record, err := s.getOrCreateRecord(ctx, *plant, now)
	if err != nil {
		return nil, err
	}
	record.Status = readiness.StatusNoAction
	record.TriggerReason = ""
	record.LastChecked = now
	record.UpdatedAt = now
	if err := s.records.Save(ctx, record); err != nil {
		return nil, err
	}
	metrics.IncManualOp("continue_existing")
	return record, nil
}

// MarkScheduleReady forces the plant to READY with the given deadline
// (zero means now plus the configured window), increments the revision
// counter and emits the upload notification.
func (s *Service) MarkScheduleReady(ctx context.Context, plantID string, uploadDeadline time.Time) (*readiness.Record, error) {
	plant, err := s.requirePlant(ctx, plantID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockPlant(plantID)
	defer unlock()

	now := s.clock.Now().UTC()
	record, err := s.getOrCreateRecord(ctx, *plant, now)
	if err != nil {
		return nil, err
	}

	if uploadDeadline.IsZero() {
		uploadDeadline = now.Add(s.cfg.UploadDeadline())
	}
	record.Status = readiness.StatusReady
	record.UploadDeadline = uploadDeadline.UTC()
	record.RevisionNumber++
	record.LastChecked = now
	record.UpdatedAt = now
	if err := s.records.Save(ctx, record); err != nil {
		return nil, err
	}

	if _, err := s.dispatcher.ScheduleReady(ctx, plant.ID, plant.Name, record.UploadDeadline); err != nil {
		if s.logger != nil {
			s.logger.Printf("ready notification error: plant=%s err=%v", plant.ID, err)
		}
	} else {
		metrics.IncNotification(readiness.NotificationScheduleReady)
	}
	metrics.IncManualOp("mark_ready")
	return record, nil
}

// GetPlantReadiness returns the plant's current readiness record.
func (s *Service) GetPlantReadiness(ctx context.Context, plantID string) (*readiness.Record, error) {
	if s == nil {
		return nil, errors.New("readiness: nil service")
	}
	if plantID == "" {
		return nil, errors.New("readiness: plant id required")
	}
	record, err := s.records.GetByPlant(ctx, plantID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, readiness.ErrNotFound
	}
	return record, nil
}

// ListReadiness returns all readiness records, optionally filtered by
// status ("All" and "" mean no filter).
func (s *Service) ListReadiness(ctx context.Context, status string) ([]readiness.Record, error) {
	if s == nil {
		return nil, errors.New("readiness: nil service")
	}
	if status == "All" {
		status = ""
	}
	if status != "" && !readiness.ValidStatus(status) {
		return nil, errors.New("readiness: invalid status filter")
	}
	return s.records.List(ctx, status)
}

// ListNotifications returns notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, plantID string, unreadOnly bool) ([]readiness.Notification, error) {
	if s == nil {
		return nil, errors.New("readiness: nil service")
	}
	return s.notifications.List(ctx, plantID, unreadOnly)
}

// MarkNotificationRead flags a notification as read.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) (*readiness.Notification, error) {
	if s == nil {
		return nil, errors.New("readiness: nil service")
	}
	if id == "" {
		return nil, errors.New("readiness: notification id required")
	}
	notification, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification == nil {
		return nil, readiness.ErrNotFound
	}
	if !notification.Read {
		if err := s.notifications.MarkRead(ctx, id, s.clock.Now().UTC()); err != nil {
			return nil, err
		}
		notification.Read = true
	}
	return notification, nil
}

// GenerateRevisionSchedule builds a 96-block proposal for the plant from
// the supplied meter and forecast payloads. It mutates nothing.
func (s *Service) GenerateRevisionSchedule(ctx context.Context, plantID string, meter map[string]signals.BlockReading, forecast map[string]signals.ForecastBlock, weatherAdjustment float64) (*readiness.RevisionSchedule, error) {
	if _, err := s.requirePlant(ctx, plantID); err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	proposal := readiness.GenerateRevisionSchedule(plantID, dayStart(now), now, meter, forecast, weatherAdjustment)
	return &proposal, nil
}

func (s *Service) checkPlant(ctx context.Context, plant registry.Plant, extra []readiness.Trigger) (*readiness.Record, error) {
	if s == nil {
		return nil, errors.New("readiness: nil service")
	}
	if err := plant.Validate(); err != nil {
		return nil, err
	}

	unlock := s.lockPlant(plant.ID)
	defer unlock()

	now := s.clock.Now().UTC()
	record, err := s.getOrCreateRecord(ctx, plant, now)
	if err != nil {
		return nil, err
	}

	active, err := s.evaluator.Evaluate(ctx, plant)
	if err != nil {
		return nil, err
	}
	active = append(active, extra...)

	hasUpdatedSchedule := s.scheduleFiles(ctx, plant.ID)
	newStatus := readiness.NextStatus(hasUpdatedSchedule, len(active) > 0)
	oldStatus := record.Status

	record.PlantName = plant.Name
	record.Status = newStatus
	record.LastChecked = now
	record.TriggerReason = ""
	record.UpdatedAt = now

	if newStatus == readiness.StatusPending {
		record.TriggerReason = readiness.TriggerReason(active)
		for _, trigger := range active {
			_, created, err := s.dispatcher.TriggerAlert(ctx, plant.ID, plant.Name, trigger)
			if err != nil {
				if s.logger != nil {
					s.logger.Printf("trigger notification error: plant=%s err=%v", plant.ID, err)
				}
				continue
			}
			if created {
				metrics.IncNotification(readiness.NotificationTriggerAlert)
			}
		}
	}

	if newStatus == readiness.StatusReady && oldStatus != readiness.StatusReady {
		record.UploadDeadline = now.Add(s.cfg.UploadDeadline())
		record.RevisionNumber++
		if _, err := s.dispatcher.ScheduleReady(ctx, plant.ID, plant.Name, record.UploadDeadline); err != nil {
			if s.logger != nil {
				s.logger.Printf("ready notification error: plant=%s err=%v", plant.ID, err)
			}
		} else {
			metrics.IncNotification(readiness.NotificationScheduleReady)
		}
	}

	if err := s.records.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) getOrCreateRecord(ctx context.Context, plant registry.Plant, now time.Time) (*readiness.Record, error) {
	record, err := s.records.GetByPlant(ctx, plant.ID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}
	record = &readiness.Record{
		ID:           "rdy-" + plant.ID,
		PlantID:      plant.ID,
		PlantName:    plant.Name,
		Status:       readiness.StatusNoAction,
		ScheduleDate: dayStart(now),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.records.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) requirePlant(ctx context.Context, plantID string) (*registry.Plant, error) {
	if s == nil {
		return nil, errors.New("readiness: nil service")
	}
	if plantID == "" {
		return nil, errors.New("readiness: plant id required")
	}
	plant, err := s.plants.Get(ctx, plantID)
	if err != nil {
		return nil, err
	}
	if plant == nil {
		return nil, readiness.ErrPlantNotFound
	}
	return plant, nil
}

// lockPlant serializes record updates per plant so a scheduled sweep and a
// racing manual operation cannot lose updates.
func (s *Service) lockPlant(plantID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[plantID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[plantID] = lock
	}
	s.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
