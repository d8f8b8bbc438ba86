package notify

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	readiness "plantsched/internal/readiness/domain"
	"plantsched/internal/readiness/infrastructure/memory"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newDispatcher(t *testing.T, clock Clock) (*Dispatcher, *memory.NotificationRepository) {
	t.Helper()
	log := memory.NewNotificationRepository()
	dispatcher, err := NewDispatcher(log, WithClock(clock))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return dispatcher, log
}

func TestTriggerAlertCreatesNotification(t *testing.T) {
	clock := &fixedClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	dispatcher, log := newDispatcher(t, clock)

	trigger := readiness.Trigger{
		Type:        readiness.TriggerDeviation,
		Severity:    readiness.SeverityHigh,
		ActualValue: 23.4,
	}
	notification, created, err := dispatcher.TriggerAlert(context.Background(), "plant-1", "Plant One", trigger)
	if err != nil {
		t.Fatalf("trigger alert: %v", err)
	}
	if !created {
		t.Fatal("expected a new notification to be created")
	}
	if notification.Type != readiness.NotificationTriggerAlert {
		t.Fatalf("expected Trigger Alert, got %s", notification.Type)
	}
	if notification.Title != "Meter Deviation Detected" {
		t.Fatalf("unexpected title %q", notification.Title)
	}
	if !strings.Contains(notification.Message, "23.4%") {
		t.Fatalf("unexpected message %q", notification.Message)
	}
	if notification.Priority != readiness.PriorityHigh {
		t.Fatalf("expected HIGH priority, got %s", notification.Priority)
	}

	stored, err := log.List(context.Background(), "plant-1", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected one stored notification, got %d", len(stored))
	}
}

func TestTriggerAlertSuppressedWithinWindow(t *testing.T) {
	clock := &fixedClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	dispatcher, log := newDispatcher(t, clock)

	trigger := readiness.Trigger{Type: readiness.TriggerWeather, Severity: readiness.SeverityMedium}
	first, created, err := dispatcher.TriggerAlert(context.Background(), "plant-1", "Plant One", trigger)
	if err != nil {
		t.Fatalf("first alert: %v", err)
	}
	if !created {
		t.Fatal("expected first alert to be created")
	}

	clock.Advance(59 * time.Minute)
	second, created, err := dispatcher.TriggerAlert(context.Background(), "plant-1", "Plant One", trigger)
	if err != nil {
		t.Fatalf("second alert: %v", err)
	}
	if created {
		t.Fatal("expected suppressed alert to report created=false")
	}
	if second.ID != first.ID {
		t.Fatalf("expected suppressed alert to return the existing notification")
	}

	stored, err := log.List(context.Background(), "plant-1", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected one stored notification, got %d", len(stored))
	}

	clock.Advance(2 * time.Minute)
	third, created, err := dispatcher.TriggerAlert(context.Background(), "plant-1", "Plant One", trigger)
	if err != nil {
		t.Fatalf("third alert: %v", err)
	}
	if !created {
		t.Fatal("expected a fresh alert once the window passed")
	}
	if third.ID == first.ID {
		t.Fatal("expected a fresh alert once the window passed")
	}
}

func TestTriggerAlertWindowIsPerPlant(t *testing.T) {
	clock := &fixedClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	dispatcher, log := newDispatcher(t, clock)

	trigger := readiness.Trigger{Type: readiness.TriggerCurtailment, Severity: readiness.SeverityCritical}
	if _, _, err := dispatcher.TriggerAlert(context.Background(), "plant-1", "Plant One", trigger); err != nil {
		t.Fatalf("plant-1 alert: %v", err)
	}
	if _, _, err := dispatcher.TriggerAlert(context.Background(), "plant-2", "Plant Two", trigger); err != nil {
		t.Fatalf("plant-2 alert: %v", err)
	}

	stored, err := log.List(context.Background(), "", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected one alert per plant, got %d", len(stored))
	}
}

func TestScheduleReadyAlwaysCreated(t *testing.T) {
	clock := &fixedClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	dispatcher, log := newDispatcher(t, clock)

	deadline := clock.Now().Add(4 * time.Hour)
	first, err := dispatcher.ScheduleReady(context.Background(), "plant-1", "Plant One", deadline)
	if err != nil {
		t.Fatalf("schedule ready: %v", err)
	}
	if first.Priority != readiness.PriorityUrgent {
		t.Fatalf("expected URGENT priority, got %s", first.Priority)
	}
	if first.Message != "Updated schedule for Plant One is ready for upload. Deadline: 2026-03-02 12:00" {
		t.Fatalf("unexpected message %q", first.Message)
	}
	if !first.Deadline.Equal(deadline) {
		t.Fatalf("expected deadline %s, got %s", deadline, first.Deadline)
	}

	// Ready notifications are never rate limited.
	clock.Advance(time.Minute)
	if _, err := dispatcher.ScheduleReady(context.Background(), "plant-1", "Plant One", deadline); err != nil {
		t.Fatalf("second schedule ready: %v", err)
	}
	stored, err := log.List(context.Background(), "plant-1", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected two notifications, got %d", len(stored))
	}
}
