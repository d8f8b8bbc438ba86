package application

import (
	"context"
	"testing"
	"time"

	registry "plantsched/internal/registry/domain"
)

func TestSchedulerSweeps(t *testing.T) {
	meters, weather, reports := quietSignals()
	h := newTestService(t, []registry.Plant{testPlant(registry.TypeWind)}, meters, weather, reports)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := NewScheduler(h.service, 10*time.Millisecond, nil)
	done := make(chan struct{})
	go func() {
		scheduler.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		record, err := h.service.GetPlantReadiness(context.Background(), "plant-1")
		if err == nil && record != nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for sweep to create the record")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}

func TestSchedulerDefaultInterval(t *testing.T) {
	meters, weather, reports := quietSignals()
	h := newTestService(t, []registry.Plant{testPlant(registry.TypeWind)}, meters, weather, reports)

	scheduler := NewScheduler(h.service, 0, nil)
	if scheduler.every != defaultSweepEvery {
		t.Fatalf("expected default cadence %s, got %s", defaultSweepEvery, scheduler.every)
	}
}
