package application

import (
	"context"
	"log"
	"time"
)

const defaultSweepEvery = 5 * time.Minute

// Scheduler drives the periodic readiness sweep.
type Scheduler struct {
	service *Service
	every   time.Duration
	logger  *log.Logger
}

// NewScheduler constructs a Scheduler. A non-positive interval falls back
// to the default cadence.
func NewScheduler(service *Service, every time.Duration, logger *log.Logger) *Scheduler {
	if every <= 0 {
		every = defaultSweepEvery
	}
	return &Scheduler{service: service, every: every, logger: logger}
}

// Start begins the sweep loop and blocks until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.service == nil {
		return
	}
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			census, err := s.service.CheckAllPlants(ctx)
			if err != nil {
				if s.logger != nil {
					s.logger.Printf("readiness sweep error: %v", err)
				}
				continue
			}
			if s.logger != nil {
				s.logger.Printf("readiness sweep: ready=%d pending=%d no_action=%d", census.Ready, census.Pending, census.NoAction)
			}
		}
	}
}
