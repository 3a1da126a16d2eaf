package sync

import (
	"context"
	"log"
	"time"

	"github.com/fortuna/vesta/internal/service"
	"github.com/jonboulle/clockwork"
)

// SchedulerConfig holds daily sync scheduling configuration.
type SchedulerConfig struct {
	Hour    int  // hour of day, local time
	Enabled bool // disabled by default
}

// DefaultSchedulerConfig returns the default schedule: 03:00, disabled.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{Hour: 3, Enabled: false}
}

// Scheduler runs the full sync once a day at a configured hour.
type Scheduler struct {
	driver *Driver
	config *SchedulerConfig
	clock  clockwork.Clock
}

// NewScheduler creates a daily sync scheduler.
func NewScheduler(driver *Driver, config *SchedulerConfig, clock clockwork.Clock) *Scheduler {
	if config == nil {
		config = DefaultSchedulerConfig()
	}
	return &Scheduler{
		driver: driver,
		config: config,
		clock:  clock,
	}
}

// Start blocks, running the full sync daily until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("[sync] daily scheduler started (runs at %02d:00)", s.config.Hour)

	for {
		now := s.clock.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), s.config.Hour, 0, 0, 0, now.Location())
		if !now.Before(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}
		log.Printf("[sync] next daily run: %s", nextRun.Format("2006-01-02 15:04:05"))

		select {
		case <-ctx.Done():
			log.Println("[sync] daily scheduler stopped")
			return
		case <-s.clock.After(nextRun.Sub(now)):
		}

		season := service.CurrentSeason(s.clock.Now())
		report, err := s.driver.Run(ctx, season, "")
		if err != nil {
			log.Printf("[sync] ⚠️ daily run aborted: %v", err)
			continue
		}
		log.Printf("[sync] ✓ daily run %s completed in %s", report.JobID, report.CompletedAt.Sub(report.StartedAt))
	}
}
