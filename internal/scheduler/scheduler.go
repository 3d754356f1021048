package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"CupidGems/internal/economy"
	"CupidGems/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Publisher receives every snapshot the tick produces.
type Publisher interface {
	Publish(snap economy.Snapshot)
}

// Scheduler re-derives the time-dependent economy values on a cron schedule
// and pushes them to the view layer. The economy itself never runs timers.
type Scheduler struct {
	Cron      *cron.Cron
	Economy   *economy.Economy
	Publisher Publisher
	Recorder  recorder.Recorder

	mu          sync.Mutex
	boostActive bool
	canClaim    bool
}

// NewScheduler creates a Scheduler whose cron runs in the economy's calendar.
func NewScheduler(econ *economy.Economy, pub Publisher, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	snap := econ.Snapshot()
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds(), cron.WithLocation(econ.Location())),
		Economy:     econ,
		Publisher:   pub,
		Recorder:    rec,
		boostActive: snap.BoostActive,
		canClaim:    snap.CanClaimToday,
	}
}

// RegisterAll registers the periodic tick and the midnight rollover.
func (s *Scheduler) RegisterAll(tickCron, rolloverCron string) error {
	if _, err := s.Cron.AddFunc(tickCron, s.Tick); err != nil {
		return fmt.Errorf("register tick: %w", err)
	}
	if _, err := s.Cron.AddFunc(rolloverCron, func() {
		log.Println("[INFO] calendar day rolled over")
		s.Tick()
	}); err != nil {
		return fmt.Errorf("register rollover: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// Tick snapshots the economy, notes boost expiry and daily-claim reopening,
// and publishes the snapshot.
func (s *Scheduler) Tick() {
	snap := s.Economy.Snapshot()

	s.mu.Lock()
	expired := s.boostActive && !snap.BoostActive
	reopened := !s.canClaim && snap.CanClaimToday
	s.boostActive = snap.BoostActive
	s.canClaim = snap.CanClaimToday
	s.mu.Unlock()

	now := time.UnixMilli(snap.TakenAt)
	if expired {
		log.Println("[INFO] boost expired")
		var end time.Time
		if snap.BoostEndTime != nil {
			end = time.UnixMilli(*snap.BoostEndTime)
		}
		if err := s.Recorder.RecordBoost(&recorder.BoostEvent{
			At: now, Action: recorder.BoostExpired, EndTime: end, BalanceAfter: snap.Balance,
		}); err != nil {
			log.Printf("[ERROR] record boost expiry: %v", err)
		}
	}
	if reopened {
		log.Printf("[INFO] daily reward available again (next reward %d)", snap.NextReward)
		if err := s.Recorder.RecordSystem(&recorder.SystemEvent{
			At: now, Kind: recorder.SystemDayRollover,
			Note: fmt.Sprintf("streak=%d next_reward=%d", snap.Streak, snap.NextReward),
		}); err != nil {
			log.Printf("[ERROR] record rollover: %v", err)
		}
	}

	if s.Publisher != nil {
		s.Publisher.Publish(snap)
	}
}
