package economy

import (
	"log"
	"time"

	"CupidGems/internal/recorder"
)

// Default boost offer.
const (
	DefaultBoostMinutes = 60
	DefaultBoostCost    = 25
)

// BoostActiveAt reports whether a boost ending at end is still running at now.
func BoostActiveAt(end, now time.Time) bool {
	return !end.IsZero() && end.After(now)
}

// RemainingMinutesAt rounds the time left up to whole minutes; 0 when expired.
func RemainingMinutesAt(end, now time.Time) int {
	if !BoostActiveAt(end, now) {
		return 0
	}
	d := end.Sub(now)
	return int((d + time.Minute - 1) / time.Minute)
}

// BoostEndTime returns the stored end instant, zero if never activated.
func (e *Economy) BoostEndTime() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.BoostEndTime
}

// BoostActive reports whether a boost is running now.
func (e *Economy) BoostActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return BoostActiveAt(e.state.BoostEndTime, e.clock.Now())
}

// BoostRemainingMinutes returns the minutes left on the running boost.
func (e *Economy) BoostRemainingMinutes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return RemainingMinutesAt(e.state.BoostEndTime, e.clock.Now())
}

// ActivateBoost charges cost and starts a boost lasting minutes from now.
// A running boost is replaced, not extended.
func (e *Economy) ActivateBoost(minutes, cost int) bool {
	if minutes <= 0 {
		log.Printf("[WARN] boost rejected: non-positive duration %d", minutes)
		return false
	}
	if cost <= 0 {
		log.Printf("[WARN] boost rejected: non-positive cost %d", cost)
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.debitLocked(cost) {
		return false
	}
	now := e.clock.Now()
	replaced := BoostActiveAt(e.state.BoostEndTime, now)
	// Millisecond precision, matching what gets persisted.
	e.state.BoostEndTime = time.UnixMilli(now.UnixMilli() + int64(minutes)*60000)
	e.saveLocked()
	e.recordLocked(func(r recorder.Recorder) error {
		return r.RecordBoost(&recorder.BoostEvent{
			At: now, Action: recorder.BoostActivated, Minutes: minutes, Cost: cost,
			EndTime: e.state.BoostEndTime, BalanceAfter: e.state.Balance, Replaced: replaced,
		})
	})
	log.Printf("[INFO] boost activated for %d min, ends %s", minutes, e.state.BoostEndTime.Format(time.RFC3339))
	return true
}
