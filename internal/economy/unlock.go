package economy

import (
	"log"

	"CupidGems/internal/recorder"
)

// DefaultUnlockCost is the price of revealing a gated profile.
const DefaultUnlockCost = 10

// IsUnlocked reports whether profileID has been unlocked.
func (e *Economy) IsUnlocked(profileID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.state.Unlocked[profileID]
	return ok
}

// Unlocked returns the unlocked profile IDs, sorted.
func (e *Economy) Unlocked() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.UnlockedIDs()
}

// Unlock charges cost and records profileID as unlocked. Either both happen
// or neither does.
//
// Unlocking an already unlocked profile charges again; callers check
// IsUnlocked first.
func (e *Economy) Unlock(profileID string, cost int) bool {
	if profileID == "" {
		log.Println("[WARN] unlock rejected: empty profile id")
		return false
	}
	if cost <= 0 {
		log.Printf("[WARN] unlock rejected: non-positive cost %d", cost)
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.debitLocked(cost) {
		return false
	}
	_, repeat := e.state.Unlocked[profileID]
	e.state.Unlocked[profileID] = struct{}{}
	e.saveLocked()
	e.recordLocked(func(r recorder.Recorder) error {
		return r.RecordUnlock(&recorder.UnlockEvent{
			At: e.clock.Now(), ProfileID: profileID, Cost: cost,
			BalanceAfter: e.state.Balance, Repeat: repeat,
		})
	})
	if repeat {
		log.Printf("[WARN] profile %s was already unlocked and has been charged again", profileID)
	}
	return true
}
