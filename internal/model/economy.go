package model

import (
	"sort"
	"time"
)

// DefaultBalance is the gem balance of a fresh installation.
const DefaultBalance = 25

// EconomyState is the single persisted aggregate of the gems economy.
type EconomyState struct {
	Balance       int
	Unlocked      map[string]struct{}
	Streak        int
	LastClaimDate string    // YYYY-MM-DD in the local calendar, empty before the first claim
	BoostEndTime  time.Time // zero when no boost was ever activated
}

// DefaultEconomyState returns the state of a fresh installation.
func DefaultEconomyState() EconomyState {
	return EconomyState{
		Balance:  DefaultBalance,
		Unlocked: map[string]struct{}{},
	}
}

// UnlockedIDs returns the unlocked profile IDs in sorted order.
func (s EconomyState) UnlockedIDs() []string {
	ids := make([]string, 0, len(s.Unlocked))
	for id := range s.Unlocked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy.
func (s EconomyState) Clone() EconomyState {
	out := s
	out.Unlocked = make(map[string]struct{}, len(s.Unlocked))
	for id := range s.Unlocked {
		out.Unlocked[id] = struct{}{}
	}
	return out
}

// Equal compares two states, treating boost end times by instant.
func (s EconomyState) Equal(o EconomyState) bool {
	if s.Balance != o.Balance || s.Streak != o.Streak || s.LastClaimDate != o.LastClaimDate {
		return false
	}
	if !s.BoostEndTime.Equal(o.BoostEndTime) {
		return false
	}
	if len(s.Unlocked) != len(o.Unlocked) {
		return false
	}
	for id := range s.Unlocked {
		if _, ok := o.Unlocked[id]; !ok {
			return false
		}
	}
	return true
}

// GemsRecord is the persisted JSON layout under the gemsData key.
type GemsRecord struct {
	Gems             int      `json:"gems"`
	UnlockedProfiles []string `json:"unlockedProfiles"`
	Streak           int      `json:"streak"`
	LastClaimDate    *string  `json:"lastClaimDate"`
	BoostEndTime     *int64   `json:"boostEndTime"` // ms since epoch
}
