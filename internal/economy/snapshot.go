package economy

// Snapshot is the read model handed to the view layer: stored fields plus
// every time-derived value, computed at one instant.
type Snapshot struct {
	Balance               int      `json:"balance"`
	UnlockedProfiles      []string `json:"unlocked_profiles"`
	Streak                int      `json:"streak"`
	LastClaimDate         string   `json:"last_claim_date,omitempty"`
	CanClaimToday         bool     `json:"can_claim_today"`
	NextReward            int      `json:"next_reward"`
	BoostActive           bool     `json:"boost_active"`
	BoostRemainingMinutes int      `json:"boost_remaining_minutes"`
	BoostEndTime          *int64   `json:"boost_end_time,omitempty"` // ms since epoch
	TakenAt               int64    `json:"taken_at"`
}

// Snapshot captures the current state and its derived values.
func (e *Economy) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	snap := Snapshot{
		Balance:               e.state.Balance,
		UnlockedProfiles:      e.state.UnlockedIDs(),
		Streak:                e.state.Streak,
		LastClaimDate:         e.state.LastClaimDate,
		CanClaimToday:         e.state.LastClaimDate != DateKey(now, e.loc),
		NextReward:            e.nextRewardLocked(now),
		BoostActive:           BoostActiveAt(e.state.BoostEndTime, now),
		BoostRemainingMinutes: RemainingMinutesAt(e.state.BoostEndTime, now),
		TakenAt:               now.UnixMilli(),
	}
	if !e.state.BoostEndTime.IsZero() {
		ms := e.state.BoostEndTime.UnixMilli()
		snap.BoostEndTime = &ms
	}
	return snap
}
