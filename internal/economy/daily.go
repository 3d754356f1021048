package economy

import (
	"log"
	"math"
	"time"

	"CupidGems/internal/recorder"
)

// RewardTable is the gem reward per streak day. Streaks longer than the table
// keep paying the last tier.
var RewardTable = []int{5, 10, 15, 20, 30, 50, 100}

// RewardFor returns the reward for a claim that brings the streak to streak.
func RewardFor(tiers []int, streak int) int {
	if len(tiers) == 0 {
		return 0
	}
	i := streak - 1
	if i < 0 {
		i = 0
	}
	if i > len(tiers)-1 {
		i = len(tiers) - 1
	}
	return tiers[i]
}

// NextStreak returns the streak after a claim on today, given the previous
// claim date. Any gap, including no previous claim, restarts at one.
func NextStreak(lastClaimDate, yesterday string, streak int) int {
	if lastClaimDate != "" && lastClaimDate == yesterday {
		return streak + 1
	}
	return 1
}

// Streak returns the number of consecutive days claimed.
func (e *Economy) Streak() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Streak
}

// LastClaimDate returns the date of the last claim, or "" if none.
func (e *Economy) LastClaimDate() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.LastClaimDate
}

// CanClaimToday reports whether today's reward is still unclaimed.
func (e *Economy) CanClaimToday() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canClaimLocked(e.clock.Now())
}

func (e *Economy) canClaimLocked(now time.Time) bool {
	return e.state.LastClaimDate != DateKey(now, e.loc)
}

// NextReward returns what the next claim pays: today's reward while it is
// still open, otherwise tomorrow's assuming no day is skipped.
func (e *Economy) NextReward() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nextRewardLocked(e.clock.Now())
}

func (e *Economy) nextRewardLocked(now time.Time) int {
	if e.state.LastClaimDate == DateKey(now, e.loc) {
		return RewardFor(e.rewards, e.state.Streak+1)
	}
	next := NextStreak(e.state.LastClaimDate, yesterdayKey(now, e.loc), e.state.Streak)
	return RewardFor(e.rewards, next)
}

// ClaimDaily credits today's reward and advances the streak. It returns
// false without side effects when today was already claimed or the reward
// would overflow the balance.
func (e *Economy) ClaimDaily() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// One instant decides claimability and the dates recorded.
	now := e.clock.Now()
	if !e.canClaimLocked(now) {
		return 0, false
	}

	today := DateKey(now, e.loc)
	streak := NextStreak(e.state.LastClaimDate, yesterdayKey(now, e.loc), e.state.Streak)
	reward := RewardFor(e.rewards, streak)
	if e.state.Balance > math.MaxInt-reward {
		log.Printf("[WARN] daily claim rejected: %d would overflow balance %d", reward, e.state.Balance)
		return 0, false
	}

	before := e.state.Balance
	e.state.Balance += reward
	e.state.LastClaimDate = today
	e.state.Streak = streak
	e.saveLocked()

	e.recordLocked(func(r recorder.Recorder) error {
		return r.RecordClaim(&recorder.ClaimEvent{
			At: now, Date: today, Streak: streak, Reward: reward, BalanceAfter: e.state.Balance,
		})
	})
	e.recordLocked(func(r recorder.Recorder) error {
		return r.RecordLedger(&recorder.LedgerEvent{
			At: now, Kind: recorder.KindDailyClaim, Amount: reward,
			BalanceBefore: before, BalanceAfter: e.state.Balance,
		})
	})
	log.Printf("[INFO] daily reward claimed: +%d gems, streak %d", reward, streak)
	return reward, true
}
