package recorder

import "time"

// Ledger event kinds.
const (
	KindCredit     = "CREDIT"
	KindDebit      = "DEBIT"
	KindDailyClaim = "DAILY_CLAIM"
)

// Boost actions.
const (
	BoostActivated = "ACTIVATED"
	BoostExpired   = "EXPIRED"
)

// System event kinds.
const (
	SystemReset       = "RESET"
	SystemDayRollover = "DAY_ROLLOVER"
	SystemFallback    = "DEFAULTS_FALLBACK"
)

// LedgerEvent records a plain balance change.
type LedgerEvent struct {
	At            time.Time
	Kind          string // "CREDIT", "DEBIT" or "DAILY_CLAIM"
	Amount        int
	BalanceBefore int
	BalanceAfter  int
	Note          string
}

// UnlockEvent records a successful profile unlock.
type UnlockEvent struct {
	At           time.Time
	ProfileID    string
	Cost         int
	BalanceAfter int
	Repeat       bool // profile was already unlocked and got charged again
}

// ClaimEvent records a daily reward claim.
type ClaimEvent struct {
	At           time.Time
	Date         string
	Streak       int
	Reward       int
	BalanceAfter int
}

// BoostEvent records a boost activation or an observed expiry.
type BoostEvent struct {
	At           time.Time
	Action       string // "ACTIVATED" or "EXPIRED"
	Minutes      int
	Cost         int
	EndTime      time.Time
	BalanceAfter int
	Replaced     bool // an active boost was overwritten
}

// SystemEvent records lifecycle events that do not move gems.
type SystemEvent struct {
	At   time.Time
	Kind string // "RESET", "DAY_ROLLOVER" or "DEFAULTS_FALLBACK"
	Note string
}

// Recorder persists economy history for later analysis.
type Recorder interface {
	RecordLedger(evt *LedgerEvent) error
	RecordUnlock(evt *UnlockEvent) error
	RecordClaim(evt *ClaimEvent) error
	RecordBoost(evt *BoostEvent) error
	RecordSystem(evt *SystemEvent) error
	Close() error
}
