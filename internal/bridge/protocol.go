package bridge

import (
	"CupidGems/internal/economy"
	"CupidGems/internal/profile"
)

// Operations accepted from the view layer.
const (
	OpState      = "state"
	OpCredit     = "credit"
	OpDebit      = "debit"
	OpUnlock     = "unlock"
	OpIsUnlocked = "is_unlocked"
	OpClaim      = "claim"
	OpBoost      = "boost"
	OpSuperLike  = "super_like"
	OpSwipe      = "swipe"
	OpMatch      = "match"
	OpSetName    = "set_name"
	OpSetSound   = "set_sound"
	OpSetTheme   = "set_theme"
	OpReset      = "reset"
)

// TypeTick marks snapshots pushed by the scheduler rather than replies.
const TypeTick = "tick"

// Request is one command from the view layer. Cost and Minutes fall back
// to the configured offer when omitted.
type Request struct {
	Op        string `json:"op"`
	ID        string `json:"id,omitempty"` // echoed back for correlation
	Amount    int    `json:"amount,omitempty"`
	ProfileID string `json:"profile_id,omitempty"`
	Cost      *int   `json:"cost,omitempty"`
	Minutes   *int   `json:"minutes,omitempty"`
	Liked     bool   `json:"liked,omitempty"`
	Name      string `json:"name,omitempty"`
	Sound     *bool  `json:"sound,omitempty"`
	Theme     string `json:"theme,omitempty"`
}

// Response answers a Request. Insufficient funds is OK=false with no Error.
type Response struct {
	Type     string            `json:"type,omitempty"`
	Op       string            `json:"op,omitempty"`
	ID       string            `json:"id,omitempty"`
	OK       bool              `json:"ok"`
	Reward   int               `json:"reward,omitempty"`
	Unlocked *bool             `json:"unlocked,omitempty"`
	Settings *profile.Settings `json:"settings,omitempty"`
	Error    string            `json:"error,omitempty"`
	State    *economy.Snapshot `json:"state,omitempty"`
}

// Offers holds the prices used when a request omits them.
type Offers struct {
	UnlockCost    int
	BoostMinutes  int
	BoostCost     int
	SuperLikeCost int
}

// DefaultOffers matches the economy's built-in prices.
func DefaultOffers() Offers {
	return Offers{
		UnlockCost:    economy.DefaultUnlockCost,
		BoostMinutes:  economy.DefaultBoostMinutes,
		BoostCost:     economy.DefaultBoostCost,
		SuperLikeCost: 5,
	}
}
