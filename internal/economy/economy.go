package economy

import (
	"log"
	"sync"
	"time"

	"CupidGems/internal/model"
	"CupidGems/internal/recorder"
	"CupidGems/internal/store"
)

// Economy owns the gems state of one installation. Every mutating operation
// updates memory and re-persists the whole record before returning; reads
// always see the in-memory state.
type Economy struct {
	mu      sync.Mutex
	state   model.EconomyState
	doc     *store.Document[model.GemsRecord]
	clock   Clock
	loc     *time.Location
	rec     recorder.Recorder
	rewards []int

	diag func(key string, err error)
}

// Option configures an Economy.
type Option func(*Economy)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(e *Economy) { e.clock = c }
}

// WithLocation sets the calendar used for daily claims. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(e *Economy) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithRecorder attaches a history recorder.
func WithRecorder(r recorder.Recorder) Option {
	return func(e *Economy) {
		if r != nil {
			e.rec = r
		}
	}
}

// WithRewardTable replaces the daily reward tiers. Empty tables are ignored.
func WithRewardTable(tiers []int) Option {
	return func(e *Economy) {
		if len(tiers) > 0 {
			e.rewards = append([]int(nil), tiers...)
		}
	}
}

// WithDiagnostics installs a hook called when persisted state is unusable
// and defaults were substituted.
func WithDiagnostics(fn func(key string, err error)) Option {
	return func(e *Economy) { e.diag = fn }
}

// New loads the persisted state from s, falling back to defaults when it is
// missing or corrupt.
func New(s store.Store, opts ...Option) *Economy {
	e := &Economy{
		clock:   SystemClock(),
		loc:     time.Local,
		rec:     recorder.NewNoopRecorder(),
		rewards: append([]int(nil), RewardTable...),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.doc = newGemsDocument(s, e.onCorrupt)
	e.state = fromRecord(e.doc.Load(), e.onCorrupt)
	log.Printf("[INFO] economy loaded: balance=%d unlocked=%d streak=%d",
		e.state.Balance, len(e.state.Unlocked), e.state.Streak)
	return e
}

func (e *Economy) onCorrupt(key string, err error) {
	log.Printf("[WARN] %s not loaded as stored: %v", key, err)
	if e.diag != nil {
		e.diag(key, err)
	}
	if rerr := e.rec.RecordSystem(&recorder.SystemEvent{
		At:   e.clock.Now(),
		Kind: recorder.SystemFallback,
		Note: err.Error(),
	}); rerr != nil {
		log.Printf("[ERROR] record fallback: %v", rerr)
	}
}

// State returns a copy of the current state.
func (e *Economy) State() model.EconomyState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Location returns the calendar location used for daily claims.
func (e *Economy) Location() *time.Location { return e.loc }

// Reset restores a fresh installation's state.
func (e *Economy) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = model.DefaultEconomyState()
	e.saveLocked()
	e.recordLocked(func(r recorder.Recorder) error {
		return r.RecordSystem(&recorder.SystemEvent{At: e.clock.Now(), Kind: recorder.SystemReset})
	})
	log.Println("[INFO] economy reset to defaults")
}

func (e *Economy) saveLocked() {
	if err := e.doc.Save(toRecord(e.state)); err != nil {
		log.Printf("[ERROR] failed to save economy state: %v", err)
	}
}

func (e *Economy) recordLocked(fn func(recorder.Recorder) error) {
	if err := fn(e.rec); err != nil {
		log.Printf("[ERROR] record economy event: %v", err)
	}
}
