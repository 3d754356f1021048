package economy

import (
	"log"
	"math"

	"CupidGems/internal/recorder"
)

// Balance returns the current gem count.
func (e *Economy) Balance() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Balance
}

// Credit adds amount gems. Non-positive amounts are rejected.
func (e *Economy) Credit(amount int) bool {
	return e.CreditWithNote(amount, "")
}

// CreditWithNote is Credit with a free-form reason kept in the history.
func (e *Economy) CreditWithNote(amount int, note string) bool {
	if amount <= 0 {
		log.Printf("[WARN] credit rejected: non-positive amount %d", amount)
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Balance > math.MaxInt-amount {
		log.Printf("[WARN] credit rejected: %d would overflow balance %d", amount, e.state.Balance)
		return false
	}
	before := e.state.Balance
	e.state.Balance += amount
	e.saveLocked()
	e.recordLocked(func(r recorder.Recorder) error {
		return r.RecordLedger(&recorder.LedgerEvent{
			At: e.clock.Now(), Kind: recorder.KindCredit, Amount: amount,
			BalanceBefore: before, BalanceAfter: e.state.Balance, Note: note,
		})
	})
	return true
}

// Debit removes amount gems if the balance covers it. Insufficient funds and
// non-positive amounts leave the balance unchanged and return false.
func (e *Economy) Debit(amount int) bool {
	return e.DebitWithNote(amount, "")
}

// DebitWithNote is Debit with a free-form reason kept in the history.
func (e *Economy) DebitWithNote(amount int, note string) bool {
	if amount <= 0 {
		log.Printf("[WARN] debit rejected: non-positive amount %d", amount)
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.state.Balance
	if !e.debitLocked(amount) {
		return false
	}
	e.saveLocked()
	e.recordLocked(func(r recorder.Recorder) error {
		return r.RecordLedger(&recorder.LedgerEvent{
			At: e.clock.Now(), Kind: recorder.KindDebit, Amount: amount,
			BalanceBefore: before, BalanceAfter: e.state.Balance, Note: note,
		})
	})
	return true
}

// debitLocked is the shared balance check; callers persist.
func (e *Economy) debitLocked(amount int) bool {
	if amount <= 0 || e.state.Balance < amount {
		return false
	}
	e.state.Balance -= amount
	return true
}
