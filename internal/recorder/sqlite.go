package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists economy history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Single connection keeps the pragmas in effect; WAL so the kv store can
	// share the file.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ledger_events (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			kind           TEXT,
			amount         INTEGER,
			balance_before INTEGER,
			balance_after  INTEGER,
			note           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_ts ON ledger_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS unlock_events (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			profile_id    TEXT,
			cost          INTEGER,
			balance_after INTEGER,
			repeat_unlock INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_unlock_profile ON unlock_events(profile_id)`,

		`CREATE TABLE IF NOT EXISTS claim_events (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			claim_date    TEXT,
			streak        INTEGER,
			reward        INTEGER,
			balance_after INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_claim_ts ON claim_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS boost_events (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			action        TEXT,
			minutes       INTEGER,
			cost          INTEGER,
			end_time      INTEGER,
			balance_after INTEGER,
			replaced      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_boost_ts ON boost_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS system_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			kind      TEXT,
			note      TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func ts(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UnixMilli()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *SQLiteRecorder) RecordLedger(evt *LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO ledger_events
		(timestamp, kind, amount, balance_before, balance_after, note)
		VALUES (?,?,?,?,?,?)`,
		ts(evt.At), evt.Kind, evt.Amount, evt.BalanceBefore, evt.BalanceAfter, evt.Note,
	)
	return err
}

func (r *SQLiteRecorder) RecordUnlock(evt *UnlockEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO unlock_events
		(timestamp, profile_id, cost, balance_after, repeat_unlock)
		VALUES (?,?,?,?,?)`,
		ts(evt.At), evt.ProfileID, evt.Cost, evt.BalanceAfter, boolInt(evt.Repeat),
	)
	return err
}

func (r *SQLiteRecorder) RecordClaim(evt *ClaimEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO claim_events
		(timestamp, claim_date, streak, reward, balance_after)
		VALUES (?,?,?,?,?)`,
		ts(evt.At), evt.Date, evt.Streak, evt.Reward, evt.BalanceAfter,
	)
	return err
}

func (r *SQLiteRecorder) RecordBoost(evt *BoostEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var end int64
	if !evt.EndTime.IsZero() {
		end = evt.EndTime.UnixMilli()
	}
	_, err := r.db.Exec(`INSERT INTO boost_events
		(timestamp, action, minutes, cost, end_time, balance_after, replaced)
		VALUES (?,?,?,?,?,?,?)`,
		ts(evt.At), evt.Action, evt.Minutes, evt.Cost, end, evt.BalanceAfter, boolInt(evt.Replaced),
	)
	return err
}

func (r *SQLiteRecorder) RecordSystem(evt *SystemEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO system_events (timestamp, kind, note) VALUES (?,?,?)`,
		ts(evt.At), evt.Kind, evt.Note,
	)
	return err
}

// CountEvents returns the number of rows in one of the history tables.
func (r *SQLiteRecorder) CountEvents(table string) (int, error) {
	switch table {
	case "ledger_events", "unlock_events", "claim_events", "boost_events", "system_events":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
