package recorder

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
)

func TestSQLiteRecorder_RecordsAllEventKinds(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	now := time.Now()
	if err := r.RecordLedger(&LedgerEvent{At: now, Kind: KindCredit, Amount: 5, BalanceBefore: 25, BalanceAfter: 30}); err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if err := r.RecordUnlock(&UnlockEvent{At: now, ProfileID: "7", Cost: 10, BalanceAfter: 20}); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := r.RecordClaim(&ClaimEvent{At: now, Date: "2026-10-18", Streak: 1, Reward: 5, BalanceAfter: 25}); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := r.RecordBoost(&BoostEvent{Action: BoostActivated, Minutes: 60, Cost: 25, EndTime: now.Add(time.Hour)}); err != nil {
		t.Fatalf("boost: %v", err)
	}
	if err := r.RecordBoost(&BoostEvent{Action: BoostExpired}); err != nil {
		t.Fatalf("boost expired: %v", err)
	}
	if err := r.RecordSystem(&SystemEvent{Kind: SystemReset}); err != nil {
		t.Fatalf("system: %v", err)
	}

	want := map[string]int{
		"ledger_events": 1,
		"unlock_events": 1,
		"claim_events":  1,
		"boost_events":  2,
		"system_events": 1,
	}
	for table, n := range want {
		got, err := r.CountEvents(table)
		if err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if got != n {
			t.Errorf("%s: expected %d rows, got %d", table, n, got)
		}
	}
	if _, err := r.CountEvents("sqlite_master; DROP TABLE kv"); err == nil {
		t.Error("expected error for unknown table")
	}
}

func readJournal(t *testing.T, dir string) []JournalEntry {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl.zst"))
	if err != nil {
		t.Fatal(err)
	}
	var out []JournalEntry
	for _, name := range files {
		out = append(out, readJournalFile(t, name)...)
	}
	return out
}

func readJournalFile(t *testing.T, name string) []JournalEntry {
	t.Helper()
	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	var out []JournalEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e JournalEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestSQLiteRecorder_SingleConnection(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	if n := r.db.Stats().MaxOpenConnections; n != 1 {
		t.Errorf("expected a single pooled connection, got %d", n)
	}
	var timeout int
	if err := r.db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatal(err)
	}
	if timeout != 5000 {
		t.Errorf("expected busy_timeout 5000, got %d", timeout)
	}
}

func TestJSONLRecorder_WritesCompressedLines(t *testing.T) {
	dir := t.TempDir()
	r := NewJSONLRecorder(dir, "", time.UTC)

	if err := r.RecordUnlock(&UnlockEvent{ProfileID: "3", Cost: 10, BalanceAfter: 5}); err != nil {
		t.Fatal(err)
	}
	if err := r.RecordClaim(&ClaimEvent{Date: "2026-10-18", Streak: 2, Reward: 10}); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	entries := readJournal(t, dir)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Type != "unlock" || entries[1].Type != "claim" {
		t.Errorf("unexpected types: %q, %q", entries[0].Type, entries[1].Type)
	}
	var u UnlockEvent
	if err := json.Unmarshal(entries[0].Data, &u); err != nil {
		t.Fatal(err)
	}
	if u.ProfileID != "3" || u.Cost != 10 {
		t.Errorf("unexpected unlock payload: %+v", u)
	}
	if entries[0].At == 0 {
		t.Error("expected timestamp to be filled in")
	}
}

func TestJSONLRecorder_RotatesByEventDay(t *testing.T) {
	dir := t.TempDir()
	loc := time.FixedZone("UTC+2", 2*60*60)
	r := NewJSONLRecorder(dir, "gems", loc)

	// Both instants fall on 2026-10-18 in UTC, but on two local days.
	late := time.Date(2026, time.October, 18, 23, 30, 0, 0, loc)
	early := time.Date(2026, time.October, 19, 0, 10, 0, 0, loc)

	steps := []*ClaimEvent{
		{At: late, Date: "2026-10-18", Streak: 1, Reward: 5},
		{At: early, Date: "2026-10-19", Streak: 2, Reward: 10},
		{At: late.Add(time.Minute), Date: "2026-10-18", Streak: 1, Reward: 5},
	}
	for i, evt := range steps {
		if err := r.RecordClaim(evt); err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	want := map[string]int{
		filepath.Join(dir, "gems-2026-10-18.jsonl.zst"): 2,
		filepath.Join(dir, "gems-2026-10-19.jsonl.zst"): 1,
	}
	if got := r.Path(early); got != filepath.Join(dir, "gems-2026-10-19.jsonl.zst") {
		t.Errorf("unexpected path %q", got)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl.zst"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != len(want) {
		t.Fatalf("expected %d journal files, got %v", len(want), files)
	}
	for path, n := range want {
		if got := len(readJournalFile(t, path)); got != n {
			t.Errorf("%s: expected %d entries, got %d", filepath.Base(path), n, got)
		}
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordLedger(&LedgerEvent{}); err != nil {
		t.Error(err)
	}
	if err := r.Close(); err != nil {
		t.Error(err)
	}
}
