package recorder

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// JSONLRecorder appends one JSON line per event to a zstd-compressed journal
// per calendar day. The day is taken from the event time in loc, the same
// calendar the daily claim uses, so a late event still lands in its own day.
type JSONLRecorder struct {
	dir    string
	prefix string
	loc    *time.Location

	mu      sync.Mutex
	journal *dayJournal
}

// JournalEntry is the line format written by JSONLRecorder.
type JournalEntry struct {
	Type string          `json:"type"`
	At   int64           `json:"at"`
	Data json.RawMessage `json:"data"`
}

func NewJSONLRecorder(dir, prefix string, loc *time.Location) *JSONLRecorder {
	if prefix == "" {
		prefix = "economy"
	}
	if loc == nil {
		loc = time.Local
	}
	return &JSONLRecorder{dir: dir, prefix: prefix, loc: loc}
}

func (r *JSONLRecorder) RecordLedger(evt *LedgerEvent) error {
	return r.write("ledger", evt.At, evt)
}

func (r *JSONLRecorder) RecordUnlock(evt *UnlockEvent) error {
	return r.write("unlock", evt.At, evt)
}

func (r *JSONLRecorder) RecordClaim(evt *ClaimEvent) error {
	return r.write("claim", evt.At, evt)
}

func (r *JSONLRecorder) RecordBoost(evt *BoostEvent) error {
	return r.write("boost", evt.At, evt)
}

func (r *JSONLRecorder) RecordSystem(evt *SystemEvent) error {
	return r.write("system", evt.At, evt)
}

func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.journal == nil {
		return nil
	}
	err := r.journal.close()
	r.journal = nil
	return err
}

// Path returns the journal file for the calendar day of t.
func (r *JSONLRecorder) Path(t time.Time) string {
	return r.pathFor(t.In(r.loc).Format("2006-01-02"))
}

func (r *JSONLRecorder) pathFor(day string) string {
	return filepath.Join(r.dir, fmt.Sprintf("%s-%s.jsonl.zst", r.prefix, day))
}

func (r *JSONLRecorder) write(typ string, at time.Time, v any) error {
	if at.IsZero() {
		at = time.Now()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	line, err := json.Marshal(JournalEntry{Type: typ, At: at.UnixMilli(), Data: data})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	day := at.In(r.loc).Format("2006-01-02")
	if r.journal == nil || r.journal.day != day {
		if r.journal != nil {
			if err := r.journal.close(); err != nil {
				log.Printf("[WARN] close journal %s: %v", r.journal.day, err)
			}
			r.journal = nil
		}
		if err := os.MkdirAll(r.dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
		j, err := openDayJournal(r.pathFor(day), day)
		if err != nil {
			return err
		}
		r.journal = j
	}
	return r.journal.append(line)
}

// dayJournal is one open day file. Reopening a day appends a new zstd frame,
// which readers decode as one stream.
type dayJournal struct {
	day  string
	file *os.File
	zw   *zstd.Encoder
	bw   *bufio.Writer
}

func openDayJournal(path, day string) (*dayJournal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return &dayJournal{day: day, file: f, zw: zw, bw: bufio.NewWriter(zw)}, nil
}

// append writes line and flushes it through to the file so a crash loses at
// most the event being written.
func (j *dayJournal) append(line []byte) error {
	if _, err := j.bw.Write(append(line, '\n')); err != nil {
		return err
	}
	if err := j.bw.Flush(); err != nil {
		return err
	}
	return j.zw.Flush()
}

func (j *dayJournal) close() error {
	return errors.Join(j.bw.Flush(), j.zw.Close(), j.file.Close())
}
