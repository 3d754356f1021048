package store

import (
	"errors"
	"path/filepath"
	"testing"
)

type prefs struct {
	Name  string `json:"name"`
	Sound bool   `json:"sound"`
}

func defaultPrefs() prefs { return prefs{Name: "Guest", Sound: true} }

func backends(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "kv"))
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	ss, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	t.Cleanup(func() {
		fs.Close()
		ss.Close()
	})
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
		"sqlite": ss,
	}
}

func TestStore_GetSetOverwrite(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.Get("missing"); err != nil || ok {
				t.Fatalf("missing key: ok=%v err=%v", ok, err)
			}
			if err := s.Set("k", []byte(`{"a":1}`)); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := s.Set("k", []byte(`{"a":2}`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, ok, err := s.Get("k")
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if string(got) != `{"a":2}` {
				t.Errorf("expected overwritten value, got %s", got)
			}
		})
	}
}

func TestStore_RejectsBadKeys(t *testing.T) {
	for name, s := range backends(t) {
		for _, key := range []string{"", "../escape", `a\b`} {
			if err := s.Set(key, []byte("{}")); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("%s: key %q: expected ErrInvalidKey, got %v", name, key, err)
			}
		}
	}
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.Set("gemsData", []byte(`{"gems":3}`)); err != nil {
		t.Fatal(err)
	}
	s1.Close()
	if _, _, err := s1.Get("gemsData"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after close, got %v", err)
	}

	s2, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, ok, err := s2.Get("gemsData")
	if err != nil || !ok || string(got) != `{"gems":3}` {
		t.Errorf("reopen: got %q ok=%v err=%v", got, ok, err)
	}
}

func TestDocument_LoadFallbacks(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		present     bool
		validateErr error
		want        prefs
		wantCorrupt bool
	}{
		{name: "missing", want: defaultPrefs()},
		{name: "valid", raw: `{"name":"Ana","sound":false}`, present: true, want: prefs{Name: "Ana"}},
		{name: "partial keeps defaults", raw: `{"name":"Ana"}`, present: true, want: prefs{Name: "Ana", Sound: true}},
		{name: "garbage", raw: `{not json`, present: true, want: defaultPrefs(), wantCorrupt: true},
		{name: "wrong type", raw: `{"name":5}`, present: true, want: defaultPrefs(), wantCorrupt: true},
		{name: "validator rejects", raw: `{"name":"x"}`, present: true, validateErr: errors.New("nope"), want: defaultPrefs(), wantCorrupt: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStore()
			if tt.present {
				if err := s.Set("cupid-settings", []byte(tt.raw)); err != nil {
					t.Fatal(err)
				}
			}
			var corrupted []error
			doc := NewDocument(s, "cupid-settings", defaultPrefs)
			doc.OnCorrupt = func(key string, err error) {
				if key != "cupid-settings" {
					t.Errorf("unexpected key %q", key)
				}
				corrupted = append(corrupted, err)
			}
			if tt.validateErr != nil {
				doc.Validate = func([]byte) error { return tt.validateErr }
			}

			got := doc.Load()
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
			if (len(corrupted) > 0) != tt.wantCorrupt {
				t.Errorf("corrupt hook calls = %d, wantCorrupt=%v", len(corrupted), tt.wantCorrupt)
			}
		})
	}
}

func TestDocument_ReadErrorFallsBack(t *testing.T) {
	s := NewMemoryStore()
	s.Close()
	called := false
	doc := NewDocument(s, "cupid-stats", defaultPrefs)
	doc.OnCorrupt = func(string, error) { called = true }
	if got := doc.Load(); got != defaultPrefs() {
		t.Errorf("expected defaults, got %+v", got)
	}
	if !called {
		t.Error("expected corrupt hook on read error")
	}
	if err := doc.Save(defaultPrefs()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from save, got %v", err)
	}
}

func TestOpen_Kinds(t *testing.T) {
	dir := t.TempDir()
	for _, kind := range []string{KindFile, KindSQLite, KindMemory} {
		s, err := Open(kind, filepath.Join(dir, "files"), filepath.Join(dir, "kv.db"))
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		s.Close()
	}
	if _, err := Open("redis", dir, ""); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestSQLiteStore_PragmasHoldForPool(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if n := s.db.Stats().MaxOpenConnections; n != 1 {
		t.Errorf("expected a single pooled connection, got %d", n)
	}
	for i := 0; i < 3; i++ {
		var timeout int
		if err := s.db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatal(err)
		}
		if timeout != 5000 {
			t.Errorf("query %d: expected busy_timeout 5000, got %d", i, timeout)
		}
	}
	var mode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("expected wal journal, got %q", mode)
	}
}
