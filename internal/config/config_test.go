package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Kind != "file" || cfg.History.Kind != "sqlite" {
		t.Errorf("unexpected kinds %q/%q", cfg.Store.Kind, cfg.History.Kind)
	}
	if cfg.Economy.UnlockCost != 10 || cfg.Economy.BoostMinutes != 60 || cfg.Economy.BoostCost != 25 {
		t.Errorf("unexpected economy defaults %+v", cfg.Economy)
	}
	if len(cfg.Economy.RewardTable) != 7 || cfg.Economy.RewardTable[6] != 100 {
		t.Errorf("unexpected reward table %v", cfg.Economy.RewardTable)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	p := writeConfig(t, `
store:
  kind: sqlite
  sqlite_path: /tmp/x.db
economy:
  timezone: Europe/Berlin
  reward_table: [1, 2, 3]
  boost_cost: 40
schedule:
  tick_cron: "*/10 * * * * *"
`)
	t.Setenv("CUPID_LISTEN", "0.0.0.0:9000")
	t.Setenv("CUPID_BOOST_COST", "30")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Kind != "sqlite" || cfg.Store.SQLitePath != "/tmp/x.db" {
		t.Errorf("unexpected store %+v", cfg.Store)
	}
	if cfg.Economy.Timezone != "Europe/Berlin" || len(cfg.Economy.RewardTable) != 3 {
		t.Errorf("unexpected economy %+v", cfg.Economy)
	}
	if cfg.Economy.BoostCost != 30 {
		t.Errorf("env should override boost cost, got %d", cfg.Economy.BoostCost)
	}
	if cfg.Bridge.Listen != "0.0.0.0:9000" {
		t.Errorf("env should override listen, got %q", cfg.Bridge.Listen)
	}
	if cfg.Schedule.TickCron != "*/10 * * * * *" {
		t.Errorf("unexpected tick cron %q", cfg.Schedule.TickCron)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	p := writeConfig(t, "store: [unterminated")
	if _, err := Load(p); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"store kind", func(c *Config) { c.Store.Kind = "redis" }},
		{"history kind", func(c *Config) { c.History.Kind = "kafka" }},
		{"timezone", func(c *Config) { c.Economy.Timezone = "Mars/Olympus" }},
		{"reward tier", func(c *Config) { c.Economy.RewardTable = []int{5, 0} }},
		{"unlock cost", func(c *Config) { c.Economy.UnlockCost = -1 }},
		{"boost minutes", func(c *Config) { c.Economy.BoostMinutes = -5 }},
		{"super like", func(c *Config) { c.Economy.SuperLikeCost = -2 }},
		{"wildcard origin", func(c *Config) { c.Bridge.AllowedOrigins = []string{"*"} }},
		{"bare host origin", func(c *Config) { c.Bridge.AllowedOrigins = []string{"cupid.local"} }},
	}
	for _, tt := range tests {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestLoad_AllowedOriginsFromEnv(t *testing.T) {
	p := writeConfig(t, `
bridge:
  allowed_origins: ["http://yaml.example"]
`)
	t.Setenv("CUPID_ALLOWED_ORIGINS", " http://cupid.local:3000, ,https://app.cupid.example")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"http://cupid.local:3000", "https://app.cupid.example"}
	if len(cfg.Bridge.AllowedOrigins) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Bridge.AllowedOrigins)
	}
	for i := range want {
		if cfg.Bridge.AllowedOrigins[i] != want[i] {
			t.Errorf("origin %d: expected %q, got %q", i, want[i], cfg.Bridge.AllowedOrigins[i])
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("origins should validate: %v", err)
	}
}
