package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Store struct {
		Kind       string `yaml:"kind"` // "file", "sqlite" or "memory"
		DataDir    string `yaml:"data_dir"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"store"`
	History struct {
		Kind       string `yaml:"kind"` // "sqlite", "jsonl" or "none"
		SQLitePath string `yaml:"sqlite_path"`
		JournalDir string `yaml:"journal_dir"`
	} `yaml:"history"`
	Economy struct {
		Timezone      string `yaml:"timezone"`
		RewardTable   []int  `yaml:"reward_table"`
		UnlockCost    int    `yaml:"unlock_cost"`
		BoostMinutes  int    `yaml:"boost_minutes"`
		BoostCost     int    `yaml:"boost_cost"`
		SuperLikeCost int    `yaml:"super_like_cost"`
	} `yaml:"economy"`
	Schedule struct {
		TickCron     string `yaml:"tick_cron"`
		RolloverCron string `yaml:"rollover_cron"`
	} `yaml:"schedule"`
	Bridge struct {
		Listen         string   `yaml:"listen"`
		AllowedOrigins []string `yaml:"allowed_origins"` // besides same-host and loopback pages
	} `yaml:"bridge"`
}

// Load reads .env (if present) and the YAML file, then applies environment
// variable overrides and defaults. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("CUPID_STORE"); v != "" {
		cfg.Store.Kind = v
	}
	if v := os.Getenv("CUPID_DATA_DIR"); v != "" {
		cfg.Store.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
		cfg.History.SQLitePath = v
	}
	if v := os.Getenv("CUPID_HISTORY"); v != "" {
		cfg.History.Kind = v
	}
	if v := os.Getenv("CUPID_TIMEZONE"); v != "" {
		cfg.Economy.Timezone = v
	}
	if v := os.Getenv("CUPID_LISTEN"); v != "" {
		cfg.Bridge.Listen = v
	}
	if v := os.Getenv("CUPID_ALLOWED_ORIGINS"); v != "" {
		cfg.Bridge.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.Bridge.AllowedOrigins = append(cfg.Bridge.AllowedOrigins, o)
			}
		}
	}
	if v := os.Getenv("CUPID_TICK_CRON"); v != "" {
		cfg.Schedule.TickCron = v
	}
	if v := os.Getenv("CUPID_BOOST_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Economy.BoostCost = n
		}
	}

	// Defaults
	if cfg.Store.Kind == "" {
		cfg.Store.Kind = "file"
	}
	if cfg.Store.DataDir == "" {
		cfg.Store.DataDir = "data/storage"
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = "data/cupid.db"
	}
	if cfg.History.Kind == "" {
		cfg.History.Kind = "sqlite"
	}
	if cfg.History.SQLitePath == "" {
		cfg.History.SQLitePath = "data/cupid.db"
	}
	if cfg.History.JournalDir == "" {
		cfg.History.JournalDir = "data/journal"
	}
	if cfg.Economy.Timezone == "" {
		cfg.Economy.Timezone = "Local"
	}
	if len(cfg.Economy.RewardTable) == 0 {
		cfg.Economy.RewardTable = []int{5, 10, 15, 20, 30, 50, 100}
	}
	if cfg.Economy.UnlockCost == 0 {
		cfg.Economy.UnlockCost = 10
	}
	if cfg.Economy.BoostMinutes == 0 {
		cfg.Economy.BoostMinutes = 60
	}
	if cfg.Economy.BoostCost == 0 {
		cfg.Economy.BoostCost = 25
	}
	if cfg.Economy.SuperLikeCost == 0 {
		cfg.Economy.SuperLikeCost = 5
	}
	if cfg.Schedule.TickCron == "" {
		cfg.Schedule.TickCron = "*/5 * * * * *"
	}
	if cfg.Schedule.RolloverCron == "" {
		cfg.Schedule.RolloverCron = "0 0 0 * * *"
	}
	if cfg.Bridge.Listen == "" {
		cfg.Bridge.Listen = "127.0.0.1:8787"
	}

	return cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Economy.Timezone)
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("store.kind must be file, sqlite or memory, got %q", c.Store.Kind)
	}
	switch c.History.Kind {
	case "sqlite", "jsonl", "none":
	default:
		return fmt.Errorf("history.kind must be sqlite, jsonl or none, got %q", c.History.Kind)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("economy.timezone: %w", err)
	}
	for i, r := range c.Economy.RewardTable {
		if r <= 0 {
			return fmt.Errorf("economy.reward_table[%d] must be positive", i)
		}
	}
	if c.Economy.UnlockCost <= 0 {
		return fmt.Errorf("economy.unlock_cost must be positive")
	}
	if c.Economy.BoostMinutes <= 0 || c.Economy.BoostCost <= 0 {
		return fmt.Errorf("economy.boost_minutes and economy.boost_cost must be positive")
	}
	if c.Economy.SuperLikeCost <= 0 {
		return fmt.Errorf("economy.super_like_cost must be positive")
	}
	for _, o := range c.Bridge.AllowedOrigins {
		if o == "*" {
			return fmt.Errorf("bridge.allowed_origins must list origins, not %q", o)
		}
		if u, err := url.Parse(o); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("bridge.allowed_origins: %q is not an origin", o)
		}
	}
	return nil
}
