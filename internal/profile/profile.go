package profile

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"unicode"

	"CupidGems/internal/store"
)

// Storage keys shared with the view layer.
const (
	SettingsKey = "cupid-settings"
	StatsKey    = "cupid-stats"
)

const maxDisplayNameLen = 32

var (
	ErrInvalidName  = errors.New("invalid display name")
	ErrInvalidTheme = errors.New("invalid theme")
)

// Themes the view layer ships.
var Themes = []string{"light", "dark"}

// Settings is the locally stored user preference record.
type Settings struct {
	DisplayName  string `json:"displayName"`
	Theme        string `json:"theme"`
	SoundEnabled bool   `json:"soundEnabled"`
}

// Stats counts swipe activity.
type Stats struct {
	Swipes     int `json:"swipes"`
	Likes      int `json:"likes"`
	Passes     int `json:"passes"`
	SuperLikes int `json:"superLikes"`
	Matches    int `json:"matches"`
}

func defaultSettings() Settings {
	return Settings{DisplayName: "Guest", Theme: "light", SoundEnabled: true}
}

func defaultStats() Stats { return Stats{} }

// Book holds the settings and stats documents in memory and writes each one
// back whole after every change.
type Book struct {
	mu       sync.Mutex
	settings Settings
	stats    Stats
	sdoc     *store.Document[Settings]
	tdoc     *store.Document[Stats]
}

// NewBook loads both documents from s.
func NewBook(s store.Store) *Book {
	b := &Book{
		sdoc: store.NewDocument(s, SettingsKey, defaultSettings),
		tdoc: store.NewDocument(s, StatsKey, defaultStats),
	}
	b.settings = b.sdoc.Load()
	b.stats = b.tdoc.Load()
	return b
}

func (b *Book) Settings() Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settings
}

func (b *Book) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// ValidDisplayName reports whether name is 1-32 letters, digits, spaces,
// '-', '_' or '.'.
func ValidDisplayName(name string) bool {
	if name == "" || len([]rune(name)) > maxDisplayNameLen {
		return false
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case ' ', '-', '_', '.':
			continue
		}
		return false
	}
	return true
}

// SetDisplayName trims and stores name.
func (b *Book) SetDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if !ValidDisplayName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings.DisplayName = name
	return b.sdoc.Save(b.settings)
}

// SetSound toggles sound effects.
func (b *Book) SetSound(enabled bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings.SoundEnabled = enabled
	return b.sdoc.Save(b.settings)
}

// SetTheme stores one of Themes.
func (b *Book) SetTheme(theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if !slices.Contains(Themes, theme) {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings.Theme = theme
	return b.sdoc.Save(b.settings)
}

// RecordSwipe counts one swipe, liked or passed.
func (b *Book) RecordSwipe(liked bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Swipes++
	if liked {
		b.stats.Likes++
	} else {
		b.stats.Passes++
	}
	b.saveStatsLocked()
}

// RecordSuperLike counts a paid super-like. It is also a swipe and a like.
func (b *Book) RecordSuperLike() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Swipes++
	b.stats.Likes++
	b.stats.SuperLikes++
	b.saveStatsLocked()
}

// RecordMatch counts a match.
func (b *Book) RecordMatch() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Matches++
	b.saveStatsLocked()
}

func (b *Book) saveStatsLocked() {
	if err := b.tdoc.Save(b.stats); err != nil {
		log.Printf("[ERROR] failed to save stats: %v", err)
	}
}
