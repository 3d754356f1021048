package store

import (
	"encoding/json"
	"fmt"
	"log"
)

// Document is a typed JSON value living under a fixed key.
//
// Load never fails: a missing key yields Default(), and an unreadable,
// invalid or undecodable value yields Default() after OnCorrupt is told why.
type Document[T any] struct {
	Store   Store
	Key     string
	Default func() T

	// Validate, when set, checks the raw bytes before decoding.
	Validate func(raw []byte) error
	// OnCorrupt is called whenever Load falls back to defaults for a value
	// that was present but unusable. Nil logs a warning.
	OnCorrupt func(key string, err error)
}

// NewDocument returns a Document with no validation and log-only diagnostics.
func NewDocument[T any](s Store, key string, def func() T) *Document[T] {
	return &Document[T]{Store: s, Key: key, Default: def}
}

func (d *Document[T]) Load() T {
	raw, ok, err := d.Store.Get(d.Key)
	if err != nil {
		d.corrupt(fmt.Errorf("read: %w", err))
		return d.Default()
	}
	if !ok {
		return d.Default()
	}
	if d.Validate != nil {
		if err := d.Validate(raw); err != nil {
			d.corrupt(fmt.Errorf("validate: %w", err))
			return d.Default()
		}
	}

	// Decode over the defaults so fields missing from older records keep
	// their default value.
	v := d.Default()
	if err := json.Unmarshal(raw, &v); err != nil {
		d.corrupt(fmt.Errorf("decode: %w", err))
		return d.Default()
	}
	return v
}

func (d *Document[T]) Save(v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", d.Key, err)
	}
	if err := d.Store.Set(d.Key, data); err != nil {
		return fmt.Errorf("write %s: %w", d.Key, err)
	}
	return nil
}

func (d *Document[T]) corrupt(err error) {
	if d.OnCorrupt != nil {
		d.OnCorrupt(d.Key, err)
		return
	}
	log.Printf("[WARN] %s unusable, falling back to defaults: %v", d.Key, err)
}
