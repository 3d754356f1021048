package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrClosed     = errors.New("store closed")
	ErrInvalidKey = errors.New("invalid key")
)

// Store is a durable key/value backend holding one serialized value per key.
// Set overwrites unconditionally.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Close() error
}

// Backend kinds accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindMemory = "memory"
)

// Open builds the backend named by kind.
func Open(kind, dir, sqlitePath string) (Store, error) {
	switch kind {
	case KindFile, "":
		return NewFileStore(dir)
	case KindSQLite:
		return NewSQLiteStore(sqlitePath)
	case KindMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

func checkKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
