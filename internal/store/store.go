// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package store persists the operator-mutable interval settings and the
// running session markers as flat key/value pairs.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Store is a flat string key/value persistence layer.
type Store interface {
	// Load returns every stored pair. A fresh store returns an empty map.
	Load(ctx context.Context) (map[string]string, error)
	// Save upserts the given pairs; keys not present are left untouched.
	Save(ctx context.Context, values map[string]string) error
	Close() error
}

const (
	sqliteFile = "seacam.sqlite"
	yamlFile   = "intervals.yaml"
)

// Open creates a Store for backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "sqlite":
		if dir == "" {
			return NewMemoryStore(), nil
		}
		return NewSqliteStore(filepath.Join(dir, sqliteFile))
	case "yaml":
		if dir == "" {
			return nil, fmt.Errorf("yaml store requires a data directory")
		}
		return NewFileStore(filepath.Join(dir, yamlFile))
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: sqlite, yaml, memory)", ErrUnknownBackend, backend)
	}
}
