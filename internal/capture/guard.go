// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package capture

import (
	"context"
	"fmt"

	"github.com/ManuGH/seacam/internal/log"
	"github.com/rs/zerolog"
)

// FreeSpaceFunc reports the free bytes available under path.
type FreeSpaceFunc func(path string) (uint64, error)

// Guarded wraps a Device and refuses new captures once the media volume
// drops below a free-space floor.
type Guarded struct {
	Device
	path     string
	minFree  uint64
	freeFunc FreeSpaceFunc
	logger   zerolog.Logger
}

// NewGuarded returns a Device that checks free space at path before each
// still and each recording start. minFree == 0 disables the check.
func NewGuarded(dev Device, path string, minFree uint64) *Guarded {
	return &Guarded{
		Device:   dev,
		path:     path,
		minFree:  minFree,
		freeFunc: FreeSpace,
		logger:   log.WithComponent("capture.guard"),
	}
}

// WithFreeSpaceFunc replaces the statfs probe; used by tests.
func (g *Guarded) WithFreeSpaceFunc(fn FreeSpaceFunc) *Guarded {
	g.freeFunc = fn
	return g
}

// Check returns ErrLowStorage when the volume is below the floor.
// Probe failures are logged and do not block capture.
func (g *Guarded) Check() error {
	if g.minFree == 0 || g.path == "" {
		return nil
	}
	free, err := g.freeFunc(g.path)
	if err != nil {
		g.logger.Warn().Err(err).Str(log.FieldPath, g.path).Msg("free space probe failed")
		return nil
	}
	if free < g.minFree {
		return fmt.Errorf("%w: %d bytes free, need %d", ErrLowStorage, free, g.minFree)
	}
	return nil
}

func (g *Guarded) TakeStill(ctx context.Context) error {
	if err := g.Check(); err != nil {
		return err
	}
	return g.Device.TakeStill(ctx)
}

func (g *Guarded) StartRecording(ctx context.Context) error {
	if err := g.Check(); err != nil {
		return err
	}
	return g.Device.StartRecording(ctx)
}
