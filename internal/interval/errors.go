// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package interval

import "errors"

var (
	// ErrNoActionSelected rejects a campaign with neither stills nor recording enabled.
	ErrNoActionSelected = errors.New("no capture action selected")
	// ErrSimultaneous4K rejects simultaneous stills and recording while recording in 4K.
	ErrSimultaneous4K = errors.New("simultaneous stills and video are not supported at 4K resolution")
	// ErrZeroCycleLength rejects a campaign whose cycle has no duration.
	ErrZeroCycleLength = errors.New("cycle length must be greater than zero")
	// ErrAlreadyRunning rejects a second concurrent campaign.
	ErrAlreadyRunning = errors.New("interval campaign already running")
)

// IsConfigError reports whether err rejects the interval configuration,
// either at start or on a settings change while a campaign runs.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrNoActionSelected) ||
		errors.Is(err, ErrSimultaneous4K) ||
		errors.Is(err, ErrZeroCycleLength)
}
