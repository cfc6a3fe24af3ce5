// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/seacam/internal/capture"
	"github.com/ManuGH/seacam/internal/interval"
	"github.com/ManuGH/seacam/internal/persistence/sqlite"
	"github.com/ManuGH/seacam/internal/resilience"
)

const checkTimeout = 2 * time.Second

// DBChecker pings the settings database and runs a quick integrity check.
type DBChecker struct {
	db *sql.DB
}

// NewDBChecker creates a checker for the SQLite settings store. A nil db
// reports healthy with a note, for the non-SQLite backends.
func NewDBChecker(db *sql.DB) *DBChecker {
	return &DBChecker{db: db}
}

func (c *DBChecker) Name() string { return "store" }

func (c *DBChecker) Check(ctx context.Context) CheckResult {
	if c.db == nil {
		return CheckResult{Status: StatusHealthy, Message: "not using sqlite"}
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error(), Message: "database unreachable"}
	}
	problems, err := sqlite.VerifyIntegrity(ctx, c.db, "quick")
	if err != nil {
		return CheckResult{Status: StatusDegraded, Error: err.Error(), Message: "integrity check failed to run"}
	}
	if len(problems) > 0 {
		return CheckResult{Status: StatusUnhealthy, Error: strings.Join(problems, "; "), Message: "database integrity check failed"}
	}
	return CheckResult{Status: StatusHealthy, Message: "database ok"}
}

// StorageChecker reports the media volume free-space state.
type StorageChecker struct {
	check func() error
}

// NewStorageChecker wraps a free-space probe such as capture.Guarded.Check.
func NewStorageChecker(check func() error) *StorageChecker {
	return &StorageChecker{check: check}
}

func (c *StorageChecker) Name() string { return "media_storage" }

// Check is degraded rather than unhealthy when low: the API stays usable
// for stopping campaigns and changing settings.
func (c *StorageChecker) Check(context.Context) CheckResult {
	err := c.check()
	switch {
	case err == nil:
		return CheckResult{Status: StatusHealthy, Message: "free space above floor"}
	case errors.Is(err, capture.ErrLowStorage):
		return CheckResult{Status: StatusDegraded, Error: err.Error(), Message: "storage nearly full"}
	default:
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
}

// SchedulerStatus is the part of the interval scheduler the checker reads.
type SchedulerStatus interface {
	Status() interval.Status
	StillCaptureState() resilience.State
}

// SchedulerChecker reports the interval campaign and still capture state.
type SchedulerChecker struct {
	sched SchedulerStatus
}

func NewSchedulerChecker(sched SchedulerStatus) *SchedulerChecker {
	return &SchedulerChecker{sched: sched}
}

func (c *SchedulerChecker) Name() string { return "intervals" }

func (c *SchedulerChecker) Check(context.Context) CheckResult {
	st := c.sched.Status()
	msg := fmt.Sprintf("state=%s", st.State)
	if st.Enabled {
		msg = fmt.Sprintf("state=%s cycles=%d offset=%s", st.State, st.CyclesCompleted, st.Offset)
	}
	if bs := c.sched.StillCaptureState(); bs != resilience.StateClosed {
		return CheckResult{Status: StatusDegraded, Message: msg, Error: fmt.Sprintf("still capture breaker %s", bs)}
	}
	return CheckResult{Status: StatusHealthy, Message: msg}
}
