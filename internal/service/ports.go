// Package service wires the host's persistence and scheduling adapters
// to the internal/distribution engine through a small set of ports
// (spec §6). The engine itself never imports this package; service
// depends on distribution, not the other way around.
package service

import (
	"context"
	"time"

	"github.com/raddispatch/distengine/internal/distribution"
	"github.com/raddispatch/distengine/internal/entity"
)

// ClockPort supplies the current time. Tests substitute a fixed clock;
// production wires time.Now.
type ClockPort interface {
	Now() time.Time
}

// SystemClock is the production ClockPort.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// StudyReadPort reads the pending-study snapshot at the start of a run
// (spec §2 component 3, §4.3). Records arrive in the host's raw,
// nullable-field shape; the service resolves them via
// distribution.ResolveStudy before handing them to the engine.
type StudyReadPort interface {
	PendingStudies(ctx context.Context) ([]distribution.RawStudy, error)
}

// DoctorReadPort reads the on-shift doctor snapshot at the start of a
// run (spec §2 component 3, §4.3).
type DoctorReadPort interface {
	OnShiftDoctors(ctx context.Context) ([]distribution.RawDoctor, error)
}

// AssignmentWritePort persists the committed assignments of a run
// (spec §4.7). A failed write is retried study-by-study by the
// repository before it ever reaches here; PersistAssignments returns
// only the subset that still didn't make it, so the caller reports
// exactly those under entity.PersistenceFailureError and marks the run
// degraded rather than treating the whole batch as lost.
type AssignmentWritePort interface {
	PersistAssignments(ctx context.Context, runID entity.RunID, assignments []entity.Assignment) (unpersisted []entity.Assignment, err error)
}

// RunWritePort records the distribution-run audit trail (SPEC_FULL §12).
type RunWritePort interface {
	StartRun(ctx context.Context, run entity.DistributionRun) error
	FinishRun(ctx context.Context, run entity.DistributionRun) error
}
