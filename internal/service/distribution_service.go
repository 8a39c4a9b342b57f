package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raddispatch/distengine/internal/config"
	"github.com/raddispatch/distengine/internal/distribution"
	"github.com/raddispatch/distengine/internal/entity"
	"github.com/raddispatch/distengine/internal/metrics"
)

// DistributionService orchestrates one run of the distribution engine
// end to end: load the snapshot, run the Assignment Loop, persist the
// result. Per spec §5, two runs must never execute concurrently; runMu
// is the process-wide mutex that enforces that on a single instance. A
// multi-instance deployment additionally needs a database advisory
// lock, which is out of scope for this service.
type DistributionService struct {
	clock      ClockPort
	studies    StudyReadPort
	doctors    DoctorReadPort
	writer     AssignmentWritePort
	runs       RunWritePort
	sched      config.SchedulingConfig

	runMu sync.Mutex
}

// NewDistributionService builds a DistributionService from its ports
// and the scheduling configuration (spec §4.2).
func NewDistributionService(
	clock ClockPort,
	studies StudyReadPort,
	doctors DoctorReadPort,
	writer AssignmentWritePort,
	runs RunWritePort,
	sched config.SchedulingConfig,
) *DistributionService {
	return &DistributionService{
		clock:   clock,
		studies: studies,
		doctors: doctors,
		writer:  writer,
		runs:    runs,
		sched:   sched,
	}
}

// Distribute runs the Assignment Loop once against the current
// snapshot and persists the result (spec §4.6–§4.8). triggeredBy
// identifies the caller for the audit trail (SPEC_FULL §12) — "http",
// "scheduled", or "cli".
func (s *DistributionService) Distribute(ctx context.Context, triggeredBy string) (entity.ResultEnvelope, error) {
	if !s.runMu.TryLock() {
		metrics.ObserveRunExclusionRejection()
		return entity.ResultEnvelope{}, fmt.Errorf("distribution run already in progress")
	}
	defer s.runMu.Unlock()

	wallStart := time.Now()
	now := s.clock.Now()
	runID := entity.NewRunID()

	run := entity.DistributionRun{
		ID:          runID,
		StartedAt:   now,
		TriggeredBy: triggeredBy,
	}
	if s.runs != nil {
		if err := s.runs.StartRun(ctx, run); err != nil {
			return entity.ResultEnvelope{}, fmt.Errorf("recording run start: %w", err)
		}
	}

	rawStudies, err := s.studies.PendingStudies(ctx)
	if err != nil {
		return entity.ResultEnvelope{}, &entity.SnapshotUnavailableError{Reason: err.Error()}
	}
	rawDoctors, err := s.doctors.OnShiftDoctors(ctx)
	if err != nil {
		return entity.ResultEnvelope{}, &entity.SnapshotUnavailableError{Reason: err.Error()}
	}

	run.AvailableDoctors = len(rawDoctors)
	metrics.ObserveSnapshot(len(rawStudies), len(rawDoctors))

	if len(rawStudies) == 0 || len(rawDoctors) == 0 {
		envelope := entity.ResultEnvelope{Message: emptySnapshotMessage(len(rawStudies), len(rawDoctors))}
		s.finishRun(ctx, &run, envelope)
		metrics.ObserveRun("ok", triggeredBy, time.Since(wallStart), 0, 0, 0, false)
		return envelope, nil
	}

	var malformed int
	studies := make([]entity.Study, 0, len(rawStudies))
	for _, raw := range rawStudies {
		study, diag := distribution.ResolveStudy(raw, now, s.sched)
		if diag != nil {
			malformed++
			continue
		}
		studies = append(studies, *study)
	}

	doctors := make([]entity.Doctor, 0, len(rawDoctors))
	for _, raw := range rawDoctors {
		doctors = append(doctors, *distribution.ResolveDoctor(raw, now, s.sched))
	}

	envelope, err := distribution.Run(studies, doctors, s.sched)
	if err != nil {
		return entity.ResultEnvelope{}, err
	}
	envelope.Unassigned += malformed
	distribution.AttachCapacity(&envelope, doctors)

	if len(envelope.Assignments) > 0 && s.writer != nil {
		unpersisted, err := s.writer.PersistAssignments(ctx, runID, envelope.Assignments)
		if err != nil {
			envelope.Degraded = true
			envelope.Unpersisted = unpersisted
			s.finishRun(ctx, &run, envelope)
			metrics.ObserveRun("degraded", triggeredBy, time.Since(wallStart), envelope.Assigned, envelope.Unassigned, envelope.TotalWeightedTardiness, true)
			return envelope, &entity.PersistenceFailureError{FailedStudyIDs: studyIDs(unpersisted), Cause: err}
		}
	}

	s.finishRun(ctx, &run, envelope)
	metrics.ObserveRun("ok", triggeredBy, time.Since(wallStart), envelope.Assigned, envelope.Unassigned, envelope.TotalWeightedTardiness, envelope.Degraded)
	return envelope, nil
}

// Preview reports the size of the pending snapshot without running the
// Assignment Loop or committing anything (SPEC_FULL §12's dual-verb
// /api/distribute/ endpoint).
func (s *DistributionService) Preview(ctx context.Context) (entity.PreviewResult, error) {
	rawStudies, err := s.studies.PendingStudies(ctx)
	if err != nil {
		return entity.PreviewResult{}, &entity.SnapshotUnavailableError{Reason: err.Error()}
	}
	rawDoctors, err := s.doctors.OnShiftDoctors(ctx)
	if err != nil {
		return entity.PreviewResult{}, &entity.SnapshotUnavailableError{Reason: err.Error()}
	}

	return entity.PreviewResult{
		PendingStudies:  len(rawStudies),
		AvailableDoctors: len(rawDoctors),
		Message:         emptySnapshotMessage(len(rawStudies), len(rawDoctors)),
	}, nil
}

func (s *DistributionService) finishRun(ctx context.Context, run *entity.DistributionRun, envelope entity.ResultEnvelope) {
	if s.runs == nil {
		return
	}
	run.FinishedAt = s.clock.Now()
	run.PendingStudies = envelope.Assigned + envelope.Unassigned
	run.Assigned = envelope.Assigned
	run.Unassigned = envelope.Unassigned
	run.TotalWeightedTardiness = envelope.TotalWeightedTardiness
	run.Degraded = envelope.Degraded
	_ = s.runs.FinishRun(ctx, *run)
}

func studyIDs(assignments []entity.Assignment) []int {
	ids := make([]int, len(assignments))
	for i, a := range assignments {
		ids[i] = a.StudyID
	}
	return ids
}

func emptySnapshotMessage(studies, doctors int) string {
	switch {
	case studies == 0 && doctors == 0:
		return "no pending studies and no on-shift doctors"
	case studies == 0:
		return "no pending studies"
	case doctors == 0:
		return "no on-shift doctors"
	default:
		return ""
	}
}
