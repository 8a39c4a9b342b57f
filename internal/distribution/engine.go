// Package distribution implements the Apparent Tardiness Cost dispatch
// core (spec §2 components 1, 4, 5, 6 and the §4.8 Result Envelope): given a resolved snapshot of
// pending studies and on-shift doctors, it runs the Assignment Loop and
// produces a Result Envelope. It has no knowledge of HTTP, persistence,
// or the job queue — those are the host's concern (internal/service,
// internal/api, internal/job).
package distribution

import (
	"math"
	"time"

	"github.com/raddispatch/distengine/internal/config"
	"github.com/raddispatch/distengine/internal/entity"
)

// maxConsecutiveFailures is the safety-net guard from spec §4.6: the
// loop must never need it when the feasibility check is correct, since
// an iteration with no committable pair terminates the loop directly.
// It exists only to bound runaway behavior under a future bug.
const maxConsecutiveFailures = 100

// Run executes the Assignment Loop (spec §4.6) to completion and builds
// the Result Envelope (spec §4.8). studies and doctors must already be
// resolved (see ResolveStudy/ResolveDoctor) — every optional field
// defaulted, every derived field computed. Run does not mutate its
// inputs; it copies each doctor's working state internally.
//
// An InvariantViolationError is returned only if a commit would break
// I1 or I3, or if the iteration safety net trips (Invariant
// "termination"); in a correct build this never happens; see spec §7.
func Run(studies []entity.Study, doctors []entity.Doctor, sched config.SchedulingConfig) (entity.ResultEnvelope, error) {
	remaining := make([]*entity.Study, len(studies))
	for i := range studies {
		s := studies[i]
		remaining[i] = &s
	}

	docs := make([]*entity.Doctor, len(doctors))
	for i := range doctors {
		d := doctors[i]
		docs[i] = &d
	}

	var assignments []entity.Assignment
	seen := make(map[int]bool, len(studies))

	// The loop terminates the instant no feasible pair exists (the
	// normal case of §4.6's termination rule), so it can only iterate
	// at most len(studies) times — one commit per pass. maxConsecutive
	// Failures guards against that invariant being violated by a future
	// bug rather than being load-bearing today.
	for iteration := 0; len(remaining) > 0; iteration++ {
		if iteration >= maxConsecutiveFailures+len(studies) {
			return entity.ResultEnvelope{}, &entity.InvariantViolationError{
				Invariant: "termination",
				Detail:    "assignment loop exceeded the consecutive-failure safety net",
			}
		}

		bestDoctorIdx, bestStudyIdx, bestIndex, found := selectBestPair(remaining, docs, sched)
		if !found {
			break
		}

		study := remaining[bestStudyIdx]
		doctor := docs[bestDoctorIdx]

		if err := checkPreCommitInvariants(study, doctor, seen); err != nil {
			return entity.ResultEnvelope{}, err
		}

		assignment := commit(study, doctor, bestIndex, sched.OvertimeSlack)
		assignments = append(assignments, assignment)
		seen[study.ID] = true

		remaining = append(remaining[:bestStudyIdx], remaining[bestStudyIdx+1:]...)
	}

	envelope := buildEnvelope(len(studies), assignments, len(remaining))
	return envelope, nil
}

// selectBestPair implements the global-best selection rule of §4.6: scan
// every (doctor, study) pair with the doctor still active and the pair
// feasible, and return the one with the maximum ATC index. Ties are
// broken per §4.5 (LessUrgent). Worst case O(|S| × |D|) per call, as
// documented in §4.6; a production build may replace the inner scan with
// per-doctor priority queues without changing this selection rule.
func selectBestPair(remaining []*entity.Study, docs []*entity.Doctor, sched config.SchedulingConfig) (doctorIdx, studyIdx int, index float64, found bool) {
	index = math.Inf(-1)

	for di, d := range docs {
		if DoctorExhausted(d, sched.OvertimeSlack) {
			continue
		}
		for si, s := range remaining {
			if !Feasible(*s, d, sched.OvertimeSlack) {
				continue
			}
			candidate := ATCIndex(*s, d.AvailableTime, sched.ATCKParam)

			switch {
			case !found:
				doctorIdx, studyIdx, index, found = di, si, candidate, true
			case candidate > index && !sameIndex(candidate, index):
				doctorIdx, studyIdx, index = di, si, candidate
			case sameIndex(candidate, index) && LessUrgent(*remaining[studyIdx], *s):
				doctorIdx, studyIdx, index = di, si, candidate
			}
		}
	}
	return doctorIdx, studyIdx, index, found
}

// checkPreCommitInvariants asserts I1 and I3 would hold after committing
// study to doctor; I2 holds by construction (AvailableTime only ever
// advances in commit).
func checkPreCommitInvariants(study *entity.Study, doctor *entity.Doctor, seen map[int]bool) error {
	if seen[study.ID] {
		return &entity.InvariantViolationError{Invariant: "I3", Detail: "study already assigned"}
	}
	if doctor.CurrentLoad+study.UPValue > doctor.MaxUPPerDay+1e-9 {
		return &entity.InvariantViolationError{Invariant: "I1", Detail: "commit would exceed max_up_per_day"}
	}
	return nil
}

// commit applies the mutation sequence of §4.6 to doctor and returns the
// resulting Assignment record.
func commit(study *entity.Study, doctor *entity.Doctor, atcIndex float64, overtimeSlack time.Duration) entity.Assignment {
	doctor.AssignedStudyIDs = append(doctor.AssignedStudyIDs, study.ID)
	doctor.AvailableTime = doctor.AvailableTime.Add(minutesToDuration(study.DurationMinutes))
	doctor.CurrentLoad += study.UPValue
	doctor.CurrentMinutes += study.DurationMinutes

	tardiness := doctor.AvailableTime.Sub(study.Deadline).Hours()
	if tardiness < 0 {
		tardiness = 0
	}

	return entity.Assignment{
		StudyID:           study.ID,
		StudyNumber:       study.ResearchNumber,
		DoctorID:          doctor.ID,
		DoctorName:        doctor.FIOAlias,
		Priority:          study.Priority,
		Weight:            study.Weight,
		Deadline:          study.Deadline,
		CompletionTime:    doctor.AvailableTime,
		TardinessHours:    tardiness,
		WeightedTardiness: tardiness * study.Weight,
		UPValue:           study.UPValue,
		ATCIndex:          atcIndex,
	}
}
