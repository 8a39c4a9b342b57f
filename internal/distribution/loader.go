package distribution

import (
	"time"

	"github.com/raddispatch/distengine/internal/config"
	"github.com/raddispatch/distengine/internal/entity"
)

// RawStudy is the shape a host's StudyReadPort hands the core: every
// optional field pervasively nullable exactly as in the backing store
// (spec §9 Design Notes). Malformed records (ID == 0) are the caller's
// signal to skip the record entirely; see ResolveStudy.
type RawStudy struct {
	ID             int
	ResearchNumber string
	Priority       *entity.Priority
	CreatedAt      *time.Time
	StudyTypeID    *int
	Modality       ModalityInput
	UPValue        *float64
}

// RawDoctor is the shape a host's DoctorReadPort hands the core for one
// on-shift doctor, paired with that doctor's schedule row for the
// target date.
type RawDoctor struct {
	ID          int
	FIOAlias    string
	Modality    ModalityInput
	MaxUPPerDay *int
	TimeStart   *time.Time
	TimeEnd     *time.Time
}

// MalformedStudyDiagnostic is returned by ResolveStudy when a record is
// dropped entirely rather than defaulted (spec §7: "entirely malformed
// records (missing id) are skipped and counted under unassigned with a
// diagnostic entry").
type MalformedStudyDiagnostic struct {
	Reason string
}

// ResolveStudy is the Snapshot Loader boundary's defaulting pass (spec §9
// Design Notes): it promotes a RawStudy's optional fields to the total
// types the rest of the core requires, and computes the derived fields
// of §3 (duration, deadline, weight). A nil return with a non-nil
// diagnostic means the record was entirely malformed and must be counted
// under `unassigned`, not scheduled.
func ResolveStudy(raw RawStudy, now time.Time, sched config.SchedulingConfig) (*entity.Study, *MalformedStudyDiagnostic) {
	if raw.ID == 0 {
		return nil, &MalformedStudyDiagnostic{Reason: "study missing id"}
	}

	priority := entity.PriorityNormal
	if raw.Priority != nil {
		priority = *raw.Priority
	}

	createdAt := now
	if raw.CreatedAt != nil {
		createdAt = raw.CreatedAt.UTC()
	}

	upValue := 1.0
	if raw.UPValue != nil && *raw.UPValue > 0 {
		upValue = *raw.UPValue
	}

	modalitySet := NormalizeModality(raw.Modality)

	deadlineHours := sched.DeadlineHours[priority]
	weight := sched.Weights[priority]

	return &entity.Study{
		ID:              raw.ID,
		ResearchNumber:  raw.ResearchNumber,
		Priority:        priority,
		CreatedAt:       createdAt,
		StudyTypeID:     raw.StudyTypeID,
		ModalitySet:     modalitySet,
		UPValue:         upValue,
		DurationMinutes: upValue * sched.MinutesPerUP,
		Deadline:        createdAt.Add(time.Duration(deadlineHours * float64(time.Hour))),
		Weight:          weight,
	}, nil
}

// ResolveDoctor is the doctor-side counterpart of ResolveStudy: it
// promotes optional shift/capacity fields to defaults (§9: max_up_per_day
// → 120, max_minutes → 480) and initializes the mutable run state
// (available_time, per §3).
func ResolveDoctor(raw RawDoctor, now time.Time, sched config.SchedulingConfig) *entity.Doctor {
	maxUP := 120.0
	if raw.MaxUPPerDay != nil && *raw.MaxUPPerDay > 0 {
		maxUP = float64(*raw.MaxUPPerDay)
	}

	maxMinutes := sched.DefaultShift.Minutes()
	if raw.TimeStart != nil && raw.TimeEnd != nil {
		maxMinutes = raw.TimeEnd.Sub(*raw.TimeStart).Minutes()
	}

	availableTime := now
	if raw.TimeStart != nil {
		availableTime = *raw.TimeStart
	}

	return &entity.Doctor{
		ID:          raw.ID,
		FIOAlias:    raw.FIOAlias,
		ModalitySet: NormalizeModality(raw.Modality),
		MaxUPPerDay: maxUP,
		MaxMinutes:  maxMinutes,
		TimeStart:   raw.TimeStart,
		TimeEnd:     raw.TimeEnd,

		AvailableTime:    availableTime,
		AssignedStudyIDs: []int{},
	}
}
