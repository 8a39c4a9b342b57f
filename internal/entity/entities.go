package entity

import (
	"time"

	"github.com/google/uuid"
)

// RunID identifies one distribution run for correlation across logs,
// metrics, and the audit trail. Study/Doctor/Assignment identity stays a
// plain integer (see Study, Doctor below) since the source system keys
// them with database auto-increment primary keys, not surrogate UUIDs.
type RunID = uuid.UUID

func NewRunID() RunID {
	return uuid.New()
}

func Now() time.Time {
	return time.Now().UTC()
}

// Priority is the study urgency class driving deadline and weight.
type Priority string

const (
	PriorityCito   Priority = "cito"
	PriorityAsap   Priority = "asap"
	PriorityNormal Priority = "normal"
)

// ModalitySet is the canonical output of the modality normalizer: a set
// of imaging-technique tags. An empty set means "wildcard" to the
// feasibility check (distribution.modalityCompatible); Intersects itself
// treats an empty set as sharing no tag.
type ModalitySet map[string]struct{}

func NewModalitySet(tags ...string) ModalitySet {
	set := make(ModalitySet, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

func (m ModalitySet) Has(tag string) bool {
	_, ok := m[tag]
	return ok
}

// Intersects reports whether m and other share at least one tag.
func (m ModalitySet) Intersects(other ModalitySet) bool {
	small, big := m, other
	if len(other) < len(m) {
		small, big = other, m
	}
	for tag := range small {
		if big.Has(tag) {
			return true
		}
	}
	return false
}

func (m ModalitySet) Slice() []string {
	out := make([]string, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	return out
}

// Study is a pending radiology study as ingested by the Snapshot Loader.
// Fields below the divider are derived once, at load time, and never
// recomputed during the run.
type Study struct {
	ID             int
	ResearchNumber string
	Priority       Priority
	CreatedAt      time.Time
	StudyTypeID    *int
	ModalitySet    ModalitySet
	UPValue        float64

	// --- derived at Snapshot Loader boundary ---
	DurationMinutes float64
	Deadline        time.Time
	Weight          float64
}

// Doctor is an on-shift diagnostician's working record for one run. The
// fields below the divider mutate as the Assignment Loop commits work to
// this doctor; everything above is fixed for the duration of the run.
type Doctor struct {
	ID           int
	FIOAlias     string
	ModalitySet  ModalitySet
	MaxUPPerDay  float64
	MaxMinutes   float64
	TimeStart    *time.Time
	TimeEnd      *time.Time

	// --- mutable run state ---
	CurrentLoad      float64
	CurrentMinutes   float64
	AvailableTime    time.Time
	AssignedStudyIDs []int
}

// RemainingMinutes is the shift budget left before TimeEnd+overtime.
func (d *Doctor) RemainingMinutes(overtimeSlack time.Duration) float64 {
	if d.TimeEnd == nil {
		return d.MaxMinutes - d.CurrentMinutes
	}
	deadline := d.TimeEnd.Add(overtimeSlack)
	return deadline.Sub(d.AvailableTime).Minutes()
}

// Assignment is one committed (study, doctor) pairing, as recorded by
// the Assignment Loop and persisted by the Assignment Writer.
type Assignment struct {
	StudyID           int
	StudyNumber       string
	DoctorID          int
	DoctorName        string
	Priority          Priority
	Weight            float64
	Deadline          time.Time
	CompletionTime    time.Time
	TardinessHours    float64
	WeightedTardiness float64
	UPValue           float64
	ATCIndex          float64
}

// DoctorStat summarizes one doctor's load at the end of a run.
type DoctorStat struct {
	DoctorID      int
	DoctorName    string
	AssignedCount int
	TotalUP       float64
	MaxUP         float64
	LoadPercent   float64
	RemainingUP   float64
}

// ResultEnvelope is the stable output contract described in spec §4.8/§6.
type ResultEnvelope struct {
	Assigned               int
	Unassigned             int
	TotalTardiness         float64
	TotalWeightedTardiness float64
	AvgTardiness           float64
	Assignments            []Assignment
	DoctorStats            []DoctorStat
	PriorityStats          map[Priority]int
	Message                string

	// Degraded is set when persistence partially failed (§7); the
	// envelope is still returned complete per the "always produced"
	// guarantee.
	Degraded    bool
	Unpersisted []Assignment
}

// PreviewResult is the read-only counts surface exposed by preview() (§6).
type PreviewResult struct {
	PendingStudies   int
	AvailableDoctors int
	Message          string
}

// DistributionRun is the supplemented audit record (SPEC_FULL §12): one
// row per distribute() invocation (preview() records none), independent of the
// ResultEnvelope returned to the caller, kept for operational history.
type DistributionRun struct {
	ID                     RunID
	StartedAt              time.Time
	FinishedAt             time.Time
	TriggeredBy            string // "http" | "scheduled" | "cli"
	PendingStudies         int
	AvailableDoctors       int
	Assigned               int
	Unassigned             int
	TotalWeightedTardiness float64
	Degraded               bool
}
