package distribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raddispatch/distengine/internal/config"
	"github.com/raddispatch/distengine/internal/entity"
)

func schedConfig() config.SchedulingConfig {
	cfg, _ := config.Load("")
	return cfg.Scheduling
}

func shiftDoctor(id int, modalities entity.ModalitySet, maxUP float64, start, end time.Time) entity.Doctor {
	return entity.Doctor{
		ID:               id,
		FIOAlias:         "Doctor",
		ModalitySet:      modalities,
		MaxUPPerDay:      maxUP,
		MaxMinutes:       end.Sub(start).Minutes(),
		TimeStart:        &start,
		TimeEnd:          &end,
		AvailableTime:    start,
		AssignedStudyIDs: []int{},
	}
}

func mkStudy(id int, priority entity.Priority, createdAt time.Time, modalities entity.ModalitySet, up float64, sched config.SchedulingConfig) entity.Study {
	return entity.Study{
		ID:              id,
		ResearchNumber:  "RN",
		Priority:        priority,
		CreatedAt:       createdAt,
		ModalitySet:     modalities,
		UPValue:         up,
		DurationMinutes: up * sched.MinutesPerUP,
		Deadline:        createdAt.Add(time.Duration(sched.DeadlineHours[priority] * float64(time.Hour))),
		Weight:          sched.Weights[priority],
	}
}

func day(hour, minute int) time.Time {
	return time.Date(2026, 7, 29, hour, minute, 0, 0, time.UTC)
}

// S1. Single study / single doctor, clean fit.
func TestRun_S1_SingleStudySingleDoctor(t *testing.T) {
	sched := schedConfig()
	d := shiftDoctor(1, entity.NewModalitySet("CT"), 120, day(9, 0), day(17, 0))
	s := mkStudy(10, entity.PriorityNormal, day(8, 0), entity.NewModalitySet("CT"), 2.0, sched)

	envelope, err := Run([]entity.Study{s}, []entity.Doctor{d}, sched)
	require.NoError(t, err)

	assert.Equal(t, 1, envelope.Assigned)
	assert.Equal(t, 0, envelope.Unassigned)
	require.Len(t, envelope.Assignments, 1)
	a := envelope.Assignments[0]
	assert.Equal(t, 0.0, a.TardinessHours)
	assert.Equal(t, 0.0, a.WeightedTardiness)
	assert.Equal(t, day(9, 30), a.CompletionTime)
}

// S2. Priority preemption under capacity.
func TestRun_S2_PriorityPreemptionUnderCapacity(t *testing.T) {
	sched := schedConfig()
	d := shiftDoctor(1, entity.NewModalitySet("CT"), 4, day(0, 0), day(23, 0))

	a := mkStudy(1, entity.PriorityNormal, day(0, 0), entity.NewModalitySet("CT"), 2.0, sched)
	b := mkStudy(2, entity.PriorityCito, day(11, 0), entity.NewModalitySet("CT"), 2.0, sched)
	c := mkStudy(3, entity.PriorityAsap, day(10, 0), entity.NewModalitySet("CT"), 2.0, sched)

	envelope, err := Run([]entity.Study{a, b, c}, []entity.Doctor{d}, sched)
	require.NoError(t, err)

	assert.Equal(t, 2, envelope.Assigned)
	assert.Equal(t, 1, envelope.Unassigned)
	assert.Equal(t, 1, envelope.PriorityStats[entity.PriorityCito])
	assert.Equal(t, 1, envelope.PriorityStats[entity.PriorityAsap])
	assert.Equal(t, 0, envelope.PriorityStats[entity.PriorityNormal])

	assignedIDs := map[int]bool{}
	for _, asn := range envelope.Assignments {
		assignedIDs[asn.StudyID] = true
	}
	assert.True(t, assignedIDs[2])
	assert.True(t, assignedIDs[3])
	assert.False(t, assignedIDs[1])
}

// S3. Modality filter.
func TestRun_S3_ModalityFilter(t *testing.T) {
	sched := schedConfig()
	d1 := shiftDoctor(1, entity.NewModalitySet("CT"), 120, day(9, 0), day(17, 0))
	d2 := shiftDoctor(2, entity.NewModalitySet("MRI"), 120, day(9, 0), day(17, 0))

	s1 := mkStudy(1, entity.PriorityNormal, day(8, 0), entity.NewModalitySet("CT"), 1.0, sched)
	s2 := mkStudy(2, entity.PriorityNormal, day(8, 0), entity.NewModalitySet("MRI"), 1.0, sched)

	envelope, err := Run([]entity.Study{s1, s2}, []entity.Doctor{d1, d2}, sched)
	require.NoError(t, err)
	require.Len(t, envelope.Assignments, 2)

	for _, asn := range envelope.Assignments {
		if asn.StudyID == 1 {
			assert.Equal(t, 1, asn.DoctorID)
		}
		if asn.StudyID == 2 {
			assert.Equal(t, 2, asn.DoctorID)
		}
	}
}

// S4. Tardiness accrual: already-overdue study is rejected, not assigned.
func TestRun_S4_OverdueStudyNotAssigned(t *testing.T) {
	sched := schedConfig()
	d := shiftDoctor(1, entity.NewModalitySet(), 120, day(9, 0), day(17, 0))
	d.AvailableTime = day(9, 0)

	s := mkStudy(1, entity.PriorityCito, day(6, 0), entity.NewModalitySet(), 1.0, sched) // deadline 08:00, already past 09:00

	envelope, err := Run([]entity.Study{s}, []entity.Doctor{d}, sched)
	require.NoError(t, err)

	assert.Equal(t, 0, envelope.Assigned)
	assert.Equal(t, 1, envelope.Unassigned)
}

// S5. Overtime slack.
func TestRun_S5_OvertimeSlack(t *testing.T) {
	sched := schedConfig()
	d := shiftDoctor(1, entity.NewModalitySet(), 120, day(9, 0), day(17, 0))
	d.AvailableTime = day(16, 50)

	s := mkStudy(1, entity.PriorityNormal, day(8, 0), entity.NewModalitySet(), 20.0/15.0, sched)

	envelope, err := Run([]entity.Study{s}, []entity.Doctor{d}, sched)
	require.NoError(t, err)

	require.Equal(t, 1, envelope.Assigned)
	assert.Equal(t, day(17, 10), envelope.Assignments[0].CompletionTime)
}

// S6. Determinism.
func TestRun_S6_Deterministic(t *testing.T) {
	sched := schedConfig()
	d := shiftDoctor(1, entity.NewModalitySet("CT"), 10, day(9, 0), day(17, 0))
	studies := []entity.Study{
		mkStudy(1, entity.PriorityNormal, day(8, 0), entity.NewModalitySet("CT"), 1.0, sched),
		mkStudy(2, entity.PriorityCito, day(8, 30), entity.NewModalitySet("CT"), 1.0, sched),
		mkStudy(3, entity.PriorityAsap, day(8, 45), entity.NewModalitySet("CT"), 1.0, sched),
	}

	r1, err1 := Run(studies, []entity.Doctor{d}, sched)
	r2, err2 := Run(studies, []entity.Doctor{d}, sched)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, r1, r2)
}

// B1. Empty snapshot in both dimensions.
func TestRun_B1_EmptyBoth(t *testing.T) {
	sched := schedConfig()
	envelope, err := Run(nil, nil, sched)
	require.NoError(t, err)
	assert.Equal(t, 0, envelope.Assigned)
	assert.Equal(t, 0, envelope.Unassigned)
	assert.NotEmpty(t, envelope.Message)
}

// B1 variant: studies present, no doctors.
func TestRun_B1_NoDoctors(t *testing.T) {
	sched := schedConfig()
	s := mkStudy(1, entity.PriorityNormal, day(8, 0), entity.NewModalitySet(), 1.0, sched)
	envelope, err := Run([]entity.Study{s}, nil, sched)
	require.NoError(t, err)
	assert.Equal(t, 0, envelope.Assigned)
	assert.Equal(t, 1, envelope.Unassigned)
}

// B6. Same priority, same created_at: tie-break by id is deterministic.
func TestRun_B6_TieBreakByID(t *testing.T) {
	sched := schedConfig()
	d := shiftDoctor(1, entity.NewModalitySet(), 1, day(9, 0), day(23, 0))
	created := day(8, 0)
	s1 := mkStudy(5, entity.PriorityNormal, created, entity.NewModalitySet(), 1.0, sched)
	s2 := mkStudy(2, entity.PriorityNormal, created, entity.NewModalitySet(), 1.0, sched)

	envelope, err := Run([]entity.Study{s1, s2}, []entity.Doctor{d}, sched)
	require.NoError(t, err)
	require.Equal(t, 1, envelope.Assigned)
	assert.Equal(t, 2, envelope.Assignments[0].StudyID, "lower id wins the tie")
}

// P4. Capacity invariant holds across assignments.
func TestRun_P4_CapacityNeverExceeded(t *testing.T) {
	sched := schedConfig()
	d := shiftDoctor(1, entity.NewModalitySet(), 3, day(9, 0), day(23, 0))
	studies := []entity.Study{
		mkStudy(1, entity.PriorityNormal, day(8, 0), entity.NewModalitySet(), 2.0, sched),
		mkStudy(2, entity.PriorityNormal, day(8, 0), entity.NewModalitySet(), 2.0, sched),
	}
	envelope, err := Run(studies, []entity.Doctor{d}, sched)
	require.NoError(t, err)

	var totalUP float64
	for _, a := range envelope.Assignments {
		totalUP += a.UPValue
	}
	assert.LessOrEqual(t, totalUP, 3.0)
}

// P5. completion_time strictly increases in commit order per doctor.
func TestRun_P5_CompletionTimeStrictlyIncreasing(t *testing.T) {
	sched := schedConfig()
	d := shiftDoctor(1, entity.NewModalitySet(), 120, day(9, 0), day(23, 0))
	studies := []entity.Study{
		mkStudy(1, entity.PriorityNormal, day(8, 0), entity.NewModalitySet(), 1.0, sched),
		mkStudy(2, entity.PriorityNormal, day(8, 0), entity.NewModalitySet(), 1.0, sched),
		mkStudy(3, entity.PriorityNormal, day(8, 0), entity.NewModalitySet(), 1.0, sched),
	}
	envelope, err := Run(studies, []entity.Doctor{d}, sched)
	require.NoError(t, err)
	require.Len(t, envelope.Assignments, 3)

	for i := 1; i < len(envelope.Assignments); i++ {
		assert.True(t, envelope.Assignments[i].CompletionTime.After(envelope.Assignments[i-1].CompletionTime))
	}
}
