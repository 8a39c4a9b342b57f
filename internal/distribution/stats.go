package distribution

import (
	"fmt"
	"math"

	"github.com/raddispatch/distengine/internal/entity"
)

// buildEnvelope aggregates a completed run's assignments into the Result
// Envelope shape of §4.8, rounding numeric fields per §6 (hours to 2
// decimals, percents to 1 decimal, points to 1 decimal).
func buildEnvelope(totalStudies int, assignments []entity.Assignment, unassignedCount int) entity.ResultEnvelope {
	var totalTardiness, totalWeightedTardiness float64
	priorityStats := map[entity.Priority]int{
		entity.PriorityCito:   0,
		entity.PriorityAsap:   0,
		entity.PriorityNormal: 0,
	}
	doctorTotals := make(map[int]*entity.DoctorStat)
	doctorOrder := make([]int, 0)

	for _, a := range assignments {
		totalTardiness += a.TardinessHours
		totalWeightedTardiness += a.WeightedTardiness
		priorityStats[a.Priority]++

		stat, ok := doctorTotals[a.DoctorID]
		if !ok {
			stat = &entity.DoctorStat{DoctorID: a.DoctorID, DoctorName: a.DoctorName}
			doctorTotals[a.DoctorID] = stat
			doctorOrder = append(doctorOrder, a.DoctorID)
		}
		stat.AssignedCount++
		stat.TotalUP += a.UPValue
	}

	doctorStats := make([]entity.DoctorStat, 0, len(doctorOrder))
	for _, id := range doctorOrder {
		doctorStats = append(doctorStats, *doctorTotals[id])
	}

	avgTardiness := 0.0
	if len(assignments) > 0 {
		avgTardiness = totalTardiness / float64(len(assignments))
	}

	envelope := entity.ResultEnvelope{
		Assigned:               len(assignments),
		Unassigned:             unassignedCount,
		TotalTardiness:         round2(totalTardiness),
		TotalWeightedTardiness: round2(totalWeightedTardiness),
		AvgTardiness:           round2(avgTardiness),
		Assignments:            assignments,
		DoctorStats:            doctorStats,
		PriorityStats:          priorityStats,
		Message:                buildMessage(totalStudies, len(assignments), unassignedCount),
	}

	return envelope
}

// AttachCapacity fills in MaxUP/RemainingUP/LoadPercent on doctor stats
// once the full doctor roster (including untouched doctors) is known —
// kept separate from buildEnvelope because the engine only sees doctors
// it mutated state on, not the full roster the service layer loaded.
func AttachCapacity(envelope *entity.ResultEnvelope, doctors []entity.Doctor) {
	maxUP := make(map[int]float64, len(doctors))
	names := make(map[int]string, len(doctors))
	for _, d := range doctors {
		maxUP[d.ID] = d.MaxUPPerDay
		names[d.ID] = d.FIOAlias
	}

	for i := range envelope.DoctorStats {
		stat := &envelope.DoctorStats[i]
		max := maxUP[stat.DoctorID]
		stat.MaxUP = round1(max)
		stat.RemainingUP = round1(max - stat.TotalUP)
		if max > 0 {
			stat.LoadPercent = round1(stat.TotalUP / max * 100)
		}
		stat.TotalUP = round1(stat.TotalUP)
	}
}

func buildMessage(totalStudies, assigned, unassigned int) string {
	if totalStudies == 0 {
		return "no pending studies to distribute"
	}
	if assigned == 0 {
		return "no studies could be assigned under current doctor availability"
	}
	return fmt.Sprintf("assigned %d of %d studies (%d unassigned)", assigned, totalStudies, unassigned)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
