package distribution

import (
	"math"
	"time"

	"github.com/raddispatch/distengine/internal/entity"
)

// minProcessingHours is the floor applied to a study's processing time
// before it is used as a divisor in the ATC index (spec §4.5: "when p ≤
// 0 it is clamped to 0.25 hours before use").
const minProcessingHours = 0.25

// ATCIndex computes the Apparent Tardiness Cost priority index for
// scheduling study s on doctor d's queue at instant t = d.AvailableTime
// (spec §4.5):
//
//	p     = max(s.DurationMinutes/60, minProcessingHours)
//	slack = hoursBetween(t, s.Deadline) - p
//	index = (s.Weight / p) * exp(-max(0, slack) / (k * p))
//
// The decay term saturates to 1 as slack approaches zero (the study is
// nearly due the moment it would finish) and shrinks toward 0 as slack
// grows, so among studies of equal weight the nearer-due one scores
// higher; among equally urgent studies the heavier-weighted one scores
// higher.
func ATCIndex(s entity.Study, t time.Time, kParam float64) float64 {
	p := s.DurationMinutes / 60
	if p <= 0 {
		p = minProcessingHours
	}

	slack := s.Deadline.Sub(t).Hours() - p
	if slack < 0 {
		slack = 0
	}

	return (s.Weight / p) * math.Exp(-slack/(kParam*p))
}

// priorityRank orders priorities for the §4.5 tie-break: higher priority
// rank first. Lower numeric rank wins.
var priorityRank = map[entity.Priority]int{
	entity.PriorityCito:   0,
	entity.PriorityAsap:   1,
	entity.PriorityNormal: 2,
}

// LessUrgent reports whether a is strictly less preferable than b under
// the §4.5 tie-break order (priority rank, then earlier CreatedAt, then
// lower id — each applied only once the preceding key is exactly equal).
// It is used only when two candidates' ATC indices are equal to machine
// epsilon; the caller is responsible for that comparison.
func LessUrgent(a, b entity.Study) bool {
	ra, rb := priorityRank[a.Priority], priorityRank[b.Priority]
	if ra != rb {
		return ra > rb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

const indexEpsilon = 1e-9

// sameIndex reports whether two ATC indices are equal to machine
// epsilon, the threshold at which §4.5's tie-break applies.
func sameIndex(a, b float64) bool {
	return math.Abs(a-b) <= indexEpsilon
}
