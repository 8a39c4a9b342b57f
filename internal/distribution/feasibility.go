package distribution

import (
	"time"

	"github.com/raddispatch/distengine/internal/entity"
)

// Feasible evaluates the §4.4 predicate for assigning study s to doctor
// d at d's current mutable state. It does not mutate either argument.
func Feasible(s entity.Study, d *entity.Doctor, overtimeSlack time.Duration) bool {
	if !modalityCompatible(s.ModalitySet, d.ModalitySet) {
		return false
	}
	if d.CurrentLoad+s.UPValue > d.MaxUPPerDay {
		return false
	}
	if d.AvailableTime.After(s.Deadline) {
		return false
	}
	if d.TimeEnd != nil {
		completion := d.AvailableTime.Add(minutesToDuration(s.DurationMinutes))
		if completion.After(d.TimeEnd.Add(overtimeSlack)) {
			return false
		}
	}
	return true
}

// modalityCompatible implements §4.4 rule 1: an empty set on either side
// is a wildcard.
func modalityCompatible(studySet, doctorSet entity.ModalitySet) bool {
	if len(studySet) == 0 || len(doctorSet) == 0 {
		return true
	}
	return studySet.Intersects(doctorSet)
}

// minutesToDuration converts a fractional minute count to a
// time.Duration without first truncating to whole minutes — a plain
// time.Duration(minutes)*time.Minute conversion discards any fractional
// part before the multiplication, which loses precision for any
// up_value that isn't a whole number of MINUTES_PER_UP-sized chunks.
func minutesToDuration(minutes float64) time.Duration {
	return time.Duration(minutes * float64(time.Minute))
}

// DoctorExhausted reports whether d can no longer receive any study for
// the remainder of the run: capacity is full, or the shift budget is
// gone. Per §4.4, either condition makes the doctor globally
// unavailable, not just infeasible for the current candidate.
func DoctorExhausted(d *entity.Doctor, overtimeSlack time.Duration) bool {
	if d.CurrentLoad >= d.MaxUPPerDay {
		return true
	}
	return d.RemainingMinutes(overtimeSlack) <= 0
}
