package distribution

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/raddispatch/distengine/internal/entity"
)

func TestATCIndex_ZeroSlackSaturatesDecayToOne(t *testing.T) {
	now := time.Date(2026, 7, 29, 9, 0, 0, 0, time.UTC)
	s := entity.Study{
		Weight:          100,
		DurationMinutes: 60, // p = 1h
		Deadline:        now.Add(time.Hour),
	}
	idx := ATCIndex(s, now, 2.0)
	assert.InDelta(t, 100.0, idx, 1e-9, "slack == 0 means decay term == 1")
}

func TestATCIndex_PositiveSlackDecaysBelowPeak(t *testing.T) {
	now := time.Date(2026, 7, 29, 9, 0, 0, 0, time.UTC)
	s := entity.Study{
		Weight:          100,
		DurationMinutes: 60,
		Deadline:        now.Add(10 * time.Hour),
	}
	idx := ATCIndex(s, now, 2.0)
	assert.Less(t, idx, 100.0)
	assert.Greater(t, idx, 0.0)
}

func TestATCIndex_OverdueClampsSlackToZero(t *testing.T) {
	now := time.Date(2026, 7, 29, 9, 0, 0, 0, time.UTC)
	overdue := entity.Study{Weight: 100, DurationMinutes: 60, Deadline: now.Add(-5 * time.Hour)}
	onTime := entity.Study{Weight: 100, DurationMinutes: 60, Deadline: now.Add(1 * time.Hour)}

	idxOverdue := ATCIndex(overdue, now, 2.0)
	idxOnTime := ATCIndex(onTime, now, 2.0)
	assert.True(t, math.Abs(idxOverdue-idxOnTime) < 1e-9, "both clamp to zero slack and should match")
}

func TestATCIndex_ZeroProcessingTimeClampedBeforeUse(t *testing.T) {
	now := time.Date(2026, 7, 29, 9, 0, 0, 0, time.UTC)
	s := entity.Study{Weight: 10, DurationMinutes: 0, Deadline: now.Add(time.Hour)}
	idx := ATCIndex(s, now, 2.0)
	assert.False(t, math.IsInf(idx, 0))
	assert.False(t, math.IsNaN(idx))
}

func TestLessUrgent_PriorityBreaksTieFirst(t *testing.T) {
	cito := entity.Study{ID: 1, Priority: entity.PriorityCito, CreatedAt: time.Unix(100, 0)}
	normal := entity.Study{ID: 2, Priority: entity.PriorityNormal, CreatedAt: time.Unix(0, 0)}
	assert.True(t, LessUrgent(normal, cito), "normal is less urgent than cito regardless of created_at")
}

func TestLessUrgent_CreatedAtBreaksTieWhenPrioritiesEqual(t *testing.T) {
	earlier := entity.Study{ID: 5, Priority: entity.PriorityAsap, CreatedAt: time.Unix(0, 0)}
	later := entity.Study{ID: 1, Priority: entity.PriorityAsap, CreatedAt: time.Unix(100, 0)}
	assert.True(t, LessUrgent(later, earlier), "earlier created_at is more urgent")
}

func TestLessUrgent_IDBreaksFinalTie(t *testing.T) {
	a := entity.Study{ID: 9, Priority: entity.PriorityAsap, CreatedAt: time.Unix(0, 0)}
	b := entity.Study{ID: 1, Priority: entity.PriorityAsap, CreatedAt: time.Unix(0, 0)}
	assert.True(t, LessUrgent(a, b), "lower id wins (b is more urgent than a)")
}
