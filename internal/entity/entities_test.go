package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestModalitySet_Intersects(t *testing.T) {
	ct := NewModalitySet("CT")
	ctMri := NewModalitySet("CT", "MRI")
	xray := NewModalitySet("XRAY")

	assert.True(t, ct.Intersects(ctMri))
	assert.True(t, ctMri.Intersects(ct))
	assert.False(t, ct.Intersects(xray))
}

func TestModalitySet_IntersectsEmpty(t *testing.T) {
	ct := NewModalitySet("CT")
	empty := NewModalitySet()

	assert.False(t, ct.Intersects(empty))
	assert.False(t, empty.Intersects(ct))
}

func TestModalitySet_Has(t *testing.T) {
	set := NewModalitySet("CT", "MRI")
	assert.True(t, set.Has("CT"))
	assert.False(t, set.Has("XRAY"))
}

func TestModalitySet_Slice(t *testing.T) {
	set := NewModalitySet("CT")
	assert.Equal(t, []string{"CT"}, set.Slice())
}

func TestDoctor_RemainingMinutes_WithShiftEnd(t *testing.T) {
	end := time.Date(2026, 7, 29, 17, 0, 0, 0, time.UTC)
	d := &Doctor{
		TimeEnd:       &end,
		AvailableTime: time.Date(2026, 7, 29, 16, 30, 0, 0, time.UTC),
	}

	assert.InDelta(t, 60.0, d.RemainingMinutes(30*time.Minute), 0.001)
}

func TestDoctor_RemainingMinutes_NoShiftEnd(t *testing.T) {
	d := &Doctor{
		MaxMinutes:     480,
		CurrentMinutes: 120,
	}

	assert.Equal(t, 360.0, d.RemainingMinutes(30*time.Minute))
}

func TestRunID_Unique(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	assert.NotEqual(t, a, b)
}

func TestSnapshotUnavailableError(t *testing.T) {
	err := &SnapshotUnavailableError{Reason: "connection refused"}
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, ErrSnapshotUnavailable)
}

func TestInvariantViolationError(t *testing.T) {
	err := &InvariantViolationError{Invariant: "I1", Detail: "over capacity"}
	assert.Contains(t, err.Error(), "I1")
	assert.Contains(t, err.Error(), "over capacity")
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestPersistenceFailureError(t *testing.T) {
	err := &PersistenceFailureError{FailedStudyIDs: []int{1, 2}}
	assert.Contains(t, err.Error(), "2 assignment(s)")
	assert.ErrorIs(t, err, ErrPersistenceFailure)
}
