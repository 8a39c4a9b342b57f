package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raddispatch/distengine/internal/entity"
)

func TestLoad_DefaultsMatchSpec(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.Scheduling.DeadlineHours[entity.PriorityCito])
	assert.Equal(t, 24.0, cfg.Scheduling.DeadlineHours[entity.PriorityAsap])
	assert.Equal(t, 72.0, cfg.Scheduling.DeadlineHours[entity.PriorityNormal])
	assert.Equal(t, 100.0, cfg.Scheduling.Weights[entity.PriorityCito])
	assert.Equal(t, 10.0, cfg.Scheduling.Weights[entity.PriorityAsap])
	assert.Equal(t, 1.0, cfg.Scheduling.Weights[entity.PriorityNormal])
	assert.Equal(t, 15.0, cfg.Scheduling.MinutesPerUP)
	assert.Equal(t, 2.0, cfg.Scheduling.ATCKParam)
	assert.Equal(t, 30*time.Minute, cfg.Scheduling.OvertimeSlack)
	assert.Equal(t, 480*time.Minute, cfg.Scheduling.DefaultShift)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/path/raddispatch.yaml")
	require.NoError(t, err)
	assert.Equal(t, 15.0, cfg.Scheduling.MinutesPerUP)
}

func TestLoad_FileOverridesScalar(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/raddispatch.yaml"
	require.NoError(t, os.WriteFile(path, []byte("scheduling:\n  atcKParam: 3.5\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3.5, cfg.Scheduling.ATCKParam)
	assert.Equal(t, 2.0, cfg.Scheduling.DeadlineHours[entity.PriorityCito], "unset fields keep defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	orig := lookupEnv
	defer func() { lookupEnv = orig }()
	lookupEnv = func(key string) (string, bool) {
		if key == envATCKParam {
			return "9", true
		}
		return "", false
	}

	dir := t.TempDir()
	path := dir + "/raddispatch.yaml"
	require.NoError(t, os.WriteFile(path, []byte("scheduling:\n  atcKParam: 3.5\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9.0, cfg.Scheduling.ATCKParam, "env takes precedence over file")
}
