// Package logging builds the zap logger used across the service,
// grounded on the teacher's internal/logger package: development mode
// favors readability, production favors structured JSON for log
// aggregation.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a SugaredLogger configured for env. If env is empty, it
// reads RADDISPATCH_ENV. Any value other than "development"/"dev"
// resolves to production settings, logging at that value's level when
// it names a zap level ("debug", "info", "warn", "error") and at info
// otherwise.
func New(env string) (*zap.SugaredLogger, error) {
	if env == "" {
		env = os.Getenv("RADDISPATCH_ENV")
	}

	var cfg zap.Config

	switch env {
	case "development", "dev":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}

	default:
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		if lvl, err := zapcore.ParseLevel(env); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		cfg.EncoderConfig.CallerKey = "caller"
		cfg.EncoderConfig.LevelKey = "level"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger.Sugar(), nil
}

// LogRun logs the outcome of a distribution run with the fields an
// operator needs to spot a degraded run at a glance.
func LogRun(logger *zap.SugaredLogger, triggeredBy string, assigned, unassigned int, degraded bool) {
	logger.Infow("distribution run completed",
		"triggered_by", triggeredBy,
		"assigned", assigned,
		"unassigned", unassigned,
		"degraded", degraded,
	)
}
