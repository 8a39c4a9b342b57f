// Package config loads the distribution engine's tunables: the
// Deadline/Weight Table, the UP-to-minutes conversion, the ATC decay
// parameter, overtime slack, and the default shift length (spec §4.2,
// §6). Defaults match the spec exactly; an operator may override via an
// optional YAML file and then environment variables, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/raddispatch/distengine/internal/entity"
)

// SchedulingConfig holds the knobs named in spec §4.2 and §6.
type SchedulingConfig struct {
	DeadlineHours map[entity.Priority]float64
	Weights       map[entity.Priority]float64
	MinutesPerUP  float64
	ATCKParam     float64
	OvertimeSlack time.Duration
	DefaultShift  time.Duration
}

// DatabaseConfig is the Postgres connection setting.
type DatabaseConfig struct {
	DSN string
}

// SQLiteConfig is the embedded-store connection setting.
type SQLiteConfig struct {
	Path string
}

// RedisConfig is the asynq broker connection setting.
type RedisConfig struct {
	Addr string
}

// HTTPConfig is the echo listener setting.
type HTTPConfig struct {
	Addr string
}

// Config is the fully resolved runtime configuration.
type Config struct {
	Scheduling SchedulingConfig
	Database   DatabaseConfig
	SQLite     SQLiteConfig
	Redis      RedisConfig
	HTTP       HTTPConfig
	LogLevel   string
}

func defaultConfig() Config {
	return Config{
		Scheduling: SchedulingConfig{
			DeadlineHours: map[entity.Priority]float64{
				entity.PriorityCito:   2,
				entity.PriorityAsap:   24,
				entity.PriorityNormal: 72,
			},
			Weights: map[entity.Priority]float64{
				entity.PriorityCito:   100.0,
				entity.PriorityAsap:   10.0,
				entity.PriorityNormal: 1.0,
			},
			MinutesPerUP:  15,
			ATCKParam:     2.0,
			OvertimeSlack: 30 * time.Minute,
			DefaultShift:  480 * time.Minute,
		},
		Database: DatabaseConfig{DSN: "postgres://localhost/raddispatch?sslmode=disable"},
		SQLite:   SQLiteConfig{Path: "raddispatch.db"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		HTTP:     HTTPConfig{Addr: ":8080"},
		LogLevel: "info",
	}
}

// fileConfig mirrors Config but with pointer fields so a partially
// specified YAML document only overrides what it names; everything else
// keeps the running default.
type fileConfig struct {
	Scheduling *schedulingFileConfig `yaml:"scheduling"`
	Database   *databaseFileConfig   `yaml:"database"`
	SQLite     *sqliteFileConfig     `yaml:"sqlite"`
	Redis      *redisFileConfig      `yaml:"redis"`
	HTTP       *httpFileConfig       `yaml:"http"`
	LogLevel   *string               `yaml:"logLevel"`
}

type schedulingFileConfig struct {
	DeadlineHoursCito   *float64       `yaml:"deadlineHoursCito"`
	DeadlineHoursAsap   *float64       `yaml:"deadlineHoursAsap"`
	DeadlineHoursNormal *float64       `yaml:"deadlineHoursNormal"`
	WeightCito          *float64       `yaml:"weightCito"`
	WeightAsap          *float64       `yaml:"weightAsap"`
	WeightNormal        *float64       `yaml:"weightNormal"`
	MinutesPerUP        *float64       `yaml:"minutesPerUp"`
	ATCKParam           *float64       `yaml:"atcKParam"`
	OvertimeSlack       *time.Duration `yaml:"overtimeSlack"`
	DefaultShift        *time.Duration `yaml:"defaultShift"`
}

type databaseFileConfig struct {
	DSN *string `yaml:"dsn"`
}

type sqliteFileConfig struct {
	Path *string `yaml:"path"`
}

type redisFileConfig struct {
	Addr *string `yaml:"addr"`
}

type httpFileConfig struct {
	Addr *string `yaml:"addr"`
}

const (
	envMinutesPerUP  = "RADDISPATCH_MINUTES_PER_UP"
	envATCKParam     = "RADDISPATCH_ATC_K_PARAM"
	envOvertimeSlack = "RADDISPATCH_OVERTIME_SLACK"
	envDefaultShift  = "RADDISPATCH_DEFAULT_SHIFT"
	envDatabaseDSN   = "RADDISPATCH_DATABASE_DSN"
	envSQLitePath    = "RADDISPATCH_SQLITE_PATH"
	envRedisAddr     = "RADDISPATCH_REDIS_ADDR"
	envHTTPAddr      = "RADDISPATCH_HTTP_ADDR"
	envLogLevel      = "RADDISPATCH_LOG_LEVEL"
)

// Load resolves a Config starting from the documented defaults,
// overlaying an optional YAML file at path, then environment variables.
// A missing file at path is not an error: Load falls back to defaults
// plus env overrides, matching the "no file, still runnable" posture of
// the config loader this is grounded on.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	trimmed := strings.TrimSpace(path)
	if trimmed != "" {
		data, err := os.ReadFile(trimmed)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config file %q: %w", trimmed, err)
			}
		} else {
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return Config{}, fmt.Errorf("decode config file %q: %w", trimmed, err)
			}
			applyFileConfig(&cfg, fc)
		}
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Scheduling != nil {
		s := fc.Scheduling
		assignFloat(cfg.Scheduling.DeadlineHours, entity.PriorityCito, s.DeadlineHoursCito)
		assignFloat(cfg.Scheduling.DeadlineHours, entity.PriorityAsap, s.DeadlineHoursAsap)
		assignFloat(cfg.Scheduling.DeadlineHours, entity.PriorityNormal, s.DeadlineHoursNormal)
		assignFloat(cfg.Scheduling.Weights, entity.PriorityCito, s.WeightCito)
		assignFloat(cfg.Scheduling.Weights, entity.PriorityAsap, s.WeightAsap)
		assignFloat(cfg.Scheduling.Weights, entity.PriorityNormal, s.WeightNormal)
		assignFloatPtr(&cfg.Scheduling.MinutesPerUP, s.MinutesPerUP)
		assignFloatPtr(&cfg.Scheduling.ATCKParam, s.ATCKParam)
		assignDurationPtr(&cfg.Scheduling.OvertimeSlack, s.OvertimeSlack)
		assignDurationPtr(&cfg.Scheduling.DefaultShift, s.DefaultShift)
	}
	if fc.Database != nil {
		assignStringPtr(&cfg.Database.DSN, fc.Database.DSN)
	}
	if fc.SQLite != nil {
		assignStringPtr(&cfg.SQLite.Path, fc.SQLite.Path)
	}
	if fc.Redis != nil {
		assignStringPtr(&cfg.Redis.Addr, fc.Redis.Addr)
	}
	if fc.HTTP != nil {
		assignStringPtr(&cfg.HTTP.Addr, fc.HTTP.Addr)
	}
	assignStringPtr(&cfg.LogLevel, fc.LogLevel)
}

func applyEnvOverrides(cfg *Config) {
	cfg.Scheduling.MinutesPerUP = envFloat(envMinutesPerUP, cfg.Scheduling.MinutesPerUP)
	cfg.Scheduling.ATCKParam = envFloat(envATCKParam, cfg.Scheduling.ATCKParam)
	cfg.Scheduling.OvertimeSlack = envDuration(envOvertimeSlack, cfg.Scheduling.OvertimeSlack)
	cfg.Scheduling.DefaultShift = envDuration(envDefaultShift, cfg.Scheduling.DefaultShift)
	cfg.Database.DSN = envString(envDatabaseDSN, cfg.Database.DSN)
	cfg.SQLite.Path = envString(envSQLitePath, cfg.SQLite.Path)
	cfg.Redis.Addr = envString(envRedisAddr, cfg.Redis.Addr)
	cfg.HTTP.Addr = envString(envHTTPAddr, cfg.HTTP.Addr)
	cfg.LogLevel = envString(envLogLevel, cfg.LogLevel)
}

func assignFloat(dst map[entity.Priority]float64, key entity.Priority, value *float64) {
	if value != nil {
		dst[key] = *value
	}
}

func assignFloatPtr(dst *float64, value *float64) {
	if value != nil {
		*dst = *value
	}
}

func assignDurationPtr(dst *time.Duration, value *time.Duration) {
	if value != nil {
		*dst = *value
	}
}

func assignStringPtr(dst *string, value *string) {
	if value != nil {
		trimmed := strings.TrimSpace(*value)
		if trimmed != "" {
			*dst = trimmed
		}
	}
}

var lookupEnv = os.LookupEnv //nolint:gochecknoglobals // overridden in tests

func envFloat(key string, fallback float64) float64 {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}
	trimmed := strings.TrimSpace(value)
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}
	trimmed := strings.TrimSpace(value)
	parsed, err := time.ParseDuration(trimmed)
	if err != nil {
		return fallback
	}
	return parsed
}

func envString(key, fallback string) string {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
