package main

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/raddispatch/distengine/internal/config"
	"github.com/raddispatch/distengine/internal/job"
	"github.com/raddispatch/distengine/internal/logging"
)

var (
	workerConcurrency int
	scheduleCron      string
)

func init() {
	workerCmd.Flags().IntVar(&workerConcurrency, "concurrency", 5, "number of concurrent task processors")
	workerCmd.Flags().StringVar(&scheduleCron, "cron", "", "cron expression for the periodic distribution:run task (empty disables it)")
	rootCmd.AddCommand(workerCmd)
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the Asynq worker that executes distribution jobs (spec §11.2)",
	RunE:  runWorker,
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := buildService(cfg, db)
	handlers := job.NewJobHandlers(svc, logger)

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	if scheduleCron != "" {
		scheduler := asynq.NewScheduler(asynq.RedisClientOpt{Addr: cfg.Redis.Addr}, nil)
		if _, err := scheduler.Register(scheduleCron, asynq.NewTask(job.TypeDistributionRun, nil)); err != nil {
			return fmt.Errorf("registering periodic distribution run: %w", err)
		}
		go func() {
			if err := scheduler.Run(); err != nil {
				logger.Errorw("scheduler stopped", "error", err)
			}
		}()
		logger.Infow("periodic distribution run scheduled", "cron", scheduleCron)
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Redis.Addr},
		asynq.Config{Concurrency: workerConcurrency},
	)

	logger.Infow("starting asynq worker", "concurrency", workerConcurrency, "redis_addr", cfg.Redis.Addr)
	return srv.Run(mux)
}
