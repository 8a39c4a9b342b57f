package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raddispatch/distengine/internal/api"
	"github.com/raddispatch/distengine/internal/config"
	"github.com/raddispatch/distengine/internal/logging"
)

var httpAddr string

func init() {
	serveCmd.Flags().StringVar(&httpAddr, "addr", "", "HTTP listen address, overrides config")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (spec §11.1): POST/GET /api/distribute, health, metrics",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if httpAddr != "" {
		cfg.HTTP.Addr = httpAddr
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
	router := api.NewRouter(svc, db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("starting HTTP server", "addr", cfg.HTTP.Addr, "store", storeFlag)
		errCh <- router.Start(cfg.HTTP.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	return router.Shutdown()
}
