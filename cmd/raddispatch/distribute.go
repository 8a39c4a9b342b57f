package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raddispatch/distengine/internal/config"
)

func init() {
	rootCmd.AddCommand(distributeCmd)
	rootCmd.AddCommand(previewCmd)
}

var distributeCmd = &cobra.Command{
	Use:   "distribute",
	Short: "Run the Assignment Loop once against the live snapshot and print the Result Envelope",
	RunE:  runDistribute,
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Report the size of the pending snapshot without running the Assignment Loop",
	RunE:  runPreview,
}

func runDistribute(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := buildService(cfg, db)
	envelope, err := svc.Distribute(context.Background(), "cli")
	if err != nil {
		return fmt.Errorf("distribution run failed: %w", err)
	}

	return printJSON(envelope)
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := buildService(cfg, db)
	preview, err := svc.Preview(context.Background())
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}

	return printJSON(preview)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
