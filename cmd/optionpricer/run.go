package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rewired-gh/optionpricer/internal/compare"
	"github.com/rewired-gh/optionpricer/internal/config"
	"github.com/rewired-gh/optionpricer/internal/logger"
	"github.com/rewired-gh/optionpricer/internal/pricing"
	"github.com/rewired-gh/optionpricer/internal/report"
	"github.com/rewired-gh/optionpricer/internal/runner"
	"github.com/rewired-gh/optionpricer/internal/scenario"
	"github.com/rewired-gh/optionpricer/internal/storage"
	"github.com/rewired-gh/optionpricer/internal/telegram"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Price the scenario battery on both models",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runBattery(cmd.Context(), cfg)
	},
}

func runBattery(ctx context.Context, cfg *config.Config) error {
	scenarios, err := scenario.FromConfig(cfg.Scenarios)
	if err != nil {
		return fmt.Errorf("failed to build scenarios: %w", err)
	}
	exercise, err := pricing.ParseExercise(cfg.Pricing.Exercise)
	if err != nil {
		return err
	}

	r := runner.New(runner.Config{
		Steps:    cfg.Pricing.Steps,
		Workers:  cfg.Pricing.Workers,
		Exercise: exercise,
	})
	result, err := r.Run(ctx, scenarios)
	if err != nil {
		return err
	}

	comparisons, compareErrors := compare.New(cfg.Pricing.EarlyExerciseTolerance).Compare(result.Quotes)
	for _, e := range compareErrors {
		logger.Warn("%v", e)
	}
	summary, err := compare.Summarize(comparisons)
	if err != nil {
		return err
	}
	top := compare.TopEarlyExercise(comparisons, cfg.Report.TopK)

	out := os.Stdout
	if err := report.WriteCases(out, result.Quotes); err != nil {
		return err
	}
	fmt.Fprintln(out)
	report.RenderComparisons(out, comparisons)
	report.RenderSummary(out, summary)

	if cfg.Report.CSVPath != "" {
		if err := report.WriteCSV(cfg.Report.CSVPath, result.Quotes); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nResults written to %s\n", cfg.Report.CSVPath)
	}

	if cfg.Storage.Enabled {
		if err := storeRun(ctx, cfg, result); err != nil {
			logger.Error("Failed to store run: %v", err)
		}
	}

	if cfg.Telegram.Enabled {
		client, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Error("Failed to initialize Telegram client: %v", err)
		} else if err := client.Send(ctx, result.Run, summary, top); err != nil {
			logger.Error("Failed to send Telegram notification: %v", err)
		} else {
			logger.Info("Sent run summary to Telegram")
		}
	}

	if len(result.Errors) > 0 {
		ids := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			ids[i] = e.ScenarioID
		}
		return fmt.Errorf("%d scenarios failed to price: %s", len(result.Errors), strings.Join(ids, ", "))
	}
	return nil
}

func storeRun(ctx context.Context, cfg *config.Config, result *runner.Result) error {
	store, err := storage.New(cfg.Storage.DBPath, cfg.Storage.MaxRuns)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	if err := store.SaveRun(ctx, &result.Run, result.Quotes); err != nil {
		return err
	}
	removed, err := store.RotateRuns(ctx)
	if err != nil {
		return err
	}
	logger.Info("Stored run %s in %s (rotated %d old runs)", result.Run.ID, store.Path(), removed)
	return nil
}
