package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rewired-gh/optionpricer/internal/config"
	"github.com/rewired-gh/optionpricer/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "optionpricer",
	Short: "Price European and American options with Black-Scholes and a binomial tree",
	Long: `optionpricer prices a battery of option scenarios twice: with the Black-Scholes
closed form (European exercise) and on a Cox-Ross-Rubinstein binomial tree
(American exercise by default), and reports the early-exercise premium.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Path to configuration file (empty for defaults)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Optional .env file loaded before configuration")

	rootCmd.AddCommand(runCmd, priceCmd, convergeCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the env file and configuration, then initializes logging
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, err
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	path := configPath
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
			// The default config file is optional
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if path != "" {
		logger.Debug("Configuration loaded from %s", path)
	} else {
		logger.Debug("No configuration file, using defaults")
	}
	return cfg, nil
}
