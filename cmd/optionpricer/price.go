package main

import (
	"fmt"
	"os"

	"github.com/rewired-gh/optionpricer/internal/models"
	"github.com/rewired-gh/optionpricer/internal/pricing"
	"github.com/rewired-gh/optionpricer/internal/report"
	"github.com/rewired-gh/optionpricer/internal/runner"
	"github.com/spf13/cobra"
)

var priceFlags struct {
	kind     string
	spot     float64
	strike   float64
	rate     float64
	vol      float64
	maturity float64
	steps    int
	exercise string
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price a single contract on both models",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		kind, err := pricing.ParseOptionKind(priceFlags.kind)
		if err != nil {
			return err
		}
		steps := cfg.Pricing.Steps
		if cmd.Flags().Changed("steps") {
			steps = priceFlags.steps
		}
		exerciseName := cfg.Pricing.Exercise
		if cmd.Flags().Changed("exercise") {
			exerciseName = priceFlags.exercise
		}
		exercise, err := pricing.ParseExercise(exerciseName)
		if err != nil {
			return err
		}

		sc := models.Scenario{
			ID:         "ad-hoc",
			Name:       "Ad hoc " + kind.Label(),
			Kind:       kind,
			Spot:       priceFlags.spot,
			Strike:     priceFlags.strike,
			Rate:       priceFlags.rate,
			Volatility: priceFlags.vol,
			Maturity:   priceFlags.maturity,
		}

		r := runner.New(runner.Config{Steps: steps, Workers: 1, Exercise: exercise})
		euro, amer, err := r.PriceScenario("ad-hoc", sc)
		if err != nil {
			return err
		}
		if err := report.WriteCases(os.Stdout, []models.Quote{euro, amer}); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "   Lattice: %d steps, %s exercise\n", steps, exercise)
		return nil
	},
}

func init() {
	f := priceCmd.Flags()
	f.StringVar(&priceFlags.kind, "kind", "call", "Option kind: call or put")
	f.Float64Var(&priceFlags.spot, "spot", 100, "Spot price of the underlying")
	f.Float64Var(&priceFlags.strike, "strike", 100, "Strike price")
	f.Float64Var(&priceFlags.rate, "rate", 0.05, "Continuously-compounded risk-free rate")
	f.Float64Var(&priceFlags.vol, "vol", 0.2, "Annualized volatility")
	f.Float64Var(&priceFlags.maturity, "maturity", 1, "Time to maturity in years")
	f.IntVar(&priceFlags.steps, "steps", 1000, "Binomial tree steps (default from config)")
	f.StringVar(&priceFlags.exercise, "exercise", "american", "Lattice exercise style (default from config)")
}
