package main

import (
	"fmt"
	"os"

	"github.com/rewired-gh/optionpricer/internal/compare"
	"github.com/rewired-gh/optionpricer/internal/pricing"
	"github.com/rewired-gh/optionpricer/internal/report"
	"github.com/rewired-gh/optionpricer/internal/scenario"
	"github.com/spf13/cobra"
)

var convergeFlags struct {
	scenario string
	steps    []int
	exercise string
}

var convergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Sweep binomial tree steps for one scenario against Black-Scholes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		scenarios, err := scenario.FromConfig(cfg.Scenarios)
		if err != nil {
			return fmt.Errorf("failed to build scenarios: %w", err)
		}
		exercise, err := pricing.ParseExercise(convergeFlags.exercise)
		if err != nil {
			return err
		}

		for _, sc := range scenarios {
			if sc.ID != convergeFlags.scenario {
				continue
			}
			points, err := compare.Sweep(sc, convergeFlags.steps, exercise)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s (%s exercise)\n", sc.Name, exercise)
			report.RenderConvergence(os.Stdout, points)
			if !compare.NonIncreasing(points) {
				fmt.Fprintln(os.Stdout, "Note: error is not monotone over this ladder")
			}
			return nil
		}
		return fmt.Errorf("unknown scenario %q", convergeFlags.scenario)
	},
}

func init() {
	f := convergeCmd.Flags()
	f.StringVar(&convergeFlags.scenario, "scenario", "atm-call", "Scenario ID to sweep")
	f.IntSliceVar(&convergeFlags.steps, "steps", compare.DefaultSweepSteps, "Lattice step counts")
	f.StringVar(&convergeFlags.exercise, "exercise", "european", "Lattice exercise style")
}
