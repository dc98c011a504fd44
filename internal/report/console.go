package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rewired-gh/optionpricer/internal/compare"
	"github.com/rewired-gh/optionpricer/internal/models"
	"github.com/shopspring/decimal"
)

// WriteCases prints one block per scenario with both model prices, their
// runtimes and the premium. Scenarios missing a model are skipped.
func WriteCases(w io.Writer, quotes []models.Quote) error {
	type pair struct{ euro, amer *models.Quote }
	pairs := make(map[string]*pair)
	var order []string
	for i := range quotes {
		q := &quotes[i]
		p, ok := pairs[q.Scenario.ID]
		if !ok {
			p = &pair{}
			pairs[q.Scenario.ID] = p
			order = append(order, q.Scenario.ID)
		}
		switch q.Model {
		case models.ModelBlackScholes:
			p.euro = q
		case models.ModelBinomialTree:
			p.amer = q
		}
	}

	for _, id := range order {
		p := pairs[id]
		if p.euro == nil || p.amer == nil {
			continue
		}
		sc := p.euro.Scenario
		_, err := fmt.Fprintf(w, "\nCase: Spot=%s Strike=%s Rate=%s Vol=%s T=%s (%s)\n"+
			"   Black-Scholes (Euro) : %s | %s ms\n"+
			"   Binomial Tree (Amer) : %s | %s ms\n"+
			"   Premium Difference   : %s\n",
			formatNumber(sc.Spot), formatNumber(sc.Strike), formatNumber(sc.Rate),
			formatNumber(sc.Volatility), formatNumber(sc.Maturity), sc.Kind.Label(),
			FormatPrice(p.euro.Price), FormatMillis(p.euro.Runtime),
			FormatPrice(p.amer.Price), FormatMillis(p.amer.Runtime),
			FormatPrice(p.amer.Price-p.euro.Price))
		if err != nil {
			return fmt.Errorf("failed to write case %s: %w", id, err)
		}
	}
	return nil
}

// RenderComparisons prints comparisons as a table
func RenderComparisons(w io.Writer, comparisons []models.Comparison) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Scenario", "Type", "Black-Scholes", "Binomial Tree", "Premium", "Early Exercise"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, c := range comparisons {
		early := ""
		if c.EarlyExercise {
			early = "yes"
		}
		table.Append([]string{
			c.Name,
			c.Kind.Label(),
			FormatPrice(c.European),
			FormatPrice(c.American),
			FormatPrice(c.Premium),
			early,
		})
	}
	table.Render()
}

// RenderSummary prints run statistics
func RenderSummary(w io.Writer, s compare.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.AppendBulk([][]string{
		{"Scenarios", strconv.Itoa(s.Scenarios)},
		{"Early exercise", strconv.Itoa(s.EarlyExercise)},
		{"Mean premium", FormatPrice(s.MeanPremium)},
		{"Median premium", FormatPrice(s.MedianPremium)},
		{"Max premium", FormatPrice(s.MaxPremium)},
		{"Premium std dev", FormatPrice(s.StdDevPremium)},
		{"Mean Black-Scholes runtime (ms)", FormatMillis(s.MeanEuropeanRuntime)},
		{"Mean Binomial Tree runtime (ms)", FormatMillis(s.MeanAmericanRuntime)},
	})
	table.Render()
}

// RenderConvergence prints a lattice step sweep
func RenderConvergence(w io.Writer, points []compare.ConvergencePoint) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Steps", "Binomial Tree", "Black-Scholes", "Difference", "Abs Error", "Runtime (ms)"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, p := range points {
		table.Append([]string{
			strconv.Itoa(p.Steps),
			FormatPrice(p.Lattice),
			FormatPrice(p.Analytic),
			FormatPrice(p.Difference),
			decimal.NewFromFloat(p.AbsError).Round(8).String(),
			FormatMillis(p.Runtime),
		})
	}
	table.Render()
}
