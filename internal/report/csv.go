// Package report renders pricing results: a CSV file with one row per model per
// scenario, a per-case console block, and tables for comparisons, run
// summaries and convergence sweeps.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rewired-gh/optionpricer/internal/models"
	"github.com/shopspring/decimal"
)

// Decimal places kept for prices and runtimes in written output.
const (
	pricePlaces   = 6
	runtimePlaces = 4
)

// Row is one CSV line
type Row struct {
	Spot       string `csv:"Spot"`
	Strike     string `csv:"Strike"`
	Rate       string `csv:"Rate"`
	Volatility string `csv:"Volatility"`
	Maturity   string `csv:"Maturity"`
	Type       string `csv:"Type"`
	Model      string `csv:"Model"`
	Price      string `csv:"Price"`
	RuntimeMs  string `csv:"Runtime_ms"`
}

// Rows converts quotes to CSV rows, preserving order
func Rows(quotes []models.Quote) []Row {
	rows := make([]Row, 0, len(quotes))
	for _, q := range quotes {
		sc := q.Scenario
		rows = append(rows, Row{
			Spot:       formatNumber(sc.Spot),
			Strike:     formatNumber(sc.Strike),
			Rate:       formatNumber(sc.Rate),
			Volatility: formatNumber(sc.Volatility),
			Maturity:   formatNumber(sc.Maturity),
			Type:       sc.Kind.Label(),
			Model:      q.Model,
			Price:      FormatPrice(q.Price),
			RuntimeMs:  FormatMillis(q.Runtime),
		})
	}
	return rows
}

// WriteCSVTo writes quotes as CSV with a header line
func WriteCSVTo(w io.Writer, quotes []models.Quote) error {
	rows := Rows(quotes)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to marshal csv: %w", err)
	}
	return nil
}

// WriteCSV writes quotes to path, creating parent directories as needed.
// The file is written to a temporary path first and renamed into place.
func WriteCSV(path string, quotes []models.Quote) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := WriteCSVTo(file, quotes); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// FormatPrice rounds a price for display
func FormatPrice(p float64) string {
	return decimal.NewFromFloat(p).Round(pricePlaces).String()
}

// FormatMillis renders a duration in milliseconds
func FormatMillis(d time.Duration) string {
	ms := decimal.NewFromInt(d.Nanoseconds()).Shift(-6)
	return ms.Round(runtimePlaces).String()
}

func formatNumber(x float64) string {
	return decimal.NewFromFloat(x).String()
}
