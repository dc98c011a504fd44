package models

import (
	"errors"
	"math"
	"time"
)

// Model names as they appear in reports.
const (
	ModelBlackScholes = "Black-Scholes"
	ModelBinomialTree = "Binomial Tree"
)

// priceTolerance absorbs rounding in the closed form for far out-of-the-money options.
const priceTolerance = 1e-9

// Quote is the price of one scenario under one model.
type Quote struct {
	ID       string        `json:"id"`
	RunID    string        `json:"run_id"`
	Scenario Scenario      `json:"scenario"`
	Model    string        `json:"model"`
	Price    float64       `json:"price"`
	Runtime  time.Duration `json:"runtime"` // Engine construction plus pricing
	PricedAt time.Time     `json:"priced_at"`
}

// Validate checks that all quote fields are valid
func (q *Quote) Validate() error {
	if q.ID == "" {
		return errors.New("quote ID must not be empty")
	}
	if q.RunID == "" {
		return errors.New("run ID must not be empty")
	}
	if err := q.Scenario.Validate(); err != nil {
		return err
	}
	if q.Model != ModelBlackScholes && q.Model != ModelBinomialTree {
		return errors.New("model must be 'Black-Scholes' or 'Binomial Tree'")
	}
	if math.IsNaN(q.Price) || math.IsInf(q.Price, 0) {
		return errors.New("price must be finite")
	}
	if q.Price < -priceTolerance {
		return errors.New("price must not be negative")
	}
	if q.Runtime < 0 {
		return errors.New("runtime must not be negative")
	}
	if q.PricedAt.After(time.Now()) {
		return errors.New("priced at must not be in the future")
	}
	return nil
}
