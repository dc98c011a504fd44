// Package pricing implements the option pricing engines.
//
// A Payoff maps a hypothetical underlying price to an exercise value and a
// Contract binds a payoff to a maturity in years. Two engines price contracts:
//
//   - AnalyticEngine evaluates the Black-Scholes closed form for European
//     exercise, with explicit handling for expired contracts and near-zero
//     total variance.
//   - LatticeEngine walks a recombining Cox-Ross-Rubinstein binomial tree
//     backwards, checking early exercise at every node (American style) unless
//     configured for European exercise.
//
// Engines snapshot their market parameters at construction and hold no mutable
// state, so one engine may price many contracts from many goroutines. Inputs
// outside the model's domain are rejected with ErrInvalidParameter.
package pricing

import (
	"fmt"
	"math"
	"strings"
)

// OptionKind is the direction of an option.
type OptionKind string

const (
	Call OptionKind = "CALL"
	Put  OptionKind = "PUT"
)

// ParseOptionKind accepts "call", "c", "put" or "p" in any case.
func ParseOptionKind(s string) (OptionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return "", invalid("kind", s, "must be call or put")
}

// Label returns the title-cased name used in reports ("Call" or "Put").
func (k OptionKind) Label() string {
	switch k {
	case Call:
		return "Call"
	case Put:
		return "Put"
	}
	return string(k)
}

// Payoff maps an underlying price to the value of exercising at that price.
// Implementations are immutable and safe to share.
type Payoff interface {
	Evaluate(spot float64) float64
	Strike() float64
	Kind() OptionKind
}

// CallPayoff pays max(S-K, 0).
type CallPayoff struct {
	strike float64
}

// NewCallPayoff returns a call payoff without validating the strike.
func NewCallPayoff(strike float64) CallPayoff {
	return CallPayoff{strike: strike}
}

func (c CallPayoff) Evaluate(spot float64) float64 {
	return math.Max(spot-c.strike, 0)
}

func (c CallPayoff) Strike() float64 { return c.strike }

func (c CallPayoff) Kind() OptionKind { return Call }

func (c CallPayoff) String() string {
	return fmt.Sprintf("Call(K=%g)", c.strike)
}

// PutPayoff pays max(K-S, 0).
type PutPayoff struct {
	strike float64
}

// NewPutPayoff returns a put payoff without validating the strike.
func NewPutPayoff(strike float64) PutPayoff {
	return PutPayoff{strike: strike}
}

func (p PutPayoff) Evaluate(spot float64) float64 {
	return math.Max(p.strike-spot, 0)
}

func (p PutPayoff) Strike() float64 { return p.strike }

func (p PutPayoff) Kind() OptionKind { return Put }

func (p PutPayoff) String() string {
	return fmt.Sprintf("Put(K=%g)", p.strike)
}

// NewPayoff builds the payoff for kind, rejecting negative or non-finite strikes.
func NewPayoff(kind OptionKind, strike float64) (Payoff, error) {
	if !isFinite(strike) || strike < 0 {
		return nil, invalid("strike", strike, "must be non-negative and finite")
	}
	switch kind {
	case Call:
		return NewCallPayoff(strike), nil
	case Put:
		return NewPutPayoff(strike), nil
	}
	return nil, invalid("kind", kind, "must be CALL or PUT")
}

// intrinsic is the exercise value of a kind at spot, used where the engines
// price without going through a Payoff.
func intrinsic(kind OptionKind, spot, strike float64) float64 {
	if kind == Call {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}
