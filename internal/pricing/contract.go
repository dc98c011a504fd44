package pricing

// Contract binds a payoff to a time to expiry in years. It is a small
// immutable value; copies share the same Payoff.
type Contract struct {
	maturity float64
	payoff   Payoff
}

// NewContract validates maturity >= 0 and a non-nil payoff.
func NewContract(maturity float64, payoff Payoff) (Contract, error) {
	c := Contract{maturity: maturity, payoff: payoff}
	if err := c.validate(); err != nil {
		return Contract{}, err
	}
	return c, nil
}

// Maturity returns the time to expiry in years.
func (c Contract) Maturity() float64 { return c.maturity }

// Payoff returns the contract's payoff.
func (c Contract) Payoff() Payoff { return c.payoff }

// validate also guards against the zero Contract reaching an engine.
func (c Contract) validate() error {
	if c.payoff == nil {
		return invalid("payoff", nil, "must not be nil")
	}
	if !isFinite(c.maturity) || c.maturity < 0 {
		return invalid("maturity", c.maturity, "must be non-negative and finite")
	}
	return nil
}
