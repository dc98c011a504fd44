package pricing

import (
	"errors"
	"math"
	"testing"
)

func TestPayoffEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		payoff Payoff
		spot   float64
		want   float64
	}{
		{"call in the money", NewCallPayoff(100), 120, 20},
		{"call out of the money", NewCallPayoff(100), 80, 0},
		{"call at the money", NewCallPayoff(100), 100, 0},
		{"put in the money", NewPutPayoff(100), 80, 20},
		{"put out of the money", NewPutPayoff(100), 120, 0},
		{"put at zero spot", NewPutPayoff(100), 0, 100},
		{"call at zero spot", NewCallPayoff(100), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.payoff.Evaluate(tt.spot); got != tt.want {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.spot, got, tt.want)
			}
		})
	}
}

func TestPayoffMonotonicAndNonNegative(t *testing.T) {
	call := NewCallPayoff(95)
	put := NewPutPayoff(95)

	prevCall, prevPut := call.Evaluate(0), put.Evaluate(0)
	for s := 0.5; s <= 250; s += 0.5 {
		c, p := call.Evaluate(s), put.Evaluate(s)
		if c < 0 || p < 0 {
			t.Fatalf("negative payoff at S=%v: call=%v put=%v", s, c, p)
		}
		if c < prevCall {
			t.Fatalf("call payoff decreased at S=%v: %v < %v", s, c, prevCall)
		}
		if p > prevPut {
			t.Fatalf("put payoff increased at S=%v: %v > %v", s, p, prevPut)
		}
		prevCall, prevPut = c, p
	}
}

func TestNewPayoff(t *testing.T) {
	tests := []struct {
		name     string
		kind     OptionKind
		strike   float64
		wantKind OptionKind
		wantErr  bool
	}{
		{"call", Call, 100, Call, false},
		{"put", Put, 90, Put, false},
		{"zero strike", Call, 0, Call, false},
		{"negative strike", Put, -1, "", true},
		{"NaN strike", Call, math.NaN(), "", true},
		{"infinite strike", Call, math.Inf(1), "", true},
		{"unknown kind", OptionKind("STRADDLE"), 100, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPayoff(tt.kind, tt.strike)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewPayoff() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParameter) {
					t.Errorf("NewPayoff() error = %v, want ErrInvalidParameter", err)
				}
				return
			}
			if p.Kind() != tt.wantKind {
				t.Errorf("Kind() = %v, want %v", p.Kind(), tt.wantKind)
			}
			if p.Strike() != tt.strike {
				t.Errorf("Strike() = %v, want %v", p.Strike(), tt.strike)
			}
		})
	}
}

func TestParseOptionKind(t *testing.T) {
	tests := []struct {
		in      string
		want    OptionKind
		wantErr bool
	}{
		{"call", Call, false},
		{"CALL", Call, false},
		{" c ", Call, false},
		{"Put", Put, false},
		{"p", Put, false},
		{"straddle", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseOptionKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOptionKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOptionKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewContract(t *testing.T) {
	c, err := NewContract(1.5, NewPutPayoff(100))
	if err != nil {
		t.Fatalf("NewContract failed: %v", err)
	}
	if c.Maturity() != 1.5 {
		t.Errorf("Maturity() = %v, want 1.5", c.Maturity())
	}
	if c.Payoff().Strike() != 100 {
		t.Errorf("Payoff().Strike() = %v, want 100", c.Payoff().Strike())
	}

	if _, err := NewContract(0, NewCallPayoff(100)); err != nil {
		t.Errorf("zero maturity should be valid: %v", err)
	}

	var pe *ParameterError
	if _, err := NewContract(-0.1, NewCallPayoff(100)); !errors.As(err, &pe) || pe.Field != "maturity" {
		t.Errorf("negative maturity error = %v, want ParameterError on maturity", err)
	}
	if _, err := NewContract(1, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("nil payoff error = %v, want ErrInvalidParameter", err)
	}
}
