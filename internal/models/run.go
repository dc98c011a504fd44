package models

import (
	"errors"
	"time"
)

// Run is one execution of the scenario battery.
type Run struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Steps     int           `json:"steps"`
	Exercise  string        `json:"exercise"`
	Scenarios int           `json:"scenarios"`
	Duration  time.Duration `json:"duration"`
}

// Validate checks that all run fields are valid
func (r *Run) Validate() error {
	if r.ID == "" {
		return errors.New("run ID must not be empty")
	}
	if r.StartedAt.IsZero() {
		return errors.New("started at must be set")
	}
	if r.StartedAt.After(time.Now()) {
		return errors.New("started at must not be in the future")
	}
	if r.Steps < 1 {
		return errors.New("steps must be at least 1")
	}
	if r.Exercise != "american" && r.Exercise != "european" {
		return errors.New("exercise must be 'american' or 'european'")
	}
	if r.Scenarios < 0 {
		return errors.New("scenarios must not be negative")
	}
	if r.Duration < 0 {
		return errors.New("duration must not be negative")
	}
	return nil
}
