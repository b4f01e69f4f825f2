package health

import (
	"context"
	"fmt"
)

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Report holds one pass over all checkers.
type Report struct {
	// Checks maps a dependency name to "ok" or its error text.
	Checks map[string]string
	// Err is the first failure in checker order, nil when everything is up.
	Err error
}

func (r Report) Ready() bool { return r.Err == nil }

// ReadinessUseCase describes readiness verification.
type ReadinessUseCase interface {
	Check(ctx context.Context) Report
}

type service struct {
	checkers []Checker
}

// NewService aggregates dependency checkers.
func NewService(checkers ...Checker) ReadinessUseCase {
	return &service{checkers: checkers}
}

// Check runs every checker exactly once.
func (s *service) Check(ctx context.Context) Report {
	rep := Report{Checks: make(map[string]string, len(s.checkers))}
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			rep.Checks[ch.Name()] = err.Error()
			if rep.Err == nil {
				rep.Err = fmt.Errorf("%s: %w", ch.Name(), err)
			}
			continue
		}
		rep.Checks[ch.Name()] = "ok"
	}
	return rep
}
