// Package services contains the business logic behind the FaultGate API
// surface. Services return typed faults; the transport layer hands them to
// the fault handler for mapping.
package services

import (
	"context"
	"log/slog"

	"faultgate/internal/faults"
)

// CalcService performs the arithmetic operations exposed by the calc API
type CalcService struct {
	logger *slog.Logger
}

// NewCalcService creates a new calc service
func NewCalcService(logger *slog.Logger) *CalcService {
	return &CalcService{
		logger: logger.With(slog.String("component", "calc_service")),
	}
}

// Divide returns a/b, raising ErrDivideByZero for b == 0.
func (s *CalcService) Divide(ctx context.Context, a, b int) (int, error) {
	if b == 0 {
		s.logger.WarnContext(ctx, "division by zero attempted",
			slog.Int("numerator", a))
		return 0, faults.ErrDivideByZero
	}
	return a / b, nil
}
