package pipeline

import (
	"context"
	"log/slog"
)

// ObserveStage logs that a request passed through and always continues.
// Sign-in has no validation of its own; this keeps the phase observable
// for diagnostics without being part of the functional contract.
type ObserveStage struct {
	name   string
	logger *slog.Logger
}

// NewObserveStage returns an observability-only stage with the given name.
func NewObserveStage(name string, logger *slog.Logger) *ObserveStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ObserveStage{name: name, logger: logger}
}

// Name returns the stage identifier.
func (s *ObserveStage) Name() string { return s.name }

// Run logs the request and continues.
func (s *ObserveStage) Run(_ context.Context, req *Request) Outcome {
	s.logger.Debug("observed request",
		slog.String("stage", s.name),
		slog.String("path", req.Path),
		slog.String("method", req.Method),
		slog.String("email", req.Body.Email),
	)
	return Continue()
}

var _ Stage = (*ObserveStage)(nil)
