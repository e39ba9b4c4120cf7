package pipeline

import (
	"context"
	"log/slog"
)

// PhoneDirectory answers whether a phone number is already registered in
// the identity directory. Satisfied by directory.Client.
type PhoneDirectory interface {
	VerifyPhone(ctx context.Context, phone string) (bool, error)
}

// PhoneUniqueStage confirms the phone number is not already registered,
// via one remote lookup. It observes directory state and mutates nothing.
type PhoneUniqueStage struct {
	directory PhoneDirectory
	logger    *slog.Logger
}

// NewPhoneUniqueStage builds the stage around the directory lookup.
func NewPhoneUniqueStage(directory PhoneDirectory, logger *slog.Logger) *PhoneUniqueStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &PhoneUniqueStage{directory: directory, logger: logger}
}

// Name returns the stage identifier.
func (s *PhoneUniqueStage) Name() string { return "phone-unique" }

// Run rejects with KindBadRequest when the directory reports the phone as
// existing. Any transport failure collapses to the same kind with the
// uniform syncing message; the underlying error is logged, not surfaced.
func (s *PhoneUniqueStage) Run(ctx context.Context, req *Request) Outcome {
	exists, err := s.directory.VerifyPhone(ctx, req.Body.Phone)
	if err != nil {
		s.logger.Error("phone uniqueness lookup failed",
			slog.String("stage", s.Name()),
			slog.String("error", err.Error()),
		)
		return Reject(KindBadRequest, msgSyncFailed)
	}
	if exists {
		return Reject(KindBadRequest, msgPhoneExists)
	}
	return Continue()
}

var _ Stage = (*PhoneUniqueStage)(nil)
