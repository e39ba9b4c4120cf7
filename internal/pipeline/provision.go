package pipeline

import (
	"context"
	"log/slog"

	"github.com/andysenclave/kriyo-auth-gateway/internal/directory"
)

// UserProvisioner creates the canonical user record in the identity
// directory. Satisfied by directory.Client.
type UserProvisioner interface {
	CreateUser(ctx context.Context, user directory.CanonicalUser) error
}

// ProvisionStage creates the canonical user record after the credential
// engine has minted a session. Delivery is at-most-once per invocation:
// no retries happen at this layer.
type ProvisionStage struct {
	directory UserProvisioner
	logger    *slog.Logger
}

// NewProvisionStage builds the stage around the directory create call.
func NewProvisionStage(directory UserProvisioner, logger *slog.Logger) *ProvisionStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProvisionStage{directory: directory, logger: logger}
}

// Name returns the stage identifier.
func (s *ProvisionStage) Name() string { return "provision-user" }

// Run submits exactly one creation request carrying the session's user id.
// When no session is present the sign-up did not actually succeed upstream
// and there is nothing to provision, so the stage continues. A failed call
// rejects the whole after phase; the session created by the credential
// engine is not rolled back here.
func (s *ProvisionStage) Run(ctx context.Context, req *Request) Outcome {
	if req.Session == nil || req.Session.UserID == "" {
		return Continue()
	}

	user := directory.CanonicalUser{
		Name:         req.Body.Name,
		Email:        req.Body.Email,
		Phone:        req.Body.Phone,
		Password:     req.Body.Password,
		BetterAuthID: req.Session.UserID,
	}

	if err := s.directory.CreateUser(ctx, user); err != nil {
		s.logger.Error("canonical user provisioning failed",
			slog.String("stage", s.Name()),
			slog.String("user_id", req.Session.UserID),
			slog.String("error", err.Error()),
		)
		return Reject(KindBadRequest, msgSyncFailed)
	}

	return Continue()
}

var _ Stage = (*ProvisionStage)(nil)
