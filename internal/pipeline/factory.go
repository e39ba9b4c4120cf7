package pipeline

import (
	"log/slog"
	"net/http"
)

// Paths the pipeline intercepts. The server mounts its handlers on the
// same values so routing and dispatch cannot drift apart.
const (
	SignUpPath = "/sign-up/email"
	SignInPath = "/sign-in/email"
)

// DirectoryAPI is the full identity directory surface the pipeline needs.
type DirectoryAPI interface {
	PhoneDirectory
	UserProvisioner
}

// AuthHooksConfig configures the fixed auth hook chains.
type AuthHooksConfig struct {
	// AllowedClientIDs is the immutable client allow-list, loaded once at
	// process start.
	AllowedClientIDs []string
	// Directory is the identity directory client used for the uniqueness
	// lookup and canonical user provisioning.
	Directory DirectoryAPI
	Logger    *slog.Logger
	Recorder  Recorder
}

// NewAuthDispatcher wires the sign-up and sign-in chains in their fixed
// order:
//
//	before /sign-up/email: client-id → phone-format → phone-unique
//	after  /sign-up/email: provision-user
//	before /sign-in/email: observe only
func NewAuthDispatcher(cfg AuthHooksConfig) *Dispatcher {
	return NewDispatcher(DispatcherConfig{
		Logger:   cfg.Logger,
		Recorder: cfg.Recorder,
		Stages: []StageConfig{
			{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: NewClientIDStage(cfg.AllowedClientIDs)},
			{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: NewPhoneFormatStage()},
			{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: NewPhoneUniqueStage(cfg.Directory, cfg.Logger)},
			{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseAfter, Stage: NewProvisionStage(cfg.Directory, cfg.Logger)},
			{Path: SignInPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: NewObserveStage("signin-observe", cfg.Logger)},
		},
	})
}
