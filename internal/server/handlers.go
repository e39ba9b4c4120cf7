package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/andysenclave/kriyo-auth-gateway/internal/engine"
	"github.com/andysenclave/kriyo-auth-gateway/internal/pipeline"
)

// maxBodyBytes bounds the credential payloads this gateway accepts.
const maxBodyBytes = 1 << 20

// CredentialEngine is the slice of the engine client the handlers use.
type CredentialEngine interface {
	SignUpEmail(ctx context.Context, payload []byte) (*engine.Response, error)
	SignInEmail(ctx context.Context, payload []byte) (*engine.Response, error)
}

// AuthHandler fronts the credential engine with the hook pipeline: the
// before phase runs ahead of the forwarded call and can reject it, the
// after phase provisions the canonical user once a session exists.
type AuthHandler struct {
	engine CredentialEngine
	hooks  *pipeline.Dispatcher
	logger *slog.Logger
}

func NewAuthHandler(eng CredentialEngine, hooks *pipeline.Dispatcher, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{engine: eng, hooks: hooks, logger: logger}
}

// SignUp handles POST /sign-up/email.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, req, ok := h.readRequest(w, r, pipeline.SignUpPath)
	if !ok {
		return
	}

	if err := h.hooks.RunBefore(ctx, req); err != nil {
		h.reject(ctx, w, err)
		return
	}

	resp, err := h.engine.SignUpEmail(ctx, raw)
	if err != nil {
		h.engineUnavailable(ctx, w, err)
		return
	}
	if !resp.OK() {
		// The engine's own validation answer passes through untouched.
		relay(w, resp)
		return
	}

	if s := resp.Session(); s != nil {
		req = req.WithSession(&pipeline.Session{UserID: s.UserID, Token: s.Token})
	}

	if err := h.hooks.RunAfter(ctx, req); err != nil {
		// The engine already minted a session; provisioning failed anyway.
		// Surfaced hard rather than silently swallowed; no rollback here.
		h.reject(ctx, w, err)
		return
	}

	relay(w, resp)
}

// SignIn handles POST /sign-in/email.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, req, ok := h.readRequest(w, r, pipeline.SignInPath)
	if !ok {
		return
	}

	if err := h.hooks.RunBefore(ctx, req); err != nil {
		h.reject(ctx, w, err)
		return
	}

	resp, err := h.engine.SignInEmail(ctx, raw)
	if err != nil {
		h.engineUnavailable(ctx, w, err)
		return
	}

	if err := h.hooks.RunAfter(ctx, req); err != nil {
		h.reject(ctx, w, err)
		return
	}

	relay(w, resp)
}

func (h *AuthHandler) readRequest(w http.ResponseWriter, r *http.Request, path string) ([]byte, *pipeline.Request, bool) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeCallerError(w, pipeline.KindBadRequest, "Invalid request body")
		return nil, nil, false
	}

	var body pipeline.SignupBody
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			AddError(r.Context(), err)
			writeCallerError(w, pipeline.KindBadRequest, "Invalid request body")
			return nil, nil, false
		}
	}

	return raw, &pipeline.Request{
		Path:   path,
		Method: http.MethodPost,
		Header: r.Header,
		Body:   body,
	}, true
}

func (h *AuthHandler) reject(ctx context.Context, w http.ResponseWriter, err error) {
	AddError(ctx, err)
	if rej, ok := pipeline.AsRejection(err); ok {
		writeRejection(w, rej)
		return
	}
	// The dispatcher only fails with rejections; anything else is a bug.
	h.logger.Error("unexpected pipeline error", slog.String("error", err.Error()))
	writeCallerError(w, pipeline.KindBadRequest, "Request failed")
}

func (h *AuthHandler) engineUnavailable(ctx context.Context, w http.ResponseWriter, err error) {
	AddError(ctx, err)
	h.logger.Error("credential engine unreachable", slog.String("error", err.Error()))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_ = json.NewEncoder(w).Encode(callerError{
		ErrorKind: string(pipeline.KindBadRequest),
		Message:   "Credential engine unavailable",
	})
}

// relay writes the credential engine's answer to the caller verbatim.
func relay(w http.ResponseWriter, resp *engine.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}
