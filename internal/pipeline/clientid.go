package pipeline

import (
	"context"
	"strings"
)

// clientIDHeader is the header carrying the caller's client identifier.
// Lookup through http.Header is case-insensitive.
const clientIDHeader = "CLIENT_ID"

// ClientIDStage confirms the caller presented an allow-listed client
// identifier. It is a pure function of the request headers and the
// allow-list injected at construction; nothing is re-read from the
// environment per request.
type ClientIDStage struct {
	allowed map[string]struct{}
}

// NewClientIDStage builds the stage from the configured allow-list.
func NewClientIDStage(allowed []string) *ClientIDStage {
	set := make(map[string]struct{}, len(allowed))
	for _, id := range allowed {
		id = strings.TrimSpace(id)
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return &ClientIDStage{allowed: set}
}

// Name returns the stage identifier.
func (s *ClientIDStage) Name() string { return "client-id" }

// Run rejects with KindUnauthorized when the CLIENT_ID header is absent,
// empty, or not a member of the allow-list.
func (s *ClientIDStage) Run(_ context.Context, req *Request) Outcome {
	id := strings.TrimSpace(req.Header.Get(clientIDHeader))
	if id == "" {
		return Reject(KindUnauthorized, "Unauthorized client")
	}
	if _, ok := s.allowed[id]; !ok {
		return Reject(KindUnauthorized, "Unauthorized client")
	}
	return Continue()
}

var _ Stage = (*ClientIDStage)(nil)
