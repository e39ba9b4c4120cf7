package pipeline

import (
	"context"
	"net/http"
	"testing"
)

func requestWithClientID(id string) *Request {
	h := http.Header{}
	if id != "" {
		h.Set("CLIENT_ID", id)
	}
	return &Request{Path: SignUpPath, Method: http.MethodPost, Header: h}
}

func TestClientIDStage(t *testing.T) {
	stage := NewClientIDStage([]string{"KRIYO_UI", "KRIYO_MOBILE"})

	tests := []struct {
		name     string
		clientID string
		rejected bool
	}{
		{name: "allowed", clientID: "KRIYO_UI", rejected: false},
		{name: "second allowed", clientID: "KRIYO_MOBILE", rejected: false},
		{name: "missing", clientID: "", rejected: true},
		{name: "unknown", clientID: "EVIL_UI", rejected: true},
		{name: "case sensitive value", clientID: "kriyo_ui", rejected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := stage.Run(context.Background(), requestWithClientID(tt.clientID))
			if out.Rejected() != tt.rejected {
				t.Fatalf("Run() rejected = %v, want %v", out.Rejected(), tt.rejected)
			}
			if tt.rejected && out.Kind != KindUnauthorized {
				t.Errorf("expected %q, got %q", KindUnauthorized, out.Kind)
			}
		})
	}
}

func TestClientIDStage_EmptyHeaderValue(t *testing.T) {
	stage := NewClientIDStage([]string{"KRIYO_UI"})
	h := http.Header{}
	h.Set("CLIENT_ID", "   ")
	out := stage.Run(context.Background(), &Request{Path: SignUpPath, Method: http.MethodPost, Header: h})
	if !out.Rejected() || out.Kind != KindUnauthorized {
		t.Fatalf("expected unauthorized for blank header, got %+v", out)
	}
}

func TestClientIDStage_HeaderKeyCaseInsensitive(t *testing.T) {
	stage := NewClientIDStage([]string{"KRIYO_UI"})
	h := http.Header{}
	h.Set("client_id", "KRIYO_UI")
	out := stage.Run(context.Background(), &Request{Path: SignUpPath, Method: http.MethodPost, Header: h})
	if out.Rejected() {
		t.Fatalf("expected lowercase header key to match, got %+v", out)
	}
}

func TestClientIDStage_Idempotent(t *testing.T) {
	stage := NewClientIDStage([]string{"KRIYO_UI"})
	req := requestWithClientID("KRIYO_UI")
	first := stage.Run(context.Background(), req)
	second := stage.Run(context.Background(), req)
	if first != second {
		t.Errorf("expected identical outcomes, got %+v and %+v", first, second)
	}

	bad := requestWithClientID("EVIL_UI")
	first = stage.Run(context.Background(), bad)
	second = stage.Run(context.Background(), bad)
	if first != second {
		t.Errorf("expected identical outcomes, got %+v and %+v", first, second)
	}
}
