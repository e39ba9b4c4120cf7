package pipeline

import (
	"context"
	"net/http"
	"testing"
)

// mockStage is a test helper that records calls and returns a configured
// outcome.
type mockStage struct {
	name    string
	outcome Outcome
	calls   []*Request
}

func (s *mockStage) Name() string { return s.name }

func (s *mockStage) Run(_ context.Context, req *Request) Outcome {
	s.calls = append(s.calls, req)
	return s.outcome
}

func signUpRequest() *Request {
	h := http.Header{}
	h.Set("CLIENT_ID", "KRIYO_UI")
	return &Request{
		Path:   SignUpPath,
		Method: http.MethodPost,
		Header: h,
		Body: SignupBody{
			Name:     "A",
			Email:    "a@b.com",
			Phone:    "+919876543210",
			Password: "Secure123!",
		},
	}
}

func TestDispatcher_RunBefore_UnmatchedRoutePassesThrough(t *testing.T) {
	stage := &mockStage{name: "never"}
	d := NewDispatcher(DispatcherConfig{
		Stages: []StageConfig{{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: stage}},
	})

	req := &Request{Path: "/accounts", Method: http.MethodGet}
	if err := d.RunBefore(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stage.calls) != 0 {
		t.Errorf("expected 0 calls for unmatched route, got %d", len(stage.calls))
	}
}

func TestDispatcher_RunBefore_AllContinue(t *testing.T) {
	first := &mockStage{name: "first"}
	second := &mockStage{name: "second"}
	d := NewDispatcher(DispatcherConfig{
		Stages: []StageConfig{
			{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: first},
			{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: second},
		},
	})

	if err := d.RunBefore(context.Background(), signUpRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.calls) != 1 || len(second.calls) != 1 {
		t.Errorf("expected 1 call each, got %d and %d", len(first.calls), len(second.calls))
	}
}

func TestDispatcher_RunBefore_RejectShortCircuits(t *testing.T) {
	first := &mockStage{name: "rejector", outcome: Reject(KindUnauthorized, "Unauthorized client")}
	second := &mockStage{name: "unreached"}
	d := NewDispatcher(DispatcherConfig{
		Stages: []StageConfig{
			{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: first},
			{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: second},
		},
	})

	err := d.RunBefore(context.Background(), signUpRequest())
	if err == nil {
		t.Fatal("expected rejection")
	}
	if !IsRejection(err) {
		t.Fatalf("expected Rejection, got %T", err)
	}

	rej, _ := AsRejection(err)
	if rej.Stage != "rejector" {
		t.Errorf("expected stage 'rejector', got %q", rej.Stage)
	}
	if rej.Kind != KindUnauthorized {
		t.Errorf("expected kind %q, got %q", KindUnauthorized, rej.Kind)
	}
	if rej.Message != "Unauthorized client" {
		t.Errorf("unexpected message: %s", rej.Message)
	}
	if len(second.calls) != 0 {
		t.Errorf("expected later stage to be skipped, got %d calls", len(second.calls))
	}
}

func TestDispatcher_RunBefore_OrderedExecution(t *testing.T) {
	var order []string
	track := func(name string) Stage {
		return &trackingStage{name: name, order: &order}
	}

	d := NewDispatcher(DispatcherConfig{
		Stages: []StageConfig{
			{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: track("first")},
			{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: track("second")},
			{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: track("third")},
		},
	})

	if err := d.RunBefore(context.Background(), signUpRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Errorf("unexpected order: %v", order)
	}
}

type trackingStage struct {
	name  string
	order *[]string
}

func (s *trackingStage) Name() string { return s.name }

func (s *trackingStage) Run(context.Context, *Request) Outcome {
	*s.order = append(*s.order, s.name)
	return Continue()
}

func TestDispatcher_PhaseSeparation(t *testing.T) {
	before := &mockStage{name: "before"}
	after := &mockStage{name: "after"}
	d := NewDispatcher(DispatcherConfig{
		Stages: []StageConfig{
			{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: before},
			{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseAfter, Stage: after},
		},
	})

	req := signUpRequest()
	if err := d.RunBefore(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(before.calls) != 1 {
		t.Errorf("expected 1 before call, got %d", len(before.calls))
	}
	if len(after.calls) != 0 {
		t.Errorf("expected 0 after calls during before, got %d", len(after.calls))
	}

	if err := d.RunAfter(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(after.calls) != 1 {
		t.Errorf("expected 1 after call, got %d", len(after.calls))
	}
	if len(before.calls) != 1 {
		t.Errorf("expected before call count unchanged, got %d", len(before.calls))
	}
}

type recordingRecorder struct {
	decisions []Decision
}

func (r *recordingRecorder) RecordDecision(_ context.Context, d Decision) {
	r.decisions = append(r.decisions, d)
}

func TestDispatcher_RecordsDecisions(t *testing.T) {
	rec := &recordingRecorder{}
	d := NewDispatcher(DispatcherConfig{
		Recorder: rec,
		Stages: []StageConfig{
			{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: &mockStage{name: "ok"}},
		},
	})

	if err := d.RunBefore(context.Background(), signUpRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.decisions) != 1 {
		t.Fatalf("expected 1 decision, got %d", len(rec.decisions))
	}
	got := rec.decisions[0]
	if !got.Allowed {
		t.Error("expected allowed decision")
	}
	if got.Phase != PhaseBefore {
		t.Errorf("expected before phase, got %q", got.Phase)
	}
	if got.Path != SignUpPath {
		t.Errorf("unexpected path: %s", got.Path)
	}

	rejecting := NewDispatcher(DispatcherConfig{
		Recorder: rec,
		Stages: []StageConfig{
			{Path: SignUpPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: &mockStage{name: "deny", outcome: Reject(KindBadRequest, "Invalid phone number")}},
		},
	})
	_ = rejecting.RunBefore(context.Background(), signUpRequest())
	if len(rec.decisions) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(rec.decisions))
	}
	got = rec.decisions[1]
	if got.Allowed {
		t.Error("expected rejected decision")
	}
	if got.Stage != "deny" {
		t.Errorf("expected rejecting stage recorded, got %q", got.Stage)
	}
	if got.Kind != KindBadRequest || got.Message != "Invalid phone number" {
		t.Errorf("unexpected kind/message: %q %q", got.Kind, got.Message)
	}
}

func TestDispatcher_NoChainForPhase(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{
		Stages: []StageConfig{
			{Path: SignInPath, Method: http.MethodPost, Phase: PhaseBefore, Stage: &mockStage{name: "observe"}},
		},
	})

	// Sign-in has no after chain; pass-through, not an error.
	req := &Request{Path: SignInPath, Method: http.MethodPost}
	if err := d.RunAfter(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
