package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/andysenclave/kriyo-auth-gateway/internal/requestid"
)

// Phase identifies when a stage chain runs relative to the credential
// engine.
type Phase string

const (
	// PhaseBefore runs ahead of the credential engine and can abort the
	// request.
	PhaseBefore Phase = "before"
	// PhaseAfter runs once the credential engine has answered.
	PhaseAfter Phase = "after"
)

// Stage is one validator or side-effect unit inside a phase's fixed
// sequence.
type Stage interface {
	// Name returns the unique identifier for this stage.
	Name() string
	// Run executes the stage against the request. Transport errors must be
	// reclassified into a rejected Outcome; they never escape as raw errors.
	Run(ctx context.Context, req *Request) Outcome
}

// StageConfig binds a stage to the (path, method, phase) it intercepts.
type StageConfig struct {
	Path   string
	Method string
	Phase  Phase
	Stage  Stage
}

// Decision is the record of one phase execution, consumed by an optional
// Recorder for the audit trail.
type Decision struct {
	RequestID string
	Path      string
	Method    string
	Phase     Phase
	Stage     string // rejecting stage, empty when the phase was accepted
	Allowed   bool
	Kind      ErrorKind
	Message   string
	Duration  time.Duration
}

// Recorder receives phase decisions for diagnostics. Implementations must
// be best-effort; a recording failure never fails the request.
type Recorder interface {
	RecordDecision(ctx context.Context, d Decision)
}

// DispatcherConfig configures a dispatcher from stage bindings.
type DispatcherConfig struct {
	Stages   []StageConfig
	Logger   *slog.Logger
	Recorder Recorder
}

type route struct {
	path   string
	method string
}

// Dispatcher routes an intercepted request to the correct stage chain based
// on (path, method, phase) and runs the chain sequentially, short-circuiting
// on the first rejection.
type Dispatcher struct {
	before   map[route][]Stage
	after    map[route][]Stage
	logger   *slog.Logger
	recorder Recorder
}

// NewDispatcher creates a dispatcher from configuration. Stages keep the
// order in which they are listed for their (path, method, phase).
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		before:   make(map[route][]Stage),
		after:    make(map[route][]Stage),
		logger:   logger,
		recorder: cfg.Recorder,
	}

	for _, s := range cfg.Stages {
		rt := route{path: s.Path, method: s.Method}
		switch s.Phase {
		case PhaseBefore:
			d.before[rt] = append(d.before[rt], s.Stage)
		case PhaseAfter:
			d.after[rt] = append(d.after[rt], s.Stage)
		}
	}

	return d
}

// RunBefore executes the before chain for the request's (path, method).
// It returns nil when every stage continues or when no chain matches, and
// a *Rejection carrying the first rejecting stage's kind and message
// otherwise.
func (d *Dispatcher) RunBefore(ctx context.Context, req *Request) error {
	return d.run(ctx, PhaseBefore, d.before, req)
}

// RunAfter executes the after chain for the request's (path, method) with
// the same contract as RunBefore.
func (d *Dispatcher) RunAfter(ctx context.Context, req *Request) error {
	return d.run(ctx, PhaseAfter, d.after, req)
}

func (d *Dispatcher) run(ctx context.Context, phase Phase, chains map[route][]Stage, req *Request) error {
	stages, ok := chains[route{path: req.Path, method: req.Method}]
	if !ok {
		// Pass-through, not an error.
		return nil
	}

	start := time.Now()
	d.logger.Debug("hook phase start",
		slog.String("phase", string(phase)),
		slog.String("path", req.Path),
		slog.String("method", req.Method),
	)

	for _, stage := range stages {
		out := stage.Run(ctx, req)
		if out.Rejected() {
			d.logger.Debug("hook stage rejected",
				slog.String("phase", string(phase)),
				slog.String("stage", stage.Name()),
				slog.String("kind", string(out.Kind)),
				slog.String("message", out.Message),
			)
			d.record(ctx, req, phase, stage.Name(), out, time.Since(start))
			return &Rejection{Stage: stage.Name(), Kind: out.Kind, Message: out.Message}
		}
	}

	d.logger.Debug("hook phase accepted",
		slog.String("phase", string(phase)),
		slog.String("path", req.Path),
		slog.Duration("duration", time.Since(start)),
	)
	d.record(ctx, req, phase, "", Outcome{}, time.Since(start))
	return nil
}

func (d *Dispatcher) record(ctx context.Context, req *Request, phase Phase, stage string, out Outcome, elapsed time.Duration) {
	if d.recorder == nil {
		return
	}
	d.recorder.RecordDecision(ctx, Decision{
		RequestID: requestid.FromContext(ctx),
		Path:      req.Path,
		Method:    req.Method,
		Phase:     phase,
		Stage:     stage,
		Allowed:   !out.Rejected(),
		Kind:      out.Kind,
		Message:   out.Message,
		Duration:  elapsed,
	})
}
