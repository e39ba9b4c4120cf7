package pipeline

import "fmt"

// ErrorKind categorizes a rejection for the caller. The set is closed:
// every rejection carries exactly one of these two kinds.
type ErrorKind string

const (
	// KindUnauthorized indicates a bad or missing client identity.
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	// KindBadRequest indicates malformed input, a duplicate phone number,
	// or a downstream service failure during lookup or provisioning.
	KindBadRequest ErrorKind = "BAD_REQUEST"
)

// Outcome is the result of one pipeline stage: either continue to the next
// stage or reject the whole phase.
type Outcome struct {
	Kind    ErrorKind
	Message string
}

// Continue returns the outcome that lets the phase proceed.
func Continue() Outcome {
	return Outcome{}
}

// Reject returns the outcome that aborts the phase with the given kind and
// caller-facing message.
func Reject(kind ErrorKind, message string) Outcome {
	return Outcome{Kind: kind, Message: message}
}

// Rejected reports whether the outcome aborts the phase.
func (o Outcome) Rejected() bool {
	return o.Kind != ""
}

// Rejection is returned when a pipeline stage rejects a request. It
// preserves the rejecting stage's kind and message verbatim.
type Rejection struct {
	Stage   string
	Kind    ErrorKind
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("rejected by %s: %s: %s", r.Stage, r.Kind, r.Message)
}

// AsRejection returns the rejection carried by err, if any.
func AsRejection(err error) (*Rejection, bool) {
	rej, ok := err.(*Rejection)
	return rej, ok
}

// IsRejection reports whether the error is a pipeline rejection.
func IsRejection(err error) bool {
	_, ok := err.(*Rejection)
	return ok
}
