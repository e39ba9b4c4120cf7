package pipeline

import "net/http"

// SignupBody holds the credential fields submitted with a sign-up or
// sign-in request. Fields the caller did not send are empty strings.
type SignupBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Session is the pipeline's read-only view of the session the credential
// engine minted. It is present only on the after phase of a successful
// sign-up.
type Session struct {
	UserID string
	Token  string
}

// Request is an immutable view of one in-flight authentication request.
// Stages read it; none of them may mutate Body. The Session field is set
// by the host between the before and after phases via WithSession.
type Request struct {
	Path    string
	Method  string
	Header  http.Header
	Body    SignupBody
	Session *Session
}

// WithSession returns a shallow copy of the request carrying the session
// the credential engine created. The original request is left untouched.
func (r *Request) WithSession(s *Session) *Request {
	cp := *r
	cp.Session = s
	return &cp
}
