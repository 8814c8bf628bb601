package registration

import (
	"errors"
	"fmt"

	"deales/internal/client/api"
)

// Stage names the remote call a flow was on when it failed.
type Stage string

const (
	StageRegister    Stage = "register"
	StageLogin       Stage = "login"
	StageProfile     Stage = "profile"
	StageMemberships Stage = "memberships"
)

const (
	fallbackSignup = "Signup failed. Please try again."
	fallbackLogin  = "Login failed. Please check your credentials."
)

// ErrInvalidRole is wrapped when a submission carries no valid role.
var ErrInvalidRole = errors.New("invalid role")

// Failure is the single user-facing outcome of a failed flow. Message is
// safe to display; Err keeps the cause for logs and errors.Is.
type Failure struct {
	Stage   Stage
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Stage, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// newFailure picks the message: the server's text if it sent one, a fixed
// text for a token-less login response, else fallback.
func newFailure(stage Stage, err error, fallback string) *Failure {
	msg := fallback
	if m, ok := api.ServerMessage(err); ok {
		msg = m
	} else if errors.Is(err, api.ErrMissingToken) {
		msg = "Login succeeded but no token was returned."
	}
	return &Failure{Stage: stage, Message: msg, Err: err}
}

// Message extracts the display text from a flow error.
func Message(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Message
	}
	if err == nil {
		return ""
	}
	return fallbackSignup
}
