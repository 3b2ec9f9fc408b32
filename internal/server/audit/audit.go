// Package audit records security-relevant events (login attempts, password
// changes, resets) with enough context to reconstruct an incident timeline.
// Recording is fire-and-forget: it never fails, never blocks meaningfully,
// and must never carry raw or hashed passwords.
package audit

import (
	"context"

	"github.com/silvercar/backend/internal/logging"
)

// Event categories.
const (
	CategoryAuth          = "AUTH_VALIDATION"
	CategoryRegistration  = "REGISTRATION"
	CategoryPasswordReset = "PASSWORD_RESET"
	CategoryEmail         = "SEND_EMAIL"
	CategoryOrder         = "ORDER"
)

// Recorder writes audit events through the project logger on a dedicated
// channel attribute so they can be filtered out of regular application logs.
type Recorder struct {
	log logging.Logger
}

func NewRecorder(l logging.Logger) *Recorder {
	return &Recorder{log: l.With("channel", "audit")}
}

// Event records a routine audit event. args are key/value pairs.
func (r *Recorder) Event(ctx context.Context, category, msg string, args ...any) {
	if r == nil || r.log == nil {
		return
	}
	r.log.Info(ctx, msg, append([]any{"category", category}, args...)...)
}

// Failure records a suspicious or failed operation.
func (r *Recorder) Failure(ctx context.Context, category, msg string, args ...any) {
	if r == nil || r.log == nil {
		return
	}
	r.log.Warn(ctx, msg, append([]any{"category", category}, args...)...)
}
