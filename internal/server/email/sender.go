// Package email delivers transactional mail (password resets, order
// confirmations) over SMTP.
package email

import "context"

// Sender delivers a plain-text message. Implementations report failure via
// the returned error and must never panic past this boundary; callers decide
// whether a delivery failure is surfaced or swallowed.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}
