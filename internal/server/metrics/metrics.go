// Package metrics collects Prometheus counters for the auth subsystem.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector aggregates the auth-related counters. Register it once with the
// process registry and share the instance across services.
type Collector struct {
	loginAttempts   *prometheus.CounterVec
	resetRequests   *prometheus.CounterVec
	resetRedeems    *prometheus.CounterVec
	passwordChanges *prometheus.CounterVec
	emailsSent      *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "silvercar_login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		resetRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "silvercar_password_reset_requests_total",
			Help: "Password reset requests by outcome.",
		}, []string{"outcome"}),
		resetRedeems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "silvercar_password_reset_redeems_total",
			Help: "Password reset token redemptions by outcome.",
		}, []string{"outcome"}),
		passwordChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "silvercar_password_changes_total",
			Help: "Authenticated password changes by outcome.",
		}, []string{"outcome"}),
		emailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "silvercar_emails_sent_total",
			Help: "Outbound emails by outcome.",
		}, []string{"outcome"}),
	}

	if reg != nil {
		reg.MustRegister(c.loginAttempts, c.resetRequests, c.resetRedeems, c.passwordChanges, c.emailsSent)
	}
	return c
}

func outcome(ok bool) string {
	if ok {
		return OutcomeSuccess
	}
	return OutcomeFailure
}

func (c *Collector) RecordLogin(ok bool)          { c.loginAttempts.WithLabelValues(outcome(ok)).Inc() }
func (c *Collector) RecordResetRequest(ok bool)   { c.resetRequests.WithLabelValues(outcome(ok)).Inc() }
func (c *Collector) RecordResetRedeem(ok bool)    { c.resetRedeems.WithLabelValues(outcome(ok)).Inc() }
func (c *Collector) RecordPasswordChange(ok bool) { c.passwordChanges.WithLabelValues(outcome(ok)).Inc() }
func (c *Collector) RecordEmail(ok bool)          { c.emailsSent.WithLabelValues(outcome(ok)).Inc() }
