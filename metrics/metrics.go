package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ssoportal_login_attempts_total",
		Help: "Login attempts by method (sso, local) and outcome.",
	}, []string{"method", "outcome"})

	autoRedirects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ssoportal_auto_redirects_total",
		Help: "Automatic SSO initiations triggered by the redirect loop guard.",
	})
)

// RecordLogin counts one login attempt. Outcome is "success" or the
// error kind of the failure.
func RecordLogin(method, outcome string) {
	loginAttempts.WithLabelValues(method, outcome).Inc()
}

// RecordAutoRedirect counts one automatic SSO initiation.
func RecordAutoRedirect() {
	autoRedirects.Inc()
}
