package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Auth outcomes recorded per credential flow.
const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

var authAttempts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "socialgraph_auth_attempts_total",
		Help: "Credential flow attempts by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

var resetEmailsSent = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "socialgraph_reset_emails_total",
		Help: "Password reset emails by delivery result.",
	},
	[]string{"result"},
)

// recordAuth classifies err as a rejection (client error) or a failure.
func recordAuth(operation string, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
		if isClientError(err) {
			outcome = outcomeRejected
		}
	}
	authAttempts.WithLabelValues(operation, outcome).Inc()
}
