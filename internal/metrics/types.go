package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	GamesFinalized        prometheus.Counter
	FinalizeDuration      prometheus.Histogram
	SettlementsApplied    prometheus.Counter
	SettlementsSkipped    prometheus.Counter
	ConfirmationsCreated  prometheus.Counter
	ConfirmationResponses prometheus.Counter
	SweepRuns             prometheus.Counter
	SmsSent               prometheus.Counter
	SmsFailed             prometheus.Counter
	StartupTimeSeconds    prometheus.Gauge
}
