package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncGamesFinalized()
	ObserveFinalizeDuration(duration float64)
	IncSettlementsApplied()
	IncSettlementsSkipped()
	IncConfirmationsCreated()
	IncConfirmationResponses()
	IncSweepRuns()
	IncSmsSent()
	IncSmsFailed()
	SetStartupTime(duration float64)
}
