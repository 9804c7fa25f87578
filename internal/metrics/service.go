package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		GamesFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_games_finalized_total",
			Help: "The total number of games finalized.",
		}),
		FinalizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hoops_game_finalize_duration_seconds",
			Help:    "The duration of individual game finalizations.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SettlementsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_settlements_applied_total",
			Help: "The total number of settlements that updated game state.",
		}),
		SettlementsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_settlements_skipped_total",
			Help: "The total number of settlement triggers skipped because the game was already finalized.",
		}),
		ConfirmationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_loss_confirmations_created_total",
			Help: "The total number of loss confirmations created.",
		}),
		ConfirmationResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_loss_confirmation_responses_total",
			Help: "The total number of loss confirmation responses recorded.",
		}),
		SweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_timeout_sweep_runs_total",
			Help: "The total number of times the confirmation timeout sweep has run.",
		}),
		SmsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_sms_notifications_sent_total",
			Help: "The total number of SMS notifications successfully sent.",
		}),
		SmsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_sms_notifications_failed_total",
			Help: "The total number of SMS notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hoops_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.GamesFinalized,
		s.FinalizeDuration,
		s.SettlementsApplied,
		s.SettlementsSkipped,
		s.ConfirmationsCreated,
		s.ConfirmationResponses,
		s.SweepRuns,
		s.SmsSent,
		s.SmsFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncGamesFinalized() {
	s.GamesFinalized.Inc()
}

func (s *Service) ObserveFinalizeDuration(duration float64) {
	s.FinalizeDuration.Observe(duration)
}

func (s *Service) IncSettlementsApplied() {
	s.SettlementsApplied.Inc()
}

func (s *Service) IncSettlementsSkipped() {
	s.SettlementsSkipped.Inc()
}

func (s *Service) IncConfirmationsCreated() {
	s.ConfirmationsCreated.Inc()
}

func (s *Service) IncConfirmationResponses() {
	s.ConfirmationResponses.Inc()
}

func (s *Service) IncSweepRuns() {
	s.SweepRuns.Inc()
}

func (s *Service) IncSmsSent() {
	s.SmsSent.Inc()
}

func (s *Service) IncSmsFailed() {
	s.SmsFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
