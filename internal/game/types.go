package game

import (
	"github.com/mauv0809/courtside/internal/league"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/scoring"
)

// Finalizer turns a raw score submission into a finalized game: persisted
// participants, updated ratings, applied settlement, loss confirmations and
// notifications.
type Finalizer struct {
	store    Store
	machine  Machine
	notifier notifier.Notifier
	pubsub   pubsub.PubSubClient
	metrics  metrics.Metrics
}

// Submission is one game's worth of input: who played on which side and what
// each player scored. Phones carries optional phone numbers for players that
// are created on the fly.
type Submission struct {
	GameType string                       `json:"game_type"`
	TeamA    []string                     `json:"team_a"`
	TeamB    []string                     `json:"team_b"`
	Scores   map[string]scoring.ScoreLine `json:"scores"`
	Phones   map[string]string            `json:"phones,omitempty"`
}

// RatingChange records one player's rating movement from a finalized game.
type RatingChange struct {
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	Delta  float64 `json:"delta"`
}

// Result is what a finalized submission produced.
type Result struct {
	Game          league.Game               `json:"game"`
	RatingChanges map[string]RatingChange   `json:"rating_changes"`
	Confirmations []league.LossConfirmation `json:"confirmations,omitempty"`
}
