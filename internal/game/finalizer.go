package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/league"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/rating"
	"github.com/mauv0809/courtside/internal/scoring"
)

// ErrValidation marks a submission rejected before any write happened.
// Handlers map it to a 400.
var ErrValidation = errors.New("invalid submission")

// NewFinalizer creates a new Finalizer.
func NewFinalizer(store Store, machine Machine, notifier notifier.Notifier, pubsubClient pubsub.PubSubClient, metrics metrics.Metrics) *Finalizer {
	return &Finalizer{
		store:    store,
		machine:  machine,
		notifier: notifier,
		pubsub:   pubsubClient,
		metrics:  metrics,
	}
}

// Finalize validates a submission and runs the full pipeline: get-or-create
// the players, compute totals and rating deltas, persist the game with its
// participants and new ratings in one transaction, settle it, create the
// loss confirmations and notify the losers.
//
// Validation failures reject the whole submission before anything is
// written. Once the finalize transaction has committed, notification and
// event-publishing failures are logged and do not unwind it.
func (f *Finalizer) Finalize(sub Submission, dryRun bool) (*Result, error) {
	start := time.Now()

	if err := validate(sub); err != nil {
		return nil, err
	}

	totalA := scoring.TeamTotal(sub.Scores, sub.TeamA)
	totalB := scoring.TeamTotal(sub.Scores, sub.TeamB)
	winner := scoring.Winner(totalA, totalB)

	if dryRun {
		log.Info("[Dry Run] Would finalize game", "gameType", sub.GameType, "teamA", totalA, "teamB", totalB, "winner", winner)
		return &Result{Game: league.Game{GameType: sub.GameType, TeamAScore: totalA, TeamBScore: totalB, Winner: winner}}, nil
	}

	playersA, err := f.loadPlayers(sub, sub.TeamA)
	if err != nil {
		return nil, err
	}
	playersB, err := f.loadPlayers(sub, sub.TeamB)
	if err != nil {
		return nil, err
	}

	avgA := rating.TeamAverage(ratingsOf(playersA))
	avgB := rating.TeamAverage(ratingsOf(playersB))

	game, err := f.store.CreateGame(sub.GameType)
	if err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}

	result := league.FinalizedGame{
		GameID:     game.ID,
		TeamAScore: totalA,
		TeamBScore: totalB,
		Winner:     winner,
		NewRatings: make(map[string]float64),
	}
	changes := make(map[string]RatingChange)

	appendTeam := func(players []league.Player, team string, teamTotal int, oppAvg float64) {
		actual := 0.0
		if team == winner {
			actual = 1.0
		}
		for _, p := range players {
			line := sub.Scores[p.Name]
			total := scoring.TotalPoints(line)
			contribution := scoring.ContributionFraction(total, teamTotal)
			expected := rating.ExpectedOutcome(p.Rating, oppAvg)
			delta := rating.Delta(rating.KFactor, actual, expected, contribution)

			result.Participants = append(result.Participants, league.Participant{
				GameID:      game.ID,
				PlayerID:    p.ID,
				Team:        team,
				Points1:     line.Points1,
				Points2:     line.Points2,
				TotalPoints: total,
			})
			result.NewRatings[p.ID] = p.Rating + delta
			changes[p.Name] = RatingChange{Before: p.Rating, After: p.Rating + delta, Delta: delta}
		}
	}
	appendTeam(playersA, scoring.TeamA, totalA, avgB)
	appendTeam(playersB, scoring.TeamB, totalB, avgA)

	if err := f.store.SaveFinalization(result); err != nil {
		return nil, fmt.Errorf("saving finalization: %w", err)
	}

	f.metrics.IncGamesFinalized()
	f.metrics.ObserveFinalizeDuration(time.Since(start).Seconds())
	log.Info("Finalized game", "gameID", game.ID, "gameType", sub.GameType, "teamA", totalA, "teamB", totalB, "winner", winner)

	event := pubsub.GameEvent{GameID: game.ID, GameType: sub.GameType, TeamAScore: totalA, TeamBScore: totalB, Winner: winner}
	if err := f.pubsub.SendMessage(pubsub.TopicGameFinalized, event); err != nil {
		log.Error("Failed to publish finalization event", "error", err, "gameID", game.ID)
	}

	if _, err := f.machine.Settle(game.ID); err != nil {
		return nil, fmt.Errorf("settling game: %w", err)
	}

	confirmations, err := f.machine.CreateForGame(game.ID)
	if err != nil {
		log.Error("Failed to create loss confirmations", "error", err, "gameID", game.ID)
	}

	f.notifyLosers(game.ID, totalA, totalB, dryRun)

	settled, err := f.store.GetGame(game.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading game: %w", err)
	}
	return &Result{Game: *settled, RatingChanges: changes, Confirmations: confirmations}, nil
}

func (f *Finalizer) loadPlayers(sub Submission, roster []string) ([]league.Player, error) {
	players := make([]league.Player, 0, len(roster))
	for _, name := range roster {
		p, err := f.store.GetOrCreatePlayer(name, sub.Phones[name])
		if err != nil {
			return nil, fmt.Errorf("loading player %q: %w", name, err)
		}
		players = append(players, p)
	}
	return players, nil
}

func (f *Finalizer) notifyLosers(gameID string, totalA, totalB int, dryRun bool) {
	losers, err := f.store.ListTeamParticipants(gameID, scoring.Loser(totalA, totalB))
	if err != nil {
		log.Error("Failed to load losing team", "error", err, "gameID", gameID)
		return
	}
	game, err := f.store.GetGame(gameID)
	if err != nil {
		log.Error("Failed to load game for notification", "error", err, "gameID", gameID)
		return
	}
	f.notifier.SendLossNotifications(game, losers, dryRun)
}

func validate(sub Submission) error {
	sideA, sideB, err := parseGameType(sub.GameType)
	if err != nil {
		return err
	}
	if len(sub.TeamA) != sideA {
		return fmt.Errorf("%w: team A has %d players, %s needs %d", ErrValidation, len(sub.TeamA), sub.GameType, sideA)
	}
	if len(sub.TeamB) != sideB {
		return fmt.Errorf("%w: team B has %d players, %s needs %d", ErrValidation, len(sub.TeamB), sub.GameType, sideB)
	}

	roster := make(map[string]bool, len(sub.TeamA)+len(sub.TeamB))
	for _, name := range append(append([]string{}, sub.TeamA...), sub.TeamB...) {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty player name", ErrValidation)
		}
		if roster[name] {
			return fmt.Errorf("%w: player %q appears twice", ErrValidation, name)
		}
		roster[name] = true
	}

	for name := range sub.Scores {
		if !roster[name] {
			return fmt.Errorf("%w: scored player %q is not on either roster", ErrValidation, name)
		}
	}
	return nil
}

// parseGameType turns a format like "3v3" or "2v3" into per-side roster
// sizes.
func parseGameType(gameType string) (int, int, error) {
	parts := strings.Split(gameType, "v")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: unrecognized game type %q", ErrValidation, gameType)
	}
	sideA, errA := strconv.Atoi(parts[0])
	sideB, errB := strconv.Atoi(parts[1])
	if errA != nil || errB != nil || sideA < 1 || sideB < 1 {
		return 0, 0, fmt.Errorf("%w: unrecognized game type %q", ErrValidation, gameType)
	}
	return sideA, sideB, nil
}

func ratingsOf(players []league.Player) []float64 {
	ratings := make([]float64, len(players))
	for i, p := range players {
		ratings[i] = p.Rating
	}
	return ratings
}
