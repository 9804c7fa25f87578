package confirmation

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/league"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/scoring"
)

// New creates a new Machine.
func New(store Store, metrics metrics.Metrics, pubsubClient pubsub.PubSubClient, timeout time.Duration) *Machine {
	return &Machine{
		store:   store,
		metrics: metrics,
		pubsub:  pubsubClient,
		timeout: timeout,
	}
}

// CreateForGame samples at most SampleSize players from the losing team and
// creates one pending confirmation per sampled player. Called right after a
// game has been finalized.
func (m *Machine) CreateForGame(gameID string) ([]league.LossConfirmation, error) {
	parts, err := m.store.ListParticipants(gameID)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		log.Warn("No participants found, skipping loss confirmations", "gameID", gameID)
		return nil, nil
	}

	totalA, totalB := teamTotals(parts)
	losingTeam := scoring.Loser(totalA, totalB)

	var losers []league.ParticipantDetail
	for _, part := range parts {
		if part.Team == losingTeam {
			losers = append(losers, part)
		}
	}
	if len(losers) == 0 {
		log.Warn("No losing players found, skipping loss confirmations", "gameID", gameID)
		return nil, nil
	}

	sampled := samplePlayers(losers, SampleSize)
	playerIDs := make([]string, 0, len(sampled))
	for _, part := range sampled {
		playerIDs = append(playerIDs, part.PlayerID)
	}

	confirmations, err := m.store.CreateConfirmations(gameID, playerIDs, time.Now().Unix())
	if err != nil {
		return nil, err
	}
	for range confirmations {
		m.metrics.IncConfirmationsCreated()
	}
	log.Info("Created loss confirmations", "gameID", gameID, "team", losingTeam, "count", len(confirmations))
	return confirmations, nil
}

// RecordResponse moves one confirmation to CONFIRMED or DENIED and then
// re-evaluates the game's resolution rule. A response for a confirmation
// that already reached a terminal state is ignored.
func (m *Machine) RecordResponse(confirmationID string, confirmedLoss bool, dryRun bool) error {
	conf, err := m.store.GetConfirmation(confirmationID)
	if err != nil {
		return err
	}

	if dryRun {
		log.Info("[Dry Run] Would record confirmation response", "confirmationID", confirmationID, "confirmedLoss", confirmedLoss)
		return nil
	}

	applied, err := m.store.RecordConfirmationResponse(confirmationID, confirmedLoss, time.Now().Unix())
	if err != nil {
		return err
	}
	if !applied {
		log.Info("Confirmation already answered, ignoring response", "confirmationID", confirmationID)
		return nil
	}

	m.metrics.IncConfirmationResponses()
	log.Info("Recorded confirmation response", "confirmationID", confirmationID, "gameID", conf.GameID, "confirmedLoss", confirmedLoss)
	return m.resolve(conf.GameID)
}

// resolve checks the game's confirmations and settles when at least one
// player confirmed the loss, or at least two denied it. One honest admission
// is enough; overturning a provisional loss needs corroboration.
func (m *Machine) resolve(gameID string) error {
	confirmations, err := m.store.ListConfirmations(gameID)
	if err != nil {
		return err
	}

	confirmed, denied := 0, 0
	for _, conf := range confirmations {
		if !conf.Responded || conf.ConfirmedLoss == nil {
			continue
		}
		if *conf.ConfirmedLoss {
			confirmed++
		} else {
			denied++
		}
	}

	if confirmed < 1 && denied < 2 {
		log.Debug("Resolution rule not met yet", "gameID", gameID, "confirmed", confirmed, "denied", denied)
		return nil
	}

	_, err = m.Settle(gameID)
	return err
}

// Settle recomputes the winner from the stored participant rows and applies
// the settlement. The store's finalized-flag guard makes a second trigger a
// no-op, so this is safe to call from the response path, the sweep and the
// finalizer alike. Returns true when this call applied the settlement.
func (m *Machine) Settle(gameID string) (bool, error) {
	parts, err := m.store.ListParticipants(gameID)
	if err != nil {
		return false, err
	}
	if len(parts) == 0 {
		log.Warn("No participants found, cannot settle", "gameID", gameID)
		return false, nil
	}

	totalA, totalB := teamTotals(parts)
	winner := scoring.Winner(totalA, totalB)

	applied, err := m.store.ApplySettlement(gameID, winner)
	if err != nil {
		return false, err
	}
	if !applied {
		m.metrics.IncSettlementsSkipped()
		log.Debug("Game already settled", "gameID", gameID)
		return false, nil
	}

	m.metrics.IncSettlementsApplied()
	log.Info("Settled game", "gameID", gameID, "winner", winner, "teamA", totalA, "teamB", totalB)

	// Event publishing is best-effort; the settlement is already committed.
	event := pubsub.GameEvent{GameID: gameID, TeamAScore: totalA, TeamBScore: totalB, Winner: winner}
	if game, err := m.store.GetGame(gameID); err == nil {
		event.GameType = game.GameType
	}
	if err := m.pubsub.SendMessage(pubsub.TopicGameSettled, event); err != nil {
		log.Error("Failed to publish settlement event", "error", err, "gameID", gameID)
	}
	return true, nil
}

// SweepTimeouts forces every confirmation pending longer than the timeout to
// CONFIRMED, treating silence as an uncontested loss admission, then settles
// each affected game once. Invoked on a fixed interval by the external
// scheduler; each run is independent and idempotent.
func (m *Machine) SweepTimeouts(dryRun bool) (int, error) {
	m.metrics.IncSweepRuns()

	cutoff := time.Now().Add(-m.timeout).Unix()
	pending, err := m.store.ListPendingOlderThan(cutoff)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		log.Debug("No pending confirmations past the timeout")
		return 0, nil
	}

	log.Info("Sweeping timed-out confirmations", "count", len(pending), "cutoff", cutoff)
	if dryRun {
		log.Info("[Dry Run] Would force-confirm pending confirmations", "count", len(pending))
		return 0, nil
	}

	now := time.Now().Unix()
	forced := 0
	affectedGames := make(map[string]struct{})
	for _, conf := range pending {
		applied, err := m.store.ForceConfirm(conf.ID, now)
		if err != nil {
			log.Error("Failed to force-confirm", "error", err, "confirmationID", conf.ID)
			continue
		}
		if !applied {
			// Answered between the query and the update.
			continue
		}
		forced++
		affectedGames[conf.GameID] = struct{}{}
	}

	for gameID := range affectedGames {
		if _, err := m.Settle(gameID); err != nil {
			log.Error("Failed to settle game during sweep", "error", err, "gameID", gameID)
		}
	}

	log.Info("Timeout sweep finished", "forced", forced, "games", len(affectedGames))
	return forced, nil
}

func teamTotals(parts []league.ParticipantDetail) (int, int) {
	totalA, totalB := 0, 0
	for _, part := range parts {
		switch part.Team {
		case scoring.TeamA:
			totalA += part.TotalPoints
		case scoring.TeamB:
			totalB += part.TotalPoints
		}
	}
	return totalA, totalB
}

// samplePlayers picks up to n participants uniformly at random without
// replacement.
func samplePlayers(players []league.ParticipantDetail, n int) []league.ParticipantDetail {
	if len(players) <= n {
		return players
	}
	picked := make([]league.ParticipantDetail, len(players))
	copy(picked, players)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:n]
}
