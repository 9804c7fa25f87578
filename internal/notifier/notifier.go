package notifier

import "github.com/mauv0809/courtside/internal/league"

// Notifier defines a high-level interface for telling players about game results.
// This decouples the rest of the application from the specific messaging provider (e.g., Twilio).
//
// Delivery is best-effort: implementations log failures per recipient and
// never surface them, so a broken phone number cannot affect game state.
type Notifier interface {
	// SendLossNotifications picks up to two of the losing team's players and
	// sends each one with a known phone number a result summary.
	SendLossNotifications(game *league.Game, losers []league.ParticipantDetail, dryRun bool)
}
