package twilio

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/league"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// maxRecipients caps how many losing players get a result text per game.
const maxRecipients = 2

// messageCreator is the slice of the Twilio REST client we use.
// This allows for easy mocking in tests.
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

var _ notifier.Notifier = (*Notifier)(nil)

// Notifier handles sending result summaries over SMS.
type Notifier struct {
	api     messageCreator
	from    string
	metrics metrics.Metrics
}

// NewNotifier creates a new Notifier backed by the Twilio REST API.
func NewNotifier(accountSID, authToken, from string, metrics metrics.Metrics) *Notifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Notifier{
		api:     client.Api,
		from:    from,
		metrics: metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific message client.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api messageCreator, from string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:     api,
		from:    from,
		metrics: metrics,
	}
}

// SendLossNotifications texts up to two of the losing players a result
// summary. A failed delivery is logged and counted, then the remaining
// recipients are still attempted; nothing is ever returned to the caller.
func (n *Notifier) SendLossNotifications(game *league.Game, losers []league.ParticipantDetail, dryRun bool) {
	recipients := sampleRecipients(losers, maxRecipients)
	for _, loser := range recipients {
		if loser.PhoneNumber == "" {
			log.Debug("Skipping loss notification, no phone number", "player", loser.PlayerName, "gameID", game.ID)
			continue
		}

		body := formatLossMessage(game, loser)
		if dryRun {
			log.Info("[Dry Run] Would send SMS", "to", loser.PhoneNumber, "body", body)
			continue
		}

		params := &openapi.CreateMessageParams{}
		params.SetTo(loser.PhoneNumber)
		params.SetFrom(n.from)
		params.SetBody(body)

		if _, err := n.api.CreateMessage(params); err != nil {
			n.metrics.IncSmsFailed()
			log.Error("Failed to send loss notification", "error", err, "player", loser.PlayerName, "gameID", game.ID)
			continue
		}

		n.metrics.IncSmsSent()
		log.Info("Sent loss notification", "player", loser.PlayerName, "gameID", game.ID)
	}
}

// sampleRecipients picks up to n participants uniformly at random without
// replacement.
func sampleRecipients(losers []league.ParticipantDetail, n int) []league.ParticipantDetail {
	if len(losers) <= n {
		return losers
	}
	picked := make([]league.ParticipantDetail, len(losers))
	copy(picked, losers)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:n]
}

func formatLossMessage(game *league.Game, loser league.ParticipantDetail) string {
	return fmt.Sprintf(
		"Hey %s, tough game! Final Score: Team A %d - Team B %d. Your total: %d pts.",
		loser.PlayerName, game.TeamAScore, game.TeamBScore, loser.TotalPoints,
	)
}
