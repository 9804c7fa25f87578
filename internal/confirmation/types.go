package confirmation

import (
	"time"

	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
)

// SampleSize is how many losing players are asked to confirm a loss.
const SampleSize = 2

// Machine drives a game's loss confirmations from PENDING to CONFIRMED or
// DENIED and settles the game once the resolution rule is met.
type Machine struct {
	store   Store
	metrics metrics.Metrics
	pubsub  pubsub.PubSubClient
	timeout time.Duration
}
