package notifier

import (
	"sync"

	"github.com/mauv0809/courtside/internal/league"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	SendLossNotificationsCalls []struct {
		Game   *league.Game
		Losers []league.ParticipantDetail
	}
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendLossNotifications(game *league.Game, losers []league.ParticipantDetail, dryRun bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLossNotificationsCalls = append(m.SendLossNotificationsCalls, struct {
		Game   *league.Game
		Losers []league.ParticipantDetail
	}{game, losers})
}
