package confirmation

import "github.com/mauv0809/courtside/internal/league"

// Store defines the database operations required by the confirmation machine.
type Store interface {
	GetGame(gameID string) (*league.Game, error)
	ListParticipants(gameID string) ([]league.ParticipantDetail, error)
	CreateConfirmations(gameID string, playerIDs []string, now int64) ([]league.LossConfirmation, error)
	GetConfirmation(id string) (*league.LossConfirmation, error)
	RecordConfirmationResponse(id string, confirmedLoss bool, now int64) (bool, error)
	ForceConfirm(id string, now int64) (bool, error)
	ListConfirmations(gameID string) ([]league.LossConfirmation, error)
	ListPendingOlderThan(cutoff int64) ([]league.LossConfirmation, error)
	ApplySettlement(gameID, winner string) (bool, error)
}
