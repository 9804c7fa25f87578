package game

import "github.com/mauv0809/courtside/internal/league"

// Store defines the database operations required by the finalizer.
type Store interface {
	GetOrCreatePlayer(name, phone string) (league.Player, error)
	CreateGame(gameType string) (league.Game, error)
	GetGame(gameID string) (*league.Game, error)
	SaveFinalization(result league.FinalizedGame) error
	ListTeamParticipants(gameID, team string) ([]league.ParticipantDetail, error)
}

// Machine is the slice of the confirmation machine the finalizer drives:
// immediate settlement plus creation of the loss confirmations.
type Machine interface {
	Settle(gameID string) (bool, error)
	CreateForGame(gameID string) ([]league.LossConfirmation, error)
}
