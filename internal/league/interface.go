package league

import "errors"

// Sentinel errors surfaced to the HTTP layer.
var (
	ErrPlayerExists         = errors.New("player already exists")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrGameNotFound         = errors.New("game not found")
	ErrConfirmationNotFound = errors.New("confirmation not found")
)

// LeagueStore defines the interface for interacting with the league's data.
type LeagueStore interface {
	// Players
	AddPlayer(name, phone string) (Player, error)
	GetOrCreatePlayer(name, phone string) (Player, error)
	GetPlayerByName(name string) (*Player, error)
	GetPlayer(playerID string) (*Player, error)
	ListPlayers() ([]Player, error)

	// Games and participants
	CreateGame(gameType string) (Game, error)
	GetGame(gameID string) (*Game, error)
	ListGames() ([]Game, error)
	SaveFinalization(result FinalizedGame) error
	ApplySettlement(gameID, winner string) (bool, error)
	ListParticipants(gameID string) ([]ParticipantDetail, error)
	ListTeamParticipants(gameID, team string) ([]ParticipantDetail, error)

	// Loss confirmations
	CreateConfirmations(gameID string, playerIDs []string, now int64) ([]LossConfirmation, error)
	GetConfirmation(id string) (*LossConfirmation, error)
	RecordConfirmationResponse(id string, confirmedLoss bool, now int64) (bool, error)
	ForceConfirm(id string, now int64) (bool, error)
	ListConfirmations(gameID string) ([]LossConfirmation, error)
	ListPendingOlderThan(cutoff int64) ([]LossConfirmation, error)

	// Leaderboard and maintenance
	Leaderboard() (*Leaderboard, error)
	Clear()
}
