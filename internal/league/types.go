package league

import (
	"database/sql"
	"sync"
)

// store handles all database operations for the league.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Player is a registered league member.
type Player struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phone_number,omitempty"`
	Rating      float64 `json:"rating"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
}

// Game is one pickup game. Finalized flips to true exactly once, when the
// settlement is applied.
type Game struct {
	ID         string `json:"id"`
	GameType   string `json:"game_type"`
	TeamAScore int    `json:"team_a_score"`
	TeamBScore int    `json:"team_b_score"`
	Winner     string `json:"winner,omitempty"`
	Finalized  bool   `json:"finalized"`
	CreatedAt  int64  `json:"created_at"`
}

// Participant is one player's row within one game.
type Participant struct {
	GameID      string `json:"game_id"`
	PlayerID    string `json:"player_id"`
	Team        string `json:"team"`
	Points1     int    `json:"points_1"`
	Points2     int    `json:"points_2"`
	TotalPoints int    `json:"total_points"`
}

// ParticipantDetail joins a participant row with the player's contact and
// rating data, as needed by the notifier and the confirmation flow.
type ParticipantDetail struct {
	Participant
	PlayerName  string  `json:"player_name"`
	PhoneNumber string  `json:"phone_number,omitempty"`
	Rating      float64 `json:"rating"`
}

// LossConfirmation asks one losing player to acknowledge or dispute a loss.
// ConfirmedLoss is nil until the player responds or the sweep forces it.
type LossConfirmation struct {
	ID            string `json:"id"`
	GameID        string `json:"game_id"`
	PlayerID      string `json:"player_id"`
	Responded     bool   `json:"responded"`
	ConfirmedLoss *bool  `json:"confirmed_loss,omitempty"`
	CreatedAt     int64  `json:"created_at"`
	UpdatedAt     int64  `json:"updated_at"`
}

// PointsEntry is a leaderboard row aggregated from participant rows.
type PointsEntry struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Points     int    `json:"points"`
}

// WinPctEntry is a leaderboard row for win percentage.
type WinPctEntry struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	WinPct     float64 `json:"win_pct"`
}

// GameDetail is a game together with its box score, split by team.
type GameDetail struct {
	Game  Game                `json:"game"`
	TeamA []ParticipantDetail `json:"team_a"`
	TeamB []ParticipantDetail `json:"team_b"`
}

// Leaderboard mirrors the boards shown on the leaderboard page: top ratings,
// top scorers, best win percentage, most 2-point makes and the last game.
type Leaderboard struct {
	TopRating      []Player      `json:"top_rating"`
	TopScorers     []PointsEntry `json:"top_scorers"`
	TopWinPct      []WinPctEntry `json:"top_win_pct"`
	TopTwoPointers []PointsEntry `json:"top_two_pointers"`
	LastGame       *GameDetail   `json:"last_game,omitempty"`
}

// FinalizedGame is the unit of work the finalizer persists in one
// transaction: the game's scores and winner, every participant row, and the
// new rating per player.
type FinalizedGame struct {
	GameID       string
	TeamAScore   int
	TeamBScore   int
	Winner       string
	Participants []Participant
	NewRatings   map[string]float64
}
