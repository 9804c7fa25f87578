package league

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/courtside/internal/rating"
)

// New creates a new LeagueStore.
func New(db *sql.DB) LeagueStore {
	return &store{
		db: db,
	}
}

// AddPlayer registers a player explicitly. The name must be unused.
func (s *store) AddPlayer(name, phone string) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE name = ?)", name).Scan(&exists)
	if err != nil {
		return Player{}, fmt.Errorf("failed to check player existence: %w", err)
	}
	if exists {
		return Player{}, ErrPlayerExists
	}

	return s.insertPlayerLocked(name, phone)
}

// GetOrCreatePlayer returns the player with the given name, creating it with
// the default rating if no such player exists yet. Team selection and game
// finalization both go through here, so implicit creation happens in exactly
// one place.
func (s *store) GetOrCreatePlayer(name, phone string) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.getPlayerByNameLocked(name)
	if err != nil && err != ErrPlayerNotFound {
		return Player{}, err
	}
	if err == nil {
		return *player, nil
	}

	created, err := s.insertPlayerLocked(name, phone)
	if err != nil {
		return Player{}, err
	}
	log.Info("Discovered and added new player to the store", "playerID", created.ID, "name", name)
	return created, nil
}

func (s *store) insertPlayerLocked(name, phone string) (Player, error) {
	player := Player{
		ID:          uuid.NewString(),
		Name:        name,
		PhoneNumber: phone,
		Rating:      rating.DefaultRating,
	}
	var phoneVal any
	if phone != "" {
		phoneVal = phone
	}
	_, err := s.db.Exec(
		"INSERT INTO players (id, name, phone_number, rating, wins, losses) VALUES (?, ?, ?, ?, 0, 0)",
		player.ID, player.Name, phoneVal, player.Rating,
	)
	if err != nil {
		return Player{}, fmt.Errorf("failed to insert player: %w", err)
	}
	return player, nil
}

func (s *store) GetPlayerByName(name string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getPlayerByNameLocked(name)
}

func (s *store) getPlayerByNameLocked(name string) (*Player, error) {
	row := s.db.QueryRow("SELECT id, name, phone_number, rating, wins, losses FROM players WHERE name = ?", name)
	return scanPlayer(row)
}

func (s *store) GetPlayer(playerID string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow("SELECT id, name, phone_number, rating, wins, losses FROM players WHERE id = ?", playerID)
	return scanPlayer(row)
}

func scanPlayer(row *sql.Row) (*Player, error) {
	var p Player
	var phone sql.NullString
	err := row.Scan(&p.ID, &p.Name, &phone, &p.Rating, &p.Wins, &p.Losses)
	if err == sql.ErrNoRows {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	p.PhoneNumber = phone.String
	return &p, nil
}

func (s *store) ListPlayers() ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, phone_number, rating, wins, losses FROM players ORDER BY name")
	if err != nil {
		log.Error("Failed to query players", "error", err)
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		var phone sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &phone, &p.Rating, &p.Wins, &p.Losses); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		p.PhoneNumber = phone.String
		players = append(players, p)
	}
	return players, rows.Err()
}

// CreateGame inserts an unfinalized game row for the given game type.
func (s *store) CreateGame(gameType string) (Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game := Game{
		ID:        uuid.NewString(),
		GameType:  gameType,
		CreatedAt: time.Now().Unix(),
	}
	_, err := s.db.Exec(
		"INSERT INTO games (id, game_type, team_a_score, team_b_score, finalized, created_at) VALUES (?, ?, 0, 0, 0, ?)",
		game.ID, game.GameType, game.CreatedAt,
	)
	if err != nil {
		return Game{}, fmt.Errorf("failed to insert game: %w", err)
	}
	return game, nil
}

func (s *store) GetGame(gameID string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var g Game
	var winner sql.NullString
	err := s.db.QueryRow(
		"SELECT id, game_type, team_a_score, team_b_score, winner, finalized, created_at FROM games WHERE id = ?",
		gameID,
	).Scan(&g.ID, &g.GameType, &g.TeamAScore, &g.TeamBScore, &winner, &g.Finalized, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}
	g.Winner = winner.String
	return &g, nil
}

func (s *store) ListGames() ([]Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, game_type, team_a_score, team_b_score, winner, finalized, created_at FROM games ORDER BY created_at DESC")
	if err != nil {
		log.Error("Failed to query games", "error", err)
		return nil, err
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		var g Game
		var winner sql.NullString
		if err := rows.Scan(&g.ID, &g.GameType, &g.TeamAScore, &g.TeamBScore, &winner, &g.Finalized, &g.CreatedAt); err != nil {
			log.Error("Failed to scan game row", "error", err)
			continue
		}
		g.Winner = winner.String
		games = append(games, g)
	}
	return games, rows.Err()
}

// SaveFinalization persists the outcome of the finalizer in one transaction:
// game scores and winner, every participant row, and the updated player
// ratings. The finalized flag is left untouched; flipping it is the
// settlement's job.
func (s *store) SaveFinalization(result FinalizedGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	res, err := tx.Exec(
		"UPDATE games SET team_a_score = ?, team_b_score = ?, winner = ? WHERE id = ?",
		result.TeamAScore, result.TeamBScore, result.Winner, result.GameID,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update game: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		tx.Rollback()
		return ErrGameNotFound
	}

	stmt, err := tx.Prepare(
		"INSERT INTO game_players (game_id, player_id, team, points_1, points_2, total_points) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare participant insert: %w", err)
	}
	defer stmt.Close()

	for _, part := range result.Participants {
		if _, err := stmt.Exec(part.GameID, part.PlayerID, part.Team, part.Points1, part.Points2, part.TotalPoints); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert participant %s: %w", part.PlayerID, err)
		}
	}

	for playerID, newRating := range result.NewRatings {
		if _, err := tx.Exec("UPDATE players SET rating = ? WHERE id = ?", newRating, playerID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to update rating for %s: %w", playerID, err)
		}
	}

	return tx.Commit()
}

// ApplySettlement marks the game finalized with the given winner and bumps
// every participant's win or loss counter. The finalized flag acts as a
// compare-and-swap guard: the update only matches an unfinalized row, so a
// settlement racing another (manual confirmation vs. the timeout sweep)
// applies at most once. Returns true when this call did the work.
func (s *store) ApplySettlement(gameID, winner string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}

	res, err := tx.Exec("UPDATE games SET finalized = 1, winner = ? WHERE id = ? AND finalized = 0", winner, gameID)
	if err != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to finalize game: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return false, err
	}
	if affected == 0 {
		tx.Rollback()
		var exists bool
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM games WHERE id = ?)", gameID).Scan(&exists); err != nil {
			return false, err
		}
		if !exists {
			return false, ErrGameNotFound
		}
		// Already settled by an earlier trigger; nothing to do.
		return false, nil
	}

	// Counter bumps are single statements against the participant rows, so
	// there is no read-modify-write window to lose an update in.
	_, err = tx.Exec(
		"UPDATE players SET wins = wins + 1 WHERE id IN (SELECT player_id FROM game_players WHERE game_id = ? AND team = ?)",
		gameID, winner,
	)
	if err != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to increment wins: %w", err)
	}
	_, err = tx.Exec(
		"UPDATE players SET losses = losses + 1 WHERE id IN (SELECT player_id FROM game_players WHERE game_id = ? AND team != ?)",
		gameID, winner,
	)
	if err != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to increment losses: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *store) ListParticipants(gameID string) ([]ParticipantDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryParticipants("WHERE gp.game_id = ?", gameID)
}

func (s *store) ListTeamParticipants(gameID, team string) ([]ParticipantDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryParticipants("WHERE gp.game_id = ? AND gp.team = ?", gameID, team)
}

func (s *store) queryParticipants(where string, args ...any) ([]ParticipantDetail, error) {
	query := `
		SELECT gp.game_id, gp.player_id, gp.team, gp.points_1, gp.points_2, gp.total_points,
		       p.name, p.phone_number, p.rating
		FROM game_players gp
		JOIN players p ON gp.player_id = p.id ` + where
	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query participants", "error", err)
		return nil, err
	}
	defer rows.Close()

	var parts []ParticipantDetail
	for rows.Next() {
		var pd ParticipantDetail
		var phone sql.NullString
		err := rows.Scan(
			&pd.GameID, &pd.PlayerID, &pd.Team, &pd.Points1, &pd.Points2, &pd.TotalPoints,
			&pd.PlayerName, &phone, &pd.Rating,
		)
		if err != nil {
			log.Error("Failed to scan participant row", "error", err)
			continue
		}
		pd.PhoneNumber = phone.String
		parts = append(parts, pd)
	}
	return parts, rows.Err()
}

// CreateConfirmations inserts one pending confirmation per sampled player.
func (s *store) CreateConfirmations(gameID string, playerIDs []string, now int64) ([]LossConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	stmt, err := tx.Prepare(
		"INSERT INTO loss_confirmations (id, game_id, player_id, responded, confirmed_loss, created_at, updated_at) VALUES (?, ?, ?, 0, NULL, ?, ?)",
	)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to prepare confirmation insert: %w", err)
	}
	defer stmt.Close()

	var confirmations []LossConfirmation
	for _, playerID := range playerIDs {
		conf := LossConfirmation{
			ID:        uuid.NewString(),
			GameID:    gameID,
			PlayerID:  playerID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := stmt.Exec(conf.ID, conf.GameID, conf.PlayerID, conf.CreatedAt, conf.UpdatedAt); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to insert confirmation for %s: %w", playerID, err)
		}
		confirmations = append(confirmations, conf)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return confirmations, nil
}

func (s *store) GetConfirmation(id string) (*LossConfirmation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		"SELECT id, game_id, player_id, responded, confirmed_loss, created_at, updated_at FROM loss_confirmations WHERE id = ?",
		id,
	)
	conf, err := scanConfirmation(row)
	if err == sql.ErrNoRows {
		return nil, ErrConfirmationNotFound
	}
	return conf, err
}

// RecordConfirmationResponse moves a pending confirmation to its terminal
// state. The responded flag guards the transition: a confirmation answers at
// most once, later responses and the sweep cannot overwrite it. Returns true
// when the transition happened.
func (s *store) RecordConfirmationResponse(id string, confirmedLoss bool, now int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.respondLocked(id, confirmedLoss, now)
}

// ForceConfirm is the timeout path: a pending confirmation past the
// threshold is treated as an uncontested loss admission.
func (s *store) ForceConfirm(id string, now int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.respondLocked(id, true, now)
}

func (s *store) respondLocked(id string, confirmedLoss bool, now int64) (bool, error) {
	res, err := s.db.Exec(
		"UPDATE loss_confirmations SET responded = 1, confirmed_loss = ?, updated_at = ? WHERE id = ? AND responded = 0",
		confirmedLoss, now, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update confirmation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM loss_confirmations WHERE id = ?)", id).Scan(&exists); err != nil {
			return false, err
		}
		if !exists {
			return false, ErrConfirmationNotFound
		}
		return false, nil
	}
	return true, nil
}

func (s *store) ListConfirmations(gameID string) ([]LossConfirmation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT id, game_id, player_id, responded, confirmed_loss, created_at, updated_at FROM loss_confirmations WHERE game_id = ?",
		gameID,
	)
	if err != nil {
		log.Error("Failed to query confirmations", "error", err, "gameID", gameID)
		return nil, err
	}
	defer rows.Close()
	return collectConfirmations(rows)
}

func (s *store) ListPendingOlderThan(cutoff int64) ([]LossConfirmation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT id, game_id, player_id, responded, confirmed_loss, created_at, updated_at FROM loss_confirmations WHERE responded = 0 AND created_at < ?",
		cutoff,
	)
	if err != nil {
		log.Error("Failed to query pending confirmations", "error", err)
		return nil, err
	}
	defer rows.Close()
	return collectConfirmations(rows)
}

func collectConfirmations(rows *sql.Rows) ([]LossConfirmation, error) {
	var confirmations []LossConfirmation
	for rows.Next() {
		conf, err := scanConfirmation(rows)
		if err != nil {
			log.Error("Failed to scan confirmation row", "error", err)
			continue
		}
		confirmations = append(confirmations, *conf)
	}
	return confirmations, rows.Err()
}

func scanConfirmation(scanner interface{ Scan(...any) error }) (*LossConfirmation, error) {
	var conf LossConfirmation
	var confirmed sql.NullBool
	err := scanner.Scan(&conf.ID, &conf.GameID, &conf.PlayerID, &conf.Responded, &confirmed, &conf.CreatedAt, &conf.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if confirmed.Valid {
		conf.ConfirmedLoss = &confirmed.Bool
	}
	return &conf, nil
}

// Leaderboard aggregates the boards in one pass: top-5 ratings, top-3 total
// points, top-3 win percentage, top-3 two-point makes and the most recent
// finalized game's box score.
func (s *store) Leaderboard() (*Leaderboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	board := &Leaderboard{}

	rows, err := s.db.Query("SELECT id, name, phone_number, rating, wins, losses FROM players ORDER BY rating DESC LIMIT 5")
	if err != nil {
		return nil, fmt.Errorf("failed to query top ratings: %w", err)
	}
	for rows.Next() {
		var p Player
		var phone sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &phone, &p.Rating, &p.Wins, &p.Losses); err != nil {
			rows.Close()
			return nil, err
		}
		p.PhoneNumber = phone.String
		board.TopRating = append(board.TopRating, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	board.TopScorers, err = s.sumBoard("SUM(gp.total_points)")
	if err != nil {
		return nil, err
	}
	board.TopTwoPointers, err = s.sumBoard("SUM(gp.points_2)")
	if err != nil {
		return nil, err
	}

	board.TopWinPct, err = s.winPctBoard()
	if err != nil {
		return nil, err
	}

	board.LastGame, err = s.lastGameLocked()
	if err != nil {
		return nil, err
	}

	return board, nil
}

func (s *store) sumBoard(aggregate string) ([]PointsEntry, error) {
	query := fmt.Sprintf(`
		SELECT gp.player_id, p.name, %s
		FROM game_players gp
		JOIN players p ON gp.player_id = p.id
		GROUP BY gp.player_id
		ORDER BY 3 DESC
		LIMIT 3`, aggregate)
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query points board: %w", err)
	}
	defer rows.Close()

	var entries []PointsEntry
	for rows.Next() {
		var e PointsEntry
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.Points); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *store) winPctBoard() ([]WinPctEntry, error) {
	rows, err := s.db.Query("SELECT id, name, wins, losses FROM players")
	if err != nil {
		return nil, fmt.Errorf("failed to query win percentages: %w", err)
	}
	defer rows.Close()

	var entries []WinPctEntry
	for rows.Next() {
		var e WinPctEntry
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.Wins, &e.Losses); err != nil {
			return nil, err
		}
		games := e.Wins + e.Losses
		if games < 1 {
			games = 1
		}
		e.WinPct = float64(e.Wins) / float64(games)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].WinPct > entries[j].WinPct })
	if len(entries) > 3 {
		entries = entries[:3]
	}
	return entries, nil
}

func (s *store) lastGameLocked() (*GameDetail, error) {
	var g Game
	var winner sql.NullString
	err := s.db.QueryRow(
		"SELECT id, game_type, team_a_score, team_b_score, winner, finalized, created_at FROM games WHERE finalized = 1 ORDER BY created_at DESC LIMIT 1",
	).Scan(&g.ID, &g.GameType, &g.TeamAScore, &g.TeamBScore, &winner, &g.Finalized, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last game: %w", err)
	}
	g.Winner = winner.String

	parts, err := s.queryParticipants("WHERE gp.game_id = ?", g.ID)
	if err != nil {
		return nil, err
	}

	detail := &GameDetail{Game: g}
	for _, part := range parts {
		switch part.Team {
		case "A":
			detail.TeamA = append(detail.TeamA, part)
		case "B":
			detail.TeamB = append(detail.TeamB, part)
		}
	}
	return detail, nil
}

// Clear wipes every table. Test support only.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"loss_confirmations", "game_players", "games", "players"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}
