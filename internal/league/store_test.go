package league_test

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/league"
	"github.com/mauv0809/courtside/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (league.LeagueStore, *sql.DB, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := league.New(db)
	return store, db, dbTeardown
}

func TestAddPlayer(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	p, err := store.AddPlayer("Jesus", "+15551234567")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, rating.DefaultRating, p.Rating)

	_, err = store.AddPlayer("Jesus", "")
	assert.ErrorIs(t, err, league.ErrPlayerExists)

	got, err := store.GetPlayerByName("Jesus")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "+15551234567", got.PhoneNumber)

	_, err = store.GetPlayerByName("Nobody")
	assert.ErrorIs(t, err, league.ErrPlayerNotFound)
}

func TestGetOrCreatePlayer(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	first, err := store.GetOrCreatePlayer("Marco", "")
	require.NoError(t, err)
	assert.Equal(t, rating.DefaultRating, first.Rating)

	second, err := store.GetOrCreatePlayer("Marco", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "second lookup should return the existing player")

	players, err := store.ListPlayers()
	require.NoError(t, err)
	assert.Len(t, players, 1)
}

func seedFinalizedGame(t *testing.T, store league.LeagueStore) (league.Game, map[string]league.Player) {
	t.Helper()

	players := make(map[string]league.Player)
	for _, name := range []string{"P1", "P2", "P3", "P4"} {
		p, err := store.GetOrCreatePlayer(name, "")
		require.NoError(t, err)
		players[name] = p
	}

	game, err := store.CreateGame("2v2")
	require.NoError(t, err)

	result := league.FinalizedGame{
		GameID:     game.ID,
		TeamAScore: 8,
		TeamBScore: 4,
		Winner:     "A",
		Participants: []league.Participant{
			{GameID: game.ID, PlayerID: players["P1"].ID, Team: "A", Points1: 2, Points2: 1, TotalPoints: 4},
			{GameID: game.ID, PlayerID: players["P2"].ID, Team: "A", Points1: 0, Points2: 2, TotalPoints: 4},
			{GameID: game.ID, PlayerID: players["P3"].ID, Team: "B", Points1: 1, Points2: 0, TotalPoints: 1},
			{GameID: game.ID, PlayerID: players["P4"].ID, Team: "B", Points1: 1, Points2: 1, TotalPoints: 3},
		},
		NewRatings: map[string]float64{
			players["P1"].ID: 1208,
			players["P2"].ID: 1208,
			players["P3"].ID: 1196,
			players["P4"].ID: 1188,
		},
	}
	require.NoError(t, store.SaveFinalization(result))
	return game, players
}

func TestSaveFinalization(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	game, players := seedFinalizedGame(t, store)

	got, err := store.GetGame(game.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.TeamAScore)
	assert.Equal(t, 4, got.TeamBScore)
	assert.Equal(t, "A", got.Winner)
	assert.False(t, got.Finalized, "finalized flag belongs to the settlement, not the finalization write")

	parts, err := store.ListParticipants(game.ID)
	require.NoError(t, err)
	assert.Len(t, parts, 4)

	teamB, err := store.ListTeamParticipants(game.ID, "B")
	require.NoError(t, err)
	assert.Len(t, teamB, 2)

	p1, err := store.GetPlayer(players["P1"].ID)
	require.NoError(t, err)
	assert.Equal(t, 1208.0, p1.Rating)

	t.Run("unknown game is rejected", func(t *testing.T) {
		err := store.SaveFinalization(league.FinalizedGame{GameID: "missing"})
		assert.ErrorIs(t, err, league.ErrGameNotFound)
	})
}

func TestApplySettlement(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	game, players := seedFinalizedGame(t, store)

	applied, err := store.ApplySettlement(game.ID, "A")
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := store.GetGame(game.ID)
	require.NoError(t, err)
	assert.True(t, got.Finalized)

	p1, err := store.GetPlayer(players["P1"].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p1.Wins)
	assert.Equal(t, 0, p1.Losses)

	p3, err := store.GetPlayer(players["P3"].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p3.Wins)
	assert.Equal(t, 1, p3.Losses)

	t.Run("re-settling an already finalized game is a no-op", func(t *testing.T) {
		applied, err := store.ApplySettlement(game.ID, "A")
		require.NoError(t, err)
		assert.False(t, applied)

		p1, err := store.GetPlayer(players["P1"].ID)
		require.NoError(t, err)
		assert.Equal(t, 1, p1.Wins, "win counter must not double-increment")
	})

	t.Run("unknown game", func(t *testing.T) {
		_, err := store.ApplySettlement("missing", "A")
		assert.ErrorIs(t, err, league.ErrGameNotFound)
	})
}

// A manual confirmation can race the timeout sweep: both paths try to settle
// the same game. The finalized-flag compare-and-swap must let exactly one
// settlement through.
func TestApplySettlementRace(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	game, players := seedFinalizedGame(t, store)

	const attempts = 8
	results := make([]bool, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			applied, err := store.ApplySettlement(game.ID, "A")
			assert.NoError(t, err)
			results[i] = applied
		}(i)
	}
	wg.Wait()

	appliedCount := 0
	for _, applied := range results {
		if applied {
			appliedCount++
		}
	}
	assert.Equal(t, 1, appliedCount, "exactly one settlement should win the race")

	p1, err := store.GetPlayer(players["P1"].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p1.Wins)
	p4, err := store.GetPlayer(players["P4"].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p4.Losses)
}

func TestConfirmations(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	game, players := seedFinalizedGame(t, store)
	now := time.Now().Unix()

	confs, err := store.CreateConfirmations(game.ID, []string{players["P3"].ID, players["P4"].ID}, now)
	require.NoError(t, err)
	require.Len(t, confs, 2)

	got, err := store.GetConfirmation(confs[0].ID)
	require.NoError(t, err)
	assert.False(t, got.Responded)
	assert.Nil(t, got.ConfirmedLoss, "unanswered confirmation must have no verdict")

	t.Run("response transitions once", func(t *testing.T) {
		applied, err := store.RecordConfirmationResponse(confs[0].ID, true, now+10)
		require.NoError(t, err)
		assert.True(t, applied)

		got, err := store.GetConfirmation(confs[0].ID)
		require.NoError(t, err)
		assert.True(t, got.Responded)
		require.NotNil(t, got.ConfirmedLoss)
		assert.True(t, *got.ConfirmedLoss)
		assert.Equal(t, now+10, got.UpdatedAt)

		// A second response must not overwrite the first.
		applied, err = store.RecordConfirmationResponse(confs[0].ID, false, now+20)
		require.NoError(t, err)
		assert.False(t, applied)

		got, err = store.GetConfirmation(confs[0].ID)
		require.NoError(t, err)
		assert.True(t, *got.ConfirmedLoss)
	})

	t.Run("unknown confirmation", func(t *testing.T) {
		_, err := store.RecordConfirmationResponse("missing", true, now)
		assert.ErrorIs(t, err, league.ErrConfirmationNotFound)
	})

	t.Run("pending selection respects the cutoff", func(t *testing.T) {
		pending, err := store.ListPendingOlderThan(now + 1)
		require.NoError(t, err)
		require.Len(t, pending, 1, "only the unanswered confirmation is pending")
		assert.Equal(t, confs[1].ID, pending[0].ID)

		pending, err = store.ListPendingOlderThan(now - 100)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("force confirm", func(t *testing.T) {
		applied, err := store.ForceConfirm(confs[1].ID, now+3600)
		require.NoError(t, err)
		assert.True(t, applied)

		got, err := store.GetConfirmation(confs[1].ID)
		require.NoError(t, err)
		assert.True(t, got.Responded)
		require.NotNil(t, got.ConfirmedLoss)
		assert.True(t, *got.ConfirmedLoss)
	})

	all, err := store.ListConfirmations(game.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLeaderboard(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	game, players := seedFinalizedGame(t, store)
	_, err := store.ApplySettlement(game.ID, "A")
	require.NoError(t, err)

	board, err := store.Leaderboard()
	require.NoError(t, err)

	require.NotEmpty(t, board.TopRating)
	assert.Equal(t, 1208.0, board.TopRating[0].Rating)

	require.NotEmpty(t, board.TopScorers)
	assert.Equal(t, 4, board.TopScorers[0].Points)

	require.Len(t, board.TopWinPct, 3)
	assert.Equal(t, 1.0, board.TopWinPct[0].WinPct)

	require.NotEmpty(t, board.TopTwoPointers)
	assert.Equal(t, players["P2"].ID, board.TopTwoPointers[0].PlayerID)

	require.NotNil(t, board.LastGame)
	assert.Equal(t, game.ID, board.LastGame.Game.ID)
	assert.Len(t, board.LastGame.TeamA, 2)
	assert.Len(t, board.LastGame.TeamB, 2)
}

func TestClear(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	seedFinalizedGame(t, store)
	store.Clear()

	players, err := store.ListPlayers()
	require.NoError(t, err)
	assert.Empty(t, players)

	games, err := store.ListGames()
	require.NoError(t, err)
	assert.Empty(t, games)
}
