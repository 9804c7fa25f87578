package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/confirmation"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/game"
	"github.com/mauv0809/courtside/internal/league"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, notif notifier.Notifier) (*Server, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := league.New(db)
	cfg := config.Config{ConfirmationTimeout: time.Hour}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	ps := pubsub.NewMock("TEST")
	machine := confirmation.New(store, metricsSvc, ps, cfg.ConfirmationTimeout)
	finalizer := game.NewFinalizer(store, machine, notif, ps, metricsSvc)
	server := NewServer(store, metricsSvc, metricsHandler, cfg, notif, finalizer, machine, ps)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
		db.Close()
	}
	return server, teardown
}

func postJSON(t *testing.T, server *Server, url string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func getRequest(t *testing.T, server *Server, url string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("GET", url, nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

// finalizeTestGame submits a 2v2 game that team A wins 8-4 and returns the
// decoded result.
func finalizeTestGame(t *testing.T, server *Server) game.Result {
	t.Helper()
	rr := postJSON(t, server, "/finalize", map[string]any{
		"game_type": "2v2",
		"team_a":    []string{"P1", "P2"},
		"team_b":    []string{"P3", "P4"},
		"scores": map[string]map[string]int{
			"P1": {"points_1": 2, "points_2": 1},
			"P2": {"points_1": 0, "points_2": 2},
			"P3": {"points_1": 1, "points_2": 0},
			"P4": {"points_1": 1, "points_2": 1},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result game.Result
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	return result
}

func TestHealthCheckHandler(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	rr := getRequest(t, server, "/health")

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestPlayersHandler(t *testing.T) {
	t.Run("adds a player", func(t *testing.T) {
		server, teardown := setupTestServer(t, notifier.NewMock())
		defer teardown()

		rr := postJSON(t, server, "/players", map[string]string{"name": "P1", "phone_number": "+15551111111"})
		require.Equal(t, http.StatusCreated, rr.Code)

		var player league.Player
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&player))
		assert.Equal(t, "P1", player.Name)
		assert.Equal(t, 1200.0, player.Rating)
	})

	t.Run("rejects a duplicate name", func(t *testing.T) {
		server, teardown := setupTestServer(t, notifier.NewMock())
		defer teardown()

		rr := postJSON(t, server, "/players", map[string]string{"name": "P1"})
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = postJSON(t, server, "/players", map[string]string{"name": "P1"})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		server, teardown := setupTestServer(t, notifier.NewMock())
		defer teardown()

		rr := postJSON(t, server, "/players", map[string]string{"name": "  "})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("lists players", func(t *testing.T) {
		server, teardown := setupTestServer(t, notifier.NewMock())
		defer teardown()

		postJSON(t, server, "/players", map[string]string{"name": "P1"})
		postJSON(t, server, "/players", map[string]string{"name": "P2"})

		rr := getRequest(t, server, "/players")
		require.Equal(t, http.StatusOK, rr.Code)

		var players []league.Player
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&players))
		assert.Len(t, players, 2)
	})
}

func TestMatchupHandler(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	rr := postJSON(t, server, "/matchup", map[string][]string{
		"team_a": {"P1", "P2"},
		"team_b": {"P3", "P4"},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]float64
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.InDelta(t, 1200, resp["team_a_avg_rating"], 1e-9)
	assert.InDelta(t, 0.5, resp["team_a_win_probability"], 1e-9, "fresh players are even odds")
	assert.InDelta(t, 0.5, resp["team_b_win_probability"], 1e-9)

	t.Run("rejects an empty roster", func(t *testing.T) {
		rr := postJSON(t, server, "/matchup", map[string][]string{"team_a": {"P1"}})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestFinalizeHandler(t *testing.T) {
	t.Run("finalizes a valid submission", func(t *testing.T) {
		server, teardown := setupTestServer(t, notifier.NewMock())
		defer teardown()

		result := finalizeTestGame(t, server)
		assert.Equal(t, "A", result.Game.Winner)
		assert.Equal(t, 8, result.Game.TeamAScore)
		assert.True(t, result.Game.Finalized)
		assert.Len(t, result.Confirmations, 2)
	})

	t.Run("rejects a bad submission", func(t *testing.T) {
		server, teardown := setupTestServer(t, notifier.NewMock())
		defer teardown()

		rr := postJSON(t, server, "/finalize", map[string]any{
			"game_type": "2v2",
			"team_a":    []string{"P1"},
			"team_b":    []string{"P3", "P4"},
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "team A")
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		server, teardown := setupTestServer(t, notifier.NewMock())
		defer teardown()

		req, err := http.NewRequest("POST", "/finalize", strings.NewReader("not json"))
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestConfirmHandler(t *testing.T) {
	t.Run("records a response", func(t *testing.T) {
		server, teardown := setupTestServer(t, notifier.NewMock())
		defer teardown()

		result := finalizeTestGame(t, server)
		require.NotEmpty(t, result.Confirmations)

		rr := postJSON(t, server, "/confirm", map[string]any{
			"confirmation_id": result.Confirmations[0].ID,
			"confirmed_loss":  true,
		})
		assert.Equal(t, http.StatusOK, rr.Code)

		conf, err := server.Store.GetConfirmation(result.Confirmations[0].ID)
		require.NoError(t, err)
		assert.True(t, conf.Responded)
	})

	t.Run("unknown confirmation is a 404", func(t *testing.T) {
		server, teardown := setupTestServer(t, notifier.NewMock())
		defer teardown()

		rr := postJSON(t, server, "/confirm", map[string]any{
			"confirmation_id": "missing",
			"confirmed_loss":  false,
		})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("missing fields are a 400", func(t *testing.T) {
		server, teardown := setupTestServer(t, notifier.NewMock())
		defer teardown()

		rr := postJSON(t, server, "/confirm", map[string]any{"confirmation_id": "x"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSweepHandler(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	rr := postJSON(t, server, "/sweep", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]int
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Zero(t, resp["forced"])
}

func TestLeaderboardHandler(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	finalizeTestGame(t, server)

	rr := getRequest(t, server, "/leaderboard")
	require.Equal(t, http.StatusOK, rr.Code)

	var board league.Leaderboard
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&board))
	assert.Len(t, board.TopRating, 4)
	require.NotNil(t, board.LastGame)
	assert.Equal(t, "A", board.LastGame.Game.Winner)
}

func TestListGamesHandler(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	result := finalizeTestGame(t, server)

	rr := getRequest(t, server, "/games")
	require.Equal(t, http.StatusOK, rr.Code)

	var games []league.Game
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&games))
	require.Len(t, games, 1)
	assert.Equal(t, result.Game.ID, games[0].ID)
}

func TestListConfirmationsHandler(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	result := finalizeTestGame(t, server)

	rr := getRequest(t, server, fmt.Sprintf("/confirmations?gameID=%s", result.Game.ID))
	require.Equal(t, http.StatusOK, rr.Code)

	var confirmations []league.LossConfirmation
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&confirmations))
	assert.Len(t, confirmations, 2)

	t.Run("missing gameID is a 400", func(t *testing.T) {
		rr := getRequest(t, server, "/confirmations")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestClearStoreHandler(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	finalizeTestGame(t, server)

	rr := getRequest(t, server, "/clear")
	require.Equal(t, http.StatusOK, rr.Code)

	players, err := server.Store.ListPlayers()
	require.NoError(t, err)
	assert.Empty(t, players)
}
