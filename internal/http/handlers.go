package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/game"
	"github.com/mauv0809/courtside/internal/league"
	"github.com/mauv0809/courtside/internal/rating"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

// PlayersHandler registers a player on POST and lists all players on GET.
func (s *Server) PlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req struct {
				Name        string `json:"name"`
				PhoneNumber string `json:"phone_number"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid JSON", http.StatusBadRequest)
				return
			}
			if strings.TrimSpace(req.Name) == "" {
				http.Error(w, "Player name is required", http.StatusBadRequest)
				return
			}

			player, err := s.Store.AddPlayer(req.Name, req.PhoneNumber)
			if errors.Is(err, league.ErrPlayerExists) {
				http.Error(w, "Player already exists", http.StatusConflict)
				return
			}
			if err != nil {
				log.Error("Failed to add player", "error", err, "name", req.Name)
				http.Error(w, "Failed to add player", http.StatusInternalServerError)
				return
			}

			log.Info("Added player", "playerID", player.ID, "name", player.Name)
			respondJSON(w, http.StatusCreated, player)

		case http.MethodGet:
			players, err := s.Store.ListPlayers()
			if err != nil {
				log.Error("Failed to get players from store", "error", err)
				http.Error(w, "Failed to get players", http.StatusInternalServerError)
				return
			}
			respondJSON(w, http.StatusOK, players)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// MatchupHandler previews a matchup: it get-or-creates the named players and
// returns each side's average rating and win probability.
func (s *Server) MatchupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TeamA []string `json:"team_a"`
			TeamB []string `json:"team_b"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if len(req.TeamA) == 0 || len(req.TeamB) == 0 {
			http.Error(w, "Both teams need at least one player", http.StatusBadRequest)
			return
		}

		loadTeam := func(roster []string) ([]float64, error) {
			ratings := make([]float64, 0, len(roster))
			for _, name := range roster {
				if strings.TrimSpace(name) == "" {
					continue
				}
				player, err := s.Store.GetOrCreatePlayer(name, "")
				if err != nil {
					return nil, err
				}
				ratings = append(ratings, player.Rating)
			}
			return ratings, nil
		}

		ratingsA, err := loadTeam(req.TeamA)
		if err != nil {
			log.Error("Failed to load team A", "error", err)
			http.Error(w, "Failed to load players", http.StatusInternalServerError)
			return
		}
		ratingsB, err := loadTeam(req.TeamB)
		if err != nil {
			log.Error("Failed to load team B", "error", err)
			http.Error(w, "Failed to load players", http.StatusInternalServerError)
			return
		}

		avgA := rating.TeamAverage(ratingsA)
		avgB := rating.TeamAverage(ratingsB)
		probA := rating.WinProbability(avgA, avgB)

		respondJSON(w, http.StatusOK, map[string]float64{
			"team_a_avg_rating":      avgA,
			"team_b_avg_rating":      avgB,
			"team_a_win_probability": probA,
			"team_b_win_probability": 1 - probA,
		})
	}
}

// FinalizeHandler accepts a score submission and runs the full finalize
// pipeline.
func (s *Server) FinalizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)

		var sub game.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		result, err := s.Finalizer.Finalize(sub, isDryRun)
		if errors.Is(err, game.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			log.Error("Failed to finalize game", "error", err)
			http.Error(w, "Failed to finalize game", http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

// ConfirmHandler records one player's answer to a loss confirmation.
func (s *Server) ConfirmHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)

		var req struct {
			ConfirmationID string `json:"confirmation_id"`
			ConfirmedLoss  *bool  `json:"confirmed_loss"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.ConfirmationID == "" || req.ConfirmedLoss == nil {
			http.Error(w, "confirmation_id and confirmed_loss are required", http.StatusBadRequest)
			return
		}

		err := s.Machine.RecordResponse(req.ConfirmationID, *req.ConfirmedLoss, isDryRun)
		if errors.Is(err, league.ErrConfirmationNotFound) {
			http.Error(w, "Confirmation not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("Failed to record confirmation response", "error", err)
			http.Error(w, "Failed to record response", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

// SweepHandler is the timeout sweep's entry point, hit on a fixed schedule
// by the external cron.
func (s *Server) SweepHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting confirmation sweep...")
		isDryRun := isDryRunFromContext(r)

		forced, err := s.Machine.SweepTimeouts(isDryRun)
		if err != nil {
			log.Error("Failed to sweep confirmations", "error", err)
			http.Error(w, "Failed to sweep confirmations", http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, map[string]int{"forced": forced})
		log.Info("Confirmation sweep finished.", "forced", forced)
	}
}

// LeaderboardHandler serves the aggregated leaderboard.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := s.Store.Leaderboard()
		if err != nil {
			log.Error("Failed to get leaderboard from store", "error", err)
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, board)
	}
}

func (s *Server) ListGamesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := s.Store.ListGames()
		if err != nil {
			log.Error("Failed to get games from store", "error", err)
			http.Error(w, "Failed to get games", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, games)
	}
}

func (s *Server) ListConfirmationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("gameID")
		if gameID == "" {
			http.Error(w, "gameID is required", http.StatusBadRequest)
			return
		}

		confirmations, err := s.Store.ListConfirmations(gameID)
		if err != nil {
			log.Error("Failed to get confirmations from store", "error", err, "gameID", gameID)
			http.Error(w, "Failed to get confirmations", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, confirmations)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}
