package main

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

type seedPlayer struct {
	id   string
	name string
	team string
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	// Create 4 dummy players to fill two teams
	dummyPlayers := []seedPlayer{
		{id: "player-1", name: "Seeder Player A", team: "A"},
		{id: "player-2", name: "Seeder Player B", team: "A"},
		{id: "player-3", name: "Seeder Player C", team: "B"},
		{id: "player-4", name: "Seeder Player D", team: "B"},
	}

	for _, p := range dummyPlayers {
		_, err := db.Exec("INSERT OR IGNORE INTO players (id, name, rating) VALUES (?, ?, ?)", p.id, p.name, 1200.0)
		if err != nil {
			log.Fatalf("Failed to insert dummy player %s: %s", p.name, err)
		}
	}
	log.Info("Ensured dummy players exist.")

	const batchSize = 100 // Insert 100 games at a time
	const numGames = 10000

	log.Info("Preparing to insert dummy games...", "total", numGames, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	gameValues := make([]string, 0, batchSize)
	gameArgs := make([]interface{}, 0, batchSize*7)
	partValues := make([]string, 0, batchSize*4)
	partArgs := make([]interface{}, 0, batchSize*4*6)

	flush := func(completed int) {
		gameStmt := fmt.Sprintf(`
			INSERT INTO games (id, game_type, team_a_score, team_b_score, winner, finalized, created_at)
			VALUES %s;`, strings.Join(gameValues, ","))
		if _, err := tx.Exec(gameStmt, gameArgs...); err != nil {
			tx.Rollback()
			log.Fatalf("Failed to execute game batch insert: %s", err)
		}

		partStmt := fmt.Sprintf(`
			INSERT INTO game_players (game_id, player_id, team, points_1, points_2, total_points)
			VALUES %s;`, strings.Join(partValues, ","))
		if _, err := tx.Exec(partStmt, partArgs...); err != nil {
			tx.Rollback()
			log.Fatalf("Failed to execute participant batch insert: %s", err)
		}

		gameValues = gameValues[:0]
		gameArgs = gameArgs[:0]
		partValues = partValues[:0]
		partArgs = partArgs[:0]
		log.Info("Inserted batch", "completed", completed, "total", numGames)
	}

	for i := 0; i < numGames; i++ {
		gameID := uuid.NewString()
		gameTime := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)

		totals := map[string]int{"A": 0, "B": 0}
		lines := make([][3]int, len(dummyPlayers))
		for j, p := range dummyPlayers {
			points1 := rand.Intn(6)
			points2 := rand.Intn(4)
			total := points1 + 2*points2
			lines[j] = [3]int{points1, points2, total}
			totals[p.team] += total
		}
		winner := "B"
		if totals["A"] > totals["B"] {
			winner = "A"
		}

		gameValues = append(gameValues, "(?, ?, ?, ?, ?, ?, ?)")
		gameArgs = append(gameArgs, gameID, "2v2", totals["A"], totals["B"], winner, 1, gameTime.Unix())

		for j, p := range dummyPlayers {
			partValues = append(partValues, "(?, ?, ?, ?, ?, ?)")
			partArgs = append(partArgs, gameID, p.id, p.team, lines[j][0], lines[j][1], lines[j][2])
		}

		if (i+1)%batchSize == 0 || (i+1) == numGames {
			flush(i + 1)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy games.", "duration", duration)
}
