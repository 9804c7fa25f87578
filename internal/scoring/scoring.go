// Package scoring derives team totals, winners and per-player contribution
// fractions from a raw score submission.
package scoring

// Team labels as stored on game and participant rows.
const (
	TeamA = "A"
	TeamB = "B"
)

// ScoreLine is one player's raw point tallies: counts of 1-point and
// 2-point scoring events.
type ScoreLine struct {
	Points1 int `json:"points_1"`
	Points2 int `json:"points_2"`
}

// TotalPoints converts a score line into points: points_1 + 2*points_2.
func TotalPoints(line ScoreLine) int {
	return line.Points1 + 2*line.Points2
}

// TeamTotal sums TotalPoints over the players in roster. Players present in
// scores but absent from the roster are ignored so nothing is counted twice.
func TeamTotal(scores map[string]ScoreLine, roster []string) int {
	total := 0
	for _, name := range roster {
		if line, ok := scores[name]; ok {
			total += TotalPoints(line)
		}
	}
	return total
}

// ContributionFraction returns the player's share of their team's points in
// [0,1]. A zero team total is floored to 1 so a scoreless team yields a
// fraction of 0 rather than a division by zero.
func ContributionFraction(playerTotal, teamTotal int) float64 {
	if teamTotal < 1 {
		teamTotal = 1
	}
	return float64(playerTotal) / float64(teamTotal)
}

// Winner decides the game from team totals. Team A wins only on a strictly
// greater total; a tie is awarded to team B. The tie rule is deliberate and
// matches the historical behavior of the app.
func Winner(teamATotal, teamBTotal int) string {
	if teamATotal > teamBTotal {
		return TeamA
	}
	return TeamB
}

// Loser is the complement of Winner, used when picking the team whose
// players are asked to confirm the loss.
func Loser(teamATotal, teamBTotal int) string {
	if Winner(teamATotal, teamBTotal) == TeamA {
		return TeamB
	}
	return TeamA
}
