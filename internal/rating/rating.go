// Package rating implements the Elo-style skill model used after every
// finalized game. Ratings start at 1200 and move by a delta scaled with the
// player's share of their team's points, so two teammates on the same
// winning team do not get identical adjustments.
package rating

import "math"

const (
	// DefaultRating is the rating assigned to newly created players.
	DefaultRating = 1200.0

	// KFactor is the canonical rating sensitivity. Earlier revisions of the
	// app used 20 in one code path and 32 in another; 32 is the documented
	// choice and is applied uniformly.
	KFactor = 32.0
)

// ExpectedOutcome returns the probability in (0,1) that a player with
// subjectRating beats an opponent with opponentRating, using the standard
// logistic curve with a 400-point scale.
func ExpectedOutcome(subjectRating, opponentRating float64) float64 {
	return 1 / (1 + math.Pow(10, (opponentRating-subjectRating)/400))
}

// Delta returns the rating adjustment for one player.
//
// actual is 1.0 for a win and 0.0 for a loss. contribution is the player's
// share of their team's total points in [0,1]; it apportions the team
// result across teammates by how much each scored.
func Delta(k, actual, expected, contribution float64) float64 {
	return k * (actual - expected) * contribution
}

// TeamAverage returns the mean of the given ratings, or DefaultRating for
// an empty team.
func TeamAverage(ratings []float64) float64 {
	if len(ratings) == 0 {
		return DefaultRating
	}
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}

// WinProbability returns the chance that a team with average rating avgA
// beats a team with average rating avgB. Used by the matchup preview.
func WinProbability(avgA, avgB float64) float64 {
	return ExpectedOutcome(avgA, avgB)
}
