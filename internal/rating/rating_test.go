package rating_test

import (
	"testing"

	"github.com/mauv0809/courtside/internal/rating"
	"github.com/stretchr/testify/assert"
)

func TestExpectedOutcome(t *testing.T) {
	t.Run("equal ratings give even odds", func(t *testing.T) {
		assert.InDelta(t, 0.5, rating.ExpectedOutcome(1200, 1200), 1e-9)
	})

	t.Run("400 point edge gives roughly 10 to 1 odds", func(t *testing.T) {
		p := rating.ExpectedOutcome(1600, 1200)
		assert.InDelta(t, 10.0/11.0, p, 1e-9)
	})

	t.Run("probabilities are complementary", func(t *testing.T) {
		pairs := [][2]float64{
			{1200, 1200},
			{1500, 1100},
			{900, 1750},
			{1234.5, 1432.1},
		}
		for _, pair := range pairs {
			sum := rating.ExpectedOutcome(pair[0], pair[1]) + rating.ExpectedOutcome(pair[1], pair[0])
			assert.InDelta(t, 1.0, sum, 1e-9, "Ra=%v Rb=%v", pair[0], pair[1])
		}
	})

	t.Run("stays strictly inside (0,1)", func(t *testing.T) {
		p := rating.ExpectedOutcome(100, 3000)
		assert.Greater(t, p, 0.0)
		assert.Less(t, p, 1.0)
	})
}

func TestDelta(t *testing.T) {
	t.Run("winner gains and loser loses", func(t *testing.T) {
		win := rating.Delta(rating.KFactor, 1.0, 0.5, 1.0)
		loss := rating.Delta(rating.KFactor, 0.0, 0.5, 1.0)
		assert.Equal(t, 16.0, win)
		assert.Equal(t, -16.0, loss)
	})

	t.Run("contribution scales the delta", func(t *testing.T) {
		full := rating.Delta(rating.KFactor, 1.0, 0.25, 1.0)
		half := rating.Delta(rating.KFactor, 1.0, 0.25, 0.5)
		assert.InDelta(t, full/2, half, 1e-9)
	})

	t.Run("zero contribution means no movement", func(t *testing.T) {
		assert.Zero(t, rating.Delta(rating.KFactor, 1.0, 0.1, 0.0))
	})
}

func TestTeamAverage(t *testing.T) {
	assert.Equal(t, rating.DefaultRating, rating.TeamAverage(nil))
	assert.Equal(t, 1300.0, rating.TeamAverage([]float64{1200, 1400}))
}

func TestWinProbability(t *testing.T) {
	pA := rating.WinProbability(1300, 1200)
	pB := rating.WinProbability(1200, 1300)
	assert.Greater(t, pA, 0.5)
	assert.InDelta(t, 1.0, pA+pB, 1e-9)
}
