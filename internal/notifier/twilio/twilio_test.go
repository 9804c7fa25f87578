package twilio

import (
	"errors"
	"testing"

	"github.com/mauv0809/courtside/internal/league"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeAPI struct {
	calls []openapi.CreateMessageParams
	errs  []error
}

func (f *fakeAPI) CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	f.calls = append(f.calls, *params)
	if len(f.errs) >= len(f.calls) {
		return nil, f.errs[len(f.calls)-1]
	}
	return &openapi.ApiV2010Message{}, nil
}

func testGame() *league.Game {
	return &league.Game{ID: "g1", GameType: "2v2", TeamAScore: 8, TeamBScore: 4, Winner: "A"}
}

func TestSendLossNotifications(t *testing.T) {
	t.Run("sends a formatted summary to each loser with a phone", func(t *testing.T) {
		api := &fakeAPI{}
		n := NewNotifierWithAPI(api, "+15550000000", metrics.NewMock())

		losers := []league.ParticipantDetail{
			{Participant: league.Participant{TotalPoints: 1}, PlayerName: "P3", PhoneNumber: "+15551111111"},
			{Participant: league.Participant{TotalPoints: 3}, PlayerName: "P4", PhoneNumber: "+15552222222"},
		}
		n.SendLossNotifications(testGame(), losers, false)

		require.Len(t, api.calls, 2)
		assert.Equal(t, "+15551111111", *api.calls[0].To)
		assert.Equal(t, "+15550000000", *api.calls[0].From)
		assert.Equal(t, "Hey P3, tough game! Final Score: Team A 8 - Team B 4. Your total: 1 pts.", *api.calls[0].Body)
	})

	t.Run("one failed delivery does not block the next recipient", func(t *testing.T) {
		api := &fakeAPI{errs: []error{errors.New("undeliverable"), nil}}
		metr := metrics.NewMock()
		n := NewNotifierWithAPI(api, "+15550000000", metr)

		losers := []league.ParticipantDetail{
			{PlayerName: "P3", PhoneNumber: "+15551111111"},
			{PlayerName: "P4", PhoneNumber: "+15552222222"},
		}
		n.SendLossNotifications(testGame(), losers, false)

		require.Len(t, api.calls, 2, "second recipient must still be attempted")
		assert.Equal(t, 1, metr.SmsFailedCount)
		assert.Equal(t, 1, metr.SmsSentCount)
	})

	t.Run("players without a phone number are skipped", func(t *testing.T) {
		api := &fakeAPI{}
		n := NewNotifierWithAPI(api, "+15550000000", metrics.NewMock())

		losers := []league.ParticipantDetail{
			{PlayerName: "P3"},
			{PlayerName: "P4", PhoneNumber: "+15552222222"},
		}
		n.SendLossNotifications(testGame(), losers, false)

		require.Len(t, api.calls, 1)
		assert.Equal(t, "+15552222222", *api.calls[0].To)
	})

	t.Run("never texts more than two players", func(t *testing.T) {
		api := &fakeAPI{}
		n := NewNotifierWithAPI(api, "+15550000000", metrics.NewMock())

		losers := []league.ParticipantDetail{
			{PlayerName: "P1", PhoneNumber: "+15551111111"},
			{PlayerName: "P2", PhoneNumber: "+15552222222"},
			{PlayerName: "P3", PhoneNumber: "+15553333333"},
		}
		n.SendLossNotifications(testGame(), losers, false)

		assert.Len(t, api.calls, 2)
	})

	t.Run("dry run sends nothing", func(t *testing.T) {
		api := &fakeAPI{}
		n := NewNotifierWithAPI(api, "+15550000000", metrics.NewMock())

		losers := []league.ParticipantDetail{{PlayerName: "P3", PhoneNumber: "+15551111111"}}
		n.SendLossNotifications(testGame(), losers, true)

		assert.Empty(t, api.calls)
	})
}
