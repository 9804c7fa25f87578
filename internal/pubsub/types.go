package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// GameEvent is the payload published on the game topics.
type GameEvent struct {
	GameID     string `msgpack:"game_id"`
	GameType   string `msgpack:"game_type"`
	TeamAScore int    `msgpack:"team_a_score"`
	TeamBScore int    `msgpack:"team_b_score"`
	Winner     string `msgpack:"winner"`
}
