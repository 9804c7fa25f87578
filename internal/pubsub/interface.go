package pubsub

// Topics published by the core workflows.
const (
	TopicGameFinalized = "game-finalized"
	TopicGameSettled   = "game-settled"
)

// PubSubClient publishes workflow events for downstream consumers.
type PubSubClient interface {
	SendMessage(topic string, data any) error
	ProcessMessage(data []byte, returnValue any) error
}
