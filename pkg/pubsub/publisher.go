package pubsub

import "context"

// Pack is one published unit: a partitioning key and an opaque payload.
type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
}
