package pubsub

import "context"

// Subscription is one live subscription to a topic. C yields payloads in
// publish order and is closed when the subscription ends, either by Close or
// by a broker-side failure.
type Subscription interface {
	C() <-chan []byte
	Close() error
}

// Broker is a topic-keyed fan-out bus. Every payload published to a topic is
// delivered once to every subscription open on that topic at publish time.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}
