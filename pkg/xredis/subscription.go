package xredis

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

type subscription struct {
	ps        *redis.PubSub
	ch        chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (s *subscription) C() <-chan []byte {
	return s.ch
}

// Close unsubscribes from the topic. The drain goroutine observes the closed
// PubSub and closes the event channel. Safe to call more than once.
func (s *subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})

	return err
}

func (s *subscription) drain() {
	defer close(s.ch)

	for msg := range s.ps.Channel() {
		if !s.deliver([]byte(msg.Payload)) {
			return
		}
	}
}

// deliver hands one payload to the subscriber. The subscriber may have
// closed without draining every event, so the send gives up on Close
// instead of blocking forever.
func (s *subscription) deliver(payload []byte) bool {
	select {
	case s.ch <- payload:
		return true
	case <-s.done:
		return false
	}
}
