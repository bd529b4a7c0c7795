package testutil

import (
	"context"
	"sync"

	"github.com/pickstudio/chat-backend/internal/client"
)

// MockPushDispatcher records every dispatched event.
type MockPushDispatcher struct {
	mutex  sync.Mutex
	events []client.PushEvent
}

func NewMockPushDispatcher() *MockPushDispatcher {
	return &MockPushDispatcher{}
}

func (d *MockPushDispatcher) Dispatch(ctx context.Context, event client.PushEvent) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.events = append(d.events, event)
	return nil
}

func (d *MockPushDispatcher) Events() []client.PushEvent {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return append([]client.PushEvent{}, d.events...)
}
