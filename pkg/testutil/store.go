package testutil

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"github.com/fatih/structs"

	"github.com/pickstudio/chat-backend/pkg/pubsub"
	"github.com/pickstudio/chat-backend/pkg/xredis"
)

// InMemoryStore is a stateful stand-in for the redis client. Hashes, sets,
// and the publish/subscribe topics all live in process memory, which lets
// domain tests run against real state without a redis server.
type InMemoryStore struct {
	mutex       sync.Mutex
	hashes      map[string]map[string]string
	sets        map[string]map[string]bool
	subscribers map[string][]*inMemorySubscription
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		hashes:      map[string]map[string]string{},
		sets:        map[string]map[string]bool{},
		subscribers: map[string][]*inMemorySubscription{},
	}
}

func (s *InMemoryStore) Exist(ctx context.Context, key string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.hashes[key]) > 0 || len(s.sets[key]) > 0 {
		return true, nil
	}

	return false, nil
}

func (s *InMemoryStore) Del(ctx context.Context, key ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, k := range key {
		delete(s.hashes, k)
		delete(s.sets, k)
	}

	return nil
}

func (s *InMemoryStore) HSet(ctx context.Context, key, field, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.hashes[key] == nil {
		s.hashes[key] = map[string]string{}
	}
	s.hashes[key][field] = value

	return nil
}

func (s *InMemoryStore) HSetObj(ctx context.Context, key string, obj any) error {
	st := structs.New(obj)
	st.TagName = "redis"

	for field, value := range st.Map() {
		if err := s.HSet(ctx, key, field, fmt.Sprint(value)); err != nil {
			return err
		}
	}

	return nil
}

func (s *InMemoryStore) HGet(ctx context.Context, key, field string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	value, ok := s.hashes[key][field]
	if !ok {
		return "", xredis.ErrNil
	}

	return value, nil
}

func (s *InMemoryStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result := map[string]string{}
	for field, value := range s.hashes[key] {
		result[field] = value
	}

	return result, nil
}

func (s *InMemoryStore) HGetObj(ctx context.Context, key string, obj any) (bool, error) {
	fields, err := s.HGetAll(ctx, key)
	if err != nil {
		return false, err
	}

	if len(fields) == 0 {
		return false, nil
	}

	value := reflect.ValueOf(obj).Elem()
	t := value.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("redis")
		raw, ok := fields[tag]
		if !ok {
			continue
		}

		field := value.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(raw)
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return false, err
			}
			field.SetInt(n)
		}
	}

	return true, nil
}

func (s *InMemoryStore) HKeys(ctx context.Context, key string) ([]string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	keys := []string{}
	for field := range s.hashes[key] {
		keys = append(keys, field)
	}

	return keys, nil
}

func (s *InMemoryStore) SAdd(ctx context.Context, key string, members ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.sets[key] == nil {
		s.sets[key] = map[string]bool{}
	}
	for _, m := range members {
		s.sets[key][m] = true
	}

	return nil
}

func (s *InMemoryStore) SRem(ctx context.Context, key string, members ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, m := range members {
		delete(s.sets[key], m)
	}

	return nil
}

func (s *InMemoryStore) SMembers(ctx context.Context, key string) ([]string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	members := []string{}
	for m := range s.sets[key] {
		members = append(members, m)
	}

	return members, nil
}

func (s *InMemoryStore) Publish(ctx context.Context, topic string, payload []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, sub := range s.subscribers[topic] {
		sub.deliver(payload)
	}

	return nil
}

func (s *InMemoryStore) Subscribe(ctx context.Context, topic string) (pubsub.Subscription, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sub := &inMemorySubscription{
		store: s,
		topic: topic,
		ch:    make(chan []byte, 128),
	}
	s.subscribers[topic] = append(s.subscribers[topic], sub)

	return sub, nil
}

func (s *InMemoryStore) Close() error {
	return nil
}

func (s *InMemoryStore) unsubscribe(sub *inMemorySubscription) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	subs := s.subscribers[sub.topic]
	for i, candidate := range subs {
		if candidate == sub {
			s.subscribers[sub.topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}

type inMemorySubscription struct {
	store     *InMemoryStore
	topic     string
	ch        chan []byte
	closeOnce sync.Once
}

func (s *inMemorySubscription) C() <-chan []byte {
	return s.ch
}

func (s *inMemorySubscription) Close() error {
	s.store.unsubscribe(s)
	s.closeOnce.Do(func() { close(s.ch) })
	return nil
}

func (s *inMemorySubscription) deliver(payload []byte) {
	select {
	case s.ch <- payload:
	default:
	}
}
