package mqtt

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/nlowe/rgbw/log"
)

// ErrNoUnmarshaler is logged by RemoteValue.ServeMQTT when the RemoteValue has no ValueUnmarshaler.
var ErrNoUnmarshaler = errors.New("no unmarshaler configured")

// RemoteValue holds a value that is populated from an MQTT subscription. It implements Handler.
type RemoteValue[T any] struct {
	topic       string
	unmarshaler ValueUnmarshaler[T]
	opts        ReadOptions

	mu sync.Mutex

	watchers map[int]func(T)
	nextID   int

	v           T
	initialized bool

	log *slog.Logger
}

// NewRemoteValue constructs a RemoteValue for topic that decodes payloads with unmarshaler using default ReadOptions.
func NewRemoteValue[T any](topic string, unmarshaler ValueUnmarshaler[T]) *RemoteValue[T] {
	return NewRemoteValueWithOptions(topic, unmarshaler, ReadOptions{})
}

// NewRemoteValueWithOptions constructs a RemoteValue for topic that decodes payloads with unmarshaler.
func NewRemoteValueWithOptions[T any](topic string, unmarshaler ValueUnmarshaler[T], opts ReadOptions) *RemoteValue[T] {
	return &RemoteValue[T]{
		topic:       topic,
		unmarshaler: unmarshaler,
		opts:        opts,

		watchers: map[int]func(T){},

		log: log.ForComponent("mqtt.value.remote").With(slog.String("topic", topic)),
	}
}

// ServeMQTT decodes payload and hands it to every watcher. Payloads that fail to decode are logged and dropped without
// calling watchers. Watchers are called after the RemoteValue is unlocked, so they may call Get.
func (v *RemoteValue[T]) ServeMQTT(_ Writer, topic string, payload []byte) {
	if v == nil {
		return
	}

	if v.unmarshaler == nil {
		v.log.With(log.Error(ErrNoUnmarshaler)).Warn("Dropping payload from mqtt")
		return
	}

	parsed, err := v.unmarshaler(payload)
	if err != nil {
		v.log.With(log.Error(err), slog.String("received_on", topic)).Warn("Failed to unmarshal payload from mqtt")
		return
	}

	v.mu.Lock()
	v.v, v.initialized = parsed, true
	watchers := make([]func(T), 0, len(v.watchers))
	for _, w := range v.watchers {
		watchers = append(watchers, w)
	}
	v.mu.Unlock()

	v.log.With(slog.Any("v", parsed), slog.Int("watchers", len(watchers))).Debug("Received new value from mqtt")
	for _, w := range watchers {
		w(parsed)
	}
}

// FullyQualifiedTopic returns the topic of this RemoteValue below prefix, or the empty string for a nil RemoteValue.
func (v *RemoteValue[T]) FullyQualifiedTopic(prefix string) string {
	if v == nil {
		return ""
	}

	return JoinTopic(prefix, v.topic)
}

// Subscription returns the Subscription needed to receive this value below prefix.
func (v *RemoteValue[T]) Subscription(prefix string) Subscription {
	return Subscription{Topic: v.FullyQualifiedTopic(prefix), Options: v.opts}
}

// Get returns the most recent value received, and false if nothing was received yet.
func (v *RemoteValue[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.v, v.initialized
}

// Watch registers callback for every new value and returns an id for Unwatch. Watchers run on the goroutine delivering
// MQTT messages and must not block.
func (v *RemoteValue[T]) Watch(callback func(T)) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextID
	v.nextID++
	v.watchers[id] = callback

	return id
}

// Unwatch removes the watcher registered under id.
func (v *RemoteValue[T]) Unwatch(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.watchers[id]; !ok {
		v.log.With(slog.Int("id", id)).Warn("Tried to remove an unknown watcher")
		return
	}

	delete(v.watchers, id)
}

// DesiredValue makes calling RemoteValue.Await on comparable remote values easier.
func DesiredValue[T comparable](want T) func(T) bool {
	return func(got T) bool {
		return want == got
	}
}

// Await blocks until a received value passes desired or ctx is done, and returns that value.
func (v *RemoteValue[T]) Await(ctx context.Context, desired func(T) bool) (T, error) {
	found := make(chan T, 1)

	id := v.Watch(func(t T) {
		if !desired(t) {
			return
		}

		select {
		case found <- t:
		default:
		}
	})
	defer v.Unwatch(id)

	if current, ok := v.Get(); ok && desired(current) {
		return current, nil
	}

	select {
	case got := <-found:
		return got, nil
	case <-ctx.Done():
		var zero T
		return zero, context.Cause(ctx)
	}
}
