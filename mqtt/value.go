package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nlowe/rgbw/log"
)

var (
	// ErrNoMarshaler is the error returned by Value.Write when the Value has no ValueMarshaler.
	ErrNoMarshaler = errors.New("no marshaler configured")
	// ErrNeverWritten is the error returned by Value.Republish when Value.Write was never called successfully.
	ErrNeverWritten = errors.New("value was never written")
)

// Value holds a value that is published to an MQTT topic below some prefix.
type Value[T any] struct {
	topic string

	marshaler ValueMarshaler[T]
	opts      WriteOptions

	mu sync.Mutex

	v           T
	initialized bool

	log *slog.Logger
}

// NewValue constructs a Value for topic that encodes with marshal and publishes with default WriteOptions.
func NewValue[T any](topic string, marshal ValueMarshaler[T]) *Value[T] {
	return NewValueWithOptions(topic, marshal, WriteOptions{})
}

// NewValueWithOptions constructs a Value for topic that encodes with marshal and publishes with opts.
func NewValueWithOptions[T any](topic string, marshal ValueMarshaler[T], opts WriteOptions) *Value[T] {
	return &Value[T]{
		topic:     topic,
		marshaler: marshal,
		opts:      opts,

		log: log.ForComponent("mqtt.value").With(slog.String("topic", topic)),
	}
}

// FullyQualifiedTopic returns the topic of this Value below prefix, or the empty string for a nil Value.
func (v *Value[T]) FullyQualifiedTopic(prefix string) string {
	if v == nil {
		return ""
	}

	return JoinTopic(prefix, v.topic)
}

// Get returns the last value passed to a successful Write, and false if there was none.
func (v *Value[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.v, v.initialized
}

// Write encodes newValue and publishes it. The held value is updated once encoding succeeds, even if publishing fails,
// so a later Republish retries the same payload.
func (v *Value[T]) Write(ctx context.Context, w Writer, prefix string, newValue T) (T, error) {
	if v.marshaler == nil {
		return newValue, ErrNoMarshaler
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := v.marshaler(newValue)
	if err != nil {
		return v.v, fmt.Errorf("marshal %+v: %w", newValue, err)
	}

	v.v, v.initialized = newValue, true
	return v.v, w.WriteTopic(ctx, JoinTopic(prefix, v.topic), v.opts, data)
}

// Republish publishes the held value again. It returns ErrNeverWritten if Write never succeeded.
func (v *Value[T]) Republish(ctx context.Context, w Writer, prefix string) (T, error) {
	current, ok := v.Get()
	if !ok {
		return current, ErrNeverWritten
	}

	return v.Write(ctx, w, prefix, current)
}
