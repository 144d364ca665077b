package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nlowe/rgbw"
	"github.com/nlowe/rgbw/colorspace"
	"github.com/nlowe/rgbw/log"
	"github.com/nlowe/rgbw/mqtt"
)

// DefaultPublishTimeout bounds how long MQTT.Emit waits for a publish.
const DefaultPublishTimeout = 2 * time.Second

// MQTT publishes channel values as "r,g,b,w" to a topic, for LED controllers that take their duty cycles over MQTT.
// Emit only publishes when the channels changed, since a running fade emits on every tick.
type MQTT struct {
	ctx    context.Context
	w      mqtt.Writer
	prefix string

	value   *mqtt.Value[colorspace.RGBW]
	timeout time.Duration

	mu     sync.Mutex
	failed bool

	log *slog.Logger
}

var _ rgbw.Sink = &MQTT{}

// NewMQTT constructs an MQTT sink publishing to topic below prefix through w. Publishes are made with ctx, bounded by
// DefaultPublishTimeout.
func NewMQTT(ctx context.Context, w mqtt.Writer, prefix, topic string, opts mqtt.WriteOptions) *MQTT {
	return &MQTT{
		ctx:    ctx,
		w:      w,
		prefix: prefix,

		value:   mqtt.NewValueWithOptions(topic, mqtt.TextValueMarshaler[colorspace.RGBW](), opts),
		timeout: DefaultPublishTimeout,

		log: log.ForComponent("sink.mqtt").With(slog.String("topic", mqtt.JoinTopic(prefix, topic))),
	}
}

func (m *MQTT) Emit(c colorspace.RGBW) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if last, ok := m.value.Get(); ok && !m.failed && last == c {
		return
	}

	ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
	defer cancel()

	_, err := m.value.Write(ctx, m.w, m.prefix, c)
	m.failed = err != nil
	if err != nil {
		m.log.With(log.Error(err), slog.Any("color", c)).Error("Failed to publish channels")
	}
}

// Topic returns the fully qualified topic channels are published to.
func (m *MQTT) Topic() string {
	return m.value.FullyQualifiedTopic(m.prefix)
}
