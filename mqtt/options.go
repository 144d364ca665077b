package mqtt

import (
	"fmt"
	"log/slog"
)

// QualityOfService determines what level of guarantee the broker should provide when delivering messages. It implements
// fmt.Stringer and slog.LogValuer.
type QualityOfService uint8

const (
	// QOSAtMostOnce offers "fire and forget" messaging with no acknowledgment from the receiver. This is the default.
	QOSAtMostOnce QualityOfService = iota
	// QOSAtLeastOnce ensures that messages are delivered at least once by requiring a PUBACK acknowledgment.
	QOSAtLeastOnce
	// QOSExactlyOnce guarantees that each message is delivered exactly once.
	QOSExactlyOnce
)

func (q QualityOfService) String() string {
	switch q {
	case QOSAtMostOnce:
		return "at most once (0)"
	case QOSAtLeastOnce:
		return "at least once (1)"
	case QOSExactlyOnce:
		return "exactly once (2)"
	default:
		return fmt.Sprintf("invalid (%d)", uint8(q))
	}
}

func (q QualityOfService) LogValue() slog.Value {
	return slog.StringValue(q.String())
}

// WriteOptions holds options for writing to MQTT. The zero value publishes with QoS 0 and no retain. It implements
// slog.LogValuer.
type WriteOptions struct {
	QoS QualityOfService

	// Retain instructs the broker to keep the last message for the topic and hand it to new subscribers.
	Retain bool
}

func (w WriteOptions) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("qos", w.QoS),
		slog.Bool("retain", w.Retain),
	)
}

// ReadOptions holds options for MQTT subscriptions. The zero value subscribes with QoS 0 and has the broker send
// retained messages on every subscribe. It implements slog.LogValuer.
type ReadOptions struct {
	// QoS is the maximum Quality of Service this client accepts for the subscription.
	QoS QualityOfService

	// NoLocal asks the broker not to forward messages back to the client that published them.
	NoLocal bool

	// IgnoreRetained asks the broker not to send retained messages when the subscription is made. Light commands use
	// this so a stale retained command doesn't replay on every reconnect.
	IgnoreRetained bool
}

func (r ReadOptions) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("qos", r.QoS),
		slog.Bool("no_local", r.NoLocal),
		slog.Bool("ignore_retained", r.IgnoreRetained),
	)
}
