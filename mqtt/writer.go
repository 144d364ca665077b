package mqtt

import "context"

// Writer is the minimum abstraction around publishing to MQTT.
type Writer interface {
	// WriteTopic publishes value to topic with options.
	WriteTopic(ctx context.Context, topic string, options WriteOptions, value []byte) error
}

// Error discards the value returned by Value.Write, keeping just the error. Handy with errors.Join.
func Error[T any](_ T, err error) error {
	return err
}
