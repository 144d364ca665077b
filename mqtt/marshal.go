package mqtt

import (
	"encoding"
	"encoding/json"
	"strconv"
)

// ValueMarshaler converts values of type T to a payload for an MQTT topic.
type ValueMarshaler[T any] func(v T) ([]byte, error)

// ValueUnmarshaler converts an MQTT payload to a value of type T.
type ValueUnmarshaler[T any] func([]byte) (T, error)

var (
	StringMarshaler ValueMarshaler[string] = func(v string) ([]byte, error) {
		return []byte(v), nil
	}

	StringUnmarshaler ValueUnmarshaler[string] = func(bytes []byte) (string, error) {
		return string(bytes), nil
	}

	UintMarshaler ValueMarshaler[uint] = func(v uint) ([]byte, error) {
		return strconv.AppendUint(nil, uint64(v), 10), nil
	}

	UintUnmarshaler ValueUnmarshaler[uint] = func(bytes []byte) (uint, error) {
		v, err := strconv.ParseUint(string(bytes), 10, 0)
		return uint(v), err
	}
)

// JsonValueMarshaler returns a ValueMarshaler that encodes values of type T as json.
func JsonValueMarshaler[T any]() ValueMarshaler[T] {
	return func(v T) ([]byte, error) {
		return json.Marshal(v)
	}
}

// JsonValueUnmarshaler returns a ValueUnmarshaler that decodes json payloads into values of type T.
func JsonValueUnmarshaler[T any]() ValueUnmarshaler[T] {
	return func(bytes []byte) (T, error) {
		var v T

		return v, json.Unmarshal(bytes, &v)
	}
}

// TextValueMarshaler returns a ValueMarshaler for types implementing encoding.TextMarshaler.
func TextValueMarshaler[T encoding.TextMarshaler]() ValueMarshaler[T] {
	return func(v T) ([]byte, error) {
		return v.MarshalText()
	}
}

// TextValueUnmarshaler returns a ValueUnmarshaler for types whose pointer implements encoding.TextUnmarshaler.
func TextValueUnmarshaler[T any, PT interface {
	*T
	encoding.TextUnmarshaler
}]() ValueUnmarshaler[T] {
	return func(bytes []byte) (T, error) {
		var v T

		return v, PT(&v).UnmarshalText(bytes)
	}
}
