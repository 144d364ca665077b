package mqtt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlowe/rgbw/colorspace"
	"github.com/nlowe/rgbw/mqtt"
)

func TestUintMarshaler(t *testing.T) {
	data, err := mqtt.UintMarshaler(4000)
	require.NoError(t, err)
	require.Equal(t, "4000", string(data))

	v, err := mqtt.UintUnmarshaler([]byte("255"))
	require.NoError(t, err)
	require.EqualValues(t, 255, v)

	_, err = mqtt.UintUnmarshaler([]byte("-1"))
	require.Error(t, err)
}

func TestJsonValueMarshaler(t *testing.T) {
	type payload struct {
		Mode  string `json:"mode"`
		Steps uint   `json:"steps"`
	}

	data, err := mqtt.JsonValueMarshaler[payload]()(payload{Mode: "hsi", Steps: 10})
	require.NoError(t, err)
	require.JSONEq(t, `{"mode":"hsi","steps":10}`, string(data))

	v, err := mqtt.JsonValueUnmarshaler[payload]()([]byte(`{"mode":"kelvin","steps":3}`))
	require.NoError(t, err)
	require.Equal(t, payload{Mode: "kelvin", Steps: 3}, v)

	_, err = mqtt.JsonValueUnmarshaler[payload]()([]byte(`{`))
	require.Error(t, err)
}

func TestTextValueMarshaler(t *testing.T) {
	data, err := mqtt.TextValueMarshaler[colorspace.RGBW]()(colorspace.RGBW{R: 1, G: 2, B: 3, W: 4})
	require.NoError(t, err)
	require.Equal(t, "1,2,3,4", string(data))

	v, err := mqtt.TextValueUnmarshaler[colorspace.RGBW]()([]byte("10,20,30,40"))
	require.NoError(t, err)
	assert.Equal(t, colorspace.RGBW{R: 10, G: 20, B: 30, W: 40}, v)

	_, err = mqtt.TextValueUnmarshaler[colorspace.RGBW]()([]byte("10,20"))
	require.ErrorIs(t, err, colorspace.ErrMalformedRGBW)
}
