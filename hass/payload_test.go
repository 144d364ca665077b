package hass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlowe/rgbw/colorspace"
)

func TestHueSatText(t *testing.T) {
	t.Run("Marshal", func(t *testing.T) {
		b, err := HueSat{Hue: 30.5, Saturation: 100}.MarshalText()
		require.NoError(t, err)
		require.Equal(t, "30.5,100", string(b))
	})

	for _, tt := range []struct {
		text    string
		want    HueSat
		wantErr bool
	}{
		{text: "30.5,100", want: HueSat{Hue: 30.5, Saturation: 100}},
		{text: "0.0, 42.25", want: HueSat{Hue: 0, Saturation: 42.25}},
		{text: "300", wantErr: true},
		{text: "a,1", wantErr: true},
		{text: "1,b", wantErr: true},
		{text: "NaN,50", wantErr: true},
		{text: "+Inf,50", wantErr: true},
		{text: "120,-Inf", wantErr: true},
		{text: "120,nan", wantErr: true},
	} {
		t.Run(tt.text, func(t *testing.T) {
			var got HueSat
			err := got.UnmarshalText([]byte(tt.text))

			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedHueSat)
				require.Equal(t, HueSat{}, got, "should not change on error")
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestHueSatHSI(t *testing.T) {
	assert.Equal(t, colorspace.HSI{Hue: 120, Saturation: 0.5, Intensity: 200}, HueSat{Hue: 120, Saturation: 50}.HSI(200))
	assert.Equal(t, 1.0, HueSat{Saturation: 150}.HSI(255).Saturation)
	assert.Equal(t, 0.0, HueSat{Saturation: -3}.HSI(255).Saturation)
}

func TestPowerStateUnmarshaler(t *testing.T) {
	v, err := PowerStateUnmarshaler([]byte("ON"))
	require.NoError(t, err)
	require.Equal(t, PowerStateOn, v)

	v, err = PowerStateUnmarshaler([]byte("OFF"))
	require.NoError(t, err)
	require.Equal(t, PowerStateOff, v)

	_, err = PowerStateUnmarshaler([]byte("on"))
	require.Error(t, err)
}
