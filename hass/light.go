package hass

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nlowe/rgbw"
	"github.com/nlowe/rgbw/colorspace"
	"github.com/nlowe/rgbw/log"
	"github.com/nlowe/rgbw/mqtt"
)

var (
	// ErrInvalidLight is the error returned by NewLight when Config.Valid fails.
	ErrInvalidLight = errors.New("invalid light")
	// ErrUnknownEffect is the error returned for effect commands naming an effect the light does not have.
	ErrUnknownEffect = errors.New("unknown effect")
)

const (
	// DefaultMinKelvin and DefaultMaxKelvin are the color temperature range advertised when Config leaves it empty.
	DefaultMinKelvin = 2000
	DefaultMaxKelvin = 6500
	// DefaultKelvin is the white a new Light turns on with, clamped into its Kelvin range.
	DefaultKelvin = 4000
	// DefaultEffectDuration and DefaultEffectSteps are the length and resolution of the sunrise, sunset and colorloop
	// effects when Config leaves them empty.
	DefaultEffectDuration = 10 * time.Minute
	DefaultEffectSteps    = 600

	// CommandTimeout bounds how long a command from Home Assistant waits for the driver loop.
	CommandTimeout = 5 * time.Second
)

// Config describes a Light. Zero values are replaced with defaults by NewLight.
type Config struct {
	UniqueID string
	Name     string

	// TopicPrefix is prepended to every state and command topic of the light.
	TopicPrefix string
	// DiscoveryPrefix is where Home Assistant looks for discovery payloads. Defaults to DefaultPrefix.
	DiscoveryPrefix string

	Device Device
	Origin *Origin

	// The color temperature range advertised to Home Assistant. Requests outside it are clamped.
	MinKelvin uint
	MaxKelvin uint

	// Length and resolution of the sunrise, sunset and colorloop effects.
	EffectDuration time.Duration
	EffectSteps    uint
}

func (c *Config) withDefaults() {
	c.DiscoveryPrefix = cmp.Or(c.DiscoveryPrefix, DefaultPrefix)
	c.MinKelvin = cmp.Or(c.MinKelvin, DefaultMinKelvin)
	c.MaxKelvin = cmp.Or(c.MaxKelvin, DefaultMaxKelvin)
	c.EffectDuration = cmp.Or(c.EffectDuration, DefaultEffectDuration)
	c.EffectSteps = cmp.Or(c.EffectSteps, DefaultEffectSteps)

	if len(c.Device.Identifiers) == 0 && c.UniqueID != "" {
		c.Device.Identifiers = []string{c.UniqueID}
	}
}

// Valid checks that c has a UniqueID and TopicPrefix and an ordered Kelvin range.
func (c Config) Valid() error {
	var errs []error
	if c.UniqueID == "" {
		errs = append(errs, errors.New("unique id is required"))
	}

	if c.TopicPrefix == "" {
		errs = append(errs, errors.New("topic prefix is required"))
	}

	if c.MinKelvin > c.MaxKelvin {
		errs = append(errs, fmt.Errorf("min kelvin %d is above max kelvin %d", c.MinKelvin, c.MaxKelvin))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLight, err)
	}

	return nil
}

// lightState is what Home Assistant believes the light is doing. It is only changed on the driver loop goroutine.
type lightState struct {
	on         bool
	brightness uint8
	mode       ColorMode

	rgbw   colorspace.RGBW
	hs     HueSat
	kelvin uint

	effect Effect
	// the effect to go back to once an alert pulse finishes
	interrupted Effect
}

// Light is a Home Assistant MQTT light backed by the Driver of a rgbw.Loop.
type Light struct {
	cfg  Config
	loop *rgbw.Loop

	availability *mqtt.Value[Availability]

	state   *mqtt.Value[PowerState]
	command *mqtt.RemoteValue[PowerState]

	brightness        *mqtt.Value[uint]
	brightnessCommand *mqtt.RemoteValue[uint]

	colorMode *mqtt.Value[ColorMode]

	rgbw        *mqtt.Value[colorspace.RGBW]
	rgbwCommand *mqtt.RemoteValue[colorspace.RGBW]

	hs        *mqtt.Value[HueSat]
	hsCommand *mqtt.RemoteValue[HueSat]

	colorTemp        *mqtt.Value[uint]
	colorTempCommand *mqtt.RemoteValue[uint]

	effect        *mqtt.Value[Effect]
	effectCommand *mqtt.RemoteValue[Effect]

	mu sync.Mutex
	s  lightState

	ctx context.Context
	w   mqtt.Writer

	log *slog.Logger
}

// NewLight constructs a Light for cfg that drives loop. The light starts off, remembering a DefaultKelvin white at full
// brightness for the first ON command.
func NewLight(cfg Config, loop *rgbw.Loop) (*Light, error) {
	cfg.withDefaults()
	if err := cfg.Valid(); err != nil {
		return nil, err
	}

	state := mqtt.WriteOptions{Retain: true}
	command := mqtt.ReadOptions{IgnoreRetained: true}

	l := &Light{
		cfg:  cfg,
		loop: loop,

		availability: mqtt.NewValueWithOptions(availabilityTopic, AvailabilityMarshaler, state),

		state:   mqtt.NewValueWithOptions("state", PowerStateMarshaler, state),
		command: mqtt.NewRemoteValueWithOptions("set", PowerStateUnmarshaler, command),

		brightness:        mqtt.NewValueWithOptions("brightness", mqtt.UintMarshaler, state),
		brightnessCommand: mqtt.NewRemoteValueWithOptions(mqtt.JoinTopic("brightness", "set"), mqtt.UintUnmarshaler, command),

		colorMode: mqtt.NewValueWithOptions("color_mode", ColorModeMarshaler, state),

		rgbw:        mqtt.NewValueWithOptions("rgbw", RGBWMarshaler, state),
		rgbwCommand: mqtt.NewRemoteValueWithOptions(mqtt.JoinTopic("rgbw", "set"), RGBWUnmarshaler, command),

		hs:        mqtt.NewValueWithOptions("hs", HueSatMarshaler, state),
		hsCommand: mqtt.NewRemoteValueWithOptions(mqtt.JoinTopic("hs", "set"), HueSatUnmarshaler, command),

		colorTemp:        mqtt.NewValueWithOptions("color_temp", mqtt.UintMarshaler, state),
		colorTempCommand: mqtt.NewRemoteValueWithOptions(mqtt.JoinTopic("color_temp", "set"), mqtt.UintUnmarshaler, command),

		effect:        mqtt.NewValueWithOptions("effect", EffectMarshaler, state),
		effectCommand: mqtt.NewRemoteValueWithOptions(mqtt.JoinTopic("effect", "set"), EffectUnmarshaler, command),

		s: lightState{
			brightness: 255,
			mode:       ColorModeTemperature,
			rgbw:       colorspace.RGBW{R: 255, G: 255, B: 255, W: 255},
			kelvin:     min(max(DefaultKelvin, cfg.MinKelvin), cfg.MaxKelvin),
			effect:     EffectNone,
		},

		ctx: context.Background(),

		log: log.ForComponent("hass.light").With(slog.String("unique_id", cfg.UniqueID)),
	}

	loop.AfterTick(l.afterTick)
	return l, nil
}

const availabilityTopic = "available"

// AvailabilityTopic is the topic a light below topicPrefix publishes its Availability to. The daemon needs it for the
// MQTT last will before the Light exists.
func AvailabilityTopic(topicPrefix string) string {
	return mqtt.JoinTopic(topicPrefix, availabilityTopic)
}

// AvailabilityTopic is the topic the light publishes its Availability to.
func (l *Light) AvailabilityTopic() string {
	return l.availability.FullyQualifiedTopic(l.cfg.TopicPrefix)
}

// SetAvailability publishes a.
func (l *Light) SetAvailability(ctx context.Context, w mqtt.Writer, a Availability) error {
	return mqtt.Error(l.availability.Write(ctx, w, l.cfg.TopicPrefix, a))
}

// Subscribe starts handling commands from Home Assistant. State changes caused by commands are published with w. ctx
// bounds every command and state update, so cancel it only when shutting down.
func (l *Light) Subscribe(ctx context.Context, w mqtt.Writer, s mqtt.Subscriber) error {
	l.mu.Lock()
	l.ctx, l.w = ctx, w
	l.mu.Unlock()

	l.command.Watch(func(p PowerState) {
		if p == PowerStateOn {
			l.handle("power", l.turnOn)
		} else {
			l.handle("power", l.turnOff)
		}
	})

	l.brightnessCommand.Watch(func(v uint) {
		l.handle("brightness", func(d *rgbw.Driver, s *lightState) error {
			return l.setBrightness(d, s, v)
		})
	})

	l.rgbwCommand.Watch(func(c colorspace.RGBW) {
		l.handle("rgbw", func(d *rgbw.Driver, s *lightState) error {
			s.rgbw = c
			return l.setColor(d, s, ColorModeRGBW)
		})
	})

	l.hsCommand.Watch(func(hs HueSat) {
		l.handle("hs", func(d *rgbw.Driver, s *lightState) error {
			s.hs = hs
			return l.setColor(d, s, ColorModeHueSat)
		})
	})

	l.colorTempCommand.Watch(func(k uint) {
		l.handle("color_temp", func(d *rgbw.Driver, s *lightState) error {
			s.kelvin = min(max(k, l.cfg.MinKelvin), l.cfg.MaxKelvin)
			return l.setColor(d, s, ColorModeTemperature)
		})
	})

	l.effectCommand.Watch(func(e Effect) {
		l.handle("effect", func(d *rgbw.Driver, s *lightState) error {
			return l.startEffect(d, s, e)
		})
	})

	return errors.Join(
		s.Subscribe(ctx, l.command, l.command.Subscription(l.cfg.TopicPrefix)),
		s.Subscribe(ctx, l.brightnessCommand, l.brightnessCommand.Subscription(l.cfg.TopicPrefix)),
		s.Subscribe(ctx, l.rgbwCommand, l.rgbwCommand.Subscription(l.cfg.TopicPrefix)),
		s.Subscribe(ctx, l.hsCommand, l.hsCommand.Subscription(l.cfg.TopicPrefix)),
		s.Subscribe(ctx, l.colorTempCommand, l.colorTempCommand.Subscription(l.cfg.TopicPrefix)),
		s.Subscribe(ctx, l.effectCommand, l.effectCommand.Subscription(l.cfg.TopicPrefix)),
	)
}

func (l *Light) session() (context.Context, mqtt.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.ctx, l.w
}

// handle runs fn on the driver loop and publishes the resulting state. It is called from MQTT handlers and blocks until
// the loop has run fn.
func (l *Light) handle(command string, fn func(*rgbw.Driver, *lightState) error) {
	ctx, w := l.session()
	logger := l.log.With(slog.String("command", command))

	doCtx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()

	err := l.loop.Do(doCtx, func(d *rgbw.Driver) error {
		l.mu.Lock()
		defer l.mu.Unlock()

		return fn(d, &l.s)
	})

	if err != nil {
		logger.With(log.Error(err)).Warn("Failed to apply command from Home Assistant")
		return
	}

	logger.Debug("Applied command from Home Assistant")
	if err = l.Publish(ctx, w); err != nil {
		logger.With(log.Error(err)).Error("Failed to publish light state")
	}
}

// Publish writes the current state of every attribute of the light.
func (l *Light) Publish(ctx context.Context, w mqtt.Writer) error {
	l.mu.Lock()
	s := l.s
	l.mu.Unlock()

	p := l.cfg.TopicPrefix
	return errors.Join(
		mqtt.Error(l.state.Write(ctx, w, p, PowerStateOf(s.on))),
		mqtt.Error(l.brightness.Write(ctx, w, p, uint(s.brightness))),
		mqtt.Error(l.colorMode.Write(ctx, w, p, s.mode)),
		mqtt.Error(l.rgbw.Write(ctx, w, p, s.rgbw)),
		mqtt.Error(l.hs.Write(ctx, w, p, s.hs)),
		mqtt.Error(l.colorTemp.Write(ctx, w, p, s.kelvin)),
		mqtt.Error(l.effect.Write(ctx, w, p, s.effect)),
	)
}

// DiscoveryTopic is the topic Configure publishes the device discovery payload to.
func (l *Light) DiscoveryTopic() string {
	return mqtt.JoinTopic(l.cfg.DiscoveryPrefix, "device", IDSanitizer.Replace(l.cfg.UniqueID), "config")
}

// Configure publishes the device discovery payload for the light. Home Assistant needs it again whenever it restarts.
func (l *Light) Configure(ctx context.Context, w mqtt.Writer) error {
	p := l.cfg.TopicPrefix

	payload := devicePayload{
		Device: l.cfg.Device,
		Origin: *cmp.Or(l.cfg.Origin, &DefaultOrigin),
		Components: map[string]lightComponent{
			l.cfg.UniqueID: {
				Platform: "light",
				Name:     l.cfg.Name,
				UniqueID: l.cfg.UniqueID,
				Icon:     "mdi:led-strip-variant",

				AvailabilityTopic: l.availability.FullyQualifiedTopic(p),

				StateTopic:   l.state.FullyQualifiedTopic(p),
				CommandTopic: l.command.FullyQualifiedTopic(p),

				BrightnessStateTopic:   l.brightness.FullyQualifiedTopic(p),
				BrightnessCommandTopic: l.brightnessCommand.FullyQualifiedTopic(p),
				BrightnessScale:        255,

				ColorModeStateTopic: l.colorMode.FullyQualifiedTopic(p),
				SupportedColorModes: []ColorMode{ColorModeRGBW, ColorModeHueSat, ColorModeTemperature},

				RGBWStateTopic:   l.rgbw.FullyQualifiedTopic(p),
				RGBWCommandTopic: l.rgbwCommand.FullyQualifiedTopic(p),

				HueSatStateTopic:   l.hs.FullyQualifiedTopic(p),
				HueSatCommandTopic: l.hsCommand.FullyQualifiedTopic(p),

				ColorTemperatureStateTopic:   l.colorTemp.FullyQualifiedTopic(p),
				ColorTemperatureCommandTopic: l.colorTempCommand.FullyQualifiedTopic(p),
				ColorTemperatureInKelvin:     true,
				MinKelvin:                    l.cfg.MinKelvin,
				MaxKelvin:                    l.cfg.MaxKelvin,

				EffectStateTopic:   l.effect.FullyQualifiedTopic(p),
				EffectCommandTopic: l.effectCommand.FullyQualifiedTopic(p),
				EffectList:         Effects,

				Retain: false,
			},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("configure: marshal discovery payload: %w", err)
	}

	l.log.With(slog.String("topic", l.DiscoveryTopic())).Info("Publishing discovery payload")
	return w.WriteTopic(ctx, l.DiscoveryTopic(), mqtt.WriteOptions{Retain: true}, data)
}

// applyColor writes the remembered color in the remembered mode, or turns the channels off.
func (l *Light) applyColor(d *rgbw.Driver, s *lightState) {
	if !s.on {
		d.WriteRGBW(colorspace.RGBW{})
		return
	}

	d.SetIntensity(s.brightness)
	switch s.mode {
	case ColorModeRGBW:
		d.SetRGBW(s.rgbw)
	case ColorModeHueSat:
		d.SetHSI(s.hs.HSI(255))
	default:
		d.SetKelvin(colorspace.Kelvin{Temperature: float64(s.kelvin), Intensity: 255})
	}
}

func (l *Light) turnOn(d *rgbw.Driver, s *lightState) error {
	s.on = true
	if !d.IsFading() {
		l.applyColor(d, s)
	}

	return nil
}

func (l *Light) turnOff(d *rgbw.Driver, s *lightState) error {
	s.on = false
	s.effect, s.interrupted = EffectNone, ""

	d.Stop()
	l.applyColor(d, s)
	return nil
}

func (l *Light) setBrightness(d *rgbw.Driver, s *lightState, v uint) error {
	s.brightness = uint8(min(v, 255))
	s.on = true

	d.SetIntensity(s.brightness)
	if !d.IsFading() {
		l.applyColor(d, s)
	}

	return nil
}

func (l *Light) setColor(d *rgbw.Driver, s *lightState, mode ColorMode) error {
	l.stopEffect(d, s)

	s.mode = mode
	s.on = true
	l.applyColor(d, s)
	return nil
}
