// Package config loads the YAML configuration of rgbwd.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"slices"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/nlowe/rgbw/hass"
	"github.com/nlowe/rgbw/log"
	"github.com/nlowe/rgbw/mqtt"
)

// ErrUnknownSink is the error returned by Config.Validate when sink.kind is not one of the SinkKind constants.
var ErrUnknownSink = errors.New("unknown sink kind")

// SinkKind selects where channel values go.
type SinkKind string

const (
	// SinkPWM drives four GPIO pins with hardware PWM.
	SinkPWM SinkKind = "pwm"
	// SinkMQTT publishes "r,g,b,w" to an MQTT topic.
	SinkMQTT SinkKind = "mqtt"
	// SinkPreview draws the channels in the terminal.
	SinkPreview SinkKind = "preview"
)

// Config is the root of the configuration file.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	Light  LightConfig  `yaml:"light"`
	Driver DriverConfig `yaml:"driver"`
	Sink   SinkConfig   `yaml:"sink"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

type MQTTConfig struct {
	Broker    string `yaml:"broker"`
	ClientID  string `yaml:"client_id"` // rgbwd-<uuid> when empty
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	KeepAlive uint16 `yaml:"keep_alive"` // seconds
}

// BrokerURL parses Broker.
func (c MQTTConfig) BrokerURL() (*url.URL, error) {
	u, err := url.Parse(c.Broker)
	if err != nil {
		return nil, fmt.Errorf("mqtt.broker: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("mqtt.broker: %q must look like mqtt://host:port", c.Broker)
	}

	return u, nil
}

type LightConfig struct {
	UniqueID        string      `yaml:"unique_id"`
	Name            string      `yaml:"name"`
	TopicPrefix     string      `yaml:"topic_prefix"`
	DiscoveryPrefix string      `yaml:"discovery_prefix"`
	MinKelvin       uint        `yaml:"min_kelvin"`
	MaxKelvin       uint        `yaml:"max_kelvin"`
	Device          hass.Device `yaml:"device"`
}

type DriverConfig struct {
	TickInterval   Duration `yaml:"tick_interval"`
	EffectDuration Duration `yaml:"effect_duration"`
	EffectSteps    uint     `yaml:"effect_steps"`
}

type SinkConfig struct {
	Kind SinkKind `yaml:"kind"`

	// pwm
	Pins        []string `yaml:"pins"` // R, G, B, W
	FrequencyHz int64    `yaml:"frequency_hz"`

	// mqtt, relative to light.topic_prefix
	Topic string `yaml:"topic"`
}

// Duration is a time.Duration written as a string like "20ms" or "10m" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads the file at path and parses it with Parse.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

// Parse expands ${VAR} and ${VAR:default} references in data, decodes it, fills in defaults and validates the
// result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &cfg); err != nil {
		return nil, err
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = "mqtt://localhost:1883"
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "rgbwd-" + uuid.NewString()
	}
	if c.MQTT.KeepAlive == 0 {
		c.MQTT.KeepAlive = 20
	}

	if c.Light.UniqueID == "" {
		c.Light.UniqueID = "rgbw"
	}
	if c.Light.Name == "" {
		c.Light.Name = "RGBW"
	}
	if c.Light.TopicPrefix == "" {
		c.Light.TopicPrefix = mqtt.JoinTopic("rgbw", hass.IDSanitizer.Replace(c.Light.UniqueID))
	}
	if c.Light.DiscoveryPrefix == "" {
		c.Light.DiscoveryPrefix = hass.DefaultPrefix
	}
	if c.Light.MinKelvin == 0 {
		c.Light.MinKelvin = hass.DefaultMinKelvin
	}
	if c.Light.MaxKelvin == 0 {
		c.Light.MaxKelvin = hass.DefaultMaxKelvin
	}

	if c.Driver.TickInterval == 0 {
		c.Driver.TickInterval = Duration(20 * time.Millisecond)
	}
	if c.Driver.EffectDuration == 0 {
		c.Driver.EffectDuration = Duration(hass.DefaultEffectDuration)
	}
	if c.Driver.EffectSteps == 0 {
		c.Driver.EffectSteps = hass.DefaultEffectSteps
	}

	if c.Sink.Kind == "" {
		c.Sink.Kind = SinkPWM
	}
	if c.Sink.Kind == SinkPWM && len(c.Sink.Pins) == 0 {
		c.Sink.Pins = []string{"GPIO17", "GPIO27", "GPIO22", "GPIO23"}
	}
	if c.Sink.FrequencyHz == 0 {
		c.Sink.FrequencyHz = 1000
	}
	if c.Sink.Topic == "" {
		c.Sink.Topic = "channels"
	}
}

// Validate reports every problem with c at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if !slices.Contains([]string{"text", "json"}, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	if _, err := c.MQTT.BrokerURL(); err != nil {
		errs = append(errs, err)
	}

	if c.Light.MinKelvin > c.Light.MaxKelvin {
		errs = append(errs, fmt.Errorf("light: min_kelvin %d is above max_kelvin %d", c.Light.MinKelvin, c.Light.MaxKelvin))
	}

	if c.Driver.TickInterval <= 0 {
		errs = append(errs, errors.New("driver.tick_interval must be positive"))
	}

	switch c.Sink.Kind {
	case SinkPWM:
		if len(c.Sink.Pins) != 4 {
			errs = append(errs, fmt.Errorf("sink.pins: need 4 pins (r, g, b, w), got %d", len(c.Sink.Pins)))
		}
		if c.Sink.FrequencyHz <= 0 {
			errs = append(errs, errors.New("sink.frequency_hz must be positive"))
		}
	case SinkMQTT, SinkPreview:
	default:
		errs = append(errs, fmt.Errorf("sink.kind: %w %q", ErrUnknownSink, c.Sink.Kind))
	}

	return errors.Join(errs...)
}

// Hass builds the hass.Config for the light section.
func (c *Config) Hass() hass.Config {
	return hass.Config{
		UniqueID:        c.Light.UniqueID,
		Name:            c.Light.Name,
		TopicPrefix:     c.Light.TopicPrefix,
		DiscoveryPrefix: c.Light.DiscoveryPrefix,
		Device:          c.Light.Device,
		MinKelvin:       c.Light.MinKelvin,
		MaxKelvin:       c.Light.MaxKelvin,
		EffectDuration:  c.Driver.EffectDuration.Duration(),
		EffectSteps:     c.Driver.EffectSteps,
	}
}

var envVar = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:default}. Unset or empty variables expand to the default, or nothing.
func expandEnvVars(input string) string {
	return envVar.ReplaceAllStringFunc(input, func(match string) string {
		parts := envVar.FindStringSubmatch(match)

		if val := os.Getenv(parts[1]); val != "" {
			return val
		}

		return parts[2]
	})
}
