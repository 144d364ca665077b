package hass

import (
	"strings"

	"github.com/nlowe/rgbw/mqtt"
)

const (
	// DefaultPrefix is the topic prefix Home Assistant looks for discovery payloads under.
	DefaultPrefix = "homeassistant"
	// StatusTopic is the topic below the discovery prefix that Home Assistant publishes its own Availability to.
	StatusTopic = "status"

	// IDSep replaces characters that are not allowed in discovery topic ids.
	IDSep = "__"
)

// IDSanitizer makes an id safe to use as a single discovery topic level.
var IDSanitizer = strings.NewReplacer(
	" ", IDSep,
	":", IDSep,
	".", IDSep,
	"!", IDSep,
	"?", IDSep,
	"#", IDSep,
	"+", IDSep,
	mqtt.TopicSeparator, IDSep,
)

// HomeAssistantAvailability constructs a mqtt.RemoteValue for Home Assistant's status topic. Watch it to learn when
// Home Assistant restarts and needs discovery payloads again.
//
// See https://www.home-assistant.io/integrations/mqtt/#birth-and-last-will-messages.
func HomeAssistantAvailability(discoveryPrefix string) *mqtt.RemoteValue[Availability] {
	return mqtt.NewRemoteValue(mqtt.JoinTopic(discoveryPrefix, StatusTopic), AvailabilityUnmarshaler)
}

// Origin describes the software publishing the discovery payload.
type Origin struct {
	Name            string `json:"name"`
	SoftwareVersion string `json:"sw,omitempty"`
	SupportURL      string `json:"url,omitempty"`
}

// DefaultOrigin is used when a Device has no Origin.
var DefaultOrigin = Origin{
	Name:            "rgbw",
	SoftwareVersion: "master",
	SupportURL:      "https://github.com/nlowe/rgbw",
}

// Device is the Home Assistant device the light entity belongs to. At least one identifier is required.
type Device struct {
	Name            string   `json:"name,omitempty" yaml:"name"`
	Manufacturer    string   `json:"mf,omitempty" yaml:"manufacturer"`
	Model           string   `json:"mdl,omitempty" yaml:"model"`
	SoftwareVersion string   `json:"sw,omitempty" yaml:"sw_version"`
	SuggestedArea   string   `json:"sa,omitempty" yaml:"suggested_area"`
	Identifiers     []string `json:"ids,omitempty" yaml:"identifiers"`
}

// lightComponent is a light entity in a device discovery payload, using Home Assistant's abbreviated keys.
type lightComponent struct {
	Platform string `json:"p"`
	Name     string `json:"name,omitempty"`
	UniqueID string `json:"uniq_id"`
	Icon     string `json:"ic,omitempty"`

	AvailabilityTopic string `json:"avty_t"`

	StateTopic   string `json:"stat_t"`
	CommandTopic string `json:"cmd_t"`

	BrightnessStateTopic   string `json:"bri_stat_t"`
	BrightnessCommandTopic string `json:"bri_cmd_t"`
	BrightnessScale        uint   `json:"bri_scl"`

	ColorModeStateTopic string      `json:"clrm_stat_t"`
	SupportedColorModes []ColorMode `json:"sup_clrm"`

	RGBWStateTopic   string `json:"rgbw_stat_t"`
	RGBWCommandTopic string `json:"rgbw_cmd_t"`

	HueSatStateTopic   string `json:"hs_stat_t"`
	HueSatCommandTopic string `json:"hs_cmd_t"`

	ColorTemperatureStateTopic   string `json:"clr_temp_stat_t"`
	ColorTemperatureCommandTopic string `json:"clr_temp_cmd_t"`
	ColorTemperatureInKelvin     bool   `json:"clr_temp_k"`
	MinKelvin                    uint   `json:"min_k"`
	MaxKelvin                    uint   `json:"max_k"`

	EffectStateTopic   string   `json:"fx_stat_t"`
	EffectCommandTopic string   `json:"fx_cmd_t"`
	EffectList         []Effect `json:"fx_list"`

	Retain bool `json:"ret"`
}

type devicePayload struct {
	Device     Device                    `json:"dev"`
	Origin     Origin                    `json:"o"`
	Components map[string]lightComponent `json:"cmps"`
}
