package mqtt

import (
	"strings"

	"github.com/piotrC4/mqtt-rflink-bridge/internal/infrastructure/config"
)

// Homie device attributes published by the gateway.
const (
	attrState  = "$state"
	attrName   = "$name"
	attrHealth = "$health"

	// setSuffix marks a settable property (Homie convention).
	setSuffix = "set"
)

// Device lifecycle states published on the $state attribute.
const (
	StateReady        = "ready"
	StateDisconnected = "disconnected"
	StateLost         = "lost"
)

// Topics builds MQTT topics for one gateway.
//
// The layout follows the Homie convention used by the RFLink gateway
// firmware:
//
//	topics := mqtt.NewTopics(cfg.Gateway)
//	topics.Property("rawmsg")      // homie/rflink-gateway/serial01/rawmsg
//	topics.PropertySet("to-send")  // homie/rflink-gateway/serial01/to-send/set
//	topics.DeviceState()           // homie/rflink-gateway/$state
type Topics struct {
	base   string
	device string
	node   string
}

// NewTopics returns the topic builder for a gateway configuration.
func NewTopics(gw config.GatewayConfig) Topics {
	return Topics{
		base:   strings.Trim(gw.BaseTopic, "/"),
		device: gw.ID,
		node:   gw.Node,
	}
}

// Device returns the device root topic.
//
// Example: homie/rflink-gateway
func (t Topics) Device() string {
	return join(t.base, t.device)
}

// Node returns the node root topic under which all properties live.
//
// Example: homie/rflink-gateway/serial01
func (t Topics) Node() string {
	return join(t.base, t.device, t.node)
}

// Property returns the topic of a node property. The property may itself
// contain '/' separators (e.g. a device tag followed by its ID).
//
// Example: homie/rflink-gateway/serial01/Oregon TempHygro/2D1
func (t Topics) Property(name string) string {
	return join(t.Node(), name)
}

// PropertySet returns the command topic of a settable node property.
//
// Example: homie/rflink-gateway/serial01/publish-mode/set
func (t Topics) PropertySet(name string) string {
	return join(t.Node(), name, setSuffix)
}

// DeviceState returns the device lifecycle topic used for the LWT.
//
// Example: homie/rflink-gateway/$state
func (t Topics) DeviceState() string {
	return join(t.Device(), attrState)
}

// DeviceName returns the human-readable device name topic.
//
// Example: homie/rflink-gateway/$name
func (t Topics) DeviceName() string {
	return join(t.Device(), attrName)
}

// Health returns the topic for periodic health reports.
//
// Example: homie/rflink-gateway/$health
func (t Topics) Health() string {
	return join(t.Device(), attrHealth)
}

// join concatenates topic levels, skipping empty ones so an empty base
// topic does not produce a leading '/'.
func join(levels ...string) string {
	parts := make([]string, 0, len(levels))
	for _, l := range levels {
		if l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, "/")
}
