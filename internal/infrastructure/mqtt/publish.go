package mqtt

import (
	"fmt"
	"strings"
)

// Publish sends a message to the specified MQTT topic.
//
// Parameters:
//   - topic: The topic to publish to (e.g., "homie/rflink-gateway/serial01/rawmsg")
//   - payload: The message payload, at most mqtt.max_payload_size bytes
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// Retained Messages:
//   - Use for state topics (publish mode, device $state)
//   - Don't use for sensor records or errors
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure.
//     Oversized payloads fail with both ErrPublishFailed and ErrPayloadTooLarge.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := c.validatePublish(topic, payload, qos); err != nil {
		return err
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// validatePublish checks a publication against protocol and size limits.
func (c *Client) validatePublish(topic string, payload []byte, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	// Device names received over the air may contain anything; a wildcard in
	// a publish topic would be rejected by the broker with a disconnect.
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("%w: wildcard in publish topic %q", ErrInvalidTopic, topic)
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}

	limit := c.maxPayload
	if limit <= 0 {
		limit = defaultMaxPayloadSize
	}
	if len(payload) > limit {
		return fmt.Errorf("%w: %w: %d exceeds maximum %d bytes", ErrPublishFailed, ErrPayloadTooLarge, len(payload), limit)
	}

	return nil
}

// PublishString is a convenience method that publishes a string payload.
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

// PublishRetained publishes a retained message with the configured default QoS.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}

// QoS returns the configured default QoS level.
func (c *Client) QoS() byte {
	return byte(c.cfg.QoS)
}
