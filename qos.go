package mq

// QoS represents the MQTT Quality of Service level.
type QoS uint8

// MQTT Quality of Service levels.
//
// Example:
//
//	client.Subscribe("sensors/temp", mq.AtLeastOnce, handler)
//	client.Publish("alert", data, mq.AtLeastOnce, false)
const (
	// AtMostOnce (QoS 0) - Fire and forget delivery.
	// The message is delivered at most once, or it may not be delivered at all.
	// No acknowledgment is sent by the receiver, and the message is not retried.
	AtMostOnce QoS = 0

	// AtLeastOnce (QoS 1) - Acknowledged delivery.
	// The message is always delivered at least once. The receiver sends an
	// acknowledgment (PUBACK), and the sender retries until acknowledged.
	// Duplicate messages may occur.
	AtLeastOnce QoS = 1

	// ExactlyOnce (QoS 2) would be assured delivery via a four-step
	// handshake. This client does not implement it; Publish rejects it.
	ExactlyOnce QoS = 2
)
