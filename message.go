package mq

// Message represents an MQTT message delivered to a subscription handler.
type Message struct {
	// Topic the message was published to.
	Topic string

	// Payload is the message body.
	Payload []byte

	// QoS is the delivery quality of service the message arrived with.
	QoS QoS

	// Retained reports whether the broker is holding this message as the
	// last known good value for Topic.
	Retained bool

	// Duplicate reports whether the DUP flag was set, meaning this may be
	// a redelivery of a message the client has already seen.
	Duplicate bool
}

// MessageHandler is invoked once per inbound PUBLISH that matches a
// subscription's topic filter. It runs synchronously on the event loop
// goroutine; a handler that blocks blocks the whole client.
type MessageHandler func(*Client, Message)
