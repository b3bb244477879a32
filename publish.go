package mq

import (
	"fmt"

	"github.com/gonzalop/mqttc/internal/packets"
)

// Publish sends a message to topic. For QoS 0 the call returns once the
// packet has been written to the transport. For QoS 1 it returns once the
// PUBLISH has been written and registered as pending; the event loop
// retransmits it (with DUP set) until a PUBACK arrives.
//
// QoS 2 is not supported; passing mq.ExactlyOnce returns an error.
func (c *Client) Publish(topic string, payload []byte, qos QoS, retain bool) error {
	if !c.connected {
		return ErrClientDisconnected
	}
	if qos == ExactlyOnce {
		return fmt.Errorf("mq: QoS 2 is not supported")
	}
	if err := validatePublishTopic(topic, c.settings); err != nil {
		return err
	}
	if err := validatePayload(payload, c.settings); err != nil {
		return err
	}

	pkt := &packets.PublishPacket{
		QoS:     uint8(qos),
		Retain:  retain,
		Topic:   topic,
		Payload: payload,
	}

	if qos == AtMostOnce {
		return c.writePacket(pkt)
	}

	id, err := c.nextPacketID()
	if err != nil {
		return err
	}
	pkt.PacketID = id

	if err := c.writePacket(pkt); err != nil {
		return err
	}

	c.store.AddPendingPublish(&PendingPublish{
		PacketID: id,
		Topic:    topic,
		Payload:  payload,
		QoS:      uint8(qos),
		Retain:   retain,
		SentAt:   c.settings.Clock.Now(),
	})
	return nil
}

// Ping sends a PINGREQ outside of the event loop's own keep-alive
// schedule, e.g. to verify liveness on demand.
func (c *Client) Ping() error {
	if !c.connected {
		return ErrClientDisconnected
	}
	if err := c.writePacket(&packets.PingreqPacket{}); err != nil {
		return err
	}
	c.awaitingPingResp = true
	c.lastPingSentAt = c.settings.Clock.Now()
	return nil
}
