package mq

import (
	"fmt"

	"github.com/gonzalop/mqttc/internal/packets"
)

// Subscribe registers handler for messages matching filter (which may
// contain '+' and '#' wildcards) and sends a SUBSCRIBE requesting qos. The
// handler is registered immediately, before the broker's SUBACK arrives,
// so no message published to a matching topic in the meantime is missed.
func (c *Client) Subscribe(filter string, qos QoS, handler MessageHandler) error {
	if !c.connected {
		return ErrClientDisconnected
	}
	if err := validateSubscribeTopic(filter, c.settings); err != nil {
		return err
	}

	id, err := c.nextPacketID()
	if err != nil {
		return err
	}

	pkt := &packets.SubscribePacket{
		PacketID: id,
		Topics:   []string{filter},
		QoS:      []uint8{uint8(qos)},
	}
	if err := c.writePacket(pkt); err != nil {
		return err
	}

	c.pendingSubscribes[id] = struct{}{}
	c.store.AddSubscription(&Subscription{Filter: filter, QoS: uint8(qos), Handler: handler, MessageID: id})
	return nil
}

// Unsubscribe sends an UNSUBSCRIBE for filter. The local subscription (and
// its handler) is removed once UNSUBACK confirms the broker has dropped
// it; until then, messages matching filter still reach the handler.
func (c *Client) Unsubscribe(filter string) error {
	if !c.connected {
		return ErrClientDisconnected
	}

	id, err := c.nextPacketID()
	if err != nil {
		return err
	}

	pkt := &packets.UnsubscribePacket{PacketID: id, Topics: []string{filter}}
	if _, err := pkt.WriteTo(c.transport, false); err != nil {
		return fmt.Errorf("%w: %v", ErrTxData, err)
	}
	c.lastSentAt = c.settings.Clock.Now()

	c.store.AddPendingUnsubscribe(&PendingUnsubscribe{
		PacketID: id,
		Topics:   []string{filter},
		SentAt:   c.settings.Clock.Now(),
	})
	return nil
}
