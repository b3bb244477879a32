package mq

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/gonzalop/mqttc/internal/packets"
)

// Loop drives the client's event loop until step returns a fatal error.
// When allowSleep is true, an iteration that found no work to do sleeps
// briefly before trying again, so a caller running Loop on its own
// goroutine doesn't spin the CPU. When allowSleep is false, Loop polls
// continuously without sleeping. In both cases Loop returns only with an
// error.
func (c *Client) Loop(allowSleep bool) error {
	for {
		didWork, err := c.step()
		if err != nil {
			c.connected = false
			return err
		}
		if !didWork && allowSleep {
			time.Sleep(100 * time.Millisecond)
		}
	}
}

// step runs one iteration of the event loop: it makes a best-effort,
// non-blocking attempt to read the next packet's first byte, and if one
// arrived, reads and dispatches the rest of that packet. Either way it
// then checks keep-alive and retransmit timers. It reports whether it did
// any work, so Loop knows whether to sleep before the next iteration.
func (c *Client) step() (bool, error) {
	if !c.connected {
		return false, ErrClientDisconnected
	}

	didWork := false

	firstByte, ok, err := c.tryReadFirstByte()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRxData, err)
	}
	if ok {
		if err := c.readAndDispatch(firstByte); err != nil {
			return false, err
		}
		didWork = true
	}

	if err := c.checkKeepAlive(); err != nil {
		return didWork, err
	}
	if err := c.retransmitPending(); err != nil {
		return didWork, err
	}

	return didWork, nil
}

// tryReadFirstByte attempts a non-blocking read of one byte. It returns
// ok=false, err=nil when nothing was available, which is the common case
// on an idle connection.
func (c *Client) tryReadFirstByte() (byte, bool, error) {
	if err := c.transport.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return 0, false, err
	}

	var buf [1]byte
	n, err := c.transport.Read(buf[:])
	if n == 1 {
		if resetErr := c.armReadDeadline(); resetErr != nil {
			return 0, false, resetErr
		}
		return buf[0], true, nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return 0, false, nil
	}
	if err == nil {
		return 0, false, nil
	}
	return 0, false, err
}

// armReadDeadline sets the deadline that governs the blocking read of a
// packet's remaining length and body, once the first byte has arrived. With
// BlockSocket false the deadline is cleared instead, letting that read block
// indefinitely.
func (c *Client) armReadDeadline() error {
	if !c.settings.BlockSocket {
		return c.transport.SetReadDeadline(time.Time{})
	}
	return c.transport.SetReadDeadline(time.Now().Add(c.settings.SocketTimeout))
}

// readAndDispatch reads the remainder of a packet whose first fixed-header
// byte is firstByte, and hands it to the matching handler. Every read past
// the first byte blocks until it completes.
func (c *Client) readAndDispatch(firstByte byte) error {
	packetType := firstByte >> 4
	flags := firstByte & 0x0F

	remainingLength, err := packets.DecodeVarInt(c.transport)
	if err != nil {
		return fmt.Errorf("%w: remaining length: %v", ErrRxData, err)
	}
	if max := getLimit(c.settings.MaxIncomingPacket, DefaultMaxIncomingPacket); remainingLength > max {
		return fmt.Errorf("%w: packet of %d bytes exceeds maximum %d", ErrRxData, remainingLength, max)
	}

	body := make([]byte, remainingLength)
	if _, err := io.ReadFull(c.transport, body); err != nil {
		return fmt.Errorf("%w: packet body: %v", ErrRxData, err)
	}

	switch packetType {
	case packets.PUBLISH:
		pkt, err := packets.DecodePublish(body, &packets.FixedHeader{Flags: flags})
		if err != nil {
			return fmt.Errorf("%w: PUBLISH: %v", ErrRxData, err)
		}
		return c.handlePublish(pkt)

	case packets.PUBACK:
		pkt, err := packets.DecodePuback(body)
		if err != nil {
			return fmt.Errorf("%w: PUBACK: %v", ErrRxData, err)
		}
		return c.handlePuback(pkt)

	case packets.SUBACK:
		pkt, err := packets.DecodeSuback(body)
		if err != nil {
			return fmt.Errorf("%w: SUBACK: %v", ErrRxData, err)
		}
		return c.handleSuback(pkt)

	case packets.UNSUBACK:
		pkt, err := packets.DecodeUnsuback(body)
		if err != nil {
			return fmt.Errorf("%w: UNSUBACK: %v", ErrRxData, err)
		}
		return c.handleUnsuback(pkt)

	case packets.PINGRESP:
		c.awaitingPingResp = false
		return nil

	case packets.PINGREQ:
		return c.writePacket(&packets.PingrespPacket{})

	case packets.CONNACK:
		return &UnexpectedAckError{Context: "CONNACK", PacketID: 0}

	default:
		c.settings.Logger.Warn("ignoring unsupported packet type from broker", "type", packets.PacketNames[packetType])
		return nil
	}
}

func (c *Client) handlePublish(pkt *packets.PublishPacket) error {
	msg := Message{
		Topic:     pkt.Topic,
		Payload:   pkt.Payload,
		QoS:       QoS(pkt.QoS),
		Retained:  pkt.Retain,
		Duplicate: pkt.Dup,
	}

	matched := false
	for _, sub := range c.store.Subscriptions() {
		if matchTopic(sub.Filter, pkt.Topic) {
			matched = true
			if sub.Handler != nil {
				sub.Handler(c, msg)
			}
		}
	}
	if !matched && c.settings.DefaultPublishHandler != nil {
		c.settings.DefaultPublishHandler(c, msg)
	}

	if pkt.QoS == packets.QoS1 {
		puback := &packets.PubackPacket{PacketID: pkt.PacketID}
		return c.writePacket(puback)
	}
	return nil
}

func (c *Client) handlePuback(pkt *packets.PubackPacket) error {
	if _, ok := c.store.GetPendingPublish(pkt.PacketID); !ok {
		return &UnexpectedAckError{Context: "PUBACK", PacketID: pkt.PacketID}
	}
	c.store.RemovePendingPublish(pkt.PacketID)
	return nil
}

func (c *Client) handleSuback(pkt *packets.SubackPacket) error {
	if _, ok := c.pendingSubscribes[pkt.PacketID]; !ok {
		return &UnexpectedAckError{Context: "SUBACK", PacketID: pkt.PacketID}
	}
	delete(c.pendingSubscribes, pkt.PacketID)

	subs := c.store.SubscriptionsByMessageID(pkt.PacketID)
	if len(subs) != len(pkt.ReturnCodes) {
		return &UnexpectedAckError{Context: "SUBACK", PacketID: pkt.PacketID}
	}

	for i, code := range pkt.ReturnCodes {
		if code == packets.SubackFailure {
			c.settings.Logger.Warn("subscription refused by broker", "packet_id", pkt.PacketID, "filter", subs[i].Filter)
			continue
		}
		subs[i].AcknowledgedQoS = code
		subs[i].Acknowledged = true
	}
	return nil
}

func (c *Client) handleUnsuback(pkt *packets.UnsubackPacket) error {
	pending, ok := c.store.GetPendingUnsubscribe(pkt.PacketID)
	if !ok {
		return &UnexpectedAckError{Context: "UNSUBACK", PacketID: pkt.PacketID}
	}
	for _, topic := range pending.Topics {
		c.store.RemoveSubscription(topic)
	}
	c.store.RemovePendingUnsubscribe(pkt.PacketID)
	return nil
}

// checkKeepAlive sends PINGREQ when the connection has been quiet for a
// full keep-alive interval, and fails the connection if a previously sent
// PINGREQ has gone unanswered for another full interval. Any packet sent,
// including an application PUBLISH, counts as activity and defers the next
// PINGREQ; this is intentional, not an oversight.
func (c *Client) checkKeepAlive() error {
	if c.settings.KeepAlive <= 0 {
		return nil
	}

	now := c.settings.Clock.Now()

	if c.awaitingPingResp {
		if now.Sub(c.lastPingSentAt) > c.settings.KeepAlive {
			return ErrKeepAliveTimeout
		}
		return nil
	}

	if now.Sub(c.lastSentAt) >= c.settings.KeepAlive {
		ping := &packets.PingreqPacket{}
		if err := c.writePacket(ping); err != nil {
			return err
		}
		c.awaitingPingResp = true
		c.lastPingSentAt = now
	}
	return nil
}

// retransmitPending resends any pending publish or unsubscribe whose
// acknowledgement hasn't arrived within RetransmitInterval, setting DUP.
func (c *Client) retransmitPending() error {
	now := c.settings.Clock.Now()
	if now.Sub(c.lastRetransmitAt) < c.settings.RetransmitInterval {
		return nil
	}
	c.lastRetransmitAt = now

	for _, pending := range c.store.PendingPublishes() {
		if now.Sub(pending.SentAt) < c.settings.RetransmitInterval {
			continue
		}
		pending.Dup = true
		pkt := &packets.PublishPacket{
			Dup:      true,
			QoS:      pending.QoS,
			Retain:   pending.Retain,
			Topic:    pending.Topic,
			PacketID: pending.PacketID,
			Payload:  pending.Payload,
		}
		if err := c.writePacket(pkt); err != nil {
			return err
		}
		pending.SentAt = now
	}

	for _, pending := range c.store.PendingUnsubscribes() {
		if now.Sub(pending.SentAt) < c.settings.RetransmitInterval {
			continue
		}
		pending.Dup = true
		pkt := &packets.UnsubscribePacket{PacketID: pending.PacketID, Topics: pending.Topics}
		if _, err := pkt.WriteTo(c.transport, true); err != nil {
			return fmt.Errorf("%w: %v", ErrTxData, err)
		}
		c.lastSentAt = now
		pending.SentAt = now
	}

	return nil
}
