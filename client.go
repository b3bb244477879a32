package mq

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/xid"

	"github.com/gonzalop/mqttc/internal/packets"
)

// Client is a long-lived MQTT 3.1.1 connection to a single broker. It is
// not safe for concurrent use: every exported method, and the Loop that
// drives the connection, must run from a single goroutine.
type Client struct {
	settings *ConnectionSettings
	store    SessionStore

	transport Transport

	connected bool
	closed    bool

	lastPacketID uint16

	lastSentAt       time.Time
	awaitingPingResp bool
	lastPingSentAt   time.Time
	lastRetransmitAt time.Time

	pendingSubscribes map[uint16]struct{}
}

// New creates a Client bound to server (e.g. "tcp://localhost:1883",
// "tls://broker:8883", or "wss://broker/mqtt"). The transport is not dialed
// until Connect is called.
func New(server string, opts ...Option) (*Client, error) {
	settings := defaultSettings(server)
	for _, opt := range opts {
		opt(settings)
	}

	if settings.ClientID == "" {
		settings.ClientID = "mq-" + xid.New().String()
	}

	return &Client{
		settings:          settings,
		store:             newMemoryStore(),
		pendingSubscribes: make(map[uint16]struct{}),
	}, nil
}

// Settings returns the client's connection settings.
func (c *Client) Settings() *ConnectionSettings {
	return c.settings
}

// Connected reports whether the CONNECT handshake has completed and the
// client has not since observed a fatal error or Close.
func (c *Client) Connected() bool {
	return c.connected
}

// Connect dials the broker and performs the CONNECT/CONNACK handshake. On
// success the client is ready to Publish, Subscribe, and Loop.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed {
		return ErrClientDisconnected
	}

	dialCtx := ctx
	if c.settings.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.settings.ConnectTimeout)
		defer cancel()
	}

	transport, err := dial(dialCtx, c.settings.Server, c.settings)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	c.transport = transport

	connect := &packets.ConnectPacket{
		ClientID:     c.settings.ClientID,
		CleanSession: c.settings.CleanSession,
		KeepAlive:    uint16(c.settings.KeepAlive / time.Second),
	}
	if c.settings.Username != "" {
		connect.UsernameFlag = true
		connect.Username = c.settings.Username
		if c.settings.Password != "" {
			connect.PasswordFlag = true
			connect.Password = c.settings.Password
		}
	}
	if c.settings.will != nil {
		connect.WillFlag = true
		connect.WillTopic = c.settings.will.Topic
		connect.WillMessage = c.settings.will.Payload
		connect.WillQoS = c.settings.will.QoS
		connect.WillRetain = c.settings.will.Retained
	}

	if _, err := connect.WriteTo(c.transport); err != nil {
		c.transport.Close()
		return fmt.Errorf("%w: send CONNECT: %v", ErrConnectionFailed, err)
	}
	c.lastSentAt = c.settings.Clock.Now()

	if c.settings.ConnectTimeout > 0 {
		if err := c.transport.SetReadDeadline(time.Now().Add(c.settings.ConnectTimeout)); err != nil {
			c.transport.Close()
			return fmt.Errorf("%w: arm CONNACK read deadline: %v", ErrConnectionFailed, err)
		}
	}

	var header [4]byte
	if _, err := io.ReadFull(c.transport, header[:]); err != nil {
		c.transport.Close()
		return fmt.Errorf("%w: read CONNACK: %v", ErrConnectionFailed, err)
	}
	// Fixed header (0x20, remaining length 2) + session present + return code.
	if header[0] != packets.CONNACK<<4 || header[1] != 2 {
		c.transport.Close()
		return fmt.Errorf("%w: unexpected first packet from broker", ErrConnectionFailed)
	}
	if err := connackError(header[3]); err != nil {
		c.transport.Close()
		return err
	}

	if c.settings.CleanSession {
		c.store.Reset()
		c.lastPacketID = 0
		c.pendingSubscribes = make(map[uint16]struct{})
	}

	c.connected = true
	c.closed = false
	now := c.settings.Clock.Now()
	c.lastSentAt = now
	c.lastRetransmitAt = now
	c.awaitingPingResp = false

	c.settings.Logger.Info("connected", "server", c.settings.Server, "client_id", c.settings.ClientID)
	return nil
}

// Close performs a graceful shutdown: it sends DISCONNECT (best effort) and
// closes the transport. Pending publishes and unsubscribes are left in the
// SessionStore untouched. A closed Client cannot be reconnected: Connect
// after Close returns ErrClientDisconnected.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.connected = false

	if c.transport == nil {
		return nil
	}

	disconnect := &packets.DisconnectPacket{}
	_, _ = disconnect.WriteTo(c.transport)
	return c.transport.Close()
}

func (c *Client) writePacket(w io.WriterTo) error {
	if _, err := w.WriteTo(c.transport); err != nil {
		return fmt.Errorf("%w: %v", ErrTxData, err)
	}
	c.lastSentAt = c.settings.Clock.Now()
	return nil
}
