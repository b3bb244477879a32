package mq

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ContextDialer is an interface for custom network dialing logic. It
// matches the signature of net.Dialer.DialContext.
type ContextDialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// DialFunc adapts a function to the ContextDialer interface.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// DialContext implements ContextDialer.
func (f DialFunc) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	return f(ctx, network, addr)
}

// willMessage represents the Last Will and Testament sent in CONNECT.
type willMessage struct {
	Topic    string
	Payload  []byte
	QoS      uint8
	Retained bool
}

// ConnectionSettings holds everything needed to dial and authenticate a
// Client. Build one with New's functional options, or load one from disk
// with LoadConnectionSettingsYAML.
type ConnectionSettings struct {
	// Server is the broker URL, e.g. "tcp://localhost:1883" or
	// "wss://broker.example.com/mqtt".
	Server string

	// ClientID identifies this client to the broker. If empty, New
	// generates one.
	ClientID string

	// Username and Password authenticate the CONNECT handshake. Both are
	// optional; Password is only sent if Username is also set.
	Username string
	Password string

	// KeepAlive is the interval advertised to the broker in CONNECT, and
	// the cadence the event loop uses to decide when to send PINGREQ.
	KeepAlive time.Duration

	// CleanSession requests the broker discard prior session state.
	CleanSession bool

	// ConnectTimeout bounds how long Connect waits for the transport to
	// dial and the broker to reply with CONNACK.
	ConnectTimeout time.Duration

	// SocketTimeout bounds how long the event loop's blocking read for the
	// remainder of a packet (the bytes past the fixed header's first byte)
	// may take once BlockSocket is true. It does not apply to the event
	// loop's non-blocking peek for a new packet's first byte, nor to the
	// CONNACK reply, which ConnectTimeout bounds.
	SocketTimeout time.Duration

	// BlockSocket controls whether SocketTimeout is enforced on those
	// reads at all. Set false to let a slow broker stall a read
	// indefinitely instead of failing it.
	BlockSocket bool

	// RetransmitInterval is how often the event loop sweeps pending
	// publishes and unsubscribes for retransmission.
	RetransmitInterval time.Duration

	// TLSConfig configures the tls:// and wss:// dialers. Nil uses Go's
	// defaults plus the system root CA pool.
	TLSConfig *tls.Config

	// Logger receives structured client events. Defaults to a logger that
	// discards everything.
	Logger *slog.Logger

	// Clock is the time source for keep-alive and retransmit timing.
	// Defaults to the system clock.
	Clock Clock

	// Dialer, if set, replaces the default net.Dialer used for tcp:// and
	// tls:// schemes.
	Dialer ContextDialer

	// Limits (0 = use MQTT spec defaults, see topic.go).
	MaxTopicLength    int
	MaxPayloadSize    int
	MaxIncomingPacket int

	// DefaultPublishHandler is invoked for inbound PUBLISH packets that
	// match no registered subscription. If nil, unmatched messages are
	// silently acknowledged (QoS 1) or dropped (QoS 0).
	DefaultPublishHandler MessageHandler

	will *willMessage
}

// Option is a functional option for configuring a Client via New.
type Option func(*ConnectionSettings)

// WithClientID sets the client identifier sent in CONNECT.
func WithClientID(id string) Option {
	return func(s *ConnectionSettings) { s.ClientID = id }
}

// WithCredentials sets the username and password for authentication.
func WithCredentials(username, password string) Option {
	return func(s *ConnectionSettings) {
		s.Username = username
		s.Password = password
	}
}

// WithKeepAlive sets the MQTT keep alive interval (default: 60s).
func WithKeepAlive(d time.Duration) Option {
	return func(s *ConnectionSettings) { s.KeepAlive = d }
}

// WithCleanSession sets the clean session flag (default: true).
func WithCleanSession(clean bool) Option {
	return func(s *ConnectionSettings) { s.CleanSession = clean }
}

// WithConnectTimeout sets the connect timeout (default: 30s).
func WithConnectTimeout(d time.Duration) Option {
	return func(s *ConnectionSettings) { s.ConnectTimeout = d }
}

// WithRetransmitInterval sets the cadence at which pending publishes and
// unsubscribes are checked for retransmission (default: 5s).
func WithRetransmitInterval(d time.Duration) Option {
	return func(s *ConnectionSettings) { s.RetransmitInterval = d }
}

// WithSocketTimeout sets the deadline applied to the event loop's blocking
// socket read for the remainder of a packet (default: 5s).
func WithSocketTimeout(d time.Duration) Option {
	return func(s *ConnectionSettings) { s.SocketTimeout = d }
}

// WithBlockSocket controls whether SocketTimeout is enforced on those reads
// (default: true).
func WithBlockSocket(block bool) Option {
	return func(s *ConnectionSettings) { s.BlockSocket = block }
}

// WithTLS sets the TLS configuration used by the tls:// and wss:// dialers.
func WithTLS(config *tls.Config) Option {
	return func(s *ConnectionSettings) { s.TLSConfig = config }
}

// WithLogger sets the structured logger for client events. If not provided
// the client discards all log output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *ConnectionSettings) { s.Logger = logger }
}

// WithClock overrides the time source used for keep-alive and retransmit
// timing. Intended for tests.
func WithClock(clock Clock) Option {
	return func(s *ConnectionSettings) { s.Clock = clock }
}

// WithDialer overrides the dialer used for tcp:// and tls:// schemes.
func WithDialer(dialer ContextDialer) Option {
	return func(s *ConnectionSettings) { s.Dialer = dialer }
}

// WithWill sets the Last Will and Testament message the broker publishes on
// behalf of the client if it disconnects without a clean DISCONNECT.
func WithWill(topic string, payload []byte, qos uint8, retained bool) Option {
	return func(s *ConnectionSettings) {
		s.will = &willMessage{Topic: topic, Payload: payload, QoS: qos, Retained: retained}
	}
}

// WithDefaultPublishHandler sets a fallback handler for inbound PUBLISH
// packets that match no registered subscription.
func WithDefaultPublishHandler(handler MessageHandler) Option {
	return func(s *ConnectionSettings) { s.DefaultPublishHandler = handler }
}

// WithLimits overrides the MQTT protocol limits enforced when publishing
// and subscribing. A zero value keeps the built-in default for that field.
func WithLimits(maxTopicLength, maxPayloadSize, maxIncomingPacket int) Option {
	return func(s *ConnectionSettings) {
		s.MaxTopicLength = maxTopicLength
		s.MaxPayloadSize = maxPayloadSize
		s.MaxIncomingPacket = maxIncomingPacket
	}
}

// defaultSettings returns the baseline ConnectionSettings before options
// are applied.
func defaultSettings(server string) *ConnectionSettings {
	return &ConnectionSettings{
		Server:             server,
		KeepAlive:          60 * time.Second,
		CleanSession:       true,
		ConnectTimeout:     30 * time.Second,
		RetransmitInterval: 5 * time.Second,
		SocketTimeout:      5 * time.Second,
		BlockSocket:        true,
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:              systemClock{},
	}
}

// yamlConnectionSettings mirrors the subset of ConnectionSettings that can
// be expressed as plain data, for LoadConnectionSettingsYAML.
type yamlConnectionSettings struct {
	Server             string        `yaml:"server"`
	ClientID           string        `yaml:"client_id"`
	Username           string        `yaml:"username"`
	Password           string        `yaml:"password"`
	KeepAlive          time.Duration `yaml:"keep_alive"`
	CleanSession       bool          `yaml:"clean_session"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout"`
	RetransmitInterval time.Duration `yaml:"retransmit_interval"`
	SocketTimeoutSecs  int           `yaml:"socket_timeout_seconds"`
	BlockSocket        bool          `yaml:"block_socket"`
	CAFile             string        `yaml:"ca_file"`
	MaxTopicLength     int           `yaml:"max_topic_length"`
	MaxPayloadSize     int           `yaml:"max_payload_size"`
	MaxIncomingPacket  int           `yaml:"max_incoming_packet"`
}

// LoadConnectionSettingsYAML reads a ConnectionSettings from a YAML file,
// applying the same defaults New would. Fields New's functional options
// configure with Go values only (Logger, Clock, Dialer, Will) are left at
// their defaults. New and Connect do not accept a ConnectionSettings, so
// the returned value is not applied to any Client by this package.
func LoadConnectionSettingsYAML(path string) (*ConnectionSettings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open connection settings: %w", err)
	}
	defer f.Close()

	defaults := defaultSettings("")
	raw := yamlConnectionSettings{CleanSession: defaults.CleanSession, BlockSocket: defaults.BlockSocket}
	if err := yaml.NewDecoder(f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode connection settings: %w", err)
	}

	settings := defaultSettings(raw.Server)
	settings.ClientID = raw.ClientID
	settings.Username = raw.Username
	settings.Password = raw.Password
	settings.CleanSession = raw.CleanSession
	settings.BlockSocket = raw.BlockSocket
	settings.MaxTopicLength = raw.MaxTopicLength
	settings.MaxPayloadSize = raw.MaxPayloadSize
	settings.MaxIncomingPacket = raw.MaxIncomingPacket

	if raw.KeepAlive > 0 {
		settings.KeepAlive = raw.KeepAlive
	}
	if raw.ConnectTimeout > 0 {
		settings.ConnectTimeout = raw.ConnectTimeout
	}
	if raw.RetransmitInterval > 0 {
		settings.RetransmitInterval = raw.RetransmitInterval
	}
	if raw.SocketTimeoutSecs > 0 {
		settings.SocketTimeout = time.Duration(raw.SocketTimeoutSecs) * time.Second
	}

	if raw.CAFile != "" {
		pool, err := LoadCAFile(raw.CAFile)
		if err != nil {
			return nil, err
		}
		settings.TLSConfig = &tls.Config{RootCAs: pool}
	}

	return settings, nil
}
