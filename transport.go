package mq

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

// Transport is the byte stream a Client speaks MQTT over. Implementations
// must honor io.Reader's short-read semantics faithfully (callers use
// io.ReadFull for exact-length reads) and must fail outright on a short
// write rather than silently dropping bytes.
type Transport interface {
	io.ReadWriteCloser
	// SetReadDeadline arms a deadline for the next Read call. The event
	// loop uses a near-zero deadline to attempt a non-blocking, best-effort
	// read of the next packet's first fixed-header byte.
	SetReadDeadline(t time.Time) error
}

// dial establishes a Transport to uri. The scheme selects tcp, tls (with
// optional certificate verification via settings.TLSConfig), or ws/wss.
func dial(ctx context.Context, uri string, settings *ConnectionSettings) (Transport, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse server URL: %w", err)
	}

	switch u.Scheme {
	case "tcp", "":
		return dialTCP(ctx, hostPort(u, "1883"), settings.Dialer)
	case "tls", "ssl", "mqtts":
		return dialTLS(ctx, hostPort(u, "1883"), settings.TLSConfig, settings.Dialer)
	case "ws", "wss":
		return dialWebsocket(ctx, u, settings.TLSConfig)
	default:
		return nil, fmt.Errorf("unsupported server scheme %q", u.Scheme)
	}
}

func hostPort(u *url.URL, defaultPort string) string {
	if u.Port() != "" {
		return u.Host
	}
	return net.JoinHostPort(u.Hostname(), defaultPort)
}

func dialTCP(ctx context.Context, addr string, dialer ContextDialer) (Transport, error) {
	if dialer == nil {
		dialer = DialFunc((&net.Dialer{}).DialContext)
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return conn, nil
}

func dialTLS(ctx context.Context, addr string, tlsConfig *tls.Config, dialer ContextDialer) (Transport, error) {
	raw, err := dialTCP(ctx, addr, dialer)
	if err != nil {
		return nil, err
	}

	cfg := tlsConfig
	if cfg == nil {
		cfg = &tls.Config{}
	} else {
		cfg = cfg.Clone()
	}
	if cfg.ServerName == "" {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			cfg.ServerName = host
		}
	}

	rawConn, ok := raw.(net.Conn)
	if !ok {
		return nil, fmt.Errorf("tls handshake with %s: underlying transport is not a net.Conn", addr)
	}

	tconn := tls.Client(rawConn, cfg)
	if err := tconn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("tls handshake with %s: %w", addr, err)
	}
	return tconn, nil
}

// wsTransport adapts a *websocket.Conn to the Transport interface, framing
// each Write as one binary websocket message and buffering partial reads
// out of the current message the way plain TCP wouldn't need to.
type wsTransport struct {
	*websocket.Conn
	reader io.Reader
}

func dialWebsocket(ctx context.Context, u *url.URL, tlsConfig *tls.Config) (Transport, error) {
	dialer := websocket.Dialer{
		Subprotocols:     []string{"mqtt"},
		HandshakeTimeout: 45 * time.Second,
		TLSClientConfig:  tlsConfig,
	}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial websocket %s: %w", u, err)
	}
	return &wsTransport{Conn: conn}, nil
}

func (w *wsTransport) Read(p []byte) (int, error) {
	for w.reader == nil {
		op, r, err := w.Conn.NextReader()
		if err != nil {
			return 0, err
		}
		if op != websocket.BinaryMessage {
			continue
		}
		w.reader = r
	}

	n, err := w.reader.Read(p)
	if errors.Is(err, io.EOF) {
		w.reader = nil
		err = nil
	}
	return n, err
}

func (w *wsTransport) Write(p []byte) (int, error) {
	if err := w.Conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsTransport) SetReadDeadline(t time.Time) error {
	return w.Conn.SetReadDeadline(t)
}

func (w *wsTransport) Close() error {
	return w.Conn.Close()
}

// LoadCAFile reads a PEM-encoded certificate bundle from path and returns a
// pool suitable for ConnectionSettings.TLSConfig.RootCAs.
func LoadCAFile(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return pool, nil
}
