package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// ErrDisposed indicates the connector has been disposed.
var ErrDisposed = errors.New("connector disposed")

// Handler receives established connections from the supervisor.
// OnConnected transfers ownership of the connection: the handler (or the
// session layer behind it) is responsible for all subsequent I/O and for
// closing the connection, including one it no longer wants because the
// supervisor was stopped while the dial was in flight.
type Handler interface {
	OnConnected(conn *Conn)
}

// ConnectorConfig configures a Connector.
type ConnectorConfig struct {
	// TLS enables transport encryption when non-nil.
	TLS *TLSConfig

	// LocalAddr is an optional local address ("host:port", port may be 0)
	// to bind outbound connections to.
	LocalAddr string

	// ConnectTimeout bounds a single dial including the TLS handshake
	// (default: 30s).
	ConnectTimeout time.Duration

	// MaxMessageSize is the maximum framed message size (default: 64KB).
	MaxMessageSize uint32

	// Socket holds TCP socket options applied to each connection.
	Socket SocketOptions
}

// Connector dials outbound connections. It is configured once at
// construction and must not be reconfigured while a dial is in flight.
type Connector struct {
	config    ConnectorConfig
	tlsConf   *tls.Config
	localAddr *net.TCPAddr

	// Base context cancelled on Dispose; aborts in-flight dials.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	disposed bool
}

// NewConnector creates a new Connector.
// TLS misconfiguration surfaces here as *SecurityConfigError.
func NewConnector(config ConnectorConfig) (*Connector, error) {
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 30 * time.Second
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}

	var tlsConf *tls.Config
	if config.TLS != nil {
		var err error
		tlsConf, err = NewClientTLSConfig(config.TLS)
		if err != nil {
			return nil, err
		}
	}

	var localAddr *net.TCPAddr
	if config.LocalAddr != "" {
		var err error
		localAddr, err = net.ResolveTCPAddr("tcp", config.LocalAddr)
		if err != nil {
			return nil, fmt.Errorf("resolve local address %q: %w", config.LocalAddr, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Connector{
		config:    config,
		tlsConf:   tlsConf,
		localAddr: localAddr,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Dial establishes a connection to the specified address.
// The dial is bounded by ConnectTimeout (or an earlier ctx deadline) and
// aborted by Dispose.
func (c *Connector) Dial(ctx context.Context, address string) (*Conn, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil, ErrDisposed
	}
	c.mu.Unlock()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	// Tie the dial to the connector lifetime so Dispose aborts it.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	dialer := &net.Dialer{LocalAddr: c.localAddr}
	nc, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	if tcpConn, ok := nc.(*net.TCPConn); ok {
		if err := c.config.Socket.apply(tcpConn); err != nil {
			nc.Close()
			return nil, fmt.Errorf("apply socket options: %w", err)
		}
	}

	if c.tlsConf != nil {
		tlsConn := tls.Client(nc, c.tlsConf)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			nc.Close()
			return nil, fmt.Errorf("TLS handshake failed: %w", err)
		}
		nc = tlsConn
	}

	return NewConn(nc, c.config.MaxMessageSize), nil
}

// Dispose releases the connector. In-flight dials are aborted and
// subsequent Dial calls return ErrDisposed. Safe to call multiple times.
func (c *Connector) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return
	}
	c.disposed = true
	c.cancel()
}

// Disposed reports whether Dispose has been called.
func (c *Connector) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}
