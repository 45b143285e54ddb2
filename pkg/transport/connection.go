package transport

import (
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrConnectionClosed indicates the connection has been closed.
var ErrConnectionClosed = errors.New("connection closed")

// Conn is an established outbound connection. It wraps the underlying
// TCP or TLS stream with length-prefixed framing and close-once semantics.
//
// Ownership transfers to the receiving handler when the supervisor hands
// the connection off; the supervisor only reads liveness afterwards.
type Conn struct {
	id       string
	conn     net.Conn
	framer   *Framer
	tlsState *tls.ConnectionState
	closeCh  chan struct{}

	closeOnce sync.Once
	writeMu   sync.Mutex
	readMu    sync.Mutex
}

// NewConn wraps an established network connection.
// A maxMessageSize of 0 uses DefaultMaxMessageSize.
func NewConn(nc net.Conn, maxMessageSize uint32) *Conn {
	if maxMessageSize == 0 {
		maxMessageSize = DefaultMaxMessageSize
	}
	c := &Conn{
		id:      uuid.NewString(),
		conn:    nc,
		framer:  NewFramerWithMaxSize(nc, maxMessageSize),
		closeCh: make(chan struct{}),
	}
	if tlsConn, ok := nc.(*tls.Conn); ok {
		state := tlsConn.ConnectionState()
		c.tlsState = &state
	}
	return c
}

// ID returns the connection's unique identifier.
func (c *Conn) ID() string {
	return c.id
}

// TLSState returns the TLS connection state and whether TLS is in use.
func (c *Conn) TLSState() (tls.ConnectionState, bool) {
	if c.tlsState == nil {
		return tls.ConnectionState{}, false
	}
	return *c.tlsState, true
}

// LocalAddr returns the local network address.
func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Send sends a message to the peer.
func (c *Conn) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}

	return c.framer.WriteFrame(data)
}

// Receive receives a message from the peer.
// A positive timeout bounds the read; zero blocks until a frame arrives.
func (c *Conn) Receive(timeout time.Duration) ([]byte, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	select {
	case <-c.closeCh:
		return nil, ErrConnectionClosed
	default:
	}

	if timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
		defer c.conn.SetReadDeadline(time.Time{})
	}

	return c.framer.ReadFrame()
}

// Active reports whether the connection has not been closed.
// The owning handler must Close the connection when it detects failure,
// which is what makes this usable as the supervisor's liveness check.
func (c *Conn) Active() bool {
	select {
	case <-c.closeCh:
		return false
	default:
		return true
	}
}

// Done returns a channel closed when the connection is closed.
func (c *Conn) Done() <-chan struct{} {
	return c.closeCh
}

// Close closes the connection. Safe to call multiple times.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}
