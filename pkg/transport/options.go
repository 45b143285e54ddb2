package transport

import (
	"net"
	"time"
)

// SocketOptions bundles TCP socket settings applied to every dialed
// connection. The zero value leaves all platform defaults in place.
type SocketOptions struct {
	// NoDelay controls TCP_NODELAY. Nil leaves the platform default
	// (Go enables it).
	NoDelay *bool

	// KeepAlivePeriod enables TCP keep-alive probes at the given interval
	// when positive.
	KeepAlivePeriod time.Duration

	// ReadBufferSize sets SO_RCVBUF when positive.
	ReadBufferSize int

	// WriteBufferSize sets SO_SNDBUF when positive.
	WriteBufferSize int
}

// apply configures conn according to the options.
// The first failing setter aborts and returns its error.
func (o SocketOptions) apply(conn *net.TCPConn) error {
	if o.NoDelay != nil {
		if err := conn.SetNoDelay(*o.NoDelay); err != nil {
			return err
		}
	}
	if o.KeepAlivePeriod > 0 {
		if err := conn.SetKeepAlive(true); err != nil {
			return err
		}
		if err := conn.SetKeepAlivePeriod(o.KeepAlivePeriod); err != nil {
			return err
		}
	}
	if o.ReadBufferSize > 0 {
		if err := conn.SetReadBuffer(o.ReadBufferSize); err != nil {
			return err
		}
	}
	if o.WriteBufferSize > 0 {
		if err := conn.SetWriteBuffer(o.WriteBufferSize); err != nil {
			return err
		}
	}
	return nil
}
