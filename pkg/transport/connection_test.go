package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnSendReceive(t *testing.T) {
	client, server := net.Pipe()
	cc := NewConn(client, 0)
	sc := NewConn(server, 0)
	defer cc.Close()
	defer sc.Close()

	go func() {
		_ = sc.Send([]byte("welcome"))
	}()

	got, err := cc.Receive(time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte("welcome"), got)
}

func TestConnHasUniqueID(t *testing.T) {
	a, b := net.Pipe()
	ca := NewConn(a, 0)
	cb := NewConn(b, 0)
	defer ca.Close()
	defer cb.Close()

	assert.NotEmpty(t, ca.ID())
	assert.NotEqual(t, ca.ID(), cb.ID())
}

func TestConnCloseIsIdempotent(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	c := NewConn(client, 0)
	require.True(t, c.Active())

	require.NoError(t, c.Close())
	assert.False(t, c.Active())
	assert.NoError(t, c.Close())

	select {
	case <-c.Done():
	default:
		t.Error("Done channel should be closed after Close")
	}
}

func TestConnSendAfterClose(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	c := NewConn(client, 0)
	require.NoError(t, c.Close())

	assert.ErrorIs(t, c.Send([]byte("late")), ErrConnectionClosed)
	_, err := c.Receive(time.Second)
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestConnTLSStateAbsentOnPlaintext(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	c := NewConn(client, 0)
	defer c.Close()

	_, ok := c.TLSState()
	assert.False(t, ok)
}
