package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubConnRoundTrip(t *testing.T) {
	l := NewStubListener()

	acceptCh := make(chan Conn, 1)
	go func() {
		c, err := l.Accept(context.Background())
		require.NoError(t, err)
		acceptCh <- c
	}()

	client, err := l.MakeConn()
	require.NoError(t, err)
	server := <-acceptCh

	_, err = client.Write([]byte("hello"))
	require.NoError(t, err)

	buf := make([]byte, 5)
	n, err := server.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestStubConnReadDeadline(t *testing.T) {
	l := NewStubListener()
	acceptCh := make(chan Conn, 1)
	go func() {
		c, _ := l.Accept(context.Background())
		acceptCh <- c
	}()

	client, err := l.MakeConn()
	require.NoError(t, err)
	<-acceptCh

	require.NoError(t, client.SetReadDeadline(time.Now().Add(10*time.Millisecond)))
	_, err = client.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrDeadlineExceeded)
}

func TestStubConnCloseUnblocksCounterpart(t *testing.T) {
	l := NewStubListener()
	acceptCh := make(chan Conn, 1)
	go func() {
		c, _ := l.Accept(context.Background())
		acceptCh <- c
	}()

	client, err := l.MakeConn()
	require.NoError(t, err)
	server := <-acceptCh

	require.NoError(t, client.Close())

	_, err = server.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrConnClosed)
}

func TestStubDialerUsesListener(t *testing.T) {
	l := NewStubListener()
	d := &StubDialer{Listener: l}

	acceptCh := make(chan Conn, 1)
	go func() {
		c, _ := l.Accept(context.Background())
		acceptCh <- c
	}()

	conn, err := d.Dial(context.Background(), "origin:80")
	require.NoError(t, err)
	assert.NotNil(t, <-acceptCh)
	assert.NotNil(t, conn)
}
