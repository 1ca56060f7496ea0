package transport

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/skybound-dev/ifconnect/pkg/protocol"
)

func TestSessionSendAndReceive(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 5)
		conn.Read(buf)
		conn.Write([]byte("pong"))
	}()

	s := NewSession("command", l.Addr().String(), Config{DialTimeout: time.Second})
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer s.Close()

	if err := s.Send([]byte("hello")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case chunk := <-s.Chunks():
		if !bytes.Equal(chunk, []byte("pong")) {
			t.Errorf("chunk = %q, want %q", chunk, "pong")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for chunk")
	}

	<-serverDone
}

func TestSessionSendAfterCloseErrors(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err == nil {
			defer conn.Close()
			io := make([]byte, 1)
			conn.Read(io)
		}
	}()

	s := NewSession("command", l.Addr().String(), Config{DialTimeout: time.Second})
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := s.Send([]byte("x")); err != ErrSessionClosed {
		t.Errorf("Send after close = %v, want ErrSessionClosed", err)
	}

	// Double close must not panic or error.
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestSessionLostOnPeerClose(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		conn.Close()
	}()

	s := NewSession("poll", l.Addr().String(), Config{DialTimeout: time.Second, Reconnect: true})
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer s.Close()

	select {
	case err := <-s.Lost():
		if err == nil {
			t.Error("expected a non-nil error on Lost()")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Lost()")
	}

	if !s.Reconnect() {
		t.Error("Reconnect() = false, want true")
	}
}

func TestSessionReadTimeoutReportsErrTimeout(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	s := NewSession("command", l.Addr().String(), Config{
		DialTimeout: time.Second,
		ReadTimeout: 50 * time.Millisecond,
	})
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer s.Close()

	conn := <-accepted
	defer conn.Close()

	select {
	case err := <-s.Lost():
		if !errors.Is(err, protocol.ErrTimeout) {
			t.Errorf("Lost() = %v, want it to wrap protocol.ErrTimeout", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Lost() after a read deadline expiry")
	}
}

func TestSessionReconnectStartsFreshReadLoop(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	accept := make(chan net.Conn, 2)
	go func() {
		for i := 0; i < 2; i++ {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			accept <- conn
		}
	}()

	s := NewSession("command", l.Addr().String(), Config{DialTimeout: time.Second})
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	first := <-accept
	first.Close() // force a connection loss
	<-s.Lost()

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("reconnect Connect: %v", err)
	}
	defer s.Close()

	second := <-accept
	defer second.Close()
	second.Write([]byte("fresh"))

	select {
	case chunk := <-s.Chunks():
		if !bytes.Equal(chunk, []byte("fresh")) {
			t.Errorf("chunk = %q, want %q", chunk, "fresh")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for chunk after reconnect")
	}
}
