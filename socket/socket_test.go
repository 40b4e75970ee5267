package socket_test

import (
	"net"
	"testing"
	"time"

	"github.com/mickamy/apiwire/socket"
	"github.com/mickamy/apiwire/wire"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = lis.Close() })
	return lis
}

// Scenario 1 at the socket level: a send followed by an echoed reply.
func TestSendAndReceive(t *testing.T) {
	t.Parallel()

	lis := listen(t)
	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4096)
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		_, _ = conn.Write(buf[:n]) // echo
	}()

	sock := socket.New(socket.Config{Address: lis.Addr().String(), Timeout: 2 * time.Second})
	defer sock.Close()

	id, err := sock.Send(wire.KindString, []byte("hi"), nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != 1 {
		t.Fatalf("first assigned id = %d, want 1", id)
	}

	gotID, v, err := sock.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if gotID != id {
		t.Fatalf("echoed id = %d, want %d", gotID, id)
	}
	if v.Kind != wire.KindString || v.String != "hi" {
		t.Fatalf("got %+v, want String(hi)", v)
	}
}

// Scenario 5: peer closes mid-frame.
func TestPeerClosedMidFrame(t *testing.T) {
	t.Parallel()

	lis := listen(t)
	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		full := wire.Build(wire.DefaultSyn, 7, wire.KindString, []byte("hi"))
		_, _ = conn.Write(full[:5])
		_ = conn.Close()
	}()

	sock := socket.New(socket.Config{Address: lis.Addr().String(), Timeout: 2 * time.Second})

	_, _, err := sock.Read()
	if err == nil {
		t.Fatal("expected an error on peer close mid-frame")
	}
	netErr, ok := err.(*socket.NetworkError)
	if !ok || netErr.Op != socket.ErrPeerClosed {
		t.Fatalf("got %v (%T), want NetworkError{Op: PeerClosed}", err, err)
	}
	if sock.Connected() {
		t.Fatal("socket must not hold an active connection after PeerClosed")
	}
}

// Timeout bound: reading from an idle peer returns in roughly the
// configured timeout.
func TestReadTimeoutBound(t *testing.T) {
	t.Parallel()

	lis := listen(t)
	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(2 * time.Second) // outlive the socket's timeout
	}()

	timeout := 150 * time.Millisecond
	sock := socket.New(socket.Config{Address: lis.Addr().String(), Timeout: timeout})

	start := time.Now()
	_, _, err := sock.Read()
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected a read timeout error")
	}
	netErr, ok := err.(*socket.NetworkError)
	if !ok || netErr.Op != socket.ErrReadTimeout {
		t.Fatalf("got %v (%T), want NetworkError{Op: ReadTimeout}", err, err)
	}
	if elapsed < timeout {
		t.Fatalf("returned too early: %v < %v", elapsed, timeout)
	}
	if elapsed > timeout+500*time.Millisecond {
		t.Fatalf("returned too late: %v", elapsed)
	}
}

// Id wraparound: pre-set msg_id near the boundary and confirm the
// sequence wraps to 1, not 0.
func TestMsgIDWraparound(t *testing.T) {
	t.Parallel()

	lis := listen(t)
	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4096)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			if _, err := conn.Write(buf[:n]); err != nil {
				return
			}
		}
	}()

	sock := socket.New(socket.Config{Address: lis.Addr().String(), Timeout: 2 * time.Second})
	defer sock.Close()

	maxID := ^uint32(0)
	preset := maxID - 1
	if _, err := sock.Send(wire.KindEmpty, nil, &preset); err != nil {
		t.Fatalf("send preset: %v", err)
	}
	if _, _, err := sock.Read(); err != nil {
		t.Fatalf("read: %v", err)
	}

	want := []uint32{maxID, 1, 2}
	for i, w := range want {
		id, err := sock.Send(wire.KindEmpty, nil, nil)
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		if id != w {
			t.Fatalf("send %d: id = %d, want %d", i, id, w)
		}
		if _, _, err := sock.Read(); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}
}

// Classification stability: a fatal-classified error leaves no active
// connection.
func TestClassificationStabilityOnConnectionRefused(t *testing.T) {
	t.Parallel()

	// Bind and immediately close, so the address refuses connections.
	lis := listen(t)
	addr := lis.Addr().String()
	_ = lis.Close()

	sock := socket.New(socket.Config{Address: addr, Timeout: 300 * time.Millisecond})
	_, err := sock.Send(wire.KindEmpty, nil, nil)
	if err == nil {
		t.Fatal("expected connect error against a closed port")
	}
	if sock.Connected() {
		t.Fatal("socket must not hold a connection after a failed dial")
	}
}

func TestConnectTimeoutClassification(t *testing.T) {
	t.Parallel()

	var netErr *socket.NetworkError
	sock := socket.New(socket.Config{Address: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	_, err := sock.Send(wire.KindEmpty, nil, nil)
	if err == nil {
		t.Fatal("expected a connect error")
	}
	if ne, ok := err.(*socket.NetworkError); ok {
		netErr = ne
	}
	if netErr == nil || netErr.Op != socket.ErrConnectTimeout {
		t.Fatalf("got %v (%T), want NetworkError{Op: ConnectTimeout}", err, err)
	}
}
