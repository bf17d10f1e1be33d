package transceiver

import (
	"fmt"
	"net"
	"time"
)

// RemoteUDP is bound to a local ephemeral port and always sends to a fixed
// remote address; it receives from any source, matching spec.md's "Remote
// UDP" variant.
type RemoteUDP struct {
	conn *net.UDPConn
	peer *net.UDPAddr
}

// NewRemoteUDP binds an ephemeral local UDP socket and resolves peerAddr as
// the fixed send destination.
func NewRemoteUDP(peerAddr string, peerPort int) (*RemoteUDP, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("transceiver: bind local socket: %w", err)
	}

	peer, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", peerAddr, peerPort))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("transceiver: resolve peer %s:%d: %w", peerAddr, peerPort, err)
	}

	return &RemoteUDP{conn: conn, peer: peer}, nil
}

func (t *RemoteUDP) Send(data []byte) error {
	_, err := t.conn.WriteToUDP(data, t.peer)
	if err != nil {
		return fmt.Errorf("transceiver: send: %w", err)
	}
	return nil
}

func (t *RemoteUDP) Recv(deadline time.Duration) ([]byte, Outcome, error) {
	return recvFrom(t.conn, deadline)
}

func (t *RemoteUDP) Close() error {
	return t.conn.Close()
}

// recvFrom performs one bounded read, shared by both transceiver variants.
// Mirrors the portmapper's serveUDP loop: set a short read deadline so the
// caller's pump can poll its own stop condition between reads, and copy the
// datagram out of the shared scratch buffer before returning it.
func recvFrom(conn *net.UDPConn, deadline time.Duration) ([]byte, Outcome, error) {
	if err := conn.SetReadDeadline(time.Now().Add(deadline)); err != nil {
		return nil, Closed, fmt.Errorf("transceiver: set read deadline: %w", err)
	}

	buf := make([]byte, 65535)
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, Timeout, nil
		}
		return nil, Closed, fmt.Errorf("transceiver: recv: %w", err)
	}

	out := make([]byte, n)
	copy(out, buf[:n])
	return out, Data, nil
}
