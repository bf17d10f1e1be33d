package transceiver

import (
	"fmt"
	"net"
	"time"
)

// Side selects which half of a dual-socket loopback pair a peer occupies.
// spec.md §6: for address localhost, the opbox side binds receive on port
// and sends to port+1; the robot side binds receive on port+1 and sends to
// port. Both peers must agree on this assignment out of process -- there is
// no wire-level negotiation.
type Side int

const (
	// OpboxSide binds receive on port, sends to port+1.
	OpboxSide Side = iota
	// RobotSide binds receive on port+1, sends to port.
	RobotSide
)

// Loopback is the dual-socket variant used when both link peers run on the
// same host, so they do not collide trying to bind the same port.
type Loopback struct {
	conn     *net.UDPConn
	sendAddr *net.UDPAddr
}

// NewLoopback binds the receive socket for side and resolves the send
// destination as the other half of the {port, port+1} pair.
func NewLoopback(host string, port int, side Side) (*Loopback, error) {
	var recvPort, sendPort int
	switch side {
	case OpboxSide:
		recvPort, sendPort = port, port+1
	case RobotSide:
		recvPort, sendPort = port+1, port
	default:
		return nil, fmt.Errorf("transceiver: unknown loopback side %d", side)
	}

	recvAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", host, recvPort))
	if err != nil {
		return nil, fmt.Errorf("transceiver: resolve recv %s:%d: %w", host, recvPort, err)
	}
	conn, err := net.ListenUDP("udp", recvAddr)
	if err != nil {
		return nil, fmt.Errorf("transceiver: bind recv %s:%d: %w", host, recvPort, err)
	}

	sendAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", host, sendPort))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("transceiver: resolve send %s:%d: %w", host, sendPort, err)
	}

	return &Loopback{conn: conn, sendAddr: sendAddr}, nil
}

func (t *Loopback) Send(data []byte) error {
	_, err := t.conn.WriteToUDP(data, t.sendAddr)
	if err != nil {
		return fmt.Errorf("transceiver: send: %w", err)
	}
	return nil
}

func (t *Loopback) Recv(deadline time.Duration) ([]byte, Outcome, error) {
	return recvFrom(t.conn, deadline)
}

func (t *Loopback) Close() error {
	return t.conn.Close()
}
