package transceiver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopbackPairExchangesDatagrams(t *testing.T) {
	port := 31000 + (time.Now().Nanosecond() % 1000)

	opbox, err := NewLoopback("localhost", port, OpboxSide)
	require.NoError(t, err)
	defer opbox.Close()

	robot, err := NewLoopback("localhost", port, RobotSide)
	require.NoError(t, err)
	defer robot.Close()

	require.NoError(t, opbox.Send([]byte("hello robot")))

	data, outcome, err := robot.Recv(500 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, Data, outcome)
	require.Equal(t, "hello robot", string(data))

	require.NoError(t, robot.Send([]byte("hello opbox")))
	data, outcome, err = opbox.Recv(500 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, Data, outcome)
	require.Equal(t, "hello opbox", string(data))
}

func TestRecvTimesOutWithNoData(t *testing.T) {
	port := 32000 + (time.Now().Nanosecond() % 1000)
	opbox, err := NewLoopback("localhost", port, OpboxSide)
	require.NoError(t, err)
	defer opbox.Close()

	_, outcome, err := opbox.Recv(20 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, Timeout, outcome)
}

func TestLoopbackRejectsSameSideBindCollision(t *testing.T) {
	port := 33000 + (time.Now().Nanosecond() % 1000)
	a, err := NewLoopback("localhost", port, OpboxSide)
	require.NoError(t, err)
	defer a.Close()

	_, err = NewLoopback("localhost", port, OpboxSide)
	require.Error(t, err)
}
