package serialproc

import (
	"testing"
	"time"

	"github.com/osu-uwrt/opboxlink/internal/fieldstore"
	"github.com/osu-uwrt/opboxlink/internal/frame"
	"github.com/osu-uwrt/opboxlink/internal/transceiver"
	"github.com/stretchr/testify/require"
)

func newLoopbackPair(t *testing.T) (transceiver.Transceiver, transceiver.Transceiver) {
	t.Helper()
	port := 34000 + (time.Now().Nanosecond() % 1000)

	a, err := transceiver.NewLoopback("localhost", port, transceiver.OpboxSide)
	require.NoError(t, err)
	b, err := transceiver.NewLoopback("localhost", port, transceiver.RobotSide)
	require.NoError(t, err)
	return a, b
}

func TestUpdateDecodesAndAppliesToStore(t *testing.T) {
	opboxXcvr, robotXcvr := newLoopbackPair(t)
	defer opboxXcvr.Close()
	defer robotXcvr.Close()

	sendStore := fieldstore.New()
	now := time.Now()
	sendStore.Set(frame.FieldRobotKillState, []byte{byte(frame.Killed)}, now)
	sendStore.Set(frame.FieldThrusterState, []byte{byte(frame.ThrusterActive)}, now)
	sendStore.Set(frame.FieldDiagState, []byte{byte(frame.DiagWarn)}, now)
	sendStore.Set(frame.FieldLeakState, []byte{byte(frame.LeakOK)}, now)

	buf, err := frame.Encode(frame.RobotStatusFrame, sendStore)
	require.NoError(t, err)
	require.NoError(t, opboxXcvr.Send(buf))

	var received frame.Decoded
	var callbackFired bool
	proc := New(robotXcvr, fieldstore.New(), func(d frame.Decoded) {
		callbackFired = true
		received = d
	}, nil)

	require.NoError(t, proc.Update(time.Now()))
	require.True(t, callbackFired)
	require.Equal(t, frame.RobotStatusFrame, received.FrameID)

	v, ok := proc.GetFieldUint8(frame.FieldDiagState)
	require.True(t, ok)
	require.Equal(t, uint8(frame.DiagWarn), v)

	lastRecv, hasRecv := proc.LastMessageRecvTime()
	require.True(t, hasRecv)
	require.False(t, lastRecv.IsZero())
}

func TestUpdateWithNoDataIsNoOp(t *testing.T) {
	opboxXcvr, robotXcvr := newLoopbackPair(t)
	defer opboxXcvr.Close()
	defer robotXcvr.Close()

	proc := New(robotXcvr, fieldstore.New(), nil, nil)
	require.NoError(t, proc.Update(time.Now()))

	_, hasRecv := proc.LastMessageRecvTime()
	require.False(t, hasRecv)
}

func TestSendEncodesFromStoreAndTransmits(t *testing.T) {
	opboxXcvr, robotXcvr := newLoopbackPair(t)
	defer opboxXcvr.Close()
	defer robotXcvr.Close()

	store := fieldstore.New()
	now := time.Now()
	store.Set(frame.FieldKillButtonState, []byte{byte(frame.Killed)}, now)

	proc := New(opboxXcvr, store, nil, nil)
	require.NoError(t, proc.Send(frame.OpboxStatusFrame))

	data, outcome, err := robotXcvr.Recv(500 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, transceiver.Data, outcome)
	require.Len(t, data, frame.Layouts[frame.OpboxStatusFrame].TotalLength())
}

func TestSendFailsOnMissingRequiredField(t *testing.T) {
	opboxXcvr, robotXcvr := newLoopbackPair(t)
	defer opboxXcvr.Close()
	defer robotXcvr.Close()

	proc := New(opboxXcvr, fieldstore.New(), nil, nil)
	err := proc.Send(frame.OpboxStatusFrame)
	require.Error(t, err)

	var encErr *frame.EncodeError
	require.ErrorAs(t, err, &encErr)
}

func TestSetFieldAndGetFieldRoundTrip(t *testing.T) {
	proc := New(nil, fieldstore.New(), nil, nil)
	now := time.Now()

	proc.SetFieldString(frame.FieldNotificationSensorName, "leak1", now)
	v, ok := proc.GetFieldString(frame.FieldNotificationSensorName)
	require.True(t, ok)
	require.Equal(t, "leak1", v)

	proc.SetField(frame.FieldNotificationUID, []byte{7}, now)
	raw, ok := proc.GetField(frame.FieldNotificationUID)
	require.True(t, ok)
	require.Equal(t, []byte{7}, raw)
}
