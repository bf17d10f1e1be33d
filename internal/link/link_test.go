package link

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
	port := 35000 + (time.Now().Nanosecond() % 1000)

	opboxXcvr, err := transceiver.NewLoopback("localhost", port, transceiver.OpboxSide)
	require.NoError(t, err)
	robotXcvr, err := transceiver.NewLoopback("localhost", port, transceiver.RobotSide)
	require.NoError(t, err)
	return opboxXcvr, robotXcvr
}

func TestRobotAndOpboxLinksBecomeConnected(t *testing.T) {
	opboxXcvr, robotXcvr := newLoopbackPair(t)

	var robotConnected, opboxConnected bool
	robotLink, err := NewRobotLink(robotXcvr, "robot-test", Callbacks{
		OnConnectionChange: func(c bool) { robotConnected = c },
	}, nil)
	require.NoError(t, err)
	defer robotLink.Close()

	opboxLink, err := NewOpboxLink(opboxXcvr, "opbox-test", Callbacks{
		OnConnectionChange: func(c bool) { opboxConnected = c },
	}, nil)
	require.NoError(t, err)
	defer opboxLink.Close()

	require.Eventually(t, func() bool {
		return robotConnected && opboxConnected
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSendRobotStateDeliversOnStatus(t *testing.T) {
	opboxXcvr, robotXcvr := newLoopbackPair(t)

	statusCh := make(chan struct {
		kill     frame.KillState
		thruster frame.ThrusterState
		diag     frame.DiagState
		leak     frame.LeakState
	}, 8)

	robotLink, err := NewRobotLink(robotXcvr, "robot-test", Callbacks{}, nil)
	require.NoError(t, err)
	defer robotLink.Close()

	opboxLink, err := NewOpboxLink(opboxXcvr, "opbox-test", Callbacks{
		OnStatus: func(kill frame.KillState, thruster frame.ThrusterState, diag frame.DiagState, leak frame.LeakState) {
			statusCh <- struct {
				kill     frame.KillState
				thruster frame.ThrusterState
				diag     frame.DiagState
				leak     frame.LeakState
			}{kill, thruster, diag, leak}
		},
	}, nil)
	require.NoError(t, err)
	defer opboxLink.Close()

	require.NoError(t, robotLink.SendRobotState(frame.Unkilled, frame.ThrusterActive, frame.DiagWarn, frame.LeakOK))

	select {
	case s := <-statusCh:
		require.Equal(t, frame.Unkilled, s.kill)
		require.Equal(t, frame.ThrusterActive, s.thruster)
		require.Equal(t, frame.DiagWarn, s.diag)
		require.Equal(t, frame.LeakOK, s.leak)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for on_status callback")
	}
}

func TestSendKillButtonStateDeliversOnKillButton(t *testing.T) {
	opboxXcvr, robotXcvr := newLoopbackPair(t)

	killCh := make(chan frame.KillState, 8)

	robotLink, err := NewRobotLink(robotXcvr, "robot-test", Callbacks{
		OnKillButton: func(state frame.KillState) { killCh <- state },
	}, nil)
	require.NoError(t, err)
	defer robotLink.Close()

	opboxLink, err := NewOpboxLink(opboxXcvr, "opbox-test", Callbacks{}, nil)
	require.NoError(t, err)
	defer opboxLink.Close()

	require.NoError(t, opboxLink.SendKillButtonState(frame.Unkilled))

	select {
	case s := <-killCh:
		require.Equal(t, frame.Unkilled, s)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for on_kill_button callback")
	}
}

func TestRobotSideSendKillButtonStateIsUnsupported(t *testing.T) {
	_, robotXcvr := newLoopbackPair(t)
	robotLink, err := NewRobotLink(robotXcvr, "robot-test", Callbacks{}, nil)
	require.NoError(t, err)
	defer robotLink.Close()

	err = robotLink.SendKillButtonState(frame.Unkilled)
	require.Error(t, err)
	var unsupported *UnsupportedOperation
	require.ErrorAs(t, err, &unsupported)
}

func TestOpboxSideSendRobotStateIsUnsupported(t *testing.T) {
	opboxXcvr, _ := newLoopbackPair(t)
	opboxLink, err := NewOpboxLink(opboxXcvr, "opbox-test", Callbacks{}, nil)
	require.NoError(t, err)
	defer opboxLink.Close()

	err = opboxLink.SendRobotState(frame.Unkilled, frame.ThrusterIdle, frame.DiagOK, frame.LeakOK)
	require.Error(t, err)
	var unsupported *UnsupportedOperation
	require.ErrorAs(t, err, &unsupported)
}

func TestSendNotificationIsAcknowledged(t *testing.T) {
	opboxXcvr, robotXcvr := newLoopbackPair(t)

	notifCh := make(chan struct {
		kind        frame.NotificationType
		sensor      string
		description string
	}, 8)

	robotLink, err := NewRobotLink(robotXcvr, "robot-test", Callbacks{
		OnNotification: func(kind frame.NotificationType, sensor, description string) {
			notifCh <- struct {
				kind        frame.NotificationType
				sensor      string
				description string
			}{kind, sensor, description}
		},
	}, nil)
	require.NoError(t, err)
	defer robotLink.Close()

	opboxLink, err := NewOpboxLink(opboxXcvr, "opbox-test", Callbacks{}, nil)
	require.NoError(t, err)
	defer opboxLink.Close()

	acked, err := opboxLink.SendNotification(frame.NotificationWarning, "leak1", "bilge sensor tripped", 500*time.Millisecond)
	require.NoError(t, err)
	require.True(t, acked)

	select {
	case n := <-notifCh:
		require.Equal(t, frame.NotificationWarning, n.kind)
		require.Equal(t, "leak1", n.sensor)
		require.Equal(t, "bilge sensor tripped", n.description)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for on_notification callback")
	}
}

func TestSendNotificationTimesOutWithoutPeer(t *testing.T) {
	port := 36000 + (time.Now().Nanosecond() % 1000)
	opboxXcvr, err := transceiver.NewLoopback("localhost", port, transceiver.OpboxSide)
	require.NoError(t, err)

	opboxLink, err := NewOpboxLink(opboxXcvr, "opbox-test", Callbacks{}, nil)
	require.NoError(t, err)
	defer opboxLink.Close()

	acked, err := opboxLink.SendNotification(frame.NotificationError, "no-peer", "nobody listening", 100*time.Millisecond)
	require.NoError(t, err)
	require.False(t, acked)
}

func TestDuplicateNotificationUIDIsNotRedelivered(t *testing.T) {
	opboxXcvr, robotXcvr := newLoopbackPair(t)
	defer opboxXcvr.Close()

	var deliveries int
	robotLink, err := NewRobotLink(robotXcvr, "robot-test", Callbacks{
		OnNotification: func(frame.NotificationType, string, string) { deliveries++ },
	}, nil)
	require.NoError(t, err)
	defer robotLink.Close()

	store := fieldstore.New()
	now := time.Now()
	store.Set(frame.FieldNotificationType, []byte{byte(frame.NotificationWarning)}, now)
	store.Set(frame.FieldNotificationUID, []byte{99}, now)
	fieldstore.SetString(store, frame.FieldNotificationSensorName, "dup", now)
	fieldstore.SetString(store, frame.FieldNotificationDescription, "repeated uid", now)
	buf, err := frame.Encode(frame.NotificationFrame, store)
	require.NoError(t, err)

	require.NoError(t, opboxXcvr.Send(buf))
	require.NoError(t, opboxXcvr.Send(buf))

	require.Eventually(t, func() bool { return deliveries == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, deliveries)
}
