package embed

import (
	"errors"
	"testing"
	"time"

	"github.com/osu-uwrt/opboxlink/internal/frame"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	acked bool
	err   error
}

func (f fakeNotifier) SendNotification(frame.NotificationType, string, string, time.Duration) (bool, error) {
	return f.acked, f.err
}

type fakeConn struct{ connected bool }

func (f fakeConn) Connected() bool { return f.connected }

func TestSendOpboxNotificationFailsFastWhenDisconnected(t *testing.T) {
	api := New(fakeNotifier{acked: true}, fakeConn{connected: false}, nil)
	result := api.SendOpboxNotification(frame.NotificationWarning, "leak1", "test")
	require.False(t, result.Success)
	require.Contains(t, result.Message, "not connected")
}

func TestSendOpboxNotificationSucceedsWhenAcked(t *testing.T) {
	api := New(fakeNotifier{acked: true}, fakeConn{connected: true}, nil)
	result := api.SendOpboxNotification(frame.NotificationError, "leak1", "test")
	require.True(t, result.Success)
}

func TestSendOpboxNotificationReportsTimeout(t *testing.T) {
	api := New(fakeNotifier{acked: false}, fakeConn{connected: true}, nil)
	result := api.SendOpboxNotification(frame.NotificationError, "leak1", "test")
	require.False(t, result.Success)
	require.Contains(t, result.Message, "not acknowledged")
}

func TestSendOpboxNotificationPropagatesTransportError(t *testing.T) {
	api := New(fakeNotifier{err: errors.New("socket closed")}, fakeConn{connected: true}, nil)
	result := api.SendOpboxNotification(frame.NotificationFatal, "leak1", "test")
	require.False(t, result.Success)
	require.Contains(t, result.Message, "socket closed")
}

func TestKillReportEmitterForwardsToHandler(t *testing.T) {
	var got frame.KillState
	var called bool
	api := New(fakeNotifier{}, fakeConn{connected: true}, func(s frame.KillState) {
		called = true
		got = s
	})

	api.KillReportEmitter(frame.Killed)
	require.True(t, called)
	require.Equal(t, frame.Killed, got)
}

func TestKillReportEmitterNoHandlerIsNoOp(t *testing.T) {
	api := New(fakeNotifier{}, fakeConn{connected: true}, nil)
	require.NotPanics(t, func() { api.KillReportEmitter(frame.Unkilled) })
}
