// Package embed is opboxlink's public embedding surface: the API an
// out-of-scope ROS node links against to send opbox notifications and
// receive kill-button reports, without reaching into the daemon's internal
// packages.
package embed

import (
	"sync"
	"time"

	"github.com/osu-uwrt/opboxlink/internal/frame"
)

// NotificationResult is the outcome of SendOpboxNotification.
type NotificationResult struct {
	Success bool
	Message string
}

// Notifier is satisfied by a Link Engine's SendNotification method.
type Notifier interface {
	SendNotification(kind frame.NotificationType, sensor, description string, timeout time.Duration) (bool, error)
}

// ConnectionChecker reports whether the underlying link is currently
// connected, so SendOpboxNotification can fail fast without waiting out a
// full ack timeout.
type ConnectionChecker interface {
	Connected() bool
}

// DefaultNotificationTimeout bounds how long SendOpboxNotification waits for
// an ack before reporting failure.
const DefaultNotificationTimeout = 500 * time.Millisecond

// OpboxAPI is the embedding interface surface: a thin facade over a Link
// Engine for the topside node's notification and kill-report needs.
type OpboxAPI struct {
	notifier Notifier
	conn     ConnectionChecker

	killButtonMu sync.Mutex
	onKillButton func(frame.KillState)
}

// SendOpboxNotification delegates to the Link Engine's SendNotification,
// failing fast with a descriptive message if the peer is not connected.
func (a *OpboxAPI) SendOpboxNotification(severity frame.NotificationType, sensor, description string) NotificationResult {
	if a.conn != nil && !a.conn.Connected() {
		return NotificationResult{Success: false, Message: "opboxlink: peer not connected"}
	}

	acked, err := a.notifier.SendNotification(severity, sensor, description, DefaultNotificationTimeout)
	if err != nil {
		return NotificationResult{Success: false, Message: err.Error()}
	}
	if !acked {
		return NotificationResult{Success: false, Message: "opboxlink: notification not acknowledged in time"}
	}
	return NotificationResult{Success: true}
}

// New constructs an OpboxAPI over notifier and conn. onKillButton, if
// non-nil, is invoked by KillReportEmitter for every kill-button report.
func New(notifier Notifier, conn ConnectionChecker, onKillButton func(frame.KillState)) *OpboxAPI {
	return &OpboxAPI{notifier: notifier, conn: conn, onKillButton: onKillButton}
}

// KillReportEmitter is wired as a Link Engine's OnKillButton callback; it
// forwards every kill-button report to the configured handler. The link
// calls it for each decoded OPBOX_STATUS_FRAME, including the peer's
// periodic heartbeats, so the same state is forwarded repeatedly; it does
// not filter for changes.
func (a *OpboxAPI) KillReportEmitter(state frame.KillState) {
	a.killButtonMu.Lock()
	handler := a.onKillButton
	a.killButtonMu.Unlock()

	if handler != nil {
		handler(state)
	}
}
