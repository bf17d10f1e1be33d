// Package link implements the Link Engine: the protocol layer above the
// Serial Processor providing heartbeat/keepalive, connection liveness, and
// acknowledged notification delivery between the robot and opbox roles.
package link

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/osu-uwrt/opboxlink/internal/fieldstore"
	"github.com/osu-uwrt/opboxlink/internal/frame"
	"github.com/osu-uwrt/opboxlink/internal/logger"
	"github.com/osu-uwrt/opboxlink/internal/metrics"
	"github.com/osu-uwrt/opboxlink/internal/serialproc"
	"github.com/osu-uwrt/opboxlink/internal/telemetry"
	"github.com/osu-uwrt/opboxlink/internal/transceiver"
	"go.opentelemetry.io/otel/trace"
)

// Role identifies which side of the link this Engine plays.
type Role int

const (
	RoleRobot Role = iota
	RoleOpbox
)

func (r Role) String() string {
	switch r {
	case RoleRobot:
		return "robot"
	case RoleOpbox:
		return "opbox"
	default:
		return "unknown"
	}
}

const (
	// HeartbeatInterval is how often the pump task sends its bump frame.
	HeartbeatInterval = 100 * time.Millisecond
	// StaleTimeout is how long since the last received message before the
	// link is considered disconnected.
	StaleTimeout = 500 * time.Millisecond
	// pumpTick is the pump task's sleep granularity, yielding the Field
	// Store mutex between iterations.
	pumpTick = 5 * time.Millisecond
	// ackPollInterval is how long send_notification waits for its ack after
	// each transmission before retransmitting.
	ackPollInterval = 50 * time.Millisecond
)

// Callbacks are the role-agnostic hooks a Link Engine dispatches decoded
// frames and connection-state transitions to, always from the pump task.
type Callbacks struct {
	OnNotification    func(kind frame.NotificationType, sensor, description string)
	OnKillButton      func(state frame.KillState)
	OnStatus          func(kill frame.KillState, thruster frame.ThrusterState, diag frame.DiagState, leak frame.LeakState)
	OnConnectionChange func(connected bool)
}

// Engine is the shared pump/heartbeat/ack machinery used by both roles.
// Role-specific send operations live in robot.go and opbox.go.
type Engine struct {
	role      Role
	bumpFrame frame.FrameID
	label     string
	callbacks Callbacks
	metrics   *metrics.Metrics

	proc *serialproc.Processor

	notificationCounter atomic.Uint32 // low 8 bits used, wraps per spec

	seenUIDsMu sync.Mutex
	seenUIDs   map[uint8]struct{}

	sendMu sync.Mutex // serializes send_notification per spec.md §4.5

	lastSendTime time.Time

	connectedMu sync.Mutex
	connected   bool

	stopCh    chan struct{}
	stoppedCh chan struct{}
	wg        sync.WaitGroup
}

// newEngine constructs the shared engine state, applies startup defaults,
// and spawns the pump task. bumpFrame is the periodic heartbeat frame this
// role owns. m is optional and may be nil, in which case frame/notification
// metrics are skipped.
func newEngine(role Role, xcvr transceiver.Transceiver, bumpFrame frame.FrameID, label string, callbacks Callbacks, m *metrics.Metrics) (*Engine, error) {
	if xcvr == nil {
		return nil, &FatalLinkError{Reason: "nil transceiver", Err: fmt.Errorf("link: transceiver required")}
	}

	store := fieldstore.New()
	e := &Engine{
		role:      role,
		bumpFrame: bumpFrame,
		label:     label,
		callbacks: callbacks,
		metrics:   m,
		seenUIDs:  make(map[uint8]struct{}),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}

	now := time.Now()
	store.Set(frame.FieldRobotKillState, []byte{byte(frame.Killed)}, now)
	store.Set(frame.FieldThrusterState, []byte{byte(frame.ThrusterIdle)}, now)
	store.Set(frame.FieldDiagState, []byte{byte(frame.DiagOK)}, now)
	store.Set(frame.FieldLeakState, []byte{byte(frame.LeakOK)}, now)
	store.Set(frame.FieldKillButtonState, []byte{byte(frame.Killed)}, now)

	e.proc = serialproc.New(xcvr, store, e.onNewMessage, m)

	e.wg.Add(1)
	go e.pump()

	return e, nil
}

// Close stops the pump task and releases the underlying transceiver. MUST
// NOT be called from the pump task itself (i.e. from within a callback).
func (e *Engine) Close() error {
	close(e.stopCh)
	e.wg.Wait()
	return e.proc.Close()
}

func (e *Engine) pump() {
	defer e.wg.Done()
	defer close(e.stoppedCh)

	ticker := time.NewTicker(pumpTick)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
		}

		now := time.Now()
		e.updateOnce(now)

		if now.Sub(e.lastSendTime) > HeartbeatInterval {
			e.sendHeartbeat(now)
			e.lastSendTime = now
		}

		e.updateConnectionState(now)
	}
}

// updateOnce runs one pump-task Update cycle inside its own span, per
// SPEC_FULL.md's "the pump loop additionally starts an OpenTelemetry span per
// update() call."
func (e *Engine) updateOnce(now time.Time) {
	ctx, span := telemetry.StartSpan(context.Background(), "link.pump.update",
		trace.WithAttributes(telemetry.RoleAttr(e.role.String())))
	defer span.End()

	if err := e.proc.Update(now); err != nil {
		telemetry.RecordError(ctx, err)
		logger.Warn("link: pump update failed", logger.Role(e.role.String()), logger.Err(err))
	}
}

// sendHeartbeat transmits this role's bump frame inside its own span.
func (e *Engine) sendHeartbeat(now time.Time) {
	ctx, span := telemetry.StartSpan(context.Background(), "link.pump.heartbeat",
		trace.WithAttributes(telemetry.RoleAttr(e.role.String()), telemetry.FrameIDAttr(e.bumpFrame.String())))
	defer span.End()

	if err := e.proc.Send(e.bumpFrame); err != nil {
		telemetry.RecordError(ctx, err)
		logger.Warn("link: heartbeat send failed", logger.Role(e.role.String()), logger.Err(err))
	}
}

func (e *Engine) updateConnectionState(now time.Time) {
	lastRecv, has := e.proc.LastMessageRecvTime()
	connected := has && now.Sub(lastRecv) < StaleTimeout

	e.connectedMu.Lock()
	changed := connected != e.connected
	e.connected = connected
	e.connectedMu.Unlock()

	if changed && e.callbacks.OnConnectionChange != nil {
		e.callbacks.OnConnectionChange(connected)
	}
}

// Connected reports the current connection-state-machine value.
func (e *Engine) Connected() bool {
	e.connectedMu.Lock()
	defer e.connectedMu.Unlock()
	return e.connected
}

// onNewMessage is the Serial Processor's on_new_message hook, dispatched
// synchronously from the pump task per frame id.
func (e *Engine) onNewMessage(d frame.Decoded) {
	switch d.FrameID {
	case frame.RobotStatusFrame:
		if e.callbacks.OnStatus != nil {
			e.callbacks.OnStatus(
				frame.KillState(d.Fields[frame.FieldRobotKillState][0]),
				frame.ThrusterState(d.Fields[frame.FieldThrusterState][0]),
				frame.DiagState(d.Fields[frame.FieldDiagState][0]),
				frame.LeakState(d.Fields[frame.FieldLeakState][0]),
			)
		}
	case frame.OpboxStatusFrame:
		if e.callbacks.OnKillButton != nil {
			e.callbacks.OnKillButton(frame.KillState(d.Fields[frame.FieldKillButtonState][0]))
		}
	case frame.NotificationFrame:
		e.handleNotificationFrame(d)
	case frame.AckFrame:
		// No direct callback; send_notification polls the store for the ack.
	case frame.NothingFrame:
		// Payload ignored; last_msg_recv_time was already refreshed.
	}
}

func (e *Engine) handleNotificationFrame(d frame.Decoded) {
	uid := d.Fields[frame.FieldNotificationUID][0]

	e.seenUIDsMu.Lock()
	_, seen := e.seenUIDs[uid]
	if !seen {
		e.seenUIDs[uid] = struct{}{}
	}
	e.seenUIDsMu.Unlock()

	if !seen && e.callbacks.OnNotification != nil {
		kind := frame.NotificationType(d.Fields[frame.FieldNotificationType][0])
		sensor := trimNUL(d.Fields[frame.FieldNotificationSensorName])
		description := trimNUL(d.Fields[frame.FieldNotificationDescription])
		e.callbacks.OnNotification(kind, sensor, description)
	}

	now := time.Now()
	e.proc.SetFieldUint8(frame.FieldAckedNotificationUID, uid, now)
	if err := e.proc.Send(frame.AckFrame); err != nil {
		logger.Warn("link: ack send failed", logger.Role(e.role.String()), logger.NotificationUID(uid), logger.Err(err))
	}
}

func trimNUL(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}

// SendNotification allocates a fresh uid, transmits NOTIFICATION_FRAME until
// acknowledged or timeout elapses, retransmitting every ~50ms and checking the
// ack field every millisecond in between. At most
// one SendNotification may be outstanding per Engine; concurrent callers
// serialize on an internal mutex.
func (e *Engine) SendNotification(kind frame.NotificationType, sensor, description string, timeout time.Duration) (bool, error) {
	ctx, span := telemetry.StartSpan(context.Background(), "link.send_notification",
		trace.WithAttributes(
			telemetry.RoleAttr(e.role.String()),
			telemetry.FrameIDAttr(frame.NotificationFrame.String()),
		))
	defer span.End()

	start := time.Now()
	acked, err := e.sendNotification(kind, sensor, description, timeout)
	if err != nil {
		telemetry.RecordError(ctx, err)
	}

	if e.metrics != nil {
		outcome := "timed_out"
		switch {
		case err != nil:
			outcome = "error"
		case acked:
			outcome = "acked"
			e.metrics.NotificationAckLatency.Observe(time.Since(start).Seconds())
		}
		e.metrics.NotificationsTotal.WithLabelValues(outcome).Inc()
	}

	return acked, err
}

func (e *Engine) sendNotification(kind frame.NotificationType, sensor, description string, timeout time.Duration) (bool, error) {
	e.sendMu.Lock()
	defer e.sendMu.Unlock()

	uid := uint8(e.notificationCounter.Add(1))

	now := time.Now()
	e.proc.SetFieldUint8(frame.FieldNotificationType, uint8(kind), now)
	e.proc.SetFieldUint8(frame.FieldNotificationUID, uid, now)
	e.proc.SetFieldString(frame.FieldNotificationSensorName, sensor, now)
	e.proc.SetFieldString(frame.FieldNotificationDescription, description, now)

	deadline := time.Now().Add(timeout)
	for {
		if err := e.proc.Send(frame.NotificationFrame); err != nil {
			return false, fmt.Errorf("link: send_notification: %w", err)
		}

		pollDeadline := time.Now().Add(ackPollInterval)
		for time.Now().Before(pollDeadline) {
			if acked, ok := e.proc.GetFieldUint8(frame.FieldAckedNotificationUID); ok && acked == uid {
				return true, nil
			}
			if time.Now().After(deadline) {
				return false, nil
			}
			time.Sleep(time.Millisecond)
		}

		if time.Now().After(deadline) {
			return false, nil
		}
	}
}

// Role returns the engine's role.
func (e *Engine) Role() Role { return e.role }

// Store returns the engine's underlying Field Store, for read-only
// inspection by callers such as the diagnostic HTTP surface.
func (e *Engine) Store() *fieldstore.Store {
	return e.proc.Store()
}
