package link

import (
	"time"

	"github.com/osu-uwrt/opboxlink/internal/frame"
	"github.com/osu-uwrt/opboxlink/internal/metrics"
	"github.com/osu-uwrt/opboxlink/internal/transceiver"
)

// OpboxLink is the opbox-side Link Engine. It bumps OPBOX_STATUS_FRAME and
// exposes SendKillButtonState; SendRobotState belongs to the robot side.
type OpboxLink struct {
	*Engine
}

// NewOpboxLink constructs an opbox-side link over xcvr, writes startup
// defaults, and spawns its pump task. m is optional and may be nil.
func NewOpboxLink(xcvr transceiver.Transceiver, label string, callbacks Callbacks, m *metrics.Metrics) (*OpboxLink, error) {
	e, err := newEngine(RoleOpbox, xcvr, frame.OpboxStatusFrame, label, callbacks, m)
	if err != nil {
		return nil, err
	}
	return &OpboxLink{Engine: e}, nil
}

// SendKillButtonState writes the kill-button field and transmits
// OPBOX_STATUS_FRAME.
func (o *OpboxLink) SendKillButtonState(state frame.KillState) error {
	now := time.Now()
	o.proc.SetFieldUint8(frame.FieldKillButtonState, uint8(state), now)
	return o.proc.Send(frame.OpboxStatusFrame)
}

// SendRobotState is a programming error on an opbox-side link.
func (o *OpboxLink) SendRobotState(frame.KillState, frame.ThrusterState, frame.DiagState, frame.LeakState) error {
	return &UnsupportedOperation{Operation: "send_robot_state", Role: RoleOpbox}
}
