package link

import (
	"time"

	"github.com/osu-uwrt/opboxlink/internal/frame"
	"github.com/osu-uwrt/opboxlink/internal/metrics"
	"github.com/osu-uwrt/opboxlink/internal/transceiver"
)

// RobotLink is the robot-side Link Engine. It bumps ROBOT_STATUS_FRAME and
// exposes SendRobotState; SendKillButtonState belongs to the opbox side.
type RobotLink struct {
	*Engine
}

// NewRobotLink constructs a robot-side link over xcvr, writes startup
// defaults, and spawns its pump task. m is optional and may be nil.
func NewRobotLink(xcvr transceiver.Transceiver, label string, callbacks Callbacks, m *metrics.Metrics) (*RobotLink, error) {
	e, err := newEngine(RoleRobot, xcvr, frame.RobotStatusFrame, label, callbacks, m)
	if err != nil {
		return nil, err
	}
	return &RobotLink{Engine: e}, nil
}

// SendRobotState writes the four robot-status fields and transmits
// ROBOT_STATUS_FRAME.
func (r *RobotLink) SendRobotState(kill frame.KillState, thruster frame.ThrusterState, diag frame.DiagState, leak frame.LeakState) error {
	now := time.Now()
	r.proc.SetFieldUint8(frame.FieldRobotKillState, uint8(kill), now)
	r.proc.SetFieldUint8(frame.FieldThrusterState, uint8(thruster), now)
	r.proc.SetFieldUint8(frame.FieldDiagState, uint8(diag), now)
	r.proc.SetFieldUint8(frame.FieldLeakState, uint8(leak), now)
	return r.proc.Send(frame.RobotStatusFrame)
}

// SendKillButtonState is a programming error on a robot-side link.
func (r *RobotLink) SendKillButtonState(frame.KillState) error {
	return &UnsupportedOperation{Operation: "send_kill_button_state", Role: RoleRobot}
}
