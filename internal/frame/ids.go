// Package frame implements the opbox/robot wire protocol: a fixed-layout,
// checksummed frame format shared by both peers of the link.
package frame

import (
	"fmt"
	"strings"
)

// FieldID identifies a single field carried in one or more frame layouts.
type FieldID uint8

const (
	FieldSync FieldID = iota
	FieldFrameID
	FieldChecksum

	FieldRobotKillState
	FieldThrusterState
	FieldDiagState
	FieldLeakState

	FieldKillButtonState

	FieldNotificationType
	FieldNotificationUID
	FieldNotificationSensorName
	FieldNotificationDescription
	FieldAckedNotificationUID
)

func (f FieldID) String() string {
	switch f {
	case FieldSync:
		return "sync"
	case FieldFrameID:
		return "frame_id"
	case FieldChecksum:
		return "checksum"
	case FieldRobotKillState:
		return "robot_kill_state"
	case FieldThrusterState:
		return "thruster_state"
	case FieldDiagState:
		return "diag_state"
	case FieldLeakState:
		return "leak_state"
	case FieldKillButtonState:
		return "kill_button_state"
	case FieldNotificationType:
		return "notification_type"
	case FieldNotificationUID:
		return "notification_uid"
	case FieldNotificationSensorName:
		return "notification_sensor_name"
	case FieldNotificationDescription:
		return "notification_description"
	case FieldAckedNotificationUID:
		return "acked_notification_uid"
	default:
		return "unknown_field"
	}
}

// FrameID identifies a frame's layout on the wire.
type FrameID uint8

const (
	NothingFrame FrameID = iota
	RobotStatusFrame
	OpboxStatusFrame
	NotificationFrame
	AckFrame
)

func (f FrameID) String() string {
	switch f {
	case NothingFrame:
		return "NOTHING_FRAME"
	case RobotStatusFrame:
		return "ROBOT_STATUS_FRAME"
	case OpboxStatusFrame:
		return "OPBOX_STATUS_FRAME"
	case NotificationFrame:
		return "NOTIFICATION_FRAME"
	case AckFrame:
		return "ACK_FRAME"
	default:
		return "UNKNOWN_FRAME"
	}
}

// Semantic enumerations. All are one byte wide on the wire.

type KillState uint8

const (
	Unkilled KillState = iota
	Killed
)

func (k KillState) String() string {
	switch k {
	case Unkilled:
		return "UNKILLED"
	case Killed:
		return "KILLED"
	default:
		return "UNKNOWN"
	}
}

type ThrusterState uint8

const (
	ThrusterIdle ThrusterState = iota
	ThrusterActive
)

func (t ThrusterState) String() string {
	switch t {
	case ThrusterIdle:
		return "IDLE"
	case ThrusterActive:
		return "ACTIVE"
	default:
		return "UNKNOWN"
	}
}

type LeakState uint8

const (
	LeakOK LeakState = iota
	Leaking
)

func (l LeakState) String() string {
	switch l {
	case LeakOK:
		return "OK"
	case Leaking:
		return "LEAKING"
	default:
		return "UNKNOWN"
	}
}

type DiagState uint8

const (
	DiagOK DiagState = iota
	DiagWarn
	DiagError
)

func (d DiagState) String() string {
	switch d {
	case DiagOK:
		return "OK"
	case DiagWarn:
		return "WARN"
	case DiagError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

type NotificationType uint8

const (
	NotificationWarning NotificationType = iota
	NotificationError
	NotificationFatal
)

func (n NotificationType) String() string {
	switch n {
	case NotificationWarning:
		return "WARNING"
	case NotificationError:
		return "ERROR"
	case NotificationFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseNotificationType parses the string form used in configuration
// (case-insensitive) back into a NotificationType.
func ParseNotificationType(s string) (NotificationType, error) {
	switch strings.ToUpper(s) {
	case "WARNING":
		return NotificationWarning, nil
	case "ERROR":
		return NotificationError, nil
	case "FATAL":
		return NotificationFatal, nil
	default:
		return 0, fmt.Errorf("frame: unknown notification type %q", s)
	}
}

// DecodeField renders raw, a field's wire bytes, as its decoded semantic
// value: the enum name for state fields, the trimmed string for text fields,
// or the decimal value for counters. Used by the diagnostic HTTP surface and
// opboxlinkctl status so a field's value is legible without knowing the wire
// layout.
func DecodeField(field FieldID, raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	switch field {
	case FieldRobotKillState, FieldKillButtonState:
		return KillState(raw[0]).String()
	case FieldThrusterState:
		return ThrusterState(raw[0]).String()
	case FieldDiagState:
		return DiagState(raw[0]).String()
	case FieldLeakState:
		return LeakState(raw[0]).String()
	case FieldNotificationType:
		return NotificationType(raw[0]).String()
	case FieldNotificationUID, FieldAckedNotificationUID:
		return fmt.Sprintf("%d", raw[0])
	case FieldNotificationSensorName, FieldNotificationDescription:
		return trimNUL(raw)
	default:
		return fmt.Sprintf("% x", raw)
	}
}

func trimNUL(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}
