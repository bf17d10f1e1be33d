package frame

// SyncMarker is the fixed byte prefix every frame begins with: the character
// '*' followed by a terminating NUL.
var SyncMarker = []byte{'*', 0x00}

// Fixed field byte widths, per spec.
const (
	lenSync                    = 2
	lenFrameID                 = 1
	lenChecksum                = 2
	lenEnum                    = 1
	lenNotificationUID         = 1
	lenNotificationSensorName  = 16
	lenNotificationDescription = 63
)

// FieldLayout is one (field id, byte length) entry in a frame's layout.
type FieldLayout struct {
	Field  FieldID
	Length int
}

// Layout is the ordered list of fields making up one frame, sync marker and
// checksum included. The codec derives byte offsets from this ordering.
type Layout []FieldLayout

// Layouts holds the canonical per-frame wire layout, mirroring the
// opboxframes.hpp FRAME_LAYOUTS table from the original source.
var Layouts = map[FrameID]Layout{
	NothingFrame: {
		{FieldSync, lenSync},
		{FieldFrameID, lenFrameID},
		{FieldChecksum, lenChecksum},
	},
	RobotStatusFrame: {
		{FieldSync, lenSync},
		{FieldFrameID, lenFrameID},
		{FieldRobotKillState, lenEnum},
		{FieldThrusterState, lenEnum},
		{FieldDiagState, lenEnum},
		{FieldLeakState, lenEnum},
		{FieldChecksum, lenChecksum},
	},
	OpboxStatusFrame: {
		{FieldSync, lenSync},
		{FieldFrameID, lenFrameID},
		{FieldKillButtonState, lenEnum},
		{FieldChecksum, lenChecksum},
	},
	NotificationFrame: {
		{FieldSync, lenSync},
		{FieldFrameID, lenFrameID},
		{FieldNotificationType, lenEnum},
		{FieldNotificationUID, lenNotificationUID},
		{FieldNotificationSensorName, lenNotificationSensorName},
		{FieldNotificationDescription, lenNotificationDescription},
		{FieldChecksum, lenChecksum},
	},
	AckFrame: {
		{FieldSync, lenSync},
		{FieldFrameID, lenFrameID},
		{FieldAckedNotificationUID, lenNotificationUID},
		{FieldChecksum, lenChecksum},
	},
}

// TotalLength returns the total wire length of a frame layout.
func (l Layout) TotalLength() int {
	total := 0
	for _, f := range l {
		total += f.Length
	}
	return total
}

// offsets returns the byte offset of each field in the layout, in order.
func (l Layout) offsets() map[FieldID]int {
	offsets := make(map[FieldID]int, len(l))
	pos := 0
	for _, f := range l {
		offsets[f.Field] = pos
		pos += f.Length
	}
	return offsets
}

// checksumStart returns the byte offset where the checksum field begins.
func (l Layout) checksumStart() int {
	return l.offsets()[FieldChecksum]
}

// syncEnd returns the byte offset just after the sync marker (start of the
// frame id byte).
func (l Layout) syncEnd() int {
	return lenSync
}

// payloadFields returns the layout's fields excluding sync, frame id, and
// checksum -- the fields the Field Store is consulted for on encode.
func (l Layout) payloadFields() []FieldLayout {
	return l.PayloadFields()
}

// PayloadFields returns the layout's fields excluding sync, frame id, and
// checksum.
func (l Layout) PayloadFields() []FieldLayout {
	out := make([]FieldLayout, 0, len(l))
	for _, f := range l {
		if f.Field == FieldSync || f.Field == FieldFrameID || f.Field == FieldChecksum {
			continue
		}
		out = append(out, f)
	}
	return out
}
