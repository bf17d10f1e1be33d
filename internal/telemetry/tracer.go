package telemetry

import "go.opentelemetry.io/otel/attribute"

// Attribute key helpers narrowed to the link/frame domain, so span
// attributes stay consistent across the pump task and send_notification.

func RoleAttr(role string) attribute.KeyValue { return attribute.String("link.role", role) }

func FrameIDAttr(name string) attribute.KeyValue { return attribute.String("frame.id", name) }

func PeerAttr(addr string) attribute.KeyValue { return attribute.String("link.peer", addr) }

func NotificationUIDAttr(uid uint8) attribute.KeyValue {
	return attribute.Int("link.notification_uid", int(uid))
}

func ConnectedAttr(connected bool) attribute.KeyValue {
	return attribute.Bool("link.connected", connected)
}
