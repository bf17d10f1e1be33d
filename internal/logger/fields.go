package logger

import (
	"fmt"
	"log/slog"
	"time"
)

// Typed slog.Attr helpers for the domain concepts logged across the link,
// actuator, and danger packages, kept consistent so log lines are greppable
// by field name.

func Role(role string) slog.Attr { return slog.String("role", role) }

func FrameID(id fmt.Stringer) slog.Attr { return slog.String("frame_id", id.String()) }

func Peer(addr string) slog.Attr { return slog.String("peer", addr) }

func Attempt(n int) slog.Attr { return slog.Int("attempt", n) }

func NotificationUID(uid uint8) slog.Attr { return slog.Int("notification_uid", int(uid)) }

func Sensor(name string) slog.Attr { return slog.String("sensor", name) }

func Duration(d time.Duration) slog.Attr { return slog.Duration("duration", d) }

func Err(err error) slog.Attr { return slog.Any("error", err) }
