package main

import (
	"context"
	"errors"

	"github.com/godbus/dbus/v5"
)

// Bus-level error names worth translating for operators.
const (
	dbusServiceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"
	dbusNoReply        = "org.freedesktop.DBus.Error.NoReply"
)

// FormatUserError maps low-level failures to a single operator-facing
// message. Anything unrecognized passes through unchanged.
func FormatUserError(err error) string {
	var dbusErr dbus.Error
	switch {
	case errors.As(err, &dbusErr) && dbusErr.Name == dbusServiceUnknown:
		return "the Bluetooth daemon is not available on the bus (is btmanagerd running?)"
	case errors.As(err, &dbusErr) && dbusErr.Name == dbusNoReply:
		return "the Bluetooth daemon did not answer in time"
	case errors.Is(err, context.DeadlineExceeded):
		return "operation timed out"
	default:
		return err.Error()
	}
}
