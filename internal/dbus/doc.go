// Package dbus implements the org.freedesktop.Notifications D-Bus interface.
// The server receives notifications from applications for the toast stack and
// exports a small menu control interface; the client is used by the CLI to
// send notifications and drive a running menu. When another daemon owns the
// bus name the Monitor mirrors its traffic instead.
package dbus
