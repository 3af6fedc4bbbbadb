// Package daemon holds the long-running services behind the menu.
// It bridges D-Bus notifications into the toast stack, reloads the
// configuration when the file changes, and shows rate-limited toasts
// about cliv's own events.
package daemon
