package dbus

import (
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/cliv/internal/toast"
)

// CloseReason represents the reason for closing a notification.
// Values follow the freedesktop.org notification protocol.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// ReasonFromToast maps a toast close reason onto the freedesktop reason codes.
func ReasonFromToast(r toast.CloseReason) CloseReason {
	switch r {
	case toast.ReasonExpired:
		return CloseReasonExpired
	case toast.ReasonDismissed:
		return CloseReasonDismissed
	case toast.ReasonRequested:
		return CloseReasonClosed
	default:
		return CloseReasonUndefined
	}
}

// Urgency levels from the urgency hint.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// KindHint is the hint key that selects a toast kind directly.
const KindHint = "x-cliv-kind"

// DBusNotification represents an incoming D-Bus Notify call.
// It contains the raw parameters from the org.freedesktop.Notifications.Notify method.
type DBusNotification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Urgency extracts the urgency hint from the notification.
// Returns UrgencyNormal if not specified.
func (n *DBusNotification) Urgency() int {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return int(b)
		}
	}
	return UrgencyNormal
}

// Category extracts the category hint from the notification.
// Returns empty string if not specified.
func (n *DBusNotification) Category() string {
	return n.stringHint("category")
}

// Kind picks the toast kind for the notification.
// The x-cliv-kind hint wins; otherwise critical urgency is an error and
// transfer categories map to success or warning.
func (n *DBusNotification) Kind() toast.Kind {
	if k := n.stringHint(KindHint); k != "" {
		return toast.ParseKind(k)
	}
	if n.Urgency() == UrgencyCritical {
		return toast.KindError
	}
	switch n.Category() {
	case "transfer.complete", "presence.online":
		return toast.KindSuccess
	case "transfer.error", "network.error", "device.error":
		return toast.KindWarning
	}
	return toast.KindInfo
}

// Timeout converts the expire timeout into a toast duration.
// Zero and negative timeouts use fallback; toasts always expire.
func (n *DBusNotification) Timeout(fallback time.Duration) time.Duration {
	if n.ExpireTimeout <= 0 {
		return fallback
	}
	return time.Duration(n.ExpireTimeout) * time.Millisecond
}

// Title returns the toast title, falling back to the application name.
func (n *DBusNotification) Title() string {
	if n.Summary != "" {
		return n.Summary
	}
	return n.AppName
}

func (n *DBusNotification) stringHint(key string) string {
	if v, ok := n.Hints[key]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

// ServerCapabilities lists the capabilities advertised by cliv.
var ServerCapabilities = []string{
	"body",  // Support body text
	"sound", // Play sounds
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name            string // "cliv"
	Vendor          string // "cliv"
	Version         string // Build version
	ProtocolVersion string // "1.2"
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:            "cliv",
		Vendor:          "cliv",
		Version:         "0.0.1", // Will be replaced by build-time version
		ProtocolVersion: "1.2",
	}
}
