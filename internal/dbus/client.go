package dbus

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/cliv/internal/toast"
)

// Client sends notifications to, and drives, a running cliv menu.
type Client struct {
	conn *dbus.Conn
}

// NewClient opens a private session bus connection.
func NewClient() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// NotifyHints builds the hint map for a toast kind.
func NotifyHints(kind toast.Kind) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		KindHint: dbus.MakeVariant(string(kind)),
	}
	if kind == toast.KindError {
		hints["urgency"] = dbus.MakeVariant(byte(UrgencyCritical))
	}
	return hints
}

// Notify sends a notification through whichever daemon owns the bus name.
// A zero timeout asks the server for its default.
func (c *Client) Notify(appName, summary, body string, kind toast.Kind, timeout time.Duration) (uint32, error) {
	expire := int32(-1)
	if timeout > 0 {
		expire = int32(timeout.Milliseconds())
	}

	obj := c.conn.Object(DBusBusName, DBusPath)
	var id uint32
	err := obj.Call(DBusInterface+".Notify", 0,
		appName, uint32(0), "", summary, body, []string{}, NotifyHints(kind), expire,
	).Store(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to send notification: %w", err)
	}
	return id, nil
}

// CloseNotification asks the server to close a notification.
func (c *Client) CloseNotification(id uint32) error {
	obj := c.conn.Object(DBusBusName, DBusPath)
	if err := obj.Call(DBusInterface+".CloseNotification", 0, id).Err; err != nil {
		return fmt.Errorf("failed to close notification: %w", err)
	}
	return nil
}

// ServerInformation returns the running server's information.
func (c *Client) ServerInformation() (ServerInfo, error) {
	var info ServerInfo
	obj := c.conn.Object(DBusBusName, DBusPath)
	err := obj.Call(DBusInterface+".GetServerInformation", 0).
		Store(&info.Name, &info.Vendor, &info.Version, &info.ProtocolVersion)
	if err != nil {
		return ServerInfo{}, fmt.Errorf("failed to get server information: %w", err)
	}
	return info, nil
}

// call invokes a menu control method and stores its results.
func (c *Client) call(method string, args []any, results ...any) error {
	obj := c.conn.Object(ControlBusName, ControlPath)
	call := obj.Call(ControlInterface+"."+method, 0, args...)
	if call.Err != nil {
		return fmt.Errorf("failed to call %s: %w", method, call.Err)
	}
	if len(results) == 0 {
		return nil
	}
	return call.Store(results...)
}

// Toggle shows or hides the menu.
func (c *Client) Toggle() error {
	return c.call("Toggle", nil)
}

// Music runs a music action: "play", "pause", "stop".
func (c *Client) Music(action string) error {
	switch action {
	case "play":
		return c.call("MusicPlay", nil)
	case "pause":
		return c.call("MusicPause", nil)
	case "stop":
		return c.call("MusicStop", nil)
	default:
		return fmt.Errorf("unknown music action %q", action)
	}
}

// MusicToggleLoop flips looping and returns the new mode.
func (c *Client) MusicToggleLoop() (bool, error) {
	var loop bool
	err := c.call("MusicToggleLoop", nil, &loop)
	return loop, err
}

// MusicSetVolume sets the music volume (0.0 to 1.0).
func (c *Client) MusicSetVolume(volume float64) error {
	return c.call("MusicSetVolume", []any{volume})
}

// MusicStatus returns a one-line music status.
func (c *Client) MusicStatus() (string, error) {
	var status string
	err := c.call("MusicStatus", nil, &status)
	return status, err
}
