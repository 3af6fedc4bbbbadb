package daemon

import (
	"log/slog"
	"time"

	"github.com/jmylchreest/cliv/internal/dbus"
	"github.com/jmylchreest/cliv/internal/toast"
)

// ToastSink is the part of the toast stack the bridge drives.
type ToastSink interface {
	Show(title, message string, duration time.Duration, kind toast.Kind) (toast.ID, error)
	Close(id toast.ID) bool
}

// ClosedEmitter reports closed notifications back over D-Bus.
type ClosedEmitter interface {
	CloseWithReason(id uint32, reason dbus.CloseReason) error
}

// Bridge turns D-Bus notifications into toasts and toast closes into
// NotificationClosed signals. Notify and CloseNotification arrive on godbus
// goroutines; HandleClosed runs on the clock loop.
type Bridge struct {
	logger          *slog.Logger
	sink            ToastSink
	emitter         ClosedEmitter
	states          *DisplayStateManager
	defaultDuration time.Duration
}

// NewBridge creates a bridge. Notifications without a positive expire timeout
// are shown for defaultDuration.
func NewBridge(sink ToastSink, emitter ClosedEmitter, defaultDuration time.Duration, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		logger:          logger,
		sink:            sink,
		emitter:         emitter,
		states:          NewDisplayStateManager(),
		defaultDuration: defaultDuration,
	}
}

// Attach wires the bridge into a notification server.
func (b *Bridge) Attach(server *dbus.NotificationServer) {
	server.SetNotifyHandler(b.HandleNotify)
	server.SetCloseHandler(b.HandleCloseRequest)
}

// HandleNotify shows a toast for a Notify call. A replacement closes the
// toast currently showing the same ID first.
func (b *Bridge) HandleNotify(n *dbus.DBusNotification, id uint32) {
	// Unmap before closing so the close does not emit a signal for a live ID
	if old, ok := b.states.RemoveByDBusID(id); ok {
		b.sink.Close(old)
	}

	toastID, err := b.sink.Show(n.Title(), n.Body, n.Timeout(b.defaultDuration), n.Kind())
	if err != nil {
		b.logger.Warn("failed to show notification", "id", id, "app", n.AppName, "error", err)
		if b.emitter != nil {
			_ = b.emitter.CloseWithReason(id, dbus.CloseReasonUndefined)
		}
		return
	}

	b.states.Register(toastID, id)
	b.logger.Debug("notification shown", "id", id, "toast", toastID, "kind", n.Kind())
}

// HandleMirror shows a toast for a notification observed in monitor mode.
// Mirrored toasts are never reported back over D-Bus.
func (b *Bridge) HandleMirror(n *dbus.DBusNotification, id uint32) {
	if _, err := b.sink.Show(n.Title(), n.Body, n.Timeout(b.defaultDuration), n.Kind()); err != nil {
		b.logger.Warn("failed to mirror notification", "id", id, "app", n.AppName, "error", err)
	}
}

// HandleCloseRequest closes the toast for a CloseNotification call.
// The server emits the signal itself.
func (b *Bridge) HandleCloseRequest(id uint32) {
	toastID, ok := b.states.RemoveByDBusID(id)
	if !ok {
		return
	}
	b.sink.Close(toastID)
}

// HandleClosed is registered with the toast stack's OnClose.
func (b *Bridge) HandleClosed(id toast.ID, reason toast.CloseReason) {
	dbusID, ok := b.states.GetDBusIDByToastID(id)
	if !ok {
		return
	}
	b.states.Remove(id)

	if b.emitter == nil {
		return
	}
	if err := b.emitter.CloseWithReason(dbusID, dbus.ReasonFromToast(reason)); err != nil {
		b.logger.Debug("failed to report closed notification", "id", dbusID, "error", err)
	}
}

// Active returns the number of D-Bus notifications currently on screen.
func (b *Bridge) Active() int {
	return b.states.Count()
}
