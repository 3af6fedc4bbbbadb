package daemon

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jmylchreest/cliv/internal/toast"
)

// NotificationLevel indicates the severity of an internal notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages.
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelSuccess is for completed actions.
	NotificationLevelSuccess
	// NotificationLevelWarning is for recoverable problems.
	NotificationLevelWarning
	// NotificationLevelError is for failures.
	NotificationLevelError
)

// Kind returns the toast kind for the level.
func (l NotificationLevel) Kind() toast.Kind {
	switch l {
	case NotificationLevelSuccess:
		return toast.KindSuccess
	case NotificationLevelWarning:
		return toast.KindWarning
	case NotificationLevelError:
		return toast.KindError
	default:
		return toast.KindInfo
	}
}

// InternalNotifier shows toasts about cliv's own events.
// It rate-limits by key to prevent notification floods.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	notify toast.NotifyFunc

	// Rate limiting
	lastNotifyTime map[string]time.Time // key -> last notification time
	minInterval    time.Duration        // minimum time between same notifications
	now            func() time.Time

	enabled bool
}

// NewInternalNotifier creates a new InternalNotifier.
func NewInternalNotifier(logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second, // Don't repeat same notification within 5 seconds
		now:            time.Now,
		enabled:        true,
	}
}

// SetNotifyFunc sets the function that emits the toast.
func (n *InternalNotifier) SetNotifyFunc(notify toast.NotifyFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notify = notify
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between duplicate notifications.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify shows an internal notification unless rate-limited.
// The same key won't notify again within minInterval.
func (n *InternalNotifier) Notify(key, title, message string, level NotificationLevel) {
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return
	}
	notify := n.notify
	if notify == nil {
		n.mu.Unlock()
		n.logger.Debug("internal notification skipped: no notify func", "title", title)
		return
	}

	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key, "title", title)
		return
	}
	n.lastNotifyTime[key] = now
	n.mu.Unlock()

	n.logger.Debug("sending internal notification", "key", key, "title", title, "level", level)

	// Outside the lock; the stack may call back into us through its sounder
	notify(title, message, level.Kind())
}

// NotifyStartup shows the hotkey hint when the menu starts.
func (n *InternalNotifier) NotifyStartup(hotkey string) {
	n.Notify(
		"startup",
		"CLIV",
		"Menu started, press "+strings.ToUpper(hotkey)+" to show/hide",
		NotificationLevelSuccess,
	)
}

// NotifyConfigReloaded shows that the config was reloaded.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify(
		"config-reload",
		"Configuration Reloaded",
		"cliv configuration has been reloaded.",
		NotificationLevelInfo,
	)
}

// NotifyConfigError shows a config validation error.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify(
		"config-error",
		"Configuration Error",
		"Failed to reload configuration: "+err.Error(),
		NotificationLevelWarning,
	)
}

// NotifyThemeReloaded shows that a palette was reloaded.
func (n *InternalNotifier) NotifyThemeReloaded(themeName string) {
	n.Notify(
		"theme-reload",
		"Theme Reloaded",
		"Theme '"+themeName+"' has been reloaded.",
		NotificationLevelInfo,
	)
}

// NotifyThemeError shows a palette loading error.
func (n *InternalNotifier) NotifyThemeError(err error) {
	n.Notify(
		"theme-error",
		"Theme Error",
		"Failed to load theme: "+err.Error(),
		NotificationLevelWarning,
	)
}

// NotifyAudioError shows an audio playback error.
func (n *InternalNotifier) NotifyAudioError(err error) {
	n.Notify(
		"audio-error",
		"Audio Error",
		"Failed to play sound: "+err.Error(),
		NotificationLevelWarning,
	)
}

// NotifyDBusFallback shows that another daemon owns the notification bus name.
func (n *InternalNotifier) NotifyDBusFallback(owner string) {
	n.Notify(
		"dbus-fallback",
		"Notifications",
		"Another notification daemon is running ("+owner+"); mirroring its notifications.",
		NotificationLevelWarning,
	)
}
