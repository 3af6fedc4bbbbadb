package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/cliv/internal/config"
	"github.com/jmylchreest/cliv/internal/dbus"
	"github.com/jmylchreest/cliv/internal/toast"
)

type shown struct {
	title, message string
	duration       time.Duration
	kind           toast.Kind
}

type fakeSink struct {
	mu      sync.Mutex
	next    int
	shown   []shown
	closed  []toast.ID
	showErr error
}

func (f *fakeSink) Show(title, message string, duration time.Duration, kind toast.Kind) (toast.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.showErr != nil {
		return "", f.showErr
	}
	f.next++
	f.shown = append(f.shown, shown{title, message, duration, kind})
	return toast.ID(fmt.Sprintf("t%d", f.next)), nil
}

func (f *fakeSink) Close(id toast.ID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, id)
	return true
}

type closedSignal struct {
	id     uint32
	reason dbus.CloseReason
}

type fakeEmitter struct {
	signals []closedSignal
}

func (f *fakeEmitter) CloseWithReason(id uint32, reason dbus.CloseReason) error {
	f.signals = append(f.signals, closedSignal{id, reason})
	return nil
}

func TestBridge_NotifyShowsToast(t *testing.T) {
	sink := &fakeSink{}
	b := NewBridge(sink, &fakeEmitter{}, 3*time.Second, nil)

	b.HandleNotify(&dbus.DBusNotification{
		AppName:       "make",
		Summary:       "Build failed",
		Body:          "exit status 2",
		Hints:         map[string]godbus.Variant{"urgency": godbus.MakeVariant(byte(2))},
		ExpireTimeout: -1,
	}, 7)

	require.Len(t, sink.shown, 1)
	assert.Equal(t, shown{"Build failed", "exit status 2", 3 * time.Second, toast.KindError}, sink.shown[0])
	assert.Equal(t, 1, b.Active())

	state, ok := b.states.GetByDBusID(7)
	require.True(t, ok)
	assert.Equal(t, toast.ID("t1"), state.ToastID)
}

func TestBridge_ReplaceClosesOldToast(t *testing.T) {
	sink := &fakeSink{}
	emitter := &fakeEmitter{}
	b := NewBridge(sink, emitter, time.Second, nil)

	b.HandleNotify(&dbus.DBusNotification{Summary: "50%"}, 3)
	b.HandleNotify(&dbus.DBusNotification{Summary: "75%", ReplacesID: 3}, 3)

	assert.Equal(t, []toast.ID{"t1"}, sink.closed)
	assert.Equal(t, 1, b.Active())

	// The replaced toast closing reports nothing
	b.HandleClosed("t1", toast.ReasonRequested)
	assert.Empty(t, emitter.signals)

	b.HandleClosed("t2", toast.ReasonExpired)
	assert.Equal(t, []closedSignal{{3, dbus.CloseReasonExpired}}, emitter.signals)
	assert.Zero(t, b.Active())
}

func TestBridge_CloseRequest(t *testing.T) {
	sink := &fakeSink{}
	emitter := &fakeEmitter{}
	b := NewBridge(sink, emitter, time.Second, nil)

	b.HandleNotify(&dbus.DBusNotification{Summary: "x"}, 1)
	b.HandleCloseRequest(1)
	b.HandleCloseRequest(1)

	assert.Equal(t, []toast.ID{"t1"}, sink.closed)

	// The server already emitted; the toast's own close stays quiet
	b.HandleClosed("t1", toast.ReasonRequested)
	assert.Empty(t, emitter.signals)
}

func TestBridge_DismissReportsReason(t *testing.T) {
	sink := &fakeSink{}
	emitter := &fakeEmitter{}
	b := NewBridge(sink, emitter, time.Second, nil)

	b.HandleNotify(&dbus.DBusNotification{Summary: "x", ExpireTimeout: 1200}, 9)
	assert.Equal(t, 1200*time.Millisecond, sink.shown[0].duration)

	b.HandleClosed("t1", toast.ReasonDismissed)
	assert.Equal(t, []closedSignal{{9, dbus.CloseReasonDismissed}}, emitter.signals)
}

func TestBridge_ShowFailure(t *testing.T) {
	sink := &fakeSink{showErr: errors.New("no surface")}
	emitter := &fakeEmitter{}
	b := NewBridge(sink, emitter, time.Second, nil)

	b.HandleNotify(&dbus.DBusNotification{Summary: "x"}, 4)

	assert.Zero(t, b.Active())
	assert.Equal(t, []closedSignal{{4, dbus.CloseReasonUndefined}}, emitter.signals)
}

func TestBridge_Mirror(t *testing.T) {
	sink := &fakeSink{}
	b := NewBridge(sink, nil, 2*time.Second, nil)

	b.HandleMirror(&dbus.DBusNotification{AppName: "dunstify", Body: "hello"}, 1)

	require.Len(t, sink.shown, 1)
	assert.Equal(t, "dunstify", sink.shown[0].title)
	assert.Zero(t, b.Active())
}

func TestDisplayStateManager(t *testing.T) {
	m := NewDisplayStateManager()

	m.Register("a", 1)
	m.Register("b", 2)
	assert.Equal(t, 2, m.Count())

	id, ok := m.GetDBusIDByToastID("b")
	require.True(t, ok)
	assert.Equal(t, uint32(2), id)

	// Re-pointing a D-Bus ID drops the old toast
	m.Register("c", 1)
	_, ok = m.GetDBusIDByToastID("a")
	assert.False(t, ok)
	assert.Equal(t, 2, m.Count())

	toastID, ok := m.RemoveByDBusID(1)
	require.True(t, ok)
	assert.Equal(t, toast.ID("c"), toastID)

	m.Remove("b")
	assert.Zero(t, m.Count())

	_, ok = m.GetByDBusID(2)
	assert.False(t, ok)
}

type notifyRecorder struct {
	mu   sync.Mutex
	sent []shown
}

func (r *notifyRecorder) notify(title, message string, kind toast.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, shown{title: title, message: message, kind: kind})
}

func TestInternalNotifier_RateLimits(t *testing.T) {
	rec := &notifyRecorder{}
	n := NewInternalNotifier(nil)
	n.SetNotifyFunc(rec.notify)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return now }

	n.NotifyConfigReloaded()
	n.NotifyConfigReloaded()
	assert.Len(t, rec.sent, 1)

	// Different keys are independent
	n.NotifyConfigError(errors.New("bad alpha"))
	assert.Len(t, rec.sent, 2)
	assert.Equal(t, toast.KindWarning, rec.sent[1].kind)
	assert.Contains(t, rec.sent[1].message, "bad alpha")

	now = now.Add(5 * time.Second)
	n.NotifyConfigReloaded()
	assert.Len(t, rec.sent, 3)
}

func TestInternalNotifier_Disabled(t *testing.T) {
	rec := &notifyRecorder{}
	n := NewInternalNotifier(nil)

	// No notify func yet
	n.NotifyAudioError(errors.New("x"))

	n.SetNotifyFunc(rec.notify)
	n.SetEnabled(false)
	n.NotifyThemeReloaded("ocean")
	assert.Empty(t, rec.sent)

	n.SetEnabled(true)
	n.NotifyThemeReloaded("ocean")
	require.Len(t, rec.sent, 1)
	assert.Equal(t, "Theme 'ocean' has been reloaded.", rec.sent[0].message)
}

func TestInternalNotifier_Startup(t *testing.T) {
	rec := &notifyRecorder{}
	n := NewInternalNotifier(nil)
	n.SetNotifyFunc(rec.notify)

	n.NotifyStartup("Insert")

	require.Len(t, rec.sent, 1)
	assert.Equal(t, "Menu started, press INSERT to show/hide", rec.sent[0].message)
	assert.Equal(t, toast.KindSuccess, rec.sent[0].kind)
}

func TestNotificationLevel_Kind(t *testing.T) {
	assert.Equal(t, toast.KindInfo, NotificationLevelInfo.Kind())
	assert.Equal(t, toast.KindSuccess, NotificationLevelSuccess.Kind())
	assert.Equal(t, toast.KindWarning, NotificationLevelWarning.Kind())
	assert.Equal(t, toast.KindError, NotificationLevelError.Kind())
}

func TestConfigWatcher_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cliv.toml")
	require.NoError(t, os.WriteFile(path, []byte("[overlay]\nalpha = 0.4\n"), 0644))

	initial, err := config.LoadConfig(path)
	require.NoError(t, err)

	w := NewConfigWatcher(path, nil)
	w.SetDebounce(50 * time.Millisecond)

	reloaded := make(chan *config.Config, 4)
	failed := make(chan error, 4)
	w.SetReloadCallback(func(c *config.Config) { reloaded <- c })
	w.SetErrorCallback(func(err error) { failed <- err })

	require.NoError(t, w.Start(context.Background(), initial))
	defer w.Stop()
	assert.True(t, w.IsRunning())
	assert.Same(t, initial, w.GetCurrentConfig())

	require.NoError(t, os.WriteFile(path, []byte("[overlay]\nalpha = 0.6\n"), 0644))

	deadline := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case c := <-reloaded:
			done = c.Overlay.Alpha == 0.6
		case <-deadline:
			t.Fatal("config was not reloaded")
		}
	}

	// Invalid values keep the current config
	require.NoError(t, os.WriteFile(path, []byte("[overlay]\nalpha = 3\n"), 0644))

	select {
	case err := <-failed:
		var verr *config.ValueError
		assert.True(t, errors.As(err, &verr))
	case <-time.After(2 * time.Second):
		t.Fatal("invalid config was not reported")
	}
	assert.LessOrEqual(t, w.GetCurrentConfig().Overlay.Alpha, 1.0)
}

func TestConfigWatcher_StopIsIdempotent(t *testing.T) {
	w := NewConfigWatcher(filepath.Join(t.TempDir(), "cliv.toml"), nil)
	require.NoError(t, w.Start(context.Background(), config.DefaultConfig()))

	w.Stop()
	w.Stop()
	assert.False(t, w.IsRunning())
}
