package toast

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/cliv/internal/clock"
	"github.com/jmylchreest/cliv/internal/config"
	"github.com/jmylchreest/cliv/internal/platform"
)

var (
	epoch  = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	screen = platform.Rect{Width: 1920, Height: 1080}
)

type fakeSurface struct {
	mu        sync.Mutex
	spec      SurfaceSpec
	x, y      int
	alpha     float64
	progress  float64
	updates   int
	exists    bool
	destroyed int
}

func (f *fakeSurface) Move(x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.x, f.y = x, y
	return nil
}

func (f *fakeSurface) SetAlpha(alpha float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alpha = alpha
	return nil
}

func (f *fakeSurface) SetProgress(progress float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress = progress
	f.updates++
	return nil
}

func (f *fakeSurface) Exists() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exists
}

func (f *fakeSurface) Destroy() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exists = false
	f.destroyed++
	return nil
}

func (f *fakeSurface) vanish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exists = false
}

type fakeFactory struct {
	mu       sync.Mutex
	surfaces map[ID]*fakeSurface
	order    []ID
	fail     bool
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{surfaces: make(map[ID]*fakeSurface)}
}

func (f *fakeFactory) NewToastSurface(spec SurfaceSpec) (Surface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("no display")
	}
	s := &fakeSurface{spec: spec, x: spec.X, y: spec.Y, alpha: spec.Alpha, exists: true}
	f.surfaces[spec.ID] = s
	f.order = append(f.order, spec.ID)
	return s, nil
}

func (f *fakeFactory) get(id ID) *fakeSurface {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.surfaces[id]
}

type closeRecorder struct {
	mu     sync.Mutex
	events []closeEvent
}

func (r *closeRecorder) record(id ID, reason CloseReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, closeEvent{id: id, reason: reason})
}

func (r *closeRecorder) reasons(id ID) []CloseReason {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []CloseReason
	for _, e := range r.events {
		if e.id == id {
			out = append(out, e.reason)
		}
	}
	return out
}

type fakeSounder struct {
	kinds []string
}

func (s *fakeSounder) PlayForKind(kind string) error {
	s.kinds = append(s.kinds, kind)
	return nil
}

func newTestStack(t *testing.T, cfg config.ToastConfig) (*Stack, *fakeFactory, *clock.Manual, *closeRecorder) {
	t.Helper()
	factory := newFakeFactory()
	clk := clock.NewManual(epoch)
	s, err := NewStack(cfg, screen, factory, clk, nil)
	require.NoError(t, err)
	rec := &closeRecorder{}
	s.OnClose(rec.record)
	return s, factory, clk, rec
}

func TestNewStack_InvalidConfig(t *testing.T) {
	cfg := config.DefaultToastConfig()
	cfg.Opacity = 1.5
	_, err := NewStack(cfg, screen, newFakeFactory(), clock.NewManual(epoch), nil)

	var verr *config.ValueError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "toasts.opacity", verr.Field)
}

func TestStack_ShowStartsOffscreen(t *testing.T) {
	s, factory, _, _ := newTestStack(t, config.DefaultToastConfig())

	id, err := s.Show("Title", "Message", time.Second, KindSuccess)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	surf := factory.get(id)
	require.NotNil(t, surf)
	assert.Equal(t, 1900, surf.spec.X)
	assert.Equal(t, 930, surf.spec.Y)
	assert.Equal(t, 320, surf.spec.Width)
	assert.Equal(t, 90, surf.spec.Height)
	assert.Equal(t, 0.0, surf.spec.Alpha)
	assert.Equal(t, KindSuccess, surf.spec.Kind)

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, StateEntering, snap[0].State)
	assert.Equal(t, 1580.0, snap[0].TargetX)
}

func TestStack_EntryAnimation(t *testing.T) {
	s, factory, clk, _ := newTestStack(t, config.DefaultToastConfig())

	id, err := s.Show("T", "M", 5*time.Second, KindInfo)
	require.NoError(t, err)
	surf := factory.get(id)

	clk.Advance(112 * time.Millisecond)
	snap := s.Snapshot()[0]
	assert.Equal(t, StateEntering, snap.State)
	assert.Less(t, snap.X, 1900.0)
	assert.Greater(t, snap.X, 1580.0)
	assert.Greater(t, snap.Alpha, 0.0)
	assert.Less(t, snap.Alpha, 0.95)

	clk.Advance(128 * time.Millisecond)
	snap = s.Snapshot()[0]
	assert.Equal(t, StateVisible, snap.State)
	assert.Equal(t, 1580.0, snap.X)
	assert.InDelta(t, 0.95, snap.Alpha, 1e-9)
	assert.Equal(t, 1580, surf.x)
	assert.Equal(t, 930, surf.y)
	assert.InDelta(t, 0.95, surf.alpha, 1e-9)
}

func TestStack_CountdownStartsAtShow(t *testing.T) {
	s, factory, clk, _ := newTestStack(t, config.DefaultToastConfig())

	id, err := s.Show("T", "M", time.Second, KindInfo)
	require.NoError(t, err)

	// Still entering, yet the countdown has already moved.
	clk.Advance(160 * time.Millisecond)
	snap := s.Snapshot()[0]
	assert.Equal(t, StateEntering, snap.State)
	assert.InDelta(t, 0.16, snap.Progress, 1e-9)
	assert.InDelta(t, 0.16, factory.get(id).progress, 1e-9)
}

// Scenario A: a one second toast is closed and removed once one second elapses.
func TestStack_ExpiresAndIsRemoved(t *testing.T) {
	cfg := config.DefaultToastConfig()
	cfg.FrameInterval = config.Duration(10 * time.Millisecond)
	cfg.ExitSteps = 0
	s, factory, clk, rec := newTestStack(t, cfg)

	id, err := s.Show("T", "M", 1000*time.Millisecond, KindInfo)
	require.NoError(t, err)

	clk.Advance(990 * time.Millisecond)
	assert.Equal(t, 1, s.Len())

	clk.Advance(10 * time.Millisecond)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Snapshot())
	assert.Equal(t, []CloseReason{ReasonExpired}, rec.reasons(id))
	assert.Equal(t, 1, factory.get(id).destroyed)
	assert.Equal(t, 0, clk.Pending(), "tick goes idle when the stack is empty")
}

func TestStack_ExpiryRunsExitAnimation(t *testing.T) {
	s, factory, clk, rec := newTestStack(t, config.DefaultToastConfig())

	id, err := s.Show("T", "M", time.Second, KindInfo)
	require.NoError(t, err)

	clk.Advance(1008 * time.Millisecond)
	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, StateExiting, snap[0].State)
	assert.Equal(t, 1.0, snap[0].Progress)

	clk.Advance(112 * time.Millisecond)
	snap = s.Snapshot()
	require.Len(t, snap, 1)
	assert.Greater(t, snap[0].X, 1580.0)
	assert.Less(t, snap[0].Alpha, 0.95)

	clk.Advance(200 * time.Millisecond)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, []CloseReason{ReasonExpired}, rec.reasons(id))
	assert.False(t, factory.get(id).Exists())
}

func TestStack_DefaultDuration(t *testing.T) {
	s, _, _, _ := newTestStack(t, config.DefaultToastConfig())

	_, err := s.Show("T", "M", 0, KindInfo)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, s.Snapshot()[0].Duration)
}

func TestStack_SteadyStateOffsets(t *testing.T) {
	s, _, clk, _ := newTestStack(t, config.DefaultToastConfig())

	for i := range 4 {
		_, err := s.Show(fmt.Sprintf("T%d", i), "M", time.Duration(5+i)*time.Second, KindInfo)
		require.NoError(t, err)
	}

	clk.Advance(300 * time.Millisecond)

	snap := s.Snapshot()
	require.Len(t, snap, 4)
	_, base := s.Layout().Slot(0)
	for i, info := range snap {
		assert.Equal(t, i, info.Index)
		assert.Equal(t, StateVisible, info.State)
		assert.Equal(t, float64(base-i*(90+10)), info.Y)
	}
}

// Scenario B: closing the oldest of three toasts restacks the other two.
func TestStack_RestackAfterClose(t *testing.T) {
	s, factory, clk, _ := newTestStack(t, config.DefaultToastConfig())

	var ids []ID
	for range 3 {
		id, err := s.Show("T", "M", 5*time.Second, KindInfo)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	clk.Advance(300 * time.Millisecond)

	require.True(t, s.Close(ids[0]))

	// Exit takes 225ms; removal lands on the 528ms tick.
	clk.Advance(240 * time.Millisecond)
	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, ids[1], snap[0].ID)
	assert.Equal(t, ids[2], snap[1].ID)
	assert.Equal(t, 930.0, snap[0].TargetY)
	assert.Equal(t, 830.0, snap[1].TargetY)

	// Nothing moves during the restack delay.
	assert.Equal(t, 830.0, snap[0].Y)
	assert.Equal(t, 730.0, snap[1].Y)

	clk.Advance(80 * time.Millisecond)
	snap = s.Snapshot()
	assert.Greater(t, snap[0].Y, 830.0)
	assert.Less(t, snap[0].Y, 930.0)

	clk.Advance(time.Second)
	snap = s.Snapshot()
	assert.Equal(t, 930.0, snap[0].Y)
	assert.Equal(t, 830.0, snap[1].Y)
	assert.Equal(t, 930, factory.get(ids[1]).y)
	assert.Equal(t, 830, factory.get(ids[2]).y)
}

func TestStack_CloseIsIdempotent(t *testing.T) {
	s, factory, clk, rec := newTestStack(t, config.DefaultToastConfig())

	id, err := s.Show("T", "M", 5*time.Second, KindInfo)
	require.NoError(t, err)

	assert.True(t, s.Close(id))
	assert.False(t, s.Close(id))

	clk.Advance(time.Second)
	assert.False(t, s.Close(id))
	assert.False(t, s.Close("unknown"))

	assert.Equal(t, []CloseReason{ReasonRequested}, rec.reasons(id))
	assert.Equal(t, 1, factory.get(id).destroyed)
}

func TestStack_CloseCancelsCountdown(t *testing.T) {
	s, factory, clk, _ := newTestStack(t, config.DefaultToastConfig())

	id, err := s.Show("T", "M", 5*time.Second, KindInfo)
	require.NoError(t, err)
	clk.Advance(48 * time.Millisecond)

	surf := factory.get(id)
	updates := surf.updates
	require.True(t, s.Close(id))

	clk.Advance(160 * time.Millisecond)
	assert.Equal(t, updates, surf.updates)
}

func TestStack_DismissByClick(t *testing.T) {
	s, factory, clk, rec := newTestStack(t, config.DefaultToastConfig())

	id, err := s.Show("T", "M", 5*time.Second, KindWarning)
	require.NoError(t, err)

	factory.get(id).spec.OnDismiss()
	clk.Advance(time.Second)

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, []CloseReason{ReasonDismissed}, rec.reasons(id))
}

func TestStack_CloseVanishedSurface(t *testing.T) {
	s, factory, clk, rec := newTestStack(t, config.DefaultToastConfig())

	first, err := s.Show("T", "M", 5*time.Second, KindInfo)
	require.NoError(t, err)
	second, err := s.Show("T", "M", 5*time.Second, KindInfo)
	require.NoError(t, err)
	clk.Advance(300 * time.Millisecond)

	factory.get(first).vanish()
	assert.False(t, s.Close(first))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []CloseReason{ReasonVanished}, rec.reasons(first))
	assert.Equal(t, 0, factory.get(first).destroyed)

	snap := s.Snapshot()
	assert.Equal(t, second, snap[0].ID)
	assert.Equal(t, 930.0, snap[0].TargetY)
}

func TestStack_TickDropsVanishedSurface(t *testing.T) {
	s, factory, clk, rec := newTestStack(t, config.DefaultToastConfig())

	id, err := s.Show("T", "M", 5*time.Second, KindInfo)
	require.NoError(t, err)

	factory.get(id).vanish()
	clk.Advance(16 * time.Millisecond)

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, []CloseReason{ReasonVanished}, rec.reasons(id))
}

func TestStack_SurfaceFailureDropsToast(t *testing.T) {
	s, factory, clk, _ := newTestStack(t, config.DefaultToastConfig())
	factory.fail = true

	id, err := s.Show("T", "M", time.Second, KindInfo)
	assert.Error(t, err)
	assert.Empty(t, id)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, clk.Pending())
}

func TestStack_SlotsNeverOverlap(t *testing.T) {
	s, factory, clk, _ := newTestStack(t, config.DefaultToastConfig())

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Show("T", "M", 5*time.Second, KindInfo)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	clk.Advance(300 * time.Millisecond)

	seen := make(map[int]bool)
	for _, id := range factory.order {
		y := factory.get(id).spec.Y
		assert.False(t, seen[y], "slot y=%d assigned twice", y)
		seen[y] = true
	}
	assert.Len(t, seen, 20)
}

func TestStack_NewToastTakesNextSlotWhileOthersExit(t *testing.T) {
	s, factory, clk, _ := newTestStack(t, config.DefaultToastConfig())

	first, err := s.Show("T", "M", 5*time.Second, KindInfo)
	require.NoError(t, err)
	clk.Advance(300 * time.Millisecond)
	require.True(t, s.Close(first))

	// The exiting toast keeps slot 0 until it is removed.
	second, err := s.Show("T", "M", 5*time.Second, KindInfo)
	require.NoError(t, err)
	assert.Equal(t, 830, factory.get(second).spec.Y)

	clk.Advance(time.Second)
	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 930.0, snap[0].Y)
}

func TestStack_StopAndCloseAll(t *testing.T) {
	s, factory, clk, rec := newTestStack(t, config.DefaultToastConfig())

	a, err := s.Show("A", "", time.Second, KindInfo)
	require.NoError(t, err)
	b, err := s.Show("B", "", time.Second, KindInfo)
	require.NoError(t, err)

	s.CloseAll()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, clk.Pending())
	assert.Equal(t, []CloseReason{ReasonRequested}, rec.reasons(a))
	assert.Equal(t, []CloseReason{ReasonRequested}, rec.reasons(b))
	assert.False(t, factory.get(a).Exists())

	_, err = s.Show("C", "", time.Second, KindInfo)
	require.NoError(t, err)

	s.Stop()
	s.Stop()
	assert.Equal(t, 0, s.Len())

	_, err = s.Show("D", "", time.Second, KindInfo)
	assert.ErrorIs(t, err, ErrStackStopped)
}

func TestStack_PlaysKindSound(t *testing.T) {
	s, _, _, _ := newTestStack(t, config.DefaultToastConfig())
	sounder := &fakeSounder{}
	s.SetSounder(sounder)

	_, err := s.Show("T", "M", time.Second, KindError)
	require.NoError(t, err)
	_, err = s.Show("T", "M", time.Second, Kind("bogus"))
	require.NoError(t, err)

	assert.Equal(t, []string{"error", "info"}, sounder.kinds)
}

func TestStack_LeftAnchorSlidesFromLeft(t *testing.T) {
	cfg := config.DefaultToastConfig()
	cfg.Position = string(config.PositionTopLeft)
	s, factory, clk, _ := newTestStack(t, cfg)

	id, err := s.Show("T", "M", time.Second, KindInfo)
	require.NoError(t, err)
	assert.Equal(t, -300, factory.get(id).spec.X)
	assert.Equal(t, 60, factory.get(id).spec.Y)

	clk.Advance(240 * time.Millisecond)
	assert.Equal(t, 20, factory.get(id).x)

	require.True(t, s.Close(id))
	clk.Advance(112 * time.Millisecond)
	assert.Less(t, s.Snapshot()[0].X, 20.0)
}

func TestStack_Notifier(t *testing.T) {
	s, factory, _, _ := newTestStack(t, config.DefaultToastConfig())

	notify := s.Notifier(2 * time.Second)
	notify("Playing", "song.mp3", KindInfo)

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "Playing", snap[0].Title)
	assert.Equal(t, 2*time.Second, snap[0].Duration)

	factory.fail = true
	notify("Dropped", "", KindError)
	assert.Equal(t, 1, s.Len())
}
