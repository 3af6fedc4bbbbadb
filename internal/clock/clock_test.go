package clock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManual_FiresInOrder(t *testing.T) {
	m := NewManual(epoch)
	var got []string

	m.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	m.AfterFunc(20*time.Millisecond, func() { got = append(got, "b") })

	m.Advance(15 * time.Millisecond)
	assert.Equal(t, []string{"a"}, got)

	m.Advance(15 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, epoch.Add(30*time.Millisecond), m.Now())
}

func TestManual_SameDueTimeIsFIFO(t *testing.T) {
	m := NewManual(epoch)
	var got []int
	for i := range 5 {
		m.AfterFunc(time.Millisecond, func() { got = append(got, i) })
	}
	m.Advance(time.Millisecond)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestManual_RearmWithinAdvance(t *testing.T) {
	m := NewManual(epoch)
	var ticks []time.Time

	var tick func()
	tick = func() {
		ticks = append(ticks, m.Now())
		m.AfterFunc(16*time.Millisecond, tick)
	}
	m.AfterFunc(16*time.Millisecond, tick)

	m.Advance(100 * time.Millisecond)
	require.Len(t, ticks, 6)
	assert.Equal(t, epoch.Add(16*time.Millisecond), ticks[0])
	assert.Equal(t, epoch.Add(96*time.Millisecond), ticks[5])
	assert.Equal(t, 1, m.Pending())
}

func TestManual_Cancel(t *testing.T) {
	m := NewManual(epoch)
	fired := false
	h := m.AfterFunc(time.Millisecond, func() { fired = true })

	assert.True(t, m.Cancel(h))
	assert.False(t, m.Cancel(h))
	assert.False(t, m.Cancel(0))

	m.Advance(time.Second)
	assert.False(t, fired)
}

func TestLoop_DispatchesAndPosts(t *testing.T) {
	l := NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = l.Run(ctx) }()

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})

	l.AfterFunc(20*time.Millisecond, func() {
		mu.Lock()
		got = append(got, "timer")
		mu.Unlock()
		close(done)
	})
	require.NoError(t, l.Post(func() {
		mu.Lock()
		got = append(got, "post")
		mu.Unlock()
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer callback never ran")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"post", "timer"}, got)
}

func TestLoop_RecoversPanics(t *testing.T) {
	l := NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = l.Run(ctx) }()

	done := make(chan struct{})
	require.NoError(t, l.Post(func() { panic("boom") }))
	require.NoError(t, l.Post(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not survive a panicking callback")
	}
}

func TestLoop_PostAfterStop(t *testing.T) {
	l := NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	<-l.Done()
	assert.ErrorIs(t, l.Post(func() {}), ErrLoopStopped)
}

func TestLoop_Cancel(t *testing.T) {
	l := NewLoop(nil)
	h := l.AfterFunc(time.Hour, func() {})
	assert.Equal(t, 1, l.Pending())
	assert.True(t, l.Cancel(h))
	assert.Equal(t, 0, l.Pending())
}
