package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/jmylchreest/cliv/internal/config"
	"github.com/jmylchreest/cliv/internal/toast"
)

// ErrNoMusicFile is returned by Play when no file has been selected.
var ErrNoMusicFile = errors.New("no music file selected")

// mixer is the output the music player streams into.
type mixer interface {
	// Play starts s, recorded at rate, on the output.
	Play(s beep.Streamer, rate beep.SampleRate) error
	Lock()
	Unlock()
}

// deviceMixer plays through the shared speaker.
type deviceMixer struct{}

func (deviceMixer) Play(s beep.Streamer, rate beep.SampleRate) error {
	out, err := initSpeaker(rate)
	if err != nil {
		return err
	}
	if out != rate {
		s = beep.Resample(4, rate, out, s)
	}
	speaker.Play(s)
	return nil
}

func (deviceMixer) Lock()   { speaker.Lock() }
func (deviceMixer) Unlock() { speaker.Unlock() }

// MusicStatus is a point-in-time copy of the music player's state.
type MusicStatus struct {
	File    string
	Size    uint64
	Playing bool
	Paused  bool
	Loop    bool
	Volume  float64
}

func (s MusicStatus) String() string {
	if s.File == "" {
		return "no file selected"
	}

	state := "stopped"
	switch {
	case s.Paused:
		state = "paused"
	case s.Playing:
		state = "playing"
	}
	loop := "off"
	if s.Loop {
		loop = "on"
	}
	return fmt.Sprintf("%s (%s) %s, loop %s, volume %d%%",
		filepath.Base(s.File), humanize.Bytes(s.Size), state, loop, int(s.Volume*100+0.5))
}

// Music plays one long-running track with pause, loop and volume control.
// User-facing outcomes are reported as toasts through the notify function.
type Music struct {
	mu     sync.Mutex
	logger *slog.Logger
	notify toast.NotifyFunc
	out    mixer

	file   string
	loop   bool
	volume float64

	// Current playback chain, nil when stopped
	source beep.StreamSeekCloser
	ctrl   *beep.Ctrl
	gain   *effects.Volume

	// Bumped on every start and stop so a stale end-of-track callback is ignored
	generation int
}

// NewMusic creates a music player. Volume starts at 0.5 and looping is on.
func NewMusic(notify toast.NotifyFunc, logger *slog.Logger) *Music {
	if logger == nil {
		logger = slog.Default()
	}
	if notify == nil {
		notify = func(string, string, toast.Kind) {}
	}

	return &Music{
		logger: logger,
		notify: notify,
		out:    deviceMixer{},
		loop:   true,
		volume: 0.5,
	}
}

// SetFile selects the track. A playing track is restarted with the new file.
func (m *Music) SetFile(path string) error {
	m.mu.Lock()
	m.file = config.ExpandPath(path)
	playing := m.ctrl != nil
	m.mu.Unlock()

	m.logger.Debug("music file set", "path", path)
	if !playing {
		return nil
	}

	m.halt()
	return m.Play()
}

// Play starts the selected track, or resumes it when paused.
func (m *Music) Play() error {
	m.mu.Lock()
	if m.ctrl != nil {
		m.mu.Unlock()
		m.Resume()
		return nil
	}
	file := m.file
	m.mu.Unlock()

	if file == "" {
		m.notify("Audio", "No file selected", toast.KindWarning)
		return ErrNoMusicFile
	}
	if _, err := os.Stat(file); err != nil {
		m.notify("Error", "File not found: "+file, toast.KindError)
		return fmt.Errorf("failed to open music file: %w", err)
	}

	if err := m.start(file); err != nil {
		m.logger.Warn("failed to play music", "path", file, "error", err)
		m.notify("Error", "Playback failed: "+err.Error(), toast.KindError)
		return err
	}

	m.logger.Info("music playing", "path", file)
	m.notify("Audio", "Playing: "+filepath.Base(file), toast.KindSuccess)
	return nil
}

// start decodes file and hands the playback chain to the mixer.
func (m *Music) start(file string) error {
	source, format, err := decodeFile(file)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var stream beep.Streamer = source
	if m.loop {
		stream = beep.Loop(-1, source)
	}
	ctrl := &beep.Ctrl{Streamer: stream}
	gain := &effects.Volume{
		Streamer: ctrl,
		Base:     2,
		Volume:   volumeToDecibels(m.volume),
		Silent:   m.volume == 0,
	}

	m.generation++
	gen := m.generation

	// The callback runs on the mixer goroutine with its lock held
	end := beep.Callback(func() { go m.finished(gen) })
	if err := m.out.Play(beep.Seq(gain, end), format.SampleRate); err != nil {
		_ = source.Close()
		return err
	}

	m.source = source
	m.ctrl = ctrl
	m.gain = gain
	return nil
}

// finished clears the chain when a non-looping track runs out.
func (m *Music) finished(gen int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation || m.source == nil {
		return
	}
	_ = m.source.Close()
	m.source, m.ctrl, m.gain = nil, nil, nil
	m.logger.Debug("music finished", "path", m.file)
}

// Pause pauses playback. No-op when nothing is playing.
func (m *Music) Pause() {
	m.setPaused(true)
}

// Resume resumes paused playback.
func (m *Music) Resume() {
	m.setPaused(false)
}

// TogglePause plays when stopped or paused and pauses when playing.
func (m *Music) TogglePause() error {
	st := m.Status()
	if st.Playing {
		m.Pause()
		return nil
	}
	return m.Play()
}

func (m *Music) setPaused(paused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctrl == nil {
		return
	}
	m.out.Lock()
	m.ctrl.Paused = paused
	m.out.Unlock()
	m.logger.Debug("music paused", "paused", paused)
}

// Stop stops playback completely and notifies.
func (m *Music) Stop() {
	m.halt()
	m.notify("Audio", "Playback stopped", toast.KindInfo)
}

// halt detaches and releases the playback chain.
func (m *Music) halt() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	if m.ctrl == nil {
		return
	}

	// Once the streamer is nil the mixer drops the chain and never reads the source again
	m.out.Lock()
	m.ctrl.Streamer = nil
	m.out.Unlock()

	_ = m.source.Close()
	m.source, m.ctrl, m.gain = nil, nil, nil
	m.logger.Debug("music stopped")
}

// ToggleLoop flips looping and notifies. A playing track restarts with the new mode.
func (m *Music) ToggleLoop() bool {
	m.mu.Lock()
	m.loop = !m.loop
	loop := m.loop
	playing := m.ctrl != nil
	file := m.file
	m.mu.Unlock()

	if loop {
		m.notify("Loop", "Repeat enabled", toast.KindInfo)
	} else {
		m.notify("Loop", "Repeat disabled", toast.KindInfo)
	}

	if playing {
		m.halt()
		if err := m.start(file); err != nil {
			m.logger.Warn("failed to restart music", "path", file, "error", err)
		}
	}
	return loop
}

// SetLoop sets the looping mode without notifying. It applies from the next
// track start.
func (m *Music) SetLoop(loop bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loop = loop
}

// SetVolume sets the volume, clamped to [0, 1], and applies it to the playing track.
func (m *Music) SetVolume(volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.volume = clampVolume(volume)
	if m.gain == nil {
		return
	}
	m.out.Lock()
	m.gain.Volume = volumeToDecibels(m.volume)
	m.gain.Silent = m.volume == 0
	m.out.Unlock()
}

// Status returns the player's current state.
func (m *Music) Status() MusicStatus {
	m.mu.Lock()
	st := MusicStatus{
		File:   m.file,
		Loop:   m.loop,
		Volume: m.volume,
	}
	if m.ctrl != nil {
		m.out.Lock()
		st.Paused = m.ctrl.Paused
		m.out.Unlock()
		st.Playing = !st.Paused
	}
	m.mu.Unlock()

	if st.File != "" {
		if info, err := os.Stat(st.File); err == nil {
			st.Size = uint64(info.Size())
		}
	}
	return st
}
