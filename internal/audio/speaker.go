package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// The speaker is process-global; effects and music share one mixer.
var output struct {
	mu    sync.Mutex
	ready bool
	rate  beep.SampleRate
}

// initSpeaker initializes the speaker on first use and returns the rate it
// runs at. Later callers resample to that rate.
func initSpeaker(rate beep.SampleRate) (beep.SampleRate, error) {
	output.mu.Lock()
	defer output.mu.Unlock()

	if output.ready {
		return output.rate, nil
	}

	// Use a reasonable buffer size for low latency
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return 0, fmt.Errorf("failed to initialize speaker: %w", err)
	}
	output.ready = true
	output.rate = rate
	return rate, nil
}

// closeSpeaker stops all playback and releases the audio device.
func closeSpeaker() {
	output.mu.Lock()
	defer output.mu.Unlock()

	if output.ready {
		speaker.Close()
		output.ready = false
	}
}

// decodeFile opens and decodes an audio file by extension.
// The caller closes the returned streamer, which also closes the file.
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav", ".ogg", ".mp3":
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format: %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to open sound file: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode sound: %w", err)
	}
	return streamer, format, nil
}

// volumeToDecibels converts a linear volume (0-1) to decibels.
// 0.5 = -6dB, 0.25 = -12dB.
func volumeToDecibels(volume float64) float64 {
	if volume <= 0 {
		return -100
	}
	return 20 * math.Log10(volume)
}

// clampVolume limits v to [0, 1].
func clampVolume(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
