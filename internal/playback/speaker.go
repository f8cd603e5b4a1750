// Package playback plays decoded clips on the local audio device.
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/book-expert/speak/internal/audio"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// resampleQuality is passed to beep.Resample when a clip's rate differs from
// the rate the speaker was opened with.
const resampleQuality = 4

// ErrNoSamples is returned when a clip carries nothing to play.
var ErrNoSamples = errors.New("clip has no decoded samples")

// Speaker plays clips through the default output device. The device can be
// opened only once per process, so it is opened lazily at the first clip's
// sample rate and later clips are resampled to it.
type Speaker struct {
	mu          sync.Mutex
	bufferSize  time.Duration
	initialized bool
	rate        beep.SampleRate
}

// NewSpeaker creates a player whose device buffer holds bufferSize of audio.
func NewSpeaker(bufferSize time.Duration) *Speaker {
	return &Speaker{bufferSize: bufferSize}
}

// Play blocks until the clip has been played or ctx is done.
func (s *Speaker) Play(ctx context.Context, clip *audio.Clip) error {
	if clip == nil || clip.Samples == nil || clip.Samples.Len() == 0 {
		return ErrNoSamples
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	initErr := s.ensureDevice(clip.Format.SampleRate)
	if initErr != nil {
		return initErr
	}

	var streamer beep.Streamer = clip.Streamer()
	if clip.Format.SampleRate != s.rate {
		streamer = beep.Resample(resampleQuality, clip.Format.SampleRate, s.rate, streamer)
	}

	done := make(chan struct{})

	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()

		return fmt.Errorf("playback interrupted: %w", ctx.Err())
	}
}

func (s *Speaker) ensureDevice(rate beep.SampleRate) error {
	if s.initialized {
		return nil
	}

	err := speaker.Init(rate, rate.N(s.bufferSize))
	if err != nil {
		return fmt.Errorf("failed to open audio output device: %w", err)
	}

	s.initialized = true
	s.rate = rate

	return nil
}
