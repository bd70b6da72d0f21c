package audio

import (
	"fmt"
	"log"
	"time"

	"github.com/gopxl/beep"
)

// Sound is a decoded file attached to an Engine.
type Sound struct {
	engine   *Engine
	path     string
	streamer beep.StreamSeekCloser
	format   beep.Format

	// Guarded by the output lock
	ctrl   *beep.Ctrl
	fade   *fader
	ended  bool
	closed bool
}

// attach builds the streamer chain and adds it to the mixer, paused.
// Must be called with the output locked.
func (s *Sound) attach() {
	var src beep.Streamer = s.streamer

	// If the file has a different sample rate than the output, we need to
	// resample it to make it sound right
	if s.format.SampleRate != s.engine.rate {
		src = beep.Resample(s.engine.quality, s.format.SampleRate, s.engine.rate, s.streamer)
	}

	s.fade = &fader{Streamer: src}
	s.ctrl = &beep.Ctrl{Streamer: s.fade, Paused: true}
	s.ended = false

	s.engine.mixer.Add(beep.Seq(s.ctrl, beep.Callback(s.onEnd)))
}

// onEnd runs on the output goroutine with the lock held.
func (s *Sound) onEnd() {
	if s.closed {
		return
	}
	s.ended = true
	s.engine.notifyFinished(s)
}

// Path returns the file the sound was loaded from.
func (s *Sound) Path() string {
	return s.path
}

// Format returns the format of the decoded file, before resampling.
func (s *Sound) Format() beep.Format {
	return s.format
}

// Start resumes playback. A sound that played to its end starts over.
func (s *Sound) Start() error {
	s.engine.out.Lock()
	defer s.engine.out.Unlock()

	if s.closed {
		return ErrClosed
	}

	if s.ended {
		if err := s.streamer.Seek(0); err != nil {
			return fmt.Errorf("failed to rewind %s: %w", s.path, err)
		}
		s.attach()
		log.Println("restarting", s.path)
	}

	s.fade.cancel()
	s.ctrl.Paused = false
	return nil
}

// StopWithFade ramps the sound down to silence over d, then pauses it.
// The position is kept so Start continues where the fade ended.
func (s *Sound) StopWithFade(d time.Duration) error {
	s.engine.out.Lock()
	defer s.engine.out.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.ended || s.ctrl.Paused {
		return nil
	}

	n := s.engine.rate.N(d)
	if n <= 0 {
		s.ctrl.Paused = true
		return nil
	}

	ctrl := s.ctrl
	s.fade.start(n, func() {
		ctrl.Paused = true
	})
	return nil
}

// Playing reports whether the sound is audible and not fading out.
func (s *Sound) Playing() bool {
	s.engine.out.Lock()
	defer s.engine.out.Unlock()

	return !s.closed && !s.ended && !s.ctrl.Paused && !s.fade.fading()
}

// Position returns how far into the file playback is.
func (s *Sound) Position() time.Duration {
	s.engine.out.Lock()
	defer s.engine.out.Unlock()

	if s.closed {
		return 0
	}
	return s.format.SampleRate.D(s.streamer.Position())
}

// Length returns the duration of the whole file.
func (s *Sound) Length() time.Duration {
	s.engine.out.Lock()
	defer s.engine.out.Unlock()

	if s.closed {
		return 0
	}
	return s.format.SampleRate.D(s.streamer.Len())
}

// Close detaches the sound from the mixer and releases the decoder.
// Closing twice is a no-op.
func (s *Sound) Close() error {
	s.engine.out.Lock()
	defer s.engine.out.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	// a ctrl without a streamer drains, so the mixer drops it on its next pass
	s.ctrl.Streamer = nil

	if err := s.streamer.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", s.path, err)
	}
	log.Println("released sound", s.path)
	return nil
}
