// Package audio plays decoded files through one shared output.
//
// Every sound loaded by an Engine is attached to the same mixer, starts
// paused and is driven by Start/StopWithFade. Mutations of a sound happen
// under the output lock since the output pulls samples on its own goroutine.
package audio

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/gopxl/beep"

	"github.com/pes18fan/ump/config"
)

var (
	ErrEngineClosed = errors.New("audio engine closed")
	ErrClosed       = errors.New("sound closed")
)

// Engine owns the output device and the mixer all sounds play into.
type Engine struct {
	out     Output
	rate    beep.SampleRate
	quality int
	mixer   *beep.Mixer

	finished chan *Sound

	mu     sync.Mutex
	closed bool
}

// NewEngine opens the system speaker with the given settings.
// The speaker must only be initialized once per process.
func NewEngine(cfg config.Audio) (*Engine, error) {
	return NewEngineWithOutput(cfg, speakerOutput{})
}

// NewEngineWithOutput mixes into out instead of the system speaker.
func NewEngineWithOutput(cfg config.Audio, out Output) (*Engine, error) {
	rate := beep.SampleRate(cfg.SampleRate)
	if err := out.Init(rate, rate.N(cfg.Buffer())); err != nil {
		return nil, fmt.Errorf("failed to init audio output: %w", err)
	}

	e := &Engine{
		out:      out,
		rate:     rate,
		quality:  cfg.ResampleQuality,
		mixer:    &beep.Mixer{},
		finished: make(chan *Sound, 1),
	}
	out.Play(e)
	log.Println("audio engine running at", rate, "hz")

	return e, nil
}

// SampleRate is the rate every sound is resampled to.
func (e *Engine) SampleRate() beep.SampleRate {
	return e.rate
}

// Finished receives each sound that plays to its end. Only the latest one is
// kept if the receiver falls behind.
func (e *Engine) Finished() <-chan *Sound {
	return e.finished
}

// Load decodes the file at path and attaches it to the mixer, paused.
func (e *Engine) Load(path string) (*Sound, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, ErrEngineClosed
	}

	streamer, format, err := Open(path)
	if err != nil {
		return nil, err
	}

	s := &Sound{
		engine:   e,
		path:     path,
		streamer: streamer,
		format:   format,
	}

	e.out.Lock()
	s.attach()
	e.out.Unlock()

	log.Println("loaded sound", path)
	return s, nil
}

// Stream mixes every attached sound. It never drains so the output keeps
// running while nothing is attached.
func (e *Engine) Stream(samples [][2]float64) (int, bool) {
	n, _ := e.mixer.Stream(samples)
	clear(samples[n:])
	return len(samples), true
}

func (e *Engine) Err() error {
	return nil
}

// Close detaches all sounds and shuts the output down.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	e.closed = true
	e.mu.Unlock()

	e.out.Lock()
	e.mixer.Clear()
	e.out.Unlock()

	e.out.Close()
	log.Println("audio engine closed")
	return nil
}

// notifyFinished is called from the output goroutine, so it must never block.
// A stale signal still waiting in the channel is replaced by s.
func (e *Engine) notifyFinished(s *Sound) {
	for {
		select {
		case e.finished <- s:
			return
		default:
		}
		select {
		case <-e.finished:
		default:
		}
	}
}
