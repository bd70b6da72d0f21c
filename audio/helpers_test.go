package audio

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/stretchr/testify/require"

	"github.com/pes18fan/ump/config"
)

// fakeOutput stands in for the speaker. Tests pull samples by hand.
type fakeOutput struct {
	mu sync.Mutex

	initErr    error
	rate       beep.SampleRate
	bufferSize int
	played     []beep.Streamer
	closed     bool
}

func (o *fakeOutput) Init(rate beep.SampleRate, bufferSize int) error {
	if o.initErr != nil {
		return o.initErr
	}
	o.rate = rate
	o.bufferSize = bufferSize
	return nil
}

func (o *fakeOutput) Play(s ...beep.Streamer) { o.played = append(o.played, s...) }
func (o *fakeOutput) Lock()                   { o.mu.Lock() }
func (o *fakeOutput) Unlock()                 { o.mu.Unlock() }
func (o *fakeOutput) Close()                  { o.closed = true }

// pull streams n samples out of the output the way the speaker goroutine does.
func (o *fakeOutput) pull(n int) [][2]float64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	samples := make([][2]float64, n)
	for _, s := range o.played {
		s.Stream(samples)
	}
	return samples
}

var errNoDevice = errors.New("no audio device")

func testAudioConfig() config.Audio {
	return config.DefaultConfig().Audio
}

func newTestEngine(t *testing.T) (*Engine, *fakeOutput) {
	t.Helper()
	out := &fakeOutput{}
	e, err := NewEngineWithOutput(testAudioConfig(), out)
	require.NoError(t, err)
	return e, out
}

// constant produces the same value on both channels forever.
func constant(v float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	})
}

// writeWAV encodes n stereo 16-bit samples of value v at the given rate.
func writeWAV(t *testing.T, name string, rate beep.SampleRate, n int, v float64) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Take(n, constant(v)), format))
	return path
}
