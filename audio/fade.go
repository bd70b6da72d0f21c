package audio

import "github.com/gopxl/beep"

// fader scales its streamer linearly down to zero over a number of samples
// and calls done once the ramp has finished. Outside a fade it is a no-op.
type fader struct {
	beep.Streamer

	total int
	left  int
	done  func()
}

func (f *fader) start(n int, done func()) {
	f.total = n
	f.left = n
	f.done = done
}

func (f *fader) cancel() {
	f.total = 0
	f.left = 0
	f.done = nil
}

func (f *fader) fading() bool {
	return f.left > 0
}

func (f *fader) Stream(samples [][2]float64) (int, bool) {
	if f.left == 0 {
		return f.Streamer.Stream(samples)
	}

	// never pull more than the rest of the ramp from the source, so the
	// position stays where the sound went silent
	m := min(len(samples), f.left)
	n, ok := f.Streamer.Stream(samples[:m])
	for i := range samples[:n] {
		f.left--
		gain := float64(f.left) / float64(f.total)
		samples[i][0] *= gain
		samples[i][1] *= gain
	}

	if f.left > 0 || n < m {
		return n, ok
	}

	clear(samples[n:])
	done := f.done
	f.cancel()
	if done != nil {
		done()
	}
	return len(samples), true
}
