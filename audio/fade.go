package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// fadeOut wraps a streamer and linearly ramps its gain from full to silent
// over a fixed number of samples, then reports itself drained so a
// following beep.Seq entry can run.
type fadeOut struct {
	wrapped   beep.Streamer
	total     int
	remaining int
}

// NewFadeOut creates a streamer that plays the wrapped streamer for d and
// then ends, with gain falling linearly to zero over that window.
func NewFadeOut(wrapped beep.Streamer, rate beep.SampleRate, d time.Duration) beep.Streamer {
	total := rate.N(d)
	if total < 1 {
		total = 1
	}
	return &fadeOut{
		wrapped:   wrapped,
		total:     total,
		remaining: total,
	}
}

func (f *fadeOut) Stream(samples [][2]float64) (n int, ok bool) {
	if f.remaining <= 0 {
		return 0, false
	}

	want := len(samples)
	if want > f.remaining {
		want = f.remaining
	}

	n, ok = f.wrapped.Stream(samples[:want])
	for i := 0; i < n; i++ {
		gain := float64(f.remaining-i) / float64(f.total)
		samples[i][0] *= gain
		samples[i][1] *= gain
	}
	f.remaining -= n
	if !ok {
		// Source ran dry before the ramp finished.
		f.remaining = 0
	}
	return n, n > 0
}

func (f *fadeOut) Err() error {
	return f.wrapped.Err()
}
