package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
)

// constant streams an endless fixed-amplitude signal.
type constant struct {
	value float64
}

func (c *constant) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i][0] = c.value
		samples[i][1] = c.value
	}
	return len(samples), true
}

func (c *constant) Err() error { return nil }

func TestFadeOutRampsDown(t *testing.T) {
	rate := beep.SampleRate(1000)
	fade := NewFadeOut(&constant{value: 1.0}, rate, 100*time.Millisecond)

	samples := make([][2]float64, 100)
	n, ok := fade.Stream(samples)

	if !ok {
		t.Fatal("expected first stream call to succeed")
	}
	if n != 100 {
		t.Fatalf("expected 100 samples, got %d", n)
	}

	prev := 2.0
	for i := 0; i < n; i++ {
		if samples[i][0] > prev {
			t.Fatalf("gain increased at sample %d: %f > %f", i, samples[i][0], prev)
		}
		if samples[i][0] < 0 || samples[i][0] > 1 {
			t.Fatalf("sample %d out of range: %f", i, samples[i][0])
		}
		prev = samples[i][0]
	}
}

func TestFadeOutDrainsAfterDuration(t *testing.T) {
	rate := beep.SampleRate(1000)
	fade := NewFadeOut(&constant{value: 1.0}, rate, 50*time.Millisecond)

	samples := make([][2]float64, 64)
	streamed := 0
	for {
		n, ok := fade.Stream(samples)
		streamed += n
		if !ok {
			break
		}
		if streamed > 1000 {
			t.Fatal("fade never drained")
		}
	}

	// 50 ms at 1 kHz is exactly 50 samples.
	if streamed != 50 {
		t.Errorf("expected 50 samples before drain, got %d", streamed)
	}

	// Drained streamers stay drained.
	if n, ok := fade.Stream(samples); n != 0 || ok {
		t.Errorf("expected (0, false) after drain, got (%d, %v)", n, ok)
	}
}

func TestFadeOutEndsWhenSourceEnds(t *testing.T) {
	rate := beep.SampleRate(1000)
	source := beep.Take(rate.N(10*time.Millisecond), &constant{value: 1.0})
	fade := NewFadeOut(source, rate, time.Second)

	samples := make([][2]float64, 64)
	streamed := 0
	for {
		n, ok := fade.Stream(samples)
		streamed += n
		if !ok {
			break
		}
	}

	if streamed != 10 {
		t.Errorf("expected drain after the 10-sample source, got %d", streamed)
	}
}

func TestPlayerOpenMissingFile(t *testing.T) {
	player := NewPlayer()
	if err := player.Open("does_not_exist.ogg"); err == nil {
		t.Fatal("expected an error for a missing music file")
	}
}

func TestPlayerStartWithoutOpen(t *testing.T) {
	player := NewPlayer()
	if err := player.Start(); err == nil {
		t.Fatal("expected an error when starting with no music loaded")
	}
	if player.Playing() {
		t.Error("player should not report playing before start")
	}
}

func TestPlayerFadeOutBeforeStartIsNoop(t *testing.T) {
	player := NewPlayer()

	done := make(chan struct{})
	go func() {
		player.FadeOut(time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("FadeOut blocked without playback")
	}
}
