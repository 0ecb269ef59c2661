package audio

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
)

const speakerBufferLen = time.Millisecond * 100

// Player decodes one ogg/vorbis music track and plays it once through the
// default output device. Shutdown goes through FadeOut so the track never
// ends abruptly.
type Player struct {
	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	done     chan struct{}
	started  bool
}

func NewPlayer() *Player {
	return &Player{
		done: make(chan struct{}),
	}
}

// Open decodes the music file. The decoder keeps the file handle until
// Close.
func (p *Player) Open(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open music file: %w", err)
	}

	streamer, format, err := vorbis.Decode(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to decode music file %q: %w", path, err)
	}

	p.mu.Lock()
	p.streamer = streamer
	p.format = format
	p.mu.Unlock()
	return nil
}

// Start opens the output device and begins playback. The track plays once;
// done is closed when it finishes.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return fmt.Errorf("no music loaded")
	}
	if p.started {
		return nil
	}

	if err := speaker.Init(p.format.SampleRate, p.format.SampleRate.N(speakerBufferLen)); err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}

	p.ctrl = &beep.Ctrl{Streamer: p.streamer}
	speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
		close(p.done)
	})))

	p.started = true
	return nil
}

// Playing reports whether playback has started and not yet finished.
func (p *Player) Playing() bool {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// FadeOut ramps the music down over d and blocks until it has drained,
// like a blocking mixer fade. Returns immediately if playback never
// started or already finished.
func (p *Player) FadeOut(d time.Duration) {
	p.mu.Lock()
	started := p.started
	ctrl := p.ctrl
	rate := p.format.SampleRate
	p.mu.Unlock()

	if !started {
		return
	}
	select {
	case <-p.done:
		return
	default:
	}

	speaker.Lock()
	ctrl.Streamer = NewFadeOut(ctrl.Streamer, rate, d)
	speaker.Unlock()

	select {
	case <-p.done:
	case <-time.After(d + speakerBufferLen*2):
	}
}

// Close pauses playback and releases the decoder.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = true
		speaker.Unlock()
	}
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
}
