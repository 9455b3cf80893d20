package window

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const (
	SAMPLE_RATE = 44100 // Output samples per second.
	TONE_HZ     = 440   // Beep pitch.
	VOLUME      = 0.2   // Beep amplitude.
)

// Beeper plays a square wave while the sound timer runs.
type Beeper struct {
	on     atomic.Bool
	phase  int
	ctx    *oto.Context
	player *oto.Player
}

// NewBeeper opens the audio device and starts a silent stream.
func NewBeeper() (bp *Beeper, err error) {
	op := &oto.NewContextOptions{
		SampleRate:   SAMPLE_RATE,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return
	}
	<-ready

	bp = &Beeper{ctx: ctx}
	bp.player = ctx.NewPlayer(bp)
	bp.player.Play()

	return
}

// Set the beeper on or off.
func (bp *Beeper) Set(on bool) {
	bp.on.Store(on)
}

// Read fills p with 32-bit float samples. Called by the audio device.
func (bp *Beeper) Read(p []byte) (n int, err error) {
	on := bp.on.Load()
	period := SAMPLE_RATE / TONE_HZ

	for n = 0; n+4 <= len(p); n += 4 {
		var sample float32
		if on {
			sample = VOLUME
			if bp.phase >= period/2 {
				sample = -VOLUME
			}
		}
		bp.phase = (bp.phase + 1) % period
		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(sample))
	}

	return
}

// Close stops playback.
func (bp *Beeper) Close() (err error) {
	if bp.player == nil {
		return
	}

	err = bp.player.Close()
	bp.player = nil

	return
}
