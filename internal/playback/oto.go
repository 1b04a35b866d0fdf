//go:build !headless

package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// DeviceBuffer is the output buffer duration requested from the device.
const DeviceBuffer = 20 * time.Millisecond

// Player streams a Source to the default audio device.
type Player struct {
	ctx     *oto.Context
	player  *oto.Player
	reader  *Reader
	started bool
	mutex   sync.Mutex
}

// Open creates the device context. oto allows one context per process.
func Open(sampleRate int, src Source) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   DeviceBuffer,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	p := &Player{
		ctx:    ctx,
		reader: NewReader(src),
	}
	p.player = ctx.NewPlayer(p.reader)
	return p, nil
}

// Start begins playback.
func (p *Player) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started {
		p.player.Play()
		p.started = true
	}
}

// IsStarted reports whether Start has been called.
func (p *Player) IsStarted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.started
}

// Err returns the device error, if any.
func (p *Player) Err() error {
	if err := p.player.Err(); err != nil {
		return err
	}
	return p.ctx.Err()
}

// Close stops playback and releases the player.
func (p *Player) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.started = false
	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	return err
}
