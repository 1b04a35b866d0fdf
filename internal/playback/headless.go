//go:build headless

package playback

import "errors"

// ErrNoDevice is returned by Open in headless builds.
var ErrNoDevice = errors.New("playback: built without audio device support")

// Player is unavailable in headless builds.
type Player struct{}

// Open always fails in headless builds.
func Open(int, Source) (*Player, error) {
	return nil, ErrNoDevice
}

func (p *Player) Start()          {}
func (p *Player) IsStarted() bool { return false }
func (p *Player) Err() error      { return ErrNoDevice }
func (p *Player) Close() error    { return nil }
