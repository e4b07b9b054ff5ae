package system

import (
	"log"

	"github.com/milk9111/spritebox/assets"
)

// SoundChannels is how many sounds can play at once.
const SoundChannels = 10

// Player is the part of *audio.Player the audio systems drive.
type Player interface {
	Play()
	Pause()
	Rewind() error
	IsPlaying() bool
	SetVolume(volume float64)
	Close() error
}

// PlayerFactory creates a fresh player for a named sound or track.
type PlayerFactory func(name string) (Player, error)

type channel struct {
	name   string
	player Player
}

// AudioSystem plays named sounds on a fixed pool of channels. A sound that
// is already playing is not restarted; when every channel is busy the
// request is dropped.
type AudioSystem struct {
	newPlayer PlayerFactory
	channels  [SoundChannels]channel
	muted     bool
}

func NewAudioSystem(res *assets.Resources) *AudioSystem {
	return NewAudioSystemWithFactory(func(name string) (Player, error) {
		p, err := res.SoundPlayer(name)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

func NewAudioSystemWithFactory(newPlayer PlayerFactory) *AudioSystem {
	return &AudioSystem{newPlayer: newPlayer}
}

func (a *AudioSystem) Play(name string) {
	if a == nil || a.muted || name == "" {
		return
	}

	free := -1
	for i := range a.channels {
		ch := &a.channels[i]
		playing := ch.player != nil && ch.player.IsPlaying()
		if playing && ch.name == name {
			return
		}
		if !playing && free < 0 {
			free = i
		}
	}
	if free < 0 {
		return
	}

	player, err := a.newPlayer(name)
	if err != nil {
		log.Printf("audio: play %q: %v", name, err)
		return
	}
	ch := &a.channels[free]
	if ch.player != nil {
		_ = ch.player.Close()
	}
	ch.name = name
	ch.player = player
	player.Play()
}

// Stop halts every channel playing name.
func (a *AudioSystem) Stop(name string) {
	if a == nil {
		return
	}
	for i := range a.channels {
		ch := &a.channels[i]
		if ch.name != name || ch.player == nil {
			continue
		}
		ch.player.Pause()
		_ = ch.player.Rewind()
		ch.name = ""
	}
}

// StopAll halts every channel, as on a level change.
func (a *AudioSystem) StopAll() {
	if a == nil {
		return
	}
	for i := range a.channels {
		ch := &a.channels[i]
		if ch.player != nil {
			ch.player.Pause()
			_ = ch.player.Close()
		}
		a.channels[i] = channel{}
	}
}

// SetMuted drops every later Play and stops what is playing.
func (a *AudioSystem) SetMuted(muted bool) {
	a.muted = muted
	if muted {
		a.StopAll()
	}
}

// Playing lists the names on busy channels in channel order.
func (a *AudioSystem) Playing() []string {
	var names []string
	for _, ch := range a.channels {
		if ch.player != nil && ch.player.IsPlaying() {
			names = append(names, ch.name)
		}
	}
	return names
}
