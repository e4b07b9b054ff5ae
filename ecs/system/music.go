package system

import (
	"log"
	"slices"
	"time"

	"github.com/milk9111/spritebox/assets"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

type MusicConfig struct {
	// Volume scales every track's own volume.
	Volume float64
	Fade   time.Duration
}

type fadingTrack struct {
	player Player
	tween  *gween.Tween
}

// MusicSystem plays the scene playlist in order, moving on when a track
// ends and wrapping at the end. A playlist change fades the old track out
// while the new one fades in.
type MusicSystem struct {
	newPlayer   PlayerFactory
	trackVolume func(name string) float64
	cfg         MusicConfig

	playlist []string
	index    int
	current  Player
	name     string
	fadeIn   *gween.Tween
	gain     float64
	fading   []fadingTrack
	paused   bool
}

func NewMusicSystem(res *assets.Resources, cfg MusicConfig) *MusicSystem {
	return NewMusicSystemWithFactory(func(name string) (Player, error) {
		p, err := res.MusicPlayer(name)
		if err != nil {
			return nil, err
		}
		return p, nil
	}, res.TrackVolume, cfg)
}

func NewMusicSystemWithFactory(newPlayer PlayerFactory, trackVolume func(string) float64, cfg MusicConfig) *MusicSystem {
	if cfg.Volume <= 0 || cfg.Volume > 1 {
		cfg.Volume = 1
	}
	if trackVolume == nil {
		trackVolume = func(string) float64 { return 1 }
	}
	return &MusicSystem{newPlayer: newPlayer, trackVolume: trackVolume, cfg: cfg}
}

// SetPlaylist switches to a new playlist. The same tracks again, in any
// order, keep the current track playing and take the new order from there.
func (m *MusicSystem) SetPlaylist(names []string) {
	if slices.Equal(names, m.playlist) {
		return
	}
	if sameTracks(names, m.playlist) {
		m.playlist = slices.Clone(names)
		if i := slices.Index(m.playlist, m.name); i >= 0 {
			m.index = i
		}
		return
	}
	m.playlist = slices.Clone(names)
	m.index = 0
	m.fadeOutCurrent()
	if len(m.playlist) > 0 {
		m.start(true)
	}
}

func sameTracks(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	a, b = slices.Clone(a), slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// Current is the name of the playing track, empty when silent.
func (m *MusicSystem) Current() string {
	return m.name
}

// SetPaused pauses or resumes the current track.
func (m *MusicSystem) SetPaused(paused bool) {
	if m.paused == paused {
		return
	}
	m.paused = paused
	if m.current == nil {
		return
	}
	if paused {
		m.current.Pause()
	} else {
		m.current.Play()
	}
}

// Stop closes every track, including those still fading out, and forgets
// the playlist.
func (m *MusicSystem) Stop() {
	m.fadeOutCurrent()
	for _, f := range m.fading {
		f.player.Pause()
		_ = f.player.Close()
	}
	m.fading = nil
	m.playlist = nil
	m.index = 0
}

func (m *MusicSystem) Update(dt time.Duration) {
	step := float32(dt.Seconds())

	kept := m.fading[:0]
	for _, f := range m.fading {
		v, done := f.tween.Update(step)
		if done {
			f.player.Pause()
			_ = f.player.Close()
			continue
		}
		f.player.SetVolume(float64(v))
		kept = append(kept, f)
	}
	m.fading = kept

	if m.current == nil || m.paused {
		return
	}
	if m.fadeIn != nil {
		v, done := m.fadeIn.Update(step)
		m.gain = float64(v)
		if done {
			m.fadeIn = nil
			m.gain = 1
		}
		m.applyVolume()
	}

	if !m.current.IsPlaying() {
		_ = m.current.Close()
		m.current = nil
		m.name = ""
		m.index = (m.index + 1) % len(m.playlist)
		m.start(false)
	}
}

// start plays the track at index, skipping tracks that fail to open. Every
// track is tried at most once.
func (m *MusicSystem) start(fade bool) {
	for tries := 0; tries < len(m.playlist); tries++ {
		name := m.playlist[m.index]
		player, err := m.newPlayer(name)
		if err != nil {
			log.Printf("music: %q: %v", name, err)
			m.index = (m.index + 1) % len(m.playlist)
			continue
		}
		m.current = player
		m.name = name
		m.gain = 1
		m.fadeIn = nil
		if fade && m.cfg.Fade > 0 {
			m.gain = 0
			m.fadeIn = gween.New(0, 1, float32(m.cfg.Fade.Seconds()), ease.InQuad)
		}
		m.applyVolume()
		if !m.paused {
			player.Play()
		}
		return
	}
}

func (m *MusicSystem) fadeOutCurrent() {
	if m.current == nil {
		return
	}
	vol := m.volume()
	if m.cfg.Fade <= 0 || vol <= 0 {
		m.current.Pause()
		_ = m.current.Close()
	} else {
		m.fading = append(m.fading, fadingTrack{
			player: m.current,
			tween:  gween.New(float32(vol), 0, float32(m.cfg.Fade.Seconds()), ease.Linear),
		})
	}
	m.current = nil
	m.name = ""
	m.fadeIn = nil
}

func (m *MusicSystem) volume() float64 {
	return m.cfg.Volume * m.trackVolume(m.name) * m.gain
}

func (m *MusicSystem) applyVolume() {
	if m.current != nil {
		m.current.SetVolume(m.volume())
	}
}
