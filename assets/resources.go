package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/spritebox/prefabs"
	"golang.org/x/image/webp"
)

// SampleRate is the rate every sound and track is resampled to.
const SampleRate = 44100

const (
	GroupTexture = "texture"
	GroupImage   = "image"
	GroupSound   = "sound"
	GroupMusic   = "music"
	GroupFont    = "font"
)

type sound struct {
	pcm    []byte
	volume float64
}

type track struct {
	file   string
	data   []byte
	volume float64
}

// Resources holds every named texture, image, sound, track and font the
// settings file declares. It is loaded once and then only read.
type Resources struct {
	fsys     fs.FS
	audioCtx *audio.Context

	// newTexture uploads a decoded image; replaced in tests.
	newTexture func(image.Image) *ebiten.Image

	textures map[string]*ebiten.Image
	stretch  map[string]bool
	images   map[string]image.Image
	sounds   map[string]sound
	music    map[string]track
	fonts    map[string]*text.GoTextFaceSource
}

// New creates an empty registry reading from fsys. audioCtx may be nil when
// no sound is ever played.
func New(fsys fs.FS, audioCtx *audio.Context) *Resources {
	return &Resources{
		fsys:       fsys,
		audioCtx:   audioCtx,
		newTexture: ebiten.NewImageFromImage,
		textures:   make(map[string]*ebiten.Image),
		stretch:    make(map[string]bool),
		images:     make(map[string]image.Image),
		sounds:     make(map[string]sound),
		music:      make(map[string]track),
		fonts:      make(map[string]*text.GoTextFaceSource),
	}
}

// LoadAll loads every item of every group. A file that is missing or does
// not decode is logged and skipped; an unknown group type is an error.
func (r *Resources) LoadAll(groups []prefabs.ResourceGroupSpec) error {
	for _, group := range groups {
		for _, item := range group.Items {
			if item.Name == "" {
				return fmt.Errorf("assets: %s item in %q has no name", group.Type, group.Directory)
			}
			file := item.File
			if file == "" {
				file = item.Name
			}
			file = cleanAssetPath(path.Join(group.Directory, file))

			var err error
			switch strings.ToLower(group.Type) {
			case GroupTexture:
				err = r.loadTexture(item, file)
			case GroupImage:
				err = r.loadImage(item, file)
			case GroupSound:
				err = r.loadSound(item, file)
			case GroupMusic:
				err = r.loadTrack(item, file)
			case GroupFont:
				err = r.loadFont(item, file)
			default:
				return fmt.Errorf("assets: unknown resource type %q", group.Type)
			}
			if err != nil {
				log.Printf("assets: %s %q: %v", group.Type, item.Name, err)
			}
		}
	}
	return nil
}

func (r *Resources) loadTexture(item prefabs.ResourceSpec, file string) error {
	img, err := r.decodeFile(file)
	if err != nil {
		return err
	}
	r.textures[item.Name] = r.newTexture(img)
	r.stretch[item.Name] = item.Stretch == nil || *item.Stretch
	return nil
}

func (r *Resources) loadImage(item prefabs.ResourceSpec, file string) error {
	img, err := r.decodeFile(file)
	if err != nil {
		return err
	}
	r.images[item.Name] = img
	return nil
}

func (r *Resources) decodeFile(file string) (image.Image, error) {
	data, err := fs.ReadFile(r.fsys, file)
	if err != nil {
		return nil, err
	}
	return decodeImage(file, data)
}

func (r *Resources) loadSound(item prefabs.ResourceSpec, file string) error {
	data, err := fs.ReadFile(r.fsys, file)
	if err != nil {
		return err
	}
	pcm, err := decodePCM(file, data, SampleRate)
	if err != nil {
		return err
	}
	r.sounds[item.Name] = sound{pcm: pcm, volume: volumeOrDefault(item.Volume)}
	return nil
}

func (r *Resources) loadTrack(item prefabs.ResourceSpec, file string) error {
	data, err := fs.ReadFile(r.fsys, file)
	if err != nil {
		return err
	}
	// Decode once up front so a broken track is reported at load.
	if _, err := decodeStream(file, data, SampleRate); err != nil {
		return err
	}
	r.music[item.Name] = track{file: file, data: data, volume: volumeOrDefault(item.Volume)}
	return nil
}

func (r *Resources) loadFont(item prefabs.ResourceSpec, file string) error {
	data, err := fs.ReadFile(r.fsys, file)
	if err != nil {
		return err
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(data))
	if err != nil {
		return err
	}
	r.fonts[item.Name] = src
	return nil
}

func volumeOrDefault(v float64) float64 {
	if v <= 0 {
		return 1
	}
	if v > 1 {
		return 1
	}
	return v
}

// Texture returns a loaded texture. Stretch reports whether it should be
// stretched over a shape rather than tiled.
func (r *Resources) Texture(name string) (*ebiten.Image, bool) {
	img, ok := r.textures[name]
	return img, ok
}

func (r *Resources) Stretch(name string) bool {
	s, ok := r.stretch[name]
	return !ok || s
}

func (r *Resources) Image(name string) (image.Image, bool) {
	img, ok := r.images[name]
	return img, ok
}

func (r *Resources) HasSound(name string) bool {
	_, ok := r.sounds[name]
	return ok
}

// SoundPlayer creates a new player over the decoded samples of a sound.
func (r *Resources) SoundPlayer(name string) (*audio.Player, error) {
	s, ok := r.sounds[name]
	if !ok {
		return nil, fmt.Errorf("assets: unknown sound %q", name)
	}
	if r.audioCtx == nil {
		return nil, fmt.Errorf("assets: sound %q: no audio context", name)
	}
	p := r.audioCtx.NewPlayerFromBytes(s.pcm)
	p.SetVolume(s.volume)
	return p, nil
}

func (r *Resources) HasTrack(name string) bool {
	_, ok := r.music[name]
	return ok
}

// TrackVolume is the configured volume of a music track, 1 when unknown.
func (r *Resources) TrackVolume(name string) float64 {
	if t, ok := r.music[name]; ok {
		return t.volume
	}
	return 1
}

// MusicPlayer streams a track from a fresh decoder.
func (r *Resources) MusicPlayer(name string) (*audio.Player, error) {
	t, ok := r.music[name]
	if !ok {
		return nil, fmt.Errorf("assets: unknown track %q", name)
	}
	if r.audioCtx == nil {
		return nil, fmt.Errorf("assets: track %q: no audio context", name)
	}
	stream, err := decodeStream(t.file, t.data, SampleRate)
	if err != nil {
		return nil, fmt.Errorf("assets: track %q: %w", name, err)
	}
	return r.audioCtx.NewPlayer(stream)
}

func (r *Resources) Font(name string) (*text.GoTextFaceSource, bool) {
	f, ok := r.fonts[name]
	return f, ok
}

// Names lists the loaded resources of a group in sorted order.
func (r *Resources) Names(group string) []string {
	var names []string
	switch group {
	case GroupTexture:
		for n := range r.textures {
			names = append(names, n)
		}
	case GroupImage:
		for n := range r.images {
			names = append(names, n)
		}
	case GroupSound:
		for n := range r.sounds {
			names = append(names, n)
		}
	case GroupMusic:
		for n := range r.music {
			names = append(names, n)
		}
	case GroupFont:
		for n := range r.fonts {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// decodeImage picks the decoder by extension. TGA has no magic number, so
// the image.Decode registry cannot sniff it reliably.
func decodeImage(name string, data []byte) (image.Image, error) {
	reader := bytes.NewReader(data)
	var (
		img image.Image
		err error
	)
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		img, err = png.Decode(reader)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(reader)
	case ".tga":
		img, err = tga.Decode(reader)
	case ".webp":
		img, err = webp.Decode(reader)
	default:
		return nil, fmt.Errorf("unsupported image format %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", name, err)
	}
	return img, nil
}

func decodeStream(name string, data []byte, sampleRate int) (io.ReadSeeker, error) {
	reader := bytes.NewReader(data)
	switch strings.ToLower(path.Ext(name)) {
	case ".wav":
		s, err := wav.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("decode wav %q: %w", name, err)
		}
		return s, nil
	case ".ogg":
		s, err := vorbis.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("decode ogg %q: %w", name, err)
		}
		return s, nil
	case ".mp3":
		s, err := mp3.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("decode mp3 %q: %w", name, err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported audio format %q", name)
}

// decodePCM decodes a whole sound into 16-bit stereo samples at sampleRate.
func decodePCM(name string, data []byte, sampleRate int) ([]byte, error) {
	stream, err := decodeStream(name, data, sampleRate)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(stream)
}
