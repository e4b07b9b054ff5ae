package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

const SettingsFile = "settings.yaml"

// Settings is the game-wide descriptor: window, resources, sprite sheets,
// input action bundles, control tables, menus and the level list.
type Settings struct {
	Window       WindowSpec              `yaml:"window"`
	Music        MusicSpec               `yaml:"music"`
	Resources    []ResourceGroupSpec     `yaml:"resources"`
	SpriteSheets []SpriteSheetSpec       `yaml:"spritesheets"`
	Actions      map[string][]ActionSpec `yaml:"actions"`
	// Controls maps a table name to key name -> action bundle name.
	Controls   map[string]map[string]string `yaml:"controls"`
	Menus      []MenuSpec                   `yaml:"menus"`
	Levels     []string                     `yaml:"levels"`
	StartLevel string                       `yaml:"start_level"`
}

func LoadSettings(filename string) (*Settings, error) {
	if filename == "" {
		filename = SettingsFile
	}
	spec, err := LoadSpec[Settings](filename)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// SpriteSheet returns the sheet spec with the given name.
func (s *Settings) SpriteSheet(name string) (SpriteSheetSpec, bool) {
	for _, sheet := range s.SpriteSheets {
		if sheet.Name == name {
			return sheet, true
		}
	}
	return SpriteSheetSpec{}, false
}

type WindowSpec struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	Title           string  `yaml:"title"`
	VSync           bool    `yaml:"vsync"`
	Icon            string  `yaml:"icon"`
	CameraFocusBias float64 `yaml:"camera_focus_bias"`
}

type MusicSpec struct {
	Volume float64 `yaml:"volume"`
	FadeMS int     `yaml:"fade_ms"`
}

type ResourceGroupSpec struct {
	Type      string         `yaml:"type"`
	Directory string         `yaml:"directory"`
	Items     []ResourceSpec `yaml:"items"`
}

type ResourceSpec struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
	// Stretch applies to textures; false tiles the texture instead.
	Stretch *bool   `yaml:"stretch"`
	Volume  float64 `yaml:"volume"`
}

type SpriteSheetSpec struct {
	Name       string          `yaml:"name"`
	Texture    string          `yaml:"texture"`
	XOffset    int             `yaml:"x_offset"`
	YOffset    int             `yaml:"y_offset"`
	Width      int             `yaml:"width"`
	Height     int             `yaml:"height"`
	Scale      int             `yaml:"scale"`
	Animations []AnimationSpec `yaml:"animations"`
}

type AnimationSpec struct {
	Name        string         `yaml:"name"`
	NumFrames   int            `yaml:"num_frames"`
	FrameTimeMS int            `yaml:"frame_time_ms"`
	Rows        map[string]int `yaml:"rows"`
}

// ActionSpec is one primitive of an action bundle. Exactly one field is
// set.
type ActionSpec struct {
	Sound  string    `yaml:"sound"`
	Move   *MoveSpec `yaml:"move"`
	Script string    `yaml:"script"`
}

type MoveSpec struct {
	Entity string  `yaml:"entity"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Mode   string  `yaml:"mode"`
}

type MenuSpec struct {
	Name  string         `yaml:"name"`
	Title string         `yaml:"title"`
	Items []MenuItemSpec `yaml:"items"`
}

type MenuItemSpec struct {
	Label  string `yaml:"label"`
	Action string `yaml:"action"`
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	var rgba [4]uint8
	rgba[3] = 255
	for i := 0; i < len(s)/2; i++ {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return fmt.Errorf("invalid color format: %s: %w", value.Value, err)
		}
		rgba[i] = uint8(v)
	}

	c.Color = color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	return nil
}

func (c YAMLColor) MarshalYAML() (any, error) {
	if c.Color == nil {
		return nil, nil
	}
	n := color.NRGBAModel.Convert(c.Color).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A), nil
}
