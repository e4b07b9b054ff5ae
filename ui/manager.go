package ui

import (
	"bytes"
	"fmt"
	"image/color"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

const (
	defaultMaxLines = 8
	defaultLineTTL  = 6 * time.Second
	margin          = 8
)

func DefaultFace() text.Face {
	return text.NewGoXFace(basicfont.Face7x13)
}

type logLine struct {
	text string
	at   time.Time
}

// Manager draws the text overlay: recent log lines, the controls help and
// an optional FPS counter. It is an io.Writer so the standard logger can
// be pointed at it; writes may come from any goroutine.
type Manager struct {
	mu       sync.Mutex
	lines    []logLine
	partial  []byte
	maxLines int
	ttl      time.Duration
	now      func() time.Time

	face    text.Face
	help    []string
	ShowFPS bool
}

func NewManager(face text.Face) *Manager {
	if face == nil {
		face = DefaultFace()
	}
	return &Manager{
		maxLines: defaultMaxLines,
		ttl:      defaultLineTTL,
		now:      time.Now,
		face:     face,
	}
}

func (m *Manager) Face() text.Face {
	return m.face
}

func (m *Manager) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.partial = append(m.partial, p...)
	for {
		i := bytes.IndexByte(m.partial, '\n')
		if i < 0 {
			break
		}
		m.push(string(m.partial[:i]))
		m.partial = m.partial[i+1:]
	}
	return len(p), nil
}

func (m *Manager) push(line string) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return
	}
	m.lines = append(m.lines, logLine{text: line, at: m.now()})
	if over := len(m.lines) - m.maxLines; over > 0 {
		m.lines = append(m.lines[:0], m.lines[over:]...)
	}
}

// Lines returns the log lines that have not yet expired, oldest first.
func (m *Manager) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	kept := m.lines[:0]
	for _, l := range m.lines {
		if now.Sub(l.at) < m.ttl {
			kept = append(kept, l)
		}
	}
	m.lines = kept

	out := make([]string, len(m.lines))
	for i, l := range m.lines {
		out[i] = l.text
	}
	return out
}

// SetControls replaces the help text with one "key: action" line per
// binding, tables and keys in name order.
func (m *Manager) SetControls(tables map[string]map[string]string) {
	m.help = ControlsHelp(tables)
}

func ControlsHelp(tables map[string]map[string]string) []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	var help []string
	for _, name := range names {
		table := tables[name]
		keys := make([]string, 0, len(table))
		for k := range table {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(names) > 1 {
			help = append(help, name+":")
		}
		for _, k := range keys {
			help = append(help, fmt.Sprintf("%s: %s", k, table[k]))
		}
	}
	return help
}

func (m *Manager) Draw(screen *ebiten.Image) {
	lineHeight := m.lineHeight()
	w := float64(screen.Bounds().Dx())
	h := float64(screen.Bounds().Dy())

	y := float64(margin)
	if m.ShowFPS {
		m.drawLine(screen, fmt.Sprintf("FPS: %.1f  TPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()), margin, y, text.AlignStart)
		y += lineHeight
	}
	for _, line := range m.Lines() {
		m.drawLine(screen, line, margin, y, text.AlignStart)
		y += lineHeight
	}

	y = h - margin - lineHeight*float64(len(m.help))
	for _, line := range m.help {
		m.drawLine(screen, line, w-margin, y, text.AlignEnd)
		y += lineHeight
	}
}

func (m *Manager) drawLine(screen *ebiten.Image, line string, x, y float64, align text.Align) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x+1, y+1)
	op.ColorScale.ScaleWithColor(color.Black)
	op.PrimaryAlign = align
	text.Draw(screen, line, m.face, op)

	op = &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(color.White)
	op.PrimaryAlign = align
	text.Draw(screen, line, m.face, op)
}

func (m *Manager) lineHeight() float64 {
	metrics := m.face.Metrics()
	h := metrics.HAscent + metrics.HDescent + metrics.HLineGap
	if h <= 0 {
		h = 14
	}
	return h
}
