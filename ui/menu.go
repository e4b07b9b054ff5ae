package ui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/spritebox/prefabs"
)

type MenuActionKind int

const (
	ActionResume MenuActionKind = iota
	ActionBack
	ActionQuit
	ActionLevel
	ActionMenu
)

// MenuAction is a parsed menu item action: "resume", "back", "quit",
// "level:<name>" or "menu:<name>".
type MenuAction struct {
	Kind MenuActionKind
	Arg  string
}

func ParseMenuAction(s string) (MenuAction, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "resume":
		return MenuAction{Kind: ActionResume}, nil
	case "back":
		return MenuAction{Kind: ActionBack}, nil
	case "quit":
		return MenuAction{Kind: ActionQuit}, nil
	}
	if kind, arg, ok := strings.Cut(s, ":"); ok && arg != "" {
		switch strings.ToLower(kind) {
		case "level":
			return MenuAction{Kind: ActionLevel, Arg: arg}, nil
		case "menu":
			return MenuAction{Kind: ActionMenu, Arg: arg}, nil
		}
	}
	return MenuAction{}, fmt.Errorf("ui: unknown menu action %q", s)
}

// Navigator carries out menu actions for the game.
type Navigator interface {
	Resume()
	Back()
	Quit()
	OpenMenu(name string) error
	LoadLevel(name string) error
}

type menuItem struct {
	label  string
	action MenuAction
}

// Menu is an ebitenui panel of buttons built from a menu descriptor. Items
// are clicked or picked with the number keys 1-9.
type Menu struct {
	Name  string
	title string
	items []menuItem
	nav   Navigator

	face   text.Face
	width  int
	height int
	ui     *ebitenui.UI
	err    error
}

func NewMenu(spec prefabs.MenuSpec, nav Navigator, face text.Face, width, height int) (*Menu, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("ui: menu without a name")
	}
	m := &Menu{
		Name:   spec.Name,
		title:  spec.Title,
		nav:    nav,
		face:   face,
		width:  width,
		height: height,
	}
	for _, item := range spec.Items {
		action, err := ParseMenuAction(item.Action)
		if err != nil {
			return nil, fmt.Errorf("ui: menu %q item %q: %w", spec.Name, item.Label, err)
		}
		m.items = append(m.items, menuItem{label: item.Label, action: action})
	}
	return m, nil
}

// Activate runs the action of item i. An error is reported by the next
// Update.
func (m *Menu) Activate(i int) {
	if i < 0 || i >= len(m.items) || m.nav == nil {
		return
	}
	action := m.items[i].action
	var err error
	switch action.Kind {
	case ActionResume:
		m.nav.Resume()
	case ActionBack:
		m.nav.Back()
	case ActionQuit:
		m.nav.Quit()
	case ActionLevel:
		err = m.nav.LoadLevel(action.Arg)
	case ActionMenu:
		err = m.nav.OpenMenu(action.Arg)
	}
	if err != nil && m.err == nil {
		m.err = fmt.Errorf("ui: menu %q: %w", m.Name, err)
	}
}

func (m *Menu) Labels() []string {
	labels := make([]string, len(m.items))
	for i, item := range m.items {
		labels[i] = item.label
	}
	return labels
}

func (m *Menu) Update() error {
	if m.ui == nil {
		m.ui = m.build()
	}
	m.ui.Update()

	for i := range m.items {
		if i >= 9 {
			break
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyDigit1+ebiten.Key(i)) || inpututil.IsKeyJustPressed(ebiten.KeyNumpad1+ebiten.Key(i)) {
			m.Activate(i)
			break
		}
	}

	err := m.err
	m.err = nil
	return err
}

func (m *Menu) Draw(screen *ebiten.Image) {
	if m.ui == nil {
		m.ui = m.build()
	}
	m.ui.Draw(screen)
}

func (m *Menu) build() *ebitenui.UI {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnHover := imageui.NewNineSliceColor(color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 255})

	face := m.face
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}
	center := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(m.width/3, m.height/3),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionCenter,
			}),
		),
	)

	if m.title != "" {
		panel.AddChild(widget.NewText(
			widget.TextOpts.Text(m.title, &face, white),
			widget.TextOpts.WidgetOpts(center),
		))
	}

	for i, item := range m.items {
		idx := i
		label := item.label
		if i < 9 {
			label = fmt.Sprintf("%d. %s", i+1, item.label)
		}
		panel.AddChild(widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: btnHover, Pressed: btnImg}),
			widget.ButtonOpts.Text(label, &face, btnTextColor),
			widget.ButtonOpts.TextPadding(&widget.Insets{Top: 4, Bottom: 4, Left: 12, Right: 12}),
			widget.ButtonOpts.WidgetOpts(center),
			widget.ButtonOpts.ClickedHandler(func(*widget.ButtonClickedEventArgs) {
				m.Activate(idx)
			}),
		))
	}

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)
	return &ebitenui.UI{Container: root}
}
