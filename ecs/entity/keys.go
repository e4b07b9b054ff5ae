package entity

import (
	"fmt"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
)

// keyNames maps the physical key names used in control tables to ebiten
// keys. Names ebiten itself knows ("ArrowLeft", "Digit1", ...) are
// accepted too, see ParseKey.
var keyNames = func() map[string]ebiten.Key {
	m := map[string]ebiten.Key{
		"Escape":    ebiten.KeyEscape,
		"LControl":  ebiten.KeyControlLeft,
		"LShift":    ebiten.KeyShiftLeft,
		"LAlt":      ebiten.KeyAltLeft,
		"LSystem":   ebiten.KeyMetaLeft,
		"RControl":  ebiten.KeyControlRight,
		"RShift":    ebiten.KeyShiftRight,
		"RAlt":      ebiten.KeyAltRight,
		"RSystem":   ebiten.KeyMetaRight,
		"Menu":      ebiten.KeyContextMenu,
		"LBracket":  ebiten.KeyBracketLeft,
		"RBracket":  ebiten.KeyBracketRight,
		"Semicolon": ebiten.KeySemicolon,
		"SemiColon": ebiten.KeySemicolon,
		"Comma":     ebiten.KeyComma,
		"Period":    ebiten.KeyPeriod,
		"Quote":     ebiten.KeyQuote,
		"Slash":     ebiten.KeySlash,
		"Backslash": ebiten.KeyBackslash,
		"BackSlash": ebiten.KeyBackslash,
		"Tilde":     ebiten.KeyBackquote,
		"Equal":     ebiten.KeyEqual,
		"Hyphen":    ebiten.KeyMinus,
		"Dash":      ebiten.KeyMinus,
		"Space":     ebiten.KeySpace,
		"Enter":     ebiten.KeyEnter,
		"Return":    ebiten.KeyEnter,
		"Backspace": ebiten.KeyBackspace,
		"BackSpace": ebiten.KeyBackspace,
		"Tab":       ebiten.KeyTab,
		"PageUp":    ebiten.KeyPageUp,
		"PageDown":  ebiten.KeyPageDown,
		"End":       ebiten.KeyEnd,
		"Home":      ebiten.KeyHome,
		"Insert":    ebiten.KeyInsert,
		"Delete":    ebiten.KeyDelete,
		"Add":       ebiten.KeyNumpadAdd,
		"Subtract":  ebiten.KeyNumpadSubtract,
		"Multiply":  ebiten.KeyNumpadMultiply,
		"Divide":    ebiten.KeyNumpadDivide,
		"Left":      ebiten.KeyArrowLeft,
		"Right":     ebiten.KeyArrowRight,
		"Up":        ebiten.KeyArrowUp,
		"Down":      ebiten.KeyArrowDown,
		"Pause":     ebiten.KeyPause,
	}
	for i := 0; i < 26; i++ {
		m[string(rune('A'+i))] = ebiten.KeyA + ebiten.Key(i)
	}
	for i := 0; i <= 9; i++ {
		m["Num"+strconv.Itoa(i)] = ebiten.KeyDigit0 + ebiten.Key(i)
		m["Numpad"+strconv.Itoa(i)] = ebiten.KeyNumpad0 + ebiten.Key(i)
	}
	for i := 1; i <= 15; i++ {
		m["F"+strconv.Itoa(i)] = ebiten.KeyF1 + ebiten.Key(i-1)
	}
	return m
}()

// ParseKey resolves a control table key name.
func ParseKey(name string) (ebiten.Key, error) {
	if k, ok := keyNames[name]; ok {
		return k, nil
	}
	var k ebiten.Key
	if err := k.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("unknown key %q", name)
	}
	return k, nil
}
