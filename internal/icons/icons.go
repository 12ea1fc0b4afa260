// Package icons maps the symbolic icon keys and color tokens stored on
// subjects to terminal glyphs and lipgloss styles.
package icons

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
)

var glyphs = map[string]string{
	"Calculator":   "∑",
	"FlaskConical": "⚗",
	"Globe":        "◍",
	"BookOpen":     "❡",
	"Palette":      "✎",
	"Music":        "♫",
	"Folder":       "▤",
	"Document":     "▯",
	"Sparkles":     "✦",
	"Home":         "⌂",
}

var palette = map[string]lipgloss.AdaptiveColor{
	"blue":   {Light: "#1D4ED8", Dark: "#60A5FA"},
	"green":  {Light: "#15803D", Dark: "#4ADE80"},
	"orange": {Light: "#C2410C", Dark: "#FB923C"},
	"purple": {Light: "#7E22CE", Dark: "#C084FC"},
	"pink":   {Light: "#BE185D", Dark: "#F472B6"},
	"indigo": {Light: "#4338CA", Dark: "#818CF8"},
	"slate":  {Light: "#334155", Dark: "#94A3B8"},
}

// Glyph returns the glyph for key. Every key stored on a subject must be
// registered; an unknown key is a programming error and panics.
func Glyph(key string) string {
	glyph, ok := glyphs[key]
	if !ok {
		panic(fmt.Sprintf("icons: unknown icon key %q", key))
	}
	return glyph
}

// Lookup is the non-panicking form of Glyph, used to validate user input.
func Lookup(key string) (string, bool) {
	glyph, ok := glyphs[key]
	return glyph, ok
}

// Keys lists the registered icon keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(glyphs))
	for k := range glyphs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Colors lists the known color tokens in sorted order.
func Colors() []string {
	tokens := make([]string, 0, len(palette))
	for k := range palette {
		tokens = append(tokens, k)
	}
	sort.Strings(tokens)
	return tokens
}

// Style returns the foreground style for a subject color token. Unknown
// tokens render unstyled.
func Style(token string) lipgloss.Style {
	color, ok := palette[token]
	if !ok {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(color)
}

// Badge renders the colored glyph for a subject.
func Badge(iconKey, colorToken string) string {
	return Style(colorToken).Bold(true).Render(Glyph(iconKey))
}
