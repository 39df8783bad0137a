package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	defaultSpriteBase = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/"
	defaultColorHex   = "#6366F1"
)

var colorHex = map[string]string{
	"red":    "#FF6B6B",
	"blue":   "#4DABF7",
	"yellow": "#FFD93D",
	"green":  "#51CF66",
	"black":  "#495057",
	"brown":  "#8D6E63",
	"purple": "#9775FA",
	"gray":   "#868E96",
	"white":  "#DAE0E5",
	"pink":   "#F783AC",
}

// DisplayName upper-cases the first letter of name.
func DisplayName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// ColorHex maps a species colour name to the palette used by detail views.
func ColorHex(colorName string) string {
	if hex, ok := colorHex[strings.ToLower(strings.TrimSpace(colorName))]; ok {
		return hex
	}
	return defaultColorHex
}

// FormatHeight renders decimetres as metres, "Unknown" when absent or zero.
func FormatHeight(dm *int) string {
	if dm == nil || *dm == 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%.1fm", float64(*dm)/10)
}

// FormatWeight renders hectograms as kilograms, "Unknown" when absent or zero.
func FormatWeight(hg *int) string {
	if hg == nil || *hg == 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%.1fkg", float64(*hg)/10)
}

// DefaultSpriteURL is the static sprite used when the API cannot be reached.
func DefaultSpriteURL(id string) string {
	return defaultSpriteBase + strings.TrimSpace(id) + ".png"
}

// PreferArtwork returns the official artwork when present, else the
// regular sprite.
func (e Entry) PreferArtwork() string {
	if e.ArtworkURL != "" {
		return e.ArtworkURL
	}
	return e.ImageURL
}

// IDString is the favorite-store representation of the entry id.
func (e Entry) IDString() string {
	return strconv.Itoa(e.ID)
}
