package geom

import (
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"
)

// hexPattern accepts exactly six hex digits with an optional leading '#'.
var hexPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{2})([0-9a-fA-F]{2})([0-9a-fA-F]{2})$`)

// DefaultBackground is the background colour given to new slides.
const DefaultBackground = "#ffffff"

// DefaultTextColor is the text colour given to new slides.
const DefaultTextColor = "#000000"

// RGB is an opaque 8-bit colour.
type RGB struct {
	R, G, B uint8
}

// ParseHex parses a strict six digit hex colour. Short forms, names and
// rgb() notation are rejected.
func ParseHex(s string) (RGB, bool) {
	m := hexPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return RGB{}, false
	}
	var out [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(m[i+1], 16, 8)
		if err != nil {
			return RGB{}, false
		}
		out[i] = uint8(v)
	}
	return RGB{R: out[0], G: out[1], B: out[2]}, true
}

// Hex formats the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ARGB formats the colour as an opaque AARRGGBB string.
func (c RGB) ARGB() string {
	return fmt.Sprintf("FF%02X%02X%02X", c.R, c.G, c.B)
}

// Ints returns the channels as ints, the form PDF writers expect.
func (c RGB) Ints() (int, int, int) {
	return int(c.R), int(c.G), int(c.B)
}

// RGBA converts to the image/color representation.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// IsDefaultBackground reports whether s needs no explicit background fill.
func IsDefaultBackground(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	c, ok := ParseHex(s)
	return ok && c == RGB{R: 0xff, G: 0xff, B: 0xff}
}
