// Package geom converts between the editing canvas and the unit systems of
// the export targets, and parses the colour strings stored on slides.
package geom

import "math"

// Canvas is the pixel space elements are positioned in while editing.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var (
	// Canvas800 is the nominal editing canvas.
	Canvas800 = Canvas{Width: 800, Height: 600}
	// Canvas900 is the large editing canvas.
	Canvas900 = Canvas{Width: 900, Height: 675}
)

const (
	// PixelsPerInch is the fixed divisor used by the slide-package target.
	// It does not depend on the canvas size.
	PixelsPerInch = 100.0
	// EMUPerInch is the number of English Metric Units in one inch.
	EMUPerInch = 914400
	// MMPerInch converts inches to millimetres.
	MMPerInch = 25.4
)

// Valid reports whether both dimensions are positive.
func (c Canvas) Valid() bool {
	return c.Width > 0 && c.Height > 0
}

// OrDefault returns c, or Canvas800 when c is not usable.
func (c Canvas) OrDefault() Canvas {
	if c.Valid() {
		return c
	}
	return Canvas800
}

// Rect is an axis aligned box in some unit system.
type Rect struct {
	X, Y, W, H float64
}

// PixelsToInches applies the fixed slide-package scale.
func PixelsToInches(px float64) float64 {
	return px / PixelsPerInch
}

// InchesToEMU converts inches to EMU, rounding to the nearest unit.
func InchesToEMU(in float64) int64 {
	return int64(math.Round(in * EMUPerInch))
}

// PixelsToEMU converts canvas pixels to EMU through the fixed inch scale.
func PixelsToEMU(px float64) int64 {
	return InchesToEMU(PixelsToInches(px))
}

// ToPackage scales a canvas rectangle into slide-package EMU.
func ToPackage(r Rect) (x, y, w, h int64) {
	return PixelsToEMU(r.X), PixelsToEMU(r.Y), PixelsToEMU(r.W), PixelsToEMU(r.H)
}

// MapToPage maps a canvas rectangle onto a page of the given physical size.
// Each coordinate is taken as a fraction of the canvas and multiplied by the
// page dimension on the same axis.
func (c Canvas) MapToPage(r Rect, pageW, pageH float64) Rect {
	c = c.OrDefault()
	return Rect{
		X: r.X / c.Width * pageW,
		Y: r.Y / c.Height * pageH,
		W: r.W / c.Width * pageW,
		H: r.H / c.Height * pageH,
	}
}

// Fit returns the scale factor that fits the canvas inside a w by h box
// without distortion.
func (c Canvas) Fit(w, h float64) float64 {
	c = c.OrDefault()
	return math.Min(w/c.Width, h/c.Height)
}
