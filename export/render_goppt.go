package export

import (
	"context"
	"fmt"
	"image"

	ppt "github.com/VantageDataChat/GoPPT"

	"slidedeck/geom"
	"slidedeck/model"
)

// GoPPTRenderer rasterizes a slide by building it as a one-slide package
// and running GoPPT's software renderer over it. It needs no browser, at
// the price of showing only what the slide-package encoder keeps.
type GoPPTRenderer struct {
	// Width of the output bitmap. Zero renders at twice the canvas width.
	Width int
	// FontDirs are searched in addition to the system font directories.
	FontDirs []string
	Defaults model.Defaults
}

// NewGoPPTRenderer creates a software renderer.
func NewGoPPTRenderer(width int, d model.Defaults) *GoPPTRenderer {
	return &GoPPTRenderer{Width: width, Defaults: d}
}

// Render implements Renderer.
func (r *GoPPTRenderer) Render(ctx context.Context, s model.Slide, canvas geom.Canvas) (image.Image, error) {
	opts := Options{Canvas: canvas, Defaults: r.Defaults}.normalized()
	deck, _, err := buildDeck(ctx, model.Presentation{Slides: []model.Slide{s}}, opts)
	if err != nil {
		return nil, err
	}

	ro := ppt.DefaultRenderOptions()
	ro.Width = r.Width
	if ro.Width <= 0 {
		ro.Width = int(opts.Canvas.Width * 2)
	}
	ro.FontDirs = r.FontDirs
	if c, ok := geom.ParseHex(s.Background); ok {
		bg := c.RGBA()
		ro.BackgroundColor = &bg
	}

	img, err := deck.SlideToImage(0, ro)
	if err != nil {
		return nil, fmt.Errorf("render slide: %w", err)
	}
	return img, nil
}
