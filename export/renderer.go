package export

import (
	"context"
	"image"

	"slidedeck/geom"
	"slidedeck/model"
)

// Renderer rasterizes one slide as it appears on the editing canvas. The
// image archive encoder depends only on this capability, so it can be fed
// by a software renderer, a browser, or a test double.
type Renderer interface {
	Render(ctx context.Context, s model.Slide, canvas geom.Canvas) (image.Image, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, s model.Slide, canvas geom.Canvas) (image.Image, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, s model.Slide, canvas geom.Canvas) (image.Image, error) {
	return f(ctx, s, canvas)
}
