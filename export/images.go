package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"runtime"

	"golang.org/x/sync/errgroup"

	"slidedeck/model"
)

const mimeZip = "application/zip"

// ImageArchiveEncoder rasterizes every slide with the injected Renderer and
// bundles the bitmaps into a zip archive named slide-N.png. A slide that
// fails to render is skipped with a diagnostic; the export only fails when
// no slide renders at all.
type ImageArchiveEncoder struct{}

// NewImageArchiveEncoder creates an image archive encoder.
func NewImageArchiveEncoder() *ImageArchiveEncoder {
	return &ImageArchiveEncoder{}
}

// Encode implements Encoder.
func (e *ImageArchiveEncoder) Encode(ctx context.Context, p model.Presentation, opts Options) (Result, error) {
	opts = opts.normalized()
	if opts.Renderer == nil {
		return Result{}, encodingError("images", errors.New("no slide renderer configured"))
	}

	workers := opts.RenderWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ext := "png"
	if opts.ImageFormat != "png" {
		ext = "jpg"
	}

	bitmaps := make([][]byte, len(p.Slides))
	failures := make([]error, len(p.Slides))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range p.Slides {
		g.Go(func() error {
			data, err := renderSlide(gctx, opts, s, ext)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failures[i] = err
				return nil
			}
			bitmaps[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var diags diagnostics
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	written := 0
	for i, data := range bitmaps {
		if data == nil {
			diags.slide(i, RenderFailed, "slide skipped: %v", failures[i])
			continue
		}
		w, err := zw.Create(fmt.Sprintf("slide-%d.%s", i+1, ext))
		if err != nil {
			return Result{}, encodingError("images", err)
		}
		if _, err := w.Write(data); err != nil {
			return Result{}, encodingError("images", err)
		}
		written++
	}
	if err := zw.Close(); err != nil {
		return Result{}, encodingError("images", err)
	}
	if written == 0 && len(p.Slides) > 0 {
		return Result{}, encodingError("images", fmt.Errorf("no slide could be rendered: %w", errors.Join(failures...)))
	}

	return Result{
		Data:        buf.Bytes(),
		Filename:    opts.filename("zip"),
		MIME:        mimeZip,
		Diagnostics: diags.list,
	}, nil
}

func renderSlide(ctx context.Context, opts Options, s model.Slide, ext string) ([]byte, error) {
	img, err := opts.Renderer.Render(ctx, s, opts.Canvas)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errors.New("renderer returned no image")
	}
	img = scaleToWidth(img, opts.RenderWidth)
	return encodeBitmap(img, ext)
}

func encodeBitmap(img image.Image, ext string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if ext == "jpg" {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	} else {
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ext, err)
	}
	return buf.Bytes(), nil
}
