// Package export turns a presentation snapshot into the interchange formats
// a user can download: slide packages, paged documents, web pages, image
// archives, the native JSON document and a speaker-notes handout.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"slidedeck/geom"
	"slidedeck/model"
)

// ErrEncodingFailure is returned when an encoder cannot produce its output.
var ErrEncodingFailure = errors.New("encoding failure")

// ErrUnknownFormat is returned for a format name no encoder handles.
var ErrUnknownFormat = errors.New("unknown export format")

// Format names an export target.
type Format string

const (
	FormatPPTX    Format = "pptx"
	FormatPDF     Format = "pdf"
	FormatHTML    Format = "html"
	FormatImages  Format = "images"
	FormatJSON    Format = "json"
	FormatHandout Format = "handout"
	// FormatPrintPDF is the web page printed by a browser.
	FormatPrintPDF Format = "print-pdf"
)

// Formats lists every supported target.
var Formats = []Format{FormatPPTX, FormatPDF, FormatHTML, FormatImages, FormatJSON, FormatHandout, FormatPrintPDF}

// ParseFormat accepts a format name case-insensitively. "zip" and "png" are
// accepted as aliases of the image archive.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "zip", "png":
		return FormatImages, nil
	case FormatPPTX, FormatPDF, FormatHTML, FormatImages, FormatJSON, FormatHandout, FormatPrintPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Options carries everything an encoder needs besides the snapshot.
type Options struct {
	// Canvas is the editing canvas in force when the snapshot was taken.
	Canvas geom.Canvas
	// Defaults identifies placeholder text that must not be exported.
	Defaults model.Defaults
	// BaseName is the suggested file name without extension.
	BaseName string
	// Title is written into document metadata where the target has it.
	Title string
	// Renderer rasterizes slides for the image archive.
	Renderer Renderer
	// RenderWidth scales rendered bitmaps to this width when positive.
	RenderWidth int
	// RenderWorkers bounds concurrent rasterization. Zero means one per CPU.
	RenderWorkers int
	// ImageFormat is "png" or "jpeg".
	ImageFormat string
	// Compress enables stream compression in paged documents.
	Compress bool
	// Now stamps documents that carry a creation time.
	Now func() time.Time
}

// DefaultOptions returns the options used when the caller has no
// preferences.
func DefaultOptions() Options {
	return Options{
		Canvas:      geom.Canvas800,
		Defaults:    model.English,
		BaseName:    "presentation",
		ImageFormat: "png",
		Compress:    true,
		Now:         time.Now,
	}
}

func (o Options) normalized() Options {
	o.Canvas = o.Canvas.OrDefault()
	if o.Defaults.TitleFormat == "" {
		o.Defaults = model.English
	}
	if o.BaseName == "" {
		o.BaseName = "presentation"
	}
	if o.ImageFormat != "jpeg" && o.ImageFormat != "jpg" {
		o.ImageFormat = "png"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) filename(ext string) string {
	return o.BaseName + "." + ext
}

// Result is the output of one export.
type Result struct {
	Data        []byte
	Filename    string
	MIME        string
	Diagnostics []Diagnostic
}

// Encoder converts a presentation snapshot into one target format. The
// snapshot is never modified.
type Encoder interface {
	Encode(ctx context.Context, p model.Presentation, opts Options) (Result, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(ctx context.Context, p model.Presentation, opts Options) (Result, error)

// Encode calls f.
func (f EncoderFunc) Encode(ctx context.Context, p model.Presentation, opts Options) (Result, error) {
	return f(ctx, p, opts)
}

// encodingError wraps err so callers can match ErrEncodingFailure.
func encodingError(target string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrEncodingFailure, target, err)
}

// visibleText returns the slide title and content with markup removed,
// blanking the untouched placeholders.
func visibleText(d model.Defaults, s model.Slide) (title, content string) {
	if s.Title != "" && !d.IsPlaceholder(s.Title) {
		title = StripMarkup(s.Title)
	}
	if s.Content != "" && !d.IsPlaceholder(s.Content) {
		content = StripMarkup(s.Content)
	}
	return title, content
}
