package export

import (
	"bytes"
	"context"
	"fmt"

	ppt "github.com/VantageDataChat/GoPPT"

	"slidedeck/geom"
	"slidedeck/model"
)

const mimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// PPT布局常量 - 16:9宽屏比例
const (
	gopptSlideWidth  = int64(10.0 * geom.EMUPerInch)
	gopptSlideHeight = int64(5.625 * geom.EMUPerInch)

	// 标题与正文文本框 (英寸)
	gopptTitleX, gopptTitleY, gopptTitleW, gopptTitleH         = 0.5, 0.5, 9.0, 1.0
	gopptContentX, gopptContentY, gopptContentW, gopptContentH = 0.5, 2.0, 9.0, 4.0

	// 字体大小 (pt)
	gopptFontTitle   = 24
	gopptFontContent = 16
	gopptFontElement = 16
	gopptFontFace    = "Arial"
)

// PPTXEncoder writes slide packages with GoPPT. Element placement uses the
// fixed pixels-to-inches scale regardless of the canvas size. Charts,
// tables, icons and interactive widgets have no native counterpart and are
// reported as diagnostics.
type PPTXEncoder struct{}

// NewPPTXEncoder creates a slide-package encoder.
func NewPPTXEncoder() *PPTXEncoder {
	return &PPTXEncoder{}
}

// Encode implements Encoder.
func (e *PPTXEncoder) Encode(ctx context.Context, p model.Presentation, opts Options) (Result, error) {
	opts = opts.normalized()
	deck, diags, err := buildDeck(ctx, p, opts)
	if err != nil {
		return Result{}, err
	}

	w, err := ppt.NewWriter(deck, ppt.WriterPowerPoint2007)
	if err != nil {
		return Result{}, encodingError("pptx", fmt.Errorf("failed to create PPT writer: %w", err))
	}
	var buf bytes.Buffer
	if err := w.(*ppt.PPTXWriter).WriteTo(&buf); err != nil {
		return Result{}, encodingError("pptx", fmt.Errorf("failed to save PPT: %w", err))
	}

	return Result{
		Data:        buf.Bytes(),
		Filename:    opts.filename("pptx"),
		MIME:        mimePPTX,
		Diagnostics: diags,
	}, nil
}

// buildDeck converts every slide into a GoPPT slide in order.
func buildDeck(ctx context.Context, p model.Presentation, opts Options) (*ppt.Presentation, []Diagnostic, error) {
	deck := ppt.New()
	deck.GetDocumentProperties().Title = opts.Title
	deck.GetDocumentProperties().Creator = "slidedeck"

	var diags diagnostics
	for i, s := range p.Slides {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		target := deck.GetActiveSlide()
		if i > 0 {
			target = deck.CreateSlide()
		}
		b := &gopptSlideBuilder{slide: target, index: i, opts: opts, diags: &diags}
		if err := b.build(s); err != nil {
			return nil, nil, encodingError("pptx", fmt.Errorf("slide %d: %w", i+1, err))
		}
	}
	return deck, diags.list, nil
}

// helper: create a solid fill
func solidFill(c geom.RGB) *ppt.Fill {
	return ppt.NewFill().SetSolid(ppt.NewColor(c.ARGB()))
}

// helper: parse a slide colour, falling back when it is not a hex colour
func argbOr(s string, fallback geom.RGB) ppt.Color {
	if c, ok := geom.ParseHex(s); ok {
		return ppt.NewColor(c.ARGB())
	}
	return ppt.NewColor(fallback.ARGB())
}

func inches(v float64) int64 {
	return geom.InchesToEMU(v)
}

var (
	black = geom.RGB{}
	white = geom.RGB{R: 0xff, G: 0xff, B: 0xff}
)

// gopptSlideBuilder places one presentation slide on a GoPPT slide.
type gopptSlideBuilder struct {
	slide *ppt.Slide
	index int
	opts  Options
	diags *diagnostics
}

func (b *gopptSlideBuilder) build(s model.Slide) error {
	if !geom.IsDefaultBackground(s.Background) {
		if c, ok := geom.ParseHex(s.Background); ok {
			bg := b.slide.CreateRichTextShape()
			bg.SetOffsetX(0).SetOffsetY(0)
			bg.SetWidth(gopptSlideWidth).SetHeight(gopptSlideHeight)
			bg.SetFill(solidFill(c))
			bg.SetDescription("background")
		}
	}

	textColor := argbOr(s.TextColor, black)
	title, content := visibleText(b.opts.Defaults, s)
	if title != "" {
		shape := b.slide.CreateRichTextShape()
		shape.SetOffsetX(inches(gopptTitleX)).SetOffsetY(inches(gopptTitleY))
		shape.SetWidth(inches(gopptTitleW)).SetHeight(inches(gopptTitleH))
		shape.CreateTextRun(title).GetFont().SetSize(gopptFontTitle).SetBold(true).SetColor(textColor)
	}
	if content != "" {
		shape := b.slide.CreateRichTextShape()
		shape.SetOffsetX(inches(gopptContentX)).SetOffsetY(inches(gopptContentY))
		shape.SetWidth(inches(gopptContentW)).SetHeight(inches(gopptContentH))
		shape.SetWordWrap(true)
		shape.CreateTextRun(content).GetFont().SetSize(gopptFontContent).SetColor(textColor)
	}

	for _, e := range s.Elements {
		if err := b.diags.visit(b.index, e, b); err != nil {
			return err
		}
	}
	return nil
}

// place creates a text shape at the element's scaled position.
func (b *gopptSlideBuilder) place(e model.Element) *ppt.RichTextShape {
	x, y, w, h := geom.ToPackage(geom.Rect{X: e.X, Y: e.Y, W: e.Width, H: e.Height})
	shape := b.slide.CreateRichTextShape()
	shape.SetOffsetX(x).SetOffsetY(y)
	shape.SetWidth(w).SetHeight(h)
	return shape
}

func (b *gopptSlideBuilder) Textbox(e model.Element, t model.Textbox) error {
	shape := b.place(e)
	shape.SetWordWrap(true)
	if c, ok := geom.ParseHex(t.BackgroundColor); ok {
		shape.SetFill(solidFill(c))
	}
	size := int(t.FontSize)
	if size <= 0 {
		size = gopptFontElement
	}
	face := t.FontFamily
	if face == "" {
		face = gopptFontFace
	}
	run := shape.CreateTextRun(StripMarkup(t.Content))
	run.GetFont().SetName(face).SetSize(size).SetBold(t.Bold).SetColor(argbOr(t.Color, black))
	switch t.Align {
	case "center":
		shape.GetActiveParagraph().SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
	case "right":
		shape.GetActiveParagraph().SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalRight))
	}
	return nil
}

func (b *gopptSlideBuilder) Image(e model.Element, img model.Image) error {
	if img.Src == "" {
		return nil
	}
	data, err := DecodeDataURL(img.Src)
	if err != nil {
		b.diags.element(b.index, e, InvalidSource, "image skipped: %v", err)
		return nil
	}
	x, y, w, h := geom.ToPackage(geom.Rect{X: e.X, Y: e.Y, W: e.Width, H: e.Height})
	shape := b.slide.CreateDrawingShape()
	shape.SetImageData(data.Bytes, data.MIME)
	shape.SetOffsetX(x).SetOffsetY(y)
	shape.SetWidth(w).SetHeight(h)
	if img.Alt != "" {
		shape.SetDescription(img.Alt)
	}
	return nil
}

// Shape writes circles as ellipse auto shapes and rectangles as rect auto
// shapes. Any other geometry is drawn as a rectangle with a diagnostic.
func (b *gopptSlideBuilder) Shape(e model.Element, s model.Shape) error {
	x, y, w, h := geom.ToPackage(geom.Rect{X: e.X, Y: e.Y, W: e.Width, H: e.Height})
	shape := b.slide.CreateAutoShape()
	shape.SetOffsetX(x).SetOffsetY(y)
	shape.SetWidth(w).SetHeight(h)
	switch s.ShapeType {
	case model.ShapeCircle:
		shape.SetAutoShapeType(ppt.AutoShapeEllipse)
	case model.ShapeRectangle, "":
		shape.SetAutoShapeType(ppt.AutoShapeRectangle)
	default:
		shape.SetAutoShapeType(ppt.AutoShapeRectangle)
		b.diags.element(b.index, e, Approximated, "%s shape written as its bounding rectangle", s.ShapeType)
	}

	fill, ok := geom.ParseHex(s.Fill)
	if !ok {
		fill = white
	}
	shape.SetFill(solidFill(fill))

	border := shape.GetBorder()
	border.Style = ppt.BorderSolid
	border.Width = int(s.StrokeWidth)
	if border.Width <= 0 {
		border.Width = 1
	}
	border.Color = argbOr(s.Stroke, black)
	return nil
}

func (b *gopptSlideBuilder) Icon(e model.Element, _ model.Icon) error {
	b.diags.unsupported(b.index, e, "pptx")
	return nil
}

func (b *gopptSlideBuilder) Chart(e model.Element, _ model.Chart) error {
	b.diags.unsupported(b.index, e, "pptx")
	return nil
}

func (b *gopptSlideBuilder) Table(e model.Element, _ model.Table) error {
	b.diags.unsupported(b.index, e, "pptx")
	return nil
}

func (b *gopptSlideBuilder) Interactive(e model.Element, _ model.Interactive) error {
	b.diags.unsupported(b.index, e, "pptx")
	return nil
}
