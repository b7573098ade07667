package export

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"slidedeck/geom"
	"slidedeck/model"
)

const mimePDF = "application/pdf"

// 页面布局 (mm)
const (
	pdfMargin        = 20.0
	pdfTitleY        = 30.0
	pdfContentY      = 50.0
	pdfFontTitle     = 24.0
	pdfFontContent   = 16.0
	pdfFontElement   = 16.0
	pdfFontPageNo    = 10.0
	pdfLineSpacing   = 1.15
	pdfPageNoInsetX  = 20.0
	pdfPageNoInsetY  = 10.0
	pdfPageNoGray    = 128
	pdfFontFamily    = "Arial"
	pdfPointsPerInch = 72.0
)

// PDFEncoder writes one A4 landscape page per slide with gofpdf. Only text
// survives: the slide title and content and textbox elements, positioned
// as a fraction of the canvas mapped onto the page.
type PDFEncoder struct{}

// NewPDFEncoder creates a paged-document encoder.
func NewPDFEncoder() *PDFEncoder {
	return &PDFEncoder{}
}

// Encode implements Encoder.
func (e *PDFEncoder) Encode(ctx context.Context, p model.Presentation, opts Options) (Result, error) {
	opts = opts.normalized()

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(opts.Compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("slidedeck", true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}

	w := &gofpdfWriter{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		canvas: opts.Canvas,
		diags:  &diagnostics{},
	}
	w.pageW, w.pageH = pdf.GetPageSize()

	for i, s := range p.Slides {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := w.page(i, s, opts.Defaults); err != nil {
			return Result{}, encodingError("pdf", fmt.Errorf("slide %d: %w", i+1, err))
		}
	}

	if err := pdf.Error(); err != nil {
		return Result{}, encodingError("pdf", fmt.Errorf("PDF generation error: %w", err))
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Result{}, encodingError("pdf", fmt.Errorf("failed to output PDF: %w", err))
	}

	return Result{
		Data:        buf.Bytes(),
		Filename:    opts.filename("pdf"),
		MIME:        mimePDF,
		Diagnostics: w.diags.list,
	}, nil
}

// gofpdfWriter renders slides onto consecutive pages.
type gofpdfWriter struct {
	pdf          *gofpdf.Fpdf
	tr           func(string) string
	canvas       geom.Canvas
	pageW, pageH float64
	diags        *diagnostics
	index        int
}

func (w *gofpdfWriter) page(index int, s model.Slide, d model.Defaults) error {
	w.index = index
	w.pdf.AddPage()

	if !geom.IsDefaultBackground(s.Background) {
		if c, ok := geom.ParseHex(s.Background); ok {
			w.pdf.SetFillColor(c.Ints())
			w.pdf.Rect(0, 0, w.pageW, w.pageH, "F")
		}
	}

	w.setTextColor(orBlack(s.TextColor))
	title, content := visibleText(d, s)
	if title != "" {
		w.pdf.SetFont(pdfFontFamily, "B", pdfFontTitle)
		w.lines(pdfMargin, pdfTitleY, pdfFontTitle, []string{title}, 0)
	}
	if content != "" {
		w.pdf.SetFont(pdfFontFamily, "", pdfFontContent)
		w.lines(pdfMargin, pdfContentY, pdfFontContent, strings.Split(content, "\n"), w.pageW-2*pdfMargin)
	}

	for _, e := range s.Elements {
		if err := w.diags.visit(index, e, w); err != nil {
			return err
		}
	}

	w.pdf.SetFont(pdfFontFamily, "", pdfFontPageNo)
	w.pdf.SetTextColor(pdfPageNoGray, pdfPageNoGray, pdfPageNoGray)
	w.pdf.Text(w.pageW-pdfPageNoInsetX, w.pageH-pdfPageNoInsetY, strconv.Itoa(index+1))
	return w.pdf.Error()
}

// setTextColor applies a hex colour. Anything else leaves the current
// colour in place.
func (w *gofpdfWriter) setTextColor(s string) {
	if c, ok := geom.ParseHex(s); ok {
		w.pdf.SetTextColor(c.Ints())
	}
}

func orBlack(s string) string {
	if s == "" {
		return geom.DefaultTextColor
	}
	return s
}

// lines writes text with its first baseline at (x, y). A positive width
// wraps each paragraph to it.
func (w *gofpdfWriter) lines(x, y, fontSize float64, paragraphs []string, width float64) {
	step := fontSize * pdfLineSpacing / pdfPointsPerInch * geom.MMPerInch
	for _, para := range paragraphs {
		text := w.tr(para)
		wrapped := []string{text}
		if width > 0 && text != "" {
			wrapped = wrapped[:0]
			for _, l := range w.pdf.SplitLines([]byte(text), width) {
				wrapped = append(wrapped, string(l))
			}
		}
		for _, l := range wrapped {
			if l != "" {
				w.pdf.Text(x, y, l)
			}
			y += step
		}
	}
}

func (w *gofpdfWriter) Textbox(e model.Element, t model.Textbox) error {
	size := t.FontSize
	if size <= 0 {
		size = pdfFontElement
	}
	style := ""
	if t.Bold {
		style += "B"
	}
	if t.Italic {
		style += "I"
	}
	w.pdf.SetFont(pdfFontFamily, style, size)
	w.setTextColor(orBlack(t.Color))
	at := w.canvas.MapToPage(geom.Rect{X: e.X, Y: e.Y}, w.pageW, w.pageH)
	w.lines(at.X, at.Y, size, strings.Split(StripMarkup(t.Content), "\n"), 0)
	return nil
}

func (w *gofpdfWriter) Image(e model.Element, _ model.Image) error {
	w.diags.unsupported(w.index, e, "pdf")
	return nil
}

func (w *gofpdfWriter) Shape(e model.Element, _ model.Shape) error {
	w.diags.unsupported(w.index, e, "pdf")
	return nil
}

func (w *gofpdfWriter) Icon(e model.Element, _ model.Icon) error {
	w.diags.unsupported(w.index, e, "pdf")
	return nil
}

func (w *gofpdfWriter) Chart(e model.Element, _ model.Chart) error {
	w.diags.unsupported(w.index, e, "pdf")
	return nil
}

func (w *gofpdfWriter) Table(e model.Element, _ model.Table) error {
	w.diags.unsupported(w.index, e, "pdf")
	return nil
}

func (w *gofpdfWriter) Interactive(e model.Element, _ model.Interactive) error {
	w.diags.unsupported(w.index, e, "pdf")
	return nil
}
