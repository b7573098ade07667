package export

import (
	"context"
	"errors"

	"slidedeck/model"
)

// PagePrinter prints a web page as a paged document.
type PagePrinter interface {
	PrintPDF(ctx context.Context, html []byte) ([]byte, error)
}

var errNoPrinter = errors.New("renderer cannot print pages, use the chrome render engine")

// PrintedPDFEncoder prints the hypertext export through the renderer in
// Options, which must also be a PagePrinter. The result keeps the web
// layout: every element the page places is printed and there are no page
// numbers. The paged document encoder is FormatPDF.
type PrintedPDFEncoder struct {
	page *HTMLEncoder
}

// NewPrintedPDFEncoder creates a browser-printed PDF encoder.
func NewPrintedPDFEncoder() *PrintedPDFEncoder {
	return &PrintedPDFEncoder{page: NewHTMLEncoder()}
}

// Encode implements Encoder.
func (e *PrintedPDFEncoder) Encode(ctx context.Context, p model.Presentation, opts Options) (Result, error) {
	opts = opts.normalized()
	printer, ok := opts.Renderer.(PagePrinter)
	if !ok {
		return Result{}, encodingError(string(FormatPrintPDF), errNoPrinter)
	}
	page, err := e.page.Encode(ctx, p, opts)
	if err != nil {
		return Result{}, err
	}
	data, err := printer.PrintPDF(ctx, page.Data)
	if err != nil {
		return Result{}, encodingError(string(FormatPrintPDF), err)
	}
	return Result{
		Data:        data,
		Filename:    opts.filename("pdf"),
		MIME:        mimePDF,
		Diagnostics: page.Diagnostics,
	}, nil
}
