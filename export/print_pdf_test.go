package export

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"slidedeck/model"
)

// pagePrinter records the page it was asked to print.
type pagePrinter struct {
	solidRenderer
	page []byte
	err  error
}

func (p *pagePrinter) PrintPDF(ctx context.Context, html []byte) ([]byte, error) {
	p.page = html
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.4 printed"), nil
}

func TestPrintedPDFEncoder_PrintsThePage(t *testing.T) {
	p := deck(t, "Printed")
	p = withElements(t, p, 0,
		model.Element{ID: "chart", Body: model.Chart{ChartType: "bar"}},
	)
	printer := &pagePrinter{}
	opts := testOptions()
	opts.Renderer = printer

	res, err := NewPrintedPDFEncoder().Encode(context.Background(), p, opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Contains(printer.page, []byte("Printed")) {
		t.Error("printer did not receive the web page")
	}
	if res.Filename != "presentation.pdf" || res.MIME != mimePDF || !bytes.HasPrefix(res.Data, []byte("%PDF-")) {
		t.Errorf("unexpected result %q %q", res.Filename, res.MIME)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].ElementID != "chart" {
		t.Errorf("page diagnostics not carried over: %v", res.Diagnostics)
	}
}

func TestPrintedPDFEncoder_NeedsPrinter(t *testing.T) {
	opts := testOptions()
	opts.Renderer = &solidRenderer{}
	_, err := NewPrintedPDFEncoder().Encode(context.Background(), deck(t, "x"), opts)
	if !errors.Is(err, ErrEncodingFailure) {
		t.Errorf("expected ErrEncodingFailure, got %v", err)
	}

	opts.Renderer = &pagePrinter{err: errors.New("browser crashed")}
	if _, err := NewPrintedPDFEncoder().Encode(context.Background(), deck(t, "x"), opts); !errors.Is(err, ErrEncodingFailure) {
		t.Errorf("print failure should be ErrEncodingFailure, got %v", err)
	}
}

func TestService_PagedPDFIgnoresPrinter(t *testing.T) {
	opts := testOptions()
	printer := &pagePrinter{}
	opts.Renderer = printer
	res, err := NewService(nil, nil).Export(context.Background(), FormatPDF, deck(t, "Paged"), opts)
	if err != nil {
		t.Fatal(err)
	}
	if printer.page != nil {
		t.Error("pdf format must not go through the browser")
	}
	if !bytes.Contains(res.Data, []byte("(1) Tj")) {
		t.Error("paged document lost its page number")
	}
}
