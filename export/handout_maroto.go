package export

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"slidedeck/geom"
	"slidedeck/model"
)

const (
	handoutMaxCols   = 6
	handoutMaxRows   = 50
	handoutLineMM    = 5.0
	handoutImageRowH = 60.0
)

var (
	handoutAccent = &props.Color{Red: 59, Green: 130, Blue: 246}
	handoutMuted  = &props.Color{Red: 100, Green: 116, Blue: 139}
)

// HandoutEncoder writes a speaker handout with maroto: one section per slide
// with the title, the plain text content, images, tables and chart data as
// text grids, widget questions, and the speaker notes.
type HandoutEncoder struct{}

// NewHandoutEncoder creates a handout encoder.
func NewHandoutEncoder() *HandoutEncoder {
	return &HandoutEncoder{}
}

// Encode implements Encoder.
func (e *HandoutEncoder) Encode(ctx context.Context, p model.Presentation, opts Options) (Result, error) {
	opts = opts.normalized()

	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithDefaultFont(&props.Font{
			Family: fontfamily.Arial,
			Size:   10,
		}).
		Build()
	m := maroto.New(cfg)

	title := opts.Title
	if title == "" {
		title = "Presentation"
	}
	addHandoutHeader(m, title, opts.Now().Format("2006-01-02 15:04"), len(p.Slides))

	var diags diagnostics
	for i, s := range p.Slides {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		sec := &handoutSection{m: m, index: i, diags: &diags}
		if err := sec.write(s, opts.Defaults); err != nil {
			return Result{}, encodingError("handout", fmt.Errorf("slide %d: %w", i+1, err))
		}
	}

	document, err := m.Generate()
	if err != nil {
		return Result{}, encodingError("handout", fmt.Errorf("failed to generate PDF: %w", err))
	}
	return Result{
		Data:        document.GetBytes(),
		Filename:    opts.BaseName + "-handout.pdf",
		MIME:        mimePDF,
		Diagnostics: diags.list,
	}, nil
}

func addHandoutHeader(m core.Maroto, title, generated string, slides int) {
	m.AddRow(14,
		col.New(12).Add(
			text.New(title, props.Text{
				Family: fontfamily.Arial,
				Size:   18,
				Style:  fontstyle.Bold,
				Align:  align.Center,
				Color:  handoutAccent,
			}),
		),
	)
	m.AddRow(8,
		col.New(12).Add(
			text.New(fmt.Sprintf("%d slides, generated %s", slides, generated), props.Text{
				Family: fontfamily.Arial,
				Size:   9,
				Align:  align.Center,
				Color:  handoutMuted,
			}),
		),
	)
	m.AddRow(5)
}

// handoutSection writes one slide.
type handoutSection struct {
	m     core.Maroto
	index int
	diags *diagnostics
}

func (h *handoutSection) write(s model.Slide, d model.Defaults) error {
	title, content := visibleText(d, s)
	heading := fmt.Sprintf("Slide %d", h.index+1)
	if title != "" {
		heading += ": " + strings.ReplaceAll(title, "\n", " ")
	}
	h.m.AddRow(10,
		col.New(12).Add(
			text.New(heading, props.Text{
				Family: fontfamily.Arial,
				Size:   13,
				Style:  fontstyle.Bold,
				Color:  handoutAccent,
			}),
		),
	)
	if content != "" {
		h.paragraph(content, 10, fontstyle.Normal, nil)
	}

	for _, e := range s.Elements {
		if err := h.diags.visit(h.index, e, h); err != nil {
			return err
		}
	}

	if notes := strings.TrimSpace(s.SpeakerNotes); notes != "" {
		h.label("Speaker notes")
		h.paragraph(notes, 9, fontstyle.Italic, handoutMuted)
	}
	h.m.AddRow(6)
	return nil
}

// paragraph adds a row tall enough for the text's lines.
func (h *handoutSection) paragraph(s string, size float64, style fontstyle.Type, color *props.Color) {
	lines := strings.Count(s, "\n") + 1 + len(s)/110
	h.m.AddRow(float64(lines)*handoutLineMM+2,
		col.New(12).Add(
			text.New(s, props.Text{
				Family: fontfamily.Arial,
				Size:   size,
				Style:  style,
				Color:  color,
			}),
		),
	)
}

func (h *handoutSection) label(s string) {
	h.m.AddRow(7,
		col.New(12).Add(
			text.New(s, props.Text{
				Family: fontfamily.Arial,
				Size:   10,
				Style:  fontstyle.Bold,
			}),
		),
	)
}

// grid adds a text table; the first row is the header when header is set.
func (h *handoutSection) grid(rows [][]string, header bool) {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return
	}
	cols = min(cols, handoutMaxCols)
	width := 12 / cols
	if len(rows) > handoutMaxRows {
		rows = rows[:handoutMaxRows]
	}
	for ri, r := range rows {
		cells := make([]core.Col, 0, cols)
		for ci := 0; ci < cols; ci++ {
			value := ""
			if ci < len(r) {
				value = r[ci]
			}
			if runes := []rune(value); len(runes) > 30 {
				value = string(runes[:27]) + "..."
			}
			style := fontstyle.Normal
			if header && ri == 0 {
				style = fontstyle.Bold
			}
			cells = append(cells, col.New(width).Add(
				text.New(value, props.Text{
					Family: fontfamily.Arial,
					Size:   8,
					Style:  style,
				}),
			))
		}
		h.m.AddRow(6, cells...)
	}
}

func (h *handoutSection) Textbox(_ model.Element, t model.Textbox) error {
	if s := StripMarkup(t.Content); s != "" {
		h.paragraph(s, 10, fontstyle.Normal, handoutColor(t.Color))
	}
	return nil
}

func (h *handoutSection) Image(e model.Element, img model.Image) error {
	data, err := DecodeDataURL(img.Src)
	if err != nil {
		h.diags.element(h.index, e, InvalidSource, "image skipped: %v", err)
		return nil
	}
	var ext extension.Type
	switch data.MIME {
	case "image/png":
		ext = extension.Png
	case "image/jpeg":
		ext = extension.Jpg
	default:
		h.diags.element(h.index, e, UnsupportedInTarget, "%s images are not supported in handout output", data.MIME)
		return nil
	}
	h.m.AddRow(handoutImageRowH,
		col.New(12).Add(
			image.NewFromBytes(data.Bytes, ext, props.Rect{Center: true, Percent: 90}),
		),
	)
	if img.Alt != "" {
		h.paragraph(img.Alt, 8, fontstyle.Italic, handoutMuted)
	}
	return nil
}

func (h *handoutSection) Shape(e model.Element, _ model.Shape) error {
	h.diags.unsupported(h.index, e, "handout")
	return nil
}

func (h *handoutSection) Icon(_ model.Element, i model.Icon) error {
	if i.Content != "" {
		h.paragraph(i.Content, 12, fontstyle.Normal, nil)
	}
	return nil
}

func (h *handoutSection) Chart(_ model.Element, c model.Chart) error {
	title := "Chart"
	if c.Title != "" {
		title += ": " + c.Title
	}
	if c.ChartType != "" {
		title += " (" + c.ChartType + ")"
	}
	h.label(title)
	rows := [][]string{{"Label", "Value"}}
	for _, dp := range c.Data {
		rows = append(rows, []string{dp.Label, strconv.FormatFloat(dp.Value, 'g', -1, 64)})
	}
	h.grid(rows, true)
	return nil
}

func (h *handoutSection) Table(_ model.Element, t model.Table) error {
	h.grid(t.Data, t.HeaderStyle != nil)
	if len(t.Data) > handoutMaxRows {
		h.paragraph(fmt.Sprintf("Only the first %d rows are shown", handoutMaxRows), 7, fontstyle.Italic, handoutMuted)
	}
	return nil
}

func (h *handoutSection) Interactive(e model.Element, w model.Interactive) error {
	switch w.SubType {
	case model.InteractivePoll, model.InteractiveQuiz:
		h.label(w.Question)
		rows := make([][]string, 0, len(w.Options))
		for i, opt := range w.Options {
			votes := ""
			if i < len(w.Results) {
				votes = strconv.Itoa(w.Results[i])
			}
			mark := ""
			if w.Correct != nil && *w.Correct == i {
				mark = "correct"
			}
			rows = append(rows, []string{opt, votes, mark})
		}
		h.grid(rows, false)
	case model.InteractiveButton, model.InteractiveLink:
		line := w.Text
		if w.URL != "" {
			line += " <" + w.URL + ">"
		}
		if strings.TrimSpace(line) != "" {
			h.paragraph(line, 9, fontstyle.Normal, nil)
		}
	case model.InteractiveVideo, model.InteractiveAudio:
		if w.Src != "" && !strings.HasPrefix(w.Src, "data:") {
			h.paragraph(w.SubType+": "+w.Src, 9, fontstyle.Normal, handoutMuted)
		} else {
			h.diags.element(h.index, e, UnsupportedInTarget, "embedded %s is not supported in handout output", w.SubType)
		}
	default:
		h.diags.unsupported(h.index, e, "handout")
	}
	return nil
}

// handoutColor converts a slide colour for maroto, nil when unparsable.
func handoutColor(s string) *props.Color {
	c, ok := geom.ParseHex(s)
	if !ok {
		return nil
	}
	r, g, b := c.Ints()
	return &props.Color{Red: r, Green: g, Blue: b}
}
