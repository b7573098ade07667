package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"slidedeck/geom"
	"slidedeck/model"
)

const mimeHTML = "text/html; charset=utf-8"

// HTMLEncoder writes a static page with one fixed-size block per slide.
// Textbox and image elements keep their canvas pixel offsets; every other
// kind is left out with a diagnostic. Speaker notes are rendered from
// Markdown into a print-only aside.
type HTMLEncoder struct {
	notes goldmark.Markdown
}

// NewHTMLEncoder creates a hypertext encoder.
func NewHTMLEncoder() *HTMLEncoder {
	return &HTMLEncoder{
		notes: goldmark.New(goldmark.WithRendererOptions(gmhtml.WithHardWraps())),
	}
}

// Encode implements Encoder.
func (e *HTMLEncoder) Encode(ctx context.Context, p model.Presentation, opts Options) (Result, error) {
	opts = opts.normalized()
	var diags diagnostics
	page, err := e.page(ctx, p.Slides, opts, &diags)
	if err != nil {
		return Result{}, err
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return Result{}, encodingError("html", err)
	}
	return Result{
		Data:        buf.Bytes(),
		Filename:    opts.filename("html"),
		MIME:        mimeHTML,
		Diagnostics: diags.list,
	}, nil
}

type htmlPage struct {
	Title  string
	Width  float64
	Height float64
	Slides []htmlSlide
}

type htmlSlide struct {
	Number   int
	Style    template.CSS
	Title    template.HTML
	Content  template.HTML
	Elements []htmlElement
	Notes    template.HTML
}

type htmlElement struct {
	Image bool
	Style template.CSS
	HTML  template.HTML
	Src   template.URL
	Alt   string
}

func (e *HTMLEncoder) page(ctx context.Context, slides []model.Slide, opts Options, diags *diagnostics) (htmlPage, error) {
	page := htmlPage{
		Title:  opts.Title,
		Width:  opts.Canvas.Width,
		Height: opts.Canvas.Height,
	}
	if page.Title == "" {
		page.Title = "Presentation"
	}
	for i, s := range slides {
		if err := ctx.Err(); err != nil {
			return htmlPage{}, err
		}
		hs, err := e.slide(i, s, opts.Defaults, diags)
		if err != nil {
			return htmlPage{}, encodingError("html", fmt.Errorf("slide %d: %w", i+1, err))
		}
		page.Slides = append(page.Slides, hs)
	}
	return page, nil
}

func (e *HTMLEncoder) slide(index int, s model.Slide, d model.Defaults, diags *diagnostics) (htmlSlide, error) {
	hs := htmlSlide{
		Number: index + 1,
		Style: cssDecls(
			"background-color", cssColor(s.Background, geom.DefaultBackground),
			"color", cssColor(s.TextColor, geom.DefaultTextColor),
		),
	}
	// Slide text is stored as markup and keeps its formatting.
	if s.Title != "" && !d.IsPlaceholder(s.Title) {
		hs.Title = SanitizeMarkup(s.Title)
	}
	if s.Content != "" && !d.IsPlaceholder(s.Content) {
		hs.Content = SanitizeMarkup(s.Content)
	}
	if strings.TrimSpace(s.SpeakerNotes) != "" {
		var buf bytes.Buffer
		if err := e.notes.Convert([]byte(s.SpeakerNotes), &buf); err != nil {
			return htmlSlide{}, fmt.Errorf("render speaker notes: %w", err)
		}
		hs.Notes = template.HTML(buf.String())
	}

	v := &htmlElementVisitor{index: index, diags: diags}
	for _, el := range s.Elements {
		if err := diags.visit(index, el, v); err != nil {
			return htmlSlide{}, err
		}
	}
	hs.Elements = v.out
	return hs, nil
}

type htmlElementVisitor struct {
	index int
	diags *diagnostics
	out   []htmlElement
}

func placement(e model.Element) []string {
	return []string{
		"left", px(e.X),
		"top", px(e.Y),
		"width", px(e.Width),
		"height", px(e.Height),
	}
}

func (v *htmlElementVisitor) Textbox(e model.Element, t model.Textbox) error {
	decls := placement(e)
	if t.FontSize > 0 {
		decls = append(decls, "font-size", px(t.FontSize))
	}
	decls = append(decls,
		"font-family", cssFontFamily(t.FontFamily),
		"color", cssColor(t.Color, ""),
		"background-color", cssColor(t.BackgroundColor, ""),
	)
	if t.Bold {
		decls = append(decls, "font-weight", "bold")
	}
	if t.Italic {
		decls = append(decls, "font-style", "italic")
	}
	switch t.Align {
	case "left", "center", "right", "justify":
		decls = append(decls, "text-align", t.Align)
	}
	v.out = append(v.out, htmlElement{Style: cssDecls(decls...), HTML: SanitizeMarkup(t.Content)})
	return nil
}

func (v *htmlElementVisitor) Image(e model.Element, img model.Image) error {
	src := strings.TrimSpace(img.Src)
	switch {
	case strings.HasPrefix(src, "data:image/"),
		strings.HasPrefix(src, "https://"),
		strings.HasPrefix(src, "http://"):
	default:
		v.diags.element(v.index, e, InvalidSource, "image source is not a data URL or web address")
		return nil
	}
	v.out = append(v.out, htmlElement{
		Image: true,
		Style: cssDecls(placement(e)...),
		Src:   template.URL(src),
		Alt:   img.Alt,
	})
	return nil
}

func (v *htmlElementVisitor) Shape(e model.Element, _ model.Shape) error {
	v.diags.unsupported(v.index, e, "html")
	return nil
}

func (v *htmlElementVisitor) Icon(e model.Element, _ model.Icon) error {
	v.diags.unsupported(v.index, e, "html")
	return nil
}

func (v *htmlElementVisitor) Chart(e model.Element, _ model.Chart) error {
	v.diags.unsupported(v.index, e, "html")
	return nil
}

func (v *htmlElementVisitor) Table(e model.Element, _ model.Table) error {
	v.diags.unsupported(v.index, e, "html")
	return nil
}

func (v *htmlElementVisitor) Interactive(e model.Element, _ model.Interactive) error {
	v.diags.unsupported(v.index, e, "html")
	return nil
}

func px(v float64) string {
	return fmt.Sprintf("%gpx", v)
}

// cssColor returns s normalised to #rrggbb, or fallback when s is not a hex
// colour.
func cssColor(s, fallback string) string {
	if c, ok := geom.ParseHex(s); ok {
		return c.Hex()
	}
	return fallback
}

// cssFontFamily keeps only characters that are safe inside a declaration.
func cssFontFamily(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == ' ', r == ',', r == '-', r == '_':
			return r
		}
		return -1
	}, s)
}

// cssDecls joins property/value pairs, dropping empty values.
func cssDecls(pairs ...string) template.CSS {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		b.WriteString(pairs[i])
		b.WriteString(": ")
		b.WriteString(pairs[i+1])
	}
	return template.CSS(b.String())
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; background: #f0f0f0; }
        .slide { width: {{.Width}}px; height: {{.Height}}px; margin: 20px auto; background: white; border: 1px solid #ccc; position: relative; overflow: hidden; page-break-after: always; }
        .slide-title { position: absolute; top: 32px; left: 32px; right: 32px; font-size: 32px; font-weight: bold; text-align: center; }
        .slide-content { position: absolute; top: 96px; left: 32px; right: 32px; bottom: 32px; font-size: 18px; }
        .element { position: absolute; }
        .speaker-notes { display: none; }
        @media print { body { background: white; padding: 0; } .slide { margin: 0; border: none; } .speaker-notes { display: block; page-break-after: always; } }
    </style>
</head>
<body>
{{- range .Slides}}
    <div class="slide" id="slide-{{.Number}}" style="{{.Style}}">
        {{- with .Title}}
        <div class="slide-title">{{.}}</div>
        {{- end}}
        {{- with .Content}}
        <div class="slide-content">{{.}}</div>
        {{- end}}
        {{- range .Elements}}
        {{- if .Image}}
        <img class="element" src="{{.Src}}" style="{{.Style}}" alt="{{.Alt}}">
        {{- else}}
        <div class="element" style="{{.Style}}">{{.HTML}}</div>
        {{- end}}
        {{- end}}
    </div>
    {{- with .Notes}}
    <aside class="speaker-notes">{{.}}</aside>
    {{- end}}
{{- end}}
</body>
</html>
`))
