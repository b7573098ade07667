package model

import "errors"

// Kind discriminates the element variants.
type Kind string

const (
	KindTextbox     Kind = "textbox"
	KindImage       Kind = "image"
	KindShape       Kind = "shape"
	KindIcon        Kind = "icon"
	KindChart       Kind = "chart"
	KindTable       Kind = "table"
	KindInteractive Kind = "interactive"
)

// Kinds lists every recognised element kind.
var Kinds = []Kind{KindTextbox, KindImage, KindShape, KindIcon, KindChart, KindTable, KindInteractive}

// ErrUnrecognizedKind is returned by Visit for elements whose type was not
// understood when the document was decoded.
var ErrUnrecognizedKind = errors.New("unrecognized element kind")

// Body is the variant specific payload of an Element. The set of
// implementations is closed to this package.
type Body interface {
	Kind() Kind
	cloneBody() Body
}

// Element is a positioned object on a slide. Placement is in canvas pixels.
type Element struct {
	ID     ID
	X      float64
	Y      float64
	Width  float64
	Height float64
	Body   Body
	// Extra holds JSON members this version does not model.
	Extra Extra
}

// Kind returns the kind of the element body.
func (e Element) Kind() Kind {
	if e.Body == nil {
		return ""
	}
	return e.Body.Kind()
}

// Textbox is free text with marked-up content.
type Textbox struct {
	Content         string  `json:"content"`
	FontSize        float64 `json:"fontSize,omitempty"`
	FontFamily      string  `json:"fontFamily,omitempty"`
	Color           string  `json:"color,omitempty"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	Bold            bool    `json:"bold,omitempty"`
	Italic          bool    `json:"italic,omitempty"`
	Align           string  `json:"textAlign,omitempty"`
}

// Image holds a self-contained source, normally a data URL.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// Shape kinds understood by the encoders. Other values are kept verbatim.
const (
	ShapeRectangle = "rectangle"
	ShapeCircle    = "circle"
	ShapeTriangle  = "triangle"
)

// Shape is a filled geometric primitive.
type Shape struct {
	ShapeType   string  `json:"shapeType"`
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Icon is a single glyph rendered as text.
type Icon struct {
	Content  string  `json:"content"`
	FontSize float64 `json:"fontSize,omitempty"`
	Color    string  `json:"color,omitempty"`
}

// DataPoint is one entry of a chart series.
type DataPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Chart is a single series chart.
type Chart struct {
	ChartType string      `json:"chartType"`
	Title     string      `json:"title,omitempty"`
	Data      []DataPoint `json:"data"`
	Colors    []string    `json:"colors"`
}

// CellStyle is the presentation of a group of table cells.
type CellStyle struct {
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	Color           string  `json:"color,omitempty"`
	FontWeight      string  `json:"fontWeight,omitempty"`
	FontSize        float64 `json:"fontSize,omitempty"`
}

// Table is a row-major grid of cell text.
type Table struct {
	Data        [][]string `json:"data"`
	Rows        int        `json:"rows"`
	Cols        int        `json:"cols"`
	HeaderStyle *CellStyle `json:"headerStyle,omitempty"`
	CellStyle   *CellStyle `json:"cellStyle,omitempty"`
}

// Interactive sub kinds.
const (
	InteractiveButton = "button"
	InteractiveLink   = "link"
	InteractivePoll   = "poll"
	InteractiveQuiz   = "quiz"
	InteractiveVideo  = "video"
	InteractiveAudio  = "audio"
)

// Interactive is a widget. Which fields matter depends on SubType.
type Interactive struct {
	SubType    string   `json:"subType"`
	Text       string   `json:"text,omitempty"`
	Action     string   `json:"action,omitempty"`
	Style      string   `json:"style,omitempty"`
	URL        string   `json:"url,omitempty"`
	Target     string   `json:"target,omitempty"`
	Question   string   `json:"question,omitempty"`
	Options    []string `json:"options"`
	Results    []int    `json:"results"`
	Correct    *int     `json:"correct,omitempty"`
	ShowAnswer bool     `json:"showAnswer,omitempty"`
	Src        string   `json:"src,omitempty"`
	Autoplay   bool     `json:"autoplay,omitempty"`
	Controls   bool     `json:"controls,omitempty"`
	Loop       bool     `json:"loop,omitempty"`
}

// Unrecognized stands in for an element whose type was missing or unknown
// at decode time. Its members live in the element's Extra bag.
type Unrecognized struct {
	Type string
}

func (Textbox) Kind() Kind     { return KindTextbox }
func (Image) Kind() Kind       { return KindImage }
func (Shape) Kind() Kind       { return KindShape }
func (Icon) Kind() Kind        { return KindIcon }
func (Chart) Kind() Kind       { return KindChart }
func (Table) Kind() Kind       { return KindTable }
func (Interactive) Kind() Kind { return KindInteractive }

// Kind returns the raw type string that was not recognised.
func (u Unrecognized) Kind() Kind { return Kind(u.Type) }

func (b Textbox) cloneBody() Body      { return b }
func (b Image) cloneBody() Body        { return b }
func (b Shape) cloneBody() Body        { return b }
func (b Icon) cloneBody() Body         { return b }
func (b Unrecognized) cloneBody() Body { return b }

func (b Chart) cloneBody() Body {
	b.Data = cloneSlice(b.Data)
	b.Colors = cloneSlice(b.Colors)
	return b
}

func (b Table) cloneBody() Body {
	if b.Data != nil {
		rows := make([][]string, len(b.Data))
		for i, r := range b.Data {
			rows[i] = cloneSlice(r)
		}
		b.Data = rows
	}
	if b.HeaderStyle != nil {
		hs := *b.HeaderStyle
		b.HeaderStyle = &hs
	}
	if b.CellStyle != nil {
		cs := *b.CellStyle
		b.CellStyle = &cs
	}
	return b
}

func (b Interactive) cloneBody() Body {
	b.Options = cloneSlice(b.Options)
	b.Results = cloneSlice(b.Results)
	if b.Correct != nil {
		c := *b.Correct
		b.Correct = &c
	}
	return b
}

// Visitor handles each element kind. Encoders implement it so that adding a
// kind breaks every encoder at compile time until it decides what to do.
type Visitor interface {
	Textbox(e Element, b Textbox) error
	Image(e Element, b Image) error
	Shape(e Element, b Shape) error
	Icon(e Element, b Icon) error
	Chart(e Element, b Chart) error
	Table(e Element, b Table) error
	Interactive(e Element, b Interactive) error
}

// Visit dispatches e to the matching Visitor method.
func (e Element) Visit(v Visitor) error {
	switch b := e.Body.(type) {
	case Textbox:
		return v.Textbox(e, b)
	case Image:
		return v.Image(e, b)
	case Shape:
		return v.Shape(e, b)
	case Icon:
		return v.Icon(e, b)
	case Chart:
		return v.Chart(e, b)
	case Table:
		return v.Table(e, b)
	case Interactive:
		return v.Interactive(e, b)
	default:
		return ErrUnrecognizedKind
	}
}

// Clone returns a deep copy of e.
func (e Element) Clone() Element {
	if e.Body != nil {
		e.Body = e.Body.cloneBody()
	}
	e.Extra = e.Extra.clone()
	return e
}

// NewBody returns the zero body for kind, or false when kind is unknown.
func NewBody(kind Kind) (Body, bool) {
	switch kind {
	case KindTextbox:
		return Textbox{}, true
	case KindImage:
		return Image{}, true
	case KindShape:
		return Shape{}, true
	case KindIcon:
		return Icon{}, true
	case KindChart:
		return Chart{}, true
	case KindTable:
		return Table{}, true
	case KindInteractive:
		return Interactive{}, true
	}
	return nil, false
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
