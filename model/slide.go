package model

import (
	"fmt"

	"slidedeck/geom"
)

// Layout is the placeholder arrangement of a slide.
type Layout string

const (
	LayoutBlank        Layout = "blank"
	LayoutTitleContent Layout = "title-content"
	LayoutTitleOnly    Layout = "title-only"
	LayoutContentOnly  Layout = "content-only"
	LayoutTwoColumn    Layout = "two-column"
	LayoutImageText    Layout = "image-text"
	LayoutComparison   Layout = "comparison"
)

// Layouts lists every layout in menu order.
var Layouts = []Layout{
	LayoutBlank, LayoutTitleContent, LayoutTitleOnly, LayoutContentOnly,
	LayoutTwoColumn, LayoutImageText, LayoutComparison,
}

// Valid reports whether l is one of the known layouts.
func (l Layout) Valid() bool {
	for _, v := range Layouts {
		if v == l {
			return true
		}
	}
	return false
}

// ShowsTitle reports whether the layout has a title placeholder.
func (l Layout) ShowsTitle() bool {
	return l != LayoutContentOnly
}

// ShowsContent reports whether the layout has a body placeholder.
func (l Layout) ShowsContent() bool {
	return l != LayoutTitleOnly
}

// AnimationType is a motion effect.
type AnimationType string

const (
	AnimationFadeIn       AnimationType = "fadeIn"
	AnimationSlideInLeft  AnimationType = "slideInLeft"
	AnimationSlideInRight AnimationType = "slideInRight"
	AnimationSlideInUp    AnimationType = "slideInUp"
	AnimationSlideInDown  AnimationType = "slideInDown"
	AnimationZoomIn       AnimationType = "zoomIn"
	AnimationBounce       AnimationType = "bounce"
	AnimationPulse        AnimationType = "pulse"
)

// Default animation timing in milliseconds.
const (
	DefaultAnimationDuration = 1000
	DefaultAnimationDelay    = 0
)

// Animation applies an effect to an element. ElementID is a weak reference;
// an animation whose element is gone does nothing.
type Animation struct {
	ID        ID
	ElementID ID
	Type      AnimationType
	Duration  int
	Delay     int
	Order     int
	Extra     Extra
}

// Slide is one page of the deck.
type Slide struct {
	ID           ID
	Title        string
	Content      string
	Background   string
	TextColor    string
	Layout       Layout
	Elements     []Element
	SpeakerNotes string
	Animations   []Animation
	// Extra holds JSON members this version does not model.
	Extra Extra
}

// Clone returns a deep copy of s.
func (s Slide) Clone() Slide {
	if s.Elements != nil {
		els := make([]Element, len(s.Elements))
		for i, e := range s.Elements {
			els[i] = e.Clone()
		}
		s.Elements = els
	}
	if s.Animations != nil {
		anims := make([]Animation, len(s.Animations))
		for i, a := range s.Animations {
			a.Extra = a.Extra.clone()
			anims[i] = a
		}
		s.Animations = anims
	}
	s.Extra = s.Extra.clone()
	return s
}

// ElementIndex returns the position of the element with id, or -1.
func (s Slide) ElementIndex(id ID) int {
	for i, e := range s.Elements {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// LiveAnimations returns the animations whose element still exists, in
// play order.
func (s Slide) LiveAnimations() []Animation {
	var out []Animation
	for _, a := range s.Animations {
		if s.ElementIndex(a.ElementID) >= 0 {
			out = append(out, a)
		}
	}
	return out
}

// Theme is a named combination of layout and colours.
type Theme struct {
	Name       string `json:"name" yaml:"name"`
	Layout     Layout `json:"layout" yaml:"layout"`
	Background string `json:"background" yaml:"background"`
	TextColor  string `json:"textColor" yaml:"textColor"`
}

// Defaults are the user visible strings placed on new slides.
type Defaults struct {
	// TitleFormat receives the 1-based slide number.
	TitleFormat        string
	TitlePlaceholder   string
	ContentPlaceholder string
	CopySuffix         string
	ImportedTitle      string
	ImportedContent    string
}

// English is the built-in set of defaults.
var English = Defaults{
	TitleFormat:        "Slide %d",
	TitlePlaceholder:   "Click to add title",
	ContentPlaceholder: "Click to add content",
	CopySuffix:         " Copy",
	ImportedTitle:      "Imported Slide",
	ImportedContent:    "Content imported from PowerPoint",
}

func (d Defaults) orEnglish() Defaults {
	if d.TitleFormat == "" {
		return English
	}
	return d
}

// SlideTitle returns the default title of the n-th slide.
func (d Defaults) SlideTitle(n int) string {
	return fmt.Sprintf(d.orEnglish().TitleFormat, n)
}

// IsPlaceholder reports whether text is one of the untouched placeholders.
func (d Defaults) IsPlaceholder(text string) bool {
	d = d.orEnglish()
	return text == d.TitlePlaceholder || text == d.ContentPlaceholder
}

// NewSlide builds the n-th default slide with a fresh id.
func (d Defaults) NewSlide(n int, layout Layout) Slide {
	d = d.orEnglish()
	if !layout.Valid() {
		layout = LayoutBlank
	}
	return Slide{
		ID:         NewID(),
		Title:      d.SlideTitle(n),
		Content:    d.ContentPlaceholder,
		Background: geom.DefaultBackground,
		TextColor:  geom.DefaultTextColor,
		Layout:     layout,
		Elements:   []Element{},
		Animations: []Animation{},
	}
}

// ImportedPlaceholder is the slide used when a foreign package yields no
// slides.
func (d Defaults) ImportedPlaceholder() Slide {
	d = d.orEnglish()
	s := d.NewSlide(1, LayoutTitleContent)
	s.Title = d.ImportedTitle
	s.Content = d.ImportedContent
	return s
}
