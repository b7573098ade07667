// Package model is the in-memory slide deck: a Presentation value, its
// slides and their elements. Every operation returns a new Presentation and
// leaves the receiver untouched, so values handed out are safe to retain.
package model

// Presentation is the ordered deck. Slide order is display order.
type Presentation struct {
	Slides []Slide
}

// Result reports whether an operation was applied.
type Result uint8

const (
	Applied Result = iota
	SlideNotFound
	ElementNotFound
	AnimationNotFound
	LastSlide
	EmptyClipboard
)

// OK reports whether the operation changed the presentation.
func (r Result) OK() bool { return r == Applied }

func (r Result) String() string {
	switch r {
	case Applied:
		return "applied"
	case SlideNotFound:
		return "slide not found"
	case ElementNotFound:
		return "element not found"
	case AnimationNotFound:
		return "animation not found"
	case LastSlide:
		return "cannot delete the last slide"
	case EmptyClipboard:
		return "clipboard is empty"
	}
	return "unknown result"
}

// New returns a deck holding the first default slide.
func New(d Defaults) Presentation {
	return Presentation{Slides: []Slide{d.NewSlide(1, LayoutTitleContent)}}
}

// Clone returns a deep copy of p.
func (p Presentation) Clone() Presentation {
	if p.Slides == nil {
		return Presentation{}
	}
	slides := make([]Slide, len(p.Slides))
	for i, s := range p.Slides {
		slides[i] = s.Clone()
	}
	return Presentation{Slides: slides}
}

// Len returns the number of slides.
func (p Presentation) Len() int { return len(p.Slides) }

// Slide returns a copy of the slide at index.
func (p Presentation) Slide(index int) (Slide, bool) {
	if !p.has(index) {
		return Slide{}, false
	}
	return p.Slides[index].Clone(), true
}

// SlideIndex returns the position of the slide with id, or -1.
func (p Presentation) SlideIndex(id ID) int {
	for i, s := range p.Slides {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (p Presentation) has(index int) bool {
	return index >= 0 && index < len(p.Slides)
}

// CreateSlide appends a default slide with the given layout. Unknown layouts
// fall back to blank.
func (p Presentation) CreateSlide(d Defaults, layout Layout) (Presentation, Slide) {
	s := d.NewSlide(len(p.Slides)+1, layout)
	out := p.Clone()
	out.Slides = append(out.Slides, s)
	return out, s.Clone()
}

// InsertSlide places a copy of s at index, clamped to the deck bounds. An
// empty or already used id is replaced.
func (p Presentation) InsertSlide(index int, s Slide) Presentation {
	s = s.Clone()
	if s.ID == "" || p.SlideIndex(s.ID) >= 0 {
		s.ID = NewID()
	}
	if index < 0 {
		index = 0
	}
	if index > len(p.Slides) {
		index = len(p.Slides)
	}
	out := p.Clone()
	out.Slides = append(out.Slides, Slide{})
	copy(out.Slides[index+1:], out.Slides[index:])
	out.Slides[index] = s
	return out
}

// DeleteSlide removes the slide at index. The last remaining slide cannot be
// deleted.
func (p Presentation) DeleteSlide(index int) (Presentation, Result) {
	if !p.has(index) {
		return p, SlideNotFound
	}
	if len(p.Slides) <= 1 {
		return p, LastSlide
	}
	out := p.Clone()
	out.Slides = append(out.Slides[:index], out.Slides[index+1:]...)
	return out, Applied
}

// DuplicateSlide inserts a deep copy right after index. Only the slide id
// is regenerated; element ids are scoped to their slide and stay as they are.
func (p Presentation) DuplicateSlide(d Defaults, index int) (Presentation, Result) {
	if !p.has(index) {
		return p, SlideNotFound
	}
	d = d.orEnglish()
	dup := p.Slides[index].Clone()
	dup.ID = NewID()
	dup.Title += d.CopySuffix
	return p.InsertSlide(index+1, dup), Applied
}

// MoveSlide moves the slide at from so that it ends up at to.
func (p Presentation) MoveSlide(from, to int) (Presentation, Result) {
	if !p.has(from) || !p.has(to) {
		return p, SlideNotFound
	}
	out := p.Clone()
	s := out.Slides[from]
	out.Slides = append(out.Slides[:from], out.Slides[from+1:]...)
	out.Slides = append(out.Slides, Slide{})
	copy(out.Slides[to+1:], out.Slides[to:])
	out.Slides[to] = s
	return out, Applied
}

// SlidePatch lists slide fields to replace. Nil fields are left alone.
// Sequences are replaced wholesale, never appended to.
type SlidePatch struct {
	Title        *string
	Content      *string
	Background   *string
	TextColor    *string
	Layout       *Layout
	SpeakerNotes *string
	Elements     *[]Element
	Animations   *[]Animation
}

// UpdateSlide shallow-merges patch into the slide at index.
func (p Presentation) UpdateSlide(index int, patch SlidePatch) (Presentation, Result) {
	if !p.has(index) {
		return p, SlideNotFound
	}
	out := p.Clone()
	s := &out.Slides[index]
	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.Content != nil {
		s.Content = *patch.Content
	}
	if patch.Background != nil {
		s.Background = *patch.Background
	}
	if patch.TextColor != nil {
		s.TextColor = *patch.TextColor
	}
	if patch.Layout != nil {
		s.Layout = *patch.Layout
	}
	if patch.SpeakerNotes != nil {
		s.SpeakerNotes = *patch.SpeakerNotes
	}
	if patch.Elements != nil {
		s.Elements = Slide{Elements: *patch.Elements}.Clone().Elements
	}
	if patch.Animations != nil {
		s.Animations = Slide{Animations: *patch.Animations}.Clone().Animations
	}
	return out, Applied
}

// ResetSlide restores the default title, content and colours of the slide
// at index and removes its elements and animations. Id and layout are kept.
func (p Presentation) ResetSlide(d Defaults, index int) (Presentation, Result) {
	if !p.has(index) {
		return p, SlideNotFound
	}
	out := p.Clone()
	fresh := d.NewSlide(index+1, out.Slides[index].Layout)
	fresh.ID = out.Slides[index].ID
	fresh.SpeakerNotes = out.Slides[index].SpeakerNotes
	out.Slides[index] = fresh
	return out, Applied
}

// ApplyLayout changes the layout of the slide at index.
func (p Presentation) ApplyLayout(index int, layout Layout) (Presentation, Result) {
	return p.UpdateSlide(index, SlidePatch{Layout: &layout})
}

// ApplyTheme sets layout and colours of the slide at index from t.
func (p Presentation) ApplyTheme(index int, t Theme) (Presentation, Result) {
	patch := SlidePatch{Background: &t.Background, TextColor: &t.TextColor}
	if t.Layout != "" {
		patch.Layout = &t.Layout
	}
	return p.UpdateSlide(index, patch)
}

// AddElement appends a copy of e to the slide at index and returns the id it
// was stored under. An empty or already used id is replaced with a fresh
// one.
func (p Presentation) AddElement(index int, e Element) (Presentation, ID, Result) {
	if !p.has(index) {
		return p, "", SlideNotFound
	}
	out := p.Clone()
	s := &out.Slides[index]
	e = e.Clone()
	if e.ID == "" || s.ElementIndex(e.ID) >= 0 {
		e.ID = NewID()
	}
	s.Elements = append(s.Elements, e)
	return out, e.ID, Applied
}

// ElementPatch lists element fields to replace. Body, when set, replaces the
// whole variant payload and may change the element kind.
type ElementPatch struct {
	X      *float64
	Y      *float64
	Width  *float64
	Height *float64
	Body   Body
}

// UpdateElement shallow-merges patch into the element id on the slide at
// index.
func (p Presentation) UpdateElement(index int, id ID, patch ElementPatch) (Presentation, Result) {
	if !p.has(index) {
		return p, SlideNotFound
	}
	at := p.Slides[index].ElementIndex(id)
	if at < 0 {
		return p, ElementNotFound
	}
	out := p.Clone()
	e := &out.Slides[index].Elements[at]
	if patch.X != nil {
		e.X = *patch.X
	}
	if patch.Y != nil {
		e.Y = *patch.Y
	}
	if patch.Width != nil {
		e.Width = *patch.Width
	}
	if patch.Height != nil {
		e.Height = *patch.Height
	}
	if patch.Body != nil {
		e.Body = patch.Body.cloneBody()
	}
	return out, Applied
}

// DeleteElement removes the element id from the slide at index. Animations
// that point at it are left in place and become inert.
func (p Presentation) DeleteElement(index int, id ID) (Presentation, Result) {
	if !p.has(index) {
		return p, SlideNotFound
	}
	at := p.Slides[index].ElementIndex(id)
	if at < 0 {
		return p, ElementNotFound
	}
	out := p.Clone()
	s := &out.Slides[index]
	s.Elements = append(s.Elements[:at], s.Elements[at+1:]...)
	return out, Applied
}

// AddAnimation appends an effect for element id on the slide at index with
// the default timing. It plays after the existing animations.
func (p Presentation) AddAnimation(index int, elementID ID, typ AnimationType) (Presentation, ID, Result) {
	if !p.has(index) {
		return p, "", SlideNotFound
	}
	if p.Slides[index].ElementIndex(elementID) < 0 {
		return p, "", ElementNotFound
	}
	out := p.Clone()
	s := &out.Slides[index]
	a := Animation{
		ID:        NewID(),
		ElementID: elementID,
		Type:      typ,
		Duration:  DefaultAnimationDuration,
		Delay:     DefaultAnimationDelay,
		Order:     len(s.Animations),
	}
	s.Animations = append(s.Animations, a)
	return out, a.ID, Applied
}

// RemoveAnimation deletes the animation id from the slide at index.
func (p Presentation) RemoveAnimation(index int, id ID) (Presentation, Result) {
	if !p.has(index) {
		return p, SlideNotFound
	}
	out := p.Clone()
	s := &out.Slides[index]
	for i, a := range s.Animations {
		if a.ID == id {
			s.Animations = append(s.Animations[:i], s.Animations[i+1:]...)
			return out, Applied
		}
	}
	return p, AnimationNotFound
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T { return &v }
