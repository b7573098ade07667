// Package templates holds the starter decks and slide themes offered when a
// new presentation is created.
package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"

	"slidedeck/geom"
	"slidedeck/model"
)

//go:embed library.yaml
var builtin []byte

// ErrTemplateNotFound is returned by Instantiate for unknown ids.
var ErrTemplateNotFound = errors.New("template not found")

// Category groups templates in listings.
type Category struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// SlideSpec is a slide of a template.
type SlideSpec struct {
	Title        string       `yaml:"title" json:"title"`
	Content      string       `yaml:"content" json:"content"`
	Background   string       `yaml:"background" json:"background"`
	TextColor    string       `yaml:"textColor" json:"textColor"`
	Layout       model.Layout `yaml:"layout" json:"layout"`
	SpeakerNotes string       `yaml:"speakerNotes,omitempty" json:"speakerNotes,omitempty"`
}

// Template is a named starter deck.
type Template struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Category    string      `yaml:"category" json:"category"`
	Description string      `yaml:"description" json:"description"`
	Slides      []SlideSpec `yaml:"slides" json:"slides"`
}

// Library is a parsed template file.
type Library struct {
	Categories []Category    `yaml:"categories" json:"categories"`
	Templates  []Template    `yaml:"templates" json:"templates"`
	Themes     []model.Theme `yaml:"themes" json:"themes"`
}

// Builtin parses the embedded library.
func Builtin() (*Library, error) {
	return Parse(builtin)
}

// Parse reads a YAML library and checks it: ids must be unique, every
// template needs a slide, colours must be hex and layouts known.
func Parse(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parse template library: %w", err)
	}
	if err := lib.validate(); err != nil {
		return nil, err
	}
	return &lib, nil
}

func (l *Library) validate() error {
	seen := make(map[string]bool)
	for _, t := range l.Templates {
		if t.ID == "" {
			return fmt.Errorf("template %q has no id", t.Name)
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate template id %q", t.ID)
		}
		seen[t.ID] = true
		if len(t.Slides) == 0 {
			return fmt.Errorf("template %q has no slides", t.ID)
		}
		for i, s := range t.Slides {
			if err := checkLook(s.Layout, s.Background, s.TextColor); err != nil {
				return fmt.Errorf("template %q slide %d: %w", t.ID, i+1, err)
			}
		}
	}
	for _, th := range l.Themes {
		if err := checkLook(th.Layout, th.Background, th.TextColor); err != nil {
			return fmt.Errorf("theme %q: %w", th.Name, err)
		}
	}
	return nil
}

func checkLook(layout model.Layout, colors ...string) error {
	if layout != "" && !layout.Valid() {
		return fmt.Errorf("unknown layout %q", layout)
	}
	for _, c := range colors {
		if c == "" {
			continue
		}
		if _, ok := geom.ParseHex(c); !ok {
			return fmt.Errorf("invalid colour %q", c)
		}
	}
	return nil
}

// Get returns the template with id.
func (l *Library) Get(id string) (Template, bool) {
	for _, t := range l.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// InCategory lists the templates of a category sorted by name.
func (l *Library) InCategory(category string) []Template {
	var out []Template
	for _, t := range l.Templates {
		if t.Category == category {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Theme returns the theme called name.
func (l *Library) Theme(name string) (model.Theme, bool) {
	for _, th := range l.Themes {
		if th.Name == name {
			return th, true
		}
	}
	return model.Theme{}, false
}

// Instantiate builds a presentation from template id. Every slide gets a
// fresh id, so two decks made from the same template never share ids.
func (l *Library) Instantiate(id string, d model.Defaults) (model.Presentation, error) {
	t, ok := l.Get(id)
	if !ok {
		return model.Presentation{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	slides := make([]model.Slide, 0, len(t.Slides))
	for i, spec := range t.Slides {
		s := d.NewSlide(i+1, spec.Layout)
		s.Title = spec.Title
		s.Content = spec.Content
		if spec.Background != "" {
			s.Background = spec.Background
		}
		if spec.TextColor != "" {
			s.TextColor = spec.TextColor
		}
		s.SpeakerNotes = spec.SpeakerNotes
		slides = append(slides, s)
	}
	return model.Presentation{Slides: slides}, nil
}
