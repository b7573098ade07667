// Package importer turns files into presentations: the native JSON
// document, .deck packages and, on a best-effort basis, foreign .pptx
// slide packages.
package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"slidedeck/geom"
	"slidedeck/model"
	"slidedeck/native"
	"slidedeck/pack"
)

var (
	// ErrUnsupportedFile is returned for extensions no importer handles.
	ErrUnsupportedFile = errors.New("unsupported file format")
	// ErrInvalidFormat is returned when the file content cannot be read as
	// the format its extension claims. Native documents additionally match
	// native.ErrMalformedDocument.
	ErrInvalidFormat = errors.New("invalid presentation format")
)

// Kind names the importer that produced a presentation.
type Kind string

const (
	KindNative Kind = "native"
	KindPPTX   Kind = "pptx"
	KindPack   Kind = "pack"
)

// Options tune an import.
type Options struct {
	Defaults model.Defaults
	// Password opens encrypted .deck packages.
	Password string
}

// Result is an imported presentation plus notes about what was repaired or
// guessed along the way.
type Result struct {
	Presentation model.Presentation
	Kind         Kind
	Warnings     []string
}

// KindFor returns the importer for filename, false when none applies.
func KindFor(filename string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return KindNative, true
	case ".pptx":
		return KindPPTX, true
	case pack.Extension:
		return KindPack, true
	}
	return "", false
}

// Import dispatches on the extension of filename. The returned presentation
// always holds at least one slide.
func Import(filename string, data []byte, opts Options) (Result, error) {
	kind, ok := KindFor(filename)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(filename))
	}
	switch kind {
	case KindPPTX:
		return ImportPPTX(data, opts)
	case KindPack:
		return ImportPack(data, opts)
	default:
		return ImportJSON(data, opts)
	}
}

// ImportJSON reads a native document. Members the model does not know are
// kept; missing ids and colours are filled in.
func ImportJSON(data []byte, opts Options) (Result, error) {
	p, err := native.Decode(data)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	res := Result{Kind: KindNative}
	res.Presentation, res.Warnings = normalize(p, opts.Defaults)
	return res, nil
}

// ImportPack reads a .deck package.
func ImportPack(data []byte, opts Options) (Result, error) {
	p, err := pack.Unpack(data, opts.Password)
	switch {
	case errors.Is(err, pack.ErrInvalidPack), errors.Is(err, native.ErrMalformedDocument):
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	case err != nil:
		return Result{}, err
	}
	res := Result{Kind: KindPack}
	res.Presentation, res.Warnings = normalize(p, opts.Defaults)
	return res, nil
}

// normalize repairs what a hand-written or older document may lack: empty
// or repeated ids, missing colours and layout, nil sequences. A document
// without slides becomes a single default slide.
func normalize(p model.Presentation, d model.Defaults) (model.Presentation, []string) {
	var warnings []string
	if p.Len() == 0 {
		return model.New(d), []string{"document has no slides, starting with a blank slide"}
	}

	seen := make(map[model.ID]bool, p.Len())
	for i := range p.Slides {
		s := &p.Slides[i]
		if s.ID == "" || seen[s.ID] {
			old := s.ID
			s.ID = model.NewID()
			if old != "" {
				warnings = append(warnings, fmt.Sprintf("slide %d: duplicate id %q replaced", i+1, old))
			}
		}
		seen[s.ID] = true

		if s.Background == "" {
			s.Background = geom.DefaultBackground
		}
		if s.TextColor == "" {
			s.TextColor = geom.DefaultTextColor
		}
		if s.Layout == "" {
			s.Layout = model.LayoutTitleContent
		}
		if s.Elements == nil {
			s.Elements = []model.Element{}
		}
		if s.Animations == nil {
			s.Animations = []model.Animation{}
		}

		elementIDs := make(map[model.ID]bool, len(s.Elements))
		for j := range s.Elements {
			e := &s.Elements[j]
			if e.ID == "" || elementIDs[e.ID] {
				if e.ID != "" {
					warnings = append(warnings, fmt.Sprintf("slide %d: duplicate element id %q replaced", i+1, e.ID))
				}
				e.ID = model.NewID()
			}
			elementIDs[e.ID] = true
			if _, unknown := e.Body.(model.Unrecognized); unknown {
				warnings = append(warnings, fmt.Sprintf("slide %d: element %s has unknown type %q", i+1, e.ID, e.Kind()))
			}
		}
	}
	return p, warnings
}
