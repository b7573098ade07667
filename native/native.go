// Package native is the lossless JSON interchange format of a presentation:
// {version, created, slides}.
package native

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"slidedeck/model"
)

// FormatVersion is written into every encoded document.
const FormatVersion = "1.0"

// TimeLayout is the ISO-8601 form used for the created member.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrMalformedDocument is returned when a payload is not a JSON object with a
// slides array.
var ErrMalformedDocument = errors.New("malformed document")

// Document is the on-disk envelope.
type Document struct {
	Version string        `json:"version"`
	Created string        `json:"created"`
	Slides  []model.Slide `json:"slides"`
}

// CreatedAt parses the created member. Documents written by other tools may
// leave it out or use another layout, in which case ok is false.
func (d Document) CreatedAt() (t time.Time, ok bool) {
	for _, layout := range []string{TimeLayout, time.RFC3339Nano} {
		if parsed, err := time.Parse(layout, d.Created); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Encode wraps p in a document stamped with the current time.
func Encode(p model.Presentation) ([]byte, error) {
	return EncodeAt(p, time.Now())
}

// EncodeAt wraps p in a document stamped with created.
func EncodeAt(p model.Presentation, created time.Time) ([]byte, error) {
	slides := p.Slides
	if slides == nil {
		slides = []model.Slide{}
	}
	doc := Document{
		Version: FormatVersion,
		Created: created.UTC().Format(TimeLayout),
		Slides:  slides,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode presentation: %w", err)
	}
	return data, nil
}

// Decode parses a document into a presentation. Only the envelope is
// validated; members inside slides and elements are passed through.
func Decode(data []byte) (model.Presentation, error) {
	doc, err := DecodeDocument(data)
	if err != nil {
		return model.Presentation{}, err
	}
	return model.Presentation{Slides: doc.Slides}, nil
}

// DecodeDocument parses the whole envelope.
func DecodeDocument(data []byte) (Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	slides, ok := raw["slides"]
	if !ok {
		return Document{}, fmt.Errorf("%w: missing slides", ErrMalformedDocument)
	}
	if trimmed := bytes.TrimSpace(slides); len(trimmed) == 0 || trimmed[0] != '[' {
		return Document{}, fmt.Errorf("%w: slides is not an array", ErrMalformedDocument)
	}

	var doc Document
	if err := json.Unmarshal(slides, &doc.Slides); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	// The envelope metadata is informational; odd values are ignored.
	_ = json.Unmarshal(raw["version"], &doc.Version)
	_ = json.Unmarshal(raw["created"], &doc.Created)
	return doc, nil
}
