package export

import (
	"fmt"

	"slidedeck/model"
)

// DiagnosticKind classifies content an encoder could not carry over
// faithfully.
type DiagnosticKind string

const (
	// UnsupportedInTarget marks an element the target has no equivalent for.
	// The element is left out of the output.
	UnsupportedInTarget DiagnosticKind = "unsupported-in-target"
	// Approximated marks an element written with a simpler stand-in.
	Approximated DiagnosticKind = "approximated"
	// UnrecognizedElement marks an element whose type was not understood
	// when the document was decoded.
	UnrecognizedElement DiagnosticKind = "unrecognized-element"
	// InvalidSource marks an element whose payload could not be decoded,
	// such as a broken image data URL.
	InvalidSource DiagnosticKind = "invalid-source"
	// RenderFailed marks a slide the renderer could not rasterize.
	RenderFailed DiagnosticKind = "render-failed"
)

// Diagnostic reports one piece of content that did not make it into the
// output as it is in the presentation. Slide is the zero-based slide index;
// ElementID is empty for slide level diagnostics.
type Diagnostic struct {
	Slide     int            `json:"slide"`
	ElementID model.ID       `json:"elementId,omitempty"`
	Kind      DiagnosticKind `json:"kind"`
	Reason    string         `json:"reason"`
}

func (d Diagnostic) String() string {
	if d.ElementID == "" {
		return fmt.Sprintf("slide %d: %s: %s", d.Slide+1, d.Kind, d.Reason)
	}
	return fmt.Sprintf("slide %d element %s: %s: %s", d.Slide+1, d.ElementID, d.Kind, d.Reason)
}

// diagnostics collects diagnostics while one encoder walks a presentation.
type diagnostics struct {
	list []Diagnostic
}

func (d *diagnostics) element(slide int, e model.Element, kind DiagnosticKind, format string, args ...any) {
	d.list = append(d.list, Diagnostic{
		Slide:     slide,
		ElementID: e.ID,
		Kind:      kind,
		Reason:    fmt.Sprintf(format, args...),
	})
}

func (d *diagnostics) slide(slide int, kind DiagnosticKind, format string, args ...any) {
	d.list = append(d.list, Diagnostic{
		Slide:  slide,
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
	})
}

func (d *diagnostics) unsupported(slide int, e model.Element, target string) {
	d.element(slide, e, UnsupportedInTarget, "%s elements are not supported in %s output", e.Kind(), target)
}

// visit dispatches e to v and turns an unrecognized body into a diagnostic
// instead of an error.
func (d *diagnostics) visit(slide int, e model.Element, v model.Visitor) error {
	err := e.Visit(v)
	if err == model.ErrUnrecognizedKind {
		kind := string(e.Kind())
		if kind == "" {
			kind = "untyped"
		}
		d.element(slide, e, UnrecognizedElement, "element type %q is not understood", kind)
		return nil
	}
	return err
}

// CountByKind tallies diagnostics per kind.
func CountByKind(list []Diagnostic) map[DiagnosticKind]int {
	out := make(map[DiagnosticKind]int)
	for _, d := range list {
		out[d.Kind]++
	}
	return out
}
