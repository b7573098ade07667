package model

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Extra carries JSON members that are not modelled so that decoding and
// re-encoding a document keeps them.
type Extra map[string]json.RawMessage

func (x Extra) clone() Extra {
	if x == nil {
		return nil
	}
	out := make(Extra, len(x))
	for k, v := range x {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// elementHeader holds the members shared by every element kind.
type elementHeader struct {
	ID     ID      `json:"id"`
	Type   Kind    `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MarshalJSON writes the element as one flat object: header, body members
// and extras.
func (e Element) MarshalJSON() ([]byte, error) {
	h := elementHeader{ID: e.ID, Type: e.Kind(), X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
	members, err := toMembers(h)
	if err != nil {
		return nil, err
	}
	if e.Body != nil {
		if _, unknown := e.Body.(Unrecognized); !unknown {
			body, err := toMembers(e.Body)
			if err != nil {
				return nil, err
			}
			for k, v := range body {
				members[k] = v
			}
		}
	}
	return marshalMembers(members, e.Extra)
}

// UnmarshalJSON reads a flat element object. Unknown members are kept in
// Extra; an unknown type yields an Unrecognized body.
func (e *Element) UnmarshalJSON(data []byte) error {
	var h elementHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Element{ID: h.ID, X: h.X, Y: h.Y, Width: h.Width, Height: h.Height}
	known := jsonKeys(reflect.TypeOf(elementHeader{}))
	if body, ok := NewBody(h.Type); ok {
		ptr := reflect.New(reflect.TypeOf(body))
		if err := json.Unmarshal(data, ptr.Interface()); err != nil {
			return err
		}
		out.Body = ptr.Elem().Interface().(Body)
		known = append(known, jsonKeys(reflect.TypeOf(body))...)
	} else {
		out.Body = Unrecognized{Type: string(h.Type)}
	}
	out.Extra = leftovers(raw, known)
	*e = out
	return nil
}

type slideJSON struct {
	ID           ID          `json:"id"`
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	Background   string      `json:"background"`
	TextColor    string      `json:"textColor"`
	Layout       Layout      `json:"layout"`
	Elements     []Element   `json:"elements"`
	SpeakerNotes string      `json:"speakerNotes"`
	Animations   []Animation `json:"animations"`
}

// legacyNotesKey is where older clients stored speaker notes.
const legacyNotesKey = "notes"

// MarshalJSON writes the slide with its extras merged in.
func (s Slide) MarshalJSON() ([]byte, error) {
	members, err := toMembers(slideJSON{
		ID: s.ID, Title: s.Title, Content: s.Content, Background: s.Background,
		TextColor: s.TextColor, Layout: s.Layout, Elements: s.Elements,
		SpeakerNotes: s.SpeakerNotes, Animations: s.Animations,
	})
	if err != nil {
		return nil, err
	}
	return marshalMembers(members, s.Extra)
}

// UnmarshalJSON reads a slide, accepting the legacy "notes" member when
// "speakerNotes" is absent.
func (s *Slide) UnmarshalJSON(data []byte) error {
	var v slideJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	known := jsonKeys(reflect.TypeOf(slideJSON{}))
	if _, ok := raw["speakerNotes"]; !ok {
		if notes, ok := raw[legacyNotesKey]; ok {
			var n string
			if json.Unmarshal(notes, &n) == nil {
				v.SpeakerNotes = n
				known = append(known, legacyNotesKey)
			}
		}
	}
	*s = Slide{
		ID: v.ID, Title: v.Title, Content: v.Content, Background: v.Background,
		TextColor: v.TextColor, Layout: v.Layout, Elements: v.Elements,
		SpeakerNotes: v.SpeakerNotes, Animations: v.Animations,
		Extra: leftovers(raw, known),
	}
	return nil
}

type animationJSON struct {
	ID        ID            `json:"id"`
	ElementID ID            `json:"elementId"`
	Type      AnimationType `json:"type"`
	Duration  int           `json:"duration"`
	Delay     int           `json:"delay"`
	Order     int           `json:"order"`
}

// MarshalJSON writes the animation with its extras merged in.
func (a Animation) MarshalJSON() ([]byte, error) {
	members, err := toMembers(a.fields())
	if err != nil {
		return nil, err
	}
	return marshalMembers(members, a.Extra)
}

// UnmarshalJSON reads an animation and keeps unknown members.
func (a *Animation) UnmarshalJSON(data []byte) error {
	var v animationJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Animation{
		ID: v.ID, ElementID: v.ElementID, Type: v.Type,
		Duration: v.Duration, Delay: v.Delay, Order: v.Order,
		Extra: leftovers(raw, jsonKeys(reflect.TypeOf(animationJSON{}))),
	}
	return nil
}

func (a Animation) fields() animationJSON {
	return animationJSON{ID: a.ID, ElementID: a.ElementID, Type: a.Type, Duration: a.Duration, Delay: a.Delay, Order: a.Order}
}

func toMembers(v any) (map[string]json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// marshalMembers encodes members, adding extras that do not collide with a
// modelled member.
func marshalMembers(members map[string]json.RawMessage, extra Extra) ([]byte, error) {
	for k, v := range extra {
		if _, taken := members[k]; !taken {
			members[k] = v
		}
	}
	return json.Marshal(members)
}

func leftovers(raw map[string]json.RawMessage, known []string) Extra {
	var out Extra
	for k, v := range raw {
		if containsString(known, k) {
			continue
		}
		if out == nil {
			out = make(Extra)
		}
		out[k] = v
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var keyCache sync.Map // reflect.Type -> []string

// jsonKeys lists the member names a struct type encodes to.
func jsonKeys(t reflect.Type) []string {
	if cached, ok := keyCache.Load(t); ok {
		return append([]string(nil), cached.([]string)...)
	}
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			if tag == "-" {
				continue
			}
			if n, _, _ := strings.Cut(tag, ","); n != "" {
				name = n
			}
		}
		keys = append(keys, name)
	}
	keyCache.Store(t, keys)
	return append([]string(nil), keys...)
}
