package model

import (
	"encoding/json"
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func twoSlides(t *testing.T) Presentation {
	t.Helper()
	p := New(English)
	p, _ = p.CreateSlide(English, LayoutBlank)
	return p
}

func TestNew_HasOneDefaultSlide(t *testing.T) {
	p := New(English)
	if p.Len() != 1 {
		t.Fatalf("expected 1 slide, got %d", p.Len())
	}
	s := p.Slides[0]
	if s.Title != "Slide 1" || s.Content != "Click to add content" {
		t.Errorf("unexpected defaults: %q / %q", s.Title, s.Content)
	}
	if s.Layout != LayoutTitleContent || s.Background != "#ffffff" || s.TextColor != "#000000" {
		t.Errorf("unexpected slide defaults: %+v", s)
	}
	if s.ID == "" {
		t.Error("slide id should be set")
	}
}

func TestCreateSlide_NumbersAndUnknownLayout(t *testing.T) {
	p := New(English)
	p, s := p.CreateSlide(English, Layout("mystery"))
	if s.Title != "Slide 2" {
		t.Errorf("expected title Slide 2, got %q", s.Title)
	}
	if s.Layout != LayoutBlank {
		t.Errorf("unknown layout should fall back to blank, got %q", s.Layout)
	}
	if p.Len() != 2 || p.Slides[1].ID != s.ID {
		t.Error("slide should be appended")
	}
}

func TestDeleteSlide_RejectsLastSlide(t *testing.T) {
	p := New(English)
	got, res := p.DeleteSlide(0)
	if res != LastSlide {
		t.Fatalf("expected LastSlide, got %v", res)
	}
	if !reflect.DeepEqual(got, p) {
		t.Error("presentation should be unchanged")
	}
}

func TestDeleteSlide_OutOfRange(t *testing.T) {
	p := twoSlides(t)
	for _, idx := range []int{-1, 2, 99} {
		if _, res := p.DeleteSlide(idx); res != SlideNotFound {
			t.Errorf("DeleteSlide(%d) = %v, want SlideNotFound", idx, res)
		}
	}
}

func TestDeleteSlide_NeverBelowOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := New(English)
		n := rapid.IntRange(0, 6).Draw(t, "extra")
		for i := 0; i < n; i++ {
			p, _ = p.CreateSlide(English, LayoutBlank)
		}
		deletes := rapid.SliceOf(rapid.IntRange(-1, 8)).Draw(t, "deletes")
		for _, idx := range deletes {
			p, _ = p.DeleteSlide(idx)
			if p.Len() < 1 {
				t.Fatalf("presentation dropped to %d slides", p.Len())
			}
		}
	})
}

func TestDuplicateSlide(t *testing.T) {
	p := New(English)
	p, _, _ = p.AddElement(0, Element{Width: 10, Body: Chart{ChartType: "bar", Data: []DataPoint{{"a", 1}}}})
	p, _ = p.CreateSlide(English, LayoutBlank)

	got, res := p.DuplicateSlide(English, 0)
	if !res.OK() {
		t.Fatalf("duplicate failed: %v", res)
	}
	if got.Len() != 3 {
		t.Fatalf("expected 3 slides, got %d", got.Len())
	}
	orig, dup := got.Slides[0], got.Slides[1]
	if dup.ID == orig.ID {
		t.Error("duplicate must get a new id")
	}
	if dup.Title != "Slide 1 Copy" {
		t.Errorf("unexpected duplicate title %q", dup.Title)
	}
	if got.Slides[2].Title != "Slide 2" {
		t.Error("duplicate should be inserted right after the source")
	}

	// Deep copy: mutating the duplicate's chart must not reach the source.
	dup.Elements[0].Body.(Chart).Data[0] = DataPoint{"changed", 9}
	if orig.Elements[0].Body.(Chart).Data[0].Label != "a" {
		t.Error("duplicate shares chart data with the source")
	}
}

func TestUpdateSlide_ShallowMerge(t *testing.T) {
	p := twoSlides(t)
	title := "Intro"
	got, res := p.UpdateSlide(0, SlidePatch{Title: &title})
	if !res.OK() {
		t.Fatalf("UpdateSlide: %v", res)
	}
	if got.Slides[0].Title != "Intro" {
		t.Errorf("title not updated")
	}
	if got.Slides[0].Content != p.Slides[0].Content || got.Slides[0].ID != p.Slides[0].ID {
		t.Error("unpatched fields must be kept")
	}
	if p.Slides[0].Title != "Slide 1" {
		t.Error("receiver must not be modified")
	}
}

func TestUpdateSlide_ReplacesElements(t *testing.T) {
	p := New(English)
	p, _, _ = p.AddElement(0, Element{Body: Textbox{Content: "a"}})
	replacement := []Element{{ID: "x", Body: Shape{ShapeType: ShapeCircle}}}
	got, _ := p.UpdateSlide(0, SlidePatch{Elements: &replacement})
	if len(got.Slides[0].Elements) != 1 || got.Slides[0].Elements[0].ID != "x" {
		t.Fatalf("elements should be replaced, got %+v", got.Slides[0].Elements)
	}
	replacement[0].X = 500
	if got.Slides[0].Elements[0].X == 500 {
		t.Error("patch slice is aliased into the presentation")
	}
}

func TestUpdateSlide_BadIndex(t *testing.T) {
	p := New(English)
	got, res := p.UpdateSlide(5, SlidePatch{Title: Ptr("x")})
	if res != SlideNotFound || !reflect.DeepEqual(got, p) {
		t.Errorf("expected unchanged presentation and SlideNotFound, got %v", res)
	}
}

func TestUpdateElement_MissingID(t *testing.T) {
	p := New(English)
	p, _, _ = p.AddElement(0, Element{Body: Textbox{Content: "hello"}})
	got, res := p.UpdateElement(0, "missing-id", ElementPatch{X: Ptr(10.0)})
	if res != ElementNotFound {
		t.Fatalf("expected ElementNotFound, got %v", res)
	}
	if !reflect.DeepEqual(got, p) {
		t.Error("presentation should be unchanged")
	}
}

func TestUpdateElement_PatchesPlacementAndBody(t *testing.T) {
	p := New(English)
	p, id, _ := p.AddElement(0, Element{X: 1, Y: 2, Width: 3, Height: 4, Body: Textbox{Content: "a"}})
	got, res := p.UpdateElement(0, id, ElementPatch{X: Ptr(10.0), Body: Textbox{Content: "b"}})
	if !res.OK() {
		t.Fatalf("UpdateElement: %v", res)
	}
	e := got.Slides[0].Elements[0]
	if e.X != 10 || e.Y != 2 || e.Body.(Textbox).Content != "b" {
		t.Errorf("unexpected element after patch: %+v", e)
	}
}

func TestAddElement_DistinctIDsInSameTick(t *testing.T) {
	p := New(English)
	p, a, _ := p.AddElement(0, Element{Body: Textbox{}})
	p, b, _ := p.AddElement(0, Element{Body: Textbox{}})
	if a == b {
		t.Fatalf("two elements share id %q", a)
	}
	if p.Slides[0].Elements[0].ID == p.Slides[0].Elements[1].ID {
		t.Fatal("stored ids collide")
	}
}

func TestAddElement_IDsUnique(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(t, "n")
		p := New(English)
		seen := make(map[ID]bool)
		for i := 0; i < n; i++ {
			var id ID
			p, id, _ = p.AddElement(0, Element{Body: Icon{Content: "*"}})
			if seen[id] {
				t.Fatalf("duplicate id %q after %d inserts", id, i)
			}
			seen[id] = true
		}
	})
}

func TestAddElement_ReplacesCollidingID(t *testing.T) {
	p := New(English)
	p, first, _ := p.AddElement(0, Element{ID: "same", Body: Textbox{}})
	p, second, _ := p.AddElement(0, Element{ID: "same", Body: Textbox{}})
	if first != "same" || second == "same" {
		t.Errorf("ids = %q, %q", first, second)
	}
}

func TestDeleteElement_LeavesAnimationsInert(t *testing.T) {
	p := New(English)
	p, id, _ := p.AddElement(0, Element{Body: Textbox{}})
	p, _, res := p.AddAnimation(0, id, AnimationFadeIn)
	if !res.OK() {
		t.Fatalf("AddAnimation: %v", res)
	}
	p, res = p.DeleteElement(0, id)
	if !res.OK() {
		t.Fatalf("DeleteElement: %v", res)
	}
	s := p.Slides[0]
	if len(s.Animations) != 1 {
		t.Fatal("animation should not be cascaded away")
	}
	if len(s.LiveAnimations()) != 0 {
		t.Error("dangling animation should be inert")
	}
}

func TestAddAnimation_Defaults(t *testing.T) {
	p := New(English)
	p, id, _ := p.AddElement(0, Element{Body: Textbox{}})
	p, _, _ = p.AddAnimation(0, id, AnimationFadeIn)
	p, animID, _ := p.AddAnimation(0, id, AnimationPulse)
	a := p.Slides[0].Animations[1]
	if a.ID != animID || a.Duration != 1000 || a.Delay != 0 || a.Order != 1 {
		t.Errorf("unexpected animation %+v", a)
	}
	if _, _, res := p.AddAnimation(0, "nope", AnimationFadeIn); res != ElementNotFound {
		t.Errorf("expected ElementNotFound, got %v", res)
	}
	p, res := p.RemoveAnimation(0, animID)
	if !res.OK() || len(p.Slides[0].Animations) != 1 {
		t.Errorf("RemoveAnimation: %v", res)
	}
	if _, res := p.RemoveAnimation(0, animID); res != AnimationNotFound {
		t.Errorf("expected AnimationNotFound, got %v", res)
	}
}

func TestMoveSlide(t *testing.T) {
	p := New(English)
	p, _ = p.CreateSlide(English, LayoutBlank)
	p, _ = p.CreateSlide(English, LayoutBlank)
	got, res := p.MoveSlide(0, 2)
	if !res.OK() {
		t.Fatal(res)
	}
	titles := []string{got.Slides[0].Title, got.Slides[1].Title, got.Slides[2].Title}
	want := []string{"Slide 2", "Slide 3", "Slide 1"}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("order = %v, want %v", titles, want)
	}
}

func TestResetSlide(t *testing.T) {
	p := New(English)
	p, _ = p.UpdateSlide(0, SlidePatch{Title: Ptr("Custom"), Background: Ptr("#123456")})
	p, _, _ = p.AddElement(0, Element{Body: Textbox{}})
	id := p.Slides[0].ID
	got, res := p.ResetSlide(English, 0)
	if !res.OK() {
		t.Fatal(res)
	}
	s := got.Slides[0]
	if s.ID != id || s.Title != "Slide 1" || s.Background != "#ffffff" || len(s.Elements) != 0 {
		t.Errorf("unexpected reset slide %+v", s)
	}
}

func TestApplyTheme(t *testing.T) {
	p := New(English)
	got, _ := p.ApplyTheme(0, Theme{Name: "Dark Theme", Layout: LayoutTitleContent, Background: "#1F2937", TextColor: "#FFFFFF"})
	if got.Slides[0].Background != "#1F2937" || got.Slides[0].TextColor != "#FFFFFF" {
		t.Errorf("theme not applied: %+v", got.Slides[0])
	}
}

type kindRecorder struct{ kinds []Kind }

func (r *kindRecorder) Textbox(e Element, _ Textbox) error {
	r.kinds = append(r.kinds, KindTextbox)
	return nil
}
func (r *kindRecorder) Image(e Element, _ Image) error {
	r.kinds = append(r.kinds, KindImage)
	return nil
}
func (r *kindRecorder) Shape(e Element, _ Shape) error {
	r.kinds = append(r.kinds, KindShape)
	return nil
}
func (r *kindRecorder) Icon(e Element, _ Icon) error { r.kinds = append(r.kinds, KindIcon); return nil }
func (r *kindRecorder) Chart(e Element, _ Chart) error {
	r.kinds = append(r.kinds, KindChart)
	return nil
}
func (r *kindRecorder) Table(e Element, _ Table) error {
	r.kinds = append(r.kinds, KindTable)
	return nil
}
func (r *kindRecorder) Interactive(e Element, _ Interactive) error {
	r.kinds = append(r.kinds, KindInteractive)
	return nil
}

func TestVisit_DispatchesEveryKind(t *testing.T) {
	rec := &kindRecorder{}
	for _, k := range Kinds {
		body, ok := NewBody(k)
		if !ok {
			t.Fatalf("NewBody(%q) failed", k)
		}
		if err := (Element{Body: body}).Visit(rec); err != nil {
			t.Fatalf("Visit(%q): %v", k, err)
		}
	}
	if !reflect.DeepEqual(rec.kinds, Kinds) {
		t.Errorf("visited %v, want %v", rec.kinds, Kinds)
	}
	if err := (Element{Body: Unrecognized{Type: "sticker"}}).Visit(rec); err != ErrUnrecognizedKind {
		t.Errorf("expected ErrUnrecognizedKind, got %v", err)
	}
}

func TestElementJSON_FlatWithExtras(t *testing.T) {
	in := `{"id":1712345678901,"type":"textbox","x":10,"y":20,"width":200,"height":50,"content":"<b>Hi</b>","fontSize":18,"rotation":45}`
	var e Element
	if err := json.Unmarshal([]byte(in), &e); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if e.ID != "1712345678901" {
		t.Errorf("numeric id not converted: %q", e.ID)
	}
	tb, ok := e.Body.(Textbox)
	if !ok || tb.Content != "<b>Hi</b>" || tb.FontSize != 18 {
		t.Fatalf("unexpected body %#v", e.Body)
	}
	if string(e.Extra["rotation"]) != "45" {
		t.Errorf("unknown member lost: %v", e.Extra)
	}

	out, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if back["type"] != "textbox" || back["content"] != "<b>Hi</b>" || back["rotation"] != float64(45) {
		t.Errorf("re-encoded element missing members: %s", out)
	}
}

func TestElementJSON_UnknownType(t *testing.T) {
	in := `{"id":"a","type":"sticker","x":1,"y":2,"width":3,"height":4,"emoji":"x"}`
	var e Element
	if err := json.Unmarshal([]byte(in), &e); err != nil {
		t.Fatal(err)
	}
	if u, ok := e.Body.(Unrecognized); !ok || u.Type != "sticker" {
		t.Fatalf("expected Unrecognized body, got %#v", e.Body)
	}
	out, _ := json.Marshal(e)
	var again Element
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(again, e) {
		t.Errorf("unknown element did not survive: %s", out)
	}
}

func TestSlideJSON_LegacyNotes(t *testing.T) {
	var s Slide
	if err := json.Unmarshal([]byte(`{"id":"s","title":"t","notes":"remember"}`), &s); err != nil {
		t.Fatal(err)
	}
	if s.SpeakerNotes != "remember" {
		t.Errorf("legacy notes not read: %q", s.SpeakerNotes)
	}
	if _, kept := s.Extra["notes"]; kept {
		t.Error("legacy notes should not also stay in Extra")
	}
}
