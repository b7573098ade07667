package native

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"slidedeck/model"
)

// genBody builds one of the element variants from a kind index and a few
// shared inputs.
func genBody() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 6),
		gen.AlphaString(),
		gen.Float64Range(0, 200),
		gen.SliceOfN(3, gen.AlphaString()),
		gen.Bool(),
	).Map(func(v []interface{}) model.Body {
		text := v[1].(string)
		num := v[2].(float64)
		words := v[3].([]string)
		flag := v[4].(bool)
		switch v[0].(int) {
		case 0:
			return model.Textbox{Content: "<p>" + text + "</p>", FontSize: num, Bold: flag}
		case 1:
			return model.Image{Src: "data:image/png;base64," + text, Alt: text}
		case 2:
			return model.Shape{ShapeType: model.ShapeRectangle, Fill: "#abcdef", StrokeWidth: num}
		case 3:
			return model.Icon{Content: text, FontSize: num}
		case 4:
			data := make([]model.DataPoint, len(words))
			for i, w := range words {
				data[i] = model.DataPoint{Label: w, Value: num * float64(i)}
			}
			return model.Chart{ChartType: "line", Title: text, Data: data, Colors: words}
		case 5:
			return model.Table{Data: [][]string{words, words}, Rows: 2, Cols: len(words)}
		default:
			results := make([]int, len(words))
			return model.Interactive{SubType: model.InteractivePoll, Question: text, Options: words, Results: results, Loop: flag}
		}
	})
}

func genElement() gopter.Gen {
	return gopter.CombineGens(
		gen.Identifier(),
		gen.Float64Range(0, 800),
		gen.Float64Range(0, 600),
		gen.Float64Range(1, 400),
		gen.Float64Range(1, 300),
		genBody(),
	).Map(func(v []interface{}) model.Element {
		return model.Element{
			ID:     model.ID(v[0].(string)),
			X:      v[1].(float64),
			Y:      v[2].(float64),
			Width:  v[3].(float64),
			Height: v[4].(float64),
			Body:   v[5].(model.Body),
		}
	})
}

func genSlide() gopter.Gen {
	return gopter.CombineGens(
		gen.Identifier(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.OneConstOf("#ffffff", "#1E40AF", "#000000"),
		gen.OneConstOf(model.LayoutBlank, model.LayoutTitleContent, model.LayoutTwoColumn),
		gen.SliceOf(genElement()),
		gen.AlphaString(),
	).Map(func(v []interface{}) model.Slide {
		s := model.Slide{
			ID:           model.ID(v[0].(string)),
			Title:        v[1].(string),
			Content:      v[2].(string),
			Background:   v[3].(string),
			TextColor:    "#000000",
			Layout:       v[4].(model.Layout),
			Elements:     v[5].([]model.Element),
			SpeakerNotes: v[6].(string),
			Animations:   []model.Animation{},
		}
		if len(s.Elements) > 0 {
			s.Animations = append(s.Animations, model.Animation{
				ID: "anim-" + s.Elements[0].ID, ElementID: s.Elements[0].ID,
				Type: model.AnimationFadeIn, Duration: 1000,
			})
		}
		if s.SpeakerNotes != "" {
			raw, _ := json.Marshal(s.SpeakerNotes)
			s.Extra = model.Extra{"customTag": raw}
		}
		return s
	})
}

func TestProperty_NativeRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("decode(encode(p)) equals p", prop.ForAll(
		func(slides []model.Slide) bool {
			p := model.Presentation{Slides: slides}
			data, err := Encode(p)
			if err != nil {
				return false
			}
			back, err := Decode(data)
			if err != nil {
				return false
			}
			return reflect.DeepEqual(back, p)
		},
		gen.SliceOfN(3, genSlide()),
	))

	properties.TestingRun(t)
}
