package export

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"slidedeck/model"
	"slidedeck/native"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
	diags int
}

func (o *recordingObserver) ExportFinished(f Format, _ time.Duration, d []Diagnostic, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	result := "ok"
	if err != nil {
		result = "error"
	}
	o.calls = append(o.calls, string(f)+":"+result)
	o.diags += len(d)
}

func TestService_ExportAsyncUsesSnapshot(t *testing.T) {
	p := deck(t, "Before")
	gate := make(chan struct{})
	svc := NewService(nil, nil)
	svc.Register(FormatJSON, EncoderFunc(func(ctx context.Context, p model.Presentation, opts Options) (Result, error) {
		<-gate
		return NewJSONEncoder().Encode(ctx, p, opts)
	}))

	ch := svc.ExportAsync(context.Background(), FormatJSON, p, testOptions())
	// Edit the caller's value while the export is in flight.
	p.Slides[0].Title = "After"
	close(gate)

	out := <-ch
	if out.Err != nil {
		t.Fatal(out.Err)
	}
	back, err := native.Decode(out.Result.Data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Slides[0].Title != "Before" {
		t.Errorf("export saw a concurrent edit: %q", back.Slides[0].Title)
	}
	if _, open := <-ch; open {
		t.Error("channel should be closed after the outcome")
	}
}

func TestService_ObserverAndLogging(t *testing.T) {
	obs := &recordingObserver{}
	var logs []string
	svc := NewService(obs, func(s string) { logs = append(logs, s) })

	p := deck(t, "Intro")
	p = withElements(t, p, 0, model.Element{Body: model.Chart{ChartType: "pie"}})
	if _, err := svc.Export(context.Background(), FormatPPTX, p, testOptions()); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Export(context.Background(), FormatImages, p, testOptions())
	if !errors.Is(err, ErrEncodingFailure) {
		t.Fatalf("expected encoding failure without renderer, got %v", err)
	}

	if len(obs.calls) != 2 || obs.calls[0] != "pptx:ok" || obs.calls[1] != "images:error" {
		t.Errorf("observer calls = %v", obs.calls)
	}
	if obs.diags != 1 {
		t.Errorf("observer saw %d diagnostics", obs.diags)
	}
	joined := strings.Join(logs, "\n")
	if !strings.Contains(joined, "presentation.pptx") || !strings.Contains(joined, "unsupported-in-target") {
		t.Errorf("logs = %s", joined)
	}
}

func TestService_UnknownFormat(t *testing.T) {
	svc := NewService(nil, nil)
	_, err := svc.Export(context.Background(), Format("docx"), deck(t, "x"), testOptions())
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestService_EveryFormatRegistered(t *testing.T) {
	svc := NewService(nil, nil)
	for _, f := range Formats {
		if _, ok := svc.encoders[f]; !ok {
			t.Errorf("no encoder for %s", f)
		}
	}
}
