package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"slidedeck/export"
	"slidedeck/importer"
	"slidedeck/model"
	"slidedeck/native"
	"slidedeck/store"
)

func newDeckFacade(t *testing.T, environ ...string) *DeckFacadeService {
	t.Helper()
	cs := newTestConfigService(t, environ...)
	d := NewDeckFacadeService(cs, func(msg string) { t.Log(msg) })
	if err := d.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { d.Shutdown() })
	return d
}

func TestDeckFacade_NotInitialized(t *testing.T) {
	d := NewDeckFacadeService(newTestConfigService(t), nil)
	if _, err := d.LoadDeck("x"); !errors.Is(err, errDeckStoreUnavailable) {
		t.Errorf("LoadDeck before Initialize = %v", err)
	}
	if err := d.Shutdown(); err != nil {
		t.Errorf("Shutdown before Initialize = %v", err)
	}
}

func TestDeckFacade_SaveLoadVersions(t *testing.T) {
	d := newDeckFacade(t)
	p := model.New(model.English)
	p, _ = p.CreateSlide(model.English, model.LayoutTwoColumn)

	if err := d.SaveDeck("quarterly", p); err != nil {
		t.Fatal(err)
	}
	got, err := d.LoadDeck("quarterly")
	if err != nil || got.Len() != 2 || got.Slides[1].Layout != model.LayoutTwoColumn {
		t.Fatalf("LoadDeck = %+v, %v", got, err)
	}

	v, err := d.SaveVersion("quarterly", "", "ana")
	if err != nil {
		t.Fatal(err)
	}
	if v.Description != "Version 1" || v.SlideCount != 2 || v.Author != "ana" {
		t.Errorf("version = %+v", v)
	}

	p, _ = p.DeleteSlide(1)
	d.SaveDeck("quarterly", p)
	if _, err := d.RestoreVersion(v.ID); err != nil {
		t.Fatal(err)
	}
	if got, _ := d.LoadDeck("quarterly"); got.Len() != 2 {
		t.Errorf("restore left %d slides", got.Len())
	}

	if err := d.DeleteDeck("quarterly"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.LoadDeck("quarterly"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("LoadDeck after delete = %v", err)
	}
	if list, _ := d.ListVersions("quarterly"); len(list) != 1 {
		t.Errorf("versions should outlive the deck, got %d", len(list))
	}
}

func TestDeckFacade_SessionAutosave(t *testing.T) {
	d := newDeckFacade(t, "SLIDEDECK_AUTOSAVE_SECONDS=1")

	s, err := d.OpenSession("draft")
	if err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().Len() != 1 {
		t.Fatal("new session should start with one slide")
	}
	s.CreateSlide(model.LayoutBlank)

	ctx, cancel := context.WithCancel(context.Background())
	done, err := d.StartAutosave(ctx, s, "draft")
	if err != nil || done == nil {
		t.Fatalf("StartAutosave = %v, %v", done, err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for s.Dirty() && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	<-done

	reopened, err := d.OpenSession("draft")
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Snapshot().Len() != 2 {
		t.Errorf("autosaved deck has %d slides", reopened.Snapshot().Len())
	}
}

func TestDeckFacade_AutosaveDisabled(t *testing.T) {
	cs := newTestConfigService(t)
	cfg, _ := cs.GetConfig()
	cfg.AutosaveSeconds = 0
	if err := cs.SaveConfig(cfg); err != nil {
		t.Fatal(err)
	}
	d := NewDeckFacadeService(cs, nil)
	if err := d.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer d.Shutdown()

	s, _ := d.OpenSession("x")
	if done, err := d.StartAutosave(context.Background(), s, "x"); done != nil || err != nil {
		t.Errorf("disabled autosave = %v, %v", done, err)
	}
}

type recordingObserver struct {
	mu      sync.Mutex
	formats []export.Format
}

func (r *recordingObserver) ExportFinished(f export.Format, _ time.Duration, _ []export.Diagnostic, _ error) {
	r.mu.Lock()
	r.formats = append(r.formats, f)
	r.mu.Unlock()
}

func TestExportFacade_ExportAndWrite(t *testing.T) {
	obs := &recordingObserver{}
	var logs []string
	e := NewExportFacadeService(newTestConfigService(t), obs, func(m string) { logs = append(logs, m) })
	defer e.Shutdown()

	p := model.New(model.English)
	p, _ = p.UpdateSlide(0, model.SlidePatch{Title: model.Ptr("Roadmap")})

	res, err := e.ExportDeck(context.Background(), export.FormatJSON, p, "roadmap")
	if err != nil {
		t.Fatal(err)
	}
	if res.Filename != "roadmap.json" {
		t.Errorf("filename = %q", res.Filename)
	}
	decoded, err := native.Decode(res.Data)
	if err != nil || decoded.Slides[0].Title != "Roadmap" {
		t.Errorf("exported json = %+v, %v", decoded, err)
	}

	dir := t.TempDir()
	path, err := e.WriteResult(res, dir)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "roadmap.json") {
		t.Errorf("written to %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}

	outcome := <-e.ExportDeckAsync(context.Background(), export.FormatHTML, p, "")
	if outcome.Err != nil || outcome.Result.Filename != "presentation.html" {
		t.Errorf("async outcome = %+v", outcome)
	}
	if len(obs.formats) != 2 {
		t.Errorf("observer saw %v", obs.formats)
	}
	if !strings.Contains(strings.Join(logs, "\n"), "[EXPORT]") {
		t.Error("export service did not log")
	}
}

func TestExportFacade_Options(t *testing.T) {
	e := NewExportFacadeService(newTestConfigService(t, "SLIDEDECK_CANVAS_WIDTH=900", "SLIDEDECK_CANVAS_HEIGHT=675", "SLIDEDECK_PDF_COMPRESS=false"), nil, nil)
	opts, _, err := e.Options("deck")
	if err != nil {
		t.Fatal(err)
	}
	if opts.Canvas.Width != 900 || opts.Canvas.Height != 675 || opts.Compress || opts.BaseName != "deck" {
		t.Errorf("options = %+v", opts)
	}
	if _, ok := opts.Renderer.(*export.GoPPTRenderer); !ok {
		t.Errorf("default renderer = %T", opts.Renderer)
	}
}

type importRecord struct {
	kind importer.Kind
	err  error
}

type recordingImports struct{ records []importRecord }

func (r *recordingImports) ImportFinished(kind importer.Kind, err error) {
	r.records = append(r.records, importRecord{kind, err})
}

func TestImportFacade(t *testing.T) {
	rec := &recordingImports{}
	s := NewImportFacadeService(rec, nil)

	doc, _ := native.Encode(model.New(model.English))
	path := filepath.Join(t.TempDir(), "deck.json")
	os.WriteFile(path, doc, 0644)

	res, err := s.ImportFile(path, "")
	if err != nil || res.Kind != importer.KindNative || res.Presentation.Len() != 1 {
		t.Fatalf("ImportFile = %+v, %v", res, err)
	}
	if _, err := s.ImportData("slides.key", []byte("x"), ""); !errors.Is(err, importer.ErrUnsupportedFile) {
		t.Errorf("ImportData(.key) = %v", err)
	}
	if _, err := s.ImportFile(filepath.Join(t.TempDir(), "missing.json"), ""); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file = %v", err)
	}

	if len(rec.records) != 2 || rec.records[0].kind != importer.KindNative || rec.records[0].err != nil ||
		rec.records[1].kind != "" || rec.records[1].err == nil {
		t.Errorf("records = %+v", rec.records)
	}
}
