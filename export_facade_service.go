package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"slidedeck/config"
	"slidedeck/export"
	"slidedeck/geom"
	"slidedeck/i18n"
	"slidedeck/model"
)

// ExportManager exports presentation snapshots.
type ExportManager interface {
	ExportDeck(ctx context.Context, format export.Format, p model.Presentation, baseName string) (export.Result, error)
	ExportDeckAsync(ctx context.Context, format export.Format, p model.Presentation, baseName string) <-chan export.Outcome
	WriteResult(res export.Result, path string) (string, error)
}

// ExportFacadeService builds export options from the configuration and
// runs the export service. With the chrome render engine, slides are
// rasterized and paged documents printed by a shared headless browser.
type ExportFacadeService struct {
	ctx      context.Context
	config   ConfigProvider
	observer export.Observer
	logger   func(string)
	service  *export.Service

	chromeMu sync.Mutex
	chrome   *export.ChromeRenderer
}

// NewExportFacadeService creates the facade. observer may be nil.
func NewExportFacadeService(cfg ConfigProvider, observer export.Observer, logger func(string)) *ExportFacadeService {
	return &ExportFacadeService{
		config:   cfg,
		observer: observer,
		logger:   logger,
		service:  export.NewService(observer, logger),
	}
}

func (e *ExportFacadeService) Name() string {
	return serviceExport
}

func (e *ExportFacadeService) Initialize(ctx context.Context) error {
	e.ctx = ctx
	return nil
}

// Shutdown closes the browser if one was started.
func (e *ExportFacadeService) Shutdown() error {
	e.chromeMu.Lock()
	defer e.chromeMu.Unlock()
	if e.chrome == nil {
		return nil
	}
	err := e.chrome.Close()
	e.chrome = nil
	return err
}

func (e *ExportFacadeService) log(msg string) {
	if e.logger != nil {
		e.logger(msg)
	}
}

func (e *ExportFacadeService) chromeRenderer(cfg config.Config, d model.Defaults) *export.ChromeRenderer {
	e.chromeMu.Lock()
	defer e.chromeMu.Unlock()
	if e.chrome == nil {
		e.chrome = export.NewChromeRenderer(d)
		e.chrome.ExecPath = cfg.ChromePath
		path := cfg.ChromePath
		if path == "" {
			path = export.FindChrome()
		}
		e.log(i18n.T("export.renderer_chrome", path))
	}
	return e.chrome
}

// Options returns the export options in force for the current
// configuration.
func (e *ExportFacadeService) Options(baseName string) (export.Options, config.Config, error) {
	cfg, err := e.config.GetEffectiveConfig()
	if err != nil {
		return export.Options{}, config.Config{}, err
	}
	d := i18n.SlideDefaults()
	opts := export.DefaultOptions()
	opts.Canvas = geom.Canvas{Width: float64(cfg.CanvasWidth), Height: float64(cfg.CanvasHeight)}
	opts.Defaults = d
	opts.Compress = cfg.PDFCompress
	opts.RenderWidth = cfg.RenderWidth
	opts.RenderWorkers = cfg.RenderWorkers
	if baseName != "" {
		opts.BaseName = baseName
		opts.Title = baseName
	}
	if cfg.RenderEngine == config.RenderEngineChrome {
		opts.Renderer = e.chromeRenderer(cfg, d)
	} else {
		opts.Renderer = export.NewGoPPTRenderer(cfg.RenderWidth, d)
	}
	return opts, cfg, nil
}

// ExportDeck encodes p in format. The browser-printed format always uses
// the chrome renderer, whatever the configured engine.
func (e *ExportFacadeService) ExportDeck(ctx context.Context, format export.Format, p model.Presentation, baseName string) (export.Result, error) {
	opts, cfg, err := e.Options(baseName)
	if err != nil {
		return export.Result{}, WrapError(serviceExport, "ExportDeck", err)
	}
	if format == export.FormatPrintPDF {
		if _, ok := opts.Renderer.(export.PagePrinter); !ok {
			opts.Renderer = e.chromeRenderer(cfg, opts.Defaults)
		}
	}
	res, err := e.service.Export(ctx, format, p, opts)
	if err != nil {
		e.log(i18n.T("export.failed", err.Error()))
		return export.Result{}, WrapError(serviceExport, "ExportDeck", err)
	}
	return res, nil
}

// ExportDeckAsync runs ExportDeck on a snapshot in the background.
func (e *ExportFacadeService) ExportDeckAsync(ctx context.Context, format export.Format, p model.Presentation, baseName string) <-chan export.Outcome {
	snapshot := p.Clone()
	out := make(chan export.Outcome, 1)
	go func() {
		defer close(out)
		res, err := e.ExportDeck(ctx, format, snapshot, baseName)
		out <- export.Outcome{Result: res, Err: err}
	}()
	return out
}

// WriteResult writes res to path. When path is empty or a directory, the
// suggested file name is used.
func (e *ExportFacadeService) WriteResult(res export.Result, path string) (string, error) {
	if path == "" {
		path = res.Filename
	} else if info, err := os.Stat(path); err == nil && info.IsDir() || strings.HasSuffix(path, string(os.PathSeparator)) {
		path = filepath.Join(path, res.Filename)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", WrapTargetError(serviceExport, "WriteResult", path, err)
		}
	}
	if err := writeFileAtomic(path, res.Data, 0644); err != nil {
		return "", WrapTargetError(serviceExport, "WriteResult", path, err)
	}
	e.log(i18n.T("export.success", path, humanize.Bytes(uint64(len(res.Data)))))
	return path, nil
}
