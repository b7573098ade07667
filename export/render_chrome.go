package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"slidedeck/geom"
	"slidedeck/model"
)

// ChromeRenderer rasterizes slides in headless Chrome from the same markup
// the hypertext encoder writes, so every element the page shows is in the
// bitmap. One browser is started lazily and shared by all renders; each
// render opens its own tab.
type ChromeRenderer struct {
	// ExecPath overrides browser discovery.
	ExecPath string
	// Timeout bounds a single slide render.
	Timeout  time.Duration
	Defaults model.Defaults

	html *HTMLEncoder

	once          sync.Once
	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
}

// NewChromeRenderer creates a browser renderer. Close releases the browser.
func NewChromeRenderer(d model.Defaults) *ChromeRenderer {
	return &ChromeRenderer{
		Timeout:  30 * time.Second,
		Defaults: d,
		html:     NewHTMLEncoder(),
	}
}

func (r *ChromeRenderer) start() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Headless,
	)
	path := r.ExecPath
	if path == "" {
		path = FindChrome()
	}
	if path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	r.browserCtx, r.cancelAlloc, r.cancelBrowser = browserCtx, cancelAlloc, cancelBrowser
}

// Render implements Renderer.
func (r *ChromeRenderer) Render(ctx context.Context, s model.Slide, canvas geom.Canvas) (image.Image, error) {
	r.once.Do(r.start)
	canvas = canvas.OrDefault()

	var diags diagnostics
	opts := Options{Canvas: canvas, Defaults: r.Defaults}.normalized()
	doc, err := r.html.page(ctx, []model.Slide{s}, opts, &diags)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, doc); err != nil {
		return nil, err
	}

	htmlPath, err := writeTempHTML(buf.Bytes())
	if err != nil {
		return nil, err
	}
	defer os.Remove(htmlPath)

	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.Timeout)
	defer cancelTimeout()
	// Stop the tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var shot []byte
	err = chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(canvas.Width)+80, int64(canvas.Height)+80),
		chromedp.Navigate("file://"+filepath.ToSlash(htmlPath)),
		chromedp.Screenshot("#slide-1", &shot, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("chrome render failed: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return img, nil
}

// PrintPDF prints a hypertext export to PDF with the browser's print
// engine, keeping all of the page styling.
func (r *ChromeRenderer) PrintPDF(ctx context.Context, html []byte) ([]byte, error) {
	r.once.Do(r.start)

	htmlPath, err := writeTempHTML(html)
	if err != nil {
		return nil, err
	}
	defer os.Remove(htmlPath)

	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.Timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var pdfBuf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("file://"+filepath.ToSlash(htmlPath)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().WithPrintBackground(true).WithLandscape(true).Do(ctx)
			return err
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, encodingError("pdf", fmt.Errorf("PDF生成失败: %w", err))
	}
	return pdfBuf, nil
}

func writeTempHTML(data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "slidedeck-*.html")
	if err != nil {
		return "", fmt.Errorf("创建临时HTML文件失败: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// Close shuts the browser down.
func (r *ChromeRenderer) Close() error {
	if r.cancelBrowser != nil {
		r.cancelBrowser()
		r.cancelAlloc()
	}
	return nil
}

// FindChrome returns the path of an installed Chrome or Chromium, or "".
func FindChrome() string {
	var paths []string
	switch runtime.GOOS {
	case "windows":
		paths = []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		}
	case "darwin":
		paths = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	default:
		paths = []string{"google-chrome", "chromium", "chromium-browser", "/snap/bin/chromium"}
	}
	for _, path := range paths {
		if p, err := exec.LookPath(path); err == nil {
			return p
		}
	}
	return ""
}
