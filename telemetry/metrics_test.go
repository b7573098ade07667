package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"slidedeck/export"
	"slidedeck/importer"
)

func TestMetrics_ExportFinished(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}

	diags := []export.Diagnostic{{Kind: export.UnsupportedInTarget}, {Kind: export.Approximated}}
	m.ExportFinished(export.FormatPPTX, 20*time.Millisecond, diags, nil)
	m.ExportFinished(export.FormatPPTX, time.Millisecond, nil, nil)
	m.ExportFinished(export.FormatImages, time.Second, nil, errors.New("no renderer"))

	if got := testutil.ToFloat64(m.exports.WithLabelValues("pptx", "ok")); got != 2 {
		t.Errorf("pptx ok = %v", got)
	}
	if got := testutil.ToFloat64(m.exports.WithLabelValues("images", "error")); got != 1 {
		t.Errorf("images error = %v", got)
	}
	if got := testutil.ToFloat64(m.diagnostics.WithLabelValues("pptx")); got != 2 {
		t.Errorf("diagnostics = %v", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 2 {
		t.Errorf("duration series = %d", n)
	}
}

func TestMetrics_ImportFinished(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	m.ImportFinished(importer.KindPPTX, nil)
	m.ImportFinished("", importer.ErrUnsupportedFile)

	want := `
# HELP slidedeck_imports_total Finished imports by importer kind and result.
# TYPE slidedeck_imports_total counter
slidedeck_imports_total{kind="pptx",result="ok"} 1
slidedeck_imports_total{kind="unsupported",result="error"} 1
`
	if err := testutil.CollectAndCompare(m.imports, strings.NewReader(want)); err != nil {
		t.Error(err)
	}
}

func TestNewMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Error("registering twice should fail")
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, _ := NewMetrics(reg)
	m.ExportFinished(export.FormatHTML, time.Millisecond, nil, nil)

	path := filepath.Join(t.TempDir(), "slidedeck.prom")
	if err := WriteTextfile(path, reg); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `slidedeck_exports_total{format="html",result="ok"} 1`) {
		t.Errorf("textfile:\n%s", data)
	}
}
