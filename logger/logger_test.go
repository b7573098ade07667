package logger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogger_DiscardsBeforeInit(t *testing.T) {
	l := NewLogger()
	l.Log("nowhere")
	l.Logf("still %s", "nowhere")
	if l.Path() != "" {
		t.Errorf("Path before Init = %q", l.Path())
	}
	l.Close()
}

func TestLogger_WritesRunNumberedFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	first := NewLogger()
	if err := first.Init(dir); err != nil {
		t.Fatal(err)
	}
	first.Logf("exported %d slides", 3)
	first.Tagged("EXPORT")("deck.pptx written")
	path := first.Path()
	first.Close()

	if !strings.HasPrefix(filepath.Base(path), "slidedeck_") || !strings.HasSuffix(path, "_1.log") {
		t.Errorf("unexpected log file name %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"run 1 started", "exported 3 slides", "[EXPORT] deck.pptx written", "run finished"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log lacks %q:\n%s", want, data)
		}
	}

	second := NewLogger()
	if err := second.Init(dir); err != nil {
		t.Fatal(err)
	}
	defer second.Close()
	if !strings.HasSuffix(second.Path(), "_2.log") {
		t.Errorf("second run file = %q", second.Path())
	}
}

func TestLogger_NumbersAfterHighestRun(t *testing.T) {
	dir := t.TempDir()
	day := time.Now().Format(dateLayout)
	for _, run := range []int{1, 7} {
		name := filepath.Join(dir, fmt.Sprintf("slidedeck_%s_%d.log", day, run))
		if err := os.WriteFile(name, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	l := NewLogger()
	if err := l.Init(dir); err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	if !strings.HasSuffix(l.Path(), "_8.log") {
		t.Errorf("run file = %q, want run 8", l.Path())
	}
}

func TestLogger_PrunesOldRuns(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 4; i++ {
		name := filepath.Join(dir, fmt.Sprintf("slidedeck_2024-01-0%d_1.log", i))
		if err := os.WriteFile(name, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	l := NewLogger()
	l.SetKeepRuns(3)
	if err := l.Init(dir); err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	for _, gone := range []string{"slidedeck_2024-01-01_1.log", "slidedeck_2024-01-02_1.log"} {
		if _, err := os.Stat(filepath.Join(dir, gone)); !os.IsNotExist(err) {
			t.Errorf("%s should have been pruned", gone)
		}
	}
	for _, kept := range []string{"slidedeck_2024-01-03_1.log", "slidedeck_2024-01-04_1.log", "notes.txt", filepath.Base(l.Path())} {
		if _, err := os.Stat(filepath.Join(dir, kept)); err != nil {
			t.Errorf("%s should survive: %v", kept, err)
		}
	}
}

func TestLogger_Echo(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger()
	l.SetEcho(&buf)
	l.Tagged("STORE")("saved pitch")
	l.SetEcho(nil)
	l.Log("quiet")
	if buf.String() != "[STORE] saved pitch\n" {
		t.Errorf("echo = %q", buf.String())
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		run  int
		ok   bool
	}{
		{"slidedeck_2024-05-06_12.log", 12, true},
		{"slidedeck_2024-05-06_0.log", 0, false},
		{"slidedeck_yesterday_1.log", 0, false},
		{"other_2024-05-06_1.log", 0, false},
		{"slidedeck_2024-05-06_1.txt", 0, false},
	}
	for _, tt := range tests {
		_, run, ok := parseName(tt.name)
		if ok != tt.ok || run != tt.run {
			t.Errorf("parseName(%q) = %d, %v", tt.name, run, ok)
		}
	}
}
