// Package logger writes one log file per slidedeck run.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	filePrefix = "slidedeck_"
	dateLayout = "2006-01-02"

	// DefaultKeepRuns is how many run files Init leaves in the log directory.
	DefaultKeepRuns = 20
)

// Logger appends timestamped lines to the current run's file. Every command
// line invocation is a run, so files are numbered per day and old ones are
// pruned.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	echo     io.Writer
	keepRuns int
}

// NewLogger creates a Logger that discards lines until Init.
func NewLogger() *Logger {
	return &Logger{keepRuns: DefaultKeepRuns}
}

// SetKeepRuns changes how many run files survive Init. Zero keeps all.
func (l *Logger) SetKeepRuns(n int) {
	l.mu.Lock()
	l.keepRuns = n
	l.mu.Unlock()
}

// SetEcho mirrors every line to w as well. Nil turns echoing off.
func (l *Logger) SetEcho(w io.Writer) {
	l.mu.Lock()
	l.echo = w
	l.mu.Unlock()
}

// Init opens slidedeck_<date>_<run>.log in logDir, numbering the run after
// the highest one of the day.
func (l *Logger) Init(logDir string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	day := time.Now().Format(dateLayout)
	run := nextRun(logDir, day)
	name := filepath.Join(logDir, fmt.Sprintf("%s%s_%d.log", filePrefix, day, run))
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.file = f
	l.write(fmt.Sprintf("slidedeck run %d started (pid %d)", run, os.Getpid()))

	if l.keepRuns > 0 {
		for _, old := range prunable(logDir, l.keepRuns) {
			if err := os.Remove(old); err == nil {
				l.write("Removed old log " + filepath.Base(old))
			}
		}
	}
	return nil
}

// nextRun returns one past the highest run number logged on day.
func nextRun(dir, day string) int {
	matches, _ := filepath.Glob(filepath.Join(dir, filePrefix+day+"_*.log"))
	highest := 0
	for _, m := range matches {
		if _, n, ok := parseName(filepath.Base(m)); ok && n > highest {
			highest = n
		}
	}
	return highest + 1
}

func parseName(base string) (day string, run int, ok bool) {
	rest, found := strings.CutPrefix(base, filePrefix)
	if !found {
		return "", 0, false
	}
	rest, found = strings.CutSuffix(rest, ".log")
	if !found {
		return "", 0, false
	}
	day, num, found := strings.Cut(rest, "_")
	if !found {
		return "", 0, false
	}
	if _, err := time.Parse(dateLayout, day); err != nil {
		return "", 0, false
	}
	run, err := strconv.Atoi(num)
	if err != nil || run < 1 {
		return "", 0, false
	}
	return day, run, true
}

// prunable lists run files beyond the newest keep, oldest first.
func prunable(dir string, keep int) []string {
	type runFile struct {
		path string
		day  string
		run  int
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var runs []runFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if day, n, ok := parseName(e.Name()); ok {
			runs = append(runs, runFile{filepath.Join(dir, e.Name()), day, n})
		}
	}
	if len(runs) <= keep {
		return nil
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].day != runs[j].day {
			return runs[i].day < runs[j].day
		}
		return runs[i].run < runs[j].run
	})
	out := make([]string, 0, len(runs)-keep)
	for _, r := range runs[:len(runs)-keep] {
		out = append(out, r.path)
	}
	return out
}

// Path returns the current log file, empty before Init.
func (l *Logger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Log writes one line.
func (l *Logger) Log(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.write(message)
}

// Logf writes one formatted line.
func (l *Logger) Logf(format string, args ...interface{}) {
	l.Log(fmt.Sprintf(format, args...))
}

// Tagged returns a log func that prefixes lines with [tag], in the shape
// the services take.
func (l *Logger) Tagged(tag string) func(string) {
	prefix := "[" + tag + "] "
	return func(message string) {
		l.Log(prefix + message)
	}
}

func (l *Logger) write(message string) {
	if l.echo != nil {
		fmt.Fprintln(l.echo, message)
	}
	if l.file == nil {
		return
	}
	fmt.Fprintf(l.file, "[%s] %s\n", time.Now().Format("15:04:05.000"), message)
}

// Close writes the closing line and closes the file.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.write("slidedeck run finished")
		l.file.Close()
		l.file = nil
	}
}
