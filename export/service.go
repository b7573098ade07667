package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"slidedeck/model"
)

const logTagExport = "[EXPORT]"

// Observer is told about every finished export. The metrics package
// implements it.
type Observer interface {
	ExportFinished(format Format, elapsed time.Duration, diagnostics []Diagnostic, err error)
}

// Outcome is what ExportAsync delivers.
type Outcome struct {
	Result Result
	Err    error
}

// Service dispatches export requests to the encoder for each format.
type Service struct {
	mu       sync.RWMutex
	encoders map[Format]Encoder
	observer Observer
	logger   func(string)
}

// NewService creates a service with the built-in encoders registered.
// Either argument may be nil.
func NewService(observer Observer, logger func(string)) *Service {
	s := &Service{
		encoders: make(map[Format]Encoder),
		observer: observer,
		logger:   logger,
	}
	s.Register(FormatPPTX, NewPPTXEncoder())
	s.Register(FormatPDF, NewPDFEncoder())
	s.Register(FormatHTML, NewHTMLEncoder())
	s.Register(FormatImages, NewImageArchiveEncoder())
	s.Register(FormatJSON, NewJSONEncoder())
	s.Register(FormatHandout, NewHandoutEncoder())
	s.Register(FormatPrintPDF, NewPrintedPDFEncoder())
	return s
}

// Register installs or replaces the encoder for a format.
func (s *Service) Register(f Format, e Encoder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.encoders[f] = e
}

func (s *Service) log(msg string) {
	if s.logger != nil {
		s.logger(msg)
	}
}

// Export encodes p in the given format. p is copied first, so the caller
// may keep editing its own value while the export runs.
func (s *Service) Export(ctx context.Context, f Format, p model.Presentation, opts Options) (Result, error) {
	return s.export(ctx, f, p.Clone(), opts)
}

// ExportAsync starts an export on a copy of p and returns a channel that
// receives exactly one outcome. Cancelling ctx aborts the export.
func (s *Service) ExportAsync(ctx context.Context, f Format, p model.Presentation, opts Options) <-chan Outcome {
	snapshot := p.Clone()
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		res, err := s.export(ctx, f, snapshot, opts)
		out <- Outcome{Result: res, Err: err}
	}()
	return out
}

func (s *Service) export(ctx context.Context, f Format, p model.Presentation, opts Options) (Result, error) {
	s.mu.RLock()
	enc, ok := s.encoders[f]
	s.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}

	s.log(fmt.Sprintf("%s Starting %s export of %d slides", logTagExport, f, p.Len()))
	start := time.Now()
	res, err := enc.Encode(ctx, p, opts)
	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.ExportFinished(f, elapsed, res.Diagnostics, err)
	}
	if err != nil {
		s.log(fmt.Sprintf("%s %s export failed after %s: %v", logTagExport, f, elapsed.Round(time.Millisecond), err))
		return Result{}, err
	}

	s.log(fmt.Sprintf("%s Exported %s (%s) in %s", logTagExport, res.Filename,
		humanize.Bytes(uint64(len(res.Data))), elapsed.Round(time.Millisecond)))
	for _, d := range res.Diagnostics {
		s.log(fmt.Sprintf("%s %s", logTagExport, d))
	}
	return res, nil
}
