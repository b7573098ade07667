// Package editor holds the live editing session: the current presentation,
// its undo history, a one-slide clipboard and the autosave loop.
package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"slidedeck/history"
	"slidedeck/model"
	"slidedeck/native"
)

// Persister stores encoded documents under a name. store.Store satisfies it.
type Persister interface {
	Save(name string, data []byte) error
}

// Options configures a Session.
type Options struct {
	Defaults     model.Defaults
	HistoryLimit int
	Logger       func(string)
}

// Session owns the live presentation. Every edit is applied and recorded
// in history as one step under the session lock; edits that are not
// applied leave both untouched.
type Session struct {
	mu        sync.Mutex
	current   model.Presentation
	history   *history.Manager
	defaults  model.Defaults
	clipboard *model.Slide
	revision  uint64
	saved     uint64

	subMu       sync.Mutex
	subscribers map[int]func(model.Presentation)
	nextSub     int

	logger func(string)
}

// NewSession starts a session on a copy of p. An empty p is replaced with
// a one-slide deck.
func NewSession(p model.Presentation, opts Options) *Session {
	if p.Len() == 0 {
		p = model.New(opts.Defaults)
	}
	s := &Session{
		current:     p.Clone(),
		history:     history.New(opts.HistoryLimit),
		defaults:    opts.Defaults,
		subscribers: make(map[int]func(model.Presentation)),
		logger:      opts.Logger,
	}
	s.history.Reset(s.current)
	return s
}

func (s *Session) log(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger(fmt.Sprintf("[EDITOR] "+format, args...))
	}
}

// Subscribe registers fn to receive a copy of the presentation after every
// committed change. The returned func removes it. fn runs outside the
// session lock and may call back into the session.
func (s *Session) Subscribe(fn func(model.Presentation)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *Session) notify(p model.Presentation) {
	s.subMu.Lock()
	fns := make([]func(model.Presentation), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(p.Clone())
	}
}

// commit must be called with s.mu held. It returns the value to publish.
func (s *Session) commit(next model.Presentation, record bool) model.Presentation {
	s.current = next
	if record {
		s.history.Record(next)
	}
	s.revision++
	return next.Clone()
}

func (s *Session) apply(fn func(model.Presentation) (model.Presentation, model.Result)) model.Result {
	s.mu.Lock()
	next, r := fn(s.current)
	if !r.OK() {
		s.mu.Unlock()
		return r
	}
	published := s.commit(next, true)
	s.mu.Unlock()
	s.notify(published)
	return r
}

// Snapshot returns a deep copy of the live presentation.
func (s *Session) Snapshot() model.Presentation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Defaults returns the strings used for new slides.
func (s *Session) Defaults() model.Defaults {
	return s.defaults
}

// Replace swaps in a whole presentation, as after an import or a version
// restore. The swap is recorded and can be undone.
func (s *Session) Replace(p model.Presentation) {
	if p.Len() == 0 {
		p = model.New(s.defaults)
	}
	s.mu.Lock()
	published := s.commit(p.Clone(), true)
	s.mu.Unlock()
	s.log("Replaced presentation (%d slides)", p.Len())
	s.notify(published)
}

// Undo restores the previous snapshot. It reports false at the oldest one.
func (s *Session) Undo() bool {
	return s.step(s.history.Undo)
}

// Redo restores the next snapshot. It reports false at the newest one.
func (s *Session) Redo() bool {
	return s.step(s.history.Redo)
}

func (s *Session) step(move func() (model.Presentation, bool)) bool {
	s.mu.Lock()
	p, ok := move()
	if !ok {
		s.mu.Unlock()
		return false
	}
	published := s.commit(p, false)
	s.mu.Unlock()
	s.notify(published)
	return true
}

// CanUndo reports whether Undo would change anything.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether Redo would change anything.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// HistoryLen returns the number of recorded snapshots.
func (s *Session) HistoryLen() int { return s.history.Len() }

// CreateSlide appends a default slide and returns it.
func (s *Session) CreateSlide(layout model.Layout) model.Slide {
	var created model.Slide
	s.apply(func(p model.Presentation) (model.Presentation, model.Result) {
		var next model.Presentation
		next, created = p.CreateSlide(s.defaults, layout)
		return next, model.Applied
	})
	return created
}

// DeleteSlide removes the slide at index. The last slide is never removed.
func (s *Session) DeleteSlide(index int) model.Result {
	return s.apply(func(p model.Presentation) (model.Presentation, model.Result) {
		return p.DeleteSlide(index)
	})
}

// DuplicateSlide inserts a copy of the slide at index right after it.
func (s *Session) DuplicateSlide(index int) model.Result {
	return s.apply(func(p model.Presentation) (model.Presentation, model.Result) {
		return p.DuplicateSlide(s.defaults, index)
	})
}

// MoveSlide moves the slide at from to position to.
func (s *Session) MoveSlide(from, to int) model.Result {
	return s.apply(func(p model.Presentation) (model.Presentation, model.Result) {
		return p.MoveSlide(from, to)
	})
}

// UpdateSlide merges patch into the slide at index.
func (s *Session) UpdateSlide(index int, patch model.SlidePatch) model.Result {
	return s.apply(func(p model.Presentation) (model.Presentation, model.Result) {
		return p.UpdateSlide(index, patch)
	})
}

// ResetSlide returns the slide at index to its defaults and clears its
// elements and animations. Id and layout are kept.
func (s *Session) ResetSlide(index int) model.Result {
	return s.apply(func(p model.Presentation) (model.Presentation, model.Result) {
		return p.ResetSlide(s.defaults, index)
	})
}

// ApplyLayout sets the layout of the slide at index.
func (s *Session) ApplyLayout(index int, layout model.Layout) model.Result {
	return s.apply(func(p model.Presentation) (model.Presentation, model.Result) {
		return p.ApplyLayout(index, layout)
	})
}

// ApplyTheme sets the colours and layout of the slide at index from t.
func (s *Session) ApplyTheme(index int, t model.Theme) model.Result {
	return s.apply(func(p model.Presentation) (model.Presentation, model.Result) {
		return p.ApplyTheme(index, t)
	})
}

// AddElement adds e to the slide at index and returns its stored id.
func (s *Session) AddElement(index int, e model.Element) (model.ID, model.Result) {
	var id model.ID
	r := s.apply(func(p model.Presentation) (model.Presentation, model.Result) {
		var (
			next model.Presentation
			r    model.Result
		)
		next, id, r = p.AddElement(index, e)
		return next, r
	})
	return id, r
}

// UpdateElement patches element id on the slide at index.
func (s *Session) UpdateElement(index int, id model.ID, patch model.ElementPatch) model.Result {
	return s.apply(func(p model.Presentation) (model.Presentation, model.Result) {
		return p.UpdateElement(index, id, patch)
	})
}

// DeleteElement removes element id from the slide at index.
func (s *Session) DeleteElement(index int, id model.ID) model.Result {
	return s.apply(func(p model.Presentation) (model.Presentation, model.Result) {
		return p.DeleteElement(index, id)
	})
}

// AddAnimation attaches an effect to element elementID and returns its id.
func (s *Session) AddAnimation(index int, elementID model.ID, typ model.AnimationType) (model.ID, model.Result) {
	var id model.ID
	r := s.apply(func(p model.Presentation) (model.Presentation, model.Result) {
		var (
			next model.Presentation
			r    model.Result
		)
		next, id, r = p.AddAnimation(index, elementID, typ)
		return next, r
	})
	return id, r
}

// RemoveAnimation removes animation id from the slide at index.
func (s *Session) RemoveAnimation(index int, id model.ID) model.Result {
	return s.apply(func(p model.Presentation) (model.Presentation, model.Result) {
		return p.RemoveAnimation(index, id)
	})
}

// Copy puts a copy of the slide at index on the clipboard. The deck is not
// changed and nothing is recorded.
func (s *Session) Copy(index int) model.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide, ok := s.current.Slide(index)
	if !ok {
		return model.SlideNotFound
	}
	s.clipboard = &slide
	return model.Applied
}

// Paste appends the clipboard slide under a fresh id.
func (s *Session) Paste() (model.Slide, model.Result) {
	var pasted model.Slide
	r := s.apply(func(p model.Presentation) (model.Presentation, model.Result) {
		if s.clipboard == nil {
			return p, model.EmptyClipboard
		}
		slide := s.clipboard.Clone()
		slide.ID = model.NewID()
		pasted = slide.Clone()
		return p.InsertSlide(p.Len(), slide), model.Applied
	})
	return pasted, r
}

// Dirty reports whether the presentation changed since the last save.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision != s.saved
}

// Save encodes the presentation and hands it to p under name.
func (s *Session) Save(p Persister, name string) error {
	s.mu.Lock()
	snap, rev := s.current.Clone(), s.revision
	s.mu.Unlock()

	data, err := native.Encode(snap)
	if err != nil {
		return fmt.Errorf("encode %q: %w", name, err)
	}
	if err := p.Save(name, data); err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}

	s.mu.Lock()
	if rev > s.saved {
		s.saved = rev
	}
	s.mu.Unlock()
	s.log("Saved %q (%d slides, %s)", name, snap.Len(), humanize.Bytes(uint64(len(data))))
	return nil
}

// StartAutosave saves the presentation to p under name every interval
// while it is dirty. The loop stops when ctx is done; the returned channel
// is closed once it has.
func (s *Session) StartAutosave(ctx context.Context, interval time.Duration, p Persister, name string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !s.Dirty() {
					continue
				}
				if err := s.Save(p, name); err != nil {
					s.log("Autosave failed: %v", err)
				}
			}
		}
	}()
	return done
}
