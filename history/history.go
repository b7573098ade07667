// Package history keeps a linear sequence of presentation snapshots with a
// cursor for undo and redo.
package history

import (
	"sync"

	"slidedeck/model"
)

// Manager owns the snapshot sequence. It never holds the live presentation;
// every snapshot is a private deep copy and every value returned is another
// copy.
type Manager struct {
	mu        sync.RWMutex
	snapshots []model.Presentation
	cursor    int
	limit     int
}

// New creates an empty history. A limit of zero or less keeps every
// snapshot; otherwise the oldest snapshots are dropped past limit.
func New(limit int) *Manager {
	return &Manager{cursor: -1, limit: limit}
}

// Record truncates everything after the cursor, appends a copy of p and
// moves the cursor onto it.
func (m *Manager) Record(p model.Presentation) {
	snap := p.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots = append(m.snapshots[:m.cursor+1], snap)
	if m.limit > 0 && len(m.snapshots) > m.limit {
		drop := len(m.snapshots) - m.limit
		kept := make([]model.Presentation, m.limit)
		copy(kept, m.snapshots[drop:])
		m.snapshots = kept
	}
	m.cursor = len(m.snapshots) - 1
}

// Undo steps the cursor back and returns the snapshot there. At the oldest
// snapshot it returns false and changes nothing.
func (m *Manager) Undo() (model.Presentation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor <= 0 {
		return model.Presentation{}, false
	}
	m.cursor--
	return m.snapshots[m.cursor].Clone(), true
}

// Redo steps the cursor forward and returns the snapshot there. At the
// newest snapshot it returns false and changes nothing.
func (m *Manager) Redo() (model.Presentation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor >= len(m.snapshots)-1 {
		return model.Presentation{}, false
	}
	m.cursor++
	return m.snapshots[m.cursor].Clone(), true
}

// Current returns the snapshot under the cursor.
func (m *Manager) Current() (model.Presentation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.cursor < 0 {
		return model.Presentation{}, false
	}
	return m.snapshots[m.cursor].Clone(), true
}

// CanUndo reports whether Undo would move the cursor.
func (m *Manager) CanUndo() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursor > 0
}

// CanRedo reports whether Redo would move the cursor.
func (m *Manager) CanRedo() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursor < len(m.snapshots)-1
}

// Len returns the number of stored snapshots.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}

// Cursor returns the index of the current snapshot, -1 when empty.
func (m *Manager) Cursor() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursor
}

// Reset discards every snapshot and starts over from p.
func (m *Manager) Reset(p model.Presentation) {
	snap := p.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = []model.Presentation{snap}
	m.cursor = 0
}

// Each calls fn for every snapshot from oldest to newest while holding the
// read lock, so a concurrent Record cannot truncate the sequence mid-walk.
func (m *Manager) Each(fn func(index int, p model.Presentation)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, s := range m.snapshots {
		fn(i, s.Clone())
	}
}
