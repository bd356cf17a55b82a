// Package history keeps bounded undo and redo stacks of whole theme model
// snapshots.
package history

import (
	"time"

	"github.com/jsvensson/themelab/internal/theme"
)

const (
	// DefaultDepth is the maximum number of snapshots kept per stack.
	DefaultDepth = 50

	// DefaultInterval is the window in which successive edits coalesce into
	// one undo step.
	DefaultInterval = 500 * time.Millisecond
)

// Manager records snapshots taken before edits. It is not safe for
// concurrent use; the owning controller serializes access.
type Manager struct {
	depth    int
	interval time.Duration
	now      func() time.Time

	undo     []theme.Model
	redo     []theme.Model
	last     time.Time
	baseline string
}

// Option configures a Manager.
type Option func(*Manager)

// WithDepth overrides the stack depth.
func WithDepth(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.depth = n
		}
	}
}

// WithInterval overrides the coalescing window.
func WithInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.interval = d
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// New returns an empty Manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		depth:    DefaultDepth,
		interval: DefaultInterval,
		now:      time.Now,
		baseline: theme.New().Canonical(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Record pushes a copy of the pre-edit model onto the undo stack and clears
// the redo stack, unless the previous snapshot was taken within the
// coalescing window. It reports whether a snapshot was taken.
func (m *Manager) Record(current theme.Model) bool {
	now := m.now()
	if !m.last.IsZero() && now.Sub(m.last) < m.interval {
		return false
	}
	m.undo = push(m.undo, current.Clone(), m.depth)
	m.redo = m.redo[:0]
	m.last = now
	return true
}

// Undo returns the most recent snapshot and saves current for redo. It
// returns false when there is nothing to undo. The next Record after an
// undo or redo always snapshots, so it clears the redo stack.
func (m *Manager) Undo(current theme.Model) (theme.Model, bool) {
	if len(m.undo) == 0 {
		return theme.Model{}, false
	}
	prev := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = push(m.redo, current.Clone(), m.depth)
	m.last = time.Time{}
	return prev, true
}

// Redo is the inverse of Undo.
func (m *Manager) Redo(current theme.Model) (theme.Model, bool) {
	if len(m.redo) == 0 {
		return theme.Model{}, false
	}
	next := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = push(m.undo, current.Clone(), m.depth)
	m.last = time.Time{}
	return next, true
}

// Reset drops both stacks and takes current as the clean baseline.
func (m *Manager) Reset(current theme.Model) {
	m.undo = nil
	m.redo = nil
	m.last = time.Time{}
	m.baseline = current.Canonical()
}

// Dirty reports whether current differs from the baseline.
func (m *Manager) Dirty(current theme.Model) bool {
	return current.Canonical() != m.baseline
}

// Depth returns the sizes of the undo and redo stacks.
func (m *Manager) Depth() (undo, redo int) {
	return len(m.undo), len(m.redo)
}

func push(stack []theme.Model, s theme.Model, depth int) []theme.Model {
	stack = append(stack, s)
	if over := len(stack) - depth; over > 0 {
		stack = append(stack[:0], stack[over:]...)
	}
	return stack
}
