package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/jsvensson/themelab/internal/theme"
	"pgregory.net/rapid"
)

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager() (*Manager, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(WithClock(clk.now)), clk
}

// edit records history and then applies one deterministic mutation.
func edit(m *Manager, model *theme.Model, i int) {
	m.Record(*model)
	_ = model.SetColor(fmt.Sprintf("key.%d", i%7), fmt.Sprintf("#%06X", i*4099%0xFFFFFF))
}

func TestRecordCoalesces(t *testing.T) {
	m, clk := newTestManager()
	model := theme.New()

	if !m.Record(model) {
		t.Fatal("first Record() = false, want true")
	}
	clk.advance(100 * time.Millisecond)
	if m.Record(model) {
		t.Error("Record() within 500ms = true, want false")
	}
	clk.advance(399 * time.Millisecond)
	if m.Record(model) {
		t.Error("Record() at 499ms = true, want false")
	}
	clk.advance(time.Millisecond)
	if !m.Record(model) {
		t.Error("Record() at 500ms = false, want true")
	}
	if u, _ := m.Depth(); u != 2 {
		t.Errorf("undo depth = %d, want 2", u)
	}
}

func TestUndoRedo(t *testing.T) {
	m, clk := newTestManager()
	model := theme.New()
	start := model.Clone()

	edit(m, &model, 1)
	afterFirst := model.Clone()
	clk.advance(time.Second)
	edit(m, &model, 2)
	afterSecond := model.Clone()

	prev, ok := m.Undo(model)
	if !ok || !prev.Equal(afterFirst) {
		t.Fatalf("Undo() = %s, %v; want %s", prev.Canonical(), ok, afterFirst.Canonical())
	}
	model = prev

	prev, ok = m.Undo(model)
	if !ok || !prev.Equal(start) {
		t.Fatalf("second Undo() = %s, %v; want %s", prev.Canonical(), ok, start.Canonical())
	}
	model = prev

	if _, ok := m.Undo(model); ok {
		t.Error("Undo() on empty stack = true, want false")
	}

	next, ok := m.Redo(model)
	if !ok || !next.Equal(afterFirst) {
		t.Fatalf("Redo() = %s, %v; want %s", next.Canonical(), ok, afterFirst.Canonical())
	}
	model = next

	next, ok = m.Redo(model)
	if !ok || !next.Equal(afterSecond) {
		t.Fatalf("second Redo() = %s, %v; want %s", next.Canonical(), ok, afterSecond.Canonical())
	}
}

func TestNewEditClearsRedo(t *testing.T) {
	m, clk := newTestManager()
	model := theme.New()

	edit(m, &model, 1)
	clk.advance(time.Second)
	edit(m, &model, 2)

	prev, _ := m.Undo(model)
	model = prev
	if _, r := m.Depth(); r != 1 {
		t.Fatalf("redo depth after undo = %d, want 1", r)
	}

	clk.advance(time.Second)
	edit(m, &model, 3)
	if _, r := m.Depth(); r != 0 {
		t.Errorf("redo depth after new edit = %d, want 0", r)
	}
	if _, ok := m.Redo(model); ok {
		t.Error("Redo() after new edit = true, want false")
	}
}

func TestDepthIsBounded(t *testing.T) {
	m, clk := newTestManager()
	model := theme.New()
	for i := range 80 {
		edit(m, &model, i)
		clk.advance(time.Second)
	}
	if u, _ := m.Depth(); u != DefaultDepth {
		t.Errorf("undo depth = %d, want %d", u, DefaultDepth)
	}
}

func TestResetAndDirty(t *testing.T) {
	m, clk := newTestManager()
	model := theme.New()
	_ = model.SetColor("editor.background", "#101010")
	m.Reset(model)

	if m.Dirty(model) {
		t.Error("Dirty() right after Reset() = true")
	}
	edit(m, &model, 1)
	if !m.Dirty(model) {
		t.Error("Dirty() after edit = false")
	}

	clk.advance(time.Second)
	m.Reset(model)
	if u, r := m.Depth(); u != 0 || r != 0 {
		t.Errorf("Depth() after Reset = %d, %d; want 0, 0", u, r)
	}
	if m.Dirty(model) {
		t.Error("Dirty() after second Reset() = true")
	}
	if !m.Record(model) {
		t.Error("Record() right after Reset() = false, want true")
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	m, _ := newTestManager()
	model := theme.New()
	_ = model.SetColor("a", "#111111")
	m.Record(model)
	_ = model.SetColor("a", "#222222")

	prev, _ := m.Undo(model)
	if got := prev.Colors["a"]; got != "#111111" {
		t.Errorf("snapshot color = %q, want #111111", got)
	}
}

func TestEditRightAfterUndoClearsRedo(t *testing.T) {
	m, clk := newTestManager()
	model := theme.New()

	edit(m, &model, 1)
	clk.advance(time.Second)
	edit(m, &model, 2)
	clk.advance(100 * time.Millisecond)
	prev, _ := m.Undo(model)
	model = prev

	clk.advance(100 * time.Millisecond)
	if !m.Record(model) {
		t.Fatal("Record() right after Undo() = false, want true")
	}
	if _, r := m.Depth(); r != 0 {
		t.Errorf("redo depth = %d, want 0", r)
	}
}

func TestUndoRestoresStartProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 120).Draw(rt, "edits")
		gap := rapid.IntRange(500, 5000).Draw(rt, "gapMs")

		m, clk := newTestManager()
		model := theme.New()
		for i := range n {
			edit(m, &model, i+1)
			clk.advance(time.Duration(gap) * time.Millisecond)
		}

		want := min(n, DefaultDepth)
		if u, _ := m.Depth(); u != want {
			rt.Fatalf("undo depth after %d edits = %d, want %d", n, u, want)
		}

		// Replay the same edits to find the model the undo chain ends at.
		expected := theme.New()
		for i := range n - want {
			_ = expected.SetColor(fmt.Sprintf("key.%d", (i+1)%7), fmt.Sprintf("#%06X", (i+1)*4099%0xFFFFFF))
		}

		for range want {
			prev, ok := m.Undo(model)
			if !ok {
				rt.Fatal("Undo() returned false before the stack was drained")
			}
			model = prev
		}
		if !model.Equal(expected) {
			rt.Fatalf("after %d undos model = %s, want %s", want, model.Canonical(), expected.Canonical())
		}
	})
}
