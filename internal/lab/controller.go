// Package lab owns the live theme model and serializes every user intent,
// host message and timer behind one lock.
package lab

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jsvensson/themelab/internal/color"
	"github.com/jsvensson/themelab/internal/history"
	"github.com/jsvensson/themelab/internal/preview"
	"github.com/jsvensson/themelab/internal/protocol"
	"github.com/jsvensson/themelab/internal/session"
	"github.com/jsvensson/themelab/internal/theme"
	"github.com/jsvensson/themelab/internal/view"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("themelab.lab")

// Timings of the UI timers.
const (
	ScrollFrame = 16 * time.Millisecond
	PulseFor    = time.Second
)

// Peer receives messages for the host. Post must not block on the host.
type Peer interface {
	Post(msg protocol.Message)
}

// Options configure a Controller. Zero values select the defaults.
type Options struct {
	Store    session.Store
	Debounce time.Duration
	History  []history.Option
	// After schedules every timer; tests inject a manual clock.
	After preview.AfterFunc
}

// Controller is the core of the editor.
type Controller struct {
	mu    sync.Mutex
	ctx   context.Context
	peer  Peer
	store session.Store

	model theme.Model
	cats  []theme.Category
	state view.State
	doc   view.Document

	hist   *history.Manager
	push   *preview.Dispatcher
	scroll *preview.Task
	pulse  *preview.Task

	booted  bool
	updates chan struct{}
}

// New returns a Controller posting to peer. The document is empty until the
// host answers REQUEST_BOOT.
func New(ctx context.Context, peer Peer, opts Options) *Controller {
	if opts.Store == nil {
		opts.Store = session.NewMemoryStore()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = preview.DefaultDebounce
	}
	c := &Controller{
		ctx:     ctx,
		peer:    peer,
		store:   opts.Store,
		model:   theme.New(),
		state:   view.NewState(),
		hist:    history.New(opts.History...),
		scroll:  preview.NewTask(ScrollFrame, opts.After),
		pulse:   preview.NewTask(PulseFor, opts.After),
		updates: make(chan struct{}, 1),
	}
	c.push = preview.NewDispatcher(preview.NewTask(opts.Debounce, opts.After), func(m theme.Model) {
		c.peer.Post(protocol.MustNew(protocol.ApplyPreview, m))
	})
	c.renderLocked()
	return c
}

// Start asks the host for the initial settings.
func (c *Controller) Start() {
	c.peer.Post(protocol.MustNew(protocol.RequestBoot, nil))
}

// Close stops the timers and saves the session one last time.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.push.Cancel()
	c.scroll.Cancel()
	c.pulse.Cancel()
	if c.booted {
		c.saveLocked()
	}
}

// Updates signals after every change made outside Dispatch, such as host
// messages and timers. Signals coalesce.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

// Document returns the current document.
func (c *Controller) Document() view.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc
}

// Model returns a copy of the live model.
func (c *Controller) Model() theme.Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model.Clone()
}

// Categories returns the taxonomy received at boot.
func (c *Controller) Categories() []theme.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cats
}

// Dispatch applies one intent. Rejected input is kept as a draft and its
// error returned; the model is unchanged in that case.
func (c *Controller) Dispatch(in Intent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mi, ok := in.(modelIntent); ok {
		return c.applyLocked(mi)
	}

	switch in := in.(type) {
	case Undo:
		if prev, ok := c.hist.Undo(c.model); ok {
			c.restoreLocked(prev)
		}
	case Redo:
		if next, ok := c.hist.Redo(c.model); ok {
			c.restoreLocked(next)
		}
	case SelectLeftTab:
		c.state.LeftTab = in.Tab
		c.renderLocked()
		c.saveLocked()
	case SelectDemo:
		c.state.Demo = in.Tab
		c.renderLocked()
		c.saveLocked()
	case ToggleCategory:
		if c.state.OpenCats[in.Name] {
			delete(c.state.OpenCats, in.Name)
		} else {
			c.state.OpenCats[in.Name] = true
		}
		c.renderLocked()
		c.saveLocked()
	case Scroll:
		c.state.Scroll = max(in.Offset, 0)
		c.renderLocked()
		if !c.scroll.Pending() {
			c.scroll.Schedule(func() {
				c.mu.Lock()
				defer c.mu.Unlock()
				c.saveLocked()
			})
		}
	case Search:
		c.state.Search = in.Query
		c.renderLocked()
		c.saveLocked()
	case ToggleAdvanced:
		flags := c.state.TokenAdvanced
		if in.Panel == session.TabSemantic {
			flags = c.state.SemanticAdvanced
		}
		flags[in.Index] = !flags[in.Index]
		c.renderLocked()
	case ToggleDescription:
		c.state.DescExpanded[in.Key] = !c.state.DescExpanded[in.Key]
		c.renderLocked()
	case Locate:
		c.peer.Post(protocol.MustNew(protocol.Locate, protocol.LocatePayload{ElementID: in.ElementID}))
	case Request:
		c.requestLocked(in.Type)
	default:
		log.Warningf("unhandled intent %T", in)
	}
	return nil
}

func (c *Controller) applyLocked(in modelIntent) error {
	next := c.model.Clone()
	if err := in.apply(&next); err != nil {
		if errors.Is(err, errStale) {
			log.Debugf("ignoring %T: %s", in, err)
			return nil
		}
		if d, ok := in.(drafted); ok && errors.Is(err, color.ErrInvalidHex) {
			field, text := d.draft()
			c.state.Drafts[field] = text
			c.renderLocked()
		}
		return err
	}
	if d, ok := in.(drafted); ok {
		field, _ := d.draft()
		delete(c.state.Drafts, field)
	}

	switch in := in.(type) {
	case RemoveTokenRule:
		c.state.TokenAdvanced = shiftFlags(c.state.TokenAdvanced, in.Index)
		dropDrafts(c.state.Drafts, "token-")
	case RemoveSemanticRule, RenameSemanticSelector:
		c.state.SemanticAdvanced = map[int]bool{}
		dropDrafts(c.state.Drafts, "semantic:")
	}

	if next.Equal(c.model) {
		c.renderLocked()
		return nil
	}
	c.hist.Record(c.model)
	c.model = next
	c.renderLocked()
	c.schedulePushLocked()
	return nil
}

// restoreLocked installs a snapshot from undo or redo.
func (c *Controller) restoreLocked(m theme.Model) {
	c.model = m
	clear(c.state.Drafts)
	c.renderLocked()
	c.schedulePushLocked()
}

func (c *Controller) requestLocked(typ string) {
	switch typ {
	case protocol.RequestExportJSON, protocol.RequestExportCSS, protocol.RequestExportVSIX,
		protocol.RequestExportHCL, protocol.RequestSaveTheme:
		// Exports read the last pushed model, so push pending edits first.
		c.push.Cancel()
		c.flushLocked()
	}
	c.peer.Post(protocol.MustNew(typ, nil))
}

// Handle processes one message from the host.
func (c *Controller) Handle(msg protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch msg.Type {
	case protocol.Boot:
		c.bootLocked(msg)
	case protocol.LoadCurrent:
		c.loadLocked(theme.Merge(c.model, protocol.DecodeModel(msg.Payload)))
	case protocol.LoadImported:
		c.loadLocked(protocol.DecodeModel(msg.Payload))
	case protocol.Locate:
		c.locateLocked(protocol.DecodeLocate(msg.Payload))
	case protocol.UIUndo:
		if prev, ok := c.hist.Undo(c.model); ok {
			c.restoreLocked(prev)
		}
	case protocol.UIRedo:
		if next, ok := c.hist.Redo(c.model); ok {
			c.restoreLocked(next)
		}
	default:
		log.Debugf("ignoring message %s", msg.Type)
		return
	}
	c.notify()
}

func (c *Controller) bootLocked(msg protocol.Message) {
	cats, settings := protocol.DecodeBoot(msg.Payload)
	c.cats = cats
	c.model = settings

	if !c.booted {
		slot, ok, err := c.store.Load(c.ctx)
		switch {
		case err != nil:
			log.Warningf("could not restore session: %s", err)
		case ok:
			log.Infof("restoring session")
			c.model = slot.Model
			c.state = view.FromUI(slot.UI)
		}
	}
	c.booted = true

	c.hist.Reset(c.model)
	c.renderLocked()
}

func (c *Controller) loadLocked(m theme.Model) {
	c.model = m
	clear(c.state.Drafts)
	c.state.TokenAdvanced = map[int]bool{}
	c.state.SemanticAdvanced = map[int]bool{}
	c.hist.Reset(c.model)
	c.renderLocked()
	c.schedulePushLocked()
}

func (c *Controller) locateLocked(id string) {
	if id == "" {
		return
	}
	if key, ok := view.KeyFromRowID(id); ok {
		cat, found := view.CategoryOf(c.cats, key)
		if !found {
			return
		}
		c.state.LeftTab = session.TabColors
		c.state.OpenCats[cat] = true
		c.renderLocked()
		if line, ok := c.doc.ColorLine(key); ok {
			c.state.Scroll = line
		}
	} else {
		tab, ok := strings.CutPrefix(id, "demo-")
		if !ok {
			return
		}
		if _, ok := c.doc.Surface(id); !ok {
			return
		}
		c.state.Demo = tab
	}

	c.state.Pulse = id
	c.renderLocked()
	c.saveLocked()
	c.pulse.Schedule(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state.Pulse != id {
			return
		}
		c.state.Pulse = ""
		c.renderLocked()
		c.notify()
	})
}

func (c *Controller) schedulePushLocked() {
	c.push.Schedule(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.flushLocked()
	})
}

// flushLocked pushes the model if it changed since the last push and saves
// the session alongside.
func (c *Controller) flushLocked() {
	if c.push.Flush(c.model) {
		c.saveLocked()
	}
}

func (c *Controller) saveLocked() {
	slot := session.Slot{Model: c.model.Clone(), UI: c.state.UI()}
	if err := c.store.Save(c.ctx, slot); err != nil {
		log.Warningf("could not save session: %s", err)
	}
}

func (c *Controller) renderLocked() {
	c.state.Undo, c.state.Redo = c.hist.Depth()
	c.state.Dirty = c.hist.Dirty(c.model)
	c.doc = view.Build(c.model, c.cats, c.state)
}

func (c *Controller) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// shiftFlags drops the flag at removed and moves later flags down by one.
func shiftFlags(flags map[int]bool, removed int) map[int]bool {
	out := make(map[int]bool, len(flags))
	for i, v := range flags {
		switch {
		case i < removed:
			out[i] = v
		case i > removed:
			out[i-1] = v
		}
	}
	return out
}

func dropDrafts(drafts map[string]string, prefix string) {
	for k := range drafts {
		if strings.HasPrefix(k, prefix) {
			delete(drafts, k)
		}
	}
}
