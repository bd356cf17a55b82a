// Package host is the host side of the editor protocol. It answers the
// core's requests, writes pushed previews into an editor settings file and
// runs imports and exports.
package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jsvensson/themelab/internal/config"
	"github.com/jsvensson/themelab/internal/exporter"
	"github.com/jsvensson/themelab/internal/importer"
	"github.com/jsvensson/themelab/internal/protocol"
	"github.com/jsvensson/themelab/internal/theme"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("themelab.host")

// ErrNoPicker is returned when an import is requested without a picker.
var ErrNoPicker = errors.New("no import picker configured")

// Peer receives messages for the editor core.
type Peer interface {
	Post(msg protocol.Message)
}

// Picker asks the user for a theme file to import. An empty path without
// error means the user cancelled.
type Picker interface {
	PickTheme(ctx context.Context) (string, error)
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(ctx context.Context) (string, error)

// PickTheme implements Picker.
func (f PickerFunc) PickTheme(ctx context.Context) (string, error) { return f(ctx) }

// Options configure a Host.
type Options struct {
	Picker Picker
	// Notify receives short user facing notices, such as export results.
	Notify func(text string)
}

// Host serves one editor core.
type Host struct {
	ctx    context.Context
	cfg    *config.Config
	core   Peer
	picker Picker
	notify func(string)

	mu   sync.Mutex
	last *theme.Model
}

// New returns a host answering the core through core.
func New(ctx context.Context, cfg *config.Config, core Peer, opts Options) *Host {
	notify := opts.Notify
	if notify == nil {
		notify = func(string) {}
	}
	return &Host{
		ctx:    ctx,
		cfg:    cfg,
		core:   core,
		picker: opts.Picker,
		notify: notify,
	}
}

// Handle processes one message from the core. Failures are logged and
// reported through the notice callback; they never reach the core.
func (h *Host) Handle(msg protocol.Message) {
	var err error
	switch msg.Type {
	case protocol.RequestBoot:
		err = h.boot()
	case protocol.RequestImport:
		err = h.pickAndImport()
	case protocol.RequestUseCurrent:
		err = h.useCurrent()
	case protocol.RequestStartBlank:
		h.core.Post(protocol.MustNew(protocol.LoadImported, theme.New()))
	case protocol.RequestExportJSON, protocol.RequestSaveTheme:
		_, err = h.Export(exporter.FormatJSON)
	case protocol.RequestExportCSS:
		_, err = h.Export(exporter.FormatCSS)
	case protocol.RequestExportVSIX:
		_, err = h.Export(exporter.FormatVSIX)
	case protocol.RequestExportHCL:
		_, err = h.Export(exporter.FormatHCL)
	case protocol.ApplyPreview:
		err = h.applyPreview(protocol.DecodeModel(msg.Payload))
	case protocol.Locate:
		h.core.Post(protocol.Message{Type: protocol.Locate, Payload: msg.Payload})
	default:
		log.Debugf("ignoring message %s", msg.Type)
	}
	if err != nil {
		log.Warningf("%s: %s", msg.Type, err)
		h.notify(err.Error())
	}
}

// LastModel returns the model of the last preview push.
func (h *Host) LastModel() (theme.Model, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return theme.Model{}, false
	}
	return h.last.Clone(), true
}

func (h *Host) boot() error {
	settings, err := ReadSettings(h.cfg.SettingsFile())
	if err != nil {
		log.Warningf("starting without settings: %s", err)
		settings = theme.New()
	}
	msg, err := protocol.New(protocol.Boot, protocol.BootPayload{
		Categories: h.cfg.Categories,
		Settings:   []byte(settings.Canonical()),
	})
	if err != nil {
		return err
	}
	h.core.Post(msg)
	return nil
}

func (h *Host) pickAndImport() error {
	if h.picker == nil {
		return ErrNoPicker
	}
	path, err := h.picker.PickTheme(h.ctx)
	if err != nil {
		return fmt.Errorf("picking theme: %w", err)
	}
	if path == "" {
		return nil
	}
	return h.Import(path)
}

// Import reads a theme file and loads it into the core, replacing the
// model.
func (h *Host) Import(path string) error {
	m, err := importer.File(path)
	if err != nil {
		return err
	}
	log.Infof("imported %s", path)
	h.core.Post(protocol.MustNew(protocol.LoadImported, m))
	return nil
}

func (h *Host) useCurrent() error {
	current, err := h.Current()
	if err != nil {
		return err
	}
	h.core.Post(protocol.MustNew(protocol.LoadCurrent, current))
	return nil
}

// Current combines the active theme file with the customizations in the
// settings file. Settings colors win, settings token rules come first and
// settings semantic rules override the theme's in place.
func (h *Host) Current() (theme.Model, error) {
	settings, err := ReadSettings(h.cfg.SettingsFile())
	if err != nil {
		return theme.Model{}, err
	}
	active := theme.New()
	if p := h.cfg.Settings.ActiveTheme; p != "" {
		if m, err := importer.File(p); err != nil {
			log.Warningf("ignoring active theme: %s", err)
		} else {
			active = m
		}
	}
	return Combine(active, settings), nil
}

// Combine overlays settings customizations on an active theme.
func Combine(active, settings theme.Model) theme.Model {
	out := theme.New()
	for k, v := range active.Colors {
		out.Colors[k] = v
	}
	for k, v := range settings.Colors {
		out.Colors[k] = v
	}
	out.TokenRules = append(out.TokenRules, settings.Clone().TokenRules...)
	out.TokenRules = append(out.TokenRules, active.Clone().TokenRules...)
	out.SemanticRules = active.SemanticRules.Clone()
	for _, k := range settings.SemanticRules.Keys() {
		v, _ := settings.SemanticRules.Get(k)
		out.SemanticRules.Set(k, v)
	}
	return out
}

func (h *Host) applyPreview(m theme.Model) error {
	h.mu.Lock()
	h.last = &m
	h.mu.Unlock()

	path := h.cfg.SettingsFile()
	if path == "" {
		return errors.New("no settings file configured")
	}
	if err := WriteSettings(path, m); err != nil {
		return err
	}
	log.Debugf("preview written to %s", path)
	return nil
}

// Export writes the last pushed model in the given format to the export
// directory and returns the written path. Before any push the settings
// file stands in for the model.
func (h *Host) Export(f exporter.Format) (string, error) {
	m, ok := h.LastModel()
	if !ok {
		var err error
		if m, err = ReadSettings(h.cfg.SettingsFile()); err != nil {
			return "", err
		}
	}
	meta := exporter.Meta{Name: h.cfg.Export.Name, Type: h.cfg.Export.Type}
	data, err := exporter.Encode(f, meta, m)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(h.cfg.Export.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(h.cfg.Export.Dir, exporter.FileName(meta, f.Ext()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	log.Infof("exported %s", path)
	h.notify("Exported " + path)
	return path, nil
}
