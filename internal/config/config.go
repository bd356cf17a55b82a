// Package config loads the themelab configuration file and the color
// taxonomy shown in the colors panel.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/jsvensson/themelab/internal/theme"
)

//go:embed categories.hcl
var defaultCategories []byte

// Defaults.
const (
	DefaultDebounce  = 120 * time.Millisecond
	DefaultDepth     = 50
	DefaultCoalesce  = 500 * time.Millisecond
	DefaultWorkspace = "default"
	DefaultName      = "Design Lab Theme"
	DefaultType      = "dark"

	// DefaultSettingsFile is the workspace settings file, relative to the
	// working directory.
	DefaultSettingsFile = ".vscode/settings.json"
)

// Config is the resolved configuration. Every field has a usable value.
type Config struct {
	Preview    Preview
	History    History
	Session    Session
	Settings   Settings
	Export     Export
	Categories []theme.Category
}

// Preview configures the debounced push to the host.
type Preview struct {
	Debounce         time.Duration
	ApplyToWorkspace bool
}

// History configures undo/redo.
type History struct {
	Depth    int
	Coalesce time.Duration
}

// Session configures UI state persistence.
type Session struct {
	Path      string // sqlite database; empty keeps the session in memory
	Workspace string
}

// Settings locates the editor settings files the host writes previews to.
type Settings struct {
	Workspace   string
	User        string
	ActiveTheme string // theme file merged under settings by "use current"
}

// Export configures where and under which name themes are exported.
type Export struct {
	Dir  string
	Name string
	Type string
}

// SettingsFile returns the settings file previews are written to.
func (c *Config) SettingsFile() string {
	if c.Preview.ApplyToWorkspace {
		return c.Settings.Workspace
	}
	return c.Settings.User
}

// file mirrors the HCL layout. Pointer fields tell absent from zero.
type file struct {
	Preview *struct {
		DebounceMS       *int  `hcl:"debounce_ms,optional"`
		ApplyToWorkspace *bool `hcl:"apply_to_workspace,optional"`
	} `hcl:"preview,block"`
	History *struct {
		Depth      *int `hcl:"depth,optional"`
		CoalesceMS *int `hcl:"coalesce_ms,optional"`
	} `hcl:"history,block"`
	Session *struct {
		Path      *string `hcl:"path,optional"`
		Workspace *string `hcl:"workspace,optional"`
	} `hcl:"session,block"`
	Settings *struct {
		Workspace   *string `hcl:"workspace,optional"`
		User        *string `hcl:"user,optional"`
		ActiveTheme *string `hcl:"active_theme,optional"`
	} `hcl:"settings,block"`
	Export *struct {
		Dir  *string `hcl:"dir,optional"`
		Name *string `hcl:"name,optional"`
		Type *string `hcl:"type,optional"`
	} `hcl:"export,block"`
	CategoriesFile string          `hcl:"categories_file,optional"`
	Categories     []categoryBlock `hcl:"category,block"`
}

type categoryBlock struct {
	Name  string      `hcl:"name,label"`
	Items []itemBlock `hcl:"item,block"`
}

type itemBlock struct {
	Key         string `hcl:"key,label"`
	Description string `hcl:"description,optional"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cats, err := DefaultCategories()
	if err != nil {
		panic("config: embedded categories: " + err.Error())
	}
	return &Config{
		Preview:    Preview{Debounce: DefaultDebounce, ApplyToWorkspace: true},
		History:    History{Depth: DefaultDepth, Coalesce: DefaultCoalesce},
		Session:    Session{Path: defaultSessionPath(), Workspace: DefaultWorkspace},
		Settings:   Settings{Workspace: DefaultSettingsFile, User: defaultUserSettings()},
		Export:     Export{Dir: ".", Name: DefaultName, Type: DefaultType},
		Categories: cats,
	}
}

// Load reads the configuration file at path. An empty path returns the
// defaults. Relative paths in the file resolve against its directory.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes a configuration file held in memory.
func Parse(src []byte, filename string) (*Config, error) {
	f, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing HCL: %s", diags.Error())
	}
	var raw file
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("decoding config: %s", diags.Error())
	}

	cfg := Default()
	base := filepath.Dir(filename)

	if p := raw.Preview; p != nil {
		if p.DebounceMS != nil {
			cfg.Preview.Debounce = millis(*p.DebounceMS)
		}
		if p.ApplyToWorkspace != nil {
			cfg.Preview.ApplyToWorkspace = *p.ApplyToWorkspace
		}
	}
	if h := raw.History; h != nil {
		if h.Depth != nil {
			if *h.Depth < 1 {
				return nil, fmt.Errorf("history.depth must be at least 1, got %d", *h.Depth)
			}
			cfg.History.Depth = *h.Depth
		}
		if h.CoalesceMS != nil {
			cfg.History.Coalesce = millis(*h.CoalesceMS)
		}
	}
	if s := raw.Session; s != nil {
		if s.Path != nil {
			cfg.Session.Path = resolvePath(base, *s.Path)
		}
		if s.Workspace != nil {
			cfg.Session.Workspace = *s.Workspace
		}
	}
	if s := raw.Settings; s != nil {
		if s.Workspace != nil {
			cfg.Settings.Workspace = resolvePath(base, *s.Workspace)
		}
		if s.User != nil {
			cfg.Settings.User = resolvePath(base, *s.User)
		}
		if s.ActiveTheme != nil {
			cfg.Settings.ActiveTheme = resolvePath(base, *s.ActiveTheme)
		}
	}
	if e := raw.Export; e != nil {
		if e.Dir != nil {
			cfg.Export.Dir = resolvePath(base, *e.Dir)
		}
		if e.Name != nil {
			cfg.Export.Name = *e.Name
		}
		if e.Type != nil {
			cfg.Export.Type = *e.Type
		}
	}

	switch {
	case len(raw.Categories) > 0:
		cfg.Categories = toCategories(raw.Categories)
	case raw.CategoriesFile != "":
		data, err := os.ReadFile(resolvePath(base, raw.CategoriesFile))
		if err != nil {
			return nil, fmt.Errorf("reading categories file: %w", err)
		}
		cats, err := ParseTaxonomy(data)
		if err != nil {
			return nil, err
		}
		cfg.Categories = cats
	}
	return cfg, nil
}

// DefaultCategories returns the embedded color taxonomy.
func DefaultCategories() ([]theme.Category, error) {
	f, diags := hclsyntax.ParseConfig(defaultCategories, "categories.hcl", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing categories: %s", diags.Error())
	}
	var raw struct {
		Categories []categoryBlock `hcl:"category,block"`
	}
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("decoding categories: %s", diags.Error())
	}
	return toCategories(raw.Categories), nil
}

// ParseTaxonomy reads a JSON color template of the form
// {"colors": {"<group>": {"<key>": {"description": "..."}}}}, keeping the
// order groups and keys are written in.
func ParseTaxonomy(data []byte) ([]theme.Category, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("reading taxonomy: %w", err)
	}
	var cats []theme.Category
	for dec.More() {
		key, err := nextKey(dec)
		if err != nil {
			return nil, fmt.Errorf("reading taxonomy: %w", err)
		}
		if key != "colors" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("reading taxonomy: %w", err)
			}
			continue
		}
		cats, err = decodeGroups(dec)
		if err != nil {
			return nil, fmt.Errorf("reading taxonomy: %w", err)
		}
	}
	return cats, nil
}

func decodeGroups(dec *json.Decoder) ([]theme.Category, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var cats []theme.Category
	for dec.More() {
		name, err := nextKey(dec)
		if err != nil {
			return nil, err
		}
		cat := theme.Category{Name: name, Items: []theme.Item{}}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
		for dec.More() {
			key, err := nextKey(dec)
			if err != nil {
				return nil, err
			}
			var info struct {
				Description string `json:"description"`
			}
			if err := dec.Decode(&info); err != nil {
				return nil, fmt.Errorf("item %q: %w", key, err)
			}
			cat.Items = append(cat.Items, theme.Item{Key: key, Description: info.Description})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		cats = append(cats, cat)
	}
	return cats, expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func nextKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func toCategories(blocks []categoryBlock) []theme.Category {
	cats := make([]theme.Category, 0, len(blocks))
	for _, b := range blocks {
		cat := theme.Category{Name: b.Name, Items: make([]theme.Item, 0, len(b.Items))}
		for _, it := range b.Items {
			cat.Items = append(cat.Items, theme.Item{Key: it.Key, Description: it.Description})
		}
		cats = append(cats, cat)
	}
	return cats
}

func millis(n int) time.Duration {
	return time.Duration(max(n, 0)) * time.Millisecond
}

// resolvePath expands a leading ~ and anchors relative paths at base.
func resolvePath(base, p string) string {
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func defaultSessionPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "themelab", "session.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "themelab", "session.db")
}

func defaultUserSettings() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "Code", "User", "settings.json")
}
