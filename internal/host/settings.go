package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsvensson/themelab/internal/protocol"
	"github.com/jsvensson/themelab/internal/theme"
	"github.com/tailscale/hujson"
)

// Editor settings keys written by previews.
const (
	ColorsKey   = "workbench.colorCustomizations"
	TokensKey   = "editor.tokenColorCustomizations"
	SemanticKey = "editor.semanticTokenColorCustomizations"
)

// ReadSettings returns the theme customizations of a settings file. A
// missing file yields an empty model.
func ReadSettings(path string) (theme.Model, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return theme.New(), nil
	}
	if err != nil {
		return theme.Model{}, fmt.Errorf("reading settings: %w", err)
	}
	return decodeSettings(data)
}

func decodeSettings(data []byte) (theme.Model, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return theme.New(), nil
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return theme.Model{}, fmt.Errorf("decoding settings: %w", err)
	}
	var s map[string]json.RawMessage
	if err := json.Unmarshal(std, &s); err != nil {
		return theme.Model{}, fmt.Errorf("decoding settings: %w", err)
	}
	payload, err := json.Marshal(map[string]json.RawMessage{
		"colors":         s[ColorsKey],
		"tokenColors":    s[TokensKey],
		"semanticTokens": s[SemanticKey],
	})
	if err != nil {
		return theme.Model{}, err
	}
	return protocol.DecodeModel(payload), nil
}

// WriteSettings stores m in the settings file at path, replacing the three
// customization keys and keeping everything else, comments included.
func WriteSettings(path string, m theme.Model) error {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data = nil
	case err != nil:
		return fmt.Errorf("reading settings: %w", err)
	}

	out, err := patchSettings(data, m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func patchSettings(data []byte, m theme.Model) ([]byte, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		data = []byte("{}")
	}
	v, err := hujson.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}

	m = m.Clone()
	tokenRules := m.TokenRules
	if tokenRules == nil {
		tokenRules = []theme.TokenRule{}
	}
	ops := []patchOp{
		{"add", pointer(ColorsKey), m.Colors},
		{"add", pointer(TokensKey), map[string]any{"textMateRules": tokenRules}},
		{"add", pointer(SemanticKey), map[string]any{"enabled": true, "rules": m.SemanticRules}},
	}
	patch, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("encoding settings patch: %w", err)
	}
	if err := v.Patch(patch); err != nil {
		return nil, fmt.Errorf("patching settings: %w", err)
	}
	v.Format()
	return v.Pack(), nil
}

// pointer returns the JSON pointer of a top-level member.
func pointer(key string) string {
	key = strings.ReplaceAll(key, "~", "~0")
	key = strings.ReplaceAll(key, "/", "~1")
	return "/" + key
}
