// Package importer reads theme files (JSON, JSONC, VSIX archives and HCL
// theme documents) into a theme.Model.
package importer

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jsvensson/themelab/internal/parser"
	"github.com/jsvensson/themelab/internal/protocol"
	"github.com/jsvensson/themelab/internal/theme"
	"github.com/tailscale/hujson"
)

// ErrUnsupportedFormat is returned for files whose extension names no known
// theme format.
var ErrUnsupportedFormat = errors.New("unsupported theme format")

// Format is a theme file format.
type Format string

const (
	JSON  Format = "json"
	JSONC Format = "jsonc"
	VSIX  Format = "vsix"
	HCL   Format = "hcl"
)

// Formats lists the importable formats in picker order.
var Formats = []Format{JSON, JSONC, VSIX, HCL}

// FormatOf returns the format named by the extension of path.
func FormatOf(p string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(p)), ".")
	for _, f := range Formats {
		if string(f) == ext {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(p))
}

// File reads and decodes the theme file at path.
func File(p string) (theme.Model, error) {
	f, err := FormatOf(p)
	if err != nil {
		return theme.Model{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return theme.Model{}, fmt.Errorf("reading theme file: %w", err)
	}
	return Decode(f, data, filepath.Base(p))
}

// Decode decodes theme data of the given format. Name is used in error
// messages.
func Decode(f Format, data []byte, name string) (theme.Model, error) {
	switch f {
	case JSON:
		return FromJSON(data)
	case JSONC:
		return FromJSONC(data)
	case VSIX:
		return FromVSIX(data)
	case HCL:
		doc, err := parser.ParseBytes(data, name)
		if err != nil {
			return theme.Model{}, err
		}
		return doc.Model, nil
	default:
		return theme.Model{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// FromJSON decodes a color theme file. Its semanticTokenColors become the
// semantic rules; the semanticHighlighting flag is ignored.
func FromJSON(data []byte) (theme.Model, error) {
	var doc struct {
		Colors              json.RawMessage `json:"colors"`
		TokenColors         json.RawMessage `json:"tokenColors"`
		SemanticTokenColors json.RawMessage `json:"semanticTokenColors"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return theme.Model{}, fmt.Errorf("decoding theme JSON: %w", err)
	}
	payload, err := json.Marshal(map[string]json.RawMessage{
		"colors":         orEmpty(doc.Colors, "{}"),
		"tokenColors":    orEmpty(doc.TokenColors, "[]"),
		"semanticTokens": orEmpty(doc.SemanticTokenColors, "{}"),
	})
	if err != nil {
		return theme.Model{}, err
	}
	return protocol.DecodeModel(payload), nil
}

// FromJSONC decodes a color theme file that may contain comments and
// trailing commas.
func FromJSONC(data []byte) (theme.Model, error) {
	std, err := Standardize(data)
	if err != nil {
		return theme.Model{}, err
	}
	return FromJSON(std)
}

// Standardize strips comments and trailing commas from JSONC.
func Standardize(data []byte) ([]byte, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("decoding JSONC: %w", err)
	}
	return std, nil
}

// FromVSIX decodes the first theme contributed by an extension archive.
func FromVSIX(data []byte) (theme.Model, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return theme.Model{}, fmt.Errorf("opening VSIX: %w", err)
	}

	manifest, err := readZipFile(zr, "extension/package.json")
	if err != nil {
		return theme.Model{}, fmt.Errorf("VSIX missing extension/package.json: %w", err)
	}
	var pkg struct {
		Contributes struct {
			Themes []struct {
				Path string `json:"path"`
			} `json:"themes"`
		} `json:"contributes"`
	}
	if err := json.Unmarshal(manifest, &pkg); err != nil {
		return theme.Model{}, fmt.Errorf("decoding extension manifest: %w", err)
	}
	if len(pkg.Contributes.Themes) == 0 || pkg.Contributes.Themes[0].Path == "" {
		return theme.Model{}, errors.New("no theme entry in VSIX")
	}

	rel := strings.TrimPrefix(pkg.Contributes.Themes[0].Path, "./")
	themeData, err := readZipFile(zr, path.Join("extension", rel))
	if err != nil {
		return theme.Model{}, fmt.Errorf("theme file not found in VSIX: %w", err)
	}
	return FromJSONC(themeData)
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func orEmpty(raw json.RawMessage, empty string) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return json.RawMessage(empty)
	}
	return raw
}
