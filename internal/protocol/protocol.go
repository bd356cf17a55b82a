// Package protocol defines the messages exchanged between the editor core
// and its host, and resolves their loosely shaped payloads into a
// theme.Model.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/jsvensson/themelab/internal/theme"
)

// Host to core.
const (
	Boot         = "BOOT"
	LoadCurrent  = "LOAD_CURRENT"
	LoadImported = "LOAD_IMPORTED"
	Locate       = "LOCATE"
	UIUndo       = "UI_UNDO"
	UIRedo       = "UI_REDO"
)

// Core to host.
const (
	RequestBoot       = "REQUEST_BOOT"
	RequestImport     = "REQUEST_IMPORT"
	RequestUseCurrent = "REQUEST_USE_CURRENT"
	RequestStartBlank = "REQUEST_START_BLANK"
	RequestExportJSON = "REQUEST_EXPORT_JSON"
	RequestExportCSS  = "REQUEST_EXPORT_CSS"
	RequestExportVSIX = "REQUEST_EXPORT_VSIX"
	RequestExportHCL  = "REQUEST_EXPORT_HCL"
	RequestSaveTheme  = "REQUEST_SAVE_THEME"
	ApplyPreview      = "APPLY_PREVIEW"
)

// Message is one protocol message. Payload is absent for requests that
// carry none.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// New builds a message, encoding payload when it is not nil.
func New(typ string, payload any) (Message, error) {
	msg := Message{Type: typ}
	if payload == nil {
		return msg, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encoding %s payload: %w", typ, err)
	}
	msg.Payload = b
	return msg, nil
}

// MustNew is New for payloads that always encode, such as theme.Model.
func MustNew(typ string, payload any) Message {
	msg, err := New(typ, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// BootPayload is sent by the host in reply to REQUEST_BOOT.
type BootPayload struct {
	Categories []theme.Category `json:"categories"`
	Settings   json.RawMessage  `json:"settings,omitempty"`
}

// LocatePayload names a preview element or a "row-<key>" colors row.
type LocatePayload struct {
	ElementID string `json:"elementId"`
}

// DecodeBoot reads a BOOT payload. Missing or malformed parts come back
// empty.
func DecodeBoot(raw json.RawMessage) (cats []theme.Category, settings theme.Model) {
	var p struct {
		Categories json.RawMessage `json:"categories"`
		Settings   json.RawMessage `json:"settings"`
	}
	if json.Unmarshal(raw, &p) != nil {
		return nil, theme.New()
	}
	var cs []theme.Category
	if json.Unmarshal(p.Categories, &cs) == nil {
		cats = cs
	}
	return cats, DecodeModel(p.Settings)
}

// DecodeLocate returns the element id of a LOCATE payload, or "".
func DecodeLocate(raw json.RawMessage) string {
	var p LocatePayload
	if json.Unmarshal(raw, &p) != nil {
		return ""
	}
	return p.ElementID
}
