// Package plugin discovers external hook executables and runs them for
// emitted behavior events.
package plugin

import "encoding/json"

// ActionEvent is the request action sent for every emitted event.
const ActionEvent = "event"

// Manifest describes a plugin's metadata. Events lists the event kinds the
// plugin accepts; empty means every kind.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Events       []string        `json:"events,omitempty"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request is written to a plugin's stdin.
type Request struct {
	Action string          `json:"action"`
	Kind   string          `json:"kind"`
	Event  json.RawMessage `json:"event"`
	Config json.RawMessage `json:"config"`
}

// Response is read from a plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Accepts reports whether the plugin handles events of kind.
func (p *Plugin) Accepts(kind string) bool {
	if len(p.Manifest.Events) == 0 {
		return true
	}
	for _, k := range p.Manifest.Events {
		if k == kind || k == "*" {
			return true
		}
	}
	return false
}
