// Package main provides an event hook that appends deskwatch events to a CSV
// file. The file path comes from the hook config ("file"), relative paths
// resolving against the plugin directory.
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Kind   string          `json:"kind"`
	Event  json.RawMessage `json:"event"`
	Config json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config is the per-hook configuration.
type Config struct {
	File string `json:"file"`
}

// event holds the fields shared by drinking and study records.
type event struct {
	ID          string  `json:"id"`
	Timestamp   string  `json:"timestamp"`
	End         string  `json:"end"`
	Object      string  `json:"object"`
	DurationSec float64 `json:"duration_sec"`
}

var header = []string{"kind", "id", "time", "object", "duration_sec"}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}
	if req.Action != "event" {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	cfg := Config{File: "events.csv"}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("invalid config: %v", err))
			return
		}
	}

	var ev event
	if err := json.Unmarshal(req.Event, &ev); err != nil {
		writeErrorResponse(fmt.Sprintf("invalid event: %v", err))
		return
	}

	if err := appendRow(cfg.File, req.Kind, ev); err != nil {
		writeErrorResponse(err.Error())
		return
	}
	writeSuccessResponse()
}

func appendRow(path, kind string, ev event) error {
	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	at := ev.Timestamp
	if at == "" {
		at = ev.End
	}

	w := csv.NewWriter(f)
	if isNew {
		w.Write(header)
	}
	w.Write([]string{kind, ev.ID, at, ev.Object, strconv.FormatFloat(ev.DurationSec, 'f', 1, 64)})
	w.Flush()
	return w.Error()
}

func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

func writeErrorResponse(msg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: msg})
}
