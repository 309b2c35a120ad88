package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// writeScriptPlugin writes an executable shell script and returns a Plugin
// pointing at it.
func writeScriptPlugin(t *testing.T, name, script string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
		},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	plugin := writeScriptPlugin(t, "test-plugin", `#!/bin/sh
echo '{"success":true,"data":{"message":"hello world"}}'
`)

	executor := NewExecutor(5 * time.Second)
	response, err := executor.Execute(context.Background(), plugin, &Request{Action: ActionEvent, Kind: "drinking"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if !response.Success {
		t.Errorf("expected success=true, got false")
	}
	if response.Error != "" {
		t.Errorf("expected empty error, got %q", response.Error)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello world" {
		t.Errorf("expected message 'hello world', got %v", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	plugin := writeScriptPlugin(t, "echo-plugin", `#!/bin/sh
INPUT=$(cat)
echo "{\"success\":true,\"data\":{\"received\":$INPUT}}"
`)

	request := &Request{
		Action: ActionEvent,
		Kind:   "study",
		Event:  json.RawMessage(`{"id":"evt-1","object":"book"}`),
		Config: json.RawMessage(`{"setting":"enabled"}`),
	}

	executor := NewExecutor(5 * time.Second)
	response, err := executor.Execute(context.Background(), plugin, request)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var data struct {
		Received struct {
			Action string `json:"action"`
			Kind   string `json:"kind"`
			Event  struct {
				ID string `json:"id"`
			} `json:"event"`
		} `json:"received"`
	}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data.Received.Action != ActionEvent {
		t.Errorf("expected action %q, got %q", ActionEvent, data.Received.Action)
	}
	if data.Received.Kind != "study" {
		t.Errorf("expected kind 'study', got %q", data.Received.Kind)
	}
	if data.Received.Event.ID != "evt-1" {
		t.Errorf("expected event id 'evt-1', got %q", data.Received.Event.ID)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plugin := writeScriptPlugin(t, "slow-plugin", `#!/bin/sh
sleep 10
echo '{"success":true}'
`)

	executor := NewExecutor(100 * time.Millisecond)
	_, err := executor.Execute(context.Background(), plugin, &Request{Action: ActionEvent})
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got: %v", err)
	}
}

func TestExecutor_Execute_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr bool
		wantMsg string
	}{
		{
			name:    "error response",
			script:  "#!/bin/sh\necho '{\"success\":false,\"error\":\"something went wrong\"}'\n",
			wantMsg: "something went wrong",
		},
		{
			name:    "invalid json",
			script:  "#!/bin/sh\necho 'not valid json'\n",
			wantErr: true,
		},
		{
			name:    "non-zero exit",
			script:  "#!/bin/sh\necho 'Error: something failed' >&2\nexit 1\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plugin := writeScriptPlugin(t, "p", tt.script)
			response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: ActionEvent})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() failed: %v", err)
			}
			if response.Success {
				t.Errorf("expected success=false, got true")
			}
			if response.Error != tt.wantMsg {
				t.Errorf("expected error %q, got %q", tt.wantMsg, response.Error)
			}
		})
	}
}

func TestNewExecutor(t *testing.T) {
	executor := NewExecutor(3 * time.Second)
	if executor.Timeout() != 3*time.Second {
		t.Errorf("expected timeout 3s, got %s", executor.Timeout())
	}
}

func TestPlugin_Accepts(t *testing.T) {
	tests := []struct {
		name   string
		events []string
		kind   string
		want   bool
	}{
		{"no filter", nil, "drinking", true},
		{"listed", []string{"drinking"}, "drinking", true},
		{"not listed", []string{"drinking"}, "study", false},
		{"wildcard", []string{"*"}, "study", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Plugin{Manifest: Manifest{Events: tt.events}}
			if got := p.Accepts(tt.kind); got != tt.want {
				t.Errorf("Accepts(%q) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}
