package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ayusman/deskwatch/internal/behavior"
	"github.com/ayusman/deskwatch/internal/log"
	"github.com/ayusman/deskwatch/internal/store"
)

// HookSource returns the enabled hooks for an event kind.
type HookSource interface {
	ForKind(kind string) ([]*store.Hook, error)
}

// Dispatcher runs the hooks bound to each emitted event.
type Dispatcher struct {
	hooks    HookSource
	manager  *Manager
	executor *Executor
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(hooks HookSource, manager *Manager, executor *Executor) *Dispatcher {
	return &Dispatcher{
		hooks:    hooks,
		manager:  manager,
		executor: executor,
		logger:   log.L().With("component", "hooks"),
	}
}

// SetLogger replaces the dispatcher's logger.
func (d *Dispatcher) SetLogger(l *slog.Logger) {
	d.logger = l
}

// Dispatch runs every enabled hook bound to e's kind, in order. Failures of
// one hook do not stop the others; all failures are returned joined.
func (d *Dispatcher) Dispatch(ctx context.Context, e behavior.Event) error {
	kind := string(e.EventKind())
	hooks, err := d.hooks.ForKind(kind)
	if err != nil {
		return fmt.Errorf("load hooks: %w", err)
	}
	if len(hooks) == 0 {
		return nil
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var errs []error
	for _, h := range hooks {
		if err := d.run(ctx, h, kind, payload); err != nil {
			d.logger.Warn("hook failed", "hook", h.ID, "plugin", h.PluginName, "event", e.EventID(), "error", err)
			errs = append(errs, fmt.Errorf("hook %s: %w", h.ID, err))
			continue
		}
		d.logger.Debug("hook ran", "hook", h.ID, "plugin", h.PluginName, "event", e.EventID())
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) run(ctx context.Context, h *store.Hook, kind string, payload []byte) error {
	p, err := d.manager.Get(h.PluginName)
	if err != nil {
		return err
	}
	if !p.Accepts(kind) {
		return fmt.Errorf("plugin does not accept %q events", kind)
	}

	resp, err := d.executor.Execute(ctx, p, &Request{
		Action: ActionEvent,
		Kind:   kind,
		Event:  payload,
		Config: h.Config,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("plugin reported failure: %s", resp.Error)
	}
	return nil
}
