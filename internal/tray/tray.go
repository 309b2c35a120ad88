// Package tray provides the system tray menu for deskwatch.
package tray

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/ayusman/deskwatch/internal/behavior"
)

// StateSource provides the engine state shown in the menu.
type StateSource interface {
	Snapshot() behavior.Snapshot
}

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle   *systray.MenuItem
	menuOwner    *systray.MenuItem
	menuDrinking *systray.MenuItem
	menuStudy    *systray.MenuItem
	menuLast     *systray.MenuItem
}

// New creates a new Tray instance with detection enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback for pausing and resuming detection.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback for the dashboard menu item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback for the quit menu item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("deskwatch")
	systray.SetTooltip("deskwatch drinking and study tracker")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume detection")
	systray.AddSeparator()

	idle := statusTitles(behavior.Snapshot{
		Drinking: behavior.DrinkingSnapshot{State: behavior.DrinkingIdle},
		Study:    behavior.StudySnapshot{State: behavior.StudyIdle},
	})
	t.menuOwner = systray.AddMenuItem(idle.owner, "Behavior holding the interaction lock")
	t.menuDrinking = systray.AddMenuItem(idle.drinking, "Drinking detector state")
	t.menuStudy = systray.AddMenuItem(idle.study, "Study detector state")
	t.menuLast = systray.AddMenuItem(lastEventTitle(nil), "Last recorded event")
	for _, m := range []*systray.MenuItem{t.menuOwner, t.menuDrinking, t.menuStudy, t.menuLast} {
		m.Disable()
	}
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit deskwatch")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetSnapshot updates the state lines of the menu.
func (t *Tray) SetSnapshot(s behavior.Snapshot) {
	titles := statusTitles(s)

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuOwner == nil {
		return
	}
	t.menuOwner.SetTitle(titles.owner)
	t.menuDrinking.SetTitle(titles.drinking)
	t.menuStudy.SetTitle(titles.study)
}

// SetLastEvent updates the last event line of the menu.
func (t *Tray) SetLastEvent(e behavior.Event) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuLast != nil {
		t.menuLast.SetTitle(lastEventTitle(e))
	}
}

// Watch refreshes the state lines from src every interval until ctx is done.
func (t *Tray) Watch(ctx context.Context, src StateSource, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.SetSnapshot(src.Snapshot())
		}
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Watching"
	}
	return "○ Paused"
}

type titles struct {
	owner    string
	drinking string
	study    string
}

func statusTitles(s behavior.Snapshot) titles {
	drinking := "Drinking: " + string(s.Drinking.State)
	switch s.Drinking.State {
	case behavior.DrinkingContacting:
		drinking += fmt.Sprintf(" (%d)", s.Drinking.Contact)
	case behavior.DrinkingTracking:
		drinking += fmt.Sprintf(" (%d frames)", s.Drinking.Tracked)
	}
	if s.Drinking.Cooldown > 0 {
		drinking += ", cooling down"
	}

	study := "Study: " + string(s.Study.State)
	switch s.Study.State {
	case behavior.StudyStarting:
		study += fmt.Sprintf(" (%d)", s.Study.Start)
	case behavior.StudyStudying:
		if s.Study.Since != nil {
			study += " since " + s.Study.Since.Local().Format("15:04")
		}
		if s.Study.Away > 0 {
			study += ", away"
		}
	}

	return titles{
		owner:    "Lock: " + s.Owner.String(),
		drinking: drinking,
		study:    study,
	}
}

func lastEventTitle(e behavior.Event) string {
	switch ev := e.(type) {
	case *behavior.DrinkingEvent:
		return fmt.Sprintf("Last: drank from %s at %s", ev.Object, ev.Timestamp.Local().Format("15:04"))
	case *behavior.StudyEvent:
		return fmt.Sprintf("Last: studied with %s for %.0f min", ev.Object, ev.DurationSec/60)
	default:
		return "Last: none"
	}
}
