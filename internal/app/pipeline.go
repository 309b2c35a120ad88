package app

import (
	"context"
	"errors"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/deskwatch/internal/behavior"
	"github.com/ayusman/deskwatch/internal/capture"
	"github.com/ayusman/deskwatch/internal/detector"
	"github.com/ayusman/deskwatch/internal/interaction"
	"github.com/ayusman/deskwatch/internal/server"
	"github.com/ayusman/deskwatch/internal/store"
)

// run is the main loop. Every frame read is processed in order:
//
//  1. Publish the frame to the live stream and run motion detection
//  2. Switch between idle and active FPS; stay active while a behavior is
//     in progress
//  3. Run the object and hand detectors; failures count as empty frames
//  4. Advance the behavior engine and hand its output to the sinks
//
// Device sources are paced by a ticker at the current FPS. Other sources are
// read as fast as they serve frames and end the loop at ErrEndOfStream.
func (a *App) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	var tick <-chan time.Time
	var ticker *time.Ticker
	if a.pace {
		ticker = time.NewTicker(time.Second / time.Duration(a.activity.FPS()))
		defer ticker.Stop()
		tick = ticker.C
	}

	paused := false
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return
			case <-tick:
			}
		}

		frame, err := a.camera.ReadFrame()
		if errors.Is(err, capture.ErrEndOfStream) {
			a.logger.Info("source exhausted", "source", a.config.Source.String())
			return
		}
		if err != nil {
			a.logger.Warn("error reading frame", "error", err)
			continue
		}

		enabled := a.IsEnabled()
		if !enabled && !paused {
			a.engine.Reset()
			a.setSnapshot(a.engine.Snapshot())
			a.logger.Info("detection paused")
		} else if enabled && paused {
			a.logger.Info("detection resumed")
		}
		paused = !enabled

		if changed := a.observe(frame, enabled); changed && ticker != nil {
			ticker.Reset(time.Second / time.Duration(a.activity.FPS()))
		}
		if enabled {
			a.processFrame(ctx, frame)
		}
		frame.Close()
	}
}

// observe publishes frame, runs motion detection and updates the capture
// rate. It reports whether the rate changed.
func (a *App) observe(frame *gocv.Mat, enabled bool) bool {
	if err := a.frames.Update(frame); err != nil {
		a.logger.Debug("frame not published", "error", err)
	}

	motion, _ := a.motion.Detect(frame)
	busy := enabled && isBusy(a.Snapshot())
	if !a.activity.Observe(a.now(), motion, busy) {
		return false
	}
	fps := a.activity.FPS()
	a.camera.SetFPS(fps)
	a.logger.Debug("capture rate changed", "fps", fps, "active", a.activity.Active())
	return true
}

// isBusy reports whether a behavior is in progress.
func isBusy(s behavior.Snapshot) bool {
	return s.Owner != interaction.OwnerNone ||
		s.Drinking.State != behavior.DrinkingIdle ||
		s.Study.State != behavior.StudyIdle
}

// processFrame runs the detectors and the engine on one frame.
func (a *App) processFrame(ctx context.Context, frame *gocv.Mat) {
	now := a.now()

	dets, err := a.objects.Detect(frame)
	if err != nil {
		a.logger.Debug("object detection failed", "error", err)
		dets = nil
	}
	hands, err := a.hands.Detect(frame)
	if err != nil {
		a.logger.Debug("hand detection failed", "error", err)
		hands = nil
	}

	out := a.engine.Process(behavior.Frame{
		Time:       now,
		Width:      frame.Cols(),
		Height:     frame.Rows(),
		Detections: dets,
		Hand:       detector.FirstHand(hands),
	})

	snap := a.engine.Snapshot()
	a.setSnapshot(snap)

	for _, req := range out.Captures {
		a.saveCapture(frame, req)
	}
	for _, e := range out.Events {
		a.handleEvent(ctx, e)
	}

	a.mu.RLock()
	b := a.broadcaster
	a.mu.RUnlock()
	if b != nil {
		b.Broadcast(server.MessageSnapshot, snap)
	}
}

func (a *App) setSnapshot(s behavior.Snapshot) {
	a.snapMu.Lock()
	a.snapshot = s
	a.snapMu.Unlock()
}

// saveCapture writes the snapshot image and records it.
func (a *App) saveCapture(frame *gocv.Mat, req behavior.CaptureRequest) {
	if a.snapshots == nil {
		return
	}
	name, err := a.snapshots.Save(frame, req.Label, req.ID, req.Time)
	if err != nil {
		a.logger.Warn("failed to save capture", "id", req.ID, "error", err)
		return
	}
	a.logger.Debug("capture saved", "id", req.ID, "file", name)

	if a.config.Store == nil {
		return
	}
	c := &store.Capture{ID: req.ID, Label: req.Label, Path: name, TakenAt: req.Time}
	if err := a.config.Store.Captures().Create(c); err != nil {
		a.logger.Warn("failed to record capture", "id", req.ID, "error", err)
	}
}

// handleEvent persists e and notifies hooks and subscribers. Hooks run in
// the background; Stop waits for them.
func (a *App) handleEvent(ctx context.Context, e behavior.Event) {
	a.logger.Info("event", "kind", e.EventKind(), "id", e.EventID())

	if a.config.Store != nil {
		if err := a.config.Store.Save(e); err != nil {
			a.logger.Error("failed to store event", "id", e.EventID(), "error", err)
		}
	}
	if a.eventLog != nil {
		if err := a.eventLog.Append(e); err != nil {
			a.logger.Error("failed to append event log", "id", e.EventID(), "error", err)
		}
	}
	if a.dispatcher != nil {
		a.hooks.Add(1)
		go func() {
			defer a.hooks.Done()
			// Hook failures are logged by the dispatcher.
			_ = a.dispatcher.Dispatch(context.WithoutCancel(ctx), e)
		}()
	}

	a.mu.RLock()
	b := a.broadcaster
	listeners := append([]EventFunc(nil), a.listeners...)
	a.mu.RUnlock()

	if b != nil {
		b.Broadcast(server.MessageEvent, e)
	}
	for _, fn := range listeners {
		fn(e)
	}
}
