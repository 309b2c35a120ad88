// Package config holds the detection thresholds for the behavior engine.
//
// Defaults are compiled in; a YAML file may override any subset of them.
// Validation happens once at startup so the per-frame code never has to deal
// with malformed thresholds.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid tuning")

// Acceptance is the per-category detection filter.
type Acceptance struct {
	MinConfidence  float64 `yaml:"min_confidence"`
	MinAreaRatio   float64 `yaml:"min_area_ratio"`
	MinAspectRatio float64 `yaml:"min_aspect_ratio"` // height / width, 0 disables
	MaxCenterY     float64 `yaml:"max_center_y"`     // fraction of frame height, 0 disables
}

// Drinking configures the drinking state machine.
type Drinking struct {
	Accept               Acceptance `yaml:"accept"`
	Proximity            float64    `yaml:"proximity_px"`
	ContactFrames        int        `yaml:"contact_frames"`
	TrackingFrames       int        `yaml:"tracking_frames"`
	MinRise              float64    `yaml:"min_rise_px"`
	MinConsistency       float64    `yaml:"min_consistency"`
	MinGestureConfidence float64    `yaml:"min_gesture_confidence"`
	UpwardEpsilon        float64    `yaml:"upward_epsilon_px"`
	HandMissingFrames    int        `yaml:"hand_missing_frames"`
	ObjectMissingFrames  int        `yaml:"object_missing_frames"`
	CooldownFrames       int        `yaml:"cooldown_frames"`
	HistorySize          int        `yaml:"history_size"`
}

// Study configures the study state machine.
type Study struct {
	Accept              Acceptance `yaml:"accept"`
	Proximity           float64    `yaml:"proximity_px"`
	StartFrames         int        `yaml:"start_frames"`
	MinSessionFrames    int        `yaml:"min_session_frames"`
	AwayFrames          int        `yaml:"away_frames"`
	ObjectMissingFrames int        `yaml:"object_missing_frames"`
}

// Gesture configures the fingertip distance classifiers. Distances are in
// normalized landmark coordinates.
type Gesture struct {
	PenPinchMax   float64 `yaml:"pen_pinch_max"`
	PenSupportMax float64 `yaml:"pen_support_max"`
	CupGripMin    float64 `yaml:"cup_grip_min"`
	CupGripMax    float64 `yaml:"cup_grip_max"`
}

// Stabilizer configures the hand position Kalman filter.
type Stabilizer struct {
	ProcessNoise     float64 `yaml:"process_noise"`
	MeasurementNoise float64 `yaml:"measurement_noise"`
	HistorySize      int     `yaml:"history_size"`
}

// Tuning is the root configuration.
type Tuning struct {
	FPS          float64    `yaml:"fps"`
	IoUThreshold float64    `yaml:"iou_threshold"`
	Drinking     Drinking   `yaml:"drinking"`
	Study        Study      `yaml:"study"`
	Gesture      Gesture    `yaml:"gesture"`
	Stabilizer   Stabilizer `yaml:"stabilizer"`
}

// Default returns the production thresholds, tuned for a 30 FPS webcam at
// 640x480.
func Default() Tuning {
	return Tuning{
		FPS:          30,
		IoUThreshold: 0.5,
		Drinking: Drinking{
			Accept: Acceptance{
				MinConfidence:  0.50,
				MinAreaRatio:   0.03,
				MinAspectRatio: 1.2,
				MaxCenterY:     0.85,
			},
			Proximity:            120,
			ContactFrames:        6,
			TrackingFrames:       20,
			MinRise:              60,
			MinConsistency:       0.65,
			MinGestureConfidence: 0.2,
			UpwardEpsilon:        0.5,
			HandMissingFrames:    15,
			ObjectMissingFrames:  40,
			CooldownFrames:       60,
			HistorySize:          5,
		},
		Study: Study{
			Accept: Acceptance{
				MinConfidence: 0.40,
				MinAreaRatio:  0.03,
			},
			Proximity:           150,
			StartFrames:         90,
			MinSessionFrames:    150,
			AwayFrames:          150,
			ObjectMissingFrames: 60,
		},
		Gesture: Gesture{
			PenPinchMax:   0.06,
			PenSupportMax: 0.08,
			CupGripMin:    0.07,
			CupGripMax:    0.25,
		},
		Stabilizer: Stabilizer{
			ProcessNoise:     1.0,
			MeasurementNoise: 4.0,
			HistorySize:      5,
		},
	}
}

// Load reads a YAML tuning file on top of Default and validates the result.
func Load(path string) (Tuning, error) {
	cfg := Default()

	cleanPath := filepath.Clean(path)
	switch ext := filepath.Ext(cleanPath); ext {
	case ".yaml", ".yml":
	default:
		return cfg, fmt.Errorf("config file must have .yaml extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every out-of-range threshold in a single error.
func (t Tuning) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if t.FPS <= 0 {
		bad("fps must be positive, got %v", t.FPS)
	}
	if t.IoUThreshold <= 0 || t.IoUThreshold > 1 {
		bad("iou_threshold must be in (0,1], got %v", t.IoUThreshold)
	}

	validateAcceptance := func(name string, a Acceptance) {
		if a.MinConfidence < 0 || a.MinConfidence > 1 {
			bad("%s.accept.min_confidence must be in [0,1], got %v", name, a.MinConfidence)
		}
		if a.MinAreaRatio < 0 || a.MinAreaRatio > 1 {
			bad("%s.accept.min_area_ratio must be in [0,1], got %v", name, a.MinAreaRatio)
		}
		if a.MinAspectRatio < 0 {
			bad("%s.accept.min_aspect_ratio must not be negative, got %v", name, a.MinAspectRatio)
		}
		if a.MaxCenterY < 0 || a.MaxCenterY > 1 {
			bad("%s.accept.max_center_y must be in [0,1], got %v", name, a.MaxCenterY)
		}
	}

	d := t.Drinking
	validateAcceptance("drinking", d.Accept)
	if d.Proximity <= 0 {
		bad("drinking.proximity_px must be positive, got %v", d.Proximity)
	}
	if d.ContactFrames < 1 {
		bad("drinking.contact_frames must be at least 1, got %d", d.ContactFrames)
	}
	if d.TrackingFrames < 1 {
		bad("drinking.tracking_frames must be at least 1, got %d", d.TrackingFrames)
	}
	if d.MinConsistency < 0 || d.MinConsistency > 1 {
		bad("drinking.min_consistency must be in [0,1], got %v", d.MinConsistency)
	}
	if d.MinGestureConfidence < 0 || d.MinGestureConfidence > 1 {
		bad("drinking.min_gesture_confidence must be in [0,1], got %v", d.MinGestureConfidence)
	}
	if d.UpwardEpsilon < 0 {
		bad("drinking.upward_epsilon_px must not be negative, got %v", d.UpwardEpsilon)
	}
	if d.HandMissingFrames < 0 || d.ObjectMissingFrames < 0 || d.CooldownFrames < 0 {
		bad("drinking tolerances must not be negative")
	}
	if d.HistorySize < 2 {
		bad("drinking.history_size must be at least 2, got %d", d.HistorySize)
	}

	s := t.Study
	validateAcceptance("study", s.Accept)
	if s.Proximity <= 0 {
		bad("study.proximity_px must be positive, got %v", s.Proximity)
	}
	if s.StartFrames < 1 {
		bad("study.start_frames must be at least 1, got %d", s.StartFrames)
	}
	if s.AwayFrames < 1 {
		bad("study.away_frames must be at least 1, got %d", s.AwayFrames)
	}
	if s.MinSessionFrames < 0 || s.ObjectMissingFrames < 0 {
		bad("study frame counts must not be negative")
	}

	g := t.Gesture
	if g.PenPinchMax <= 0 || g.PenSupportMax < g.PenPinchMax {
		bad("gesture: need 0 < pen_pinch_max <= pen_support_max, got %v / %v", g.PenPinchMax, g.PenSupportMax)
	}
	if g.CupGripMin >= g.CupGripMax {
		bad("gesture: cup_grip_min %v must be below cup_grip_max %v", g.CupGripMin, g.CupGripMax)
	}
	if g.CupGripMin < g.PenPinchMax {
		bad("gesture: cup_grip_min %v must not be below pen_pinch_max %v", g.CupGripMin, g.PenPinchMax)
	}

	st := t.Stabilizer
	if st.ProcessNoise <= 0 || st.MeasurementNoise <= 0 {
		bad("stabilizer noise covariances must be positive")
	}
	if st.HistorySize < 2 {
		bad("stabilizer.history_size must be at least 2, got %d", st.HistorySize)
	}

	return errors.Join(errs...)
}

// Seconds converts a frame count to seconds at the configured FPS, rounded
// to one decimal place.
func (t Tuning) Seconds(frames int) float64 {
	if t.FPS <= 0 {
		return 0
	}
	return float64(int(float64(frames)/t.FPS*10+0.5)) / 10
}
