// Package object classifies raw detector output into the closed set of
// objects the behavior engine cares about, and keeps a single tracked object
// alive across detector flicker.
package object

import (
	"github.com/ayusman/deskwatch/internal/config"
	"github.com/ayusman/deskwatch/internal/geom"
)

// Category groups object kinds by the behavior they support.
type Category int

const (
	CategoryNone Category = iota
	CategoryDrink
	CategoryStudy
)

func (c Category) String() string {
	switch c {
	case CategoryDrink:
		return "drink"
	case CategoryStudy:
		return "study"
	default:
		return "none"
	}
}

// Kind is a recognized object class.
type Kind int

const (
	KindUnknown Kind = iota
	KindCup
	KindBottle
	KindBook
	KindLaptop
	KindKeyboard
)

// classKinds maps COCO class names to kinds.
var classKinds = map[string]Kind{
	"cup":      KindCup,
	"bottle":   KindBottle,
	"book":     KindBook,
	"laptop":   KindLaptop,
	"keyboard": KindKeyboard,
}

// KindOf returns the kind for a detector class name, or KindUnknown.
func KindOf(class string) Kind {
	return classKinds[class]
}

// Category returns the behavior category of the kind.
func (k Kind) Category() Category {
	switch k {
	case KindCup, KindBottle:
		return CategoryDrink
	case KindBook, KindLaptop, KindKeyboard:
		return CategoryStudy
	case KindUnknown:
		return CategoryNone
	}
	return CategoryNone
}

func (k Kind) String() string {
	switch k {
	case KindCup:
		return "cup"
	case KindBottle:
		return "bottle"
	case KindBook:
		return "book"
	case KindLaptop:
		return "laptop"
	case KindKeyboard:
		return "keyboard"
	}
	return "unknown"
}

// Label is the capitalized display name used in event records.
func (k Kind) Label() string {
	switch k {
	case KindCup:
		return "Cup"
	case KindBottle:
		return "Bottle"
	case KindBook:
		return "Book"
	case KindLaptop:
		return "Laptop"
	case KindKeyboard:
		return "Keyboard"
	}
	return "Unknown"
}

// Detection is one object region reported by the detector for a frame.
type Detection struct {
	Box        geom.Box `json:"box"`
	Class      string   `json:"class"`
	Confidence float64  `json:"confidence"`
}

// Kind returns the recognized kind of the detection.
func (d Detection) Kind() Kind {
	return KindOf(d.Class)
}

// Filter applies the per-category acceptance rules.
type Filter struct {
	Drink config.Acceptance
	Study config.Acceptance
}

// NewFilter builds a Filter from tuning.
func NewFilter(t config.Tuning) Filter {
	return Filter{Drink: t.Drinking.Accept, Study: t.Study.Accept}
}

// Accepts reports whether d passes the rules of its category in a frame of
// the given size.
func (f Filter) Accepts(d Detection, width, height int) bool {
	var rules config.Acceptance
	switch d.Kind().Category() {
	case CategoryDrink:
		rules = f.Drink
	case CategoryStudy:
		rules = f.Study
	default:
		return false
	}
	return accepts(rules, d, width, height)
}

func accepts(rules config.Acceptance, d Detection, width, height int) bool {
	frameArea := float64(width) * float64(height)
	if frameArea <= 0 {
		return false
	}
	if d.Confidence < rules.MinConfidence {
		return false
	}
	if d.Box.Area()/frameArea < rules.MinAreaRatio {
		return false
	}
	if rules.MinAspectRatio > 0 && d.Box.AspectRatio() < rules.MinAspectRatio {
		return false
	}
	if rules.MaxCenterY > 0 && d.Box.Center().Y > float64(height)*rules.MaxCenterY {
		return false
	}
	return true
}

// Split returns the accepted detections of each category, preserving the
// detector's order.
func (f Filter) Split(dets []Detection, width, height int) (drink, study []Detection) {
	for _, d := range dets {
		if !f.Accepts(d, width, height) {
			continue
		}
		switch d.Kind().Category() {
		case CategoryDrink:
			drink = append(drink, d)
		case CategoryStudy:
			study = append(study, d)
		}
	}
	return drink, study
}
