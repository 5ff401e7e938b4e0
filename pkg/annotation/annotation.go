// Package annotation defines text-label annotations and decodes them from
// FME JSON exports.
package annotation

import (
	"fmt"

	"github.com/Faultbox/labelmesh/pkg/math"
)

// Rotation is the discrete in-plane orientation class of a label.
type Rotation int

// Rotation classes, counter-clockwise as seen from +Z.
const (
	RotationUnsupported Rotation = iota
	Rotate0
	Rotate90
	Rotate180
	Rotate270
)

// ClassifyRotation maps a CCW angle in degrees to its rotation class.
// Only exact multiples of 90 in [0, 270] are supported.
func ClassifyRotation(degrees float64) Rotation {
	switch degrees {
	case 0:
		return Rotate0
	case 90:
		return Rotate90
	case 180:
		return Rotate180
	case 270:
		return Rotate270
	default:
		return RotationUnsupported
	}
}

// Degrees returns the angle of a supported class, or -1.
func (r Rotation) Degrees() int {
	switch r {
	case Rotate0:
		return 0
	case Rotate90:
		return 90
	case Rotate180:
		return 180
	case Rotate270:
		return 270
	default:
		return -1
	}
}

// Supported reports whether quads can be built for the class.
func (r Rotation) Supported() bool {
	return r.Degrees() >= 0
}

// String returns a human-readable class name.
func (r Rotation) String() string {
	if !r.Supported() {
		return "Unsupported"
	}
	return fmt.Sprintf("%d°", r.Degrees())
}

// Annotation is one text label with its horizontal footprint.
type Annotation struct {
	ID   string
	Text string

	// RotationDegrees is the angle as read from the input.
	RotationDegrees float64
	Rotation        Rotation

	// Base is the anchor point. Its Z is the elevation of the label quad.
	Base   math.Vec3
	Bounds math.Box
}

// Degenerate reports whether the footprint has zero area.
func (a *Annotation) Degenerate() bool {
	return a.Bounds.Min.X == a.Bounds.Max.X || a.Bounds.Min.Y == a.Bounds.Max.Y
}
