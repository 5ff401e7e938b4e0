// Package quad builds the flat, upward-facing quad of a label footprint.
//
// The atlas always stores label text upright. A rotated label is expressed
// by starting the corner cycle at a different corner of the bounding box, so
// the same UV cycle lands the text's bottom-left on the rotated quad's
// bottom-left.
//
//	 3----2        2----1        1----0        0----3
//	 |   /|        |\   |        |   /|        |\   |
//	 |  / |        | \  |        |  / |        | \  |
//	 | /  |        |  \ |        | /  |        |  \ |
//	 0----1        3----0        2----3        1----2
//	   0°            90°           180°          270°
package quad

import (
	"errors"
	"fmt"

	"github.com/Faultbox/labelmesh/pkg/annotation"
	"github.com/Faultbox/labelmesh/pkg/math"
)

// ErrUnsupportedRotation is returned for rotation classes with no corner cycle.
var ErrUnsupportedRotation = errors.New("unsupported rotation")

// Up is the normal shared by every label quad.
var Up = math.Vec3{X: 0, Y: 0, Z: 1}

// Faces are the two triangles of a quad, indexed into its 4 vertices.
var Faces = [2][3]uint32{
	{0, 2, 3},
	{0, 1, 2},
}

// Quad is one label footprint ready for meshing.
type Quad struct {
	Vertices [4]math.Vec3
	Normal   math.Vec3
}

// corner names a corner of the XY footprint.
type corner uint8

const (
	minXminY corner = iota
	maxXminY
	maxXmaxY
	minXmaxY
)

// cornerCycles holds the counter-clockwise corner order per rotation class.
// Each entry is the previous one shifted by one corner.
var cornerCycles = map[annotation.Rotation][4]corner{
	annotation.Rotate0:   {minXminY, maxXminY, maxXmaxY, minXmaxY},
	annotation.Rotate90:  {maxXminY, maxXmaxY, minXmaxY, minXminY},
	annotation.Rotate180: {maxXmaxY, minXmaxY, minXminY, maxXminY},
	annotation.Rotate270: {minXmaxY, minXminY, maxXminY, maxXmaxY},
}

func (c corner) point(b math.Box, z float64) math.Vec3 {
	switch c {
	case maxXminY:
		return math.Vec3{X: b.Max.X, Y: b.Min.Y, Z: z}
	case maxXmaxY:
		return math.Vec3{X: b.Max.X, Y: b.Max.Y, Z: z}
	case minXmaxY:
		return math.Vec3{X: b.Min.X, Y: b.Max.Y, Z: z}
	default:
		return math.Vec3{X: b.Min.X, Y: b.Min.Y, Z: z}
	}
}

// Supports reports whether Build can produce a quad for the class.
func Supports(r annotation.Rotation) bool {
	_, ok := cornerCycles[r]
	return ok
}

// Build returns the quad of an annotation at its base point elevation.
func Build(a *annotation.Annotation) (Quad, error) {
	cycle, ok := cornerCycles[a.Rotation]
	if !ok {
		return Quad{}, fmt.Errorf("%w: %v° (id %s)", ErrUnsupportedRotation, a.RotationDegrees, a.ID)
	}

	q := Quad{Normal: Up}
	for i, c := range cycle {
		q.Vertices[i] = c.point(a.Bounds, a.Base.Z)
	}
	return q, nil
}
