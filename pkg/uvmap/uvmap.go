// Package uvmap converts atlas pixel rects to normalized texture coordinates.
//
// UVs use a bottom-left origin with V growing upward, while atlas pixels use
// a top-left origin with Y growing downward.
package uvmap

import (
	"github.com/Faultbox/labelmesh/pkg/atlas"
	"github.com/Faultbox/labelmesh/pkg/math"
)

// Map returns the UVs of a rect in quad corner order:
// (left,bottom), (right,bottom), (right,top), (left,top).
// The cycle is the same for every rotation class; the quad's corner order
// carries the rotation.
func Map(r atlas.Rect, atlasWidth, atlasHeight int) [4]math.Vec2 {
	w := float64(atlasWidth)
	h := float64(atlasHeight)

	flippedTop := float64(atlasHeight - r.Y)
	left := float64(r.X) / w
	right := float64(r.X+r.Width) / w
	top := flippedTop / h
	bottom := (flippedTop - float64(r.Height)) / h

	return [4]math.Vec2{
		{X: left, Y: bottom},
		{X: right, Y: bottom},
		{X: right, Y: top},
		{X: left, Y: top},
	}
}

// ToPixel maps a UV back to atlas pixel space (top-left origin).
func ToPixel(uv math.Vec2, atlasWidth, atlasHeight int) math.Vec2 {
	return math.Vec2{
		X: uv.X * float64(atlasWidth),
		Y: float64(atlasHeight) - uv.Y*float64(atlasHeight),
	}
}
