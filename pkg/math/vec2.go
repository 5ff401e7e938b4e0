package math

// Vec2 is a 2D vector. It also carries UV pairs.
type Vec2 struct {
	X, Y float64
}

// Float32 returns the vector as a float32 pair for GPU buffers.
func (v Vec2) Float32() [2]float32 {
	return [2]float32{float32(v.X), float32(v.Y)}
}
