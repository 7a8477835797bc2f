package math3d

// Vec4 represents a homogeneous point, typically a clip-space position.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 creates a new Vec4.
func V4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

// V4FromV3 creates a Vec4 from Vec3 with specified W.
func V4FromV3(v Vec3, w float64) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

// Vec3 returns the Vec3 portion (ignoring W).
func (v Vec4) Vec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// PerspectiveDivide returns the NDC position x/w, y/w, z/w.
// A zero W leaves the components untouched.
func (v Vec4) PerspectiveDivide() Vec3 {
	if v.W == 0 {
		return Vec3{v.X, v.Y, v.Z}
	}
	return Vec3{v.X / v.W, v.Y / v.W, v.Z / v.W}
}

// Outcode returns a bit per clip plane the point lies outside of:
// bit 0 left, 1 right, 2 bottom, 3 top, 4 near, 5 far. The test is made
// against |w| so points behind the eye are still classified consistently
// with their mirrored position.
func (v Vec4) Outcode() uint8 {
	w := v.W
	if w < 0 {
		w = -w
	}
	var code uint8
	if v.X < -w {
		code |= 1 << 0
	}
	if v.X > w {
		code |= 1 << 1
	}
	if v.Y < -w {
		code |= 1 << 2
	}
	if v.Y > w {
		code |= 1 << 3
	}
	if v.Z > w {
		code |= 1 << 4
	}
	if v.Z < -w {
		code |= 1 << 5
	}
	return code
}
