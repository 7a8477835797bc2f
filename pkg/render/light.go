package render

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/softraster/pkg/math3d"
)

// Light is the single directional light of a frame.
type Light struct {
	// Direction the light travels, in the host's left-handed world.
	Direction math3d.Vec3
	Color     colorful.Color
	Intensity float64
}

// NewLight returns a white light of intensity 1 travelling along dir.
func NewLight(dir math3d.Vec3) Light {
	return Light{Direction: dir, Color: White, Intensity: 1}
}

// radiance is the light color scaled by intensity.
func (l Light) radiance() colorful.Color {
	return scaleColor(l.Color, l.Intensity)
}

// toLight returns the unit vector from a surface toward the light, in the
// right-handed pipeline frame.
func (l Light) toLight() math3d.Vec3 {
	return l.Direction.FlipZ().Normalize().Negate()
}
