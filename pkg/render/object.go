package render

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/softraster/pkg/math3d"
)

// MeshDescriptor is the read-only geometry of a renderable object.
// Positions and normals are in the host's left-handed object space.
type MeshDescriptor interface {
	VertexCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	// Indices is a flat triangle list; its length is a multiple of 3.
	Indices() []int
	// GetBounds returns the local-space bounding box.
	GetBounds() (min, max math3d.Vec3)
}

var (
	ErrIndexCount = errors.New("index count is not a multiple of 3")
	ErrIndexRange = errors.New("index out of range")
)

// ValidateMesh checks the index list of m against its vertex count.
func ValidateMesh(m MeshDescriptor) error {
	idx := m.Indices()
	if len(idx)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrIndexCount, len(idx))
	}
	n := m.VertexCount()
	for i, v := range idx {
		if v < 0 || v >= n {
			return fmt.Errorf("%w: index %d at %d, %d vertices", ErrIndexRange, v, i, n)
		}
	}
	return nil
}

// Object is a mesh placed in the world with a texture and model matrix.
type Object struct {
	Name    string
	Mesh    MeshDescriptor
	Texture *Texture // nil samples white
	Model   math3d.Mat4
	Active  bool
	// Color is interpolated across triangles and handed to the fragment
	// shader; the built-in shaders ignore it.
	Color colorful.Color

	buf VertexBuffer
}

// NewObject returns an active object at the origin with an identity model
// matrix.
func NewObject(name string, mesh MeshDescriptor, tex *Texture) *Object {
	return &Object{
		Name:    name,
		Mesh:    mesh,
		Texture: tex,
		Model:   math3d.Identity(),
		Active:  true,
		Color:   colorful.Color{R: 1},
	}
}

// Bounds returns the mesh's local bounding box.
func (o *Object) Bounds() AABB {
	lo, hi := o.Mesh.GetBounds()
	return AABB{Min: lo, Max: hi}
}

// vertexBuffer returns the object's buffer sized for its mesh. The
// backing array is reused across frames and only grows.
func (o *Object) vertexBuffer() VertexBuffer {
	n := o.Mesh.VertexCount()
	if cap(o.buf) < n {
		o.buf = make(VertexBuffer, n)
	}
	o.buf = o.buf[:n]
	return o.buf
}
