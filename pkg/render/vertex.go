package render

import (
	"github.com/taigrr/softraster/pkg/math3d"
)

// VertexOut is the vertex shader output for one mesh vertex. All vectors
// are in the right-handed pipeline frame.
type VertexOut struct {
	Clip         math3d.Vec4
	World        math3d.Vec3
	ObjectNormal math3d.Vec3
	WorldNormal  math3d.Vec3
}

// VertexBuffer holds one VertexOut per mesh vertex.
type VertexBuffer []VertexOut

// ShadeVertices runs the vertex stage over every vertex of mesh, writing
// into buf, which must be at least mesh.VertexCount() long. mvp and model
// are right-handed; each input position and normal has its z negated
// before transformation.
func ShadeVertices(mesh MeshDescriptor, mvp, model math3d.Mat4, buf VertexBuffer) {
	n := mesh.VertexCount()
	if n == 0 {
		return
	}
	normalMat := model.NormalMatrix()
	for i := range n {
		pos, normal, _ := mesh.GetVertex(i)
		p := math3d.V4FromV3(pos.FlipZ(), 1)
		nrm := normal.FlipZ()

		buf[i] = VertexOut{
			Clip:         mvp.MulVec4(p),
			World:        model.MulVec4(p).Vec3(),
			ObjectNormal: nrm,
			WorldNormal:  normalMat.MulVec3Dir(nrm),
		}
	}
}
