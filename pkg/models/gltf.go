package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/softraster/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
//
// glTF is right-handed; positions and normals have their z negated on
// load so the mesh lives in the left-handed host space. The mirror also
// reverses screen winding, which cancels out against the pipeline's own
// mirror, so indices are kept in file order.
type GLTFLoader struct {
	// Options
	CalculateNormals bool
	SmoothNormals    bool
	LoadMaterials    bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
		LoadMaterials:    true,
	}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// LoadGLBWithTexture loads a GLB file and returns the mesh plus the first
// material image. The image is nil if the file has none.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	mesh, err := NewGLTFLoader().Load(path)
	if err != nil {
		return nil, nil, err
	}
	return mesh, mesh.BaseMap(), nil
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	mesh, err := l.Decode(doc, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// Decode converts every triangle primitive of doc into one Mesh. dir
// resolves image URIs that are not embedded.
func (l *GLTFLoader) Decode(doc *gltf.Document, dir string) (*Mesh, error) {
	mesh := NewMesh("")

	if l.LoadMaterials {
		for i, mat := range doc.Materials {
			m, err := readMaterial(doc, mat, dir)
			if err != nil {
				return nil, fmt.Errorf("material %d: %w", i, err)
			}
			mesh.Materials = append(mesh.Materials, m)
		}
	}

	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	hasNormals := false
	for _, v := range mesh.Vertices {
		if v.Normal.Len() > 0.001 {
			hasNormals = true
			break
		}
	}

	if l.CalculateNormals && !hasNormals {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}

	mesh.CalculateBounds()

	return mesh, nil
}

// processMesh extracts geometry from a GLTF mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs [][2]float32
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		baseVertex := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: mirror(p)}
			if i < len(normals) {
				v.Normal = mirror(normals[i])
			}
			if i < len(uvs) {
				// GLTF uses top-left origin (V=0 at top), flip V for bottom-left origin
				v.UV = math3d.V2(float64(uvs[i][0]), 1-float64(uvs[i][1]))
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		if prim.Indices != nil {
			indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
			for i := 0; i+2 < len(indices); i += 3 {
				mesh.AddTriangle(
					baseVertex+int(indices[i]),
					baseVertex+int(indices[i+1]),
					baseVertex+int(indices[i+2]),
					material)
			}
		} else {
			// No indices, assume sequential triangles
			for i := 0; i+2 < len(positions); i += 3 {
				mesh.AddTriangle(baseVertex+i, baseVertex+i+1, baseVertex+i+2, material)
			}
		}
	}

	return nil
}

// mirror converts a right-handed glTF vector into left-handed space.
func mirror(v [3]float32) math3d.Vec3 {
	return math3d.V3(float64(v[0]), float64(v[1]), -float64(v[2]))
}

// readMaterial extracts the base color factor and texture of mat.
func readMaterial(doc *gltf.Document, mat *gltf.Material, dir string) (Material, error) {
	m := Material{Name: mat.Name, BaseColor: [4]float64{1, 1, 1, 1}}
	pbr := mat.PBRMetallicRoughness
	if pbr == nil {
		return m, nil
	}
	if pbr.BaseColorFactor != nil {
		m.BaseColor = *pbr.BaseColorFactor
	}
	if pbr.BaseColorTexture == nil {
		return m, nil
	}

	texIdx := pbr.BaseColorTexture.Index
	if texIdx < 0 || texIdx >= len(doc.Textures) || doc.Textures[texIdx].Source == nil {
		return m, nil
	}
	img, err := readImage(doc, *doc.Textures[texIdx].Source, dir)
	if err != nil {
		return m, err
	}
	m.BaseMap = img
	return m, nil
}

// readImage decodes image i, either embedded in a buffer view or stored
// next to the document.
func readImage(doc *gltf.Document, i int, dir string) (image.Image, error) {
	if i < 0 || i >= len(doc.Images) {
		return nil, fmt.Errorf("image %d out of range", i)
	}
	img := doc.Images[i]

	var data []byte
	switch {
	case img.BufferView != nil:
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil {
			return nil, fmt.Errorf("image %d: buffer has no data", i)
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case img.URI != "":
		var err error
		data, err = os.ReadFile(filepath.Join(dir, img.URI))
		if err != nil {
			return nil, fmt.Errorf("read image %d: %w", i, err)
		}
	default:
		return nil, fmt.Errorf("image %d has no data", i)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %d: %w", i, err)
	}
	return decoded, nil
}
