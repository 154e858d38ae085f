/*package mesh contains the triangle mesh container which the sampler
converts into particles, along with a Wavefront OBJ reader.*/
package mesh

import (
	"fmt"
	"math"

	apperrors "github.com/hhc2tech/mpm/errors"
	"github.com/hhc2tech/mpm/geom"
)

// TriangleMesh is an indexed triangle mesh. Vertex, normal, and texture
// coordinate indices are stored as flat triples, one per triangle.
//
// A TriangleMesh tracks the world space length of one coordinate unit so
// that converting it into the index space of a voxel grid happens exactly
// once. A freshly constructed mesh is in world space and has Unit() == 1.
type TriangleMesh struct {
	vertices  []geom.Vec
	normals   []geom.Vec
	texCoords [][2]float32

	vertexIdxs, normalIdxs, texIdxs []int

	unit float64
}

// New creates a mesh from a vertex list and a flat list of vertex index
// triples. The slices are owned by the mesh after this call.
func New(vertices []geom.Vec, idxs []int) (*TriangleMesh, error) {
	if err := checkIdxs("vertex", idxs, len(vertices)); err != nil {
		return nil, err
	}
	return &TriangleMesh{vertices: vertices, vertexIdxs: idxs, unit: 1}, nil
}

// SetNormals attaches per-corner normals to the mesh. idxs must contain one
// triple per triangle.
func (m *TriangleMesh) SetNormals(normals []geom.Vec, idxs []int) error {
	if len(idxs) != len(m.vertexIdxs) {
		return apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf(
			"%d normal indices given for %d triangles",
			len(idxs), m.TriangleCount(),
		))
	}
	if err := checkIdxs("normal", idxs, len(normals)); err != nil {
		return err
	}
	m.normals, m.normalIdxs = normals, idxs
	return nil
}

// SetTexCoords attaches per-corner texture coordinates to the mesh. idxs must
// contain one triple per triangle.
func (m *TriangleMesh) SetTexCoords(texCoords [][2]float32, idxs []int) error {
	if len(idxs) != len(m.vertexIdxs) {
		return apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf(
			"%d texture indices given for %d triangles",
			len(idxs), m.TriangleCount(),
		))
	}
	if err := checkIdxs("texture", idxs, len(texCoords)); err != nil {
		return err
	}
	m.texCoords, m.texIdxs = texCoords, idxs
	return nil
}

func checkIdxs(kind string, idxs []int, n int) error {
	if len(idxs)%3 != 0 {
		return apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf(
			"%d %s indices is not a multiple of three", len(idxs), kind,
		))
	}
	for i, idx := range idxs {
		if idx < 0 || idx >= n {
			return apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf(
				"%s index %d of triangle %d is out of range [0, %d)",
				kind, idx, i/3, n,
			))
		}
	}
	return nil
}

// VertexCount returns the number of vertices.
func (m *TriangleMesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.vertices)
}

// TriangleCount returns the number of triangles.
func (m *TriangleMesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.vertexIdxs) / 3
}

// NormalCount returns the number of normals.
func (m *TriangleMesh) NormalCount() int { return len(m.normals) }

// TexCoordCount returns the number of texture coordinates.
func (m *TriangleMesh) TexCoordCount() int { return len(m.texCoords) }

func (m *TriangleMesh) Vertex(i int) geom.Vec { return m.vertices[i] }
func (m *TriangleMesh) SetVertex(i int, v geom.Vec) { m.vertices[i] = v }
func (m *TriangleMesh) Normal(i int) geom.Vec { return m.normals[i] }
func (m *TriangleMesh) TexCoord(i int) [2]float32 { return m.texCoords[i] }

// Triangle returns the vertex indices of the i-th triangle.
func (m *TriangleMesh) Triangle(i int) (v0, v1, v2 int) {
	return m.vertexIdxs[3*i], m.vertexIdxs[3*i+1], m.vertexIdxs[3*i+2]
}

// NormalTriangle returns the normal indices of the i-th triangle.
func (m *TriangleMesh) NormalTriangle(i int) (n0, n1, n2 int) {
	return m.normalIdxs[3*i], m.normalIdxs[3*i+1], m.normalIdxs[3*i+2]
}

// TexTriangle returns the texture coordinate indices of the i-th triangle.
func (m *TriangleMesh) TexTriangle(i int) (t0, t1, t2 int) {
	return m.texIdxs[3*i], m.texIdxs[3*i+1], m.texIdxs[3*i+2]
}

func (m *TriangleMesh) HasNormals() bool { return len(m.normalIdxs) > 0 }
func (m *TriangleMesh) HasTexCoords() bool { return len(m.texIdxs) > 0 }

// Clone returns a deep copy of m.
func (m *TriangleMesh) Clone() *TriangleMesh {
	out := &TriangleMesh{unit: m.unit}
	out.vertices = append([]geom.Vec(nil), m.vertices...)
	out.normals = append([]geom.Vec(nil), m.normals...)
	out.texCoords = append([][2]float32(nil), m.texCoords...)
	out.vertexIdxs = append([]int(nil), m.vertexIdxs...)
	out.normalIdxs = append([]int(nil), m.normalIdxs...)
	out.texIdxs = append([]int(nil), m.texIdxs...)
	return out
}

// Bounds returns the bounding box of the mesh's vertices in the mesh's
// current units.
func (m *TriangleMesh) Bounds() geom.Bounds {
	b := geom.EmptyBounds()
	for i := range m.vertices {
		b.Add(&m.vertices[i])
	}
	return b
}

// Volume returns the signed volume enclosed by the mesh in the mesh's current
// units. It is positive for a closed mesh whose triangles wind
// counter-clockwise when seen from outside.
func (m *TriangleMesh) Volume() float64 {
	if m.TriangleCount() == 0 {
		return 0
	}

	b := m.Bounds()
	ref := b.Min
	ref.AddSelf(&b.Max).ScaleSelf(0.5)

	tet := &geom.Tetra{}
	vol := 0.0
	for i := 0; i < m.TriangleCount(); i++ {
		i0, i1, i2 := m.Triangle(i)
		tet.Init(&ref, &m.vertices[i0], &m.vertices[i1], &m.vertices[i2])
		vol += tet.SignedVolume()
	}
	return vol
}

// Transform scales every vertex by scale and then translates it by offset.
// scale must be positive so that winding and normals are preserved.
func (m *TriangleMesh) Transform(scale float32, offset geom.Vec) error {
	if !(scale > 0) || math.IsInf(float64(scale), 0) {
		return apperrors.New(apperrors.CodeInvalidParameter, fmt.Sprintf(
			"mesh scale %g must be positive and finite", scale,
		))
	}
	for i := range m.vertices {
		m.vertices[i].ScaleSelf(scale).AddSelf(&offset)
	}
	return nil
}

// Unit returns the world space length of one mesh coordinate unit.
func (m *TriangleMesh) Unit() float64 { return m.unit }

// Rescale rewrites every vertex in place so that one coordinate unit has a
// world space length of unit. Rescaling to the current unit does nothing,
// and Rescale(1) returns the mesh to world space.
func (m *TriangleMesh) Rescale(unit float64) error {
	if !(unit > 0) || math.IsInf(unit, 0) {
		return apperrors.New(apperrors.CodeInvalidParameter, fmt.Sprintf(
			"mesh unit %g must be positive and finite", unit,
		))
	}
	if unit == m.unit {
		return nil
	}

	from, _ := geom.NewTransform(m.unit)
	to, _ := geom.NewTransform(unit)
	for i := range m.vertices {
		world := from.IndexToWorld(m.vertices[i].R3())
		m.vertices[i] = geom.FromR3(to.WorldToIndex(world))
	}
	m.unit = unit
	return nil
}
