/*package volume converts triangle meshes into signed distance grids.

Meshes reach the rasterizer through the MeshSource interface, whose points are
already in the index space of the grid: voxel (i, j, k) is centered on the
index space point (i, j, k), and a geom.Transform maps index space back to
world space.*/
package volume

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	apperrors "github.com/hhc2tech/mpm/errors"
	"github.com/hhc2tech/mpm/geom"
	"github.com/hhc2tech/mpm/mesh"
)

// MeshSource is the view of a polygon mesh which MeshToVolume rasterizes.
type MeshSource interface {
	PointCount() int
	PolygonCount() int
	// VertexCount returns the number of corners of a polygon.
	VertexCount(polygon int) int
	// IndexSpacePoint returns a polygon corner in index space.
	IndexSpacePoint(polygon, corner int) r3.Vec
}

// MeshAdapter presents a triangle mesh as a MeshSource.
type MeshAdapter struct {
	mesh  *mesh.TriangleMesh
	xform geom.Transform
}

var _ MeshSource = &MeshAdapter{}

// NewMeshAdapter creates an adapter for m at the given voxel size.
//
// NewMeshAdapter rewrites the vertices of m in place, from world space into
// the index space of a grid with the given voxel size. Callers that need the
// world space mesh afterwards should pass a Clone or call m.Rescale(1).
// Adapting the same mesh twice at one voxel size rescales it only once.
//
// A nil or empty mesh is accepted and yields zero counts.
func NewMeshAdapter(m *mesh.TriangleMesh, voxelSize float64) (*MeshAdapter, error) {
	xform, ok := geom.NewTransform(voxelSize)
	if !ok {
		return nil, apperrors.New(apperrors.CodeInvalidParameter, fmt.Sprintf(
			"voxel size %g must be positive and finite", voxelSize,
		))
	}

	if m != nil {
		if err := m.Rescale(voxelSize); err != nil {
			return nil, err
		}
	}

	return &MeshAdapter{mesh: m, xform: xform}, nil
}

func (ad *MeshAdapter) PointCount() int { return ad.mesh.VertexCount() }
func (ad *MeshAdapter) PolygonCount() int { return ad.mesh.TriangleCount() }

// VertexCount is 3 for every polygon.
func (ad *MeshAdapter) VertexCount(polygon int) int { return 3 }

// IndexSpacePoint returns the index space position of a triangle corner.
func (ad *MeshAdapter) IndexSpacePoint(polygon, corner int) r3.Vec {
	v0, v1, v2 := ad.mesh.Triangle(polygon)
	idx := [3]int{v0, v1, v2}[corner]
	return ad.mesh.Vertex(idx).R3()
}

// Transform returns the index space to world space mapping shared with the
// rasterizer.
func (ad *MeshAdapter) Transform() geom.Transform { return ad.xform }
