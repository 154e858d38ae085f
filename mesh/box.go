package mesh

import (
	"github.com/hhc2tech/mpm/geom"
)

// boxIdxs lists the triangles of a box whose corners are numbered
// x + 2y + 4z. Each face winds counter-clockwise when seen from outside.
var boxIdxs = []int{
	0, 2, 3, 0, 3, 1, // -z
	4, 5, 7, 4, 7, 6, // +z
	0, 1, 5, 0, 5, 4, // -y
	2, 6, 7, 2, 7, 3, // +y
	0, 4, 6, 0, 6, 2, // -x
	1, 3, 7, 1, 7, 5, // +x
}

// Box returns a closed mesh of an axis-aligned box with the given widths
// whose lowest corner is at origin.
func Box(w, h, d float32, origin geom.Vec) *TriangleMesh {
	vertices := make([]geom.Vec, 8)
	for i := range vertices {
		vertices[i] = geom.Vec{
			origin[0] + float32(i&1)*w,
			origin[1] + float32((i>>1)&1)*h,
			origin[2] + float32((i>>2)&1)*d,
		}
	}

	idxs := append([]int(nil), boxIdxs...)
	return &TriangleMesh{vertices: vertices, vertexIdxs: idxs, unit: 1}
}
