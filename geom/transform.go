package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Transform maps between world space and the index space of a voxel grid. It
// is a uniform scale with no rotation or translation: index = world / VoxelSize
// and world = index * VoxelSize.
type Transform struct {
	VoxelSize float64
}

// NewTransform returns a linear transform for the given voxel size. ok is
// false if the voxel size is not a positive finite number.
func NewTransform(voxelSize float64) (xform Transform, ok bool) {
	if !(voxelSize > 0) || math.IsInf(voxelSize, 0) {
		return Transform{}, false
	}
	return Transform{voxelSize}, true
}

// WorldToIndex converts a world space position to index space.
func (xf Transform) WorldToIndex(p WorldPos) r3.Vec {
	return r3.Vec{
		X: float64(p[0]) / xf.VoxelSize,
		Y: float64(p[1]) / xf.VoxelSize,
		Z: float64(p[2]) / xf.VoxelSize,
	}
}

// IndexToWorld converts an index space position to world space.
func (xf Transform) IndexToWorld(p r3.Vec) WorldPos {
	return WorldPos{
		float32(p.X * xf.VoxelSize),
		float32(p.Y * xf.VoxelSize),
		float32(p.Z * xf.VoxelSize),
	}
}

// VoxelVolume returns the world space volume of a single voxel.
func (xf Transform) VoxelVolume() float64 {
	return xf.VoxelSize * xf.VoxelSize * xf.VoxelSize
}
