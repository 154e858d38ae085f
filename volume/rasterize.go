package volume

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	apperrors "github.com/hhc2tech/mpm/errors"
	"github.com/hhc2tech/mpm/geom"
)

const (
	// Scanline rays are offset from the lattice by these amounts so that they
	// never pass exactly through mesh vertices or edges lying on grid planes.
	rayNudgeY = 1.2345e-6
	rayNudgeZ = 2.7183e-6

	maxSweepPasses = 4
)

// Options controls MeshToVolume. Band widths are measured in voxels.
type Options struct {
	// ExteriorBand is the width of the active band outside the surface.
	ExteriorBand float64
	// InteriorBand is the width of the active band inside the surface.
	// math.MaxFloat32 makes the whole interior active.
	InteriorBand float64
	// Workers is the number of goroutines used for distance stamping. Zero
	// means runtime.NumCPU().
	Workers int
	// MaxVoxels limits the size of the dense grid. Zero means no limit.
	MaxVoxels int
	Logger    *zap.Logger
}

// DefaultOptions returns a one voxel exterior band and an untruncated
// interior.
func DefaultOptions() Options {
	return Options{ExteriorBand: 1, InteriorBand: math.MaxFloat32}
}

func (opt *Options) check() error {
	if !(opt.ExteriorBand > 0) || math.IsInf(opt.ExteriorBand, 0) {
		return apperrors.New(apperrors.CodeInvalidParameter, fmt.Sprintf(
			"exterior band %g must be positive and finite", opt.ExteriorBand,
		))
	}
	if !(opt.InteriorBand > 0) {
		return apperrors.New(apperrors.CodeInvalidParameter, fmt.Sprintf(
			"interior band %g must be positive", opt.InteriorBand,
		))
	}
	if opt.MaxVoxels < 0 {
		return apperrors.New(apperrors.CodeInvalidParameter, fmt.Sprintf(
			"voxel limit %d must be non-negative", opt.MaxVoxels,
		))
	}
	return nil
}

// rasterizer holds the working state of a single MeshToVolume call.
type rasterizer struct {
	tris    []geom.Triangle
	cells   geom.Grid
	stampR  float64
	workers int

	dist   []float64 // unsigned distance in voxels
	fixed  []bool    // dist is exact
	inside []bool
}

// MeshToVolume rasterizes src into a dense signed distance grid.
//
// Distances are exact within ceil(ExteriorBand)+1 voxels of the surface and
// are propagated further by fast sweeping when InteriorBand asks for more.
// Inside and outside are decided by ray parity along +x, so src should be
// closed. Polygons with more than three corners are split into triangle
// fans.
//
// A source with no polygons gives an empty grid. A grid which would need
// more than opt.MaxVoxels voxels gives an error matching
// errors.ErrOutOfResources.
func MeshToVolume(src MeshSource, xform geom.Transform, opt Options) (*Grid, error) {
	if err := opt.check(); err != nil {
		return nil, err
	}
	if _, ok := geom.NewTransform(xform.VoxelSize); !ok {
		return nil, apperrors.New(apperrors.CodeInvalidParameter, fmt.Sprintf(
			"voxel size %g must be positive and finite", xform.VoxelSize,
		))
	}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}

	tris, err := triangulate(src)
	if err != nil {
		return nil, err
	}
	if len(tris) == 0 {
		log.Debug("empty mesh source, returning empty grid")
		return newEmptyGrid(xform, opt.ExteriorBand*xform.VoxelSize), nil
	}

	r := &rasterizer{tris: tris, stampR: math.Ceil(opt.ExteriorBand) + 1}
	r.workers = opt.Workers
	if r.workers <= 0 {
		r.workers = runtime.NumCPU()
	}

	if err := r.initCells(opt.MaxVoxels); err != nil {
		return nil, err
	}
	log.Debug("allocated dense grid",
		zap.Int("triangles", len(tris)),
		zap.Ints("origin", r.cells.Origin[:]),
		zap.Ints("width", r.cells.Width[:]),
	)

	r.stamp()
	r.classify()
	if opt.InteriorBand > r.stampR {
		passes := r.sweep()
		log.Debug("propagated distances", zap.Int("passes", passes))
	}

	g := r.grid(xform, opt)
	log.Debug("rasterized mesh", zap.Int("activeVoxels", g.ActiveCount()))
	return g, nil
}

// triangulate collects the polygons of src as triangles, splitting larger
// polygons into fans.
func triangulate(src MeshSource) ([]geom.Triangle, error) {
	if src == nil {
		return nil, nil
	}

	tris := make([]geom.Triangle, 0, src.PolygonCount())
	for p := 0; p < src.PolygonCount(); p++ {
		n := src.VertexCount(p)
		if n < 3 {
			continue
		}

		c0 := src.IndexSpacePoint(p, 0)
		prev := src.IndexSpacePoint(p, 1)
		for c := 2; c < n; c++ {
			next := src.IndexSpacePoint(p, c)
			tri := geom.Triangle{c0, prev, next}
			for _, v := range tri {
				if !isFinite(v) {
					return nil, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf(
						"polygon %d has non-finite corner %v", p, v,
					))
				}
			}
			tris = append(tris, tri)
			prev = next
		}
	}
	return tris, nil
}

func isFinite(v r3.Vec) bool {
	for _, x := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// initCells sizes the grid to the triangles' bounding box padded by the
// stamp radius plus one voxel of background.
func (r *rasterizer) initCells(maxVoxels int) error {
	min, max := r.tris[0].Bounds()
	for i := 1; i < len(r.tris); i++ {
		lo, hi := r.tris[i].Bounds()
		min = r3.Vec{X: math.Min(min.X, lo.X), Y: math.Min(min.Y, lo.Y), Z: math.Min(min.Z, lo.Z)}
		max = r3.Vec{X: math.Max(max.X, hi.X), Y: math.Max(max.Y, hi.Y), Z: math.Max(max.Z, hi.Z)}
	}

	pad := r.stampR + 1
	lo := [3]float64{math.Floor(min.X) - pad, math.Floor(min.Y) - pad, math.Floor(min.Z) - pad}
	hi := [3]float64{math.Ceil(max.X) + pad, math.Ceil(max.Y) + pad, math.Ceil(max.Z) + pad}

	total := 1.0
	for d := 0; d < 3; d++ {
		total *= hi[d] - lo[d] + 1
	}
	limit := float64(math.MaxInt32)
	if maxVoxels > 0 {
		limit = float64(maxVoxels)
	}
	if total > limit {
		return apperrors.New(apperrors.CodeOutOfResources, fmt.Sprintf(
			"grid needs %.0f voxels, limit is %.0f", total, limit,
		))
	}

	var origin, width [3]int
	for d := 0; d < 3; d++ {
		origin[d] = int(lo[d])
		width[d] = int(hi[d]-lo[d]) + 1
	}
	r.cells.Init(origin, width)

	r.dist = make([]float64, r.cells.Volume)
	r.fixed = make([]bool, r.cells.Volume)
	r.inside = make([]bool, r.cells.Volume)
	for i := range r.dist {
		r.dist[i] = math.Inf(+1)
	}
	return nil
}

// stamp computes exact distances for every voxel within stampR of a
// triangle. Workers own disjoint z slabs.
func (r *rasterizer) stamp() {
	out := make(chan int, r.workers)

	for id := 0; id < r.workers-1; id++ {
		go r.chanStamp(id, out)
	}
	r.chanStamp(r.workers-1, out)

	for i := 0; i < r.workers; i++ {
		<-out
	}

	for i, d := range r.dist {
		r.fixed[i] = !math.IsInf(d, +1)
	}
}

// chanStamp is a worker function which stamps the z slab belonging to the
// given worker ID. The ID is sent to the out channel when it finishes.
func (r *rasterizer) chanStamp(id int, out chan<- int) {
	nz := r.cells.Width[2]
	zLo := r.cells.Origin[2] + id*nz/r.workers
	zHi := r.cells.Origin[2] + (id+1)*nz/r.workers

	R := r.stampR
	for ti := range r.tris {
		tri := &r.tris[ti]
		min, max := tri.Bounds()

		cb := geom.CellBounds{}
		lo := [3]float64{min.X - R, min.Y - R, min.Z - R}
		hi := [3]float64{max.X + R, max.Y + R, max.Z + R}
		for d := 0; d < 3; d++ {
			o := int(math.Ceil(lo[d]))
			cb.Origin[d], cb.Width[d] = o, int(math.Floor(hi[d]))-o+1
		}

		z0, z1 := cb.Origin[2], cb.Origin[2]+cb.Width[2]
		if z0 < zLo {
			z0 = zLo
		}
		if z1 > zHi {
			z1 = zHi
		}
		if z1 <= z0 {
			continue
		}
		cb.Origin[2], cb.Width[2] = z0, z1-z0
		if !r.cells.Clip(&cb) {
			continue
		}

		for z := cb.Origin[2]; z < cb.Origin[2]+cb.Width[2]; z++ {
			for y := cb.Origin[1]; y < cb.Origin[1]+cb.Width[1]; y++ {
				idx := r.cells.Idx(cb.Origin[0], y, z)
				for x := cb.Origin[0]; x < cb.Origin[0]+cb.Width[0]; x++ {
					p := r3.Vec{X: float64(x), Y: float64(y), Z: float64(z)}
					if d := tri.Dist(p); d <= R && d < r.dist[idx] {
						r.dist[idx] = d
					}
					idx++
				}
			}
		}
	}

	out <- id
}

// classify marks voxels inside the mesh by counting surface crossings of a
// ray cast along +x through each row of voxel centers.
func (r *rasterizer) classify() {
	nx, ny, nz := r.cells.Width[0], r.cells.Width[1], r.cells.Width[2]
	ox, oy, oz := r.cells.Origin[0], r.cells.Origin[1], r.cells.Origin[2]

	rows := make([][]int32, ny*nz)
	for ti := range r.tris {
		min, max := r.tris[ti].Bounds()
		jLo := imax(int(math.Ceil(min.Y-rayNudgeY)), oy)
		jHi := imin(int(math.Floor(max.Y-rayNudgeY)), oy+ny-1)
		kLo := imax(int(math.Ceil(min.Z-rayNudgeZ)), oz)
		kHi := imin(int(math.Floor(max.Z-rayNudgeZ)), oz+nz-1)
		for k := kLo; k <= kHi; k++ {
			for j := jLo; j <= jHi; j++ {
				row := (j - oy) + (k-oz)*ny
				rows[row] = append(rows[row], int32(ti))
			}
		}
	}

	var xs []float64
	for row, bucket := range rows {
		if len(bucket) == 0 {
			continue
		}
		j, k := oy+row%ny, oz+row/ny
		y, z := float64(j)+rayNudgeY, float64(k)+rayNudgeZ

		xs = xs[:0]
		for _, ti := range bucket {
			if x, ok := r.tris[ti].CrossX(y, z); ok {
				xs = append(xs, x)
			}
		}
		sort.Float64s(xs)

		idx, c := r.cells.Idx(ox, j, k), 0
		for i := 0; i < nx; i++ {
			x := float64(ox + i)
			for c < len(xs) && xs[c] < x {
				c++
			}
			r.inside[idx+i] = c%2 == 1
		}
	}
}

// sweep propagates distances from the stamped voxels to the rest of the grid
// by fast sweeping over the eight axis orderings. It returns the number of
// passes made.
func (r *rasterizer) sweep() int {
	nx, ny, nz := r.cells.Width[0], r.cells.Width[1], r.cells.Width[2]

	pass := 0
	for pass < maxSweepPasses {
		pass++
		changed := false
		for dir := 0; dir < 8; dir++ {
			x0, dx := sweepRange(nx, dir&1 != 0)
			y0, dy := sweepRange(ny, dir&2 != 0)
			z0, dz := sweepRange(nz, dir&4 != 0)

			for z := z0; z >= 0 && z < nz; z += dz {
				for y := y0; y >= 0 && y < ny; y += dy {
					for x := x0; x >= 0 && x < nx; x += dx {
						idx := x + nx*(y+ny*z)
						if r.fixed[idx] {
							continue
						}
						d := solveEikonal(
							r.neighborMin(idx, x, nx, 1),
							r.neighborMin(idx, y, ny, nx),
							r.neighborMin(idx, z, nz, nx*ny),
						)
						if d < r.dist[idx] {
							r.dist[idx] = d
							changed = true
						}
					}
				}
			}
		}
		if !changed {
			break
		}
	}
	return pass
}

func sweepRange(n int, reverse bool) (start, step int) {
	if reverse {
		return n - 1, -1
	}
	return 0, 1
}

// neighborMin returns the smaller distance of the two neighbors of idx along
// an axis with coordinate i, length n, and index stride.
func (r *rasterizer) neighborMin(idx, i, n, stride int) float64 {
	d := math.Inf(+1)
	if i > 0 {
		d = r.dist[idx-stride]
	}
	if i < n-1 && r.dist[idx+stride] < d {
		d = r.dist[idx+stride]
	}
	return d
}

// solveEikonal returns the Godunov upwind solution of |grad d| = 1 on a unit
// lattice given the smallest neighbor distance along each axis.
func solveEikonal(a, b, c float64) float64 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	if math.IsInf(a, +1) {
		return a
	}

	x := a + 1
	if x <= b {
		return x
	}
	x = (a + b + math.Sqrt(2-(a-b)*(a-b))) / 2
	if x <= c {
		return x
	}
	s := a + b + c
	return (s + math.Sqrt(s*s-3*(a*a+b*b+c*c-1))) / 3
}

// grid signs the distances, applies the bands, and builds the output grid.
func (r *rasterizer) grid(xform geom.Transform, opt Options) *Grid {
	vs := xform.VoxelSize
	bg := opt.ExteriorBand * vs

	g := &Grid{
		cells:      r.cells,
		values:     make([]float64, r.cells.Volume),
		active:     make([]bool, r.cells.Volume),
		background: bg,
		xform:      xform,
	}

	for idx, d := range r.dist {
		switch {
		case r.inside[idx] && d <= opt.InteriorBand:
			g.values[idx], g.active[idx] = -d*vs, true
		case r.inside[idx]:
			g.values[idx] = -bg
		case d <= opt.ExteriorBand:
			g.values[idx], g.active[idx] = d*vs, true
		default:
			g.values[idx] = bg
		}
		if g.active[idx] {
			g.activeCount++
		}
	}

	g.initInterpolator()
	return g
}

func imin(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func imax(a, b int) int {
	if a > b {
		return a
	}
	return b
}
