package geom

// Grid provides an interface for reasoning over a 1D slice as if it were a
// 3D grid. Cells are ordered with x varying fastest.
type Grid struct {
	CellBounds
	Length, Area, Volume int
	uBounds              [3]int
}

// CellBounds represents a bounding box aligned to grid cells.
type CellBounds struct {
	Origin, Width [3]int
}

// NewGrid returns a new Grid instance.
func NewGrid(origin [3]int, width [3]int) *Grid {
	g := &Grid{}
	g.Init(origin, width)
	return g
}

// Init initializes a Grid instance.
func (g *Grid) Init(origin [3]int, width [3]int) {
	g.Origin = origin
	g.Width = width

	g.Length = width[0]
	g.Area = width[0] * width[1]
	g.Volume = width[0] * width[1] * width[2]

	for i := 0; i < 3; i++ {
		g.uBounds[i] = g.Origin[i] + g.Width[i]
	}
}

// Idx returns the grid index corresponding to a set of coordinates.
func (g *Grid) Idx(x, y, z int) int {
	return (x - g.Origin[0]) + (y-g.Origin[1])*g.Length +
		(z-g.Origin[2])*g.Area
}

// IdxCheck returns an index and true if the given coordinate are valid and
// false otherwise.
func (g *Grid) IdxCheck(x, y, z int) (idx int, ok bool) {
	if !g.BoundsCheck(x, y, z) {
		return -1, false
	}

	return g.Idx(x, y, z), true
}

// BoundsCheck returns true if the given coordinates are within the Grid and
// false otherwise.
func (g *Grid) BoundsCheck(x, y, z int) bool {
	return (g.Origin[0] <= x && g.Origin[1] <= y && g.Origin[2] <= z) &&
		(x < g.uBounds[0] && y < g.uBounds[1] && z < g.uBounds[2])
}

// Coords returns the x, y, z coordinates of a cell from its grid index.
func (g *Grid) Coords(idx int) (x, y, z int) {
	x = idx%g.Length + g.Origin[0]
	y = (idx%g.Area)/g.Length + g.Origin[1]
	z = idx/g.Area + g.Origin[2]
	return x, y, z
}

// Clip shrinks cb so that it lies within g. ok is false if nothing remains.
func (g *Grid) Clip(cb *CellBounds) (ok bool) {
	for i := 0; i < 3; i++ {
		lo, hi := cb.Origin[i], cb.Origin[i]+cb.Width[i]
		if lo < g.Origin[i] {
			lo = g.Origin[i]
		}
		if hi > g.uBounds[i] {
			hi = g.uBounds[i]
		}
		if hi <= lo {
			return false
		}
		cb.Origin[i], cb.Width[i] = lo, hi-lo
	}
	return true
}
