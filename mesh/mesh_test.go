package mesh

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hhc2tech/mpm/errors"
	"github.com/hhc2tech/mpm/geom"
)

func TestBox(t *testing.T) {
	m := Box(2, 3, 4, geom.Vec{1, 1, 1})
	assert.Equal(t, 8, m.VertexCount())
	assert.Equal(t, 12, m.TriangleCount())
	assert.InDelta(t, 24.0, m.Volume(), 1e-5)

	b := m.Bounds()
	assert.Equal(t, geom.Vec{1, 1, 1}, b.Min)
	assert.Equal(t, geom.Vec{3, 4, 5}, b.Max)
}

func TestNewRejectsBadIndices(t *testing.T) {
	vs := []geom.Vec{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

	_, err := New(vs, []int{0, 1})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	_, err = New(vs, []int{0, 1, 3})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	m, err := New(vs, []int{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, 1, m.TriangleCount())
	assert.False(t, m.HasNormals())
	assert.False(t, m.HasTexCoords())
}

func TestEmptyMesh(t *testing.T) {
	var m *TriangleMesh
	assert.Equal(t, 0, m.VertexCount())
	assert.Equal(t, 0, m.TriangleCount())

	m, err := New(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Volume())
	assert.True(t, m.Bounds().Empty())
}

func TestRescaleExactlyOnce(t *testing.T) {
	m := Box(1, 2, 3, geom.Vec{-0.5, 0, 0.25})
	orig := m.Clone()

	require.NoError(t, m.Rescale(0.1))
	require.NoError(t, m.Rescale(0.1))
	assert.Equal(t, 0.1, m.Unit())
	for i := 0; i < m.VertexCount(); i++ {
		v, o := m.Vertex(i), orig.Vertex(i)
		for k := 0; k < 3; k++ {
			assert.Equal(t, float32(float64(o[k])/0.1), v[k])
		}
	}

	require.NoError(t, m.Rescale(1))
	for i := 0; i < m.VertexCount(); i++ {
		v, o := m.Vertex(i), orig.Vertex(i)
		for k := 0; k < 3; k++ {
			assert.InDelta(t, o[k], v[k], 1e-6)
		}
	}

	assert.Error(t, m.Rescale(0))
	assert.Error(t, m.Rescale(-1))
}

func TestCloneIsDeep(t *testing.T) {
	m := Box(1, 1, 1, geom.Vec{})
	c := m.Clone()
	c.SetVertex(0, geom.Vec{9, 9, 9})
	assert.Equal(t, geom.Vec{0, 0, 0}, m.Vertex(0))
	assert.Equal(t, geom.Vec{9, 9, 9}, c.Vertex(0))
}

func TestTransform(t *testing.T) {
	m := Box(1, 1, 1, geom.Vec{})
	require.NoError(t, m.Transform(2, geom.Vec{1, 0, 0}))
	b := m.Bounds()
	assert.Equal(t, geom.Vec{1, 0, 0}, b.Min)
	assert.Equal(t, geom.Vec{3, 2, 2}, b.Max)
	assert.InDelta(t, 8.0, m.Volume(), 1e-5)

	assert.Error(t, m.Transform(0, geom.Vec{}))
}

const tetraOBJ = `# a unit tetrahedron
o tet
v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
vt 0 0
vt 1 0
vt 0 1
vn 0 0 -1
vn 0 -1 0
vn -1 0 0
vn 0.577 0.577 0.577
f 1/1/1 3/3/1 2/2/1
f 1/1/2 2/2/2 4/3/2
f 1/1/3 4/3/3 3/2/3
f 2/1/4 3/2/4 4/3/4
`

func TestReadOBJ(t *testing.T) {
	m, err := ReadOBJ(strings.NewReader(tetraOBJ))
	require.NoError(t, err)

	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 4, m.TriangleCount())
	assert.True(t, m.HasNormals())
	assert.True(t, m.HasTexCoords())
	assert.Equal(t, 4, m.NormalCount())
	assert.Equal(t, 3, m.TexCoordCount())

	v0, v1, v2 := m.Triangle(0)
	assert.Equal(t, []int{0, 2, 1}, []int{v0, v1, v2})
	n0, _, _ := m.NormalTriangle(3)
	assert.Equal(t, 3, n0)
	_, t1, _ := m.TexTriangle(1)
	assert.Equal(t, 1, t1)

	assert.InDelta(t, 1.0/6, m.Volume(), 1e-6)
}

func TestReadOBJCornerForms(t *testing.T) {
	table := []struct {
		face              string
		hasTex, hasNormal bool
	}{
		{"f 1 2 3", false, false},
		{"f 1/1 2/1 3/1", true, false},
		{"f 1//1 2//1 3//1", false, true},
		{"f 1/1/1 2/1/1 3/1/1", true, true},
		{"f -3 -2 -1", false, false},
	}

	header := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvn 0 0 1\n"
	for i, test := range table {
		m, err := ReadOBJ(strings.NewReader(header + test.face + "\n"))
		require.NoError(t, err, "case %d", i)
		assert.Equal(t, 1, m.TriangleCount(), "case %d", i)
		assert.Equal(t, test.hasTex, m.HasTexCoords(), "case %d", i)
		assert.Equal(t, test.hasNormal, m.HasNormals(), "case %d", i)

		v0, v1, v2 := m.Triangle(0)
		assert.Equal(t, []int{0, 1, 2}, []int{v0, v1, v2}, "case %d", i)
	}
}

func TestReadOBJFan(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n"
	m, err := ReadOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 2, m.TriangleCount())

	v0, v1, v2 := m.Triangle(1)
	assert.Equal(t, []int{0, 2, 3}, []int{v0, v1, v2})
}

func TestReadOBJErrors(t *testing.T) {
	table := []struct {
		src, line string
	}{
		{"v 0 0\n", "line 1"},
		{"v 0 0 0\nv 1 x 0\n", "line 2"},
		{"v 0 0 0\nv 1 0 0\nf 1 2\n", "line 3"},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 0\n", "line 4"},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 -4\n", "line 4"},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2 3\n", "line 5"},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", "out of range"},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nvn 0 0 1\nf 1//1 2//1 3//1\nf 2 4 3\n", "normal"},
	}

	for i, test := range table {
		_, err := ReadOBJ(strings.NewReader(test.src))
		require.Error(t, err, "case %d", i)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput), "case %d", i)
		assert.Contains(t, err.Error(), test.line, "case %d", i)
	}
}
