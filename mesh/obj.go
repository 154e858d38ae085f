package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/hhc2tech/mpm/errors"
	"github.com/hhc2tech/mpm/geom"
)

// LoadOBJ reads a Wavefront OBJ file. See ReadOBJ.
func LoadOBJ(fname string) (*TriangleMesh, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ReadOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fname, err)
	}
	return m, nil
}

// objReader accumulates the records of an OBJ file.
type objReader struct {
	vertices  []geom.Vec
	normals   []geom.Vec
	texCoords [][2]float32

	vertexIdxs, normalIdxs, texIdxs []int
	faces, texFaces, normalFaces   int
}

// ReadOBJ parses the v, vt, vn, and f records of an OBJ stream. Faces may use
// the corner forms a, a/b, a//c, and a/b/c with 1-based or negative
// (relative) indices. Polygons with more than three corners are split into a
// triangle fan. All other record types are ignored.
//
// Malformed records produce an error matching errors.ErrInvalidInput which
// names the offending line.
func ReadOBJ(r io.Reader) (*TriangleMesh, error) {
	or := &objReader{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		if err := or.parseLine(scanner.Text()); err != nil {
			return nil, apperrors.Wrap(
				apperrors.CodeInvalidInput, fmt.Sprintf("line %d", lineNum), err,
			)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return or.mesh()
}

func (or *objReader) parseLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseVec(fields[1:], 3)
		if err != nil {
			return err
		}
		or.vertices = append(or.vertices, v)
	case "vn":
		v, err := parseVec(fields[1:], 3)
		if err != nil {
			return err
		}
		or.normals = append(or.normals, v)
	case "vt":
		v, err := parseVec(fields[1:], 1)
		if err != nil {
			return err
		}
		or.texCoords = append(or.texCoords, [2]float32{v[0], v[1]})
	case "f":
		return or.parseFace(fields[1:])
	}
	return nil
}

// parseVec reads up to three floats, requiring at least min of them. Missing
// components are zero and extra components (such as a w weight) are ignored.
func parseVec(fields []string, min int) (geom.Vec, error) {
	var v geom.Vec
	if len(fields) < min {
		return v, fmt.Errorf("expected %d components, found %d", min, len(fields))
	}
	for i := 0; i < 3 && i < len(fields); i++ {
		x, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(x)
	}
	return v, nil
}

type corner struct {
	v, t, n           int
	hasTex, hasNormal bool
}

func (or *objReader) parseFace(tokens []string) error {
	if len(tokens) < 3 {
		return fmt.Errorf("face has %d corners, need at least 3", len(tokens))
	}

	corners := make([]corner, len(tokens))
	for i, tok := range tokens {
		c, err := or.parseCorner(tok)
		if err != nil {
			return err
		}
		if i > 0 && (c.hasTex != corners[0].hasTex || c.hasNormal != corners[0].hasNormal) {
			return fmt.Errorf("face corner '%s' does not match the format of '%s'",
				tok, tokens[0])
		}
		corners[i] = c
	}

	for i := 1; i+1 < len(corners); i++ {
		tri := [3]corner{corners[0], corners[i], corners[i+1]}
		for _, c := range tri {
			or.vertexIdxs = append(or.vertexIdxs, c.v)
			if c.hasTex {
				or.texIdxs = append(or.texIdxs, c.t)
			}
			if c.hasNormal {
				or.normalIdxs = append(or.normalIdxs, c.n)
			}
		}
		or.faces++
		if corners[0].hasTex {
			or.texFaces++
		}
		if corners[0].hasNormal {
			or.normalFaces++
		}
	}
	return nil
}

func (or *objReader) parseCorner(tok string) (corner, error) {
	c := corner{}
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return c, fmt.Errorf("face corner '%s' has too many parts", tok)
	}

	var err error
	if c.v, err = resolveIdx(parts[0], len(or.vertices)); err != nil {
		return c, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.t, err = resolveIdx(parts[1], len(or.texCoords)); err != nil {
			return c, err
		}
		c.hasTex = true
	}
	if len(parts) > 2 {
		if c.n, err = resolveIdx(parts[2], len(or.normals)); err != nil {
			return c, err
		}
		c.hasNormal = true
	}
	return c, nil
}

// resolveIdx converts a 1-based OBJ index, or a negative index relative to
// the n elements read so far, to a 0-based index.
func resolveIdx(s string, n int) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("face index '%s' is not an integer", s)
	}
	switch {
	case idx > 0:
		return idx - 1, nil
	case idx < 0 && n+idx >= 0:
		return n + idx, nil
	}
	return 0, fmt.Errorf("face index %d is out of range", idx)
}

func (or *objReader) mesh() (*TriangleMesh, error) {
	m, err := New(or.vertices, or.vertexIdxs)
	if err != nil {
		return nil, err
	}

	if or.normalFaces > 0 {
		if or.normalFaces != or.faces {
			return nil, apperrors.New(apperrors.CodeInvalidInput,
				"only some faces have normal indices")
		}
		if err := m.SetNormals(or.normals, or.normalIdxs); err != nil {
			return nil, err
		}
	}
	if or.texFaces > 0 {
		if or.texFaces != or.faces {
			return nil, apperrors.New(apperrors.CodeInvalidInput,
				"only some faces have texture indices")
		}
		if err := m.SetTexCoords(or.texCoords, or.texIdxs); err != nil {
			return nil, err
		}
	}
	return m, nil
}
