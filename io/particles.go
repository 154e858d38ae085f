package io

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/phil-mansfield/table"

	apperrors "github.com/hhc2tech/mpm/errors"
	"github.com/hhc2tech/mpm/geom"
	"github.com/hhc2tech/mpm/particle"
)

var end = binary.LittleEndian

// particleSize is the number of bytes one particle occupies across the
// position, velocity, mass, volume, lambda, and mu blocks.
const particleSize = 3*4 + 3*4 + 4*4

// Flags stored in ParticleHeader.Flags.
const (
	// HasVolume is set when particle volumes were assigned.
	HasVolume int64 = 1 << iota
)

// ParticleHeader describes the contents of a binary particle file. It is
// preceded on disk by an int32 endianness flag and its own int32 size.
type ParticleHeader struct {
	Count     int64
	VoxelSize float64
	Seed      int64
	Generator int64
	Flags     int64
}

// endianness is a utility function converting an endianness flag to a
// byte order.
func endianness(flag int32) (binary.ByteOrder, error) {
	switch flag {
	case 0:
		return binary.LittleEndian, nil
	case -1:
		return binary.BigEndian, nil
	}
	return nil, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf(
		"unrecognized endianness flag %d", flag,
	))
}

// WriteParticles writes hd followed by the position, velocity, mass, volume,
// lambda, and mu blocks of ps. hd.Count must equal ps.Len().
func WriteParticles(wr io.Writer, hd *ParticleHeader, ps particle.Collection) error {
	if int(hd.Count) != ps.Len() {
		return apperrors.New(apperrors.CodeInvalidParameter, fmt.Sprintf(
			"header count %d does not match %d particles", hd.Count, ps.Len(),
		))
	}

	xs := make([]geom.WorldPos, len(ps))
	vs := make([]geom.Vec, len(ps))
	ms := make([]float32, len(ps))
	vols := make([]float32, len(ps))
	lambdas := make([]float32, len(ps))
	mus := make([]float32, len(ps))
	for i, p := range ps {
		xs[i], vs[i], ms[i] = p.Position, p.Velocity, p.Mass
		vols[i], lambdas[i], mus[i] = p.Volume, p.Lambda, p.Mu
	}

	bw := bufio.NewWriter(wr)
	endiannessFlag := int32(0)
	blocks := []interface{}{
		endiannessFlag, int32(unsafe.Sizeof(ParticleHeader{})), hd,
		xs, vs, ms, vols, lambdas, mus,
	}
	for _, b := range blocks {
		if err := binary.Write(bw, end, b); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadParticles reads a file written by WriteParticles.
func ReadParticles(rd io.Reader) (*ParticleHeader, particle.Collection, error) {
	br := bufio.NewReader(rd)

	// order doesn't matter for this read, since flags are symmetric.
	var flag int32
	if err := binary.Read(br, binary.LittleEndian, &flag); err != nil {
		return nil, nil, truncated(err)
	}
	order, err := endianness(flag)
	if err != nil {
		return nil, nil, err
	}

	var headerSize int32
	if err := binary.Read(br, order, &headerSize); err != nil {
		return nil, nil, truncated(err)
	}
	if headerSize != int32(unsafe.Sizeof(ParticleHeader{})) {
		return nil, nil, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf(
			"expected ParticleHeader size of %d, found %d",
			unsafe.Sizeof(ParticleHeader{}), headerSize,
		))
	}

	hd := &ParticleHeader{}
	if err := binary.Read(br, order, hd); err != nil {
		return nil, nil, truncated(err)
	}
	if hd.Count < 0 {
		return nil, nil, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf(
			"negative particle count %d", hd.Count,
		))
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return nil, nil, err
	}
	if hd.Count > int64(len(body)/particleSize) {
		return nil, nil, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf(
			"header count %d needs %d bytes per particle, but only %d "+
				"bytes follow the header", hd.Count, particleSize, len(body),
		))
	}

	n := int(hd.Count)
	br = bufio.NewReader(bytes.NewReader(body))
	xs := make([]geom.WorldPos, n)
	vs := make([]geom.Vec, n)
	ms := make([]float32, n)
	vols := make([]float32, n)
	lambdas := make([]float32, n)
	mus := make([]float32, n)
	for _, b := range []interface{}{xs, vs, ms, vols, lambdas, mus} {
		if err := binary.Read(br, order, b); err != nil {
			return nil, nil, truncated(err)
		}
	}

	ps := make(particle.Collection, n)
	for i := range ps {
		ps[i] = &particle.Particle{
			Position: xs[i], Velocity: vs[i], Mass: ms[i],
			Volume: vols[i], Lambda: lambdas[i], Mu: mus[i],
		}
	}
	return hd, ps, nil
}

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "truncated particle file", err)
	}
	return err
}

// WriteParticleFile writes ps to the binary file fname.
func WriteParticleFile(fname string, hd *ParticleHeader, ps particle.Collection) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := WriteParticles(f, hd, ps); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadParticleFile reads the binary file fname.
func ReadParticleFile(fname string) (*ParticleHeader, particle.Collection, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	hd, ps, err := ReadParticles(f)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", fname, err)
	}
	return hd, ps, nil
}

const tableHeader = "# x y z vx vy vz mass volume lambda mu"

// tableColumns is the number of columns written by WriteParticleTable.
const tableColumns = 10

// WriteParticleTable writes one whitespace separated row per particle.
func WriteParticleTable(wr io.Writer, ps particle.Collection) error {
	bw := bufio.NewWriter(wr)
	if _, err := fmt.Fprintln(bw, tableHeader); err != nil {
		return err
	}
	for _, p := range ps {
		_, err := fmt.Fprintf(bw, "%.9g %.9g %.9g %.9g %.9g %.9g %.9g %.9g %.9g %.9g\n",
			p.Position[0], p.Position[1], p.Position[2],
			p.Velocity[0], p.Velocity[1], p.Velocity[2],
			p.Mass, p.Volume, p.Lambda, p.Mu,
		)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteParticleTableFile writes ps to the text file fname.
func WriteParticleTableFile(fname string, ps particle.Collection) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := WriteParticleTable(f, ps); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadParticleTable reads a file written by WriteParticleTable.
func ReadParticleTable(fname string) (particle.Collection, error) {
	colIdxs := make([]int, tableColumns)
	for i := range colIdxs {
		colIdxs[i] = i
	}
	cols, err := table.ReadTable(fname, colIdxs, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "reading "+fname, err)
	}

	if len(cols) < tableColumns {
		return particle.Collection{}, nil
	}

	ps := make(particle.Collection, len(cols[0]))
	for i := range ps {
		ps[i] = &particle.Particle{
			Position: geom.WorldPos{f32(cols[0][i]), f32(cols[1][i]), f32(cols[2][i])},
			Velocity: geom.Vec{f32(cols[3][i]), f32(cols[4][i]), f32(cols[5][i])},
			Mass:     f32(cols[6][i]),
			Volume:   f32(cols[7][i]),
			Lambda:   f32(cols[8][i]),
			Mu:       f32(cols[9][i]),
		}
	}
	return ps, nil
}

func f32(x float64) float32 { return float32(x) }
