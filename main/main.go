package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	plt "github.com/phil-mansfield/pyplot"
	"go.uber.org/zap"

	"github.com/hhc2tech/mpm/geom"
	"github.com/hhc2tech/mpm/io"
	"github.com/hhc2tech/mpm/logger"
	"github.com/hhc2tech/mpm/material"
	"github.com/hhc2tech/mpm/math/rand"
	"github.com/hhc2tech/mpm/mesh"
	"github.com/hhc2tech/mpm/particle"
	"github.com/hhc2tech/mpm/sample"
)

func main() {
	var (
		sampleStr, inspect string
		exampleConfig      string
	)
	vars := map[string]*string{
		"Sample":        &sampleStr,
		"Inspect":       &inspect,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&sampleStr, "Sample", "",
		"Configuration file for [Sample] mode. The file must also contain "+
			"a [Material] section.",
	)
	flag.StringVar(
		&inspect, "Inspect", "",
		"Particle file to summarize. Files ending in .txt are read as "+
			"tables, everything else as binary.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. Accepted arguments are 'Sample' and 'Material'.",
	)
	flag.Parse()

	env, err := io.ParseEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if !logger.ValidLevel(env.LogLevel) {
		fmt.Fprintf(os.Stderr, "Unrecognized MPM_LOG_LEVEL '%s'.\n", env.LogLevel)
		os.Exit(1)
	}
	if err := logger.Init(env.LogLevel, env.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	defer logger.Sync()

	modeName, err := getModeName(vars)
	if err != nil {
		logger.Fatal(err.Error())
	}

	switch modeName {
	case "Sample":
		wrap, err := io.ReadSampleConfig(sampleStr)
		if err != nil {
			logger.Fatal("Could not read job file.", zap.Error(err))
		}
		env.Apply(&wrap.Sample)

		if wrap.Sample.LogFile != env.LogFile {
			if err := logger.Init(env.LogLevel, wrap.Sample.LogFile); err != nil {
				logger.Fatal("Could not open log file.", zap.Error(err))
			}
		}

		if err := sampleMain(wrap); err != nil {
			logger.Fatal("Sampling failed.", zap.Error(err))
		}

	case "Inspect":
		if err := inspectMain(inspect); err != nil {
			logger.Fatal("Could not read particle file.", zap.Error(err))
		}

	case "ExampleConfig":
		switch exampleConfig {
		case "Sample":
			fmt.Println(io.ExampleSampleFile)
			fmt.Println()
			fmt.Println(io.ExampleMaterialFile)
		case "Material":
			fmt.Println(io.ExampleMaterialFile)
		default:
			logger.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'Sample' and 'Material'.",
			)
		}
	default:
		panic("Impossible")
	}
}

// getModeName returns the name of the mode and fails with a descriptive error
// if the user provided less or more than one mode flag.
func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but mpm-sample only "+
				"accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

// sampleMain reads the mesh named in con, samples it, and writes the
// particles along with the optional manifest and plot.
func sampleMain(wrap *io.SampleWrapper) error {
	start := time.Now()
	con, mc := &wrap.Sample, &wrap.Material

	m, err := mesh.LoadOBJ(con.Mesh)
	if err != nil {
		return err
	}
	meshVolume := m.Volume()
	logger.Info("loaded mesh",
		zap.String("file", con.Mesh),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()),
		zap.Float64("volume", meshVolume),
	)

	mat, err := material.New(
		geom.Vec{float32(mc.VelocityX), float32(mc.VelocityY), float32(mc.VelocityZ)},
		mc.Mass, mc.YoungModulus, mc.PoissonRatio,
	)
	if err != nil {
		return err
	}

	gt, _ := rand.ParseGeneratorType(con.Generator)
	seed := uint32(con.Seed)
	run, err := sample.New(
		m, mat, con.VoxelSize, con.Density, con.Spread, seed,
		sample.WithLogger(logger.Log),
		sample.WithGenerator(gt),
		sample.WithWorkers(con.Workers),
		sample.WithMaxVoxels(con.MaxVoxels),
		sample.WithMaxParticles(con.MaxParticles),
	)
	if err != nil {
		return err
	}
	ps := run.Particles()

	hd := &io.ParticleHeader{
		Count:     int64(ps.Len()),
		VoxelSize: con.VoxelSize,
		Seed:      int64(seed),
		Generator: int64(gt),
	}
	if con.MeshVolume() {
		if meshVolume > 0 && ps.Len() > 0 {
			if err := ps.AssignVolume(meshVolume); err != nil {
				return err
			}
			hd.Flags |= io.HasVolume
		} else {
			logger.Warn("mesh has no volume, particle volumes left unset",
				zap.Float64("volume", meshVolume),
			)
		}
	}

	if err := os.MkdirAll(filepath.Dir(con.Output), 0755); err != nil {
		return err
	}
	format, _ := con.Format()
	switch format {
	case io.Binary:
		err = io.WriteParticleFile(con.Output, hd, ps)
	case io.Table:
		err = io.WriteParticleTableFile(con.Output, ps)
	}
	if err != nil {
		return err
	}
	logger.Info("wrote particles",
		zap.String("file", con.Output),
		zap.Stringer("format", format),
		zap.Int("particles", ps.Len()),
	)

	if con.Manifest {
		man := manifest(con, run, meshVolume, time.Since(start))
		fname := io.ManifestName(con.Output)
		if err := io.WriteManifest(fname, man); err != nil {
			return err
		}
		logger.Debug("wrote manifest", zap.String("file", fname))
	}

	if con.ValidPlot() {
		plotParticles(ps, con.Plot)
		plt.Execute()
		logger.Debug("wrote plot", zap.String("file", con.Plot))
	}
	return nil
}

func manifest(
	con *io.SampleConfig, run *sample.MeshToParticle,
	meshVolume float64, elapsed time.Duration,
) *io.Manifest {
	ps, mat, grid, stats := run.Particles(), run.Material(), run.Grid(), run.Stats()
	format, _ := con.Format()
	gt, _ := rand.ParseGeneratorType(con.Generator)
	cb := grid.CellBounds()

	man := &io.Manifest{
		Mesh:       con.Mesh,
		Output:     con.Output,
		Format:     format.String(),
		Generator:  gt.String(),
		Seed:       uint32(con.Seed),
		VoxelSize:  con.VoxelSize,
		Density:    con.Density,
		Spread:     con.Spread,
		MeshVolume: meshVolume,
		Material: io.ManifestMaterial{
			Velocity: mat.Velocity(),
			Mass:     mat.Mass(),
			Lambda:   mat.Lambda(),
			Mu:       mat.Mu(),
		},
		Grid: io.ManifestGrid{Origin: cb.Origin, Width: cb.Width},
		Counts: io.ManifestCounts{
			Voxels:       grid.VoxelCount(),
			ActiveVoxels: stats.ActiveVoxels,
			Candidates:   stats.Candidates,
			Particles:    ps.Len(),
		},
		Elapsed: elapsed,
	}
	if ps.Len() > 0 {
		b := ps.Bounds()
		man.BoundsMin, man.BoundsMax = b.Min, b.Max
	}
	return man
}

// plotParticles saves an x-z projection of the particle positions.
func plotParticles(ps particle.Collection, fname string) {
	xs, zs := make([]float64, ps.Len()), make([]float64, ps.Len())
	for i, p := range ps {
		xs[i], zs[i] = float64(p.Position[0]), float64(p.Position[2])
	}

	plt.Figure(plt.FigSize(8, 8))
	plt.Plot(xs, zs, ",k")
	plt.Title(fmt.Sprintf("%d particles", ps.Len()))
	plt.XLabel(`$X$`, plt.FontSize(16))
	plt.YLabel(`$Z$`, plt.FontSize(16))
	plt.SaveFig(fname)
}

// inspectMain prints a summary of a particle file to stdout.
func inspectMain(fname string) error {
	var (
		ps  particle.Collection
		err error
	)
	if strings.ToLower(filepath.Ext(fname)) == ".txt" {
		ps, err = io.ReadParticleTable(fname)
	} else {
		var hd *io.ParticleHeader
		hd, ps, err = io.ReadParticleFile(fname)
		if err == nil {
			fmt.Printf("VoxelSize: %g\n", hd.VoxelSize)
			fmt.Printf("Generator: %s\n", rand.GeneratorType(hd.Generator))
			fmt.Printf("Seed:      %d\n", hd.Seed)
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("Particles: %d\n", ps.Len())
	if ps.Len() == 0 {
		return nil
	}
	b := ps.Bounds()
	fmt.Printf("Bounds:    [%.4g %.4g %.4g] -> [%.4g %.4g %.4g]\n",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
	fmt.Printf("Mass:      %.6g\n", ps.TotalMass())
	if p := ps[0]; p.HasVolume() {
		fmt.Printf("Volume:    %.6g per particle\n", p.Volume)
	}
	fmt.Printf("Lambda:    %.6g\n", ps[0].Lambda)
	fmt.Printf("Mu:        %.6g\n", ps[0].Mu)
	return nil
}
