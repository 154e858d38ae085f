package io

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest summarizes a sampling run.
type Manifest struct {
	Mesh       string  `yaml:"mesh"`
	Output     string  `yaml:"output"`
	Format     string  `yaml:"format"`
	Generator  string  `yaml:"generator"`
	Seed       uint32  `yaml:"seed"`
	VoxelSize  float64 `yaml:"voxel_size"`
	Density    float64 `yaml:"density"`
	Spread     float64 `yaml:"spread"`
	MeshVolume float64 `yaml:"mesh_volume"`

	Material ManifestMaterial `yaml:"material"`
	Grid     ManifestGrid     `yaml:"grid"`
	Counts   ManifestCounts   `yaml:"counts"`

	BoundsMin [3]float32    `yaml:"bounds_min,flow"`
	BoundsMax [3]float32    `yaml:"bounds_max,flow"`
	Elapsed   time.Duration `yaml:"elapsed"`
}

type ManifestMaterial struct {
	Velocity [3]float32 `yaml:"velocity,flow"`
	Mass     float32    `yaml:"mass"`
	Lambda   float32    `yaml:"lambda"`
	Mu       float32    `yaml:"mu"`
}

type ManifestGrid struct {
	Origin [3]int `yaml:"origin,flow"`
	Width  [3]int `yaml:"width,flow"`
}

type ManifestCounts struct {
	Voxels       int `yaml:"voxels"`
	ActiveVoxels int `yaml:"active_voxels"`
	Candidates   int `yaml:"candidates"`
	Particles    int `yaml:"particles"`
}

// ManifestName returns the manifest path which accompanies an output file.
func ManifestName(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".manifest.yaml"
}

// WriteManifest writes man to fname as YAML, creating parent directories.
func WriteManifest(fname string, man *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(fname), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(man)
	if err != nil {
		return err
	}
	return os.WriteFile(fname, data, 0644)
}

// ReadManifest reads a manifest written by WriteManifest.
func ReadManifest(fname string) (*Manifest, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	man := &Manifest{}
	if err := yaml.Unmarshal(data, man); err != nil {
		return nil, err
	}
	return man, nil
}
