package io

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the settings which may be overridden from the environment.
type Env struct {
	LogLevel string `env:"MPM_LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"MPM_LOG_FILE"`
	Workers  int    `env:"MPM_WORKERS"`
}

// ParseEnv loads Env from environment variables.
func ParseEnv() (*Env, error) {
	e := &Env{}
	if err := env.Parse(e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Apply overwrites the fields of con which are set in e.
func (e *Env) Apply(con *SampleConfig) {
	if e.LogFile != "" {
		con.LogFile = e.LogFile
	}
	if e.Workers > 0 {
		con.Workers = e.Workers
	}
}
