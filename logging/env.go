package logging

import (
	"fmt"
	"io"

	"github.com/caarlos0/env/v11"
)

// EnvConfig is the environment driven logging configuration used by the CLI
// and the examples.
type EnvConfig struct {
	Level     string `env:"COMPMESH_LOG_LEVEL"  envDefault:"info"`
	Format    string `env:"COMPMESH_LOG_FORMAT" envDefault:"text"`
	AddSource bool   `env:"COMPMESH_LOG_SOURCE" envDefault:"false"`
}

// LoggerConfigFromEnv reads COMPMESH_LOG_* variables into a LoggerConfig
// writing to out.
func LoggerConfigFromEnv(out io.Writer) (*LoggerConfig, error) {
	var ec EnvConfig
	if err := env.Parse(&ec); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg := DefaultLoggerConfig()
	cfg.Level = ParseLogLevel(ec.Level)
	cfg.Format = ec.Format
	cfg.AddSource = ec.AddSource
	if out != nil {
		cfg.Output = out
	}
	return cfg, nil
}

// NewLoggerFromEnv is a shortcut for NewLogger(LoggerConfigFromEnv(out)).
func NewLoggerFromEnv(out io.Writer) (*MeshLogger, error) {
	cfg, err := LoggerConfigFromEnv(out)
	if err != nil {
		return nil, err
	}
	return NewLogger(cfg), nil
}
