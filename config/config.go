// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/linsolve/linsolve"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Log formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config is the root of the YAML document.
type Config struct {
	Solver  SolverConfig  `yaml:"solver"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// SolverConfig mirrors linsolve.Options.
type SolverConfig struct {
	Method                    string  `yaml:"method"`
	ZeroTolerance             float64 `yaml:"zero_tolerance"`
	SymmetryTolerance         float64 `yaml:"symmetry_tolerance"`
	PositiveDefiniteThreshold float64 `yaml:"positive_definite_threshold"`
	ResidualTolerance         float64 `yaml:"residual_tolerance"`
	EigenMaxIterations        int     `yaml:"eigen_max_iterations"`
	NormalEquations           bool    `yaml:"normal_equations"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxConnections  int           `yaml:"max_connections"` // 0 = unlimited
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// LoggingConfig selects the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	d := linsolve.DefaultOptions()

	return &Config{
		Solver: SolverConfig{
			Method:                    string(d.Method),
			ZeroTolerance:             d.ZeroTolerance,
			SymmetryTolerance:         d.SymmetryTolerance,
			PositiveDefiniteThreshold: d.PositiveDefiniteThreshold,
			ResidualTolerance:         d.ResidualTolerance,
			EigenMaxIterations:        d.EigenMaxIterations,
			NormalEquations:           d.NormalEquations,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  20 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    8 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: FormatJSON,
		},
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes data over Default and validates the result. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every field; the first violation is returned.
func (c *Config) Validate() error {
	s := c.Solver
	if _, err := linsolve.ParseMethod(s.Method); err != nil {
		return invalid("solver.method", err)
	}
	switch {
	case !finite(s.ZeroTolerance) || s.ZeroTolerance < 0:
		return invalid("solver.zero_tolerance", fmt.Errorf("%g must be finite and ≥ 0", s.ZeroTolerance))
	case !finite(s.SymmetryTolerance) || s.SymmetryTolerance < 0:
		return invalid("solver.symmetry_tolerance", fmt.Errorf("%g must be finite and ≥ 0", s.SymmetryTolerance))
	case !finite(s.PositiveDefiniteThreshold) || s.PositiveDefiniteThreshold <= 0:
		return invalid("solver.positive_definite_threshold", fmt.Errorf("%g must be finite and > 0", s.PositiveDefiniteThreshold))
	case !finite(s.ResidualTolerance) || s.ResidualTolerance <= 0:
		return invalid("solver.residual_tolerance", fmt.Errorf("%g must be finite and > 0", s.ResidualTolerance))
	case s.EigenMaxIterations <= 0:
		return invalid("solver.eigen_max_iterations", fmt.Errorf("%d must be > 0", s.EigenMaxIterations))
	}

	v := c.Server
	switch {
	case v.Addr == "":
		return invalid("server.addr", errors.New("must not be empty"))
	case v.ReadTimeout < 0, v.WriteTimeout < 0, v.RequestTimeout < 0, v.ShutdownTimeout < 0:
		return invalid("server timeouts", errors.New("must not be negative"))
	case v.MaxConnections < 0:
		return invalid("server.max_connections", fmt.Errorf("%d must be ≥ 0", v.MaxConnections))
	case v.MaxBodyBytes <= 0:
		return invalid("server.max_body_bytes", fmt.Errorf("%d must be > 0", v.MaxBodyBytes))
	}

	if _, err := c.Level(); err != nil {
		return invalid("logging.level", err)
	}
	if f := c.Logging.Format; f != FormatJSON && f != FormatConsole {
		return invalid("logging.format", fmt.Errorf("%q is not %q or %q", f, FormatJSON, FormatConsole))
	}

	return nil
}

// SolverOptions converts the solver section into linsolve options.
// c must be valid.
func (c *Config) SolverOptions() []linsolve.Option {
	s := c.Solver
	m, _ := linsolve.ParseMethod(s.Method)

	return []linsolve.Option{
		linsolve.WithMethod(m),
		linsolve.WithZeroTolerance(s.ZeroTolerance),
		linsolve.WithSymmetryTolerance(s.SymmetryTolerance),
		linsolve.WithPositiveDefiniteThreshold(s.PositiveDefiniteThreshold),
		linsolve.WithResidualTolerance(s.ResidualTolerance),
		linsolve.WithEigenMaxIterations(s.EigenMaxIterations),
		linsolve.WithNormalEquations(s.NormalEquations),
	}
}

// Level parses logging.level.
func (c *Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.Logging.Level)
}

// Logger builds a zap logger whose level is controlled by level, so a
// running process can retune it (see Watcher). A nil level is created from
// logging.level.
func (c *Config) Logger(level *zap.AtomicLevel) (*zap.Logger, error) {
	var zc zap.Config
	if c.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Encoding = c.Logging.Format
	if level == nil {
		lvl, err := c.Level()
		if err != nil {
			return nil, invalid("logging.level", err)
		}
		al := zap.NewAtomicLevelAt(lvl)
		level = &al
	}
	zc.Level = *level

	return zc.Build()
}

func invalid(field string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, field, err)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
