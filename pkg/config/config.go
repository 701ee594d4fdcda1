// Package config resolves the shared settings of both pipelines.
//
// Values come from, in decreasing precedence: command-line flags (applied by
// the caller), environment variables, the project file omicsfetch.yaml found
// by walking up from the working directory, and finally the data and results
// directories next to the executable's parent directory. A .env file beside
// the project file is read as a lower-precedence environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/omicsfetch/omicsfetch/pkg/defaults"
)

const (
	// ProjectFileName is the project configuration file searched for.
	ProjectFileName = "omicsfetch.yaml"

	// DotEnvFileName is the optional environment file next to the project file.
	DotEnvFileName = ".env"
)

// Config holds the resolved settings.
type Config struct {
	DataDir    string `yaml:"data_dir" env:"OMICSFETCH_DATA_DIR"`
	ResultsDir string `yaml:"results_dir" env:"OMICSFETCH_RESULTS_DIR"`
	GEOBaseURL string `yaml:"geo_base_url" env:"OMICSFETCH_GEO_BASE_URL"`
	LogLevel   string `yaml:"log_level" env:"LOG_LEVEL"`

	// ProjectFile is the project file that was loaded, if any.
	ProjectFile string `yaml:"-" env:"-"`
}

// Options controls where Load looks.
type Options struct {
	// WorkDir starts the project file search. Defaults to the working directory.
	WorkDir string

	// Executable anchors the fallback directories. Defaults to os.Executable.
	Executable string

	// Environ is the environment. Defaults to os.Environ.
	Environ []string
}

// Load resolves the configuration. Flag overrides are applied by the caller.
func Load(opts Options) (*Config, error) {
	if opts.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		opts.WorkDir = wd
	}
	if opts.Environ == nil {
		opts.Environ = os.Environ()
	}

	cfg := &Config{}
	environ := env.ToMap(opts.Environ)

	if path, ok := FindProjectFile(opts.WorkDir); ok {
		if err := cfg.loadProjectFile(path); err != nil {
			return nil, err
		}
		dotenv, err := readDotEnv(filepath.Join(filepath.Dir(path), DotEnvFileName))
		if err != nil {
			return nil, err
		}
		for k, v := range environ {
			dotenv[k] = v
		}
		environ = dotenv
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.DataDir == "" || cfg.ResultsDir == "" {
		base, err := fallbackBase(opts.Executable)
		if err != nil {
			return nil, err
		}
		if cfg.DataDir == "" {
			cfg.DataDir = filepath.Join(base, "data")
		}
		if cfg.ResultsDir == "" {
			cfg.ResultsDir = filepath.Join(base, "results")
		}
	}
	if cfg.GEOBaseURL == "" {
		cfg.GEOBaseURL = defaults.GEOBaseURL
	}

	slog.Debug("configuration resolved",
		slog.String("data_dir", cfg.DataDir),
		slog.String("results_dir", cfg.ResultsDir),
		slog.String("project_file", cfg.ProjectFile))

	return cfg, nil
}

// FindProjectFile walks from dir up to the filesystem root looking for
// ProjectFileName.
func FindProjectFile(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, ProjectFileName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// loadProjectFile reads path into cfg. Relative directories are resolved
// against the project file's directory; unset directories default to
// data and results beside it.
func (c *Config) loadProjectFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	root := filepath.Dir(path)
	c.DataDir = resolve(root, c.DataDir, "data")
	c.ResultsDir = resolve(root, c.ResultsDir, "results")
	c.ProjectFile = path
	return nil
}

func resolve(root, dir, fallback string) string {
	switch {
	case dir == "":
		return filepath.Join(root, fallback)
	case filepath.IsAbs(dir):
		return dir
	default:
		return filepath.Join(root, dir)
	}
}

func readDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); err != nil {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}

// fallbackBase is the parent of the directory holding the executable.
func fallbackBase(executable string) (string, error) {
	if executable == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("failed to locate executable: %w", err)
		}
		executable = exe
	}
	if resolved, err := filepath.EvalSymlinks(executable); err == nil {
		executable = resolved
	}
	return filepath.Dir(filepath.Dir(executable)), nil
}
