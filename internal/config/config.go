// Package config loads the optional .suitegen.yaml file holding defaults for
// the suitegen commands. Command-line flags override every field.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goatx/suitegen/internal/codegen"
)

const (
	// FileName is looked up in the working directory when no path is given.
	FileName = ".suitegen.yaml"
	// EnvFile names an environment variable holding the config path.
	EnvFile = "SUITEGEN_CONFIG"
)

type Config struct {
	Package      string `yaml:"package"`
	Parallel     bool   `yaml:"parallel"`
	Check        bool   `yaml:"check"`
	LogLevel     string `yaml:"log_level"`
	OutputSuffix string `yaml:"output_suffix"`
}

func Default() Config {
	return Config{
		LogLevel:     "info",
		OutputSuffix: codegen.DefaultSuffix,
	}
}

// Resolve picks the config file to read.
// Priority: flag > $SUITEGEN_CONFIG > ./.suitegen.yaml when it exists.
// An empty result means no file and default settings.
func Resolve(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if v := os.Getenv(EnvFile); v != "" {
		return v, nil
	}
	_, err := os.Stat(FileName)
	switch {
	case err == nil:
		return FileName, nil
	case errors.Is(err, os.ErrNotExist):
		return "", nil
	default:
		return "", fmt.Errorf("failed to stat %s: %w", FileName, err)
	}
}

// Load reads the config at path on top of Default. An empty path yields the
// defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Package != "" && (!token.IsIdentifier(c.Package) || c.Package == "_") {
		return fmt.Errorf("package %q is not a valid package name", c.Package)
	}
	if !strings.HasSuffix(c.OutputSuffix, "_test.go") {
		return fmt.Errorf("output_suffix %q must end with _test.go", c.OutputSuffix)
	}
	if strings.ContainsAny(c.OutputSuffix, `/\`) {
		return fmt.Errorf("output_suffix %q must not contain a path separator", c.OutputSuffix)
	}
	return nil
}
