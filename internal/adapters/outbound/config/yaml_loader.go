package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/stackshot/stackshot/internal/domain"
)

// DefaultFile is the run configuration file looked up in the working directory.
const DefaultFile = ".stackshot.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .stackshot.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads run overrides from path. A missing file yields no overrides, so
// the mode defaults apply unchanged.
func (l *YAMLLoader) Load(path string) (domain.RunConfig, error) {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.RunConfig{}, nil
		}
		return domain.RunConfig{}, err
	}

	var cfg domain.RunConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return domain.RunConfig{}, fmt.Errorf("parsing %s: %w", name, err)
	}

	// Validate the raw input so typos are reported against the user's file.
	if err := cfg.Validate(); err != nil {
		return domain.RunConfig{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return cfg, nil
}
