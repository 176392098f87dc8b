package registry

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/stackshot/stackshot/internal/domain"
)

// DefaultFile is the registry file looked up when no path is given.
const DefaultFile = "services.yaml"

type document struct {
	Services []domain.ServiceDescriptor `yaml:"services"`
}

// YAMLLoader implements domain.RegistryLoader for services.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load parses the registry at path. Relative api_key_file entries are
// resolved against the registry's directory.
func (l *YAMLLoader) Load(path string) (*domain.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	for i := range doc.Services {
		if f := doc.Services[i].APIKeyFile; f != "" && !filepath.IsAbs(f) {
			doc.Services[i].APIKeyFile = filepath.Join(dir, f)
		}
	}

	reg, err := domain.NewRegistry(doc.Services)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	return reg, nil
}
