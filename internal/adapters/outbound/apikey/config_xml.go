package apikey

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/stackshot/stackshot/internal/domain"
)

// configXML is the subset of a *arr config.xml carrying the API key.
type configXML struct {
	XMLName xml.Name `xml:"Config"`
	APIKey  string   `xml:"ApiKey"`
}

// ConfigXMLSource implements domain.APIKeySource by reading the service's
// config.xml. Services without an api_key_file get an empty key.
type ConfigXMLSource struct{}

func New() *ConfigXMLSource {
	return &ConfigXMLSource{}
}

func (s *ConfigXMLSource) APIKey(d domain.ServiceDescriptor) (string, error) {
	if d.APIKeyFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(d.APIKeyFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading api key for %s: %w", d.Name, err)
	}

	var cfg configXML
	if err := xml.Unmarshal(data, &cfg); err != nil {
		return "", fmt.Errorf("parsing %s: %w", d.APIKeyFile, err)
	}
	return strings.TrimSpace(cfg.APIKey), nil
}
