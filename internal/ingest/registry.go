package ingest

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/sources.yaml
var sourcesYAML embed.FS

// Registry holds the configuration for every crawled agency plus the seed
// records for calls that are always open.
type Registry struct {
	Sources []SourceConfig `yaml:"sources"`
	Seeds   []FundingCall  `yaml:"seeds,omitempty"`
}

// FetchConfig defines HTTP fetching configuration for a source.
type FetchConfig struct {
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty"` // Default: 30
	MaxRetries     int     `yaml:"max_retries,omitempty"`     // Default: 3
	RateLimitRPS   float64 `yaml:"rate_limit_rps,omitempty"`  // Requests per second, default: 1.0
}

// SourceConfig defines a single agency site to crawl. Agency, category and
// country are stamped onto every call discovered under the source.
type SourceConfig struct {
	ID               string   `yaml:"id"`
	Agency           string   `yaml:"agency"`
	Country          string   `yaml:"country,omitempty"`
	Category         string   `yaml:"category,omitempty"`
	ResearchCategory string   `yaml:"research_category,omitempty"`
	StartURLs        []string `yaml:"start_urls"`
	MaxPages         int      `yaml:"max_pages,omitempty"`
	Description      string   `yaml:"description,omitempty"`

	Fetch FetchConfig `yaml:"fetch,omitempty"`
	Links LinkRules   `yaml:"links,omitempty"`
}

// LoadRegistry reads the embedded sources.yaml, falling back to the given
// filesystem path for local development. Environment variables in the YAML
// (e.g. ${API_KEY}) are expanded before decoding.
func LoadRegistry(path string) (*Registry, error) {
	data, err := sourcesYAML.ReadFile("config/sources.yaml")
	if err != nil {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	expanded := os.ExpandEnv(string(data))

	var reg Registry
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, err
	}

	return &reg, nil
}

// FindSource returns the source with the given id.
func (r *Registry) FindSource(id string) (*SourceConfig, error) {
	for i := range r.Sources {
		if r.Sources[i].ID == id {
			return &r.Sources[i], nil
		}
	}
	return nil, fmt.Errorf("unknown source: %s", id)
}
