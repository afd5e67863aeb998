package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/newslens/comention/pkg/comention/internalerr"
)

// Config is the top-level application configuration
type Config struct {
	StorePath string        `yaml:"store_path"`
	Cache     CacheConfig   `yaml:"cache"`
	Sports    []SportConfig `yaml:"sports"`
}

// CacheConfig controls the article cache
type CacheConfig struct {
	// ArticleMaxAge is a time.ParseDuration string ("6h", "30m").
	// Empty disables the staleness check.
	ArticleMaxAge string `yaml:"article_max_age"`
}

// MaxAge parses the configured article age limit.
func (c CacheConfig) MaxAge() (time.Duration, error) {
	if c.ArticleMaxAge == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.ArticleMaxAge)
	if err != nil {
		return 0, fmt.Errorf("article_max_age %q: %w", c.ArticleMaxAge, internalerr.ErrInvalidConfig)
	}
	return d, nil
}

// SportConfig registers one sport
type SportConfig struct {
	ID      string     `yaml:"id"`
	Name    string     `yaml:"name"`
	Catalog string     `yaml:"catalog"` // path to the catalog YAML
	Feed    FeedConfig `yaml:"feed"`
}

// FeedConfig points at the news search endpoint for a sport
type FeedConfig struct {
	BaseURL string `yaml:"base_url"`
	Limit   int    `yaml:"limit"`
}

// LoadConfig loads the application configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.Cache.MaxAge(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Sports))
	for i, s := range c.Sports {
		if s.ID == "" {
			return fmt.Errorf("sport %d: missing id: %w", i, internalerr.ErrInvalidConfig)
		}
		if s.Catalog == "" {
			return fmt.Errorf("sport %q: missing catalog path: %w", s.ID, internalerr.ErrInvalidConfig)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("sport %q: duplicate id: %w", s.ID, internalerr.ErrInvalidConfig)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// Sport looks up a sport by id.
func (c *Config) Sport(id string) (SportConfig, bool) {
	for _, s := range c.Sports {
		if s.ID == id {
			return s, true
		}
	}
	return SportConfig{}, false
}

// Catalog represents one sport's entity catalog
type Catalog struct {
	Teams   []TeamEntry   `yaml:"teams"`
	Players []PlayerEntry `yaml:"players"`
}

// TeamEntry represents a team in the catalog
type TeamEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// PlayerEntry represents a player in the catalog
type PlayerEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Team string `yaml:"team"`
}

// LoadCatalog loads an entity catalog from a YAML file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, err
	}

	if err := cat.validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Catalog) validate() error {
	teamIDs := make(map[string]struct{}, len(c.Teams))
	for i, t := range c.Teams {
		if t.ID == "" || t.Name == "" {
			return fmt.Errorf("team %d: missing id or name: %w", i, internalerr.ErrInvalidConfig)
		}
		if _, dup := teamIDs[t.ID]; dup {
			return fmt.Errorf("team %q: duplicate id: %w", t.ID, internalerr.ErrInvalidConfig)
		}
		teamIDs[t.ID] = struct{}{}
	}

	playerIDs := make(map[string]struct{}, len(c.Players))
	for i, p := range c.Players {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("player %d: missing id or name: %w", i, internalerr.ErrInvalidConfig)
		}
		if _, dup := playerIDs[p.ID]; dup {
			return fmt.Errorf("player %q: duplicate id: %w", p.ID, internalerr.ErrInvalidConfig)
		}
		playerIDs[p.ID] = struct{}{}
	}
	return nil
}
