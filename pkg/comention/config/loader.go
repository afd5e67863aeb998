package config

import (
	"fmt"
	"path/filepath"
)

// Loader loads the application config and every registered catalog
type Loader struct {
	ConfigPath string
}

// Components holds all loaded configuration components
type Components struct {
	Config   *Config
	Catalogs map[string]*Catalog // keyed by sport id
}

// Load reads the config file and the catalog file of every sport it
// registers. Relative catalog paths resolve against the config file's
// directory.
func (l *Loader) Load() (*Components, error) {
	cfg, err := LoadConfig(l.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	baseDir := filepath.Dir(l.ConfigPath)
	catalogs := make(map[string]*Catalog, len(cfg.Sports))
	for _, s := range cfg.Sports {
		path := s.Catalog
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		cat, err := LoadCatalog(path)
		if err != nil {
			return nil, fmt.Errorf("load catalog %q: %w", s.ID, err)
		}
		catalogs[s.ID] = cat
	}

	return &Components{
		Config:   cfg,
		Catalogs: catalogs,
	}, nil
}
