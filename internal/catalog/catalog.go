// Package catalog resolves sport ids to entity catalogs, serving
// store snapshots when present and falling back to the loaded
// catalog files.
package catalog

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/newslens/comention/pkg/comention"
	"github.com/newslens/comention/pkg/comention/config"
	"github.com/newslens/comention/pkg/comention/internalerr"
	"github.com/newslens/comention/pkg/comention/store"
)

// Provider implements comention.CatalogProvider on top of the loaded
// configuration.
type Provider struct {
	cfg      *config.Config
	catalogs map[string]*config.Catalog
	store    store.Store // optional snapshot cache
	log      *logrus.Entry
}

// NewProvider creates a Provider from loaded configuration components.
// The store is optional.
func NewProvider(components *config.Components, st store.Store, logger *logrus.Entry) *Provider {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	return &Provider{
		cfg:      components.Config,
		catalogs: components.Catalogs,
		store:    st,
		log:      logger.WithField("component", "catalog"),
	}
}

// Entities returns the full entity catalog for a sport: teams first,
// then players, each group in file order. That order is the claim
// priority order for shared surnames.
func (p *Provider) Entities(ctx context.Context, sport string) ([]comention.Entity, error) {
	if _, ok := p.cfg.Sport(sport); !ok {
		return nil, fmt.Errorf("sport %q: %w", sport, internalerr.ErrUnknownSport)
	}

	if p.store != nil {
		snapshot, found, err := p.store.GetCatalog(ctx, sport)
		if err != nil {
			return nil, err
		}
		if found {
			entities, convErr := fromSnapshot(snapshot)
			if convErr == nil {
				return entities, nil
			}
			// A snapshot that no longer decodes gets rebuilt from file.
			p.log.WithError(convErr).Warn("Discarding unreadable catalog snapshot")
		}
	}

	cat, ok := p.catalogs[sport]
	if !ok {
		return nil, fmt.Errorf("sport %q: catalog not loaded: %w", sport, internalerr.ErrUnknownSport)
	}
	entities := fromCatalog(cat)

	if p.store != nil {
		if err := p.store.ReplaceCatalog(ctx, sport, toSnapshot(entities)); err != nil {
			p.log.WithError(err).Warn("Failed to store catalog snapshot")
		}
	}

	return entities, nil
}

func fromCatalog(cat *config.Catalog) []comention.Entity {
	entities := make([]comention.Entity, 0, len(cat.Teams)+len(cat.Players))
	for _, t := range cat.Teams {
		entities = append(entities, comention.Entity{
			ID:   t.ID,
			Name: t.Name,
			Kind: comention.KindTeam,
		})
	}
	for _, pl := range cat.Players {
		entities = append(entities, comention.Entity{
			ID:   pl.ID,
			Name: pl.Name,
			Kind: comention.KindPlayer,
			Team: pl.Team,
		})
	}
	return entities
}

func fromSnapshot(snapshot []store.Entity) ([]comention.Entity, error) {
	entities := make([]comention.Entity, len(snapshot))
	for i, e := range snapshot {
		kind, err := comention.ParseKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", e.ID, err)
		}
		entities[i] = comention.Entity{
			ID:   e.ID,
			Name: e.Name,
			Kind: kind,
			Team: e.Team,
		}
	}
	return entities, nil
}

func toSnapshot(entities []comention.Entity) []store.Entity {
	snapshot := make([]store.Entity, len(entities))
	for i, e := range entities {
		snapshot[i] = store.Entity{
			Kind: e.Kind.String(),
			ID:   e.ID,
			Name: e.Name,
			Team: e.Team,
			Pos:  i,
		}
	}
	return snapshot
}
