package store

import (
	"context"
	"time"
)

// Store is the main interface for persisting catalogs, cached articles
// and co-mention runs.
type Store interface {
	Close() error

	// Catalog snapshots, one per sport
	ReplaceCatalog(ctx context.Context, sport string, entities []Entity) error
	GetCatalog(ctx context.Context, sport string) ([]Entity, bool, error)

	// Article cache, keyed by the entity the articles were fetched for
	PutArticles(ctx context.Context, sport, entityKey string, articles []Article, fetchedAt time.Time) error
	GetArticles(ctx context.Context, sport, entityKey string, maxAge time.Duration) ([]Article, bool, error)

	// Run log
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	RecentRuns(ctx context.Context, sport string, k int) ([]Run, error)

	// Maintenance
	PruneArticles(ctx context.Context, olderThan time.Time) (int64, error)
	PruneRuns(ctx context.Context, olderThan time.Time) (int64, error)
}

// Entity is one catalog row. Pos preserves the row's position in the
// source catalog; ranking ties are broken by it.
type Entity struct {
	Kind string // "player" or "team"
	ID   string
	Name string
	Team string // player's team affiliation, empty for teams
	Pos  int
}

// Article is one cached headline.
type Article struct {
	URL         string
	Title       string
	Source      string
	PublishedAt time.Time
}

// Run records one co-mention computation over a fetched article set.
type Run struct {
	ID        string
	Sport     string
	EntityKey string
	CreatedAt time.Time
	Articles  int // articles scanned
	Mentions  []Mention
}

// Mention is one ranked entry of a run.
type Mention struct {
	Kind  string
	ID    string
	Name  string
	Count int
	Rank  int
}

// EntityKey builds the cache key articles are stored under.
func EntityKey(kind, id string) string {
	return kind + ":" + id
}
