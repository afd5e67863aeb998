package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/newslens/comention/pkg/comention/internalerr"
	"github.com/newslens/comention/pkg/comention/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu       sync.RWMutex
	catalogs map[string][]store.Entity
	articles map[string]articleSet
	runs     map[string]store.Run
}

type articleSet struct {
	articles  []store.Article
	fetchedAt time.Time
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		catalogs: make(map[string][]store.Entity),
		articles: make(map[string]articleSet),
		runs:     make(map[string]store.Run),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// ReplaceCatalog swaps the stored catalog for a sport.
func (s *Store) ReplaceCatalog(ctx context.Context, sport string, entities []store.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]store.Entity, 0, len(entities))
	for i, e := range entities {
		if e.ID == "" || e.Name == "" {
			continue
		}
		e.Pos = i
		kept = append(kept, e)
	}
	s.catalogs[sport] = kept
	return nil
}

// GetCatalog returns the stored catalog for a sport in its original order.
func (s *Store) GetCatalog(ctx context.Context, sport string) ([]store.Entity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entities, ok := s.catalogs[sport]
	if !ok || len(entities) == 0 {
		return nil, false, nil
	}
	return copyEntities(entities), true, nil
}

// PutArticles replaces the cached article set for an entity key.
func (s *Store) PutArticles(ctx context.Context, sport, entityKey string, articles []store.Article, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]store.Article, 0, len(articles))
	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		kept = append(kept, a)
	}
	s.articles[cacheKey(sport, entityKey)] = articleSet{
		articles:  kept,
		fetchedAt: fetchedAt,
	}
	return nil
}

// GetArticles returns the cached article set for an entity key.
// A maxAge > 0 treats sets fetched longer ago than maxAge as absent.
func (s *Store) GetArticles(ctx context.Context, sport, entityKey string, maxAge time.Duration) ([]store.Article, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.articles[cacheKey(sport, entityKey)]
	if !ok {
		return nil, false, nil
	}
	if maxAge > 0 && time.Since(set.fetchedAt) > maxAge {
		return nil, false, nil
	}
	return copyArticles(set.articles), true, nil
}

// SaveRun stores a run, keyed by its ID.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		return internalerr.ErrInvalidInput
	}
	s.runs[r.ID] = copyRun(r)
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, internalerr.ErrNotFound
	}
	return copyRun(r), nil
}

// RecentRuns returns the most recent runs for a sport, newest first.
func (s *Store) RecentRuns(ctx context.Context, sport string, k int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 {
		k = 10
	}

	var runs []store.Run
	for _, r := range s.runs {
		if r.Sport == sport {
			runs = append(runs, copyRun(r))
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if len(runs) > k {
		runs = runs[:k]
	}
	return runs, nil
}

// PruneArticles deletes cached article sets fetched before the cutoff.
// The returned count is the number of articles removed.
func (s *Store) PruneArticles(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key, set := range s.articles {
		if set.fetchedAt.Before(olderThan) {
			removed += int64(len(set.articles))
			delete(s.articles, key)
		}
	}
	return removed, nil
}

// PruneRuns deletes runs created before the cutoff.
func (s *Store) PruneRuns(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, r := range s.runs {
		if r.CreatedAt.Before(olderThan) {
			removed++
			delete(s.runs, id)
		}
	}
	return removed, nil
}

func cacheKey(sport, entityKey string) string {
	return sport + "|" + entityKey
}

func copyEntities(in []store.Entity) []store.Entity {
	out := make([]store.Entity, len(in))
	copy(out, in)
	return out
}

func copyArticles(in []store.Article) []store.Article {
	out := make([]store.Article, len(in))
	copy(out, in)
	return out
}

func copyRun(r store.Run) store.Run {
	mentions := make([]store.Mention, len(r.Mentions))
	copy(mentions, r.Mentions)
	r.Mentions = mentions
	return r
}
