package comention

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/newslens/comention/pkg/comention/internalerr"
	"github.com/newslens/comention/pkg/comention/store"
)

// CatalogProvider supplies the full entity catalog for a sport.
type CatalogProvider interface {
	Entities(ctx context.Context, sport string) ([]Entity, error)
}

// ArticleRequest describes the article set wanted for one entity.
type ArticleRequest struct {
	Sport string
	ID    string
	Kind  Kind
	Name  string
	Limit int
}

// ArticleProvider supplies recent articles about an entity.
type ArticleProvider interface {
	Articles(ctx context.Context, req ArticleRequest) ([]Article, error)
}

// Options configures an Engine instance
type Options struct {
	Catalog  CatalogProvider
	Articles ArticleProvider
	Store    store.Store   // optional run log
	Logger   *logrus.Entry // optional
}

// Engine ties the catalog, the article feed and the matcher together
type Engine struct {
	catalog  CatalogProvider
	articles ArticleProvider
	store    store.Store
	log      *logrus.Entry
	entropy  *ulid.MonotonicEntropy
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &Engine{
		catalog:  opts.Catalog,
		articles: opts.Articles,
		store:    opts.Store,
		log:      log.WithField("component", "engine"),
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// Close cleanly shuts down the Engine instance
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Request asks for the co-mention ranking around one entity.
type Request struct {
	Sport    string
	EntityID string
	Kind     Kind
	Limit    int // max articles to fetch, provider default when <= 0
	TopK     int // truncate the ranking, <= 0 keeps everything
}

// Result is one completed co-mention run.
type Result struct {
	RunID    string
	Entity   Entity
	Articles int // articles scanned
	Mentions []CoMention
}

// CoMentions fetches the catalog and recent articles for the requested
// entity and ranks every other catalog entity by how often it appears
// alongside it. The full ranking is persisted as a run when a store is
// configured; persistence failures do not fail the call.
func (e *Engine) CoMentions(ctx context.Context, req Request) (Result, error) {
	if req.Sport == "" || req.EntityID == "" {
		return Result{}, fmt.Errorf("sport and entity id are required: %w", internalerr.ErrInvalidInput)
	}
	if req.Kind != KindPlayer && req.Kind != KindTeam {
		return Result{}, fmt.Errorf("kind %q: %w", req.Kind, internalerr.ErrInvalidInput)
	}

	entities, err := e.catalog.Entities(ctx, req.Sport)
	if err != nil {
		return Result{}, err
	}

	target, ok := findEntity(entities, req.EntityID, req.Kind)
	if !ok {
		return Result{}, fmt.Errorf("%s %q in %q: %w", req.Kind, req.EntityID, req.Sport, internalerr.ErrNotFound)
	}

	articles, err := e.articles.Articles(ctx, ArticleRequest{
		Sport: req.Sport,
		ID:    target.ID,
		Kind:  target.Kind,
		Name:  target.Name,
		Limit: req.Limit,
	})
	if err != nil {
		return Result{}, err
	}

	mentions := FindCoMentions(articles, entities, req.EntityID, req.Kind)

	res := Result{
		RunID:    ulid.MustNew(ulid.Now(), e.entropy).String(),
		Entity:   target,
		Articles: len(articles),
	}

	e.log.WithFields(logrus.Fields{
		"sport":    req.Sport,
		"entity":   target.Name,
		"articles": res.Articles,
		"mentions": len(mentions),
	}).Debug("Computed co-mentions")

	if e.store != nil {
		if err := e.store.SaveRun(ctx, buildRun(res.RunID, req.Sport, target, res.Articles, mentions)); err != nil {
			e.log.WithError(err).Warn("Failed to persist run")
		}
	}

	if req.TopK > 0 && len(mentions) > req.TopK {
		mentions = mentions[:req.TopK]
	}
	res.Mentions = mentions
	return res, nil
}

// Run retrieves a previously persisted run by id.
func (e *Engine) Run(ctx context.Context, id string) (store.Run, error) {
	if e.store == nil {
		return store.Run{}, internalerr.ErrStoreUnavailable
	}
	return e.store.GetRun(ctx, id)
}

// RecentRuns lists the latest persisted runs for a sport.
func (e *Engine) RecentRuns(ctx context.Context, sport string, k int) ([]store.Run, error) {
	if e.store == nil {
		return nil, internalerr.ErrStoreUnavailable
	}
	return e.store.RecentRuns(ctx, sport, k)
}

func findEntity(entities []Entity, id string, kind Kind) (Entity, bool) {
	for _, ent := range entities {
		if ent.Kind == kind && ent.ID == id {
			return ent, true
		}
	}
	return Entity{}, false
}

func buildRun(id, sport string, target Entity, articles int, mentions []CoMention) store.Run {
	run := store.Run{
		ID:        id,
		Sport:     sport,
		EntityKey: store.EntityKey(target.Kind.String(), target.ID),
		CreatedAt: time.Now().UTC(),
		Articles:  articles,
	}
	for i, m := range mentions {
		run.Mentions = append(run.Mentions, store.Mention{
			Kind:  m.Entity.Kind.String(),
			ID:    m.Entity.ID,
			Name:  m.Entity.Name,
			Count: m.Count,
			Rank:  i + 1,
		})
	}
	return run
}
