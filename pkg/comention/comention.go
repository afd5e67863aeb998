// Package comention detects which catalog entities a set of news article
// titles reference and folds the matches into ranked co-mention counts.
//
// The core is FindCoMentions, a pure function over articles and a catalog.
// Engine wraps it with catalog/article providers and optional run
// persistence for callers that want the full workflow.
package comention

import (
	"fmt"
	"sort"
	"time"

	"github.com/newslens/comention/pkg/comention/internalerr"
	"github.com/newslens/comention/pkg/comention/match"
	"github.com/newslens/comention/pkg/comention/normalize"
	"github.com/newslens/comention/pkg/comention/surname"
)

// Kind identifies which half of the catalog an entity belongs to.
type Kind int

const (
	KindPlayer Kind = iota + 1
	KindTeam
)

// String returns the lowercase name used in stores, flags, and logs.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindTeam:
		return "team"
	default:
		return "unknown"
	}
}

// ParseKind converts the wire/flag form back into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "player":
		return KindPlayer, nil
	case "team":
		return KindTeam, nil
	default:
		return 0, fmt.Errorf("kind %q: %w", s, internalerr.ErrInvalidInput)
	}
}

// Entity is one catalog record. Identity is the (Kind, ID) pair; names are
// immutable for the duration of a run.
type Entity struct {
	ID   string
	Name string
	Kind Kind
	// Team is the player's declared team affiliation. Empty for teams.
	Team string
}

// Article is one news item. Only the title takes part in matching.
type Article struct {
	Title       string
	Link        string
	PublishedAt time.Time
	Source      string
}

// CoMention pairs an entity with the number of articles that referenced
// it. Count is always at least 1; entities that never matched are absent.
type CoMention struct {
	Entity Entity
	Count  int
}

// FindCoMentions evaluates every supplied entity against every article
// title and returns the per-entity mention counts, ranked descending.
//
// Teams are matched first in each article; the teams found become the
// context that disambiguates weak single-surname player matches. The
// entity identified by (excludeKind, excludeID) is skipped entirely, so
// the caller's own search subject never appears in its co-mention list.
// Each entity is credited at most once per article. Ties in the final
// ranking keep the order of first appearance in the entities slice; that
// same catalog order decides which player claims a contested surname, so
// callers must supply a stable, deliberate order.
//
// The function is pure: no I/O, no shared mutable state, deterministic for
// identical inputs. Degenerate inputs (no articles, no entities, articles
// with empty titles, entities whose names yield no tokens) produce an
// empty result rather than an error.
func FindCoMentions(articles []Article, entities []Entity, excludeID string, excludeKind Kind) []CoMention {
	r := compileRun(entities, excludeID, excludeKind)

	for _, a := range articles {
		if a.Title == "" {
			continue
		}
		r.scanTitle(a.Title)
	}

	return r.ranked()
}

// candidate is one catalog entity compiled for the run.
type candidate struct {
	entity   Entity
	matchc   match.Candidate
	normName string // teams: normalized full name, recorded as context
	count    int
}

// run holds the per-run state: the compiled candidates in catalog order
// and the evaluator with its token arena and surname index. Everything
// here is read-only while articles are scanned except the counts.
type run struct {
	evaluator *match.Evaluator
	cands     []candidate
	teams     []int // indexes into cands, catalog order
	players   []int
}

func compileRun(entities []Entity, excludeID string, excludeKind Kind) *run {
	index := surname.NewIndex()
	arena := match.NewArena()
	r := &run{}

	for _, e := range entities {
		tokens := normalize.Tokenize(e.Name)

		// The excluded player still feeds the surname index: articles about
		// it are exactly where its surname stays contested.
		if e.Kind == KindPlayer {
			index.Add(e.ID, tokens)
		}
		if e.Kind == excludeKind && e.ID == excludeID {
			continue
		}

		c := candidate{
			entity: e,
			matchc: match.Candidate{ID: e.ID, Tokens: tokens},
		}

		switch e.Kind {
		case KindTeam:
			c.normName = normalize.Normalize(e.Name)
			r.teams = append(r.teams, len(r.cands))
		case KindPlayer:
			c.matchc.Team = normalize.Normalize(e.Team)
			r.players = append(r.players, len(r.cands))
		default:
			continue
		}

		arena.Compile(tokens)
		r.cands = append(r.cands, c)
	}

	r.evaluator = match.NewEvaluator(arena, index)
	return r
}

// scanTitle normalizes one title and credits every entity it references.
func (r *run) scanTitle(title string) {
	text := normalize.Normalize(title)
	if text == "" {
		return
	}

	art := match.NewArticleContext()

	// Teams first: cheaper, and they establish the context weak player
	// matches depend on.
	for _, i := range r.teams {
		c := &r.cands[i]
		if r.evaluator.MatchTeam(c.matchc, text) {
			c.count++
			art.AddTeam(c.normName)
		}
	}

	for _, i := range r.players {
		c := &r.cands[i]
		if r.evaluator.MatchPlayer(c.matchc, text, art) {
			c.count++
		}
	}
}

// ranked folds the counts into the output list: every credited entity,
// descending by count, ties kept in catalog order.
func (r *run) ranked() []CoMention {
	var out []CoMention
	for _, c := range r.cands {
		if c.count == 0 {
			continue
		}
		out = append(out, CoMention{Entity: c.entity, Count: c.count})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
