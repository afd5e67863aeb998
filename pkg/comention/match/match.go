// Package match decides whether and how strongly a catalog entity is
// referenced by a normalized article text.
//
// Two rules exist. The strong rule stands on its own: a single-token name
// needs one whole-word hit of a long-enough token, a multi-token name needs
// two. The weak rule credits a lone surname hit, but only for long names
// and only when the surrounding article supplies team context to rule out
// the other players who share that surname.
package match

import "regexp"

const (
	// MinCountLen is the shortest token that counts toward a match.
	MinCountLen = 3
	// MinSingleLen is the shortest single-token name allowed to match at
	// all; three-letter abbreviations hit far too many unrelated words.
	MinSingleLen = 4
	// MinWeakNameTokens is the shortest name, in tokens, eligible for the
	// weak single-token fallback.
	MinWeakNameTokens = 3
)

// Arena holds one compiled whole-word matcher per catalog token. It is
// built once per run and reused for every article, so the per-comparison
// cost is a map lookup plus a precompiled regexp scan. Read-only after
// Compile, safe for concurrent use.
type Arena struct {
	matchers map[string]*regexp.Regexp
}

// NewArena creates an empty matcher arena.
func NewArena() *Arena {
	return &Arena{matchers: make(map[string]*regexp.Regexp)}
}

// Compile ensures a whole-word matcher exists for each token. Tokens
// already compiled are kept as-is.
func (a *Arena) Compile(tokens []string) {
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if _, ok := a.matchers[tok]; ok {
			continue
		}
		a.matchers[tok] = regexp.MustCompile(`\b` + regexp.QuoteMeta(tok) + `\b`)
	}
}

// Found reports a whole-word occurrence of token in text. Tokens the arena
// never compiled do not match; the arena is built from the catalog, and
// only catalog tokens are ever looked up.
func (a *Arena) Found(token, text string) bool {
	re, ok := a.matchers[token]
	if !ok {
		return false
	}
	return re.MatchString(text)
}

// SurnameLookup reports whether a name token is carried by more than one
// player in the catalog. Satisfied by surname.Index.
type SurnameLookup interface {
	Shared(token string) bool
}

// Candidate is a catalog entity prepared for matching: its tokenized name
// and, for players, the normalized team affiliation.
type Candidate struct {
	ID     string
	Tokens []string
	Team   string
}

// Evaluator applies the matching rules for one run. It holds only
// run-constant state; everything per-article lives in ArticleContext.
type Evaluator struct {
	arena    *Arena
	surnames SurnameLookup
}

// NewEvaluator creates an evaluator over a compiled arena and the catalog
// surname index.
func NewEvaluator(arena *Arena, surnames SurnameLookup) *Evaluator {
	return &Evaluator{arena: arena, surnames: surnames}
}

// MatchTeam applies the unambiguous rule: a single-token name matches on a
// whole-word hit of a token at least 4 characters long; a multi-token name
// matches when at least 2 distinct tokens of length ≥3 occur as whole
// words. Teams are always evaluated this way, and players use the same
// rule as their first check.
func (e *Evaluator) MatchTeam(c Candidate, text string) bool {
	switch len(c.Tokens) {
	case 0:
		return false
	case 1:
		tok := c.Tokens[0]
		return len(tok) >= MinSingleLen && e.arena.Found(tok, text)
	default:
		return len(e.matchedTokens(c.Tokens, text)) >= 2
	}
}

// MatchPlayer applies the strong rule first and falls back to the weak
// single-token rule for long names. The weak rule needs team context: with
// no team matched in the article there is no evidence to disambiguate, and
// a surname shared between players is credited to at most one of them per
// article, decided by catalog order via the claim set in art.
func (e *Evaluator) MatchPlayer(c Candidate, text string, art *ArticleContext) bool {
	switch len(c.Tokens) {
	case 0:
		return false
	case 1:
		tok := c.Tokens[0]
		return len(tok) >= MinSingleLen && e.arena.Found(tok, text)
	}

	matched := e.matchedTokens(c.Tokens, text)
	if len(matched) >= 2 {
		return true
	}

	// Weak fallback: only names with ≥3 tokens qualify, and only when
	// exactly one qualifying token was found.
	if len(c.Tokens) < MinWeakNameTokens || len(matched) != 1 {
		return false
	}
	if art == nil || !art.HasTeams() {
		return false
	}

	tok := matched[0]
	if !e.surnames.Shared(tok) {
		// Uncontested token: nothing to arbitrate.
		return true
	}
	if !art.HasTeam(c.Team) {
		return false
	}
	if art.isClaimed(tok) {
		return false
	}
	art.claim(tok)
	return true
}

// matchedTokens returns the distinct tokens of length ≥3 that occur as
// whole words in text, in name order.
func (e *Evaluator) matchedTokens(tokens []string, text string) []string {
	var matched []string
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if len(tok) < MinCountLen {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if e.arena.Found(tok, text) {
			matched = append(matched, tok)
		}
	}
	return matched
}

// ArticleContext carries disambiguation state scoped to one article: the
// normalized names of teams matched in it, and the shared-surname tokens
// already claimed by a player. Build a fresh context per article; the
// state must never leak across articles.
type ArticleContext struct {
	teams   map[string]struct{}
	claimed map[string]struct{}
}

// NewArticleContext creates an empty per-article context.
func NewArticleContext() *ArticleContext {
	return &ArticleContext{
		teams:   make(map[string]struct{}),
		claimed: make(map[string]struct{}),
	}
}

// AddTeam records a team matched in this article by its normalized name.
func (a *ArticleContext) AddTeam(normalizedName string) {
	if normalizedName == "" {
		return
	}
	a.teams[normalizedName] = struct{}{}
}

// HasTeam reports whether the given normalized team name matched in this
// article.
func (a *ArticleContext) HasTeam(normalizedName string) bool {
	_, ok := a.teams[normalizedName]
	return ok
}

// HasTeams reports whether any team at all matched in this article.
func (a *ArticleContext) HasTeams() bool {
	return len(a.teams) > 0
}

func (a *ArticleContext) isClaimed(token string) bool {
	_, ok := a.claimed[token]
	return ok
}

func (a *ArticleContext) claim(token string) {
	a.claimed[token] = struct{}{}
}
