// Package surname precomputes which name tokens are contested between
// players in a catalog. A token carried by two or more players cannot be
// credited on its own; the match evaluator consults this index to decide
// when contextual arbitration is needed.
package surname

// minTokenLen is the shortest token worth indexing. Shorter fragments are
// too common to treat as surnames at all.
const minTokenLen = 4

// Index maps a name token to the ids of the players whose tokenized name
// contains it. It is built once per run from the player catalog, never
// from article text, and is read-only afterwards.
type Index struct {
	owners map[string][]string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{owners: make(map[string][]string)}
}

// Add records every qualifying token of one player's tokenized name.
// Catalog order matters to callers, so ids are kept in insertion order.
func (x *Index) Add(playerID string, tokens []string) {
	for _, tok := range tokens {
		if len(tok) < minTokenLen {
			continue
		}
		if x.ownedBy(tok, playerID) {
			continue
		}
		x.owners[tok] = append(x.owners[tok], playerID)
	}
}

// Owners returns the player ids sharing a token, in insertion order.
// A nil result means no indexed player carries the token.
func (x *Index) Owners(token string) []string {
	return x.owners[token]
}

// Shared reports whether two or more players carry the token. Only shared
// tokens require arbitration; a token with one owner (or none, for tokens
// under the index length) is uncontested.
func (x *Index) Shared(token string) bool {
	return len(x.owners[token]) >= 2
}

// Collisions returns every contested token with its owners, for catalog
// auditing. The returned map is freshly built on each call.
func (x *Index) Collisions() map[string][]string {
	out := make(map[string][]string)
	for tok, ids := range x.owners {
		if len(ids) < 2 {
			continue
		}
		cp := make([]string, len(ids))
		copy(cp, ids)
		out[tok] = cp
	}
	return out
}

func (x *Index) ownedBy(token, playerID string) bool {
	for _, id := range x.owners[token] {
		if id == playerID {
			return true
		}
	}
	return false
}
