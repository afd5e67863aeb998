// Package analytics audits an entity catalog against the matching rules
// before any articles are scanned. The report surfaces entities that can
// never be credited, surnames contested between players, and affiliations
// that resolve to no catalog team, so catalog gaps show up as data fixes
// instead of silently missing counts.
package analytics

import (
	"sort"

	"github.com/newslens/comention/pkg/comention"
	"github.com/newslens/comention/pkg/comention/match"
	"github.com/newslens/comention/pkg/comention/normalize"
	"github.com/newslens/comention/pkg/comention/surname"
)

// EntityRef identifies one catalog entity in a report.
type EntityRef struct {
	ID   string
	Name string
}

// SurnameCollision lists the players contesting one surname token. Players
// appear in catalog order, which is also the order the claim rule favors
// when an article mentions the bare surname.
type SurnameCollision struct {
	Token   string
	Players []EntityRef
}

// AffiliationGap flags a player whose declared team normalizes to no team
// name in the catalog. Such a player still matches on its full name, but
// it can never win a contested surname because the team context check has
// nothing to find.
type AffiliationGap struct {
	Player EntityRef
	Team   string
}

// Report is the result of auditing one catalog.
type Report struct {
	Entities int
	Teams    int
	Players  int

	// NeverMatchable lists entities no rule can ever credit: nothing
	// survives tokenization, a lone token is shorter than
	// match.MinSingleLen, or fewer than two distinct tokens reach
	// match.MinCountLen on a name too short for the weak fallback.
	NeverMatchable []EntityRef

	// WeakIneligible lists two-token players. Their names are too short
	// for the single-token fallback, so a title must carry both tokens
	// before they are credited. Entities already reported in
	// NeverMatchable are not repeated here.
	WeakIneligible []EntityRef

	// SharedSurnames lists every token carried by two or more players,
	// sorted by token.
	SharedSurnames []SurnameCollision

	// DanglingTeams lists players whose affiliation matches no catalog
	// team name. Players with no declared affiliation are not flagged.
	DanglingTeams []AffiliationGap
}

// Analyze audits the catalog the same way a co-mention run reads it:
// entries with an unrecognized kind are skipped, every player feeds the
// surname index, and the input order is treated as catalog order. All
// report slices preserve that order except SharedSurnames, which sorts by
// token so repeated audits diff cleanly.
func Analyze(entities []comention.Entity) Report {
	var rep Report

	idx := surname.NewIndex()
	players := make(map[string]EntityRef)
	teamNames := make(map[string]struct{})

	type affiliation struct {
		ref  EntityRef
		team string
	}
	var affiliations []affiliation

	for _, e := range entities {
		switch e.Kind {
		case comention.KindTeam:
			rep.Teams++
		case comention.KindPlayer:
			rep.Players++
		default:
			continue
		}
		rep.Entities++

		ref := EntityRef{ID: e.ID, Name: e.Name}
		tokens := normalize.Tokenize(e.Name)

		switch e.Kind {
		case comention.KindTeam:
			if norm := normalize.Normalize(e.Name); norm != "" {
				teamNames[norm] = struct{}{}
			}
		case comention.KindPlayer:
			idx.Add(e.ID, tokens)
			players[e.ID] = ref
			if e.Team != "" {
				affiliations = append(affiliations, affiliation{ref: ref, team: e.Team})
			}
		}

		if !matchable(e.Kind, tokens) {
			rep.NeverMatchable = append(rep.NeverMatchable, ref)
			continue
		}
		if e.Kind == comention.KindPlayer && len(tokens) < match.MinWeakNameTokens && len(tokens) > 1 {
			rep.WeakIneligible = append(rep.WeakIneligible, ref)
		}
	}

	collisions := idx.Collisions()
	contested := make([]string, 0, len(collisions))
	for tok := range collisions {
		contested = append(contested, tok)
	}
	sort.Strings(contested)
	for _, tok := range contested {
		col := SurnameCollision{Token: tok}
		for _, id := range collisions[tok] {
			col.Players = append(col.Players, players[id])
		}
		rep.SharedSurnames = append(rep.SharedSurnames, col)
	}

	for _, a := range affiliations {
		if _, ok := teamNames[normalize.Normalize(a.team)]; !ok {
			rep.DanglingTeams = append(rep.DanglingTeams, AffiliationGap{Player: a.ref, Team: a.team})
		}
	}

	return rep
}

// matchable reports whether any rule could ever credit an entity with the
// given name tokens. It mirrors the evaluator: a lone token needs
// match.MinSingleLen, a strong match needs two distinct countable tokens,
// and only players with match.MinWeakNameTokens or more tokens keep the
// single-token fallback open.
func matchable(kind comention.Kind, tokens []string) bool {
	switch len(tokens) {
	case 0:
		return false
	case 1:
		return len(tokens[0]) >= match.MinSingleLen
	}

	seen := make(map[string]struct{}, len(tokens))
	countable := 0
	for _, tok := range tokens {
		if len(tok) < match.MinCountLen {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		countable++
	}

	if countable >= 2 {
		return true
	}
	return kind == comention.KindPlayer && len(tokens) >= match.MinWeakNameTokens && countable >= 1
}
