package analytics

import (
	"testing"

	"github.com/newslens/comention/pkg/comention"
)

func team(id, name string) comention.Entity {
	return comention.Entity{ID: id, Name: name, Kind: comention.KindTeam}
}

func player(id, name, team string) comention.Entity {
	return comention.Entity{ID: id, Name: name, Kind: comention.KindPlayer, Team: team}
}

func TestAnalyzeCounts(t *testing.T) {
	entities := []comention.Entity{
		team("t1", "Manchester United"),
		player("p1", "Bruno Miguel Fernandes", "Manchester United"),
		player("p2", "Marcus Rashford", "Manchester United"),
		{ID: "x1", Name: "Mystery Entry", Kind: comention.Kind(9)},
	}

	rep := Analyze(entities)
	if rep.Entities != 3 {
		t.Errorf("Entities = %d, want 3 (unrecognized kinds skipped)", rep.Entities)
	}
	if rep.Teams != 1 || rep.Players != 2 {
		t.Errorf("Teams/Players = %d/%d, want 1/2", rep.Teams, rep.Players)
	}
}

func TestAnalyzeNeverMatchable(t *testing.T) {
	entities := []comention.Entity{
		team("t1", "PSG"),
		team("t2", "Sporting CP"),
		team("t3", "Manchester United"),
		player("p1", "Jr.", ""),
		player("p2", "Bo Li", ""),
		player("p3", "Marcus Rashford", ""),
	}

	rep := Analyze(entities)

	// t1: lone three-letter token. t2: only one token reaches counting
	// length. p1: nothing survives tokenization. p2: no countable tokens
	// and too short for the weak fallback.
	want := []EntityRef{
		{ID: "t1", Name: "PSG"},
		{ID: "t2", Name: "Sporting CP"},
		{ID: "p1", Name: "Jr."},
		{ID: "p2", Name: "Bo Li"},
	}
	if len(rep.NeverMatchable) != len(want) {
		t.Fatalf("NeverMatchable has %d entries, want %d: %+v", len(rep.NeverMatchable), len(want), rep.NeverMatchable)
	}
	for i, ref := range want {
		if rep.NeverMatchable[i] != ref {
			t.Errorf("NeverMatchable[%d] = %+v, want %+v", i, rep.NeverMatchable[i], ref)
		}
	}
}

func TestAnalyzeWeakIneligible(t *testing.T) {
	entities := []comention.Entity{
		team("t1", "Manchester United"),
		player("p1", "Bruno Miguel Fernandes", ""),
		player("p2", "Marcus Rashford", ""),
		player("p3", "Ng Wei", ""),
		player("p4", "Casemiro", ""),
	}

	rep := Analyze(entities)

	// Only p2: three-token names keep the fallback, single-token names
	// match whole, and p3 is never matchable in the first place.
	if len(rep.WeakIneligible) != 1 {
		t.Fatalf("WeakIneligible has %d entries, want 1: %+v", len(rep.WeakIneligible), rep.WeakIneligible)
	}
	if got := rep.WeakIneligible[0]; got.ID != "p2" {
		t.Errorf("WeakIneligible[0] = %+v, want p2", got)
	}

	for _, ref := range rep.NeverMatchable {
		if ref.ID != "p3" {
			t.Errorf("unexpected NeverMatchable entry %+v", ref)
		}
	}
}

func TestAnalyzeSharedSurnames(t *testing.T) {
	entities := []comention.Entity{
		player("p1", "Luis Diaz", "Liverpool"),
		player("p2", "Ruben Diaz", "Manchester City"),
		player("p3", "Jan van Dijk", ""),
		player("p4", "Erik van Basten", ""),
		player("p5", "Ruben Neves", ""),
		player("p6", "Joao Neves", ""),
	}

	rep := Analyze(entities)

	// Tokens sorted, owners in catalog order. "van" is carried by two
	// players but sits below the index length and must not appear.
	want := []SurnameCollision{
		{Token: "diaz", Players: []EntityRef{{ID: "p1", Name: "Luis Diaz"}, {ID: "p2", Name: "Ruben Diaz"}}},
		{Token: "neves", Players: []EntityRef{{ID: "p5", Name: "Ruben Neves"}, {ID: "p6", Name: "Joao Neves"}}},
		{Token: "ruben", Players: []EntityRef{{ID: "p2", Name: "Ruben Diaz"}, {ID: "p5", Name: "Ruben Neves"}}},
	}
	if len(rep.SharedSurnames) != len(want) {
		t.Fatalf("SharedSurnames has %d entries, want %d: %+v", len(rep.SharedSurnames), len(want), rep.SharedSurnames)
	}
	for i, col := range want {
		got := rep.SharedSurnames[i]
		if got.Token != col.Token {
			t.Errorf("SharedSurnames[%d].Token = %q, want %q", i, got.Token, col.Token)
			continue
		}
		if len(got.Players) != len(col.Players) {
			t.Errorf("SharedSurnames[%d] has %d players, want %d", i, len(got.Players), len(col.Players))
			continue
		}
		for j, ref := range col.Players {
			if got.Players[j] != ref {
				t.Errorf("SharedSurnames[%d].Players[%d] = %+v, want %+v", i, j, got.Players[j], ref)
			}
		}
	}
}

func TestAnalyzeDanglingTeams(t *testing.T) {
	entities := []comention.Entity{
		team("t1", "Atlético Madrid"),
		player("p1", "Antoine Griezmann", "Atletico Madrid"),
		player("p2", "Bruno Miguel Fernandes", "Sporting CP"),
		player("p3", "Diego Costa", ""),
	}

	rep := Analyze(entities)

	// p1's affiliation folds to the catalog team name. p3 declares none.
	if len(rep.DanglingTeams) != 1 {
		t.Fatalf("DanglingTeams has %d entries, want 1: %+v", len(rep.DanglingTeams), rep.DanglingTeams)
	}
	gap := rep.DanglingTeams[0]
	if gap.Player.ID != "p2" || gap.Team != "Sporting CP" {
		t.Errorf("DanglingTeams[0] = %+v, want p2 / Sporting CP", gap)
	}
}

func TestAnalyzeEmptyCatalog(t *testing.T) {
	rep := Analyze(nil)
	if rep.Entities != 0 || rep.Teams != 0 || rep.Players != 0 {
		t.Errorf("counts = %d/%d/%d, want zeros", rep.Entities, rep.Teams, rep.Players)
	}
	if rep.NeverMatchable != nil || rep.WeakIneligible != nil || rep.SharedSurnames != nil || rep.DanglingTeams != nil {
		t.Errorf("expected empty report, got %+v", rep)
	}
}
