package surname

import "testing"

func TestIndexUniqueAndShared(t *testing.T) {
	idx := NewIndex()
	idx.Add("p1", []string{"bruno", "miguel", "fernandes"})
	idx.Add("p2", []string{"andre", "filipe", "fernandes"})
	idx.Add("p3", []string{"patrick", "mahomes"})

	if !idx.Shared("fernandes") {
		t.Error("fernandes is carried by two players, should be shared")
	}
	if idx.Shared("mahomes") {
		t.Error("mahomes has a single owner, should not be shared")
	}

	owners := idx.Owners("fernandes")
	if len(owners) != 2 || owners[0] != "p1" || owners[1] != "p2" {
		t.Errorf("Owners(fernandes) = %v, want [p1 p2] in insertion order", owners)
	}
}

func TestIndexSkipsShortTokens(t *testing.T) {
	idx := NewIndex()
	idx.Add("p1", []string{"de", "la", "cruz"})

	// Tokens under 4 characters never enter the index.
	if got := idx.Owners("de"); got != nil {
		t.Errorf("Owners(de) = %v, want nil", got)
	}
	if got := idx.Owners("la"); got != nil {
		t.Errorf("Owners(la) = %v, want nil", got)
	}

	if got := idx.Owners("cruz"); len(got) != 1 || got[0] != "p1" {
		t.Errorf("Owners(cruz) = %v, want [p1]", got)
	}
}

func TestIndexIgnoresDuplicateTokensInOneName(t *testing.T) {
	idx := NewIndex()
	idx.Add("p1", []string{"santos", "santos"})

	owners := idx.Owners("santos")
	if len(owners) != 1 {
		t.Errorf("duplicate token within one name should index once, got %v", owners)
	}
	if idx.Shared("santos") {
		t.Error("a single player repeating a token should not make it shared")
	}
}

func TestIndexUnknownToken(t *testing.T) {
	idx := NewIndex()
	idx.Add("p1", []string{"mahomes"})

	if idx.Shared("kelce") {
		t.Error("unknown token should not be shared")
	}
	if got := idx.Owners("kelce"); got != nil {
		t.Errorf("Owners(kelce) = %v, want nil", got)
	}
}

func TestIndexCollisions(t *testing.T) {
	idx := NewIndex()
	idx.Add("p1", []string{"bruno", "fernandes"})
	idx.Add("p2", []string{"andre", "fernandes"})
	idx.Add("p3", []string{"travis", "kelce"})

	collisions := idx.Collisions()
	if len(collisions) != 1 {
		t.Fatalf("expected exactly one contested token, got %v", collisions)
	}
	ids, ok := collisions["fernandes"]
	if !ok {
		t.Fatal("fernandes missing from collisions")
	}
	if len(ids) != 2 || ids[0] != "p1" || ids[1] != "p2" {
		t.Errorf("collisions[fernandes] = %v, want [p1 p2]", ids)
	}

	// Mutating the returned map must not affect the index.
	ids[0] = "mutated"
	if idx.Owners("fernandes")[0] != "p1" {
		t.Error("Collisions must return a copy")
	}
}
