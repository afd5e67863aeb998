package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/newslens/comention/pkg/comention/internalerr"
	"github.com/newslens/comention/pkg/comention/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestSQLiteIntegrationCatalog tests catalog snapshot round-trips
func TestSQLiteIntegrationCatalog(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	entities := []store.Entity{
		{Kind: "team", ID: "t1", Name: "Manchester United"},
		{Kind: "player", ID: "p1", Name: "Bruno Fernandes", Team: "Manchester United"},
		{Kind: "player", ID: "p2", Name: "Marcus Rashford", Team: "Manchester United"},
	}

	if err := st.ReplaceCatalog(ctx, "soccer", entities); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}

	got, found, err := st.GetCatalog(ctx, "soccer")
	if err != nil {
		t.Fatalf("GetCatalog: %v", err)
	}
	if !found {
		t.Fatal("catalog should be found")
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entities, got %d", len(got))
	}

	// Original order survives the round-trip.
	for i, want := range []string{"t1", "p1", "p2"} {
		if got[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, want)
		}
		if got[i].Pos != i {
			t.Errorf("position %d: Pos = %d", i, got[i].Pos)
		}
	}
	if got[1].Team != "Manchester United" {
		t.Errorf("player affiliation lost: %+v", got[1])
	}

	// Replacing swaps the whole snapshot.
	if err := st.ReplaceCatalog(ctx, "soccer", entities[:1]); err != nil {
		t.Fatalf("second ReplaceCatalog: %v", err)
	}
	got, found, err = st.GetCatalog(ctx, "soccer")
	if err != nil || !found {
		t.Fatalf("GetCatalog after replace: found=%v err=%v", found, err)
	}
	if len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("expected only t1 after replace, got %+v", got)
	}

	// Unknown sport is a miss, not an error.
	if _, found, err := st.GetCatalog(ctx, "cricket"); err != nil || found {
		t.Errorf("unknown sport: found=%v err=%v", found, err)
	}
}

// TestSQLiteIntegrationArticles tests the article cache with staleness
func TestSQLiteIntegrationArticles(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	key := store.EntityKey("player", "p1")
	articles := []store.Article{
		{URL: "https://example.com/a1", Title: "Fernandes scores again", Source: "espn", PublishedAt: time.Now().Add(-time.Hour)},
		{URL: "https://example.com/a2", Title: "United held to a draw", Source: "bbc", PublishedAt: time.Now()},
	}

	if err := st.PutArticles(ctx, "soccer", key, articles, time.Now()); err != nil {
		t.Fatalf("PutArticles: %v", err)
	}

	got, found, err := st.GetArticles(ctx, "soccer", key, 0)
	if err != nil {
		t.Fatalf("GetArticles: %v", err)
	}
	if !found {
		t.Fatal("article set should be found")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	// Newest first.
	if got[0].URL != "https://example.com/a2" {
		t.Errorf("expected newest article first, got %q", got[0].URL)
	}
	if got[0].Title != "United held to a draw" || got[0].Source != "bbc" {
		t.Errorf("article fields lost: %+v", got[0])
	}

	// A fresh maxAge accepts the set, a strict one rejects it.
	if _, found, err := st.GetArticles(ctx, "soccer", key, time.Hour); err != nil || !found {
		t.Errorf("fresh set should be a hit: found=%v err=%v", found, err)
	}

	if err := st.PutArticles(ctx, "soccer", key, articles, time.Now().Add(-2*time.Hour)); err != nil {
		t.Fatalf("PutArticles (old): %v", err)
	}
	if _, found, err := st.GetArticles(ctx, "soccer", key, time.Hour); err != nil || found {
		t.Errorf("stale set should be a miss: found=%v err=%v", found, err)
	}
	// maxAge 0 disables the staleness check.
	if _, found, err := st.GetArticles(ctx, "soccer", key, 0); err != nil || !found {
		t.Errorf("maxAge 0 should always hit: found=%v err=%v", found, err)
	}

	// Unknown key is a miss, not an error.
	if _, found, err := st.GetArticles(ctx, "soccer", store.EntityKey("team", "t9"), 0); err != nil || found {
		t.Errorf("unknown key: found=%v err=%v", found, err)
	}

	// Replacement drops articles not in the new set.
	if err := st.PutArticles(ctx, "soccer", key, articles[:1], time.Now()); err != nil {
		t.Fatalf("PutArticles (replace): %v", err)
	}
	got, _, err = st.GetArticles(ctx, "soccer", key, 0)
	if err != nil {
		t.Fatalf("GetArticles after replace: %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://example.com/a1" {
		t.Errorf("expected only a1 after replace, got %+v", got)
	}
}

// TestSQLiteIntegrationRuns tests the run log
func TestSQLiteIntegrationRuns(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	run := store.Run{
		ID:        "01RUN000000000000000000001",
		Sport:     "soccer",
		EntityKey: store.EntityKey("player", "p1"),
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Articles:  20,
		Mentions: []store.Mention{
			{Kind: "team", ID: "t1", Name: "Manchester United", Count: 9, Rank: 1},
			{Kind: "player", ID: "p2", Name: "Marcus Rashford", Count: 4, Rank: 2},
		},
	}

	if err := st.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Sport != "soccer" || got.EntityKey != run.EntityKey || got.Articles != 20 {
		t.Errorf("run fields lost: %+v", got)
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, run.CreatedAt)
	}
	if len(got.Mentions) != 2 {
		t.Fatalf("expected 2 mentions, got %d", len(got.Mentions))
	}
	if got.Mentions[0].ID != "t1" || got.Mentions[0].Count != 9 {
		t.Errorf("rank 1 mention wrong: %+v", got.Mentions[0])
	}
	if got.Mentions[1].ID != "p2" || got.Mentions[1].Rank != 2 {
		t.Errorf("rank 2 mention wrong: %+v", got.Mentions[1])
	}

	if _, err := st.GetRun(ctx, "no-such-run"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("missing run should be ErrNotFound, got %v", err)
	}

	// Two more runs, later timestamps; RecentRuns returns newest first.
	moreIDs := []string{"01RUN000000000000000000002", "01RUN000000000000000000003"}
	for i, day := range []int{2, 3} {
		r := run
		r.ID = moreIDs[i]
		r.CreatedAt = time.Date(2026, 3, day, 12, 0, 0, 0, time.UTC)
		r.Mentions = nil
		if err := st.SaveRun(ctx, r); err != nil {
			t.Fatalf("SaveRun %d: %v", i, err)
		}
	}

	recent, err := st.RecentRuns(ctx, "soccer", 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(recent))
	}
	if !recent[0].CreatedAt.After(recent[1].CreatedAt) {
		t.Errorf("runs not newest first: %v, %v", recent[0].CreatedAt, recent[1].CreatedAt)
	}

	if runs, err := st.RecentRuns(ctx, "hockey", 5); err != nil || len(runs) != 0 {
		t.Errorf("unknown sport should yield no runs: %v, %v", runs, err)
	}
}

// TestSQLiteIntegrationPrune tests maintenance deletes with the cascade
func TestSQLiteIntegrationPrune(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	old := cutoff.Add(-24 * time.Hour)
	fresh := cutoff.Add(24 * time.Hour)

	oldKey := store.EntityKey("player", "p1")
	freshKey := store.EntityKey("player", "p2")
	set := []store.Article{
		{URL: "https://example.com/a1", Title: "one"},
		{URL: "https://example.com/a2", Title: "two"},
	}
	if err := st.PutArticles(ctx, "soccer", oldKey, set, old); err != nil {
		t.Fatalf("PutArticles: %v", err)
	}
	if err := st.PutArticles(ctx, "soccer", freshKey, set[:1], fresh); err != nil {
		t.Fatalf("PutArticles: %v", err)
	}

	removed, err := st.PruneArticles(ctx, cutoff)
	if err != nil {
		t.Fatalf("PruneArticles: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 articles removed, got %d", removed)
	}
	if _, found, _ := st.GetArticles(ctx, "soccer", oldKey, 0); found {
		t.Error("old set should be gone")
	}
	if _, found, _ := st.GetArticles(ctx, "soccer", freshKey, 0); !found {
		t.Error("fresh set should survive")
	}

	oldRun := store.Run{
		ID: "01RUNOLD000000000000000001", Sport: "soccer", EntityKey: oldKey,
		CreatedAt: old,
		Mentions:  []store.Mention{{Kind: "team", ID: "t1", Name: "United", Count: 1, Rank: 1}},
	}
	freshRun := store.Run{
		ID: "01RUNNEW000000000000000001", Sport: "soccer", EntityKey: freshKey,
		CreatedAt: fresh,
	}
	if err := st.SaveRun(ctx, oldRun); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := st.SaveRun(ctx, freshRun); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	removed, err = st.PruneRuns(ctx, cutoff)
	if err != nil {
		t.Fatalf("PruneRuns: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 run removed, got %d", removed)
	}
	if _, err := st.GetRun(ctx, oldRun.ID); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("pruned run should be gone, got %v", err)
	}
	if _, err := st.GetRun(ctx, freshRun.ID); err != nil {
		t.Errorf("fresh run should survive: %v", err)
	}
}
