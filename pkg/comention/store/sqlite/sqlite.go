package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/newslens/comention/pkg/comention/internalerr"
	"github.com/newslens/comention/pkg/comention/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS catalog_entities (
	sport TEXT NOT NULL,
	pos INTEGER NOT NULL,
	kind TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	name TEXT NOT NULL,
	team TEXT,
	PRIMARY KEY(sport, kind, entity_id)
);

CREATE TABLE IF NOT EXISTS articles (
	sport TEXT NOT NULL,
	entity_key TEXT NOT NULL,
	url TEXT NOT NULL,
	title TEXT,
	source TEXT,
	published_at TEXT,
	fetched_at TEXT NOT NULL,
	PRIMARY KEY(sport, entity_key, url)
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	sport TEXT NOT NULL,
	entity_key TEXT NOT NULL,
	created_at TEXT NOT NULL,
	article_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_mentions (
	run_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	kind TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	name TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(run_id, rank),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// ReplaceCatalog swaps the stored catalog for a sport in one transaction.
func (s *sqliteStore) ReplaceCatalog(ctx context.Context, sport string, entities []store.Entity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_entities WHERE sport=?`, sport); err != nil {
		return err
	}

	if len(entities) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO catalog_entities (sport, pos, kind, entity_id, name, team)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(sport, kind, entity_id) DO UPDATE SET
	pos=excluded.pos,
	name=excluded.name,
	team=excluded.team;
`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, e := range entities {
			if e.ID == "" || e.Name == "" {
				continue
			}
			if _, err := stmt.ExecContext(ctx, sport, i, e.Kind, e.ID, e.Name, e.Team); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetCatalog returns the stored catalog for a sport in its original order.
func (s *sqliteStore) GetCatalog(ctx context.Context, sport string) ([]store.Entity, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT pos, kind, entity_id, name, team
FROM catalog_entities
WHERE sport = ?
ORDER BY pos;
`, sport)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var entities []store.Entity
	for rows.Next() {
		var e store.Entity
		if err := rows.Scan(&e.Pos, &e.Kind, &e.ID, &e.Name, &e.Team); err != nil {
			return nil, false, err
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(entities) == 0 {
		return nil, false, nil
	}
	return entities, true, nil
}

// PutArticles replaces the cached article set for an entity key.
func (s *sqliteStore) PutArticles(ctx context.Context, sport, entityKey string, articles []store.Article, fetchedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE sport=? AND entity_key=?`, sport, entityKey); err != nil {
		return err
	}

	if len(articles) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO articles (sport, entity_key, url, title, source, published_at, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(sport, entity_key, url) DO UPDATE SET
	title=excluded.title,
	source=excluded.source,
	published_at=excluded.published_at,
	fetched_at=excluded.fetched_at;
`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		fetched := fetchedAt.UTC().Format(time.RFC3339)
		for _, a := range articles {
			if a.URL == "" {
				continue
			}
			if _, err := stmt.ExecContext(ctx, sport, entityKey, a.URL, a.Title, a.Source, a.PublishedAt.UTC().Format(time.RFC3339), fetched); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetArticles returns the cached article set for an entity key.
// A maxAge > 0 treats sets fetched longer ago than maxAge as absent.
func (s *sqliteStore) GetArticles(ctx context.Context, sport, entityKey string, maxAge time.Duration) ([]store.Article, bool, error) {
	var fetched sql.NullString
	err := s.db.QueryRowContext(ctx, `
SELECT MAX(fetched_at) FROM articles WHERE sport=? AND entity_key=?;
`, sport, entityKey).Scan(&fetched)
	if err != nil {
		return nil, false, err
	}
	if !fetched.Valid {
		return nil, false, nil
	}

	if maxAge > 0 {
		fetchedAt, perr := time.Parse(time.RFC3339, fetched.String)
		if perr != nil || time.Since(fetchedAt) > maxAge {
			return nil, false, nil
		}
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT url, title, source, published_at
FROM articles
WHERE sport = ? AND entity_key = ?
ORDER BY published_at DESC, url;
`, sport, entityKey)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var articles []store.Article
	for rows.Next() {
		var (
			a         store.Article
			published string
		)
		if err := rows.Scan(&a.URL, &a.Title, &a.Source, &published); err != nil {
			return nil, false, err
		}
		if published != "" {
			if parsed, perr := time.Parse(time.RFC3339, published); perr == nil {
				a.PublishedAt = parsed
			}
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return articles, true, nil
}

// SaveRun stores a run together with its ranked mentions.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (id, sport, entity_key, created_at, article_count)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	sport=excluded.sport,
	entity_key=excluded.entity_key,
	created_at=excluded.created_at,
	article_count=excluded.article_count;
`, r.ID, r.Sport, r.EntityKey, r.CreatedAt.UTC().Format(time.RFC3339), r.Articles); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_mentions WHERE run_id=?`, r.ID); err != nil {
		return err
	}

	if len(r.Mentions) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_mentions (run_id, rank, kind, entity_id, name, count)
VALUES (?, ?, ?, ?, ?, ?);
`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, m := range r.Mentions {
			if _, err := stmt.ExecContext(ctx, r.ID, m.Rank, m.Kind, m.ID, m.Name, m.Count); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run by ID.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	var (
		r       store.Run
		created string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, sport, entity_key, created_at, article_count
FROM runs
WHERE id = ?;
`, id).Scan(&r.ID, &r.Sport, &r.EntityKey, &created, &r.Articles)
	if err == sql.ErrNoRows {
		return store.Run{}, internalerr.ErrNotFound
	}
	if err != nil {
		return store.Run{}, err
	}

	if created != "" {
		if parsed, perr := time.Parse(time.RFC3339, created); perr == nil {
			r.CreatedAt = parsed
		}
	}

	r.Mentions, err = s.loadMentions(ctx, id)
	if err != nil {
		return store.Run{}, err
	}
	return r, nil
}

// RecentRuns returns the most recent runs for a sport, newest first.
func (s *sqliteStore) RecentRuns(ctx context.Context, sport string, k int) ([]store.Run, error) {
	if k <= 0 {
		k = 10
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id
FROM runs
WHERE sport = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;
`, sport, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var runs []store.Run
	for _, id := range ids {
		r, err := s.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, nil
}

// PruneArticles deletes cached article sets fetched before the cutoff.
func (s *sqliteStore) PruneArticles(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM articles WHERE fetched_at < ?;
`, olderThan.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PruneRuns deletes runs created before the cutoff. Mentions go with
// their run via the foreign key cascade.
func (s *sqliteStore) PruneRuns(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM runs WHERE created_at < ?;
`, olderThan.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *sqliteStore) loadMentions(ctx context.Context, runID string) ([]store.Mention, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT rank, kind, entity_id, name, count
FROM run_mentions
WHERE run_id = ?
ORDER BY rank;
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mentions []store.Mention
	for rows.Next() {
		var m store.Mention
		if err := rows.Scan(&m.Rank, &m.Kind, &m.ID, &m.Name, &m.Count); err != nil {
			return nil, err
		}
		mentions = append(mentions, m)
	}
	return mentions, rows.Err()
}
