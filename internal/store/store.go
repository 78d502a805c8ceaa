// Package store is the in-memory SQLite backing of the reference item
// source. It holds the groups, feeds and items a minifeed server serves
// and answers item queries in the order the sync protocol expects.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/abelbrown/minifeed/internal/model"
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// All methods are safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates a Store at dbPath. ":memory:" gives each Store its own
// private in-memory database.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	memory := dbPath == ":memory:"
	if memory {
		// A named shared-cache database lets every pooled connection see
		// the same data while keeping separate Stores apart.
		connStr = "file:minifeed-" + uuid.NewString() + "?mode=memory&cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS feed_groups (
		name TEXT PRIMARY KEY,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS feeds (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		grp TEXT NOT NULL,
		url TEXT,
		favicon BLOB
	);

	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		feed TEXT NOT NULL,
		title TEXT NOT NULL,
		link TEXT,
		description TEXT,
		published INTEGER NOT NULL,
		added INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_items_published ON items(published DESC, id DESC);
	CREATE INDEX IF NOT EXISTS idx_items_added ON items(added);
	CREATE INDEX IF NOT EXISTS idx_items_feed ON items(feed);
	CREATE INDEX IF NOT EXISTS idx_feeds_grp ON feeds(grp);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveGroups replaces the group list. Order is preserved for Groups.
func (s *Store) SaveGroups(ctx context.Context, groups []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM feed_groups`); err != nil {
		return err
	}
	for i, g := range groups {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO feed_groups (name, position) VALUES (?, ?)`, g, i); err != nil {
			return fmt.Errorf("insert group %q: %w", g, err)
		}
	}
	return tx.Commit()
}

// SaveFeeds inserts or replaces feeds by ID.
func (s *Store) SaveFeeds(ctx context.Context, feeds []model.Feed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO feeds (id, title, grp, url, favicon)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range feeds {
		if _, err := stmt.ExecContext(ctx, f.ID, f.Title, f.Group, f.URL, f.Favicon); err != nil {
			return fmt.Errorf("insert feed %q: %w", f.ID, err)
		}
	}
	return tx.Commit()
}

// SaveItems stores items, returning the count of new items inserted.
// Items whose ID already exists are silently ignored.
func (s *Store) SaveItems(ctx context.Context, items []model.Item) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO items (id, feed, title, link, description, published, added)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	newCount := 0
	for _, it := range items {
		res, err := stmt.ExecContext(ctx, it.ID, it.Feed, it.Title, it.Link, it.Description, it.Published, it.Added)
		if err != nil {
			return 0, fmt.Errorf("insert item %q: %w", it.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			newCount++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return newCount, nil
}

// Groups returns the group identifiers in their saved order.
func (s *Store) Groups(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM feed_groups ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []string{}
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Feeds returns every feed ordered by group position, then title.
func (s *Store) Feeds(ctx context.Context) ([]model.Feed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.title, f.grp, COALESCE(f.url, ''), f.favicon
		FROM feeds f LEFT JOIN feed_groups g ON g.name = f.grp
		ORDER BY COALESCE(g.position, 1 << 30), f.title, f.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feeds := []model.Feed{}
	for rows.Next() {
		var f model.Feed
		if err := rows.Scan(&f.ID, &f.Title, &f.Group, &f.URL, &f.Favicon); err != nil {
			return nil, err
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

// Items answers an item query.
//
//   - Since > 0: items with added > Since, oldest arrival first, so a
//     truncated page never skips anything the next poll would miss.
//   - After set: items strictly older than After in (published, id) order,
//     newest first. An unknown After yields nothing.
//   - Otherwise: the newest items by published.
//
// Scope filters apply to every form. Limit defaults to model.DefaultLimit.
func (s *Store) Items(ctx context.Context, q model.Query) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		where []string
		args  []any
		order = "i.published DESC, i.id DESC"
	)

	switch q.Scope.Kind {
	case model.ScopeGroup:
		where = append(where, "i.feed IN (SELECT id FROM feeds WHERE grp = ?)")
		args = append(args, q.Scope.ID)
	case model.ScopeFeed:
		where = append(where, "i.feed = ?")
		args = append(args, q.Scope.ID)
	}

	switch {
	case q.Since > 0:
		where = append(where, "i.added > ?")
		args = append(args, q.Since)
		order = "i.added ASC, i.published DESC, i.id DESC"
	case q.After != "":
		var pub int64
		err := s.db.QueryRowContext(ctx, `SELECT published FROM items WHERE id = ?`, q.After).Scan(&pub)
		if err == sql.ErrNoRows {
			return []model.Item{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("resolve after %q: %w", q.After, err)
		}
		where = append(where, "(i.published < ? OR (i.published = ? AND i.id < ?))")
		args = append(args, pub, pub, q.After)
	}

	query := `SELECT i.id, i.feed, i.title, COALESCE(i.link, ''), COALESCE(i.description, ''), i.published, i.added FROM items i`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + order + " LIMIT ?"
	args = append(args, q.EffectiveLimit())

	return s.queryItems(ctx, query, args...)
}

// Count returns the number of stored items.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n)
	return n, err
}

// queryItems executes a query and scans results into Items.
// Caller must hold s.mu.
func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Feed, &it.Title, &it.Link, &it.Description, &it.Published, &it.Added); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
