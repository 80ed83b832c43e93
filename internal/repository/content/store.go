// Package content implements the course content store on SQLite:
// two document tables keyed by URL and a ranked conjunctive keyword search.
package content

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kailas-cloud/virtualta/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS course_content (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	url        TEXT UNIQUE NOT NULL,
	kind       TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS discussion_posts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	url        TEXT UNIQUE NOT NULL,
	author     TEXT NOT NULL,
	category   TEXT,
	created_at DATETIME,
	scraped_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_course_content_title ON course_content(title);
CREATE INDEX IF NOT EXISTS idx_course_content_kind ON course_content(kind);
CREATE INDEX IF NOT EXISTS idx_discussion_posts_title ON discussion_posts(title);
CREATE INDEX IF NOT EXISTS idx_discussion_posts_category ON discussion_posts(category);
CREATE INDEX IF NOT EXISTS idx_discussion_posts_created_at ON discussion_posts(created_at);
`

// Store persists lessons and discussion posts and serves ranked search.
// Reads are safe for concurrent use; writes assume the single ingestion writer.
type Store struct {
	db *sql.DB
}

// Open creates the store at the given path, creating the parent directory
// and schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	// WAL keeps concurrent readers unblocked during ingestion writes.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database. The store is unusable afterwards.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return domain.ErrStoreUnavailable
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreIO, err)
	}
	return nil
}

// UpsertLesson inserts a lesson or replaces the existing row with the same URL.
// Returns the row ID.
func (s *Store) UpsertLesson(ctx context.Context, l domain.Lesson) (int64, error) {
	if s == nil || s.db == nil {
		return 0, domain.ErrStoreUnavailable
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO course_content (title, content, url, kind)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			kind = excluded.kind
		RETURNING id
	`, l.Title, l.Content, l.URL, l.Kind).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert lesson %s: %w: %w", l.URL, domain.ErrStoreIO, err)
	}
	return id, nil
}

// UpsertPost inserts a discussion post or replaces the existing row with the
// same URL. Returns the row ID.
func (s *Store) UpsertPost(ctx context.Context, p domain.DiscussionPost) (int64, error) {
	if s == nil || s.db == nil {
		return 0, domain.ErrStoreUnavailable
	}

	createdAt := p.CreatedAt.UTC()
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO discussion_posts (title, content, url, author, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			author = excluded.author,
			category = excluded.category,
			created_at = excluded.created_at,
			scraped_at = CURRENT_TIMESTAMP
		RETURNING id
	`, p.Title, p.Content, p.URL, p.Author, p.Category, createdAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert post %s: %w: %w", p.URL, domain.ErrStoreIO, err)
	}
	return id, nil
}

// Search returns up to limit documents matching every whitespace-separated
// query term as a case-insensitive substring of title or content.
//
// Ranking: documents whose title contains the full query string come first;
// within a tier, lessons order by title and posts by newest created_at, with
// row ID as the stable tie-break. Each source is capped at ceil(limit/2) and
// lessons are concatenated before posts, so lesson matches can crowd out
// posts when the quota fills. That follows the store's curated-content-first
// policy and is relied on by callers.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if s == nil || s.db == nil {
		return nil, domain.ErrStoreUnavailable
	}
	if limit <= 0 {
		return nil, nil
	}

	lowered := strings.ToLower(query)
	terms := strings.Fields(lowered)
	if len(terms) == 0 {
		return nil, nil
	}

	perSource := (limit + 1) / 2

	lessons, err := s.searchLessons(ctx, lowered, terms, perSource)
	if err != nil {
		return nil, err
	}
	posts, err := s.searchPosts(ctx, lowered, terms, perSource)
	if err != nil {
		return nil, err
	}

	return mergeResults(lessons, posts, limit), nil
}

func (s *Store) searchLessons(ctx context.Context, query string, terms []string, limit int) ([]domain.SearchResult, error) {
	conds, args := termConditions(terms)
	args = append(args, query, limit)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT title, content, url
		FROM course_content
		WHERE %s
		ORDER BY
			CASE WHEN instr(lower(title), ?) > 0 THEN 1 ELSE 2 END,
			title,
			id
		LIMIT ?
	`, conds), args...)
	if err != nil {
		return nil, fmt.Errorf("search lessons: %w: %w", domain.ErrStoreIO, err)
	}
	defer rows.Close()

	return scanResults(rows, domain.SourceLesson)
}

func (s *Store) searchPosts(ctx context.Context, query string, terms []string, limit int) ([]domain.SearchResult, error) {
	conds, args := termConditions(terms)
	args = append(args, query, limit)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT title, content, url
		FROM discussion_posts
		WHERE %s
		ORDER BY
			CASE WHEN instr(lower(title), ?) > 0 THEN 1 ELSE 2 END,
			created_at DESC,
			id
		LIMIT ?
	`, conds), args...)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w: %w", domain.ErrStoreIO, err)
	}
	defer rows.Close()

	return scanResults(rows, domain.SourceDiscussion)
}

// termConditions builds the conjunctive substring filter. instr() instead of
// LIKE so that % and _ in terms match literally.
func termConditions(terms []string) (string, []any) {
	conds := make([]string, len(terms))
	args := make([]any, 0, len(terms)*2)
	for i, term := range terms {
		conds[i] = "(instr(lower(title), ?) > 0 OR instr(lower(content), ?) > 0)"
		args = append(args, term, term)
	}
	return strings.Join(conds, " AND "), args
}

func scanResults(rows *sql.Rows, source domain.Source) ([]domain.SearchResult, error) {
	var results []domain.SearchResult
	for rows.Next() {
		r := domain.SearchResult{Source: source}
		if err := rows.Scan(&r.Title, &r.Content, &r.URL); err != nil {
			return nil, fmt.Errorf("scan result: %w: %w", domain.ErrStoreIO, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w: %w", domain.ErrStoreIO, err)
	}
	return results, nil
}

// mergeResults concatenates lessons before posts, drops duplicate URLs, and
// truncates to limit.
func mergeResults(lessons, posts []domain.SearchResult, limit int) []domain.SearchResult {
	merged := make([]domain.SearchResult, 0, len(lessons)+len(posts))
	seen := make(map[string]struct{}, len(lessons)+len(posts))
	for _, r := range append(lessons, posts...) {
		if _, dup := seen[r.URL]; dup {
			continue
		}
		seen[r.URL] = struct{}{}
		merged = append(merged, r)
		if len(merged) == limit {
			break
		}
	}
	return merged
}

// Stats reports document counts for operational visibility. If a window is
// given, WindowedPosts counts discussion posts created inside it.
func (s *Store) Stats(ctx context.Context, window *domain.StatsWindow) (domain.StoreStats, error) {
	if s == nil || s.db == nil {
		return domain.StoreStats{}, domain.ErrStoreUnavailable
	}

	var st domain.StoreStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM course_content),
			(SELECT COUNT(*) FROM discussion_posts)
	`).Scan(&st.Lessons, &st.Posts)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("query stats: %w: %w", domain.ErrStoreIO, err)
	}

	if window != nil {
		err := s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM discussion_posts
			WHERE created_at >= ? AND created_at <= ?
		`, window.From.UTC(), window.To.UTC()).Scan(&st.WindowedPosts)
		if err != nil {
			return domain.StoreStats{}, fmt.Errorf("query windowed stats: %w: %w", domain.ErrStoreIO, err)
		}
	}

	return st, nil
}
