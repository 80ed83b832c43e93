package content

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kailas-cloud/virtualta/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedLesson(t *testing.T, s *Store, title, content, url string) {
	t.Helper()
	if _, err := s.UpsertLesson(context.Background(), domain.Lesson{
		Title:   title,
		Content: content,
		URL:     url,
		Kind:    "lesson",
	}); err != nil {
		t.Fatalf("failed to seed lesson %s: %v", url, err)
	}
}

func seedPost(t *testing.T, s *Store, title, content, url string, createdAt time.Time) {
	t.Helper()
	if _, err := s.UpsertPost(context.Background(), domain.DiscussionPost{
		Title:     title,
		Content:   content,
		URL:       url,
		Author:    "tester",
		Category:  "General",
		CreatedAt: createdAt,
	}); err != nil {
		t.Fatalf("failed to seed post %s: %v", url, err)
	}
}

func TestUpsertLesson_ReplacesByURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.UpsertLesson(ctx, domain.Lesson{
		Title: "Old Title", Content: "old content", URL: "https://course.example/intro", Kind: "lesson",
	})
	if err != nil {
		t.Fatalf("unexpected error on insert: %v", err)
	}

	second, err := s.UpsertLesson(ctx, domain.Lesson{
		Title: "New Title", Content: "new content", URL: "https://course.example/intro", Kind: "lesson",
	})
	if err != nil {
		t.Fatalf("unexpected error on upsert: %v", err)
	}
	if first != second {
		t.Errorf("expected upsert to reuse row id %d, got %d", first, second)
	}

	stats, err := s.Stats(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected stats error: %v", err)
	}
	if stats.Lessons != 1 {
		t.Errorf("expected 1 lesson after upsert, got %d", stats.Lessons)
	}

	results, err := s.Search(ctx, "new title", 5)
	if err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}
	if len(results) != 1 || results[0].Title != "New Title" {
		t.Errorf("expected replaced lesson, got %+v", results)
	}
}

func TestUpsertPost_ReplacesByURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	url := "https://forum.example/t/topic/1/1"
	seedPost(t, s, "Original", "first body", url, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	seedPost(t, s, "Edited", "second body", url, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC))

	stats, err := s.Stats(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected stats error: %v", err)
	}
	if stats.Posts != 1 {
		t.Errorf("expected 1 post after upsert, got %d", stats.Posts)
	}

	results, err := s.Search(ctx, "edited", 5)
	if err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Edited" {
		t.Errorf("expected replaced post, got %+v", results)
	}
}

func TestSearch_MatchesEveryTerm(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedLesson(t, s, "Working with Pandas DataFrames",
		"Pandas is a data manipulation library. DataFrames are its primary structure.",
		"https://course.example/pandas")
	seedPost(t, s, "Handling Missing Values in Pandas",
		"Use dropna() to remove rows with missing values from a DataFrame, or fillna() to impute them.",
		"https://forum.example/t/missing-values/2/1",
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

	results, err := s.Search(ctx, "pandas dataframe missing values", 5)
	if err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly one document matching all terms, got %d: %+v", len(results), results)
	}
	if results[0].Source != domain.SourceDiscussion {
		t.Errorf("expected discussion post, got source %q", results[0].Source)
	}
	if results[0].URL != "https://forum.example/t/missing-values/2/1" {
		t.Errorf("unexpected result URL %q", results[0].URL)
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	seedLesson(t, s, "Introduction to Python", "Variables, loops and functions.", "https://course.example/python")

	results, err := s.Search(context.Background(), "PYTHON Loops", 5)
	if err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestSearch_WildcardCharsAreLiteral(t *testing.T) {
	s := newTestStore(t)
	seedLesson(t, s, "Projects", "Score improved by 100% after tuning.", "https://course.example/projects")
	seedLesson(t, s, "Other", "No percent sign here.", "https://course.example/other")

	results, err := s.Search(context.Background(), "100%", 5)
	if err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}
	if len(results) != 1 || results[0].URL != "https://course.example/projects" {
		t.Errorf("expected %% to match literally, got %+v", results)
	}
}

func TestSearch_FullQueryInTitleRanksFirst(t *testing.T) {
	s := newTestStore(t)

	// Alphabetically the content-only match sorts first; the title tier
	// must override that.
	seedLesson(t, s, "Alpha Optimization",
		"Covers gradient methods and descent schedules in depth.",
		"https://course.example/alpha")
	seedLesson(t, s, "Zeta Gradient Descent Guide",
		"Step sizes and convergence.",
		"https://course.example/zeta")

	results, err := s.Search(context.Background(), "gradient descent", 5)
	if err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].URL != "https://course.example/zeta" {
		t.Errorf("expected title match first, got %q", results[0].URL)
	}
}

func TestSearch_PostsOrderedByNewest(t *testing.T) {
	s := newTestStore(t)

	seedPost(t, s, "Older deadline question", "When is the ga deadline?",
		"https://forum.example/t/old/3/1", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	seedPost(t, s, "Newer deadline question", "Another ga deadline ask",
		"https://forum.example/t/new/4/1", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	results, err := s.Search(context.Background(), "deadline", 5)
	if err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].URL != "https://forum.example/t/new/4/1" {
		t.Errorf("expected newest post first, got %q", results[0].URL)
	}
}

func TestSearch_LessonsBeforePostsAndSourceCap(t *testing.T) {
	s := newTestStore(t)

	for _, url := range []string{"https://course.example/a", "https://course.example/b", "https://course.example/c"} {
		seedLesson(t, s, "Lesson", "A shared keyword here.", url)
	}
	for i, url := range []string{"https://forum.example/t/a/5/1", "https://forum.example/t/b/6/1", "https://forum.example/t/c/7/1"} {
		seedPost(t, s, "Post", "A shared keyword here.", url, time.Date(2025, 3, i+1, 0, 0, 0, 0, time.UTC))
	}

	results, err := s.Search(context.Background(), "shared keyword", 4)
	if err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	// ceil(4/2) = 2 per source, lessons first.
	for i := 0; i < 2; i++ {
		if results[i].Source != domain.SourceLesson {
			t.Errorf("result %d: expected lesson, got %q", i, results[i].Source)
		}
	}
	for i := 2; i < 4; i++ {
		if results[i].Source != domain.SourceDiscussion {
			t.Errorf("result %d: expected discussion post, got %q", i, results[i].Source)
		}
	}
}

func TestSearch_NoDuplicateURLs(t *testing.T) {
	s := newTestStore(t)

	// The same URL can legitimately exist in both tables; the merge must
	// keep only the first occurrence.
	seedLesson(t, s, "Tokenizer notes", "tokenizer internals", "https://course.example/shared")
	seedPost(t, s, "Tokenizer notes", "tokenizer internals", "https://course.example/shared",
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	results, err := s.Search(context.Background(), "tokenizer", 10)
	if err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected duplicate URL to be dropped, got %d results", len(results))
	}
	if results[0].Source != domain.SourceLesson {
		t.Errorf("expected the lesson copy to win, got %q", results[0].Source)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	s := newTestStore(t)
	seedLesson(t, s, "Anything", "Some content.", "https://course.example/x")

	for _, q := range []string{"", "   ", "\t\n"} {
		results, err := s.Search(context.Background(), q, 5)
		if err != nil {
			t.Fatalf("unexpected error for query %q: %v", q, err)
		}
		if len(results) != 0 {
			t.Errorf("expected no results for query %q, got %d", q, len(results))
		}
	}
}

func TestSearch_ZeroLimit(t *testing.T) {
	s := newTestStore(t)
	seedLesson(t, s, "Anything", "Some content.", "https://course.example/x")

	results, err := s.Search(context.Background(), "content", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results with zero limit, got %d", len(results))
	}
}

func TestStats_WindowCountsPostsInside(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedLesson(t, s, "Lesson", "content", "https://course.example/l1")
	seedPost(t, s, "Inside", "body", "https://forum.example/t/in/8/1", time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC))
	seedPost(t, s, "Before", "body", "https://forum.example/t/before/9/1", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	seedPost(t, s, "After", "body", "https://forum.example/t/after/10/1", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	stats, err := s.Stats(ctx, &domain.StatsWindow{
		From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 4, 14, 23, 59, 59, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected stats error: %v", err)
	}
	if stats.Lessons != 1 {
		t.Errorf("expected 1 lesson, got %d", stats.Lessons)
	}
	if stats.Posts != 3 {
		t.Errorf("expected 3 posts, got %d", stats.Posts)
	}
	if stats.WindowedPosts != 1 {
		t.Errorf("expected 1 post inside window, got %d", stats.WindowedPosts)
	}
}

func TestStore_UnavailableAfterClose(t *testing.T) {
	s := newTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	ctx := context.Background()
	if _, err := s.Search(ctx, "anything", 5); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("Search: expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := s.UpsertLesson(ctx, domain.Lesson{Title: "t", Content: "c", URL: "u", Kind: "lesson"}); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("UpsertLesson: expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := s.Stats(ctx, nil); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("Stats: expected ErrStoreUnavailable, got %v", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("Ping: expected ErrStoreUnavailable, got %v", err)
	}
}
