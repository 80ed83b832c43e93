package chi

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/virtualta/internal/domain"
	answeruc "github.com/kailas-cloud/virtualta/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/virtualta/internal/usecase/health"
)

type mockRetriever struct {
	searchFn func(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}

func (m *mockRetriever) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return []domain.SearchResult{{
		Source:  domain.SourceLesson,
		Title:   "Intro",
		Content: "Welcome to the course.",
		URL:     "https://course.example/intro",
	}}, nil
}

type mockStats struct {
	statsFn func(ctx context.Context, window *domain.StatsWindow) (domain.StoreStats, error)
}

func (m *mockStats) Stats(ctx context.Context, window *domain.StatsWindow) (domain.StoreStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, window)
	}
	return domain.StoreStats{Lessons: 3, Posts: 3, WindowedPosts: 3}, nil
}

type mockPinger struct {
	pingFn func(ctx context.Context) error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

type serverOptions struct {
	retriever *mockRetriever
	stats     *mockStats
	pinger    *mockPinger
}

func newTestRouter(t *testing.T, opts serverOptions) chi.Router {
	t.Helper()

	if opts.retriever == nil {
		opts.retriever = &mockRetriever{}
	}
	if opts.stats == nil {
		opts.stats = &mockStats{}
	}
	if opts.pinger == nil {
		opts.pinger = &mockPinger{}
	}

	answers := answeruc.New(opts.retriever, nil, answeruc.Config{})
	health := healthuc.New(opts.pinger, nil)
	srv := NewServer(answers, opts.stats, health, zap.NewNop())

	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}
