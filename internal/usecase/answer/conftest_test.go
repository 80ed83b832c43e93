package answer

import (
	"context"
	"fmt"
	"testing"

	"github.com/kailas-cloud/virtualta/internal/domain"
)

type mockRetriever struct {
	searchFn  func(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
	lastQuery string
	lastLimit int
}

func (m *mockRetriever) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastLimit = limit
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

type mockGenerator struct {
	generateFn func(ctx context.Context, p Prompt) (string, error)
	lastPrompt Prompt
	calls      int
}

func (m *mockGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	m.calls++
	m.lastPrompt = p
	if m.generateFn != nil {
		return m.generateFn(ctx, p)
	}
	return "", nil
}

func testEvidence(t *testing.T, n int) []domain.SearchResult {
	t.Helper()
	results := make([]domain.SearchResult, n)
	for i := range results {
		results[i] = domain.SearchResult{
			Source:  domain.SourceLesson,
			Title:   fmt.Sprintf("Lesson %d", i+1),
			Content: fmt.Sprintf("Content of lesson %d.", i+1),
			URL:     fmt.Sprintf("https://course.example/lesson-%d", i+1),
		}
	}
	return results
}
