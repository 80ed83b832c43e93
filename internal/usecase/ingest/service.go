// Package ingest validates documents handed over by scraping collaborators
// and writes them to the content store. Re-ingesting a URL replaces the
// prior record.
package ingest

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/virtualta/internal/domain"
)

// Service validates and persists ingested documents.
type Service struct {
	writer Writer
}

// New creates an ingest service.
func New(writer Writer) *Service {
	return &Service{writer: writer}
}

// SaveLesson upserts a lesson after validation. Returns the row ID.
func (s *Service) SaveLesson(ctx context.Context, l domain.Lesson) (int64, error) {
	if err := validateDocument(l.Title, l.Content, l.URL); err != nil {
		return 0, err
	}
	if l.Kind == "" {
		l.Kind = "lesson"
	}

	id, err := s.writer.UpsertLesson(ctx, l)
	if err != nil {
		return 0, fmt.Errorf("save lesson: %w", err)
	}
	return id, nil
}

// SavePost upserts a discussion post after validation. Returns the row ID.
func (s *Service) SavePost(ctx context.Context, p domain.DiscussionPost) (int64, error) {
	if err := validateDocument(p.Title, p.Content, p.URL); err != nil {
		return 0, err
	}
	if p.Author == "" {
		p.Author = "Unknown"
	}

	id, err := s.writer.UpsertPost(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("save post: %w", err)
	}
	return id, nil
}

func validateDocument(title, content, url string) error {
	switch {
	case title == "":
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	case content == "":
		return fmt.Errorf("%w: content is required", domain.ErrInvalidInput)
	case url == "":
		return fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}
	return nil
}
