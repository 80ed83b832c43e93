package ingest

import (
	"context"

	"github.com/kailas-cloud/virtualta/internal/domain"
)

// Writer is the storage contract for document ingestion.
type Writer interface {
	UpsertLesson(ctx context.Context, l domain.Lesson) (int64, error)
	UpsertPost(ctx context.Context, p domain.DiscussionPost) (int64, error)
}
