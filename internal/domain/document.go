package domain

import "time"

// Source identifies which store table a search result came from.
type Source string

const (
	// SourceLesson marks curated course content.
	SourceLesson Source = "course"
	// SourceDiscussion marks scraped discussion posts.
	SourceDiscussion Source = "discourse"
)

// Lesson is a unit of curated course content, keyed by URL.
type Lesson struct {
	ID        int64
	Title     string
	Content   string
	URL       string
	Kind      string // "lesson", "chapter", ...
	CreatedAt time.Time
}

// DiscussionPost is a scraped forum post, keyed by URL.
// CreatedAt is assigned by the forum; ScrapedAt by the ingestion run.
type DiscussionPost struct {
	ID        int64
	Title     string
	Content   string
	URL       string
	Author    string
	Category  string
	CreatedAt time.Time
	ScrapedAt time.Time
}

// SearchResult is a ranked search hit: the common projection of either
// document kind, tagged with its source. Transient, never persisted.
type SearchResult struct {
	Source  Source
	Title   string
	Content string
	URL     string
}

// LessonResult wraps a lesson as a search result.
func LessonResult(l Lesson) SearchResult {
	return SearchResult{Source: SourceLesson, Title: l.Title, Content: l.Content, URL: l.URL}
}

// PostResult wraps a discussion post as a search result.
func PostResult(p DiscussionPost) SearchResult {
	return SearchResult{Source: SourceDiscussion, Title: p.Title, Content: p.Content, URL: p.URL}
}
