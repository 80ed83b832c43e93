package domain

import "time"

// StoreStats holds per-kind document counts for operational visibility.
type StoreStats struct {
	Lessons       int `json:"course_content_count"`
	Posts         int `json:"discussion_posts_count"`
	WindowedPosts int `json:"relevant_posts_count,omitempty"`
}

// StatsWindow bounds the relevant-posts count by creation time.
type StatsWindow struct {
	From time.Time
	To   time.Time
}
