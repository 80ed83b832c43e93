// Package discourse pulls course discussion posts from a Discourse forum's
// JSON API and hands them to the ingest service. Batch-only: runs are kicked
// off by the seedctl command, never by the API server.
package discourse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/virtualta/internal/domain"
)

const userAgent = "virtualta-scraper/1.0"

// DocumentSaver persists scraped documents (implemented by the ingest service).
type DocumentSaver interface {
	SaveLesson(ctx context.Context, l domain.Lesson) (int64, error)
	SavePost(ctx context.Context, p domain.DiscussionPost) (int64, error)
}

// Client fetches topics and posts from a Discourse instance.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a Discourse client throttled to one request per second,
// to stay polite toward the forum.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		logger:  logger,
	}
}

type categoryResponse struct {
	TopicList struct {
		Topics []topicMeta `json:"topics"`
	} `json:"topic_list"`
}

type topicMeta struct {
	ID         int64  `json:"id"`
	Slug       string `json:"slug"`
	CategoryID int64  `json:"category_id"`
}

type topicResponse struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	ID         int64  `json:"id"`
	PostStream struct {
		Posts []postPayload `json:"posts"`
	} `json:"post_stream"`
}

type postPayload struct {
	PostNumber int64  `json:"post_number"`
	Username   string `json:"username"`
	Cooked     string `json:"cooked"`
	Raw        string `json:"raw"`
	CreatedAt  string `json:"created_at"`
}

// ScrapeCategory ingests every topic currently listed in a category. Topic
// failures are logged and skipped so one bad topic cannot abort the run.
func (c *Client) ScrapeCategory(ctx context.Context, saver DocumentSaver, categoryID string) error {
	var category categoryResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/c/%s.json", c.baseURL, categoryID), &category); err != nil {
		return fmt.Errorf("fetch category %s: %w", categoryID, err)
	}

	c.logger.Info("scraping discourse category",
		zap.String("category", categoryID),
		zap.Int("topics", len(category.TopicList.Topics)),
	)

	for _, topic := range category.TopicList.Topics {
		if err := c.scrapeTopic(ctx, saver, topic); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("skipping topic", zap.Int64("topic_id", topic.ID), zap.Error(err))
		}
	}
	return nil
}

// scrapeTopic flattens a topic's post stream into DiscussionPosts.
func (c *Client) scrapeTopic(ctx context.Context, saver DocumentSaver, meta topicMeta) error {
	var topic topicResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/t/%d.json", c.baseURL, meta.ID), &topic); err != nil {
		return fmt.Errorf("fetch topic %d: %w", meta.ID, err)
	}

	category := "general"
	if meta.CategoryID != 0 {
		category = fmt.Sprintf("%d", meta.CategoryID)
	}

	for _, post := range topic.PostStream.Posts {
		body := post.Cooked
		if body == "" {
			body = post.Raw
		}

		createdAt, err := time.Parse(time.RFC3339, post.CreatedAt)
		if err != nil {
			createdAt = time.Now().UTC()
		}

		doc := domain.DiscussionPost{
			Title:     topic.Title,
			Content:   CleanContent(body),
			URL:       fmt.Sprintf("%s/t/%s/%d/%d", c.baseURL, topic.Slug, topic.ID, post.PostNumber),
			Author:    post.Username,
			Category:  category,
			CreatedAt: createdAt,
		}

		if _, err := saver.SavePost(ctx, doc); err != nil {
			return fmt.Errorf("save post %s: %w", doc.URL, err)
		}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`[ \t]+`)
	newlineRe    = regexp.MustCompile(`\n{2,}`)
)

// CleanContent strips HTML tags from a cooked post body and collapses
// whitespace runs.
func CleanContent(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'", "&nbsp;", " ").Replace(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = newlineRe.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
