// Package answer composes final answers from retrieved evidence, preferring
// the generative backend and falling back to deterministic synthesis so the
// endpoint can answer without any external dependency.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/virtualta/internal/domain"
	"github.com/kailas-cloud/virtualta/internal/logger"
)

const (
	// notFoundMessage is returned when no evidence matches the question.
	notFoundMessage = "I couldn't find specific information about your question in the course materials. " +
		"Please try rephrasing your question or check the course documentation directly."

	// apologyMessage substitutes an empty backend reply.
	apologyMessage = "I apologize, but I cannot generate a response right now."

	// snippetPrefix opens every rule-based answer.
	snippetPrefix = "Based on the course materials, here's what I found: "

	// contextDelimiter separates evidence blocks in the grounding context.
	contextDelimiter = "\n\n---\n\n"
)

// Service composes answers to course questions.
type Service struct {
	retriever    Retriever
	generator    TextGenerator // nil when no backend is configured
	course       string
	searchLimit  int
	snippetChars int
	advisories   []Advisory
	answersTotal *prometheus.CounterVec // label: path ("ai" / "rule"), may be nil
}

// Config holds answer composition settings.
type Config struct {
	Course       string // course name for the system instruction
	SearchLimit  int    // evidence items retrieved per question
	SnippetChars int    // rule-based excerpt length in runes
	Advisories   []Advisory
}

// New creates an answer service. generator may be nil, in which case every
// answer takes the rule-based path.
func New(retriever Retriever, generator TextGenerator, cfg Config) *Service {
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 5
	}
	if cfg.SnippetChars <= 0 {
		cfg.SnippetChars = 300
	}
	return &Service{
		retriever:    retriever,
		generator:    generator,
		course:       cfg.Course,
		searchLimit:  cfg.SearchLimit,
		snippetChars: cfg.SnippetChars,
		advisories:   cfg.Advisories,
	}
}

// WithMetrics attaches a per-path answer counter.
func (s *Service) WithMetrics(answersTotal *prometheus.CounterVec) *Service {
	s.answersTotal = answersTotal
	return s
}

func (s *Service) countAnswer(path string) {
	if s.answersTotal != nil {
		s.answersTotal.WithLabelValues(path).Inc()
	}
}

// Generate answers a question, grounding on store evidence. Store failures
// degrade to empty evidence and backend failures degrade to the rule-based
// path; neither surfaces to the caller. The returned error is non-nil only
// when both evidence gathering and backend generation fail outright.
func (s *Service) Generate(ctx context.Context, question, imageB64 string) (domain.Answer, error) {
	log := logger.FromContext(ctx)

	evidence, retrieveErr := s.retriever.Search(ctx, question, s.searchLimit)
	if retrieveErr != nil {
		log.Warn("evidence retrieval failed, continuing without evidence", zap.Error(retrieveErr))
		evidence = nil
	}

	if s.generator != nil && len(evidence) > 0 {
		ans, err := s.generateAI(ctx, question, imageB64, evidence)
		if err == nil {
			s.countAnswer("ai")
			return ans, nil
		}
		log.Warn("backend generation failed, falling back to rule-based answer",
			zap.Error(fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)))
	}

	s.countAnswer("rule")
	return s.generateRuleBased(question, evidence), nil
}

// generateAI invokes the backend with a grounding context built from the
// ranked evidence.
func (s *Service) generateAI(
	ctx context.Context, question, imageB64 string, evidence []domain.SearchResult,
) (domain.Answer, error) {
	prompt := Prompt{
		System: fmt.Sprintf(`You are a Teaching Assistant for the %s course.
Answer student questions based on the provided course content and discussion posts.
Be concise, accurate, and helpful. If you're not sure about something, say so.
Always provide relevant links when available.`, s.course),
		User:     fmt.Sprintf("Question: %s\n\nRelevant Content:\n%s", question, groundingContext(evidence)),
		ImageB64: imageB64,
	}

	reply, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generate: %w", err)
	}

	if strings.TrimSpace(reply) == "" {
		reply = apologyMessage
	}

	return domain.Answer{Answer: reply, Links: domain.LinksFromResults(evidence)}, nil
}

// generateRuleBased synthesizes a deterministic answer from the top evidence
// item, augmented by any matching keyword advisories.
func (s *Service) generateRuleBased(question string, evidence []domain.SearchResult) domain.Answer {
	if len(evidence) == 0 {
		return domain.Answer{Answer: notFoundMessage, Links: []domain.Link{}}
	}

	snippet := []rune(evidence[0].Content)
	truncated := len(snippet) > s.snippetChars
	if truncated {
		snippet = snippet[:s.snippetChars]
	}

	var b strings.Builder
	b.WriteString(snippetPrefix)
	b.WriteString(string(snippet))
	if truncated {
		b.WriteString("...")
	}

	lowered := strings.ToLower(question)
	for _, adv := range s.advisories {
		if adv.Matches(lowered) {
			b.WriteString("\n\n")
			b.WriteString(adv.Advice)
		}
	}

	return domain.Answer{Answer: b.String(), Links: domain.LinksFromResults(evidence)}
}

// groundingContext renders evidence as human-readable blocks in ranked order.
func groundingContext(evidence []domain.SearchResult) string {
	blocks := make([]string, len(evidence))
	for i, e := range evidence {
		blocks[i] = fmt.Sprintf("Title: %s\nContent: %s\nURL: %s", e.Title, e.Content, e.URL)
	}
	return strings.Join(blocks, contextDelimiter)
}
