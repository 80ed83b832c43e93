// Package chi exposes the question-answering API over HTTP. Parameter
// validation, rate limiting, and the request timeout all live here; the
// answer usecase never sees a malformed request.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/virtualta/internal/domain"
	answeruc "github.com/kailas-cloud/virtualta/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/virtualta/internal/usecase/health"
)

const (
	// maxQuestionChars is the question length limit.
	maxQuestionChars = 1000
	// maxImageBytes caps the base64-encoded image payload.
	maxImageBytes = 5 * 1024 * 1024
	// maxBodyBytes caps the request body.
	maxBodyBytes = 10 * 1024 * 1024
)

// StatsProvider reads store counters for the admin endpoint.
type StatsProvider interface {
	Stats(ctx context.Context, window *domain.StatsWindow) (domain.StoreStats, error)
}

// Server routes HTTP requests to the usecase services.
type Server struct {
	answers        *answeruc.Service
	stats          StatsProvider
	health         *healthuc.Service
	statsWindow    *domain.StatsWindow
	requestTimeout time.Duration
	logger         *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	answers *answeruc.Service,
	stats StatsProvider,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		answers:        answers,
		stats:          stats,
		health:         health,
		requestTimeout: 28 * time.Second,
		logger:         logger,
	}
}

// WithRequestTimeout overrides the per-question deadline.
func (s *Server) WithRequestTimeout(d time.Duration) *Server {
	if d > 0 {
		s.requestTimeout = d
	}
	return s
}

// WithStatsWindow sets the relevant-posts window reported by the stats endpoint.
func (s *Server) WithStatsWindow(w *domain.StatsWindow) *Server {
	s.statsWindow = w
	return s
}

// Routes registers all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/", s.Ask)
	r.Get("/health", s.Health)
	r.Get("/api/admin/stats", s.AdminStats)
	r.Handle("/metrics", promhttp.Handler())
}

type askRequest struct {
	Question string `json:"question"`
	Image    string `json:"image,omitempty"` // base64-encoded JPEG
}

// Ask handles POST /api/: answers a free-text question about the course.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if msg := validateAsk(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	ans, err := s.answers.Generate(ctx, req.Question, req.Image)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			writeError(w, http.StatusRequestTimeout,
				"Request timeout. Please try again with a simpler question.")
			return
		}
		s.logger.Error("answer generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate answer. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, ans)
}

// validateAsk checks the request shape; non-empty message means rejection.
func validateAsk(req askRequest) string {
	trimmed := strings.TrimSpace(req.Question)
	if trimmed == "" {
		return "Question is required and must be a non-empty string"
	}
	if utf8.RuneCountInString(req.Question) > maxQuestionChars {
		return "Question must be less than 1000 characters"
	}
	if len(req.Image) > maxImageBytes {
		return "Image must be a valid base64 string and less than 5MB"
	}
	return ""
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status":    report.Status,
		"checks":    report.Checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// AdminStats handles GET /api/admin/stats.
func (s *Server) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Stats(r.Context(), s.statsWindow)
	if err != nil {
		s.logger.Error("stats query failed", zap.Error(err))
		if errors.Is(err, domain.ErrStoreUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "Content store unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

type errorResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
