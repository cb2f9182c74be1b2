package enrichment

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 5 * time.Second

// Profile is the slice of a user's profile the text-generation collaborator
// sees.
type Profile struct {
	DisplayName   string
	Headline      string
	City          string
	State         string
	Bio           string
	PortfolioTags []string
}

// Generator is the text-generation collaborator. Its implementation is
// external; every call through this service is best-effort.
type Generator interface {
	Summarize(ctx context.Context, a, b Profile) (string, error)
	Icebreakers(ctx context.Context, a, b Profile) ([]string, error)
}

// Service wraps the generator with a bounded timeout and swallows failures:
// enrichment may be skipped, it may never break a caller.
type Service struct {
	gen     Generator
	timeout time.Duration
	logger  *zap.Logger
}

func NewService(gen Generator, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		gen:     gen,
		timeout: timeout,
		logger:  logger,
	}
}

// Summary produces a short comparison summary for two profiles. The second
// return value reports whether usable text came back.
func (s *Service) Summary(ctx context.Context, a, b Profile) (string, bool) {
	if s == nil || s.gen == nil {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	summary, err := s.gen.Summarize(ctx, a, b)
	if err != nil {
		s.logger.Warn("match summary generation failed", zap.Error(err))
		return "", false
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", false
	}
	return summary, true
}

// Icebreakers returns conversation starters for two profiles, degrading to
// an empty list on any failure.
func (s *Service) Icebreakers(ctx context.Context, a, b Profile) []string {
	if s == nil || s.gen == nil {
		return []string{}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	lines, err := s.gen.Icebreakers(ctx, a, b)
	if err != nil {
		s.logger.Warn("icebreaker generation failed", zap.Error(err))
		return []string{}
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
