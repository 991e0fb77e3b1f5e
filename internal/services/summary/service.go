package summary

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/riordanpawley/planboard/internal/domain"
)

// Service builds prompts from projects and asks a Generator for text
type Service struct {
	generator Generator
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time
}

// NewService creates a summary service. A nil generator yields a service
// whose every call fails with domain.ErrNotConfigured.
func NewService(generator Generator, logger *slog.Logger, timeout time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		generator: generator,
		logger:    logger,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Enabled reports whether a generator is configured
func (s *Service) Enabled() bool {
	return s.generator != nil
}

// Summarize asks for text of the given kind about the project
func (s *Service) Summarize(ctx context.Context, p domain.Project, kind Kind) (string, error) {
	if s.generator == nil {
		return "", &domain.SummaryError{Kind: string(kind), Message: "no model configured", Err: domain.ErrNotConfigured}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	prompt := BuildPrompt(p, kind, s.now())
	s.logger.Info("generating summary", "kind", kind, "project", p.Name, "tasks", len(p.Tasks))

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("summary generation failed", "kind", kind, "error", err)
		return "", &domain.SummaryError{Kind: string(kind), Message: "failed to call model", Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &domain.SummaryError{Kind: string(kind), Message: "empty response from model"}
	}

	s.logger.Info("summary generated", "kind", kind, "chars", len(text))
	return text, nil
}
