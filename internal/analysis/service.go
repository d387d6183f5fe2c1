package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/joelkehle/metria/internal/config"
	"github.com/joelkehle/metria/internal/logging"
	"github.com/joelkehle/metria/internal/metrics"
	"github.com/joelkehle/metria/internal/models"
)

var ErrDisabled = errors.New("ai analysis disabled")

var tracer = otel.Tracer("github.com/joelkehle/metria/internal/analysis")

// Service makes one bounded attempt per request. It never retries.
type Service struct {
	analyzer Analyzer
	timeout  time.Duration
	logger   *zap.Logger
}

// NewService wraps analyzer. A nil analyzer always returns the fallback.
func NewService(analyzer Analyzer, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{analyzer: analyzer, timeout: timeout, logger: logging.OrNop(logger).Named("analysis")}
}

// NewFromConfig builds the analyzer for the configured provider.
func NewFromConfig(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*Service, error) {
	var caller LLMCaller
	switch cfg.Provider {
	case config.ProviderNone:
		return NewService(nil, cfg.Timeout(), logger), nil
	case config.ProviderGemini:
		g, err := NewGeminiCaller(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		caller = g
	case config.ProviderAnthropic:
		a, err := NewAnthropicCaller(cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		caller = a
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
	return NewService(NewLLMAnalyzer(caller), cfg.Timeout(), logger), nil
}

// Analyze always returns a usable analysis. When the provider fails or is
// disabled the fallback is returned together with a non-nil error describing
// why, which callers surface as a warning.
func (s *Service) Analyze(ctx context.Context, in metrics.ProjectInputs, m metrics.CalculatedMetrics) (models.Analysis, error) {
	ctx, span := tracer.Start(ctx, "analysis.Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("metria.mode", string(in.Mode)))

	if s.analyzer == nil {
		span.SetAttributes(attribute.Bool("metria.analysis.fallback", true))
		return Fallback(), ErrDisabled
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	out, err := s.analyzer.Analyze(callCtx, in, m)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", s.timeout, err)
		}
		s.logger.Warn("ai analysis failed, using fallback",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fallback")
		span.SetAttributes(attribute.Bool("metria.analysis.fallback", true))
		return Fallback(), fmt.Errorf("ai analysis unavailable: %w", err)
	}
	s.logger.Debug("ai analysis complete", zap.Duration("elapsed", time.Since(start)))
	return out, nil
}
