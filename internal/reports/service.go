// Package reports runs the compute, analyse and persist flow behind a saved
// report and renders reports for export.
package reports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/joelkehle/metria/internal/apperr"
	"github.com/joelkehle/metria/internal/logging"
	"github.com/joelkehle/metria/internal/metrics"
	"github.com/joelkehle/metria/internal/models"
	"github.com/joelkehle/metria/internal/store"
)

var tracer = otel.Tracer("github.com/joelkehle/metria/internal/reports")

// Analyzer returns an analysis even when it also returns an error; the error
// is then a warning that the analysis is a fallback.
type Analyzer interface {
	Analyze(ctx context.Context, in metrics.ProjectInputs, m metrics.CalculatedMetrics) (models.Analysis, error)
}

type Service struct {
	repos    *store.Repos
	analyzer Analyzer
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

func NewService(repos *store.Repos, analyzer Analyzer, logger *zap.Logger) *Service {
	return &Service{
		repos:    repos,
		analyzer: analyzer,
		logger:   logging.OrNop(logger).Named("reports"),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Compute validates the inputs and derives their metrics without saving anything.
func (s *Service) Compute(ctx context.Context, in metrics.ProjectInputs) (metrics.CalculatedMetrics, error) {
	_, span := tracer.Start(ctx, "reports.Compute")
	defer span.End()
	if err := metrics.Validate(in); err != nil {
		return metrics.CalculatedMetrics{}, apperr.Validation(err.Error())
	}
	return metrics.Compute(in), nil
}

// Submit computes the metrics, asks for an analysis and saves the report. A
// failed analysis is replaced by the fallback and noted in the report's
// warning; the report is saved regardless.
func (s *Service) Submit(ctx context.Context, user models.User, in metrics.ProjectInputs) (models.SavedReport, error) {
	ctx, span := tracer.Start(ctx, "reports.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("metria.mode", string(in.Mode)),
		attribute.String("metria.value_type", string(in.ValueType)),
	)

	m, err := s.Compute(ctx, in)
	if err != nil {
		return models.SavedReport{}, err
	}

	rep := models.SavedReport{
		ID:        s.newID(),
		UserID:    user.ID,
		CreatedAt: s.now().UTC(),
		Data:      in,
		Metrics:   m,
	}
	if s.analyzer != nil {
		a, err := s.analyzer.Analyze(ctx, in, m)
		if err != nil {
			rep.Warning = "AI analysis unavailable, showing default guidance: " + err.Error()
			s.logger.Warn("saving report with fallback analysis", zap.String("report_id", rep.ID), zap.Error(err))
		}
		rep.Analysis = &a
	}

	if err := s.repos.Reports.Add(ctx, rep); err != nil {
		return models.SavedReport{}, apperr.Internal("save report", err)
	}
	s.logger.Info("report saved",
		zap.String("report_id", rep.ID),
		zap.String("user_id", user.ID),
		zap.Float64("innovation_score", m.InnovationScore))
	return rep, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.SavedReport, error) {
	reps, err := s.repos.Reports.ByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("list reports", err)
	}
	return reps, nil
}

func (s *Service) All(ctx context.Context) ([]models.SavedReport, error) {
	reps, err := s.repos.Reports.All(ctx)
	if err != nil {
		return nil, apperr.Internal("list reports", err)
	}
	return reps, nil
}

// Get returns a report visible to viewer: its owner or an admin.
func (s *Service) Get(ctx context.Context, viewer models.User, id string) (models.SavedReport, error) {
	rep, err := s.repos.Reports.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.SavedReport{}, apperr.NotFound("report not found")
	}
	if err != nil {
		return models.SavedReport{}, apperr.Internal("load report", err)
	}
	if rep.UserID != viewer.ID && !viewer.IsAdmin() {
		// Reports of other users are indistinguishable from missing ones.
		return models.SavedReport{}, apperr.NotFound("report not found")
	}
	return rep, nil
}

func (s *Service) Delete(ctx context.Context, viewer models.User, id string) error {
	if _, err := s.Get(ctx, viewer, id); err != nil {
		return err
	}
	if err := s.repos.Reports.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("report not found")
		}
		return apperr.Internal("delete report", err)
	}
	s.logger.Info("report deleted", zap.String("report_id", id), zap.String("user_id", viewer.ID))
	return nil
}
