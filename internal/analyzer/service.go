package analyzer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/abdorenouni/WEB-TESTER/internal/model"
	"github.com/abdorenouni/WEB-TESTER/internal/platform/errs"
	"github.com/abdorenouni/WEB-TESTER/internal/platform/requestid"
)

// Service orchestrates a ReportProvider and logs results.
type Service struct {
	provider ReportProvider
	logger   *slog.Logger
}

// NewService creates a Service backed by the given provider.
func NewService(provider ReportProvider, logger *slog.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Analyze delegates to the provider and logs the outcome.
func (s *Service) Analyze(ctx context.Context, targetURL string) (*model.AnalysisReport, error) {
	logger := s.logger.With(slog.String("url", targetURL), requestid.Attr(ctx))
	logger.Info("analyzing url")

	report, err := s.provider.Analyze(ctx, targetURL)
	if err != nil {
		attrs := []any{"error", err}
		var appErr *errs.AppError
		if errors.As(err, &appErr) {
			attrs = append(attrs, "kind", appErr.Kind.String())
			if appErr.UpstreamStatus != 0 {
				attrs = append(attrs, "upstream_status", appErr.UpstreamStatus)
			}
		}
		logger.Error("analysis failed", attrs...)
		return nil, err
	}

	logger.Info("analysis complete",
		"performance", report.Performance,
		"security", report.Security,
		"accessibility", report.Accessibility,
		"seo", report.SEO,
		"issues", len(report.Issues),
		"summary", report.Summary,
	)
	return report, nil
}
