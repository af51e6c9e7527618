package analyzer

import (
	"context"

	"github.com/abdorenouni/WEB-TESTER/internal/model"
)

// ReportProvider defines the contract for anything that can score a URL.
type ReportProvider interface {
	Analyze(ctx context.Context, targetURL string) (*model.AnalysisReport, error)
}
