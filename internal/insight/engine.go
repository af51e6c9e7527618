// Package insight turns a URL into an AnalysisReport by asking a
// chat-completion model for a scored assessment.
package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abdorenouni/WEB-TESTER/internal/completion"
	"github.com/abdorenouni/WEB-TESTER/internal/model"
	"github.com/abdorenouni/WEB-TESTER/internal/platform/errs"
	"github.com/abdorenouni/WEB-TESTER/internal/platform/requestid"
)

// Caller-visible messages.
const (
	msgURLRequired    = "URL is required"
	msgNotConfigured  = "API key is not configured"
	msgRateLimited    = "Rate limit exceeded. Please try again in a moment."
	msgQuotaExhausted = "AI credits exhausted. Please add credits to continue."
	msgGatewayFailed  = "AI gateway request failed"
	msgNoResponse     = "No response from AI"
	msgParseFailed    = "Failed to parse analysis results"
	msgGatewayStatus  = "AI gateway error: %d"
)

// Completer sends one system and one user message and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Engine is the analysis proxy: prompt in, validated report out.
type Engine struct {
	completer Completer
	logger    *slog.Logger
}

// NewEngine returns an Engine backed by the given Completer.
func NewEngine(completer Completer, logger *slog.Logger) *Engine {
	return &Engine{completer: completer, logger: logger}
}

// Analyze asks the model to assess targetURL and returns the parsed report.
// Every failure is an *errs.AppError whose Message is safe to show callers.
func (e *Engine) Analyze(ctx context.Context, targetURL string) (*model.AnalysisReport, error) {
	targetURL = strings.TrimSpace(targetURL)
	if targetURL == "" {
		return nil, &errs.AppError{Kind: errs.InvalidInput, Message: msgURLRequired}
	}

	system, user := buildPrompts(targetURL)

	text, err := e.completer.Complete(ctx, system, user)
	if err != nil {
		return nil, classifyCompletionError(err)
	}

	report, strategy, err := extractReport(text)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelError, "failed to parse model reply",
			slog.String("url", targetURL),
			requestid.Attr(ctx),
			slog.String("raw", text),
			slog.Any("error", err),
		)
		return nil, &errs.AppError{Kind: errs.ParsingFailed, Message: msgParseFailed, Cause: err}
	}

	e.logger.LogAttrs(ctx, slog.LevelDebug, "model reply parsed",
		slog.String("url", targetURL),
		requestid.Attr(ctx),
		slog.String("strategy", strategy),
	)
	return report, nil
}

func classifyCompletionError(err error) error {
	if errors.Is(err, completion.ErrMissingAPIKey) {
		return &errs.AppError{Kind: errs.Configuration, Message: msgNotConfigured, Cause: err}
	}
	if errors.Is(err, completion.ErrEmptyCompletion) {
		return &errs.AppError{Kind: errs.Upstream, Message: msgNoResponse, Cause: err}
	}

	var statusErr *completion.StatusError
	if !errors.As(err, &statusErr) {
		return &errs.AppError{Kind: errs.Upstream, Message: msgGatewayFailed, Cause: err}
	}

	appErr := &errs.AppError{UpstreamStatus: statusErr.StatusCode, Cause: err}
	switch statusErr.StatusCode {
	case http.StatusTooManyRequests:
		appErr.Kind, appErr.Message = errs.RateLimited, msgRateLimited
	case http.StatusPaymentRequired:
		appErr.Kind, appErr.Message = errs.QuotaExhausted, msgQuotaExhausted
	default:
		appErr.Kind, appErr.Message = errs.Upstream, fmt.Sprintf(msgGatewayStatus, statusErr.StatusCode)
	}
	return appErr
}
