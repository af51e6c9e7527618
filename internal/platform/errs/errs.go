package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes application errors for HTTP status mapping.
type Kind int

const (
	// Unknown represents an unclassified error (HTTP 500).
	Unknown Kind = iota
	// InvalidInput indicates the request was malformed (HTTP 400).
	InvalidInput
	// Configuration indicates the deployment is missing required settings (HTTP 500).
	Configuration
	// RateLimited indicates the completion API asked us to slow down (HTTP 429).
	RateLimited
	// QuotaExhausted indicates the completion API account is out of credits (HTTP 402).
	QuotaExhausted
	// Upstream indicates any other completion API failure (HTTP 500).
	Upstream
	// ParsingFailed indicates the model reply held no usable report (HTTP 500).
	ParsingFailed
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case Configuration:
		return "configuration"
	case RateLimited:
		return "rate_limited"
	case QuotaExhausted:
		return "quota_exhausted"
	case Upstream:
		return "upstream"
	case ParsingFailed:
		return "parsing_failed"
	default:
		return "unknown"
	}
}

// HTTPStatus returns the status code the transport responds with for k.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidInput:
		return http.StatusBadRequest
	case RateLimited:
		return http.StatusTooManyRequests
	case QuotaExhausted:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// KindFromStatus is the inverse of HTTPStatus for the statuses that carry a
// distinct meaning. Other error statuses map to Unknown.
func KindFromStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return InvalidInput
	case http.StatusTooManyRequests:
		return RateLimited
	case http.StatusPaymentRequired:
		return QuotaExhausted
	default:
		return Unknown
	}
}

// AppError carries a category, user message, and original cause.
type AppError struct {
	Kind           Kind
	UpstreamStatus int // HTTP status code returned by the completion API
	Message        string
	Cause          error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// KindOf returns the Kind of the first AppError in err's chain, or Unknown.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unknown
}
