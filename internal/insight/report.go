package insight

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/abdorenouni/WEB-TESTER/internal/model"
)

var (
	errMissingField   = errors.New("missing field")
	errScoreRange     = errors.New("score must be an integer in [0,100]")
	errIssueType      = errors.New("issue type must be error, warning or info")
	errIssueMessage   = errors.New("issue message must not be empty")
	errIssueCount     = errors.New("issue count must be a non-negative integer")
	errMalformedIssue = errors.New("malformed issue")
)

// wireReport mirrors model.AnalysisReport with pointers so that absent
// fields can be told apart from zero values.
type wireReport struct {
	Performance   *float64     `json:"performance"`
	Security      *float64     `json:"security"`
	Accessibility *float64     `json:"accessibility"`
	SEO           *float64     `json:"seo"`
	Issues        *[]wireIssue `json:"issues"`
	Summary       *string      `json:"summary"`
}

type wireIssue struct {
	Type    *string  `json:"type"`
	Message *string  `json:"message"`
	Count   *float64 `json:"count"`
}

// decodeReport parses data and enforces the report schema.
func decodeReport(data []byte) (*model.AnalysisReport, error) {
	var w wireReport
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}

	report := &model.AnalysisReport{}
	scores := []struct {
		name string
		src  *float64
		dst  *int
	}{
		{"performance", w.Performance, &report.Performance},
		{"security", w.Security, &report.Security},
		{"accessibility", w.Accessibility, &report.Accessibility},
		{"seo", w.SEO, &report.SEO},
	}
	for _, s := range scores {
		if s.src == nil {
			return nil, fmt.Errorf("%w: %s", errMissingField, s.name)
		}
		v, ok := wholeNumber(*s.src)
		if !ok || v < 0 || v > 100 {
			return nil, fmt.Errorf("%w: %s=%v", errScoreRange, s.name, *s.src)
		}
		*s.dst = v
	}

	if w.Issues == nil {
		return nil, fmt.Errorf("%w: issues", errMissingField)
	}
	if w.Summary == nil {
		return nil, fmt.Errorf("%w: summary", errMissingField)
	}
	report.Summary = *w.Summary

	report.Issues = make([]model.Issue, 0, len(*w.Issues))
	for i, wi := range *w.Issues {
		issue, err := wi.toIssue()
		if err != nil {
			return nil, fmt.Errorf("%w %d: %w", errMalformedIssue, i, err)
		}
		report.Issues = append(report.Issues, issue)
	}

	return report, nil
}

func (wi wireIssue) toIssue() (model.Issue, error) {
	if wi.Type == nil {
		return model.Issue{}, errIssueType
	}
	typ := model.IssueType(strings.ToLower(strings.TrimSpace(*wi.Type)))
	if !typ.Valid() {
		return model.Issue{}, errIssueType
	}
	if wi.Message == nil || strings.TrimSpace(*wi.Message) == "" {
		return model.Issue{}, errIssueMessage
	}

	issue := model.Issue{Type: typ, Message: *wi.Message}
	if wi.Count != nil {
		n, ok := wholeNumber(*wi.Count)
		if !ok || n < 0 {
			return model.Issue{}, errIssueCount
		}
		issue.Count = &n
	}
	return issue, nil
}

// wholeNumber accepts 80 and 80.0 but not 80.5.
func wholeNumber(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
