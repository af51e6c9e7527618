package insight

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/abdorenouni/WEB-TESTER/internal/model"
)

var errNoCandidate = errors.New("no JSON candidate found")

var fencedJSON = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")

// strategy proposes substrings of a model reply that may hold the report.
type strategy struct {
	name    string
	extract func(text string) []string
}

// strategies run in order; the first candidate that decodes into a valid
// report wins.
var strategies = []strategy{
	{name: "fenced_block", extract: fencedBlocks},
	{name: "balanced_object", extract: balancedObjects},
	{name: "outermost_braces", extract: outermostBraces},
	{name: "raw_text", extract: rawText},
}

// extractReport recovers an AnalysisReport from free-form completion text.
// The returned error joins the reason every candidate was rejected.
func extractReport(text string) (*model.AnalysisReport, string, error) {
	var (
		failures []error
		tried    = make(map[string]bool)
	)

	for _, s := range strategies {
		for _, candidate := range s.extract(text) {
			if candidate == "" || tried[candidate] {
				continue
			}
			tried[candidate] = true

			report, err := decodeReport([]byte(candidate))
			if err == nil {
				return report, s.name, nil
			}
			failures = append(failures, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	if len(failures) == 0 {
		return nil, "", errNoCandidate
	}
	return nil, "", errors.Join(failures...)
}

func fencedBlocks(text string) []string {
	var out []string
	for _, m := range fencedJSON.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// balancedObjects returns every top-level {...} span whose braces balance,
// ignoring braces inside JSON string literals. An opening brace that never
// closes is skipped and scanning resumes just after it.
func balancedObjects(text string) []string {
	var out []string
	for i := 0; i < len(text); {
		start := strings.IndexByte(text[i:], '{')
		if start == -1 {
			break
		}
		start += i

		end, ok := matchBrace(text, start)
		if !ok {
			i = start + 1
			continue
		}
		out = append(out, text[start:end+1])
		i = end + 1
	}
	return out
}

// matchBrace returns the index of the brace closing the one at text[start].
func matchBrace(text string, start int) (int, bool) {
	var (
		depth    int
		inString bool
		escaped  bool
	)

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}

	return 0, false
}

// outermostBraces spans from the first '{' to the last '}'.
func outermostBraces(text string) []string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil
	}
	return []string{text[start : end+1]}
}

func rawText(text string) []string {
	return []string{strings.TrimSpace(text)}
}
