package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/betterhyq/LexPlain/pkg/domain"
	domainAnalysis "github.com/betterhyq/LexPlain/pkg/domain/analysis"
	"github.com/valyala/fastjson"
)

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

func stripFences(content string) string {
	clean := strings.TrimSpace(content)
	clean = leadingFence.ReplaceAllString(clean, "")
	clean = trailingFence.ReplaceAllString(clean, "")
	return strings.TrimSpace(clean)
}

// parseResult turns raw model output into a validated report.
func parseResult(content string) (*domainAnalysis.Result, error) {
	clean := stripFences(content)
	if clean == "" {
		return nil, domain.ErrEmptyModelResponse
	}

	var p fastjson.Parser
	v, err := p.Parse(clean)
	if err != nil {
		return nil, domain.NewInvalidOutputError(fmt.Sprintf("malformed JSON: %v", err))
	}
	if v.Type() != fastjson.TypeObject {
		return nil, domain.NewInvalidOutputError("expected a JSON object")
	}

	var result domainAnalysis.Result
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return nil, domain.NewInvalidOutputError(fmt.Sprintf("unexpected field types: %v", err))
	}
	if err := validateResult(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func validateResult(r *domainAnalysis.Result) error {
	if strings.TrimSpace(r.Title) == "" {
		return domain.NewInvalidOutputError("missing title")
	}
	if strings.TrimSpace(r.Summary) == "" {
		return domain.NewInvalidOutputError("missing summary")
	}
	if !r.RiskScore.Valid() {
		return domain.NewInvalidOutputError(fmt.Sprintf("invalid riskScore %q", r.RiskScore))
	}
	if len(r.Clauses) == 0 {
		return domain.NewInvalidOutputError("no clauses")
	}
	for i, c := range r.Clauses {
		if strings.TrimSpace(c.Title) == "" {
			return domain.NewInvalidOutputError(fmt.Sprintf("clause %d has no title", i))
		}
		if !c.Risk.Valid() {
			return domain.NewInvalidOutputError(fmt.Sprintf("clause %d has invalid risk %q", i, c.Risk))
		}
	}
	if r.Actions == nil {
		r.Actions = []string{}
	}
	return nil
}
