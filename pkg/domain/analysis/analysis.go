package analysis

import "strings"

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

func (r Risk) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

const (
	LocaleEN   = "en"
	LocaleZhCN = "zh-CN"
)

// NormalizeLocale maps anything unsupported to English.
func NormalizeLocale(locale string) string {
	if strings.EqualFold(strings.TrimSpace(locale), LocaleZhCN) {
		return LocaleZhCN
	}
	return LocaleEN
}

type Clause struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Risk    Risk   `json:"risk"`
	Detail  string `json:"detail"`
	Action  string `json:"action,omitempty"`
}

// Result is the structured report produced for one document.
type Result struct {
	Title     string   `json:"title"`
	Pages     int      `json:"pages"`
	WordCount int      `json:"wordCount"`
	RiskScore Risk     `json:"riskScore"`
	Summary   string   `json:"summary"`
	Actions   []string `json:"actions"`
	Clauses   []Clause `json:"clauses"`
}

type ClauseRef struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Question is a follow-up about a document that was already analyzed.
type Question struct {
	Question string      `json:"question"`
	Title    string      `json:"title"`
	Summary  string      `json:"summary"`
	Clauses  []ClauseRef `json:"clauses"`
	Locale   string      `json:"locale"`
}
