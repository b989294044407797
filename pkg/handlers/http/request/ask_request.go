package request

import (
	"strings"

	"github.com/betterhyq/LexPlain/pkg/domain"
	"github.com/betterhyq/LexPlain/pkg/domain/analysis"
)

type AskClause struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type AskRequest struct {
	Question string      `json:"question"`
	Title    string      `json:"title"`
	Summary  string      `json:"summary"`
	Clauses  []AskClause `json:"clauses"`
	Locale   string      `json:"locale"`
}

func (r *AskRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" || strings.TrimSpace(r.Summary) == "" {
		return domain.ErrMissingQuestion
	}
	return nil
}

func (r *AskRequest) ToQuestion() analysis.Question {
	clauses := make([]analysis.ClauseRef, 0, len(r.Clauses))
	for _, c := range r.Clauses {
		clauses = append(clauses, analysis.ClauseRef{Title: c.Title, Summary: c.Summary})
	}
	return analysis.Question{
		Question: r.Question,
		Title:    r.Title,
		Summary:  r.Summary,
		Clauses:  clauses,
		Locale:   r.Locale,
	}
}
