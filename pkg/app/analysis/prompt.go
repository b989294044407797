package analysis

import (
	"fmt"
	"strings"

	domainAnalysis "github.com/betterhyq/LexPlain/pkg/domain/analysis"
)

const analyzeSystemPrompt = `You are LexPlain, an AI legal document analyst. Your job is to analyze legal documents and produce a clear, structured JSON report.

Given a legal document (or excerpt), return ONLY valid JSON with this exact structure:
{
  "title": "Document type and parties (e.g. 'Non-Disclosure Agreement, Acme Corp')",
  "pages": <estimated page count as integer>,
  "wordCount": <word count as integer>,
  "riskScore": "low" | "medium" | "high",
  "summary": "2-3 sentence plain summary of the document's key purpose and anything the reader must know",
  "actions": ["action item 1", "action item 2", "action item 3"],
  "clauses": [
    {
      "title": "Clause name",
      "summary": "One-sentence plain summary",
      "risk": "low" | "medium" | "high",
      "detail": "2-3 sentences explaining what this means in practice",
      "action": "Optional: what the reader should do or negotiate (only include if risk is medium or high)"
    }
  ]
}

Rules:
- Identify 4-7 key clauses
- riskScore should reflect the overall risk of the document
- actions should be concrete steps the reader should take before signing
- Use plain language, no legal jargon`

var analyzeLanguage = map[string]string{
	domainAnalysis.LocaleEN:   "IMPORTANT: Respond entirely in English. Write all JSON string values (title, summary, actions, clauses content) in plain English.",
	domainAnalysis.LocaleZhCN: "IMPORTANT: Respond entirely in Simplified Chinese (简体中文). Write all JSON string values (title, summary, actions, clauses content) in plain, everyday Chinese.",
}

var askLanguage = map[string]string{
	domainAnalysis.LocaleEN:   "Answer in plain English. Be direct and clear.",
	domainAnalysis.LocaleZhCN: "Answer in Simplified Chinese (简体中文). Use plain, everyday language.",
}

const jsonOnlyInstruction = "Return ONLY the JSON object, no markdown, no explanation"

// analyzeInstructions returns the locale rule followed by the output rule.
func analyzeInstructions(locale string) []string {
	return []string{
		analyzeLanguage[domainAnalysis.NormalizeLocale(locale)],
		jsonOnlyInstruction,
	}
}

func analyzeUserPrompt(text string) string {
	return "Analyze this legal document:\n\n" + text
}

func askSystemPrompt(q domainAnalysis.Question) string {
	return fmt.Sprintf(
		"You are LexPlain. The user has analyzed a legal document titled %q. %s "+
			"Answer their question in 2-3 sentences. Be direct, practical, and helpful. "+
			"Do not give legal advice; remind them to consult a lawyer for serious matters.",
		q.Title,
		askLanguage[domainAnalysis.NormalizeLocale(q.Locale)],
	)
}

func askUserPrompt(q domainAnalysis.Question) string {
	parts := make([]string, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		parts = append(parts, c.Title+": "+c.Summary)
	}
	return fmt.Sprintf(
		"Document summary: %s\n\nKey clauses: %s\n\nQuestion: %s",
		q.Summary,
		strings.Join(parts, "; "),
		q.Question,
	)
}

// truncateRunes keeps at most n runes so multi-byte text is never split.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
