package pipeline

import "strings"

// DetectResult says whether a stored mail looks like an order-sheet
// submission worth running through the extraction pipeline.
type DetectResult struct {
	IsOrderSheet bool
	Score        float64
	Reason       string
}

var orderKeywords = []string{
	"order", "purchase", "po ", "po#", "parts list", "part number",
	"quote", "rfq", "spares", "stock list", "material",
}

// DetectOrderSheet scores an incoming message by subject and body
// keywords, sheet-like attachments and inline tables. Mails below the
// cutoff are marked skipped instead of being pushed through extraction.
func DetectOrderSheet(subject, text, html string, attachmentNames []string) DetectResult {
	subject = strings.ToLower(subject)
	text = strings.ToLower(text)
	html = strings.ToLower(html)

	score := 0.0
	for _, kw := range orderKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
		if strings.Contains(text, kw) || strings.Contains(html, kw) {
			score += 0.1
		}
	}

	for _, name := range attachmentNames {
		ln := strings.ToLower(name)
		if strings.HasSuffix(ln, ".xlsx") || strings.HasSuffix(ln, ".xls") || strings.HasSuffix(ln, ".csv") {
			score += 0.4
			break
		}
	}

	if strings.Contains(html, "<table") {
		score += 0.25
	}
	if score > 1 {
		score = 1
	}

	isOrder := score >= 0.40
	reason := "rules_negative"
	if isOrder {
		reason = "rules_positive"
	}

	return DetectResult{IsOrderSheet: isOrder, Score: score, Reason: reason}
}
