package pipeline

import (
	"regexp"
	"strings"

	"mroparse/internal"
	"mroparse/internal/lexicon"
	"mroparse/internal/util"
)

// Base confidences per strategy, before archetype weighting.
const (
	confLabel       = 0.95
	confComposite   = 0.82
	confDashCatalog = 0.80
	confPrefix      = 0.75
	confEmbedded    = 0.72
	confStructured  = 0.70
	confTrailingCat = 0.68
	confFirstToken  = 0.68
	confPureCatalog = 0.60
	confTrailingNum = 0.50
)

var pnLabelRes = compileLabelPatterns()

func compileLabelPatterns() []*regexp.Regexp {
	labels := []string{
		`PN\s*[:#]`,
		`P\s*/\s*N\s*[:#]`,
		`PART\s+NUMBER\s*[:#]`,
		`MODEL\s+NUMBER\s*[:#]`,
		`MODEL\s*[:#]`,
		`MN\s*[:#]`,
		`C\s*/\s*N\s*[:#]?`,
		`MFR\s+PART\s+NUMBER\s*[:#]?`,
		`MFR\s+NUMBER\s*[:#]?`,
		`MFG\s+NUMBER\s*[:#]?`,
	}
	const capture = `\s*([A-Z0-9][A-Z0-9\-_/\. ]{0,60})`
	res := make([]*regexp.Regexp, 0, len(labels))
	for _, l := range labels {
		res = append(res, regexp.MustCompile(`\b`+l+capture))
	}
	return res
}

var trailingNumericRe = regexp.MustCompile(`^\d+(?:-\d+)*$`)

// PNCandidates runs every part-number strategy over the source texts in
// priority order and returns the deduplicated candidate pool. Pool order is
// strategy priority: arbitration keeps the earlier candidate on a weighted
// tie, and a value extracted twice keeps its strongest-strategy tag.
func PNCandidates(lex *lexicon.Lexicon, texts []string) []internal.Candidate {
	var pool []internal.Candidate
	seen := make(map[string]bool)
	add := func(c internal.Candidate, ok bool) {
		if !ok || c.Value == "" || seen[c.Value] {
			return
		}
		seen[c.Value] = true
		pool = append(pool, c)
	}

	for i, text := range texts {
		upper := strings.ToUpper(util.NormalizeSpaces(text))
		if upper == "" {
			continue
		}
		toks := commaTokens(upper)

		add(labelPN(lex, upper))
		add(prefixPN(lex, wordTokens(upper)))
		add(dashCatalogPN(lex, upper))
		add(embeddedPN(lex, toks))
		add(structuredPN(lex, upper))
		add(trailingCatalogPN(lex, toks))
		add(firstTokenPN(lex, toks))
		if i == 0 {
			add(pureCatalogPN(lex, upper))
		}
		add(trailingNumericPN(toks))
		for _, c := range heuristicPN(lex, toks) {
			add(c, true)
		}
	}
	return pool
}

func commaTokens(upper string) []string {
	parts := strings.Split(upper, ",")
	toks := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			toks = append(toks, p)
		}
	}
	return toks
}

// wordTokens splits on both commas and whitespace, for strategies that work
// on single glued tokens rather than comma grammar.
func wordTokens(upper string) []string {
	return strings.FieldsFunc(upper, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
}

// pnTokenOK holds the charset and blocklist gates shared by the catalog
// strategies. Length and letter/digit mix stay per-strategy.
func pnTokenOK(lex *lexicon.Lexicon, tok string) bool {
	if tok == "" || strings.Contains(tok, " ") {
		return false
	}
	if !validPNRe.MatchString(tok) {
		return false
	}
	if util.IsSpecValue(tok) || util.IsDescriptorToken(tok) {
		return false
	}
	return !lex.HasInvalidPNPrefix(tok)
}

func labelPN(lex *lexicon.Lexicon, upper string) (internal.Candidate, bool) {
	for _, re := range pnLabelRes {
		m := re.FindStringSubmatch(upper)
		if m == nil {
			continue
		}
		tok := CleanPNToken(m[1])
		if tok == "" || !IsValidPN(lex, tok) {
			continue
		}
		if util.IsSpecValue(tok) || util.IsDescriptorToken(tok) {
			continue
		}
		return internal.Candidate{Value: tok, Strategy: internal.StrategyLabel, Confidence: confLabel}, true
	}
	return internal.Candidate{}, false
}

// prefixPN decodes glued manufacturer-prefix tokens such as HUBCS120W.
// Composite four-letter hits carry more confidence than the short prefixes.
func prefixPN(lex *lexicon.Lexicon, toks []string) (internal.Candidate, bool) {
	for _, tok := range toks {
		_, rest, composite, ok := lex.DecodePrefix(tok)
		if !ok || util.IsSpecValue(rest) {
			continue
		}
		conf := confPrefix
		if composite {
			conf = confComposite
		}
		return internal.Candidate{Value: rest, Strategy: internal.StrategyPrefixDecode, Confidence: conf}, true
	}
	return internal.Candidate{}, false
}

// dashCatalogPN handles "CODE - description" and "CODE / description" order
// lines where the catalog number leads and prose follows the separator.
func dashCatalogPN(lex *lexicon.Lexicon, upper string) (internal.Candidate, bool) {
	head, _, found := strings.Cut(upper, " - ")
	if !found {
		head, _, found = strings.Cut(upper, " / ")
	}
	if !found {
		return internal.Candidate{}, false
	}
	head = strings.TrimSpace(head)
	if len(head) < 4 || len(head) > 30 {
		return internal.Candidate{}, false
	}
	if !util.ContainsLetter(head) || !util.ContainsDigit(head) {
		return internal.Candidate{}, false
	}
	if !pnTokenOK(lex, head) {
		return internal.Candidate{}, false
	}
	// A glued vendor-prefix head belongs to the decode strategy, which also
	// recovers the manufacturer from it.
	if _, _, _, glued := lex.DecodePrefix(head); glued {
		return internal.Candidate{}, false
	}
	return internal.Candidate{Value: head, Strategy: internal.StrategyDashCatalog, Confidence: confDashCatalog}, true
}

// embeddedPN picks long mixed codes buried between descriptor tokens, as in
// DRV,3AXD50000731121,5HP.
func embeddedPN(lex *lexicon.Lexicon, toks []string) (internal.Candidate, bool) {
	if len(toks) < 3 {
		return internal.Candidate{}, false
	}
	for _, tok := range toks[1 : len(toks)-1] {
		if len(tok) < 10 || !util.ContainsLetter(tok) || !util.ContainsDigit(tok) {
			continue
		}
		if !pnTokenOK(lex, tok) {
			continue
		}
		return internal.Candidate{Value: tok, Strategy: internal.StrategyEmbeddedCode, Confidence: confEmbedded}, true
	}
	return internal.Candidate{}, false
}

// structuredPN takes the longest dash or slash segmented code in the text.
func structuredPN(lex *lexicon.Lexicon, upper string) (internal.Candidate, bool) {
	best := ""
	for _, m := range structuredPNRe.FindAllString(upper, -1) {
		if len(m) < 5 || !util.ContainsLetter(m) || !util.ContainsDigit(m) {
			continue
		}
		if util.IsSpecValue(m) || util.IsDescriptorToken(m) || lex.HasInvalidPNPrefix(m) {
			continue
		}
		if len(m) > len(best) {
			best = m
		}
	}
	if best == "" {
		return internal.Candidate{}, false
	}
	return internal.Candidate{Value: best, Strategy: internal.StrategyPNStructured, Confidence: confStructured}, true
}

// trailingCatalogPN takes the last comma token of a descriptor line, as in
// SWITCH,DISCONNECT,80A,7815N15. It only fires when the tokens ahead of it
// are mostly plain words, so comma-packed code lists stay out.
func trailingCatalogPN(lex *lexicon.Lexicon, toks []string) (internal.Candidate, bool) {
	if len(toks) < 2 {
		return internal.Candidate{}, false
	}
	last := toks[len(toks)-1]
	if len(last) < 5 || len(last) > 15 {
		return internal.Candidate{}, false
	}
	if !util.ContainsLetter(last) || !util.ContainsDigit(last) {
		return internal.Candidate{}, false
	}
	if !pnTokenOK(lex, last) {
		return internal.Candidate{}, false
	}
	words := 0
	for _, tok := range toks[:len(toks)-1] {
		if !util.ContainsDigit(tok) {
			words++
		}
	}
	if words*2 <= len(toks)-1 {
		return internal.Candidate{}, false
	}
	return internal.Candidate{Value: last, Strategy: internal.StrategyTrailingCatalog, Confidence: confTrailingCat}, true
}

func firstTokenPN(lex *lexicon.Lexicon, toks []string) (internal.Candidate, bool) {
	if len(toks) < 2 {
		return internal.Candidate{}, false
	}
	first := toks[0]
	if len(first) < 5 || len(first) > 20 {
		return internal.Candidate{}, false
	}
	if !util.ContainsLetter(first) || !util.ContainsDigit(first) {
		return internal.Candidate{}, false
	}
	if !pnTokenOK(lex, first) {
		return internal.Candidate{}, false
	}
	return internal.Candidate{Value: first, Strategy: internal.StrategyFirstTokenCatalog, Confidence: confFirstToken}, true
}

// pureCatalogPN fires only on the primary source column, when the whole cell
// is one bare catalog token with no surrounding prose.
func pureCatalogPN(lex *lexicon.Lexicon, upper string) (internal.Candidate, bool) {
	if strings.ContainsAny(upper, ", ") {
		return internal.Candidate{}, false
	}
	if len(upper) < 4 || len(upper) >= 25 || !util.ContainsDigit(upper) {
		return internal.Candidate{}, false
	}
	if !pureCatalogRe.MatchString(upper) {
		return internal.Candidate{}, false
	}
	if util.IsSpecValue(upper) || util.IsDescriptorToken(upper) || lex.HasInvalidPNPrefix(upper) {
		return internal.Candidate{}, false
	}
	return internal.Candidate{Value: upper, Strategy: internal.StrategyPNStructured, Confidence: confPureCatalog}, true
}

// trailingNumericPN accepts long all-digit item codes at the end of a line.
// These are weak evidence, so the confidence stays low.
func trailingNumericPN(toks []string) (internal.Candidate, bool) {
	if len(toks) < 2 {
		return internal.Candidate{}, false
	}
	last := toks[len(toks)-1]
	if len(last) < 7 || strings.Contains(last, " ") {
		return internal.Candidate{}, false
	}
	if !trailingNumericRe.MatchString(last) {
		return internal.Candidate{}, false
	}
	return internal.Candidate{Value: last, Strategy: internal.StrategyTrailingNumeric, Confidence: confTrailingNum}, true
}

// heuristicPN scores every remaining token instead of gating it. The score
// rewards the shapes real part numbers take and lands in [0.10, 0.65], so a
// heuristic hit can never outrank a structural strategy at neutral weights.
func heuristicPN(lex *lexicon.Lexicon, toks []string) []internal.Candidate {
	var out []internal.Candidate
	for _, tok := range toks {
		if strings.Contains(tok, " ") || !util.ContainsDigit(tok) {
			continue
		}
		if !validPNRe.MatchString(tok) {
			continue
		}
		if util.IsSpecValue(tok) || util.IsDescriptorToken(tok) {
			continue
		}
		score := 0.40
		if util.ContainsLetter(tok) {
			score += 0.10
		}
		dashed := strings.ContainsAny(tok, "-/")
		if dashed {
			score += 0.10
		}
		if n := len(tok); n >= 6 && n <= 20 {
			score += 0.05
		}
		if !dashed && len(tok) >= 10 {
			score += 0.10
		}
		if len(tok) <= 3 {
			score -= 0.15
		}
		if util.HasStandardsPrefix(tok) {
			score -= 0.10
		}
		if lex.HasInvalidPNPrefix(tok) {
			score -= 0.10
		}
		if tok[0] >= '0' && tok[0] <= '9' && len(tok) < 6 {
			score -= 0.10
		}
		if score > 0.65 {
			score = 0.65
		}
		if score < 0.10 {
			score = 0.10
		}
		out = append(out, internal.Candidate{Value: tok, Strategy: internal.StrategyHeuristic, Confidence: score})
	}
	return out
}
