package pipeline

import (
	"regexp"
	"strings"

	"mroparse/internal"
	"mroparse/internal/lexicon"
	"mroparse/internal/util"
)

const (
	confMfgLabel = 0.95
	confKnownMfg = 0.85
	confContext  = 0.80
	confSupplier = 0.55
)

var (
	mfgLabelRe = regexp.MustCompile(`\bMANUFACTURER\s*:\s*([A-Z0-9][A-Z0-9\-&\./\s]*)`)
	// The captured run is cut back at the first trailing field label or
	// punctuation, since the charset above happily eats them.
	mfgLabelStopRe = regexp.MustCompile(`\s+(?:MODEL|PART|PN|P\s*/\s*N|MN|PRODUCT|SERIES)\b|[,.]`)
	preLabelMfgRe  = regexp.MustCompile(`,\s*([A-Z][A-Z0-9\-&\./\s]{2,40}?)\s*,\s*(?:PN|P\s*/\s*N|MN|MODEL(?:\s+NUMBER)?|PART(?:\s+NUMBER)?)\s*[:#]`)
)

// MfgCandidates runs the manufacturer strategies over the source texts and
// the supplier cell. pnHint, when non-empty, is the part number already
// extracted from this row and anchors the context strategy.
func MfgCandidates(lex *lexicon.Lexicon, texts []string, supplier, pnHint string) []internal.Candidate {
	var pool []internal.Candidate
	seen := make(map[string]bool)
	add := func(c internal.Candidate, ok bool) {
		if !ok || c.Value == "" || seen[c.Value] {
			return
		}
		seen[c.Value] = true
		pool = append(pool, c)
	}

	for _, text := range texts {
		upper := strings.ToUpper(util.NormalizeSpaces(text))
		if upper == "" {
			continue
		}
		add(labelMfg(lex, upper))
		add(knownMfg(lex, upper))
		add(contextMfg(lex, upper, pnHint))
		add(prefixMfg(lex, wordTokens(upper)))
	}
	add(supplierMfg(lex, supplier))
	return pool
}

func labelMfg(lex *lexicon.Lexicon, upper string) (internal.Candidate, bool) {
	m := mfgLabelRe.FindStringSubmatch(upper)
	if m == nil {
		return internal.Candidate{}, false
	}
	name := m[1]
	if loc := mfgLabelStopRe.FindStringIndex(name); loc != nil {
		name = name[:loc[0]]
	}
	name = SanitizeMfg(lex, name)
	if name == "" {
		return internal.Candidate{}, false
	}
	return internal.Candidate{Value: name, Strategy: internal.StrategyLabel, Confidence: confMfgLabel}, true
}

func knownMfg(lex *lexicon.Lexicon, upper string) (internal.Candidate, bool) {
	name, ok := lex.FindKnown(upper)
	if !ok {
		return internal.Candidate{}, false
	}
	return internal.Candidate{Value: name, Strategy: internal.StrategyKnownMfg, Confidence: confKnownMfg}, true
}

// contextMfg reads the maker name out of comma grammar: either the token
// sitting right before a part-number label, or the token right before the
// already extracted part number itself.
func contextMfg(lex *lexicon.Lexicon, upper, pnHint string) (internal.Candidate, bool) {
	if m := preLabelMfgRe.FindStringSubmatch(upper); m != nil {
		if name := SanitizeMfg(lex, m[1]); name != "" {
			return internal.Candidate{Value: name, Strategy: internal.StrategyContext, Confidence: confContext}, true
		}
	}
	if pnHint != "" {
		anchored := regexp.MustCompile(`,\s*([A-Z][A-Z\-&\./\s]{2,40}?)\s*,\s*` + regexp.QuoteMeta(pnHint))
		if m := anchored.FindStringSubmatch(upper); m != nil {
			if name := SanitizeMfg(lex, m[1]); name != "" {
				return internal.Candidate{Value: name, Strategy: internal.StrategyContext, Confidence: confContext}, true
			}
		}
	}
	return internal.Candidate{}, false
}

func prefixMfg(lex *lexicon.Lexicon, toks []string) (internal.Candidate, bool) {
	for _, tok := range toks {
		name, _, composite, ok := lex.DecodePrefix(tok)
		if !ok {
			continue
		}
		conf := confPrefix
		if composite {
			conf = confComposite
		}
		return internal.Candidate{Value: name, Strategy: internal.StrategyPrefixDecode, Confidence: conf}, true
	}
	return internal.Candidate{}, false
}

// supplierMfg is the weakest signal: the vendor on the PO is often a
// distributor rather than the maker, so distributors are dropped outright
// and everything else is offered at low confidence.
func supplierMfg(lex *lexicon.Lexicon, supplier string) (internal.Candidate, bool) {
	if strings.TrimSpace(supplier) == "" {
		return internal.Candidate{}, false
	}
	cleaned := lex.CleanSupplier(supplier)
	if cleaned == "" || lex.IsDistributor(cleaned) {
		return internal.Candidate{}, false
	}
	name := SanitizeMfg(lex, cleaned)
	if name == "" {
		return internal.Candidate{}, false
	}
	return internal.Candidate{Value: name, Strategy: internal.StrategySupplierFallback, Confidence: confSupplier}, true
}
