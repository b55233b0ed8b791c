package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"mroparse/internal"
	"mroparse/internal/util"
)

// Offline instruction interpreter: maps requests like "pull MFG and PN from
// Material Description" onto a pipeline configuration. Pure keyword
// matching, no model calls.

var pipelineSignals = []struct {
	kind     internal.PipelineKind
	patterns []*regexp.Regexp
}{
	{internal.PipelineMfgPN, compileAll(
		`\bmfg\b`, `\bmanufacturer\b`, `\bpart\s*number\b`, `\bpn\b`,
		`\bextract\s+mfg\b`, `\bpull\s+mfg\b`, `\bparse\s+mfg\b`,
		`\belectrical\b`, `\bmaterial\s+description\b`,
	)},
	{internal.PipelinePartNumber, compileAll(
		`\bpart\s*number\s*(only|clean|reprocess|extract)\b`,
		`\bclean\s+part\s*numbers?\b`, `\breprocess\b`,
		`\bstrict\s+pn\b`, `\bvalidate\s+pn\b`,
	)},
	{internal.PipelineSim, compileAll(
		`\bsim\b`, `\bbom\b`, `\bconcatenat`, `\bcombine\s+mfg`,
		`\bmfg\s*\+\s*item\b`, `\bmissing\s+sim\b`, `\bbuild\s+sim\b`,
		`\bgenerate\s+sim\b`, `\bfill\s+sim\b`,
	)},
}

var sourceColSignals = compileAll(
	`\bmaterial\s+desc`, `\bdescription\s+col`, `\bdesc\s+col`,
	`\bthe\s+description`, `\bfrom\s+description\b`, `\bdescription\b`,
	`\bmaterial\s+po\s+text\b`, `\bpo\s+text\b`, `\bpo\s+col`,
	`\bnotes?\b`, `\binforec`,
)

var (
	mfgTargetSignals = compileAll(`\bmfg\b`, `\bmanufacturer\b`, `\bmaker\b`, `\bbrand\b`, `\boem\b`)
	pnTargetSignals  = compileAll(`\bpn\b`, `\bpart\s*num`, `\bmodel\s*num`, `\bitem\s*#?\b`, `\bpart\s*#?\b`)
)

var (
	colLetterRe = regexp.MustCompile(`(?i)(?:column|col\.?)\s*([A-Z])`)
	colRangeRe  = regexp.MustCompile(`(?i)(?:columns?|cols?\.?)\s*([A-Z])\s*(?:and|&|,|through|to|-)\s*([A-Z])`)
	intoColRe   = regexp.MustCompile(`(?i)(?:into|in|to)\s+(?:column|col\.?)\s*([A-Z])`)
	addSimRe    = regexp.MustCompile(`(?:and|with|plus|also|include)\s+sim\b`)
	simWordRe   = regexp.MustCompile(`\bsim\b`)
)

// simStyleSignals maps request wording onto a composite-key style, checked
// in order. The alphanumeric/sanitize wording selects the dash style, whose
// builder strips the item to alphanumerics.
var simStyleSignals = []struct {
	style    internal.SimStyle
	keywords []string
}{
	{internal.SimDash, []string{"dash", "hyphen", "pattern a", "pattern-a"}},
	{internal.SimCompact, []string{"compact", "no separator", "no space", "pattern b", "pattern-b"}},
	{internal.SimDash, []string{"alphanumeric", "sanitize", "clean", "pattern c", "pattern-c"}},
	{internal.SimSpace, []string{"space", "default"}},
}

// autoSourceNames are the column names tried when the instruction names no
// source column.
var autoSourceNames = []string{
	"material description", "material po text", "po text",
	"description", "notes", "inforectxt1", "inforectxt2",
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

func countMatches(res []*regexp.Regexp, text string) int {
	n := 0
	for _, re := range res {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}

// ParseInstruction interprets a free-text processing request against the
// available column headers and returns a structured pipeline config. With
// no usable signal it falls back to header-based pipeline detection.
func ParseInstruction(text string, headers []string) internal.ParsedInstruction {
	result := internal.ParsedInstruction{
		Pipeline:  internal.PipelineMfgPN,
		MfgColumn: util.StringPtr("MFG"),
		PNColumn:  util.StringPtr("PN"),
		SimColumn: util.StringPtr("SIM"),
		SimStyle:  internal.SimSpace,
	}

	t := strings.TrimSpace(text)
	if t == "" {
		result.Pipeline = AutoDetectPipeline(headers)
		result.Explanation = "No instruction provided. Will attempt auto-detection."
		return result
	}
	lower := strings.ToLower(t)

	bestScore := 0
	for _, sig := range pipelineSignals {
		if score := countMatches(sig.patterns, lower); score > bestScore {
			bestScore = score
			result.Pipeline = sig.kind
		}
	}
	if bestScore == 0 {
		result.Pipeline = AutoDetectPipeline(headers)
	}

	confidence := float64(bestScore) / 3.0
	if confidence > 1 {
		confidence = 1
	}
	if countMatches(sourceColSignals, lower) > 0 {
		confidence += 0.33
		if confidence > 1 {
			confidence = 1
		}
	}
	result.Confidence = confidence

	result.SourceColumns = referencedColumns(t, lower, headers)
	if len(result.SourceColumns) == 0 {
		for _, col := range headers {
			for _, name := range autoSourceNames {
				if strings.Contains(strings.ToLower(col), name) {
					result.SourceColumns = append(result.SourceColumns, col)
					break
				}
			}
		}
	}

	assignTargets(&result, t, lower, headers)

	if simWordRe.MatchString(lower) || result.Pipeline == internal.PipelineSim {
		result.AddSim = true
		for _, sig := range simStyleSignals {
			if containsAny(lower, sig.keywords) {
				result.SimStyle = sig.style
				break
			}
		}
	}
	if addSimRe.MatchString(lower) {
		result.AddSim = true
	}

	parts := []string{fmt.Sprintf("Pipeline: %s", result.Pipeline)}
	if len(result.SourceColumns) > 0 {
		parts = append(parts, fmt.Sprintf("Source columns: %s", strings.Join(result.SourceColumns, ", ")))
	}
	parts = append(parts, fmt.Sprintf("Target: MFG→%s, PN→%s", *result.MfgColumn, *result.PNColumn))
	if result.AddSim {
		parts = append(parts, fmt.Sprintf("SIM: enabled (pattern=%s)", result.SimStyle))
	}
	parts = append(parts, fmt.Sprintf("Confidence: %.0f%%", result.Confidence*100))
	result.Explanation = strings.Join(parts, " | ")

	return result
}

// referencedColumns resolves both named and lettered column references.
func referencedColumns(t, lower string, headers []string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(col string) {
		if col != "" && !seen[col] {
			seen[col] = true
			out = append(out, col)
		}
	}

	underscored := strings.ReplaceAll(lower, " ", "_")
	for _, col := range headers {
		cl := strings.ToLower(strings.TrimSpace(col))
		if cl == "" {
			continue
		}
		if strings.Contains(lower, cl) || strings.Contains(underscored, strings.ReplaceAll(cl, " ", "_")) {
			add(col)
		}
	}

	letters := make(map[byte]bool)
	for _, m := range colLetterRe.FindAllStringSubmatch(t, -1) {
		letters[upperByte(m[1][0])] = true
	}
	for _, m := range colRangeRe.FindAllStringSubmatch(t, -1) {
		for c := upperByte(m[1][0]); c <= upperByte(m[2][0]); c++ {
			letters[c] = true
		}
	}
	for c := byte('A'); c <= 'Z'; c++ {
		if !letters[c] {
			continue
		}
		if idx := int(c - 'A'); idx < len(headers) {
			add(headers[idx])
		}
	}
	return out
}

// assignTargets reads "into column X" references. Two references are taken
// as manufacturer then part number in order; a single one is steered by
// whichever field keywords appear alongside it.
func assignTargets(result *internal.ParsedInstruction, t, lower string, headers []string) {
	matches := intoColRe.FindAllStringSubmatch(t, -1)
	if len(matches) == 0 || len(headers) == 0 {
		return
	}
	colAt := func(m []string) (string, bool) {
		idx := int(upperByte(m[1][0]) - 'A')
		if idx < 0 || idx >= len(headers) {
			return "", false
		}
		return headers[idx], true
	}

	if len(matches) >= 2 {
		if col, ok := colAt(matches[0]); ok {
			result.MfgColumn = util.StringPtr(col)
		}
		if col, ok := colAt(matches[1]); ok {
			result.PNColumn = util.StringPtr(col)
		}
		return
	}
	col, ok := colAt(matches[0])
	if !ok {
		return
	}
	if countMatches(mfgTargetSignals, lower) > 0 {
		result.MfgColumn = util.StringPtr(col)
	} else if countMatches(pnTargetSignals, lower) > 0 {
		result.PNColumn = util.StringPtr(col)
	}
}

// AutoDetectPipeline guesses the pipeline from column names alone.
func AutoDetectPipeline(headers []string) internal.PipelineKind {
	upper := make([]string, 0, len(headers))
	for _, h := range headers {
		upper = append(upper, strings.ToUpper(strings.TrimSpace(h)))
	}
	hasExact := func(names ...string) bool {
		for _, u := range upper {
			for _, n := range names {
				if u == n {
					return true
				}
			}
		}
		return false
	}

	if hasExact("ITEM #", "ITEM#") && hasExact("SIM") {
		return internal.PipelineSim
	}
	for _, u := range upper {
		if strings.Contains(u, "MATERIAL") {
			return internal.PipelineMfgPN
		}
	}
	for _, u := range upper {
		if strings.Contains(u, "PART NUMBER") {
			return internal.PipelinePartNumber
		}
	}
	if hasExact("MFG", "MANUFACTURER") {
		return internal.PipelineMfgPN
	}
	return internal.PipelineMfgPN
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
