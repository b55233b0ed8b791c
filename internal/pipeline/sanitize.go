package pipeline

import (
	"regexp"
	"strings"

	"mroparse/internal"
	"mroparse/internal/lexicon"
	"mroparse/internal/util"
)

var (
	validPNRe      = regexp.MustCompile(`^[A-Z0-9]+(?:[\-/][A-Z0-9]+)*$`)
	structuredPNRe = regexp.MustCompile(`\b([A-Z0-9]+(?:[\-/][A-Z0-9]+)+)\b`)
	pnTokenRe      = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-_/\.]*`)
	fieldSplitRe   = regexp.MustCompile(`[\s,;]\s*`)
)

// CleanPNToken reduces a raw capture to a single part-number token: upper,
// first comma/space/semicolon field, leading valid run. Empty means no
// usable token.
func CleanPNToken(token string) string {
	s := strings.ToUpper(strings.TrimSpace(token))
	if s == "" {
		return ""
	}
	s = fieldSplitRe.Split(s, 2)[0]
	return pnTokenRe.FindString(s)
}

// SanitizeMfg cleans and vets a manufacturer candidate. Empty means
// rejected. Known manufacturers are accepted up front so that a legal name
// containing a product word (ELECTRO-SENSORS) survives the descriptor
// check that would otherwise kill it.
func SanitizeMfg(lex *lexicon.Lexicon, raw string) string {
	x := util.NormalizeSpaces(strings.ToUpper(raw))
	if x == "" {
		return ""
	}
	if lex.IsDistributor(x) {
		return ""
	}
	if lex.IsKnownManufacturer(x) {
		return finishMfg(lex, x)
	}
	if lex.HasDescriptorKeyword(x) {
		return ""
	}
	if lex.IsDescriptorTerm(x) {
		return ""
	}
	if util.ContainsDigit(x) && !lex.IsDigitName(x) {
		return ""
	}
	if len(x) <= 2 {
		return ""
	}
	if util.IsSpecValue(x) {
		return ""
	}
	return finishMfg(lex, x)
}

func finishMfg(lex *lexicon.Lexicon, x string) string {
	x = lex.Normalize(x)
	x = strings.ReplaceAll(x, "SQUARE-D", "SQUARE D")
	x = strings.ReplaceAll(x, "CROUSE-HINDS", "CROUSE HINDS")
	x = strings.ReplaceAll(x, "STATIC O RING", "STATIC O-RING")
	return util.NormalizeSpaces(x)
}

// IsValidPN reports whether s is a well-formed part number: alphanumeric
// segments joined by dash or slash, not under the invalid-prefix blocklist.
func IsValidPN(lex *lexicon.Lexicon, s string) bool {
	x := strings.ToUpper(strings.TrimSpace(s))
	if x == "" || lex.HasInvalidPNPrefix(x) {
		return false
	}
	return validPNRe.MatchString(x)
}

// FormatPN is the final formatting pass for accepted part numbers.
func FormatPN(s string) string {
	return util.UpperCompact(s)
}

// PNNeedsReview flags part numbers longer than maxLen. Long values are
// usually concatenated config codes and go to review instead of being
// truncated.
func PNNeedsReview(s string, maxLen int) bool {
	return len(strings.TrimSpace(s)) > maxLen
}

// BuildSim joins a manufacturer and a part identifier into a composite key.
func BuildSim(mfg, pn string, style internal.SimStyle) string {
	m := strings.TrimSpace(mfg)
	p := strings.TrimSpace(pn)
	switch style {
	case internal.SimDash:
		return strings.Trim(m+"-"+p, "-")
	case internal.SimCompact:
		return m + p
	default:
		return strings.TrimSpace(m + " " + p)
	}
}
