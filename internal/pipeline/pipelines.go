package pipeline

import (
	"regexp"
	"strings"

	"mroparse/internal"
	"mroparse/internal/dataset"
	"mroparse/internal/lexicon"
	"mroparse/internal/util"
)

// resolveColumn finds name among the headers case-insensitively, falling
// back to name itself so a later AddColumn can create it.
func resolveColumn(ds *dataset.Dataset, name string) string {
	if ds.HasColumn(name) {
		return name
	}
	for _, h := range ds.Headers {
		if strings.EqualFold(h, name) {
			return h
		}
	}
	return name
}

// RefillPartNumbers rewrites part-number cells whose current value is
// missing or malformed, taking the longest structured token found across
// the source texts. Well-formed existing values are never touched.
func RefillPartNumbers(lex *lexicon.Lexicon, ds *dataset.Dataset, textCols []string, pnCol string) int {
	pnCol = resolveColumn(ds, pnCol)
	ds.AddColumn(pnCol)

	updated := 0
	for i := 0; i < ds.RowCount(); i++ {
		if IsValidPN(lex, ds.Cell(i, pnCol)) {
			continue
		}
		parts := make([]string, 0, len(textCols))
		for _, c := range textCols {
			if cell := strings.TrimSpace(ds.Cell(i, c)); cell != "" {
				parts = append(parts, cell)
			}
		}
		blob := strings.ToUpper(strings.Join(parts, " "))
		best := ""
		for _, tok := range structuredPNRe.FindAllString(blob, -1) {
			if lex.HasInvalidPNPrefix(tok) {
				continue
			}
			if !util.ContainsLetter(tok) || !util.ContainsDigit(tok) {
				continue
			}
			if len(tok) > len(best) {
				best = tok
			}
		}
		if best != "" && IsValidPN(lex, best) {
			ds.SetCell(i, pnCol, best)
			updated++
		}
	}
	return updated
}

var nonAlnumRe = regexp.MustCompile(`[^0-9A-Za-z]`)

// FillMissingSims builds the composite key for rows where it is absent.
// Zeroish strings count as absent because upstream exports render empty
// numeric cells that way.
func FillMissingSims(ds *dataset.Dataset, mfgCol, itemCol, simCol string, style internal.SimStyle) int {
	mfgCol = resolveColumn(ds, mfgCol)
	itemCol = resolveColumn(ds, itemCol)
	simCol = resolveColumn(ds, simCol)
	ds.AddColumn(simCol)

	filled := 0
	for i := 0; i < ds.RowCount(); i++ {
		if !simMissing(ds.Cell(i, simCol)) {
			continue
		}
		mfg := util.NormalizeSpaces(strings.ToUpper(ds.Cell(i, mfgCol)))
		item := strings.TrimSpace(ds.Cell(i, itemCol))

		var sim string
		switch style {
		case internal.SimSpace:
			sim = strings.TrimSpace(mfg + " " + item)
		case internal.SimCompact:
			sim = mfg + strings.ReplaceAll(item, " ", "")
		default:
			sim = mfg + "-" + nonAlnumRe.ReplaceAllString(item, "")
		}
		if strings.Trim(sim, "-") == "" {
			continue
		}
		ds.SetCell(i, simCol, sim)
		filled++
	}
	return filled
}

func simMissing(v string) bool {
	s := strings.TrimSpace(v)
	return s == "" || s == "0" || s == "0.0"
}

// TidyOutputs normalizes the full output columns, including values that
// predate this run: manufacturer names go through the alias table, part
// numbers lose internal whitespace.
func TidyOutputs(lex *lexicon.Lexicon, ds *dataset.Dataset, mfgCol, pnCol string) {
	for i := 0; i < ds.RowCount(); i++ {
		if m := strings.TrimSpace(ds.Cell(i, mfgCol)); m != "" {
			ds.SetCell(i, mfgCol, lex.Normalize(m))
		}
		if p := strings.TrimSpace(ds.Cell(i, pnCol)); p != "" {
			ds.SetCell(i, pnCol, FormatPN(p))
		}
	}
}

// QAIssue flags one row for human review. Flags overlap the validator on
// purpose: the validator clears what it is sure about, QA surfaces what a
// reviewer should still look at.
type QAIssue struct {
	Row   int    `json:"row"`
	Flag  string `json:"flag"`
	Note  string `json:"note"`
	Value string `json:"value"`
}

func RunQA(lex *lexicon.Lexicon, ds *dataset.Dataset, mfgCol, pnCol string, maxPNLen int) []QAIssue {
	if maxPNLen <= 0 {
		maxPNLen = 30
	}
	var issues []QAIssue
	flag := func(row int, key, note string) {
		issues = append(issues, QAIssue{Row: row + 2, Flag: key, Note: note, Value: ds.Cell(row, mfgCol)})
	}
	for i := 0; i < ds.RowCount(); i++ {
		mfg := strings.TrimSpace(ds.Cell(i, mfgCol))
		pn := strings.TrimSpace(ds.Cell(i, pnCol))
		if mfg == "" {
			flag(i, "MFG_missing", "MFG is empty")
		}
		if pn == "" {
			flag(i, "PN_missing", "PN is empty")
		}
		if mfg != "" && lex.IsDistributor(mfg) {
			flag(i, "MFG_is_distributor", "MFG is a distributor")
		}
		if util.ContainsDigit(mfg) {
			flag(i, "MFG_has_digits", "MFG contains digits")
		}
		if PNNeedsReview(pn, maxPNLen) {
			flag(i, "PN_too_long", "PN exceeds 30 chars - review for concatenated codes")
		}
		if mfg != "" && mfg == pn {
			flag(i, "MFG_equals_PN", "MFG identical to PN")
		}
	}
	return issues
}
