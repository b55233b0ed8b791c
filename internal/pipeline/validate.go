package pipeline

import (
	"strings"

	"mroparse/internal"
	"mroparse/internal/dataset"
	"mroparse/internal/lexicon"
	"mroparse/internal/util"
)

// Validator runs the post-extraction plausibility rules. Every rule clears,
// never repairs: a suspect cell is blanked and the clearance logged.
type Validator struct {
	lex          *lexicon.Lexicon
	anomalyShare float64
}

// NewValidator builds a validator. anomalyShare is the filled-cell share
// above which a non-known manufacturer counts as a frequency anomaly;
// values outside (0, 1] fall back to 0.60.
func NewValidator(lex *lexicon.Lexicon, anomalyShare float64) *Validator {
	if anomalyShare <= 0 || anomalyShare > 1 {
		anomalyShare = 0.60
	}
	return &Validator{lex: lex, anomalyShare: anomalyShare}
}

// Validate applies the ordered rules to the populated output columns and
// returns one record per cleared cell. The frequency rule needs settled
// dataset-wide counts, so it runs as its own pass between the per-row
// manufacturer rules and the per-row part-number rules. Running Validate
// again over its own output produces no further corrections.
func (v *Validator) Validate(ds *dataset.Dataset, rm internal.RoleMap, mfgCol, pnCol string) []internal.CorrectionRecord {
	var recs []internal.CorrectionRecord
	clear := func(row int, field, col, reason string) {
		recs = append(recs, internal.CorrectionRecord{
			Row: row + 2, Field: field, OldValue: ds.Cell(row, col),
			Reason: reason, Action: "cleared",
		})
		ds.SetCell(row, col, "")
	}

	for i := 0; i < ds.RowCount(); i++ {
		pn := strings.TrimSpace(ds.Cell(i, pnCol))
		mfg := strings.TrimSpace(ds.Cell(i, mfgCol))

		if pn != "" && util.IsSpecValue(pn) {
			clear(i, internal.FieldPN, pnCol, "pn_spec_value")
			pn = ""
		}
		if mfg != "" && util.ContainsDigit(mfg) && !v.lex.IsDigitName(mfg) {
			clear(i, internal.FieldMfg, mfgCol, "mfg_contains_digit")
			mfg = ""
		}
		if mfg != "" && v.lex.IsDescriptorTerm(mfg) {
			clear(i, internal.FieldMfg, mfgCol, "mfg_descriptor")
			mfg = ""
		}
		if mfg != "" && pn != "" && mfg == pn {
			clear(i, internal.FieldMfg, mfgCol, "mfg_equals_pn")
		}
	}

	v.clearFrequencyAnomaly(ds, rm, mfgCol, clear)

	for i := 0; i < ds.RowCount(); i++ {
		pn := strings.TrimSpace(ds.Cell(i, pnCol))
		if pn == "" {
			continue
		}
		if len(pn) <= 2 {
			clear(i, internal.FieldPN, pnCol, "pn_too_short")
			continue
		}
		if v.lex.IsKnownManufacturer(pn) {
			clear(i, internal.FieldPN, pnCol, "pn_known_mfg")
			continue
		}
		if util.IsAlphabetic(pn) && len(pn) <= 12 && !v.lex.IsKnownManufacturer(pn) {
			clear(i, internal.FieldPN, pnCol, "pn_alpha_word")
		}
	}
	return recs
}

// clearFrequencyAnomaly blanks a manufacturer value that floods more than
// anomalyShare of the filled cells without being known or label-confirmed
// anywhere in the source text. A dominant wrong guess tends to come from
// one bad strategy firing on every row of a uniform file.
func (v *Validator) clearFrequencyAnomaly(ds *dataset.Dataset, rm internal.RoleMap, mfgCol string, clear func(int, string, string, string)) {
	counts := make(map[string]int)
	total := 0
	for i := 0; i < ds.RowCount(); i++ {
		m := strings.TrimSpace(ds.Cell(i, mfgCol))
		if m == "" {
			continue
		}
		counts[m]++
		total++
	}
	if total == 0 {
		return
	}

	var confirmed map[string]bool
	for value, n := range counts {
		if float64(n)/float64(total) <= v.anomalyShare {
			continue
		}
		if v.lex.IsKnownManufacturer(value) {
			continue
		}
		if confirmed == nil {
			confirmed = v.labelConfirmedNames(ds, rm)
		}
		if confirmed[value] {
			continue
		}
		for i := 0; i < ds.RowCount(); i++ {
			if strings.TrimSpace(ds.Cell(i, mfgCol)) == value {
				clear(i, internal.FieldMfg, mfgCol, "mfg_frequency_anomaly")
			}
		}
	}
}

// labelConfirmedNames mines every source cell for explicitly labeled
// manufacturer names. A name someone typed after MANUFACTURER: counts as
// ground truth even when it dominates the file.
func (v *Validator) labelConfirmedNames(ds *dataset.Dataset, rm internal.RoleMap) map[string]bool {
	confirmed := make(map[string]bool)
	for _, col := range rm.TextSources() {
		for i := 0; i < ds.RowCount(); i++ {
			cell := ds.Cell(i, col)
			if strings.TrimSpace(cell) == "" {
				continue
			}
			upper := strings.ToUpper(util.NormalizeSpaces(cell))
			if c, ok := labelMfg(v.lex, upper); ok {
				confirmed[c.Value] = true
			}
		}
	}
	return confirmed
}
