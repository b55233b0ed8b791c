package pipeline

import (
	"strings"

	"mroparse/internal"
	"mroparse/internal/dataset"
	"mroparse/internal/lexicon"
)

// Cascade arbitrates strategy candidates into final field values using the
// weight table and acceptance threshold chosen by schema detection.
type Cascade struct {
	lex       *lexicon.Lexicon
	weights   internal.WeightTable
	threshold float64
	maxPNLen  int
}

func NewCascade(lex *lexicon.Lexicon, weights internal.WeightTable, threshold float64, maxPNLen int) *Cascade {
	if maxPNLen <= 0 {
		maxPNLen = 30
	}
	return &Cascade{lex: lex, weights: weights, threshold: threshold, maxPNLen: maxPNLen}
}

// RunOptions selects the output columns and composite-key behavior for one
// cascade pass over a dataset.
type RunOptions struct {
	MfgColumn string
	PNColumn  string
	SimColumn string
	AddSim    bool
	SimStyle  internal.SimStyle
}

// Run extracts both fields for every row, writing results into the output
// columns. Existing output values are preserved; only blank cells are
// filled. The SIM column, when requested, is rebuilt for every row from
// whatever the output columns hold after extraction.
func (c *Cascade) Run(ds *dataset.Dataset, rm internal.RoleMap, opts RunOptions) (internal.RunStats, []internal.LowConfidenceItem) {
	stats := internal.RunStats{Rows: ds.RowCount(), Threshold: c.threshold}
	var review []internal.LowConfidenceItem

	ds.AddColumn(opts.MfgColumn)
	ds.AddColumn(opts.PNColumn)
	if opts.AddSim {
		ds.AddColumn(opts.SimColumn)
	}

	sources := rm.TextSources()
	supplierCol := ""
	if rm.SupplierColumn != nil {
		supplierCol = *rm.SupplierColumn
	}

	var mfgConfSum, pnConfSum float64
	for i := 0; i < ds.RowCount(); i++ {
		texts := make([]string, 0, len(sources))
		for _, col := range sources {
			texts = append(texts, ds.Cell(i, col))
		}
		supplier := ""
		if supplierCol != "" {
			supplier = ds.Cell(i, supplierCol)
		}

		primary := firstNonBlank(texts)
		hasSupplier := strings.TrimSpace(supplier) != ""
		if primary == "" && !hasSupplier {
			continue
		}
		// A freight or tax line is skipped outright, unless a vendor is
		// named, in which case the supplier fallback still gets its shot.
		if primary != "" && c.lex.IsNonProduct(primary) && !hasSupplier {
			stats.SkippedNonProduct++
			continue
		}

		// Part number first: its raw value anchors the manufacturer
		// context strategy.
		pnHint := ""
		if best, score, found := c.arbitrate(PNCandidates(c.lex, texts)); found {
			if score >= c.threshold {
				stats.PN.AboveThreshold++
				pnConfSum += score
				pnHint = best.Value
				value := FormatPN(best.Value)
				if ds.IsBlank(i, opts.PNColumn) {
					ds.SetCell(i, opts.PNColumn, value)
					stats.PN.Filled++
				}
				if PNNeedsReview(value, c.maxPNLen) {
					review = append(review, internal.LowConfidenceItem{
						Row: i + 2, Field: internal.FieldPN, Value: value,
						Strategy: best.Strategy, Confidence: score,
					})
				}
			} else {
				stats.PN.BelowThreshold++
				review = append(review, internal.LowConfidenceItem{
					Row: i + 2, Field: internal.FieldPN, Value: best.Value,
					Strategy: best.Strategy, Confidence: score,
				})
			}
		}

		if best, score, found := c.arbitrate(MfgCandidates(c.lex, texts, supplier, pnHint)); found {
			if score >= c.threshold {
				stats.Mfg.AboveThreshold++
				mfgConfSum += score
				if ds.IsBlank(i, opts.MfgColumn) {
					ds.SetCell(i, opts.MfgColumn, best.Value)
					stats.Mfg.Filled++
				}
			} else {
				stats.Mfg.BelowThreshold++
				review = append(review, internal.LowConfidenceItem{
					Row: i + 2, Field: internal.FieldMfg, Value: best.Value,
					Strategy: best.Strategy, Confidence: score,
				})
			}
		}

		if opts.AddSim {
			sim := BuildSim(ds.Cell(i, opts.MfgColumn), ds.Cell(i, opts.PNColumn), opts.SimStyle)
			if sim != "" {
				ds.SetCell(i, opts.SimColumn, sim)
				stats.SimFilled++
			}
		}
	}

	if stats.PN.AboveThreshold > 0 {
		stats.PN.MeanConfidence = round3(pnConfSum / float64(stats.PN.AboveThreshold))
	}
	if stats.Mfg.AboveThreshold > 0 {
		stats.Mfg.MeanConfidence = round3(mfgConfSum / float64(stats.Mfg.AboveThreshold))
	}
	return stats, review
}

// arbitrate picks the candidate with the highest weighted confidence. Pool
// order breaks ties, so on an exact tie the higher priority strategy wins.
func (c *Cascade) arbitrate(pool []internal.Candidate) (internal.Candidate, float64, bool) {
	bestIdx := -1
	var bestScore float64
	for i, cand := range pool {
		s := cand.Confidence * c.weights.For(cand.Strategy)
		if bestIdx < 0 || s > bestScore {
			bestIdx, bestScore = i, s
		}
	}
	if bestIdx < 0 {
		return internal.Candidate{}, 0, false
	}
	return pool[bestIdx], round3(bestScore), true
}

func firstNonBlank(texts []string) string {
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			return t
		}
	}
	return ""
}
