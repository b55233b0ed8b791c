package pipeline

import (
	"crypto/md5"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"

	"mroparse/internal"
	"mroparse/internal/dataset"
	"mroparse/internal/lexicon"
)

var (
	profLabeledPNRe  = regexp.MustCompile(`\b(?:PN|P/N|MN|MODEL|PART\s+NUMBER|MODEL\s+NUMBER)\s*[:#]`)
	profLabeledMfgRe = regexp.MustCompile(`MANUFACTURER\s*:`)
	pureCatalogRe    = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-/\.]*$`)
	prefixCodedRe    = regexp.MustCompile(`^[A-Z]{2,4}[A-Z0-9]*[0-9][A-Z0-9]*$`)
	tokenSplitRe     = regexp.MustCompile(`[,\s]+`)
)

// archetypeWeights carries the per-archetype trust level of each extraction
// strategy. These are absolute weights; template multipliers are layered on
// top of them later.
var archetypeWeights = map[internal.Archetype]internal.WeightTable{
	internal.ArchetypeLabeledRich: {
		internal.StrategyLabel:             1.2,
		internal.StrategyKnownMfg:          1.0,
		internal.StrategyContext:           1.0,
		internal.StrategyPrefixDecode:      0.5,
		internal.StrategySupplierFallback:  0.3,
		internal.StrategyHeuristic:         0.6,
		internal.StrategyDashCatalog:       1.0,
		internal.StrategyTrailingCatalog:   1.0,
		internal.StrategyTrailingNumeric:   0.9,
		internal.StrategyPNStructured:      1.0,
		internal.StrategyFirstTokenCatalog: 1.0,
		internal.StrategyEmbeddedCode:      0.8,
	},
	internal.ArchetypeCompressedShort: {
		internal.StrategyLabel:             1.0,
		internal.StrategyKnownMfg:          1.2,
		internal.StrategyContext:           0.8,
		internal.StrategyPrefixDecode:      1.3,
		internal.StrategySupplierFallback:  1.2,
		internal.StrategyHeuristic:         0.4,
		internal.StrategyDashCatalog:       1.0,
		internal.StrategyTrailingCatalog:   1.0,
		internal.StrategyTrailingNumeric:   0.9,
		internal.StrategyPNStructured:      1.0,
		internal.StrategyFirstTokenCatalog: 1.0,
		// Compressed SAP text often carries part numbers glued into
		// abbreviation runs, so embedded scanning gets a boost here.
		internal.StrategyEmbeddedCode: 1.2,
	},
	internal.ArchetypeCatalogOnly: {
		internal.StrategyLabel:             0.8,
		internal.StrategyKnownMfg:          0.5,
		internal.StrategyContext:           0.3,
		internal.StrategyPrefixDecode:      1.0,
		internal.StrategySupplierFallback:  1.5,
		internal.StrategyHeuristic:         0.3,
		internal.StrategyDashCatalog:       1.3,
		internal.StrategyTrailingCatalog:   1.0,
		internal.StrategyTrailingNumeric:   0.9,
		internal.StrategyPNStructured:      1.0,
		internal.StrategyFirstTokenCatalog: 1.1,
		internal.StrategyEmbeddedCode:      0.9,
	},
	internal.ArchetypeMixed: {
		internal.StrategyLabel:            1.0,
		internal.StrategyKnownMfg:         1.0,
		internal.StrategyContext:          1.0,
		internal.StrategyPrefixDecode:     1.0,
		internal.StrategySupplierFallback: 1.0,
		// 0.75, not lower: the heuristic tops out at 0.65 raw, and
		// anything under ~0.62 here would push every heuristic hit below
		// the 0.40 threshold and silently disable the strategy.
		internal.StrategyHeuristic:         0.75,
		internal.StrategyDashCatalog:       1.0,
		internal.StrategyTrailingCatalog:   1.0,
		internal.StrategyTrailingNumeric:   0.9,
		internal.StrategyPNStructured:      1.0,
		internal.StrategyFirstTokenCatalog: 1.0,
		internal.StrategyEmbeddedCode:      1.0,
	},
}

var archetypeThresholds = map[internal.Archetype]float64{
	internal.ArchetypeLabeledRich:     0.35,
	internal.ArchetypeCompressedShort: 0.45,
	internal.ArchetypeCatalogOnly:     0.50,
	internal.ArchetypeMixed:           0.40,
}

// Profiler samples dataset text and classifies its format archetype.
// Profiles are memoized by a content hash so repeated runs over the same
// dataset stay cheap.
type Profiler struct {
	sampleSize int
	seed       int64

	mu    sync.Mutex
	cache map[string]internal.ContentProfile
}

func NewProfiler(sampleSize int, seed int64) *Profiler {
	return &Profiler{
		sampleSize: sampleSize,
		seed:       seed,
		cache:      make(map[string]internal.ContentProfile),
	}
}

// Profile analyzes ds and returns its ContentProfile. Text is drawn from
// the role map's source columns; the supplier and manufacturer output
// columns only feed the two structural booleans.
func (p *Profiler) Profile(ds *dataset.Dataset, rm internal.RoleMap, lex *lexicon.Lexicon) internal.ContentProfile {
	key := profileKey(ds, rm)
	p.mu.Lock()
	if prof, ok := p.cache[key]; ok {
		p.mu.Unlock()
		return prof
	}
	p.mu.Unlock()

	prof := p.compute(ds, rm, lex)
	p.mu.Lock()
	p.cache[key] = prof
	p.mu.Unlock()
	return prof
}

func (p *Profiler) compute(ds *dataset.Dataset, rm internal.RoleMap, lex *lexicon.Lexicon) internal.ContentProfile {
	total := ds.RowCount()
	sampleN := p.sampleSize
	if total < sampleN {
		sampleN = total
	}

	if sampleN == 0 {
		return internal.ContentProfile{
			Archetype:   internal.ArchetypeMixed,
			SampleSize:  0,
			PctFreeText: 1.0,
			Weights:     archetypeWeights[internal.ArchetypeMixed],
			Threshold:   archetypeThresholds[internal.ArchetypeMixed],
		}
	}

	sources := existingColumns(ds, rm.TextSources())
	rows := sampleRows(total, sampleN, p.seed)
	known := lex.KnownManufacturers()

	var labeledPN, labeledMfg, prefixCoded, knownMfg, pureCatalog, comma, free int
	totalTokens := 0

	for _, row := range rows {
		combined := combinedText(ds, row, sources)
		upper := strings.ToUpper(strings.TrimSpace(combined))

		for _, tok := range tokenSplitRe.Split(upper, -1) {
			if tok != "" {
				totalTokens++
			}
		}

		switch {
		case profLabeledPNRe.MatchString(upper):
			labeledPN++
		case profLabeledMfgRe.MatchString(upper):
			labeledMfg++
		case isPrefixCoded(upper):
			prefixCoded++
		case containsKnownName(upper, known):
			knownMfg++
		case pureCatalogRe.MatchString(upper) && len(upper) < 20:
			pureCatalog++
		case strings.Contains(upper, ","):
			comma++
		default:
			free++
		}
	}

	n := float64(sampleN)
	prof := internal.ContentProfile{
		SampleSize:        sampleN,
		PctLabeledPN:      float64(labeledPN) / n,
		PctLabeledMfg:     float64(labeledMfg) / n,
		PctKnownMfg:       float64(knownMfg) / n,
		PctCommaDelimited: float64(comma) / n,
		PctPureCatalog:    float64(pureCatalog) / n,
		PctFreeText:       float64(free) / n,
		PctPrefixCoded:    float64(prefixCoded) / n,
		AvgTokenCount:     float64(totalTokens) / n,
	}

	prof.HasSupplierColumn = rm.SupplierColumn != nil && ds.HasColumn(*rm.SupplierColumn)
	prof.OutputPartiallyFilled = outputHasData(ds, rm.MfgOutput)

	prof.Archetype = classifyArchetype(prof)
	prof.Weights = archetypeWeights[prof.Archetype]
	prof.Threshold = archetypeThresholds[prof.Archetype]
	return prof
}

// classifyArchetype applies the archetype rules in fixed priority order.
func classifyArchetype(prof internal.ContentProfile) internal.Archetype {
	switch {
	case prof.PctLabeledPN >= 0.40 || prof.PctLabeledMfg >= 0.20:
		return internal.ArchetypeLabeledRich
	case prof.PctPureCatalog >= 0.30:
		return internal.ArchetypeCatalogOnly
	case prof.PctCommaDelimited >= 0.40 && prof.PctLabeledPN < 0.15:
		return internal.ArchetypeCompressedShort
	default:
		return internal.ArchetypeMixed
	}
}

// isPrefixCoded reports whether the first token of text looks like a
// manufacturer-prefix-coded value such as HUBCS120W or SQDHOM123: two to
// four leading letters, at least one digit, more than five characters.
func isPrefixCoded(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	tok := strings.SplitN(fields[0], ",", 2)[0]
	return len(tok) > 5 && prefixCodedRe.MatchString(tok)
}

func containsKnownName(upper string, known []string) bool {
	for _, name := range known {
		if name != "" && strings.Contains(upper, name) {
			return true
		}
	}
	return false
}

// combinedText joins a record's non-blank source cells with " | ".
func combinedText(ds *dataset.Dataset, row int, sources []string) string {
	parts := make([]string, 0, len(sources))
	for _, col := range sources {
		if v := strings.TrimSpace(ds.Cell(row, col)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " | ")
}

func existingColumns(ds *dataset.Dataset, cols []string) []string {
	out := cols[:0]
	for _, c := range cols {
		if ds.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// sampleRows picks n distinct row indices. The fixed seed keeps repeated
// profiling of the same dataset deterministic.
func sampleRows(total, n int, seed int64) []int {
	if n >= total {
		rows := make([]int, total)
		for i := range rows {
			rows[i] = i
		}
		return rows
	}
	r := rand.New(rand.NewSource(seed))
	return r.Perm(total)[:n]
}

func outputHasData(ds *dataset.Dataset, col *string) bool {
	if col == nil || !ds.HasColumn(*col) {
		return false
	}
	for row := 0; row < ds.RowCount(); row++ {
		if !ds.IsBlank(row, *col) {
			return true
		}
	}
	return false
}

// profileKey hashes the headers and a bounded row prefix together with the
// resolved role columns. Two datasets with the same first hundred rows and
// the same role bindings profile identically.
func profileKey(ds *dataset.Dataset, rm internal.RoleMap) string {
	h := md5.New()
	fmt.Fprintln(h, strings.Join(ds.Headers, "|"))
	limit := ds.RowCount()
	if limit > 100 {
		limit = 100
	}
	for row := 0; row < limit; row++ {
		for _, col := range ds.Headers {
			fmt.Fprint(h, ds.Cell(row, col), "|")
		}
		fmt.Fprintln(h)
	}
	fmt.Fprintln(h, strings.Join(rm.TextSources(), "|"))
	if rm.SupplierColumn != nil {
		fmt.Fprintln(h, *rm.SupplierColumn)
	}
	if rm.MfgOutput != nil {
		fmt.Fprintln(h, *rm.MfgOutput)
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// ProfileSummary renders prof for CLI output.
func ProfileSummary(prof internal.ContentProfile, totalRows int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "content profile: %s\n", prof.Archetype)
	fmt.Fprintf(&b, "  rows sampled:     %d of %d\n", prof.SampleSize, totalRows)
	fmt.Fprintf(&b, "  labeled pn:       %.1f%%\n", prof.PctLabeledPN*100)
	fmt.Fprintf(&b, "  labeled mfg:      %.1f%%\n", prof.PctLabeledMfg*100)
	fmt.Fprintf(&b, "  known mfg names:  %.1f%%\n", prof.PctKnownMfg*100)
	fmt.Fprintf(&b, "  comma delimited:  %.1f%%\n", prof.PctCommaDelimited*100)
	fmt.Fprintf(&b, "  pure catalog:     %.1f%%\n", prof.PctPureCatalog*100)
	fmt.Fprintf(&b, "  free text:        %.1f%%\n", prof.PctFreeText*100)
	fmt.Fprintf(&b, "  prefix coded:     %.1f%%\n", prof.PctPrefixCoded*100)
	fmt.Fprintf(&b, "  avg tokens/row:   %.1f\n", prof.AvgTokenCount)
	fmt.Fprintf(&b, "  supplier column:  %t\n", prof.HasSupplierColumn)
	fmt.Fprintf(&b, "  output prefilled: %t\n", prof.OutputPartiallyFilled)
	fmt.Fprintf(&b, "  threshold:        %.2f\n", prof.Threshold)
	return b.String()
}
