package pipeline

import (
	"fmt"
	"math"
	"strings"

	"mroparse/internal"
)

// schemaMultipliers are per-template overlays applied on top of the content
// archetype's weights. They are multipliers, not absolute weights, so a
// strategy only ends up strongly boosted when structure and content agree.
var schemaMultipliers = map[internal.Template]internal.WeightTable{
	internal.TemplateSAPShortText: {
		// Compact comma-delimited codes. Prefix and supplier carry the
		// file; the heuristic is noise at this text length.
		internal.StrategyLabel:             0.9,
		internal.StrategyKnownMfg:          1.4,
		internal.StrategyContext:           0.8,
		internal.StrategyPrefixDecode:      1.5,
		internal.StrategySupplierFallback:  1.6,
		internal.StrategyHeuristic:         0.3,
		internal.StrategyDashCatalog:       1.0,
		internal.StrategyTrailingCatalog:   1.2,
		internal.StrategyTrailingNumeric:   1.0,
		internal.StrategyPNStructured:      1.0,
		internal.StrategyFirstTokenCatalog: 1.2,
		internal.StrategyEmbeddedCode:      1.4,
	},
	internal.TemplateSAPDualSource: {
		// Material description plus a second text source. The pre-label
		// context pattern (", PANDUIT, PN:") is very common in PO text.
		internal.StrategyLabel:             1.2,
		internal.StrategyKnownMfg:          1.1,
		internal.StrategyContext:           1.2,
		internal.StrategyPrefixDecode:      1.1,
		internal.StrategySupplierFallback:  0.8,
		internal.StrategyHeuristic:         0.7,
		internal.StrategyDashCatalog:       1.0,
		internal.StrategyTrailingCatalog:   1.0,
		internal.StrategyTrailingNumeric:   0.9,
		internal.StrategyPNStructured:      1.0,
		internal.StrategyFirstTokenCatalog: 1.0,
		internal.StrategyEmbeddedCode:      1.0,
	},
	internal.TemplateSAPStandard: {
		internal.StrategyLabel:             1.1,
		internal.StrategyKnownMfg:          1.0,
		internal.StrategyContext:           1.0,
		internal.StrategyPrefixDecode:      0.9,
		internal.StrategySupplierFallback:  0.6,
		internal.StrategyHeuristic:         0.8,
		internal.StrategyDashCatalog:       1.0,
		internal.StrategyTrailingCatalog:   1.0,
		internal.StrategyTrailingNumeric:   0.9,
		internal.StrategyPNStructured:      1.0,
		internal.StrategyFirstTokenCatalog: 1.0,
		internal.StrategyEmbeddedCode:      1.0,
	},
	internal.TemplateDistributorOrder: {
		// Vendor column and no inline labels. Supplier fallback is the
		// best manufacturer signal such files have.
		internal.StrategyLabel:             0.8,
		internal.StrategyKnownMfg:          0.9,
		internal.StrategyContext:           0.7,
		internal.StrategyPrefixDecode:      1.0,
		internal.StrategySupplierFallback:  1.8,
		internal.StrategyHeuristic:         0.5,
		internal.StrategyDashCatalog:       1.4,
		internal.StrategyTrailingCatalog:   1.1,
		internal.StrategyTrailingNumeric:   1.0,
		internal.StrategyPNStructured:      1.0,
		internal.StrategyFirstTokenCatalog: 1.2,
		internal.StrategyEmbeddedCode:      1.1,
	},
	internal.TemplateLabeledSpec: {
		// Explicit labels dominate; prefix and supplier mislead when a
		// PN: marker is sitting right there.
		internal.StrategyLabel:             1.5,
		internal.StrategyKnownMfg:          1.0,
		internal.StrategyContext:           1.0,
		internal.StrategyPrefixDecode:      0.5,
		internal.StrategySupplierFallback:  0.3,
		internal.StrategyHeuristic:         0.5,
		internal.StrategyDashCatalog:       0.8,
		internal.StrategyTrailingCatalog:   0.9,
		internal.StrategyTrailingNumeric:   0.8,
		internal.StrategyPNStructured:      1.0,
		internal.StrategyFirstTokenCatalog: 0.9,
		internal.StrategyEmbeddedCode:      0.8,
	},
	internal.TemplateGeneric: {
		internal.StrategyLabel:             1.0,
		internal.StrategyKnownMfg:          1.0,
		internal.StrategyContext:           1.0,
		internal.StrategyPrefixDecode:      1.0,
		internal.StrategySupplierFallback:  1.0,
		internal.StrategyHeuristic:         1.0,
		internal.StrategyDashCatalog:       1.0,
		internal.StrategyTrailingCatalog:   1.0,
		internal.StrategyTrailingNumeric:   1.0,
		internal.StrategyPNStructured:      1.0,
		internal.StrategyFirstTokenCatalog: 1.0,
		internal.StrategyEmbeddedCode:      1.0,
	},
}

// schemaThresholds hold the structural component of the blended per-row
// confidence floor.
var schemaThresholds = map[internal.Template]float64{
	internal.TemplateSAPShortText:     0.42,
	internal.TemplateSAPDualSource:    0.36,
	internal.TemplateSAPStandard:      0.38,
	internal.TemplateDistributorOrder: 0.45,
	internal.TemplateLabeledSpec:      0.32,
	internal.TemplateGeneric:          0.40,
}

const thresholdFloor = 0.35

var shortTextHeaders = map[string]bool{
	"short text": true, "shorttext": true, "short_text": true,
	"short desc": true, "short description": true, "short text ": true,
	"item text": true, "line text": true, "mat text": true,
}

var materialDescHeaders = map[string]bool{
	"material description": true, "mat description": true,
	"material desc": true, "material text": true, "mtrl desc": true,
	"material po text": true, "matnr_desc": true,
}

var poTextHeaders = map[string]bool{
	"po text": true, "po_text": true, "purchase order text": true,
	"po description": true, "po line text": true, "po item text": true,
	"material po text": true,
}

// ClassifySchema derives the structural template from the role map and
// content profile, merges the template multipliers into the archetype
// weights, and blends the two confidence thresholds. prof may be nil when
// no content profiling was run; detection then leans on structure alone.
func ClassifySchema(rm internal.RoleMap, prof *internal.ContentProfile) internal.SchemaProfile {
	sp := internal.SchemaProfile{
		HasSupplier:        len(rm.Supplier) > 0 || rm.SupplierColumn != nil,
		HasShortText:       anyHeaderIn(rm.Description, shortTextHeaders),
		HasRichDescription: anyHeaderIn(rm.Description, materialDescHeaders),
		HasSecondaryText:   len(rm.POText) > 0 || anyHeaderIn(rm.Description, poTextHeaders),
		HasMfgOutput:       rm.MfgOutput != nil,
		HasPNOutput:        rm.PNOutput != nil,
	}

	sp.Archetype = internal.ArchetypeMixed
	if prof != nil {
		sp.Archetype = prof.Archetype
	}

	sp.Template, sp.DetectionConfidence = detectTemplate(sp, prof)

	contentWeights := internal.WeightTable{}
	contentThreshold := 0.40
	if prof != nil {
		contentWeights = prof.Weights
		contentThreshold = prof.Threshold
	}
	sp.Weights = mergeWeights(contentWeights, schemaMultipliers[sp.Template])
	sp.Threshold = blendThreshold(schemaThresholds[sp.Template], contentThreshold)
	return sp
}

// detectTemplate applies the template rules in strict priority order.
func detectTemplate(sp internal.SchemaProfile, prof *internal.ContentProfile) (internal.Template, float64) {
	// Without a content profile the label rates default high enough that
	// the distributor branch cannot fire on structure alone.
	pctLabeledPN, pctLabeledMfg := 0.10, 0.10
	if prof != nil {
		pctLabeledPN = prof.PctLabeledPN
		pctLabeledMfg = prof.PctLabeledMfg
	}

	switch {
	case sp.HasShortText && sp.HasSupplier && !sp.HasRichDescription:
		return internal.TemplateSAPShortText, 0.92
	case (sp.HasShortText && sp.HasRichDescription) || (sp.HasRichDescription && sp.HasSecondaryText):
		return internal.TemplateSAPDualSource, 0.88
	case sp.HasRichDescription && sp.HasMfgOutput && sp.HasPNOutput:
		return internal.TemplateSAPStandard, 0.85
	case sp.HasSupplier && !sp.HasRichDescription && pctLabeledPN < 0.05 && pctLabeledMfg < 0.05:
		return internal.TemplateDistributorOrder, 0.75
	case sp.Archetype == internal.ArchetypeLabeledRich:
		return internal.TemplateLabeledSpec, 0.80
	default:
		return internal.TemplateGeneric, 0.50
	}
}

// mergeWeights multiplies content weights by template multipliers over the
// union of their strategy sets. Missing entries count as 1.0 on either
// side, so the merge never zeroes a strategy by omission.
func mergeWeights(content, multipliers internal.WeightTable) internal.WeightTable {
	merged := internal.WeightTable{}
	for s := range content {
		merged[s] = round4(content.For(s) * multipliers.For(s))
	}
	for s := range multipliers {
		if _, done := merged[s]; !done {
			merged[s] = round4(content.For(s) * multipliers.For(s))
		}
	}
	return merged
}

// blendThreshold weights the structural threshold 60/40 over the content
// threshold. Structure is the steadier signal; sampled content statistics
// wobble on small files.
func blendThreshold(schemaThreshold, contentThreshold float64) float64 {
	blended := schemaThreshold*0.6 + contentThreshold*0.4
	if blended < thresholdFloor {
		blended = thresholdFloor
	}
	return round3(blended)
}

func anyHeaderIn(cols []string, set map[string]bool) bool {
	for _, col := range cols {
		if set[strings.TrimSpace(strings.ToLower(col))] {
			return true
		}
	}
	return false
}

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

var templateRationale = map[internal.Template]string{
	internal.TemplateSAPShortText:     "short text and supplier columns with no material description, compressed SAP format",
	internal.TemplateSAPDualSource:    "material description plus a second text source, dual-source extraction",
	internal.TemplateSAPStandard:      "material description with mfg and pn output columns, balanced extraction",
	internal.TemplateDistributorOrder: "supplier column with no inline labels, supplier fallback boosted",
	internal.TemplateLabeledSpec:      "descriptions carry explicit PN/MANUFACTURER labels, label extraction prioritized",
	internal.TemplateGeneric:          "no distinctive column structure, balanced extraction",
}

// SchemaSummary renders sp for CLI output.
func SchemaSummary(sp internal.SchemaProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema template: %s (confidence %.2f)\n", sp.Template, sp.DetectionConfidence)
	fmt.Fprintf(&b, "  %s\n", templateRationale[sp.Template])
	fmt.Fprintf(&b, "  archetype:  %s\n", sp.Archetype)
	fmt.Fprintf(&b, "  threshold:  %.3f\n", sp.Threshold)
	fmt.Fprintf(&b, "  supplier=%t shortText=%t richDesc=%t secondaryText=%t mfgOut=%t pnOut=%t\n",
		sp.HasSupplier, sp.HasShortText, sp.HasRichDescription, sp.HasSecondaryText,
		sp.HasMfgOutput, sp.HasPNOutput)
	return b.String()
}
