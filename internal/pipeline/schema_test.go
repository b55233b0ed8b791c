package pipeline

import (
	"testing"

	"mroparse/internal"
)

func profWith(a internal.Archetype) *internal.ContentProfile {
	return &internal.ContentProfile{
		Archetype: a,
		Weights:   archetypeWeights[a],
		Threshold: archetypeThresholds[a],
	}
}

func TestClassifySchemaSAPShortText(t *testing.T) {
	rm := internal.RoleMap{
		Description:    []string{"Short Text"},
		Supplier:       []string{"Supplier Name"},
		SupplierColumn: strp("Supplier Name"),
	}
	sp := ClassifySchema(rm, profWith(internal.ArchetypeCompressedShort))

	if sp.Template != internal.TemplateSAPShortText || sp.DetectionConfidence != 0.92 {
		t.Fatalf("template=%s conf=%.2f", sp.Template, sp.DetectionConfidence)
	}
	// Content weight x template multiplier.
	if got := sp.Weights.For(internal.StrategyPrefixDecode); got != 1.95 {
		t.Fatalf("prefix weight=%v", got)
	}
	if got := sp.Weights.For(internal.StrategySupplierFallback); got != 1.92 {
		t.Fatalf("supplier weight=%v", got)
	}
	if got := sp.Weights.For(internal.StrategyHeuristic); got != 0.12 {
		t.Fatalf("heuristic weight=%v", got)
	}
	// 0.6 structural + 0.4 content.
	if sp.Threshold != 0.432 {
		t.Fatalf("threshold=%v", sp.Threshold)
	}
}

func TestClassifySchemaSAPDualSource(t *testing.T) {
	rm := internal.RoleMap{
		Description: []string{"Material Description"},
		POText:      []string{"Material PO Text"},
	}
	sp := ClassifySchema(rm, profWith(internal.ArchetypeLabeledRich))

	if sp.Template != internal.TemplateSAPDualSource || sp.DetectionConfidence != 0.88 {
		t.Fatalf("template=%s conf=%.2f", sp.Template, sp.DetectionConfidence)
	}
	if got := sp.Weights.For(internal.StrategyLabel); got != 1.44 {
		t.Fatalf("label weight=%v", got)
	}
	if sp.Threshold != 0.356 {
		t.Fatalf("threshold=%v", sp.Threshold)
	}
}

func TestClassifySchemaSAPStandard(t *testing.T) {
	rm := internal.RoleMap{
		Description: []string{"Material Description"},
		MfgOutput:   strp("MFG"),
		PNOutput:    strp("PN"),
	}
	sp := ClassifySchema(rm, profWith(internal.ArchetypeMixed))

	if sp.Template != internal.TemplateSAPStandard || sp.DetectionConfidence != 0.85 {
		t.Fatalf("template=%s conf=%.2f", sp.Template, sp.DetectionConfidence)
	}
	if sp.Threshold != 0.388 {
		t.Fatalf("threshold=%v", sp.Threshold)
	}
}

func TestClassifySchemaDistributorOrder(t *testing.T) {
	rm := internal.RoleMap{
		Description:    []string{"Item Description"},
		Supplier:       []string{"Vendor Name"},
		SupplierColumn: strp("Vendor Name"),
	}
	prof := profWith(internal.ArchetypeCatalogOnly)
	sp := ClassifySchema(rm, prof)

	if sp.Template != internal.TemplateDistributorOrder || sp.DetectionConfidence != 0.75 {
		t.Fatalf("template=%s conf=%.2f", sp.Template, sp.DetectionConfidence)
	}
	if got := sp.Weights.For(internal.StrategySupplierFallback); got != 2.7 {
		t.Fatalf("supplier weight=%v", got)
	}
	if sp.Threshold != 0.47 {
		t.Fatalf("threshold=%v", sp.Threshold)
	}
}

func TestClassifySchemaLabeledSpecHitsThresholdFloor(t *testing.T) {
	rm := internal.RoleMap{Description: []string{"Description"}}
	sp := ClassifySchema(rm, profWith(internal.ArchetypeLabeledRich))

	if sp.Template != internal.TemplateLabeledSpec || sp.DetectionConfidence != 0.80 {
		t.Fatalf("template=%s conf=%.2f", sp.Template, sp.DetectionConfidence)
	}
	if got := sp.Weights.For(internal.StrategyLabel); got != 1.8 {
		t.Fatalf("label weight=%v", got)
	}
	// The raw blend lands at 0.332 and gets pulled up to the floor.
	if sp.Threshold != 0.35 {
		t.Fatalf("threshold=%v", sp.Threshold)
	}
}

func TestClassifySchemaGeneric(t *testing.T) {
	rm := internal.RoleMap{Description: []string{"Description"}}
	sp := ClassifySchema(rm, profWith(internal.ArchetypeMixed))

	if sp.Template != internal.TemplateGeneric || sp.DetectionConfidence != 0.50 {
		t.Fatalf("template=%s conf=%.2f", sp.Template, sp.DetectionConfidence)
	}
	if sp.Threshold != 0.40 {
		t.Fatalf("threshold=%v", sp.Threshold)
	}
}

func TestClassifySchemaWithoutContentProfile(t *testing.T) {
	// Structure alone must not select the distributor template: the label
	// rates default above the cutoff when no profile was computed.
	rm := internal.RoleMap{
		Supplier:       []string{"Vendor Name"},
		SupplierColumn: strp("Vendor Name"),
	}
	sp := ClassifySchema(rm, nil)

	if sp.Template != internal.TemplateGeneric {
		t.Fatalf("template=%s", sp.Template)
	}
	if sp.Archetype != internal.ArchetypeMixed {
		t.Fatalf("archetype=%s", sp.Archetype)
	}
	// With no content weights every merged entry is the bare multiplier.
	if got := sp.Weights.For(internal.StrategyLabel); got != 1.0 {
		t.Fatalf("label weight=%v", got)
	}
}

func TestMergeWeightsDefaultsMissingEntries(t *testing.T) {
	content := internal.WeightTable{internal.StrategyLabel: 1.2}
	mult := internal.WeightTable{internal.StrategyPrefixDecode: 1.5}

	merged := mergeWeights(content, mult)
	if got := merged.For(internal.StrategyLabel); got != 1.2 {
		t.Fatalf("label=%v", got)
	}
	if got := merged.For(internal.StrategyPrefixDecode); got != 1.5 {
		t.Fatalf("prefix=%v", got)
	}
	// Absent on both sides: the lookup itself defaults to 1.0.
	if got := merged.For(internal.StrategyContext); got != 1.0 {
		t.Fatalf("context=%v", got)
	}
}
