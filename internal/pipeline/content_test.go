package pipeline

import (
	"testing"

	"mroparse/internal"
	"mroparse/internal/dataset"
	"mroparse/internal/lexicon"
)

func descDataset(lines []string) (*dataset.Dataset, internal.RoleMap) {
	ds := dataset.New([]string{"Material Description"})
	for _, line := range lines {
		ds.AppendRow([]string{line})
	}
	rm := internal.RoleMap{Description: []string{"Material Description"}}
	return ds, rm
}

func TestProfileLabeledRich(t *testing.T) {
	ds, rm := descDataset([]string{
		"CABLE TIE MOUNT, PANDUIT, PN: PCMB-8",
		"CONTACTOR,MAGNETIC,GE,PN: AF146",
		"MANUFACTURER: GOULDS MODEL 3196",
		"BELT,TIMING,GATES,PN: A113",
	})
	lex := lexicon.Build(nil)
	p := NewProfiler(200, 42)

	prof := p.Profile(ds, rm, lex)
	if prof.Archetype != internal.ArchetypeLabeledRich {
		t.Fatalf("archetype=%s", prof.Archetype)
	}
	if prof.SampleSize != 4 {
		t.Fatalf("sampleSize=%d", prof.SampleSize)
	}
	if prof.PctLabeledPN != 0.75 || prof.PctLabeledMfg != 0.25 {
		t.Fatalf("labeled pn=%.2f mfg=%.2f", prof.PctLabeledPN, prof.PctLabeledMfg)
	}
	if prof.Threshold != 0.35 {
		t.Fatalf("threshold=%.2f", prof.Threshold)
	}
	if prof.Weights.For(internal.StrategyLabel) != 1.2 {
		t.Fatalf("label weight=%v", prof.Weights.For(internal.StrategyLabel))
	}
}

func TestProfileCompressedShort(t *testing.T) {
	ds, rm := descDataset([]string{
		"SWITCH,LIMIT,ROLLER,XCK-J123",
		"VALVE,SOLENOID,120V,NC",
		"BRG,PILLOW BLK,22226072",
		"FUSE,CLASS J,60A,LPJ60SP",
		"RELAY,CTRL,24VDC,700-HA33Z24",
	})
	lex := lexicon.Build(nil)
	p := NewProfiler(200, 42)

	prof := p.Profile(ds, rm, lex)
	if prof.Archetype != internal.ArchetypeCompressedShort {
		t.Fatalf("archetype=%s", prof.Archetype)
	}
	if prof.PctCommaDelimited != 1.0 {
		t.Fatalf("comma=%.2f", prof.PctCommaDelimited)
	}
	if prof.Threshold != 0.45 {
		t.Fatalf("threshold=%.2f", prof.Threshold)
	}
}

func TestProfileCatalogOnly(t *testing.T) {
	ds, rm := descDataset([]string{
		"7815N15",
		"2093A11",
		"6970T53",
		"MOTOR SHAFT KEYED SPARE",
	})
	lex := lexicon.Build(nil)
	p := NewProfiler(200, 42)

	prof := p.Profile(ds, rm, lex)
	if prof.Archetype != internal.ArchetypeCatalogOnly {
		t.Fatalf("archetype=%s", prof.Archetype)
	}
	if prof.PctPureCatalog != 0.75 {
		t.Fatalf("pureCatalog=%.2f", prof.PctPureCatalog)
	}
	if prof.Threshold != 0.50 {
		t.Fatalf("threshold=%.2f", prof.Threshold)
	}
}

func TestProfileEmptyDatasetFallsBackToMixed(t *testing.T) {
	ds, rm := descDataset(nil)
	lex := lexicon.Build(nil)
	p := NewProfiler(200, 42)

	prof := p.Profile(ds, rm, lex)
	if prof.Archetype != internal.ArchetypeMixed || prof.SampleSize != 0 {
		t.Fatalf("archetype=%s sampleSize=%d", prof.Archetype, prof.SampleSize)
	}
	if prof.Threshold != 0.40 {
		t.Fatalf("threshold=%.2f", prof.Threshold)
	}
}

func TestProfileDetectsPrefixCodedText(t *testing.T) {
	ds, rm := descDataset([]string{
		"HUBCS120W WALL SWITCH",
		"SQDHOM230 BREAKER",
	})
	lex := lexicon.Build(nil)
	p := NewProfiler(200, 42)

	prof := p.Profile(ds, rm, lex)
	if prof.PctPrefixCoded != 1.0 {
		t.Fatalf("prefixCoded=%.2f", prof.PctPrefixCoded)
	}
}

func TestProfileIsMemoized(t *testing.T) {
	ds, rm := descDataset([]string{"BELT,TIMING,GATES,PN: A113"})
	lex := lexicon.Build(nil)
	p := NewProfiler(200, 42)

	first := p.Profile(ds, rm, lex)
	second := p.Profile(ds, rm, lex)
	if first.Archetype != second.Archetype || first.SampleSize != second.SampleSize ||
		first.PctLabeledPN != second.PctLabeledPN || first.AvgTokenCount != second.AvgTokenCount {
		t.Fatalf("profiles differ: %+v vs %+v", first, second)
	}
}

func TestProfileStructuralFlags(t *testing.T) {
	ds := dataset.New([]string{"Material Description", "Supplier Name", "MFG"})
	ds.AppendRow([]string{"BELT,TIMING,GATES,PN: A113", "MOTION INDUSTRIES", "GATES"})
	rm := internal.RoleMap{
		Description:    []string{"Material Description"},
		Supplier:       []string{"Supplier Name"},
		SupplierColumn: strp("Supplier Name"),
		MfgOutput:      strp("MFG"),
	}
	lex := lexicon.Build(nil)
	p := NewProfiler(200, 42)

	prof := p.Profile(ds, rm, lex)
	if !prof.HasSupplierColumn {
		t.Fatal("supplier column not reported")
	}
	if !prof.OutputPartiallyFilled {
		t.Fatal("prefilled output not reported")
	}
}
