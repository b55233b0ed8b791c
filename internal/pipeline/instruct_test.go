package pipeline

import (
	"testing"

	"mroparse/internal"
)

func TestParseInstructionMfgPN(t *testing.T) {
	headers := []string{"Material Description", "MFG", "PN"}
	r := ParseInstruction("Extract manufacturer and part number from material description", headers)

	if r.Pipeline != internal.PipelineMfgPN {
		t.Fatalf("pipeline = %s", r.Pipeline)
	}
	if len(r.SourceColumns) != 1 || r.SourceColumns[0] != "Material Description" {
		t.Fatalf("sources = %v", r.SourceColumns)
	}
	if *r.MfgColumn != "MFG" || *r.PNColumn != "PN" {
		t.Fatalf("targets = %s, %s", *r.MfgColumn, *r.PNColumn)
	}
	if r.Confidence != 1.0 {
		t.Fatalf("confidence = %v", r.Confidence)
	}
	if r.AddSim {
		t.Fatal("sim requested by a plain extraction instruction")
	}
}

func TestParseInstructionReprocess(t *testing.T) {
	// Two part-number signals outscore the single generic pn signal.
	r := ParseInstruction("reprocess and validate pn", []string{"Material Description"})

	if r.Pipeline != internal.PipelinePartNumber {
		t.Fatalf("pipeline = %s", r.Pipeline)
	}
	// No column named in the text: fall back to the auto source list.
	if len(r.SourceColumns) != 1 || r.SourceColumns[0] != "Material Description" {
		t.Fatalf("sources = %v", r.SourceColumns)
	}
}

func TestParseInstructionNoSignalAutoDetects(t *testing.T) {
	// "part numbers only" carries no scoring signal (the patterns match the
	// singular), so the pipeline comes from the headers instead.
	r := ParseInstruction("part numbers only", []string{"Part Number 1", "Description"})

	if r.Pipeline != internal.PipelinePartNumber {
		t.Fatalf("pipeline = %s", r.Pipeline)
	}
	if r.Confidence != 0 {
		t.Fatalf("confidence = %v", r.Confidence)
	}
	if len(r.SourceColumns) != 1 || r.SourceColumns[0] != "Description" {
		t.Fatalf("sources = %v", r.SourceColumns)
	}
}

func TestParseInstructionDualTargets(t *testing.T) {
	headers := []string{"Desc", "Qty", "Price", "Maker", "Model"}
	r := ParseInstruction("put mfg in column D and pn in column E", headers)

	if r.Pipeline != internal.PipelineMfgPN {
		t.Fatalf("pipeline = %s", r.Pipeline)
	}
	// Two lettered references bind manufacturer then part number in order.
	if *r.MfgColumn != "Maker" || *r.PNColumn != "Model" {
		t.Fatalf("targets = %s, %s", *r.MfgColumn, *r.PNColumn)
	}
}

func TestParseInstructionSingleTarget(t *testing.T) {
	headers := []string{"Description", "Maker"}
	r := ParseInstruction("write the manufacturer into column B", headers)
	if *r.MfgColumn != "Maker" {
		t.Fatalf("mfg target = %s", *r.MfgColumn)
	}
	if *r.PNColumn != "PN" {
		t.Fatalf("pn target = %s", *r.PNColumn)
	}

	headers = []string{"Description", "Catalog No"}
	r = ParseInstruction("put the part number into column B", headers)
	if *r.PNColumn != "Catalog No" {
		t.Fatalf("pn target = %s", *r.PNColumn)
	}
	if *r.MfgColumn != "MFG" {
		t.Fatalf("mfg target = %s", *r.MfgColumn)
	}
}

func TestParseInstructionSim(t *testing.T) {
	tests := []struct {
		text  string
		style internal.SimStyle
	}{
		{"fill missing sim numbers", internal.SimSpace},
		{"generate sim with dash separator", internal.SimDash},
		{"combine mfg + item compact", internal.SimCompact},
		{"build sim, sanitize the item number", internal.SimDash},
	}
	for _, tt := range tests {
		r := ParseInstruction(tt.text, []string{"Item #", "MFG", "SIM"})
		if r.Pipeline != internal.PipelineSim {
			t.Errorf("%q: pipeline = %s", tt.text, r.Pipeline)
		}
		if !r.AddSim {
			t.Errorf("%q: sim not enabled", tt.text)
		}
		if r.SimStyle != tt.style {
			t.Errorf("%q: style = %s, want %s", tt.text, r.SimStyle, tt.style)
		}
	}
}

func TestParseInstructionEmpty(t *testing.T) {
	r := ParseInstruction("", []string{"Material Description", "MFG", "PN"})

	if r.Pipeline != internal.PipelineMfgPN {
		t.Fatalf("pipeline = %s", r.Pipeline)
	}
	if r.Explanation != "No instruction provided. Will attempt auto-detection." {
		t.Fatalf("explanation = %q", r.Explanation)
	}
	if *r.MfgColumn != "MFG" || *r.PNColumn != "PN" || *r.SimColumn != "SIM" {
		t.Fatal("defaults not applied")
	}
	if r.AddSim || r.Confidence != 0 {
		t.Fatalf("addSim=%t confidence=%v", r.AddSim, r.Confidence)
	}
}

func TestAutoDetectPipeline(t *testing.T) {
	tests := []struct {
		headers []string
		want    internal.PipelineKind
	}{
		{[]string{"ITEM #", "SIM", "Description"}, internal.PipelineSim},
		{[]string{"Material Description", "MFG"}, internal.PipelineMfgPN},
		{[]string{"Part Number 1", "Qty"}, internal.PipelinePartNumber},
		// Material outranks a part-number column when both appear.
		{[]string{"Part Number 1", "Material"}, internal.PipelineMfgPN},
		{[]string{"MFG", "Notes"}, internal.PipelineMfgPN},
		{[]string{"Colour", "Size"}, internal.PipelineMfgPN},
	}
	for _, tt := range tests {
		if got := AutoDetectPipeline(tt.headers); got != tt.want {
			t.Errorf("AutoDetectPipeline(%v) = %s, want %s", tt.headers, got, tt.want)
		}
	}
}
