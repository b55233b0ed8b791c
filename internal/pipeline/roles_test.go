package pipeline

import (
	"testing"

	"mroparse/internal/dataset"
	"mroparse/internal/lexicon"
)

func TestMapColumnsSAPExport(t *testing.T) {
	ds := dataset.New([]string{"Material", "Material Description", "Supplier Name", "MFG", "PN"})
	ds.AppendRow([]string{"1000451", "CABLE TIE MOUNT, PANDUIT, PN: PCMB-8", "GRAYBAR ELECTRIC", "", ""})
	ds.AppendRow([]string{"1000452", "SWITCH,DISCONNECT,80A,7815N15", "", "", ""})
	lex := lexicon.Build(nil)

	rm := MapColumns(ds, lex)

	// "Material" lands in the description role by keyword but holds numeric
	// IDs, so the content check must drop it again.
	if len(rm.Description) != 1 || rm.Description[0] != "Material Description" {
		t.Fatalf("description=%v", rm.Description)
	}
	if rm.SupplierColumn == nil || *rm.SupplierColumn != "Supplier Name" {
		t.Fatalf("supplier=%v", rm.SupplierColumn)
	}
	if rm.MfgOutput == nil || *rm.MfgOutput != "MFG" {
		t.Fatalf("mfg=%v", rm.MfgOutput)
	}
	if rm.PNOutput == nil || *rm.PNOutput != "PN" {
		t.Fatalf("pn=%v", rm.PNOutput)
	}
}

func TestMapColumnsFuzzyAndKeyword(t *testing.T) {
	ds := dataset.New([]string{"Part Numbr", "OEM Name", "Long Text"})
	ds.AppendRow([]string{"", "", "MOTOR,5HP,BALDOR"})
	lex := lexicon.Build(nil)

	rm := MapColumns(ds, lex)

	if rm.PNOutput == nil || *rm.PNOutput != "Part Numbr" {
		t.Fatalf("fuzzy pn=%v", rm.PNOutput)
	}
	if rm.MfgOutput == nil || *rm.MfgOutput != "OEM Name" {
		t.Fatalf("keyword mfg=%v", rm.MfgOutput)
	}
	if len(rm.Description) != 1 || rm.Description[0] != "Long Text" {
		t.Fatalf("description=%v", rm.Description)
	}
}

func TestMapColumnsVendorNameBindsSupplier(t *testing.T) {
	ds := dataset.New([]string{"Vendor Name", "Item Description"})
	ds.AppendRow([]string{"HUBBELL INC", "SEAL KIT,CS120W"})
	lex := lexicon.Build(nil)

	rm := MapColumns(ds, lex)

	if len(rm.Supplier) != 1 || rm.Supplier[0] != "Vendor Name" {
		t.Fatalf("supplier=%v", rm.Supplier)
	}
	if rm.MfgOutput != nil {
		t.Fatalf("vendor column bound as mfg output: %v", *rm.MfgOutput)
	}
}

func TestMapColumnsKeepsEmptyTextColumn(t *testing.T) {
	ds := dataset.New([]string{"Material Description"})
	ds.AppendRow([]string{""})
	ds.AppendRow([]string{""})
	lex := lexicon.Build(nil)

	rm := MapColumns(ds, lex)
	if len(rm.Description) != 1 {
		t.Fatalf("all-blank description dropped: %v", rm.Description)
	}
}

func TestValidateRoleMap(t *testing.T) {
	ds := dataset.New([]string{"Qty", "Price"})
	ds.AppendRow([]string{"2", "14.20"})
	lex := lexicon.Build(nil)

	rm := MapColumns(ds, lex)
	if ok, issues := ValidateRoleMap(rm, false); ok || len(issues) == 0 {
		t.Fatalf("ok=%v issues=%v", ok, issues)
	}

	ds2 := dataset.New([]string{"Material Description"})
	ds2.AppendRow([]string{"BELT,TIMING,GATES"})
	rm2 := MapColumns(ds2, lex)
	if ok, _ := ValidateRoleMap(rm2, false); !ok {
		t.Fatal("description-only layout should pass relaxed validation")
	}
	if ok, issues := ValidateRoleMap(rm2, true); ok || len(issues) != 2 {
		t.Fatalf("strict: ok=%v issues=%v", ok, issues)
	}
}
