package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func mkXLSX(rows [][]any) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func TestReadDatasetXLSX(t *testing.T) {
	blob := mkXLSX([][]any{
		{"Material", "Material Description", "Supplier Name"},
		{1000451, "CABLE TIE MOUNT, PANDUIT, PN: PCMB-8", "GRAYBAR"},
		{1000452, "SWITCH,DISCONNECT,80A,7815N15"},
	})
	ds, err := ReadDatasetXLSX(blob)
	if err != nil {
		t.Fatal(err)
	}
	if ds.RowCount() != 2 {
		t.Fatalf("rows=%d", ds.RowCount())
	}
	if got := ds.Cell(0, "Material Description"); got != "CABLE TIE MOUNT, PANDUIT, PN: PCMB-8" {
		t.Fatalf("cell=%q", got)
	}
	// Short spreadsheet rows read as blank, not as an error.
	if got := ds.Cell(1, "Supplier Name"); got != "" {
		t.Fatalf("padded cell=%q", got)
	}
}

func TestReadDatasetCSV(t *testing.T) {
	blob := []byte("\uFEFFMaterial Description,MFG\n" +
		"VALVE \"ASCO\" 8210G95,\n" +
		"BELT,GATES,EXTRA\n")
	ds, err := ReadDatasetCSV(blob)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Headers[0] != "Material Description" {
		t.Fatalf("bom not stripped: %q", ds.Headers[0])
	}
	if ds.RowCount() != 2 {
		t.Fatalf("rows=%d", ds.RowCount())
	}
	if got := ds.Cell(0, "Material Description"); got != `VALVE "ASCO" 8210G95` {
		t.Fatalf("lazy quotes: %q", got)
	}
	// The ragged third field is truncated to the header width.
	if got := ds.Cell(1, "MFG"); got != "GATES" {
		t.Fatalf("cell=%q", got)
	}
}

func TestReadDatasetHTMLPicksLargestTable(t *testing.T) {
	markup := `<html><body>
<table><tr><td>Home</td><td>Contact</td></tr></table>
<table>
<tr><th>Material Description</th><th>PN</th></tr>
<tr><td>CABLE TIE MOUNT, PANDUIT, PN: PCMB-8</td><td></td></tr>
<tr><td>BELT,TIMING,GATES,PN: A113</td><td></td></tr>
</table>
</body></html>`
	ds, err := ReadDatasetHTML(markup)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Headers) != 2 || ds.Headers[0] != "Material Description" {
		t.Fatalf("headers=%v", ds.Headers)
	}
	if ds.RowCount() != 2 {
		t.Fatalf("rows=%d", ds.RowCount())
	}
}

func TestReadDatasetHTMLNoTable(t *testing.T) {
	if _, err := ReadDatasetHTML("<p>no order here</p>"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := ReadDatasetHTML("<table><tr><td>header only</td></tr></table>"); err == nil {
		t.Fatal("expected error for header-only table")
	}
}

func TestDatasetFromInputInlineHTML(t *testing.T) {
	markup := `<table><tr><th>Description</th></tr><tr><td>BRG,PILLOW BLK,22226072</td></tr></table>`
	ds, err := DatasetFromInput("html", markup)
	if err != nil {
		t.Fatal(err)
	}
	if ds.RowCount() != 1 {
		t.Fatalf("rows=%d", ds.RowCount())
	}
}

func TestDatasetFromInputUnsupported(t *testing.T) {
	if _, err := DatasetFromInput("docx", "order.docx"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := ReadDatasetFile("order.txt"); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseMailSource(t *testing.T) {
	raw := []byte("From: buyer@plant.example.com\r\n" +
		"Subject: Spare parts order\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"utf-8\"\r\n" +
		"\r\n" +
		"<html><body><table><tr><th>Material Description</th></tr><tr><td>BELT,TIMING,GATES,PN: A113</td></tr></table></body></html>\r\n")

	src, err := ParseMailSource(raw)
	if err != nil {
		t.Fatal(err)
	}
	if src.Subject != "Spare parts order" {
		t.Fatalf("subject=%q", src.Subject)
	}
	if !strings.Contains(src.HTML, "<table") {
		t.Fatalf("html=%q", src.HTML)
	}
	if len(src.AttachmentNames) != 0 {
		t.Fatalf("attachments=%v", src.AttachmentNames)
	}

	ds, err := DatasetFromMailBody(src)
	if err != nil {
		t.Fatal(err)
	}
	if ds.RowCount() != 1 || ds.Cell(0, "Material Description") != "BELT,TIMING,GATES,PN: A113" {
		t.Fatalf("body table: rows=%d", ds.RowCount())
	}

	if _, err := DatasetFromMailBody(&MailSource{Subject: "plain"}); err == nil {
		t.Fatal("expected error for mail without html body")
	}
}
