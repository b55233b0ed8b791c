package dataset

import (
	"reflect"
	"testing"
)

func TestAppendRowPadsAndTruncates(t *testing.T) {
	ds := New([]string{"A", "B", "C"})
	ds.AppendRow([]string{"1"})
	ds.AppendRow([]string{"1", "2", "3", "overflow"})

	if ds.RowCount() != 2 {
		t.Fatalf("rows=%d", ds.RowCount())
	}
	if !reflect.DeepEqual(ds.Rows[0], []string{"1", "", ""}) {
		t.Fatalf("padded row=%v", ds.Rows[0])
	}
	if !reflect.DeepEqual(ds.Rows[1], []string{"1", "2", "3"}) {
		t.Fatalf("truncated row=%v", ds.Rows[1])
	}
}

func TestCellMissingReadsBlank(t *testing.T) {
	ds := New([]string{"A"})
	ds.AppendRow([]string{"x"})

	if got := ds.Cell(0, "A"); got != "x" {
		t.Fatalf("cell=%q", got)
	}
	if got := ds.Cell(0, "Nope"); got != "" {
		t.Fatalf("unknown column=%q", got)
	}
	if got := ds.Cell(5, "A"); got != "" {
		t.Fatalf("out of range row=%q", got)
	}
	if !ds.IsBlank(0, "Nope") || !ds.IsBlank(3, "A") {
		t.Fatal("missing cells must read as blank")
	}
}

func TestSetCellDropsUnknownTargets(t *testing.T) {
	ds := New([]string{"A"})
	ds.AppendRow([]string{"x"})

	ds.SetCell(0, "A", "y")
	ds.SetCell(0, "Nope", "ignored")
	ds.SetCell(9, "A", "ignored")

	if ds.Cell(0, "A") != "y" {
		t.Fatalf("cell=%q", ds.Cell(0, "A"))
	}
	if len(ds.Headers) != 1 || ds.RowCount() != 1 {
		t.Fatalf("dataset grew: headers=%v rows=%d", ds.Headers, ds.RowCount())
	}
}

func TestAddColumn(t *testing.T) {
	ds := New([]string{"A"})
	ds.AppendRow([]string{"x"})
	ds.AddColumn("B")
	ds.AddColumn("B")

	if !reflect.DeepEqual(ds.Headers, []string{"A", "B"}) {
		t.Fatalf("headers=%v", ds.Headers)
	}
	if !reflect.DeepEqual(ds.Rows[0], []string{"x", ""}) {
		t.Fatalf("row=%v", ds.Rows[0])
	}

	ds.SetCell(0, "B", "filled")
	if ds.Cell(0, "B") != "filled" {
		t.Fatalf("cell=%q", ds.Cell(0, "B"))
	}
}

func TestColumn(t *testing.T) {
	ds := New([]string{"A", "B"})
	ds.AppendRow([]string{"1", "2"})
	ds.AppendRow([]string{"3"})

	if got := ds.Column("B"); !reflect.DeepEqual(got, []string{"2", ""}) {
		t.Fatalf("column=%v", got)
	}
	if got := ds.Column("Nope"); !reflect.DeepEqual(got, []string{"", ""}) {
		t.Fatalf("unknown column=%v", got)
	}
}
