package dataset

import "strings"

// Dataset is an in-memory table: ordered named columns over row-major
// string cells. A blank cell is the empty string or pure whitespace;
// readers pad short rows so every row has one cell per header.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

func New(headers []string) *Dataset {
	cleaned := make([]string, len(headers))
	copy(cleaned, headers)
	return &Dataset{Headers: cleaned}
}

func (d *Dataset) RowCount() int {
	return len(d.Rows)
}

// ColumnIndex returns the position of name among the headers, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, h := range d.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

func (d *Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// Cell returns the value at (row, name), or "" when the column or row
// does not exist. Missing never raises; absent data reads as blank.
func (d *Dataset) Cell(row int, name string) string {
	idx := d.ColumnIndex(name)
	if idx < 0 || row < 0 || row >= len(d.Rows) {
		return ""
	}
	cells := d.Rows[row]
	if idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

func (d *Dataset) IsBlank(row int, name string) bool {
	return strings.TrimSpace(d.Cell(row, name)) == ""
}

// SetCell writes value at (row, name). Writes to unknown columns or rows
// are dropped.
func (d *Dataset) SetCell(row int, name, value string) {
	idx := d.ColumnIndex(name)
	if idx < 0 || row < 0 || row >= len(d.Rows) {
		return
	}
	for len(d.Rows[row]) <= idx {
		d.Rows[row] = append(d.Rows[row], "")
	}
	d.Rows[row][idx] = value
}

// AddColumn appends a new empty column. Existing columns are left alone.
func (d *Dataset) AddColumn(name string) {
	if d.HasColumn(name) {
		return
	}
	d.Headers = append(d.Headers, name)
	for i := range d.Rows {
		d.Rows[i] = append(d.Rows[i], "")
	}
}

// AppendRow adds one row, padded or truncated to the header width.
func (d *Dataset) AppendRow(cells []string) {
	row := make([]string, len(d.Headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	d.Rows = append(d.Rows, row)
}

// Column materializes a full column, blank-padded for short rows.
func (d *Dataset) Column(name string) []string {
	idx := d.ColumnIndex(name)
	out := make([]string, len(d.Rows))
	if idx < 0 {
		return out
	}
	for i, cells := range d.Rows {
		if idx < len(cells) {
			out[i] = cells[idx]
		}
	}
	return out
}
