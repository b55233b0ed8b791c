package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"mroparse/internal/dataset"
	"mroparse/internal/util"
)

// Footer and boilerplate lines that show up in PDF exports and pasted
// order text but carry no line items.
var ignorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^--+$`),
	regexp.MustCompile(`(?i)^page \d+`),
	regexp.MustCompile(`(?i)^printed on`),
	regexp.MustCompile(`(?i)^thank you`),
	regexp.MustCompile(`(?i)^(?:best |kind )?regards`),
	regexp.MustCompile(`(?i)^tel[:\s]`),
	regexp.MustCompile(`(?i)^fax[:\s]`),
	regexp.MustCompile(`(?i)^e-?mail[:\s]`),
	regexp.MustCompile(`(?i)^http`),
}

// ReadDatasetXLSX loads the first sheet of a workbook. The first row is
// the header row; data rows are padded or truncated to the header width
// so spreadsheet row N stays dataset row N-2 throughout the pipeline.
func ReadDatasetXLSX(content []byte) (*dataset.Dataset, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	ds := dataset.New(normalizeCells(rows[0]))
	for _, row := range rows[1:] {
		ds.AppendRow(normalizeCells(row))
	}
	return ds, nil
}

// ReadDatasetCSV loads comma-separated text. Lazy quoting is on because
// exported MRO sheets routinely embed stray quotes in description cells.
func ReadDatasetCSV(content []byte) (*dataset.Dataset, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	ds := dataset.New(normalizeCells(headers))
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		ds.AppendRow(normalizeCells(record))
	}
	return ds, nil
}

// ReadDatasetHTML loads the largest <table> in the markup. Vendor portals
// wrap order exports in layout tables, so row count picks the real one.
// Headers come from th cells when present, else from the first tr.
func ReadDatasetHTML(markup string) (*dataset.Dataset, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var best *goquery.Selection
	bestRows := 0
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if n := table.Find("tr").Length(); n > bestRows {
			best, bestRows = table, n
		}
	})
	if best == nil || bestRows < 2 {
		return nil, fmt.Errorf("no table with data rows found")
	}

	rows := best.Find("tr")
	headers := []string{}
	rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, util.NormalizeSpaces(cell.Text()))
	})

	ds := dataset.New(headers)
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := []string{}
		row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, util.NormalizeSpaces(cell.Text()))
		})
		if len(cells) > 0 {
			ds.AppendRow(cells)
		}
	})
	return ds, nil
}

// ReadDatasetPDF flattens the text rows of a PDF into a one-column
// dataset headed DESCRIPTION. There is no reliable column structure in
// PDF text output, so every kept line becomes one source row.
func ReadDatasetPDF(content []byte) (*dataset.Dataset, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	ds := dataset.New([]string{"DESCRIPTION"})
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range splitLines(text) {
			if isLikelyNoise(line) {
				continue
			}
			ds.AppendRow([]string{line})
		}
	}
	if ds.RowCount() == 0 {
		return nil, fmt.Errorf("pdf has no text rows")
	}
	return ds, nil
}

// DatasetFromInput dispatches on the declared input kind. For xlsx, csv
// and pdf the input is a file path; for html it may be a path or the raw
// markup itself, which is how mail bodies arrive.
func DatasetFromInput(kind, input string) (*dataset.Dataset, error) {
	switch kind {
	case "xlsx":
		blob, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		return ReadDatasetXLSX(blob)
	case "csv":
		blob, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		return ReadDatasetCSV(blob)
	case "html":
		if blob, err := os.ReadFile(input); err == nil {
			return ReadDatasetHTML(string(blob))
		}
		return ReadDatasetHTML(input)
	case "pdf":
		blob, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		return ReadDatasetPDF(blob)
	default:
		return nil, fmt.Errorf("unsupported input type: %s", kind)
	}
}

// ReadDatasetFile dispatches on the file extension. Used for stored mail
// attachments, where the sender chose the format.
func ReadDatasetFile(path string) (*dataset.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return DatasetFromInput("xlsx", path)
	case ".csv":
		return DatasetFromInput("csv", path)
	case ".htm", ".html":
		return DatasetFromInput("html", path)
	case ".pdf":
		return DatasetFromInput("pdf", path)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(path))
	}
}

// MailSource is the pipeline-facing view of a stored raw message.
type MailSource struct {
	Subject         string
	Text            string
	HTML            string
	AttachmentNames []string
}

// ParseMailSource decodes a raw RFC 822 message into the parts the mail
// pipeline looks at. Attachment payloads are not returned here; the
// connectors store those to disk at fetch time.
func ParseMailSource(raw []byte) (*MailSource, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("read mail envelope: %w", err)
	}
	src := &MailSource{
		Subject: env.GetHeader("Subject"),
		Text:    env.Text,
		HTML:    env.HTML,
	}
	for _, att := range env.Attachments {
		name := strings.TrimSpace(att.FileName)
		if name == "" {
			name = "attachment"
		}
		src.AttachmentNames = append(src.AttachmentNames, name)
	}
	return src, nil
}

// DatasetFromMailBody builds a dataset from an HTML table in the message
// body, for order mails that inline the sheet instead of attaching it.
func DatasetFromMailBody(src *MailSource) (*dataset.Dataset, error) {
	if src.HTML == "" {
		return nil, fmt.Errorf("mail has no html body")
	}
	return ReadDatasetHTML(src.HTML)
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isLikelyNoise(line string) bool {
	for _, re := range ignorePatterns {
		if re.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

func normalizeCells(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		out = append(out, util.NormalizeSpaces(c))
	}
	return out
}
